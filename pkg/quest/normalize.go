package quest

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Field names as they appear in documents.
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldCourse      = "course"
	FieldCategory    = "category"
	FieldNotes       = "notes"
	FieldLink        = "link"
	FieldFilePath    = "filePath"
	FieldDueDate     = "dueDate"
	FieldDueTime     = "dueTime"
	FieldEstMinutes  = "estMinutes"
	FieldCompletion  = "completion"
	FieldDone        = "done"
	FieldReward      = "reward"
	FieldCreatedAt   = "createdAt"
	FieldUpdatedAt   = "updatedAt"
	FieldCompletedAt = "completedAt"
)

var known = map[string]struct{}{
	FieldID: {}, FieldTitle: {}, FieldCourse: {}, FieldCategory: {}, FieldNotes: {},
	FieldLink: {}, FieldFilePath: {}, FieldDueDate: {}, FieldDueTime: {},
	FieldEstMinutes: {}, FieldCompletion: {}, FieldDone: {}, FieldReward: {},
	FieldCreatedAt: {}, FieldUpdatedAt: {}, FieldCompletedAt: {},
}

// IsKnownField reports whether name is one of the canonical quest fields.
func IsKnownField(name string) bool {
	_, ok := known[name]
	return ok
}

// Normalize coerces an arbitrary partial record into a canonical quest.
// Numbers are bounded, strings default to empty, and keys it does not
// recognise are kept verbatim in Extra.
func Normalize(raw map[string]any) Quest {
	q := Quest{
		ID:       str(raw[FieldID]),
		Title:    str(raw[FieldTitle]),
		Course:   str(raw[FieldCourse]),
		Category: str(raw[FieldCategory]),
		Notes:    str(raw[FieldNotes]),
		Link:     str(raw[FieldLink]),
		FilePath: str(raw[FieldFilePath]),
		DueDate:  str(raw[FieldDueDate]),
		DueTime:  str(raw[FieldDueTime]),
		Done:     truthy(raw[FieldDone]),

		CreatedAt:   toTimestamp(raw[FieldCreatedAt]),
		UpdatedAt:   toTimestamp(raw[FieldUpdatedAt]),
		CompletedAt: toTimestamp(raw[FieldCompletedAt]),
	}

	if c, ok := number(raw[FieldCompletion]); ok {
		q.Completion = int(math.Round(math.Max(0, math.Min(100, c))))
	}
	if m, ok := number(raw[FieldEstMinutes]); ok && m > 0 {
		if rounded := int(math.Round(math.Min(m, math.MaxInt32))); rounded > 0 {
			q.EstMinutes = &rounded
		}
	}
	q.Reward = reward(raw[FieldReward])

	for k, v := range raw {
		if IsKnownField(k) {
			continue
		}
		if q.Extra == nil {
			q.Extra = make(map[string]json.RawMessage)
		}
		q.Extra[k] = rawJSON(v)
	}
	return q
}

// Normalized returns q with the normalisation rules reapplied.
func (q Quest) Normalized() Quest {
	return Normalize(q.Map())
}

// Map flattens q into the loose form accepted by Normalize.
func (q Quest) Map() map[string]any {
	m := make(map[string]any, len(known)+len(q.Extra))
	for k, v := range q.Extra {
		m[k] = v
	}
	m[FieldID] = q.ID
	m[FieldTitle] = q.Title
	m[FieldCourse] = q.Course
	m[FieldCategory] = q.Category
	m[FieldNotes] = q.Notes
	m[FieldLink] = q.Link
	m[FieldFilePath] = q.FilePath
	m[FieldDueDate] = q.DueDate
	m[FieldDueTime] = q.DueTime
	if q.EstMinutes != nil {
		m[FieldEstMinutes] = *q.EstMinutes
	} else {
		m[FieldEstMinutes] = nil
	}
	m[FieldCompletion] = q.Completion
	m[FieldDone] = q.Done
	m[FieldReward] = map[string]any{"sx": q.Reward.SX, "coins": q.Reward.Coins}
	if q.CreatedAt != nil {
		m[FieldCreatedAt] = q.CreatedAt.clone()
	}
	if q.UpdatedAt != nil {
		m[FieldUpdatedAt] = q.UpdatedAt.clone()
	}
	if q.CompletedAt != nil {
		m[FieldCompletedAt] = q.CompletedAt.clone()
	}
	return m
}

// Merge applies patch over q and normalises the result. Keys in patch win.
func Merge(q Quest, patch map[string]any) Quest {
	m := q.Map()
	for k, v := range patch {
		m[k] = v
	}
	return Normalize(m)
}

// ClampCompletion bounds c to [0, 100].
func ClampCompletion(c int) int {
	switch {
	case c < 0:
		return 0
	case c > 100:
		return 100
	}
	return c
}

func str(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if raw, ok := v.(json.RawMessage); ok {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}
	}
	return ""
}

// number parses v the way a loose numeric cast would. ok is false for
// missing values and anything that does not read as a finite number.
func number(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case bool:
		if x {
			f = 1
		}
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, true
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case json.RawMessage:
		var decoded any
		dec := json.NewDecoder(strings.NewReader(string(x)))
		dec.UseNumber()
		if err := dec.Decode(&decoded); err != nil {
			return 0, false
		}
		return number(decoded)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(x)); err == nil {
			return b
		}
		return x != ""
	case json.RawMessage:
		var decoded any
		if err := json.Unmarshal(x, &decoded); err != nil {
			return false
		}
		return truthy(decoded)
	}
	if f, ok := number(v); ok {
		return f != 0
	}
	// Objects and arrays are truthy.
	return true
}

func reward(v any) Reward {
	var fields map[string]any
	switch x := v.(type) {
	case Reward:
		return Reward{SX: finite(x.SX), Coins: finite(x.Coins)}
	case *Reward:
		if x == nil {
			return Reward{}
		}
		return Reward{SX: finite(x.SX), Coins: finite(x.Coins)}
	case map[string]any:
		fields = x
	case json.RawMessage:
		dec := json.NewDecoder(strings.NewReader(string(x)))
		dec.UseNumber()
		if err := dec.Decode(&fields); err != nil {
			return Reward{}
		}
	}
	var r Reward
	if sx, ok := number(fields["sx"]); ok {
		r.SX = sx
	}
	if coins, ok := number(fields["coins"]); ok {
		r.Coins = coins
	}
	return r
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func rawJSON(v any) json.RawMessage {
	if raw, ok := v.(json.RawMessage); ok {
		return append(json.RawMessage(nil), raw...)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}
