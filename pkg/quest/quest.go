// Package quest defines the quest record and the rules that keep it in a
// canonical shape.
package quest

import (
	"encoding/json"
	"strings"
)

// Quest is a schedulable task with a due date, effort estimate and progress.
type Quest struct {
	ID       string
	Title    string
	Course   string
	Category string
	Notes    string
	Link     string
	FilePath string

	// DueDate is an ISO calendar date (YYYY-MM-DD); empty means undated.
	DueDate string
	DueTime string

	// EstMinutes is nil when the effort is unknown, otherwise >= 1.
	EstMinutes *int
	Completion int
	Done       bool
	Reward     Reward

	CreatedAt   *Timestamp
	UpdatedAt   *Timestamp
	CompletedAt *Timestamp

	// Extra carries fields this version does not know about so they
	// survive a load/save cycle.
	Extra map[string]json.RawMessage
}

// Reward is the experience and coin payout attached to a quest.
type Reward struct {
	SX    float64 `json:"sx"`
	Coins float64 `json:"coins"`
}

// Progress is the partial patch applied by progress updates.
type Progress struct {
	Completion int  `json:"completion"`
	Done       bool `json:"done"`
}

// Progress returns the progress fields of q.
func (q Quest) Progress() Progress {
	return Progress{Completion: q.Completion, Done: q.Done}
}

// Minutes returns the estimate with unknown treated as zero.
func (q Quest) Minutes() int {
	if q.EstMinutes == nil {
		return 0
	}
	return *q.EstMinutes
}

// Clone returns a deep copy of q.
func (q Quest) Clone() Quest {
	out := q
	if q.EstMinutes != nil {
		v := *q.EstMinutes
		out.EstMinutes = &v
	}
	out.CreatedAt = q.CreatedAt.clone()
	out.UpdatedAt = q.UpdatedAt.clone()
	out.CompletedAt = q.CompletedAt.clone()
	if q.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(q.Extra))
		for k, v := range q.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

// DisplayTitle is the label shown for a quest in lists and calendar cells.
func DisplayTitle(q Quest) string {
	if t := strings.TrimSpace(q.Title); t != "" {
		return t
	}
	if q.Category != "" {
		return q.Category
	}
	return "Untitled quest"
}

// DueTimeLabel returns the due time or "All day".
func DueTimeLabel(q Quest) string {
	if q.DueTime != "" {
		return q.DueTime
	}
	return "All day"
}

// Kind groups quests by the flavour of work their category describes.
type Kind string

const (
	KindAssignment Kind = "assignments"
	KindTest       Kind = "tests"
	KindProject    Kind = "projects"
	KindOther      Kind = "other"
)

// Label is the heading used for k in day lists.
func (k Kind) Label() string {
	switch k {
	case KindAssignment:
		return "Assignments"
	case KindTest:
		return "Tests"
	case KindProject:
		return "Projects"
	default:
		return "Other"
	}
}

// TypeOf classifies q from its category text, falling back to an
// imported "type" field.
func TypeOf(q Quest) Kind {
	raw := q.Category
	if raw == "" {
		if v, ok := q.Extra["type"]; ok {
			var s string
			if json.Unmarshal(v, &s) == nil {
				raw = s
			}
		}
	}
	raw = strings.ToLower(raw)
	switch {
	case strings.Contains(raw, "assign"):
		return KindAssignment
	case strings.Contains(raw, "test"), strings.Contains(raw, "exam"):
		return KindTest
	case strings.Contains(raw, "project"), strings.Contains(raw, "lab"):
		return KindProject
	default:
		return KindOther
	}
}
