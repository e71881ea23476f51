package quest

import (
	"encoding/json"
	"fmt"
	"time"
)

// ParseTime reads an RFC3339 timestamp, with or without fractional seconds.
func ParseTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// Timestamp is a store-assigned instant serialised as RFC3339 text.
type Timestamp struct {
	time.Time
}

// Stamp wraps t.
func Stamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t.UTC()}
}

func (t Timestamp) SameDay(then time.Time) bool {
	a, b := t.Local(), then.Local()
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func (t *Timestamp) MarshalJSON() ([]byte, error) {
	if t == nil || t.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(fmt.Sprintf("%q", t.String())), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var timestamp string
	if err := json.Unmarshal(b, &timestamp); err != nil {
		return err
	}
	if timestamp == "" {
		t.Time = time.Time{}
		return nil
	}
	var err error
	t.Time, err = ParseTime(timestamp)
	return err
}

func (t Timestamp) String() string {
	return t.UTC().Format(time.RFC3339Nano)
}

func (t *Timestamp) clone() *Timestamp {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func toTimestamp(v any) *Timestamp {
	switch x := v.(type) {
	case *Timestamp:
		if x == nil || x.IsZero() {
			return nil
		}
		return x.clone()
	case Timestamp:
		if x.IsZero() {
			return nil
		}
		return &x
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return Stamp(x)
	case string:
		if x == "" {
			return nil
		}
		parsed, err := ParseTime(x)
		if err != nil {
			return nil
		}
		return Stamp(parsed)
	case json.RawMessage:
		var ts Timestamp
		if err := json.Unmarshal(x, &ts); err != nil || ts.IsZero() {
			return nil
		}
		return Stamp(ts.Time)
	}
	return nil
}
