package quest

import (
	"encoding/json"
	"errors"
)

type document struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Course      string     `json:"course"`
	Category    string     `json:"category"`
	Notes       string     `json:"notes"`
	Link        string     `json:"link"`
	FilePath    string     `json:"filePath"`
	DueDate     string     `json:"dueDate"`
	DueTime     string     `json:"dueTime"`
	EstMinutes  *int       `json:"estMinutes"`
	Completion  int        `json:"completion"`
	Done        bool       `json:"done"`
	Reward      Reward     `json:"reward"`
	CreatedAt   *Timestamp `json:"createdAt,omitempty"`
	UpdatedAt   *Timestamp `json:"updatedAt,omitempty"`
	CompletedAt *Timestamp `json:"completedAt,omitempty"`
}

// MarshalJSON writes the canonical fields followed by any pass-through
// fields the record was loaded with.
func (q Quest) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(document{
		ID:          q.ID,
		Title:       q.Title,
		Course:      q.Course,
		Category:    q.Category,
		Notes:       q.Notes,
		Link:        q.Link,
		FilePath:    q.FilePath,
		DueDate:     q.DueDate,
		DueTime:     q.DueTime,
		EstMinutes:  q.EstMinutes,
		Completion:  q.Completion,
		Done:        q.Done,
		Reward:      q.Reward,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
		CompletedAt: q.CompletedAt,
	})
	if err != nil || len(q.Extra) == 0 {
		return b, err
	}
	merged := make(map[string]json.RawMessage, len(q.Extra)+len(known))
	if err := json.Unmarshal(b, &merged); err != nil {
		return nil, err
	}
	for k, v := range q.Extra {
		if _, taken := merged[k]; !taken {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// UnmarshalJSON reads any JSON object and normalises it.
func (q *Quest) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("quest: expected a JSON object")
	}
	*q = Normalize(RawMap(fields))
	return nil
}

// RawMap widens decoded JSON fields into the loose map Normalize accepts.
func RawMap(fields map[string]json.RawMessage) map[string]any {
	m := make(map[string]any, len(fields))
	for k, v := range fields {
		m[k] = v
	}
	return m
}
