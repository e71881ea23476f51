package stats

import (
	"testing"
	"time"

	"tableflip.dev/questlog/pkg/quest"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 30, 0, 0, time.Local)
}

func sample() []quest.Quest {
	return []quest.Quest{
		quest.Normalize(map[string]any{"id": "a", "dueDate": "2025-01-10", "estMinutes": 90, "done": false}),
	}
}

func TestForDayEmpty(t *testing.T) {
	if got := ForDay(nil, time.Now()); got != (DayStats{}) {
		t.Fatalf("expected zero stats, got %+v", got)
	}
}

func TestForDayOnDueDate(t *testing.T) {
	got := ForDay(sample(), day(2025, time.January, 10))
	want := DayStats{Count: 1, Overdue: 0, EstimatedHours: 1.5}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestForDayAfterDueDate(t *testing.T) {
	got := ForDay(sample(), day(2025, time.January, 12))
	if got.Overdue != 1 {
		t.Fatalf("expected one overdue quest, got %+v", got)
	}
}

func TestForDayIgnoresDoneAndBadDates(t *testing.T) {
	qs := []quest.Quest{
		quest.Normalize(map[string]any{"dueDate": "2025-01-01", "done": true, "estMinutes": 20}),
		quest.Normalize(map[string]any{"dueDate": "someday", "estMinutes": 25}),
		quest.Normalize(map[string]any{"dueDate": "2025-01-02"}),
	}
	got := ForDay(qs, day(2025, time.January, 10))
	want := DayStats{Count: 3, Overdue: 1, EstimatedHours: 0.8}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestSummarize(t *testing.T) {
	qs := []quest.Quest{
		quest.Normalize(map[string]any{"dueDate": "2025-01-10"}),
		quest.Normalize(map[string]any{"dueDate": "2025-01-10", "done": true}),
		quest.Normalize(map[string]any{"dueDate": "2025-01-08"}),
		quest.Normalize(map[string]any{}),
	}
	got := Summarize(qs, day(2025, time.January, 10))
	want := Global{Total: 4, DueToday: 1, Overdue: 1}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestHeatAndProgress(t *testing.T) {
	qs := []quest.Quest{
		quest.Normalize(map[string]any{"estMinutes": 240, "completion": 50}),
		quest.Normalize(map[string]any{"completion": 25}),
	}
	h := HeatFor(qs)
	if h.Weight != 4 || h.Ratio != 4.0/6 {
		t.Fatalf("unexpected heat %+v", h)
	}
	if p := Progress(qs); p != 38 {
		t.Fatalf("expected rounded average 38, got %d", p)
	}
	if HeatFor(make([]quest.Quest, 9)).Ratio != 1 {
		t.Fatalf("expected saturated ratio")
	}
}
