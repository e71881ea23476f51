package calendar

import (
	"testing"
	"time"
)

func TestDaysUntilTodayIsZero(t *testing.T) {
	for _, now := range []time.Time{
		time.Date(2025, 1, 10, 0, 0, 0, 0, time.Local),
		time.Date(2025, 1, 10, 23, 59, 59, 0, time.Local),
		time.Date(2025, 3, 30, 12, 0, 0, 0, time.Local),
		time.Now(),
	} {
		days, ok := DaysUntil(TodayISO(now), now)
		if !ok || days != 0 {
			t.Fatalf("DaysUntil(today) at %v = %d, %v", now, days, ok)
		}
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2025, 1, 10, 18, 30, 0, 0, time.Local)
	cases := map[string]int{
		"2025-01-11":           1,
		"2025-01-09":           -1,
		"2025-02-10":           31,
		"2024-12-31":           -10,
		"2025-01-12T08:00:00Z": 2,
	}
	for date, want := range cases {
		got, ok := DaysUntil(date, now)
		if !ok || got != want {
			t.Fatalf("DaysUntil(%q) = %d, %v; want %d", date, got, ok, want)
		}
	}
	for _, bad := range []string{"", "tomorrow", "2025-13-01"} {
		if _, ok := DaysUntil(bad, now); ok {
			t.Fatalf("expected %q to be unknown", bad)
		}
	}
}

func TestMonthGridMondayStart(t *testing.T) {
	// January 2025 starts on a Wednesday.
	cells := MonthGrid(2025, time.January, time.Monday)
	if len(cells) != 2+31 {
		t.Fatalf("expected 33 cells, got %d", len(cells))
	}
	if !cells[0].Blank || !cells[1].Blank || cells[2].Blank {
		t.Fatalf("expected two leading blanks")
	}
	if cells[2].ISO != "2025-01-01" || cells[2].Weekday != time.Wednesday {
		t.Fatalf("unexpected first day %+v", cells[2])
	}
	if last := cells[len(cells)-1]; last.Day != 31 || last.ISO != "2025-01-31" {
		t.Fatalf("unexpected last day %+v", last)
	}

	// June 1 2025 is a Sunday, so a Sunday start needs no padding.
	sunday := MonthGrid(2025, time.June, time.Sunday)
	if len(sunday) != 30 || sunday[0].Blank || sunday[0].ISO != "2025-06-01" {
		t.Fatalf("unexpected sunday grid head %+v (len %d)", sunday[0], len(sunday))
	}
	if monday := MonthGrid(2025, time.June, time.Monday); len(monday) != 36 {
		t.Fatalf("expected six leading blanks for a Monday start, got %d cells", len(monday))
	}
}

func TestDaysIn(t *testing.T) {
	if DaysIn(2024, time.February) != 29 || DaysIn(2025, time.February) != 28 || DaysIn(2025, time.December) != 31 {
		t.Fatalf("unexpected month lengths")
	}
}

func TestWeekGrid(t *testing.T) {
	anchor := time.Date(2025, 1, 1, 15, 0, 0, 0, time.Local)
	cells := WeekGrid(anchor, time.Monday)
	if len(cells) != 7 {
		t.Fatalf("expected 7 cells, got %d", len(cells))
	}
	if cells[0].ISO != "2024-12-30" || cells[0].Label() != "Mon" {
		t.Fatalf("unexpected week start %+v", cells[0])
	}
	if cells[6].ISO != "2025-01-05" || cells[6].Day != 5 {
		t.Fatalf("unexpected week end %+v", cells[6])
	}
}

func TestCursorShiftIsCyclic(t *testing.T) {
	start := Cursor{Month: time.March, Year: 2025, View: ViewMonth}
	c := start
	for i := 0; i < 12; i++ {
		c = c.Shift(1)
	}
	if c.Month != time.March || c.Year != 2026 {
		t.Fatalf("expected March 2026 after twelve steps, got %s %d", c.Month, c.Year)
	}
	for i := 0; i < 12; i++ {
		c = c.Shift(-1)
	}
	if c != start {
		t.Fatalf("expected to return to %+v, got %+v", start, c)
	}

	c = Cursor{Month: time.January, Year: 2025}.Shift(-1)
	if c.Month != time.December || c.Year != 2024 {
		t.Fatalf("expected December 2024, got %s %d", c.Month, c.Year)
	}
	c = Cursor{Month: time.December, Year: 2025}.Shift(1)
	if c.Month != time.January || c.Year != 2026 {
		t.Fatalf("expected January 2026, got %s %d", c.Month, c.Year)
	}
	c = Cursor{Month: time.May, Year: 2025}.Shift(-17)
	if c.Month != time.December || c.Year != 2023 {
		t.Fatalf("expected December 2023, got %s %d", c.Month, c.Year)
	}
}

func TestFormatDue(t *testing.T) {
	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.Local)
	cases := map[string]string{
		"":           "No date",
		"nope":       "Invalid date",
		"2025-01-10": "2025-01-10 - Due today",
		"2025-01-11": "2025-01-11 - 1 day left",
		"2025-01-07": "2025-01-07 - 3 days overdue",
	}
	for in, want := range cases {
		if got := FormatDue(in, now); got != want {
			t.Fatalf("FormatDue(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseWindow(t *testing.T) {
	days, label, err := ParseWindow("")
	if err != nil || days != 7 || label != "1w" {
		t.Fatalf("default window: got %d %q %v", days, label, err)
	}
	days, label, err = ParseWindow("1w 3d")
	if err != nil || days != 10 || label != "1w3d" {
		t.Fatalf("composite window: got %d %q %v", days, label, err)
	}
	for _, bad := range []string{"noop", "3h", "0d"} {
		if _, _, err := ParseWindow(bad); err == nil {
			t.Fatalf("ParseWindow(%q): expected error", bad)
		}
	}
}

func TestWindowStart(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	got := WindowStart(now, 7)
	if FormatISO(got) != "2025-03-04" || got.Hour() != 0 {
		t.Fatalf("WindowStart = %v", got)
	}
}
