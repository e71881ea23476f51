// Package calendar holds the date arithmetic behind the calendar views:
// day offsets, month and week grids, and the navigation cursor.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// LayoutISO is the calendar date layout used throughout quest documents.
const LayoutISO = "2006-01-02"

// Undated sorts after every real due date.
const Undated = "9999-12-31"

// Midnight returns the start of t's local calendar day.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// TodayISO formats now's calendar date.
func TodayISO(now time.Time) string {
	return now.Format(LayoutISO)
}

// Today is TodayISO for the wall clock.
func Today() string {
	return TodayISO(time.Now())
}

// ParseISO reads a due date. Full RFC3339 timestamps are accepted and
// reduced to their date part.
func ParseISO(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(LayoutISO, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// FormatISO formats the calendar date of t.
func FormatISO(t time.Time) string {
	return t.Format(LayoutISO)
}

// DaysUntil returns the signed number of calendar days from now's date to
// date. ok is false when date is empty or unparsable. Both sides are
// compared as calendar dates, so today is always exactly zero.
func DaysUntil(date string, now time.Time) (int, bool) {
	due, ok := ParseISO(date)
	if !ok {
		return 0, false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	diff := due.Sub(today)
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return days, true
}

// AddDays shifts an ISO date by n days. Unparsable input is returned as is.
func AddDays(date string, n int) string {
	t, ok := ParseISO(date)
	if !ok {
		return date
	}
	return FormatISO(t.AddDate(0, 0, n))
}

// FormatDue renders a due date with its distance from today.
func FormatDue(date string, now time.Time) string {
	if date == "" {
		return "No date"
	}
	t, ok := ParseISO(date)
	if !ok {
		return "Invalid date"
	}
	left, _ := DaysUntil(date, now)
	abs := left
	if abs < 0 {
		abs = -abs
	}
	var label string
	switch {
	case left == 0:
		label = "Due today"
	case left > 0:
		label = fmt.Sprintf("%d %s left", abs, plural(abs, "day"))
	default:
		label = fmt.Sprintf("%d %s overdue", abs, plural(abs, "day"))
	}
	return fmt.Sprintf("%s - %s", FormatISO(t), label)
}

// FormatLong renders "Monday, January 2, 2006", or a placeholder.
func FormatLong(date string) string {
	t, ok := ParseISO(date)
	if !ok {
		return "No date selected"
	}
	return t.Format("Monday, January 2, 2006")
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
