package calendar

import (
	"fmt"
	"strings"
	"time"
)

// View is the calendar layout mode.
type View string

const (
	ViewMonth View = "month"
	ViewWeek  View = "week"
)

// ParseView accepts "month" or "week" in any case.
func ParseView(s string) (View, error) {
	switch View(strings.ToLower(strings.TrimSpace(s))) {
	case ViewMonth:
		return ViewMonth, nil
	case ViewWeek:
		return ViewWeek, nil
	}
	return "", fmt.Errorf("calendar: unknown view %q", s)
}

// AllCourses is the course filter value that shows every course.
const AllCourses = "all"

// Cursor is the calendar's navigation position.
type Cursor struct {
	Month        time.Month
	Year         int
	View         View
	CourseFilter string
}

// NewCursor positions a cursor on now's month.
func NewCursor(now time.Time, view View) Cursor {
	if view == "" {
		view = ViewMonth
	}
	return Cursor{Month: now.Month(), Year: now.Year(), View: view, CourseFilter: AllCourses}
}

// Shift moves the cursor by delta months, carrying into the year.
func (c Cursor) Shift(delta int) Cursor {
	idx := int(c.Month) - 1 + delta
	c.Year += floorDiv(idx, 12)
	c.Month = time.Month(idx - floorDiv(idx, 12)*12 + 1)
	return c
}

// Seek points the cursor at the month containing t.
func (c Cursor) Seek(t time.Time) Cursor {
	c.Month = t.Month()
	c.Year = t.Year()
	return c
}

// First returns the first day of the cursor's month.
func (c Cursor) First() time.Time {
	return time.Date(c.Year, c.Month, 1, 0, 0, 0, 0, time.UTC)
}

// MonthLabel renders "January 2025".
func (c Cursor) MonthLabel() string {
	return fmt.Sprintf("%s %d", c.Month, c.Year)
}

// WeekLabel renders the heading for the week containing anchor.
func WeekLabel(anchor time.Time, start time.Weekday) string {
	first := StartOfWeek(anchor, start)
	last := first.AddDate(0, 0, 6)
	return fmt.Sprintf("Week of %s %d - %s %d, %d",
		first.Month(), first.Day(), last.Month(), last.Day(), last.Year())
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
