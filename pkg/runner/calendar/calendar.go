// Package calendar prints month and week calendars of quest load.
package calendar

import (
	"context"
	"errors"
	"time"

	"tableflip.dev/questlog/pkg/app"
	"tableflip.dev/questlog/pkg/calendar"
	"tableflip.dev/questlog/pkg/printers"
)

// Calendar renders the month Cursor points at, or the week containing
// Anchor when Cursor.View is week.
type Calendar struct {
	Service *app.Service
	Cursor  calendar.Cursor
	Anchor  time.Time
	Heat    bool
}

func (n *Calendar) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not show calendar, no service")
	}
	doc, err := n.Service.Document()
	if err != nil {
		return err
	}
	now := n.Service.Engine.Now()
	if n.Cursor.Year == 0 {
		n.Cursor = calendar.NewCursor(now, n.Cursor.View)
	}
	if n.Cursor.CourseFilter == "" {
		n.Cursor.CourseFilter = calendar.AllCourses
	}

	pp := printers.PrettyPrint{Now: now}
	if n.Cursor.View == calendar.ViewWeek {
		anchor := n.Anchor
		if anchor.IsZero() {
			anchor = now
		}
		pp.Week(anchor, doc.Quests, n.Cursor.CourseFilter, n.Service.Engine.Snapshot().UI.Pins)
		return nil
	}
	pp.Month(n.Cursor, doc.Quests, n.Cursor.CourseFilter, n.Heat)
	return nil
}
