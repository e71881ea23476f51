// Package add creates quests from the command line.
package add

import (
	"context"
	"errors"

	"tableflip.dev/questlog/pkg/app"
	"tableflip.dev/questlog/pkg/calendar"
	"tableflip.dev/questlog/pkg/printers"
)

// Add stores a new quest and prints the day it landed on.
type Add struct {
	Service *app.Service
	Options app.AddOptions
	ShowID  bool
	JSON    bool
}

func (n *Add) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not add, no service")
	}
	if n.Options.DueDate == "today" {
		n.Options.DueDate = calendar.TodayISO(n.Service.Engine.Now())
	}

	q, err := n.Service.Add(ctx, n.Options)
	if err != nil {
		return err
	}
	if n.JSON {
		return printers.JSON(q)
	}

	pp := printers.PrettyPrint{ShowID: n.ShowID, Now: n.Service.Engine.Now()}
	if q.DueDate == "" {
		pp.Quest(q)
		return nil
	}
	day, err := n.Service.Day(ctx, q.DueDate, "")
	if err != nil {
		return err
	}
	pp.Day(q.DueDate, day)
	return nil
}
