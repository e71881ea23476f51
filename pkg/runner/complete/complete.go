// Package complete moves quests along their progress.
package complete

import (
	"context"
	"errors"

	"tableflip.dev/questlog/pkg/app"
	"tableflip.dev/questlog/pkg/printers"
	"tableflip.dev/questlog/pkg/quest"
)

// Complete finishes a quest. Progress sets a completion percentage instead
// and Undo reopens the quest.
type Complete struct {
	Service  *app.Service
	ID       string
	Progress *int
	Undo     bool
	JSON     bool
}

func (n *Complete) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not complete, no service")
	}

	var (
		q   quest.Quest
		err error
	)
	switch {
	case n.Progress != nil:
		q, err = n.Service.SetProgress(ctx, n.ID, *n.Progress)
	case n.Undo:
		q, err = n.Service.Reopen(ctx, n.ID)
	default:
		q, err = n.Service.Complete(ctx, n.ID)
	}
	if err != nil {
		return err
	}
	if n.JSON {
		return printers.JSON(q)
	}
	pp := printers.PrettyPrint{Now: n.Service.Engine.Now()}
	pp.Quests(q)
	return nil
}
