// Package get lists quests or shows a single one.
package get

import (
	"context"
	"errors"

	"tableflip.dev/questlog/pkg/app"
	"tableflip.dev/questlog/pkg/filter"
	"tableflip.dev/questlog/pkg/printers"
)

// Get prints the quests matching Filters, or the quest ID names when set.
type Get struct {
	Service *app.Service
	Filters filter.Filters
	ID      string
	ShowID  bool
	JSON    bool
}

func (n *Get) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not get, no service")
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID, Now: n.Service.Engine.Now()}

	if n.ID != "" {
		q, err := n.Service.Resolve(ctx, n.ID)
		if err != nil {
			return err
		}
		if n.JSON {
			return printers.JSON(q)
		}
		pp.Quest(q)
		return nil
	}

	quests, err := n.Service.Quests(ctx, n.Filters)
	if err != nil {
		return err
	}
	if n.JSON {
		return printers.JSON(quests)
	}
	pp.TitleWithCount(string(n.Filters.Status), len(quests))
	pp.Quests(quests...)
	pp.NewLine()
	return nil
}
