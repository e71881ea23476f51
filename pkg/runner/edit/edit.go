// Package edit changes the fields of an existing quest.
package edit

import (
	"context"
	"errors"

	"tableflip.dev/questlog/pkg/app"
	"tableflip.dev/questlog/pkg/printers"
)

// Edit merges Patch into the quest ID names. Keys are quest field names.
type Edit struct {
	Service *app.Service
	ID      string
	Patch   map[string]any
	JSON    bool
}

func (n *Edit) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not edit, no service")
	}
	if len(n.Patch) == 0 {
		return errors.New("nothing to change")
	}
	q, err := n.Service.Edit(ctx, n.ID, n.Patch)
	if err != nil {
		return err
	}
	if n.JSON {
		return printers.JSON(q)
	}
	pp := printers.PrettyPrint{Now: n.Service.Engine.Now()}
	pp.Quest(q)
	return nil
}
