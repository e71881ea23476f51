// Package remove deletes quests.
package remove

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"

	"tableflip.dev/questlog/pkg/app"
	"tableflip.dev/questlog/pkg/printers"
	"tableflip.dev/questlog/pkg/quest"
)

// Remove deletes the quest ID names and echoes it struck through.
type Remove struct {
	Service *app.Service
	ID      string
	JSON    bool
}

func (n *Remove) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not remove, no service")
	}
	q, err := n.Service.Delete(ctx, n.ID)
	if err != nil {
		return err
	}
	if n.JSON {
		return printers.JSON(q)
	}
	strike := color.New(color.CrossedOut, color.Faint)
	_, _ = fmt.Fprintf(color.Output, "removed %s\n", strike.Sprint(quest.DisplayTitle(q)))
	return nil
}
