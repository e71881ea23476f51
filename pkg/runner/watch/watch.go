// Package watch follows changes to the quest store.
package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/questlog/pkg/app"
	"tableflip.dev/questlog/pkg/engine"
	"tableflip.dev/questlog/pkg/printers"
	"tableflip.dev/questlog/pkg/stats"
)

// Watch reloads on every store change and prints the new totals until ctx
// is cancelled.
type Watch struct {
	Service *app.Service
	JSON    bool
}

type change struct {
	At     time.Time    `json:"at"`
	Phase  engine.Phase `json:"phase"`
	Global stats.Global `json:"global"`
}

func (n *Watch) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not watch, no service")
	}
	if err := n.Service.Watch(ctx); err != nil {
		return err
	}
	events := n.Service.Events()
	_, _ = color.New(color.Faint).Fprintln(color.Output, "watching for changes, ctrl+c to stop")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Phase != engine.PhaseLoaded {
				continue
			}
			if err := n.print(ctx, ev); err != nil {
				return err
			}
		}
	}
}

func (n *Watch) print(ctx context.Context, ev engine.Event) error {
	sum, err := n.Service.Stats(ctx, "")
	if err != nil {
		return err
	}
	now := n.Service.Engine.Now()
	if n.JSON {
		return printers.JSON(change{At: now, Phase: ev.Phase, Global: sum.Global})
	}
	_, _ = color.New(color.Faint).Fprintf(color.Output, "%s ", now.Local().Format("15:04:05"))
	_, _ = fmt.Fprintf(color.Output, "%d quests · %d due today · %d overdue\n",
		sum.Global.Total, sum.Global.DueToday, sum.Global.Overdue)
	return nil
}
