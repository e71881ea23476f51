// Package ui launches the terminal planner.
package ui

import (
	"context"
	"errors"

	"tableflip.dev/questlog/pkg/app"
	tuiapp "tableflip.dev/questlog/pkg/tui/app"
)

type UI struct {
	Service *app.Service
}

func (d *UI) Do(ctx context.Context) error {
	if d.Service == nil {
		return errors.New("can not start ui, no service")
	}
	return tuiapp.Run(ctx, d.Service)
}
