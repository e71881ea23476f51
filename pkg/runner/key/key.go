// Package key prints the terminal UI's key bindings.
package key

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	tuiapp "tableflip.dev/questlog/pkg/tui/app"
)

// Key prints one table per group of bindings.
type Key struct{}

func (k *Key) Do(ctx context.Context) error {
	bold := color.New(color.Bold)
	_, _ = fmt.Fprintln(color.Output, "")

	var tbl *uitable.Table
	section := ""
	for _, b := range tuiapp.Legend() {
		if b.Section != section {
			if tbl != nil {
				_, _ = fmt.Fprintln(color.Output, tbl)
				_, _ = fmt.Fprintln(color.Output, "")
			}
			section = b.Section
			tbl = uitable.New()
			tbl.Separator = "  "
			tbl.AddRow(bold.Sprint(section), bold.Sprint("Action"))
			tbl.RightAlign(0)
		}
		tbl.AddRow(b.Keys, b.Desc)
	}
	if tbl != nil {
		_, _ = fmt.Fprintln(color.Output, tbl)
	}
	_, _ = fmt.Fprintln(color.Output, "")
	return nil
}
