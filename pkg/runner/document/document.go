// Package document moves whole planner documents in and out of the store.
package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"tableflip.dev/questlog/pkg/app"
	"tableflip.dev/questlog/pkg/state"
)

// Stdio is the path that means stdin for Import and stdout for Export.
const Stdio = "-"

// Import replaces the stored document with the one read from Path.
type Import struct {
	Service *app.Service
	Path    string
	In      io.Reader
}

func (n *Import) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not import, no service")
	}
	var (
		data []byte
		err  error
	)
	if n.Path == "" || n.Path == Stdio {
		in := n.In
		if in == nil {
			in = os.Stdin
		}
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(n.Path)
	}
	if err != nil {
		return err
	}

	doc, err := state.DecodeDocument(data)
	if err != nil {
		return err
	}
	count, err := n.Service.Import(ctx, doc)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(color.Output, "imported %d quests\n", count)
	return nil
}

// Export writes the stored document to Path.
type Export struct {
	Service *app.Service
	Path    string
	Out     io.Writer
}

func (n *Export) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not export, no service")
	}
	data, err := n.Service.Export(ctx)
	if err != nil {
		return err
	}
	if n.Path == "" || n.Path == Stdio {
		out := n.Out
		if out == nil {
			out = color.Output
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	return os.WriteFile(n.Path, append(data, '\n'), 0o644)
}
