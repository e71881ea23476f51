// Package labels manages the course and category sets.
package labels

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"

	"tableflip.dev/questlog/pkg/app"
	"tableflip.dev/questlog/pkg/printers"
	"tableflip.dev/questlog/pkg/quest"
)

// Action is what Labels does with Names.
type Action string

const (
	List   Action = "list"
	Add    Action = "add"
	Remove Action = "remove"
)

// Labels lists, adds or removes courses or categories.
type Labels struct {
	Service *app.Service
	Kind    app.LabelKind
	Action  Action
	Names   []string
	JSON    bool
}

// Label is one row of the JSON listing.
type Label struct {
	Name   string `json:"name"`
	Quests int    `json:"quests"`
	Color  string `json:"color,omitempty"`
}

func (n *Labels) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not manage labels, no service")
	}
	switch n.Action {
	case Add:
		for _, name := range n.Names {
			if err := n.Service.AddLabel(ctx, n.Kind, name); err != nil {
				return err
			}
		}
	case Remove:
		for _, name := range n.Names {
			if err := n.Service.RemoveLabel(ctx, n.Kind, name); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(color.Output, "removed %s %s\n", n.Kind, name)
		}
	case List, "":
	default:
		return fmt.Errorf("unknown label action %q", n.Action)
	}
	return n.list(ctx)
}

func (n *Labels) list(ctx context.Context) error {
	names, counts, err := n.Service.Labels(ctx, n.Kind)
	if err != nil {
		return err
	}
	if n.JSON {
		out := make([]Label, 0, len(names))
		for _, name := range names {
			l := Label{Name: name, Quests: counts[name]}
			if n.Kind == app.Courses {
				l.Color = quest.CourseColor(name)
			}
			out = append(out, l)
		}
		return printers.JSON(out)
	}
	title := "Courses"
	if n.Kind == app.Categories {
		title = "Categories"
	}
	pp := printers.PrettyPrint{}
	pp.Labels(title, names, counts)
	return nil
}
