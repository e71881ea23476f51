package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/questlog/pkg/app"
	"tableflip.dev/questlog/pkg/runner/labels"
)

func addLabels(topLevel *cobra.Command) {
	addLabelKind(topLevel, app.Courses, "course", []string{"courses"})
	addLabelKind(topLevel, app.Categories, "category", []string{"categories"})
}

func addLabelKind(topLevel *cobra.Command, kind app.LabelKind, use string, aliases []string) {
	cmd := &cobra.Command{
		Use:     use,
		Aliases: aliases,
		Short:   fmt.Sprintf("List, add or remove %s labels", use),
		Example: fmt.Sprintf(`
questlog %[1]s
questlog %[1]s add Chemistry
questlog %[1]s rm Chemistry
`, use),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLabels(cmd, kind, labels.List, nil)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: fmt.Sprintf("List %s labels with their quest counts", use),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLabels(cmd, kind, labels.List, nil)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>...",
		Short: fmt.Sprintf("Add %s labels", use),
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires a name")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLabels(cmd, kind, labels.Add, args)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "rm <name>...",
		Aliases: []string{"remove"},
		Short:   fmt.Sprintf("Remove %s labels; quests keep their value", use),
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires a name")
			}
			return nil
		},
		ValidArgsFunction: labelCompletions(kind),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLabels(cmd, kind, labels.Remove, args)
		},
	})

	topLevel.AddCommand(cmd)
}

func runLabels(cmd *cobra.Command, kind app.LabelKind, action labels.Action, names []string) error {
	return withSession(cmd.Context(), func(s *session) error {
		r := labels.Labels{Service: s.Service, Kind: kind, Action: action, Names: names, JSON: output.JSON}
		return r.Do(cmd.Context())
	})
}
