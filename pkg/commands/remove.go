package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/questlog/pkg/commands/options"
	"tableflip.dev/questlog/pkg/filter"
	"tableflip.dev/questlog/pkg/runner/remove"
)

func addRemove(topLevel *cobra.Command) {
	i := &options.InteractiveOptions{}
	var id string

	cmd := &cobra.Command{
		Use:     "rm <quest id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a quest",
		Example: `
questlog rm 3f2a
questlog rm -i
`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 1 && !i.Interactive {
				return errors.New("requires a quest id")
			}
			id = strings.Join(args, " ")
			return nil
		},
		ValidArgsFunction: questCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), func(s *session) error {
				qid, err := resolveID(cmd, s, id, i.Interactive, "Delete which quest", filter.StatusAll)
				if err != nil {
					return err
				}
				r := remove.Remove{Service: s.Service, ID: qid, JSON: output.JSON}
				return r.Do(cmd.Context())
			})
		},
	}

	options.InteractiveArgs(cmd, i)
	topLevel.AddCommand(cmd)
}
