package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/questlog/pkg/commands/options"
	"tableflip.dev/questlog/pkg/filter"
	"tableflip.dev/questlog/pkg/runner/edit"
)

func addEdit(topLevel *cobra.Command) {
	qo := &options.QuestOptions{}
	i := &options.InteractiveOptions{}
	var id string

	cmd := &cobra.Command{
		Use:   "edit <quest id>",
		Short: "Change a quest's fields",
		Example: `
questlog edit 3f2a --due 2025-02-03 --est 120
questlog edit 3f2a --title "Lab report (final)" --course Chem
`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 1 {
				return errors.New("too many arguments, quote the id")
			}
			if len(args) == 0 && !i.Interactive {
				return errors.New("requires a quest id")
			}
			if len(args) == 1 {
				id = args[0]
			}
			return nil
		},
		ValidArgsFunction: questCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), func(s *session) error {
				due, err := options.ResolveDate(qo.Due, s.Service.Engine.Now())
				if err != nil {
					return err
				}
				qid, err := resolveID(cmd, s, id, i.Interactive, "Edit which quest", filter.StatusAll)
				if err != nil {
					return err
				}
				r := edit.Edit{
					Service: s.Service,
					ID:      qid,
					Patch:   qo.Patch(cmd.Flags(), due),
					JSON:    output.JSON,
				}
				return r.Do(cmd.Context())
			})
		},
	}

	options.AddTitleArg(cmd, qo)
	options.AddQuestArgs(cmd, qo)
	options.InteractiveArgs(cmd, i)
	registerLabelCompletions(cmd)

	topLevel.AddCommand(cmd)
}
