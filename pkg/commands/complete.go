package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/questlog/pkg/commands/options"
	"tableflip.dev/questlog/pkg/filter"
	"tableflip.dev/questlog/pkg/runner/complete"
)

func addDone(topLevel *cobra.Command) {
	addCompleteVerb(topLevel, &cobra.Command{
		Use:     "done <quest id>",
		Aliases: []string{"complete", "completed"},
		Short:   "Mark a quest done",
		Example: `
questlog done 3f2a
questlog done -i
`,
	}, false)
}

func addUndo(topLevel *cobra.Command) {
	addCompleteVerb(topLevel, &cobra.Command{
		Use:     "undo <quest id>",
		Aliases: []string{"reopen"},
		Short:   "Reopen a done quest",
		Example: `
questlog undo 3f2a
`,
	}, true)
}

func addCompleteVerb(topLevel *cobra.Command, cmd *cobra.Command, undo bool) {
	i := &options.InteractiveOptions{}
	var id string

	cmd.Args = func(_ *cobra.Command, args []string) error {
		if len(args) < 1 && !i.Interactive {
			return errors.New("requires a quest id")
		}
		id = strings.Join(args, " ")
		return nil
	}
	cmd.ValidArgsFunction = questCompletions
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return withSession(cmd.Context(), func(s *session) error {
			status := filter.StatusAll
			if undo {
				status = filter.StatusCompleted
			}
			qid, err := resolveID(cmd, s, id, i.Interactive, "Which quest", status)
			if err != nil {
				return err
			}
			r := complete.Complete{Service: s.Service, ID: qid, Undo: undo, JSON: output.JSON}
			return r.Do(cmd.Context())
		})
	}

	options.InteractiveArgs(cmd, i)
	topLevel.AddCommand(cmd)
}

func addProgress(topLevel *cobra.Command) {
	i := &options.InteractiveOptions{}
	var (
		id  string
		pct int
	)

	cmd := &cobra.Command{
		Use:   "progress <quest id> <percent>",
		Short: "Set how far along a quest is",
		Long: `Set a quest's completion from 0 to 100. Reaching 100 marks the quest done
and dropping below 100 reopens it.`,
		Example: `
questlog progress 3f2a 50
questlog progress -i 75
`,
		Args: func(_ *cobra.Command, args []string) error {
			switch {
			case len(args) == 2:
				id = args[0]
			case len(args) == 1 && i.Interactive:
			default:
				return errors.New("requires a quest id and a percentage")
			}
			v, err := strconv.Atoi(strings.TrimSuffix(args[len(args)-1], "%"))
			if err != nil {
				return fmt.Errorf("invalid percentage %q", args[len(args)-1])
			}
			pct = v
			return nil
		},
		ValidArgsFunction: questCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), func(s *session) error {
				qid, err := resolveID(cmd, s, id, i.Interactive, "Which quest", filter.StatusAll)
				if err != nil {
					return err
				}
				r := complete.Complete{Service: s.Service, ID: qid, Progress: &pct, JSON: output.JSON}
				return r.Do(cmd.Context())
			})
		},
	}

	options.InteractiveArgs(cmd, i)
	topLevel.AddCommand(cmd)
}
