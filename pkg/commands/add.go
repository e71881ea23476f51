package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/questlog/pkg/app"
	"tableflip.dev/questlog/pkg/commands/options"
	"tableflip.dev/questlog/pkg/prompt"
	"tableflip.dev/questlog/pkg/quest"
	"tableflip.dev/questlog/pkg/runner/add"
)

func addAdd(topLevel *cobra.Command) {
	qo := &options.QuestOptions{}
	io := &options.IDOptions{}
	i := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a quest",
		Example: `
questlog add Lab report --course Bio --category Assignment --due 2025-02-01 --est 90
questlog add Read chapter 4 --due tomorrow
questlog add -i
`,
		Args: func(cmd *cobra.Command, args []string) error {
			qo.Title = strings.Join(args, " ")
			if qo.Title == "" && !i.Interactive {
				return errors.New("requires a quest title")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), func(s *session) error {
				now := s.Service.Engine.Now()
				due, err := options.ResolveDate(qo.Due, now)
				if err != nil {
					return err
				}
				if i.Interactive {
					in, out := cmd.InOrStdin(), cmd.OutOrStdout()
					if qo.Title == "" {
						if qo.Title, err = prompt.String(in, out, "Title", "", true); err != nil {
							return err
						}
					}
					if qo.Course == "" {
						if qo.Course, err = prompt.String(in, out, "Course", "", false); err != nil {
							return err
						}
					}
					if due == "" {
						if due, err = prompt.Date(in, out, "Due", "", now); err != nil {
							return err
						}
					}
				}
				r := add.Add{
					Service: s.Service,
					ShowID:  io.ShowID,
					JSON:    output.JSON,
					Options: app.AddOptions{
						Title:      qo.Title,
						Course:     qo.Course,
						Category:   qo.Category,
						DueDate:    due,
						DueTime:    qo.Time,
						EstMinutes: qo.Est,
						Notes:      qo.Notes,
						Link:       qo.Link,
						FilePath:   qo.File,
						Reward:     quest.Reward{SX: qo.SX, Coins: qo.Coins},
					},
				}
				return r.Do(cmd.Context())
			})
		},
	}

	options.AddQuestArgs(cmd, qo)
	options.AddShowIDArgs(cmd, io)
	options.InteractiveArgs(cmd, i)
	registerLabelCompletions(cmd)

	topLevel.AddCommand(cmd)
}
