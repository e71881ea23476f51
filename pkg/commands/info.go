package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/questlog/pkg/commands/options"
	"tableflip.dev/questlog/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	oo := &options.OnOptions{}

	cmd := &cobra.Command{
		Use:     "stats",
		Aliases: []string{"info"},
		Short:   "Show where quests are stored and how loaded the days are",
		Example: `
questlog stats
questlog stats --on tomorrow --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), func(s *session) error {
				date, err := oo.GetOn(s.Service.Engine.Now())
				if err != nil {
					return err
				}
				r := info.Info{Config: s.Config, Service: s.Service, Date: date, JSON: output.JSON}
				return r.Do(cmd.Context())
			})
		},
	}

	options.AddOnArgs(cmd, oo, "Day to summarise.")
	topLevel.AddCommand(cmd)
}
