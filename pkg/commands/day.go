package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/questlog/pkg/commands/options"
	"tableflip.dev/questlog/pkg/filter"
	"tableflip.dev/questlog/pkg/runner/day"
)

func addDay(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	var kind string

	cmd := &cobra.Command{
		Use:   "day [date]",
		Short: "Show the quests due on a day",
		Example: `
questlog day
questlog day tomorrow
questlog day 2025-02-01 --filter tests
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := filter.ParseDayFilter(kind)
			if err != nil {
				return err
			}
			return withSession(cmd.Context(), func(s *session) error {
				date := ""
				if len(args) == 1 {
					if date, err = options.ResolveDate(args[0], s.Service.Engine.Now()); err != nil {
						return err
					}
				}
				r := day.Day{Service: s.Service, Date: date, Filter: f, ShowID: io.ShowID, JSON: output.JSON}
				return r.Do(cmd.Context())
			})
		},
	}

	cmd.Flags().StringVarP(&kind, "filter", "f", string(filter.DayAll), "Only assignments, tests, projects or other.")
	options.AddShowIDArgs(cmd, io)
	_ = cmd.RegisterFlagCompletionFunc("filter", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		out := make([]string, len(filter.DayFilters))
		for i, f := range filter.DayFilters {
			out[i] = string(f)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})

	topLevel.AddCommand(cmd)
}
