package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/questlog/pkg/calendar"
	"tableflip.dev/questlog/pkg/runner/report"
)

func addReport(topLevel *cobra.Command) {
	var last string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Display recently completed quests grouped by course",
		Long: `Report lists completed quests grouped by course within the specified window,
with the experience and coins they earned.

Examples:
  questlog report
  questlog report --last 3d
  questlog report --last 1w2d`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, _, err := calendar.ParseWindow(last); err != nil {
				return output.HandleError(err)
			}
			return withSession(cmd.Context(), func(s *session) error {
				r := report.Report{Service: s.Service, Window: last, JSON: output.JSON}
				return r.Do(cmd.Context())
			})
		},
	}

	cmd.Flags().StringVar(&last, "last", calendar.DefaultWindow, "time window to include (for example 3d, 1w)")
	topLevel.AddCommand(cmd)
}
