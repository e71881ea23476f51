package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/questlog/pkg/calendar"
	"tableflip.dev/questlog/pkg/commands/options"
	runner "tableflip.dev/questlog/pkg/runner/calendar"
)

func addCalendar(topLevel *cobra.Command) {
	oo := &options.OnOptions{}
	var (
		month  int
		year   int
		week   bool
		course string
		noHeat bool
	)

	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Show a month or week of quests",
		Long: `Show the quest load of a month as a heat map, or a week with each day's
featured quest.`,
		Example: `
questlog calendar
questlog calendar --month 3 --year 2025 --course Bio
questlog calendar --week --on 2025-03-12
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if month < 0 || month > 12 {
				return fmt.Errorf("invalid month %d", month)
			}
			return withSession(cmd.Context(), func(s *session) error {
				now := s.Service.Engine.Now()
				on, err := oo.GetOn(now)
				if err != nil {
					return err
				}
				anchor := now
				if t, ok := calendar.ParseISO(on); ok {
					anchor = t
				}

				view := calendar.ViewMonth
				if week {
					view = calendar.ViewWeek
				}
				cursor := calendar.NewCursor(anchor, view)
				if month > 0 {
					cursor.Month = time.Month(month)
				}
				if year > 0 {
					cursor.Year = year
				}
				if course != "" {
					cursor.CourseFilter = course
				}

				r := runner.Calendar{
					Service: s.Service,
					Cursor:  cursor,
					Anchor:  anchor,
					Heat:    !noHeat,
				}
				return r.Do(cmd.Context())
			})
		},
	}

	cmd.Flags().IntVar(&month, "month", 0, "Month to show, 1-12.")
	cmd.Flags().IntVar(&year, "year", 0, "Year to show.")
	cmd.Flags().BoolVarP(&week, "week", "w", false, "Show a week instead of a month.")
	cmd.Flags().StringVarP(&course, "course", "c", "", "Only count quests of this course.")
	cmd.Flags().BoolVar(&noHeat, "no-heat", false, "Turn off heat shading.")
	options.AddOnArgs(cmd, oo, "Date the calendar opens on.")
	_ = cmd.RegisterFlagCompletionFunc("course", courseCompletions)

	topLevel.AddCommand(cmd)
}
