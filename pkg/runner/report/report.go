// Package report prints the quests completed within a recent window.
package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"

	"tableflip.dev/questlog/pkg/app"
	"tableflip.dev/questlog/pkg/calendar"
	"tableflip.dev/questlog/pkg/printers"
	"tableflip.dev/questlog/pkg/quest"
)

// Report groups completions of the last Window (for example "3d" or
// "1w2d") by course.
type Report struct {
	Service *app.Service
	Window  string
	JSON    bool
}

func (n *Report) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not report, no service")
	}
	days, label, err := calendar.ParseWindow(n.Window)
	if err != nil {
		return err
	}
	until := n.Service.Engine.Now()
	since := calendar.WindowStart(until, days)

	result, err := n.Service.Report(ctx, since, until)
	if err != nil {
		return err
	}
	if n.JSON {
		return printers.JSON(result)
	}
	render(result, label)
	return nil
}

func render(result app.ReportResult, label string) {
	bold := color.New(color.Bold, color.Underline)
	faint := color.New(color.Faint)

	_, _ = bold.Fprintf(color.Output, "Report · last %s", label)
	_, _ = faint.Fprintf(color.Output, " (%s → %s)\n",
		result.Since.Local().Format("2006-01-02"), result.Until.Local().Format("2006-01-02 15:04"))

	if result.Total == 0 {
		_, _ = fmt.Fprintln(color.Output, "  No completed quests in this window.")
		_, _ = fmt.Fprintln(color.Output, "")
		return
	}

	for _, section := range result.Sections {
		course := section.Course
		if course == "" {
			course = "No course"
		}
		_, _ = fmt.Fprintf(color.Output, "\n%s", color.New(color.Bold).Sprint(course))
		_, _ = faint.Fprintf(color.Output, "  %s\n", reward(section.Reward))
		for _, item := range section.Quests {
			_, _ = fmt.Fprintf(color.Output, "  ✓ %s", quest.DisplayTitle(item.Quest))
			_, _ = faint.Fprintf(color.Output, "  (completed %s)\n", item.CompletedAt.Local().Format("2006-01-02 15:04"))
		}
	}
	_, _ = fmt.Fprintf(color.Output, "\n%d completed · %s\n\n", result.Total, reward(result.Reward))
}

func reward(r quest.Reward) string {
	return fmt.Sprintf("%g XP · %g coins", r.SX, r.Coins)
}
