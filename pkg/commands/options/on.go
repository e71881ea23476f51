package options

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/questlog/pkg/calendar"
)

const layoutShort = "1/2"

// OnOptions selects a calendar date.
type OnOptions struct {
	OnString string
}

func AddOnArgs(cmd *cobra.Command, o *OnOptions, usage string) {
	cmd.Flags().StringVar(&o.OnString, "on", "", usage+
		` Accepts "today", "tomorrow", --on="2025-02-28" or --on="2/28".`)
}

// GetOn resolves the flag to an ISO date, or "" when unset.
func (o *OnOptions) GetOn(now time.Time) (string, error) {
	return ResolveDate(o.OnString, now)
}

// ResolveDate turns the date forms the CLI accepts into an ISO date.
func ResolveDate(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return "", nil
	case "today":
		return calendar.TodayISO(now), nil
	case "tomorrow":
		return calendar.AddDays(calendar.TodayISO(now), 1), nil
	case "yesterday":
		return calendar.AddDays(calendar.TodayISO(now), -1), nil
	}
	if t, ok := calendar.ParseISO(s); ok {
		return calendar.FormatISO(t), nil
	}
	t, err := time.Parse(layoutShort, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q, use YYYY-MM-DD or M/D", s)
	}
	t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	// 1/3 said on 12/5 means next January, not eleven months ago.
	if t.Before(calendar.Midnight(now).AddDate(0, 0, -1)) {
		t = t.AddDate(1, 0, 0)
	}
	return calendar.FormatISO(t), nil
}
