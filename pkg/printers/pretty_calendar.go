package printers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"

	"tableflip.dev/questlog/pkg/calendar"
	"tableflip.dev/questlog/pkg/filter"
	"tableflip.dev/questlog/pkg/quest"
	"tableflip.dev/questlog/pkg/stats"
)

const width = len("11 12 13 14 15 16 17") // an example week

var (
	coolHeat, _ = colorful.Hex("#3a3f58")
	hotHeat, _  = colorful.Hex("#e4572e")
)

// Heat blends the calendar background for a load ratio in [0, 1].
func Heat(ratio float64) colorful.Color {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return coolHeat.BlendLab(hotHeat, ratio).Clamped()
}

// Month prints the month grid of c. Days with open quests are shaded by
// their load; today is underlined.
func (pp *PrettyPrint) Month(c calendar.Cursor, quests []quest.Quest, courseFilter string, heat bool) {
	now := pp.now()
	byDate := filter.ByDate(filter.Visible(quests), courseFilter)
	today := calendar.TodayISO(now)

	tf := color.New(color.FgWhite, color.Italic)
	m := c.MonthLabel()
	mid := (width - len(m)) / 2
	if mid < 0 {
		mid = 0
	}
	_, _ = tf.Fprintf(color.Output, "%s%s\n", strings.Repeat(" ", mid), m)

	hdr := color.New(color.Faint)
	_, _ = hdr.Fprintln(color.Output, strings.Join(calendar.WeekdayLabels(time.Monday), " "))

	profile := termenv.Ascii
	if Colorful() {
		profile = termenv.ColorProfile()
	}

	cells := calendar.MonthGrid(c.Year, c.Month, time.Monday)
	for _, row := range calendar.Rows(cells) {
		parts := make([]string, 0, len(row))
		for _, cell := range row {
			if cell.Blank {
				parts = append(parts, "  ")
				continue
			}
			s := termenv.String(fmt.Sprintf("%2d", cell.Day))
			day := byDate[cell.ISO]
			open := openCount(day)
			switch {
			case open > 0 && heat:
				s = s.Background(profile.Color(Heat(stats.HeatFor(day).Ratio).Hex())).Bold()
			case open > 0:
				s = s.Bold()
			case len(day) > 0:
				s = s.CrossOut()
			default:
				s = s.Faint()
			}
			if cell.ISO == today {
				s = s.Underline()
			}
			parts = append(parts, s.String())
		}
		_, _ = fmt.Fprintln(color.Output, strings.Join(parts, " "))
	}
	_, _ = fmt.Fprintln(color.Output, "")
}

// Week prints one line per day of the week containing anchor, with the
// day's primary quest.
func (pp *PrettyPrint) Week(anchor time.Time, quests []quest.Quest, courseFilter string, pins filter.Pins) {
	now := pp.now()
	byDate := filter.ByDate(filter.Visible(quests), courseFilter)
	today := calendar.TodayISO(now)

	pp.Title(calendar.WeekLabel(anchor, time.Monday))
	faint := color.New(color.Faint)
	bold := color.New(color.Bold)

	for _, cell := range calendar.WeekGrid(anchor, time.Monday) {
		day := byDate[cell.ISO]
		label := fmt.Sprintf("%s %2d", cell.Label(), cell.Day)
		if cell.ISO == today {
			label = bold.Sprint(label)
		}
		line := faint.Sprint("-")
		if p, ok := filter.Primary(day, pins, cell.ISO); ok {
			line = fmt.Sprintf("%s %s", pp.course(p.Course), truncate.StringWithTail(quest.DisplayTitle(p), titleWidth, "…"))
			if more := len(day) - 1; more > 0 {
				line += faint.Sprintf("  +%d", more)
			}
		}
		_, _ = fmt.Fprintf(color.Output, "%s  %s\n", label, line)
	}
	_, _ = fmt.Fprintln(color.Output, "")
}

// Day prints the quests due on iso with the day's stats.
func (pp *PrettyPrint) Day(iso string, quests []quest.Quest) {
	now := pp.now()
	pp.TitleWithCount(calendar.FormatLong(iso), len(quests))
	pp.Quests(quests...)
	s := stats.ForDay(quests, now)
	_, _ = color.New(color.Faint).Fprintf(color.Output, "%.1fh estimated, %d overdue\n\n", s.EstimatedHours, s.Overdue)
}

func openCount(quests []quest.Quest) int {
	n := 0
	for _, q := range quests {
		if !q.Done {
			n++
		}
	}
	return n
}
