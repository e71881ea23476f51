// Package calendar renders month and week grids for the terminal UI.
package calendar

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"

	cal "tableflip.dev/questlog/pkg/calendar"
)

// Day describes what a single grid cell shows.
type Day struct {
	Count      int
	Open       int
	Heat       float64
	IsToday    bool
	IsSelected bool
}

// Options controls calendar styling.
type Options struct {
	HeaderStyle   lipgloss.Style
	EmptyStyle    lipgloss.Style
	EntryStyle    lipgloss.Style
	DoneStyle     lipgloss.Style
	TodayStyle    lipgloss.Style
	SelectedStyle lipgloss.Style
	ShowHeader    bool
	ShowHeat      bool
	WeekStart     time.Weekday

	// Heat shading blends from Cool to Hot by the day's load ratio.
	Cool colorful.Color
	Hot  colorful.Color
}

// Render produces a multi-line grid for cells. Days are looked up by ISO date.
func Render(cells []cal.Cell, days map[string]Day, opts Options) string {
	var lines []string
	if opts.ShowHeader {
		lines = append(lines, opts.HeaderStyle.Render(strings.Join(cal.WeekdayLabels(opts.WeekStart), " ")))
	}
	for _, row := range cal.Rows(cells) {
		parts := make([]string, 0, len(row))
		for _, cell := range row {
			if cell.Blank {
				parts = append(parts, opts.EmptyStyle.Render("  "))
				continue
			}
			parts = append(parts, renderDay(days[cell.ISO], cell.Day, opts))
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return strings.Join(lines, "\n")
}

// RenderWeek lays out a week as one line per day with its quest count.
func RenderWeek(cells []cal.Cell, days map[string]Day, opts Options) string {
	lines := make([]string, 0, len(cells))
	for _, cell := range cells {
		info := days[cell.ISO]
		label := fmt.Sprintf("%s %2d", cell.Label(), cell.Day)
		count := ""
		if info.Count > 0 {
			count = fmt.Sprintf("  %d open / %d", info.Open, info.Count)
		}
		lines = append(lines, styleFor(info, opts).Render(label)+opts.EmptyStyle.Render(count))
	}
	return strings.Join(lines, "\n")
}

func renderDay(info Day, day int, opts Options) string {
	return styleFor(info, opts).Render(fmt.Sprintf("%2d", day))
}

func styleFor(info Day, opts Options) lipgloss.Style {
	style := opts.EmptyStyle
	if info.Count > 0 {
		style = opts.EntryStyle
		if info.Open == 0 {
			style = opts.DoneStyle
		}
		if opts.ShowHeat && info.Open > 0 {
			style = style.Background(HeatColor(opts.Cool, opts.Hot, info.Heat))
		}
	}
	if info.IsToday {
		style = style.Inherit(opts.TodayStyle)
	}
	if info.IsSelected {
		style = opts.SelectedStyle.Inherit(style)
	}
	return style
}

// HeatColor blends cool toward hot by ratio, clamped to [0, 1].
func HeatColor(cool, hot colorful.Color, ratio float64) color.Color {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return lipgloss.Color(cool.BlendLab(hot, ratio).Clamped().Hex())
}

// DefaultOptions returns the styling used for calendar rendering.
func DefaultOptions() Options {
	header := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Bold(true)
	empty := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	entry := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	done := lipgloss.NewStyle().Foreground(lipgloss.Color("108")).Strikethrough(true)
	today := lipgloss.NewStyle().Underline(true)
	selected := lipgloss.NewStyle().Background(lipgloss.Color("63")).Foreground(lipgloss.Color("0"))
	cool, _ := colorful.Hex("#3a3f58")
	hot, _ := colorful.Hex("#f2a1b5")
	return Options{
		HeaderStyle:   header,
		EmptyStyle:    empty,
		EntryStyle:    entry,
		DoneStyle:     done,
		TodayStyle:    today,
		SelectedStyle: selected,
		ShowHeader:    true,
		ShowHeat:      true,
		WeekStart:     cal.WeekStart,
		Cool:          cool,
		Hot:           hot,
	}
}
