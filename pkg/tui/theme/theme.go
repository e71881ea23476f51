package theme

import (
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/questlog/pkg/tui/components/calendar"
)

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Header   HeaderTheme
	Footer   FooterTheme
	Panel    PanelTheme
	Day      DayTheme
	Calendar calendar.Options
}

// HeaderTheme styles the top line.
type HeaderTheme struct {
	App   lipgloss.Style
	Label lipgloss.Style
}

// FooterTheme groups styles used by the bottom status bar.
type FooterTheme struct {
	Help    lipgloss.Style
	Status  lipgloss.Style
	Warning lipgloss.Style
}

// PanelTheme styles framed panels and headings.
type PanelTheme struct {
	Frame lipgloss.Style
	Title lipgloss.Style
	Body  lipgloss.Style
}

// DayTheme styles the quest list of the selected day.
type DayTheme struct {
	Primary  lipgloss.Style
	Selected lipgloss.Style
	Done     lipgloss.Style
	Overdue  lipgloss.Style
	Muted    lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	return Theme{
		Header: HeaderTheme{
			App:   lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
			Label: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		},
		Footer: FooterTheme{
			Help:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		},
		Panel: PanelTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(0, 1),
			Title: lipgloss.NewStyle().Bold(true),
			Body:  lipgloss.NewStyle(),
		},
		Day: DayTheme{
			Primary:  lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
			Selected: lipgloss.NewStyle().Reverse(true),
			Done:     lipgloss.NewStyle().Foreground(lipgloss.Color("108")).Strikethrough(true),
			Overdue:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
			Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true),
		},
		Calendar: calendar.DefaultOptions(),
	}
}
