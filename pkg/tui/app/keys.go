package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/key"
)

type keyMap struct {
	PrevDay    key.Binding
	NextDay    key.Binding
	PrevWeek   key.Binding
	NextWeek   key.Binding
	PrevMonth  key.Binding
	NextMonth  key.Binding
	ToggleView key.Binding
	Today      key.Binding

	NextQuest  key.Binding
	PrevQuest  key.Binding
	Progress   key.Binding
	Regress    key.Binding
	ToggleDone key.Binding
	Pin        key.Binding
	Add        key.Binding
	Delete     key.Binding

	DayFilter    key.Binding
	CourseFilter key.Binding
	Heatmap      key.Binding

	Planner key.Binding
	Quests  key.Binding
	Status  key.Binding
	Sort    key.Binding
	Open    key.Binding

	Help key.Binding
	Quit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PrevDay:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous day")),
		NextDay:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next day")),
		PrevWeek:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous week")),
		NextWeek:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next week")),
		PrevMonth:  key.NewBinding(key.WithKeys("pgup", "["), key.WithHelp("pgup/[", "previous month or week")),
		NextMonth:  key.NewBinding(key.WithKeys("pgdown", "]"), key.WithHelp("pgdn/]", "next month or week")),
		ToggleView: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "toggle month and week view")),
		Today:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "jump to today")),

		NextQuest:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "select next quest")),
		PrevQuest:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "select previous quest")),
		Progress:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "raise completion a step")),
		Regress:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "lower completion a step")),
		ToggleDone: key.NewBinding(key.WithKeys("space", "x"), key.WithHelp("space/x", "toggle done")),
		Pin:        key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "feature quest on its day")),
		Add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add a quest on the selected day")),
		Delete:     key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete the selected quest")),

		DayFilter:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "cycle day filter")),
		CourseFilter: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cycle calendar course")),
		Heatmap:      key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "toggle heatmap")),

		Planner: key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "planner view")),
		Quests:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "quest list view")),
		Status:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle quest list status")),
		Sort:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "cycle quest list order")),
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open or close quest details")),

		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) sections() []section {
	return []section{
		{"Calendar", []key.Binding{k.PrevDay, k.NextDay, k.PrevWeek, k.NextWeek, k.PrevMonth, k.NextMonth, k.ToggleView, k.Today, k.CourseFilter, k.Heatmap}},
		{"Quests", []key.Binding{k.NextQuest, k.PrevQuest, k.Progress, k.Regress, k.ToggleDone, k.Pin, k.Add, k.Delete, k.DayFilter}},
		{"Views", []key.Binding{k.Planner, k.Quests, k.Status, k.Sort, k.Open}},
		{"General", []key.Binding{k.Help, k.Quit}},
	}
}

type section struct {
	title    string
	bindings []key.Binding
}

// Binding is one row of the key legend.
type Binding struct {
	Section string
	Keys    string
	Desc    string
}

// Legend lists every key binding of the terminal UI in display order.
func Legend() []Binding {
	var out []Binding
	for _, s := range defaultKeyMap().sections() {
		for _, b := range s.bindings {
			h := b.Help()
			out = append(out, Binding{Section: s.title, Keys: h.Key, Desc: h.Desc})
		}
	}
	return out
}

func helpMarkdown() string {
	var b strings.Builder
	b.WriteString("# questlog\n")
	section := ""
	for _, l := range Legend() {
		if l.Section != section {
			section = l.Section
			fmt.Fprintf(&b, "\n## %s\n\n", section)
		}
		fmt.Fprintf(&b, "- `%s` %s\n", l.Keys, l.Desc)
	}
	return b.String()
}

func (k keyMap) short() string {
	parts := make([]string, 0, 6)
	for _, b := range []key.Binding{k.ToggleView, k.Today, k.Progress, k.ToggleDone, k.Add, k.Help, k.Quit} {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}
