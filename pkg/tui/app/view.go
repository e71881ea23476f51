package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/questlog/pkg/calendar"
	"tableflip.dev/questlog/pkg/engine"
	"tableflip.dev/questlog/pkg/filter"
	"tableflip.dev/questlog/pkg/printers"
	"tableflip.dev/questlog/pkg/quest"
	"tableflip.dev/questlog/pkg/state"
	"tableflip.dev/questlog/pkg/stats"
	calview "tableflip.dev/questlog/pkg/tui/components/calendar"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.svc == nil || m.svc.Engine == nil {
		return "initializing…"
	}
	if m.showHelp && m.help != nil {
		return m.help.View()
	}
	snap := m.snapshot()
	now := m.svc.Engine.Now()

	var body string
	if snap.UI.Active == state.ViewQuests {
		body = m.questsView(snap, now)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.calendarPanel(snap, now),
			" ",
			m.dayPanel(snap, now),
		)
	}
	if id := snap.UI.DrawerQuestID; id != "" {
		if q, ok := snap.Doc.Find(id); ok {
			body = lipgloss.JoinVertical(lipgloss.Left, body, m.drawer(q, now))
		}
	}

	lines := []string{m.header(snap), body}
	if m.adding {
		lines = append(lines, m.input.View())
	}
	lines = append(lines, m.statusLine(snap, now), m.theme.Footer.Help.Render(m.keys.short()))
	return strings.Join(lines, "\n")
}

func (m *Model) header(snap engine.Snapshot) string {
	label := snap.UI.Calendar.MonthLabel()
	if snap.UI.Calendar.View == calendar.ViewWeek {
		if t, ok := calendar.ParseISO(snap.UI.SelectedDate); ok {
			label = calendar.WeekLabel(t, calendar.WeekStart)
		}
	}
	if snap.UI.Active == state.ViewQuests {
		label = "Quests"
	}
	course := ""
	if c := snap.UI.Calendar.CourseFilter; c != "" && c != calendar.AllCourses {
		course = "  [" + c + "]"
	}
	return m.theme.Header.App.Render("questlog") + "  " + m.theme.Header.Label.Render(label+course)
}

func (m *Model) calendarPanel(snap engine.Snapshot, now time.Time) string {
	byDate := filter.ByDate(snap.Doc.Quests, snap.UI.Calendar.CourseFilter)
	today := calendar.TodayISO(now)

	var cells []calendar.Cell
	if snap.UI.Calendar.View == calendar.ViewWeek {
		anchor, ok := calendar.ParseISO(snap.UI.SelectedDate)
		if !ok {
			anchor = now
		}
		cells = calendar.WeekGrid(anchor, calendar.WeekStart)
	} else {
		cells = calendar.MonthGrid(snap.UI.Calendar.Year, snap.UI.Calendar.Month, calendar.WeekStart)
	}

	days := make(map[string]calview.Day, len(cells))
	for _, c := range cells {
		if c.Blank {
			continue
		}
		qs := byDate[c.ISO]
		open := 0
		for _, q := range qs {
			if !q.Done {
				open++
			}
		}
		days[c.ISO] = calview.Day{
			Count:      len(qs),
			Open:       open,
			Heat:       stats.HeatFor(filter.Visible(qs)).Ratio,
			IsToday:    c.ISO == today,
			IsSelected: c.ISO == snap.UI.SelectedDate,
		}
	}

	opts := m.theme.Calendar
	opts.ShowHeat = snap.UI.Preferences.ShowHeatmap
	var grid string
	if snap.UI.Calendar.View == calendar.ViewWeek {
		grid = calview.RenderWeek(cells, days, opts)
	} else {
		grid = calview.Render(cells, days, opts)
	}
	return m.theme.Panel.Frame.Render(grid)
}

func (m *Model) dayPanel(snap engine.Snapshot, now time.Time) string {
	iso := snap.UI.SelectedDate
	list := m.visible(snap)
	primary, hasPrimary := filter.Primary(list, snap.UI.Pins, iso)
	dayStats := stats.ForDay(list, now)

	title := m.theme.Panel.Title.Render(calendar.FormatLong(iso))
	if snap.UI.DayFilter != filter.DayAll {
		title += m.theme.Day.Muted.Render("  " + quest.Kind(snap.UI.DayFilter).Label())
	}
	lines := []string{title, m.theme.Day.Muted.Render(fmt.Sprintf("%d quests · %.1fh · %d%% done", dayStats.Count, dayStats.EstimatedHours, stats.Progress(list)))}
	if len(list) == 0 {
		lines = append(lines, m.theme.Day.Muted.Render("Nothing due."))
	}
	for _, q := range list {
		marker := "  "
		if hasPrimary && q.ID == primary.ID {
			marker = m.theme.Day.Primary.Render("★ ")
		}
		lines = append(lines, marker+m.questLine(q, snap, now, 36))
	}
	return m.theme.Panel.Frame.Width(m.dayWidth()).Render(strings.Join(lines, "\n"))
}

func (m *Model) dayWidth() int {
	w := m.width - 30
	if w < 40 {
		w = 40
	}
	return w
}

func (m *Model) questLine(q quest.Quest, snap engine.Snapshot, now time.Time, titleWidth int) string {
	box := "[ ]"
	if q.Done {
		box = "[x]"
	}
	course := lipgloss.NewStyle().Foreground(lipgloss.Color(quest.CourseColor(q.Course))).Bold(true).Render(q.Course)
	title := truncate.StringWithTail(quest.DisplayTitle(q), uint(titleWidth), "…")
	switch {
	case q.Done:
		title = m.theme.Day.Done.Render(title)
	case stats.IsOverdue(q, now):
		title = m.theme.Day.Overdue.Render(title)
	}
	line := fmt.Sprintf("%s %s %s %s", box, title, course, printers.Segments(q.Completion))
	if q.ID == snap.UI.SelectedQuestID {
		line = m.theme.Day.Selected.Render(line)
	}
	return line
}

func (m *Model) questsView(snap engine.Snapshot, now time.Time) string {
	f := snap.UI.QuestFilters
	list := filter.Apply(snap.Doc.Quests, f, now)
	lines := []string{m.theme.Day.Muted.Render(fmt.Sprintf("%s · sorted by %s · %d quests", f.Status, f.Sort, len(list)))}
	if len(list) == 0 {
		lines = append(lines, m.theme.Day.Muted.Render("No quests match."))
	}
	for _, q := range list {
		due := calendar.FormatDue(q.DueDate, now)
		lines = append(lines, m.questLine(q, snap, now, 40)+"  "+m.theme.Day.Muted.Render(due))
	}
	return m.theme.Panel.Frame.Render(strings.Join(lines, "\n"))
}

func (m *Model) drawer(q quest.Quest, now time.Time) string {
	lines := []string{
		m.theme.Panel.Title.Render(quest.DisplayTitle(q)),
		fmt.Sprintf("%s · %s · %s", q.Course, q.Category, quest.TypeOf(q).Label()),
		fmt.Sprintf("%s · %s", calendar.FormatDue(q.DueDate, now), quest.DueTimeLabel(q)),
		fmt.Sprintf("%d%% %s", q.Completion, printers.Segments(q.Completion)),
	}
	if q.EstMinutes != nil {
		lines = append(lines, fmt.Sprintf("Estimate %d min", *q.EstMinutes))
	}
	if q.Notes != "" {
		lines = append(lines, q.Notes)
	}
	if q.Link != "" {
		lines = append(lines, q.Link)
	}
	return m.theme.Panel.Frame.Render(strings.Join(lines, "\n"))
}

func (m *Model) statusLine(snap engine.Snapshot, now time.Time) string {
	g := stats.Summarize(snap.Doc.Quests, now)
	line := fmt.Sprintf("%d quests · %d due today · %d overdue", g.Total, g.DueToday, g.Overdue)
	if snap.UI.Status != "" {
		line += " · " + snap.UI.Status
	}
	if m.watchErr != nil {
		return m.theme.Footer.Warning.Render(line + " · live refresh off: " + m.watchErr.Error())
	}
	return m.theme.Footer.Status.Render(line)
}
