// Package app is the Bubble Tea planner: a month or week calendar beside
// the selected day's quests, plus a filtered quest list.
package app

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/v2/key"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"

	svcapp "tableflip.dev/questlog/pkg/app"
	"tableflip.dev/questlog/pkg/calendar"
	"tableflip.dev/questlog/pkg/engine"
	"tableflip.dev/questlog/pkg/filter"
	"tableflip.dev/questlog/pkg/printers"
	"tableflip.dev/questlog/pkg/quest"
	"tableflip.dev/questlog/pkg/state"
	"tableflip.dev/questlog/pkg/tui/components/help"
	"tableflip.dev/questlog/pkg/tui/theme"
)

// Model is the root Bubble Tea model.
type Model struct {
	svc   *svcapp.Service
	ctx   context.Context
	theme theme.Theme
	keys  keyMap

	width  int
	height int

	help     *help.Model
	showHelp bool

	adding bool
	input  textinput.Model

	watchCancel context.CancelFunc
	watchErr    error
}

type watchStartedMsg struct {
	cancel context.CancelFunc
	err    error
}

type engineEventMsg struct {
	event engine.Event
}

// New builds the model over svc.
func New(ctx context.Context, svc *svcapp.Service) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	in := textinput.New()
	in.Prompt = "New quest: "
	in.Placeholder = "title"
	return &Model{
		svc:    svc,
		ctx:    ctx,
		theme:  theme.Default(),
		keys:   defaultKeyMap(),
		width:  100,
		height: 30,
		input:  in,
	}
}

// Run launches the Bubble Tea program.
func Run(ctx context.Context, svc *svcapp.Service) error {
	m := New(ctx, svc)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if m.watchCancel != nil {
		m.watchCancel()
	}
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(startWatchCmd(m.ctx, m.svc), waitForEvent(m.svc))
}

func startWatchCmd(parent context.Context, svc *svcapp.Service) tea.Cmd {
	if svc == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(parent)
		if err := svc.Watch(ctx); err != nil {
			cancel()
			return watchStartedMsg{err: err}
		}
		return watchStartedMsg{cancel: cancel}
	}
}

// waitForEvent reads one engine event per command so the program redraws
// on every change, local or from the store.
func waitForEvent(svc *svcapp.Service) tea.Cmd {
	ch := svc.Events()
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return engineEventMsg{event: ev}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.help != nil {
			m.help.SetSize(m.width-4, m.height-2)
		}
		return m, nil
	case watchStartedMsg:
		m.watchCancel, m.watchErr = msg.cancel, msg.err
		return m, nil
	case engineEventMsg:
		return m, waitForEvent(m.svc)
	case tea.KeyPressMsg:
		switch {
		case m.showHelp:
			return m, m.handleHelpKey(msg)
		case m.adding:
			return m, m.handleAddKey(msg)
		}
		return m, m.handleKey(msg)
	}
	if m.adding {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleHelpKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "?", "esc", "q":
		m.showHelp = false
		return nil
	}
	var cmd tea.Cmd
	m.help, cmd = m.help.Update(msg)
	return cmd
}

func (m *Model) handleAddKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.adding = false
		m.input.Blur()
		m.input.SetValue("")
		m.svc.Engine.UI(func(ui *state.UI) { ui.CommitDraft(ui.SelectedQuestID) })
		return nil
	case "enter":
		title := strings.TrimSpace(m.input.Value())
		m.adding = false
		m.input.Blur()
		m.input.SetValue("")
		if title == "" {
			return nil
		}
		draft := m.snapshot().UI.Draft
		q := quest.Quest{Title: title}
		if draft != nil {
			q.DueDate, q.Course = draft.DueDate, draft.Course
		}
		m.svc.Engine.AddQuest(m.ctx, q)
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	e := m.svc.Engine
	now := e.Now()
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.watchCancel != nil {
			m.watchCancel()
		}
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		if m.help == nil {
			m.help = help.New(helpMarkdown(), m.width-4, m.height-2)
		}
		m.showHelp = true
	case key.Matches(msg, m.keys.PrevDay):
		m.moveDay(-1)
	case key.Matches(msg, m.keys.NextDay):
		m.moveDay(1)
	case key.Matches(msg, m.keys.PrevWeek):
		m.moveDay(-7)
	case key.Matches(msg, m.keys.NextWeek):
		m.moveDay(7)
	case key.Matches(msg, m.keys.PrevMonth):
		e.UI(func(ui *state.UI) { ui.ShiftCalendar(-1, now) })
	case key.Matches(msg, m.keys.NextMonth):
		e.UI(func(ui *state.UI) { ui.ShiftCalendar(1, now) })
	case key.Matches(msg, m.keys.ToggleView):
		e.UI(func(ui *state.UI) {
			next := calendar.ViewWeek
			if ui.Calendar.View == calendar.ViewWeek {
				next = calendar.ViewMonth
			}
			ui.SetCalendarView(next, now)
		})
	case key.Matches(msg, m.keys.Today):
		e.UI(func(ui *state.UI) { ui.JumpToToday(now) })
	case key.Matches(msg, m.keys.NextQuest):
		m.cycleQuest(1)
	case key.Matches(msg, m.keys.PrevQuest):
		m.cycleQuest(-1)
	case key.Matches(msg, m.keys.Progress):
		m.stepCompletion(1)
	case key.Matches(msg, m.keys.Regress):
		m.stepCompletion(-1)
	case key.Matches(msg, m.keys.ToggleDone):
		if q, ok := m.current(); ok {
			e.SetDone(m.ctx, q.ID, !q.Done)
		}
	case key.Matches(msg, m.keys.Pin):
		if q, ok := m.current(); ok {
			e.UI(func(ui *state.UI) { ui.Pins.Pin(q.DueDate, q.ID) })
		}
	case key.Matches(msg, m.keys.Add):
		e.UI(func(ui *state.UI) {
			course := ""
			if c := ui.Calendar.CourseFilter; c != calendar.AllCourses {
				course = c
			}
			ui.StartNewQuestForDate(ui.SelectedDate)
			ui.Draft.Course = course
		})
		m.adding = true
		return m.input.Focus()
	case key.Matches(msg, m.keys.Delete):
		if q, ok := m.current(); ok {
			e.RemoveQuest(m.ctx, q.ID)
		}
	case key.Matches(msg, m.keys.DayFilter):
		e.UI(func(ui *state.UI) { ui.SetDayFilter(nextDayFilter(ui.DayFilter)) })
	case key.Matches(msg, m.keys.CourseFilter):
		courses := m.snapshot().Doc.Courses
		e.UI(func(ui *state.UI) { ui.SetCalendarCourseFilter(nextCourse(ui.Calendar.CourseFilter, courses)) })
	case key.Matches(msg, m.keys.Heatmap):
		e.UI(func(ui *state.UI) {
			_ = ui.UpdatePreference("showHeatmap", strconv.FormatBool(!ui.Preferences.ShowHeatmap), now)
		})
	case key.Matches(msg, m.keys.Planner):
		e.UI(func(ui *state.UI) { ui.SwitchView(state.ViewHome) })
	case key.Matches(msg, m.keys.Quests):
		e.UI(func(ui *state.UI) { ui.SwitchView(state.ViewQuests) })
	case key.Matches(msg, m.keys.Status):
		e.UI(func(ui *state.UI) {
			st := nextStatus(ui.QuestFilters.Status)
			ui.SetQuestFilters(state.FilterPatch{Status: &st})
		})
	case key.Matches(msg, m.keys.Sort):
		e.UI(func(ui *state.UI) {
			s := nextSort(ui.QuestFilters.Sort)
			ui.SetQuestFilters(state.FilterPatch{Sort: &s})
		})
	case key.Matches(msg, m.keys.Open):
		if q, ok := m.current(); ok {
			e.UI(func(ui *state.UI) {
				if ui.DrawerQuestID == q.ID {
					ui.CloseDrawer()
				} else {
					ui.OpenDrawer(q.ID)
				}
			})
		}
	}
	return nil
}

func (m *Model) snapshot() engine.Snapshot {
	return m.svc.Engine.Snapshot()
}

func (m *Model) moveDay(n int) {
	now := m.svc.Engine.Now()
	m.svc.Engine.UI(func(ui *state.UI) {
		base := ui.SelectedDate
		if _, ok := calendar.ParseISO(base); !ok {
			base = calendar.TodayISO(now)
		}
		ui.FocusDay(calendar.AddDays(base, n))
	})
}

// visible is the quest list the selection cycles through: the selected
// day's quests on the planner, the filtered list on the quests view.
func (m *Model) visible(snap engine.Snapshot) []quest.Quest {
	if snap.UI.Active == state.ViewQuests {
		return filter.Apply(snap.Doc.Quests, snap.UI.QuestFilters, m.svc.Engine.Now())
	}
	day := filter.Day(snap.Doc.Quests, snap.UI.SelectedDate, snap.UI.Calendar.CourseFilter)
	return filter.ByDayFilter(day, snap.UI.DayFilter)
}

// current is the selected quest, or the day's primary quest when nothing
// is selected.
func (m *Model) current() (quest.Quest, bool) {
	snap := m.snapshot()
	list := m.visible(snap)
	for _, q := range list {
		if q.ID == snap.UI.SelectedQuestID {
			return q, true
		}
	}
	if snap.UI.Active == state.ViewQuests {
		if len(list) > 0 {
			return list[0], true
		}
		return quest.Quest{}, false
	}
	return filter.Primary(list, snap.UI.Pins, snap.UI.SelectedDate)
}

func (m *Model) cycleQuest(delta int) {
	snap := m.snapshot()
	list := m.visible(snap)
	if len(list) == 0 {
		return
	}
	idx := -1
	for i, q := range list {
		if q.ID == snap.UI.SelectedQuestID {
			idx = i
		}
	}
	switch {
	case idx < 0 && delta > 0:
		idx = 0
	case idx < 0:
		idx = len(list) - 1
	default:
		idx = ((idx+delta)%len(list) + len(list)) % len(list)
	}
	id := list[idx].ID
	m.svc.Engine.UI(func(ui *state.UI) { ui.SelectQuest(id) })
}

func (m *Model) stepCompletion(dir int) {
	q, ok := m.current()
	if !ok {
		return
	}
	next := q.Completion
	if dir > 0 {
		for _, s := range printers.ProgressSteps {
			if s > q.Completion {
				next = s
				break
			}
		}
	} else {
		for i := len(printers.ProgressSteps) - 1; i >= 0; i-- {
			if s := printers.ProgressSteps[i]; s < q.Completion {
				next = s
				break
			}
		}
	}
	if next != q.Completion {
		m.svc.Engine.SetCompletion(m.ctx, q.ID, next)
	}
}

func nextDayFilter(cur filter.DayFilter) filter.DayFilter {
	for i, f := range filter.DayFilters {
		if f == cur {
			return filter.DayFilters[(i+1)%len(filter.DayFilters)]
		}
	}
	return filter.DayAll
}

func nextCourse(cur string, courses []string) string {
	options := append([]string{calendar.AllCourses}, courses...)
	for i, c := range options {
		if c == cur {
			return options[(i+1)%len(options)]
		}
	}
	return calendar.AllCourses
}

func nextStatus(cur filter.Status) filter.Status {
	for i, s := range filter.Statuses {
		if s == cur {
			return filter.Statuses[(i+1)%len(filter.Statuses)]
		}
	}
	return filter.StatusAll
}

var sortOrder = []filter.SortKey{filter.SortDate, filter.SortCourse, filter.SortWorkload}

func nextSort(cur filter.SortKey) filter.SortKey {
	for i, s := range sortOrder {
		if s == cur {
			return sortOrder[(i+1)%len(sortOrder)]
		}
	}
	return filter.SortDate
}
