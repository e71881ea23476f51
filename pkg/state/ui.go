package state

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tableflip.dev/questlog/pkg/calendar"
	"tableflip.dev/questlog/pkg/filter"
)

// ActiveView is the top-level screen.
type ActiveView string

const (
	ViewHome     ActiveView = "home"
	ViewCalendar ActiveView = "calendar"
	ViewQuests   ActiveView = "quests"
)

// DetailMode says whether the detail pane shows a quest or a draft.
type DetailMode string

const (
	DetailView DetailMode = "view"
	DetailNew  DetailMode = "new"
)

// Draft is an unsaved new quest.
type Draft struct {
	DueDate string
	Course  string
}

// Preferences are the user's display toggles.
type Preferences struct {
	ShowHeatmap         bool          `json:"showHeatmap"`
	ShowProgressRing    bool          `json:"showProgressRing"`
	ShowCompletionCheck bool          `json:"showCompletionCheck"`
	DefaultCalendarView calendar.View `json:"defaultCalendarView"`
}

// DefaultPreferences has every toggle on and a month calendar.
func DefaultPreferences() Preferences {
	return Preferences{
		ShowHeatmap:         true,
		ShowProgressRing:    true,
		ShowCompletionCheck: true,
		DefaultCalendarView: calendar.ViewMonth,
	}
}

// Subtask is one item of a quest's local checklist.
type Subtask struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// UI is the transient view state. It is never persisted.
type UI struct {
	Active          ActiveView
	SelectedDate    string
	Calendar        calendar.Cursor
	DayFilter       filter.DayFilter
	SelectedQuestID string
	Detail          DetailMode
	Draft           *Draft
	DrawerQuestID   string
	QuestFilters    filter.Filters
	Pins            filter.Pins
	Preferences     Preferences
	Subtasks        map[string][]Subtask
	Status          string
}

// NewUI returns view state positioned on now.
func NewUI(now time.Time) UI {
	prefs := DefaultPreferences()
	return UI{
		Active:       ViewHome,
		SelectedDate: calendar.TodayISO(now),
		Calendar:     calendar.NewCursor(now, prefs.DefaultCalendarView),
		DayFilter:    filter.DayAll,
		Detail:       DetailView,
		QuestFilters: filter.Defaults(),
		Pins:         filter.Pins{},
		Preferences:  prefs,
		Subtasks:     map[string][]Subtask{},
	}
}

// Clone deep-copies u.
func (u UI) Clone() UI {
	out := u
	if u.Draft != nil {
		d := *u.Draft
		out.Draft = &d
	}
	out.QuestFilters.Courses = append([]string{}, u.QuestFilters.Courses...)
	out.Pins = u.Pins.Clone()
	out.Subtasks = make(map[string][]Subtask, len(u.Subtasks))
	for k, v := range u.Subtasks {
		out.Subtasks[k] = append([]Subtask(nil), v...)
	}
	return out
}

// FocusDay selects iso. In month view the calendar follows the date.
func (u *UI) FocusDay(iso string) {
	u.SelectedDate = iso
	u.SelectedQuestID = ""
	u.Detail = DetailView
	if t, ok := calendar.ParseISO(iso); ok && u.Calendar.View != calendar.ViewWeek {
		u.Calendar = u.Calendar.Seek(t)
	}
}

// JumpToToday focuses now's date and moves the calendar to it.
func (u *UI) JumpToToday(now time.Time) {
	u.FocusDay(calendar.TodayISO(now))
	u.Calendar = u.Calendar.Seek(now)
}

// ShiftCalendar navigates by delta months in month view, keeping the
// selected day of month where the target month allows, or by delta weeks
// in week view.
func (u *UI) ShiftCalendar(delta int, now time.Time) {
	if u.Calendar.View == calendar.ViewWeek {
		base, ok := calendar.ParseISO(u.SelectedDate)
		if !ok {
			base, _ = calendar.ParseISO(calendar.TodayISO(now))
		}
		next := base.AddDate(0, 0, delta*7)
		u.Calendar = u.Calendar.Seek(next)
		u.SelectedDate = calendar.FormatISO(next)
		return
	}

	day := 1
	if t, ok := calendar.ParseISO(u.SelectedDate); ok {
		day = t.Day()
	}
	u.Calendar = u.Calendar.Shift(delta)
	if max := calendar.DaysIn(u.Calendar.Year, u.Calendar.Month); day > max {
		day = max
	}
	u.SelectedDate = calendar.FormatISO(time.Date(u.Calendar.Year, u.Calendar.Month, day, 0, 0, 0, 0, time.UTC))
}

// SetCalendarView switches layout. Month view re-reads month and year from
// the selected date; a missing selection becomes today.
func (u *UI) SetCalendarView(view calendar.View, now time.Time) {
	u.Calendar.View = view
	if u.SelectedDate == "" {
		u.SelectedDate = calendar.TodayISO(now)
	}
	if view == calendar.ViewMonth {
		if t, ok := calendar.ParseISO(u.SelectedDate); ok {
			u.Calendar = u.Calendar.Seek(t)
		}
	}
}

// SetCalendarCourseFilter limits calendar cells to one course, or all.
func (u *UI) SetCalendarCourseFilter(course string) {
	if strings.TrimSpace(course) == "" {
		course = calendar.AllCourses
	}
	u.Calendar.CourseFilter = course
}

// FilterPatch carries the quest filter fields to change; nil fields keep
// their current value.
type FilterPatch struct {
	Courses *[]string
	Status  *filter.Status
	Sort    *filter.SortKey
	Search  *string
}

// SetQuestFilters merges p into the quest list filters.
func (u *UI) SetQuestFilters(p FilterPatch) {
	if p.Courses != nil {
		u.QuestFilters.Courses = append([]string{}, (*p.Courses)...)
	}
	if p.Status != nil {
		u.QuestFilters.Status = *p.Status
	}
	if p.Sort != nil {
		u.QuestFilters.Sort = *p.Sort
	}
	if p.Search != nil {
		u.QuestFilters.Search = *p.Search
	}
}

// SetDayFilter changes the day list filter.
func (u *UI) SetDayFilter(f filter.DayFilter) {
	u.DayFilter = f
}

// SelectQuest shows id in the detail pane.
func (u *UI) SelectQuest(id string) {
	u.SelectedQuestID = id
	u.Detail = DetailView
	u.Draft = nil
}

// StartNewQuestForDate opens a draft due on iso.
func (u *UI) StartNewQuestForDate(iso string) {
	if iso == "" {
		iso = u.SelectedDate
	}
	u.SelectedDate = iso
	u.SelectedQuestID = ""
	u.Detail = DetailNew
	u.Draft = &Draft{DueDate: iso}
}

// CommitDraft clears the draft and selects the quest it produced.
func (u *UI) CommitDraft(savedID string) {
	u.Draft = nil
	u.Detail = DetailView
	u.SelectedQuestID = savedID
}

// OpenDrawer shows id in the quests view drawer.
func (u *UI) OpenDrawer(id string) {
	u.DrawerQuestID = id
}

// CloseDrawer hides the drawer.
func (u *UI) CloseDrawer() {
	u.DrawerQuestID = ""
}

// SwitchView changes screens. The drawer only survives on the quests view.
func (u *UI) SwitchView(v ActiveView) {
	u.Active = v
	if v != ViewQuests {
		u.DrawerQuestID = ""
	}
}

// UpdatePreference sets one preference by name. Changing the default
// calendar view also switches the current one.
func (u *UI) UpdatePreference(key, value string, now time.Time) error {
	switch key {
	case "showHeatmap", "showProgressRing", "showCompletionCheck":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("state: preference %s: %w", key, err)
		}
		switch key {
		case "showHeatmap":
			u.Preferences.ShowHeatmap = b
		case "showProgressRing":
			u.Preferences.ShowProgressRing = b
		default:
			u.Preferences.ShowCompletionCheck = b
		}
	case "defaultCalendarView":
		v, err := calendar.ParseView(value)
		if err != nil {
			return err
		}
		u.Preferences.DefaultCalendarView = v
		u.SetCalendarView(v, now)
	default:
		return fmt.Errorf("state: unknown preference %q", key)
	}
	return nil
}

// SetStatus records the user-facing status line.
func (u *UI) SetStatus(msg string) {
	u.Status = msg
}

// AddSubtask appends an item to questID's checklist.
func (u *UI) AddSubtask(questID, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if u.Subtasks == nil {
		u.Subtasks = map[string][]Subtask{}
	}
	u.Subtasks[questID] = append(u.Subtasks[questID], Subtask{Text: text})
}

// ToggleSubtask flips one checklist item and returns the completion it
// implies: the rounded share of done items.
func (u *UI) ToggleSubtask(questID string, index int) (int, bool) {
	list := u.Subtasks[questID]
	if index < 0 || index >= len(list) {
		return 0, false
	}
	list[index].Done = !list[index].Done
	done := 0
	for _, s := range list {
		if s.Done {
			done++
		}
	}
	return (done*200 + len(list)) / (2 * len(list)), true
}
