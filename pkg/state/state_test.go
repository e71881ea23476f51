package state

import (
	"errors"
	"testing"
	"time"

	"tableflip.dev/questlog/pkg/calendar"
	"tableflip.dev/questlog/pkg/filter"
)

var now = time.Date(2025, 1, 31, 9, 0, 0, 0, time.Local)

func TestDecodeLegacyAssignments(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"assignments":[{"id":"a","completion":150}],"courses":["Math"]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Quests) != 1 || doc.Quests[0].ID != "a" {
		t.Fatalf("expected legacy quest, got %+v", doc.Quests)
	}
	if doc.Quests[0].Completion != 100 {
		t.Fatalf("expected normalised completion, got %d", doc.Quests[0].Completion)
	}
	if len(doc.Courses) != 1 || doc.Courses[0] != "Math" {
		t.Fatalf("unexpected courses %v", doc.Courses)
	}
}

func TestDecodePrefersQuests(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"quests":[{"id":"q"}],"assignments":[{"id":"a"}]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Quests) != 1 || doc.Quests[0].ID != "q" {
		t.Fatalf("expected quests to win, got %+v", doc.Quests)
	}
}

func TestDecodeBareArray(t *testing.T) {
	doc, err := DecodeDocument([]byte(` [{"id":"x"},{"id":"y"}] `))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Quests) != 2 {
		t.Fatalf("expected 2 quests, got %d", len(doc.Quests))
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	for _, in := range []string{
		`{"quests":`,
		`{"quests":{"id":"a"}}`,
		`{"quests":[1,2]}`,
		`{"courses":"Math"}`,
		`"hello"`,
		`[null]`,
	} {
		if _, err := DecodeDocument([]byte(in)); !errors.Is(err, ErrMalformedDocument) {
			t.Fatalf("%s: expected ErrMalformedDocument, got %v", in, err)
		}
	}
}

func TestEnsureDefaults(t *testing.T) {
	doc := Document{Courses: []string{"Math", "Math", "Art"}}
	doc.EnsureDefaults()
	if len(doc.Courses) != 2 || doc.Courses[1] != "Art" {
		t.Fatalf("expected deduped courses, got %v", doc.Courses)
	}
	if len(doc.Categories) != 1 || doc.Categories[0] != DefaultLabel {
		t.Fatalf("expected General category, got %v", doc.Categories)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	in := Document{Courses: []string{"Math"}}
	data, err := EncodeDocument(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Quests == nil || len(out.Quests) != 0 || out.Courses[0] != "Math" {
		t.Fatalf("unexpected document %+v", out)
	}
}

func TestShiftCalendarClampsDay(t *testing.T) {
	u := NewUI(now)
	u.ShiftCalendar(1, now)
	if u.SelectedDate != "2025-02-28" {
		t.Fatalf("expected 2025-02-28, got %s", u.SelectedDate)
	}
	if u.Calendar.Month != time.February || u.Calendar.Year != 2025 {
		t.Fatalf("unexpected cursor %+v", u.Calendar)
	}
	u.ShiftCalendar(-2, now)
	if u.SelectedDate != "2024-12-28" || u.Calendar.Year != 2024 {
		t.Fatalf("expected 2024-12-28, got %s", u.SelectedDate)
	}
}

func TestShiftCalendarWeek(t *testing.T) {
	u := NewUI(now)
	u.SetCalendarView(calendar.ViewWeek, now)
	u.ShiftCalendar(1, now)
	if u.SelectedDate != "2025-02-07" {
		t.Fatalf("expected 2025-02-07, got %s", u.SelectedDate)
	}
	if u.Calendar.Month != time.February {
		t.Fatalf("expected month to follow the anchor, got %s", u.Calendar.Month)
	}
}

func TestSetCalendarViewMissingDate(t *testing.T) {
	u := NewUI(now)
	u.SelectedDate = ""
	u.Calendar = u.Calendar.Shift(5)
	u.SetCalendarView(calendar.ViewMonth, now)
	if u.SelectedDate != "2025-01-31" {
		t.Fatalf("expected today, got %s", u.SelectedDate)
	}
}

func TestFocusDayFollowsMonth(t *testing.T) {
	u := NewUI(now)
	u.SelectQuest("q1")
	u.FocusDay("2025-03-04")
	if u.Calendar.Month != time.March || u.SelectedQuestID != "" {
		t.Fatalf("unexpected state %+v", u)
	}
	u.JumpToToday(now)
	if u.SelectedDate != "2025-01-31" || u.Calendar.Month != time.January {
		t.Fatalf("expected today, got %s", u.SelectedDate)
	}
}

func TestSetQuestFiltersMerges(t *testing.T) {
	u := NewUI(now)
	search := "essay"
	u.SetQuestFilters(FilterPatch{Search: &search})
	status := filter.StatusOverdue
	u.SetQuestFilters(FilterPatch{Status: &status})
	if u.QuestFilters.Search != "essay" || u.QuestFilters.Status != filter.StatusOverdue {
		t.Fatalf("expected merged filters, got %+v", u.QuestFilters)
	}
	if u.QuestFilters.Sort != filter.SortDate {
		t.Fatalf("sort should be untouched, got %s", u.QuestFilters.Sort)
	}
}

func TestSwitchViewDrawer(t *testing.T) {
	u := NewUI(now)
	u.OpenDrawer("q")
	u.SwitchView(ViewQuests)
	if u.DrawerQuestID != "q" {
		t.Fatalf("drawer should survive the quests view")
	}
	u.SwitchView(ViewCalendar)
	if u.DrawerQuestID != "" {
		t.Fatalf("drawer should close outside the quests view")
	}
}

func TestUpdatePreference(t *testing.T) {
	u := NewUI(now)
	if err := u.UpdatePreference("defaultCalendarView", "week", now); err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Calendar.View != calendar.ViewWeek {
		t.Fatalf("expected week view, got %s", u.Calendar.View)
	}
	if err := u.UpdatePreference("showHeatmap", "false", now); err != nil || u.Preferences.ShowHeatmap {
		t.Fatalf("expected heatmap off, err %v", err)
	}
	if err := u.UpdatePreference("nope", "1", now); err == nil {
		t.Fatalf("expected unknown preference error")
	}
}

func TestStartNewQuestForDate(t *testing.T) {
	u := NewUI(now)
	u.StartNewQuestForDate("2025-02-02")
	if u.Detail != DetailNew || u.Draft == nil || u.Draft.DueDate != "2025-02-02" {
		t.Fatalf("unexpected draft state %+v", u)
	}
	u.CommitDraft("saved")
	if u.Draft != nil || u.SelectedQuestID != "saved" {
		t.Fatalf("expected committed draft")
	}
}

func TestToggleSubtask(t *testing.T) {
	u := NewUI(now)
	for _, s := range []string{"read", "outline", "write"} {
		u.AddSubtask("q", s)
	}
	if pct, ok := u.ToggleSubtask("q", 0); !ok || pct != 33 {
		t.Fatalf("expected 33, got %d", pct)
	}
	u.ToggleSubtask("q", 1)
	if pct, _ := u.ToggleSubtask("q", 2); pct != 100 {
		t.Fatalf("expected 100, got %d", pct)
	}
	if _, ok := u.ToggleSubtask("q", 3); ok {
		t.Fatalf("out of range toggle should fail")
	}
}

func TestCloneIsDeep(t *testing.T) {
	u := NewUI(now)
	u.Pins.Pin("2025-01-31", "a")
	u.AddSubtask("q", "one")
	c := u.Clone()
	c.Pins.Pin("2025-01-31", "b")
	c.Subtasks["q"][0].Done = true
	if u.Pins["2025-01-31"] != "a" || u.Subtasks["q"][0].Done {
		t.Fatalf("clone shares state with original")
	}
}

func TestFindOnCopiedDocument(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"quests":[{"id":"a"},{"id":"b","title":"Lab"}]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if i := doc.Clone().IndexOf("b"); i != 1 {
		t.Fatalf("IndexOf(b) = %d", i)
	}
	q, ok := doc.Clone().Find("b")
	if !ok || q.Title != "Lab" {
		t.Fatalf("Find(b) = %+v, %v", q, ok)
	}
	if _, ok := doc.Clone().Find("zzz"); ok {
		t.Fatalf("unexpected match")
	}
}
