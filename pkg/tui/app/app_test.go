package app

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	svcapp "tableflip.dev/questlog/pkg/app"
	"tableflip.dev/questlog/pkg/calendar"
	"tableflip.dev/questlog/pkg/engine"
	"tableflip.dev/questlog/pkg/filter"
	"tableflip.dev/questlog/pkg/logger"
	"tableflip.dev/questlog/pkg/quest"
	"tableflip.dev/questlog/pkg/state"
	"tableflip.dev/questlog/pkg/store"
)

var testNow = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T, quests ...quest.Quest) *Model {
	t.Helper()
	p, err := store.NewLocal(t.TempDir(), logger.Nop())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	e := engine.New(p, engine.WithClock(func() time.Time { return testNow }))
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	svc := &svcapp.Service{Engine: e}
	if len(quests) > 0 {
		if _, err := svc.Import(context.Background(), state.Document{Quests: quests, Courses: []string{"Bio", "Math"}}); err != nil {
			t.Fatalf("Import: %v", err)
		}
	}
	return New(context.Background(), svc)
}

func press(m *Model, msgs ...tea.KeyPressMsg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
	m.svc.Engine.Wait()
}

func char(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestMoveDay(t *testing.T) {
	m := newTestModel(t)
	press(m, tea.KeyPressMsg{Code: tea.KeyRight}, tea.KeyPressMsg{Code: tea.KeyRight})
	if got := m.snapshot().UI.SelectedDate; got != "2025-01-12" {
		t.Fatalf("after two rights SelectedDate = %s", got)
	}
	press(m, tea.KeyPressMsg{Code: tea.KeyDown})
	if got := m.snapshot().UI.SelectedDate; got != "2025-01-19" {
		t.Fatalf("after down SelectedDate = %s", got)
	}
	press(m, char('t'))
	if got := m.snapshot().UI.SelectedDate; got != "2025-01-10" {
		t.Fatalf("after today SelectedDate = %s", got)
	}
}

func TestToggleView(t *testing.T) {
	m := newTestModel(t)
	press(m, char('v'))
	if v := m.snapshot().UI.Calendar.View; v != calendar.ViewWeek {
		t.Fatalf("expected week view, got %s", v)
	}
	if out := m.View(); !strings.Contains(out, "Week of January 6") {
		t.Fatalf("week header missing:\n%s", out)
	}
	press(m, char('v'))
	if v := m.snapshot().UI.Calendar.View; v != calendar.ViewMonth {
		t.Fatalf("expected month view, got %s", v)
	}
}

func TestCompletionSteps(t *testing.T) {
	m := newTestModel(t, quest.Quest{ID: "q1", Title: "Essay", Course: "Bio", Category: "Assignment", DueDate: "2025-01-10", Completion: 10})

	press(m, char('+'))
	q, _ := m.current()
	if q.Completion != 25 {
		t.Fatalf("expected 25 after step up, got %d", q.Completion)
	}
	press(m, char('-'), char('-'))
	q, _ = m.current()
	if q.Completion != 0 {
		t.Fatalf("expected 0 after two steps down, got %d", q.Completion)
	}
}

func TestToggleDone(t *testing.T) {
	m := newTestModel(t, quest.Quest{ID: "q1", Title: "Essay", DueDate: "2025-01-10"})
	press(m, char('x'))
	q, ok := m.current()
	if !ok || !q.Done || q.Completion != 100 {
		t.Fatalf("expected done quest, got %+v", q.Progress())
	}
	press(m, char('x'))
	q, _ = m.current()
	if q.Done {
		t.Fatalf("expected reopened quest")
	}
}

func TestDayFilterCycle(t *testing.T) {
	m := newTestModel(t,
		quest.Quest{ID: "a", Title: "Essay", Category: "Assignment", DueDate: "2025-01-10"},
		quest.Quest{ID: "b", Title: "Midterm", Category: "Test", DueDate: "2025-01-10"},
	)
	if n := len(m.visible(m.snapshot())); n != 2 {
		t.Fatalf("expected two quests unfiltered, got %d", n)
	}
	press(m, char('f'))
	snap := m.snapshot()
	if snap.UI.DayFilter != filter.DayFilter(quest.KindAssignment) {
		t.Fatalf("unexpected filter %s", snap.UI.DayFilter)
	}
	if list := m.visible(snap); len(list) != 1 || list[0].ID != "a" {
		t.Fatalf("expected only the assignment, got %v", list)
	}
}

func TestCycleQuestAndPin(t *testing.T) {
	m := newTestModel(t,
		quest.Quest{ID: "a", Title: "First", DueDate: "2025-01-10", DueTime: "09:00"},
		quest.Quest{ID: "b", Title: "Second", DueDate: "2025-01-10", DueTime: "13:00"},
	)
	press(m, tea.KeyPressMsg{Code: tea.KeyTab}, tea.KeyPressMsg{Code: tea.KeyTab})
	if id := m.snapshot().UI.SelectedQuestID; id != "b" {
		t.Fatalf("expected b selected, got %q", id)
	}
	press(m, char('p'))
	if id := m.snapshot().UI.Pins["2025-01-10"]; id != "b" {
		t.Fatalf("expected b pinned, got %q", id)
	}
}

func TestAddFromInput(t *testing.T) {
	m := newTestModel(t)
	press(m, tea.KeyPressMsg{Code: tea.KeyRight}, char('a'))
	if !m.adding {
		t.Fatalf("expected add mode")
	}
	for _, r := range "Read" {
		press(m, char(r))
	}
	press(m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.adding {
		t.Fatalf("expected add mode to end")
	}
	doc := m.snapshot().Doc
	if len(doc.Quests) != 1 || doc.Quests[0].Title != "Read" || doc.Quests[0].DueDate != "2025-01-11" {
		t.Fatalf("unexpected quests %+v", doc.Quests)
	}
}

func TestViewShowsDay(t *testing.T) {
	m := newTestModel(t, quest.Quest{ID: "a", Title: "Lab writeup", Course: "Bio", DueDate: "2025-01-10"})
	out := m.View()
	for _, want := range []string{"questlog", "January 2025", "Lab writeup", "1 quests"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
	press(m, char('2'))
	if out := m.View(); !strings.Contains(out, "sorted by date") {
		t.Fatalf("quests view missing header:\n%s", out)
	}
}

func TestLegend(t *testing.T) {
	legend := Legend()
	if len(legend) == 0 || legend[0].Section != "Calendar" {
		t.Fatalf("unexpected legend %+v", legend)
	}
	if !strings.Contains(helpMarkdown(), "## Quests") {
		t.Fatalf("help markdown missing sections")
	}
}
