package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tableflip.dev/questlog/pkg/quest"
	"tableflip.dev/questlog/pkg/state"
	"tableflip.dev/questlog/pkg/store"
)

var errBoom = errors.New("boom")

type memoryPersistence struct {
	mu    sync.Mutex
	doc   state.Document
	fail  error
	gate  chan struct{}
	calls []string
	// refuse fails writes whose op or name is one of its keys.
	refuse map[string]bool
}

func newMemoryPersistence(quests ...quest.Quest) *memoryPersistence {
	return &memoryPersistence{doc: state.Document{Quests: quests, Courses: []string{}, Categories: []string{}}}
}

// wait blocks on gate when a test holds persistence open.
func (m *memoryPersistence) wait(op string) error {
	return m.waitFor(op, "")
}

func (m *memoryPersistence) waitFor(op, name string) error {
	m.mu.Lock()
	m.calls = append(m.calls, op)
	gate, fail := m.gate, m.fail
	if m.refuse[op] || (name != "" && m.refuse[name]) {
		fail = errBoom
	}
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return fail
}

func (m *memoryPersistence) LoadAll(context.Context) (state.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc.Clone(), nil
}

func (m *memoryPersistence) AddQuest(_ context.Context, q quest.Quest) (quest.Quest, error) {
	if err := m.wait("add"); err != nil {
		return quest.Quest{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	q.CreatedAt = quest.Stamp(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	m.doc.Quests = append(m.doc.Quests, q)
	return q, nil
}

func (m *memoryPersistence) UpdateQuestProgress(_ context.Context, id string, p quest.Progress) error {
	return m.wait("progress")
}

func (m *memoryPersistence) UpdateQuest(_ context.Context, id string, patch map[string]any) error {
	return m.wait("update")
}

func (m *memoryPersistence) DeleteQuest(_ context.Context, id string) error {
	return m.wait("delete")
}

func (m *memoryPersistence) AddCourse(_ context.Context, name string) error {
	return m.waitFor("add-course", name)
}

func (m *memoryPersistence) RemoveCourse(_ context.Context, name string) error {
	return m.waitFor("remove-course", name)
}

func (m *memoryPersistence) AddCategory(_ context.Context, name string) error {
	return m.waitFor("add-category", name)
}

func (m *memoryPersistence) RemoveCategory(_ context.Context, name string) error {
	return m.waitFor("remove-category", name)
}

func (m *memoryPersistence) Import(_ context.Context, doc state.Document) error {
	if err := m.wait("import"); err != nil {
		return err
	}
	m.mu.Lock()
	m.doc = doc.Clone()
	m.mu.Unlock()
	return nil
}

func (m *memoryPersistence) Watch(context.Context) (<-chan store.Event, error) {
	return make(chan store.Event), nil
}

func (m *memoryPersistence) Close() error { return nil }

func (m *memoryPersistence) lastCall() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return ""
	}
	return m.calls[len(m.calls)-1]
}

func newTestEngine(t *testing.T, mp *memoryPersistence) *Engine {
	t.Helper()
	e := New(mp, WithClock(func() time.Time { return time.Date(2025, 1, 10, 9, 0, 0, 0, time.Local) }))
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return e
}

func seed(ids ...string) []quest.Quest {
	out := make([]quest.Quest, len(ids))
	for i, id := range ids {
		out[i] = quest.Normalize(map[string]any{"id": id, "title": id})
	}
	return out
}

func questIDs(doc state.Document) []string {
	out := make([]string, len(doc.Quests))
	for i, q := range doc.Quests {
		out[i] = q.ID
	}
	return out
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAddQuestSavesAndReconciles(t *testing.T) {
	e := newTestEngine(t, newMemoryPersistence())
	e.UI(func(ui *state.UI) { ui.StartNewQuestForDate("2025-01-12") })

	ticket := e.AddQuest(context.Background(), quest.Normalize(map[string]any{"title": "Essay"}))
	if ticket.Quest.ID == "" {
		t.Fatalf("expected a client id")
	}
	if got := e.Snapshot().Doc.Quests; len(got) != 1 {
		t.Fatalf("expected optimistic insert, got %d quests", len(got))
	}

	saved, err := ticket.Wait(context.Background())
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if saved.CreatedAt == nil {
		t.Fatalf("expected the stored record after reconcile")
	}
	snap := e.Snapshot()
	if snap.UI.Draft != nil || snap.UI.SelectedQuestID != saved.ID {
		t.Fatalf("expected draft cleared and quest selected, got %+v", snap.UI)
	}
	if snap.UI.Status != "Quest saved." {
		t.Fatalf("unexpected status %q", snap.UI.Status)
	}
}

func TestAddQuestFailureRestoresState(t *testing.T) {
	mp := newMemoryPersistence(seed("a", "b")...)
	e := newTestEngine(t, mp)
	before := e.Snapshot().Doc

	mp.fail = errBoom
	_, err := e.AddQuest(context.Background(), quest.Normalize(map[string]any{"title": "x"})).Wait(context.Background())
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected store error, got %v", err)
	}
	after := e.Snapshot()
	if !sameIDs(questIDs(after.Doc), questIDs(before)) {
		t.Fatalf("expected %v after rollback, got %v", questIDs(before), questIDs(after.Doc))
	}
	if after.UI.Status != "Could not save quest." {
		t.Fatalf("unexpected status %q", after.UI.Status)
	}
}

func TestRemoveQuestFailureReinsertsAtIndex(t *testing.T) {
	mp := newMemoryPersistence(seed("a", "b", "c")...)
	e := newTestEngine(t, mp)

	mp.fail = errBoom
	ticket := e.RemoveQuest(context.Background(), "b")
	if _, err := ticket.Wait(context.Background()); !errors.Is(err, errBoom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if got := questIDs(e.Snapshot().Doc); !sameIDs(got, []string{"a", "b", "c"}) {
		t.Fatalf("expected b back in place, got %v", got)
	}
}

func TestRemoveUnknownQuest(t *testing.T) {
	e := newTestEngine(t, newMemoryPersistence())
	if _, err := e.RemoveQuest(context.Background(), "nope").Wait(context.Background()); !errors.Is(err, ErrUnknownQuest) {
		t.Fatalf("expected ErrUnknownQuest, got %v", err)
	}
}

func TestUpdateQuestRoutesProgress(t *testing.T) {
	mp := newMemoryPersistence(seed("a")...)
	e := newTestEngine(t, mp)
	ctx := context.Background()

	saved, err := e.SetCompletion(ctx, "a", 100).Wait(ctx)
	if err != nil {
		t.Fatalf("set completion: %v", err)
	}
	if !saved.Done || saved.Completion != 100 {
		t.Fatalf("expected done at 100, got %+v", saved)
	}
	if mp.lastCall() != "progress" {
		t.Fatalf("expected a progress write, got %q", mp.lastCall())
	}

	saved, _ = e.SetCompletion(ctx, "a", 50).Wait(ctx)
	if saved.Done {
		t.Fatalf("dropping below 100 should reopen the quest")
	}

	if _, err := e.UpdateQuest(ctx, "a", map[string]any{"title": "Renamed"}).Wait(ctx); err != nil {
		t.Fatalf("update: %v", err)
	}
	if mp.lastCall() != "update" {
		t.Fatalf("expected a full update, got %q", mp.lastCall())
	}
}

func TestUpdateQuestFailureReverts(t *testing.T) {
	mp := newMemoryPersistence(seed("a")...)
	e := newTestEngine(t, mp)
	ctx := context.Background()

	mp.fail = errBoom
	ticket := e.UpdateQuest(ctx, "a", map[string]any{"completion": 70})
	doc := e.Snapshot().Doc
	if q, _ := doc.Find("a"); q.Completion != 70 {
		t.Fatalf("expected optimistic completion 70, got %d", q.Completion)
	}
	if _, err := ticket.Wait(ctx); !errors.Is(err, errBoom) {
		t.Fatalf("expected store error, got %v", err)
	}
	doc = e.Snapshot().Doc
	if q, _ := doc.Find("a"); q.Completion != 0 {
		t.Fatalf("expected completion restored to 0, got %d", q.Completion)
	}
}

func TestOverlappingFailedUpdatesRestoreStoredValue(t *testing.T) {
	mp := newMemoryPersistence(seed("a")...)
	e := newTestEngine(t, mp)
	ctx := context.Background()

	gate := make(chan struct{})
	mp.mu.Lock()
	mp.gate = gate
	mp.fail = errBoom
	mp.mu.Unlock()

	first := e.UpdateQuest(ctx, "a", map[string]any{"completion": 30})
	second := e.UpdateQuest(ctx, "a", map[string]any{"completion": 60})
	close(gate)

	if _, err := first.Wait(ctx); err == nil {
		t.Fatalf("expected first update to fail")
	}
	if _, err := second.Wait(ctx); err == nil {
		t.Fatalf("expected second update to fail")
	}
	e.Wait()

	// Neither value reached the store, so the local record must match it.
	doc := e.Snapshot().Doc
	q, _ := doc.Find("a")
	if q.Completion != 0 {
		t.Fatalf("expected completion 0 after both failures, got %d", q.Completion)
	}
}

func TestFailedUpdateWaitsForOverlappingSave(t *testing.T) {
	mp := newMemoryPersistence(seed("a")...)
	e := newTestEngine(t, mp)
	ctx := context.Background()

	gate := make(chan struct{})
	mp.mu.Lock()
	mp.gate = gate
	mp.mu.Unlock()

	// The title edit saves; the progress write is refused by the store.
	mp.refuse = map[string]bool{"progress": true}
	saved := e.UpdateQuest(ctx, "a", map[string]any{"title": "Renamed"})
	failed := e.UpdateQuest(ctx, "a", map[string]any{"completion": 80})
	close(gate)

	if _, err := saved.Wait(ctx); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if _, err := failed.Wait(ctx); !errors.Is(err, errBoom) {
		t.Fatalf("expected store error, got %v", err)
	}
	e.Wait()

	doc := e.Snapshot().Doc
	q, _ := doc.Find("a")
	if q.Title != "Renamed" || q.Completion != 0 {
		t.Fatalf("expected the saved title without the refused completion, got %q at %d", q.Title, q.Completion)
	}
}

func TestConcurrentCourseAddsRollBackOnlyTheFailure(t *testing.T) {
	mp := newMemoryPersistence()
	mp.refuse = map[string]bool{"X": true}
	e := newTestEngine(t, mp)
	ctx := context.Background()

	gate := make(chan struct{})
	mp.mu.Lock()
	mp.gate = gate
	mp.mu.Unlock()

	x := e.AddCourse(ctx, "X")
	y := e.AddCourse(ctx, "Y")
	if got := e.Snapshot().Doc.Courses; !sameIDs(got, []string{state.DefaultLabel, "X", "Y"}) {
		t.Fatalf("expected both courses applied, got %v", got)
	}
	close(gate)

	if _, err := x.Wait(ctx); !errors.Is(err, errBoom) {
		t.Fatalf("expected X to fail, got %v", err)
	}
	if _, err := y.Wait(ctx); err != nil {
		t.Fatalf("expected Y to save, got %v", err)
	}
	e.Wait()
	if got := e.Snapshot().Doc.Courses; !sameIDs(got, []string{state.DefaultLabel, "Y"}) {
		t.Fatalf("expected only X rolled back, got %v", got)
	}
}

func TestConcurrentCourseRemovesRestoreOnlyTheFailure(t *testing.T) {
	mp := newMemoryPersistence()
	mp.doc.Courses = []string{"A", "B", "C"}
	mp.refuse = map[string]bool{"A": true}
	e := newTestEngine(t, mp)
	ctx := context.Background()

	gate := make(chan struct{})
	mp.mu.Lock()
	mp.gate = gate
	mp.mu.Unlock()

	a := e.RemoveCourse(ctx, "A")
	b := e.RemoveCourse(ctx, "B")
	close(gate)
	if _, err := a.Wait(ctx); !errors.Is(err, errBoom) {
		t.Fatalf("expected A to fail, got %v", err)
	}
	if _, err := b.Wait(ctx); err != nil {
		t.Fatalf("expected B to save, got %v", err)
	}
	e.Wait()
	if got := e.Snapshot().Doc.Courses; !sameIDs(got, []string{"A", "C"}) {
		t.Fatalf("expected A back in front of C, got %v", got)
	}
}

func TestAddQuestSurvivesReloadWhilePending(t *testing.T) {
	mp := newMemoryPersistence()
	e := newTestEngine(t, mp)
	ctx := context.Background()
	e.UI(func(ui *state.UI) { ui.StartNewQuestForDate("2025-01-12") })

	gate := make(chan struct{})
	mp.mu.Lock()
	mp.gate = gate
	mp.mu.Unlock()

	ticket := e.AddQuest(ctx, quest.Normalize(map[string]any{"title": "Essay"}))
	if err := e.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	close(gate)

	saved, err := ticket.Wait(ctx)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if saved.CreatedAt == nil {
		t.Fatalf("expected the stored record, got %+v", saved)
	}
	snap := e.Snapshot()
	if snap.UI.Draft != nil || snap.UI.SelectedQuestID != saved.ID {
		t.Fatalf("expected draft cleared and quest selected, got %+v", snap.UI)
	}
	if q, ok := snap.Doc.Find(saved.ID); !ok || q.CreatedAt == nil {
		t.Fatalf("expected the stored record locally, got %+v", snap.Doc.Quests)
	}
}

func TestCourseMutations(t *testing.T) {
	mp := newMemoryPersistence()
	e := newTestEngine(t, mp)
	ctx := context.Background()

	if _, err := e.AddCourse(ctx, "  Math ").Wait(ctx); err != nil {
		t.Fatalf("add course: %v", err)
	}
	calls := len(mp.calls)
	if _, err := e.AddCourse(ctx, "Math").Wait(ctx); err != nil {
		t.Fatalf("duplicate add: %v", err)
	}
	if _, err := e.AddCourse(ctx, "  ").Wait(ctx); err != nil {
		t.Fatalf("blank add: %v", err)
	}
	if len(mp.calls) != calls {
		t.Fatalf("duplicate and blank names should not reach the store")
	}
	if got := e.Snapshot().Doc.Courses; !sameIDs(got, []string{state.DefaultLabel, "Math"}) {
		t.Fatalf("unexpected courses %v", got)
	}

	mp.fail = errBoom
	if _, err := e.RemoveCourse(ctx, "Math").Wait(ctx); !errors.Is(err, errBoom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if got := e.Snapshot().Doc.Courses; !sameIDs(got, []string{state.DefaultLabel, "Math"}) {
		t.Fatalf("expected courses restored, got %v", got)
	}
}

func TestRemoveLastCategoryInjectsDefault(t *testing.T) {
	mp := newMemoryPersistence()
	mp.doc.Categories = []string{"Labs"}
	e := newTestEngine(t, mp)
	ctx := context.Background()

	if _, err := e.RemoveCategory(ctx, "Labs").Wait(ctx); err != nil {
		t.Fatalf("remove category: %v", err)
	}
	if got := e.Snapshot().Doc.Categories; !sameIDs(got, []string{state.DefaultLabel}) {
		t.Fatalf("expected General, got %v", got)
	}
}

func TestFailedRemoveOfLastCategoryDropsStandIn(t *testing.T) {
	mp := newMemoryPersistence()
	mp.doc.Categories = []string{"Labs"}
	e := newTestEngine(t, mp)
	ctx := context.Background()

	mp.fail = errBoom
	if _, err := e.RemoveCategory(ctx, "Labs").Wait(ctx); !errors.Is(err, errBoom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if got := e.Snapshot().Doc.Categories; !sameIDs(got, []string{"Labs"}) {
		t.Fatalf("expected Labs restored without the default, got %v", got)
	}
}

func TestImportReplacesAndReverts(t *testing.T) {
	mp := newMemoryPersistence(seed("a")...)
	e := newTestEngine(t, mp)
	ctx := context.Background()

	doc := state.Document{Quests: seed("x", "y")}
	if _, err := e.Import(ctx, doc).Wait(ctx); err != nil {
		t.Fatalf("import: %v", err)
	}
	if got := questIDs(e.Snapshot().Doc); !sameIDs(got, []string{"x", "y"}) {
		t.Fatalf("expected imported quests, got %v", got)
	}

	mp.fail = errBoom
	if _, err := e.Import(ctx, state.Document{}).Wait(ctx); !errors.Is(err, errBoom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if got := questIDs(e.Snapshot().Doc); !sameIDs(got, []string{"x", "y"}) {
		t.Fatalf("expected previous document restored, got %v", got)
	}
}

func TestToggleSubtaskSetsProgress(t *testing.T) {
	mp := newMemoryPersistence(seed("a")...)
	e := newTestEngine(t, mp)
	ctx := context.Background()

	e.UI(func(ui *state.UI) {
		ui.AddSubtask("a", "read")
		ui.AddSubtask("a", "write")
	})
	saved, err := e.ToggleSubtask(ctx, "a", 0).Wait(ctx)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if saved.Completion != 50 || saved.Done {
		t.Fatalf("expected 50%% open, got %+v", saved)
	}
	saved, _ = e.ToggleSubtask(ctx, "a", 1).Wait(ctx)
	if saved.Completion != 100 || !saved.Done {
		t.Fatalf("expected done at 100, got %+v", saved)
	}
	if _, err := e.ToggleSubtask(ctx, "a", 5).Wait(ctx); err == nil {
		t.Fatalf("expected an error for a missing subtask")
	}
}

func TestEventsFireBeforePersistence(t *testing.T) {
	mp := newMemoryPersistence()
	e := newTestEngine(t, mp)
	ctx := context.Background()
	drain(e)

	gate := make(chan struct{})
	mp.mu.Lock()
	mp.gate = gate
	mp.mu.Unlock()

	ticket := e.AddQuest(ctx, quest.Normalize(map[string]any{"title": "x"}))
	select {
	case ev := <-e.Events():
		if ev.Phase != PhaseApplied || ev.Kind != KindAddQuest {
			t.Fatalf("unexpected first event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("expected an applied event while the store is blocked")
	}
	close(gate)
	if _, err := ticket.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func drain(e *Engine) {
	for {
		select {
		case <-e.Events():
		default:
			return
		}
	}
}
