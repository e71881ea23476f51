package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"tableflip.dev/questlog/pkg/quest"
	"tableflip.dev/questlog/pkg/state"
)

type testConfig struct {
	path string
}

func (t testConfig) Backend() string     { return BackendLocal }
func (t testConfig) BasePath() string    { return t.path }
func (t testConfig) RedisAddr() string   { return "" }
func (t testConfig) RedisPrefix() string { return "" }
func (t testConfig) User() string        { return "" }
func (t testConfig) LogMode() string     { return "" }

func fixedClock(t *testing.T) time.Time {
	t.Helper()
	at := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	prev := clock
	clock = func() time.Time { return at }
	t.Cleanup(func() { clock = prev })
	return at
}

// exercise runs the shared contract against any backend.
func exercise(t *testing.T, p Persistence) {
	t.Helper()
	ctx := context.Background()
	at := fixedClock(t)

	saved, err := p.AddQuest(ctx, quest.Normalize(map[string]any{"title": "Essay", "completion": 250}))
	if err != nil {
		t.Fatalf("add quest: %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("expected an assigned id")
	}
	if saved.Completion != 100 {
		t.Fatalf("expected clamped completion, got %d", saved.Completion)
	}
	if saved.CreatedAt == nil || !saved.CreatedAt.Equal(at) {
		t.Fatalf("expected createdAt stamp, got %v", saved.CreatedAt)
	}

	if err := p.UpdateQuestProgress(ctx, saved.ID, quest.Progress{Completion: 140, Done: true}); err != nil {
		t.Fatalf("update progress: %v", err)
	}
	doc, err := p.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got, ok := doc.Find(saved.ID)
	if !ok || got.Completion != 100 || !got.Done || got.CompletedAt == nil {
		t.Fatalf("unexpected progress result %+v", got)
	}

	if err := p.UpdateQuest(ctx, saved.ID, map[string]any{"done": false, "notes": "redo"}); err != nil {
		t.Fatalf("update quest: %v", err)
	}
	doc, _ = p.LoadAll(ctx)
	got, _ = doc.Find(saved.ID)
	if got.Done || got.CompletedAt != nil || got.Notes != "redo" || got.Title != "Essay" {
		t.Fatalf("unexpected patch result %+v", got)
	}

	if err := p.UpdateQuest(ctx, "missing", map[string]any{"title": "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := p.DeleteQuest(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}

	for _, name := range []string{"Math", "Art", "Math"} {
		if err := p.AddCourse(ctx, name); err != nil {
			t.Fatalf("add course: %v", err)
		}
	}
	if err := p.AddCategory(ctx, "Tests"); err != nil {
		t.Fatalf("add category: %v", err)
	}
	if err := p.RemoveCourse(ctx, "Math"); err != nil {
		t.Fatalf("remove course: %v", err)
	}
	if err := p.RemoveCourse(ctx, "Math"); err != nil {
		t.Fatalf("remove course twice: %v", err)
	}
	doc, _ = p.LoadAll(ctx)
	if len(doc.Courses) != 1 || doc.Courses[0] != "Art" {
		t.Fatalf("unexpected courses %v", doc.Courses)
	}
	if len(doc.Categories) != 1 || doc.Categories[0] != "Tests" {
		t.Fatalf("unexpected categories %v", doc.Categories)
	}

	if err := p.DeleteQuest(ctx, saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	imported := PrepareImport(state.Document{Quests: []quest.Quest{
		quest.Normalize(map[string]any{"course": "Bio", "category": "Lab", "dueDate": "2025-02-01"}),
		quest.Normalize(map[string]any{"id": "keep"}),
	}})
	if err := p.Import(ctx, imported); err != nil {
		t.Fatalf("import: %v", err)
	}
	doc, _ = p.LoadAll(ctx)
	if len(doc.Quests) != 2 {
		t.Fatalf("expected 2 imported quests, got %d", len(doc.Quests))
	}
	if _, ok := doc.Find("bio-lab-2025-02-01"); !ok {
		t.Fatalf("expected slug id, got %+v", doc.Quests)
	}
	if len(doc.Courses) != 2 || doc.Courses[0] != "Bio" || doc.Courses[1] != state.DefaultLabel {
		t.Fatalf("unexpected imported courses %v", doc.Courses)
	}
}

func TestPrepareImportDefaults(t *testing.T) {
	doc := PrepareImport(state.Document{Quests: []quest.Quest{
		quest.Normalize(map[string]any{}),
		quest.Normalize(map[string]any{}),
	}})
	if doc.Quests[0].Course != state.DefaultLabel || doc.Quests[0].Category != state.DefaultLabel {
		t.Fatalf("expected General defaults, got %+v", doc.Quests[0])
	}
	if doc.Quests[0].ID == doc.Quests[1].ID {
		t.Fatalf("expected distinct ids, got %q twice", doc.Quests[0].ID)
	}
}

func TestOpenLocal(t *testing.T) {
	p, err := Open(context.Background(), testConfig{path: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer p.Close()
	if _, ok := p.(*Local); !ok {
		t.Fatalf("expected local backend, got %T", p)
	}
}
