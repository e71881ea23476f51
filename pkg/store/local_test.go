package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tableflip.dev/questlog/pkg/quest"
	"tableflip.dev/questlog/pkg/state"
)

func TestLocalContract(t *testing.T) {
	p, err := NewLocal(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	exercise(t, p)
}

func TestLocalKeepsUnknownFields(t *testing.T) {
	p, err := NewLocal(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	ctx := context.Background()
	saved, err := p.AddQuest(ctx, quest.Normalize(map[string]any{"id": "a/b", "priority": "high"}))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	doc, err := p.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got, ok := doc.Find(saved.ID)
	if !ok {
		t.Fatalf("expected quest with slash in id to round trip")
	}
	if string(got.Extra["priority"]) != `"high"` {
		t.Fatalf("expected pass-through field, got %v", got.Extra)
	}
}

func TestPersistenceWatchEmitsQuestChanges(t *testing.T) {
	p, err := NewLocal(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Allow watcher goroutine to subscribe to directories before storing.
	time.Sleep(50 * time.Millisecond)

	if _, err := p.AddQuest(ctx, quest.Normalize(map[string]any{"id": "hello"})); err != nil {
		t.Fatalf("store quest: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-ch:
			if evt.Type == EventInvalidated {
				return
			}
			if evt.Type == EventQuestChanged {
				if evt.ID != "hello" {
					t.Fatalf("expected quest 'hello', got %q", evt.ID)
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for quest change event")
		}
	}
}

func TestBatcherDedupesAndInvalidates(t *testing.T) {
	var b batcher
	b.add(Event{Type: EventQuestChanged, ID: "a"})
	b.add(Event{Type: EventQuestChanged, ID: "a"})
	b.add(Event{Type: EventMetaChanged, ID: "courses"})
	if got := b.drain(); len(got) != 2 || got[0].ID != "a" || got[1].ID != "courses" {
		t.Fatalf("unexpected batch %v", got)
	}
	if got := b.drain(); len(got) != 0 {
		t.Fatalf("drain should reset, got %v", got)
	}

	b.add(Event{Type: EventQuestChanged, ID: "a"})
	b.add(Event{Type: EventInvalidated})
	if got := b.drain(); len(got) != 1 || got[0].Type != EventInvalidated {
		t.Fatalf("invalidation should win, got %v", got)
	}
}

func TestLocalImportReplacesQuests(t *testing.T) {
	p, err := NewLocal(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	ctx := context.Background()
	if _, err := p.AddQuest(ctx, quest.Normalize(map[string]any{"id": "old"})); err != nil {
		t.Fatalf("add: %v", err)
	}

	doc := state.Document{Quests: []quest.Quest{{ID: "a"}, {ID: "b"}}, Courses: []string{"Bio"}}
	if err := p.Import(ctx, doc); err != nil {
		t.Fatalf("import: %v", err)
	}
	got, err := p.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Quests) != 2 || got.IndexOf("old") >= 0 || got.IndexOf("a") < 0 || got.IndexOf("b") < 0 {
		t.Fatalf("unexpected quests after import: %+v", got.Quests)
	}
}

func TestLocalImportFailureKeepsPreviousQuests(t *testing.T) {
	base := t.TempDir()
	p, err := NewLocal(base, nil)
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	ctx := context.Background()
	if _, err := p.AddQuest(ctx, quest.Normalize(map[string]any{"id": "old", "title": "Keep"})); err != nil {
		t.Fatalf("add: %v", err)
	}

	// A directory where quest "b" would be written makes that write fail.
	pk := keyToPathTransform(toKey("b"))
	blocked := filepath.Join(append(append([]string{base}, pk.Path...), pk.FileName)...)
	if err := os.MkdirAll(blocked, 0o755); err != nil {
		t.Fatalf("block: %v", err)
	}

	doc := state.Document{Quests: []quest.Quest{{ID: "a"}, {ID: "b"}}}
	if err := p.Import(ctx, doc); err == nil {
		t.Fatalf("expected import to fail")
	}
	got, err := p.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Quests) != 1 || got.Quests[0].ID != "old" || got.Quests[0].Title != "Keep" {
		t.Fatalf("expected only the previous quest, got %+v", got.Quests)
	}
}
