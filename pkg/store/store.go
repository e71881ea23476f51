// Package store persists planner documents. Two backends implement the same
// contract: a diskv tree on the local disk and a Redis keyspace.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"tableflip.dev/questlog/pkg/logger"
	"tableflip.dev/questlog/pkg/quest"
	"tableflip.dev/questlog/pkg/state"
)

// ErrNotFound is returned when a quest id is not stored.
var ErrNotFound = errors.New("store: quest not found")

// Persistence is the contract the mutation engine writes through.
type Persistence interface {
	// LoadAll returns every stored quest plus the course and category sets.
	LoadAll(ctx context.Context) (state.Document, error)
	// AddQuest stores q and returns the saved record with its id and
	// timestamps.
	AddQuest(ctx context.Context, q quest.Quest) (quest.Quest, error)
	// UpdateQuestProgress applies only completion and done.
	UpdateQuestProgress(ctx context.Context, id string, p quest.Progress) error
	// UpdateQuest merges patch into the stored record.
	UpdateQuest(ctx context.Context, id string, patch map[string]any) error
	DeleteQuest(ctx context.Context, id string) error
	AddCourse(ctx context.Context, name string) error
	RemoveCourse(ctx context.Context, name string) error
	AddCategory(ctx context.Context, name string) error
	RemoveCategory(ctx context.Context, name string) error
	// Import replaces the stored document with doc.
	Import(ctx context.Context, doc state.Document) error
	// Watch streams change notifications until ctx is done.
	Watch(ctx context.Context) (<-chan Event, error)
	Close() error
}

// Open returns the backend cfg selects, loading configuration when cfg is nil.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (Persistence, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	switch cfg.Backend() {
	case BackendRemote:
		return NewRemote(ctx, RemoteOptions{
			Addr:   cfg.RedisAddr(),
			Prefix: cfg.RedisPrefix(),
			User:   cfg.User(),
		}, log)
	case BackendLocal, "":
		return NewLocal(cfg.BasePath(), log)
	default:
		return nil, fmt.Errorf("store: unknown backend %q", cfg.Backend())
	}
}

// clock is swapped in tests.
var clock = time.Now

// prepareNew fills the id and timestamps of a quest about to be inserted.
func prepareNew(q quest.Quest) quest.Quest {
	q = q.Normalized()
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	now := clock()
	if q.CreatedAt == nil || q.CreatedAt.IsZero() {
		q.CreatedAt = quest.Stamp(now)
	}
	q.UpdatedAt = quest.Stamp(now)
	return stampCompletion(q, now)
}

// applyProgress writes p onto q.
func applyProgress(q quest.Quest, p quest.Progress) quest.Quest {
	q.Completion = quest.ClampCompletion(p.Completion)
	q.Done = p.Done
	now := clock()
	q.UpdatedAt = quest.Stamp(now)
	return stampCompletion(q, now)
}

// applyPatch merges patch onto q. The id never changes.
func applyPatch(q quest.Quest, patch map[string]any) quest.Quest {
	id := q.ID
	created := q.CreatedAt
	merged := quest.Merge(q, patch)
	merged.ID = id
	merged.CreatedAt = created
	now := clock()
	merged.UpdatedAt = quest.Stamp(now)
	return stampCompletion(merged, now)
}

// stampCompletion keeps completedAt in step with done.
func stampCompletion(q quest.Quest, now time.Time) quest.Quest {
	switch {
	case q.Done && q.CompletedAt == nil:
		q.CompletedAt = quest.Stamp(now)
	case !q.Done:
		q.CompletedAt = nil
	}
	return q
}

// PrepareImport assigns slug ids to quests lacking one and defaults empty
// courses and categories, the way raw assignment files are brought in.
func PrepareImport(doc state.Document) state.Document {
	doc = doc.Clone()
	seen := make(map[string]struct{}, len(doc.Quests))
	for i := range doc.Quests {
		q := &doc.Quests[i]
		if q.Course == "" {
			q.Course = state.DefaultLabel
		}
		if q.Category == "" {
			q.Category = state.DefaultLabel
		}
		if q.ID == "" {
			q.ID = quest.SlugID(*q, i+1)
		}
		if _, dup := seen[q.ID]; dup {
			q.ID = fmt.Sprintf("%s-%d", q.ID, i+1)
		}
		seen[q.ID] = struct{}{}
	}
	doc.Courses = state.Dedupe(append(doc.Courses, labelsOf(doc.Quests, func(q quest.Quest) string { return q.Course })...))
	doc.Categories = state.Dedupe(append(doc.Categories, labelsOf(doc.Quests, func(q quest.Quest) string { return q.Category })...))
	return doc
}

func labelsOf(qs []quest.Quest, field func(quest.Quest) string) []string {
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		if l := state.CleanLabel(field(q)); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// sortQuests orders quests by creation time, then id. Records without a
// creation time sort last.
func sortQuests(qs []quest.Quest) {
	sort.SliceStable(qs, func(i, j int) bool {
		var lt, rt time.Time
		if qs[i].CreatedAt != nil {
			lt = qs[i].CreatedAt.Time
		}
		if qs[j].CreatedAt != nil {
			rt = qs[j].CreatedAt.Time
		}
		switch {
		case lt.IsZero() && rt.IsZero():
			return qs[i].ID < qs[j].ID
		case lt.IsZero():
			return false
		case rt.IsZero():
			return true
		case lt.Equal(rt):
			return qs[i].ID < qs[j].ID
		default:
			return lt.Before(rt)
		}
	})
}

func removeLabel(labels []string, name string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l != name {
			out = append(out, l)
		}
	}
	return out
}
