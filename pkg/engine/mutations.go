package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"tableflip.dev/questlog/pkg/quest"
	"tableflip.dev/questlog/pkg/state"
	"tableflip.dev/questlog/pkg/store"
)

const (
	coursesKey    = "courses"
	categoriesKey = "categories"
)

func questKey(id string) string { return "quest:" + id }

// AddQuest appends q, assigning an id when it has none, and persists it.
// Every successful save clears the new-quest draft, selects the quest and
// resolves the ticket with the stored record. The local copy is replaced by
// the stored one unless the quest has changed locally since.
func (e *Engine) AddQuest(ctx context.Context, q quest.Quest) *Ticket {
	q = q.Normalized()
	if q.ID == "" {
		q.ID = uuid.NewString()
	}

	e.mu.Lock()
	if e.doc.IndexOf(q.ID) >= 0 {
		e.mu.Unlock()
		return resolved(uuid.NewString(), KindAddQuest, q, fmt.Errorf("engine: quest %s already exists", q.ID))
	}
	at := len(e.doc.Quests)
	e.doc.Quests = append(e.doc.Quests, q.Clone())
	v := e.beginLocked(questKey(q.ID), func() { e.dropLocked(q.ID) })
	e.mu.Unlock()

	saved := q
	t := newTicket(uuid.NewString(), KindAddQuest, q)
	e.run(ctx, mutation{
		ticket:    t,
		key:       questKey(q.ID),
		version:   v,
		success:   "Quest saved.",
		failure:   "Could not save quest.",
		apply:     func() { e.putLocked(saved, at) },
		committed: func() { e.ui.CommitDraft(saved.ID) },
		result:    func() quest.Quest { return saved.Clone() },
		persist: func(ctx context.Context) error {
			stored, err := e.store.AddQuest(ctx, q)
			if err != nil {
				return err
			}
			saved = stored
			return nil
		}})
	return t
}

// UpdateQuest merges changes into the quest with id. Patches touching only
// completion and done are persisted as progress updates.
func (e *Engine) UpdateQuest(ctx context.Context, id string, changes map[string]any) *Ticket {
	e.mu.Lock()
	i := e.doc.IndexOf(id)
	if i < 0 {
		e.mu.Unlock()
		return resolved(uuid.NewString(), KindUpdateQuest, quest.Quest{ID: id}, fmt.Errorf("%w: %s", ErrUnknownQuest, id))
	}
	prev := e.doc.Quests[i].Clone()
	next := quest.Merge(prev, changes)
	next.ID = id
	switch {
	case next.Done && next.CompletedAt == nil:
		next.CompletedAt = quest.Stamp(e.now())
	case !next.Done:
		next.CompletedAt = nil
	}
	e.doc.Quests[i] = next
	v := e.beginLocked(questKey(id), func() { e.putLocked(prev, i) })
	e.mu.Unlock()

	t := newTicket(uuid.NewString(), KindUpdateQuest, next)
	e.run(ctx, mutation{
		ticket:  t,
		key:     questKey(id),
		version: v,
		success: "Progress saved.",
		failure: "Could not save progress.",
		apply:   func() { e.putLocked(next, i) },
		persist: func(ctx context.Context) error {
			if progressOnly(changes) {
				return e.store.UpdateQuestProgress(ctx, id, next.Progress())
			}
			return e.store.UpdateQuest(ctx, id, changes)
		}})
	return t
}

func progressOnly(changes map[string]any) bool {
	if len(changes) == 0 {
		return false
	}
	for k := range changes {
		if k != quest.FieldCompletion && k != quest.FieldDone {
			return false
		}
	}
	return true
}

// SetCompletion moves a quest to pct. Reaching 100 marks it done; dropping
// below 100 reopens a done quest.
func (e *Engine) SetCompletion(ctx context.Context, id string, pct int) *Ticket {
	pct = quest.ClampCompletion(pct)
	changes := map[string]any{quest.FieldCompletion: pct}
	if pct == 100 {
		changes[quest.FieldDone] = true
	} else if q, ok := e.find(id); ok && q.Done {
		changes[quest.FieldDone] = false
	}
	return e.UpdateQuest(ctx, id, changes)
}

// SetDone checks or unchecks a quest. Checking it also fills completion.
func (e *Engine) SetDone(ctx context.Context, id string, done bool) *Ticket {
	changes := map[string]any{quest.FieldDone: done}
	if done {
		changes[quest.FieldCompletion] = 100
	}
	return e.UpdateQuest(ctx, id, changes)
}

// ToggleSubtask flips one checklist item and updates the quest's progress
// to the share of finished items.
func (e *Engine) ToggleSubtask(ctx context.Context, questID string, index int) *Ticket {
	var (
		pct int
		ok  bool
	)
	e.UI(func(ui *state.UI) { pct, ok = ui.ToggleSubtask(questID, index) })
	if !ok {
		return resolved(uuid.NewString(), KindUpdateQuest, quest.Quest{ID: questID}, fmt.Errorf("engine: no subtask %d on %s", index, questID))
	}
	return e.UpdateQuest(ctx, questID, map[string]any{
		quest.FieldCompletion: pct,
		quest.FieldDone:       pct == 100,
	})
}

// RemoveQuest deletes the quest with id. A failed delete puts the quest
// back where it was.
func (e *Engine) RemoveQuest(ctx context.Context, id string) *Ticket {
	e.mu.Lock()
	i := e.doc.IndexOf(id)
	if i < 0 {
		e.mu.Unlock()
		return resolved(uuid.NewString(), KindRemoveQuest, quest.Quest{ID: id}, fmt.Errorf("%w: %s", ErrUnknownQuest, id))
	}
	removed := e.doc.Quests[i]
	e.doc.Quests = append(e.doc.Quests[:i:i], e.doc.Quests[i+1:]...)
	if e.ui.SelectedQuestID == id {
		e.ui.SelectedQuestID = ""
	}
	if e.ui.DrawerQuestID == id {
		e.ui.DrawerQuestID = ""
	}
	v := e.beginLocked(questKey(id), func() { e.putLocked(removed, i) })
	e.mu.Unlock()

	t := newTicket(uuid.NewString(), KindRemoveQuest, removed)
	e.run(ctx, mutation{
		ticket:  t,
		key:     questKey(id),
		version: v,
		success: "Quest deleted.",
		failure: "Could not delete quest.",
		apply:   func() { e.dropLocked(id) },
		result:  func() quest.Quest { return removed },
		persist: func(ctx context.Context) error {
			err := e.store.DeleteQuest(ctx, id)
			if errors.Is(err, store.ErrNotFound) {
				e.log.Debug("quest already gone", "id", id)
				return nil
			}
			return err
		}})
	return t
}

// AddCourse adds a course label. Blank and duplicate names resolve
// immediately without touching the store.
func (e *Engine) AddCourse(ctx context.Context, name string) *Ticket {
	return e.addLabel(ctx, KindAddCourse, coursesKey, name, &e.doc.Courses, e.store.AddCourse)
}

// RemoveCourse removes a course label.
func (e *Engine) RemoveCourse(ctx context.Context, name string) *Ticket {
	return e.removeLabel(ctx, KindRemoveCourse, coursesKey, name, &e.doc.Courses, e.store.RemoveCourse)
}

// AddCategory adds a category label.
func (e *Engine) AddCategory(ctx context.Context, name string) *Ticket {
	return e.addLabel(ctx, KindAddCategory, categoriesKey, name, &e.doc.Categories, e.store.AddCategory)
}

// RemoveCategory removes a category label.
func (e *Engine) RemoveCategory(ctx context.Context, name string) *Ticket {
	return e.removeLabel(ctx, KindRemoveCategory, categoriesKey, name, &e.doc.Categories, e.store.RemoveCategory)
}

// Label mutations are tracked per name, so concurrent changes to different
// names settle independently.
func labelKey(set, name string) string { return set + ":" + name }

func (e *Engine) addLabel(ctx context.Context, kind Kind, set, name string, labels *[]string, persist func(context.Context, string) error) *Ticket {
	name = state.CleanLabel(name)

	e.mu.Lock()
	if name == "" || state.IndexOfLabel(*labels, name) >= 0 {
		e.mu.Unlock()
		return resolved(uuid.NewString(), kind, quest.Quest{}, nil)
	}
	*labels = append(*labels, name)
	key := labelKey(set, name)
	v := e.beginLocked(key, func() { e.dropLabelLocked(labels, name) })
	e.mu.Unlock()

	t := newTicket(uuid.NewString(), kind, quest.Quest{})
	e.run(ctx, mutation{
		ticket:  t,
		key:     key,
		version: v,
		success: fmt.Sprintf("%s saved.", labelNoun(set)),
		failure: fmt.Sprintf("Could not save %s.", strings.ToLower(labelNoun(set))),
		apply:   func() { insertLabel(labels, name, len(*labels), false) },
		persist: func(ctx context.Context) error {
			return persist(ctx, name)
		}})
	return t
}

func (e *Engine) removeLabel(ctx context.Context, kind Kind, set, name string, labels *[]string, persist func(context.Context, string) error) *Ticket {
	name = state.CleanLabel(name)

	e.mu.Lock()
	i := state.IndexOfLabel(*labels, name)
	if i < 0 {
		e.mu.Unlock()
		return resolved(uuid.NewString(), kind, quest.Quest{}, nil)
	}
	// Removing the last name makes EnsureDefaults inject a stand-in.
	standIn := len(*labels) == 1
	e.dropLabelLocked(labels, name)
	key := labelKey(set, name)
	v := e.beginLocked(key, func() { insertLabel(labels, name, i, standIn) })
	e.mu.Unlock()

	t := newTicket(uuid.NewString(), kind, quest.Quest{})
	e.run(ctx, mutation{
		ticket:  t,
		key:     key,
		version: v,
		success: fmt.Sprintf("%s removed.", labelNoun(set)),
		failure: fmt.Sprintf("Could not remove %s.", strings.ToLower(labelNoun(set))),
		apply:   func() { e.dropLabelLocked(labels, name) },
		persist: func(ctx context.Context) error {
			return persist(ctx, name)
		}})
	return t
}

// dropLabelLocked removes name, injecting the default label when the set
// would be left empty.
func (e *Engine) dropLabelLocked(labels *[]string, name string) {
	if i := state.IndexOfLabel(*labels, name); i >= 0 {
		*labels = append((*labels)[:i:i], (*labels)[i+1:]...)
	}
	e.doc.EnsureDefaults()
}

// insertLabel puts name back at index at. With standIn set, a lone default
// label that was only injected for the empty set gives way to it.
func insertLabel(labels *[]string, name string, at int, standIn bool) {
	if state.IndexOfLabel(*labels, name) >= 0 {
		return
	}
	if standIn && len(*labels) == 1 && (*labels)[0] == state.DefaultLabel {
		*labels = []string{name}
		return
	}
	at = min(max(at, 0), len(*labels))
	*labels = append((*labels)[:at:at], append([]string{name}, (*labels)[at:]...)...)
}

func labelNoun(set string) string {
	if set == coursesKey {
		return "Course"
	}
	return "Category"
}

// Import replaces the whole document. A failed import restores the
// previous one unless something else changed it since.
func (e *Engine) Import(ctx context.Context, doc state.Document) *Ticket {
	next := doc.Clone()
	next.EnsureDefaults()

	e.mu.Lock()
	prev := e.doc
	e.doc = next.Clone()
	v := e.beginLocked(docKey, func() { e.doc = prev })
	e.floor = v
	e.mu.Unlock()

	saved := next
	t := newTicket(uuid.NewString(), KindImport, quest.Quest{})
	e.run(ctx, mutation{
		ticket:  t,
		key:     docKey,
		version: v,
		success: fmt.Sprintf("Imported %d quests.", len(next.Quests)),
		failure: "Could not import quests.",
		apply:   func() { e.doc = saved.Clone() },
		persist: func(ctx context.Context) error {
			if err := e.store.Import(ctx, next); err != nil {
				return err
			}
			stored, err := e.store.LoadAll(ctx)
			if err != nil {
				e.log.Warn("reload after import", "error", err)
				return nil
			}
			stored.EnsureDefaults()
			saved = stored
			return nil
		}})
	return t
}

func (e *Engine) find(id string) (quest.Quest, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	q, ok := e.doc.Find(id)
	return q.Clone(), ok
}
