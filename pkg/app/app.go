package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tableflip.dev/questlog/pkg/calendar"
	"tableflip.dev/questlog/pkg/engine"
	"tableflip.dev/questlog/pkg/filter"
	"tableflip.dev/questlog/pkg/quest"
	"tableflip.dev/questlog/pkg/state"
	"tableflip.dev/questlog/pkg/stats"
	"tableflip.dev/questlog/pkg/store"
)

// Service provides high-level quest operations on top of the mutation engine.
// Every mutation waits for its ticket so callers see store failures after the
// engine has rolled the change back. UIs and CLIs share it.
type Service struct {
	Engine *engine.Engine
}

var (
	ErrNoEngine  = errors.New("app: no engine configured")
	ErrAmbiguous = errors.New("app: ambiguous quest id")
	ErrNotFound  = errors.New("app: quest not found")
)

func (s *Service) engine() (*engine.Engine, error) {
	if s == nil || s.Engine == nil {
		return nil, ErrNoEngine
	}
	return s.Engine, nil
}

// Document returns a copy of the loaded document.
func (s *Service) Document() (state.Document, error) {
	e, err := s.engine()
	if err != nil {
		return state.Document{}, err
	}
	return e.Snapshot().Doc, nil
}

// Quests lists quests passing f, sorted by f.Sort.
func (s *Service) Quests(ctx context.Context, f filter.Filters) ([]quest.Quest, error) {
	e, err := s.engine()
	if err != nil {
		return nil, err
	}
	return filter.Apply(e.Snapshot().Doc.Quests, f, e.Now()), nil
}

// Resolve finds a quest by id or by a unique id prefix.
func (s *Service) Resolve(ctx context.Context, id string) (quest.Quest, error) {
	e, err := s.engine()
	if err != nil {
		return quest.Quest{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return quest.Quest{}, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	doc := e.Snapshot().Doc
	if q, ok := doc.Find(id); ok {
		return q, nil
	}
	var found []quest.Quest
	for _, q := range doc.Quests {
		if strings.HasPrefix(q.ID, id) {
			found = append(found, q)
		}
	}
	switch len(found) {
	case 0:
		return quest.Quest{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return found[0], nil
	default:
		return quest.Quest{}, fmt.Errorf("%w: %s matches %d quests", ErrAmbiguous, id, len(found))
	}
}

// AddOptions describes a new quest.
type AddOptions struct {
	Title      string
	Course     string
	Category   string
	DueDate    string
	DueTime    string
	EstMinutes int
	Notes      string
	Link       string
	FilePath   string
	Reward     quest.Reward
}

// Add creates a quest. Unknown course and category names are registered
// as labels once the quest is saved.
func (s *Service) Add(ctx context.Context, opts AddOptions) (quest.Quest, error) {
	e, err := s.engine()
	if err != nil {
		return quest.Quest{}, err
	}
	if opts.DueDate != "" {
		if _, ok := calendar.ParseISO(opts.DueDate); !ok {
			return quest.Quest{}, fmt.Errorf("app: invalid due date %q", opts.DueDate)
		}
	}
	raw := map[string]any{
		quest.FieldTitle:    strings.TrimSpace(opts.Title),
		quest.FieldCourse:   state.CleanLabel(opts.Course),
		quest.FieldCategory: state.CleanLabel(opts.Category),
		quest.FieldDueDate:  opts.DueDate,
		quest.FieldDueTime:  opts.DueTime,
		quest.FieldNotes:    opts.Notes,
		quest.FieldLink:     opts.Link,
		quest.FieldFilePath: opts.FilePath,
		quest.FieldReward:   map[string]any{"sx": opts.Reward.SX, "coins": opts.Reward.Coins},
	}
	if opts.EstMinutes > 0 {
		raw[quest.FieldEstMinutes] = opts.EstMinutes
	}

	saved, err := e.AddQuest(ctx, quest.Normalize(raw)).Wait(ctx)
	if err != nil {
		return quest.Quest{}, err
	}
	if err := s.ensureLabels(ctx, saved); err != nil {
		return saved, err
	}
	return saved, nil
}

func (s *Service) ensureLabels(ctx context.Context, q quest.Quest) error {
	doc := s.Engine.Snapshot().Doc
	if q.Course != "" && state.IndexOfLabel(doc.Courses, q.Course) < 0 {
		if _, err := s.Engine.AddCourse(ctx, q.Course).Wait(ctx); err != nil {
			return err
		}
	}
	if q.Category != "" && state.IndexOfLabel(doc.Categories, q.Category) < 0 {
		if _, err := s.Engine.AddCategory(ctx, q.Category).Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Edit merges patch into the quest. Keys are document field names.
func (s *Service) Edit(ctx context.Context, id string, patch map[string]any) (quest.Quest, error) {
	q, err := s.Resolve(ctx, id)
	if err != nil {
		return quest.Quest{}, err
	}
	if len(patch) == 0 {
		return q, nil
	}
	if due, ok := patch[quest.FieldDueDate].(string); ok && due != "" {
		if _, ok := calendar.ParseISO(due); !ok {
			return quest.Quest{}, fmt.Errorf("app: invalid due date %q", due)
		}
	}
	saved, err := s.Engine.UpdateQuest(ctx, q.ID, patch).Wait(ctx)
	if err != nil {
		return quest.Quest{}, err
	}
	return saved, s.ensureLabels(ctx, saved)
}

// SetProgress moves a quest to pct percent complete.
func (s *Service) SetProgress(ctx context.Context, id string, pct int) (quest.Quest, error) {
	q, err := s.Resolve(ctx, id)
	if err != nil {
		return quest.Quest{}, err
	}
	return s.Engine.SetCompletion(ctx, q.ID, pct).Wait(ctx)
}

// Complete checks a quest off.
func (s *Service) Complete(ctx context.Context, id string) (quest.Quest, error) {
	return s.setDone(ctx, id, true)
}

// Reopen unchecks a quest.
func (s *Service) Reopen(ctx context.Context, id string) (quest.Quest, error) {
	return s.setDone(ctx, id, false)
}

func (s *Service) setDone(ctx context.Context, id string, done bool) (quest.Quest, error) {
	q, err := s.Resolve(ctx, id)
	if err != nil {
		return quest.Quest{}, err
	}
	return s.Engine.SetDone(ctx, q.ID, done).Wait(ctx)
}

// Delete removes a quest.
func (s *Service) Delete(ctx context.Context, id string) (quest.Quest, error) {
	q, err := s.Resolve(ctx, id)
	if err != nil {
		return quest.Quest{}, err
	}
	if _, err := s.Engine.RemoveQuest(ctx, q.ID).Wait(ctx); err != nil {
		return quest.Quest{}, err
	}
	return q, nil
}

// LabelKind picks the course or the category set.
type LabelKind string

const (
	Courses    LabelKind = "course"
	Categories LabelKind = "category"
)

// Labels returns the label set of kind with the number of quests using
// each label.
func (s *Service) Labels(ctx context.Context, kind LabelKind) ([]string, map[string]int, error) {
	e, err := s.engine()
	if err != nil {
		return nil, nil, err
	}
	doc := e.Snapshot().Doc
	labels := doc.Courses
	if kind == Categories {
		labels = doc.Categories
	}
	counts := make(map[string]int, len(labels))
	for _, q := range doc.Quests {
		if kind == Categories {
			counts[q.Category]++
		} else {
			counts[q.Course]++
		}
	}
	return labels, counts, nil
}

// AddLabel adds a course or category.
func (s *Service) AddLabel(ctx context.Context, kind LabelKind, name string) error {
	e, err := s.engine()
	if err != nil {
		return err
	}
	if state.CleanLabel(name) == "" {
		return fmt.Errorf("app: %s name is required", kind)
	}
	t := e.AddCourse
	if kind == Categories {
		t = e.AddCategory
	}
	_, err = t(ctx, name).Wait(ctx)
	return err
}

// RemoveLabel removes a course or category.
func (s *Service) RemoveLabel(ctx context.Context, kind LabelKind, name string) error {
	e, err := s.engine()
	if err != nil {
		return err
	}
	t := e.RemoveCourse
	if kind == Categories {
		t = e.RemoveCategory
	}
	_, err = t(ctx, name).Wait(ctx)
	return err
}

// Day returns the quests due on iso in day-list order, narrowed by f.
func (s *Service) Day(ctx context.Context, iso string, f filter.DayFilter) ([]quest.Quest, error) {
	e, err := s.engine()
	if err != nil {
		return nil, err
	}
	if _, ok := calendar.ParseISO(iso); !ok {
		return nil, fmt.Errorf("app: invalid date %q", iso)
	}
	snap := e.Snapshot()
	quests := filter.Day(snap.Doc.Quests, iso, snap.UI.Calendar.CourseFilter)
	return filter.ByDayFilter(quests, f), nil
}

// Summary is the collection-wide and per-day load.
type Summary struct {
	Global stats.Global   `json:"global"`
	Date   string         `json:"date"`
	Day    stats.DayStats `json:"day"`
}

// Stats summarises the collection and the day iso.
func (s *Service) Stats(ctx context.Context, iso string) (Summary, error) {
	e, err := s.engine()
	if err != nil {
		return Summary{}, err
	}
	now := e.Now()
	if iso == "" {
		iso = calendar.TodayISO(now)
	}
	doc := e.Snapshot().Doc
	day := filter.Day(doc.Quests, iso, "")
	return Summary{
		Global: stats.Summarize(doc.Quests, now),
		Date:   iso,
		Day:    stats.ForDay(day, now),
	}, nil
}

// Import replaces the collection with doc after assigning ids and
// defaults to quests that lack them.
func (s *Service) Import(ctx context.Context, doc state.Document) (int, error) {
	e, err := s.engine()
	if err != nil {
		return 0, err
	}
	prepared := store.PrepareImport(doc)
	if _, err := e.Import(ctx, prepared).Wait(ctx); err != nil {
		return 0, err
	}
	return len(prepared.Quests), nil
}

// Export encodes the loaded document.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	doc, err := s.Document()
	if err != nil {
		return nil, err
	}
	return state.EncodeDocument(doc)
}

// Watch keeps the loaded document in sync with the store until ctx is done.
func (s *Service) Watch(ctx context.Context) error {
	e, err := s.engine()
	if err != nil {
		return err
	}
	return e.Watch(ctx)
}

// Events streams change notifications from the engine.
func (s *Service) Events() <-chan engine.Event {
	if s == nil || s.Engine == nil {
		return nil
	}
	return s.Engine.Events()
}
