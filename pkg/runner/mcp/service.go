// Package mcp serves the quest log over the Model Context Protocol.
package mcp

import (
	"context"
	"errors"
	"time"

	"tableflip.dev/questlog/pkg/app"
	"tableflip.dev/questlog/pkg/calendar"
	"tableflip.dev/questlog/pkg/filter"
	"tableflip.dev/questlog/pkg/quest"
	"tableflip.dev/questlog/pkg/stats"
)

// Service adapts app.Service to transport-friendly values.
type Service struct {
	App *app.Service
}

// QuestDTO is a transport-friendly projection of a quest.
type QuestDTO struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Course      string       `json:"course"`
	Category    string       `json:"category"`
	Kind        string       `json:"kind"`
	DueDate     string       `json:"dueDate,omitempty"`
	DueTime     string       `json:"dueTime,omitempty"`
	DueLabel    string       `json:"dueLabel"`
	EstMinutes  *int         `json:"estMinutes"`
	Completion  int          `json:"completion"`
	Done        bool         `json:"done"`
	Overdue     bool         `json:"overdue"`
	Notes       string       `json:"notes,omitempty"`
	Link        string       `json:"link,omitempty"`
	FilePath    string       `json:"filePath,omitempty"`
	Reward      quest.Reward `json:"reward"`
	CompletedAt string       `json:"completedAt,omitempty"`
}

// LabelSummary describes a course or category and how many quests use it.
type LabelSummary struct {
	Name   string `json:"name"`
	Quests int    `json:"quests"`
	Color  string `json:"color,omitempty"`
}

// DaySummary is the load of one calendar day.
type DaySummary struct {
	Date   string         `json:"date"`
	Label  string         `json:"label"`
	Stats  stats.DayStats `json:"stats"`
	Quests []QuestDTO     `json:"quests"`
}

// ListOptions narrows list_quests.
type ListOptions struct {
	Course string `json:"course"`
	Status string `json:"status"`
	Sort   string `json:"sort"`
	Search string `json:"search"`
}

// NewService wraps svc.
func NewService(svc *app.Service) *Service {
	return &Service{App: svc}
}

func (s *Service) app() (*app.Service, error) {
	if s == nil || s.App == nil {
		return nil, errors.New("mcp: quest service is not configured")
	}
	return s.App, nil
}

func (s *Service) now() time.Time {
	if s.App != nil && s.App.Engine != nil {
		return s.App.Engine.Now()
	}
	return time.Now()
}

// ListQuests returns the quests passing opts.
func (s *Service) ListQuests(ctx context.Context, opts ListOptions) ([]QuestDTO, error) {
	a, err := s.app()
	if err != nil {
		return nil, err
	}
	f := filter.Defaults()
	if opts.Course != "" {
		f.Courses = []string{opts.Course}
	}
	if f.Status, err = filter.ParseStatus(opts.Status); err != nil {
		return nil, err
	}
	if f.Sort, err = filter.ParseSortKey(opts.Sort); err != nil {
		return nil, err
	}
	f.Search = opts.Search
	quests, err := a.Quests(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.toDTOs(quests), nil
}

// QuestByID fetches one quest by id or unique prefix.
func (s *Service) QuestByID(ctx context.Context, id string) (*QuestDTO, error) {
	a, err := s.app()
	if err != nil {
		return nil, err
	}
	q, err := a.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toDTO(q), nil
}

// CreateQuest adds a quest.
func (s *Service) CreateQuest(ctx context.Context, opts app.AddOptions) (*QuestDTO, error) {
	a, err := s.app()
	if err != nil {
		return nil, err
	}
	q, err := a.Add(ctx, opts)
	if err != nil {
		return nil, err
	}
	return s.toDTO(q), nil
}

// SetProgress moves a quest to pct percent.
func (s *Service) SetProgress(ctx context.Context, id string, pct int) (*QuestDTO, error) {
	a, err := s.app()
	if err != nil {
		return nil, err
	}
	q, err := a.SetProgress(ctx, id, pct)
	if err != nil {
		return nil, err
	}
	return s.toDTO(q), nil
}

// SetDone checks or unchecks a quest.
func (s *Service) SetDone(ctx context.Context, id string, done bool) (*QuestDTO, error) {
	a, err := s.app()
	if err != nil {
		return nil, err
	}
	op := a.Reopen
	if done {
		op = a.Complete
	}
	q, err := op(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toDTO(q), nil
}

// DeleteQuest removes a quest and returns what was removed.
func (s *Service) DeleteQuest(ctx context.Context, id string) (*QuestDTO, error) {
	a, err := s.app()
	if err != nil {
		return nil, err
	}
	q, err := a.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toDTO(q), nil
}

// Labels lists courses or categories with usage counts.
func (s *Service) Labels(ctx context.Context, kind app.LabelKind) ([]LabelSummary, error) {
	a, err := s.app()
	if err != nil {
		return nil, err
	}
	labels, counts, err := a.Labels(ctx, kind)
	if err != nil {
		return nil, err
	}
	out := make([]LabelSummary, 0, len(labels))
	for _, l := range labels {
		sum := LabelSummary{Name: l, Quests: counts[l]}
		if kind == app.Courses {
			sum.Color = quest.CourseColor(l)
		}
		out = append(out, sum)
	}
	return out, nil
}

// Day summarises the quests due on iso, today when empty.
func (s *Service) Day(ctx context.Context, iso, kind string) (*DaySummary, error) {
	a, err := s.app()
	if err != nil {
		return nil, err
	}
	if iso == "" {
		iso = calendar.TodayISO(s.now())
	}
	df, err := filter.ParseDayFilter(kind)
	if err != nil {
		return nil, err
	}
	quests, err := a.Day(ctx, iso, df)
	if err != nil {
		return nil, err
	}
	return &DaySummary{
		Date:   iso,
		Label:  calendar.FormatLong(iso),
		Stats:  stats.ForDay(quests, s.now()),
		Quests: s.toDTOs(quests),
	}, nil
}

// Stats returns the collection summary.
func (s *Service) Stats(ctx context.Context) (app.Summary, error) {
	a, err := s.app()
	if err != nil {
		return app.Summary{}, err
	}
	return a.Stats(ctx, "")
}

func (s *Service) toDTOs(quests []quest.Quest) []QuestDTO {
	out := make([]QuestDTO, 0, len(quests))
	for _, q := range quests {
		out = append(out, *s.toDTO(q))
	}
	return out
}

func (s *Service) toDTO(q quest.Quest) *QuestDTO {
	now := s.now()
	dto := &QuestDTO{
		ID:         q.ID,
		Title:      quest.DisplayTitle(q),
		Course:     q.Course,
		Category:   q.Category,
		Kind:       string(quest.TypeOf(q)),
		DueDate:    q.DueDate,
		DueTime:    q.DueTime,
		DueLabel:   calendar.FormatDue(q.DueDate, now),
		EstMinutes: q.EstMinutes,
		Completion: q.Completion,
		Done:       q.Done,
		Overdue:    stats.IsOverdue(q, now),
		Notes:      q.Notes,
		Link:       q.Link,
		FilePath:   q.FilePath,
		Reward:     q.Reward,
	}
	if q.CompletedAt != nil && !q.CompletedAt.IsZero() {
		dto.CompletedAt = q.CompletedAt.String()
	}
	return dto
}
