package app

import (
	"context"
	"sort"
	"time"

	"tableflip.dev/questlog/pkg/quest"
)

// ReportItem is a quest finished inside the report window.
type ReportItem struct {
	Quest       quest.Quest `json:"quest"`
	CompletedAt time.Time   `json:"completedAt"`
}

// ReportSection groups finished quests by course.
type ReportSection struct {
	Course string       `json:"course"`
	Quests []ReportItem `json:"quests"`
	Reward quest.Reward `json:"reward"`
}

// ReportResult is a completed-quests report for a time window.
type ReportResult struct {
	Since    time.Time       `json:"since"`
	Until    time.Time       `json:"until"`
	Sections []ReportSection `json:"sections"`
	Total    int             `json:"total"`
	Reward   quest.Reward    `json:"reward"`
}

// Report returns the quests completed between since and until grouped by
// course, with the rewards they earned.
func (s *Service) Report(ctx context.Context, since, until time.Time) (ReportResult, error) {
	e, err := s.engine()
	if err != nil {
		return ReportResult{}, err
	}
	if since.After(until) {
		since, until = until, since
	}

	grouped := make(map[string]*ReportSection)
	result := ReportResult{Since: since, Until: until}
	for _, q := range e.Snapshot().Doc.Quests {
		if !q.Done || q.CompletedAt == nil || q.CompletedAt.IsZero() {
			continue
		}
		at := q.CompletedAt.Time
		if at.Before(since) || at.After(until) {
			continue
		}
		sec, ok := grouped[q.Course]
		if !ok {
			sec = &ReportSection{Course: q.Course}
			grouped[q.Course] = sec
		}
		sec.Quests = append(sec.Quests, ReportItem{Quest: q, CompletedAt: at})
		sec.Reward.SX += q.Reward.SX
		sec.Reward.Coins += q.Reward.Coins
		result.Reward.SX += q.Reward.SX
		result.Reward.Coins += q.Reward.Coins
		result.Total++
	}

	courses := make([]string, 0, len(grouped))
	for c := range grouped {
		courses = append(courses, c)
	}
	sort.Strings(courses)
	for _, c := range courses {
		sec := grouped[c]
		sort.SliceStable(sec.Quests, func(i, j int) bool {
			return sec.Quests[i].CompletedAt.Before(sec.Quests[j].CompletedAt)
		})
		result.Sections = append(result.Sections, *sec)
	}
	return result, nil
}
