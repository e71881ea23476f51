// Package stats derives the per-day and collection-wide summaries shown in
// status lines and calendar cells. Everything here is a pure function of a
// quest slice and the current time.
package stats

import (
	"math"
	"time"

	"tableflip.dev/questlog/pkg/calendar"
	"tableflip.dev/questlog/pkg/quest"
)

// DayStats summarises the quests due on one day.
type DayStats struct {
	Count          int     `json:"count"`
	Overdue        int     `json:"overdue"`
	EstimatedHours float64 `json:"estimatedHours"`
}

// Global summarises the whole collection.
type Global struct {
	Total    int `json:"total"`
	DueToday int `json:"dueToday"`
	Overdue  int `json:"overdue"`
}

// IsOverdue reports whether q is open and past its due date. Quests with
// an unknown due date are never overdue.
func IsOverdue(q quest.Quest, now time.Time) bool {
	days, ok := calendar.DaysUntil(q.DueDate, now)
	return ok && days < 0 && !q.Done
}

// IsDueToday reports whether q is open and due today.
func IsDueToday(q quest.Quest, now time.Time) bool {
	days, ok := calendar.DaysUntil(q.DueDate, now)
	return ok && days == 0 && !q.Done
}

// ForDay computes count, overdue and estimated hours for quests.
func ForDay(quests []quest.Quest, now time.Time) DayStats {
	s := DayStats{Count: len(quests)}
	minutes := 0
	for _, q := range quests {
		if IsOverdue(q, now) {
			s.Overdue++
		}
		minutes += q.Minutes()
	}
	s.EstimatedHours = Hours(minutes)
	return s
}

// Summarize computes the collection-wide counters.
func Summarize(quests []quest.Quest, now time.Time) Global {
	g := Global{Total: len(quests)}
	for _, q := range quests {
		if IsDueToday(q, now) {
			g.DueToday++
		}
		if IsOverdue(q, now) {
			g.Overdue++
		}
	}
	return g
}

// Hours converts minutes to hours rounded to one decimal place.
func Hours(minutes int) float64 {
	if minutes == 0 {
		return 0
	}
	return math.Round(float64(minutes)/60*10) / 10
}

// Heat is the load shading of a calendar cell.
type Heat struct {
	Weight float64
	Ratio  float64
}

// HeatFor weighs a day by its quest count plus two hours of estimated
// effort per unit; a weight of six or more saturates the ratio.
func HeatFor(quests []quest.Quest) Heat {
	minutes := 0
	for _, q := range quests {
		minutes += q.Minutes()
	}
	w := float64(len(quests)) + float64(minutes)/120
	return Heat{Weight: w, Ratio: math.Min(1, w/6)}
}

// Progress is the rounded average completion of quests, 0 when empty.
func Progress(quests []quest.Quest) int {
	if len(quests) == 0 {
		return 0
	}
	total := 0
	for _, q := range quests {
		total += q.Completion
	}
	return int(math.Round(float64(total) / float64(len(quests))))
}
