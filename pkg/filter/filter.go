// Package filter holds the predicates and orderings behind the quest list
// and the calendar cells.
package filter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"tableflip.dev/questlog/pkg/calendar"
	"tableflip.dev/questlog/pkg/quest"
)

// Status buckets quests by due date and completion.
type Status string

const (
	StatusAll       Status = "All"
	StatusToday     Status = "Today"
	StatusThisWeek  Status = "This week"
	StatusOverdue   Status = "Overdue"
	StatusCompleted Status = "Completed"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusAll, StatusToday, StatusThisWeek, StatusOverdue, StatusCompleted}

// ParseStatus matches s case-insensitively; "week" is accepted for "This week".
func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if norm == "" {
		return StatusAll, nil
	}
	for _, st := range Statuses {
		if strings.ToLower(string(st)) == norm {
			return st, nil
		}
	}
	if norm == "week" || norm == "this-week" {
		return StatusThisWeek, nil
	}
	return "", fmt.Errorf("filter: unknown status %q", s)
}

// SortKey selects the quest list ordering.
type SortKey string

const (
	SortDate     SortKey = "date"
	SortCourse   SortKey = "course"
	SortWorkload SortKey = "workload"
)

// ParseSortKey validates a sort key; empty means date.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortDate:
		return SortDate, nil
	case SortCourse:
		return SortCourse, nil
	case SortWorkload:
		return SortWorkload, nil
	}
	return "", fmt.Errorf("filter: unknown sort %q", s)
}

// Filters is the quest list configuration.
type Filters struct {
	// Courses restricts the list when non-empty.
	Courses []string `json:"courses"`
	Status  Status   `json:"status"`
	Sort    SortKey  `json:"sort"`
	// Search is a fuzzy match over title, course and category.
	Search string `json:"search,omitempty"`
}

// Defaults returns the filters used before the user picks any.
func Defaults() Filters {
	return Filters{Courses: []string{}, Status: StatusAll, Sort: SortDate}
}

// Matches reports whether q passes the course and status filters.
func Matches(q quest.Quest, f Filters, now time.Time) bool {
	if len(f.Courses) > 0 && !contains(f.Courses, q.Course) {
		return false
	}
	days, ok := calendar.DaysUntil(q.DueDate, now)
	switch f.Status {
	case StatusToday:
		return ok && days == 0
	case StatusThisWeek:
		return ok && days >= 0 && days <= 6
	case StatusOverdue:
		return ok && days < 0 && !q.Done
	case StatusCompleted:
		return q.Done
	default:
		return true
	}
}

// Apply filters and sorts a copy of quests.
func Apply(quests []quest.Quest, f Filters, now time.Time) []quest.Quest {
	out := make([]quest.Quest, 0, len(quests))
	for _, q := range quests {
		if Matches(q, f, now) {
			out = append(out, q)
		}
	}
	if strings.TrimSpace(f.Search) != "" {
		out = Search(out, f.Search)
	}
	Sort(out, f.Sort)
	return out
}

// Search keeps the quests whose title, course or category fuzzily match
// pattern, in their original order.
func Search(quests []quest.Quest, pattern string) []quest.Quest {
	matches := fuzzy.FindFrom(strings.ToLower(strings.TrimSpace(pattern)), searchSource(quests))
	keep := make([]bool, len(quests))
	for _, m := range matches {
		keep[m.Index] = true
	}
	out := make([]quest.Quest, 0, len(matches))
	for i, q := range quests {
		if keep[i] {
			out = append(out, q)
		}
	}
	return out
}

type searchSource []quest.Quest

func (s searchSource) String(i int) string {
	q := s[i]
	return strings.ToLower(strings.Join([]string{q.Title, q.Course, q.Category}, " "))
}

func (s searchSource) Len() int { return len(s) }

// Sort orders quests in place by key. Ties keep their relative order.
func Sort(quests []quest.Quest, key SortKey) {
	switch key {
	case SortCourse:
		c := collator()
		sort.SliceStable(quests, func(i, j int) bool {
			return c.CompareString(quests[i].Course, quests[j].Course) < 0
		})
	case SortWorkload:
		sort.SliceStable(quests, func(i, j int) bool {
			return quests[i].Minutes() > quests[j].Minutes()
		})
	default:
		sort.SliceStable(quests, func(i, j int) bool {
			return dueKey(quests[i]) < dueKey(quests[j])
		})
	}
}

func dueKey(q quest.Quest) string {
	if q.DueDate == "" {
		return calendar.Undated
	}
	return q.DueDate
}

// Locale drives course ordering.
var Locale = language.English

// collator builds a collator per sort; collators are not safe for
// concurrent use.
func collator() *collate.Collator {
	return collate.New(Locale, collate.IgnoreCase)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
