package filter

import (
	"fmt"
	"sort"
	"strings"

	"tableflip.dev/questlog/pkg/calendar"
	"tableflip.dev/questlog/pkg/quest"
)

// DayFilter narrows a day's list to one kind of quest.
type DayFilter string

const DayAll DayFilter = "all"

// ParseDayFilter accepts "all" or a quest kind.
func ParseDayFilter(s string) (DayFilter, error) {
	switch v := DayFilter(strings.ToLower(strings.TrimSpace(s))); v {
	case "", DayAll:
		return DayAll, nil
	case DayFilter(quest.KindAssignment), DayFilter(quest.KindTest), DayFilter(quest.KindProject), DayFilter(quest.KindOther):
		return v, nil
	}
	return "", fmt.Errorf("filter: unknown day filter %q", s)
}

// DayFilters lists the day filters in cycling order.
var DayFilters = []DayFilter{
	DayAll,
	DayFilter(quest.KindAssignment),
	DayFilter(quest.KindTest),
	DayFilter(quest.KindProject),
	DayFilter(quest.KindOther),
}

// ByDate groups dated quests by ISO due date, keeping only courseFilter's
// course unless it is calendar.AllCourses or empty. Timestamps are keyed by
// their calendar date; unparseable dates are left out.
func ByDate(quests []quest.Quest, courseFilter string) map[string][]quest.Quest {
	out := make(map[string][]quest.Quest)
	for _, q := range quests {
		due, ok := calendar.ParseISO(q.DueDate)
		if !ok {
			continue
		}
		if courseFilter != "" && courseFilter != calendar.AllCourses && q.Course != courseFilter {
			continue
		}
		iso := calendar.FormatISO(due)
		out[iso] = append(out[iso], q)
	}
	return out
}

// Day returns the quests due on iso in cell order.
func Day(quests []quest.Quest, iso, courseFilter string) []quest.Quest {
	day := ByDate(quests, courseFilter)[iso]
	SortDay(day)
	return day
}

// SortDay orders open quests first, then by completion descending.
func SortDay(quests []quest.Quest) {
	sort.SliceStable(quests, func(i, j int) bool {
		a, b := quests[i], quests[j]
		if a.Done != b.Done {
			return !a.Done
		}
		return a.Completion > b.Completion
	})
}

// ByDayFilter applies a day filter.
func ByDayFilter(quests []quest.Quest, f DayFilter) []quest.Quest {
	if f == "" || f == DayAll {
		return quests
	}
	out := make([]quest.Quest, 0, len(quests))
	for _, q := range quests {
		if DayFilter(quest.TypeOf(q)) == f {
			out = append(out, q)
		}
	}
	return out
}

// Visible is what a calendar cell features: the open quests, or every quest
// once all of them are done.
func Visible(quests []quest.Quest) []quest.Quest {
	open := make([]quest.Quest, 0, len(quests))
	for _, q := range quests {
		if !q.Done {
			open = append(open, q)
		}
	}
	if len(open) > 0 {
		return open
	}
	return quests
}

// Pins remembers the featured quest id per ISO date so a cell keeps
// showing the same quest across redraws.
type Pins map[string]string

// Pin features id on iso.
func (p Pins) Pin(iso, id string) {
	p[iso] = id
}

// Unpin forgets the choice for iso.
func (p Pins) Unpin(iso string) {
	delete(p, iso)
}

// Clone copies p.
func (p Pins) Clone() Pins {
	out := make(Pins, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Primary picks the featured quest for a day: the pinned one while it is
// still visible, otherwise the visible quest with the highest completion.
func Primary(quests []quest.Quest, pins Pins, iso string) (quest.Quest, bool) {
	visible := Visible(quests)
	if len(visible) == 0 {
		return quest.Quest{}, false
	}
	if id, ok := pins[iso]; ok {
		for _, q := range visible {
			if q.ID == id {
				return q, true
			}
		}
	}
	best := visible[0]
	for _, q := range visible[1:] {
		if q.Completion > best.Completion {
			best = q
		}
	}
	return best, true
}

// Reset forgets every pin.
func (p Pins) Reset() {
	for k := range p {
		delete(p, k)
	}
}
