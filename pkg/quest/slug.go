package quest

import (
	"fmt"
	"regexp"
	"strings"
)

const maxSlug = 48

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases text, collapses runs of anything but [a-z0-9] into a
// single dash and trims the result to 48 characters.
func Slug(text string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(text), "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSlug {
		s = s[:maxSlug]
	}
	return s
}

// SlugID derives a stable id for an imported quest from its course,
// category and due date. index is the 1-based position in the import.
func SlugID(q Quest, index int) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{q.Course, q.Category, q.DueDate} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if slug := Slug(strings.Join(parts, "-")); slug != "" {
		return slug
	}
	course := q.Course
	if course == "" {
		course = "quest"
	}
	if slug := Slug(fmt.Sprintf("%s-%d", course, index)); slug != "" {
		return slug
	}
	return fmt.Sprintf("quest-%d", index)
}
