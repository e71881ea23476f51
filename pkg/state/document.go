// Package state holds the planner's document (quests, courses and
// categories) and the transient view state that navigates it.
package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"tableflip.dev/questlog/pkg/quest"
)

// DefaultLabel fills an otherwise empty course or category set.
const DefaultLabel = "General"

// ErrMalformedDocument is returned when an import cannot be read as a
// planner document. Nothing from such a document is adopted.
var ErrMalformedDocument = errors.New("state: malformed document")

// Document is the persisted planner data.
type Document struct {
	Quests     []quest.Quest `json:"quests"`
	Courses    []string      `json:"courses"`
	Categories []string      `json:"categories"`
}

// Clone deep-copies d.
func (d Document) Clone() Document {
	out := Document{
		Quests:     make([]quest.Quest, len(d.Quests)),
		Courses:    append([]string{}, d.Courses...),
		Categories: append([]string{}, d.Categories...),
	}
	for i, q := range d.Quests {
		out.Quests[i] = q.Clone()
	}
	return out
}

// IndexOf returns the position of the quest with id, or -1.
func (d Document) IndexOf(id string) int {
	for i := range d.Quests {
		if d.Quests[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns the quest with id.
func (d Document) Find(id string) (quest.Quest, bool) {
	if i := d.IndexOf(id); i >= 0 {
		return d.Quests[i], true
	}
	return quest.Quest{}, false
}

// EnsureDefaults dedupes courses and categories and injects DefaultLabel
// into whichever set is empty.
func (d *Document) EnsureDefaults() {
	d.Courses = ensureLabels(d.Courses)
	d.Categories = ensureLabels(d.Categories)
}

func ensureLabels(labels []string) []string {
	if len(labels) == 0 {
		return []string{DefaultLabel}
	}
	return Dedupe(labels)
}

// Dedupe keeps the first occurrence of each label.
func Dedupe(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// IndexOfLabel returns the position of label in labels, or -1.
func IndexOfLabel(labels []string, label string) int {
	for i, l := range labels {
		if l == label {
			return i
		}
	}
	return -1
}

// CleanLabel trims a course or category name.
func CleanLabel(name string) string {
	return strings.TrimSpace(name)
}

type rawDocument struct {
	Quests      json.RawMessage `json:"quests"`
	Assignments json.RawMessage `json:"assignments"`
	Courses     json.RawMessage `json:"courses"`
	Categories  json.RawMessage `json:"categories"`
}

// DecodeDocument reads a planner document. A bare array is read as the quest
// list, and a legacy "assignments" array is used when "quests" is absent.
// Every quest is normalised. Any structural problem rejects the whole input.
func DecodeDocument(data []byte) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Document{Quests: []quest.Quest{}, Courses: []string{}, Categories: []string{}}, nil
	}

	var doc Document
	if trimmed[0] == '[' {
		quests, err := decodeQuests(trimmed)
		if err != nil {
			return Document{}, err
		}
		doc.Quests = quests
		doc.Courses = []string{}
		doc.Categories = []string{}
		return doc, nil
	}

	var raw rawDocument
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	list := raw.Quests
	if isAbsent(list) {
		list = raw.Assignments
	}
	var err error
	if doc.Quests, err = decodeQuests(list); err != nil {
		return Document{}, err
	}
	if doc.Courses, err = decodeLabels("courses", raw.Courses); err != nil {
		return Document{}, err
	}
	if doc.Categories, err = decodeLabels("categories", raw.Categories); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func isAbsent(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func decodeQuests(raw json.RawMessage) ([]quest.Quest, error) {
	if isAbsent(raw) {
		return []quest.Quest{}, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: quests must be an array: %v", ErrMalformedDocument, err)
	}
	out := make([]quest.Quest, 0, len(items))
	for i, item := range items {
		var q quest.Quest
		if err := json.Unmarshal(item, &q); err != nil {
			return nil, fmt.Errorf("%w: quest %d: %v", ErrMalformedDocument, i, err)
		}
		out = append(out, q)
	}
	return out, nil
}

func decodeLabels(name string, raw json.RawMessage) ([]string, error) {
	if isAbsent(raw) {
		return []string{}, nil
	}
	var labels []string
	if err := json.Unmarshal(raw, &labels); err != nil {
		return nil, fmt.Errorf("%w: %s must be an array of strings: %v", ErrMalformedDocument, name, err)
	}
	return labels, nil
}

// EncodeDocument writes d as indented JSON.
func EncodeDocument(d Document) ([]byte, error) {
	if d.Quests == nil {
		d.Quests = []quest.Quest{}
	}
	if d.Courses == nil {
		d.Courses = []string{}
	}
	if d.Categories == nil {
		d.Categories = []string{}
	}
	return json.MarshalIndent(d, "", "  ")
}
