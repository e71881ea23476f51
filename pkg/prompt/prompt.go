// Package prompt asks for missing command input on the terminal.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/manifoldco/promptui"

	"tableflip.dev/questlog/pkg/calendar"
	"tableflip.dev/questlog/pkg/filter"
	"tableflip.dev/questlog/pkg/quest"
)

// ErrNoQuests is returned when there is nothing to pick from.
var ErrNoQuests = errors.New("prompt: no quests to pick from")

type item struct {
	ID       string
	Title    string
	Course   string
	Due      string
	Progress int
	Notes    string
}

// PickQuest lets the user choose one of quests with a fuzzy search.
func PickQuest(in io.Reader, out io.Writer, label string, quests []quest.Quest, now time.Time) (quest.Quest, error) {
	if len(quests) == 0 {
		return quest.Quest{}, ErrNoQuests
	}
	items := make([]item, len(quests))
	for i, q := range quests {
		items[i] = item{
			ID:       q.ID,
			Title:    quest.DisplayTitle(q),
			Course:   q.Course,
			Due:      calendar.FormatDue(q.DueDate, now),
			Progress: q.Completion,
			Notes:    q.Notes,
		}
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "➜  {{ .Title | bold }} {{ .Course | cyan }} {{ .Due | faint }}",
		Inactive: "   {{ .Title }} {{ .Course | cyan }} {{ .Due | faint }}",
		Selected: "{{ .Title | bold }}",
		Details: `
--------- Quest ----------
{{ .ID | faint }}
{{ .Progress }}% {{ .Notes }}
`,
	}

	searcher := func(input string, index int) bool {
		input = strings.TrimSpace(input)
		if input == "" {
			return true
		}
		return len(filter.Search(quests[index:index+1], input)) == 1
	}

	sel := promptui.Select{
		HideHelp:  true,
		Label:     label,
		Items:     items,
		Templates: templates,
		Size:      10,
		Searcher:  searcher,
		Stdin:     io.NopCloser(in),
		Stdout:    nopCloser{out},
	}
	i, _, err := sel.Run()
	if err != nil {
		return quest.Quest{}, err
	}
	return quests[i], nil
}

// String asks for a line of text. def is used when the answer is empty;
// with no default an empty answer is refused when required is set.
func String(in io.Reader, out io.Writer, label, def string, required bool) (string, error) {
	validate := func(input string) error {
		if required && strings.TrimSpace(input) == "" && def == "" {
			return errors.New("empty")
		}
		return nil
	}
	templates := &promptui.PromptTemplates{
		Prompt:  "{{ . }}: ",
		Valid:   "{{ . | green }}: ",
		Invalid: "{{ . | red }}: ",
		Success: "{{ . | bold }}: ",
	}
	if def != "" {
		label = fmt.Sprintf("%s [%s]", label, def)
	}
	p := promptui.Prompt{
		Label:     label,
		Templates: templates,
		Validate:  validate,
		Stdin:     io.NopCloser(in),
		Stdout:    nopCloser{out},
	}
	result, err := p.Run()
	if err != nil {
		return "", err
	}
	if result = strings.TrimSpace(result); result == "" {
		result = def
	}
	return result, nil
}

// Date asks for an ISO date, accepting "today" and "tomorrow".
func Date(in io.Reader, out io.Writer, label, def string, now time.Time) (string, error) {
	for {
		answer, err := String(in, out, label, def, false)
		if err != nil {
			return "", err
		}
		if iso, ok := ResolveDate(answer, now); ok {
			return iso, nil
		}
		_, _ = fmt.Fprintf(out, "%q is not a date, use YYYY-MM-DD\n", answer)
	}
}

// ResolveDate normalises the relative words the prompts accept. An empty
// answer means no due date.
func ResolveDate(s string, now time.Time) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", true
	case "today":
		return calendar.TodayISO(now), true
	case "tomorrow":
		return calendar.AddDays(calendar.TodayISO(now), 1), true
	}
	t, ok := calendar.ParseISO(s)
	if !ok {
		return "", false
	}
	return calendar.FormatISO(t), true
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
