package printers

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/mattn/go-isatty"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"

	"tableflip.dev/questlog/pkg/calendar"
	"tableflip.dev/questlog/pkg/quest"
	"tableflip.dev/questlog/pkg/stats"
)

type PrettyPrint struct {
	ShowID bool
	Now    time.Time
}

var (
	spacing = strings.Repeat(" ", len("3f2a9c1e-5b7d-4e8f-9a0b-1c2d3e4f5a6b  "))
)

const titleWidth = 48

// Colorful reports whether stdout takes ANSI colors.
func Colorful() bool {
	return !color.NoColor && isatty.IsTerminal(os.Stdout.Fd())
}

func (pp *PrettyPrint) now() time.Time {
	if pp.Now.IsZero() {
		return time.Now()
	}
	return pp.Now
}

func (pp *PrettyPrint) NewLine() {
	fmt.Println("")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)

	if pp.ShowID {
		_, _ = t.Fprint(color.Output, spacing)
	}
	_, _ = t.Fprintln(color.Output, title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	if pp.ShowID {
		_, _ = t.Fprint(color.Output, spacing)
	}
	_, _ = t.Fprint(color.Output, title)
	_, _ = c.Fprintf(color.Output, " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(color.Output, " quest")
	default:
		_, _ = c.Fprintln(color.Output, " quests")
	}
}

// Quests prints one line per quest: check box, course, title, due label
// and progress.
func (pp *PrettyPrint) Quests(quests ...quest.Quest) {
	if len(quests) == 0 {
		f := color.New(color.Faint, color.Italic)
		if pp.ShowID {
			_, _ = f.Fprint(color.Output, spacing)
		}
		_, _ = f.Fprint(color.Output, " none\n\n")
		return
	}

	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	faint := color.New(color.Faint)
	overdue := color.New(color.FgRed)
	done := color.New(color.FgGreen)
	now := pp.now()

	for _, q := range quests {
		if pp.ShowID {
			_, _ = y.Fprint(color.Output, q.ID)
			if pad := len(spacing) - len(q.ID); pad > 0 {
				_, _ = y.Fprint(color.Output, strings.Repeat(" ", pad))
			} else {
				_, _ = y.Fprint(color.Output, "  ")
			}
		}
		box := "[ ]"
		if q.Done {
			box = done.Sprint("[x]")
		}
		due := calendar.FormatDue(q.DueDate, now)
		if stats.IsOverdue(q, now) {
			due = overdue.Sprint(due)
		} else {
			due = faint.Sprint(due)
		}
		_, _ = fmt.Fprintf(color.Output, "%s %s %s  %s  %s\n",
			box,
			pp.course(q.Course),
			truncate.StringWithTail(quest.DisplayTitle(q), titleWidth, "…"),
			due,
			faint.Sprintf("%3d%%", q.Completion),
		)
	}
	_, _ = fmt.Fprintln(color.Output, "")
}

// course tints a course name with its palette color.
func (pp *PrettyPrint) course(name string) string {
	if name == "" {
		name = "-"
	}
	if !Colorful() {
		return name
	}
	p := termenv.ColorProfile()
	return termenv.String(name).Foreground(p.Color(quest.CourseColor(name))).Bold().String()
}

// Quest prints every field of q as a two-column table.
func (pp *PrettyPrint) Quest(q quest.Quest) {
	bold := color.New(color.Bold)
	now := pp.now()

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.Wrap = true
	tbl.MaxColWidth = 60
	tbl.AddRow(bold.Sprint("Title"), quest.DisplayTitle(q))
	tbl.AddRow(bold.Sprint("ID"), q.ID)
	tbl.AddRow(bold.Sprint("Course"), pp.course(q.Course))
	tbl.AddRow(bold.Sprint("Category"), fmt.Sprintf("%s (%s)", q.Category, quest.TypeOf(q).Label()))
	tbl.AddRow(bold.Sprint("Due"), calendar.FormatDue(q.DueDate, now))
	tbl.AddRow(bold.Sprint("Time"), quest.DueTimeLabel(q))
	est := "unknown"
	if q.EstMinutes != nil {
		est = fmt.Sprintf("%d min", *q.EstMinutes)
	}
	tbl.AddRow(bold.Sprint("Estimate"), est)
	tbl.AddRow(bold.Sprint("Progress"), fmt.Sprintf("%d%% %s", q.Completion, Segments(q.Completion)))
	tbl.AddRow(bold.Sprint("Done"), fmt.Sprintf("%t", q.Done))
	tbl.AddRow(bold.Sprint("Reward"), fmt.Sprintf("%g SX, %g coins", q.Reward.SX, q.Reward.Coins))
	if q.Notes != "" {
		tbl.AddRow(bold.Sprint("Notes"), q.Notes)
	}
	if q.Link != "" {
		tbl.AddRow(bold.Sprint("Link"), q.Link)
	}
	if q.FilePath != "" {
		tbl.AddRow(bold.Sprint("File"), q.FilePath)
	}
	if q.CompletedAt != nil {
		tbl.AddRow(bold.Sprint("Completed"), q.CompletedAt.Local().Format("2006-01-02 15:04"))
	}
	tbl.RightAlign(0)

	_, _ = fmt.Fprintln(color.Output, tbl)
}

// ProgressSteps are the completion levels a quest can be stepped through.
var ProgressSteps = []int{0, 25, 50, 75, 100}

// Segments draws completion as four blocks, one per quarter reached.
func Segments(completion int) string {
	var b strings.Builder
	for _, step := range ProgressSteps[1:] {
		if completion >= step {
			b.WriteString("■")
		} else {
			b.WriteString("□")
		}
	}
	return b.String()
}

// Labels prints a course or category list.
func (pp *PrettyPrint) Labels(title string, labels []string, counts map[string]int) {
	pp.TitleWithCount(title, len(labels))
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, l := range labels {
		tbl.AddRow(pp.course(l), color.New(color.Faint).Sprintf("%d", counts[l]))
	}
	_, _ = fmt.Fprintln(color.Output, tbl)
	_, _ = fmt.Fprintln(color.Output, "")
}

// Stats prints the global summary and the load of one day.
func (pp *PrettyPrint) Stats(g stats.Global, day stats.DayStats, iso string) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Quests"), fmt.Sprintf("%d", g.Total))
	tbl.AddRow(bold.Sprint("Due today"), fmt.Sprintf("%d", g.DueToday))
	overdue := fmt.Sprintf("%d", g.Overdue)
	if g.Overdue > 0 {
		overdue = red.Sprint(overdue)
	}
	tbl.AddRow(bold.Sprint("Overdue"), overdue)
	tbl.AddRow("", "")
	tbl.AddRow(bold.Sprint(calendar.FormatLong(iso)), fmt.Sprintf("%d quests", day.Count))
	tbl.AddRow(bold.Sprint("Estimated"), fmt.Sprintf("%.1fh", day.EstimatedHours))
	tbl.AddRow(bold.Sprint("Overdue that day"), fmt.Sprintf("%d", day.Overdue))
	tbl.RightAlign(0)

	_, _ = fmt.Fprintln(color.Output, tbl)
}
