package options

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tableflip.dev/questlog/pkg/quest"
)

// QuestOptions are the editable quest fields.
type QuestOptions struct {
	Title    string
	Course   string
	Category string
	Due      string
	Time     string
	Est      int
	Notes    string
	Link     string
	File     string
	SX       float64
	Coins    float64
}

func AddQuestArgs(cmd *cobra.Command, o *QuestOptions) {
	f := cmd.Flags()
	f.StringVar(&o.Course, "course", "", "Course the quest belongs to.")
	f.StringVar(&o.Category, "category", "", `Category, for example "Assignment", "Test" or "Project".`)
	f.StringVar(&o.Due, "due", "", `Due date: YYYY-MM-DD, M/D, "today" or "tomorrow".`)
	f.StringVar(&o.Time, "time", "", "Due time, for example 23:59.")
	f.IntVar(&o.Est, "est", 0, "Estimated effort in minutes.")
	f.StringVar(&o.Notes, "notes", "", "Free-form notes.")
	f.StringVar(&o.Link, "link", "", "A URL for the quest.")
	f.StringVar(&o.File, "file", "", "A path to a related file.")
	f.Float64Var(&o.SX, "xp", 0, "Experience awarded on completion.")
	f.Float64Var(&o.Coins, "coins", 0, "Coins awarded on completion.")
}

// AddTitleArg adds --title for commands where the title is not positional.
func AddTitleArg(cmd *cobra.Command, o *QuestOptions) {
	cmd.Flags().StringVar(&o.Title, "title", "", "Quest title.")
}

// Patch returns the fields whose flags were set on flags, keyed by quest
// field name. due must already be resolved to an ISO date.
func (o *QuestOptions) Patch(flags *pflag.FlagSet, due string) map[string]any {
	patch := map[string]any{}
	set := func(flag, field string, v any) {
		if flags.Changed(flag) {
			patch[field] = v
		}
	}
	set("title", quest.FieldTitle, o.Title)
	set("course", quest.FieldCourse, o.Course)
	set("category", quest.FieldCategory, o.Category)
	set("due", quest.FieldDueDate, due)
	set("time", quest.FieldDueTime, o.Time)
	set("est", quest.FieldEstMinutes, o.Est)
	set("notes", quest.FieldNotes, o.Notes)
	set("link", quest.FieldLink, o.Link)
	set("file", quest.FieldFilePath, o.File)
	if flags.Changed("xp") || flags.Changed("coins") {
		patch[quest.FieldReward] = map[string]any{"sx": o.SX, "coins": o.Coins}
	}
	return patch
}
