package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/questlog/pkg/commands/options"
	"tableflip.dev/questlog/pkg/filter"
	"tableflip.dev/questlog/pkg/runner/get"
)

func addList(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	var (
		status  string
		sortKey string
		courses []string
		search  string
	)

	long := strings.Builder{}
	long.WriteString("List quests, narrowed by status, course and a fuzzy search.\n\n")
	long.WriteString("Statuses:\n")
	for _, s := range filter.Statuses {
		long.WriteString("  " + string(s) + "\n")
	}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "get"},
		Short:   "List quests",
		Long:    long.String(),
		Example: `
questlog list
questlog list --status overdue
questlog list --course Bio --course Math --sort workload
questlog list --search essay
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := filter.Defaults()
			var err error
			if f.Status, err = filter.ParseStatus(status); err != nil {
				return err
			}
			if f.Sort, err = filter.ParseSortKey(sortKey); err != nil {
				return err
			}
			if len(courses) > 0 {
				f.Courses = courses
			}
			f.Search = search

			return withSession(cmd.Context(), func(s *session) error {
				r := get.Get{
					Service: s.Service,
					Filters: f,
					ShowID:  io.ShowID,
					JSON:    output.JSON,
				}
				return r.Do(cmd.Context())
			})
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", string(filter.StatusAll), "Only quests with this status: all, today, week, overdue or completed.")
	cmd.Flags().StringVar(&sortKey, "sort", string(filter.SortDate), "Order by date, course or workload.")
	cmd.Flags().StringSliceVarP(&courses, "course", "c", nil, "Only quests of these courses.")
	cmd.Flags().StringVar(&search, "search", "", "Fuzzy match over title, course and category.")
	options.AddShowIDArgs(cmd, io)
	_ = cmd.RegisterFlagCompletionFunc("course", courseCompletions)
	_ = cmd.RegisterFlagCompletionFunc("status", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		out := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			out = append(out, strings.ToLower(strings.ReplaceAll(string(s), "This ", "")))
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})

	topLevel.AddCommand(cmd)
}

func addShow(topLevel *cobra.Command) {
	i := &options.InteractiveOptions{}
	var id string

	cmd := &cobra.Command{
		Use:   "show <quest id>",
		Short: "Show one quest in detail",
		Example: `
questlog show 3f2a
questlog show -i
`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 1 && !i.Interactive {
				return errors.New("requires a quest id")
			}
			id = strings.Join(args, " ")
			return nil
		},
		ValidArgsFunction: questCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), func(s *session) error {
				qid, err := resolveID(cmd, s, id, i.Interactive, "Show which quest", filter.StatusAll)
				if err != nil {
					return err
				}
				r := get.Get{Service: s.Service, ID: qid, JSON: output.JSON}
				return r.Do(cmd.Context())
			})
		},
	}

	options.InteractiveArgs(cmd, i)
	topLevel.AddCommand(cmd)
}
