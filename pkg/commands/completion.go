package commands

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/questlog/pkg/app"
	"tableflip.dev/questlog/pkg/filter"
	"tableflip.dev/questlog/pkg/prompt"
	"tableflip.dev/questlog/pkg/quest"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(questlog completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(questlog completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletion(os.Stdout)
		},
	}

	topLevel.AddCommand(cmd)
}

// resolveID turns a quest id or id prefix into a full id. With interactive
// set and no id given, the user picks from the quests matching status.
func resolveID(cmd *cobra.Command, s *session, id string, interactive bool, label string, status filter.Status) (string, error) {
	ctx := cmd.Context()
	if id == "" && interactive {
		f := filter.Defaults()
		f.Status = status
		quests, err := s.Service.Quests(ctx, f)
		if err != nil {
			return "", err
		}
		q, err := prompt.PickQuest(cmd.InOrStdin(), cmd.OutOrStdout(), label, quests, s.Service.Engine.Now())
		if err != nil {
			return "", err
		}
		return q.ID, nil
	}
	q, err := s.Service.Resolve(ctx, id)
	if err != nil {
		return "", err
	}
	return q.ID, nil
}

func completionSession(cmd *cobra.Command) (*session, bool) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(ctx)
	if err != nil {
		return nil, false
	}
	return s, true
}

func questCompletions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	s, ok := completionSession(cmd)
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer s.Close()
	doc, err := s.Service.Document()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, q := range doc.Quests {
		if strings.HasPrefix(q.ID, toComplete) {
			out = append(out, q.ID+"\t"+quest.DisplayTitle(q))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func labelCompletions(kind app.LabelKind) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		s, ok := completionSession(cmd)
		if !ok {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		defer s.Close()
		labels, _, err := s.Service.Labels(cmd.Context(), kind)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var out []string
		for _, l := range labels {
			if strings.HasPrefix(strings.ToLower(l), strings.ToLower(toComplete)) {
				out = append(out, l)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

var courseCompletions = labelCompletions(app.Courses)

func registerLabelCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("course", courseCompletions)
	_ = cmd.RegisterFlagCompletionFunc("category", labelCompletions(app.Categories))
}
