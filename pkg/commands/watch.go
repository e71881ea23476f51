package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/questlog/pkg/runner/watch"
)

func addWatch(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow changes made by other questlog sessions",
		Example: `
questlog watch
questlog watch --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), func(s *session) error {
				r := watch.Watch{Service: s.Service, JSON: output.JSON}
				return r.Do(cmd.Context())
			})
		},
	}

	topLevel.AddCommand(cmd)
}
