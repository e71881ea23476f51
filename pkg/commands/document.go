package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/questlog/pkg/runner/document"
)

func addImport(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Replace all quests with a JSON document",
		Long: `Import reads a planner document and replaces every stored quest, course and
category with it. Quests without an id get one derived from course, title and
due date. A malformed document is rejected and nothing changes.

Reads stdin when the file is omitted or "-".`,
		Example: `
questlog import planner.json
questlog export | questlog import
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := document.Stdio
			if len(args) == 1 {
				path = args[0]
			}
			return withSession(cmd.Context(), func(s *session) error {
				r := document.Import{Service: s.Service, Path: path, In: cmd.InOrStdin()}
				return r.Do(cmd.Context())
			})
		},
	}

	topLevel.AddCommand(cmd)
}

func addExport(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write all quests as a JSON document",
		Example: `
questlog export > planner.json
questlog export backup.json
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := document.Stdio
			if len(args) == 1 {
				path = args[0]
			}
			return withSession(cmd.Context(), func(s *session) error {
				r := document.Export{Service: s.Service, Path: path, Out: cmd.OutOrStdout()}
				return r.Do(cmd.Context())
			})
		},
	}

	topLevel.AddCommand(cmd)
}
