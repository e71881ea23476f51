package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/questlog/pkg/commands/options"
)

var (
	output = &options.OutputOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "questlog",
		Short: base.Wrap80("Plan coursework as quests on a calendar, from the command line."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}

	options.AddOutputArg(cmd, output)
	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addKey(topLevel)
	addAdd(topLevel)
	addList(topLevel)
	addShow(topLevel)
	addProgress(topLevel)
	addDone(topLevel)
	addUndo(topLevel)
	addEdit(topLevel)
	addRemove(topLevel)
	addLabels(topLevel)
	addCalendar(topLevel)
	addDay(topLevel)
	addInfo(topLevel)
	addReport(topLevel)
	addImport(topLevel)
	addExport(topLevel)
	addWatch(topLevel)
	addMCP(topLevel)
	addVersion(topLevel)
	addUpgrade(topLevel)
	addCompletions(topLevel)
}
