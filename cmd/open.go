package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/offstage/stagehand/internal/journal"
	"github.com/offstage/stagehand/internal/ui"
)

var openCmd = &cobra.Command{
	Use:   "open <proc> | open -- <command> [args...]",
	Short: "Open a command in a new pane next to the current one",
	Long: `Create a new pane next to the anchor pane running either a proc
named in the config file or a raw shell command.

A single argument naming a configured proc uses that proc's command line
(cwd, env, and add_path applied); anything else is joined and run as-is.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		line := strings.Join(args, " ")
		label := ""
		if len(args) == 1 {
			if proc, ok := cfg.Procs[args[0]]; ok {
				line = proc.CommandLine()
				label = args[0]
			}
		}

		sctx, _, err := newSessionContext(ctx)
		if err != nil {
			return err
		}

		pane, err := sctx.CreatePane(ctx, line)
		if err != nil {
			return err
		}
		tel.Metrics.RecordPaneCreated(ctx)
		recordOp(journal.Entry{Op: journal.OpCreate, Session: sctx.Session(), Window: sctx.Window(), Pane: pane, Label: label})
		ui.Successf("created pane %d", pane)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}
