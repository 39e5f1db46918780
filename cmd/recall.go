package cmd

import (
	"github.com/spf13/cobra"

	"github.com/offstage/stagehand/internal/journal"
	"github.com/offstage/stagehand/internal/ui"
)

var recallCmd = &cobra.Command{
	Use:   "recall <window>",
	Short: "Move a parked window's pane back into the visible window",
	Long: `Join the pane of the given holding-session window back into the
visible window, inserted after the anchor pane.

The printed pane index is predicted (anchor + 1), not requeried: it is
accurate as long as nothing else inserted a pane at or before the anchor in
the meantime.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		window, err := parseNonNegative(args[0], "window")
		if err != nil {
			return err
		}

		sctx, _, err := newSessionContext(ctx)
		if err != nil {
			return err
		}

		pane, err := sctx.JoinPane(ctx, window)
		if err != nil {
			return err
		}
		tel.Metrics.RecordPaneRecalled(ctx)
		recordOp(journal.Entry{Op: journal.OpRecall, Session: sctx.Session(), Window: sctx.Window(), Pane: pane})
		ui.Successf("window %d recalled; pane expected at index %d", window, pane)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recallCmd)
}
