package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/offstage/stagehand/internal/journal"
	"github.com/offstage/stagehand/internal/ui"
)

var parkCmd = &cobra.Command{
	Use:   "park <source-pane> <dest-window> [label]",
	Short: "Move a pane out of the visible window into the holding session",
	Long: `Break the given pane out of the visible window into a new window of
the holding session, landing at the given window index. The destination
window is marked remain-on-exit so a quick process exit cannot destroy it
before a later recall.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		sourcePane, err := parseNonNegative(args[0], "source pane")
		if err != nil {
			return err
		}
		destWindow, err := parseNonNegative(args[1], "destination window")
		if err != nil {
			return err
		}
		label := fmt.Sprintf("parked-%d", sourcePane)
		if len(args) == 3 {
			label = args[2]
		}

		sctx, _, err := newSessionContext(ctx)
		if err != nil {
			return err
		}

		if err := sctx.BreakPane(ctx, sourcePane, destWindow, label); err != nil {
			return err
		}
		tel.Metrics.RecordPaneParked(ctx)
		recordOp(journal.Entry{Op: journal.OpPark, Session: sctx.DetachedSession(), Window: destWindow, Pane: sourcePane, Label: label})
		ui.Successf("pane %d parked as %s:%d (%s)", sourcePane, sctx.DetachedSession(), destWindow, label)
		return nil
	},
}

// parseNonNegative parses a window or pane index argument.
func parseNonNegative(s, what string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not an integer", what, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must be non-negative, got %d", what, n)
	}
	return n, nil
}

func init() {
	rootCmd.AddCommand(parkCmd)
}
