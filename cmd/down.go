package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/offstage/stagehand/internal/journal"
	"github.com/offstage/stagehand/internal/mux"
	"github.com/offstage/stagehand/internal/ui"
)

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Destroy the holding session and restore the visible window",
	Long: `Kill the detached holding session and clear the remain-on-exit flag
that "up" set on the visible window.

A holding session that was already destroyed externally is reported as a
warning, not a failure; the window flag is still cleared.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sctx, d, err := newSessionContext(ctx)
		if err != nil {
			return err
		}

		if err := sctx.Cleanup(ctx); err != nil {
			if !mux.IsSessionNotFound(err) {
				return err
			}
			ui.Warningf("holding session already gone: %v", err)
			if err := d.SetRemainOnExit(ctx, sctx.Session(), sctx.Window(), false); err != nil {
				return fmt.Errorf("clear remain-on-exit on %s:%d: %w", sctx.Session(), sctx.Window(), err)
			}
		}

		recordOp(journal.Entry{Op: journal.OpCleanup, Session: sctx.Session(), Window: sctx.Window()})
		ui.Successf("holding session %q removed", sctx.DetachedSession())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(downCmd)
}
