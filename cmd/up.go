package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/offstage/stagehand/internal/journal"
	"github.com/offstage/stagehand/internal/ui"
)

var flagNoAutostart bool

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Create the holding session and prepare the visible window",
	Long: `Create the detached holding session and mark the visible window
remain-on-exit, so panes moved through the holding session survive their
process exiting.

A holding session left over from a previous run is replaced when
general.kill_existing_session is set, and refused otherwise. Procs marked
autostart are then opened in panes next to the current one.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sctx, d, err := newSessionContext(ctx)
		if err != nil {
			return err
		}

		name := sctx.DetachedSession()
		sessions, err := d.ListSessions(ctx)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		if slices.Contains(sessions, name) {
			if !cfg.General.KillExistingSession {
				return fmt.Errorf("holding session %q already exists (set general.kill_existing_session to replace it)", name)
			}
			ui.Warningf("replacing existing holding session %q", name)
			if err := d.KillSession(ctx, name); err != nil {
				return fmt.Errorf("kill existing holding session: %w", err)
			}
		}

		if err := sctx.Prepare(ctx); err != nil {
			return err
		}
		recordOp(journal.Entry{Op: journal.OpPrepare, Session: sctx.Session(), Window: sctx.Window()})
		ui.Successf("holding session %q ready; %s:%d prepared", name, sctx.Session(), sctx.Window())

		if flagNoAutostart {
			return nil
		}
		procNames := make([]string, 0, len(cfg.Procs))
		for procName := range cfg.Procs {
			procNames = append(procNames, procName)
		}
		slices.Sort(procNames)
		for _, procName := range procNames {
			proc := cfg.Procs[procName]
			if !proc.Autostart {
				continue
			}
			pane, err := sctx.CreatePane(ctx, proc.CommandLine())
			if err != nil {
				return fmt.Errorf("autostart %s: %w", procName, err)
			}
			tel.Metrics.RecordPaneCreated(ctx)
			recordOp(journal.Entry{Op: journal.OpCreate, Session: sctx.Session(), Window: sctx.Window(), Pane: pane, Label: procName})
			ui.Infof("autostarted %s in pane %d", procName, pane)
		}
		return nil
	},
}

func init() {
	upCmd.Flags().BoolVar(&flagNoAutostart, "no-autostart", false, "do not open procs marked autostart")
	rootCmd.AddCommand(upCmd)
}
