package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/offstage/stagehand/internal/journal"
	"github.com/offstage/stagehand/internal/mux"
	"github.com/offstage/stagehand/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the holding session for pane process exits",
	Long: `Attach a control-mode client to the holding session and report each
pane whose process exits. The pane itself is kept alive by remain-on-exit;
this only makes the exit visible and journals it. Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		name := cfg.General.DetachedSessionName
		w, err := mux.NewWatcher(name)
		if err != nil {
			return err
		}
		defer w.Close()

		deaths := make(chan int, 16)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for pid := range deaths {
				tel.Metrics.RecordPaneDeath(ctx)
				recordOp(journal.Entry{Op: journal.OpPaneDeath, Session: name, Message: fmt.Sprintf("pid %d exited", pid)})
				ui.Warningf("process %d in %q exited; pane kept by remain-on-exit", pid, name)
			}
		}()

		ui.Infof("watching %q for pane deaths (ctrl-c to stop)", name)
		err = w.Run(ctx, deaths)
		close(deaths)
		<-done

		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
