package cmd

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/offstage/stagehand/internal/config"
	"github.com/offstage/stagehand/internal/journal"
	"github.com/offstage/stagehand/internal/mux"
	"github.com/offstage/stagehand/internal/otel"
	"github.com/offstage/stagehand/internal/session"
	"github.com/offstage/stagehand/internal/ui"
)

// Version is injected at build time via -ldflags.
var Version = "dev"

var (
	// Global flags.
	flagConfig string
	flagMux    string
)

var (
	cfg *config.Config
	tel *otel.Telemetry
)

var rootCmd = &cobra.Command{
	Use:   "stagehand",
	Short: "Stage tmux panes in and out of a hidden holding session",
	Long: `stagehand moves running processes between the tmux window you are
looking at and a detached holding session, without killing them.

It owns a hidden holding session used as a staging area: "park" breaks a
pane out of the visible window into the holding session, "recall" joins it
back next to the pane you started from. Remain-on-exit flags are managed so
that a process exiting mid-move cannot destroy its pane.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return err
		}
		otel.Version = Version
		tel, err = otel.Init(cmd.Context(), otel.OTELConfig{
			Endpoint: cfg.OTELEndpoint,
			Headers:  cfg.OTELHeaders,
		})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if tel != nil {
			tel.Shutdown(cmd.Context())
		}
	},
}

// Execute runs the root command. A fatal environment mismatch (unparseable
// multiplexer state) exits 2; ordinary failures exit 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var fatal *session.FatalError
		if errors.As(err, &fatal) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", os.Getenv("STAGEHAND_CONFIG"),
		"path to config file (default: stagehand.yml, then ~/.config/stagehand/stagehand.yml)")
	rootCmd.PersistentFlags().StringVar(&flagMux, "mux", "", "terminal multiplexer: tmux (default: auto-detect)")
}

// getDriver returns the configured or auto-detected multiplexer driver,
// instrumented so every call lands on the metric counters.
func getDriver() (mux.Driver, error) {
	var (
		d   mux.Driver
		err error
	)
	if flagMux != "" {
		d, err = mux.FromName(flagMux)
	} else {
		d, err = mux.Detect()
	}
	if err != nil {
		return nil, err
	}
	if tel != nil && tel.Metrics != nil {
		d = mux.Instrument(d, tel.Metrics)
	}
	return d, nil
}

// newSessionContext builds the session controller from the live multiplexer
// state.
func newSessionContext(ctx context.Context) (*session.Context, mux.Driver, error) {
	d, err := getDriver()
	if err != nil {
		return nil, nil, err
	}
	sctx, err := session.FromCurrent(ctx, d, cfg.General.DetachedSessionName)
	if err != nil {
		return nil, nil, err
	}
	return sctx, d, nil
}

func journalPath() string {
	if cfg.Journal != "" {
		return cfg.Journal
	}
	return journal.DefaultPath()
}

// recordOp journals an operation. The journal is operational history, not a
// ledger: failures are reported but never fail the command.
func recordOp(e journal.Entry) {
	e.TS = time.Now().UTC()
	if err := journal.Append(journalPath(), e); err != nil {
		ui.Warningf("journal: %v", err)
	}
}
