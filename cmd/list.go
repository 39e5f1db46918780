package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/offstage/stagehand/internal/mux"
	"github.com/offstage/stagehand/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List windows parked in the holding session",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := getDriver()
		if err != nil {
			return err
		}

		name := cfg.General.DetachedSessionName
		windows, err := d.ListWindows(cmd.Context(), name)
		if err != nil {
			if mux.IsSessionNotFound(err) {
				ui.Infof("holding session %q is not running (try `stagehand up`)", name)
				return nil
			}
			return fmt.Errorf("failed to list holding windows: %w", err)
		}
		if len(windows) == 0 {
			ui.Infof("no parked windows in %q", name)
			return nil
		}

		table := ui.NewTable([]string{"WINDOW", "NAME", "PANES"})
		for _, w := range windows {
			table.AddRow([]string{strconv.Itoa(w.Index), w.Name, strconv.Itoa(w.Panes)})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
