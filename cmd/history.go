package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/offstage/stagehand/internal/journal"
	"github.com/offstage/stagehand/internal/ui"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the operation journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := journal.ReadAll(journalPath())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			ui.Infof("journal is empty")
			return nil
		}
		if flagHistoryLimit > 0 && len(entries) > flagHistoryLimit {
			entries = entries[len(entries)-flagHistoryLimit:]
		}

		table := ui.NewTable([]string{"TIME", "OP", "TARGET", "LABEL", "MESSAGE"})
		for _, e := range entries {
			target := ""
			if e.Session != "" {
				target = fmt.Sprintf("%s:%d.%d", e.Session, e.Window, e.Pane)
			}
			table.AddRow([]string{
				e.TS.Local().Format("2006-01-02 15:04:05"),
				e.Op,
				target,
				e.Label,
				e.Message,
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "show at most this many entries (0 for all)")
	rootCmd.AddCommand(historyCmd)
}
