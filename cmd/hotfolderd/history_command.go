package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hotfolder/internal/config"
	"hotfolder/internal/history"
)

func newHistoryCommand(configFlag *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent dispatch attempts from the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("history is disabled; set history.enabled = true in the configuration")
			}

			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("open history ledger: %w", err)
			}
			defer store.Close()

			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				outcome := "ok"
				if !rec.Success {
					outcome = "failed: " + rec.Reason
				}
				rows = append(rows, []string{
					rec.DispatchedAt.Local().Format(time.DateTime),
					rec.Folder,
					rec.File,
					rec.Printer,
					outcome,
				})
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No dispatch attempts recorded yet")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Dispatched", "Folder", "File", "Printer", "Outcome"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of records to show")
	return cmd
}
