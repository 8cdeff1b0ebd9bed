package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hotfolder/internal/config"
)

func newFoldersCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "folders",
		Short: "List the configured hot folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			rows := make([][]string, 0, len(cfg.Folders))
			for _, folder := range cfg.Folders {
				printer := folder.Printer
				if printer == "" {
					printer = "(default)"
				}
				rows = append(rows, []string{
					folder.Name,
					folder.WatchPath,
					printer,
					folder.SuccessFolder,
					folder.ErrorFolder,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Watch Path", "Printer", "Success", "Error"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
