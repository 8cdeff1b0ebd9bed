package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hotfolder/internal/config"
	"hotfolder/internal/daemon"
	"hotfolder/internal/history"
	"hotfolder/internal/logging"
	"hotfolder/internal/printing"
	"hotfolder/internal/worker"
)

func newRunCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the hot folder daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, path, exists, err := config.Load(*configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !exists {
				return fmt.Errorf("no configuration found at %s (run %q first)", path, "hotfolderd config init")
			}
			if err := cfg.EnsureLogDir(); err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			logger.Info("configuration loaded",
				logging.String(logging.FieldEventType, "config_loaded"),
				logging.String("path", path),
				logging.Int("folders", len(cfg.Folders)),
			)

			var recorder worker.Recorder
			if cfg.History.Enabled {
				store, err := history.Open(cfg.HistoryPath())
				if err != nil {
					return fmt.Errorf("open history ledger: %w", err)
				}
				defer store.Close()
				recorder = store
			}

			dispatcher := printing.NewPlatformDispatcher()
			sup, err := daemon.New(cfg, dispatcher, logger, daemon.Options{Recorder: recorder})
			if err != nil {
				return fmt.Errorf("create supervisor: %w", err)
			}
			defer sup.Close()

			if err := sup.Start(signalCtx); err != nil {
				return fmt.Errorf("start supervisor: %w", err)
			}

			<-signalCtx.Done()
			logger.Info("shutting down", logging.String(logging.FieldEventType, "shutdown_requested"))
			sup.Stop()
			return nil
		},
	}
}
