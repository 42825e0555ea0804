package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ncurl/jobwatch/internal/scheduler"
	"github.com/ncurl/jobwatch/internal/status"
	"github.com/ncurl/jobwatch/internal/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the watch daemon",
	Long:  "Start one poll loop per enabled source; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"interval", cfg.PollInterval.String(),
		"sources", len(cfg.Sources),
		"include_keywords", len(cfg.Filters.IncludeKeywords),
		"exclude_keywords", len(cfg.Filters.ExcludeKeywords),
		"store", cfg.StorePath,
	)

	sqlStore, err := store.NewSQLiteStore(cfg.StorePath)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	client := setupTransport(cfg, logger)
	n := setupNotifier(cfg, client, logger)

	pollers := buildPollers(cfg, sqlStore, n, client, logger)
	if len(pollers) == 0 {
		logger.Error("no sources to poll")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(pollers, logger)

	if cfg.StatusAddr != "" {
		srv := status.NewServer(cfg.StatusAddr, sched, sqlStore, logger)
		go func() {
			if err := srv.Run(ctx); err != nil {
				logger.Error("status server error", "error", err)
			}
		}()
	}

	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
