package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ncurl/jobwatch/internal/notifier"
	"github.com/ncurl/jobwatch/internal/store"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Poll every source once, print matches, exit",
	Long:  "One-shot poll: fetches every enabled source, logs matched jobs, exits. Does not write to the store and does not post to Discord.",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("check mode: nothing will be marked seen or posted")

	client := setupTransport(cfg, logger)
	// Always log in check mode, even when discord is configured.
	n := notifier.NewLogNotifier(logger)
	nopStore := store.NewNopStore()

	pollers := buildPollers(cfg, nopStore, n, client, logger)
	if len(pollers) == 0 {
		logger.Error("no sources to poll")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for _, p := range pollers {
		if _, err := p.Poll(ctx); err != nil {
			logger.Error("poll failed", "source", p.SourceName(), "error", err)
		}
	}

	logger.Info("check complete")
	return nil
}
