package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/ncurl/jobwatch/internal/notifier"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification utilities",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test message to every configured webhook",
	RunE:  runNotifyTest,
}

func init() {
	notifyCmd.AddCommand(notifyTestCmd)
	rootCmd.AddCommand(notifyCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.Notification.Type != "discord" {
		logger.Error("notify test requires notification.type to be \"discord\" in config")
		os.Exit(1)
	}

	client := setupTransport(cfg, logger)
	n := notifier.NewDiscordNotifier(cfg.Notification.Webhooks, client, logger)

	if err := n.SendTestMessage(context.Background()); err != nil {
		logger.Error("test message failed", "error", err)
		os.Exit(1)
	}

	logger.Info("test message sent to all webhooks")
	return nil
}
