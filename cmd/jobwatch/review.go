package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ncurl/jobwatch/internal/review"
	"github.com/ncurl/jobwatch/internal/store"
)

var reviewLimit int

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Browse recently seen postings",
	Long:  "Interactive browser over the dedup store: what was seen, from where, and when.",
	RunE:  runReview,
}

func init() {
	reviewCmd.Flags().IntVar(&reviewLimit, "limit", 200, "how many recent records to load")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sqlStore, err := store.NewSQLiteStore(cfg.StorePath)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	records, err := sqlStore.Recent(reviewLimit)
	if err != nil {
		logger.Error("failed to load records", "error", err)
		os.Exit(1)
	}

	return review.Run(records)
}
