package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ncurl/jobwatch/internal/adapter"
	"github.com/ncurl/jobwatch/internal/config"
	"github.com/ncurl/jobwatch/internal/filter"
	"github.com/ncurl/jobwatch/internal/model"
	"github.com/ncurl/jobwatch/internal/notifier"
	"github.com/ncurl/jobwatch/internal/poller"
	"github.com/ncurl/jobwatch/internal/ratelimit"
	"github.com/ncurl/jobwatch/internal/transport"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobwatch",
	Short: "Watch job boards, get pinged once per posting",
	Long:  "jobwatch polls career sites and chats a Discord alert for every new posting that matches your keywords. Each posting alerts at most once, ever.",
	// Default to `start` so that `jobwatch` with no args runs the daemon.
	// This keeps systemd unit files that invoke the binary directly working.
	RunE: runStart,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBWATCH_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBWATCH_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBWATCH_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupTransport(cfg *config.Config, logger *slog.Logger) *transport.Client {
	var opts []transport.Option
	tc := cfg.Transport
	if tc.MaxAttempts > 0 {
		opts = append(opts, transport.WithMaxAttempts(tc.MaxAttempts))
	}
	if tc.BackoffBase > 0 && tc.BackoffMax > 0 {
		opts = append(opts, transport.WithBackoff(tc.BackoffBase, tc.BackoffMax))
	}
	if tc.RateLimitFloor > 0 {
		opts = append(opts, transport.WithRateLimitFloor(tc.RateLimitFloor))
	}
	if tc.Timeout > 0 {
		opts = append(opts, transport.WithTimeout(tc.Timeout))
	}
	return transport.New(logger, opts...)
}

func setupNotifier(cfg *config.Config, client *transport.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "discord":
		logger.Info("using discord notifier", "webhooks", len(cfg.Notification.Webhooks))
		return notifier.NewDiscordNotifier(cfg.Notification.Webhooks, client, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

func createFetcher(src config.SourceConfig, client *transport.Client, logger *slog.Logger) (model.JobFetcher, bool) {
	switch src.Type {
	case "greenhouse":
		return adapter.NewGreenhouseAdapter(src.Name, src.BoardToken, src.Company, client), true
	case "lever":
		return adapter.NewLeverAdapter(src.Name, src.Slug, src.Company, client), true
	case "ashby":
		return adapter.NewAshbyAdapter(src.Name, src.BoardToken, src.Company, client), true
	case "workable":
		return adapter.NewWorkableAdapter(src.Name, src.Subdomain, src.Company, client), true
	case "smartrecruiters":
		return adapter.NewSmartRecruitersAdapter(src.Name, src.CompanyID, src.Company, client), true
	case "workday":
		return adapter.NewWorkdayAdapter(src.Name, src.URL, src.Company, src.Keyword, src.MaxPages, client), true
	case "oracle":
		return adapter.NewOracleAdapter(src.Name, src.Keyword, src.Location, src.MaxJobs, client), true
	case "hn":
		return adapter.NewHNHiringAdapter(src.Name, src.FeedURL, client), true
	case "browser":
		headless := src.Headless == nil || *src.Headless
		return adapter.NewBrowserAdapter(src.Name, adapter.BrowserOptions{
			Group:        "browser",
			PageURL:      src.URL,
			Company:      src.Company,
			WaitSelector: src.WaitSelector,
			LinkSelector: src.LinkSelector,
			Headless:     headless,
			MaxJobs:      src.MaxJobs,
		}), true
	default:
		logger.Warn("unsupported source type, skipping", "source", src.Name, "type", src.Type)
		return nil, false
	}
}

func buildPollers(cfg *config.Config, jobStore model.JobStore, n model.Notifier, client *transport.Client, logger *slog.Logger) []*poller.SourcePoller {
	jobFilter := filter.New(cfg.Filters)
	limiter := ratelimit.NewGroupRateLimiter(cfg.RateLimit.MinDelay)
	for group, delay := range cfg.RateLimit.GroupOverrides {
		limiter.SetOverride(group, delay)
	}

	var pollers []*poller.SourcePoller
	for _, src := range cfg.Sources {
		if !src.Enabled {
			continue
		}

		fetcher, ok := createFetcher(src, client, logger)
		if !ok {
			continue
		}

		// All sources hitting the same group share the limiter.
		fetcher = ratelimit.NewLimitedFetcher(fetcher, limiter)

		p := poller.NewSourcePoller(fetcher, jobFilter, jobStore, n, cfg.IntervalFor(src), logger)
		pollers = append(pollers, p)
		logger.Info("registered source", "name", src.Name, "type", src.Type, "interval", cfg.IntervalFor(src))
	}
	return pollers
}
