package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ncurl/jobwatch/internal/filter"
)

// Source types understood by the adapter builder.
var knownSourceTypes = map[string]bool{
	"greenhouse":      true,
	"lever":           true,
	"ashby":           true,
	"workable":        true,
	"smartrecruiters": true,
	"workday":         true,
	"oracle":          true,
	"hn":              true,
	"browser":         true,
}

// Per-source intervals below this floor are rejected to keep the watcher
// polite toward upstream boards.
const minPollInterval = 60 * time.Second

// Config is the root configuration for the jobwatch daemon.
type Config struct {
	PollInterval time.Duration
	StorePath    string
	StatusAddr   string
	Sources      []SourceConfig
	Filters      filter.Rules
	Notification NotificationConfig
	Transport    TransportConfig
	RateLimit    RateLimitConfig
}

// SourceConfig describes a single board to poll. Which fields matter
// depends on Type; Validate checks the combination.
type SourceConfig struct {
	Name         string
	Type         string
	Enabled      bool
	PollInterval time.Duration // zero means the global default

	// ATS identifiers. BoardToken serves greenhouse and ashby, Slug
	// serves lever, Subdomain serves workable, CompanyID serves
	// smartrecruiters.
	BoardToken string
	Slug       string
	Subdomain  string
	CompanyID  string

	Company  string
	URL      string // workday and browser entry point
	Keyword  string
	Location string
	FeedURL  string // hn override

	// Browser-only knobs.
	WaitSelector string
	LinkSelector string
	Headless     *bool // nil means headless on

	MaxJobs  int
	MaxPages int
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type     string            // "log" or "discord"
	Webhooks map[string]string // source group -> webhook URL; "default" is the fallback
}

// TransportConfig tunes the retrying HTTP client shared by all adapters.
type TransportConfig struct {
	MaxAttempts    int
	BackoffBase    time.Duration
	BackoffMax     time.Duration
	RateLimitFloor time.Duration
	Timeout        time.Duration
}

// RateLimitConfig controls the minimum gap between requests to one source group.
type RateLimitConfig struct {
	MinDelay       time.Duration
	GroupOverrides map[string]time.Duration
}

// MinDelayFor returns the configured delay for the given group, falling
// back to MinDelay.
func (r RateLimitConfig) MinDelayFor(group string) time.Duration {
	if d, ok := r.GroupOverrides[group]; ok {
		return d
	}
	return r.MinDelay
}

// rawConfig mirrors the YAML document: snake_case keys, durations as strings.
type rawConfig struct {
	PollInterval string             `yaml:"poll_interval"`
	StorePath    string             `yaml:"store_path"`
	StatusAddr   string             `yaml:"status_addr"`
	Sources      []rawSourceConfig  `yaml:"sources"`
	Filters      rawFilterConfig    `yaml:"filters"`
	Notification rawNotification    `yaml:"notification"`
	Transport    rawTransportConfig `yaml:"transport"`
	RateLimit    rawRateLimitConfig `yaml:"rate_limit"`
}

type rawSourceConfig struct {
	Name         string `yaml:"name"`
	Type         string `yaml:"type"`
	Enabled      bool   `yaml:"enabled"`
	PollInterval string `yaml:"poll_interval"`
	BoardToken   string `yaml:"board_token"`
	Slug         string `yaml:"slug"`
	Subdomain    string `yaml:"subdomain"`
	CompanyID    string `yaml:"company_id"`
	Company      string `yaml:"company"`
	URL          string `yaml:"url"`
	Keyword      string `yaml:"keyword"`
	Location     string `yaml:"location"`
	FeedURL      string `yaml:"feed_url"`
	WaitSelector string `yaml:"wait_selector"`
	LinkSelector string `yaml:"link_selector"`
	Headless     *bool  `yaml:"headless"`
	MaxJobs      int    `yaml:"max_jobs"`
	MaxPages     int    `yaml:"max_pages"`
}

type rawFilterConfig struct {
	IncludeKeywords []string     `yaml:"include_keywords"`
	ExcludeKeywords []string     `yaml:"exclude_keywords"`
	LevelGate       rawLevelGate `yaml:"level_gate"`
}

type rawLevelGate struct {
	Enabled bool     `yaml:"enabled"`
	Allowed []string `yaml:"allowed"`
}

type rawNotification struct {
	Type     string            `yaml:"type"`
	Webhooks map[string]string `yaml:"webhooks"`
}

type rawTransportConfig struct {
	MaxAttempts    int    `yaml:"max_attempts"`
	BackoffBase    string `yaml:"backoff_base"`
	BackoffMax     string `yaml:"backoff_max"`
	RateLimitFloor string `yaml:"rate_limit_floor"`
	Timeout        string `yaml:"timeout"`
}

type rawRateLimitConfig struct {
	MinDelay       string            `yaml:"min_delay"`
	GroupOverrides map[string]string `yaml:"group_overrides"`
}

// Load reads the YAML config at path, expands environment variables,
// applies defaults, validates, and returns the typed Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Webhook URLs and tokens live in env vars, not in the file.
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := &Config{
		StorePath:  raw.StorePath,
		StatusAddr: raw.StatusAddr,
		Filters: filter.Rules{
			IncludeKeywords: raw.Filters.IncludeKeywords,
			ExcludeKeywords: raw.Filters.ExcludeKeywords,
			Level: filter.LevelGate{
				Enabled: raw.Filters.LevelGate.Enabled,
				Allowed: raw.Filters.LevelGate.Allowed,
			},
		},
		Notification: NotificationConfig{
			Type:     raw.Notification.Type,
			Webhooks: raw.Notification.Webhooks,
		},
	}

	if cfg.StorePath == "" {
		cfg.StorePath = "jobwatch.db"
	}
	if cfg.Notification.Type == "" {
		cfg.Notification.Type = "log"
	}

	cfg.PollInterval = 15 * time.Minute
	if raw.PollInterval != "" {
		cfg.PollInterval, err = time.ParseDuration(raw.PollInterval)
		if err != nil {
			return nil, fmt.Errorf("parse poll_interval %q: %w", raw.PollInterval, err)
		}
	}

	if cfg.Transport, err = parseTransport(raw.Transport); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = parseRateLimit(raw.RateLimit); err != nil {
		return nil, err
	}

	for _, rs := range raw.Sources {
		sc := SourceConfig{
			Name:         rs.Name,
			Type:         rs.Type,
			Enabled:      rs.Enabled,
			BoardToken:   rs.BoardToken,
			Slug:         rs.Slug,
			Subdomain:    rs.Subdomain,
			CompanyID:    rs.CompanyID,
			Company:      rs.Company,
			URL:          rs.URL,
			Keyword:      rs.Keyword,
			Location:     rs.Location,
			FeedURL:      rs.FeedURL,
			WaitSelector: rs.WaitSelector,
			LinkSelector: rs.LinkSelector,
			Headless:     rs.Headless,
			MaxJobs:      rs.MaxJobs,
			MaxPages:     rs.MaxPages,
		}
		if rs.PollInterval != "" {
			sc.PollInterval, err = time.ParseDuration(rs.PollInterval)
			if err != nil {
				return nil, fmt.Errorf("parse sources[%q].poll_interval: %w", rs.Name, err)
			}
		}
		cfg.Sources = append(cfg.Sources, sc)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseTransport(raw rawTransportConfig) (TransportConfig, error) {
	tc := TransportConfig{MaxAttempts: raw.MaxAttempts}

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"transport.backoff_base", raw.BackoffBase, &tc.BackoffBase},
		{"transport.backoff_max", raw.BackoffMax, &tc.BackoffMax},
		{"transport.rate_limit_floor", raw.RateLimitFloor, &tc.RateLimitFloor},
		{"transport.timeout", raw.Timeout, &tc.Timeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return TransportConfig{}, fmt.Errorf("parse %s %q: %w", d.name, d.raw, err)
		}
		*d.dst = v
	}
	return tc, nil
}

func parseRateLimit(raw rawRateLimitConfig) (RateLimitConfig, error) {
	rl := RateLimitConfig{MinDelay: 2 * time.Second}
	if raw.MinDelay != "" {
		d, err := time.ParseDuration(raw.MinDelay)
		if err != nil {
			return RateLimitConfig{}, fmt.Errorf("parse rate_limit.min_delay %q: %w", raw.MinDelay, err)
		}
		rl.MinDelay = d
	}

	if len(raw.GroupOverrides) > 0 {
		rl.GroupOverrides = make(map[string]time.Duration, len(raw.GroupOverrides))
		for group, rawDelay := range raw.GroupOverrides {
			d, err := time.ParseDuration(rawDelay)
			if err != nil {
				return RateLimitConfig{}, fmt.Errorf("parse rate_limit.group_overrides[%q]: %w", group, err)
			}
			rl.GroupOverrides[group] = d
		}
	}
	return rl, nil
}

func validate(cfg *Config) error {
	if cfg.PollInterval < minPollInterval {
		return fmt.Errorf("poll_interval must be at least %v, got %v", minPollInterval, cfg.PollInterval)
	}

	enabled := 0
	names := make(map[string]bool)
	for _, s := range cfg.Sources {
		if s.Name == "" {
			return fmt.Errorf("every source needs a name")
		}
		if names[s.Name] {
			return fmt.Errorf("duplicate source name %q", s.Name)
		}
		names[s.Name] = true

		if !knownSourceTypes[s.Type] {
			return fmt.Errorf("source %q: unknown type %q", s.Name, s.Type)
		}
		if s.PollInterval != 0 && s.PollInterval < minPollInterval {
			return fmt.Errorf("source %q: poll_interval must be at least %v, got %v", s.Name, minPollInterval, s.PollInterval)
		}
		if err := validateSourceFields(s); err != nil {
			return err
		}
		if s.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}

	switch cfg.Notification.Type {
	case "log":
	case "discord":
		if len(cfg.Notification.Webhooks) == 0 {
			return fmt.Errorf("notification.webhooks is required when type is \"discord\"")
		}
		for group, url := range cfg.Notification.Webhooks {
			if url == "" {
				return fmt.Errorf("notification.webhooks[%q] is empty", group)
			}
		}
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"discord\", got %q", cfg.Notification.Type)
	}

	return nil
}

func validateSourceFields(s SourceConfig) error {
	missing := func(field string) error {
		return fmt.Errorf("source %q: %s is required for type %q", s.Name, field, s.Type)
	}

	switch s.Type {
	case "greenhouse", "ashby":
		if s.BoardToken == "" {
			return missing("board_token")
		}
	case "lever":
		if s.Slug == "" {
			return missing("slug")
		}
	case "workable":
		if s.Subdomain == "" {
			return missing("subdomain")
		}
	case "smartrecruiters":
		if s.CompanyID == "" {
			return missing("company_id")
		}
	case "workday":
		if s.URL == "" {
			return missing("url")
		}
	case "browser":
		if s.URL == "" {
			return missing("url")
		}
		if s.WaitSelector == "" {
			return missing("wait_selector")
		}
	case "hn", "oracle":
		// Everything optional: both have sensible built-in endpoints.
	}
	return nil
}

// IntervalFor returns the effective poll interval for a source.
func (c *Config) IntervalFor(s SourceConfig) time.Duration {
	if s.PollInterval > 0 {
		return s.PollInterval
	}
	return c.PollInterval
}
