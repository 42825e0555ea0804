package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validConfig = `
poll_interval: 10m
store_path: /tmp/jobwatch-test.db
status_addr: ":8090"

transport:
  max_attempts: 4
  backoff_base: 1s
  timeout: 20s

rate_limit:
  min_delay: 3s
  group_overrides:
    workday: 10s

sources:
  - name: Acme Greenhouse
    type: greenhouse
    enabled: true
    board_token: acme
  - name: Acme Lever
    type: lever
    enabled: false
    slug: acme
    poll_interval: 2m
  - name: HN Who Is Hiring
    type: hn
    enabled: true

filters:
  include_keywords: ["software engineer", "backend"]
  exclude_keywords: ["clearance"]
  level_gate:
    enabled: true
    allowed: ["new grad", "junior"]

notification:
  type: discord
  webhooks:
    default: https://discord.com/api/webhooks/1/abc
    hn: https://discord.com/api/webhooks/2/def
`

func TestLoad_Valid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.PollInterval != 10*time.Minute {
		t.Errorf("PollInterval = %v", cfg.PollInterval)
	}
	if cfg.Transport.MaxAttempts != 4 || cfg.Transport.BackoffBase != time.Second || cfg.Transport.Timeout != 20*time.Second {
		t.Errorf("Transport = %+v", cfg.Transport)
	}
	if cfg.RateLimit.MinDelayFor("workday") != 10*time.Second {
		t.Errorf("workday override = %v", cfg.RateLimit.MinDelayFor("workday"))
	}
	if cfg.RateLimit.MinDelayFor("greenhouse") != 3*time.Second {
		t.Errorf("fallback delay = %v", cfg.RateLimit.MinDelayFor("greenhouse"))
	}

	if len(cfg.Sources) != 3 {
		t.Fatalf("got %d sources", len(cfg.Sources))
	}
	if cfg.IntervalFor(cfg.Sources[0]) != 10*time.Minute {
		t.Errorf("default interval not inherited: %v", cfg.IntervalFor(cfg.Sources[0]))
	}
	if cfg.IntervalFor(cfg.Sources[1]) != 2*time.Minute {
		t.Errorf("per-source interval ignored: %v", cfg.IntervalFor(cfg.Sources[1]))
	}

	if !cfg.Filters.Level.Enabled || len(cfg.Filters.Level.Allowed) != 2 {
		t.Errorf("level gate = %+v", cfg.Filters.Level)
	}
	if cfg.Notification.Webhooks["hn"] != "https://discord.com/api/webhooks/2/def" {
		t.Errorf("webhooks = %v", cfg.Notification.Webhooks)
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_WEBHOOK_URL", "https://discord.com/api/webhooks/9/secret")

	cfg, err := Load(writeConfig(t, `
sources:
  - name: HN
    type: hn
    enabled: true
notification:
  type: discord
  webhooks:
    default: ${TEST_WEBHOOK_URL}
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Notification.Webhooks["default"] != "https://discord.com/api/webhooks/9/secret" {
		t.Errorf("env var not expanded: %q", cfg.Notification.Webhooks["default"])
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
sources:
  - name: HN
    type: hn
    enabled: true
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PollInterval != 15*time.Minute {
		t.Errorf("default poll_interval = %v", cfg.PollInterval)
	}
	if cfg.StorePath != "jobwatch.db" {
		t.Errorf("default store_path = %q", cfg.StorePath)
	}
	if cfg.Notification.Type != "log" {
		t.Errorf("default notification type = %q", cfg.Notification.Type)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "no enabled sources",
			yaml: `
sources:
  - name: HN
    type: hn
    enabled: false
`,
			wantErr: "at least one source must be enabled",
		},
		{
			name: "unknown source type",
			yaml: `
sources:
  - name: Board
    type: taleo
    enabled: true
`,
			wantErr: "unknown type",
		},
		{
			name: "greenhouse without board token",
			yaml: `
sources:
  - name: Acme
    type: greenhouse
    enabled: true
`,
			wantErr: "board_token is required",
		},
		{
			name: "browser without wait selector",
			yaml: `
sources:
  - name: Careers Page
    type: browser
    enabled: true
    url: https://example.com/careers
`,
			wantErr: "wait_selector is required",
		},
		{
			name: "interval below floor",
			yaml: `
sources:
  - name: HN
    type: hn
    enabled: true
    poll_interval: 5s
`,
			wantErr: "poll_interval must be at least",
		},
		{
			name: "duplicate source names",
			yaml: `
sources:
  - name: HN
    type: hn
    enabled: true
  - name: HN
    type: hn
    enabled: true
`,
			wantErr: "duplicate source name",
		},
		{
			name: "discord without webhooks",
			yaml: `
sources:
  - name: HN
    type: hn
    enabled: true
notification:
  type: discord
`,
			wantErr: "webhooks is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
