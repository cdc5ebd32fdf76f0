package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadWithFileOverrides(t *testing.T) {
	t.Setenv("RELAY_NOTIFIER_WEBHOOK_URL", "")
	t.Setenv(LegacyWebhookEnv, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
  request_timeout_seconds: 20
http:
  fetch_timeout_seconds: 25
  notify_timeout_seconds: 5
  user_agent: relay-test
extract:
  max_content_length: 500
  phrases:
    - "Share this"
    - "Read more"
notifier:
  driver: webhook
  webhook_url: https://hooks.example.com/in
logging:
  development: true
  level: debug
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.HTTP.UserAgent != "relay-test" {
		t.Fatalf("expected user agent override, got %q", cfg.HTTP.UserAgent)
	}
	if cfg.Extract.MaxContentLength != 500 || len(cfg.Extract.Phrases) != 2 || cfg.Extract.Phrases[1] != "Read more" {
		t.Fatalf("expected extract overrides to apply: %+v", cfg.Extract)
	}
	if cfg.Notifier.WebhookURL != "https://hooks.example.com/in" || cfg.Notifier.WebhookDefaulted {
		t.Fatalf("expected webhook from file: %+v", cfg.Notifier)
	}
	if !cfg.Logging.Development || cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging overrides: %+v", cfg.Logging)
	}
	if got := cfg.FetchTimeout(); got != 25*time.Second {
		t.Fatalf("expected fetch timeout 25s, got %v", got)
	}
	if got := cfg.NotifyTimeout(); got != 5*time.Second {
		t.Fatalf("expected notify timeout 5s, got %v", got)
	}
	if got := cfg.RequestTimeout(); got != 20*time.Second {
		t.Fatalf("expected request timeout 20s, got %v", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RELAY_NOTIFIER_WEBHOOK_URL", "")
	t.Setenv(LegacyWebhookEnv, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Notifier.WebhookURL != DefaultWebhookURL || !cfg.Notifier.WebhookDefaulted {
		t.Fatalf("expected fallback webhook, got %+v", cfg.Notifier)
	}
	if cfg.Extract.MaxContentLength != 10000 {
		t.Fatalf("expected default max content length, got %d", cfg.Extract.MaxContentLength)
	}
	if len(cfg.Extract.Phrases) != len(DefaultPhrases) {
		t.Fatalf("expected default phrases, got %v", cfg.Extract.Phrases)
	}
	if cfg.HTTP.UserAgent != DefaultUserAgent {
		t.Fatalf("expected browser user agent, got %q", cfg.HTTP.UserAgent)
	}
	if cfg.Notifier.Driver != DriverWebhook {
		t.Fatalf("expected webhook driver, got %q", cfg.Notifier.Driver)
	}
	if cfg.HTTP.Fetcher != FetcherColly || cfg.Headless.MaxParallel != 2 {
		t.Fatalf("expected colly fetcher and 2 headless tabs, got %q / %d", cfg.HTTP.Fetcher, cfg.Headless.MaxParallel)
	}
}

func TestLoadWebhookFromEnvironment(t *testing.T) {
	t.Setenv("RELAY_NOTIFIER_WEBHOOK_URL", "")
	t.Setenv(LegacyWebhookEnv, "https://legacy.example.com/hook")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Notifier.WebhookURL != "https://legacy.example.com/hook" || cfg.Notifier.WebhookDefaulted {
		t.Fatalf("expected legacy env webhook, got %+v", cfg.Notifier)
	}

	t.Setenv("RELAY_NOTIFIER_WEBHOOK_URL", "https://primary.example.com/hook")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Notifier.WebhookURL != "https://primary.example.com/hook" {
		t.Fatalf("expected prefixed env to win, got %q", cfg.Notifier.WebhookURL)
	}
}

func TestLoadEnvOverridesScalar(t *testing.T) {
	t.Setenv("RELAY_SERVER_PORT", "7070")
	t.Setenv("RELAY_NOTIFIER_DRIVER", "memory")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Fatalf("expected port from env, got %d", cfg.Server.Port)
	}
	if cfg.Notifier.Driver != DriverMemory {
		t.Fatalf("expected memory driver, got %q", cfg.Notifier.Driver)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Server:   ServerConfig{Port: 8080, RequestTimeoutSeconds: 60},
		HTTP:     HTTPConfig{FetchTimeoutSeconds: 10, NotifyTimeoutSeconds: 10, MaxBodyBytes: 1024},
		Extract:  ExtractConfig{MaxContentLength: 100},
		Notifier: NotifierConfig{Driver: DriverWebhook, WebhookURL: "https://hooks.example.com"},
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "invalid port",
			cfg: func() Config {
				c := base
				c.Server.Port = 0
				return c
			}(),
			want: "server.port",
		},
		{
			name: "invalid fetch timeout",
			cfg: func() Config {
				c := base
				c.HTTP.FetchTimeoutSeconds = 0
				return c
			}(),
			want: "http.fetch_timeout_seconds",
		},
		{
			name: "invalid notify timeout",
			cfg: func() Config {
				c := base
				c.HTTP.NotifyTimeoutSeconds = -1
				return c
			}(),
			want: "http.notify_timeout_seconds",
		},
		{
			name: "unknown fetcher",
			cfg: func() Config {
				c := base
				c.HTTP.Fetcher = "curl"
				return c
			}(),
			want: "http.fetcher",
		},
		{
			name: "negative headless parallelism",
			cfg: func() Config {
				c := base
				c.Headless.MaxParallel = -1
				return c
			}(),
			want: "headless.max_parallel",
		},
		{
			name: "invalid max content length",
			cfg: func() Config {
				c := base
				c.Extract.MaxContentLength = 0
				return c
			}(),
			want: "extract.max_content_length",
		},
		{
			name: "bad phrase pattern",
			cfg: func() Config {
				c := base
				c.Extract.Phrases = []string{"ok", "(unclosed"}
				return c
			}(),
			want: "extract.phrases[1]",
		},
		{
			name: "relative webhook",
			cfg: func() Config {
				c := base
				c.Notifier.WebhookURL = "/hooks"
				return c
			}(),
			want: "notifier.webhook_url",
		},
		{
			name: "pubsub missing topic",
			cfg: func() Config {
				c := base
				c.Notifier.Driver = DriverPubSub
				c.Notifier.PubSub.ProjectID = "proj"
				return c
			}(),
			want: "notifier.pubsub",
		},
		{
			name: "unknown driver",
			cfg: func() Config {
				c := base
				c.Notifier.Driver = "carrier-pigeon"
				return c
			}(),
			want: "notifier.driver",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}

	if err := base.Validate(); err != nil {
		t.Fatalf("expected base config to validate, got %v", err)
	}
}
