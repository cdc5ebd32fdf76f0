// Package config loads and validates relay configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultWebhookURL is the destination used when no webhook URL is configured.
const DefaultWebhookURL = "http://localhost:8081/hooks/content"

// LegacyWebhookEnv is honored after RELAY_NOTIFIER_WEBHOOK_URL.
const LegacyWebhookEnv = "MAKE_WEBHOOK_URL"

// Notifier drivers.
const (
	DriverWebhook = "webhook"
	DriverPubSub  = "pubsub"
	DriverMemory  = "memory"
)

// Page fetchers.
const (
	FetcherColly    = "colly"
	FetcherHeadless = "headless"
)

// DefaultUserAgent mimics a desktop browser; some origins reject unknown agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DefaultPhrases is the boilerplate removed from extracted text, in order.
var DefaultPhrases = []string{
	"URL Copied",
	"Editör",
	"Bir e-posta göndermek",
	"4 saat önce",
	"Son güncelleme: Mayıs 6, 2025",
	"1 dakika okuma süresi",
	"Paylaş Facebook LinkedIn WhatsApp Telegram E-Posta ile paylaş Yazdır",
	"Paylaş",
	"Facebook",
	"LinkedIn",
	"WhatsApp",
	"Telegram",
	"E-Posta ile paylaş",
	"Yazdır",
}

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Headless HeadlessConfig `mapstructure:"headless"`
	Extract  ExtractConfig  `mapstructure:"extract"`
	Notifier NotifierConfig `mapstructure:"notifier"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                  int `mapstructure:"port"`
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
}

// HTTPConfig configures the outbound HTTP clients.
type HTTPConfig struct {
	FetchTimeoutSeconds  int    `mapstructure:"fetch_timeout_seconds"`
	NotifyTimeoutSeconds int    `mapstructure:"notify_timeout_seconds"`
	UserAgent            string `mapstructure:"user_agent"`
	Accept               string `mapstructure:"accept"`
	AcceptLanguage       string `mapstructure:"accept_language"`
	MaxBodyBytes         int    `mapstructure:"max_body_bytes"`
	// Fetcher selects colly (plain GET) or headless (rendered DOM). Empty means colly.
	Fetcher              string `mapstructure:"fetcher"`
}

// HeadlessConfig tunes the headless Chrome fetcher.
type HeadlessConfig struct {
	MaxParallel int `mapstructure:"max_parallel"`
}

// ExtractConfig tunes text cleaning.
type ExtractConfig struct {
	MaxContentLength int      `mapstructure:"max_content_length"`
	Phrases          []string `mapstructure:"phrases"`
}

// NotifierConfig selects and configures the delivery driver.
type NotifierConfig struct {
	Driver     string       `mapstructure:"driver"`
	WebhookURL string       `mapstructure:"webhook_url"`
	PubSub     PubSubConfig `mapstructure:"pubsub"`

	// WebhookDefaulted is set by Load when WebhookURL fell back to DefaultWebhookURL.
	WebhookDefaulted bool `mapstructure:"-"`
}

// PubSubConfig holds the topic used by the pubsub driver.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("notifier.webhook_url", "RELAY_NOTIFIER_WEBHOOK_URL", LegacyWebhookEnv); err != nil {
		return Config{}, fmt.Errorf("bind webhook env: %w", err)
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.Notifier.WebhookURL) == "" {
		cfg.Notifier.WebhookURL = DefaultWebhookURL
		cfg.Notifier.WebhookDefaulted = true
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_seconds", 60)
	v.SetDefault("http.fetch_timeout_seconds", 15)
	v.SetDefault("http.notify_timeout_seconds", 10)
	v.SetDefault("http.user_agent", DefaultUserAgent)
	v.SetDefault("http.accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	v.SetDefault("http.accept_language", "en-US,en;q=0.5")
	v.SetDefault("http.max_body_bytes", 10*1024*1024)
	v.SetDefault("http.fetcher", FetcherColly)
	v.SetDefault("headless.max_parallel", 2)
	v.SetDefault("extract.max_content_length", 10000)
	v.SetDefault("extract.phrases", DefaultPhrases)
	v.SetDefault("notifier.driver", DriverWebhook)
	v.SetDefault("notifier.pubsub.project_id", "")
	v.SetDefault("notifier.pubsub.topic", "")
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "info")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("server.request_timeout_seconds must be > 0")
	}
	if c.HTTP.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("http.fetch_timeout_seconds must be > 0")
	}
	if c.HTTP.NotifyTimeoutSeconds <= 0 {
		return fmt.Errorf("http.notify_timeout_seconds must be > 0")
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return fmt.Errorf("http.max_body_bytes must be > 0")
	}
	switch c.HTTP.Fetcher {
	case "", FetcherColly, FetcherHeadless:
	default:
		return fmt.Errorf("http.fetcher must be %s or %s", FetcherColly, FetcherHeadless)
	}
	if c.Headless.MaxParallel < 0 {
		return fmt.Errorf("headless.max_parallel must be >= 0")
	}
	if c.Extract.MaxContentLength <= 0 {
		return fmt.Errorf("extract.max_content_length must be > 0")
	}
	for i, phrase := range c.Extract.Phrases {
		if _, err := regexp.Compile(phrase); err != nil {
			return fmt.Errorf("extract.phrases[%d] is not a valid pattern: %w", i, err)
		}
	}
	switch c.Notifier.Driver {
	case DriverWebhook:
		u, err := url.Parse(c.Notifier.WebhookURL)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return fmt.Errorf("notifier.webhook_url must be an absolute URL")
		}
	case DriverPubSub:
		if c.Notifier.PubSub.ProjectID == "" || c.Notifier.PubSub.Topic == "" {
			return fmt.Errorf("notifier.pubsub.project_id and notifier.pubsub.topic must be set for the pubsub driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("notifier.driver must be one of %s, %s, %s", DriverWebhook, DriverPubSub, DriverMemory)
	}
	return nil
}

// FetchTimeout bounds one source page GET.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.FetchTimeoutSeconds) * time.Second
}

// NotifyTimeout bounds one outbound delivery.
func (c Config) NotifyTimeout() time.Duration {
	return time.Duration(c.HTTP.NotifyTimeoutSeconds) * time.Second
}

// RequestTimeout bounds one inbound API request.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}
