// Package server builds the relay application and runs its HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/content-relay/internal/api"
	"github.com/JakeFAU/content-relay/internal/config"
	"github.com/JakeFAU/content-relay/internal/extract"
	collyfetcher "github.com/JakeFAU/content-relay/internal/fetcher/colly"
	headlessfetcher "github.com/JakeFAU/content-relay/internal/fetcher/headless"
	"github.com/JakeFAU/content-relay/internal/logging"
	"github.com/JakeFAU/content-relay/internal/metrics"
	memorynotifier "github.com/JakeFAU/content-relay/internal/notifier/memory"
	pubsubnotifier "github.com/JakeFAU/content-relay/internal/notifier/pubsub"
	"github.com/JakeFAU/content-relay/internal/notifier/webhook"
	"github.com/JakeFAU/content-relay/internal/relay"
)

const shutdownTimeout = 10 * time.Second

// App contains the application's dependencies.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	extractor *extract.Extractor
	notifier  relay.Notifier
	service   *relay.Service
	apiServer *api.Server
	closers   []func() error
}

// Build creates the application's dependencies. It fails with
// relay.ErrDependencyUnavailable when the HTML parser is unusable.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}
	return BuildWithLogger(ctx, cfg, logger)
}

// BuildWithLogger is Build with a caller-supplied logger.
func BuildWithLogger(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := extract.CheckParser(); err != nil {
		logger.Error("capability check failed", zap.Error(err))
		return nil, err
	}
	metrics.Init()

	app := &App{cfg: cfg, logger: logger}
	logger.Info("building application dependencies",
		zap.Int("server_port", cfg.Server.Port),
		zap.String("notifier_driver", cfg.Notifier.Driver),
		zap.String("fetcher", cfg.HTTP.Fetcher),
	)

	fetcher, err := setupFetcher(app)
	if err != nil {
		return nil, err
	}
	headers := http.Header{}
	if cfg.HTTP.Accept != "" {
		headers.Set("Accept", cfg.HTTP.Accept)
	}
	if cfg.HTTP.AcceptLanguage != "" {
		headers.Set("Accept-Language", cfg.HTTP.AcceptLanguage)
	}
	extractor, err := extract.New(fetcher, extract.Config{
		MaxContentLength: cfg.Extract.MaxContentLength,
		Phrases:          cfg.Extract.Phrases,
		Headers:          headers,
	}, logger.Named("extract"))
	if err != nil {
		return nil, fmt.Errorf("extractor init failed: %w", err)
	}
	app.extractor = extractor
	logger.Info("extractor ready",
		zap.Int("phrases", extractor.PhraseCount()),
		zap.Int("max_content_length", cfg.Extract.MaxContentLength),
	)

	notifier, err := setupNotifier(ctx, app)
	if err != nil {
		return nil, err
	}
	app.notifier = notifier
	app.service = relay.NewService(extractor, notifier, logger.Named("relay"))
	app.apiServer = api.NewServer(app.service, cfg, logger.Named("api"))
	return app, nil
}

func setupFetcher(app *App) (relay.Fetcher, error) {
	cfg := app.cfg
	switch cfg.HTTP.Fetcher {
	case config.FetcherHeadless:
		fetcher, err := headlessfetcher.New(headlessfetcher.Config{
			MaxParallel:       cfg.Headless.MaxParallel,
			UserAgent:         cfg.HTTP.UserAgent,
			NavigationTimeout: cfg.FetchTimeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("headless fetcher init failed: %w", err)
		}
		app.closers = append(app.closers, fetcher.Close)
		app.logger.Info("using headless fetcher", zap.Int("max_parallel", cfg.Headless.MaxParallel))
		return fetcher, nil
	default:
		app.logger.Info("using colly fetcher", zap.Duration("timeout", cfg.FetchTimeout()))
		return collyfetcher.New(collyfetcher.Config{
			UserAgent:   cfg.HTTP.UserAgent,
			Timeout:     cfg.FetchTimeout(),
			MaxBodySize: cfg.HTTP.MaxBodyBytes,
		}), nil
	}
}

func setupNotifier(ctx context.Context, app *App) (relay.Notifier, error) {
	cfg := app.cfg.Notifier
	switch cfg.Driver {
	case config.DriverWebhook:
		if cfg.WebhookDefaulted {
			app.logger.Warn("webhook url not configured, using fallback destination",
				zap.String("webhook_url", cfg.WebhookURL),
				zap.String("env", "RELAY_NOTIFIER_WEBHOOK_URL or "+config.LegacyWebhookEnv),
			)
		} else {
			app.logger.Info("using configured webhook", zap.String("webhook_url", cfg.WebhookURL))
		}
		return webhook.New(cfg.WebhookURL,
			webhook.WithTimeout(app.cfg.NotifyTimeout()),
			webhook.WithLogger(app.logger.Named("webhook")),
		), nil
	case config.DriverPubSub:
		notifier, err := pubsubnotifier.New(ctx, cfg.PubSub.ProjectID, cfg.PubSub.Topic)
		if err != nil {
			return nil, fmt.Errorf("pubsub notifier init failed: %w", err)
		}
		app.closers = append(app.closers, notifier.Close)
		app.logger.Info("using pubsub notifier",
			zap.String("project_id", cfg.PubSub.ProjectID),
			zap.String("topic", cfg.PubSub.Topic),
		)
		return notifier, nil
	case config.DriverMemory:
		app.logger.Info("using in-memory notifier")
		return memorynotifier.New(), nil
	default:
		return nil, fmt.Errorf("unknown notifier driver %q", cfg.Driver)
	}
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Service returns the relay service shared by the API and the CLI.
func (a *App) Service() api.Processor {
	return a.service
}

// Extractor returns the configured extractor.
func (a *App) Extractor() relay.Extractor {
	return a.extractor
}

// Notifier returns the configured notifier.
func (a *App) Notifier() relay.Notifier {
	return a.notifier
}

// Handler returns the HTTP handler tree.
func (a *App) Handler() http.Handler {
	return a.apiServer.Handler()
}

// Run serves HTTP until ctx is canceled or SIGINT/SIGTERM arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server started", zap.Int("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", zap.Error(err))
			serveErr <- err
			stop()
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}
	a.Close()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	default:
		return nil
	}
}

// Close releases notifier resources and flushes the logger.
func (a *App) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
	_ = a.logger.Sync()
}
