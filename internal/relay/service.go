package relay

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/content-relay/internal/metrics"
)

// webhookErrorPrefix prefixes the delivery error reported in a partial success.
const webhookErrorPrefix = "Webhook notification failed: "

// Service runs extraction and, when it succeeds, forwards the result.
type Service struct {
	extractor Extractor
	notifier  Notifier
	logger    *zap.Logger
	now       func() time.Time
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithClock overrides the time source used for payload timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService wires an extractor and notifier.
func NewService(extractor Extractor, notifier Notifier, logger *zap.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		extractor: extractor,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process extracts rawURL and forwards the content. Extraction failures abort
// the call and are returned unchanged and unlogged; delivery failures are
// logged and folded into the Result as WebhookFailed.
func (s *Service) Process(ctx context.Context, rawURL string) (Result, error) {
	if strings.TrimSpace(rawURL) == "" {
		return Result{}, &InvalidInputError{Field: "url", Reason: "is required and must be a string"}
	}

	content, err := s.extractor.Extract(ctx, rawURL)
	metrics.ObserveExtraction(ErrorKind(err))
	if err != nil {
		// Logged by the caller, which owns the response.
		return Result{}, err
	}

	payload := NewNotificationPayload(rawURL, content, s.now())
	if err := s.notifier.Notify(ctx, payload); err != nil {
		metrics.ObserveNotification(string(WebhookFailed))
		s.logger.Warn("notification failed, content was extracted",
			zap.String("url", rawURL),
			zap.Bool("network", isNetworkFailure(err)),
			zap.Error(err),
		)
		return Result{
			ExtractedContent: content,
			WebhookStatus:    WebhookFailed,
			WebhookError:     webhookErrorPrefix + err.Error(),
		}, nil
	}

	metrics.ObserveNotification(string(WebhookSucceeded))
	s.logger.Info("content forwarded", zap.String("url", rawURL), zap.Int("content_length", len(content.Content)))
	return Result{ExtractedContent: content, WebhookStatus: WebhookSucceeded}, nil
}

func isNetworkFailure(err error) bool {
	var notifyErr *NotificationError
	return errors.As(err, &notifyErr) && notifyErr.Network()
}
