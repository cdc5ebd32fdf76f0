// Package webhook provides a relay.Notifier that POSTs JSON to an HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/content-relay/internal/relay"
)

// DefaultTimeout is the default timeout for webhook requests.
const DefaultTimeout = 10 * time.Second

// UnreadableBody stands in for an error response body that could not be read.
const UnreadableBody = "Could not read error body."

// maxErrorBody caps how much of a rejection body is kept.
const maxErrorBody = 64 * 1024

var _ relay.Notifier = (*Notifier)(nil)

// Notifier delivers payloads with a single POST and no retry.
type Notifier struct {
	destination string
	client      *http.Client
	timeout     time.Duration
	logger      *zap.Logger
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithTimeout sets the timeout for webhook requests.
// Defaults to DefaultTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(n *Notifier) {
		n.timeout = d
	}
}

// WithHTTPClient replaces the HTTP client. Its Timeout takes precedence over WithTimeout.
func WithHTTPClient(client *http.Client) Option {
	return func(n *Notifier) {
		n.client = client
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(n *Notifier) {
		n.logger = logger
	}
}

// New creates a Notifier for destination.
func New(destination string, opts ...Option) *Notifier {
	n := &Notifier{
		destination: destination,
		timeout:     DefaultTimeout,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.client == nil {
		n.client = &http.Client{Timeout: n.timeout}
	}
	return n
}

// Destination returns the configured endpoint.
func (n *Notifier) Destination() string {
	return n.destination
}

// Notify POSTs payload as JSON. Non-2xx answers yield a NotificationStatus
// error carrying the response body; transport failures yield NotificationNetwork.
func (n *Notifier) Notify(ctx context.Context, payload relay.NotificationPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &relay.NotificationError{
			Kind:        relay.NotificationNetwork,
			Destination: n.destination,
			Cause:       fmt.Errorf("marshal payload: %w", err),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.destination, bytes.NewReader(body))
	if err != nil {
		return &relay.NotificationError{
			Kind:        relay.NotificationNetwork,
			Destination: n.destination,
			Cause:       fmt.Errorf("build request: %w", err),
		}
	}
	req.Header.Set("Content-Type", "application/json")

	n.logger.Debug("sending webhook", zap.String("destination", n.destination), zap.String("source_url", payload.SourceURL))
	resp, err := n.client.Do(req)
	if err != nil {
		return &relay.NotificationError{
			Kind:        relay.NotificationNetwork,
			Destination: n.destination,
			Cause:       err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		errBody := readErrorBody(resp.Body, n.logger)
		n.logger.Error("webhook rejected payload",
			zap.String("destination", n.destination),
			zap.Int("status", resp.StatusCode),
			zap.String("body", errBody),
		)
		return &relay.NotificationError{
			Kind:        relay.NotificationStatus,
			Destination: n.destination,
			StatusCode:  resp.StatusCode,
			Body:        errBody,
		}
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	n.logger.Info("payload delivered", zap.String("destination", n.destination), zap.Int("status", resp.StatusCode))
	return nil
}

func readErrorBody(r io.Reader, logger *zap.Logger) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		logger.Warn("failed to read webhook error body", zap.Error(err))
		return UnreadableBody
	}
	return string(data)
}
