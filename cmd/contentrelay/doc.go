// Package main hosts the content relay entrypoint.
//
// Architecture overview:
//   - HTTP API: internal/api.Server exposes POST /api/extract plus health and metrics endpoints. The handler
//     validates the JSON body and hands the URL to relay.Service.
//   - Extraction: internal/extract validates the URL, fetches it through the Colly-based fetcher, and reduces the
//     page to a title and cleaned plain text with goquery.
//   - Notification: relay.Service builds a timestamped payload and delivers it once through the configured
//     notifier (webhook POST, Pub/Sub topic, or in-memory). A failed delivery still returns the extracted content
//     with webhook_status "failed".
//   - Configuration & plumbing: an optional .env file is loaded first, then Viper populates config from env/files;
//     zap provides structured logging; Prometheus metrics are exported on /metrics.
//
// Quick checklist:
//   - Configure env vars: RELAY_SERVER_PORT, RELAY_NOTIFIER_DRIVER, RELAY_NOTIFIER_WEBHOOK_URL (or the legacy
//     MAKE_WEBHOOK_URL), RELAY_HTTP_FETCH_TIMEOUT_SECONDS, RELAY_EXTRACT_MAX_CONTENT_LENGTH.
//   - Run the API: go run ./cmd/contentrelay serve --config config.yaml
//   - One-off extraction: go run ./cmd/contentrelay extract https://example.com/article --notify
package main
