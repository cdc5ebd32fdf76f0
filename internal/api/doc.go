// Package api hosts the HTTP server, middleware, and JSON handlers. Routes:
//   - POST /api/extract runs one extraction and notification.
//   - GET /healthz and /readyz for liveness and readiness checks.
//   - GET /metrics for Prometheus scraping.
package api
