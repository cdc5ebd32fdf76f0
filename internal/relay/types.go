package relay

import (
	"net/http"
	"time"
)

// TimestampLayout formats NotificationPayload timestamps (ISO-8601, UTC, millisecond precision).
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// ExtractedContent is the title and flattened text derived from one page.
type ExtractedContent struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// NotificationPayload is the document delivered to the outbound notifier.
type NotificationPayload struct {
	SourceURL string `json:"sourceUrl"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// NewNotificationPayload builds the payload for a successful extraction at the given instant.
func NewNotificationPayload(sourceURL string, content ExtractedContent, at time.Time) NotificationPayload {
	return NotificationPayload{
		SourceURL: sourceURL,
		Title:     content.Title,
		Content:   content.Content,
		Timestamp: at.UTC().Format(TimestampLayout),
	}
}

// WebhookStatus reports the outcome of the forwarding step.
type WebhookStatus string

const (
	// WebhookSucceeded means the payload was delivered.
	WebhookSucceeded WebhookStatus = "success"
	// WebhookFailed means extraction succeeded but delivery did not.
	WebhookFailed WebhookStatus = "failed"
)

// Result is the outcome of Service.Process. A failed delivery still yields a
// Result; only extraction failures are returned as errors.
type Result struct {
	ExtractedContent
	WebhookStatus WebhookStatus `json:"webhook_status"`
	WebhookError  string        `json:"webhook_error,omitempty"`
}

// PartialSuccess reports whether the content was extracted but not delivered.
func (r Result) PartialSuccess() bool {
	return r.WebhookStatus == WebhookFailed
}

// FetchRequest describes a single page GET.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse captures the page body and basic response metadata.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}
