package relay

import "context"

// Fetcher retrieves a page over HTTP. Non-2xx responses and transport failures
// are reported as *FetchError.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Extractor turns a URL into ExtractedContent. Errors are always one of
// *InvalidURLError, *FetchError or *ParseError.
type Extractor interface {
	Extract(ctx context.Context, rawURL string) (ExtractedContent, error)
}

// Notifier delivers a payload exactly once. Errors are *NotificationError.
type Notifier interface {
	Notify(ctx context.Context, payload NotificationPayload) error
}
