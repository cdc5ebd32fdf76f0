package relay

import (
	"errors"
	"fmt"
)

// InvalidInputError reports a missing or malformed request field.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// InvalidURLError reports a URL that is not a well-formed absolute http(s) URL.
// No network call is made for such URLs.
type InvalidURLError struct {
	URL   string
	Cause error
}

func (e *InvalidURLError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid URL format %q: %v", e.URL, e.Cause)
	}
	return fmt.Sprintf("invalid URL format %q", e.URL)
}

func (e *InvalidURLError) Unwrap() error { return e.Cause }

// FetchError reports a failure retrieving the source page. StatusCode is zero
// when the request never produced an HTTP response.
type FetchError struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	if e.Network() {
		return fmt.Sprintf("network error while fetching %s: %v", e.URL, e.Cause)
	}
	return fmt.Sprintf("failed to fetch %s: server responded with status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// Network reports whether the failure happened below the HTTP status layer.
func (e *FetchError) Network() bool {
	return e.StatusCode == 0
}

// CheckStatus returns a *FetchError for any status outside 200-299.
func CheckStatus(url string, status int) error {
	if status >= 200 && status < 300 {
		return nil
	}
	return &FetchError{URL: url, StatusCode: status}
}

// ParseError reports a failure building or traversing the document tree.
type ParseError struct {
	URL   string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to process %s: %v", e.URL, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// NotificationFailure distinguishes an unreachable destination from one that
// rejected the payload.
type NotificationFailure string

const (
	// NotificationNetwork means the payload never reached the destination.
	NotificationNetwork NotificationFailure = "network"
	// NotificationStatus means the destination answered with a non-2xx status.
	NotificationStatus NotificationFailure = "status"
)

// NotificationError reports a failed delivery.
type NotificationError struct {
	Kind        NotificationFailure
	Destination string
	StatusCode  int
	Body        string
	Cause       error
}

func (e *NotificationError) Error() string {
	if e.Kind == NotificationStatus {
		return fmt.Sprintf("request to %s failed with status %d. Response: %s", e.Destination, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("network error sending to %s: %v", e.Destination, e.Cause)
}

func (e *NotificationError) Unwrap() error { return e.Cause }

// Network reports whether the destination was unreachable.
func (e *NotificationError) Network() bool {
	return e.Kind == NotificationNetwork
}

// ErrDependencyUnavailable is matched by DependencyUnavailableError via errors.Is.
var ErrDependencyUnavailable = errors.New("dependency unavailable")

// DependencyUnavailableError is returned by startup capability checks.
type DependencyUnavailableError struct {
	Dependency string
	Cause      error
}

func (e *DependencyUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Dependency, e.Cause)
}

func (e *DependencyUnavailableError) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, ErrDependencyUnavailable) match.
func (e *DependencyUnavailableError) Is(target error) bool {
	return target == ErrDependencyUnavailable
}

// ErrorKind returns a short label for an extraction error, used for metrics
// and logs.
func ErrorKind(err error) string {
	var (
		inputErr *InvalidInputError
		urlErr   *InvalidURLError
		fetchErr *FetchError
		parseErr *ParseError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &inputErr):
		return "invalid_input"
	case errors.As(err, &urlErr):
		return "invalid_url"
	case errors.As(err, &fetchErr):
		if fetchErr.Network() {
			return "fetch_network"
		}
		return "fetch_status"
	case errors.As(err, &parseErr):
		return "parse"
	default:
		return "unknown"
	}
}
