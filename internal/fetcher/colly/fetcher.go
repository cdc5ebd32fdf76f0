// Package collyfetcher implements relay.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/JakeFAU/content-relay/internal/metrics"
	"github.com/JakeFAU/content-relay/internal/relay"
)

// DefaultTimeout applies when Config.Timeout is zero.
const DefaultTimeout = 15 * time.Second

// metricsLabel identifies this fetcher in relay_fetches_total.
const metricsLabel = "colly"

var _ relay.Fetcher = (*Fetcher)(nil)

// Config controls collector behavior.
type Config struct {
	UserAgent   string
	Timeout     time.Duration
	MaxBodySize int
}

// Fetcher implements relay.Fetcher using the Colly collector.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
}

type collectorHooks interface {
	OnRequest(colly.RequestCallback)
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// outcome is written by collector callbacks and read only after Visit returns.
type outcome struct {
	response      relay.FetchResponse
	received      bool
	err           error
	errStatusCode int
}

// New builds a Fetcher. Timeout and transport live on the HTTP client that
// every cloned collector shares, so they are set here once and never per call.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	c := colly.NewCollector(
		colly.Async(false),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
		colly.ParseHTTPErrorResponse(),
	)
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	if cfg.MaxBodySize > 0 {
		c.MaxBodySize = cfg.MaxBodySize
	}
	c.SetRequestTimeout(cfg.Timeout)
	c.WithTransport(newHTTPTransport())

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
	}
}

// Fetch executes a single HTTP GET using Colly. Non-2xx responses are returned
// alongside a *relay.FetchError carrying the status code.
func (f *Fetcher) Fetch(ctx context.Context, request relay.FetchRequest) (relay.FetchResponse, error) {
	start := time.Now()
	out := &outcome{}
	collector := f.buildCollector(ctx)
	f.configureCollectorHooks(collector, request, start, out)

	if err := f.runCollector(ctx, collector, request.URL, out); err != nil {
		var fetchErr *relay.FetchError
		status := 0
		if errors.As(err, &fetchErr) {
			status = fetchErr.StatusCode
		}
		metrics.ObserveFetch(metricsLabel, status, 0, time.Since(start))
		return relay.FetchResponse{}, err
	}

	result := out.response
	metrics.ObserveFetch(metricsLabel, result.StatusCode, len(result.Body), result.Duration)
	if err := relay.CheckStatus(request.URL, result.StatusCode); err != nil {
		return result, err
	}
	return result, nil
}

// buildCollector clones the base collector. Only fields owned by the clone are
// touched; the shared HTTP backend is read-only after New.
func (f *Fetcher) buildCollector(ctx context.Context) *colly.Collector {
	collector := f.baseCollector.Clone()
	collector.AllowURLRevisit = true
	collector.IgnoreRobotsTxt = true
	collector.ParseHTTPErrorResponse = true
	collector.Context = ctx
	return collector
}

func (f *Fetcher) configureCollectorHooks(
	hooks collectorHooks,
	request relay.FetchRequest,
	start time.Time,
	out *outcome,
) {
	hooks.OnRequest(func(r *colly.Request) {
		f.copyHeaders(request, r)
	})

	hooks.OnResponse(func(r *colly.Response) {
		out.received = true
		out.response = relay.FetchResponse{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Headers:    r.Headers.Clone(),
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})

	hooks.OnError(func(r *colly.Response, err error) {
		out.err = err
		if r != nil && r.StatusCode > 0 {
			out.errStatusCode = r.StatusCode
		}
	})
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string, out *outcome) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return &relay.FetchError{URL: url, Cause: fmt.Errorf("colly fetch canceled: %w", ctx.Err())}
	case err := <-done:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &relay.FetchError{URL: url, Cause: fmt.Errorf("colly fetch canceled: %w", ctxErr)}
		}
		if out.errStatusCode > 0 {
			return &relay.FetchError{URL: url, StatusCode: out.errStatusCode, Cause: out.err}
		}
		if err == nil {
			err = out.err
		}
		if err != nil {
			return &relay.FetchError{URL: url, Cause: fmt.Errorf("colly visit failed: %w", err)}
		}
		if !out.received {
			return &relay.FetchError{URL: url, Cause: errors.New("colly returned no response")}
		}
		return nil
	}
}

func (f *Fetcher) copyHeaders(request relay.FetchRequest, r *colly.Request) {
	if request.Headers == nil {
		return
	}
	for key, values := range request.Headers {
		r.Headers.Del(key)
		for _, v := range values {
			r.Headers.Add(key, v)
		}
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
