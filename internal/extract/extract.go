// Package extract implements relay.Extractor.
// It isolates the readable text of a page by:
//  1. Finding the main-content root (<main>, <article>, [role="main"], or <body>)
//  2. Removing noise elements (scripts, page chrome, form controls, hidden nodes)
//  3. Flattening, filtering and normalizing the remaining text
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/content-relay/internal/relay"
)

const (
	// DefaultMaxContentLength bounds Content, in characters.
	DefaultMaxContentLength = 10000
	// NoTitle replaces a missing or blank <title>.
	NoTitle = "No Title Found"
	// NoContent replaces text that is empty after cleaning.
	NoContent = "No discernible text content extracted."
	// TruncationMarker is appended to truncated content.
	TruncationMarker = "... (truncated)"
)

// rootSelectors are tried in order; <body> is the fallback.
var rootSelectors = []string{"main", "article", `[role="main"]`}

// noiseSelector matches descendants of the root that never contribute text.
const noiseSelector = "script, style, noscript, iframe, " +
	"header, footer, nav, aside, " +
	"form, button, input, select, textarea, " +
	`[aria-hidden="true"], [hidden]`

var _ relay.Extractor = (*Extractor)(nil)

// Config tunes an Extractor.
type Config struct {
	// MaxContentLength defaults to DefaultMaxContentLength when zero.
	MaxContentLength int
	// Phrases are regular expressions removed, case-insensitively and in order,
	// from the flattened text.
	Phrases []string
	// Headers are sent with every page request (Accept, Accept-Language).
	Headers http.Header
}

// Extractor fetches a page and derives its title and main text.
type Extractor struct {
	fetcher   relay.Fetcher
	phrases   *PhraseFilter
	maxLength int
	headers   http.Header
	logger    *zap.Logger
}

// New creates an Extractor. It fails when a phrase pattern does not compile.
func New(fetcher relay.Fetcher, cfg Config, logger *zap.Logger) (*Extractor, error) {
	if fetcher == nil {
		return nil, errors.New("extract: fetcher is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	phrases, err := NewPhraseFilter(cfg.Phrases)
	if err != nil {
		return nil, err
	}
	maxLength := cfg.MaxContentLength
	if maxLength <= 0 {
		maxLength = DefaultMaxContentLength
	}
	return &Extractor{
		fetcher:   fetcher,
		phrases:   phrases,
		maxLength: maxLength,
		headers:   cfg.Headers.Clone(),
		logger:    logger,
	}, nil
}

// PhraseCount reports how many removal patterns are active.
func (e *Extractor) PhraseCount() int {
	return e.phrases.Len()
}

// Extract validates rawURL, fetches it and extracts its content.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (relay.ExtractedContent, error) {
	if _, err := ValidateURL(rawURL); err != nil {
		return relay.ExtractedContent{}, err
	}

	e.logger.Debug("fetching content", zap.String("url", rawURL))
	resp, err := e.fetcher.Fetch(ctx, relay.FetchRequest{URL: rawURL, Headers: e.headers.Clone()})
	if err != nil {
		var fetchErr *relay.FetchError
		if errors.As(err, &fetchErr) {
			return relay.ExtractedContent{}, fetchErr
		}
		return relay.ExtractedContent{}, &relay.FetchError{URL: rawURL, Cause: err}
	}

	content, err := e.extractDocument(rawURL, bytes.NewReader(resp.Body))
	if err != nil {
		return relay.ExtractedContent{}, err
	}
	e.logger.Debug("content extracted",
		zap.String("url", rawURL),
		zap.Int("body_bytes", len(resp.Body)),
		zap.Int("content_chars", len([]rune(content.Content))),
	)
	return content, nil
}

// ExtractHTML derives content from an HTML document without any network I/O.
// The result depends only on body and the Extractor's configuration.
func (e *Extractor) ExtractHTML(body []byte) (relay.ExtractedContent, error) {
	return e.extractDocument("", bytes.NewReader(body))
}

func (e *Extractor) extractDocument(sourceURL string, body io.Reader) (content relay.ExtractedContent, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			content = relay.ExtractedContent{}
			err = &relay.ParseError{URL: sourceURL, Cause: fmt.Errorf("unexpected failure: %v", rec)}
		}
	}()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return relay.ExtractedContent{}, &relay.ParseError{URL: sourceURL, Cause: fmt.Errorf("parse HTML: %w", err)}
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = NoTitle
	}

	root := selectRoot(doc)
	root.Find(noiseSelector).Remove()

	text := e.phrases.Apply(root.Text())
	text = normalizeWhitespace(text)
	if text == "" {
		text = NoContent
	}
	text = truncate(text, e.maxLength)

	return relay.ExtractedContent{Title: title, Content: text}, nil
}

func selectRoot(doc *goquery.Document) *goquery.Selection {
	for _, sel := range rootSelectors {
		if found := doc.Find(sel).First(); found.Length() > 0 {
			return found
		}
	}
	return doc.Find("body").First()
}

// ValidateURL accepts only absolute http and https URLs with a host.
func ValidateURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, &relay.InvalidURLError{URL: rawURL, Cause: err}
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, &relay.InvalidURLError{URL: rawURL, Cause: errors.New("URL must be absolute")}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &relay.InvalidURLError{URL: rawURL, Cause: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
	return u, nil
}
