package extract

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/content-relay/internal/relay"
)

const sampleDocument = `<html><head><title>sample</title></head>` +
	`<body><nav>skip</nav><main>ready<script>x()</script></main></body></html>`

// CheckParser verifies once, at startup, that HTML parsing and selector
// matching work. It returns a *relay.DependencyUnavailableError otherwise.
func CheckParser() error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(sampleDocument)))
	if err != nil {
		return &relay.DependencyUnavailableError{Dependency: "html parser", Cause: err}
	}
	if got := doc.Find("title").First().Text(); got != "sample" {
		return &relay.DependencyUnavailableError{
			Dependency: "html parser",
			Cause:      fmt.Errorf("sample title = %q", got),
		}
	}
	root := selectRoot(doc)
	root.Find(noiseSelector).Remove()
	if root.Text() != "ready" {
		return &relay.DependencyUnavailableError{
			Dependency: "css selector engine",
			Cause:      errors.New("noise removal did not isolate sample text"),
		}
	}
	return nil
}
