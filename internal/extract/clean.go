package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// space matches the characters treated as whitespace during normalization,
// including no-break and other Unicode separators.
const space = `[\s\v\p{Z}\x{FEFF}]`

var (
	blankLines = regexp.MustCompile(`\n` + space + `*\n+`)
	spaceRuns  = regexp.MustCompile(space + `{2,}`)
)

// PhraseFilter removes boilerplate phrases from text.
type PhraseFilter struct {
	patterns []*regexp.Regexp
}

// NewPhraseFilter compiles patterns as case-insensitive regular expressions.
func NewPhraseFilter(patterns []string) (*PhraseFilter, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("compile phrase %d %q: %w", i, p, err)
		}
		compiled = append(compiled, re)
	}
	return &PhraseFilter{patterns: compiled}, nil
}

// Apply removes every match of every pattern, in order.
func (f *PhraseFilter) Apply(text string) string {
	if f == nil {
		return text
	}
	for _, re := range f.patterns {
		text = re.ReplaceAllLiteralString(text, "")
	}
	return text
}

// Len reports the number of patterns.
func (f *PhraseFilter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.patterns)
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func normalizeWhitespace(text string) string {
	text = strings.TrimFunc(blankLines.ReplaceAllString(text, "\n"), isSpace)
	return strings.TrimFunc(spaceRuns.ReplaceAllString(text, " "), isSpace)
}

// truncate cuts text to max characters and appends TruncationMarker.
func truncate(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	return string([]rune(text)[:max]) + TruncationMarker
}
