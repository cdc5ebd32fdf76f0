package extract

import "testing"

func TestNormalizeWhitespace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only spaces", " \n\t  ", ""},
		{"inline run", "a   b", "a b"},
		{"single newline kept", "a\nb", "a\nb"},
		{"blank lines collapse", "a\n \n\n b", "a b"},
		{"no-break spaces", "a\u00a0\u00a0b", "a b"},
		{"trims", "  a \n", "a"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := normalizeWhitespace(tt.in); got != tt.want {
				t.Fatalf("normalizeWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected untouched text, got %q", got)
	}
	if got := truncate("abcdef", 3); got != "abc"+TruncationMarker {
		t.Fatalf("expected truncated text, got %q", got)
	}
}

func TestPhraseFilterNil(t *testing.T) {
	t.Parallel()

	var f *PhraseFilter
	if got := f.Apply("text"); got != "text" {
		t.Fatalf("nil filter changed text: %q", got)
	}
	if f.Len() != 0 {
		t.Fatal("nil filter should be empty")
	}
}
