package card

import "testing"

func TestSafeName(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain", "Hello World", "Hello World"},
		{"punctuation stripped", "Café/Bar: #1", "CafBar 1"},
		{"keeps hyphen underscore", "snake_case-kebab", "snake_case-kebab"},
		{"surrounding whitespace trimmed", "  padded  ", "padded"},
		{"only punctuation", "!!!???", ""},
		{"empty", "", ""},
		{"unicode letters dropped", "naïve détour", "nave dtour"},
		{"digits kept", "Card 42", "Card 42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeName(tt.title); got != tt.want {
				t.Errorf("SafeName(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestSafeNameCollisionsAllowed(t *testing.T) {
	// Distinct titles may sanitize identically; the core does not dedupe.
	if SafeName("Café") != SafeName("Caf!é") {
		t.Error("expected identical sanitized names")
	}
}
