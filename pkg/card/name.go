package card

import "strings"

// SafeName sanitizes a title into an output file name: ASCII letters,
// digits, spaces, hyphens, and underscores survive; everything else is
// dropped, and surrounding whitespace is trimmed. Distinct titles can
// sanitize to the same name; deduplication is the caller's concern.
func SafeName(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == ' ', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
