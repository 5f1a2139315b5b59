// Package normalize provides sanitization helpers for user-facing names.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SafeFilename converts an arbitrary display name into a name that is safe
// to use as a ZIP entry or download filename. Path separators and control
// characters are stripped, and accented characters are decomposed to their
// ASCII base form so archives extract cleanly on any filesystem.
// "AC/DC - Réflexion" -> "AC_DC - Reflexion".
func SafeFilename(s string) string {
	// Decompose accented characters (é -> e + combining mark).
	s = norm.NFKD.String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '/' || r == '\\':
			b.WriteRune('_')
		case unicode.Is(unicode.Mn, r):
			// Drop combining marks left over from decomposition.
		case unicode.IsControl(r):
			// Drop control characters.
		case r > unicode.MaxASCII:
			// Non-ASCII without an ASCII decomposition.
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "untitled"
	}
	return out
}
