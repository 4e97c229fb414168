package sentinel

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize folds text into the canonical form the deterministic checks
// run against: NFKC (full-width and compatibility forms collapse to their
// plain equivalents), format characters such as zero-width joiners
// removed, lowercased, and whitespace runs collapsed to single spaces.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
