package incident

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

const excerptRunes = 80

// Redact derives the stored form of an offending input. The digest is
// always set so repeat offenders can be correlated; the excerpt is only
// kept for non-sensitive material and is capped at 80 runes.
func Redact(text string, sensitive bool) (digest, excerpt string) {
	sum := sha256.Sum256([]byte(text))
	digest = "sha256:" + hex.EncodeToString(sum[:])
	if sensitive {
		return digest, ""
	}
	return digest, truncateRunes(strings.TrimSpace(text), excerptRunes)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}
