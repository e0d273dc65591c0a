package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify derives the URL-safe lookup key for a display name. Case is kept,
// whitespace runs become a single hyphen and accents are folded to ASCII.
func Slugify(name string) string {
	// transformers are stateful, so build one per call
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	dash := true
	for _, r := range folded {
		switch {
		case unicode.IsSpace(r) || r == '-':
			if !dash {
				b.WriteByte('-')
				dash = true
			}
		case isSlugRune(r):
			b.WriteRune(r)
			dash = false
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func isSlugRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '.' || r == '~':
		return true
	}
	return false
}
