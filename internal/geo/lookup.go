package geo

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// lookupKey folds case and diacritics and strips punctuation so that
// "Türkiye", "turkiye" and "TURKIYE." share one key.
func lookupKey(s string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), cases.Fold(), norm.NFC)

	folded, _, err := transform.String(folder, s)
	if err != nil {
		folded = strings.ToLower(s)
	}

	var b strings.Builder

	b.Grow(len(folded))

	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '_' {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
