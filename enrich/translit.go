package enrich

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Transliterate strips diacritics from a display name ("Müller" becomes
// "Muller"). Decompose, drop combining marks, recompose.
func Transliterate(s string) string {
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(chain, s)
	if err != nil {
		return s
	}
	return out
}
