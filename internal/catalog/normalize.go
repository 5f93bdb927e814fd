package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalize cleans scraped text before fandom decomposition: NFKC
// compatibility folding, fullwidth ASCII narrowed, control characters
// turned into spaces, and whitespace runs collapsed.
func Normalize(s string) string {
	t := transform.Chain(
		norm.NFKC,
		width.Fold,
		runes.Map(func(r rune) rune {
			if unicode.IsControl(r) {
				return ' '
			}
			return r
		}),
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(out), " ")
}
