package topic

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	tokenPattern = regexp.MustCompile(`[a-z0-9]+`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// Fold lower-cases s, strips diacritics and trims surrounding whitespace.
// "División" and "division" fold to the same string.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		out = strings.ToLower(s)
	}
	return strings.TrimSpace(out)
}

// Keywords returns the distinct alphanumeric tokens of the folded text in
// order of first appearance.
func Keywords(s string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tok := range tokenPattern.FindAllString(Fold(s), -1) {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// collapse folds s and squeezes internal whitespace runs to one space.
func collapse(s string) string {
	return spacePattern.ReplaceAllString(Fold(s), " ")
}
