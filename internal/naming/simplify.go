package naming

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonWordRegex = regexp.MustCompile(`[\W_]+`)

	letterReplacer = strings.NewReplacer(
		"æ", "ae", "Æ", "AE",
		"œ", "oe", "Œ", "OE",
		"ø", "o", "Ø", "O",
		"ß", "ss",
		"ð", "d", "Ð", "D",
		"þ", "th", "Þ", "TH",
		"ł", "l", "Ł", "L",
	)
)

// FoldDiacritics strips combining marks and spells out letters NFKD leaves
// alone, so "Amélie" and "Amelie" compare equal.
func FoldDiacritics(s string) string {
	s = letterReplacer.Replace(s)
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

// Simplify lowercases s, folds diacritics and collapses every run of
// punctuation, whitespace or underscores to a single space.
func Simplify(s string) string {
	s = strings.ToLower(FoldDiacritics(s))
	return strings.TrimSpace(nonWordRegex.ReplaceAllString(s, " "))
}

// dedupeWords drops repeated words keeping the first occurrence.
func dedupeWords(s string) string {
	seen := make(map[string]struct{})
	var out []string
	for _, w := range strings.Fields(s) {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}
