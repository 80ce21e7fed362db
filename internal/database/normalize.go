package database

import (
	"regexp"
	"strings"
)

// yearSuffixPattern matches a trailing "(2024)"
var yearSuffixPattern = regexp.MustCompile(`\s*\((\d{4})\)\s*$`)

var titleReplacer = strings.NewReplacer(
	" ", "", ".", "", "-", "", "_", "",
	"'", "", ":", "", "&", "", "*", "",
	",", "", "!", "", "?", "",
	"(", "", ")", "",
	"[", "", "]", "",
)

// NormalizeTitle converts a title to a normalized form for matching
// "Iron Man (2008)" -> "ironman"
// "M*A*S*H" -> "mash"
func NormalizeTitle(title string) string {
	title = yearSuffixPattern.ReplaceAllString(title, "")
	return titleReplacer.Replace(strings.ToLower(title))
}
