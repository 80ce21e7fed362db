package naming

import (
	"regexp"
	"strconv"
)

var (
	bracketYearRegex = regexp.MustCompile(`[(\[](19[0-9]{2}|20[0-9]{2})[\])]`)
	bareYearRegex    = regexp.MustCompile(`19[0-9]{2}|20[0-9]{2}`)
)

// FindYear returns the last bracketed year in text, or the last bare year
// when none is bracketed.
func FindYear(text string) string {
	if m := bracketYearRegex.FindAllStringSubmatch(text, -1); len(m) > 0 {
		return m[len(m)-1][1]
	}
	if m := bareYearRegex.FindAllString(text, -1); len(m) > 0 {
		return m[len(m)-1]
	}
	return ""
}

// FindYearInt is FindYear as a number, 0 when absent.
func FindYearInt(text string) int {
	y, _ := strconv.Atoi(FindYear(text))
	return y
}
