package naming

import (
	"regexp"
	"strconv"
	"strings"
)

type multipartPattern struct {
	re    *regexp.Regexp
	group int // capture group holding the part number or letter
}

// multipartPatterns are applied in order.
var multipartPatterns = []multipartPattern{
	{regexp.MustCompile(`[ _\.-]+cd[ _\.-]*([0-9a-d]+)`), 1},
	{regexp.MustCompile(`[ _\.-]+dvd[ _\.-]*([0-9a-d]+)`), 1},
	{regexp.MustCompile(`[ _\.-]+part[ _\.-]*([0-9a-d]+)`), 1},
	{regexp.MustCompile(`[ _\.-]+dis[ck][ _\.-]*([0-9a-d]+)`), 1},
	{regexp.MustCompile(`cd[ _\.-]*([0-9a-d]+)$`), 1},
	{regexp.MustCompile(`dvd[ _\.-]*([0-9a-d]+)$`), 1},
	{regexp.MustCompile(`part[ _\.-]*([0-9a-d]+)$`), 1},
	{regexp.MustCompile(`dis[ck][ _\.-]*([0-9a-d]+)$`), 1},
	{regexp.MustCompile(`()[ _\.-]+([0-9]*[abcd]+)(\.....?)$`), 2},
	{regexp.MustCompile(`([a-z])([0-9]+)(\.....?)$`), 2},
	{regexp.MustCompile(`()([ab])(\.....?)$`), 2},
}

var cpTagRegex = regexp.MustCompile(`\.cp\((?P<id>tt[0-9]+),?\s?(?P<random>[A-Za-z0-9]+)?\)`)

// RemoveMultipart strips cd/dvd/part/disc markers from a lowercased name.
func RemoveMultipart(name string) string {
	for _, p := range multipartPatterns {
		name = p.re.ReplaceAllString(name, "")
	}
	return name
}

// PartNumber returns the 1-based part number encoded in a lowercased name.
// Letters count from a=1. Names without a marker are part 1.
func PartNumber(name string) int {
	for _, p := range multipartPatterns {
		m := p.re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if m[p.group] == "" {
			return 1
		}
		return partValue(m[p.group])
	}
	return 1
}

func partValue(s string) int {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	last := s[len(s)-1]
	if last >= 'a' && last <= 'd' {
		return int(last-'a') + 1
	}
	return 1
}

// RemoveCPTag removes an embedded ".cp(tt1234567)" identity tag.
func RemoveCPTag(name string) string {
	return cpTagRegex.ReplaceAllString(name, "")
}

// CPTagID returns the IMDb id of an embedded ".cp(tt...)" tag.
func CPTagID(s string) (string, bool) {
	m := cpTagRegex.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return "", false
	}
	id := m[cpTagRegex.SubexpIndex("id")]
	return id, id != ""
}
