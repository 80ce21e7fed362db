package scanner

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/Nomadcxx/releasescan/internal/naming"
	"github.com/Nomadcxx/releasescan/internal/subtitles"
)

// grouper collects files into releases keyed by primary identifier.
type grouper struct {
	root      string
	releases  map[string]*Release
	leftovers map[string]struct{}
}

func newGrouper(root string) *grouper {
	return &grouper{
		root:      root,
		releases:  make(map[string]*Release),
		leftovers: make(map[string]struct{}),
	}
}

// seed opens or extends the release for identifier. The first file decides
// whether the release is a disc structure.
func (g *grouper) seed(identifiers []string, dvd bool, path string) {
	key := identifiers[len(identifiers)-1]
	r, ok := g.releases[key]
	if !ok {
		r = &Release{Identifier: key, Identifiers: identifiers, DVD: dvd}
		g.releases[key] = r
	}
	r.unsorted = append(r.unsorted, path)
}

func (g *grouper) leave(path string) {
	g.leftovers[path] = struct{}{}
}

func (g *grouper) claim(r *Release, path string) {
	r.unsorted = append(r.unsorted, path)
	delete(g.leftovers, path)
}

func (g *grouper) identifiers() []string {
	keys := make([]string, 0, len(g.releases))
	for k := range g.releases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// pending lists leftovers in descending order so longer names sharing a
// prefix are matched before shorter ones.
func (g *grouper) pending() []string {
	out := make([]string, 0, len(g.leftovers))
	for p := range g.leftovers {
		out = append(out, p)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

// remaining returns unclaimed leftovers in ascending order.
func (g *grouper) remaining() []string {
	out := g.pending()
	sort.Strings(out)
	return out
}

// sameBasename attaches leftovers that share a release file's name and
// only differ in extension, optionally with language or flag tags in
// between. Releases are visited in descending order, and a leftover whose
// own stem is another release file's stem stays with that release.
func (g *grouper) sameBasename() {
	owners := make(map[string]*Release)
	for _, r := range g.releases {
		for _, seed := range r.unsorted {
			owners[strings.TrimSuffix(seed, filepath.Ext(seed))] = r
		}
	}

	keys := g.identifiers()
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	for _, key := range keys {
		r := g.releases[key]
		seeds := append([]string(nil), r.unsorted...)
		for _, seed := range seeds {
			stem := strings.TrimSuffix(seed, filepath.Ext(seed))
			for _, left := range g.pending() {
				if !sharesStem(left, stem) {
					continue
				}
				if owner, ok := owners[strings.TrimSuffix(left, filepath.Ext(left))]; ok && owner != r {
					continue
				}
				g.claim(r, left)
			}
		}
	}
}

func sharesStem(path, stem string) bool {
	rest, ok := strings.CutPrefix(path, stem+".")
	if !ok {
		return false
	}
	ext := filepath.Ext(rest)
	if ext == "" {
		return true
	}
	return sidecarTags(strings.TrimSuffix(rest, ext))
}

// sidecarTags reports whether every dot-separated token of infix is a
// language or a subtitle flag, as in movie.en.forced.srt.
func sidecarTags(infix string) bool {
	for _, token := range strings.Split(strings.ToLower(infix), ".") {
		if subtitles.IsFlag(token) {
			continue
		}
		if len(token) < 2 || len(token) > 3 && !strings.Contains(token, "-") {
			return false
		}
		if subtitles.Normalize(token) == "" {
			return false
		}
	}
	return true
}

// byIdentifier attaches leftovers whose own identifier names a release.
func (g *grouper) byIdentifier() {
	for _, left := range g.pending() {
		id := naming.Identifier(left, g.root, false)
		if r, ok := g.releases[id]; ok && id != "" {
			g.claim(r, left)
		}
	}
}

// byFolder attaches leftovers whose folder identifier names a release.
func (g *grouper) byFolder() {
	for _, left := range g.pending() {
		dir := filepath.Dir(left)
		if dir == g.root {
			continue
		}
		id := naming.Identifier(dir, g.root, false)
		if r, ok := g.releases[id]; ok && id != "" {
			g.claim(r, left)
		}
	}
}

// markIgnored flags releases holding an ignore marker file.
func (g *grouper) markIgnored() {
	for _, r := range g.releases {
		for _, f := range r.unsorted {
			if strings.EqualFold(filepath.Ext(f), ".ignore") {
				r.Ignored = true
				break
			}
		}
	}
}
