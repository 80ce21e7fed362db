// Package naming turns noisy release paths into stable identifiers and
// best-effort title/year guesses.
package naming

import (
	"path/filepath"
	"strings"
)

// discDirs are disc structure folders that never describe the release.
var discDirs = map[string]bool{
	"video_ts":    true,
	"audio_ts":    true,
	"bdmv":        true,
	"stream":      true,
	"playlist":    true,
	"clipinf":     true,
	"backup":      true,
	"certificate": true,
}

// Identifier builds the grouping key for path relative to root. With
// excludeFilename the final component is dropped, as for disc structures
// where the file names say nothing about the release. The result depends on
// its arguments only.
func Identifier(path, root string, excludeFilename bool) string {
	rel := relativeTo(path, root)
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))

	parts := splitPath(rel)
	if excludeFilename && len(parts) > 0 {
		parts = parts[:len(parts)-1]
		for len(parts) > 0 && discDirs[strings.ToLower(parts[len(parts)-1])] {
			parts = parts[:len(parts)-1]
		}
	}
	for i := range parts {
		parts[i] = strings.ToLower(parts[i])
	}

	var identifier string
	switch n := len(parts); {
	case n == 0:
		identifier = ""
	case n > 1 && len(parts[n-2]) > len(parts[n-1]):
		identifier = parts[n-2]
	default:
		identifier = parts[n-1]
	}

	identifier = RemoveMultipart(identifier)
	identifier = RemoveCPTag(identifier)
	identifier = Simplify(identifier)

	year := FindYear(rel)

	identifier = strings.Trim(replaceNoise(identifier, "::"), ":")

	if year != "" && !strings.HasPrefix(identifier, year) {
		splitBy := year
		if strings.Contains(identifier, ":::") {
			splitBy = ":::"
		}
		head, _, _ := strings.Cut(identifier, splitBy)
		identifier = strings.TrimSpace(head) + " " + year
	} else {
		identifier, _, _ = strings.Cut(identifier, "::")
	}

	return Simplify(dedupeWords(identifier))
}

func relativeTo(path, root string) string {
	path = filepath.Clean(path)
	if root != "" {
		root = filepath.Clean(root)
		if rel, ok := strings.CutPrefix(path, root); ok {
			path = rel
		}
	}
	return strings.TrimLeft(path, string(filepath.Separator))
}

func splitPath(p string) []string {
	var parts []string
	for _, part := range strings.Split(p, string(filepath.Separator)) {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
