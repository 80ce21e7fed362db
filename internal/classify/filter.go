package classify

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	sampleRegex   = regexp.MustCompile(`(^|[\W_])sample\d*[\W_]`)
	trailerRegex  = regexp.MustCompile(`(^|[\W_])trailer\d*[\W_]`)
	backdropRegex = regexp.MustCompile(`(^|[\W_])(fanart|backdrop)\d*[\W_]`)
)

// KeepFile reports whether path survives the ignore list of unpacking
// markers and OS metadata files.
func (t *Tables) KeepFile(path string) bool {
	lower := strings.ToLower(path)
	for _, marker := range t.ignoredInPath {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

// IsSampleFile reports whether the file name carries a sample marker.
func IsSampleFile(path string) bool {
	return sampleRegex.MatchString(strings.ToLower(filepath.Base(path)))
}

// IsDVDFile reports whether path is part of a disc structure.
func (t *Tables) IsDVDFile(path string) bool {
	lower := strings.ToLower(path)
	for _, part := range strings.Split(lower, string(filepath.Separator)) {
		if part == "video_ts" || part == "audio_ts" {
			return true
		}
	}
	for _, needle := range t.dvdNeedles {
		if strings.Contains(lower, needle) {
			return true
		}
	}
	return false
}
