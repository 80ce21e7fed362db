// Package subtitles finds the subtitle files that sit next to a video and
// the languages their names declare.
package subtitles

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/language"
)

var subtitleExts = map[string]bool{".srt": true, ".sub": true, ".ssa": true, ".ass": true}

// flagTokens mark subtitle variants. Some of them also parse as language
// codes (sdh, hi) and must never be read as one.
var flagTokens = map[string]bool{"forced": true, "sdh": true, "hi": true, "cc": true, "full": true, "default": true}

// releaseTokens are release tags that parse as language codes.
var releaseTokens = map[string]bool{"dts": true, "ac3": true, "aac": true, "dd": true}

// IsFlag reports whether token is a subtitle flag such as forced or sdh.
func IsFlag(token string) bool {
	return flagTokens[strings.ToLower(token)]
}

// Detector scans video folders for sidecar subtitles.
type Detector struct {
	fs afero.Fs
}

// NewDetector returns a detector reading fs, the OS filesystem when nil.
func NewDetector(fs afero.Fs) *Detector {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Detector{fs: fs}
}

// DetectSubtitles maps each sidecar subtitle of the given videos to the
// languages its name declares. Subtitles without a language token are
// left out.
func (d *Detector) DetectSubtitles(videoPaths []string) map[string][]string {
	found := make(map[string][]string)
	for _, video := range videoPaths {
		dir := filepath.Dir(video)
		base := strings.TrimSuffix(filepath.Base(video), filepath.Ext(video))

		entries, err := afero.ReadDir(d.fs, dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			ext := strings.ToLower(filepath.Ext(name))
			if !subtitleExts[ext] {
				continue
			}
			stem := strings.TrimSuffix(name, filepath.Ext(name))
			if !matchesMediaBase(stem, base) {
				continue
			}
			if lang := Normalize(langToken(stem, base)); lang != "" {
				found[filepath.Join(dir, name)] = []string{lang}
			}
		}
	}
	return found
}

// Languages returns the distinct languages in a detection result, sorted.
func Languages(found map[string][]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, langs := range found {
		for _, l := range langs {
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	sort.Strings(out)
	return out
}

func matchesMediaBase(stem, base string) bool {
	if stem == base {
		return true
	}
	if !strings.HasPrefix(stem, base) || len(stem) <= len(base) {
		return false
	}
	switch stem[len(base)] {
	case '.', '_', '-', ' ':
		return true
	default:
		return false
	}
}

// langToken returns the last token after the media name that parses as a
// language, skipping flags and release tags.
func langToken(stem, base string) string {
	remain := strings.TrimLeft(strings.TrimPrefix(stem, base), "._- ")
	if remain == "" {
		return ""
	}
	parts := strings.FieldsFunc(remain, func(r rune) bool {
		return r == '.' || r == '_' || r == ' '
	})
	for i := len(parts) - 1; i >= 0; i-- {
		token := strings.ToLower(parts[i])
		if flagTokens[token] || releaseTokens[token] {
			continue
		}
		if Normalize(token) != "" {
			return token
		}
	}
	return ""
}

// Normalize returns the ISO 639-1 base of a language code ("eng" -> "en",
// "pt-BR" -> "pt"), or "" when token is not a language.
func Normalize(token string) string {
	if token == "" {
		return ""
	}
	tag, err := language.Parse(token)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}
