package quality

import (
	"regexp"
	"strings"
)

// Codec tables consulted when container metadata is unavailable. Order
// decides which token wins when several appear.
var (
	AudioCodecs = []string{"DTS", "AC3", "AC3D", "MP3"}
	VideoCodecs = []string{"x264", "H264", "DivX", "Xvid"}
)

// ResolutionTag maps a resolution keyword to frame dimensions.
type ResolutionTag struct {
	Keyword string
	Width   int
	Height  int
	Aspect  float64
}

// Resolutions is searched in order; the first keyword in the name wins.
var Resolutions = []ResolutionTag{
	{"1080p", 1920, 1080, 1.78},
	{"1080i", 1920, 1080, 1.78},
	{"720p", 1280, 720, 1.78},
	{"720i", 1280, 720, 1.78},
	{"480p", 640, 480, 1.33},
	{"480i", 640, 480, 1.33},
}

// DefaultResolution is used when no keyword matches.
var DefaultResolution = ResolutionTag{Width: 0, Height: 0, Aspect: 1}

type aliasTag struct {
	Label   string
	Aliases []string
}

// sourceMedia is matched in order by substring.
var sourceMedia = []aliasTag{
	{"BluRay", []string{"bluray", "blu-ray", "brrip", "br-rip"}},
	{"HD DVD", []string{"hddvd", "hd-dvd"}},
	{"DVD", []string{"dvd"}},
	{"HDTV", []string{"hdtv"}},
}

// threeDTag matches single words or adjacent word pairs.
type threeDTag struct {
	Label   string
	Matches [][]string
}

// threeDTypes is matched in order; the first tag with a hit wins.
var threeDTypes = []threeDTag{
	{"Half SBS", [][]string{{"half", "sbs"}, {"h", "sbs"}, {"hsbs"}}},
	{"Full SBS", [][]string{{"full", "sbs"}, {"f", "sbs"}, {"fsbs"}}},
	{"SBS", [][]string{{"sbs"}}},
	{"Half OU", [][]string{{"half", "ou"}, {"h", "ou"}, {"hou"}}},
	{"Full OU", [][]string{{"full", "ou"}, {"f", "ou"}, {"fou"}}},
	{"OU", [][]string{{"ou"}}},
	{"Frame Packed", [][]string{{"mvc"}, {"complete", "bluray"}}},
	{"3D", [][]string{{"3d"}}},
}

var (
	audioCodecRegex = codecRegex(AudioCodecs)
	videoCodecRegex = codecRegex(VideoCodecs)
	wordSplitRegex  = regexp.MustCompile(`\W+`)
	groupTagRegex   = regexp.MustCompile(`(?i)-([A-Z0-9]+)[./]`)
)

func codecRegex(codecs []string) *regexp.Regexp {
	quoted := make([]string, len(codecs))
	for i, c := range codecs {
		quoted[i] = regexp.QuoteMeta(c)
	}
	return regexp.MustCompile(`(?i)[^A-Z0-9](` + strings.Join(quoted, "|") + `)[^A-Z0-9]`)
}

// AudioCodecFor returns the audio codec token in name, spelled as in AudioCodecs.
func AudioCodecFor(name string) string {
	return detectCodec(audioCodecRegex, name, AudioCodecs)
}

// VideoCodecFor returns the video codec token in name, spelled as in VideoCodecs.
func VideoCodecFor(name string) string {
	return detectCodec(videoCodecRegex, name, VideoCodecs)
}

func detectCodec(re *regexp.Regexp, name string, codecs []string) string {
	m := re.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	for _, c := range codecs {
		if strings.EqualFold(c, m[1]) {
			return c
		}
	}
	return m[1]
}

// ResolutionFor returns the first resolution keyword found in name.
func ResolutionFor(name string) ResolutionTag {
	lower := strings.ToLower(name)
	for _, r := range Resolutions {
		if strings.Contains(lower, r.Keyword) {
			return r
		}
	}
	return DefaultResolution
}

// SourceMediaFor returns the source media label for name, or "".
func SourceMediaFor(name string) string {
	lower := strings.ToLower(name)
	for _, s := range sourceMedia {
		for _, alias := range s.Aliases {
			if strings.Contains(lower, alias) {
				return s.Label
			}
		}
	}
	return ""
}

// ThreeDTypeFor returns the 3D layout label for name, or "".
func ThreeDTypeFor(name string) string {
	words := wordSplitRegex.Split(strings.ToLower(name), -1)
	for _, tag := range threeDTypes {
		for _, m := range tag.Matches {
			if containsRun(words, m) {
				return tag.Label
			}
		}
	}
	return ""
}

func containsRun(words, run []string) bool {
	for i := 0; i+len(run) <= len(words); i++ {
		hit := true
		for j, w := range run {
			if words[i+j] != w {
				hit = false
				break
			}
		}
		if hit {
			return true
		}
	}
	return false
}

// ReleaseGroupTag returns the last "-GROUP" tag in path.
func ReleaseGroupTag(path string) string {
	m := groupTagRegex.FindAllStringSubmatch(path, -1)
	if len(m) == 0 {
		return ""
	}
	return m[len(m)-1][1]
}
