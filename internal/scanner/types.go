package scanner

import (
	"errors"
	"time"

	"github.com/Nomadcxx/releasescan/internal/quality"
)

// ErrRootNotFound is returned when the scan root is missing or not a directory.
var ErrRootNotFound = errors.New("scan root not found")

// ErrInterrupted marks a scan cut short by cancellation or host shutdown.
var ErrInterrupted = errors.New("scan interrupted")

// Download describes a release the caller already knows about, typically
// from a download client that snatched it.
type Download struct {
	IMDbID  string
	Quality string
	Is3D    bool
}

// FoundFunc is called for every finalized release with the number of
// releases still to come and the total expected.
type FoundFunc func(r *Release, remaining, total int)

// Request is one scan invocation.
type Request struct {
	Root string
	// Files limits the scan to these paths and disables the still-changing check.
	Files    []string
	Download *Download

	// Simple skips subtitle language detection.
	Simple        bool
	NewerThan     time.Time
	ReturnIgnored bool
	CheckFileDate bool
	OnFound       FoundFunc
}

// Result maps release identifiers to releases. Leftovers lists files that
// could not be attached to any release.
type Result struct {
	Releases  map[string]*Release
	Leftovers []string
	// Partial is set when cancellation or host shutdown cut the scan short.
	Partial bool
}

// MovieInfo is what the search and info services know about a movie.
type MovieInfo struct {
	IMDbID   string
	TmdbID   int
	Title    string
	Year     int
	Overview string
	Genres   []string
}

// Media is the identity resolved for a release. The zero value means
// unidentified.
type Media struct {
	IMDbID string
	// Stored is set when the identity came from the local store.
	Stored bool
	Info   *MovieInfo
}

// Identified reports whether an IMDb id was resolved.
func (m Media) Identified() bool {
	return m.IMDbID != ""
}

// Metadata is the technical summary of a release.
type Metadata struct {
	Titles        []string
	VideoCodec    string
	AudioCodec    string
	AudioChannels float64
	Width         int
	Height        int
	Aspect        float64
	SizeMB        float64
	Quality       *quality.Descriptor
	QualityType   string
	Group         string
	Source        string
	ThreeDType    string
}

// Images splits the image files among a release's leftovers.
type Images struct {
	Backdrop []string
	Other    []string
}

// Release is a group of files that belong to one movie release. The role
// lists are disjoint and together hold every file of the release.
type Release struct {
	Identifier  string
	Identifiers []string
	DVD         bool
	Ignored     bool

	Movie         []string
	MovieExtra    []string
	Subtitle      []string
	SubtitleExtra []string
	NFO           []string
	Trailer       []string
	Leftover      []string

	// Images is a view over Leftover, not an extra role.
	Images Images

	Meta              Metadata
	SubtitleLanguages map[string][]string
	ParentDir         string
	DirName           string
	Media             Media

	unsorted []string
}

// Files returns every file of the release across all roles.
func (r *Release) Files() []string {
	var out []string
	for _, list := range [][]string{r.Movie, r.MovieExtra, r.Subtitle, r.SubtitleExtra, r.NFO, r.Trailer, r.Leftover} {
		out = append(out, list...)
	}
	return out
}
