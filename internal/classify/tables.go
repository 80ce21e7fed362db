// Package classify holds the path filter and file role predicates used to
// sort the contents of a download directory into release roles.
package classify

import (
	"path/filepath"
	"strings"
)

const megabyte = 1024 * 1024

// SizeRange is an inclusive range in megabytes. A zero MaxMB is open-ended.
type SizeRange struct {
	MinMB float64
	MaxMB float64
}

// Contains reports whether size bytes fall inside the range.
func (r SizeRange) Contains(size int64) bool {
	mb := float64(size) / megabyte
	if mb < r.MinMB {
		return false
	}
	return r.MaxMB <= 0 || mb <= r.MaxMB
}

// Sizes are the size thresholds used by the role predicates.
type Sizes struct {
	Movie    SizeRange
	Trailer  SizeRange
	Backdrop SizeRange
}

// DefaultSizes returns the stock thresholds.
func DefaultSizes() Sizes {
	return Sizes{
		Movie:    SizeRange{MinMB: 200},
		Trailer:  SizeRange{MinMB: 2, MaxMB: 199},
		Backdrop: SizeRange{MinMB: 0, MaxMB: 5},
	}
}

type extSet map[string]struct{}

func newExtSet(exts ...string) extSet {
	s := make(extSet, len(exts))
	for _, e := range exts {
		s[e] = struct{}{}
	}
	return s
}

func (s extSet) has(path string) bool {
	_, ok := s[Ext(path)]
	return ok
}

// Tables is the immutable lookup data the predicates consult. Build it once
// with NewTables and share it.
type Tables struct {
	sizes Sizes

	ignoredInPath []string
	dvdNeedles    []string
	genericNames  map[string]bool

	movie         extSet
	movieExtra    extSet
	subtitle      extSet
	subtitleExtra extSet
	nfo           extSet
	image         extSet
}

// NewTables builds the lookup tables with the given size thresholds.
func NewTables(sizes Sizes) *Tables {
	return &Tables{
		sizes: sizes,
		ignoredInPath: []string{
			string(filepath.Separator) + "extracted" + string(filepath.Separator),
			"extracting", "_unpack", "_failed_", "_unknown_", "_exists_",
			"_failed_remove_", "_failed_rename_",
			".appledouble", ".appledb", ".appledesktop",
			string(filepath.Separator) + "._",
			".ds_store", "cp.cpnfo", "thumbs.db", "ehthumbs.db", "desktop.ini",
		},
		dvdNeedles: []string{"vts_", "video_ts", "audio_ts", "bdmv", "certificate"},
		genericNames: map[string]bool{
			"extract": true, "extracting": true, "extracted": true,
			"movie": true, "movies": true, "film": true, "films": true,
			"download": true, "downloads": true,
			"video_ts": true, "audio_ts": true, "bdmv": true, "certificate": true,
		},
		movie:         newExtSet("mkv", "wmv", "avi", "mpg", "mpeg", "mp4", "m2ts", "iso", "img", "mdf", "ts", "m4v", "flv"),
		movieExtra:    newExtSet("mds"),
		subtitle:      newExtSet("sub", "srt", "ssa", "ass"),
		subtitleExtra: newExtSet("idx"),
		nfo:           newExtSet("nfo", "txt", "tag"),
		image:         newExtSet("jpg", "jpeg", "png", "gif", "bmp", "tbn"),
	}
}

// DefaultTables returns tables built with DefaultSizes.
func DefaultTables() *Tables {
	return NewTables(DefaultSizes())
}

// Sizes returns the thresholds the tables were built with.
func (t *Tables) Sizes() Sizes {
	return t.sizes
}

// IsGenericName reports folder names that say nothing about the movie.
func (t *Tables) IsGenericName(name string) bool {
	return t.genericNames[strings.ToLower(name)]
}

// Ext returns the lowercased extension of path without the dot.
func Ext(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
