package classify

import (
	"path/filepath"
	"strings"
)

// Role is the bucket a file ends up in within a release.
type Role int

const (
	RoleLeftover Role = iota
	RoleMovie
	RoleMovieExtra
	RoleSubtitle
	RoleSubtitleExtra
	RoleNFO
	RoleTrailer
)

func (r Role) String() string {
	switch r {
	case RoleMovie:
		return "movie"
	case RoleMovieExtra:
		return "movie_extra"
	case RoleSubtitle:
		return "subtitle"
	case RoleSubtitleExtra:
		return "subtitle_extra"
	case RoleNFO:
		return "nfo"
	case RoleTrailer:
		return "trailer"
	default:
		return "leftover"
	}
}

// File is a path with its size in bytes.
type File struct {
	Path string
	Size int64
}

// IsMovie reports a video extension, a size within the movie range and no
// sample marker.
func (t *Tables) IsMovie(path string, size int64) bool {
	return t.movie.has(path) && !IsSampleFile(path) && t.sizes.Movie.Contains(size)
}

// HasMovieSize reports whether size alone qualifies as a movie.
func (t *Tables) HasMovieSize(size int64) bool {
	return t.sizes.Movie.Contains(size)
}

func (t *Tables) IsMovieExtra(path string) bool {
	return t.movieExtra.has(path)
}

func (t *Tables) IsSubtitle(path string) bool {
	return t.subtitle.has(path)
}

func (t *Tables) IsSubtitleExtra(path string) bool {
	return t.subtitleExtra.has(path)
}

func (t *Tables) IsNFO(path string) bool {
	return t.nfo.has(path)
}

// IsTrailer matches a trailer token anywhere in the path and a trailer-sized file.
func (t *Tables) IsTrailer(path string, size int64) bool {
	return trailerRegex.MatchString(strings.ToLower(path)) && t.sizes.Trailer.Contains(size)
}

func (t *Tables) IsImage(path string) bool {
	return t.image.has(path)
}

// IsBackdrop is an image named fanart or backdrop within the backdrop size range.
func (t *Tables) IsBackdrop(path string, size int64) bool {
	if !t.IsImage(path) {
		return false
	}
	return backdropRegex.MatchString(strings.ToLower(filepath.Base(path))) && t.sizes.Backdrop.Contains(size)
}

// RoleOf picks a single role for a file. Movie wins over every other role and
// leftover is the default. When dvd is set, disc structure files are the
// movie files.
func (t *Tables) RoleOf(f File, dvd bool) Role {
	switch {
	case dvd && t.IsDVDFile(f.Path):
		return RoleMovie
	case !dvd && t.IsMovie(f.Path, f.Size):
		return RoleMovie
	case t.IsMovieExtra(f.Path):
		return RoleMovieExtra
	case t.IsSubtitle(f.Path):
		return RoleSubtitle
	case t.IsSubtitleExtra(f.Path):
		return RoleSubtitleExtra
	case t.IsNFO(f.Path):
		return RoleNFO
	case t.IsTrailer(f.Path, f.Size):
		return RoleTrailer
	default:
		return RoleLeftover
	}
}

// Buckets are disjoint per-role file lists.
type Buckets struct {
	Movie         []string
	MovieExtra    []string
	Subtitle      []string
	SubtitleExtra []string
	NFO           []string
	Trailer       []string
	Leftover      []string
}

// All returns every path across the buckets.
func (b Buckets) All() []string {
	var out []string
	for _, list := range [][]string{b.Movie, b.MovieExtra, b.Subtitle, b.SubtitleExtra, b.NFO, b.Trailer, b.Leftover} {
		out = append(out, list...)
	}
	return out
}

// Partition places every file in exactly one bucket, keeping input order.
func (t *Tables) Partition(files []File, dvd bool) Buckets {
	var b Buckets
	for _, f := range files {
		switch t.RoleOf(f, dvd) {
		case RoleMovie:
			b.Movie = append(b.Movie, f.Path)
		case RoleMovieExtra:
			b.MovieExtra = append(b.MovieExtra, f.Path)
		case RoleSubtitle:
			b.Subtitle = append(b.Subtitle, f.Path)
		case RoleSubtitleExtra:
			b.SubtitleExtra = append(b.SubtitleExtra, f.Path)
		case RoleNFO:
			b.NFO = append(b.NFO, f.Path)
		case RoleTrailer:
			b.Trailer = append(b.Trailer, f.Path)
		default:
			b.Leftover = append(b.Leftover, f.Path)
		}
	}
	return b
}
