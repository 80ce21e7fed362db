package scanner

import (
	"context"

	"github.com/Nomadcxx/releasescan/internal/naming"
	"github.com/Nomadcxx/releasescan/internal/quality"
)

// QualityGuesser maps files onto quality profiles.
type QualityGuesser interface {
	Guess(files []string, sizeMB float64, extra *quality.Extra) *quality.Descriptor
	Single(name string) *quality.Descriptor
}

// ContainerMeta is what a container probe could read from a media file.
type ContainerMeta struct {
	Titles        []string
	VideoCodec    string
	AudioCodec    string
	AudioChannels float64
	Width         int
	Height        int
}

// ContainerReader probes media files. Unsupported files return an error.
type ContainerReader interface {
	ReadContainer(ctx context.Context, path string) (*ContainerMeta, error)
}

// SubtitleDetector finds subtitles for videos and the languages they carry.
type SubtitleDetector interface {
	DetectSubtitles(videoPaths []string) map[string][]string
}

// IMDbFinder extracts IMDb ids from NFO contents and file names.
type IMDbFinder interface {
	IMDbInContent(data []byte) (string, bool)
	IMDbInName(name string) (string, bool)
}

// MovieSearcher searches a movie catalog by free text.
type MovieSearcher interface {
	SearchMovies(ctx context.Context, query string, limit int) ([]MovieInfo, error)
}

// InfoFetcher fetches movie details by IMDb id.
type InfoFetcher interface {
	FetchMovieInfo(ctx context.Context, imdbID string) (*MovieInfo, error)
}

// MediaStore looks up movies already known locally. A nil result with a nil
// error means not stored.
type MediaStore interface {
	LookupStoredMedia(imdbID string) (*MovieInfo, error)
}

// Host reports the state of the surrounding application.
type Host interface {
	ShuttingDown() bool
	ActiveTasks() int
}

// Delegates are the collaborators a Scanner calls out to. Every field is
// optional; a nil collaborator yields no data.
type Delegates struct {
	Quality   QualityGuesser
	Container ContainerReader
	Subtitles SubtitleDetector
	IMDb      IMDbFinder
	Titles    naming.TitleGuesser
	Search    MovieSearcher
	Info      InfoFetcher
	Store     MediaStore
	Host      Host
}
