package app

import (
	"context"
	"errors"

	"github.com/Nomadcxx/releasescan/internal/database"
	"github.com/Nomadcxx/releasescan/internal/mediainfo"
	"github.com/Nomadcxx/releasescan/internal/radarr"
	"github.com/Nomadcxx/releasescan/internal/scanner"
)

// Catalog answers movie searches and lookups from Radarr.
type Catalog struct {
	client *radarr.Client
}

func NewCatalog(client *radarr.Client) *Catalog {
	return &Catalog{client: client}
}

func (c *Catalog) SearchMovies(ctx context.Context, query string, limit int) ([]scanner.MovieInfo, error) {
	movies, err := c.client.LookupMovie(ctx, query)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(movies) > limit {
		movies = movies[:limit]
	}
	out := make([]scanner.MovieInfo, 0, len(movies))
	for _, m := range movies {
		out = append(out, movieInfo(m))
	}
	return out, nil
}

func (c *Catalog) FetchMovieInfo(ctx context.Context, imdbID string) (*scanner.MovieInfo, error) {
	movie, err := c.client.LookupMovieByImdbID(ctx, imdbID)
	if errors.Is(err, radarr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	info := movieInfo(*movie)
	return &info, nil
}

func movieInfo(m radarr.Movie) scanner.MovieInfo {
	return scanner.MovieInfo{
		IMDbID:   m.ImdbID,
		TmdbID:   m.TmdbID,
		Title:    m.Title,
		Year:     m.Year,
		Overview: m.Overview,
		Genres:   m.Genres,
	}
}

// Store serves the movies already in the local database.
type Store struct {
	db *database.MediaDB
}

func NewStore(db *database.MediaDB) *Store {
	return &Store{db: db}
}

func (s *Store) LookupStoredMedia(imdbID string) (*scanner.MovieInfo, error) {
	mov, err := s.db.GetMovieByIMDbID(imdbID)
	if err != nil || mov == nil {
		return nil, err
	}
	info := scanner.MovieInfo{
		IMDbID:   mov.IMDbID,
		Title:    mov.Title,
		Year:     mov.Year,
		Overview: mov.Overview,
		Genres:   mov.Genres,
	}
	if mov.TmdbID != nil {
		info.TmdbID = *mov.TmdbID
	}
	return &info, nil
}

// Container reads container metadata through ffprobe.
type Container struct {
	prober *mediainfo.Prober
}

func NewContainer(prober *mediainfo.Prober) *Container {
	return &Container{prober: prober}
}

func (c *Container) ReadContainer(ctx context.Context, path string) (*scanner.ContainerMeta, error) {
	res, err := c.prober.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	width, height := res.Dimensions()
	return &scanner.ContainerMeta{
		Titles:        res.Titles(),
		VideoCodec:    res.VideoCodec(),
		AudioCodec:    res.AudioCodec(),
		AudioChannels: res.AudioChannels(),
		Width:         width,
		Height:        height,
	}, nil
}
