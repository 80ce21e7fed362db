package radarr

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// LookupMovie searches Radarr's metadata source by free text. Results come
// back in Radarr's relevance order.
func (c *Client) LookupMovie(ctx context.Context, term string) ([]Movie, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}

	var movies []Movie
	if err := c.get(ctx, "/api/v3/movie/lookup", url.Values{"term": {term}}, &movies); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("looking up movie %q: %w", term, err)
	}
	return movies, nil
}

// LookupMovieByImdbID fetches one movie by IMDb id. Unknown ids return
// ErrNotFound.
func (c *Client) LookupMovieByImdbID(ctx context.Context, imdbID string) (*Movie, error) {
	var movie Movie
	if err := c.get(ctx, "/api/v3/movie/lookup/imdb", url.Values{"imdbId": {imdbID}}, &movie); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("looking up movie by IMDB ID %s: %w", imdbID, err)
	}
	// Radarr answers unknown ids with an empty object on some versions.
	if movie.ImdbID == "" && movie.TmdbID == 0 {
		return nil, ErrNotFound
	}
	return &movie, nil
}

// GetMovieByImdbID finds a library movie by IMDb id.
func (c *Client) GetMovieByImdbID(ctx context.Context, imdbID string) (*Movie, error) {
	var movies []Movie
	if err := c.get(ctx, "/api/v3/movie", url.Values{"imdbId": {imdbID}}, &movies); err != nil {
		return nil, fmt.Errorf("getting movie %s: %w", imdbID, err)
	}
	for i := range movies {
		if strings.EqualFold(movies[i].ImdbID, imdbID) {
			return &movies[i], nil
		}
	}
	return nil, ErrNotFound
}
