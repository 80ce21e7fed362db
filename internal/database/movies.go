package database

import (
	"database/sql"
	"strings"
	"time"
)

// Movie is a movie known to the local library.
type Movie struct {
	ID              int64
	IMDbID          string
	TmdbID          *int
	Title           string
	TitleNormalized string
	Year            int
	Overview        string
	Genres          []string
	Source          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

const movieColumns = `id, imdb_id, tmdb_id, title, title_normalized, year, overview, genres, source, created_at, updated_at`

func scanMovie(row interface{ Scan(...any) error }) (*Movie, error) {
	var mov Movie
	var year sql.NullInt64
	var genres string
	err := row.Scan(
		&mov.ID, &mov.IMDbID, &mov.TmdbID, &mov.Title, &mov.TitleNormalized,
		&year, &mov.Overview, &genres, &mov.Source, &mov.CreatedAt, &mov.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	mov.Year = int(year.Int64)
	if genres != "" {
		mov.Genres = strings.Split(genres, ",")
	}
	return &mov, nil
}

// GetMovieByIMDbID returns the movie with the given IMDb id, or nil when
// it is not stored.
func (m *MediaDB) GetMovieByIMDbID(imdbID string) (*Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mov, err := scanMovie(m.db.QueryRow(`SELECT `+movieColumns+` FROM movies WHERE imdb_id = ?`, imdbID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return mov, err
}

// GetMovieByTitle looks up a movie by normalized title and optional year
func (m *MediaDB) GetMovieByTitle(title string, year int) (*Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	normalized := NormalizeTitle(title)

	var row *sql.Row
	if year > 0 {
		row = m.db.QueryRow(`SELECT `+movieColumns+` FROM movies WHERE title_normalized = ? AND year = ?`, normalized, year)
	} else {
		row = m.db.QueryRow(`SELECT `+movieColumns+` FROM movies WHERE title_normalized = ? ORDER BY year DESC LIMIT 1`, normalized)
	}

	mov, err := scanMovie(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return mov, err
}

// UpsertMovie inserts a movie or refreshes the stored one with the same
// IMDb id. Empty fields never overwrite stored values.
func (m *MediaDB) UpsertMovie(mov *Movie) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	mov.TitleNormalized = NormalizeTitle(mov.Title)
	mov.UpdatedAt = now
	if mov.CreatedAt.IsZero() {
		mov.CreatedAt = now
	}
	if mov.Source == "" {
		mov.Source = "scan"
	}

	var year any
	if mov.Year > 0 {
		year = mov.Year
	}

	err := m.db.QueryRow(`
		INSERT INTO movies (imdb_id, tmdb_id, title, title_normalized, year, overview, genres, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(imdb_id) DO UPDATE SET
			tmdb_id = COALESCE(excluded.tmdb_id, movies.tmdb_id),
			title = CASE WHEN excluded.title != '' THEN excluded.title ELSE movies.title END,
			title_normalized = CASE WHEN excluded.title != '' THEN excluded.title_normalized ELSE movies.title_normalized END,
			year = COALESCE(excluded.year, movies.year),
			overview = CASE WHEN excluded.overview != '' THEN excluded.overview ELSE movies.overview END,
			genres = CASE WHEN excluded.genres != '' THEN excluded.genres ELSE movies.genres END,
			source = excluded.source,
			updated_at = excluded.updated_at
		RETURNING id`,
		mov.IMDbID, mov.TmdbID, mov.Title, mov.TitleNormalized, year,
		mov.Overview, strings.Join(mov.Genres, ","), mov.Source, mov.CreatedAt, mov.UpdatedAt,
	).Scan(&mov.ID)
	return err
}

// ListMovies returns stored movies ordered by title.
func (m *MediaDB) ListMovies() ([]*Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows, err := m.db.Query(`SELECT ` + movieColumns + ` FROM movies ORDER BY title_normalized, year`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movies []*Movie
	for rows.Next() {
		mov, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, mov)
	}
	return movies, rows.Err()
}
