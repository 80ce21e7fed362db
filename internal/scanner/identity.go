package scanner

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/Nomadcxx/releasescan/internal/logging"
	"github.com/Nomadcxx/releasescan/internal/naming"
)

// nfoReadLimit caps how much of an NFO file is inspected.
const nfoReadLimit = 1 << 20

// identify resolves the movie behind a release. Sources are tried from most
// to least trusted: the download, identity tags in paths, NFO contents, ids
// in file names, then a title search per identifier.
func (s *Scanner) identify(ctx context.Context, r *Release, download *Download) Media {
	imdbID := ""
	if download != nil && download.IMDbID != "" {
		imdbID = download.IMDbID
		s.logger.Debug("scanner", "Identified via download", logging.F("imdb", imdbID))
	}

	if imdbID == "" {
		imdbID = s.idFromTags(r)
	}
	if imdbID == "" {
		imdbID = s.idFromNFO(r)
	}
	if imdbID == "" && s.d.IMDb != nil {
		for _, path := range r.Files() {
			if id, ok := s.d.IMDb.IMDbInName(path); ok {
				imdbID = id
				break
			}
		}
	}
	if imdbID == "" {
		imdbID = s.idFromSearch(ctx, r)
	}

	if imdbID == "" {
		s.logger.Error("scanner", "No IMDb id found, add an NFO with the id or put the year in the name", nil,
			logging.F("identifiers", r.Identifiers))
		return Media{}
	}
	return s.lookupMedia(ctx, imdbID)
}

func (s *Scanner) idFromTags(r *Release) string {
	for _, list := range [][]string{r.Movie, r.Files()} {
		for _, path := range list {
			if id, ok := naming.CPTagID(path); ok {
				return id
			}
		}
	}
	return ""
}

func (s *Scanner) idFromNFO(r *Release) string {
	if s.d.IMDb == nil {
		return ""
	}
	for _, path := range r.NFO {
		data, err := s.readHead(path, nfoReadLimit)
		if err != nil {
			s.logger.Debug("scanner", "Cannot read NFO", logging.F("path", path), logging.F("error", err.Error()))
			continue
		}
		if id, ok := s.d.IMDb.IMDbInContent(data); ok {
			s.logger.Debug("scanner", "Identified via NFO", logging.F("path", path), logging.F("imdb", id))
			return id
		}
	}
	return ""
}

func (s *Scanner) idFromSearch(ctx context.Context, r *Release) string {
	if s.d.Search == nil {
		return ""
	}

	fileName := ""
	if !r.DVD && len(r.Movie) > 0 {
		fileName = r.Movie[0]
	}

	for _, identifier := range r.Identifiers {
		if len(identifier) <= 2 {
			s.logger.Debug("scanner", "Identifier too short to search", logging.F("identifier", identifier))
			continue
		}
		guess := naming.ReleaseNameYear(s.d.Titles, identifier, fileName)
		if !guess.Valid() {
			continue
		}

		query := guess.Query()
		found := s.search(ctx, query)
		if len(found) == 0 && guess.Other.Valid() && guess.Other.Query() != query {
			found = s.search(ctx, guess.Other.Query())
		}
		if len(found) > 0 && found[0].IMDbID != "" {
			s.logger.Debug("scanner", "Identified via search", logging.F("identifier", identifier), logging.F("imdb", found[0].IMDbID))
			return found[0].IMDbID
		}
	}
	return ""
}

func (s *Scanner) search(ctx context.Context, query string) []MovieInfo {
	found, err := s.d.Search.SearchMovies(ctx, query, 1)
	if err != nil {
		s.logger.Warn("scanner", "Movie search failed", logging.F("query", query), logging.F("error", err.Error()))
		return nil
	}
	return found
}

// lookupMedia prefers the local store and falls back to an info shell.
func (s *Scanner) lookupMedia(ctx context.Context, imdbID string) Media {
	if s.d.Store != nil {
		info, err := s.d.Store.LookupStoredMedia(imdbID)
		if err != nil {
			s.logger.Warn("scanner", "Media store lookup failed", logging.F("imdb", imdbID), logging.F("error", err.Error()))
		} else if info != nil {
			return Media{IMDbID: imdbID, Stored: true, Info: info}
		}
	}

	s.logger.Debug("scanner", "Movie not in library, fetching info", logging.F("imdb", imdbID))
	m := Media{IMDbID: imdbID}
	if s.d.Info != nil {
		info, err := s.d.Info.FetchMovieInfo(ctx, imdbID)
		if err != nil {
			s.logger.Warn("scanner", "Fetching movie info failed", logging.F("imdb", imdbID), logging.F("error", err.Error()))
		} else {
			m.Info = info
		}
	}
	return m
}

func (s *Scanner) readHead(path string, limit int64) ([]byte, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, limit))
}

// dirName picks the innermost folder between root and the movie file whose
// name says something, skipping generic names and very short ones.
func (s *Scanner) dirName(root, parent string) string {
	rel, err := filepath.Rel(root, parent)
	if err != nil || rel == "." {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if len(parts[i]) > 2 && !s.tables.IsGenericName(parts[i]) {
			return parts[i]
		}
	}
	return ""
}
