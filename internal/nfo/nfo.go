// Package nfo extracts movie identity from NFO files, both the scene style
// plain text kind and Kodi XML metadata.
package nfo

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var imdbRegex = regexp.MustCompile(`\b(tt\d{7,9})\b`)

// Movie is what an NFO says about a movie.
type Movie struct {
	Title  string
	Year   int
	IMDbID string
	TmdbID int
}

type xmlMovie struct {
	XMLName   xml.Name      `xml:"movie"`
	Title     string        `xml:"title"`
	Year      string        `xml:"year"`
	UniqueIDs []xmlUniqueID `xml:"uniqueid"`
	// Legacy single-ID fields
	ID     string `xml:"id"`
	IMDBId string `xml:"imdbid"`
	TMDBId string `xml:"tmdbid"`
}

type xmlUniqueID struct {
	Type    string `xml:"type,attr"`
	Default string `xml:"default,attr"`
	Value   string `xml:",chardata"`
}

// ParseMovie reads a Kodi movie NFO.
func ParseMovie(data []byte) (*Movie, error) {
	var movie xmlMovie
	if err := xml.Unmarshal(bytes.TrimSpace(data), &movie); err != nil {
		return nil, fmt.Errorf("not a valid XML NFO: %w", err)
	}

	m := &Movie{Title: strings.TrimSpace(movie.Title)}
	if y, err := strconv.Atoi(strings.TrimSpace(movie.Year)); err == nil {
		m.Year = y
	}

	for _, id := range movie.UniqueIDs {
		value := strings.TrimSpace(id.Value)
		switch strings.ToLower(id.Type) {
		case "imdb":
			if m.IMDbID == "" || id.Default == "true" {
				m.IMDbID = value
			}
		case "tmdb":
			if n, err := strconv.Atoi(value); err == nil {
				m.TmdbID = n
			}
		}
	}
	if m.IMDbID == "" {
		switch {
		case movie.IMDBId != "":
			m.IMDbID = strings.TrimSpace(movie.IMDBId)
		case strings.HasPrefix(strings.TrimSpace(movie.ID), "tt"):
			m.IMDbID = strings.TrimSpace(movie.ID)
		}
	}
	if m.TmdbID == 0 && movie.TMDBId != "" {
		m.TmdbID, _ = strconv.Atoi(strings.TrimSpace(movie.TMDBId))
	}
	return m, nil
}

// Finder looks for IMDb ids in NFO contents and file names.
type Finder struct{}

// IMDbInContent prefers the id a Kodi NFO declares and falls back to the
// first id mentioned anywhere in the text.
func (Finder) IMDbInContent(data []byte) (string, bool) {
	if m, err := ParseMovie(data); err == nil && imdbRegex.MatchString(m.IMDbID) {
		return m.IMDbID, true
	}
	if id := imdbRegex.FindSubmatch(data); id != nil {
		return string(id[1]), true
	}
	return "", false
}

// IMDbInName looks for an id in the file name only.
func (Finder) IMDbInName(name string) (string, bool) {
	if id := imdbRegex.FindStringSubmatch(filepath.Base(name)); id != nil {
		return id[1], true
	}
	return "", false
}
