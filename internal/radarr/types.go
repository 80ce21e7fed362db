package radarr

import "time"

type SystemStatus struct {
	AppName        string `json:"appName"`
	InstanceName   string `json:"instanceName"`
	Version        string `json:"version"`
	StartupPath    string `json:"startupPath"`
	OsName         string `json:"osName"`
	IsDocker       bool   `json:"isDocker"`
	Branch         string `json:"branch"`
	Authentication string `json:"authentication"`
	UrlBase        string `json:"urlBase"`
}

type Movie struct {
	ID               int              `json:"id"`
	Title            string           `json:"title"`
	OriginalTitle    string           `json:"originalTitle"`
	SortTitle        string           `json:"sortTitle"`
	Overview         string           `json:"overview"`
	Year             int              `json:"year"`
	HasFile          bool             `json:"hasFile"`
	Path             string           `json:"path"`
	Monitored        bool             `json:"monitored"`
	Runtime          int              `json:"runtime"`
	CleanTitle       string           `json:"cleanTitle"`
	ImdbID           string           `json:"imdbId"`
	TmdbID           int              `json:"tmdbId"`
	TitleSlug        string           `json:"titleSlug"`
	Certification    string           `json:"certification"`
	Genres           []string         `json:"genres"`
	Added            time.Time        `json:"added"`
	Status           string           `json:"status"`
	OriginalLanguage *Language        `json:"originalLanguage,omitempty"`
	AlternateTitles  []AlternateTitle `json:"alternateTitles,omitempty"`
}

type Language struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type AlternateTitle struct {
	SourceType string    `json:"sourceType"`
	MovieID    int       `json:"movieId"`
	Title      string    `json:"title"`
	Language   *Language `json:"language,omitempty"`
}

// InLibrary reports whether the movie was returned from the library rather
// than the metadata source.
func (m Movie) InLibrary() bool {
	return m.ID > 0
}
