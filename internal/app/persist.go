package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/Nomadcxx/releasescan/internal/activity"
	"github.com/Nomadcxx/releasescan/internal/classify"
	"github.com/Nomadcxx/releasescan/internal/database"
	"github.com/Nomadcxx/releasescan/internal/logging"
	"github.com/Nomadcxx/releasescan/internal/naming"
	"github.com/Nomadcxx/releasescan/internal/scanner"
)

// ReleaseRecord converts a scanned release into its stored form.
func ReleaseRecord(root string, r *scanner.Release) *database.Release {
	rec := &database.Release{
		Root:        root,
		Identifier:  r.Identifier,
		IMDbID:      r.Media.IMDbID,
		QualityType: r.Meta.QualityType,
		IsDVD:       r.DVD,
		VideoCodec:  r.Meta.VideoCodec,
		AudioCodec:  r.Meta.AudioCodec,
		Width:       r.Meta.Width,
		Height:      r.Meta.Height,
		SizeMB:      r.Meta.SizeMB,
		Group:       r.Meta.Group,
		SourceMedia: r.Meta.Source,
		ParentDir:   r.ParentDir,
		DirName:     r.DirName,
		Ignored:     r.Ignored,
	}
	if q := r.Meta.Quality; q != nil {
		rec.Quality = q.Identifier
		rec.Is3D = q.Is3D
	}

	add := func(role classify.Role, files []string) {
		for _, f := range files {
			rec.Files = append(rec.Files, database.ReleaseFile{Path: f, Role: role.String()})
		}
	}
	add(classify.RoleMovie, r.Movie)
	add(classify.RoleMovieExtra, r.MovieExtra)
	add(classify.RoleSubtitle, r.Subtitle)
	add(classify.RoleSubtitleExtra, r.SubtitleExtra)
	add(classify.RoleNFO, r.NFO)
	add(classify.RoleTrailer, r.Trailer)
	add(classify.RoleLeftover, r.Leftover)
	return rec
}

// Save stores the releases of a scan and the movies they resolved to.
func (a *App) Save(root string, res *scanner.Result) error {
	if a.DB == nil {
		return errors.New("database not open")
	}

	var errs []error
	for _, r := range res.Releases {
		if info := r.Media.Info; info != nil && !r.Media.Stored {
			mov := &database.Movie{
				IMDbID:   r.Media.IMDbID,
				Title:    info.Title,
				Year:     info.Year,
				Overview: info.Overview,
				Genres:   info.Genres,
				Source:   "radarr",
			}
			if info.TmdbID > 0 {
				tmdb := info.TmdbID
				mov.TmdbID = &tmdb
			}
			if err := a.DB.UpsertMovie(mov); err != nil {
				errs = append(errs, fmt.Errorf("saving movie %s: %w", r.Media.IMDbID, err))
			}
		}
		if err := a.DB.SaveRelease(ReleaseRecord(root, r)); err != nil {
			errs = append(errs, fmt.Errorf("saving release %s: %w", r.Identifier, err))
		}
	}
	return errors.Join(errs...)
}

// RecordScan appends a finished scan of root to the history.
func (a *App) RecordScan(root string, started, finished time.Time, res *scanner.Result, scanErr error) error {
	if a.DB == nil {
		return nil
	}
	rec := &database.ScanRecord{
		Root:       root,
		StartedAt:  started,
		FinishedAt: finished,
	}
	if res != nil {
		rec.Releases = len(res.Releases)
		rec.Leftovers = len(res.Leftovers)
	}
	if scanErr != nil {
		rec.Error = scanErr.Error()
	}
	return a.DB.RecordScan(rec)
}

// Since returns the oldest last-successful scan time across roots. A root
// never scanned yields the zero time, which disables the filter.
func (a *App) Since(roots []string) time.Time {
	if a.DB == nil {
		return time.Time{}
	}
	var since time.Time
	for i, root := range roots {
		t, err := a.DB.LastSuccessfulScan(root)
		if err != nil {
			a.Logger.Warn("app", "Unable to read scan history", logging.F("root", root), logging.F("error", err))
			return time.Time{}
		}
		if t.IsZero() {
			return time.Time{}
		}
		if i == 0 || t.Before(since) {
			since = t
		}
	}
	return since
}

// Journal returns a found callback that records each release in the
// activity journal before calling next.
func (a *App) Journal(root string, next scanner.FoundFunc) scanner.FoundFunc {
	return func(r *scanner.Release, remaining, total int) {
		if a.Activity != nil {
			if err := a.Activity.Log(JournalEntry(root, r)); err != nil {
				a.Logger.Warn("app", "Unable to write activity journal", logging.F("error", err))
			}
		}
		if next != nil {
			next(r, remaining, total)
		}
	}
}

// JournalEntry summarizes a release for the activity journal.
func JournalEntry(root string, r *scanner.Release) activity.Entry {
	e := activity.Entry{
		Root:       root,
		Release:    r.Identifier,
		DirName:    r.DirName,
		IMDbID:     r.Media.IMDbID,
		Group:      r.Meta.Group,
		SizeMB:     r.Meta.SizeMB,
		Files:      len(r.Files()),
		DVD:        r.DVD,
		Ignored:    r.Ignored,
		Identified: r.Media.Identified(),
	}
	if q := r.Meta.Quality; q != nil {
		e.Quality = q.Identifier
	}
	if info := r.Media.Info; info != nil {
		e.Title, e.Year = info.Title, info.Year
	} else if len(r.Movie) > 0 {
		guess := naming.ReleaseNameYear(naming.RLSGuesser{}, r.DirName, r.Movie[0])
		e.Title, e.Year = guess.Name, guess.Year
	}
	return e
}
