// Package app assembles a scanner and its collaborators from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/Nomadcxx/releasescan/internal/activity"
	"github.com/Nomadcxx/releasescan/internal/classify"
	"github.com/Nomadcxx/releasescan/internal/config"
	"github.com/Nomadcxx/releasescan/internal/database"
	"github.com/Nomadcxx/releasescan/internal/logging"
	"github.com/Nomadcxx/releasescan/internal/mediainfo"
	"github.com/Nomadcxx/releasescan/internal/naming"
	"github.com/Nomadcxx/releasescan/internal/nfo"
	"github.com/Nomadcxx/releasescan/internal/quality"
	"github.com/Nomadcxx/releasescan/internal/radarr"
	"github.com/Nomadcxx/releasescan/internal/scanner"
	"github.com/Nomadcxx/releasescan/internal/subtitles"
	"github.com/Nomadcxx/releasescan/internal/tasks"
)

// Options select the optional parts an App opens.
type Options struct {
	// Database opens the release database.
	Database bool
	// Journal opens the found-release journal when enabled in config.
	Journal bool
	// Offline skips Radarr even when configured.
	Offline bool
	// Fs overrides the filesystem; tests pass afero.NewMemMapFs.
	Fs afero.Fs
}

// App holds everything a command needs to scan.
type App struct {
	Config   *config.Config
	Logger   *logging.Logger
	Scanner  *scanner.Scanner
	Tasks    *tasks.Tracker
	DB       *database.MediaDB
	Activity *activity.Logger
	Radarr   *radarr.Client
}

// ScannerConfig converts the scanner section of cfg.
func ScannerConfig(cfg *config.Config) scanner.Config {
	s := cfg.Scanner
	return scanner.Config{
		Sizes: classify.Sizes{
			Movie:    classify.SizeRange{MinMB: s.Sizes.Movie.MinMB, MaxMB: s.Sizes.Movie.MaxMB},
			Trailer:  classify.SizeRange{MinMB: s.Sizes.Trailer.MinMB, MaxMB: s.Sizes.Trailer.MaxMB},
			Backdrop: classify.SizeRange{MinMB: s.Sizes.Backdrop.MinMB, MaxMB: s.Sizes.Backdrop.MaxMB},
		},
		GracePeriod:    s.GracePeriod(),
		MaxActiveTasks: s.Backpressure.MaxActiveTasks,
		PollInterval:   s.PollInterval(),
		MaxWait:        s.MaxWait(),
		StatWorkers:    s.StatWorkers,
		FollowSymlinks: s.FollowSymlinks,
	}
}

// New builds an App. Close releases what it opened.
func New(cfg *config.Config, logger *logging.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	a := &App{
		Config: cfg,
		Logger: logger,
		Tasks:  &tasks.Tracker{},
	}

	d := scanner.Delegates{
		Quality:   quality.Guesser{},
		Subtitles: subtitles.NewDetector(fs),
		IMDb:      nfo.Finder{},
		Titles:    naming.RLSGuesser{},
		Host:      a.Tasks,
	}

	if cfg.Probe.Enabled {
		prober := mediainfo.NewProber(cfg.Probe.FFprobe)
		if prober.Available() {
			d.Container = NewContainer(prober)
		} else {
			logger.Warn("app", "ffprobe not found, container metadata disabled", logging.F("ffprobe", prober.Path))
		}
	}

	if cfg.Radarr.Enabled && !opts.Offline {
		a.Radarr = radarr.NewClient(radarr.Config{
			URL:     cfg.Radarr.URL,
			APIKey:  cfg.Radarr.APIKey,
			Timeout: time.Duration(cfg.Radarr.TimeoutSeconds) * time.Second,
		})
		catalog := NewCatalog(a.Radarr)
		d.Search = catalog
		d.Info = catalog
	}

	if opts.Database {
		db, err := database.OpenPath(cfg.DatabasePath())
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		a.DB = db
		d.Store = NewStore(db)
	}

	if opts.Journal && cfg.Activity.Enabled {
		journal, err := activity.NewLogger(cfg.ActivityDir())
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("opening activity journal: %w", err)
		}
		a.Activity = journal
		if removed, err := journal.PruneOld(cfg.Activity.RetentionDays); err != nil {
			logger.Warn("app", "Unable to prune activity journal", logging.F("error", err))
		} else if removed > 0 {
			logger.Debug("app", "Pruned activity journal", logging.F("files", removed))
		}
	}

	a.Scanner = scanner.New(ScannerConfig(cfg), d,
		scanner.WithFs(fs),
		scanner.WithLogger(logger))
	return a, nil
}

// CheckRadarr pings Radarr when it is configured.
func (a *App) CheckRadarr(ctx context.Context) error {
	if a.Radarr == nil {
		return nil
	}
	return a.Radarr.Ping(ctx)
}

func (a *App) Close() error {
	var errs []error
	if a.Activity != nil {
		errs = append(errs, a.Activity.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
