package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/releasescan/internal/app"
	"github.com/Nomadcxx/releasescan/internal/config"
	"github.com/Nomadcxx/releasescan/internal/daemon"
	"github.com/Nomadcxx/releasescan/internal/logging"
	"github.com/Nomadcxx/releasescan/internal/scanner"
)

func newWatchCmd() *cobra.Command {
	var (
		interval time.Duration
		addr     string
		secret   string
		noNotify bool
	)

	cmd := &cobra.Command{
		Use:   "watch [roots...]",
		Short: "Rescan folders periodically and on change",
		Long: `Watch download folders and report new releases as they settle.

Each pass only reports releases touched since the last successful pass;
the first pass resumes from the scan history in the database. File changes
trigger an extra pass once they have been quiet for the debounce period.
Roots default to watch.roots from the config file.

Examples:
  releasescan watch
  releasescan watch /downloads/movies --interval 5m
  releasescan watch --addr :8686 --secret hunter2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Close()

			roots := args
			if len(roots) == 0 {
				roots = cfg.Watch.Roots
			}
			if len(roots) == 0 {
				return errors.New("no roots to watch (pass them as arguments or set watch.roots)")
			}
			for i, root := range roots {
				abs, err := filepath.Abs(root)
				if err != nil {
					return err
				}
				roots[i] = abs
			}

			if interval <= 0 {
				interval = config.Duration(cfg.Watch.Interval, 15*time.Minute)
			}

			a, err := app.New(cfg, logger, app.Options{Database: true, Journal: true})
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.CheckRadarr(context.Background()); err != nil {
				logger.Warn("watch", "Radarr unreachable", logging.F("error", err))
			}

			stats := daemon.NewStats()
			periodic := scanner.NewPeriodicScanner(scanner.PeriodicConfig{
				Interval: interval,
				Roots:    roots,
				Scanner:  a.Scanner,
				Logger:   logger,
				Since:    a.Since(roots),
				OnFound: func(r *scanner.Release, remaining, total int) {
					stats.Record(r)
					if a.Activity != nil {
						if err := a.Activity.Log(app.JournalEntry(rootOf(roots, r.ParentDir), r)); err != nil {
							logger.Warn("watch", "Unable to write activity journal", logging.F("error", err))
						}
					}
					logger.Info("watch", "Release found",
						logging.F("release", r.Identifier),
						logging.F("imdb", r.Media.IMDbID),
						logging.F("remaining", remaining))
				},
				OnComplete: func(p scanner.PassReport) {
					for _, root := range p.Roots {
						rootErr := p.Failed[root]
						if rootErr == nil && p.Failed == nil {
							rootErr = p.Err
						}
						if errors.Is(rootErr, scanner.ErrInterrupted) {
							continue
						}
						if err := a.RecordScan(root, p.Started, p.Finished, nil, rootErr); err != nil {
							logger.Warn("watch", "Unable to record scan", logging.F("error", err))
						}
					}
				},
			})

			d, err := daemon.New(daemon.Config{
				Periodic: periodic,
				Roots:    roots,
				Watch:    !noNotify,
				Debounce: config.Duration(cfg.Watch.Debounce, 30*time.Second),
				Addr:     addr,
				Secret:   secret,
				Tasks:    a.Tasks,
				Stats:    stats,
				Logger:   logger,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %d root(s) every %s. Press Ctrl+C to stop.\n", len(roots), interval)
			return d.Run(cmd.Context())
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "time between passes (default: watch.interval)")
	cmd.Flags().StringVar(&addr, "addr", "", "health server listen address, e.g. :8686")
	cmd.Flags().StringVar(&secret, "secret", "", "shared secret for POST /api/v1/scan")
	cmd.Flags().BoolVar(&noNotify, "no-fsnotify", false, "disable change-triggered rescans")

	return cmd
}

// rootOf returns the root containing dir.
func rootOf(roots []string, dir string) string {
	for _, root := range roots {
		if rel, err := filepath.Rel(root, dir); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return root
		}
	}
	return ""
}
