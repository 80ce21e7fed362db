// Package daemon runs the watch mode: periodic rescans, change-triggered
// rescans and an optional health server.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Nomadcxx/releasescan/internal/logging"
	"github.com/Nomadcxx/releasescan/internal/scanner"
	"github.com/Nomadcxx/releasescan/internal/tasks"
	"github.com/Nomadcxx/releasescan/internal/watcher"
)

const shutdownTimeout = 10 * time.Second

type Config struct {
	Periodic *scanner.PeriodicScanner
	Roots    []string
	// Watch enables fsnotify triggered rescans of Roots.
	Watch    bool
	Debounce time.Duration
	// Addr is the health server listen address. Empty disables it.
	Addr   string
	Secret string
	Tasks  *tasks.Tracker
	Stats  *Stats
	Logger *logging.Logger
}

// Daemon manages the background service
type Daemon struct {
	cfg    Config
	logger *logging.Logger
}

func New(cfg Config) (*Daemon, error) {
	if cfg.Periodic == nil {
		return nil, errors.New("daemon: periodic scanner is required")
	}
	if cfg.Tasks == nil {
		cfg.Tasks = &tasks.Tracker{}
	}
	if cfg.Stats == nil {
		cfg.Stats = NewStats()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Daemon{cfg: cfg, logger: logger}, nil
}

// Run blocks until ctx ends, SIGINT/SIGTERM arrives or a component fails.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	trigger := func() {
		if !d.cfg.Tasks.Go(func() { d.cfg.Periodic.Trigger(ctx) }) {
			d.logger.Debug("daemon", "Rescan request dropped during shutdown")
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return d.cfg.Periodic.Start(gctx)
	})

	if d.cfg.Watch {
		w, err := watcher.NewWatcher(d.cfg.Roots, func(string) { trigger() },
			watcher.WithDebounce(d.cfg.Debounce),
			watcher.WithLogger(d.logger))
		if err != nil {
			return fmt.Errorf("starting watcher: %w", err)
		}
		defer w.Close()
		g.Go(func() error {
			return w.Run(gctx)
		})
	}

	if d.cfg.Addr != "" {
		srv := NewServer(ServerConfig{
			Addr:     d.cfg.Addr,
			Periodic: d.cfg.Periodic,
			Stats:    d.cfg.Stats,
			Tasks:    d.cfg.Tasks,
			Trigger:  trigger,
			Secret:   d.cfg.Secret,
			Logger:   d.logger,
		})
		g.Go(srv.Start)
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	d.logger.Info("daemon", "Watching roots",
		logging.F("roots", len(d.cfg.Roots)),
		logging.F("fsnotify", d.cfg.Watch),
		logging.F("addr", d.cfg.Addr))

	err := g.Wait()

	d.logger.Info("daemon", "Stopping, waiting for running scans")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := d.cfg.Tasks.Shutdown(shutdownCtx); serr != nil {
		d.logger.Warn("daemon", "Scans still running at exit", logging.F("active", d.cfg.Tasks.ActiveTasks()))
	}
	return err
}
