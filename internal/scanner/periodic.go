package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Nomadcxx/releasescan/internal/logging"
)

// PeriodicConfig configures a PeriodicScanner.
type PeriodicConfig struct {
	Interval time.Duration
	Roots    []string
	Scanner  *Scanner
	Logger   *logging.Logger
	OnFound  FoundFunc
	// Since seeds the newer-than filter of the first scan.
	Since time.Time
	// OnComplete, when set, is called after every pass.
	OnComplete func(PassReport)
}

// PassReport describes one finished periodic pass.
type PassReport struct {
	Started  time.Time
	Finished time.Time
	Roots    []string
	Releases int
	Err      error
	// Failed holds the error of each root whose scan failed.
	Failed map[string]error
}

// PeriodicStatus is a snapshot of the periodic scanner state.
type PeriodicStatus struct {
	Healthy      bool      `json:"healthy"`
	LastScan     time.Time `json:"last_scan"`
	LastSuccess  time.Time `json:"last_success"`
	LastError    string    `json:"last_error,omitempty"`
	SkippedTicks int64     `json:"skipped_ticks"`
	Scanning     bool      `json:"scanning"`
	Releases     int       `json:"releases"`
}

// PeriodicScanner rescans roots on an interval, only reporting releases
// touched since the last successful pass. The newer-than watermark trails
// the pass start by the grace period, so a release deferred as still
// changing is picked up by a later pass.
type PeriodicScanner struct {
	interval time.Duration
	roots    []string
	scanner  *Scanner
	logger   *logging.Logger
	onFound  FoundFunc
	onDone   func(PassReport)

	mu           sync.Mutex
	scanning     bool
	lastScan     time.Time
	lastSuccess  time.Time
	watermark    time.Time
	lastError    error
	skippedTicks int64
	releases     int

	healthy bool
}

// NewPeriodicScanner creates a periodic scanner.
func NewPeriodicScanner(cfg PeriodicConfig) *PeriodicScanner {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	s := &PeriodicScanner{
		interval:    cfg.Interval,
		roots:       cfg.Roots,
		scanner:     cfg.Scanner,
		logger:      logger,
		onFound:     cfg.OnFound,
		onDone:      cfg.OnComplete,
		lastSuccess: cfg.Since,
		healthy:     true,
	}
	if !cfg.Since.IsZero() {
		s.watermark = s.trail(cfg.Since)
	}
	return s
}

func (s *PeriodicScanner) now() time.Time {
	if s.scanner != nil && s.scanner.now != nil {
		return s.scanner.now()
	}
	return time.Now()
}

// trail moves t back by the still-changing grace period.
func (s *PeriodicScanner) trail(t time.Time) time.Time {
	if s.scanner == nil {
		return t
	}
	return t.Add(-s.scanner.cfg.GracePeriod)
}

// IsHealthy reports whether the last scan succeeded.
func (s *PeriodicScanner) IsHealthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.healthy
}

// Status returns the current state.
func (s *PeriodicScanner) Status() PeriodicStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := PeriodicStatus{
		Healthy:      s.healthy,
		LastScan:     s.lastScan,
		LastSuccess:  s.lastSuccess,
		SkippedTicks: s.skippedTicks,
		Scanning:     s.scanning,
		Releases:     s.releases,
	}
	if s.lastError != nil {
		status.LastError = s.lastError.Error()
	}
	return status
}

// Start runs a scan immediately and then on every tick. Blocks until ctx is
// cancelled.
func (s *PeriodicScanner) Start(ctx context.Context) error {
	s.logger.Info("scanner", "Periodic scanner starting",
		logging.F("interval", s.interval.String()),
		logging.F("roots", len(s.roots)))

	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scanner", "Periodic scanner stopped")
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// Trigger runs one scan now unless one is already running.
func (s *PeriodicScanner) Trigger(ctx context.Context) {
	s.tick(ctx)
}

func (s *PeriodicScanner) tick(ctx context.Context) {
	s.mu.Lock()
	if s.scanning {
		s.skippedTicks++
		s.mu.Unlock()
		s.logger.Warn("scanner", "Periodic scan skipped, previous scan still running",
			logging.F("skipped_ticks", s.skippedTicks))
		return
	}
	s.scanning = true
	since := s.watermark
	s.mu.Unlock()

	started := s.now()
	found, failed, err := s.runScan(ctx, since)
	finished := s.now()
	interrupted := err != nil && len(failed) > 0 && len(failed) == countInterrupted(failed)

	s.mu.Lock()
	s.scanning = false
	s.lastScan = finished
	s.releases += found
	switch {
	case err == nil:
		s.lastSuccess = started
		s.watermark = s.trail(started)
		s.lastError = nil
		s.healthy = true
	case interrupted:
		// Stopped, not failed: keep the watermark for the next pass.
	default:
		s.lastError = err
		s.healthy = false
	}
	s.mu.Unlock()

	if interrupted {
		s.logger.Info("scanner", "Periodic scan interrupted", logging.F("roots", len(failed)))
	} else if err != nil {
		s.logger.Error("scanner", "Periodic scan failed", err)
	}
	if s.onDone != nil {
		s.onDone(PassReport{Started: started, Finished: finished, Roots: s.roots, Releases: found, Err: err, Failed: failed})
	}
}

func (s *PeriodicScanner) runScan(ctx context.Context, since time.Time) (found int, failed map[string]error, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scan panic: %v", r)
			s.logger.Error("scanner", "Panic during periodic scan", err)
		}
	}()

	var errs []error
	fail := func(root string, err error) {
		if failed == nil {
			failed = make(map[string]error)
		}
		failed[root] = err
		errs = append(errs, err)
	}
	for _, root := range s.roots {
		if ctx.Err() != nil {
			fail(root, fmt.Errorf("%w: %s", ErrInterrupted, root))
			continue
		}
		res, scanErr := s.scanner.Scan(ctx, Request{
			Root:          root,
			NewerThan:     since,
			CheckFileDate: true,
			OnFound:       s.onFound,
		})
		if scanErr != nil {
			fail(root, scanErr)
			continue
		}
		found += len(res.Releases)
		if res.Partial {
			fail(root, fmt.Errorf("%w: %s", ErrInterrupted, root))
		}
	}
	return found, failed, errors.Join(errs...)
}

func countInterrupted(failed map[string]error) int {
	n := 0
	for _, err := range failed {
		if errors.Is(err, ErrInterrupted) {
			n++
		}
	}
	return n
}
