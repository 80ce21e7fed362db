package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Nomadcxx/releasescan/internal/logging"
)

func TestPeriodicScanner_IsHealthy_DefaultTrue(t *testing.T) {
	s := NewPeriodicScanner(PeriodicConfig{Interval: time.Minute})

	if !s.IsHealthy() {
		t.Error("expected scanner to be healthy by default")
	}
}

func TestPeriodicScanner_Status_ReturnsCorrectState(t *testing.T) {
	now := time.Now()
	s := &PeriodicScanner{
		healthy:      false,
		lastScan:     now,
		lastSuccess:  now,
		lastError:    errors.New("boom"),
		skippedTicks: 5,
		releases:     3,
	}

	status := s.Status()

	if status.Healthy {
		t.Error("expected healthy=false")
	}
	if status.SkippedTicks != 5 {
		t.Errorf("expected skippedTicks=5, got %d", status.SkippedTicks)
	}
	if status.LastError != "boom" {
		t.Errorf("expected last error boom, got %q", status.LastError)
	}
	if status.Releases != 3 {
		t.Errorf("expected releases=3, got %d", status.Releases)
	}
}

func TestPeriodicScanner_SkipsWhenBusy(t *testing.T) {
	s := &PeriodicScanner{
		scanning: true,
		logger:   logging.Nop(),
	}

	s.tick(context.Background())

	if s.skippedTicks != 1 {
		t.Errorf("expected skippedTicks=1, got %d", s.skippedTicks)
	}
}

func TestPeriodicScanner_StartStopsOnContextCancel(t *testing.T) {
	s := NewPeriodicScanner(PeriodicConfig{
		Interval: 100 * time.Millisecond,
		Logger:   logging.Nop(),
	})

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)

	var startErr error
	go func() {
		defer wg.Done()
		startErr = s.Start(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	wg.Wait()

	if startErr != nil {
		t.Errorf("expected nil error on clean shutdown, got %v", startErr)
	}
}

func TestPeriodicScanner_ReportsOnlyNewReleases(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "First.Movie.2001.mkv"), 700)

	var found []string
	s := NewPeriodicScanner(PeriodicConfig{
		Interval: time.Hour,
		Roots:    []string{root},
		Scanner:  newTestScanner(testDelegates()),
		Logger:   logging.Nop(),
		OnFound:  func(r *Release, _, _ int) { found = append(found, r.Identifier) },
	})

	s.Trigger(context.Background())
	if len(found) != 1 || found[0] != "first movie 2001" {
		t.Fatalf("expected first movie on initial scan, got %v", found)
	}

	// Nothing changed, so the second pass reports nothing.
	s.Trigger(context.Background())
	if len(found) != 1 {
		t.Fatalf("expected no new releases, got %v", found)
	}

	status := s.Status()
	if !status.Healthy || status.LastSuccess.IsZero() {
		t.Errorf("expected healthy status with a last success, got %+v", status)
	}
}

func TestPeriodicScanner_MissingRootMarksUnhealthy(t *testing.T) {
	s := NewPeriodicScanner(PeriodicConfig{
		Interval: time.Hour,
		Roots:    []string{filepath.Join(t.TempDir(), "missing")},
		Scanner:  newTestScanner(testDelegates()),
		Logger:   logging.Nop(),
	})

	s.Trigger(context.Background())

	status := s.Status()
	if status.Healthy {
		t.Error("expected unhealthy after missing root")
	}
	if status.LastError == "" {
		t.Error("expected last error to be recorded")
	}
}

func TestPeriodicScanner_OnCompleteReportsPass(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "First.Movie.2001.mkv"), 700)
	missing := filepath.Join(t.TempDir(), "missing")

	var reports []PassReport
	s := NewPeriodicScanner(PeriodicConfig{
		Interval:   time.Hour,
		Roots:      []string{root, missing},
		Scanner:    newTestScanner(testDelegates()),
		Logger:     logging.Nop(),
		OnComplete: func(r PassReport) { reports = append(reports, r) },
	})

	s.Trigger(context.Background())

	if len(reports) != 1 {
		t.Fatalf("expected one report, got %d", len(reports))
	}
	r := reports[0]
	if r.Releases != 1 {
		t.Errorf("expected 1 release from the good root, got %d", r.Releases)
	}
	if !errors.Is(r.Err, ErrRootNotFound) {
		t.Errorf("expected ErrRootNotFound, got %v", r.Err)
	}
	if _, ok := r.Failed[missing]; !ok || len(r.Failed) != 1 {
		t.Errorf("expected only the missing root to fail, got %v", r.Failed)
	}
	if r.Finished.Before(r.Started) {
		t.Error("finished before started")
	}
}

func TestPeriodicScanner_ReportsReleaseDeferredAsStillChanging(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Fresh.Movie.2010.mkv")
	touch(t, path, 700)

	base := time.Now()
	recent := base.Add(-30 * time.Second)
	if err := os.Chtimes(path, recent, recent); err != nil {
		t.Fatal(err)
	}

	now := base
	var found []string
	s := NewPeriodicScanner(PeriodicConfig{
		Interval: time.Hour,
		Roots:    []string{root},
		Scanner:  newTestScanner(testDelegates(), WithClock(func() time.Time { return now })),
		Logger:   logging.Nop(),
		OnFound:  func(r *Release, _, _ int) { found = append(found, r.Identifier) },
	})

	s.Trigger(context.Background())
	if len(found) != 0 {
		t.Fatalf("expected the release to be deferred while still changing, got %v", found)
	}

	now = base.Add(5 * time.Minute)
	s.Trigger(context.Background())
	if len(found) != 1 || found[0] != "fresh movie 2010" {
		t.Fatalf("expected the deferred release on the next pass, got %v", found)
	}

	now = base.Add(10 * time.Minute)
	s.Trigger(context.Background())
	if len(found) != 1 {
		t.Errorf("expected no repeat report, got %v", found)
	}
}

func TestPeriodicScanner_CancelledPassKeepsWatermark(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "First.Movie.2001.mkv"), 700)

	var reports []PassReport
	var found []string
	s := NewPeriodicScanner(PeriodicConfig{
		Interval:   time.Hour,
		Roots:      []string{root},
		Scanner:    newTestScanner(testDelegates()),
		Logger:     logging.Nop(),
		OnFound:    func(r *Release, _, _ int) { found = append(found, r.Identifier) },
		OnComplete: func(r PassReport) { reports = append(reports, r) },
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Trigger(ctx)

	status := s.Status()
	if !status.LastSuccess.IsZero() {
		t.Errorf("expected no successful pass, got %v", status.LastSuccess)
	}
	if !status.Healthy {
		t.Error("an interrupted pass should not mark the scanner unhealthy")
	}
	if len(reports) != 1 || !errors.Is(reports[0].Failed[root], ErrInterrupted) {
		t.Fatalf("expected the root reported as interrupted, got %+v", reports)
	}

	s.Trigger(context.Background())
	if len(found) != 1 || found[0] != "first movie 2001" {
		t.Errorf("expected the next pass to report the release, got %v", found)
	}
}
