package daemon

import (
	"sync"
	"time"

	"github.com/Nomadcxx/releasescan/internal/scanner"
)

type Stats struct {
	mu         sync.RWMutex
	found      int64
	identified int64
	ignored    int64
	sizeMB     float64
	lastFound  time.Time
	startTime  time.Time
}

type StatsSnapshot struct {
	Found      int64
	Identified int64
	Ignored    int64
	SizeMB     float64
	LastFound  time.Time
	Uptime     time.Duration
}

func NewStats() *Stats {
	return &Stats{startTime: time.Now()}
}

// Record counts a reported release.
func (s *Stats) Record(r *scanner.Release) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.found++
	if r.Media.Identified() {
		s.identified++
	}
	if r.Ignored {
		s.ignored++
	}
	s.sizeMB += r.Meta.SizeMB
	s.lastFound = time.Now()
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StatsSnapshot{
		Found:      s.found,
		Identified: s.identified,
		Ignored:    s.ignored,
		SizeMB:     s.sizeMB,
		LastFound:  s.lastFound,
		Uptime:     time.Since(s.startTime),
	}
}
