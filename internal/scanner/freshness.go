package scanner

import (
	"time"

	"github.com/Nomadcxx/releasescan/internal/logging"
)

// stillChanging reports whether a release looks like it is still being
// written: a file vanished, or every file was modified within the grace
// period.
func (s *Scanner) stillChanging(r *Release) bool {
	if s.cfg.GracePeriod <= 0 {
		return false
	}
	cutoff := s.now().Add(-s.cfg.GracePeriod)

	recent := 0
	for _, path := range r.unsorted {
		info, err := s.fs.Stat(path)
		if err != nil {
			s.logger.Info("scanner", "File vanished during scan", logging.F("path", path))
			return true
		}
		if info.ModTime().After(cutoff) {
			recent++
		}
	}
	return len(r.unsorted) > 0 && recent == len(r.unsorted)
}

// touchedSince reports whether any file of the release was modified or
// accessed after t.
func (s *Scanner) touchedSince(r *Release, t time.Time) bool {
	for _, path := range r.unsorted {
		info, err := s.fs.Stat(path)
		if err != nil {
			continue
		}
		if info.ModTime().After(t) || accessTime(info).After(t) {
			return true
		}
	}
	return false
}
