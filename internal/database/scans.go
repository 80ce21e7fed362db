package database

import (
	"database/sql"
	"time"
)

// ScanRecord is one finished scan of a root.
type ScanRecord struct {
	ID         int64
	Root       string
	StartedAt  time.Time
	FinishedAt time.Time
	Releases   int
	Leftovers  int
	Error      string
}

// RecordScan appends a scan to the history.
func (m *MediaDB) RecordScan(rec *ScanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	result, err := m.db.Exec(`
		INSERT INTO scans (root, started_at, finished_at, releases, leftovers, error)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Root, rec.StartedAt, rec.FinishedAt, rec.Releases, rec.Leftovers, rec.Error,
	)
	if err != nil {
		return err
	}
	rec.ID, _ = result.LastInsertId()
	return nil
}

// LastSuccessfulScan returns when the last error-free scan of root started.
// The zero time means root was never scanned successfully.
func (m *MediaDB) LastSuccessfulScan(root string) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var started time.Time
	err := m.db.QueryRow(`
		SELECT started_at FROM scans
		WHERE root = ? AND error = ''
		ORDER BY started_at DESC LIMIT 1`, root).Scan(&started)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	return started, err
}
