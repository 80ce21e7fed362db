package database

// Stats represents database statistics
type Stats struct {
	MoviesCount     int
	ReleasesCount   int
	IdentifiedCount int
	IgnoredCount    int
	ScansCount      int
}

// GetStats returns database statistics
func (m *MediaDB) GetStats() (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var stats Stats

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM movies`, &stats.MoviesCount},
		{`SELECT COUNT(*) FROM releases`, &stats.ReleasesCount},
		{`SELECT COUNT(*) FROM releases WHERE imdb_id IS NOT NULL`, &stats.IdentifiedCount},
		{`SELECT COUNT(*) FROM releases WHERE ignored = 1`, &stats.IgnoredCount},
		{`SELECT COUNT(*) FROM scans`, &stats.ScansCount},
	}
	for _, c := range counts {
		if err := m.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}

	return &stats, nil
}
