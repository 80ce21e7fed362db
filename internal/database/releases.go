package database

import (
	"database/sql"
	"fmt"
	"time"
)

// Release is a stored release found by a scan.
type Release struct {
	ID          int64
	Root        string
	Identifier  string
	IMDbID      string
	Quality     string
	QualityType string
	Is3D        bool
	IsDVD       bool
	VideoCodec  string
	AudioCodec  string
	Width       int
	Height      int
	SizeMB      float64
	Group       string
	SourceMedia string
	ParentDir   string
	DirName     string
	Ignored     bool
	FirstSeenAt time.Time
	LastSeenAt  time.Time
	Files       []ReleaseFile
}

// ReleaseFile is one file of a release with its role.
type ReleaseFile struct {
	Path string
	Role string
}

// SaveRelease stores rel, keyed by root and identifier. A release seen
// again keeps its first-seen time and gets its file list replaced.
func (m *MediaDB) SaveRelease(rel *Release) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()

	tx, err := m.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var imdb any
	if rel.IMDbID != "" {
		imdb = rel.IMDbID
	}

	err = tx.QueryRow(`
		INSERT INTO releases (
			root, identifier, imdb_id, quality, quality_type, is_3d, is_dvd,
			video_codec, audio_codec, width, height, size_mb, release_group,
			source_media, parent_dir, dir_name, ignored, first_seen_at, last_seen_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(root, identifier) DO UPDATE SET
			imdb_id = COALESCE(excluded.imdb_id, releases.imdb_id),
			quality = excluded.quality,
			quality_type = excluded.quality_type,
			is_3d = excluded.is_3d,
			is_dvd = excluded.is_dvd,
			video_codec = excluded.video_codec,
			audio_codec = excluded.audio_codec,
			width = excluded.width,
			height = excluded.height,
			size_mb = excluded.size_mb,
			release_group = excluded.release_group,
			source_media = excluded.source_media,
			parent_dir = excluded.parent_dir,
			dir_name = excluded.dir_name,
			ignored = excluded.ignored,
			last_seen_at = excluded.last_seen_at
		RETURNING id, first_seen_at`,
		rel.Root, rel.Identifier, imdb, rel.Quality, rel.QualityType, rel.Is3D, rel.IsDVD,
		rel.VideoCodec, rel.AudioCodec, rel.Width, rel.Height, rel.SizeMB, rel.Group,
		rel.SourceMedia, rel.ParentDir, rel.DirName, rel.Ignored, now, now,
	).Scan(&rel.ID, &rel.FirstSeenAt)
	if err != nil {
		return fmt.Errorf("failed to save release %q: %w", rel.Identifier, err)
	}
	rel.LastSeenAt = now

	if _, err := tx.Exec(`DELETE FROM release_files WHERE release_id = ?`, rel.ID); err != nil {
		return err
	}
	for _, f := range rel.Files {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO release_files (release_id, path, role) VALUES (?, ?, ?)`,
			rel.ID, f.Path, f.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}

const releaseColumns = `id, root, identifier, COALESCE(imdb_id, ''), quality, quality_type, is_3d, is_dvd,
	video_codec, audio_codec, width, height, size_mb, release_group, source_media,
	parent_dir, dir_name, ignored, first_seen_at, last_seen_at`

func scanRelease(row interface{ Scan(...any) error }) (*Release, error) {
	var r Release
	err := row.Scan(
		&r.ID, &r.Root, &r.Identifier, &r.IMDbID, &r.Quality, &r.QualityType, &r.Is3D, &r.IsDVD,
		&r.VideoCodec, &r.AudioCodec, &r.Width, &r.Height, &r.SizeMB, &r.Group, &r.SourceMedia,
		&r.ParentDir, &r.DirName, &r.Ignored, &r.FirstSeenAt, &r.LastSeenAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRelease returns the release stored for root and identifier, files
// included, or nil.
func (m *MediaDB) GetRelease(root, identifier string) (*Release, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, err := scanRelease(m.db.QueryRow(`SELECT `+releaseColumns+` FROM releases WHERE root = ? AND identifier = ?`, root, identifier))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := m.db.Query(`SELECT path, role FROM release_files WHERE release_id = ? ORDER BY path`, r.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var f ReleaseFile
		if err := rows.Scan(&f.Path, &f.Role); err != nil {
			return nil, err
		}
		r.Files = append(r.Files, f)
	}
	return r, rows.Err()
}

// ListReleases returns the most recently seen releases, newest first. A
// limit of zero returns all of them.
func (m *MediaDB) ListReleases(limit int) ([]*Release, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	query := `SELECT ` + releaseColumns + ` FROM releases ORDER BY last_seen_at DESC, identifier`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := m.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var releases []*Release
	for rows.Next() {
		r, err := scanRelease(rows)
		if err != nil {
			return nil, err
		}
		releases = append(releases, r)
	}
	return releases, rows.Err()
}
