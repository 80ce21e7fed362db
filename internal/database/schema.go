package database

import "database/sql"

const currentSchemaVersion = 2

var migrations = []migration{
	{
		version: 1,
		up: []string{
			`CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY,
				applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,

			`CREATE TABLE movies (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				imdb_id TEXT NOT NULL UNIQUE,
				tmdb_id INTEGER,
				title TEXT NOT NULL DEFAULT '',
				title_normalized TEXT NOT NULL DEFAULT '',
				year INTEGER,
				overview TEXT NOT NULL DEFAULT '',
				genres TEXT NOT NULL DEFAULT '',

				-- where the record came from: radarr, manual, scan
				source TEXT NOT NULL DEFAULT 'scan',

				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_movies_normalized ON movies(title_normalized, year)`,

			`CREATE TABLE releases (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				root TEXT NOT NULL,
				identifier TEXT NOT NULL,
				imdb_id TEXT,
				quality TEXT NOT NULL DEFAULT '',
				quality_type TEXT NOT NULL DEFAULT '',
				is_3d INTEGER NOT NULL DEFAULT 0,
				is_dvd INTEGER NOT NULL DEFAULT 0,
				video_codec TEXT NOT NULL DEFAULT '',
				audio_codec TEXT NOT NULL DEFAULT '',
				width INTEGER NOT NULL DEFAULT 0,
				height INTEGER NOT NULL DEFAULT 0,
				size_mb REAL NOT NULL DEFAULT 0,
				release_group TEXT NOT NULL DEFAULT '',
				source_media TEXT NOT NULL DEFAULT '',
				parent_dir TEXT NOT NULL DEFAULT '',
				dir_name TEXT NOT NULL DEFAULT '',
				ignored INTEGER NOT NULL DEFAULT 0,

				first_seen_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				last_seen_at DATETIME DEFAULT CURRENT_TIMESTAMP,

				UNIQUE(root, identifier)
			)`,
			`CREATE INDEX idx_releases_imdb ON releases(imdb_id)`,

			`CREATE TABLE release_files (
				release_id INTEGER NOT NULL REFERENCES releases(id) ON DELETE CASCADE,
				path TEXT NOT NULL,
				role TEXT NOT NULL,
				PRIMARY KEY (release_id, path)
			)`,

			`INSERT INTO schema_version (version) VALUES (1)`,
		},
	},
	{
		version: 2,
		up: []string{
			`CREATE TABLE scans (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				root TEXT NOT NULL,
				started_at DATETIME NOT NULL,
				finished_at DATETIME NOT NULL,
				releases INTEGER NOT NULL DEFAULT 0,
				leftovers INTEGER NOT NULL DEFAULT 0,
				error TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE INDEX idx_scans_root ON scans(root, started_at)`,
			`INSERT INTO schema_version (version) VALUES (2)`,
		},
	},
}

type migration struct {
	version int
	up      []string
}

// applyMigrations applies any pending schema migrations
func applyMigrations(db *sql.DB) error {
	var currentVersion int
	err := db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&currentVersion)
	if err != nil {
		// schema_version doesn't exist yet - this is a fresh database
		currentVersion = 0
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}

		for _, stmt := range m.up {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return err
			}
		}

		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}

// SchemaVersion returns the applied schema version.
func (m *MediaDB) SchemaVersion() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var v int
	err := m.db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&v)
	return v, err
}
