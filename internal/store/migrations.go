package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// History entries table - one row per recorded detection, in insertion order
		`CREATE TABLE IF NOT EXISTS history_entries (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			gesture TEXT NOT NULL,
			distance REAL NOT NULL,
			recorded_at_us INTEGER NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_history_entries_recorded_at ON history_entries(recorded_at_us)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
