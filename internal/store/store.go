// Package store provides SQLite storage for archived gesture history.
package store

import (
	"database/sql"

	"github.com/m-mizutani/goerr/v2"
	_ "modernc.org/sqlite"
)

// Store represents a SQLite database connection for archiving detections.
type Store struct {
	db   *sql.DB
	path string
}

// New creates a new Store with the given database path.
// It opens the database connection and runs migrations.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("path", dbPath))
	}

	// Concurrent writers would otherwise hit SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, goerr.Wrap(err, "failed to set busy timeout", goerr.V("path", dbPath))
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, goerr.Wrap(err, "failed to run migrations", goerr.V("path", dbPath))
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}
