package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/history"
)

// HistoryRepository archives history entries. It implements history.Sink so a
// Recorder can persist every detection it records.
type HistoryRepository struct {
	db *sql.DB
}

// History returns the history repository for this store.
func (s *Store) History() *HistoryRepository {
	return &HistoryRepository{db: s.db}
}

var _ history.Sink = (*HistoryRepository)(nil)

// Append inserts e into the archive.
func (r *HistoryRepository) Append(ctx context.Context, e history.Entry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO history_entries (id, gesture, distance, recorded_at_us) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), e.Gesture.String(), e.Distance, e.Timestamp.UnixMicro(),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to insert history entry", goerr.V("gesture", e.Gesture.String()))
	}
	return nil
}

// Recent returns the newest limit entries, oldest first.
func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]history.Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT gesture, distance, recorded_at_us FROM (
			SELECT seq, gesture, distance, recorded_at_us
			FROM history_entries
			ORDER BY seq DESC
			LIMIT ?
		) ORDER BY seq ASC`,
		limit,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query recent history", goerr.V("limit", limit))
	}
	defer rows.Close()

	return scanEntries(rows)
}

// List returns every archived entry, oldest first.
func (r *HistoryRepository) List(ctx context.Context) ([]history.Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT gesture, distance, recorded_at_us FROM history_entries ORDER BY seq ASC`,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list history")
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Count returns the number of archived entries.
func (r *HistoryRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history_entries`).Scan(&n); err != nil {
		return 0, goerr.Wrap(err, "failed to count history")
	}
	return n, nil
}

// Prune deletes entries recorded before cutoff and returns how many were removed.
func (r *HistoryRepository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM history_entries WHERE recorded_at_us < ?`, cutoff.UnixMicro(),
	)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to prune history", goerr.V("cutoff", cutoff))
	}
	return result.RowsAffected()
}

func scanEntries(rows *sql.Rows) ([]history.Entry, error) {
	var entries []history.Entry
	for rows.Next() {
		var (
			name string
			e    history.Entry
			us   int64
		)
		if err := rows.Scan(&name, &e.Distance, &us); err != nil {
			return nil, goerr.Wrap(err, "failed to scan history entry")
		}
		e.Gesture = gesture.Gesture(name)
		e.Timestamp = time.UnixMicro(us).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate history")
	}
	return entries, nil
}
