// Package store persists completed match logs to SQLite so downstream
// analysis can query past matches without re-parsing export files.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure-Go sqlite driver

	"github.com/okian/matchlog/internal/domain/model"
	"github.com/okian/matchlog/pkg/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	match_id      INTEGER NOT NULL,
	possession_id TEXT    NOT NULL,
	timestamp     TEXT    NOT NULL,
	team          TEXT    NOT NULL,
	player_id     INTEGER NOT NULL,
	action        TEXT    NOT NULL,
	zone          TEXT    NOT NULL,
	pressure      INTEGER NOT NULL,
	team_status   TEXT    NOT NULL,
	outcome       TEXT    NOT NULL,
	xg_change     REAL    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_match ON events(match_id);
`

// Store is a SQLite-backed event-log sink.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema. Use ":memory:" for an ephemeral store.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveMatch writes a match's full record sequence in one transaction,
// preserving log order.
func (s *Store) SaveMatch(ctx context.Context, matchID int, records []model.EventRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("begin tx: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events
			(match_id, possession_id, timestamp, team, player_id, action, zone, pressure, team_status, outcome, xg_change)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		metrics.RecordStoreError()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			matchID,
			rec.PossessionID,
			rec.Timestamp.UTC().Format(time.RFC3339),
			string(rec.Team),
			rec.PlayerID,
			string(rec.Action),
			rec.Zone,
			rec.Pressure,
			string(rec.TeamStatus),
			string(rec.Outcome),
			rec.XGChange,
		); err != nil {
			_ = tx.Rollback()
			metrics.RecordStoreError()
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("commit: %w", err)
	}
	metrics.RecordStoreWrite()
	return nil
}

// Events reads back a match's records in insert order.
func (s *Store) Events(ctx context.Context, matchID int) ([]model.EventRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT possession_id, timestamp, team, player_id, action, zone, pressure, team_status, outcome, xg_change
		FROM events WHERE match_id = ? ORDER BY id`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var records []model.EventRecord
	for rows.Next() {
		var (
			rec                               model.EventRecord
			ts, team, action, status, outcome string
		)
		if err := rows.Scan(&rec.PossessionID, &ts, &team, &rec.PlayerID,
			&action, &rec.Zone, &rec.Pressure, &status, &outcome, &rec.XGChange); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		rec.Timestamp, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		rec.Team = model.Team(team)
		rec.Action = model.Action(action)
		rec.TeamStatus = model.TeamStatus(status)
		rec.Outcome = model.Outcome(outcome)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return records, nil
}

// ActionCounts tallies records per action for one match.
func (s *Store) ActionCounts(ctx context.Context, matchID int) (map[model.Action]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT action, COUNT(*) FROM events WHERE match_id = ? GROUP BY action`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query action counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.Action]int)
	for rows.Next() {
		var (
			action string
			n      int
		)
		if err := rows.Scan(&action, &n); err != nil {
			return nil, fmt.Errorf("scan action count: %w", err)
		}
		counts[model.Action(action)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate action counts: %w", err)
	}
	return counts, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
