package slicestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // driver: sqlite

	"github.com/classlens/growthreport/internal/roster"
)

// SQLiteStore packs the whole artifact set into a single database file,
// for deployments that want one build output instead of a directory of
// JSON slices. Content is identical to the fs layout: one index blob,
// one record-array blob per slice key.
type SQLiteStore struct{ db *sql.DB }

func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = "file:growthreport.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schemaSQLite); err != nil {
		return nil, fmt.Errorf("slicestore: ensure schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS slices (
  key TEXT PRIMARY KEY,
  term TEXT NOT NULL,
  district TEXT NOT NULL,
  school TEXT NOT NULL,
  records_json TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS catalog (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  index_json TEXT NOT NULL
);
`

func (s *SQLiteStore) Index(ctx context.Context) (Index, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT index_json FROM catalog WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("slicestore: no index in artifact db")
	}
	if err != nil {
		return nil, fmt.Errorf("slicestore: read index: %w", err)
	}
	var idx Index
	if err := json.Unmarshal([]byte(raw), &idx); err != nil {
		return nil, fmt.Errorf("slicestore: decode index: %w", err)
	}
	return idx, nil
}

func (s *SQLiteStore) Slice(ctx context.Context, term, district, school string) ([]roster.Record, error) {
	key := SliceKey(term, district, school)
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT records_json FROM slices WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("slicestore: no slice %s", key)
	}
	if err != nil {
		return nil, fmt.Errorf("slicestore: read slice %s: %w", key, err)
	}
	var recs []roster.Record
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return nil, fmt.Errorf("slicestore: decode slice %s: %w", key, err)
	}
	return recs, nil
}

func (s *SQLiteStore) PutIndex(ctx context.Context, idx Index) error {
	b, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("slicestore: encode index: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO catalog (id, index_json) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET index_json = excluded.index_json`, string(b))
	return err
}

func (s *SQLiteStore) PutSlice(ctx context.Context, term, district, school string, records []roster.Record) error {
	b, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("slicestore: encode slice: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO slices (key, term, district, school, records_json) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET records_json = excluded.records_json`,
		SliceKey(term, district, school), term, district, school, string(b))
	return err
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
