// Package store archives forecast records in SQLite so that long scans
// can be queried without recomputing them.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/konkers/sdv-predict/internal/forecast"
)

//go:embed schema.sql
var schema string

// Store is a forecast archive.
type Store struct {
	db *sql.DB
}

// Open opens or creates the archive at path. ":memory:" is accepted.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if path != ":memory:" {
		path = filepath.Clean(path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one connection keeps ":memory:" a single database
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, p := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Run identifies one save under one seed strategy. Game ids are stored as
// text since they use the full unsigned range.
type Run struct {
	GameID   uint64
	Strategy string
}

func (r Run) gameID() string {
	return strconv.FormatUint(r.GameID, 10)
}

// Put stores recs for run, replacing records with the same kind, key and
// day. All records are written in one transaction.
func (s *Store) Put(ctx context.Context, run Run, recs []forecast.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if run.Strategy == "" {
		return fmt.Errorf("strategy is required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO forecasts (game_id, strategy, day, kind, key, payload)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	gid := run.gameID()
	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx, gid, run.Strategy, int64(r.Day), r.Kind, r.Key, string(r.Payload)); err != nil {
			return fmt.Errorf("insert %s %d %s: %w", r.Kind, r.Day, r.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Query filters List. Zero Kind matches every kind; ToDay 0 means no upper
// bound.
type Query struct {
	Run
	Kind    string
	FromDay uint32
	ToDay   uint32
}

// List returns matching records ordered by day, kind and key.
func (s *Store) List(ctx context.Context, q Query) ([]forecast.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	where := []string{"game_id = ?", "strategy = ?", "day >= ?"}
	args := []any{q.gameID(), q.Strategy, int64(q.FromDay)}
	if q.ToDay > 0 {
		where = append(where, "day <= ?")
		args = append(args, int64(q.ToDay))
	}
	if q.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, q.Kind)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT day, kind, key, payload FROM forecasts WHERE `+strings.Join(where, " AND ")+
			` ORDER BY day, kind, key`, args...)
	if err != nil {
		return nil, fmt.Errorf("list forecasts: %w", err)
	}
	defer rows.Close()

	var out []forecast.Record
	for rows.Next() {
		var (
			r       forecast.Record
			day     int64
			payload string
		)
		if err := rows.Scan(&day, &r.Kind, &r.Key, &payload); err != nil {
			return nil, fmt.Errorf("scan forecast: %w", err)
		}
		r.Day = uint32(day)
		r.Payload = []byte(payload)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list forecasts: %w", err)
	}
	return out, nil
}

// Delete removes every record of run and reports how many were removed.
func (s *Store) Delete(ctx context.Context, run Run) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM forecasts WHERE game_id = ? AND strategy = ?`, run.gameID(), run.Strategy)
	if err != nil {
		return 0, fmt.Errorf("delete forecasts: %w", err)
	}
	return res.RowsAffected()
}
