package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"oicoach.dev/internal/persistence/snapshot"
)

// SQLiteIndex records snapshots and finished seasons so external tooling can
// list and resume them. Writes go through one connection; the engine itself
// is single-actor, so a mutex is all the serialization needed.
type SQLiteIndex struct {
	mu sync.Mutex
	db *sql.DB
}

type SnapshotRow struct {
	Week       int
	Path       string
	Seed       int64
	Students   int
	Budget     int
	RecordedAt string
}

type SeasonRow struct {
	Seed       int64
	EndWeek    int
	Reason     string
	Score      float64
	Path       string
	RecordedAt string
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteIndex{db: db}, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA synchronous=NORMAL;`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			week INTEGER NOT NULL,
			path TEXT NOT NULL,
			seed INTEGER NOT NULL,
			students INTEGER NOT NULL,
			budget INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_seed_week ON snapshots(seed, week);`,
		`CREATE TABLE IF NOT EXISTS seasons (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			seed INTEGER NOT NULL,
			end_week INTEGER NOT NULL,
			reason TEXT NOT NULL,
			score REAL NOT NULL,
			path TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (x *SQLiteIndex) RecordSnapshot(snap snapshot.SeasonV1, path string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	_, err := x.db.Exec(
		`INSERT INTO snapshots (week, path, seed, students, budget, recorded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		snap.Week, path, snap.Seed, len(snap.Students), snap.Budget,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (x *SQLiteIndex) RecordSeason(snap snapshot.SeasonV1, score float64, path string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	_, err := x.db.Exec(
		`INSERT INTO seasons (seed, end_week, reason, score, path, recorded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		snap.Seed, snap.Week, snap.EndReason, score, path,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (x *SQLiteIndex) ListSeasons() ([]SeasonRow, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	rows, err := x.db.Query(`SELECT seed, end_week, reason, score, path, recorded_at FROM seasons ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SeasonRow
	for rows.Next() {
		var r SeasonRow
		if err := rows.Scan(&r.Seed, &r.EndWeek, &r.Reason, &r.Score, &r.Path, &r.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LatestSnapshot returns the most recent snapshot row for a seed, or
// ok=false when none exists.
func (x *SQLiteIndex) LatestSnapshot(seed int64) (SnapshotRow, bool, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	row := x.db.QueryRow(
		`SELECT week, path, seed, students, budget, recorded_at FROM snapshots WHERE seed = ? ORDER BY id DESC LIMIT 1`,
		seed,
	)
	var r SnapshotRow
	err := row.Scan(&r.Week, &r.Path, &r.Seed, &r.Students, &r.Budget, &r.RecordedAt)
	if err == sql.ErrNoRows {
		return r, false, nil
	}
	if err != nil {
		return r, false, err
	}
	return r, true, nil
}

func (x *SQLiteIndex) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.db.Close()
}
