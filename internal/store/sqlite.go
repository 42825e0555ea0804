// Package store persists seen job UIDs so each logical posting is
// reported at most once across process restarts.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ncurl/jobwatch/internal/model"
)

var _ model.JobStore = (*SQLiteStore)(nil)

// SQLiteStore is the durable dedup set. Pollers share one instance;
// MarkSeen's INSERT OR IGNORE is the single atomic point that decides
// which of two racing pollers owns a UID.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath, enables WAL,
// and ensures the seen_items table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS seen_items (
		uid           TEXT PRIMARY KEY,
		first_seen_ts TEXT NOT NULL,
		source_group  TEXT NOT NULL,
		url           TEXT
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating seen_items table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// HasSeen returns true if the given UID has already been recorded.
func (s *SQLiteStore) HasSeen(uid string) (bool, error) {
	var exists int
	err := s.db.QueryRow("SELECT 1 FROM seen_items WHERE uid = ?", uid).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking seen status for %s: %w", uid, err)
	}
	return true, nil
}

// MarkSeen records a job's UID and reports whether this call inserted the
// record. Marking an already-seen UID is a no-op returning false; the
// original first_seen timestamp is never overwritten.
func (s *SQLiteStore) MarkSeen(job model.Job, firstSeen time.Time) (bool, error) {
	res, err := s.db.Exec(
		"INSERT OR IGNORE INTO seen_items (uid, first_seen_ts, source_group, url) VALUES (?, ?, ?, ?)",
		job.UID, firstSeen.UTC().Format(time.RFC3339), job.SourceGroup, job.URL,
	)
	if err != nil {
		return false, fmt.Errorf("marking %s as seen: %w", job.UID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("marking %s as seen: %w", job.UID, err)
	}
	return n > 0, nil
}

// Flush checkpoints the WAL so a crash loses at most the current cycle.
func (s *SQLiteStore) Flush() error {
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)"); err != nil {
		return fmt.Errorf("checkpointing seen_items: %w", err)
	}
	return nil
}

// Count returns the number of recorded UIDs.
func (s *SQLiteStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM seen_items").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting seen items: %w", err)
	}
	return count, nil
}

// Recent returns up to limit records, newest first.
func (s *SQLiteStore) Recent(limit int) ([]model.SeenRecord, error) {
	rows, err := s.db.Query(
		"SELECT uid, first_seen_ts, source_group, COALESCE(url, '') FROM seen_items ORDER BY first_seen_ts DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing recent seen items: %w", err)
	}
	defer rows.Close()

	var records []model.SeenRecord
	for rows.Next() {
		var rec model.SeenRecord
		var ts string
		if err := rows.Scan(&rec.UID, &ts, &rec.SourceGroup, &rec.URL); err != nil {
			return nil, fmt.Errorf("scanning seen item: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.FirstSeen = t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
