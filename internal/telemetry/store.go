package telemetry

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists telemetry aggregates. A flock next to the database
// file keeps a second process from opening the same telemetry DB for
// writing; SQLite's own locking handles statements, but two long-lived
// flush loops interleaving upserts produce double counts.
type SQLiteStore struct {
	db   *sql.DB
	lock *flock.Flock
}

// OpenSQLiteStore opens (or creates) the telemetry database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire telemetry lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("telemetry database %s is in use by another process", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("failed to open telemetry database: %w", err)
	}

	s := &SQLiteStore{db: db, lock: lock}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS method_stats (
		date TEXT NOT NULL,
		method TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (date, method)
	);

	CREATE TABLE IF NOT EXISTS query_terms (
		term TEXT PRIMARY KEY,
		count INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS zero_result_queries (
		query TEXT NOT NULL,
		recorded_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS latency_stats (
		date TEXT NOT NULL,
		bucket TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (date, bucket)
	);`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize telemetry schema: %w", err)
	}
	return nil
}

// SaveMethodCounts upserts the per-day method counts.
func (s *SQLiteStore) SaveMethodCounts(date string, counts map[Method]int64) error {
	for method, count := range counts {
		_, err := s.db.Exec(`
			INSERT INTO method_stats (date, method, count) VALUES (?, ?, ?)
			ON CONFLICT(date, method) DO UPDATE SET count = excluded.count`,
			date, string(method), count)
		if err != nil {
			return fmt.Errorf("failed to save method counts: %w", err)
		}
	}
	return nil
}

// UpsertTermCounts writes the current term frequencies.
func (s *SQLiteStore) UpsertTermCounts(terms map[string]int64) error {
	now := time.Now().Format(time.RFC3339)
	for term, count := range terms {
		_, err := s.db.Exec(`
			INSERT INTO query_terms (term, count, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(term) DO UPDATE SET count = excluded.count, updated_at = excluded.updated_at`,
			term, count, now)
		if err != nil {
			return fmt.Errorf("failed to upsert term counts: %w", err)
		}
	}
	return nil
}

// GetTopTerms returns the most frequent terms.
func (s *SQLiteStore) GetTopTerms(limit int) ([]TermCount, error) {
	rows, err := s.db.Query(
		`SELECT term, count FROM query_terms ORDER BY count DESC, term ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top terms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var terms []TermCount
	for rows.Next() {
		var tc TermCount
		if err := rows.Scan(&tc.Term, &tc.Count); err != nil {
			return nil, err
		}
		terms = append(terms, tc)
	}
	return terms, rows.Err()
}

// AddZeroResultQuery appends one zero-result query.
func (s *SQLiteStore) AddZeroResultQuery(query string, timestamp time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO zero_result_queries (query, recorded_at) VALUES (?, ?)`,
		query, timestamp.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record zero-result query: %w", err)
	}
	return nil
}

// GetZeroResultQueries returns the most recent zero-result queries.
func (s *SQLiteStore) GetZeroResultQueries(limit int) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT query FROM zero_result_queries ORDER BY recorded_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query zero-result queries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var queries []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}

// SaveLatencyCounts upserts the per-day latency histogram.
func (s *SQLiteStore) SaveLatencyCounts(date string, counts map[LatencyBucket]int64) error {
	for bucket, count := range counts {
		_, err := s.db.Exec(`
			INSERT INTO latency_stats (date, bucket, count) VALUES (?, ?, ?)
			ON CONFLICT(date, bucket) DO UPDATE SET count = excluded.count`,
			date, string(bucket), count)
		if err != nil {
			return fmt.Errorf("failed to save latency counts: %w", err)
		}
	}
	return nil
}

// Close closes the database and releases the process lock.
func (s *SQLiteStore) Close() error {
	err := s.db.Close()
	if unlockErr := s.lock.Unlock(); err == nil {
		err = unlockErr
	}
	return err
}
