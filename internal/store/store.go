// Package store provides SQLite persistence for fetched best-combination
// results.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/adrior11/check24-best-combination-submission/internal/combo"
)

// ErrNotFound is returned when a run id does not exist.
var ErrNotFound = errors.New("run not found")

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Run is one READY result together with the selection that produced it.
type Run struct {
	ID             string
	Items          []string
	Limit          int
	FetchedAt      time.Time
	BestCoverage   float64
	BestPriceCents int
	Combinations   []combo.Combination
}

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for file-based databases.
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// Shared cache so every pooled connection sees the same database.
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		items TEXT NOT NULL,
		fetch_limit INTEGER NOT NULL,
		fetched_at DATETIME NOT NULL,
		best_coverage REAL NOT NULL DEFAULT 0,
		best_price_cents INTEGER NOT NULL DEFAULT 0,
		combinations TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_fetched ON runs(fetched_at DESC);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SaveResult records a READY result. The best combination is the one with
// the lowest index.
func (s *Store) SaveResult(items []string, opts combo.FetchOptions, data []combo.Combination, at time.Time) (Run, error) {
	sorted := combo.SortByIndex(data)
	run := Run{
		ID:           uuid.NewString(),
		Items:        append([]string(nil), items...),
		Limit:        opts.Limit,
		FetchedAt:    at.UTC(),
		Combinations: sorted,
	}
	if len(sorted) > 0 {
		run.BestCoverage = sorted[0].CombinedCoverage
		run.BestPriceCents = sorted[0].CombinedMonthlyPriceCents
	}

	itemsJSON, err := json.Marshal(run.Items)
	if err != nil {
		return Run{}, fmt.Errorf("encode items: %w", err)
	}
	combosJSON, err := json.Marshal(run.Combinations)
	if err != nil {
		return Run{}, fmt.Errorf("encode combinations: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(`
		INSERT INTO runs (id, items, fetch_limit, fetched_at, best_coverage, best_price_cents, combinations)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, string(itemsJSON), run.Limit, run.FetchedAt, run.BestCoverage, run.BestPriceCents, string(combosJSON))
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// ListHistory returns up to limit runs, newest first. Combinations are not
// loaded; use GetRun for the full result.
func (s *Store) ListHistory(limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, items, fetch_limit, fetched_at, best_coverage, best_price_cents
		FROM runs
		ORDER BY fetched_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var itemsJSON string
		if err := rows.Scan(&r.ID, &itemsJSON, &r.Limit, &r.FetchedAt, &r.BestCoverage, &r.BestPriceCents); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(itemsJSON), &r.Items); err != nil {
			return nil, fmt.Errorf("decode items of %s: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun loads one run including its combinations.
func (s *Store) GetRun(id string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var r Run
	var itemsJSON, combosJSON string
	err := s.db.QueryRow(`
		SELECT id, items, fetch_limit, fetched_at, best_coverage, best_price_cents, combinations
		FROM runs WHERE id = ?
	`, id).Scan(&r.ID, &itemsJSON, &r.Limit, &r.FetchedAt, &r.BestCoverage, &r.BestPriceCents, &combosJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, err
	}
	if err := json.Unmarshal([]byte(itemsJSON), &r.Items); err != nil {
		return Run{}, fmt.Errorf("decode items: %w", err)
	}
	if err := json.Unmarshal([]byte(combosJSON), &r.Combinations); err != nil {
		return Run{}, fmt.Errorf("decode combinations: %w", err)
	}
	return r, nil
}

// ResolveID expands prefix to the single run id starting with it.
func (s *Store) ResolveID(prefix string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2`, len(prefix), prefix)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", ErrNotFound
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("run id prefix %q is ambiguous", prefix)
	}
}

// Count returns the number of stored runs.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&n)
	return n, err
}

// Prune keeps the newest keep runs and deletes the rest. It returns the
// number of rows deleted.
func (s *Store) Prune(keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY fetched_at DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
