package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// sequenceCounter hands out a named, monotonic sequence. Run IDs are random
// UUIDs, so the sequence is what orders runs, including runs that share a
// timestamp. The mutex serializes within the process; RETURNING makes the
// increment atomic in the database.
type sequenceCounter struct {
	mu   sync.Mutex
	db   *sql.DB
	name string
}

// newSequenceCounter ensures the counters table and the named row exist.
func newSequenceCounter(db *sql.DB, name string) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS counters (
		name     TEXT PRIMARY KEY,
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create counters table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO counters (name, next_val) VALUES (?, 1)`, name)
	if err != nil {
		return nil, fmt.Errorf("seed counter %s: %w", name, err)
	}

	return &sequenceCounter{db: db, name: name}, nil
}

// Next returns the next value and advances the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE counters SET next_val = next_val + 1 WHERE name = ? RETURNING next_val - 1`,
		sc.name,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next %s sequence: %w", sc.name, err)
	}
	return seq, nil
}
