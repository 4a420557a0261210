package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// ensureSequence creates and seeds the global sequence table if missing.
//
// The global sequence is a monotonic counter shared by all event tables.
// Each event type has its own table with its own rowid, so the shared
// counter is what orders a response against the LLM call that graded it.
// It lives outside the migrated schema as a single-row table.
func ensureSequence(ctx context.Context, conn dialect.ExecQuerier) error {
	err := conn.Exec(ctx, `CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`, []any{}, nil)
	if err != nil {
		return fmt.Errorf("create sequence table: %w", err)
	}

	err = conn.Exec(ctx, `INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`, []any{}, nil)
	if err != nil {
		return fmt.Errorf("seed sequence: %w", err)
	}
	return nil
}

// nextSequence atomically returns the next sequence number and increments
// the counter. An increment taken inside a transaction rolls back with it.
func nextSequence(ctx context.Context, conn dialect.ExecQuerier) (int64, error) {
	rows := &entsql.Rows{}
	err := conn.Query(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
		[]any{}, rows,
	)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("next sequence: %w", err)
		}
		return 0, fmt.Errorf("next sequence: counter row missing")
	}
	var seq int64
	if err := rows.Scan(&seq); err != nil {
		return 0, fmt.Errorf("scan sequence: %w", err)
	}
	return seq, rows.Close()
}

// eventRepo implements EventRepo over ent's SQL builders and the
// global sequence.
type eventRepo struct {
	conn dialect.ExecQuerier
	now  func() time.Time
}
