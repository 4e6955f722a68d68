package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/seatcall/seatcall/pkg/db"
)

// GetSnapshot reads the stored session. It returns nil when no session was saved yet.
func (d *DB) GetSnapshot(ctx context.Context) (*db.Snapshot, error) {
	var snapshot db.Snapshot

	err := d.pool.QueryRow(ctx, `SELECT round FROM session_state WHERE id = 1`).Scan(&snapshot.Round)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session state: %w", err)
	}

	pools, err := d.pool.Query(ctx, `SELECT unit, program, shift FROM pool ORDER BY unit, program, shift`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pools: %w", err)
	}
	snapshot.Pools, err = pgx.CollectRows(pools, func(row pgx.CollectableRow) (db.Pool, error) {
		var p db.Pool
		err := row.Scan(&p.Unit, &p.Program, &p.Shift)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan pools: %w", err)
	}

	candidates, err := d.pool.Query(ctx, `
		SELECT id, external_id, unit, program, shift, load_position, name, email, score,
		       declared, choice_option, status, assigned, round
		FROM candidate
		ORDER BY unit, program, shift, load_position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	snapshot.Candidates, err = pgx.CollectRows(candidates, scanCandidate)
	if err != nil {
		return nil, fmt.Errorf("failed to scan candidates: %w", err)
	}

	ledgers, err := d.pool.Query(ctx, `
		SELECT unit, program, shift, quota, offered, balance
		FROM pool_ledger
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledgers: %w", err)
	}
	snapshot.Ledgers, err = pgx.CollectRows(ledgers, func(row pgx.CollectableRow) (db.Ledger, error) {
		var l db.Ledger
		err := row.Scan(&l.Unit, &l.Program, &l.Shift, &l.Quota, &l.Offered, &l.Balance)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan ledgers: %w", err)
	}

	return &snapshot, nil
}

func scanCandidate(row pgx.CollectableRow) (db.Candidate, error) {
	var c db.Candidate
	var assigned *string
	err := row.Scan(&c.ID, &c.ExternalID, &c.Unit, &c.Program, &c.Shift, &c.Position, &c.Name, &c.Email,
		&c.Score, &c.Declared, &c.Option, &c.Status, &assigned, &c.Round)
	if assigned != nil {
		c.Assigned = *assigned
	}
	return c, err
}

// ReplaceSnapshot overwrites the stored session in a single transaction
func (d *DB) ReplaceSnapshot(ctx context.Context, snapshot *db.Snapshot) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Candidates and ledgers go with their pools
	if _, err := tx.Exec(ctx, `DELETE FROM pool`); err != nil {
		return fmt.Errorf("failed to clear pools: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO session_state (id, round, updated_at) VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET round = EXCLUDED.round, updated_at = EXCLUDED.updated_at
	`, snapshot.Round)
	if err != nil {
		return fmt.Errorf("failed to save session state: %w", err)
	}

	for _, p := range snapshot.Pools {
		_, err := tx.Exec(ctx, `INSERT INTO pool (unit, program, shift) VALUES ($1, $2, $3)`, p.Unit, p.Program, p.Shift)
		if err != nil {
			return fmt.Errorf("failed to insert pool: %w", err)
		}
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"candidate"},
		[]string{"id", "external_id", "unit", "program", "shift", "load_position", "name", "email", "score",
			"declared", "choice_option", "status", "assigned", "round"},
		pgx.CopyFromSlice(len(snapshot.Candidates), func(i int) ([]any, error) {
			c := snapshot.Candidates[i]
			var assigned *string
			if c.Assigned != "" {
				assigned = &c.Assigned
			}
			return []any{c.ID, c.ExternalID, c.Unit, c.Program, c.Shift, c.Position, c.Name, c.Email, c.Score,
				c.Declared, c.Option, c.Status, assigned, c.Round}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to insert candidates: %w", err)
	}

	for _, l := range snapshot.Ledgers {
		_, err := tx.Exec(ctx, `
			INSERT INTO pool_ledger (unit, program, shift, quota, offered, balance)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, l.Unit, l.Program, l.Shift, l.Quota, l.Offered, l.Balance)
		if err != nil {
			return fmt.Errorf("failed to insert ledger: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ClearAll removes the session and the call history
func (d *DB) ClearAll(ctx context.Context) error {
	_, err := d.pool.Exec(ctx, `TRUNCATE pool, candidate, pool_ledger, call_log, session_state`)
	if err != nil {
		return fmt.Errorf("failed to clear database: %w", err)
	}
	return nil
}

var _ db.Database = (*DB)(nil)
