package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/seatcall/seatcall/pkg/db"
)

// GetCalls retrieves every call record, oldest first
func (d *DB) GetCalls(ctx context.Context) ([]db.Call, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, round, unit, program, shift, multiplier, offered, filled, generated_at
		FROM call_log
		ORDER BY generated_at, unit, program, shift
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query calls: %w", err)
	}
	defer rows.Close()

	var calls []db.Call
	for rows.Next() {
		var c db.Call
		var generatedAt time.Time
		if err := rows.Scan(&c.ID, &c.Round, &c.Unit, &c.Program, &c.Shift, &c.Multiplier, &c.Offered, &c.Filled, &generatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan call: %w", err)
		}
		c.GeneratedAt = generatedAt.UTC().Format(time.RFC3339)
		calls = append(calls, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating calls: %w", err)
	}

	return calls, nil
}

// InsertCalls inserts call records in one transaction
func (d *DB) InsertCalls(ctx context.Context, calls []db.Call) error {
	if len(calls) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, c := range calls {
		generatedAt, err := time.Parse(time.RFC3339, c.GeneratedAt)
		if err != nil {
			return fmt.Errorf("invalid generated_at for call %s: %w", c.ID, err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO call_log (id, round, unit, program, shift, multiplier, offered, filled, generated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, c.ID, c.Round, c.Unit, c.Program, c.Shift, c.Multiplier, c.Offered, c.Filled, generatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert call: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
