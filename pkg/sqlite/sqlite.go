package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/seatcall/seatcall/pkg/db"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_state (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	round INTEGER NOT NULL CHECK (round >= 1),
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS pool (
	unit TEXT NOT NULL,
	program TEXT NOT NULL,
	shift TEXT NOT NULL,
	PRIMARY KEY (unit, program, shift)
);

CREATE TABLE IF NOT EXISTS candidate (
	id TEXT PRIMARY KEY,
	external_id TEXT NOT NULL,
	unit TEXT NOT NULL,
	program TEXT NOT NULL,
	shift TEXT NOT NULL,
	load_position INTEGER NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	score REAL NOT NULL,
	declared TEXT NOT NULL,
	choice_option INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	assigned TEXT,
	round INTEGER,
	UNIQUE (unit, program, shift, external_id)
);

CREATE TABLE IF NOT EXISTS pool_ledger (
	unit TEXT NOT NULL,
	program TEXT NOT NULL,
	shift TEXT NOT NULL,
	quota TEXT NOT NULL,
	offered INTEGER NOT NULL CHECK (offered >= 0),
	balance INTEGER NOT NULL CHECK (balance >= 0),
	PRIMARY KEY (unit, program, shift, quota)
);

CREATE TABLE IF NOT EXISTS call_log (
	id TEXT PRIMARY KEY,
	round INTEGER NOT NULL,
	unit TEXT NOT NULL,
	program TEXT NOT NULL,
	shift TEXT NOT NULL,
	multiplier REAL NOT NULL,
	offered INTEGER NOT NULL,
	filled INTEGER NOT NULL,
	generated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_candidate_round ON candidate(round);
CREATE INDEX IF NOT EXISTS idx_call_log_round ON call_log(round);
`

// DB stores the allocation session in a single SQLite file, for running without a server
type DB struct {
	db *sql.DB
}

// NewDB opens (creating if needed) the database file and makes sure the schema exists
func NewDB(ctx context.Context, path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; also keeps ":memory:" databases on a single connection
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{db: conn}, nil
}

// Close closes the database file
func (d *DB) Close() error {
	return d.db.Close()
}

// GetSnapshot reads the stored session. It returns nil when no session was saved yet.
func (d *DB) GetSnapshot(ctx context.Context) (*db.Snapshot, error) {
	var snapshot db.Snapshot

	err := d.db.QueryRowContext(ctx, `SELECT round FROM session_state WHERE id = 1`).Scan(&snapshot.Round)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session state: %w", err)
	}

	if snapshot.Pools, err = d.getPools(ctx); err != nil {
		return nil, err
	}
	if snapshot.Candidates, err = d.getCandidates(ctx); err != nil {
		return nil, err
	}
	if snapshot.Ledgers, err = d.getLedgers(ctx); err != nil {
		return nil, err
	}

	return &snapshot, nil
}

func (d *DB) getPools(ctx context.Context) ([]db.Pool, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT unit, program, shift FROM pool ORDER BY unit, program, shift`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pools: %w", err)
	}
	defer rows.Close()

	var pools []db.Pool
	for rows.Next() {
		var p db.Pool
		if err := rows.Scan(&p.Unit, &p.Program, &p.Shift); err != nil {
			return nil, fmt.Errorf("failed to scan pool: %w", err)
		}
		pools = append(pools, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pools: %w", err)
	}
	return pools, nil
}

func (d *DB) getCandidates(ctx context.Context) ([]db.Candidate, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, external_id, unit, program, shift, load_position, name, email, score,
		       declared, choice_option, status, assigned, round
		FROM candidate
		ORDER BY unit, program, shift, load_position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []db.Candidate
	for rows.Next() {
		var c db.Candidate
		var assigned sql.NullString
		var round sql.NullInt64
		if err := rows.Scan(&c.ID, &c.ExternalID, &c.Unit, &c.Program, &c.Shift, &c.Position, &c.Name, &c.Email,
			&c.Score, &c.Declared, &c.Option, &c.Status, &assigned, &round); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		c.Assigned = assigned.String
		if round.Valid {
			r := int(round.Int64)
			c.Round = &r
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidates: %w", err)
	}
	return candidates, nil
}

func (d *DB) getLedgers(ctx context.Context) ([]db.Ledger, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT unit, program, shift, quota, offered, balance FROM pool_ledger`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledgers: %w", err)
	}
	defer rows.Close()

	var ledgers []db.Ledger
	for rows.Next() {
		var l db.Ledger
		if err := rows.Scan(&l.Unit, &l.Program, &l.Shift, &l.Quota, &l.Offered, &l.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan ledger: %w", err)
		}
		ledgers = append(ledgers, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledgers: %w", err)
	}
	return ledgers, nil
}

// ReplaceSnapshot overwrites the stored session in a single transaction
func (d *DB) ReplaceSnapshot(ctx context.Context, snapshot *db.Snapshot) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"candidate", "pool_ledger", "pool"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO session_state (id, round, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET round = excluded.round, updated_at = excluded.updated_at
	`, snapshot.Round)
	if err != nil {
		return fmt.Errorf("failed to save session state: %w", err)
	}

	for _, p := range snapshot.Pools {
		if _, err := tx.ExecContext(ctx, `INSERT INTO pool (unit, program, shift) VALUES (?, ?, ?)`, p.Unit, p.Program, p.Shift); err != nil {
			return fmt.Errorf("failed to insert pool: %w", err)
		}
	}

	insertCandidate, err := tx.PrepareContext(ctx, `
		INSERT INTO candidate (id, external_id, unit, program, shift, load_position, name, email, score,
		                       declared, choice_option, status, assigned, round)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare candidate insert: %w", err)
	}
	defer insertCandidate.Close()

	for _, c := range snapshot.Candidates {
		var assigned sql.NullString
		if c.Assigned != "" {
			assigned = sql.NullString{String: c.Assigned, Valid: true}
		}
		var round sql.NullInt64
		if c.Round != nil {
			round = sql.NullInt64{Int64: int64(*c.Round), Valid: true}
		}

		_, err := insertCandidate.ExecContext(ctx, c.ID, c.ExternalID, c.Unit, c.Program, c.Shift, c.Position, c.Name, c.Email,
			c.Score, c.Declared, c.Option, c.Status, assigned, round)
		if err != nil {
			return fmt.Errorf("failed to insert candidate %s: %w", c.ExternalID, err)
		}
	}

	for _, l := range snapshot.Ledgers {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO pool_ledger (unit, program, shift, quota, offered, balance) VALUES (?, ?, ?, ?, ?, ?)
		`, l.Unit, l.Program, l.Shift, l.Quota, l.Offered, l.Balance)
		if err != nil {
			return fmt.Errorf("failed to insert ledger: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetCalls retrieves every call record, oldest first
func (d *DB) GetCalls(ctx context.Context) ([]db.Call, error) {
	rows, err := d.db.QueryContext(ctx, `
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
		if err := rows.Scan(&c.ID, &c.Round, &c.Unit, &c.Program, &c.Shift, &c.Multiplier, &c.Offered, &c.Filled, &c.GeneratedAt); err != nil {
			return nil, fmt.Errorf("failed to scan call: %w", err)
		}
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

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range calls {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO call_log (id, round, unit, program, shift, multiplier, offered, filled, generated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, c.ID, c.Round, c.Unit, c.Program, c.Shift, c.Multiplier, c.Offered, c.Filled, c.GeneratedAt)
		if err != nil {
			return fmt.Errorf("failed to insert call: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ClearAll removes the session and the call history
func (d *DB) ClearAll(ctx context.Context) error {
	for _, table := range []string{"candidate", "pool_ledger", "pool", "call_log", "session_state"} {
		if _, err := d.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}
