package db

import "context"

// SessionStore persists the allocation session as a whole
type SessionStore interface {
	// GetSnapshot returns the stored session, or nil when nothing was saved yet
	GetSnapshot(ctx context.Context) (*Snapshot, error)
	ReplaceSnapshot(ctx context.Context, snapshot *Snapshot) error
}

// CallStore keeps the audit trail of generated calls
type CallStore interface {
	GetCalls(ctx context.Context) ([]Call, error)
	InsertCalls(ctx context.Context, calls []Call) error
}

// Database defines the interface for all database operations.
// Both the Postgres-backed postgres.DB and the file-backed sqlite.DB implement it.
type Database interface {
	SessionStore
	CallStore
	ClearAll(ctx context.Context) error
}
