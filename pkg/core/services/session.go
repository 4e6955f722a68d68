package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/seatcall/seatcall/internal/config"
	"github.com/seatcall/seatcall/pkg/core/engine"
	"github.com/seatcall/seatcall/pkg/db"
)

// OpenSession builds a session from the configured matrix and restores the stored state
// into it. An empty store yields a fresh session at round 1.
func OpenSession(ctx context.Context, store db.SessionStore, cfg *config.Config, logger *zap.Logger) (*engine.Session, error) {
	matrix, err := cfg.Matrix()
	if err != nil {
		return nil, fmt.Errorf("failed to build quota matrix: %w", err)
	}

	session, err := engine.NewSession(engine.Options{
		Matrix:       matrix,
		TieBreakByID: cfg.TieBreakByID,
	})
	if err != nil {
		return nil, err
	}

	snapshot, err := store.GetSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}
	if snapshot == nil {
		logger.Debug("No stored session, starting fresh")
		return session, nil
	}

	state, err := snapshot.ToState()
	if err != nil {
		return nil, fmt.Errorf("failed to decode stored session: %w", err)
	}
	if err := session.Restore(state); err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	logger.Debug("Session restored",
		zap.Int("round", state.Round),
		zap.Int("pools", len(state.Pools)),
		zap.Int("candidates", len(snapshot.Candidates)))

	return session, nil
}

// SaveSession writes the whole session back to the store
func SaveSession(ctx context.Context, store db.SessionStore, session *engine.Session, logger *zap.Logger) error {
	snapshot := db.FromState(session.Snapshot())

	if err := store.ReplaceSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	logger.Debug("Session saved",
		zap.Int("round", snapshot.Round),
		zap.Int("candidates", len(snapshot.Candidates)),
		zap.Int("ledger_rows", len(snapshot.Ledgers)))
	return nil
}

// update opens the session, applies fn and saves the result. Nothing is saved when fn fails.
func update(ctx context.Context, store db.SessionStore, cfg *config.Config, logger *zap.Logger, fn func(*engine.Session) error) (*engine.Session, error) {
	session, err := OpenSession(ctx, store, cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := fn(session); err != nil {
		return nil, err
	}

	if err := SaveSession(ctx, store, session, logger); err != nil {
		return nil, err
	}
	return session, nil
}
