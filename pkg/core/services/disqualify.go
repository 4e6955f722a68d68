package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/seatcall/seatcall/internal/config"
	"github.com/seatcall/seatcall/pkg/core/engine"
	"github.com/seatcall/seatcall/pkg/db"
)

// Disqualify revokes the latest round's selections for the given external ids and returns
// their seats to the pools' ledgers
func Disqualify(
	ctx context.Context,
	store db.SessionStore,
	cfg *config.Config,
	logger *zap.Logger,
	externalIDs []string,
) (*engine.DisqualifyResult, error) {
	if len(externalIDs) == 0 {
		return nil, &engine.ValidationError{Message: "no candidate ids given"}
	}

	logger.Debug("Starting disqualify", zap.Strings("external_ids", externalIDs))

	var result *engine.DisqualifyResult
	_, err := update(ctx, store, cfg, logger, func(session *engine.Session) error {
		result = session.Disqualify(externalIDs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if skipped := len(externalIDs) - len(result.Disqualified); skipped > 0 {
		logger.Warn("Some ids were not revocable in the latest round",
			zap.Int("skipped", skipped))
	}

	logger.Info("Candidates disqualified",
		zap.Int("disqualified", len(result.Disqualified)),
		zap.Int("pools", len(result.Ledgers)),
		zap.Int("next_round", result.NextRound))

	return result, nil
}

// Reset wipes the stored session and call history
func Reset(ctx context.Context, store db.Database, logger *zap.Logger) error {
	logger.Debug("Clearing stored session")

	if err := store.ClearAll(ctx); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}

	logger.Info("Session reset")
	return nil
}
