package services

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/seatcall/seatcall/internal/config"
	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/db"
	"github.com/seatcall/seatcall/pkg/importer"
)

// ViewRound lists a round's call. With all set it returns every candidate the round
// touched, including those later disqualified.
func ViewRound(
	ctx context.Context,
	store db.SessionStore,
	cfg *config.Config,
	logger *zap.Logger,
	round int,
	all bool,
) ([]*model.Candidate, error) {
	session, err := OpenSession(ctx, store, cfg, logger)
	if err != nil {
		return nil, err
	}

	var candidates []*model.Candidate
	if all {
		candidates, err = session.RoundReport(round)
	} else {
		candidates, err = session.CallList(round)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round %d: %w", round, err)
	}

	logger.Debug("Fetched round", zap.Int("round", round), zap.Bool("all", all), zap.Int("candidates", len(candidates)))
	return candidates, nil
}

// ExportCall writes a round's call list as CSV and returns the number of candidates written
func ExportCall(
	ctx context.Context,
	store db.SessionStore,
	cfg *config.Config,
	logger *zap.Logger,
	w io.Writer,
	round int,
	all bool,
) (int, error) {
	candidates, err := ViewRound(ctx, store, cfg, logger, round, all)
	if err != nil {
		return 0, err
	}

	if err := importer.WriteCall(w, candidates); err != nil {
		return 0, fmt.Errorf("failed to write call: %w", err)
	}

	logger.Info("Call exported", zap.Int("round", round), zap.Int("candidates", len(candidates)))
	return len(candidates), nil
}

// ClassificationReport ranks every candidate of a pool in each quota list they belong to.
// With w set the report is also written as CSV.
func ClassificationReport(
	ctx context.Context,
	store db.SessionStore,
	cfg *config.Config,
	logger *zap.Logger,
	pool model.PoolKey,
	w io.Writer,
) ([]*model.Candidate, error) {
	session, err := OpenSession(ctx, store, cfg, logger)
	if err != nil {
		return nil, err
	}

	candidates, err := session.Classification(pool)
	if err != nil {
		return nil, fmt.Errorf("failed to classify pool: %w", err)
	}

	if w != nil {
		if err := importer.WriteClassification(w, candidates); err != nil {
			return nil, fmt.Errorf("failed to write classification: %w", err)
		}
	}

	logger.Debug("Classification computed", zap.String("pool", pool.String()), zap.Int("candidates", len(candidates)))
	return candidates, nil
}
