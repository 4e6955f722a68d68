package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seatcall/seatcall/internal/config"
	"github.com/seatcall/seatcall/pkg/core/engine"
	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/db"
)

// GenerateCallStore defines the database operations needed to generate a call
type GenerateCallStore interface {
	db.SessionStore
	InsertCalls(ctx context.Context, calls []db.Call) error
}

// CallResult is the outcome of one generate request
type CallResult struct {
	Round      int
	Multiplier float64
	// Results holds one entry per generated pool, ordered by pool key
	Results []*engine.RoundResult
}

// Selected counts the candidates called across every pool
func (r *CallResult) Selected() int {
	n := 0
	for _, res := range r.Results {
		n += len(res.Selected)
	}
	return n
}

// GenerateCall runs the next call. With a pool it generates that pool only; with nil it
// generates every pool that has seats and candidates. A multiplier of zero or less uses
// the configured default.
func GenerateCall(
	ctx context.Context,
	store GenerateCallStore,
	cfg *config.Config,
	logger *zap.Logger,
	pool *model.PoolKey,
	multiplier float64,
	now time.Time,
) (*CallResult, error) {
	if multiplier <= 0 {
		multiplier = cfg.Multiplier()
	}

	logger.Debug("Starting generateCall", zap.Float64("multiplier", multiplier))

	var result *CallResult

	// Step 1: Allocate and persist the new selections
	_, err := update(ctx, store, cfg, logger, func(session *engine.Session) error {
		result = &CallResult{Round: session.CurrentRound(), Multiplier: multiplier}

		if pool != nil {
			logger.Debug("Generating single pool", zap.String("pool", pool.String()))
			res, err := session.GenerateRound(*pool, multiplier)
			if err != nil {
				return fmt.Errorf("failed to generate round: %w", err)
			}
			result.Results = []*engine.RoundResult{res}
			return nil
		}

		byPool, err := session.GenerateAll(ctx, multiplier)
		if err != nil {
			return fmt.Errorf("failed to generate round: %w", err)
		}
		for _, res := range byPool {
			result.Results = append(result.Results, res)
		}
		sort.Slice(result.Results, func(i, j int) bool {
			return result.Results[i].Pool.String() < result.Results[j].Pool.String()
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Step 2: Record the call audit trail
	calls := make([]db.Call, 0, len(result.Results))
	for _, res := range result.Results {
		calls = append(calls, db.Call{
			ID:          uuid.New().String(),
			Round:       res.Round,
			Unit:        res.Pool.Unit,
			Program:     res.Pool.Program,
			Shift:       res.Pool.Shift,
			Multiplier:  multiplier,
			Offered:     res.Offered().Total(),
			Filled:      res.Filled().Total(),
			GeneratedAt: now.UTC().Format(time.RFC3339),
		})

		logger.Debug("Pool generated",
			zap.String("pool", res.Pool.String()),
			zap.Int("offered", res.Offered().Total()),
			zap.Int("filled", res.Filled().Total()),
			zap.Int("stranded", res.AdjustedSaldo.Stranded()))
	}

	if err := store.InsertCalls(ctx, calls); err != nil {
		return nil, fmt.Errorf("failed to record calls: %w", err)
	}

	logger.Info("Call generated",
		zap.Int("round", result.Round),
		zap.Int("pools", len(result.Results)),
		zap.Int("selected", result.Selected()))

	return result, nil
}

// ListCalls returns the generated call history, oldest first
func ListCalls(ctx context.Context, store db.CallStore, logger *zap.Logger) ([]db.Call, error) {
	calls, err := store.GetCalls(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calls: %w", err)
	}

	sort.SliceStable(calls, func(i, j int) bool {
		if calls[i].Round != calls[j].Round {
			return calls[i].Round < calls[j].Round
		}
		return calls[i].GeneratedAt < calls[j].GeneratedAt
	})

	logger.Debug("Fetched call history", zap.Int("count", len(calls)))
	return calls, nil
}
