package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/seatcall/seatcall/internal/config"
	"github.com/seatcall/seatcall/pkg/core/engine"
	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/core/quota"
	"github.com/seatcall/seatcall/pkg/db"
)

// LedgerView is the seat accounting of a pool as shown to operators
type LedgerView struct {
	Pool model.PoolKey
	// Round is the round the next call will be stamped with
	Round int
	Rows  []model.LedgerRow
}

// DefineSeats sets the seats offered per quota for a pool. Balances restart at the offer.
func DefineSeats(
	ctx context.Context,
	store db.SessionStore,
	cfg *config.Config,
	logger *zap.Logger,
	pool model.PoolKey,
	offered quota.Counts,
) (*LedgerView, error) {
	logger.Debug("Defining seats",
		zap.String("pool", pool.String()),
		zap.Int("total", offered.Total()))

	session, err := update(ctx, store, cfg, logger, func(session *engine.Session) error {
		if err := session.SetLedger(pool, offered); err != nil {
			return fmt.Errorf("failed to set ledger: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Seats defined", zap.String("pool", pool.String()), zap.Int("total", offered.Total()))

	return ledgerView(session, pool)
}

// ViewLedger returns the original and available seats of a pool
func ViewLedger(
	ctx context.Context,
	store db.SessionStore,
	cfg *config.Config,
	logger *zap.Logger,
	pool model.PoolKey,
) (*LedgerView, error) {
	session, err := OpenSession(ctx, store, cfg, logger)
	if err != nil {
		return nil, err
	}
	return ledgerView(session, pool)
}

func ledgerView(session *engine.Session, pool model.PoolKey) (*LedgerView, error) {
	ledger, err := session.Ledger(pool)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}
	round, err := session.Round(pool)
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}

	return &LedgerView{Pool: pool, Round: round, Rows: ledger.Rows()}, nil
}

// CurrentRound returns the round the pool's next call will be stamped with
func CurrentRound(
	ctx context.Context,
	store db.SessionStore,
	cfg *config.Config,
	logger *zap.Logger,
	pool model.PoolKey,
) (int, error) {
	session, err := OpenSession(ctx, store, cfg, logger)
	if err != nil {
		return 0, err
	}

	round, err := session.Round(pool)
	if err != nil {
		return 0, fmt.Errorf("failed to get round: %w", err)
	}
	return round, nil
}
