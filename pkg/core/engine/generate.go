package engine

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/seatcall/seatcall/pkg/core/allocator"
	"github.com/seatcall/seatcall/pkg/core/model"
)

// RoundResult is the committed outcome of one call for one pool
type RoundResult struct {
	Pool       model.PoolKey `json:"pool"`
	Multiplier float64       `json:"multiplier"`

	allocator.RoundOutcome

	// Ledger is the pool's seat accounting after the round was committed
	Ledger model.Ledger `json:"ledger"`
}

// GenerateRound runs the cascade for one pool at the current round. The round is computed
// on copies of the pool's candidates and only committed when it completes, so a failure
// leaves the pool untouched.
func (s *Session) GenerateRound(key model.PoolKey, multiplier float64) (*RoundResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pools[key]
	if !ok {
		return nil, validationErrorf("ledger not set for pool %s", key)
	}
	return s.generateLocked(p, s.round, multiplier)
}

// GenerateAll runs a call for every pool that has both a ledger and candidates, in
// parallel. Pools that are not ready are skipped. The round counter is held still for the
// whole batch so every pool is stamped with the same round.
func (s *Session) GenerateAll(ctx context.Context, multiplier float64) (map[model.PoolKey]*RoundResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ready []*pool
	for _, p := range s.pools {
		p.mu.Lock()
		if p.ledger != nil && len(p.candidates) > 0 {
			ready = append(ready, p)
		}
		p.mu.Unlock()
	}
	if len(ready) == 0 {
		return nil, validationErrorf("no pool has both a ledger and candidates")
	}

	var (
		mu      sync.Mutex
		results = make(map[model.PoolKey]*RoundResult, len(ready))
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, p := range ready {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			result, err := s.generateLocked(p, s.round, multiplier)
			if err != nil {
				return fmt.Errorf("failed to generate round for pool %s: %w", p.key, err)
			}

			mu.Lock()
			results[p.key] = result
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// generateLocked runs and commits one round. Caller holds the session lock.
func (s *Session) generateLocked(p *pool, round int, multiplier float64) (*RoundResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ledger == nil {
		return nil, validationErrorf("ledger not set for pool %s", p.key)
	}
	if len(p.candidates) == 0 {
		return nil, validationErrorf("pool %s has no candidates", p.key)
	}

	working := cloneAll(p.candidates)

	outcome, err := allocator.AllocateRound(allocator.RoundConfig{
		Candidates:   working,
		Balance:      p.ledger.Balances(),
		Multiplier:   multiplier,
		Round:        round,
		Matrix:       s.matrix,
		TieBreakByID: s.tieBreak,
	})
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	// Commit
	p.candidates = working
	balances := outcome.Balances()
	for i := range p.ledger {
		p.ledger[i].Balance = balances[i]
	}

	result := &RoundResult{
		Pool:         p.key,
		Multiplier:   multiplier,
		RoundOutcome: *outcome,
		Ledger:       *p.ledger,
	}
	result.Selected = cloneAll(outcome.Selected)
	return result, nil
}
