package engine

import (
	"fmt"

	"github.com/seatcall/seatcall/pkg/core/model"
)

// State is a detached copy of a session, the unit stores persist
type State struct {
	Round int         `json:"round"`
	Pools []PoolState `json:"pools"`
}

// PoolState is one pool inside a State. Candidates keep their load order.
type PoolState struct {
	Key        model.PoolKey     `json:"key"`
	Candidates []model.Candidate `json:"candidates"`
	Ledger     *model.Ledger     `json:"ledger,omitempty"`
}

// Snapshot returns a deep copy of the session state, pools ordered by key
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := State{Round: s.round}
	for _, key := range s.sortedKeysLocked() {
		p := s.pools[key]
		p.mu.Lock()

		ps := PoolState{Key: key, Candidates: make([]model.Candidate, len(p.candidates))}
		for i, c := range p.candidates {
			ps.Candidates[i] = *c.Clone()
		}
		if p.ledger != nil {
			ledger := *p.ledger
			ps.Ledger = &ledger
		}

		p.mu.Unlock()
		state.Pools = append(state.Pools, ps)
	}
	return state
}

// Restore replaces the session state with a snapshot. The snapshot is checked first and
// the session is left unchanged when it is inconsistent.
func (s *Session) Restore(state State) error {
	if err := checkState(state); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	pools := make(map[model.PoolKey]*pool, len(state.Pools))
	for _, ps := range state.Pools {
		p := &pool{key: ps.Key, candidates: make([]*model.Candidate, len(ps.Candidates))}
		for i := range ps.Candidates {
			c := ps.Candidates[i].Clone()
			c.Pool = ps.Key
			p.candidates[i] = c
		}
		if ps.Ledger != nil {
			ledger := *ps.Ledger
			p.ledger = &ledger
		}
		pools[ps.Key] = p
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.round = state.Round
	s.pools = pools
	return nil
}

func checkState(state State) error {
	if state.Round < 1 {
		return validationErrorf("round must be at least 1, got %d", state.Round)
	}

	seenPools := make(map[model.PoolKey]bool)
	for _, ps := range state.Pools {
		if seenPools[ps.Key] {
			return validationErrorf("pool %s appears twice", ps.Key)
		}
		seenPools[ps.Key] = true

		seen := make(map[string]bool)
		for _, c := range ps.Candidates {
			if c.ID == "" {
				return validationErrorf("candidate %q in pool %s has no internal id", c.ExternalID, ps.Key)
			}
			if seen[c.ExternalID] {
				return validationErrorf("duplicate external id %q in pool %s", c.ExternalID, ps.Key)
			}
			seen[c.ExternalID] = true

			if !c.Status.IsValid() {
				return validationErrorf("candidate %q has unknown status %q", c.ExternalID, c.Status)
			}
			if (c.Status == model.StatusSelected) != (c.Assigned != nil) {
				return validationErrorf("candidate %q: assigned quota must be set exactly when selected", c.ExternalID)
			}
			if c.Assigned != nil && !c.Assigned.Valid() {
				return validationErrorf("candidate %q has invalid assigned quota", c.ExternalID)
			}
		}

		if ps.Ledger != nil {
			for i, entry := range ps.Ledger {
				if entry.Offered < 0 || entry.Balance < 0 {
					return validationErrorf("pool %s has a negative ledger entry at %d", ps.Key, i)
				}
			}
		}
	}
	return nil
}
