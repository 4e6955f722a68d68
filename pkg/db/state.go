package db

import (
	"fmt"
	"sort"

	"github.com/seatcall/seatcall/pkg/core/engine"
	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/core/quota"
)

// FromState flattens a session state into rows. Classification is a derived report and
// is not stored.
func FromState(state engine.State) *Snapshot {
	snapshot := &Snapshot{Round: state.Round}

	for _, ps := range state.Pools {
		snapshot.Pools = append(snapshot.Pools, Pool{Unit: ps.Key.Unit, Program: ps.Key.Program, Shift: ps.Key.Shift})

		for i, c := range ps.Candidates {
			row := Candidate{
				ID:         c.ID,
				ExternalID: c.ExternalID,
				Unit:       ps.Key.Unit,
				Program:    ps.Key.Program,
				Shift:      ps.Key.Shift,
				Position:   i,
				Name:       c.Name,
				Email:      c.Email,
				Score:      c.Score,
				Declared:   c.Declared.String(),
				Option:     c.Option,
				Status:     string(c.Status),
			}
			if c.Assigned != nil {
				row.Assigned = c.Assigned.String()
			}
			if c.Round != nil {
				r := *c.Round
				row.Round = &r
			}
			snapshot.Candidates = append(snapshot.Candidates, row)
		}

		if ps.Ledger != nil {
			for _, code := range quota.Codes {
				snapshot.Ledgers = append(snapshot.Ledgers, Ledger{
					Unit:    ps.Key.Unit,
					Program: ps.Key.Program,
					Shift:   ps.Key.Shift,
					Quota:   code.String(),
					Offered: ps.Ledger[code].Offered,
					Balance: ps.Ledger[code].Balance,
				})
			}
		}
	}

	return snapshot
}

// ToState rebuilds a session state from rows
func (s *Snapshot) ToState() (engine.State, error) {
	state := engine.State{Round: s.Round}
	if state.Round == 0 {
		state.Round = 1
	}

	index := make(map[model.PoolKey]int)
	poolFor := func(key model.PoolKey) *engine.PoolState {
		i, ok := index[key]
		if !ok {
			i = len(state.Pools)
			index[key] = i
			state.Pools = append(state.Pools, engine.PoolState{Key: key, Candidates: []model.Candidate{}})
		}
		return &state.Pools[i]
	}

	for _, p := range s.Pools {
		poolFor(model.PoolKey{Unit: p.Unit, Program: p.Program, Shift: p.Shift})
	}

	rows := make([]Candidate, len(s.Candidates))
	copy(rows, s.Candidates)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })

	for _, row := range rows {
		key := model.PoolKey{Unit: row.Unit, Program: row.Program, Shift: row.Shift}

		declared, err := quota.ParseCode(row.Declared)
		if err != nil {
			return engine.State{}, fmt.Errorf("failed to read candidate %s: %w", row.ExternalID, err)
		}

		c := model.Candidate{
			ID:         row.ID,
			ExternalID: row.ExternalID,
			Pool:       key,
			Name:       row.Name,
			Email:      row.Email,
			Score:      row.Score,
			Declared:   declared,
			Option:     row.Option,
			Status:     model.Status(row.Status),
		}
		if row.Assigned != "" {
			assigned, err := quota.ParseCode(row.Assigned)
			if err != nil {
				return engine.State{}, fmt.Errorf("failed to read candidate %s: %w", row.ExternalID, err)
			}
			c.Assigned = &assigned
		}
		if row.Round != nil {
			r := *row.Round
			c.Round = &r
		}

		ps := poolFor(key)
		ps.Candidates = append(ps.Candidates, c)
	}

	for _, row := range s.Ledgers {
		key := model.PoolKey{Unit: row.Unit, Program: row.Program, Shift: row.Shift}

		code, err := quota.ParseCode(row.Quota)
		if err != nil {
			return engine.State{}, fmt.Errorf("failed to read ledger of pool %s: %w", key, err)
		}

		ps := poolFor(key)
		if ps.Ledger == nil {
			ps.Ledger = &model.Ledger{}
		}
		ps.Ledger[code] = model.LedgerEntry{Offered: row.Offered, Balance: row.Balance}
	}

	return state, nil
}
