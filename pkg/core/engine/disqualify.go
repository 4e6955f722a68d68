package engine

import (
	"github.com/seatcall/seatcall/pkg/core/model"
)

// DisqualifyResult reports what a disqualification batch changed
type DisqualifyResult struct {
	// Disqualified lists the selections that were revoked
	Disqualified []*model.Candidate `json:"disqualified"`

	// Ledgers holds the updated seat accounting of every pool that got seats back
	Ledgers map[model.PoolKey]model.Ledger `json:"ledgers"`

	// NextRound is the round the next call will be stamped with
	NextRound int `json:"nextRound"`
}

// Disqualify revokes the selections of the given external ids and returns their seats to
// the ledgers. Only picks from the latest round that still has selected candidates can be
// revoked; ids that are unknown or not revocable are skipped. The round counter advances
// once per batch, even when nothing was revoked.
func (s *Session) Disqualify(externalIDs []string) *DisqualifyResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &DisqualifyResult{Ledgers: make(map[model.PoolKey]model.Ledger)}

	latest := s.latestSelectedRoundLocked()

	byExternalID := make(map[string][]*pool)
	for _, p := range s.pools {
		for _, c := range p.candidates {
			byExternalID[c.ExternalID] = append(byExternalID[c.ExternalID], p)
		}
	}

	if latest > 0 {
		for _, id := range externalIDs {
			for _, p := range byExternalID[id] {
				for _, c := range p.candidates {
					if c.ExternalID != id || !revocable(c, latest) {
						continue
					}

					vacated := *c.Assigned
					c.Disqualify()
					if p.ledger != nil {
						p.ledger.Reclaim(vacated)
						result.Ledgers[p.key] = *p.ledger
					}
					result.Disqualified = append(result.Disqualified, c.Clone())
				}
			}
		}
	}

	s.round++
	result.NextRound = s.round
	return result
}

// latestSelectedRoundLocked is the highest round held by a currently selected candidate,
// or zero when nobody is selected
func (s *Session) latestSelectedRoundLocked() int {
	latest := 0
	for _, p := range s.pools {
		for _, c := range p.candidates {
			if c.Status == model.StatusSelected && c.Round != nil && *c.Round > latest {
				latest = *c.Round
			}
		}
	}
	return latest
}

func revocable(c *model.Candidate, latest int) bool {
	return c.Status == model.StatusSelected && c.Assigned != nil && c.Round != nil && *c.Round == latest
}
