package engine

import (
	"strconv"

	"github.com/seatcall/seatcall/pkg/core/allocator"
	"github.com/seatcall/seatcall/pkg/core/model"
)

// CallList returns the candidates currently selected in the given round across every pool,
// highest score first
func (s *Session) CallList(round int) ([]*model.Candidate, error) {
	touched, err := s.roundCandidates(round)
	if err != nil {
		return nil, err
	}

	var selected []*model.Candidate
	for _, c := range touched {
		if c.Status == model.StatusSelected {
			selected = append(selected, c)
		}
	}
	return allocator.RankByScore(selected, s.tieBreak), nil
}

// RoundReport returns every candidate stamped with the given round, whatever their status
// now, highest score first
func (s *Session) RoundReport(round int) ([]*model.Candidate, error) {
	touched, err := s.roundCandidates(round)
	if err != nil {
		return nil, err
	}
	return allocator.RankByScore(touched, s.tieBreak), nil
}

// Classification ranks every candidate of the pool on every quota list they belong to and
// records the positions on the candidates. The result is ordered by score.
func (s *Session) Classification(key model.PoolKey) ([]*model.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pools[key]
	if !ok {
		return nil, &NotFoundError{Resource: "pool", Key: key.String()}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.candidates) == 0 {
		return nil, &NotFoundError{Resource: "candidates", Key: key.String()}
	}

	classification := allocator.Classify(p.candidates, s.matrix, s.tieBreak)
	for _, c := range p.candidates {
		c.Classification = classification[c.ID]
	}

	return allocator.RankByScore(cloneAll(p.candidates), s.tieBreak), nil
}

func (s *Session) roundCandidates(round int) ([]*model.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var touched []*model.Candidate
	for _, key := range s.sortedKeysLocked() {
		p := s.pools[key]
		p.mu.Lock()
		for _, c := range p.candidates {
			if c.Round != nil && *c.Round == round {
				touched = append(touched, c.Clone())
			}
		}
		p.mu.Unlock()
	}

	if len(touched) == 0 {
		return nil, &NotFoundError{Resource: "round", Key: strconv.Itoa(round)}
	}
	return touched, nil
}

func (s *Session) sortedKeysLocked() []model.PoolKey {
	keys := make([]model.PoolKey, 0, len(s.pools))
	for k := range s.pools {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}
