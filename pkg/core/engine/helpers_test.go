package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/core/quota"
)

func poolKey(program string) model.PoolKey {
	return model.PoolKey{Unit: "Campus Norte", Program: program, Shift: "Noturno"}
}

func candidate(externalID string, score float64, declared quota.Code) model.Candidate {
	return model.Candidate{ExternalID: externalID, Score: score, Declared: declared}
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(Options{})
	require.NoError(t, err)
	return s
}

// loadPool loads candidates and seats into a pool in one go
func loadPool(t *testing.T, s *Session, key model.PoolKey, offered map[quota.Code]int, candidates ...model.Candidate) {
	t.Helper()
	_, err := s.Load(key, candidates)
	require.NoError(t, err)

	var counts quota.Counts
	for code, n := range offered {
		counts[code] = n
	}
	require.NoError(t, s.SetLedger(key, counts))
}

func findCandidate(t *testing.T, s *Session, key model.PoolKey, externalID string) *model.Candidate {
	t.Helper()
	candidates, err := s.Candidates(key)
	require.NoError(t, err)
	for _, c := range candidates {
		if c.ExternalID == externalID {
			return c
		}
	}
	t.Fatalf("candidate %s not found in pool %s", externalID, key)
	return nil
}

func externalIDs(candidates []*model.Candidate) []string {
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ExternalID
	}
	return ids
}
