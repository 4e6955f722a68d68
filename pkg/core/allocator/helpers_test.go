package allocator

import (
	"fmt"

	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/core/quota"
)

var testPool = model.PoolKey{Unit: "Campus Norte", Program: "Engenharia", Shift: "Noturno"}

// newCandidate builds a pending candidate whose internal id mirrors the external one
func newCandidate(externalID string, score float64, declared quota.Code) *model.Candidate {
	return &model.Candidate{
		ID:         "id-" + externalID,
		ExternalID: externalID,
		Pool:       testPool,
		Score:      score,
		Declared:   declared,
		Status:     model.StatusPending,
	}
}

// candidatesWithScores builds one candidate per score, all declaring the same quota
func candidatesWithScores(declared quota.Code, scores ...float64) []*model.Candidate {
	out := make([]*model.Candidate, 0, len(scores))
	for i, s := range scores {
		out = append(out, newCandidate(fmt.Sprintf("%s-%d", declared, i+1), s, declared))
	}
	return out
}

func externalIDs(candidates []*model.Candidate) []string {
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.ExternalID)
	}
	return ids
}

func seats(pairs map[quota.Code]int) quota.Counts {
	var out quota.Counts
	for c, n := range pairs {
		out[c] = n
	}
	return out
}
