package allocator

import (
	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/core/quota"
)

// Classification maps a candidate's internal id to its 1-based rank in every quota list
// the candidate belongs to
type Classification map[string]map[quota.Code]int

// Classify ranks the whole pool once per quota, regardless of status, using the
// matrix's ranking-eligibility sets. It is informational only: nothing is mutated.
func Classify(candidates []*model.Candidate, matrix *quota.Matrix, tieBreakByID bool) Classification {
	if matrix == nil {
		matrix = quota.DefaultMatrix()
	}

	ranked := RankByScore(candidates, tieBreakByID)
	out := make(Classification, len(candidates))

	for _, code := range quota.Codes {
		position := 0
		for _, c := range ranked {
			if !matrix.RankingEligible(code, c.Declared) {
				continue
			}
			position++
			if out[c.ID] == nil {
				out[c.ID] = make(map[quota.Code]int)
			}
			out[c.ID][code] = position
		}
	}

	return out
}

// Position returns the candidate's rank in the given quota list, or 0 when the candidate
// is not part of that list
func (c Classification) Position(candidateID string, code quota.Code) int {
	return c[candidateID][code]
}
