package allocator

import (
	"sort"

	"github.com/seatcall/seatcall/pkg/core/model"
)

// RankCandidates returns a copy of the candidates sorted for a call: by processing
// phase (ascending), then score (descending). The sort is stable, so equal scores keep
// their load order unless tieBreakByID is set, in which case the external id decides.
func RankCandidates(candidates []*model.Candidate, tieBreakByID bool) []*model.Candidate {
	ranked := make([]*model.Candidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		pi, pj := ranked[i].Phase(), ranked[j].Phase()
		if pi != pj {
			return pi < pj
		}
		return higherScore(ranked[i], ranked[j], tieBreakByID)
	})

	return ranked
}

// RankByScore returns a copy of the candidates sorted by score only (descending, stable)
func RankByScore(candidates []*model.Candidate, tieBreakByID bool) []*model.Candidate {
	ranked := make([]*model.Candidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		return higherScore(ranked[i], ranked[j], tieBreakByID)
	})

	return ranked
}

func higherScore(a, b *model.Candidate, tieBreakByID bool) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if tieBreakByID {
		return a.ExternalID < b.ExternalID
	}
	return false
}
