package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/core/quota"
)

func TestRankCandidates_DescendingScore(t *testing.T) {
	candidates := []*model.Candidate{
		newCandidate("a", 60, quota.AC),
		newCandidate("b", 90, quota.AC),
		newCandidate("c", 75, quota.LBQ),
	}

	ranked := RankCandidates(candidates, false)

	assert.Equal(t, []string{"b", "c", "a"}, externalIDs(ranked))
	// Input order untouched
	assert.Equal(t, []string{"a", "b", "c"}, externalIDs(candidates))
}

func TestRankCandidates_TiesKeepLoadOrder(t *testing.T) {
	candidates := []*model.Candidate{
		newCandidate("z", 80, quota.AC),
		newCandidate("m", 80, quota.AC),
		newCandidate("a", 80, quota.AC),
	}

	ranked := RankCandidates(candidates, false)

	assert.Equal(t, []string{"z", "m", "a"}, externalIDs(ranked))
}

func TestRankCandidates_TieBreakByID(t *testing.T) {
	candidates := []*model.Candidate{
		newCandidate("z", 80, quota.AC),
		newCandidate("m", 80, quota.AC),
		newCandidate("a", 80, quota.AC),
		newCandidate("top", 99, quota.AC),
	}

	ranked := RankCandidates(candidates, true)

	assert.Equal(t, []string{"top", "a", "m", "z"}, externalIDs(ranked))
}

func TestRankCandidates_PhaseBeforeScore(t *testing.T) {
	second := newCandidate("second-choice", 95, quota.AC)
	second.Option = 2
	first := newCandidate("first-choice", 50, quota.AC)
	first.Option = 1
	unset := newCandidate("no-option", 70, quota.AC)

	ranked := RankCandidates([]*model.Candidate{second, first, unset}, false)

	// A missing option counts as first choice
	assert.Equal(t, []string{"no-option", "first-choice", "second-choice"}, externalIDs(ranked))
}

func TestRankByScore_IgnoresPhase(t *testing.T) {
	second := newCandidate("second-choice", 95, quota.AC)
	second.Option = 2
	first := newCandidate("first-choice", 50, quota.AC)

	ranked := RankByScore([]*model.Candidate{first, second}, false)

	assert.Equal(t, []string{"second-choice", "first-choice"}, externalIDs(ranked))
}
