package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/core/quota"
)

func TestExecuteStep_FillsTopEligible(t *testing.T) {
	ranked := RankCandidates([]*model.Candidate{
		newCandidate("ac-1", 95, quota.AC),
		newCandidate("lbq-1", 90, quota.LBQ),
		newCandidate("lbq-2", 85, quota.LBQ),
		newCandidate("lbppi-1", 80, quota.LBPPI),
	}, false)

	result := ExecuteStep(ranked, quota.LBEP, 2, 1, stepEligibility(quota.DefaultMatrix(), quota.LBEP))

	assert.Equal(t, 2, result.Filled)
	assert.Equal(t, 3, result.Eligible)
	assert.Equal(t, 1, result.Shortfall())
	assert.Equal(t, []string{"lbq-1", "lbq-2"}, externalIDs(result.Selected))

	for _, c := range result.Selected {
		assert.Equal(t, model.StatusSelected, c.Status)
		require.NotNil(t, c.Assigned)
		assert.Equal(t, quota.LBEP, *c.Assigned)
		require.NotNil(t, c.Round)
		assert.Equal(t, 1, *c.Round)
	}

	// Open competition candidate is not eligible for LB_EP
	assert.Equal(t, model.StatusPending, ranked[0].Status)
}

func TestExecuteStep_SkipsNonPending(t *testing.T) {
	selected := newCandidate("selected", 99, quota.AC)
	selected.Select(quota.AC, 1)
	disqualified := newCandidate("disqualified", 98, quota.AC)
	disqualified.Disqualify()
	pending := newCandidate("pending", 10, quota.AC)

	ranked := []*model.Candidate{selected, disqualified, pending}
	result := ExecuteStep(ranked, quota.AC, 3, 2, stepEligibility(quota.DefaultMatrix(), quota.AC))

	assert.Equal(t, 1, result.Filled)
	assert.Equal(t, 1, result.Eligible)
	assert.Equal(t, []string{"pending"}, externalIDs(result.Selected))
	assert.Equal(t, 1, *selected.Round, "earlier selection must not be restamped")
}

func TestExecuteStep_ZeroSeatsStillCountsEligible(t *testing.T) {
	ranked := candidatesWithScores(quota.LBQ, 70, 60)

	result := ExecuteStep(ranked, quota.LBQ, 0, 1, stepEligibility(quota.DefaultMatrix(), quota.LBQ))

	assert.Equal(t, 0, result.Filled)
	assert.Equal(t, 2, result.Eligible)
	for _, c := range ranked {
		assert.True(t, c.IsPending())
	}
}

func TestExecuteStep_CandidateNotTakenTwice(t *testing.T) {
	matrix := quota.DefaultMatrix()
	ranked := candidatesWithScores(quota.LIPPI, 90, 80)

	first := ExecuteStep(ranked, quota.LIEP, 1, 1, stepEligibility(matrix, quota.LIEP))
	second := ExecuteStep(ranked, quota.LIPPI, 5, 1, stepEligibility(matrix, quota.LIPPI))

	assert.Equal(t, []string{"LI_PPI-1"}, externalIDs(first.Selected))
	assert.Equal(t, []string{"LI_PPI-2"}, externalIDs(second.Selected))
	assert.Equal(t, 1, second.Eligible)
}
