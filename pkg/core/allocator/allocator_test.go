package allocator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/core/quota"
)

func TestAllocateRound_OpenCompetitionOnly(t *testing.T) {
	candidates := candidatesWithScores(quota.AC, 90, 80, 70, 60, 50)

	outcome, err := AllocateRound(RoundConfig{
		Candidates: candidates,
		Balance:    seats(map[quota.Code]int{quota.AC: 2}),
		Multiplier: 1,
		Round:      1,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"AC-1", "AC-2"}, externalIDs(outcome.Selected))
	for _, c := range outcome.Selected {
		assert.Equal(t, quota.AC, *c.Assigned)
		assert.Equal(t, 1, *c.Round)
	}

	ac := outcome.Steps[quota.AC]
	assert.Equal(t, 2, ac.Offered)
	assert.Equal(t, 2, ac.Filled)
	assert.Equal(t, 5, ac.Eligible)
	assert.Equal(t, 3, ac.Saldo)
	assert.Equal(t, 3, ac.AdjustedSaldo)
	assert.Equal(t, 0, ac.Balance)

	// Nothing to propagate
	assert.Equal(t, outcome.Saldo, outcome.AdjustedSaldo)
	assert.Equal(t, Saldo{3, 0, 0, 0, 0, 0, 0, 0, 0}, outcome.Saldo)

	// Remaining candidates wait for the next call
	for _, c := range candidates[2:] {
		assert.True(t, c.IsPending())
	}
}

func TestAllocateRound_EmptyLastQuotaPushesDeficitBackward(t *testing.T) {
	candidates := candidatesWithScores(quota.LBQ, 80, 70, 60)

	outcome, err := AllocateRound(RoundConfig{
		Candidates: candidates,
		Balance:    seats(map[quota.Code]int{quota.LBQ: 1, quota.LBPPI: 1}),
		Multiplier: 1,
		Round:      1,
	})
	require.NoError(t, err)

	lbppi := outcome.Steps[quota.LBPPI]
	assert.Equal(t, 0, lbppi.Eligible)
	assert.Equal(t, -1, lbppi.Saldo)
	assert.Equal(t, 0, lbppi.AdjustedSaldo)

	lbq := outcome.Steps[quota.LBQ]
	assert.Equal(t, 2, lbq.Saldo)
	assert.Equal(t, 1, lbq.AdjustedSaldo)
	assert.Equal(t, 1, lbq.Reoffered)

	assert.Equal(t, Saldo{3, 3, 0, 3, 0, 3, 0, 2, -1}, outcome.Saldo)
	assert.Equal(t, Saldo{3, 3, 0, 3, 0, 3, 0, 1, 0}, outcome.AdjustedSaldo)

	// The empty LB_PPI seat was already taken by the fallback cascade from LB_Q,
	// so the re-offered seat finds no unfilled capacity left
	assert.Equal(t, 1, lbppi.FallbackFilled)
	assert.Equal(t, 0, lbq.ReofferFilled)
	assert.Equal(t, []string{"LB_Q-1", "LB_Q-2"}, externalIDs(outcome.Selected))
	assert.Equal(t, quota.LBQ, *candidates[0].Assigned)
	assert.Equal(t, quota.LBPPI, *candidates[1].Assigned)
	assert.True(t, candidates[2].IsPending())
}

func TestAllocateRound_ReofferFillsFromOwnList(t *testing.T) {
	matrix, err := quota.BuildMatrix(map[string]quota.RuleOverride{
		"LB_PPI": {DisableFallback: true},
	})
	require.NoError(t, err)

	candidates := candidatesWithScores(quota.LBQ, 80, 70, 60)

	outcome, err := AllocateRound(RoundConfig{
		Candidates: candidates,
		Balance:    seats(map[quota.Code]int{quota.LBQ: 1, quota.LBPPI: 1}),
		Multiplier: 1,
		Round:      1,
		Matrix:     matrix,
	})
	require.NoError(t, err)

	lbq := outcome.Steps[quota.LBQ]
	assert.Equal(t, 1, lbq.Reoffered)
	assert.Equal(t, 1, lbq.ReofferFilled)
	assert.Equal(t, 2, lbq.Filled)
	assert.Equal(t, 0, lbq.Balance)

	lbppi := outcome.Steps[quota.LBPPI]
	assert.Equal(t, 0, lbppi.Filled)
	assert.Equal(t, 1, lbppi.Balance)

	// Second LB_Q candidate came in through the extra seat, tagged with its own step's quota
	assert.Equal(t, []string{"LB_Q-1", "LB_Q-2"}, externalIDs(outcome.Selected))
	assert.Equal(t, quota.LBQ, *candidates[1].Assigned)
	assert.True(t, candidates[2].IsPending())
}

func TestAllocateRound_FilledNeverExceedsOffered(t *testing.T) {
	var candidates []*model.Candidate
	scores := []float64{91, 88, 87, 85, 80, 79, 72, 70, 66, 64, 61, 55, 54, 50, 43, 40, 38, 30}
	for i, s := range scores {
		code := quota.Codes[i%quota.NumCodes]
		candidates = append(candidates, newCandidate(fmt.Sprintf("c%02d", i), s, code))
	}

	balances := []quota.Counts{
		seats(map[quota.Code]int{quota.AC: 3, quota.LIEP: 1, quota.LBPPI: 4}),
		seats(map[quota.Code]int{quota.LBPCD: 2, quota.LBQ: 2, quota.LBPPI: 2, quota.LIPCD: 2}),
		seats(map[quota.Code]int{quota.AC: 10, quota.LBEP: 10}),
		{1, 1, 1, 1, 1, 1, 1, 1, 1},
	}

	for i, balance := range balances {
		t.Run(fmt.Sprintf("balance_%d", i), func(t *testing.T) {
			pool := make([]*model.Candidate, len(candidates))
			for j, c := range candidates {
				pool[j] = c.Clone()
			}

			outcome, err := AllocateRound(RoundConfig{
				Candidates: pool,
				Balance:    balance,
				Multiplier: 1,
				Round:      1,
			})
			require.NoError(t, err)

			assert.LessOrEqual(t, outcome.Filled().Total(), outcome.Offered().Total())
			assert.Equal(t, outcome.Filled().Total(), len(outcome.Selected))

			seen := make(map[string]bool)
			for _, c := range outcome.Selected {
				assert.False(t, seen[c.ID], "candidate %s selected twice", c.ExternalID)
				seen[c.ID] = true
				require.NotNil(t, c.Assigned)
				assert.Equal(t, model.StatusSelected, c.Status)
			}

			for _, b := range outcome.Balances() {
				assert.GreaterOrEqual(t, b, 0)
			}
		})
	}
}

func TestAllocateRound_PhasesProcessedInOrder(t *testing.T) {
	firstA := newCandidate("first-a", 50, quota.AC)
	firstB := newCandidate("first-b", 40, quota.AC)
	second := newCandidate("second", 90, quota.AC)
	second.Option = 2

	outcome, err := AllocateRound(RoundConfig{
		Candidates: []*model.Candidate{second, firstA, firstB},
		Balance:    seats(map[quota.Code]int{quota.AC: 2}),
		Multiplier: 1,
		Round:      1,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"first-a", "first-b"}, externalIDs(outcome.Selected))
	assert.True(t, second.IsPending())
	// Eligible list spans every phase
	assert.Equal(t, 3, outcome.Steps[quota.AC].Eligible)
}

func TestAllocateRound_MultiplierScalesOfferedSeats(t *testing.T) {
	candidates := candidatesWithScores(quota.AC, 90, 80, 70, 60, 50)

	outcome, err := AllocateRound(RoundConfig{
		Candidates: candidates,
		Balance:    seats(map[quota.Code]int{quota.AC: 2}),
		Multiplier: 1.5,
		Round:      1,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, outcome.Steps[quota.AC].Offered)
	assert.Len(t, outcome.Selected, 3)
	assert.Equal(t, 2, outcome.Steps[quota.AC].Saldo)
}

func TestAllocateRound_MultiplierDoesNotInflateBalance(t *testing.T) {
	tests := []struct {
		name        string
		balance     int
		multiplier  float64
		candidates  int
		wantOffered int
		wantBalance int
	}{
		{"over-call with few candidates", 2, 2, 1, 4, 1},
		{"over-call filling every seat", 2, 2, 5, 4, 0},
		{"under-call keeps the rest", 4, 0.5, 5, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores := make([]float64, tt.candidates)
			for i := range scores {
				scores[i] = float64(100 - i)
			}

			outcome, err := AllocateRound(RoundConfig{
				Candidates: candidatesWithScores(quota.AC, scores...),
				Balance:    seats(map[quota.Code]int{quota.AC: tt.balance}),
				Multiplier: tt.multiplier,
				Round:      1,
			})
			require.NoError(t, err)

			ac := outcome.Steps[quota.AC]
			assert.Equal(t, tt.wantOffered, ac.Offered)
			assert.Equal(t, tt.wantBalance, ac.Balance)
			assert.LessOrEqual(t, ac.Balance, tt.balance)
		})
	}
}

func TestAllocateRound_StampsRoundNumber(t *testing.T) {
	candidates := candidatesWithScores(quota.AC, 90)

	outcome, err := AllocateRound(RoundConfig{
		Candidates: candidates,
		Balance:    seats(map[quota.Code]int{quota.AC: 1}),
		Multiplier: 1,
		Round:      4,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, outcome.Round)
	assert.Equal(t, 4, *candidates[0].Round)
}

func TestAllocateRound_RejectsBadInput(t *testing.T) {
	_, err := AllocateRound(RoundConfig{Multiplier: 0, Round: 1})
	assert.Error(t, err)

	_, err = AllocateRound(RoundConfig{Multiplier: -1, Round: 1})
	assert.Error(t, err)

	_, err = AllocateRound(RoundConfig{Multiplier: 1, Round: 0})
	assert.Error(t, err)
}

func TestOfferedSeats_Truncates(t *testing.T) {
	offered := OfferedSeats(seats(map[quota.Code]int{quota.AC: 3, quota.LBQ: 1}), 1.5)
	assert.Equal(t, 4, offered[quota.AC])
	assert.Equal(t, 1, offered[quota.LBQ])
}
