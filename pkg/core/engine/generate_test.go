package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/core/quota"
)

func TestGenerateRound_OpenCompetition(t *testing.T) {
	s := newTestSession(t)
	key := poolKey("Medicina")
	loadPool(t, s, key, map[quota.Code]int{quota.AC: 2},
		candidate("a", 90, quota.AC),
		candidate("b", 80, quota.AC),
		candidate("c", 70, quota.AC),
		candidate("d", 60, quota.AC),
		candidate("e", 50, quota.AC),
	)

	result, err := s.GenerateRound(key, 1)
	require.NoError(t, err)

	assert.Equal(t, key, result.Pool)
	assert.Equal(t, 1, result.Round)
	assert.Equal(t, []string{"a", "b"}, externalIDs(result.Selected))
	assert.Equal(t, 3, result.Saldo[quota.AC])
	assert.Equal(t, 0, result.Ledger[quota.AC].Balance)
	assert.Equal(t, 2, result.Ledger[quota.AC].Offered)

	ledger, err := s.Ledger(key)
	require.NoError(t, err)
	assert.Equal(t, result.Ledger, ledger)

	a := findCandidate(t, s, key, "a")
	assert.Equal(t, model.StatusSelected, a.Status)
	assert.Equal(t, quota.AC, *a.Assigned)
	assert.True(t, findCandidate(t, s, key, "c").IsPending())

	// Generating does not move the round counter
	assert.Equal(t, 1, s.CurrentRound())
}

func TestGenerateRound_ResultIsDetached(t *testing.T) {
	s := newTestSession(t)
	key := poolKey("Medicina")
	loadPool(t, s, key, map[quota.Code]int{quota.AC: 1}, candidate("a", 90, quota.AC))

	result, err := s.GenerateRound(key, 1)
	require.NoError(t, err)

	result.Selected[0].Disqualify()

	assert.Equal(t, model.StatusSelected, findCandidate(t, s, key, "a").Status)
}

func TestGenerateRound_RequiresLedger(t *testing.T) {
	s := newTestSession(t)
	key := poolKey("Medicina")

	_, err := s.GenerateRound(key, 1)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	_, err = s.Load(key, []model.Candidate{candidate("a", 90, quota.AC)})
	require.NoError(t, err)

	_, err = s.GenerateRound(key, 1)
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, err.Error(), "ledger not set")
}

func TestGenerateRound_RequiresCandidates(t *testing.T) {
	s := newTestSession(t)
	key := poolKey("Medicina")
	require.NoError(t, s.SetLedger(key, quota.Counts{1}))

	_, err := s.GenerateRound(key, 1)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestGenerateRound_FailureLeavesPoolUntouched(t *testing.T) {
	s := newTestSession(t)
	key := poolKey("Medicina")
	loadPool(t, s, key, map[quota.Code]int{quota.AC: 1}, candidate("a", 90, quota.AC))

	before := s.Snapshot()

	_, err := s.GenerateRound(key, 0)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	assert.Equal(t, before, s.Snapshot())
}

func TestGenerateRound_SecondCallUsesRemainingBalance(t *testing.T) {
	s := newTestSession(t)
	key := poolKey("Medicina")
	loadPool(t, s, key, map[quota.Code]int{quota.AC: 3},
		candidate("a", 90, quota.AC),
		candidate("b", 80, quota.AC),
	)

	first, err := s.GenerateRound(key, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, externalIDs(first.Selected))
	assert.Equal(t, 1, first.Ledger[quota.AC].Balance)

	// A late registration competes for the seat left over
	_, err = s.Load(key, []model.Candidate{candidate("c", 95, quota.AC)})
	require.NoError(t, err)

	second, err := s.GenerateRound(key, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Steps[quota.AC].Offered)
	assert.Equal(t, []string{"c"}, externalIDs(second.Selected))
	assert.Equal(t, 0, second.Ledger[quota.AC].Balance)
	assert.Equal(t, 3, second.Ledger[quota.AC].Offered)
}

func TestGenerateRound_MultiplierOverCalls(t *testing.T) {
	s := newTestSession(t)
	key := poolKey("Medicina")
	loadPool(t, s, key, map[quota.Code]int{quota.AC: 2},
		candidate("a", 90, quota.AC),
		candidate("b", 80, quota.AC),
		candidate("c", 70, quota.AC),
		candidate("d", 60, quota.AC),
		candidate("e", 50, quota.AC),
	)

	result, err := s.GenerateRound(key, 2)
	require.NoError(t, err)

	assert.Equal(t, 2.0, result.Multiplier)
	assert.Equal(t, []string{"a", "b", "c", "d"}, externalIDs(result.Selected))
	assert.Equal(t, 0, result.Ledger[quota.AC].Balance)
}

func TestGenerateRound_MultiplierAcrossRoundsStaysWithinOriginalSeats(t *testing.T) {
	s := newTestSession(t)
	key := poolKey("Medicina")
	loadPool(t, s, key, map[quota.Code]int{quota.AC: 2}, candidate("a", 90, quota.AC))

	first, err := s.GenerateRound(key, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, first.Steps[quota.AC].Offered)
	assert.Equal(t, []string{"a"}, externalIDs(first.Selected))
	assert.Equal(t, 1, first.Ledger[quota.AC].Balance)

	late := make([]model.Candidate, 0, 9)
	for i := range 9 {
		late = append(late, candidate(fmt.Sprintf("late-%d", i), float64(80-i), quota.AC))
	}
	_, err = s.Load(key, late)
	require.NoError(t, err)

	second, err := s.GenerateRound(key, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Steps[quota.AC].Offered)
	assert.Equal(t, []string{"late-0", "late-1"}, externalIDs(second.Selected))
	assert.Equal(t, 0, second.Ledger[quota.AC].Balance)
	assert.Equal(t, 2, second.Ledger[quota.AC].Offered)
}

func TestGenerateAll_RunsEveryReadyPool(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newTestSession(t)
	programs := []string{"Medicina", "Direito", "Engenharia", "Letras"}
	for _, program := range programs {
		loadPool(t, s, poolKey(program), map[quota.Code]int{quota.AC: 1, quota.LBQ: 1},
			candidate(program+"-1", 90, quota.AC),
			candidate(program+"-2", 80, quota.LBQ),
			candidate(program+"-3", 70, quota.LBQ),
		)
	}

	// Seats defined but nobody loaded yet
	require.NoError(t, s.SetLedger(poolKey("Filosofia"), quota.Counts{2}))

	results, err := s.GenerateAll(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, results, len(programs))

	for _, program := range programs {
		result := results[poolKey(program)]
		require.NotNil(t, result, program)
		assert.Equal(t, 1, result.Round)
		assert.Equal(t, []string{program + "-1", program + "-2"}, externalIDs(result.Selected))
	}
	assert.NotContains(t, results, poolKey("Filosofia"))
}

func TestGenerateAll_NothingReady(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newTestSession(t)
	require.NoError(t, s.SetLedger(poolKey("Medicina"), quota.Counts{1}))

	_, err := s.GenerateAll(context.Background(), 1)

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestGenerateAll_CancelledContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newTestSession(t)
	key := poolKey("Medicina")
	loadPool(t, s, key, map[quota.Code]int{quota.AC: 1}, candidate("a", 90, quota.AC))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.GenerateAll(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)

	assert.True(t, findCandidate(t, s, key, "a").IsPending())
}
