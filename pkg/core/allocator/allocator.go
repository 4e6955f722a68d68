package allocator

import (
	"fmt"
	"math"
	"sort"

	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/core/quota"
)

// RoundConfig contains everything needed to run one call round for one pool
type RoundConfig struct {
	// Candidates of the pool, in load order. They are mutated in place; callers that need
	// all-or-nothing semantics pass copies and commit them afterwards.
	Candidates []*model.Candidate

	// Balance is the seat balance per quota at the start of the round
	Balance quota.Counts

	// Multiplier scales the balance into the seats offered this round (e.g. 2.0 calls
	// twice as many candidates as there are seats)
	Multiplier float64

	// Round is the call number stamped on selected candidates
	Round int

	// Matrix is the eligibility and fallback table (nil means the legal default)
	Matrix *quota.Matrix

	// TieBreakByID orders equal scores by external id instead of load order
	TieBreakByID bool
}

// StepReport summarises what happened to a single quota during the round
type StepReport struct {
	Quota quota.Code `json:"quota"`

	// Offered is the number of seats put up for this quota this round
	Offered int `json:"offered"`

	// Eligible is the size of the step's eligible list across all phases
	Eligible int `json:"eligible"`

	// Filled counts every seat tagged with this quota (own list, fallback and re-offer)
	Filled int `json:"filled"`

	// FallbackFilled is the part of Filled drawn from other categories
	FallbackFilled int `json:"fallbackFilled"`

	// Reoffered is the number of extra seats granted by deficit redistribution. It can
	// exceed ReofferFilled: re-offers only take seats the cascade left empty, and fallback
	// may already have filled them.
	Reoffered int `json:"reoffered"`

	// ReofferFilled is the part of Filled admitted through those extra seats
	ReofferFilled int `json:"reofferFilled"`

	Saldo         int `json:"saldo"`
	AdjustedSaldo int `json:"adjustedSaldo"`

	// Balance is the seat balance carried to the next round. The multiplier only widens
	// the call; the balance drops by the seats filled and never exceeds the start balance.
	Balance int `json:"balance"`
}

// RoundOutcome is the result of running the cascade for one pool
type RoundOutcome struct {
	Round int `json:"round"`

	// Selected lists the candidates called this round, in the order they were picked
	Selected []*model.Candidate `json:"selected"`

	Steps [quota.NumCodes]StepReport `json:"steps"`

	Saldo         Saldo `json:"saldo"`
	AdjustedSaldo Saldo `json:"adjustedSaldo"`
}

// Offered returns the seats offered per quota
func (o *RoundOutcome) Offered() quota.Counts {
	var out quota.Counts
	for i, s := range o.Steps {
		out[i] = s.Offered
	}
	return out
}

// Filled returns the seats filled per quota
func (o *RoundOutcome) Filled() quota.Counts {
	var out quota.Counts
	for i, s := range o.Steps {
		out[i] = s.Filled
	}
	return out
}

// Balances returns the ledger balances to carry into the next round
func (o *RoundOutcome) Balances() quota.Counts {
	var out quota.Counts
	for i, s := range o.Steps {
		out[i] = s.Balance
	}
	return out
}

// OfferedSeats scales a balance by the multiplier, truncating to whole seats
func OfferedSeats(balance quota.Counts, multiplier float64) quota.Counts {
	var out quota.Counts
	for _, c := range quota.Codes {
		out[c] = int(math.Floor(float64(balance[c]) * multiplier))
	}
	return out
}

// AllocateRound runs the nine-step cascade for one pool:
//
//  1. candidates are ranked and split into phases by choice rank
//  2. for every phase, steps 1..9 fill their seats from their own eligible list,
//     falling back to other categories when the list runs dry
//  3. deficit redistribution runs once and re-offers freed seats at the donating steps
//  4. the balance carried to the next round is computed per quota
func AllocateRound(cfg RoundConfig) (*RoundOutcome, error) {
	if cfg.Multiplier <= 0 || math.IsNaN(cfg.Multiplier) || math.IsInf(cfg.Multiplier, 0) {
		return nil, fmt.Errorf("multiplier must be a positive number, got %v", cfg.Multiplier)
	}
	if cfg.Round < 1 {
		return nil, fmt.Errorf("round must be at least 1, got %d", cfg.Round)
	}

	matrix := cfg.Matrix
	if matrix == nil {
		matrix = quota.DefaultMatrix()
	}

	outcome := &RoundOutcome{Round: cfg.Round}

	offered := OfferedSeats(cfg.Balance, cfg.Multiplier)
	var eligible, filled quota.Counts

	for _, code := range quota.Codes {
		outcome.Steps[code].Quota = code
		outcome.Steps[code].Offered = offered[code]
	}

	// Step 1: Rank and split into phases
	ranked := RankCandidates(cfg.Candidates, cfg.TieBreakByID)
	phases := splitPhases(ranked)

	// Step 2: Run the cascade once per phase, against the same round's seats
	for _, phase := range phases {
		for step := 1; step <= quota.NumCodes; step++ {
			code := quota.StepCode(step)
			seats := max(offered[code]-filled[code], 0)

			primary := ExecuteStep(phase, code, seats, cfg.Round, stepEligibility(matrix, code))
			eligible[code] += primary.Eligible
			filled[code] += primary.Filled
			outcome.Selected = append(outcome.Selected, primary.Selected...)

			remaining := seats - primary.Filled
			if remaining <= 0 {
				continue
			}

			fallback := ResolveFallback(phase, matrix, code, remaining, cfg.Round)
			filled[code] += fallback.Filled
			outcome.Steps[code].FallbackFilled += fallback.Filled
			outcome.Selected = append(outcome.Selected, fallback.Selected...)
		}
	}

	// Step 3: Deficit redistribution
	outcome.Saldo = ComputeSaldo(eligible, offered)
	outcome.AdjustedSaldo = AdjustSaldo(outcome.Saldo)
	reoffers := Reoffers(outcome.Saldo, outcome.AdjustedSaldo)

	// Re-offered seats can only be taken up to what the cascade left empty,
	// otherwise a round could call more candidates than it offered
	budget := max(offered.Total()-filled.Total(), 0)

	for step := 1; step <= quota.NumCodes; step++ {
		code := quota.StepCode(step)
		outcome.Steps[code].Reoffered = reoffers[code]

		seats := min(reoffers[code], budget)
		if seats <= 0 {
			continue
		}

		extra := ExecuteStep(ranked, code, seats, cfg.Round, stepEligibility(matrix, code))
		filled[code] += extra.Filled
		budget -= extra.Filled
		outcome.Steps[code].ReofferFilled = extra.Filled
		outcome.Selected = append(outcome.Selected, extra.Selected...)
	}

	// Step 4: Carry balances forward
	for _, code := range quota.Codes {
		report := &outcome.Steps[code]
		report.Eligible = eligible[code]
		report.Filled = filled[code]
		report.Saldo = outcome.Saldo[code]
		report.AdjustedSaldo = outcome.AdjustedSaldo[code]
		report.Balance = max(cfg.Balance[code]-filled[code], 0)
	}

	return outcome, nil
}

// splitPhases groups an already ranked list by phase, keeping rank order inside each phase
func splitPhases(ranked []*model.Candidate) [][]*model.Candidate {
	byPhase := make(map[int][]*model.Candidate)
	for _, c := range ranked {
		byPhase[c.Phase()] = append(byPhase[c.Phase()], c)
	}

	keys := make([]int, 0, len(byPhase))
	for k := range byPhase {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	phases := make([][]*model.Candidate, 0, len(keys))
	for _, k := range keys {
		phases = append(phases, byPhase[k])
	}
	return phases
}
