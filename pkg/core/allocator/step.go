package allocator

import (
	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/core/quota"
)

// Eligibility decides whether a pending candidate may be taken by a scan
type Eligibility func(c *model.Candidate) bool

// StepResult is what a single scan over a ranked list produced
type StepResult struct {
	// Filled is the number of candidates selected by the scan
	Filled int

	// Eligible is the number of pending candidates that met the eligibility filter
	// when the scan started, whether or not a seat was left for them
	Eligible int

	// Selected are the candidates picked, in rank order
	Selected []*model.Candidate
}

// Shortfall is the number of eligible candidates left without a seat
func (r StepResult) Shortfall() int {
	return r.Eligible - r.Filled
}

// ExecuteStep scans the ranked list and selects pending, eligible candidates under
// the target quota until the seats run out. Once selected, a candidate is no longer
// pending, so no later scan in the same round can take them again.
func ExecuteStep(ranked []*model.Candidate, target quota.Code, seats int, round int, eligible Eligibility) StepResult {
	var result StepResult

	for _, candidate := range ranked {
		if !candidate.IsPending() || !eligible(candidate) {
			continue
		}
		result.Eligible++

		if result.Filled >= seats {
			continue
		}

		candidate.Select(target, round)
		result.Filled++
		result.Selected = append(result.Selected, candidate)
	}

	return result
}

// stepEligibility returns the primary filter of the step filling target
func stepEligibility(matrix *quota.Matrix, target quota.Code) Eligibility {
	rule := matrix.Rule(target)
	return func(c *model.Candidate) bool {
		return rule.Eligible.Has(c.Declared)
	}
}

// declaredAs returns a filter matching candidates who declared exactly the given quota
func declaredAs(code quota.Code) Eligibility {
	return func(c *model.Candidate) bool {
		return c.Declared == code
	}
}
