package allocator

import (
	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/core/quota"
)

// FallbackResult records how a quota's leftover seats were drawn from other categories
type FallbackResult struct {
	// Filled is the total number of seats filled through the cascade
	Filled int

	// BySource counts the seats taken from each declared quota
	BySource quota.Counts

	Selected []*model.Candidate
}

// ResolveFallback fills up to `seats` leftover seats of the target quota by walking its
// fallback priority list. Candidates taken this way are tagged with the target quota,
// not the one they declared.
func ResolveFallback(ranked []*model.Candidate, matrix *quota.Matrix, target quota.Code, seats int, round int) FallbackResult {
	var result FallbackResult

	remaining := seats
	for _, source := range matrix.Fallback(target) {
		if remaining <= 0 {
			break
		}

		step := ExecuteStep(ranked, target, remaining, round, declaredAs(source))
		if step.Filled == 0 {
			continue
		}

		result.Filled += step.Filled
		result.BySource[source] += step.Filled
		result.Selected = append(result.Selected, step.Selected...)
		remaining -= step.Filled
	}

	return result
}
