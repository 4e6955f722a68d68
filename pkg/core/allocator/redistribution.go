package allocator

import "github.com/seatcall/seatcall/pkg/core/quota"

// Saldo is the per-step supply/demand balance: eligible candidates minus offered seats.
// Positive means more candidates than seats, negative means seats without candidates.
type Saldo [quota.NumCodes]int

// ComputeSaldo builds the raw balance vector from eligible list sizes and offered seats
func ComputeSaldo(eligible, offered quota.Counts) Saldo {
	var s Saldo
	for i := range s {
		s[i] = eligible[i] - offered[i]
	}
	return s
}

// AdjustSaldo pushes every negative balance backward into the previous step, from the
// last step down to the first. A deficit keeps travelling until a surplus absorbs it;
// whatever reaches step 0 stays there as an unrecoverable shortfall.
func AdjustSaldo(saldo Saldo) Saldo {
	adjusted := saldo
	for i := len(adjusted) - 2; i >= 0; i-- {
		if adjusted[i+1] < 0 {
			adjusted[i] += adjusted[i+1]
			adjusted[i+1] = 0
		}
	}
	return adjusted
}

// Reoffers returns, per step, how many extra seats the adjustment freed for that step
// (raw minus adjusted, when positive)
func Reoffers(raw, adjusted Saldo) quota.Counts {
	var out quota.Counts
	for i := range raw {
		if diff := raw[i] - adjusted[i]; diff > 0 {
			out[i] = diff
		}
	}
	return out
}

// Stranded is the deficit left at step 0 after adjustment, as a non-negative seat count
func (s Saldo) Stranded() int {
	if s[0] < 0 {
		return -s[0]
	}
	return 0
}

// Sum adds up every entry
func (s Saldo) Sum() int {
	total := 0
	for _, v := range s {
		total += v
	}
	return total
}
