package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/core/quota"
)

// addPoolFlags registers --unit, --program and --shift
func addPoolFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("unit", "u", "", "Campus of the pool")
	cmd.Flags().StringP("program", "p", "", "Course of the pool")
	cmd.Flags().StringP("shift", "s", "", "Shift of the pool")
}

// poolFromFlags reads the pool flags. ok is false when none were given; a partial key is
// an error.
func poolFromFlags(cmd *cobra.Command) (pool model.PoolKey, ok bool, err error) {
	pool.Unit, _ = cmd.Flags().GetString("unit")
	pool.Program, _ = cmd.Flags().GetString("program")
	pool.Shift, _ = cmd.Flags().GetString("shift")

	set := 0
	for _, v := range []string{pool.Unit, pool.Program, pool.Shift} {
		if v != "" {
			set++
		}
	}

	switch set {
	case 0:
		return model.PoolKey{}, false, nil
	case 3:
		return pool, true, nil
	default:
		return model.PoolKey{}, false, fmt.Errorf("--unit, --program and --shift must be given together")
	}
}

// poolFromArgs reads a pool given as three positional arguments
func poolFromArgs(args []string) model.PoolKey {
	return model.PoolKey{Unit: args[0], Program: args[1], Shift: args[2]}
}

// parseSeats reads seat assignments of the form CODE=N, e.g. AC=20 LB_PPI=3.
// Codes not mentioned get zero seats.
func parseSeats(args []string) (quota.Counts, error) {
	values := make(map[string]int, len(args))
	for _, arg := range args {
		name, raw, found := strings.Cut(arg, "=")
		if !found {
			return quota.Counts{}, fmt.Errorf("invalid seat assignment %q, expected CODE=N", arg)
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return quota.Counts{}, fmt.Errorf("invalid seat count in %q: %w", arg, err)
		}
		name = strings.ToUpper(strings.TrimSpace(name))
		if _, dup := values[name]; dup {
			return quota.Counts{}, fmt.Errorf("quota %s given twice", name)
		}
		values[name] = n
	}

	return quota.CountsFromMap(values)
}

func parseRound(raw string) (int, error) {
	round, err := strconv.Atoi(raw)
	if err != nil || round < 1 {
		return 0, fmt.Errorf("round must be a positive number, got %q", raw)
	}
	return round, nil
}

func sortedCodes(m map[quota.Code]int) []quota.Code {
	var out []quota.Code
	for _, code := range quota.Codes {
		if _, ok := m[code]; ok {
			out = append(out, code)
		}
	}
	return out
}
