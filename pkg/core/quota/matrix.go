package quota

import (
	"fmt"
)

// Rule describes how a single quota is filled and reported
type Rule struct {
	// Eligible is the set of declared quotas admitted by this quota's own step
	Eligible Set

	// Fallback lists, in priority order, the declared quotas whose candidates may take
	// this quota's leftover seats once its own eligible candidates are exhausted
	Fallback []Code

	// Ranking is the set of declared quotas included in this quota's classification list.
	// It only affects reporting.
	Ranking Set
}

// Matrix is the complete eligibility and fallback table, one Rule per quota
type Matrix struct {
	rules [NumCodes]Rule
}

// DefaultMatrix returns the legal cascade matrix
func DefaultMatrix() *Matrix {
	m := &Matrix{}

	m.rules[AC] = Rule{
		Eligible: AllCodes,
		Fallback: []Code{LBPPI, LBQ, LBPCD, LBEP, LIPPI, LIPCD, LIEP},
		Ranking:  AllCodes,
	}
	m.rules[LIEP] = Rule{
		Eligible: SetOf(LIEP, LIPCD, LIQ, LIPPI, LBEP, LBPCD, LBQ, LBPPI),
		Fallback: []Code{LBPPI, LBQ, LBPCD, LBEP, LIPPI, LIQ, LIPCD, AC},
		Ranking:  SetOf(LIEP, LIPCD, LIQ, LIPPI, LBEP, LBPCD, LBQ, LBPPI),
	}
	m.rules[LIPCD] = Rule{
		Eligible: SetOf(LIPCD, LBPCD),
		Fallback: []Code{LBPPI, LBQ, LBPCD, LBEP, LIPPI, LIQ, LIEP, AC},
		Ranking:  SetOf(LIPCD, LBPCD),
	}
	m.rules[LIQ] = Rule{
		Eligible: SetOf(LIQ, LBQ),
		Fallback: []Code{LBPPI, LBQ, LBPCD, LBEP, LIPPI, LIPCD, LIEP, AC},
		Ranking:  SetOf(LIQ, LBQ),
	}
	m.rules[LIPPI] = Rule{
		Eligible: SetOf(LIPPI, LBPPI),
		Fallback: []Code{LBPPI, LBQ, LBPCD, LBEP, LIQ, LIPCD, LIEP, AC},
		Ranking:  SetOf(LIPPI, LBPPI),
	}
	m.rules[LBEP] = Rule{
		Eligible: SetOf(LBEP, LBPCD, LBQ, LBPPI),
		Fallback: []Code{LBPPI, LBQ, LBPCD, LIEP, LIPPI, LIQ, LIPCD, AC},
		Ranking:  SetOf(LBEP, LBPCD, LBQ, LBPPI),
	}
	m.rules[LBPCD] = Rule{
		Eligible: SetOf(LBPCD),
		Fallback: []Code{LBPPI, LBQ, LBEP, LIPPI, LIQ, LIEP, AC},
		Ranking:  SetOf(LBPCD),
	}
	m.rules[LBQ] = Rule{
		Eligible: SetOf(LBQ),
		Fallback: []Code{LBPPI, LBPCD, LBEP, LIPPI, LIPCD, LIEP, AC},
		Ranking:  SetOf(LBQ),
	}
	m.rules[LBPPI] = Rule{
		Eligible: SetOf(LBPPI),
		Fallback: []Code{LBQ, LBPCD, LBEP, LIPPI, LIPCD, LIEP, AC},
		Ranking:  SetOf(LBPPI),
	}

	return m
}

// Rule returns the rule for the given quota
func (m *Matrix) Rule(c Code) Rule {
	if !c.Valid() {
		panic(fmt.Sprintf("quota: invalid code %d", int(c)))
	}
	return m.rules[c]
}

// StepEligible reports whether a candidate who declared `declared` may be taken
// by the step filling `target` on its own (non-fallback) scan
func (m *Matrix) StepEligible(target, declared Code) bool {
	return m.Rule(target).Eligible.Has(declared)
}

// RankingEligible reports whether a candidate who declared `declared` appears in
// the classification list of `target`
func (m *Matrix) RankingEligible(target, declared Code) bool {
	return m.Rule(target).Ranking.Has(declared)
}

// Fallback returns the fallback priority list for the given quota
func (m *Matrix) Fallback(c Code) []Code {
	return m.Rule(c).Fallback
}

// Validate checks every rule is internally consistent
func (m *Matrix) Validate() error {
	for _, c := range Codes {
		rule := m.rules[c]
		if rule.Eligible == 0 {
			return fmt.Errorf("quota %s: eligibility set is empty", c)
		}
		seen := make(map[Code]bool, len(rule.Fallback))
		for _, f := range rule.Fallback {
			if !f.Valid() {
				return fmt.Errorf("quota %s: invalid fallback code %d", c, int(f))
			}
			if f == c {
				return fmt.Errorf("quota %s: cannot fall back to itself", c)
			}
			if seen[f] {
				return fmt.Errorf("quota %s: duplicate fallback code %s", c, f)
			}
			seen[f] = true
		}
	}
	return nil
}

// RuleOverride is the configuration form of a Rule. Empty fields keep the default.
type RuleOverride struct {
	Eligible []string `yaml:"eligible,omitempty" json:"eligible,omitempty" validate:"omitempty,dive,quotacode"`
	Fallback []string `yaml:"fallback,omitempty" json:"fallback,omitempty" validate:"omitempty,dive,quotacode"`
	// DisableFallback clears the fallback list, which an empty Fallback cannot express
	DisableFallback bool     `yaml:"disableFallback,omitempty" json:"disableFallback,omitempty"`
	Ranking         []string `yaml:"ranking,omitempty" json:"ranking,omitempty" validate:"omitempty,dive,quotacode"`
}

// BuildMatrix applies configuration overrides, keyed by quota name, on top of the default matrix
func BuildMatrix(overrides map[string]RuleOverride) (*Matrix, error) {
	m := DefaultMatrix()

	for name, override := range overrides {
		code, err := ParseCode(name)
		if err != nil {
			return nil, fmt.Errorf("invalid matrix key: %w", err)
		}
		rule := m.rules[code]

		if len(override.Eligible) > 0 {
			set, err := parseSet(override.Eligible)
			if err != nil {
				return nil, fmt.Errorf("quota %s eligible: %w", code, err)
			}
			rule.Eligible = set
		}

		if override.DisableFallback {
			rule.Fallback = nil
		} else if len(override.Fallback) > 0 {
			fallback := make([]Code, 0, len(override.Fallback))
			for _, n := range override.Fallback {
				f, err := ParseCode(n)
				if err != nil {
					return nil, fmt.Errorf("quota %s fallback: %w", code, err)
				}
				fallback = append(fallback, f)
			}
			rule.Fallback = fallback
		}

		if len(override.Ranking) > 0 {
			set, err := parseSet(override.Ranking)
			if err != nil {
				return nil, fmt.Errorf("quota %s ranking: %w", code, err)
			}
			rule.Ranking = set
		}

		m.rules[code] = rule
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid quota matrix: %w", err)
	}

	return m, nil
}

func parseSet(names []string) (Set, error) {
	var s Set
	for _, n := range names {
		c, err := ParseCode(n)
		if err != nil {
			return 0, err
		}
		s = s.With(c)
	}
	return s, nil
}
