package quota

import (
	"fmt"
	"strings"
)

// Code identifies one of the nine legally defined quota categories.
// The numeric value is also the 0-based index of the step that fills it.
type Code int

const (
	AC Code = iota
	LIEP
	LIPCD
	LIQ
	LIPPI
	LBEP
	LBPCD
	LBQ
	LBPPI
)

// NumCodes is the number of quota categories and of cascade steps
const NumCodes = 9

// Codes lists every quota in cascade order
var Codes = [NumCodes]Code{AC, LIEP, LIPCD, LIQ, LIPPI, LBEP, LBPCD, LBQ, LBPPI}

var codeNames = [NumCodes]string{
	"AC",
	"LI_EP",
	"LI_PCD",
	"LI_Q",
	"LI_PPI",
	"LB_EP",
	"LB_PCD",
	"LB_Q",
	"LB_PPI",
}

// String returns the wire name of the code (e.g. "LB_PPI")
func (c Code) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Code(%d)", int(c))
	}
	return codeNames[c]
}

// Valid reports whether c is one of the nine quota codes
func (c Code) Valid() bool {
	return c >= AC && c <= LBPPI
}

// Step returns the 1-based cascade step that fills this quota
func (c Code) Step() int {
	return int(c) + 1
}

// StepCode returns the quota filled at the given 1-based step.
// The step range is closed, so anything outside 1..9 is a programming error.
func StepCode(step int) Code {
	if step < 1 || step > NumCodes {
		panic(fmt.Sprintf("quota: step %d out of range 1..%d", step, NumCodes))
	}
	return Code(step - 1)
}

// ParseCode converts a wire name into a Code. Matching ignores case and surrounding spaces.
func ParseCode(s string) (Code, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range codeNames {
		if n == name {
			return Code(i), nil
		}
	}
	return 0, fmt.Errorf("unknown quota code %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (c Code) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid quota code %d", int(c))
	}
	return []byte(codeNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Code) UnmarshalText(text []byte) error {
	parsed, err := ParseCode(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Set is a fixed-size set of quota codes
type Set uint16

// SetOf builds a set from the given codes
func SetOf(codes ...Code) Set {
	var s Set
	for _, c := range codes {
		s = s.With(c)
	}
	return s
}

// AllCodes is the set holding every quota code
var AllCodes = SetOf(Codes[:]...)

// With returns s plus c
func (s Set) With(c Code) Set {
	return s | 1<<uint(c)
}

// Has reports whether c is in the set
func (s Set) Has(c Code) bool {
	return c.Valid() && s&(1<<uint(c)) != 0
}

// Codes returns the members of the set in cascade order
func (s Set) Codes() []Code {
	var out []Code
	for _, c := range Codes {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Counts holds one integer per quota code, indexed by Code
type Counts [NumCodes]int

// Total sums every entry
func (c Counts) Total() int {
	total := 0
	for _, v := range c {
		total += v
	}
	return total
}

// Map converts the counts into a name-keyed map, convenient for JSON and YAML output
func (c Counts) Map() map[string]int {
	out := make(map[string]int, NumCodes)
	for _, code := range Codes {
		out[code.String()] = c[code]
	}
	return out
}

// CountsFromMap builds Counts from a name-keyed map, rejecting unknown names
// and negative values. Missing names default to zero.
func CountsFromMap(m map[string]int) (Counts, error) {
	var out Counts
	for name, v := range m {
		code, err := ParseCode(name)
		if err != nil {
			return Counts{}, err
		}
		if v < 0 {
			return Counts{}, fmt.Errorf("negative seat count %d for %s", v, code)
		}
		out[code] = v
	}
	return out, nil
}
