package econ

import (
	"fmt"
	"math"
)

// Good identifies one of the two tradeable goods.
type Good uint8

const (
	Good1 Good = iota
	Good2
)

func (g Good) String() string {
	switch g {
	case Good1:
		return "GOOD1"
	case Good2:
		return "GOOD2"
	}
	return fmt.Sprintf("GOOD?%d", uint8(g))
}

// Other returns the opposite good of a 1-for-1 swap.
func (g Good) Other() Good {
	if g == Good1 {
		return Good2
	}
	return Good1
}

// ParseGood maps the scenario-file spelling back to a Good.
func ParseGood(s string) (Good, error) {
	switch s {
	case "GOOD1":
		return Good1, nil
	case "GOOD2":
		return Good2, nil
	}
	return 0, fmt.Errorf("unknown good %q", s)
}

// Bundle is a non-negative quantity pair (Good1, Good2).
type Bundle struct {
	Q1 int `json:"q1"`
	Q2 int `json:"q2"`
}

func (b Bundle) Get(g Good) int {
	if g == Good1 {
		return b.Q1
	}
	return b.Q2
}

func (b Bundle) Add(g Good, n int) Bundle {
	if g == Good1 {
		b.Q1 += n
	} else {
		b.Q2 += n
	}
	return b
}

// Plus is the component-wise sum, used for total (carrying+home) bundles.
func (b Bundle) Plus(o Bundle) Bundle {
	return Bundle{Q1: b.Q1 + o.Q1, Q2: b.Q2 + o.Q2}
}

// Total is the unit count across both goods (the capacity-relevant sum).
func (b Bundle) Total() int {
	return b.Q1 + b.Q2
}

func (b Bundle) Validate() error {
	if b.Q1 < 0 || b.Q2 < 0 {
		return fmt.Errorf("negative bundle (%d,%d)", b.Q1, b.Q2)
	}
	return nil
}

// Kind selects the utility functional form.
type Kind uint8

const (
	CobbDouglas Kind = iota
	PerfectSubstitutes
	PerfectComplements
)

func (k Kind) String() string {
	switch k {
	case CobbDouglas:
		return "COBB_DOUGLAS"
	case PerfectSubstitutes:
		return "PERFECT_SUBSTITUTES"
	case PerfectComplements:
		return "PERFECT_COMPLEMENTS"
	}
	return fmt.Sprintf("KIND?%d", uint8(k))
}

func ParseKind(s string) (Kind, error) {
	switch s {
	case "COBB_DOUGLAS":
		return CobbDouglas, nil
	case "PERFECT_SUBSTITUTES":
		return PerfectSubstitutes, nil
	case "PERFECT_COMPLEMENTS":
		return PerfectComplements, nil
	}
	return 0, fmt.Errorf("unknown utility kind %q", s)
}

// complementTol absorbs float noise when deciding which good binds a
// Perfect-Complements bundle. Within the tolerance both goods are
// treated as binding (either pickup restores balance).
const complementTol = 1e-9

// Utility is an immutable utility function: a closed kind plus its
// parameters. Alpha and Beta are preference weights (normalized to
// alpha+beta=1 for Cobb-Douglas); Epsilon bootstraps zero bundles so the
// zero-inventory case is never an error.
type Utility struct {
	Kind    Kind    `json:"kind"`
	Alpha   float64 `json:"alpha"`
	Beta    float64 `json:"beta"`
	Epsilon float64 `json:"epsilon"`
}

func (u Utility) Validate() error {
	switch u.Kind {
	case CobbDouglas, PerfectSubstitutes, PerfectComplements:
	default:
		return fmt.Errorf("unknown utility kind %d", uint8(u.Kind))
	}
	if u.Alpha < 0 || u.Beta < 0 || u.Alpha+u.Beta == 0 {
		return fmt.Errorf("invalid weights alpha=%g beta=%g", u.Alpha, u.Beta)
	}
	if u.Kind == CobbDouglas {
		if math.Abs(u.Alpha+u.Beta-1) > 1e-9 {
			return fmt.Errorf("cobb-douglas weights must sum to 1, got alpha=%g beta=%g", u.Alpha, u.Beta)
		}
		if u.Epsilon <= 0 {
			return fmt.Errorf("cobb-douglas epsilon must be > 0, got %g", u.Epsilon)
		}
	}
	return nil
}

// Value evaluates the utility of a bundle. Pure, total on all
// non-negative bundles, monotonic non-decreasing in each good.
func (u Utility) Value(b Bundle) float64 {
	q1 := float64(b.Q1)
	q2 := float64(b.Q2)
	switch u.Kind {
	case CobbDouglas:
		return math.Pow(q1+u.Epsilon, u.Alpha) * math.Pow(q2+u.Epsilon, u.Beta)
	case PerfectSubstitutes:
		return u.Alpha*q1 + u.Beta*q2
	case PerfectComplements:
		return math.Min(u.Alpha*q1, u.Beta*q2)
	}
	return 0
}

// Marginal evaluates the marginal utility of one more unit of g at b.
//
// Cobb-Douglas and Perfect Substitutes use the analytic partial
// derivative (strictly positive everywhere thanks to epsilon).
// Perfect Complements is piecewise: the binding good carries its full
// weight, the non-binding good carries exactly 0, and a tie makes both
// goods binding.
func (u Utility) Marginal(b Bundle, g Good) float64 {
	q1 := float64(b.Q1)
	q2 := float64(b.Q2)
	switch u.Kind {
	case CobbDouglas:
		if g == Good1 {
			return u.Alpha * math.Pow(q1+u.Epsilon, u.Alpha-1) * math.Pow(q2+u.Epsilon, u.Beta)
		}
		return u.Beta * math.Pow(q1+u.Epsilon, u.Alpha) * math.Pow(q2+u.Epsilon, u.Beta-1)
	case PerfectSubstitutes:
		if g == Good1 {
			return u.Alpha
		}
		return u.Beta
	case PerfectComplements:
		w1 := u.Alpha * q1
		w2 := u.Beta * q2
		switch {
		case math.Abs(w1-w2) <= complementTol:
			if g == Good1 {
				return u.Alpha
			}
			return u.Beta
		case w1 < w2:
			if g == Good1 {
				return u.Alpha
			}
			return 0
		default:
			if g == Good2 {
				return u.Beta
			}
			return 0
		}
	}
	return 0
}

// SwapGain is the utility delta of giving one unit of give and
// receiving one unit of its opposite, evaluated on a total bundle.
// Trades are only ever 1-for-1.
func (u Utility) SwapGain(total Bundle, give Good) float64 {
	after := total.Add(give, -1).Add(give.Other(), 1)
	return u.Value(after) - u.Value(total)
}
