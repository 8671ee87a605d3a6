package econ

import (
	"math"
	"testing"
)

func TestCobbDouglasZeroBundleBootstrap(t *testing.T) {
	u := Utility{Kind: CobbDouglas, Alpha: 0.7, Beta: 0.3, Epsilon: 0.01}
	v := u.Value(Bundle{})
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		t.Fatalf("zero bundle must be finite and positive, got %g", v)
	}
	for _, g := range []Good{Good1, Good2} {
		if mu := u.Marginal(Bundle{}, g); mu <= 0 || math.IsInf(mu, 0) {
			t.Fatalf("marginal of %s at zero bundle must be positive finite, got %g", g, mu)
		}
	}
}

func TestCobbDouglasMonotone(t *testing.T) {
	u := Utility{Kind: CobbDouglas, Alpha: 0.7, Beta: 0.3, Epsilon: 0.01}
	prev := u.Value(Bundle{})
	for q := 1; q <= 20; q++ {
		v := u.Value(Bundle{Q1: q, Q2: q})
		if v <= prev {
			t.Fatalf("value must strictly increase along the diagonal: %g then %g at q=%d", prev, v, q)
		}
		prev = v
	}
}

func TestPerfectSubstitutesLinear(t *testing.T) {
	u := Utility{Kind: PerfectSubstitutes, Alpha: 0.6, Beta: 0.4}
	if got := u.Value(Bundle{Q1: 5, Q2: 10}); math.Abs(got-7.0) > 1e-12 {
		t.Fatalf("expected 0.6*5+0.4*10=7, got %g", got)
	}
	if got := u.Marginal(Bundle{Q1: 100, Q2: 0}, Good1); got != 0.6 {
		t.Fatalf("substitutes marginal is the constant weight, got %g", got)
	}
}

func TestPerfectComplementsPiecewiseMarginal(t *testing.T) {
	u := Utility{Kind: PerfectComplements, Alpha: 1.0, Beta: 2.0}

	// Good1 binding: alpha*q1 < beta*q2.
	b := Bundle{Q1: 1, Q2: 3}
	if mu := u.Marginal(b, Good1); mu != 1.0 {
		t.Fatalf("binding good carries its weight, got %g", mu)
	}
	if mu := u.Marginal(b, Good2); mu != 0 {
		t.Fatalf("non-binding good carries exactly 0, got %g", mu)
	}

	// Tie: alpha*q1 == beta*q2 makes both goods binding.
	tie := Bundle{Q1: 2, Q2: 1}
	if mu := u.Marginal(tie, Good1); mu != 1.0 {
		t.Fatalf("tie: good1 marginal = alpha, got %g", mu)
	}
	if mu := u.Marginal(tie, Good2); mu != 2.0 {
		t.Fatalf("tie: good2 marginal = beta, got %g", mu)
	}
}

func TestPerfectComplementsValue(t *testing.T) {
	u := Utility{Kind: PerfectComplements, Alpha: 1.0, Beta: 2.0}
	if got := u.Value(Bundle{Q1: 4, Q2: 1}); got != 2.0 {
		t.Fatalf("min(1*4, 2*1) = 2, got %g", got)
	}
}

func TestValidateRejectsBadParams(t *testing.T) {
	cases := []struct {
		name string
		u    Utility
	}{
		{"unknown kind", Utility{Kind: Kind(9), Alpha: 0.5, Beta: 0.5}},
		{"negative alpha", Utility{Kind: PerfectSubstitutes, Alpha: -1, Beta: 2}},
		{"cd weights not normalized", Utility{Kind: CobbDouglas, Alpha: 0.7, Beta: 0.7, Epsilon: 0.01}},
		{"cd zero epsilon", Utility{Kind: CobbDouglas, Alpha: 0.7, Beta: 0.3}},
	}
	for _, tc := range cases {
		if err := tc.u.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestSwapGainSymmetry(t *testing.T) {
	u := Utility{Kind: CobbDouglas, Alpha: 0.5, Beta: 0.5, Epsilon: 0.01}
	total := Bundle{Q1: 8, Q2: 2}
	// Trading toward balance must gain, away from balance must lose.
	if gain := u.SwapGain(total, Good1); gain <= 0 {
		t.Fatalf("balancing swap should gain, got %g", gain)
	}
	if gain := u.SwapGain(total, Good2); gain >= 0 {
		t.Fatalf("unbalancing swap should lose, got %g", gain)
	}
}

func TestParseRoundTrips(t *testing.T) {
	for _, k := range []Kind{CobbDouglas, PerfectSubstitutes, PerfectComplements} {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Fatalf("kind %v round trip: got %v err %v", k, got, err)
		}
	}
	for _, g := range []Good{Good1, Good2} {
		got, err := ParseGood(g.String())
		if err != nil || got != g {
			t.Fatalf("good %v round trip: got %v err %v", g, got, err)
		}
	}
	if _, err := ParseKind("LEONTIEF"); err == nil {
		t.Fatal("expected error for unknown kind spelling")
	}
}
