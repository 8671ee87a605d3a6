package world

import (
	"testing"

	"bartergrid/internal/sim/econ"
)

func testConfig() *Config {
	cfg := &Config{Width: 16, Height: 16, PerceptionRadius: 4}
	cfg.applyDefaults()
	return cfg
}

func testView(t *testing.T, cfg *Config, agents ...*Agent) *StepView {
	t.Helper()
	g, err := NewSpatialGrid(cfg.Width, cfg.Height)
	if err != nil {
		t.Fatal(err)
	}
	return testViewOn(g, agents...)
}

func testViewOn(g *SpatialGrid, agents ...*Agent) *StepView {
	idx := NewAgentSpatialGrid()
	idx.Rebuild(agents)
	byID := map[int]*Agent{}
	for _, a := range agents {
		byID[a.ID] = a
	}
	return &StepView{grid: g, index: idx, byID: byID}
}

func cdAgent(id int, alpha float64) *Agent {
	return &Agent{
		ID:   id,
		Util: econ.Utility{Kind: econ.CobbDouglas, Alpha: alpha, Beta: 1 - alpha, Epsilon: 0.01},
	}
}

func TestDecideDepositWhenFullAtHome(t *testing.T) {
	cfg := testConfig()
	e := NewEngine(cfg)
	a := cdAgent(1, 0.5)
	a.Pos = Vec2i{X: 3, Y: 3}
	a.HomePos = a.Pos
	a.Carrying = econ.Bundle{Q1: cfg.Capacity}

	act := e.Decide(*a, testView(t, cfg, a))
	if act.Kind != ActDeposit {
		t.Fatalf("full at home must deposit, got %v", act.Kind)
	}
}

func TestDecideMoveHomeWhenFull(t *testing.T) {
	cfg := testConfig()
	e := NewEngine(cfg)
	a := cdAgent(1, 0.5)
	a.Pos = Vec2i{X: 6, Y: 5}
	a.HomePos = Vec2i{X: 2, Y: 1}
	a.Carrying = econ.Bundle{Q1: cfg.Capacity}

	act := e.Decide(*a, testView(t, cfg, a))
	if act.Kind != ActMove {
		t.Fatalf("full away from home must move home, got %v", act.Kind)
	}
	// Horizontal distance collapses before vertical.
	if act.Dir != (Vec2i{X: -1}) {
		t.Fatalf("expected x-first step toward home, got %v", act.Dir)
	}
	if !act.HasTarget || act.TargetPos != a.HomePos {
		t.Fatalf("move home must target the home cell, got %v", act.TargetPos)
	}
}

func TestForageTargetsHighestMarginalGood(t *testing.T) {
	cfg := testConfig()
	e := NewEngine(cfg)
	a := cdAgent(1, 0.7)
	a.Pos = Vec2i{X: 8, Y: 8}
	a.HomePos = a.Pos
	a.Home = econ.Bundle{Q1: 5, Q2: 5}

	g, _ := NewSpatialGrid(cfg.Width, cfg.Height)
	// Equal distance 3 in both directions; only the weights differ.
	_ = g.AddResource(Vec2i{X: 11, Y: 8}, econ.Good1)
	_ = g.AddResource(Vec2i{X: 5, Y: 8}, econ.Good2)

	act := e.Decide(*a, testViewOn(g, a))
	if act.Kind != ActMove {
		t.Fatalf("expected move toward a resource, got %v", act.Kind)
	}
	if act.TargetPos != (Vec2i{X: 11, Y: 8}) {
		t.Fatalf("alpha=0.7 must prefer good1 at equal distance, targeted %v", act.TargetPos)
	}
}

func TestForageDistanceDiscount(t *testing.T) {
	cfg := testConfig()
	e := NewEngine(cfg)
	a := &Agent{
		ID:      1,
		Pos:     Vec2i{X: 8, Y: 8},
		HomePos: Vec2i{X: 8, Y: 8},
		Util:    econ.Utility{Kind: econ.PerfectSubstitutes, Alpha: 0.6, Beta: 0.4},
	}

	g, _ := NewSpatialGrid(cfg.Width, cfg.Height)
	// 0.6*exp(-0.15*4) < 0.4*exp(-0.15*1): the nearer, lower-weight good wins.
	_ = g.AddResource(Vec2i{X: 12, Y: 8}, econ.Good1)
	_ = g.AddResource(Vec2i{X: 8, Y: 9}, econ.Good2)

	act := e.Decide(*a, testViewOn(g, a))
	if act.TargetPos != (Vec2i{X: 8, Y: 9}) {
		t.Fatalf("distance discount must pick the close good2, targeted %v", act.TargetPos)
	}
}

func TestForageTieKeepsRowMajorFirst(t *testing.T) {
	cfg := testConfig()
	e := NewEngine(cfg)
	a := cdAgent(1, 0.5)
	a.Pos = Vec2i{X: 8, Y: 8}
	a.HomePos = a.Pos

	g, _ := NewSpatialGrid(cfg.Width, cfg.Height)
	// Same good, same distance: identical scores. The scan is row-major,
	// so y=6 is encountered before y=10 and a strict > keeps it.
	_ = g.AddResource(Vec2i{X: 8, Y: 10}, econ.Good1)
	_ = g.AddResource(Vec2i{X: 8, Y: 6}, econ.Good1)

	act := e.Decide(*a, testViewOn(g, a))
	if act.TargetPos != (Vec2i{X: 8, Y: 6}) {
		t.Fatalf("tie must keep the row-major earlier cell, targeted %v", act.TargetPos)
	}
}

func TestForageSkipsZeroMarginalResources(t *testing.T) {
	cfg := testConfig()
	e := NewEngine(cfg)
	a := &Agent{
		ID:      1,
		Pos:     Vec2i{X: 8, Y: 8},
		HomePos: Vec2i{X: 8, Y: 8},
		Home:    econ.Bundle{Q1: 1, Q2: 3},
		Util:    econ.Utility{Kind: econ.PerfectComplements, Alpha: 1, Beta: 2},
	}

	g, _ := NewSpatialGrid(cfg.Width, cfg.Height)
	// Good2 is non-binding at (1,3): its marginal is exactly zero, so the
	// only visible resource is worthless and the agent idles.
	_ = g.AddResource(Vec2i{X: 9, Y: 8}, econ.Good2)

	act := e.Decide(*a, testViewOn(g, a))
	if act.Kind != ActIdle {
		t.Fatalf("zero-marginal resource must not be chased, got %v", act.Kind)
	}
}

func TestPerceptionRadiusBoundsForage(t *testing.T) {
	cfg := testConfig()
	e := NewEngine(cfg)
	a := cdAgent(1, 0.5)
	a.Pos = Vec2i{X: 8, Y: 8}
	a.HomePos = a.Pos

	g, _ := NewSpatialGrid(cfg.Width, cfg.Height)
	_ = g.AddResource(Vec2i{X: 8 + cfg.PerceptionRadius + 1, Y: 8}, econ.Good1)

	act := e.Decide(*a, testViewOn(g, a))
	if act.Kind != ActIdle {
		t.Fatalf("resource at radius+1 must be invisible, got %v", act.Kind)
	}
}

func TestDecideCollectOnOwnCell(t *testing.T) {
	cfg := testConfig()
	e := NewEngine(cfg)
	a := cdAgent(1, 0.5)
	a.Pos = Vec2i{X: 4, Y: 4}
	a.HomePos = Vec2i{X: 0, Y: 0}

	g, _ := NewSpatialGrid(cfg.Width, cfg.Height)
	_ = g.AddResource(a.Pos, econ.Good2)

	act := e.Decide(*a, testViewOn(g, a))
	if act.Kind != ActCollect || act.Good != econ.Good2 {
		t.Fatalf("expected collect of good2, got %v %v", act.Kind, act.Good)
	}
}

func TestPairedPartnerOutOfSightFallsThroughToForage(t *testing.T) {
	cfg := testConfig()
	e := NewEngine(cfg)
	a := cdAgent(1, 0.5)
	a.Pos = Vec2i{X: 0, Y: 0}
	a.HomePos = a.Pos
	a.PartnerID = 2
	a.Mode = ModePaired
	b := cdAgent(2, 0.5)
	b.Pos = Vec2i{X: 10, Y: 10} // distance 20, far beyond radius 4
	b.HomePos = b.Pos
	b.PartnerID = 1
	b.Mode = ModePaired

	g, _ := NewSpatialGrid(cfg.Width, cfg.Height)
	_ = g.AddResource(Vec2i{X: 2, Y: 0}, econ.Good1)

	act := e.Decide(*a, testViewOn(g, a, b))
	if act.Kind == ActUnpair {
		t.Fatal("losing sight of the partner must not dissolve the pairing")
	}
	if act.Kind != ActMove || act.TargetPos != (Vec2i{X: 2, Y: 0}) {
		t.Fatalf("out-of-sight partner must not block foraging, got %v -> %v", act.Kind, act.TargetPos)
	}
}

func TestPairedConvergeTowardPartner(t *testing.T) {
	cfg := testConfig()
	e := NewEngine(cfg)
	a := cdAgent(1, 0.5)
	a.Pos = Vec2i{X: 2, Y: 2}
	a.HomePos = a.Pos
	a.PartnerID = 2
	a.Mode = ModePaired
	b := cdAgent(2, 0.5)
	b.Pos = Vec2i{X: 4, Y: 2}
	b.HomePos = b.Pos
	b.PartnerID = 1
	b.Mode = ModePaired

	act := e.Decide(*a, testView(t, cfg, a, b))
	if act.Kind != ActMove || act.Dir != (Vec2i{X: 1}) {
		t.Fatalf("paired agents must converge, got %v dir %v", act.Kind, act.Dir)
	}
}

func TestPairedWithdrawMakesSwapExecutable(t *testing.T) {
	cfg := testConfig()
	e := NewEngine(cfg)
	a := cdAgent(1, 0.5)
	a.Pos = Vec2i{X: 3, Y: 3}
	a.HomePos = a.Pos
	a.Carrying = econ.Bundle{Q1: 2}
	a.Home = econ.Bundle{Q1: 2, Q2: 6} // total (4,6): wants to give good2, all of it at home
	a.PartnerID = 2
	a.Mode = ModePaired
	b := cdAgent(2, 0.5)
	b.Pos = a.Pos
	b.HomePos = Vec2i{X: 0, Y: 0}
	b.Carrying = econ.Bundle{Q1: 6, Q2: 4} // total (6,4): gives good1 from carrying
	b.PartnerID = 1
	b.Mode = ModePaired

	act := e.Decide(*a, testView(t, cfg, a, b))
	if act.Kind != ActWithdraw || act.Good != econ.Good2 {
		t.Fatalf("expected withdraw of good2 to enable the swap, got %v %v", act.Kind, act.Good)
	}
}
