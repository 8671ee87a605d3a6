package world

import (
	"fmt"
	"sort"

	"bartergrid/internal/sim/econ"
)

// World owns the grid and the agent population. During a step the state
// is exclusively owned by the step executor: Phase 1 reads through a
// frozen StepView, Phase 2 mutates through apply, and nothing else
// touches it. External collaborators (persistence, observers) read
// post-step state through the accessor methods only.
type World struct {
	cfg    Config
	grid   *SpatialGrid
	agents []*Agent // ascending by id
	byID   map[int]*Agent
	index  *AgentSpatialGrid
	engine Engine

	tick      uint64
	respawner Respawner
}

func New(cfg Config) (*World, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("world config: %w", err)
	}
	grid, err := NewSpatialGrid(cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}
	w := &World{
		cfg:   cfg,
		grid:  grid,
		byID:  map[int]*Agent{},
		index: NewAgentSpatialGrid(),
	}
	w.engine = NewEngine(&w.cfg)
	return w, nil
}

func (w *World) Config() Config      { return w.cfg }
func (w *World) CurrentTick() uint64 { return w.tick }

// SetRespawner installs the scenario respawn policy. Pass nil for a
// closed economy with no resource regeneration.
func (w *World) SetRespawner(r Respawner) { w.respawner = r }

// AddAgent copies a into the world. Setup-time only.
func (w *World) AddAgent(a Agent) error {
	if err := a.validate(w.cfg.Capacity); err != nil {
		return err
	}
	if _, ok := w.byID[a.ID]; ok {
		return fmt.Errorf("duplicate agent id %d", a.ID)
	}
	if !w.grid.InBounds(a.Pos) {
		return fmt.Errorf("agent %d position %v out of bounds", a.ID, a.Pos)
	}
	if !w.grid.InBounds(a.HomePos) {
		return fmt.Errorf("agent %d home %v out of bounds", a.ID, a.HomePos)
	}
	cp := a
	w.byID[cp.ID] = &cp
	i := sort.Search(len(w.agents), func(i int) bool { return w.agents[i].ID > cp.ID })
	w.agents = append(w.agents, nil)
	copy(w.agents[i+1:], w.agents[i:])
	w.agents[i] = &cp
	return nil
}

// AddResource places a resource at setup time or between steps (respawn).
func (w *World) AddResource(p Vec2i, good econ.Good) error {
	return w.grid.AddResource(p, good)
}

// Grid exposes the resource grid for scenario respawn policies and
// read-only inspection.
func (w *World) Grid() *SpatialGrid { return w.grid }

// Agents returns value copies of all agents, ascending by id.
func (w *World) Agents() []Agent {
	out := make([]Agent, 0, len(w.agents))
	for _, a := range w.agents {
		out = append(out, *a)
	}
	return out
}

func (w *World) AgentByID(id int) (Agent, bool) {
	a, ok := w.byID[id]
	if !ok {
		return Agent{}, false
	}
	return *a, true
}

func (w *World) AgentCount() int { return len(w.agents) }

// Resources lists the grid's resources in row-major order.
func (w *World) Resources() []ResourceCell {
	return w.grid.Resources()
}

// TotalEconomy sums every bundle in the world (carrying and home).
// Trade conserves it exactly; collection only grows it.
func (w *World) TotalEconomy() econ.Bundle {
	var sum econ.Bundle
	for _, a := range w.agents {
		sum = sum.Plus(a.Total())
	}
	return sum
}
