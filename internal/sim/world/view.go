package world

// StepView is the frozen world snapshot Phase 1 decides against. It is
// built once per step, after the agent index rebuild and before any
// decision is collected, and hands out value copies only: no Decide call
// can observe (or cause) a Phase-2 mutation. This makes Phase-1
// decisions order-independent by construction.
type StepView struct {
	grid  *SpatialGrid
	index *AgentSpatialGrid
	byID  map[int]*Agent
}

// Agent returns a value copy of the agent's pre-step state.
func (v *StepView) Agent(id int) (Agent, bool) {
	a, ok := v.byID[id]
	if !ok {
		return Agent{}, false
	}
	return *a, true
}

// AgentsWithin returns ids within radius of center, ascending by id.
func (v *StepView) AgentsWithin(center Vec2i, radius int) []int {
	return v.index.QueryRadius(center, radius)
}

func (v *StepView) ResourceAt(p Vec2i) (ResourceCell, bool) {
	good, ok := v.grid.ResourceAt(p)
	if !ok {
		return ResourceCell{}, false
	}
	return ResourceCell{Pos: p, Type: good}, true
}

// ResourcesWithin returns resources within radius of center in
// row-major order.
func (v *StepView) ResourcesWithin(center Vec2i, radius int) []ResourceCell {
	return v.grid.ResourcesWithin(center, radius)
}

func (v *StepView) InBounds(p Vec2i) bool {
	return v.grid.InBounds(p)
}
