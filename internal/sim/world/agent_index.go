package world

import "sort"

// AgentSpatialGrid indexes agent positions for radius queries. It is
// rebuilt once per step, before Phase 1, and never mutated while
// decisions are being collected.
type AgentSpatialGrid struct {
	byCell map[Vec2i][]int
}

func NewAgentSpatialGrid() *AgentSpatialGrid {
	return &AgentSpatialGrid{byCell: map[Vec2i][]int{}}
}

// Rebuild re-indexes all agents in O(n).
func (g *AgentSpatialGrid) Rebuild(agents []*Agent) {
	for k := range g.byCell {
		delete(g.byCell, k)
	}
	for _, a := range agents {
		g.byCell[a.Pos] = append(g.byCell[a.Pos], a.ID)
	}
	for _, ids := range g.byCell {
		sort.Ints(ids)
	}
}

// QueryRadius returns the ids of agents within Manhattan distance
// <= radius of center, sorted ascending by id. The ordering is
// load-bearing for determinism: every caller that scans candidates
// relies on it, not just for presentation.
func (g *AgentSpatialGrid) QueryRadius(center Vec2i, radius int) []int {
	if radius < 0 {
		return nil
	}
	var out []int
	for y := center.Y - radius; y <= center.Y+radius; y++ {
		span := radius - absInt(y-center.Y)
		for x := center.X - span; x <= center.X+span; x++ {
			if ids, ok := g.byCell[Vec2i{X: x, Y: y}]; ok {
				out = append(out, ids...)
			}
		}
	}
	sort.Ints(out)
	return out
}

// AgentsAt returns the ids co-located on a cell, ascending.
func (g *AgentSpatialGrid) AgentsAt(p Vec2i) []int {
	return g.byCell[p]
}
