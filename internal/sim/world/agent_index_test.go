package world

import (
	"testing"
)

func indexAgents(positions map[int]Vec2i) []*Agent {
	out := make([]*Agent, 0, len(positions))
	for id, pos := range positions {
		out = append(out, &Agent{ID: id, Pos: pos})
	}
	return out
}

func TestQueryRadiusSortedAscendingByID(t *testing.T) {
	idx := NewAgentSpatialGrid()
	idx.Rebuild(indexAgents(map[int]Vec2i{
		7: {X: 1, Y: 0},
		2: {X: 0, Y: 1},
		5: {X: 0, Y: 0},
		9: {X: 3, Y: 3}, // distance 6, out of radius
	}))

	got := idx.QueryRadius(Vec2i{}, 2)
	want := []int{2, 5, 7}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestQueryRadiusBoundaryInclusive(t *testing.T) {
	idx := NewAgentSpatialGrid()
	idx.Rebuild(indexAgents(map[int]Vec2i{
		1: {X: 2, Y: 2}, // distance exactly 4
		2: {X: 3, Y: 2}, // distance 5
	}))
	got := idx.QueryRadius(Vec2i{}, 4)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("radius must be inclusive: got %v", got)
	}
}

func TestRebuildReplacesPreviousIndex(t *testing.T) {
	idx := NewAgentSpatialGrid()
	idx.Rebuild(indexAgents(map[int]Vec2i{1: {X: 0, Y: 0}}))
	idx.Rebuild(indexAgents(map[int]Vec2i{2: {X: 5, Y: 5}}))

	if got := idx.QueryRadius(Vec2i{}, 1); len(got) != 0 {
		t.Fatalf("stale entries after rebuild: %v", got)
	}
	if got := idx.AgentsAt(Vec2i{X: 5, Y: 5}); len(got) != 1 || got[0] != 2 {
		t.Fatalf("expected agent 2 at (5,5), got %v", got)
	}
}
