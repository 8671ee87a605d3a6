package world

import (
	"fmt"

	"bartergrid/internal/sim/econ"
)

// ResourceCell is a collectible unit of one good sitting on a cell.
// At most one resource occupies a cell at a time.
type ResourceCell struct {
	Pos  Vec2i     `json:"pos"`
	Type econ.Good `json:"type"`
}

// SpatialGrid owns the resource cells of a bounded grid. Iteration is
// always row-major so that two runs visit resources in the same order.
type SpatialGrid struct {
	width  int
	height int
	cells  map[Vec2i]econ.Good
}

func NewSpatialGrid(width, height int) (*SpatialGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", width, height)
	}
	return &SpatialGrid{
		width:  width,
		height: height,
		cells:  map[Vec2i]econ.Good{},
	}, nil
}

func (g *SpatialGrid) Width() int  { return g.width }
func (g *SpatialGrid) Height() int { return g.height }

func (g *SpatialGrid) InBounds(p Vec2i) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

func (g *SpatialGrid) ResourceAt(p Vec2i) (econ.Good, bool) {
	good, ok := g.cells[p]
	return good, ok
}

// AddResource places a resource on an empty in-bounds cell.
func (g *SpatialGrid) AddResource(p Vec2i, good econ.Good) error {
	if !g.InBounds(p) {
		return fmt.Errorf("resource out of bounds at %v", p)
	}
	if _, ok := g.cells[p]; ok {
		return fmt.Errorf("cell %v already holds a resource", p)
	}
	g.cells[p] = good
	return nil
}

// RemoveResource clears the cell and reports whether a resource was there.
func (g *SpatialGrid) RemoveResource(p Vec2i) bool {
	if _, ok := g.cells[p]; !ok {
		return false
	}
	delete(g.cells, p)
	return true
}

func (g *SpatialGrid) Count() int { return len(g.cells) }

// Resources lists every resource in row-major order.
func (g *SpatialGrid) Resources() []ResourceCell {
	out := make([]ResourceCell, 0, len(g.cells))
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			p := Vec2i{X: x, Y: y}
			if good, ok := g.cells[p]; ok {
				out = append(out, ResourceCell{Pos: p, Type: good})
			}
		}
	}
	return out
}

// ResourcesWithin lists resources with Manhattan(center, pos) <= radius,
// in row-major order. The scan is bounded to the radius diamond.
func (g *SpatialGrid) ResourcesWithin(center Vec2i, radius int) []ResourceCell {
	if radius < 0 {
		return nil
	}
	var out []ResourceCell
	for y := center.Y - radius; y <= center.Y+radius; y++ {
		if y < 0 || y >= g.height {
			continue
		}
		span := radius - absInt(y-center.Y)
		for x := center.X - span; x <= center.X+span; x++ {
			if x < 0 || x >= g.width {
				continue
			}
			p := Vec2i{X: x, Y: y}
			if good, ok := g.cells[p]; ok {
				out = append(out, ResourceCell{Pos: p, Type: good})
			}
		}
	}
	return out
}
