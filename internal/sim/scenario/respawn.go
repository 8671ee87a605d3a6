package scenario

import (
	"math/rand"

	"bartergrid/internal/sim/econ"
	"bartergrid/internal/sim/world"
)

// RespawnPolicy recreates collected resources between steps. It is the
// only consumer of the step RNG, so decision logic stays RNG-free while
// the whole run remains reproducible under a fixed seed.
type RespawnPolicy struct {
	// Chance is the per-step probability of spawning one resource while
	// below MaxResources.
	Chance float64
	// MaxResources caps the live resource count.
	MaxResources int
}

func (p RespawnPolicy) Respawn(grid *world.SpatialGrid, rng *rand.Rand, tick uint64) {
	if rng == nil || p.Chance <= 0 {
		return
	}
	if p.MaxResources > 0 && grid.Count() >= p.MaxResources {
		return
	}
	if rng.Float64() >= p.Chance {
		return
	}
	// Bounded rejection sampling; giving up on a crowded grid is fine,
	// another attempt comes next step.
	for try := 0; try < 16; try++ {
		pos := world.Vec2i{X: rng.Intn(grid.Width()), Y: rng.Intn(grid.Height())}
		if _, occupied := grid.ResourceAt(pos); occupied {
			continue
		}
		good := econ.Good1
		if rng.Intn(2) == 1 {
			good = econ.Good2
		}
		_ = grid.AddResource(pos, good)
		return
	}
}
