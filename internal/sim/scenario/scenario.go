// Package scenario loads and validates scenario files and turns them
// into worlds. The scenario file is the only configuration surface:
// nothing is read from the environment.
package scenario

import (
	_ "embed"
	"fmt"
	"math/rand"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"bartergrid/internal/sim/econ"
	"bartergrid/internal/sim/world"
)

//go:embed scenario.schema.json
var schemaJSON string

type Scenario struct {
	Name string `yaml:"name"`
	Seed int64  `yaml:"seed"`

	Grid GridSpec `yaml:"grid"`

	PerceptionRadius int     `yaml:"perception_radius"`
	DiscountK        float64 `yaml:"discount_k"`
	MinTradeGain     float64 `yaml:"min_trade_gain"`
	Capacity         int     `yaml:"capacity"`

	Agents    []AgentSpec    `yaml:"agents"`
	Resources []ResourceSpec `yaml:"resources"`

	Respawn *RespawnSpec `yaml:"respawn,omitempty"`
}

type GridSpec struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type AgentSpec struct {
	ID       int         `yaml:"id"`
	Pos      [2]int      `yaml:"pos"`
	Home     [2]int      `yaml:"home"`
	Utility  UtilitySpec `yaml:"utility"`
	Carrying [2]int      `yaml:"carrying,omitempty"`
	Stored   [2]int      `yaml:"stored,omitempty"`
}

type UtilitySpec struct {
	Kind    string  `yaml:"kind"`
	Alpha   float64 `yaml:"alpha"`
	Beta    float64 `yaml:"beta"`
	Epsilon float64 `yaml:"epsilon,omitempty"`
}

type ResourceSpec struct {
	Pos  [2]int `yaml:"pos"`
	Good string `yaml:"good"`
}

type RespawnSpec struct {
	Chance       float64 `yaml:"chance"`
	MaxResources int     `yaml:"max_resources"`
}

// Load reads a scenario file, checks it against the embedded JSON
// schema, then unmarshals it. Schema failures are setup errors and
// propagate with the offending detail.
func Load(path string) (Scenario, error) {
	var s Scenario
	raw, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}

	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return s, fmt.Errorf("scenario %s: %w", path, err)
	}
	schema, err := jsonschema.CompileString("scenario.schema.json", schemaJSON)
	if err != nil {
		return s, fmt.Errorf("compile scenario schema: %w", err)
	}
	if err := schema.Validate(generic); err != nil {
		return s, fmt.Errorf("scenario %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("scenario %s: %w", path, err)
	}
	return s, nil
}

// NewRNG builds the run's RNG from the scenario seed. The same seed
// yields the same draw sequence and therefore the same run.
func (s Scenario) NewRNG() *rand.Rand {
	return rand.New(rand.NewSource(s.Seed))
}

// Build constructs the world described by the scenario.
func (s Scenario) Build() (*world.World, error) {
	w, err := world.New(world.Config{
		Name:             s.Name,
		Width:            s.Grid.Width,
		Height:           s.Grid.Height,
		PerceptionRadius: s.PerceptionRadius,
		DiscountK:        s.DiscountK,
		MinTradeGain:     s.MinTradeGain,
		Capacity:         s.Capacity,
		Seed:             s.Seed,
	})
	if err != nil {
		return nil, err
	}

	for _, spec := range s.Agents {
		kind, err := econ.ParseKind(spec.Utility.Kind)
		if err != nil {
			return nil, fmt.Errorf("agent %d: %w", spec.ID, err)
		}
		eps := spec.Utility.Epsilon
		if kind == econ.CobbDouglas && eps == 0 {
			eps = 0.01
		}
		a := world.Agent{
			ID:       spec.ID,
			Pos:      world.Vec2i{X: spec.Pos[0], Y: spec.Pos[1]},
			HomePos:  world.Vec2i{X: spec.Home[0], Y: spec.Home[1]},
			Carrying: econ.Bundle{Q1: spec.Carrying[0], Q2: spec.Carrying[1]},
			Home:     econ.Bundle{Q1: spec.Stored[0], Q2: spec.Stored[1]},
			Util: econ.Utility{
				Kind:    kind,
				Alpha:   spec.Utility.Alpha,
				Beta:    spec.Utility.Beta,
				Epsilon: eps,
			},
			PartnerID: world.NoPartner,
		}
		if err := w.AddAgent(a); err != nil {
			return nil, err
		}
	}

	for _, spec := range s.Resources {
		good, err := econ.ParseGood(spec.Good)
		if err != nil {
			return nil, fmt.Errorf("resource at (%d,%d): %w", spec.Pos[0], spec.Pos[1], err)
		}
		if err := w.AddResource(world.Vec2i{X: spec.Pos[0], Y: spec.Pos[1]}, good); err != nil {
			return nil, err
		}
	}

	if s.Respawn != nil {
		w.SetRespawner(RespawnPolicy{
			Chance:       s.Respawn.Chance,
			MaxResources: s.Respawn.MaxResources,
		})
	}
	return w, nil
}
