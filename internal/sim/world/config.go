package world

import "fmt"

// Config is the immutable simulation configuration, constructed once at
// scenario setup and passed by reference. There is no module-level
// mutable state and nothing is read from the environment.
type Config struct {
	Name   string
	Width  int
	Height int

	// PerceptionRadius bounds what an agent can observe (resources and
	// other agents), in Manhattan distance.
	PerceptionRadius int

	// DiscountK is the distance-discount constant: a forage candidate at
	// distance d is worth MU * exp(-DiscountK * d). It applies to forage
	// targeting only, not to trade or travel cost.
	DiscountK float64

	// MinTradeGain is the strict utility-gain floor both parties must
	// clear for a swap to execute.
	MinTradeGain float64

	// Capacity bounds the carrying inventory (units summed across goods).
	Capacity int

	Seed int64
}

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "world_1"
	}
	if c.Width <= 0 {
		c.Width = 32
	}
	if c.Height <= 0 {
		c.Height = 32
	}
	if c.PerceptionRadius <= 0 {
		c.PerceptionRadius = 8
	}
	if c.DiscountK <= 0 {
		c.DiscountK = 0.15
	}
	if c.MinTradeGain <= 0 {
		c.MinTradeGain = 1e-6
	}
	if c.Capacity <= 0 {
		c.Capacity = 10
	}
}

func (c *Config) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid grid dimensions %dx%d", c.Width, c.Height)
	}
	if c.PerceptionRadius < 0 {
		return fmt.Errorf("negative perception radius %d", c.PerceptionRadius)
	}
	if c.DiscountK <= 0 {
		return fmt.Errorf("discount constant must be positive, got %g", c.DiscountK)
	}
	if c.MinTradeGain < 0 {
		return fmt.Errorf("negative min trade gain %g", c.MinTradeGain)
	}
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", c.Capacity)
	}
	return nil
}
