package world

import (
	"fmt"
)

// Vec2i is an integer grid cell.
type Vec2i struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (v Vec2i) String() string {
	return fmt.Sprintf("(%d,%d)", v.X, v.Y)
}

// Manhattan is the grid distance |dx|+|dy|. All perception and movement
// uses this metric; visibility is pure radius membership, there is no
// line-of-sight or path obstruction check.
func Manhattan(a, b Vec2i) int {
	return absInt(a.X-b.X) + absInt(a.Y-b.Y)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func signInt(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// stepToward returns the unit move that shortens the Manhattan path from
// a to b, reducing |dx| before |dy|. Zero when already there.
func stepToward(from, to Vec2i) Vec2i {
	if dx := to.X - from.X; dx != 0 {
		return Vec2i{X: signInt(dx)}
	}
	return Vec2i{Y: signInt(to.Y - from.Y)}
}

// Mode describes what an agent is currently doing. It is transient
// state maintained for observers; the decision procedure keys off
// position, inventory and partner, not Mode.
type Mode uint8

const (
	ModeIdle Mode = iota
	ModeForaging
	ModeSeekingPartner
	ModePaired
	ModeTrading
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "IDLE"
	case ModeForaging:
		return "FORAGING"
	case ModeSeekingPartner:
		return "SEEKING_PARTNER"
	case ModePaired:
		return "PAIRED"
	case ModeTrading:
		return "TRADING"
	}
	return fmt.Sprintf("MODE?%d", uint8(m))
}
