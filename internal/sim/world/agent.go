package world

import (
	"fmt"

	"bartergrid/internal/sim/econ"
)

// NoPartner marks an agent without a trade partner. Agent ids are
// strictly positive, so zero is free to use as the sentinel.
const NoPartner = 0

// Agent is a utility-maximizing entity on the grid. Carrying is the
// capacity-bounded inventory physically held while moving; Home is the
// unbounded stash at HomePos. The id is immutable and globally unique.
type Agent struct {
	ID      int
	Pos     Vec2i
	HomePos Vec2i

	Carrying econ.Bundle
	Home     econ.Bundle

	Util econ.Utility

	// Transient decision state, updated as actions are applied.
	Mode      Mode
	PartnerID int
	TargetPos Vec2i
	HasTarget bool
}

// Total is the economy-relevant bundle: carrying plus home. It is always
// computed fresh, never cached.
func (a *Agent) Total() econ.Bundle {
	return a.Carrying.Plus(a.Home)
}

func (a *Agent) CarryingFull(capacity int) bool {
	return a.Carrying.Total() >= capacity
}

func (a *Agent) AtHome() bool {
	return a.Pos == a.HomePos
}

// DepositToHome moves amount units of good from carrying to home.
// Only legal while standing on HomePos.
func (a *Agent) DepositToHome(good econ.Good, amount int) error {
	if amount < 0 {
		return fmt.Errorf("agent %d: negative deposit %d", a.ID, amount)
	}
	if !a.AtHome() {
		return fmt.Errorf("agent %d: deposit away from home (%v != %v)", a.ID, a.Pos, a.HomePos)
	}
	if a.Carrying.Get(good) < amount {
		return fmt.Errorf("agent %d: deposit %d %s exceeds carried %d", a.ID, amount, good, a.Carrying.Get(good))
	}
	a.Carrying = a.Carrying.Add(good, -amount)
	a.Home = a.Home.Add(good, amount)
	return nil
}

// WithdrawFromHome moves amount units of good from home to carrying,
// respecting the carrying capacity. Only legal while standing on HomePos.
func (a *Agent) WithdrawFromHome(good econ.Good, amount int, capacity int) error {
	if amount < 0 {
		return fmt.Errorf("agent %d: negative withdrawal %d", a.ID, amount)
	}
	if !a.AtHome() {
		return fmt.Errorf("agent %d: withdraw away from home (%v != %v)", a.ID, a.Pos, a.HomePos)
	}
	if a.Home.Get(good) < amount {
		return fmt.Errorf("agent %d: withdraw %d %s exceeds stored %d", a.ID, amount, good, a.Home.Get(good))
	}
	if a.Carrying.Total()+amount > capacity {
		return fmt.Errorf("agent %d: withdraw %d %s would exceed capacity %d", a.ID, amount, good, capacity)
	}
	a.Home = a.Home.Add(good, -amount)
	a.Carrying = a.Carrying.Add(good, amount)
	return nil
}

// validate checks the invariants that only a setup or programmer bug can
// break. Violations are fatal and propagate; they are never "recovered".
func (a *Agent) validate(capacity int) error {
	if a.ID <= 0 {
		return fmt.Errorf("agent id must be positive, got %d", a.ID)
	}
	if err := a.Carrying.Validate(); err != nil {
		return fmt.Errorf("agent %d carrying: %w", a.ID, err)
	}
	if err := a.Home.Validate(); err != nil {
		return fmt.Errorf("agent %d home: %w", a.ID, err)
	}
	if a.Carrying.Total() > capacity {
		return fmt.Errorf("agent %d carrying %d exceeds capacity %d", a.ID, a.Carrying.Total(), capacity)
	}
	if err := a.Util.Validate(); err != nil {
		return fmt.Errorf("agent %d utility: %w", a.ID, err)
	}
	return nil
}
