package world

import (
	"fmt"

	"bartergrid/internal/sim/econ"
)

// ActionKind tags the variant of an Action.
type ActionKind uint8

const (
	ActIdle ActionKind = iota
	ActMove
	ActCollect
	ActDeposit
	ActWithdraw
	ActProposePair
	ActTrade
	ActUnpair
)

func (k ActionKind) String() string {
	switch k {
	case ActIdle:
		return "IDLE"
	case ActMove:
		return "MOVE"
	case ActCollect:
		return "COLLECT"
	case ActDeposit:
		return "DEPOSIT"
	case ActWithdraw:
		return "WITHDRAW"
	case ActProposePair:
		return "PROPOSE_PAIR"
	case ActTrade:
		return "TRADE"
	case ActUnpair:
		return "UNPAIR"
	}
	return fmt.Sprintf("ACT?%d", uint8(k))
}

// Action is the transient output of one Decide call. It carries enough
// data for Phase 2 to apply it without recomputation: the move delta,
// the goods of a swap, the partner in a pairing, and the mode/target the
// agent transitions to if the action applies cleanly.
type Action struct {
	Kind ActionKind

	// ActMove: unit step (|Dir.X|+|Dir.Y| == 1).
	Dir Vec2i

	// ActCollect / ActWithdraw: the good involved.
	Good econ.Good

	// ActProposePair / ActTrade / ActUnpair.
	PartnerID int

	// ActTrade: the 1-for-1 swap from the acting agent's perspective.
	Give    econ.Good
	Receive econ.Good

	// Transient state the agent adopts when the action applies.
	Mode      Mode
	TargetPos Vec2i
	HasTarget bool
}

func idle() Action {
	return Action{Kind: ActIdle, Mode: ModeIdle}
}
