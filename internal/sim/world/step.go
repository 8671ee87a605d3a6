package world

import (
	"fmt"
	"math/rand"

	"bartergrid/internal/sim/econ"
)

// StepReport summarizes what one step applied. Collected counters feed
// telemetry, the tick log and the run recorder.
type StepReport struct {
	Tick uint64 `json:"tick"`

	Moves            int `json:"moves"`
	Collections      int `json:"collections"`
	Deposits         int `json:"deposits"`
	Withdrawals      int `json:"withdrawals"`
	Trades           int `json:"trades"`
	TradesSkipped    int `json:"trades_skipped"`
	Pairings         int `json:"pairings"`
	ProposalsDropped int `json:"proposals_dropped"`
	Unpairings       int `json:"unpairings"`
	Idled            int `json:"idled"`

	Digest string `json:"digest"`
}

// Respawner recreates resources between steps. It is scenario policy,
// not core decision logic: it is the only consumer of the step RNG.
type Respawner interface {
	Respawn(grid *SpatialGrid, rng *rand.Rand, tick uint64)
}

type decided struct {
	agent  *Agent
	action Action
}

// Step advances the simulation by one unit of time.
//
// Phase 1 collects one action per agent, in ascending id order, against
// a frozen snapshot of the pre-step state; nothing mutates. Phase 2
// applies the collected actions, again in ascending id order, against
// the live state. Phase-1 decisions are order-independent; Phase-2
// application is strictly order-dependent, which is exactly what makes
// conflict resolution deterministic: the lower id wins and a later
// action that turned stale degrades to Idle with no side effect.
//
// The returned error is reserved for true precondition violations
// (malformed agent state, invalid utility parameters); simulation-
// semantic failures never surface here.
func (w *World) Step(rng *rand.Rand) (StepReport, error) {
	report := StepReport{Tick: w.tick}

	// Phase 1: decision collection.
	w.index.Rebuild(w.agents)
	view := &StepView{grid: w.grid, index: w.index, byID: w.byID}

	decisions := make([]decided, 0, len(w.agents))
	for _, a := range w.agents {
		if err := a.validate(w.cfg.Capacity); err != nil {
			return report, fmt.Errorf("step %d phase 1: %w", w.tick, err)
		}
		decisions = append(decisions, decided{agent: a, action: w.engine.Decide(*a, view)})
	}

	// Phase 2: ordered application.
	for i := range decisions {
		if err := w.apply(&decisions[i], decisions, &report); err != nil {
			return report, fmt.Errorf("step %d phase 2: %w", w.tick, err)
		}
	}

	// Scenario-level respawn consumes the threaded RNG after all agent
	// effects, so identical seeds yield identical draw sequences.
	if w.respawner != nil {
		w.respawner.Respawn(w.grid, rng, w.tick)
	}

	report.Digest = w.StateDigest()
	w.tick++
	return report, nil
}

func (w *World) apply(d *decided, all []decided, report *StepReport) error {
	a := d.agent
	act := d.action

	switch act.Kind {
	case ActIdle:
		w.setIdle(a, report)

	case ActMove:
		if absInt(act.Dir.X)+absInt(act.Dir.Y) != 1 {
			return fmt.Errorf("agent %d: malformed move %v", a.ID, act.Dir)
		}
		next := Vec2i{X: a.Pos.X + act.Dir.X, Y: a.Pos.Y + act.Dir.Y}
		if !w.grid.InBounds(next) {
			w.setIdle(a, report)
			return nil
		}
		a.Pos = next
		w.adoptTransient(a, act)
		report.Moves++

	case ActCollect:
		good, ok := w.grid.ResourceAt(a.Pos)
		if !ok || good != act.Good || a.CarryingFull(w.cfg.Capacity) {
			// A lower-id agent got here first, or the resource vanished.
			w.setIdle(a, report)
			return nil
		}
		w.grid.RemoveResource(a.Pos)
		a.Carrying = a.Carrying.Add(good, 1)
		w.adoptTransient(a, act)
		report.Collections++

	case ActDeposit:
		if !a.AtHome() {
			w.setIdle(a, report)
			return nil
		}
		carried := a.Carrying
		if err := a.DepositToHome(econ.Good1, carried.Q1); err != nil {
			return err
		}
		if err := a.DepositToHome(econ.Good2, carried.Q2); err != nil {
			return err
		}
		w.adoptTransient(a, act)
		report.Deposits++

	case ActWithdraw:
		if !a.AtHome() || a.Home.Get(act.Good) < 1 || a.CarryingFull(w.cfg.Capacity) {
			w.setIdle(a, report)
			return nil
		}
		if err := a.WithdrawFromHome(act.Good, 1, w.cfg.Capacity); err != nil {
			return err
		}
		w.adoptTransient(a, act)
		report.Withdrawals++

	case ActProposePair:
		w.applyProposePair(a, act, all, report)

	case ActTrade:
		return w.applyTrade(a, act, report)

	case ActUnpair:
		p := w.byID[act.PartnerID]
		if p != nil && p.PartnerID == a.ID {
			p.PartnerID = NoPartner
			p.Mode = ModeIdle
			p.HasTarget = false
		}
		a.PartnerID = NoPartner
		w.adoptTransient(a, act)
		report.Unpairings++

	default:
		return fmt.Errorf("agent %d: unknown action kind %d", a.ID, uint8(act.Kind))
	}
	return nil
}

// applyProposePair pairs the proposer with its target if the target's
// own Phase-1 action was compatible (a proposal or idle) and neither
// side was already paired by an earlier-processed agent this step.
// Dropped proposals are not errors.
func (w *World) applyProposePair(a *Agent, act Action, all []decided, report *StepReport) {
	if a.PartnerID != NoPartner {
		// An earlier proposer already paired us; their proposal won.
		report.ProposalsDropped++
		return
	}
	p := w.byID[act.PartnerID]
	if p == nil || p.PartnerID != NoPartner {
		report.ProposalsDropped++
		w.setIdle(a, report)
		return
	}
	if !proposalCompatible(p.ID, all) {
		report.ProposalsDropped++
		w.setIdle(a, report)
		return
	}
	a.PartnerID = p.ID
	p.PartnerID = a.ID
	a.Mode = ModePaired
	p.Mode = ModePaired
	a.TargetPos = p.Pos
	a.HasTarget = true
	report.Pairings++
}

func proposalCompatible(targetID int, all []decided) bool {
	for i := range all {
		if all[i].agent.ID != targetID {
			continue
		}
		k := all[i].action.Kind
		return k == ActProposePair || k == ActIdle
	}
	return false
}

// applyTrade re-validates the swap against the live state: an earlier
// agent's action may have shifted inventories since Phase 1. An invalid
// trade is skipped silently and both agents stay paired for
// re-evaluation next step.
func (w *World) applyTrade(a *Agent, act Action, report *StepReport) error {
	p := w.byID[act.PartnerID]
	valid := p != nil &&
		p.PartnerID == a.ID && a.PartnerID == p.ID &&
		a.Pos == p.Pos &&
		a.Carrying.Get(act.Give) >= 1 &&
		p.Carrying.Get(act.Receive) >= 1

	if valid {
		gainA := a.Util.SwapGain(a.Total(), act.Give)
		gainP := p.Util.SwapGain(p.Total(), act.Receive)
		valid = gainA > w.cfg.MinTradeGain && gainP > w.cfg.MinTradeGain
	}

	if !valid {
		report.TradesSkipped++
		if a.PartnerID != NoPartner {
			a.Mode = ModePaired
		} else {
			a.Mode = ModeIdle
		}
		return nil
	}

	a.Carrying = a.Carrying.Add(act.Give, -1).Add(act.Receive, 1)
	p.Carrying = p.Carrying.Add(act.Receive, -1).Add(act.Give, 1)
	if err := a.Carrying.Validate(); err != nil {
		return fmt.Errorf("trade %d<->%d: %w", a.ID, p.ID, err)
	}
	if err := p.Carrying.Validate(); err != nil {
		return fmt.Errorf("trade %d<->%d: %w", a.ID, p.ID, err)
	}
	a.Mode = ModeTrading
	p.Mode = ModeTrading
	report.Trades++
	return nil
}

func (w *World) setIdle(a *Agent, report *StepReport) {
	a.Mode = ModeIdle
	a.HasTarget = false
	report.Idled++
}

func (w *World) adoptTransient(a *Agent, act Action) {
	a.Mode = act.Mode
	a.TargetPos = act.TargetPos
	a.HasTarget = act.HasTarget
}
