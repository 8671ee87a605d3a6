package world

import (
	"math"

	"bartergrid/internal/sim/econ"
)

// Engine computes one Action per agent per step against a frozen
// StepView. Every branch is a deterministic function of the snapshot;
// no RNG is ever consumed here.
type Engine struct {
	cfg *Config
}

func NewEngine(cfg *Config) Engine {
	return Engine{cfg: cfg}
}

// Decide runs the decision procedure in strict priority order and
// returns the first applicable branch:
//
//  1. carrying full, at home        -> Deposit
//  2. carrying full, away from home -> Move toward home
//  3. paired, partner in sight      -> Trade / converge / Unpair
//  4. forage                        -> Collect / Move toward best resource
//  5. unpaired, candidate in sight  -> ProposePair
//  6. otherwise                     -> Idle
func (e Engine) Decide(a Agent, v *StepView) Action {
	if a.CarryingFull(e.cfg.Capacity) {
		if a.AtHome() {
			return Action{Kind: ActDeposit, Mode: ModeIdle}
		}
		return Action{
			Kind:      ActMove,
			Dir:       stepToward(a.Pos, a.HomePos),
			Mode:      ModeForaging,
			TargetPos: a.HomePos,
			HasTarget: true,
		}
	}

	if a.PartnerID != NoPartner {
		if act, ok := e.decidePaired(a, v); ok {
			return act
		}
	}

	if act, ok := e.decideForage(a, v); ok {
		return act
	}

	if a.PartnerID == NoPartner {
		if act, ok := e.decidePairSearch(a, v); ok {
			return act
		}
	}

	return idle()
}

// decidePaired maintains an existing partnership. A partner outside the
// perception radius does not dissolve the pairing; the branch simply
// does not apply and the agent forages this step.
func (e Engine) decidePaired(a Agent, v *StepView) (Action, bool) {
	p, ok := v.Agent(a.PartnerID)
	if !ok || Manhattan(a.Pos, p.Pos) > e.cfg.PerceptionRadius {
		return Action{}, false
	}

	if a.Pos != p.Pos {
		// Converge: each side independently walks one step toward the
		// other's current position. No midpoint is computed.
		return Action{
			Kind:      ActMove,
			Dir:       stepToward(a.Pos, p.Pos),
			Mode:      ModePaired,
			PartnerID: a.PartnerID,
			TargetPos: p.Pos,
			HasTarget: true,
		}, true
	}

	if give, ok := e.bestExecutableSwap(&a, &p); ok {
		return Action{
			Kind:      ActTrade,
			PartnerID: p.ID,
			Give:      give,
			Receive:   give.Other(),
			Mode:      ModeTrading,
		}, true
	}

	// A mutually improving swap may exist on total bundles while the
	// good to give sits at home. At home that is fixable: withdraw one
	// unit and trade next step instead of dissolving the pairing.
	if a.AtHome() {
		if good, ok := e.withdrawForSwap(&a, &p); ok {
			return Action{
				Kind:      ActWithdraw,
				Good:      good,
				Mode:      ModePaired,
				PartnerID: a.PartnerID,
			}, true
		}
	}

	return Action{Kind: ActUnpair, PartnerID: a.PartnerID, Mode: ModeIdle}, true
}

// decideForage scores every resource in perception range by marginal
// utility on the total bundle, discounted by exp(-k*d). Strictly better
// scores win; on a tie the earlier candidate in row-major order is kept.
// Zero-marginal resources are never targeted: chasing them cannot
// increase utility.
func (e Engine) decideForage(a Agent, v *StepView) (Action, bool) {
	total := a.Total()

	var best ResourceCell
	var bestScore float64
	found := false
	for _, rc := range v.ResourcesWithin(a.Pos, e.cfg.PerceptionRadius) {
		mu := a.Util.Marginal(total, rc.Type)
		if mu <= 0 {
			continue
		}
		d := Manhattan(a.Pos, rc.Pos)
		score := mu * math.Exp(-e.cfg.DiscountK*float64(d))
		if !found || score > bestScore {
			best = rc
			bestScore = score
			found = true
		}
	}
	if !found {
		return Action{}, false
	}

	if best.Pos == a.Pos {
		return Action{
			Kind:      ActCollect,
			Good:      best.Type,
			Mode:      ModeForaging,
			TargetPos: best.Pos,
			HasTarget: true,
		}, true
	}
	return Action{
		Kind:      ActMove,
		Dir:       stepToward(a.Pos, best.Pos),
		Mode:      ModeForaging,
		TargetPos: best.Pos,
		HasTarget: true,
	}, true
}

// decidePairSearch proposes a partnership to the lowest-id visible
// unpaired agent with whom some 1-for-1 swap would be mutually
// improving. The speculation uses total bundles: the swap may require a
// withdraw before it can actually execute.
func (e Engine) decidePairSearch(a Agent, v *StepView) (Action, bool) {
	for _, id := range v.AgentsWithin(a.Pos, e.cfg.PerceptionRadius) {
		if id == a.ID {
			continue
		}
		p, ok := v.Agent(id)
		if !ok || p.PartnerID != NoPartner {
			continue
		}
		if _, ok := e.mutualSwapOnTotals(&a, &p); ok {
			return Action{
				Kind:      ActProposePair,
				PartnerID: id,
				Mode:      ModeSeekingPartner,
				TargetPos: p.Pos,
				HasTarget: true,
			}, true
		}
	}
	return Action{}, false
}

// mutualSwapOnTotals finds a 1-for-1 swap (give from a's perspective)
// that is a strict Pareto improvement for both parties, evaluated on
// total (carrying+home) bundles. Directions are checked in fixed order
// and the one with the larger gain for a wins; a tie keeps giving Good1.
func (e Engine) mutualSwapOnTotals(a, p *Agent) (econ.Good, bool) {
	aTotal := a.Total()
	pTotal := p.Total()

	var best econ.Good
	var bestGain float64
	found := false
	for _, give := range []econ.Good{econ.Good1, econ.Good2} {
		if aTotal.Get(give) < 1 || pTotal.Get(give.Other()) < 1 {
			continue
		}
		gainA := a.Util.SwapGain(aTotal, give)
		gainP := p.Util.SwapGain(pTotal, give.Other())
		if gainA <= e.cfg.MinTradeGain || gainP <= e.cfg.MinTradeGain {
			continue
		}
		if !found || gainA > bestGain {
			best = give
			bestGain = gainA
			found = true
		}
	}
	return best, found
}

// bestExecutableSwap narrows mutualSwapOnTotals to swaps both sides can
// actually perform out of carrying inventory. Utility gains are still
// measured on total bundles; goods held at home only constrain
// executability, not valuation.
func (e Engine) bestExecutableSwap(a, p *Agent) (econ.Good, bool) {
	aTotal := a.Total()
	pTotal := p.Total()

	var best econ.Good
	var bestGain float64
	found := false
	for _, give := range []econ.Good{econ.Good1, econ.Good2} {
		if a.Carrying.Get(give) < 1 || p.Carrying.Get(give.Other()) < 1 {
			continue
		}
		gainA := a.Util.SwapGain(aTotal, give)
		gainP := p.Util.SwapGain(pTotal, give.Other())
		if gainA <= e.cfg.MinTradeGain || gainP <= e.cfg.MinTradeGain {
			continue
		}
		if !found || gainA > bestGain {
			best = give
			bestGain = gainA
			found = true
		}
	}
	return best, found
}

// withdrawForSwap reports the good a should pull from home storage to
// make a mutually improving swap executable next step.
func (e Engine) withdrawForSwap(a, p *Agent) (econ.Good, bool) {
	give, ok := e.mutualSwapOnTotals(a, p)
	if !ok {
		return 0, false
	}
	if a.Carrying.Get(give) >= 1 {
		// Executability failed on the partner's side; nothing to withdraw.
		return 0, false
	}
	if a.Home.Get(give) < 1 {
		return 0, false
	}
	return give, true
}
