package world

import (
	"fmt"

	"bartergrid/internal/persistence/snapshot"
	"bartergrid/internal/sim/econ"
)

// ExportSnapshot captures the full post-step state.
func (w *World) ExportSnapshot() snapshot.SnapshotV1 {
	snap := snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			Name:    w.cfg.Name,
			Tick:    w.tick,
		},
		Seed:             w.cfg.Seed,
		Width:            w.cfg.Width,
		Height:           w.cfg.Height,
		PerceptionRadius: w.cfg.PerceptionRadius,
		DiscountK:        w.cfg.DiscountK,
		MinTradeGain:     w.cfg.MinTradeGain,
		Capacity:         w.cfg.Capacity,
	}
	for _, a := range w.agents {
		snap.Agents = append(snap.Agents, snapshot.AgentV1{
			ID:      a.ID,
			X:       a.Pos.X,
			Y:       a.Pos.Y,
			HomeX:   a.HomePos.X,
			HomeY:   a.HomePos.Y,
			CarryQ1: a.Carrying.Q1,
			CarryQ2: a.Carrying.Q2,
			HomeQ1:  a.Home.Q1,
			HomeQ2:  a.Home.Q2,
			Kind:    a.Util.Kind.String(),

			Alpha:   a.Util.Alpha,
			Beta:    a.Util.Beta,
			Epsilon: a.Util.Epsilon,

			Mode:      a.Mode.String(),
			PartnerID: a.PartnerID,
			TargetX:   a.TargetPos.X,
			TargetY:   a.TargetPos.Y,
			HasTarget: a.HasTarget,
		})
	}
	for _, rc := range w.grid.Resources() {
		snap.Resources = append(snap.Resources, snapshot.ResourceV1{
			X:    rc.Pos.X,
			Y:    rc.Pos.Y,
			Good: rc.Type.String(),
		})
	}
	return snap
}

// FromSnapshot rebuilds a world from a snapshot. The config is taken
// entirely from the snapshot so a resumed run stays deterministic.
func FromSnapshot(snap snapshot.SnapshotV1) (*World, error) {
	if snap.Header.Version != snapshot.Version {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	w, err := New(Config{
		Name:             snap.Header.Name,
		Width:            snap.Width,
		Height:           snap.Height,
		PerceptionRadius: snap.PerceptionRadius,
		DiscountK:        snap.DiscountK,
		MinTradeGain:     snap.MinTradeGain,
		Capacity:         snap.Capacity,
		Seed:             snap.Seed,
	})
	if err != nil {
		return nil, err
	}
	for _, av := range snap.Agents {
		kind, err := econ.ParseKind(av.Kind)
		if err != nil {
			return nil, fmt.Errorf("snapshot agent %d: %w", av.ID, err)
		}
		mode, err := parseMode(av.Mode)
		if err != nil {
			return nil, fmt.Errorf("snapshot agent %d: %w", av.ID, err)
		}
		a := Agent{
			ID:       av.ID,
			Pos:      Vec2i{X: av.X, Y: av.Y},
			HomePos:  Vec2i{X: av.HomeX, Y: av.HomeY},
			Carrying: econ.Bundle{Q1: av.CarryQ1, Q2: av.CarryQ2},
			Home:     econ.Bundle{Q1: av.HomeQ1, Q2: av.HomeQ2},
			Util: econ.Utility{
				Kind:    kind,
				Alpha:   av.Alpha,
				Beta:    av.Beta,
				Epsilon: av.Epsilon,
			},
			Mode:      mode,
			PartnerID: av.PartnerID,
			TargetPos: Vec2i{X: av.TargetX, Y: av.TargetY},
			HasTarget: av.HasTarget,
		}
		if err := w.AddAgent(a); err != nil {
			return nil, fmt.Errorf("snapshot agent %d: %w", av.ID, err)
		}
	}
	for _, rv := range snap.Resources {
		good, err := econ.ParseGood(rv.Good)
		if err != nil {
			return nil, fmt.Errorf("snapshot resource at (%d,%d): %w", rv.X, rv.Y, err)
		}
		if err := w.AddResource(Vec2i{X: rv.X, Y: rv.Y}, good); err != nil {
			return nil, fmt.Errorf("snapshot resource: %w", err)
		}
	}
	w.tick = snap.Header.Tick
	return w, nil
}

func parseMode(s string) (Mode, error) {
	switch s {
	case "IDLE":
		return ModeIdle, nil
	case "FORAGING":
		return ModeForaging, nil
	case "SEEKING_PARTNER":
		return ModeSeekingPartner, nil
	case "PAIRED":
		return ModePaired, nil
	case "TRADING":
		return ModeTrading, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}
