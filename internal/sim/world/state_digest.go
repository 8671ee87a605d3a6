package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
)

// StateDigest hashes the complete world state in canonical order:
// header, resources row-major, agents ascending by id. Two runs of the
// same scenario and seed must produce identical digests at every step;
// the determinism tests and the replay verifier are built on this.
func (w *World) StateDigest() string {
	h := sha256.New()
	var tmp [8]byte

	digestU64(h, &tmp, w.tick)
	digestI64(h, &tmp, int64(w.cfg.Width))
	digestI64(h, &tmp, int64(w.cfg.Height))
	digestI64(h, &tmp, int64(w.cfg.PerceptionRadius))
	digestF64(h, &tmp, w.cfg.DiscountK)
	digestF64(h, &tmp, w.cfg.MinTradeGain)
	digestI64(h, &tmp, int64(w.cfg.Capacity))

	digestI64(h, &tmp, int64(w.grid.Count()))
	for _, rc := range w.grid.Resources() {
		digestI64(h, &tmp, int64(rc.Pos.X))
		digestI64(h, &tmp, int64(rc.Pos.Y))
		h.Write([]byte{byte(rc.Type)})
	}

	digestI64(h, &tmp, int64(len(w.agents)))
	for _, a := range w.agents {
		digestI64(h, &tmp, int64(a.ID))
		digestI64(h, &tmp, int64(a.Pos.X))
		digestI64(h, &tmp, int64(a.Pos.Y))
		digestI64(h, &tmp, int64(a.HomePos.X))
		digestI64(h, &tmp, int64(a.HomePos.Y))
		digestI64(h, &tmp, int64(a.Carrying.Q1))
		digestI64(h, &tmp, int64(a.Carrying.Q2))
		digestI64(h, &tmp, int64(a.Home.Q1))
		digestI64(h, &tmp, int64(a.Home.Q2))
		h.Write([]byte{byte(a.Util.Kind)})
		digestF64(h, &tmp, a.Util.Alpha)
		digestF64(h, &tmp, a.Util.Beta)
		digestF64(h, &tmp, a.Util.Epsilon)
		h.Write([]byte{byte(a.Mode)})
		digestI64(h, &tmp, int64(a.PartnerID))
		digestI64(h, &tmp, int64(a.TargetPos.X))
		digestI64(h, &tmp, int64(a.TargetPos.Y))
		h.Write([]byte{boolByte(a.HasTarget)})
	}

	return hex.EncodeToString(h.Sum(nil))
}

func digestU64(h hash.Hash, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestI64(h hash.Hash, tmp *[8]byte, v int64) {
	digestU64(h, tmp, uint64(v))
}

func digestF64(h hash.Hash, tmp *[8]byte, v float64) {
	digestU64(h, tmp, math.Float64bits(v))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
