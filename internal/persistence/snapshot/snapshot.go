// Package snapshot defines the versioned on-disk world snapshot:
// JSON wrapped in zstd. Snapshots capture everything needed to resume a
// run deterministically, including the full configuration.
package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const Version = 1

type Header struct {
	Version int    `json:"version"`
	Name    string `json:"name"`
	Tick    uint64 `json:"tick"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed             int64   `json:"seed"`
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	PerceptionRadius int     `json:"perception_radius"`
	DiscountK        float64 `json:"discount_k"`
	MinTradeGain     float64 `json:"min_trade_gain"`
	Capacity         int     `json:"capacity"`

	Agents    []AgentV1    `json:"agents"`
	Resources []ResourceV1 `json:"resources"`
}

type AgentV1 struct {
	ID      int    `json:"id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	HomeX   int    `json:"home_x"`
	HomeY   int    `json:"home_y"`
	CarryQ1 int    `json:"carry_q1"`
	CarryQ2 int    `json:"carry_q2"`
	HomeQ1  int    `json:"home_q1"`
	HomeQ2  int    `json:"home_q2"`
	Kind    string `json:"kind"`

	Alpha   float64 `json:"alpha"`
	Beta    float64 `json:"beta"`
	Epsilon float64 `json:"epsilon"`

	Mode      string `json:"mode"`
	PartnerID int    `json:"partner_id,omitempty"`
	TargetX   int    `json:"target_x,omitempty"`
	TargetY   int    `json:"target_y,omitempty"`
	HasTarget bool   `json:"has_target,omitempty"`
}

type ResourceV1 struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Good string `json:"good"`
}

// Write stores the snapshot at path, creating parent directories.
func Write(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	enc, err := zstd.NewWriter(bw, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if err := json.NewEncoder(enc).Encode(snap); err != nil {
		_ = enc.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Sync()
}

// Read loads and version-checks a snapshot from path.
func Read(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(bufio.NewReader(f))
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	if err := json.NewDecoder(dec).Decode(&snap); err != nil {
		return snap, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Header.Version != Version {
		return snap, fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	return snap, nil
}
