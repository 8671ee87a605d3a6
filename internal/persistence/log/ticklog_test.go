package log

import (
	"fmt"
	"path/filepath"
	"testing"

	"bartergrid/internal/sim/world"
)

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "ticks.jsonl.zst")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatal(err)
	}

	const steps = 200
	for i := 0; i < steps; i++ {
		e := StepEntry{
			Tick:   uint64(i),
			Digest: fmt.Sprintf("digest-%04d", i),
			Report: world.StepReport{Tick: uint64(i), Moves: i % 5, Trades: i % 3},
		}
		if err := w.Write(e); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	entries, err := ReadAll(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != steps {
		t.Fatalf("expected %d entries, got %d", steps, len(entries))
	}
	for i, e := range entries {
		if e.Tick != uint64(i) {
			t.Fatalf("entry %d: tick %d out of order", i, e.Tick)
		}
		if e.Digest != fmt.Sprintf("digest-%04d", i) {
			t.Fatalf("entry %d: digest %q", i, e.Digest)
		}
		if e.Report.Moves != i%5 || e.Report.Trades != i%3 {
			t.Fatalf("entry %d: report fields lost: %+v", i, e.Report)
		}
	}
}

func TestReadAllMissingFile(t *testing.T) {
	if _, err := ReadAll(filepath.Join(t.TempDir(), "nope.jsonl.zst")); err == nil {
		t.Fatal("expected an error for a missing log")
	}
}
