// Package indexdb records run metadata in sqlite: one row per step plus
// snapshot bookkeeping. Writes go through a single async goroutine so
// the sim loop never blocks on disk.
package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"bartergrid/internal/sim/world"
)

type Recorder struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqStep reqKind = iota + 1
	reqSnapshot
)

type req struct {
	kind reqKind

	step     world.StepReport
	snapshot snapshotRow
}

type snapshotRow struct {
	Tick      uint64
	Path      string
	Agents    int
	Resources int
}

func Open(path string) (*Recorder, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	r := &Recorder{
		db: db,
		ch: make(chan req, 4096),
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.loop()
	}()
	return r, nil
}

func initPragmas(db *sql.DB) error {
	// WAL suits the append-only workload; NORMAL is a fair durability
	// tradeoff for a secondary record.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS steps (
	tick              INTEGER PRIMARY KEY,
	digest            TEXT NOT NULL,
	moves             INTEGER NOT NULL,
	collections       INTEGER NOT NULL,
	deposits          INTEGER NOT NULL,
	withdrawals       INTEGER NOT NULL,
	trades            INTEGER NOT NULL,
	trades_skipped    INTEGER NOT NULL,
	pairings          INTEGER NOT NULL,
	proposals_dropped INTEGER NOT NULL,
	unpairings        INTEGER NOT NULL,
	idled             INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS snapshots (
	tick        INTEGER PRIMARY KEY,
	path        TEXT NOT NULL,
	agents      INTEGER NOT NULL,
	resources   INTEGER NOT NULL,
	recorded_at TEXT NOT NULL
);`
	_, err := db.Exec(schema)
	return err
}

// RecordStep queues a step row; drops it if the writer is backed up.
func (r *Recorder) RecordStep(rep world.StepReport) {
	if r.closed.Load() {
		return
	}
	select {
	case r.ch <- req{kind: reqStep, step: rep}:
	default:
	}
}

// RecordSnapshot queues snapshot metadata.
func (r *Recorder) RecordSnapshot(tick uint64, path string, agents, resources int) {
	if r.closed.Load() {
		return
	}
	select {
	case r.ch <- req{kind: reqSnapshot, snapshot: snapshotRow{Tick: tick, Path: path, Agents: agents, Resources: resources}}:
	default:
	}
}

func (r *Recorder) loop() {
	for q := range r.ch {
		switch q.kind {
		case reqStep:
			_, _ = r.db.Exec(`INSERT OR REPLACE INTO steps
				(tick, digest, moves, collections, deposits, withdrawals, trades, trades_skipped, pairings, proposals_dropped, unpairings, idled)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				q.step.Tick, q.step.Digest, q.step.Moves, q.step.Collections, q.step.Deposits,
				q.step.Withdrawals, q.step.Trades, q.step.TradesSkipped, q.step.Pairings,
				q.step.ProposalsDropped, q.step.Unpairings, q.step.Idled)
		case reqSnapshot:
			_, _ = r.db.Exec(`INSERT OR REPLACE INTO snapshots
				(tick, path, agents, resources, recorded_at)
				VALUES (?, ?, ?, ?, ?)`,
				q.snapshot.Tick, q.snapshot.Path, q.snapshot.Agents, q.snapshot.Resources,
				time.Now().UTC().Format(time.RFC3339))
		}
	}
}

// StepCount reports how many step rows have been written.
func (r *Recorder) StepCount() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM steps`).Scan(&n)
	return n, err
}

// StepDigest returns the recorded digest for a tick.
func (r *Recorder) StepDigest(tick uint64) (string, error) {
	var d string
	err := r.db.QueryRow(`SELECT digest FROM steps WHERE tick = ?`, tick).Scan(&d)
	return d, err
}

func (r *Recorder) Close() error {
	var err error
	r.once.Do(func() {
		r.closed.Store(true)
		close(r.ch)
		r.wg.Wait()
		err = r.db.Close()
	})
	return err
}
