package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"bartergrid/internal/persistence/indexdb"
	persistlog "bartergrid/internal/persistence/log"
	"bartergrid/internal/persistence/snapshot"
	"bartergrid/internal/protocol"
	"bartergrid/internal/sim/scenario"
	"bartergrid/internal/sim/world"
	"bartergrid/internal/telemetry"
	"bartergrid/internal/transport/observer"
)

func main() {
	var (
		scenarioPath  = flag.String("scenario", "./configs/baseline.yaml", "scenario file")
		steps         = flag.Uint64("steps", 1000, "number of steps to run")
		dataDir       = flag.String("data", "./data", "runtime data directory")
		addr          = flag.String("addr", "", "observer http listen address (empty to disable)")
		tickMS        = flag.Int("tick_ms", 0, "pacing delay per step in ms (0 = run at full speed)")
		snapshotEvery = flag.Uint64("snapshot_every", 200, "snapshot interval in steps (0 to disable)")
		disableDB     = flag.Bool("disable_db", false, "disable the sqlite run recorder")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[simd] ", log.LstdFlags|log.Lmicroseconds)

	sc, err := scenario.Load(*scenarioPath)
	if err != nil {
		logger.Fatalf("load scenario: %v", err)
	}
	w, err := sc.Build()
	if err != nil {
		logger.Fatalf("build world: %v", err)
	}
	rng := sc.NewRNG()

	runDir := filepath.Join(*dataDir, "runs", sc.Name)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		logger.Fatalf("data dir: %v", err)
	}

	tickLog, err := persistlog.NewWriter(filepath.Join(runDir, "ticks.jsonl.zst"))
	if err != nil {
		logger.Fatalf("tick log: %v", err)
	}
	defer tickLog.Close()

	var recorder *indexdb.Recorder
	if !*disableDB {
		recorder, err = indexdb.Open(filepath.Join(runDir, "index.db"))
		if err != nil {
			logger.Fatalf("run recorder: %v", err)
		}
		defer recorder.Close()
	}

	var obs *observer.Server
	if *addr != "" {
		obs = observer.NewServer(logger, func() protocol.HelloMsg {
			cfg := w.Config()
			return protocol.HelloMsg{
				Type:            protocol.TypeHello,
				ProtocolVersion: protocol.Version,
				Name:            cfg.Name,
				Tick:            w.CurrentTick(),
				Width:           cfg.Width,
				Height:          cfg.Height,
				AgentCount:      w.AgentCount(),
			}
		})
		mux := http.NewServeMux()
		mux.HandleFunc("/v1/observer/ws", obs.WSHandler())
		srv := &http.Server{Addr: *addr, Handler: mux}
		go func() {
			logger.Printf("observer listening on %s", *addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Printf("observer: %v", err)
			}
		}()
		defer srv.Close()
	}

	collector := telemetry.NewCollector()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	logger.Printf("scenario %s: %d agents, %d resources, seed %d",
		sc.Name, w.AgentCount(), w.Grid().Count(), sc.Seed)

	start := time.Now()
	ran := uint64(0)
loop:
	for i := uint64(0); i < *steps; i++ {
		select {
		case sig := <-stop:
			logger.Printf("signal %v, stopping after %d steps", sig, ran)
			break loop
		default:
		}

		report, err := w.Step(rng)
		if err != nil {
			logger.Fatalf("step %d: %v", i, err)
		}
		ran++

		if err := tickLog.Write(persistlog.StepEntry{Tick: report.Tick, Digest: report.Digest, Report: report}); err != nil {
			logger.Fatalf("tick log: %v", err)
		}
		if recorder != nil {
			recorder.RecordStep(report)
		}
		collector.Observe(report, w.Agents(), w.Grid().Count())
		if obs != nil {
			if b, err := json.Marshal(stepMsg(w, report)); err == nil {
				obs.Broadcast(b)
			}
		}

		if *snapshotEvery > 0 && report.Tick > 0 && report.Tick%*snapshotEvery == 0 {
			snap := w.ExportSnapshot()
			path := filepath.Join(runDir, fmt.Sprintf("snap-%08d.snap.zst", report.Tick))
			if err := snapshot.Write(path, snap); err != nil {
				logger.Printf("snapshot at %d: %v", report.Tick, err)
			} else if recorder != nil {
				recorder.RecordSnapshot(report.Tick, path, len(snap.Agents), len(snap.Resources))
			}
		}

		if *tickMS > 0 {
			time.Sleep(time.Duration(*tickMS) * time.Millisecond)
		}
	}

	if err := writeTelemetry(filepath.Join(runDir, "telemetry.csv"), collector); err != nil {
		logger.Printf("telemetry: %v", err)
	}

	econ := w.TotalEconomy()
	logger.Printf("done: %d steps in %s, economy (%d,%d), final digest %s",
		ran, time.Since(start).Round(time.Millisecond), econ.Q1, econ.Q2, w.StateDigest())
}

func writeTelemetry(path string, c *telemetry.Collector) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return c.WriteCSV(f)
}

func stepMsg(w *world.World, report world.StepReport) protocol.StepMsg {
	msg := protocol.StepMsg{
		Type:        protocol.TypeStep,
		Tick:        report.Tick,
		Digest:      report.Digest,
		Trades:      report.Trades,
		Collections: report.Collections,
		Pairings:    report.Pairings,
	}
	for _, a := range w.Agents() {
		msg.Agents = append(msg.Agents, protocol.AgentSummary{
			ID:        a.ID,
			X:         a.Pos.X,
			Y:         a.Pos.Y,
			Mode:      a.Mode.String(),
			CarryQ1:   a.Carrying.Q1,
			CarryQ2:   a.Carrying.Q2,
			HomeQ1:    a.Home.Q1,
			HomeQ2:    a.Home.Q2,
			PartnerID: a.PartnerID,
		})
	}
	for _, rc := range w.Resources() {
		msg.Resources = append(msg.Resources, protocol.ResourceSummary{
			X:    rc.Pos.X,
			Y:    rc.Pos.Y,
			Good: rc.Type.String(),
		})
	}
	return msg
}
