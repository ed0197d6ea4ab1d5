// Package engine drives the monitoring loop: collection, composite
// scoring, freeze classification, event lifecycle, bounded history, and
// running statistics.
package engine

import (
	"sync"
	"time"

	"github.com/opsroot/healthmon/detector"
	"github.com/opsroot/healthmon/freeze"
	"github.com/opsroot/healthmon/logger"
	"github.com/opsroot/healthmon/model"
	"github.com/opsroot/healthmon/probe"
)

// Config bounds the engine's memory and gates its expensive diagnostics.
type Config struct {
	HistoryCap int
	EventCap   int

	// Hang-duration thresholds for the two deep-diagnostic tiers.
	DeepHangAfter time.Duration
	DumpHangAfter time.Duration

	// Minimum spacing between background runs of each tier.
	DeepCooldown time.Duration
	DumpCooldown time.Duration
}

// DefaultConfig returns the standard bounds.
func DefaultConfig() Config {
	return Config{
		HistoryCap:    100,
		EventCap:      200,
		DeepHangAfter: 5 * time.Second,
		DumpHangAfter: 15 * time.Second,
		DeepCooldown:  30 * time.Second,
		DumpCooldown:  5 * time.Minute,
	}
}

// Engine is the sole owner of history, running stats, and the active-event
// table. Detectors run sequentially inside Tick; only deep diagnostics run
// in the background, writing into a single-slot mailbox drained at the
// start of the next tick.
type Engine struct {
	cfg      Config
	registry *detector.Registry

	history *History
	events  *EventLog
	hangs   *hangTracker
	stats   *statsBook

	inspector probe.ThreadInspector
	dumper    probe.DumpCapturer
	deepGate  *gate
	dumpGate  *gate
	deepBox   Mailbox[model.DeepFreezeDiagnostic]

	recorder *Recorder

	startTime   time.Time
	sampleCount int
	freezeCount int

	tickMu sync.Mutex // serializes Tick against overlapping timers
}

// New creates an engine with the default detector set and platform
// inspectors.
func New(cfg Config) *Engine {
	return NewWithDetectors(cfg, detector.Defaults()...)
}

// NewWithDetectors creates an engine over an explicit detector set.
func NewWithDetectors(cfg Config, detectors ...detector.Detector) *Engine {
	return &Engine{
		cfg:       cfg,
		registry:  detector.NewRegistry(detectors...),
		history:   NewHistory(cfg.HistoryCap),
		events:    NewEventLog(cfg.EventCap),
		hangs:     newHangTracker(),
		stats:     newStatsBook(),
		inspector: probe.NewProcfsInspector(),
		dumper:    probe.NewProcfsDumper(),
		deepGate:  newGate(cfg.DeepCooldown),
		dumpGate:  newGate(cfg.DumpCooldown),
		startTime: time.Now(),
	}
}

// SetInspector overrides the thread inspector. Tests use this.
func (e *Engine) SetInspector(i probe.ThreadInspector) { e.inspector = i }

// SetDumper overrides the dump capturer.
func (e *Engine) SetDumper(d probe.DumpCapturer) { e.dumper = d }

// SetRecorder attaches a session recorder; every tick is stored.
func (e *Engine) SetRecorder(r *Recorder) { e.recorder = r }

// Tick performs one full monitoring cycle and returns the immutable sample
// with every domain's assessment.
func (e *Engine) Tick() (*model.Sample, []model.HealthAssessment) {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()

	// Drain the deep-diagnostic mailbox first: results computed since the
	// previous tick belong to this one.
	pendingDeep := e.deepBox.Take()

	b := model.NewSampleBuilder()
	e.registry.CollectAll(b)
	computeComposites(b)
	if pendingDeep != nil {
		b.DeepFreeze = pendingDeep
	}

	now := b.Timestamp
	if len(b.HangingProcs) > 0 {
		e.classifyHang(b, now)
	}

	sample := b.Build()
	assessments := e.registry.AnalyzeAll(&sample, e.history.Window())

	var newEvents []model.MonitorEvent
	for _, a := range assessments {
		newEvents = append(newEvents, a.Events...)
	}
	e.events.Merge(newEvents, now)
	e.hangs.Update(&sample, e.events, now)

	e.history.Push(sample.Trim())
	e.stats.Fold(&sample)
	e.sampleCount++

	if e.recorder != nil {
		if err := e.recorder.Store(&sample); err != nil {
			logger.Debug().Err(err).Msg("recorder store failed")
		}
	}

	return &sample, assessments
}

// classifyHang runs the quick classifier on the first hanging process and,
// past the duration thresholds, launches the cooldown-gated background
// investigation.
func (e *Engine) classifyHang(b *model.SampleBuilder, now time.Time) {
	first := b.HangingProcs[0]
	cls := freeze.Classify(first.Name, &b.Sample)
	b.Freeze = &cls
	e.freezeCount++

	elapsed := e.hangs.Elapsed(first.Name, now)
	if elapsed < e.cfg.DeepHangAfter {
		return
	}
	if !e.deepGate.TryAcquire(now) {
		return
	}
	wantDump := elapsed >= e.cfg.DumpHangAfter && e.dumpGate.TryAcquire(now)

	// The goroutine works on copies; it only ever writes the mailbox. If it
	// outlives the session it is abandoned, not cancelled.
	snapshot := b.Sample
	go e.investigate(first, snapshot, wantDump)
}

func (e *Engine) investigate(hp model.HangingProcess, snap model.Sample, wantDump bool) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Debug().Interface("panic", rec).Msg("deep investigation failed")
		}
	}()

	threads, err := e.inspector.ThreadStates(hp.PID)
	if err != nil {
		logger.Debug().Err(err).Int32("pid", hp.PID).Msg("thread inspection unavailable")
		threads = nil
	}

	var dump *model.DumpSummary
	if wantDump && e.dumper != nil {
		if d, derr := e.dumper.CaptureAndSummarize(hp.PID); derr == nil {
			dump = d
		} else {
			logger.Debug().Err(derr).Int32("pid", hp.PID).Msg("dump capture unavailable")
		}
	}

	if len(threads) == 0 && dump == nil {
		return // no new diagnostic data this cycle
	}
	e.deepBox.Put(freeze.Investigate(&hp, &snap, threads, dump))
}

// Events returns a snapshot of the live event log.
func (e *Engine) Events() []model.MonitorEvent {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()
	return e.events.Events()
}

// History exposes the trimmed-sample window for trend displays.
func (e *Engine) History() []model.TrimmedSample {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()
	return e.history.Window()
}

// OverallScore reduces a tick's assessments to the weakest domain score,
// which is what a status line should show.
func OverallScore(assessments []model.HealthAssessment) model.HealthScore {
	worst := model.HealthScore{Score: 100}
	for _, a := range assessments {
		if a.Score.Score < worst.Score || worst.Domain == "" {
			worst = a.Score
		}
	}
	return worst
}
