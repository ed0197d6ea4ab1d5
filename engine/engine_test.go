package engine

import (
	"testing"
	"time"

	"github.com/opsroot/healthmon/model"
)

// fakeDetector scripts one domain's behavior per tick.
type fakeDetector struct {
	name    string
	collect func(*model.SampleBuilder)
	analyze func(*model.Sample) model.HealthAssessment
}

func (d *fakeDetector) Name() string { return d.name }

func (d *fakeDetector) Collect(b *model.SampleBuilder) {
	if d.collect != nil {
		d.collect(b)
	}
}

func (d *fakeDetector) Analyze(s *model.Sample, _ []model.TrimmedSample) model.HealthAssessment {
	if d.analyze != nil {
		return d.analyze(s)
	}
	return model.HealthAssessment{Score: model.HealthScore{Domain: d.name, Score: 100}}
}

type fakeInspector struct {
	threads []model.ThreadState
	err     error
	calls   int
}

func (f *fakeInspector) ThreadStates(pid int32) ([]model.ThreadState, error) {
	f.calls++
	return f.threads, f.err
}

type fakeDumper struct {
	summary *model.DumpSummary
	calls   int
}

func (f *fakeDumper) CaptureAndSummarize(pid int32) (*model.DumpSummary, error) {
	f.calls++
	return f.summary, nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.HistoryCap = 10
	cfg.EventCap = 20
	return cfg
}

func TestTickFillsHistoryAndStats(t *testing.T) {
	cpu := 30.0
	det := &fakeDetector{
		name:    "cpu",
		collect: func(b *model.SampleBuilder) { b.CPUPercent = cpu },
	}
	eng := NewWithDetectors(testConfig(), det)

	for i := 0; i < 3; i++ {
		cpu += 10
		eng.Tick()
	}

	hist := eng.History()
	if len(hist) != 3 {
		t.Fatalf("history len = %d, want 3", len(hist))
	}
	if hist[0].CPUPercent != 40 || hist[2].CPUPercent != 60 {
		t.Errorf("history window = [%v .. %v], want oldest-first 40..60",
			hist[0].CPUPercent, hist[2].CPUPercent)
	}

	rep := eng.Report()
	if rep.SampleCount != 3 {
		t.Errorf("report SampleCount = %d, want 3", rep.SampleCount)
	}
	var cpuStats *model.MetricSummary
	for i := range rep.Metrics {
		if rep.Metrics[i].Name == "cpu_percent" {
			cpuStats = &rep.Metrics[i]
		}
	}
	if cpuStats == nil {
		t.Fatal("report is missing the cpu_percent metric")
	}
	if cpuStats.Avg != 50 || cpuStats.Peak != 60 {
		t.Errorf("cpu stats avg=%v peak=%v, want avg=50 peak=60", cpuStats.Avg, cpuStats.Peak)
	}
}

func TestTickComputesComposites(t *testing.T) {
	det := &fakeDetector{
		name: "mem",
		collect: func(b *model.SampleBuilder) {
			b.CommittedBytes = 8 << 30
			b.CommitLimitBytes = 16 << 30
			b.MemoryUsedPercent = 40
		},
	}
	eng := NewWithDetectors(testConfig(), det)
	s, _ := eng.Tick()

	// 0.40*50 + 0.25*40 = 30
	if !almostEqual(s.MemoryPressureIndex, 30) {
		t.Errorf("MemoryPressureIndex = %v, want 30", s.MemoryPressureIndex)
	}
}

func TestTickQuickClassifiesHang(t *testing.T) {
	det := &fakeDetector{
		name: "proc",
		collect: func(b *model.SampleBuilder) {
			b.DiskReadLatencyMs = 200
			b.HangingProcs = []model.HangingProcess{{PID: 5, Name: "app"}}
		},
	}
	eng := NewWithDetectors(testConfig(), det)
	s, _ := eng.Tick()

	if s.Freeze == nil {
		t.Fatal("hanging process produced no quick classification")
	}
	if s.Freeze.Cause != model.CauseDiskBound {
		t.Errorf("cause = %q, want disk-bound", s.Freeze.Cause)
	}

	// The hang event appears immediately with the classified cause.
	events := eng.Events()
	if len(events) == 0 {
		t.Fatal("no hang event raised")
	}
	found := false
	for _, ev := range events {
		if ev.Type == hangKeyPrefix+"app" {
			found = true
		}
	}
	if !found {
		t.Errorf("no %q event in %d entries", hangKeyPrefix+"app", len(events))
	}
}

func TestDeepInvestigationLandsNextTick(t *testing.T) {
	det := &fakeDetector{
		name: "proc",
		collect: func(b *model.SampleBuilder) {
			b.HangingProcs = []model.HangingProcess{{PID: 5, Name: "app", CPUPercent: 1}}
		},
	}
	eng := NewWithDetectors(testConfig(), det)
	insp := &fakeInspector{
		threads: []model.ThreadState{
			{TID: 1, Reason: model.WaitSynchronization},
			{TID: 2, Reason: model.WaitSynchronization},
		},
	}
	eng.SetInspector(insp)

	// Run the investigation synchronously: the scheduler decisions are
	// covered elsewhere, here we check the result lands via the mailbox.
	hp := model.HangingProcess{PID: 5, Name: "app", CPUPercent: 1}
	eng.investigate(hp, model.Sample{}, false)

	if insp.calls != 1 {
		t.Fatalf("inspector calls = %d, want 1", insp.calls)
	}

	s, _ := eng.Tick()
	if s.DeepFreeze == nil {
		t.Fatal("mailbox result did not attach to the next sample")
	}
	if s.DeepFreeze.Category != model.DeepDeadlock {
		t.Errorf("category = %v, want deadlock", s.DeepFreeze.Category)
	}

	// Drained: the tick after has no stale diagnosis unless refreshed.
	s2, _ := eng.Tick()
	if s2.DeepFreeze != nil {
		t.Error("stale deep diagnosis leaked into a later tick")
	}
}

func TestInvestigateSkipsEmptyResults(t *testing.T) {
	eng := NewWithDetectors(testConfig())
	eng.SetInspector(&fakeInspector{err: errUnavailable{}})

	eng.investigate(model.HangingProcess{PID: 5, Name: "app"}, model.Sample{}, false)
	if got := eng.deepBox.Take(); got != nil {
		t.Errorf("mailbox holds %+v, want nothing with no thread data", got)
	}
}

type errUnavailable struct{}

func (errUnavailable) Error() string { return "unavailable" }

func TestGateCooldown(t *testing.T) {
	t0 := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	g := newGate(30 * time.Second)

	if !g.TryAcquire(t0) {
		t.Fatal("first acquire must succeed")
	}
	if g.TryAcquire(t0.Add(10 * time.Second)) {
		t.Error("acquire inside cooldown must fail")
	}
	if !g.TryAcquire(t0.Add(31 * time.Second)) {
		t.Error("acquire after cooldown must succeed")
	}
}

func TestMailbox(t *testing.T) {
	var box Mailbox[int]
	if box.Take() != nil {
		t.Fatal("empty mailbox returned a value")
	}
	box.Put(1)
	box.Put(2) // replaces undrained value
	if v := box.Take(); v == nil || *v != 2 {
		t.Fatalf("Take() = %v, want 2", v)
	}
	if box.Take() != nil {
		t.Error("second Take() returned a value")
	}
}

func TestOverallScoreWorstDomain(t *testing.T) {
	assessments := []model.HealthAssessment{
		{Score: model.HealthScore{Domain: "cpu", Score: 90}},
		{Score: model.HealthScore{Domain: "disk", Score: 40}},
		{Score: model.HealthScore{Domain: "mem", Score: 70}},
	}
	got := OverallScore(assessments)
	if got.Domain != "disk" || got.Score != 40 {
		t.Errorf("OverallScore() = %+v, want disk at 40", got)
	}
}
