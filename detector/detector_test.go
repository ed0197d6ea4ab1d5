package detector

import (
	"testing"
	"time"

	"github.com/opsroot/healthmon/model"
)

type panicky struct{}

func (panicky) Name() string                 { return "panicky" }
func (panicky) Collect(*model.SampleBuilder) { panic("collect boom") }
func (panicky) Analyze(*model.Sample, []model.TrimmedSample) model.HealthAssessment {
	panic("analyze boom")
}

type recording struct {
	collected bool
	analyzed  bool
}

func (r *recording) Name() string                 { return "recording" }
func (r *recording) Collect(*model.SampleBuilder) { r.collected = true }
func (r *recording) Analyze(*model.Sample, []model.TrimmedSample) model.HealthAssessment {
	r.analyzed = true
	return model.HealthAssessment{Score: model.HealthScore{Domain: "recording", Score: 100}}
}

func TestRegistryIsolatesPanics(t *testing.T) {
	rec := &recording{}
	reg := NewRegistry(panicky{}, rec)

	b := model.NewSampleBuilder()
	reg.CollectAll(b) // must not propagate the panic
	if !rec.collected {
		t.Error("a panicking detector prevented later Collects")
	}

	s := b.Build()
	assessments := reg.AnalyzeAll(&s, nil)
	if len(assessments) != 2 {
		t.Fatalf("AnalyzeAll returned %d assessments, want 2", len(assessments))
	}
	if !rec.analyzed {
		t.Error("a panicking detector prevented later Analyzes")
	}

	// The panicking detector contributes a neutral score, not garbage.
	if assessments[0].Score.Domain != "panicky" {
		t.Errorf("first domain = %q, want panicky", assessments[0].Score.Domain)
	}
	if len(assessments[0].Events) != 0 {
		t.Errorf("panicking detector produced %d events", len(assessments[0].Events))
	}
}

func TestClampScore(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{-50, 0},
		{0, 0},
		{55, 55},
		{130, 100},
	}
	for _, tt := range tests {
		if got := clampScore(tt.in); got != tt.want {
			t.Errorf("clampScore(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDiskSpacePerMountState(t *testing.T) {
	t0 := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	d := NewDiskSpaceDetector()

	low := func(mount string) model.VolumeSpace {
		return model.VolumeSpace{Mount: mount, FreePercent: 3, FreeBytes: 2 << 30, TotalBytes: 100 << 30}
	}
	s := &model.Sample{Timestamp: t0, Volumes: []model.VolumeSpace{low("/"), low("/data")}}

	d.Analyze(s, nil) // debounce tick
	s2 := *s
	s2.Timestamp = t0.Add(3 * time.Second)
	a := d.Analyze(&s2, nil)

	if len(a.Events) != 2 {
		t.Fatalf("raised %d events, want one per low mount", len(a.Events))
	}
	types := map[string]bool{}
	for _, ev := range a.Events {
		types[ev.Type] = true
		if ev.Severity != model.SeverityCritical {
			t.Errorf("%s severity = %v, want critical below 5%%", ev.Type, ev.Severity)
		}
	}
	if !types["space.low:/"] || !types["space.low:/data"] {
		t.Errorf("event types = %v, want per-mount keys", types)
	}

	// An unmounted volume drops its debounce state.
	s3 := model.Sample{Timestamp: t0.Add(6 * time.Second), Volumes: []model.VolumeSpace{low("/")}}
	d.Analyze(&s3, nil)
	if len(d.mounts) != 1 {
		t.Errorf("tracking %d mounts after unmount, want 1", len(d.mounts))
	}
}
