package freeze

import (
	"testing"

	"github.com/opsroot/healthmon/model"
)

func threadsOf(running int, waits map[model.WaitReason]int) []model.ThreadState {
	var out []model.ThreadState
	tid := 1
	for i := 0; i < running; i++ {
		out = append(out, model.ThreadState{TID: tid, Running: true})
		tid++
	}
	for reason, count := range waits {
		for i := 0; i < count; i++ {
			out = append(out, model.ThreadState{TID: tid, Reason: reason})
			tid++
		}
	}
	return out
}

func TestInvestigateCategories(t *testing.T) {
	idleProc := &model.HangingProcess{PID: 9, Name: "app", CPUPercent: 1}

	tests := []struct {
		name     string
		proc     *model.HangingProcess
		sample   model.Sample
		threads  []model.ThreadState
		dump     *model.DumpSummary
		want     model.DeepFreezeCategory
		wantConf float64
	}{
		{
			"all threads suspended",
			idleProc,
			model.Sample{},
			threadsOf(0, map[model.WaitReason]int{model.WaitSuspended: 6}),
			nil,
			model.DeepAllThreadsSuspended, 0.95,
		},
		{
			"dump faulting module implicates a driver",
			idleProc,
			model.Sample{},
			threadsOf(1, map[model.WaitReason]int{model.WaitOther: 3}),
			&model.DumpSummary{FaultingModule: "nvlddmkm.sys"},
			model.DeepDriverModule, 0.9,
		},
		{
			"driver only in stack frames gets lower confidence",
			idleProc,
			model.Sample{},
			threadsOf(1, map[model.WaitReason]int{model.WaitOther: 3}),
			&model.DumpSummary{StackFrames: []string{"schedule", "storport_wait"}},
			model.DeepDriverModule, 0.85,
		},
		{
			"lock contention while some threads run",
			idleProc,
			model.Sample{},
			threadsOf(2, map[model.WaitReason]int{model.WaitSynchronization: 8}),
			nil,
			model.DeepLockContention, 0.75,
		},
		{
			"deadlock when nothing runs",
			idleProc,
			model.Sample{},
			threadsOf(0, map[model.WaitReason]int{model.WaitSynchronization: 8}),
			nil,
			model.DeepDeadlock, 0.8,
		},
		{
			"paging storm from wait reasons",
			idleProc,
			model.Sample{},
			threadsOf(1, map[model.WaitReason]int{model.WaitPaging: 2, model.WaitOther: 3}),
			nil,
			model.DeepPagingStorm, 0.8,
		},
		{
			"paging storm from system page-in rate alone",
			idleProc,
			model.Sample{PagesInputPerSec: 900},
			threadsOf(1, map[model.WaitReason]int{model.WaitOther: 2}),
			nil,
			model.DeepPagingStorm, 0.8,
		},
		{
			"scheduler thrash",
			idleProc,
			model.Sample{ContextSwitchesPerSec: 80000, CPUPercent: 12},
			threadsOf(1, map[model.WaitReason]int{model.WaitOther: 2}),
			nil,
			model.DeepSchedulerThrash, 0.7,
		},
		{
			"memory pressure",
			idleProc,
			model.Sample{MemoryPressureIndex: 92},
			threadsOf(1, map[model.WaitReason]int{model.WaitOther: 2}),
			nil,
			model.DeepMemoryPressure, 0.7,
		},
		{
			"external dependency stall",
			idleProc,
			model.Sample{},
			threadsOf(0, map[model.WaitReason]int{model.WaitExternalRequest: 7, model.WaitOther: 1}),
			nil,
			model.DeepExternalStall, 0.65,
		},
		{
			"thread pool starved",
			idleProc,
			model.Sample{},
			threadsOf(1, map[model.WaitReason]int{model.WaitOther: 60, model.WaitIO: 60}),
			nil,
			model.DeepThreadPoolStarved, 0.6,
		},
		{
			"nothing matches",
			idleProc,
			model.Sample{},
			threadsOf(3, map[model.WaitReason]int{model.WaitOther: 2}),
			nil,
			model.DeepUnknown, 0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Investigate(tt.proc, &tt.sample, tt.threads, tt.dump)
			if got.Category != tt.want {
				t.Errorf("Investigate() category = %v, want %v", got.Category, tt.want)
			}
			if got.Confidence != tt.wantConf {
				t.Errorf("Investigate() confidence = %v, want %v", got.Confidence, tt.wantConf)
			}
			if got.Description == "" {
				t.Error("diagnostic has no description")
			}
			if got.ProcessName != tt.proc.Name {
				t.Errorf("ProcessName = %q, want %q", got.ProcessName, tt.proc.Name)
			}
		})
	}
}

func TestDominantRequiresSixtyPercent(t *testing.T) {
	// 5 of 10 waiting on synchronization is below the 60% bar, so the
	// lock-contention rule must not fire.
	threads := threadsOf(2, map[model.WaitReason]int{
		model.WaitSynchronization: 5,
		model.WaitOther:           5,
	})
	got := Investigate(nil, &model.Sample{}, threads, nil)
	if got.Category == model.DeepLockContention {
		t.Errorf("lock contention fired with a 50%% share, want dominance at 60%%")
	}

	// 6 of 10 clears the bar.
	threads = threadsOf(2, map[model.WaitReason]int{
		model.WaitSynchronization: 6,
		model.WaitOther:           4,
	})
	got = Investigate(nil, &model.Sample{}, threads, nil)
	if got.Category != model.DeepLockContention {
		t.Errorf("category = %v, want lock contention at exactly 60%%", got.Category)
	}
}

func TestInvestigateNoThreads(t *testing.T) {
	got := Investigate(nil, &model.Sample{}, nil, nil)
	if got.Category != model.DeepUnknown {
		t.Errorf("category = %v, want unknown with no thread data", got.Category)
	}
	if got.Confidence > 0.3 {
		t.Errorf("confidence = %v, want low with no thread data", got.Confidence)
	}
}
