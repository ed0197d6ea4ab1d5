package freeze

import (
	"testing"

	"github.com/opsroot/healthmon/model"
)

// quietSample returns a sample with the hanging process present and every
// system-level signal calm, so the quiet-system gate is reachable.
func quietSample(proc model.HangingProcess) *model.Sample {
	return &model.Sample{
		CPUPercent:   10,
		CoreCount:    8,
		HangingProcs: []model.HangingProcess{proc},
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Sample)
		want   model.FreezeCause
	}{
		{
			"storage errors beat everything",
			func(s *model.Sample) {
				s.StorageErrorCount = 2
				s.DiskReadLatencyMs = 500
				s.CPUPercent = 99
			},
			model.CauseStorageErrors,
		},
		{
			"disk latency beats CPU saturation",
			func(s *model.Sample) {
				s.DiskReadLatencyMs = 150
				s.CPUPercent = 96
			},
			model.CauseDiskBound,
		},
		{
			"deep disk queue alone is disk-bound",
			func(s *model.Sample) { s.DiskQueueLength = 6 },
			model.CauseDiskBound,
		},
		{
			"gpu saturation beats dpc",
			func(s *model.Sample) {
				s.GPUUtilPercent = 97
				s.DPCPercent = 20
			},
			model.CauseGPUSaturation,
		},
		{
			"dpc beats dns",
			func(s *model.Sample) {
				s.DPCPercent = 18
				s.DNSLatencyMs = 900
			},
			model.CauseDriverDPC,
		},
		{
			"dns beats cpu",
			func(s *model.Sample) {
				s.DNSLatencyMs = 400
				s.CPUPercent = 92
			},
			model.CauseNetworkLatency,
		},
		{
			"cpu beats memory pressure",
			func(s *model.Sample) {
				s.CPUPercent = 92
				s.MemoryPressureIndex = 80
			},
			model.CauseCPUSaturation,
		},
		{
			"memory pressure on its own",
			func(s *model.Sample) { s.MemoryPressureIndex = 80 },
			model.CauseMemoryPressure,
		},
		{
			"busy system outside the quiet gate is unknown",
			func(s *model.Sample) { s.CPUPercent = 55 },
			model.CauseUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := quietSample(model.HangingProcess{PID: 1, Name: "app"})
			tt.mutate(s)
			got := Classify("app", s)
			if got.Cause != tt.want {
				t.Errorf("Classify() cause = %q, want %q", got.Cause, tt.want)
			}
			if len(got.Evidence) == 0 {
				t.Error("classification carries no evidence")
			}
			if got.ProcessName != "app" {
				t.Errorf("ProcessName = %q, want %q", got.ProcessName, "app")
			}
		})
	}
}

func TestClassifyQuietSystemSubRules(t *testing.T) {
	tests := []struct {
		name   string
		proc   model.HangingProcess
		mutate func(*model.Sample)
		want   model.FreezeCause
	}{
		{
			"thread pool starvation",
			model.HangingProcess{Name: "app", ThreadCount: 150, CPUPercent: 1},
			nil,
			model.CauseThreadPoolStarved,
		},
		{
			"blocked network wait",
			model.HangingProcess{Name: "app", IOBytesPerSec: 4096, CPUPercent: 2},
			func(s *model.Sample) { s.DNSLatencyMs = 40 },
			model.CauseBlockedNetworkWait,
		},
		{
			"handle starvation",
			model.HangingProcess{Name: "app", HandleCount: 9000, CPUPercent: 1},
			nil,
			model.CauseHandleStarvation,
		},
		{
			"lock contention from context-switch storm",
			model.HangingProcess{Name: "app", CPUPercent: 2},
			func(s *model.Sample) { s.ContextSwitchesPerSec = 45000 },
			model.CauseLockContention,
		},
		{
			"paging wait",
			model.HangingProcess{Name: "app", PageFaultsPerSec: 500, CPUPercent: 2},
			nil,
			model.CausePagingWait,
		},
		{
			"dpc theft in the moderate band",
			model.HangingProcess{Name: "app", CPUPercent: 2},
			func(s *model.Sample) { s.DPCPercent = 8 },
			model.CauseDPCTheft,
		},
		{
			"scheduler congestion",
			model.HangingProcess{Name: "app", CPUPercent: 2},
			func(s *model.Sample) { s.ProcessorQueueLength = 12 },
			model.CauseSchedulerCongested,
		},
		{
			"own computation",
			model.HangingProcess{Name: "app", CPUPercent: 22},
			nil,
			model.CauseOwnComputation,
		},
		{
			"idle with nothing else points internal",
			model.HangingProcess{Name: "app", CPUPercent: 1},
			nil,
			model.CauseInternalBlocking,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := quietSample(tt.proc)
			if tt.mutate != nil {
				tt.mutate(s)
			}
			got := Classify("app", s)
			if got.Cause != tt.want {
				t.Errorf("Classify() cause = %q, want %q", got.Cause, tt.want)
			}
			if len(got.Evidence) == 0 {
				t.Error("classification carries no evidence")
			}
		})
	}
}

func TestClassifyProcessMissingFromHangList(t *testing.T) {
	s := quietSample(model.HangingProcess{Name: "other"})
	got := Classify("ghost", s)
	if got.Cause != model.CauseInternalBlocking {
		t.Errorf("cause = %q, want internal-blocking fallback", got.Cause)
	}
	if got.ProcessName != "ghost" {
		t.Errorf("ProcessName = %q, want %q", got.ProcessName, "ghost")
	}
}
