package freeze

import (
	"fmt"
	"strings"

	"github.com/opsroot/healthmon/model"
)

const (
	dominantShare       = 0.60
	deepPageInStorm     = 500
	deepCtxSwitchStorm  = 60000
	deepQuietCPUPct     = 30
	deepPressureCritIdx = 85
	deepManyThreads     = 100
)

// driverFragments are module-name fragments that implicate a driver when
// they show up in a dump's faulting module, flagged modules, or stack.
var driverFragments = []string{
	"nvlddmkm", "nvidia", "nouveau", "amdgpu", "atikmdag", "radeon",
	"i915", "igdkmd", "dxgkrnl", "dxgmms",
	"storport", "stornvme", "nvme", "megaraid", "mpt3sas", "iastor",
	"ndis", "netio", "tcpip", "e1000", "ixgbe", "rt640", "iwlwifi",
}

// evidence summarizes the live thread state the deep rules fire on.
type evidence struct {
	proc    *model.HangingProcess
	sample  *model.Sample
	total   int
	running int
	waiting int
	reasons map[model.WaitReason]int
	dump    *model.DumpSummary
}

// dominant returns the wait reason covering at least 60% of waiting
// threads, or WaitNone when no reason dominates.
func (e *evidence) dominant() model.WaitReason {
	if e.waiting == 0 {
		return model.WaitNone
	}
	for reason, count := range e.reasons {
		if float64(count) >= dominantShare*float64(e.waiting) {
			return reason
		}
	}
	return model.WaitNone
}

func (e *evidence) lowProcCPU() bool {
	return e.proc == nil || e.proc.CPUPercent < lowOwnCPUPct
}

// deepRule is one (predicate, producer) pair of the investigator's
// fixed-priority chain.
type deepRule struct {
	applies func(*evidence) bool
	produce func(*evidence) model.DeepFreezeDiagnostic
}

var deepRules = []deepRule{
	{
		applies: func(e *evidence) bool {
			return e.total > 0 && e.running == 0 && e.reasons[model.WaitSuspended] == e.total
		},
		produce: func(e *evidence) model.DeepFreezeDiagnostic {
			return diag(model.DeepAllThreadsSuspended, 0.95,
				"all %d threads are suspended; the process was frozen externally (job control or a debugger)", e.total)
		},
	},
	{
		applies: func(e *evidence) bool { _, ok := dumpDriverMatch(e.dump); return ok },
		produce: func(e *evidence) model.DeepFreezeDiagnostic {
			match, _ := dumpDriverMatch(e.dump)
			conf := 0.85
			if _, ok := matchFragment(e.dump.FaultingModule); ok {
				conf = 0.9
			}
			return diag(model.DeepDriverModule, conf,
				"dump triage implicates driver module %q", match)
		},
	},
	{
		applies: func(e *evidence) bool {
			return e.dominant() == model.WaitSynchronization && e.running > 0
		},
		produce: func(e *evidence) model.DeepFreezeDiagnostic {
			return diag(model.DeepLockContention, 0.75,
				"%d of %d waiting threads are parked on synchronization objects while %d still run: lock contention",
				e.reasons[model.WaitSynchronization], e.waiting, e.running)
		},
	},
	{
		applies: func(e *evidence) bool {
			return e.dominant() == model.WaitSynchronization && e.running == 0 && e.lowProcCPU()
		},
		produce: func(e *evidence) model.DeepFreezeDiagnostic {
			return diag(model.DeepDeadlock, 0.8,
				"every thread is waiting on a synchronization object and none are running: probable deadlock")
		},
	},
	{
		applies: func(e *evidence) bool {
			return e.reasons[model.WaitPaging] > 0 || e.sample.PagesInputPerSec > deepPageInStorm
		},
		produce: func(e *evidence) model.DeepFreezeDiagnostic {
			return diag(model.DeepPagingStorm, 0.8,
				"threads are blocked on page-ins (%d paging waits, %.0f pages/sec system-wide)",
				e.reasons[model.WaitPaging], e.sample.PagesInputPerSec)
		},
	},
	{
		applies: func(e *evidence) bool {
			return e.sample.ContextSwitchesPerSec > deepCtxSwitchStorm && e.sample.CPUPercent < deepQuietCPUPct
		},
		produce: func(e *evidence) model.DeepFreezeDiagnostic {
			return diag(model.DeepSchedulerThrash, 0.7,
				"context switches at %.0f/sec with CPU only %.0f%%: the scheduler is thrashing, not working",
				e.sample.ContextSwitchesPerSec, e.sample.CPUPercent)
		},
	},
	{
		applies: func(e *evidence) bool {
			return e.reasons[model.WaitMemory] > 0 || e.sample.MemoryPressureIndex > deepPressureCritIdx
		},
		produce: func(e *evidence) model.DeepFreezeDiagnostic {
			return diag(model.DeepMemoryPressure, 0.7,
				"memory waits present with pressure index %.0f", e.sample.MemoryPressureIndex)
		},
	},
	{
		applies: func(e *evidence) bool {
			return e.dominant() == model.WaitExternalRequest && e.running == 0
		},
		produce: func(e *evidence) model.DeepFreezeDiagnostic {
			return diag(model.DeepExternalStall, 0.65,
				"%d of %d waiting threads sit in external-request waits and nothing runs: a dependency stopped answering",
				e.reasons[model.WaitExternalRequest], e.waiting)
		},
	},
	{
		applies: func(e *evidence) bool {
			return e.total > deepManyThreads && e.running <= 1
		},
		produce: func(e *evidence) model.DeepFreezeDiagnostic {
			return diag(model.DeepThreadPoolStarved, 0.6,
				"%d threads with at most one running: the pool is starved", e.total)
		},
	},
}

// Investigate applies the deep rule chain to live thread state, the current
// sample, and optional dump triage output. It never fails: with no rule
// matched it returns an explicit low-confidence unknown.
func Investigate(proc *model.HangingProcess, s *model.Sample, threads []model.ThreadState, dump *model.DumpSummary) model.DeepFreezeDiagnostic {
	ev := &evidence{
		proc:    proc,
		sample:  s,
		reasons: make(map[model.WaitReason]int),
		dump:    dump,
	}
	for _, t := range threads {
		ev.total++
		if t.Running {
			ev.running++
		} else {
			ev.waiting++
			ev.reasons[t.Reason]++
		}
	}

	out := diag(model.DeepUnknown, 0.3,
		"thread state (%d running, %d waiting) matches no known hang signature", ev.running, ev.waiting)
	for _, rule := range deepRules {
		if rule.applies(ev) {
			out = rule.produce(ev)
			break
		}
	}
	if proc != nil {
		out.ProcessName = proc.Name
	}
	return out
}

func diag(cat model.DeepFreezeCategory, conf float64, format string, args ...interface{}) model.DeepFreezeDiagnostic {
	return model.DeepFreezeDiagnostic{
		Category:    cat,
		Description: fmt.Sprintf(format, args...),
		Confidence:  conf,
	}
}

// dumpDriverMatch scans a dump summary for known driver-module fragments.
// A nil or empty summary never matches.
func dumpDriverMatch(d *model.DumpSummary) (string, bool) {
	if d == nil {
		return "", false
	}
	if m, ok := matchFragment(d.FaultingModule); ok {
		return m, true
	}
	for _, mod := range d.FlaggedModules {
		if m, ok := matchFragment(mod); ok {
			return m, true
		}
	}
	for _, frame := range d.StackFrames {
		if m, ok := matchFragment(frame); ok {
			return m, true
		}
	}
	return "", false
}

func matchFragment(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	lower := strings.ToLower(s)
	for _, frag := range driverFragments {
		if strings.Contains(lower, frag) {
			return s, true
		}
	}
	return "", false
}
