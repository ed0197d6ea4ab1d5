package freeze

import (
	"fmt"

	"github.com/opsroot/healthmon/model"
)

const (
	starvedThreadCount  = 100
	starvedOwnCPUPct    = 5
	starvedHandleCount  = 5000
	contentionCtxSwitch = 30000
	pagingFaultsPerSec  = 100
	dpcTheftLowPct      = 5
	ownComputeLowPct    = 10
	ownComputeHighPct   = 30
)

// classifyContention distinguishes the ways a process can hang while the
// system around it is quiet. Rules are ordered; the first match wins, and
// every branch carries the numbers that triggered it.
func classifyContention(c *quickCtx) model.FreezeClassification {
	p := c.proc
	if p == nil {
		return c.verdict(model.CauseInternalBlocking,
			"blocked with no per-process metrics available",
			fmt.Sprintf("system CPU %.0f%%", c.sample.CPUPercent))
	}
	s := c.sample
	lowOwnCPU := p.CPUPercent < lowOwnCPUPct

	switch {
	case p.ThreadCount > starvedThreadCount && p.CPUPercent < starvedOwnCPUPct:
		return c.verdict(model.CauseThreadPoolStarved,
			"many threads exist but almost none are getting work done",
			fmt.Sprintf("%d threads", p.ThreadCount),
			fmt.Sprintf("own CPU %.1f%%", p.CPUPercent))

	case p.IOBytesPerSec > 0 && (s.DNSLatencyMs > 0 || s.NetBytesPerSec > 0) && lowOwnCPU:
		return c.verdict(model.CauseBlockedNetworkWait,
			"actively doing IO while idle on CPU, consistent with waiting on the network",
			fmt.Sprintf("IO %.0f B/s", p.IOBytesPerSec),
			fmt.Sprintf("DNS latency %.0fms", s.DNSLatencyMs),
			fmt.Sprintf("own CPU %.1f%%", p.CPUPercent))

	case p.HandleCount > starvedHandleCount && lowOwnCPU:
		return c.verdict(model.CauseHandleStarvation,
			"handle table is enormous and the process is idle, suggesting resource exhaustion",
			fmt.Sprintf("%d handles", p.HandleCount),
			fmt.Sprintf("own CPU %.1f%%", p.CPUPercent))

	case s.ContextSwitchesPerSec > contentionCtxSwitch && lowOwnCPU:
		return c.verdict(model.CauseLockContention,
			"system-wide context-switch rate points at threads fighting over locks",
			fmt.Sprintf("context switches %.0f/sec", s.ContextSwitchesPerSec),
			fmt.Sprintf("own CPU %.1f%%", p.CPUPercent))

	case p.PageFaultsPerSec > pagingFaultsPerSec && lowOwnCPU:
		return c.verdict(model.CausePagingWait,
			"faulting heavily while idle on CPU, waiting for pages from disk",
			fmt.Sprintf("page faults %.0f/sec", p.PageFaultsPerSec),
			fmt.Sprintf("own CPU %.1f%%", p.CPUPercent))

	case s.DPCPercent >= dpcTheftLowPct && s.DPCPercent <= quickDPCPct && lowOwnCPU:
		return c.verdict(model.CauseDPCTheft,
			"moderate deferred interrupt load is shaving the process's CPU slices",
			fmt.Sprintf("DPC time %.1f%%", s.DPCPercent),
			fmt.Sprintf("own CPU %.1f%%", p.CPUPercent))

	case s.CoreCount > 0 && s.ProcessorQueueLength > float64(s.CoreCount) && lowOwnCPU:
		return c.verdict(model.CauseSchedulerCongested,
			"run queue exceeds core count even though total CPU looks modest",
			fmt.Sprintf("run queue %.0f", s.ProcessorQueueLength),
			fmt.Sprintf("%d cores", s.CoreCount),
			fmt.Sprintf("own CPU %.1f%%", p.CPUPercent))

	case p.CPUPercent >= ownComputeLowPct && p.CPUPercent <= ownComputeHighPct:
		return c.verdict(model.CauseOwnComputation,
			"burning its own CPU with the UI thread unserviced, blocked by its own computation",
			fmt.Sprintf("own CPU %.1f%%", p.CPUPercent))

	default:
		return c.verdict(model.CauseInternalBlocking,
			"idle on CPU with no external pressure: blocked internally, likely on a synchronization object",
			fmt.Sprintf("own CPU %.1f%%", p.CPUPercent),
			fmt.Sprintf("system CPU %.0f%%", s.CPUPercent))
	}
}
