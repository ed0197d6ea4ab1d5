// Package freeze holds the two-tier root-cause classifiers for hung
// processes: a cheap single-sample heuristic and a deeper investigation
// built on live thread state and dump triage.
package freeze

import (
	"fmt"

	"github.com/opsroot/healthmon/model"
)

const (
	quickDiskLatencyMs = 100
	quickDiskQueue     = 4
	quickGPUUtilPct    = 95
	quickDPCPct        = 15
	quickDNSMs         = 300
	quickCPUPct        = 80
	quickPressureIdx   = 70

	// Quiet-system gate before the lock-contention sub-classifier runs.
	quietCPUPct    = 30
	quietDiskQueue = 2
	quietLatencyMs = 50
	lowOwnCPUPct   = 10
)

// quickCtx carries everything a rule may inspect.
type quickCtx struct {
	name   string
	proc   *model.HangingProcess // nil when the process left the hang list
	sample *model.Sample
}

// quickRule is one (predicate, producer) pair. Rules are evaluated in
// order; the first match wins.
type quickRule struct {
	applies func(*quickCtx) bool
	produce func(*quickCtx) model.FreezeClassification
}

var quickRules = []quickRule{
	{
		applies: func(c *quickCtx) bool { return c.sample.StorageErrorCount > 0 },
		produce: func(c *quickCtx) model.FreezeClassification {
			return c.verdict(model.CauseStorageErrors,
				"storage hardware is reporting IO errors",
				fmt.Sprintf("storage error count %d", c.sample.StorageErrorCount))
		},
	},
	{
		applies: func(c *quickCtx) bool {
			return c.sample.MaxDiskLatencyMs() > quickDiskLatencyMs || c.sample.DiskQueueLength > quickDiskQueue
		},
		produce: func(c *quickCtx) model.FreezeClassification {
			return c.verdict(model.CauseDiskBound,
				"the process is stalled behind slow storage",
				fmt.Sprintf("disk latency %.0fms", c.sample.MaxDiskLatencyMs()),
				fmt.Sprintf("disk queue %.0f", c.sample.DiskQueueLength))
		},
	},
	{
		applies: func(c *quickCtx) bool { return c.sample.GPUUtilPercent > quickGPUUtilPct },
		produce: func(c *quickCtx) model.FreezeClassification {
			return c.verdict(model.CauseGPUSaturation,
				"the GPU is saturated and rendering cannot keep up",
				fmt.Sprintf("GPU utilization %.0f%%", c.sample.GPUUtilPercent))
		},
	},
	{
		applies: func(c *quickCtx) bool { return c.sample.DPCPercent > quickDPCPct },
		produce: func(c *quickCtx) model.FreezeClassification {
			return c.verdict(model.CauseDriverDPC,
				"a driver's deferred interrupt work is stealing CPU time",
				fmt.Sprintf("DPC time %.1f%%", c.sample.DPCPercent))
		},
	},
	{
		applies: func(c *quickCtx) bool { return c.sample.DNSLatencyMs > quickDNSMs },
		produce: func(c *quickCtx) model.FreezeClassification {
			return c.verdict(model.CauseNetworkLatency,
				"network name resolution is slow enough to stall UI threads",
				fmt.Sprintf("DNS latency %.0fms", c.sample.DNSLatencyMs))
		},
	},
	{
		applies: func(c *quickCtx) bool { return c.sample.CPUPercent > quickCPUPct },
		produce: func(c *quickCtx) model.FreezeClassification {
			return c.verdict(model.CauseCPUSaturation,
				"system-wide CPU saturation is starving the process",
				fmt.Sprintf("CPU %.0f%%", c.sample.CPUPercent))
		},
	},
	{
		applies: func(c *quickCtx) bool { return c.sample.MemoryPressureIndex > quickPressureIdx },
		produce: func(c *quickCtx) model.FreezeClassification {
			return c.verdict(model.CauseMemoryPressure,
				"memory pressure is forcing the process to wait on paging",
				fmt.Sprintf("memory pressure index %.0f", c.sample.MemoryPressureIndex))
		},
	},
	{
		// System is quiet: the cause is inside or around the process
		// itself. Delegate to the lock-contention sub-classifier.
		applies: func(c *quickCtx) bool {
			return c.sample.CPUPercent < quietCPUPct &&
				c.sample.DiskQueueLength < quietDiskQueue &&
				c.sample.MaxDiskLatencyMs() < quietLatencyMs
		},
		produce: classifyContention,
	},
}

// Classify assigns a probable cause to the named hanging process from the
// current sample alone. It never fails: when no rule matches it returns an
// explicit unknown classification.
func Classify(processName string, s *model.Sample) model.FreezeClassification {
	ctx := &quickCtx{name: processName, sample: s}
	for i := range s.HangingProcs {
		if s.HangingProcs[i].Name == processName {
			ctx.proc = &s.HangingProcs[i]
			break
		}
	}

	for _, rule := range quickRules {
		if rule.applies(ctx) {
			return rule.produce(ctx)
		}
	}
	return ctx.verdict(model.CauseUnknown,
		"no system-level signal explains the hang",
		fmt.Sprintf("CPU %.0f%%", s.CPUPercent),
		fmt.Sprintf("disk latency %.0fms", s.MaxDiskLatencyMs()))
}

func (c *quickCtx) verdict(cause model.FreezeCause, desc string, evidence ...string) model.FreezeClassification {
	return model.FreezeClassification{
		ProcessName: c.name,
		Cause:       cause,
		Description: fmt.Sprintf("%s appears frozen: %s", c.name, desc),
		Evidence:    evidence,
	}
}
