package probe

import (
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"

	"github.com/opsroot/healthmon/model"
)

// CPUProbe reads scheduler-level signals: total CPU busy, interrupt and
// deferred-work shares, context-switch rate, and run-queue depth. Rates are
// computed against the previous call, so the first tick reports zeros.
type CPUProbe struct {
	prevTimes cpu.TimesStat
	prevCtxt  int64
	prevAt    time.Time
}

func NewCPUProbe() *CPUProbe { return &CPUProbe{} }

// Collect fills the builder's CPU and scheduler fields. Best-effort: any
// unreadable signal keeps its zero default.
func (p *CPUProbe) Collect(b *model.SampleBuilder) {
	now := time.Now()

	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		b.CPUPercent = pcts[0]
	}
	if n, err := cpu.Counts(true); err == nil {
		b.CoreCount = n
	}

	if times, err := cpu.Times(false); err == nil && len(times) > 0 {
		t := times[0]
		if !p.prevAt.IsZero() {
			total := totalDelta(p.prevTimes, t)
			if total > 0 {
				// Softirq stands in for deferred procedure calls on Linux.
				b.DPCPercent = (t.Softirq - p.prevTimes.Softirq) / total * 100
				b.InterruptPercent = (t.Irq - p.prevTimes.Irq) / total * 100
			}
		}
		p.prevTimes = t
	}

	if misc, err := load.Misc(); err == nil {
		b.ProcessorQueueLength = float64(misc.ProcsRunning)
		if p.prevCtxt > 0 && now.After(p.prevAt) {
			elapsed := now.Sub(p.prevAt).Seconds()
			if elapsed > 0 {
				b.ContextSwitchesPerSec = float64(int64(misc.Ctxt)-p.prevCtxt) / elapsed
			}
		}
		p.prevCtxt = int64(misc.Ctxt)
	}

	p.prevAt = now
}

func totalDelta(prev, curr cpu.TimesStat) float64 {
	return (curr.User - prev.User) + (curr.System - prev.System) +
		(curr.Idle - prev.Idle) + (curr.Nice - prev.Nice) +
		(curr.Iowait - prev.Iowait) + (curr.Irq - prev.Irq) +
		(curr.Softirq - prev.Softirq) + (curr.Steal - prev.Steal)
}
