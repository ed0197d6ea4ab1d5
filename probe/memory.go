package probe

import (
	"time"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/opsroot/healthmon/model"
)

// MemoryProbe reads memory usage, commit charge, kernel pool sizes, and
// paging rates. Fault/page-in counters are cumulative, so rates need a
// previous observation and stay zero on the first tick.
type MemoryProbe struct {
	prevFaults uint64
	prevPgIn   uint64
	prevAt     time.Time
}

func NewMemoryProbe() *MemoryProbe { return &MemoryProbe{} }

func (p *MemoryProbe) Collect(b *model.SampleBuilder) {
	if vm, err := mem.VirtualMemory(); err == nil {
		b.MemoryUsedPercent = vm.UsedPercent
		b.CommittedBytes = vm.CommittedAS
		b.CommitLimitBytes = vm.CommitLimit
		b.PagedPoolBytes = vm.Sreclaimable
		b.NonpagedPoolBytes = vm.Sunreclaim
	}

	sw, err := mem.SwapMemory()
	if err != nil {
		return
	}
	now := time.Now()
	if !p.prevAt.IsZero() {
		elapsed := now.Sub(p.prevAt).Seconds()
		if elapsed > 0 {
			if sw.PgFault >= p.prevFaults {
				b.PageFaultsPerSec = float64(sw.PgFault-p.prevFaults) / elapsed
			}
			if sw.PgIn >= p.prevPgIn {
				b.PagesInputPerSec = float64(sw.PgIn-p.prevPgIn) / elapsed
			}
		}
	}
	p.prevFaults = sw.PgFault
	p.prevPgIn = sw.PgIn
	p.prevAt = now
}
