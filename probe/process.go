package probe

import (
	"sort"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/opsroot/healthmon/model"
)

const topN = 5

// procCounters holds the previous cumulative counters for one process.
type procCounters struct {
	ioBytes uint64
	faults  uint64
	seenAt  time.Time
}

// ProcessProbe builds the top-N consumer lists and the hanging-process
// list. A process is flagged as hanging when it has sat in uninterruptible
// sleep or a stopped state since the previous tick as well, the closest
// procfs analog to a "not responding" verdict.
type ProcessProbe struct {
	prev      map[int32]procCounters
	stuckLast map[int32]bool
}

func NewProcessProbe() *ProcessProbe {
	return &ProcessProbe{prev: make(map[int32]procCounters), stuckLast: make(map[int32]bool)}
}

func (p *ProcessProbe) Collect(b *model.SampleBuilder) {
	procs, err := process.Processes()
	if err != nil {
		return
	}

	now := time.Now()
	next := make(map[int32]procCounters, len(procs))
	stuckNow := make(map[int32]bool)

	var byCPU, byMem, byIO, byFault []model.ProcessInfo

	for _, proc := range procs {
		name, err := proc.Name()
		if err != nil || name == "" {
			continue
		}

		cpuPct, _ := proc.CPUPercent()
		if cpuPct > 0 {
			byCPU = append(byCPU, model.ProcessInfo{PID: proc.Pid, Name: name, Value: cpuPct})
		}
		if mi, err := proc.MemoryInfo(); err == nil && mi != nil && mi.RSS > 0 {
			byMem = append(byMem, model.ProcessInfo{PID: proc.Pid, Name: name, Value: float64(mi.RSS)})
		}

		counters := procCounters{seenAt: now}
		if io, err := proc.IOCounters(); err == nil && io != nil {
			counters.ioBytes = io.ReadBytes + io.WriteBytes
		}
		if pf, err := proc.PageFaults(); err == nil && pf != nil {
			counters.faults = pf.MajorFaults + pf.MinorFaults
		}

		var ioRate, faultRate float64
		if prev, ok := p.prev[proc.Pid]; ok {
			elapsed := now.Sub(prev.seenAt).Seconds()
			if elapsed > 0 {
				if counters.ioBytes >= prev.ioBytes {
					ioRate = float64(counters.ioBytes-prev.ioBytes) / elapsed
				}
				if counters.faults >= prev.faults {
					faultRate = float64(counters.faults-prev.faults) / elapsed
				}
			}
		}
		next[proc.Pid] = counters

		if ioRate > 0 {
			byIO = append(byIO, model.ProcessInfo{PID: proc.Pid, Name: name, Value: ioRate})
		}
		if faultRate > 0 {
			byFault = append(byFault, model.ProcessInfo{PID: proc.Pid, Name: name, Value: faultRate})
		}

		if statuses, err := proc.Status(); err == nil && isStuckStatus(statuses) {
			stuckNow[proc.Pid] = true
			if p.stuckLast[proc.Pid] {
				hp := model.HangingProcess{
					PID:              proc.Pid,
					Name:             name,
					CPUPercent:       cpuPct,
					IOBytesPerSec:    ioRate,
					PageFaultsPerSec: faultRate,
				}
				if nt, err := proc.NumThreads(); err == nil {
					hp.ThreadCount = int(nt)
				}
				if fds, err := proc.NumFDs(); err == nil {
					hp.HandleCount = int(fds)
				}
				b.HangingProcs = append(b.HangingProcs, hp)
			}
		}
	}

	b.TopCPUProcs = topValues(byCPU)
	b.TopMemoryProcs = topValues(byMem)
	b.TopIOProcs = topValues(byIO)
	b.TopFaultProcs = topValues(byFault)
	// GDI object counts are a Windows-only signal; the list stays empty
	// elsewhere, which downstream reads as "no data".

	p.prev = next
	p.stuckLast = stuckNow
}

func isStuckStatus(statuses []string) bool {
	for _, s := range statuses {
		if s == process.Blocked || s == process.Stop {
			return true
		}
	}
	return false
}

func topValues(list []model.ProcessInfo) []model.ProcessInfo {
	sort.Slice(list, func(i, j int) bool { return list[i].Value > list[j].Value })
	if len(list) > topN {
		list = list[:topN]
	}
	return list
}
