package probe

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/opsroot/healthmon/model"
)

// DiskProbe reads per-device latency and queue depth plus per-volume free
// space. Latency is the mean service time over the interval, derived from
// cumulative IO time and operation counters.
type DiskProbe struct {
	prev   map[string]disk.IOCountersStat
	prevAt time.Time

	// The sysfs error counters are cumulative since boot; only errors
	// occurring during this session count.
	errBase    int
	errBaseSet bool
}

func NewDiskProbe() *DiskProbe { return &DiskProbe{} }

func (p *DiskProbe) Collect(b *model.SampleBuilder) {
	counters, err := disk.IOCounters()
	if err == nil {
		var maxQueue float64
		var worstRead, worstWrite float64
		for name, c := range counters {
			inst := model.DiskInstance{Name: name, QueueLength: float64(c.IopsInProgress)}
			if prev, ok := p.prev[name]; ok {
				if dr := c.ReadCount - prev.ReadCount; dr > 0 {
					inst.ReadLatencyMs = float64(c.ReadTime-prev.ReadTime) / float64(dr)
				}
				if dw := c.WriteCount - prev.WriteCount; dw > 0 {
					inst.WriteLatencyMs = float64(c.WriteTime-prev.WriteTime) / float64(dw)
				}
			}
			b.Disks = append(b.Disks, inst)
			if inst.QueueLength > maxQueue {
				maxQueue = inst.QueueLength
			}
			if inst.ReadLatencyMs > worstRead {
				worstRead = inst.ReadLatencyMs
			}
			if inst.WriteLatencyMs > worstWrite {
				worstWrite = inst.WriteLatencyMs
			}
		}
		b.DiskQueueLength = maxQueue
		b.DiskReadLatencyMs = worstRead
		b.DiskWriteLatencyMs = worstWrite
		p.prev = counters
		p.prevAt = time.Now()
	}

	b.StorageErrorCount = p.sessionErrorCount(readDeviceErrorCount())
}

// sessionErrorCount rebases the cumulative device error counter so the
// sample reports only errors seen since the probe started. A counter that
// shrinks (device removed, counter reset) re-baselines to zero.
func (p *DiskProbe) sessionErrorCount(total int) int {
	if !p.errBaseSet || total < p.errBase {
		p.errBase = total
		p.errBaseSet = true
	}
	return total - p.errBase
}

// VolumeProbe reads free-space state for real filesystems.
type VolumeProbe struct{}

func NewVolumeProbe() *VolumeProbe { return &VolumeProbe{} }

func (p *VolumeProbe) Collect(b *model.SampleBuilder) {
	parts, err := disk.Partitions(false)
	if err != nil {
		return
	}
	for _, part := range parts {
		usage, err := disk.Usage(part.Mountpoint)
		if err != nil || usage.Total == 0 {
			continue
		}
		b.Volumes = append(b.Volumes, model.VolumeSpace{
			Mount:       part.Mountpoint,
			TotalBytes:  usage.Total,
			FreeBytes:   usage.Free,
			FreePercent: 100 - usage.UsedPercent,
		})
	}
}

// readDeviceErrorCount sums per-device IO error counters exposed under
// /sys/block. Absent on most hardware; zero then.
func readDeviceErrorCount() int {
	entries, err := os.ReadDir("/sys/block")
	if err != nil {
		return 0
	}
	total := 0
	for _, e := range entries {
		raw, err := os.ReadFile(filepath.Join("/sys/block", e.Name(), "device", "ioerr_cnt"))
		if err != nil {
			continue
		}
		s := strings.TrimSpace(string(raw))
		n, err := strconv.ParseInt(strings.TrimPrefix(s, "0x"), 16, 64)
		if err != nil {
			continue
		}
		total += int(n)
	}
	return total
}
