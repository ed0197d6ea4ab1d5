package engine

import "github.com/opsroot/healthmon/model"

// metricNames fixes the fold order so reports list metrics consistently.
var metricNames = []string{
	"cpu_percent",
	"dpc_percent",
	"interrupt_percent",
	"context_switches_per_sec",
	"processor_queue_length",
	"memory_used_percent",
	"committed_gb",
	"page_faults_per_sec",
	"pages_input_per_sec",
	"disk_queue_length",
	"disk_read_latency_ms",
	"disk_write_latency_ms",
	"storage_error_count",
	"gpu_util_percent",
	"gpu_memory_used_percent",
	"dns_latency_ms",
	"net_mb_per_sec",
	"memory_pressure_index",
	"system_latency_score",
	"hanging_process_count",
}

// statsBook folds every scalar of interest into a running accumulator each
// tick, giving O(1)-memory averages and peaks for the session report.
type statsBook struct {
	stats map[string]*model.RunningStat
}

func newStatsBook() *statsBook {
	b := &statsBook{stats: make(map[string]*model.RunningStat, len(metricNames))}
	for _, name := range metricNames {
		b.stats[name] = &model.RunningStat{}
	}
	return b
}

func (b *statsBook) Fold(s *model.Sample) {
	b.stats["cpu_percent"].Add(s.CPUPercent)
	b.stats["dpc_percent"].Add(s.DPCPercent)
	b.stats["interrupt_percent"].Add(s.InterruptPercent)
	b.stats["context_switches_per_sec"].Add(s.ContextSwitchesPerSec)
	b.stats["processor_queue_length"].Add(s.ProcessorQueueLength)
	b.stats["memory_used_percent"].Add(s.MemoryUsedPercent)
	b.stats["committed_gb"].Add(float64(s.CommittedBytes) / (1 << 30))
	b.stats["page_faults_per_sec"].Add(s.PageFaultsPerSec)
	b.stats["pages_input_per_sec"].Add(s.PagesInputPerSec)
	b.stats["disk_queue_length"].Add(s.DiskQueueLength)
	b.stats["disk_read_latency_ms"].Add(s.DiskReadLatencyMs)
	b.stats["disk_write_latency_ms"].Add(s.DiskWriteLatencyMs)
	b.stats["storage_error_count"].Add(float64(s.StorageErrorCount))
	b.stats["gpu_util_percent"].Add(s.GPUUtilPercent)
	b.stats["gpu_memory_used_percent"].Add(s.GPUMemoryUsedPercent)
	b.stats["dns_latency_ms"].Add(s.DNSLatencyMs)
	b.stats["net_mb_per_sec"].Add(s.NetBytesPerSec / (1 << 20))
	b.stats["memory_pressure_index"].Add(s.MemoryPressureIndex)
	b.stats["system_latency_score"].Add(s.SystemLatencyScore)
	b.stats["hanging_process_count"].Add(float64(len(s.HangingProcs)))
}

// Summaries returns per-metric avg/peak in the fixed order.
func (b *statsBook) Summaries() []model.MetricSummary {
	out := make([]model.MetricSummary, 0, len(metricNames))
	for _, name := range metricNames {
		rs := b.stats[name]
		out = append(out, model.MetricSummary{Name: name, Avg: rs.Avg(), Peak: rs.Max()})
	}
	return out
}
