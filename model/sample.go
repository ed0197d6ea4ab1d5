package model

import "time"

// ProcessInfo is one entry in a top-N consumer list.
type ProcessInfo struct {
	PID   int32   `json:"pid"`
	Name  string  `json:"name"`
	Value float64 `json:"value"` // meaning depends on the list (%, bytes, count, rate)
}

// HangingProcess describes a process currently flagged as unresponsive,
// together with its own resource signals used by the lock-contention
// sub-classifier.
type HangingProcess struct {
	PID              int32   `json:"pid"`
	Name             string  `json:"name"`
	ThreadCount      int     `json:"thread_count"`
	HandleCount      int     `json:"handle_count"`
	CPUPercent       float64 `json:"cpu_percent"`      // this process only
	IOBytesPerSec    float64 `json:"io_bytes_per_sec"` // read+write
	PageFaultsPerSec float64 `json:"page_faults_per_sec"`
}

// DiskInstance holds per-device latency and queue signals.
type DiskInstance struct {
	Name           string  `json:"name"`
	ReadLatencyMs  float64 `json:"read_latency_ms"`
	WriteLatencyMs float64 `json:"write_latency_ms"`
	QueueLength    float64 `json:"queue_length"`
}

// VolumeSpace holds free-space state for one mounted volume.
type VolumeSpace struct {
	Mount       string  `json:"mount"`
	TotalBytes  uint64  `json:"total_bytes"`
	FreeBytes   uint64  `json:"free_bytes"`
	FreePercent float64 `json:"free_percent"`
}

// Sample is the immutable snapshot of all observed signals for one tick.
// Built once per tick via SampleBuilder.Build and never mutated afterwards.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`

	// CPU / scheduler
	CPUPercent            float64 `json:"cpu_percent"`
	DPCPercent            float64 `json:"dpc_percent"`
	InterruptPercent      float64 `json:"interrupt_percent"`
	ContextSwitchesPerSec float64 `json:"context_switches_per_sec"`
	ProcessorQueueLength  float64 `json:"processor_queue_length"`
	CoreCount             int     `json:"core_count"`

	// Memory
	MemoryUsedPercent float64 `json:"memory_used_percent"`
	CommittedBytes    uint64  `json:"committed_bytes"`
	CommitLimitBytes  uint64  `json:"commit_limit_bytes"`
	PagedPoolBytes    uint64  `json:"paged_pool_bytes"`
	NonpagedPoolBytes uint64  `json:"nonpaged_pool_bytes"`
	PageFaultsPerSec  float64 `json:"page_faults_per_sec"`
	PagesInputPerSec  float64 `json:"pages_input_per_sec"`

	// Disk
	DiskQueueLength    float64 `json:"disk_queue_length"`
	DiskReadLatencyMs  float64 `json:"disk_read_latency_ms"`
	DiskWriteLatencyMs float64 `json:"disk_write_latency_ms"`
	StorageErrorCount  int     `json:"storage_error_count"` // errors observed this session

	// GPU
	GPUUtilPercent       float64 `json:"gpu_util_percent"`
	GPUMemoryUsedPercent float64 `json:"gpu_memory_used_percent"`

	// Network
	DNSLatencyMs   float64 `json:"dns_latency_ms"`
	NetBytesPerSec float64 `json:"net_bytes_per_sec"`

	// Platform
	PowerPlan           string  `json:"power_plan,omitempty"`
	OnACPower           bool    `json:"on_ac_power"`
	StartupProgramCount int     `json:"startup_program_count"`
	BootSeconds         float64 `json:"boot_seconds"`

	// Composite indices, written back by the engine before Analyze.
	MemoryPressureIndex float64 `json:"memory_pressure_index"`
	SystemLatencyScore  float64 `json:"system_latency_score"`

	// Top-N lists and heavy payloads. Stripped before history retention.
	TopCPUProcs    []ProcessInfo    `json:"top_cpu_procs,omitempty"`
	TopMemoryProcs []ProcessInfo    `json:"top_memory_procs,omitempty"`
	TopIOProcs     []ProcessInfo    `json:"top_io_procs,omitempty"`
	TopFaultProcs  []ProcessInfo    `json:"top_fault_procs,omitempty"`
	TopGDIProcs    []ProcessInfo    `json:"top_gdi_procs,omitempty"`
	Disks          []DiskInstance   `json:"disks,omitempty"`
	Volumes        []VolumeSpace    `json:"volumes,omitempty"`
	HangingProcs   []HangingProcess `json:"hanging_procs,omitempty"`

	Freeze     *FreezeClassification `json:"freeze,omitempty"`
	DeepFreeze *DeepFreezeDiagnostic `json:"deep_freeze,omitempty"`
}

// MaxDiskLatencyMs returns the worse of the read and write latencies.
func (s *Sample) MaxDiskLatencyMs() float64 {
	if s.DiskReadLatencyMs > s.DiskWriteLatencyMs {
		return s.DiskReadLatencyMs
	}
	return s.DiskWriteLatencyMs
}

// TrimmedSample is the history-safe form of a Sample: scalar signals only,
// with process lists and diagnostic payloads stripped. Trim is the only
// sanctioned way to place a sample into the history window.
type TrimmedSample struct {
	Timestamp time.Time

	CPUPercent            float64
	DPCPercent            float64
	InterruptPercent      float64
	ContextSwitchesPerSec float64
	ProcessorQueueLength  float64

	MemoryUsedPercent float64
	CommittedBytes    uint64
	PageFaultsPerSec  float64
	PagesInputPerSec  float64

	DiskQueueLength    float64
	DiskReadLatencyMs  float64
	DiskWriteLatencyMs float64
	StorageErrorCount  int

	GPUUtilPercent       float64
	GPUMemoryUsedPercent float64
	DNSLatencyMs         float64

	MemoryPressureIndex float64
	SystemLatencyScore  float64

	HangingCount int
}

// Trim downgrades the sample to its history-safe form.
func (s *Sample) Trim() TrimmedSample {
	return TrimmedSample{
		Timestamp:             s.Timestamp,
		CPUPercent:            s.CPUPercent,
		DPCPercent:            s.DPCPercent,
		InterruptPercent:      s.InterruptPercent,
		ContextSwitchesPerSec: s.ContextSwitchesPerSec,
		ProcessorQueueLength:  s.ProcessorQueueLength,
		MemoryUsedPercent:     s.MemoryUsedPercent,
		CommittedBytes:        s.CommittedBytes,
		PageFaultsPerSec:      s.PageFaultsPerSec,
		PagesInputPerSec:      s.PagesInputPerSec,
		DiskQueueLength:       s.DiskQueueLength,
		DiskReadLatencyMs:     s.DiskReadLatencyMs,
		DiskWriteLatencyMs:    s.DiskWriteLatencyMs,
		StorageErrorCount:     s.StorageErrorCount,
		GPUUtilPercent:        s.GPUUtilPercent,
		GPUMemoryUsedPercent:  s.GPUMemoryUsedPercent,
		DNSLatencyMs:          s.DNSLatencyMs,
		MemoryPressureIndex:   s.MemoryPressureIndex,
		SystemLatencyScore:    s.SystemLatencyScore,
		HangingCount:          len(s.HangingProcs),
	}
}

// SampleBuilder is the mutable accumulator every collector writes into
// during one tick. Fields default to zero/empty, so a collector that
// cannot read a signal is indistinguishable from "no data" downstream.
type SampleBuilder struct {
	Sample
}

// NewSampleBuilder returns a builder stamped with the current time.
func NewSampleBuilder() *SampleBuilder {
	return &SampleBuilder{Sample: Sample{Timestamp: time.Now()}}
}

// Build freezes the builder into an immutable Sample.
func (b *SampleBuilder) Build() Sample {
	return b.Sample
}
