package model

// FreezeCause is the quick classifier's cause label.
type FreezeCause string

const (
	CauseStorageErrors      FreezeCause = "storage-errors"
	CauseDiskBound          FreezeCause = "disk-bound"
	CauseGPUSaturation      FreezeCause = "gpu-saturation"
	CauseDriverDPC          FreezeCause = "driver-dpc"
	CauseNetworkLatency     FreezeCause = "network-latency"
	CauseCPUSaturation      FreezeCause = "cpu-saturation"
	CauseMemoryPressure     FreezeCause = "memory-pressure"
	CauseThreadPoolStarved  FreezeCause = "thread-pool-starvation"
	CauseBlockedNetworkWait FreezeCause = "blocked-network-wait"
	CauseHandleStarvation   FreezeCause = "handle-starvation"
	CauseLockContention     FreezeCause = "lock-contention"
	CausePagingWait         FreezeCause = "paging-wait"
	CauseDPCTheft           FreezeCause = "dpc-theft"
	CauseSchedulerCongested FreezeCause = "scheduler-congestion"
	CauseOwnComputation     FreezeCause = "own-computation"
	CauseInternalBlocking   FreezeCause = "internal-blocking"
	CauseUnknown            FreezeCause = "unknown"
)

// FreezeClassification is the quick classifier's verdict for one hanging
// process: a cause label, a human description, and the specific numbers
// that triggered the matching rule, in match order.
type FreezeClassification struct {
	ProcessName string      `json:"process_name"`
	Cause       FreezeCause `json:"cause"`
	Description string      `json:"description"`
	Evidence    []string    `json:"evidence"`
}

// DeepFreezeCategory enumerates the deep investigator's mutually exclusive
// root-cause categories, in the priority order they are checked.
type DeepFreezeCategory int

const (
	DeepUnknown DeepFreezeCategory = iota
	DeepAllThreadsSuspended
	DeepDriverModule
	DeepLockContention
	DeepDeadlock
	DeepPagingStorm
	DeepSchedulerThrash
	DeepMemoryPressure
	DeepExternalStall
	DeepThreadPoolStarved
)

func (c DeepFreezeCategory) String() string {
	switch c {
	case DeepAllThreadsSuspended:
		return "all-threads-suspended"
	case DeepDriverModule:
		return "driver-module"
	case DeepLockContention:
		return "lock-contention"
	case DeepDeadlock:
		return "deadlock"
	case DeepPagingStorm:
		return "paging-storm"
	case DeepSchedulerThrash:
		return "scheduler-thrash"
	case DeepMemoryPressure:
		return "memory-pressure"
	case DeepExternalStall:
		return "external-dependency-stall"
	case DeepThreadPoolStarved:
		return "thread-pool-starvation"
	}
	return "unknown"
}

// DeepFreezeDiagnostic is the deep investigator's verdict for one process.
type DeepFreezeDiagnostic struct {
	ProcessName string             `json:"process_name,omitempty"`
	Category    DeepFreezeCategory `json:"category"`
	Description string             `json:"description"`
	Confidence  float64            `json:"confidence"`
}

// WaitReason categorizes why a waiting thread is not running.
type WaitReason int

const (
	WaitNone WaitReason = iota // thread is running or runnable
	WaitSuspended
	WaitSynchronization // futex, mutex, condition variable
	WaitPaging          // major fault / page-in
	WaitMemory          // allocation stalled on reclaim
	WaitExternalRequest // socket, pipe, remote call
	WaitIO              // block device
	WaitOther
)

func (w WaitReason) String() string {
	switch w {
	case WaitNone:
		return "running"
	case WaitSuspended:
		return "suspended"
	case WaitSynchronization:
		return "synchronization"
	case WaitPaging:
		return "paging"
	case WaitMemory:
		return "memory"
	case WaitExternalRequest:
		return "external-request"
	case WaitIO:
		return "io"
	}
	return "other"
}

// ThreadState is one thread's scheduling state at inspection time.
type ThreadState struct {
	TID     int
	Running bool
	Reason  WaitReason // meaningful only when Running is false
}

// DumpSummary is the best-effort triage output of a crash-dump capture:
// a faulting module if one was identified, modules flagged as suspicious,
// and a short list of stack-trace strings.
type DumpSummary struct {
	FaultingModule string
	FlaggedModules []string
	StackFrames    []string
}
