package engine

import "github.com/opsroot/healthmon/model"

// MemoryPressureIndex blends commit-charge saturation, hard page-in rate,
// and physical usage into one 0..100 pressure figure.
//
//	0.40 * (committed/limit * 100) + 0.35 * clamp(pagesIn/50) + 0.25 * usedPct
func MemoryPressureIndex(committedBytes, commitLimitBytes uint64, pagesInPerSec, memUsedPct float64) float64 {
	var commitPct float64
	if commitLimitBytes > 0 {
		commitPct = float64(committedBytes) / float64(commitLimitBytes) * 100
	}
	return clamp100(0.40*commitPct + 0.35*clamp100(pagesInPerSec/50) + 0.25*memUsedPct)
}

// SystemLatencyScore blends interrupt load, disk service time, and
// run-queue depth into one 0..100 responsiveness-loss figure.
//
//	0.30 * clamp((dpc+irq)/20 * 100) + 0.35 * clamp(maxDiskMs/2) + 0.35 * clamp(queue/(2*cores) * 100)
func SystemLatencyScore(dpcPct, irqPct, maxDiskLatencyMs, procQueue float64, cores int) float64 {
	interrupt := clamp100((dpcPct + irqPct) / 20 * 100)
	diskTerm := clamp100(maxDiskLatencyMs / 2)
	var queueTerm float64
	if cores > 0 {
		queueTerm = clamp100(procQueue / (2 * float64(cores)) * 100)
	}
	return clamp100(0.30*interrupt + 0.35*diskTerm + 0.35*queueTerm)
}

// computeComposites writes both indices back into the builder so detectors
// may consume either raw signals or the blended scores.
func computeComposites(b *model.SampleBuilder) {
	b.MemoryPressureIndex = MemoryPressureIndex(b.CommittedBytes, b.CommitLimitBytes, b.PagesInputPerSec, b.MemoryUsedPercent)
	b.SystemLatencyScore = SystemLatencyScore(b.DPCPercent, b.InterruptPercent, b.MaxDiskLatencyMs(), b.ProcessorQueueLength, b.CoreCount)
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
