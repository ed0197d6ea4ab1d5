package engine

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestMemoryPressureIndex(t *testing.T) {
	const gib = 1 << 30

	tests := []struct {
		name      string
		committed uint64
		limit     uint64
		pagesIn   float64
		usedPct   float64
		want      float64
	}{
		{
			// 0.40*50 + 0.35*0 + 0.25*0 = 20
			"half commit only",
			8 * gib, 16 * gib, 0, 0,
			20,
		},
		{
			// Commit charge at the limit contributes its full 40-point weight.
			"commit at limit",
			16 * gib, 16 * gib, 0, 0,
			40,
		},
		{
			// 0.40*0 + 0.35*clamp(5000/50=100) + 0.25*0 = 35
			"page-in storm saturates its term",
			0, 16 * gib, 5000, 0,
			35,
		},
		{
			// 0.40*0 + 0.35*0 + 0.25*80 = 20
			"physical usage only",
			0, 16 * gib, 0, 80,
			20,
		},
		{
			// 0.40*75 + 0.35*clamp(100/50=2)=0.35*2 + 0.25*60 = 30+0.7+15 = 45.7
			"blended",
			12 * gib, 16 * gib, 100, 60,
			45.7,
		},
		{
			"zero limit contributes nothing",
			12 * gib, 0, 0, 40,
			10,
		},
		{
			"everything maxed clamps to 100",
			64 * gib, 16 * gib, 1e6, 100,
			100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MemoryPressureIndex(tt.committed, tt.limit, tt.pagesIn, tt.usedPct)
			if !almostEqual(got, tt.want) {
				t.Errorf("MemoryPressureIndex() = %.2f, want %.2f", got, tt.want)
			}
		})
	}
}

func TestSystemLatencyScore(t *testing.T) {
	tests := []struct {
		name   string
		dpc    float64
		irq    float64
		diskMs float64
		queue  float64
		cores  int
		want   float64
	}{
		{
			"idle system",
			0, 0, 0, 0, 8,
			0,
		},
		{
			// interrupt term: (10+10)/20*100 = 100 -> 0.30*100 = 30
			"interrupt load saturates its term",
			10, 10, 0, 0, 8,
			30,
		},
		{
			// disk term: 100/2 = 50 -> 0.35*50 = 17.5
			"disk latency only",
			0, 0, 100, 0, 8,
			17.5,
		},
		{
			// queue term: 8/(2*4)*100 = 100 -> 0.35*100 = 35
			"queue saturates at twice the core count",
			0, 0, 0, 8, 4,
			35,
		},
		{
			// 0.30*clamp(4/20*100=20) + 0.35*clamp(50/2=25) + 0.35*clamp(4/8*100=50)
			// = 6 + 8.75 + 17.5 = 32.25
			"blended",
			2, 2, 50, 4, 4,
			32.25,
		},
		{
			"zero cores drops the queue term",
			0, 0, 0, 100, 0,
			0,
		},
		{
			"everything maxed clamps to 100",
			50, 50, 1e6, 1e6, 1,
			100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SystemLatencyScore(tt.dpc, tt.irq, tt.diskMs, tt.queue, tt.cores)
			if !almostEqual(got, tt.want) {
				t.Errorf("SystemLatencyScore() = %.2f, want %.2f", got, tt.want)
			}
		})
	}
}

func TestClamp100(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-5, 0},
		{0, 0},
		{42, 42},
		{100, 100},
		{250, 100},
	}
	for _, tt := range tests {
		if got := clamp100(tt.in); got != tt.want {
			t.Errorf("clamp100(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
