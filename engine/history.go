package engine

import "github.com/opsroot/healthmon/model"

// History is a fixed-capacity FIFO window of trimmed samples, oldest
// evicted first. Only trimmed samples enter: the full Sample, with its
// process lists and diagnostic payloads, dies with its tick.
type History struct {
	buf  []model.TrimmedSample
	head int
	size int
	cap  int
}

// NewHistory creates a window with the given capacity.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{buf: make([]model.TrimmedSample, capacity), cap: capacity}
}

// Push appends a trimmed sample, evicting the oldest at capacity.
func (h *History) Push(ts model.TrimmedSample) {
	h.buf[h.head] = ts
	h.head = (h.head + 1) % h.cap
	if h.size < h.cap {
		h.size++
	}
}

// Len returns the number of samples retained.
func (h *History) Len() int { return h.size }

// Window returns the retained samples oldest-first. The slice is a copy.
func (h *History) Window() []model.TrimmedSample {
	out := make([]model.TrimmedSample, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(h.head-h.size+i+h.cap)%h.cap]
	}
	return out
}

// Latest returns a copy of the most recent sample, or nil when empty.
func (h *History) Latest() *model.TrimmedSample {
	if h.size == 0 {
		return nil
	}
	ts := h.buf[(h.head-1+h.cap)%h.cap]
	return &ts
}
