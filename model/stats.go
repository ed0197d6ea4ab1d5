package model

// RunningStat accumulates count/sum/max for one metric with no history
// retained, so a multi-hour session grows O(1) per metric.
type RunningStat struct {
	Count uint64  `json:"count"`
	Sum   float64 `json:"sum"`
	Peak  float64 `json:"peak"`
}

// Add folds one observation into the accumulator.
func (r *RunningStat) Add(x float64) {
	r.Count++
	r.Sum += x
	if x > r.Peak {
		r.Peak = x
	}
}

// Avg returns the arithmetic mean of all observations, 0 if none.
func (r *RunningStat) Avg() float64 {
	if r.Count == 0 {
		return 0
	}
	return r.Sum / float64(r.Count)
}

// Max returns the largest observation seen, 0 if none.
func (r *RunningStat) Max() float64 {
	return r.Peak
}
