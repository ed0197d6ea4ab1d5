package detector

import "time"

// condition implements the debounce + cooldown pattern shared by every
// detector. A breach must hold for `need` consecutive samples before an
// alert episode opens; any clean sample closes the episode and resets the
// streak. While an episode is open, Observe keeps returning true so the
// event log can keep the entry's ongoing status current. A new episode
// cannot open until `cooldown` has elapsed since the previous one last
// fired, independent of the streak.
type condition struct {
	need     int
	cooldown time.Duration

	streak    int
	active    bool
	lastRaise time.Time
}

func newCondition(need int, cooldown time.Duration) *condition {
	return &condition{need: need, cooldown: cooldown}
}

// Observe records one sample and reports whether the condition's event
// should be emitted this tick.
func (c *condition) Observe(breached bool, now time.Time) bool {
	if !breached {
		c.streak = 0
		c.active = false
		return false
	}
	c.streak++
	if c.streak < c.need {
		return false
	}
	if c.active {
		c.lastRaise = now
		return true
	}
	if !c.lastRaise.IsZero() && now.Sub(c.lastRaise) < c.cooldown {
		return false
	}
	c.active = true
	c.lastRaise = now
	return true
}

// Breaching reports whether the debounce threshold is currently met.
func (c *condition) Breaching() bool {
	return c.streak >= c.need
}
