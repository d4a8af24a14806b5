package service

import (
	"sync"
	"time"
)

// CooldownTracker rate-limits a risky action per account. It keeps only
// the last successful attempt time and lives purely in memory; a
// restart clears all cooldowns, which is acceptable for a deterrent.
type CooldownTracker struct {
	mu   sync.Mutex
	last map[int64]time.Time
}

// NewCooldownTracker creates an empty tracker
func NewCooldownTracker() *CooldownTracker {
	return &CooldownTracker{
		last: make(map[int64]time.Time),
	}
}

// TryConsume allows the action if the account has no record or the
// window has fully elapsed, recording now on success. On failure it
// returns the remaining wait, rounded up to a whole second for display,
// without touching the record.
func (c *CooldownTracker) TryConsume(accountID int64, window time.Duration, now time.Time) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if last, ok := c.last[accountID]; ok {
		elapsed := now.Sub(last)
		if elapsed < window {
			remaining := window - elapsed
			rounded := remaining.Truncate(time.Second)
			if rounded < remaining {
				rounded += time.Second
			}
			return rounded, false
		}
	}

	c.last[accountID] = now
	return 0, true
}
