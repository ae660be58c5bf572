package testing

import (
	"sync"
	"time"
)

// rippleEpoch is 2000-01-01T00:00:00Z, the zero of ledger close times.
const rippleEpoch = 946684800

// ManualClock provides a controllable clock for testing time-dependent behavior.
type ManualClock struct {
	mu      sync.RWMutex
	current time.Time
}

// NewManualClock creates a new ManualClock set to a default time.
// The default is January 1, 2025, 00:00:00 UTC.
func NewManualClock() *ManualClock {
	return &ManualClock{
		current: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Now returns the current time on the clock.
func (c *ManualClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// CloseTime returns the clock as seconds since the ripple epoch.
func (c *ManualClock) CloseTime() uint32 {
	return uint32(c.Now().Unix() - rippleEpoch)
}

// Advance moves the clock forward by the specified duration.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Set sets the clock to a specific time.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}

// SetCloseTime sets the clock to seconds since the ripple epoch.
func (c *ManualClock) SetCloseTime(s uint32) {
	c.Set(time.Unix(int64(s)+rippleEpoch, 0).UTC())
}
