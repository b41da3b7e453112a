package signal

import "sync/atomic"

// DailyCounter tracks how many signals were emitted since the last
// reset. Safe for concurrent use across scanner goroutines.
type DailyCounter struct {
	count atomic.Int64
}

// NewDailyCounter builds a counter starting at zero.
func NewDailyCounter() *DailyCounter {
	return &DailyCounter{}
}

// Seed sets the count, used to restore state from the journal after a
// restart.
func (c *DailyCounter) Seed(n int64) {
	c.count.Store(n)
}

// TryAcquire reserves one slot under the limit. It returns false when
// the quota is spent. The reservation is atomic: concurrent callers
// never overshoot the limit.
func (c *DailyCounter) TryAcquire(limit int64) bool {
	for {
		cur := c.count.Load()
		if cur >= limit {
			return false
		}
		if c.count.CompareAndSwap(cur, cur+1) {
			return true
		}
	}
}

// Release returns a slot reserved by TryAcquire, used when a signal
// fails after reservation.
func (c *DailyCounter) Release() {
	for {
		cur := c.count.Load()
		if cur <= 0 {
			return
		}
		if c.count.CompareAndSwap(cur, cur-1) {
			return
		}
	}
}

// Count returns the current count.
func (c *DailyCounter) Count() int64 {
	return c.count.Load()
}

// Reset zeroes the counter at the day boundary.
func (c *DailyCounter) Reset() {
	c.count.Store(0)
}
