package haldev

import (
	"time"

	"github.com/strandcast/lednode/internal/hal"
)

// monotonicClock reports milliseconds since construction using the Go
// runtime's monotonic clock. The uint32 wraps after ~49.7 days, which the
// core's elapsed-time arithmetic tolerates.
type monotonicClock struct {
	start time.Time
}

// NewClock creates a clock rooted at the current instant.
func NewClock() hal.Clock {
	return &monotonicClock{start: time.Now()}
}

func (c *monotonicClock) NowMs() uint32 {
	return uint32(time.Since(c.start).Milliseconds())
}

func (c *monotonicClock) DelayMs(ms uint32) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

func (c *monotonicClock) DelayUs(us uint32) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}
