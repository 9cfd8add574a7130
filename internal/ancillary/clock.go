package ancillary

import (
	"sync/atomic"

	"github.com/benbjohnson/clock"
)

// Clock is the source of the monotonically increasing nanosecond timestamp
// that seeds primary-key ids (table.RowID). It wraps benbjohnson/clock so
// tests can inject a mock clock the same way the teacher injects one for
// deterministic GC timing tests (store/index/gc_test.go).
type Clock struct {
	clock clock.Clock
	last  int64
}

// NewClock returns a Clock backed by the real wall clock.
func NewClock() *Clock {
	return &Clock{clock: clock.New()}
}

// NewClockWithSource returns a Clock backed by an injected clock.Clock,
// for use in tests (clock.NewMock()).
func NewClockWithSource(c clock.Clock) *Clock {
	return &Clock{clock: c}
}

// NowNanos returns a nanosecond timestamp strictly greater than any
// previously returned by this Clock, bumping by one nanosecond when the
// wall clock has not advanced. This is what guarantees primary-key ids are
// unique even under rapid-fire inserts.
func (c *Clock) NowNanos() int64 {
	for {
		now := c.clock.Now().UnixNano()
		last := atomic.LoadInt64(&c.last)
		if now <= last {
			now = last + 1
		}
		if atomic.CompareAndSwapInt64(&c.last, last, now) {
			return now
		}
	}
}
