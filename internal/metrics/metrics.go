package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// PaymentMetrics tracks verification outcomes for the payment flow.
// Rejections are split out so forged callbacks are visible in ops dashboards.
type PaymentMetrics struct {
	OrdersCreated      Counter
	Verified           Counter
	SignatureMismatch  Counter
	VerifyRejected     Counter
	BookkeepingFailure Counter
}
