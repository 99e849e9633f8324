// Package metrics holds in-process counters surfaced on the admin dashboard.
package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value atomic.Uint64
}

func (c *Counter) Add(n int) {
	if n > 0 {
		c.value.Add(uint64(n))
	}
}

func (c *Counter) Inc() { c.value.Add(1) }

func (c *Counter) Load() uint64 { return c.value.Load() }

// Delivery counts realtime frames per outcome.
type Delivery struct {
	Queued  Counter
	Dropped Counter
	Relayed Counter
}

type DeliverySnapshot struct {
	Queued  uint64 `json:"queued"`
	Dropped uint64 `json:"dropped"`
	Relayed uint64 `json:"relayed"`
}

func (d *Delivery) Snapshot() DeliverySnapshot {
	return DeliverySnapshot{
		Queued:  d.Queued.Load(),
		Dropped: d.Dropped.Load(),
		Relayed: d.Relayed.Load(),
	}
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

// Milliseconds is the elapsed time as used in log fields.
func (t *Timer) Milliseconds() int64 {
	return t.Duration().Milliseconds()
}
