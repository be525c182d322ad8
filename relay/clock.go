package relay

import (
	"context"
	"sync"
	"time"
)

// DefaultTickRate is the frame rate the relay runs at unless configured.
const DefaultTickRate = 60

// Clock fans a single ticker out to every subscribed worker. A subscriber
// that is still busy with the previous tick misses the next one rather than
// queueing it.
type Clock struct {
	interval time.Duration

	mu      sync.Mutex
	subs    []chan time.Time
	stopped bool
}

// NewClock creates a clock ticking rate times per second.
func NewClock(rate int) *Clock {
	if rate <= 0 {
		rate = DefaultTickRate
	}
	return &Clock{interval: time.Second / time.Duration(rate)}
}

// Interval is the time between ticks.
func (c *Clock) Interval() time.Duration { return c.interval }

// Subscribe returns a channel receiving each tick. The channel is closed
// when the clock stops.
func (c *Clock) Subscribe() <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	if c.stopped {
		close(ch)
		return ch
	}
	c.subs = append(c.subs, ch)
	return ch
}

// Run drives the ticker until ctx is done, then closes every subscription.
func (c *Clock) Run(ctx context.Context) {
	t := time.NewTicker(c.interval)
	defer t.Stop()
	defer c.stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			c.broadcast(now)
		}
	}
}

func (c *Clock) broadcast(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- now:
		default:
		}
	}
}

func (c *Clock) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	for _, ch := range c.subs {
		close(ch)
	}
	c.subs = nil
}
