package relay_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Alia5/padrelay/relay"
)

func TestClockFansOut(t *testing.T) {
	c := relay.NewClock(500)
	assert.Equal(t, 2*time.Millisecond, c.Interval())
	a, b := c.Subscribe(), c.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	go c.Run(ctx)

	for _, ch := range []<-chan time.Time{a, b} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatal("subscriber never ticked")
		}
	}

	cancel()
	assert.Eventually(t, func() bool {
		for {
			select {
			case _, ok := <-a:
				if !ok {
					return true
				}
			default:
				return false
			}
		}
	}, time.Second, time.Millisecond)
}

func TestClockDefaultRate(t *testing.T) {
	assert.Equal(t, time.Second/relay.DefaultTickRate, relay.NewClock(0).Interval())
}

func TestSubscribeAfterStop(t *testing.T) {
	c := relay.NewClock(100)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Run(ctx)
	_, ok := <-c.Subscribe()
	assert.False(t, ok)
}
