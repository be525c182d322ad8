package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alia5/padrelay/input"
)

func collect(b *DelayBuffer) []Pending {
	var out []Pending
	b.Advance(func(p Pending) { out = append(out, p) })
	return out
}

func TestDelayBufferCountdown(t *testing.T) {
	for _, d := range []int{0, 1, 2, 5, 30} {
		var b DelayBuffer
		ev := input.ButtonPress(1, input.ButtonA, true)
		b.Enqueue(ev, d)
		for call := 1; call <= d; call++ {
			// unrelated traffic sharing the buffer
			b.Enqueue(input.AxisMotion(9, input.AxisLeftX, int16(call)), 0)
			got := collect(&b)
			for _, p := range got {
				assert.NotEqual(t, ev, p.Event, "delay %d dispatched early on call %d", d, call)
			}
		}
		got := collect(&b)
		assert.Contains(t, eventsOf(got), ev, "delay %d not dispatched on call %d", d, d+1)
		assert.Zero(t, b.Len())
	}
}

func TestDelayBufferKeepsArrivalOrder(t *testing.T) {
	var b DelayBuffer
	first := input.ButtonPress(1, input.ButtonA, true)
	second := input.ButtonPress(1, input.ButtonA, false)
	third := input.ButtonPress(1, input.ButtonB, true)
	b.Enqueue(first, 2)
	b.Enqueue(second, 2)
	assert.Empty(t, collect(&b))
	b.Enqueue(third, 1)
	assert.Empty(t, collect(&b))
	assert.Equal(t, []input.Event{first, second, third}, eventsOf(collect(&b)))
}

func TestDelayBufferDefersEventsEnqueuedDuringAdvance(t *testing.T) {
	var b DelayBuffer
	b.Enqueue(input.ControllerAdded(1), 0)
	late := input.ButtonPress(1, input.ButtonX, true)
	calls := 0
	b.Advance(func(p Pending) {
		calls++
		b.Enqueue(late, 0)
	})
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, []input.Event{late}, eventsOf(collect(&b)))
}

func TestDelayBufferPinnedSlot(t *testing.T) {
	var b DelayBuffer
	b.EnqueueSlot(3, input.ButtonPress(0, input.ButtonY, true), 0)
	b.Enqueue(input.ButtonPress(0, input.ButtonY, true), -4)
	got := collect(&b)
	if assert.Len(t, got, 2) {
		slot, pinned := got[0].Slot()
		assert.True(t, pinned)
		assert.Equal(t, 3, slot)
		_, pinned = got[1].Slot()
		assert.False(t, pinned)
	}
}

func eventsOf(ps []Pending) []input.Event {
	out := make([]input.Event, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Event)
	}
	return out
}
