package slots

import "github.com/Alia5/padrelay/input"

// noSlot marks a pending event that is routed by physical id at dispatch.
const noSlot = -1

// Pending is a raw event waiting on its countdown. The countdown is fixed at
// enqueue time from the target slot's delay.
type Pending struct {
	Event     input.Event
	Countdown int

	// slot >= 0 pins the event to a slot instead of resolving Event.Which.
	slot int
}

// Slot returns the pinned slot index, or false when the event is routed by
// its physical id.
func (p Pending) Slot() (int, bool) {
	return p.slot, p.slot != noSlot
}

// DelayBuffer is the delay line. Entries are kept in arrival order; each call
// to Advance visits every entry present at the start of the call exactly once.
type DelayBuffer struct {
	queue []Pending
	spare []Pending
}

// Enqueue adds an event routed by physical id. countdown 0 means it is
// dispatched by the next Advance.
func (b *DelayBuffer) Enqueue(ev input.Event, countdown int) {
	b.queue = append(b.queue, Pending{Event: ev, Countdown: max(countdown, 0), slot: noSlot})
}

// EnqueueSlot adds an event pinned to slot.
func (b *DelayBuffer) EnqueueSlot(slot int, ev input.Event, countdown int) {
	b.queue = append(b.queue, Pending{Event: ev, Countdown: max(countdown, 0), slot: slot})
}

// Len is the number of buffered events.
func (b *DelayBuffer) Len() int { return len(b.queue) }

// Advance performs one tick: expired entries go to dispatch in arrival
// order, the rest are re-queued with their countdown decremented. Entries
// enqueued by dispatch itself wait for the next call.
func (b *DelayBuffer) Advance(dispatch func(Pending)) {
	current := b.queue
	b.queue = b.spare[:0]
	for i, p := range current {
		if p.Countdown == 0 {
			dispatch(p)
		} else {
			p.Countdown--
			b.queue = append(b.queue, p)
		}
		current[i] = Pending{}
	}
	b.spare = current[:0]
}
