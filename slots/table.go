// Package slots owns the bank of virtual controller slots, the mapping from
// physical device ids to slots, and the per-slot delay line.
//
// Table is safe for concurrent use. Every exported method takes the table
// lock for the duration of that one call and never holds it across I/O.
package slots

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Alia5/padrelay/gamepad"
	"github.com/Alia5/padrelay/input"
	"github.com/Alia5/padrelay/internal/log"
)

// NumSlots is the fixed number of virtual controllers.
const NumSlots = 8

// ConnectButton connects an unassigned physical controller when pressed.
const ConnectButton = input.ButtonRightShoulder

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalidDeadzone = errors.New("deadzone must be within [0, 1]")
)

// Bank is a copy of every slot, in slot order.
type Bank [NumSlots]gamepad.State

// Table maps physical controllers onto virtual slots.
type Table struct {
	mu       sync.Mutex
	anarchy  bool
	bank     Bank
	assigned map[uint32]int
	buffer   DelayBuffer
	logger   *slog.Logger
	notes    []logNote
}

// logNote is a log record queued while mu is held and written after unlock.
type logNote struct {
	level slog.Level
	msg   string
	args  []any
}

// New returns a table with every slot disconnected.
func New(logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.Default()
	}
	return &Table{
		assigned: make(map[uint32]int),
		logger:   logger,
	}
}

// note queues a log record. mu must be held.
func (t *Table) note(level slog.Level, msg string, args ...any) {
	if !t.logger.Enabled(context.Background(), level) {
		return
	}
	t.notes = append(t.notes, logNote{level: level, msg: msg, args: args})
}

// unlock releases mu and then writes the records queued under it.
func (t *Table) unlock() {
	notes := t.notes
	t.notes = nil
	t.mu.Unlock()
	for _, n := range notes {
		t.logger.Log(context.Background(), n.level, n.msg, n.args...)
	}
}

func checkIndex(i int) error {
	if i < 0 || i >= NumSlots {
		return fmt.Errorf("slot %d: %w", i, ErrIndexOutOfRange)
	}
	return nil
}

// Anarchy reports whether all slots are merged into one.
func (t *Table) Anarchy() bool {
	t.mu.Lock()
	defer t.unlock()
	return t.anarchy
}

// SetAnarchy toggles merge mode.
func (t *Table) SetAnarchy(on bool) {
	t.mu.Lock()
	defer t.unlock()
	t.anarchy = on
}

// Delay returns slot i's input delay in ticks.
func (t *Table) Delay(i int) (uint8, error) {
	if err := checkIndex(i); err != nil {
		return 0, err
	}
	t.mu.Lock()
	defer t.unlock()
	return t.bank[i].Delay, nil
}

// SetDelay changes slot i's delay. Events already buffered keep the countdown
// they were given when they arrived.
func (t *Table) SetDelay(i int, delay uint8) error {
	if err := checkIndex(i); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.unlock()
	t.bank[i].Delay = delay
	return nil
}

// LeftDeadzone returns slot i's left stick deadzone.
func (t *Table) LeftDeadzone(i int) (float32, error) {
	return t.deadzone(i, func(s *gamepad.State) *gamepad.Stick { return &s.Left })
}

// RightDeadzone returns slot i's right stick deadzone.
func (t *Table) RightDeadzone(i int) (float32, error) {
	return t.deadzone(i, func(s *gamepad.State) *gamepad.Stick { return &s.Right })
}

// SetLeftDeadzone sets slot i's left stick deadzone.
func (t *Table) SetLeftDeadzone(i int, dz float32) error {
	return t.setDeadzone(i, dz, func(s *gamepad.State) *gamepad.Stick { return &s.Left })
}

// SetRightDeadzone sets slot i's right stick deadzone.
func (t *Table) SetRightDeadzone(i int, dz float32) error {
	return t.setDeadzone(i, dz, func(s *gamepad.State) *gamepad.Stick { return &s.Right })
}

func (t *Table) deadzone(i int, stick func(*gamepad.State) *gamepad.Stick) (float32, error) {
	if err := checkIndex(i); err != nil {
		return 0, err
	}
	t.mu.Lock()
	defer t.unlock()
	return stick(&t.bank[i]).Deadzone, nil
}

func (t *Table) setDeadzone(i int, dz float32, stick func(*gamepad.State) *gamepad.Stick) error {
	if err := checkIndex(i); err != nil {
		return err
	}
	// NaN fails both comparisons.
	if !(dz >= 0 && dz <= 1) {
		return fmt.Errorf("%v: %w", dz, ErrInvalidDeadzone)
	}
	t.mu.Lock()
	defer t.unlock()
	stick(&t.bank[i]).Deadzone = dz
	return nil
}

// Slot returns a copy of slot i.
func (t *Table) Slot(i int) (gamepad.State, error) {
	if err := checkIndex(i); err != nil {
		return gamepad.State{}, err
	}
	t.mu.Lock()
	defer t.unlock()
	return t.bank[i], nil
}

// Snapshot returns the merge flag and a copy of the bank, taken atomically.
func (t *Table) Snapshot() (bool, Bank) {
	t.mu.Lock()
	defer t.unlock()
	return t.anarchy, t.bank
}

// Assignments returns a copy of the physical id to slot mapping.
func (t *Table) Assignments() map[uint32]int {
	t.mu.Lock()
	defer t.unlock()
	out := make(map[uint32]int, len(t.assigned))
	for which, slot := range t.assigned {
		out[which] = slot
	}
	return out
}

// Pending is the number of events waiting in the delay line.
func (t *Table) Pending() int {
	t.mu.Lock()
	defer t.unlock()
	return t.buffer.Len()
}

// Connect assigns which to the lowest free slot. It returns false when which
// is already assigned or every slot is taken.
func (t *Table) Connect(which uint32) (int, bool) {
	t.mu.Lock()
	defer t.unlock()
	return t.connect(which)
}

// Disconnect releases the slot assigned to which. Unknown ids are ignored.
func (t *Table) Disconnect(which uint32) {
	t.mu.Lock()
	defer t.unlock()
	t.disconnect(which)
}

func (t *Table) connect(which uint32) (int, bool) {
	if slot, ok := t.assigned[which]; ok {
		t.note(slog.LevelDebug, "controller already assigned", "which", which, "slot", slot)
		return slot, false
	}
	for i := range t.bank {
		if !t.bank[i].Connected() {
			t.bank[i].Connect(gamepad.ProController)
			t.assigned[which] = i
			t.note(slog.LevelInfo, "controller connected", "which", which, "slot", i)
			return i, true
		}
	}
	t.note(slog.LevelWarn, "no free slot for controller", "which", which)
	return 0, false
}

func (t *Table) disconnect(which uint32) {
	slot, ok := t.assigned[which]
	if !ok {
		return
	}
	t.bank[slot].Disconnect()
	delete(t.assigned, which)
	t.note(slog.LevelInfo, "controller disconnected", "which", which, "slot", slot)
}

// Swap exchanges slots i and j together with whichever physical ids point at
// them.
func (t *Table) Swap(i, j int) error {
	if err := checkIndex(i); err != nil {
		return err
	}
	if err := checkIndex(j); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.unlock()
	if i == j {
		return nil
	}
	t.bank[i], t.bank[j] = t.bank[j], t.bank[i]
	for which, slot := range t.assigned {
		switch slot {
		case i:
			t.assigned[which] = j
		case j:
			t.assigned[which] = i
		}
	}
	return nil
}

// Tick runs one tick of the delay line: newly arrived events are buffered
// with their slot's current delay, then the buffer advances once. Hot-plug
// events act immediately. It returns how many events reached a slot.
func (t *Table) Tick(events []input.Event) int {
	t.mu.Lock()
	defer t.unlock()
	for _, ev := range events {
		switch ev.Kind {
		case input.KindControllerAdded:
			t.connect(ev.Which)
		case input.KindControllerRemoved:
			t.disconnect(ev.Which)
		default:
			delay := 0
			if slot, ok := t.assigned[ev.Which]; ok {
				delay = int(t.bank[slot].Delay)
			}
			t.buffer.Enqueue(ev, delay)
		}
	}
	applied := 0
	t.buffer.Advance(func(p Pending) {
		if t.dispatch(p) {
			applied++
		}
	})
	return applied
}

// Schedule pins ev to slot with the slot's delay plus extra ticks.
func (t *Table) Schedule(slot int, ev input.Event, extra int) error {
	if err := checkIndex(slot); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.unlock()
	t.buffer.EnqueueSlot(slot, ev, int(t.bank[slot].Delay)+extra)
	return nil
}

func (t *Table) dispatch(p Pending) bool {
	slot, pinned := p.Slot()
	if !pinned {
		var ok bool
		slot, ok = t.assigned[p.Event.Which]
		if !ok {
			if p.Event.Kind == input.KindButtonPress && p.Event.Button == ConnectButton && p.Event.Pressed {
				t.connect(p.Event.Which)
				return false
			}
			t.note(log.LevelTrace, "dropping event from unassigned controller", "which", p.Event.Which, "kind", p.Event.Kind)
			return false
		}
	} else if !t.bank[slot].Connected() {
		t.note(slog.LevelDebug, "dropping scripted event for empty slot", "slot", slot, "kind", p.Event.Kind)
		return false
	}
	if err := t.bank[slot].Update(p.Event); err != nil {
		t.note(slog.LevelDebug, "event not applied", "slot", slot, "which", p.Event.Which, "error", err)
		return false
	}
	return true
}
