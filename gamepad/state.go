// Package gamepad holds the virtual controller model: button bit-set,
// deadzone-filtered sticks and the per-slot device state.
package gamepad

import (
	"errors"
	"fmt"

	"github.com/Alia5/padrelay/input"
)

// ErrUnsupportedEvent is returned when State.Update receives an event it does
// not own, such as hot-plug events, which are handled by the slot table.
var ErrUnsupportedEvent = errors.New("unsupported event")

// TriggerActuation is the trigger axis value at which ZL/ZR count as pressed.
const TriggerActuation int16 = 1 << 14

// ConnectionType is the controller form factor reported to the sysmodule.
type ConnectionType uint16

const (
	Disconnected ConnectionType = iota
	ProController
	SidewaysLeftJoyCon
	SidewaysRightJoyCon
)

func (c ConnectionType) String() string {
	switch c {
	case Disconnected:
		return "disconnected"
	case ProController:
		return "pro-controller"
	case SidewaysLeftJoyCon:
		return "left-joycon"
	case SidewaysRightJoyCon:
		return "right-joycon"
	}
	return fmt.Sprintf("ConnectionType(%d)", uint16(c))
}

// State is one virtual controller slot.
type State struct {
	Type    ConnectionType
	Delay   uint8
	Buttons Buttons
	Left    Stick
	Right   Stick
}

// Connected reports whether the slot is occupied.
func (s State) Connected() bool { return s.Type != Disconnected }

// Connect sets the form factor. Delay and deadzones are kept deliberately so
// a replug does not lose tuning.
func (s *State) Connect(t ConnectionType) {
	s.Type = t
}

// Disconnect returns the slot to its zero state, tuning included.
func (s *State) Disconnect() {
	*s = State{}
}

// Update applies an axis or button event.
func (s *State) Update(ev input.Event) error {
	switch ev.Kind {
	case input.KindAxisMotion:
		if ev.Axis.IsTrigger() {
			return s.updateTrigger(ev.Axis, ev.Value)
		}
		return s.updateAxis(ev.Axis, ev.Value)
	case input.KindButtonPress:
		mapped, err := FromSDL(ev.Button)
		if err != nil {
			return err
		}
		s.Buttons.Set(mapped, ev.Pressed)
		return nil
	}
	return fmt.Errorf("%s: %w", ev.Kind, ErrUnsupportedEvent)
}

func (s *State) updateAxis(axis input.Axis, value int16) error {
	switch axis {
	case input.AxisLeftX, input.AxisLeftY:
		return s.Left.update(axis, value)
	case input.AxisRightX, input.AxisRightY:
		return s.Right.update(axis, value)
	}
	return fmt.Errorf("axis %s: %w", axis, ErrUnsupportedEvent)
}

func (s *State) updateTrigger(axis input.Axis, value int16) error {
	switch axis {
	case input.AxisTriggerLeft:
		s.Buttons.Set(ButtonZL, value >= TriggerActuation)
	case input.AxisTriggerRight:
		s.Buttons.Set(ButtonZR, value >= TriggerActuation)
	default:
		return fmt.Errorf("axis %s: %w", axis, ErrUnsupportedEvent)
	}
	return nil
}

// Merge builds the composite controller of every connected state: buttons
// are OR'd and each stick is the sum of the filtered positions, clamped to
// the axis range. Sums are taken in 32 bits and clamped once, so the result
// does not depend on the order of states. The result is disconnected when no
// input state is connected.
func Merge(states ...State) State {
	var out State
	var lx, ly, rx, ry int32
	for _, s := range states {
		if !s.Connected() {
			continue
		}
		out.Type = ProController
		out.Buttons |= s.Buttons
		x, y := s.Left.Position()
		lx, ly = lx+int32(x), ly+int32(y)
		x, y = s.Right.Position()
		rx, ry = rx+int32(x), ry+int32(y)
	}
	out.Left = Stick{X: clamp16(lx), Y: clamp16(ly)}
	out.Right = Stick{X: clamp16(rx), Y: clamp16(ry)}
	return out
}
