package gamepad

import (
	"math"

	"github.com/Alia5/padrelay/input"
)

// Stick is an analog stick: the last raw position plus a radial deadzone
// expressed as a fraction of full deflection.
type Stick struct {
	X, Y     int16
	Deadzone float32
}

// Position returns the deadzone-filtered position. It is evaluated on every
// call so deadzone changes apply to the very next read.
func (s Stick) Position() (int16, int16) {
	norm := math.Hypot(float64(s.X), float64(s.Y))
	if norm <= float64(s.Deadzone)*math.MaxInt16 {
		return 0, 0
	}
	return s.X, s.Y
}

func (s *Stick) update(axis input.Axis, value int16) error {
	switch axis {
	case input.AxisLeftX, input.AxisRightX:
		s.X = value
	case input.AxisLeftY, input.AxisRightY:
		s.Y = value
	default:
		return ErrUnsupportedEvent
	}
	return nil
}

func (s *Stick) reset() {
	*s = Stick{}
}

func clamp16(v int32) int16 {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}
