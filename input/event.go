// Package input models the raw controller events produced by the external
// SDL event server and decodes its line-delimited JSON stream.
package input

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind identifies the variant an Event carries.
type Kind uint8

const (
	KindAxisMotion Kind = iota
	KindButtonPress
	KindControllerAdded
	KindControllerRemoved
)

func (k Kind) String() string {
	switch k {
	case KindAxisMotion:
		return "AxisMotion"
	case KindButtonPress:
		return "ButtonPress"
	case KindControllerAdded:
		return "ControllerAdded"
	case KindControllerRemoved:
		return "ControllerRemoved"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ErrMalformed is returned when a line is not a recognised event object.
var ErrMalformed = errors.New("malformed event")

// Event is one raw event as reported by the input server.
//
// Which is the physical device id assigned by the server on ControllerAdded.
// Axis/Value are only meaningful for KindAxisMotion, Button/Pressed only for
// KindButtonPress.
type Event struct {
	Kind      Kind
	Timestamp uint32
	Which     uint32

	Axis  Axis
	Value int16

	Button  Button
	Pressed bool
}

// AxisMotion builds an axis motion event.
func AxisMotion(which uint32, axis Axis, value int16) Event {
	return Event{Kind: KindAxisMotion, Which: which, Axis: axis, Value: value}
}

// ButtonPress builds a button event.
func ButtonPress(which uint32, button Button, pressed bool) Event {
	return Event{Kind: KindButtonPress, Which: which, Button: button, Pressed: pressed}
}

// ControllerAdded builds a hot-plug connect event.
func ControllerAdded(which uint32) Event {
	return Event{Kind: KindControllerAdded, Which: which}
}

// ControllerRemoved builds a hot-plug removal event.
func ControllerRemoved(which uint32) Event {
	return Event{Kind: KindControllerRemoved, Which: which}
}

type axisMotionBody struct {
	Timestamp uint32 `json:"timestamp"`
	Which     uint32 `json:"which"`
	Axis      Axis   `json:"axis"`
	Value     int16  `json:"value"`
}

type buttonPressBody struct {
	Timestamp uint32 `json:"timestamp"`
	Which     uint32 `json:"which"`
	Button    Button `json:"button"`
	Pressed   bool   `json:"pressed"`
}

type deviceBody struct {
	Timestamp uint32 `json:"timestamp"`
	Which     uint32 `json:"which"`
}

// MarshalJSON encodes the event as an externally tagged object, e.g.
// {"ButtonPress":{"timestamp":0,"which":1,"button":"A","pressed":true}}.
func (e Event) MarshalJSON() ([]byte, error) {
	var body any
	switch e.Kind {
	case KindAxisMotion:
		body = axisMotionBody{e.Timestamp, e.Which, e.Axis, e.Value}
	case KindButtonPress:
		body = buttonPressBody{e.Timestamp, e.Which, e.Button, e.Pressed}
	case KindControllerAdded, KindControllerRemoved:
		body = deviceBody{e.Timestamp, e.Which}
	default:
		return nil, fmt.Errorf("marshal %s: %w", e.Kind, ErrMalformed)
	}
	return json.Marshal(map[string]any{e.Kind.String(): body})
}

// UnmarshalJSON decodes an externally tagged event object.
func (e *Event) UnmarshalJSON(data []byte) error {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(tagged) != 1 {
		return fmt.Errorf("%w: expected exactly one variant, got %d", ErrMalformed, len(tagged))
	}
	for tag, raw := range tagged {
		switch tag {
		case "AxisMotion":
			var b axisMotionBody
			if err := json.Unmarshal(raw, &b); err != nil {
				return fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			*e = Event{Kind: KindAxisMotion, Timestamp: b.Timestamp, Which: b.Which, Axis: b.Axis, Value: b.Value}
		case "ButtonPress":
			var b buttonPressBody
			if err := json.Unmarshal(raw, &b); err != nil {
				return fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			*e = Event{Kind: KindButtonPress, Timestamp: b.Timestamp, Which: b.Which, Button: b.Button, Pressed: b.Pressed}
		case "ControllerAdded", "ControllerRemoved":
			var b deviceBody
			if err := json.Unmarshal(raw, &b); err != nil {
				return fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			kind := KindControllerAdded
			if tag == "ControllerRemoved" {
				kind = KindControllerRemoved
			}
			*e = Event{Kind: kind, Timestamp: b.Timestamp, Which: b.Which}
		default:
			return fmt.Errorf("%w: unknown variant %q", ErrMalformed, tag)
		}
	}
	return nil
}

// Decode parses a single line from the input server.
func Decode(line []byte) (Event, error) {
	var ev Event
	err := json.Unmarshal(line, &ev)
	return ev, err
}
