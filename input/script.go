package input

import (
	"encoding/json"
	"fmt"
)

// ScriptStep is one entry of an injected script. A step either carries an
// event for the target slot or waits a number of frames before the next one.
type ScriptStep struct {
	Event Event
	Wait  uint32
	// IsWait distinguishes a Wait step from an event step.
	IsWait bool
}

// Wait builds a pause step.
func Wait(frames uint32) ScriptStep { return ScriptStep{Wait: frames, IsWait: true} }

// Step builds an event step.
func Step(ev Event) ScriptStep { return ScriptStep{Event: ev} }

type scriptAxis struct {
	Axis  Axis  `json:"axis"`
	Value int16 `json:"value"`
}

type scriptButton struct {
	Button  Button `json:"button"`
	Pressed bool   `json:"pressed"`
}

type scriptWait struct {
	Frames uint32 `json:"frames"`
}

func (s ScriptStep) MarshalJSON() ([]byte, error) {
	if s.IsWait {
		return json.Marshal(map[string]scriptWait{"Wait": {s.Wait}})
	}
	switch s.Event.Kind {
	case KindAxisMotion:
		return json.Marshal(map[string]scriptAxis{"AxisMotion": {s.Event.Axis, s.Event.Value}})
	case KindButtonPress:
		return json.Marshal(map[string]scriptButton{"ButtonPress": {s.Event.Button, s.Event.Pressed}})
	}
	return nil, fmt.Errorf("script step %s: %w", s.Event.Kind, ErrMalformed)
}

func (s *ScriptStep) UnmarshalJSON(data []byte) error {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(tagged) != 1 {
		return fmt.Errorf("%w: expected exactly one script step, got %d", ErrMalformed, len(tagged))
	}
	for tag, raw := range tagged {
		switch tag {
		case "AxisMotion":
			var b scriptAxis
			if err := json.Unmarshal(raw, &b); err != nil {
				return fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			*s = Step(AxisMotion(0, b.Axis, b.Value))
		case "ButtonPress":
			var b scriptButton
			if err := json.Unmarshal(raw, &b); err != nil {
				return fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			*s = Step(ButtonPress(0, b.Button, b.Pressed))
		case "Wait":
			var b scriptWait
			if err := json.Unmarshal(raw, &b); err != nil {
				return fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			*s = Wait(b.Frames)
		default:
			return fmt.Errorf("%w: unknown script step %q", ErrMalformed, tag)
		}
	}
	return nil
}

// Schedule flattens a script into events paired with their frame offset from
// the moment the script is injected.
func Schedule(steps []ScriptStep) (events []Event, offsets []int) {
	offset := 0
	for _, s := range steps {
		if s.IsWait {
			offset += int(s.Wait)
			continue
		}
		events = append(events, s.Event)
		offsets = append(offsets, offset)
	}
	return events, offsets
}
