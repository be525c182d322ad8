package input

import "fmt"

// Axis is an SDL game-controller axis.
type Axis uint8

const (
	AxisLeftX Axis = iota
	AxisLeftY
	AxisRightX
	AxisRightY
	AxisTriggerLeft
	AxisTriggerRight
)

var axisNames = [...]string{
	AxisLeftX:        "LeftX",
	AxisLeftY:        "LeftY",
	AxisRightX:       "RightX",
	AxisRightY:       "RightY",
	AxisTriggerLeft:  "TriggerLeft",
	AxisTriggerRight: "TriggerRight",
}

func (a Axis) String() string {
	if int(a) < len(axisNames) {
		return axisNames[a]
	}
	return fmt.Sprintf("Axis(%d)", uint8(a))
}

// IsTrigger reports whether the axis is one of the analog triggers.
func (a Axis) IsTrigger() bool {
	return a == AxisTriggerLeft || a == AxisTriggerRight
}

func (a Axis) MarshalText() ([]byte, error) {
	if int(a) >= len(axisNames) {
		return nil, fmt.Errorf("unknown axis %d", uint8(a))
	}
	return []byte(axisNames[a]), nil
}

func (a *Axis) UnmarshalText(text []byte) error {
	for i, n := range axisNames {
		if n == string(text) {
			*a = Axis(i)
			return nil
		}
	}
	return fmt.Errorf("unknown axis %q", text)
}

// Button is an SDL game-controller button.
type Button uint8

const (
	ButtonA Button = iota
	ButtonB
	ButtonX
	ButtonY
	ButtonBack
	ButtonGuide
	ButtonStart
	ButtonLeftStick
	ButtonRightStick
	ButtonLeftShoulder
	ButtonRightShoulder
	ButtonDPadUp
	ButtonDPadDown
	ButtonDPadLeft
	ButtonDPadRight
	ButtonMisc1
	ButtonPaddle1
	ButtonPaddle2
	ButtonPaddle3
	ButtonPaddle4
	ButtonTouchpad
)

var buttonNames = [...]string{
	ButtonA:             "A",
	ButtonB:             "B",
	ButtonX:             "X",
	ButtonY:             "Y",
	ButtonBack:          "Back",
	ButtonGuide:         "Guide",
	ButtonStart:         "Start",
	ButtonLeftStick:     "LeftStick",
	ButtonRightStick:    "RightStick",
	ButtonLeftShoulder:  "LeftShoulder",
	ButtonRightShoulder: "RightShoulder",
	ButtonDPadUp:        "DPadUp",
	ButtonDPadDown:      "DPadDown",
	ButtonDPadLeft:      "DPadLeft",
	ButtonDPadRight:     "DPadRight",
	ButtonMisc1:         "Misc1",
	ButtonPaddle1:       "Paddle1",
	ButtonPaddle2:       "Paddle2",
	ButtonPaddle3:       "Paddle3",
	ButtonPaddle4:       "Paddle4",
	ButtonTouchpad:      "Touchpad",
}

func (b Button) String() string {
	if int(b) < len(buttonNames) {
		return buttonNames[b]
	}
	return fmt.Sprintf("Button(%d)", uint8(b))
}

func (b Button) MarshalText() ([]byte, error) {
	if int(b) >= len(buttonNames) {
		return nil, fmt.Errorf("unknown button %d", uint8(b))
	}
	return []byte(buttonNames[b]), nil
}

func (b *Button) UnmarshalText(text []byte) error {
	for i, n := range buttonNames {
		if n == string(text) {
			*b = Button(i)
			return nil
		}
	}
	return fmt.Errorf("unknown button %q", text)
}
