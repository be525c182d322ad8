package gamepad

import (
	"errors"
	"fmt"

	"github.com/Alia5/padrelay/input"
)

// ErrUnmappedButton is returned for SDL buttons with no Switch counterpart.
var ErrUnmappedButton = errors.New("button is unmapped")

// Button is a logical button of the virtual Switch controller.
type Button uint8

const (
	ButtonA Button = iota
	ButtonB
	ButtonX
	ButtonY
	ButtonLST
	ButtonRST
	ButtonL
	ButtonR
	ButtonZL
	ButtonZR
	ButtonPlus
	ButtonMinus
	ButtonDL
	ButtonDU
	ButtonDR
	ButtonDD
	ButtonLL
	ButtonLU
	ButtonLR
	ButtonLD
	ButtonRL
	ButtonRU
	ButtonRR
	ButtonRD
	ButtonSLL
	ButtonSRL
	ButtonSLR
	ButtonSRR
	ButtonHome
	ButtonCapture
)

// bitPositions is part of the wire contract with the sysmodule. Home and
// Capture share positions with LR and LD.
var bitPositions = [...]uint8{
	ButtonA:       0,
	ButtonB:       1,
	ButtonX:       2,
	ButtonY:       3,
	ButtonLST:     4,
	ButtonRST:     5,
	ButtonL:       6,
	ButtonR:       7,
	ButtonZL:      8,
	ButtonZR:      9,
	ButtonPlus:    10,
	ButtonMinus:   11,
	ButtonDL:      12,
	ButtonDU:      13,
	ButtonDR:      14,
	ButtonDD:      15,
	ButtonLL:      16,
	ButtonLU:      17,
	ButtonLR:      18,
	ButtonLD:      19,
	ButtonRL:      20,
	ButtonRU:      21,
	ButtonRR:      22,
	ButtonRD:      23,
	ButtonSLL:     24,
	ButtonSRL:     25,
	ButtonSLR:     26,
	ButtonSRR:     27,
	ButtonHome:    18,
	ButtonCapture: 19,
}

var buttonNames = [...]string{
	"A", "B", "X", "Y", "LST", "RST", "L", "R", "ZL", "ZR", "Plus", "Minus",
	"DL", "DU", "DR", "DD", "LL", "LU", "LR", "LD", "RL", "RU", "RR", "RD",
	"SLL", "SRL", "SLR", "SRR", "Home", "Capture",
}

func (b Button) String() string {
	if int(b) < len(buttonNames) {
		return buttonNames[b]
	}
	return fmt.Sprintf("Button(%d)", uint8(b))
}

// Bit returns the mask for b in the wire bitmask.
func (b Button) Bit() Buttons {
	if int(b) >= len(bitPositions) {
		return 0
	}
	return 1 << bitPositions[b]
}

// sdlMapping translates SDL's Xbox-style layout to Switch positions, so the
// face buttons swap.
var sdlMapping = map[input.Button]Button{
	input.ButtonA:             ButtonB,
	input.ButtonB:             ButtonA,
	input.ButtonX:             ButtonY,
	input.ButtonY:             ButtonX,
	input.ButtonBack:          ButtonMinus,
	input.ButtonMisc1:         ButtonCapture,
	input.ButtonGuide:         ButtonHome,
	input.ButtonStart:         ButtonPlus,
	input.ButtonLeftStick:     ButtonLST,
	input.ButtonRightStick:    ButtonRST,
	input.ButtonLeftShoulder:  ButtonL,
	input.ButtonRightShoulder: ButtonR,
	input.ButtonDPadUp:        ButtonDU,
	input.ButtonDPadDown:      ButtonDD,
	input.ButtonDPadLeft:      ButtonDL,
	input.ButtonDPadRight:     ButtonDR,
}

// FromSDL maps an SDL button to its Switch counterpart.
func FromSDL(b input.Button) (Button, error) {
	if mapped, ok := sdlMapping[b]; ok {
		return mapped, nil
	}
	return 0, fmt.Errorf("%s: %w", b, ErrUnmappedButton)
}

// Buttons is the pressed-button bit-set.
type Buttons uint32

// Set presses or releases b.
func (s *Buttons) Set(b Button, pressed bool) {
	if pressed {
		*s |= b.Bit()
	} else {
		*s &^= b.Bit()
	}
}

// Has reports whether b's bit is set.
func (s Buttons) Has(b Button) bool {
	bit := b.Bit()
	return bit != 0 && s&bit == bit
}
