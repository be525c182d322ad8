package gamepad_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padrelay/gamepad"
	"github.com/Alia5/padrelay/input"
)

func TestButtonBits(t *testing.T) {
	tests := []struct {
		button gamepad.Button
		bit    gamepad.Buttons
	}{
		{gamepad.ButtonA, 1},
		{gamepad.ButtonB, 1 << 1},
		{gamepad.ButtonZR, 1 << 9},
		{gamepad.ButtonDD, 1 << 15},
		{gamepad.ButtonSRR, 1 << 27},
		{gamepad.ButtonHome, 1 << 18},
		{gamepad.ButtonCapture, 1 << 19},
	}
	for _, tt := range tests {
		t.Run(tt.button.String(), func(t *testing.T) {
			assert.Equal(t, tt.bit, tt.button.Bit())
		})
	}
}

func TestButtonsSetClear(t *testing.T) {
	var b gamepad.Buttons
	b.Set(gamepad.ButtonA, true)
	b.Set(gamepad.ButtonR, true)
	assert.True(t, b.Has(gamepad.ButtonA))
	assert.True(t, b.Has(gamepad.ButtonR))
	assert.Equal(t, gamepad.Buttons(1|1<<7), b)

	b.Set(gamepad.ButtonA, false)
	assert.False(t, b.Has(gamepad.ButtonA))
	b.Set(gamepad.ButtonA, false)
	assert.Equal(t, gamepad.Buttons(1<<7), b)
}

func TestFromSDL(t *testing.T) {
	got, err := gamepad.FromSDL(input.ButtonA)
	require.NoError(t, err)
	assert.Equal(t, gamepad.ButtonB, got)

	got, err = gamepad.FromSDL(input.ButtonRightShoulder)
	require.NoError(t, err)
	assert.Equal(t, gamepad.ButtonR, got)

	_, err = gamepad.FromSDL(input.ButtonPaddle1)
	assert.ErrorIs(t, err, gamepad.ErrUnmappedButton)
}

func TestStickDeadzone(t *testing.T) {
	full := float64(math.MaxInt16)
	tests := []struct {
		name     string
		x, y     int16
		deadzone float32
		wantZero bool
	}{
		{"no deadzone at rest", 0, 0, 0, true},
		{"no deadzone tiny", 1, 0, 0, false},
		{"40 percent inside half", int16(0.4 * full), 0, 0.5, true},
		{"60 percent outside half", int16(0.6 * full), 0, 0.5, false},
		{"diagonal inside", 9000, 9000, 0.4, true},
		{"diagonal outside", 12000, 12000, 0.5, false},
		{"just inside the boundary", 0, 16383, 0.5, true},
		{"full deadzone swallows max", math.MaxInt16, 0, 1, true},
		{"full deadzone passes corner", math.MaxInt16, math.MaxInt16, 1, false},
		{"negative axis", math.MinInt16, 0, 0.9, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := gamepad.Stick{X: tt.x, Y: tt.y, Deadzone: tt.deadzone}
			x, y := s.Position()
			if tt.wantZero {
				assert.Equal(t, int16(0), x)
				assert.Equal(t, int16(0), y)
			} else {
				assert.Equal(t, tt.x, x)
				assert.Equal(t, tt.y, y)
			}
		})
	}
}

func TestStickDeadzoneAppliesOnRead(t *testing.T) {
	s := gamepad.Stick{X: 10000}
	x, _ := s.Position()
	assert.Equal(t, int16(10000), x)

	s.Deadzone = 0.5
	x, _ = s.Position()
	assert.Equal(t, int16(0), x)
}

func TestStateUpdate(t *testing.T) {
	var s gamepad.State
	s.Connect(gamepad.ProController)

	require.NoError(t, s.Update(input.ButtonPress(0, input.ButtonB, true)))
	assert.True(t, s.Buttons.Has(gamepad.ButtonA))

	require.NoError(t, s.Update(input.AxisMotion(0, input.AxisLeftX, 1200)))
	require.NoError(t, s.Update(input.AxisMotion(0, input.AxisLeftY, -300)))
	require.NoError(t, s.Update(input.AxisMotion(0, input.AxisRightY, 77)))
	assert.Equal(t, gamepad.Stick{X: 1200, Y: -300}, s.Left)
	assert.Equal(t, gamepad.Stick{Y: 77}, s.Right)

	require.NoError(t, s.Update(input.AxisMotion(0, input.AxisTriggerLeft, math.MaxInt16)))
	assert.True(t, s.Buttons.Has(gamepad.ButtonZL))
	require.NoError(t, s.Update(input.AxisMotion(0, input.AxisTriggerLeft, 10)))
	assert.False(t, s.Buttons.Has(gamepad.ButtonZL))

	err := s.Update(input.ButtonPress(0, input.ButtonTouchpad, true))
	assert.ErrorIs(t, err, gamepad.ErrUnmappedButton)

	err = s.Update(input.ControllerAdded(0))
	assert.ErrorIs(t, err, gamepad.ErrUnsupportedEvent)
	err = s.Update(input.ControllerRemoved(0))
	assert.ErrorIs(t, err, gamepad.ErrUnsupportedEvent)
}

func TestStateConnectKeepsTuning(t *testing.T) {
	s := gamepad.State{Delay: 4}
	s.Left.Deadzone = 0.2
	s.Connect(gamepad.SidewaysLeftJoyCon)
	assert.Equal(t, uint8(4), s.Delay)
	assert.Equal(t, float32(0.2), s.Left.Deadzone)
	assert.True(t, s.Connected())

	s.Buttons.Set(gamepad.ButtonX, true)
	s.Right.X = 500
	s.Disconnect()
	assert.Equal(t, gamepad.State{}, s)
	assert.False(t, s.Connected())
}

func TestMerge(t *testing.T) {
	a := gamepad.State{Type: gamepad.ProController, Buttons: gamepad.ButtonA.Bit()}
	a.Left = gamepad.Stick{X: 100}
	b := gamepad.State{Type: gamepad.ProController, Buttons: gamepad.ButtonY.Bit()}
	b.Left = gamepad.Stick{X: 50, Y: 50}
	b.Right = gamepad.Stick{X: math.MaxInt16, Y: math.MinInt16}
	c := gamepad.State{Type: gamepad.SidewaysLeftJoyCon}
	c.Right = gamepad.Stick{X: 1000, Y: -1000}
	c.Left = gamepad.Stick{X: 20000, Deadzone: 0.9}
	off := gamepad.State{Buttons: gamepad.ButtonHome.Bit(), Left: gamepad.Stick{X: 5}}

	merged := gamepad.Merge(a, off, b, c)
	assert.Equal(t, gamepad.ProController, merged.Type)
	assert.Equal(t, gamepad.ButtonA.Bit()|gamepad.ButtonY.Bit(), merged.Buttons)
	assert.Equal(t, gamepad.Stick{X: 150, Y: 50}, merged.Left)
	assert.Equal(t, gamepad.Stick{X: math.MaxInt16, Y: math.MinInt16}, merged.Right)

	assert.Equal(t, merged, gamepad.Merge(c, b, off, a))
	assert.Equal(t, gamepad.State{}, gamepad.Merge(off))
}

func TestMergeSaturatesOnce(t *testing.T) {
	big := gamepad.State{Type: gamepad.ProController, Left: gamepad.Stick{X: 30000}}
	small := gamepad.State{Type: gamepad.ProController, Left: gamepad.Stick{X: -100}}
	assert.Equal(t, gamepad.Merge(big, big, small), gamepad.Merge(small, big, big))
	assert.Equal(t, int16(math.MaxInt16), gamepad.Merge(big, big, small).Left.X)
}
