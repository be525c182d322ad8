package apiclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padrelay/input"
	th "github.com/Alia5/padrelay/internal/testing"
)

func TestToLineBytes(t *testing.T) {
	b, err := toLineBytes([]byte(`"Exit"`))
	require.NoError(t, err)
	assert.Equal(t, []byte(`"Exit"`), b)

	b, err = toLineBytes("hello")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), b)

	b, err = toLineBytes(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(b))
}

func TestClientAgainstServer(t *testing.T) {
	addr, engine, sender, done := th.StartAPIServer(t)
	defer done()
	ctx := context.Background()
	c := New(addr)

	require.NoError(t, c.SetIPs(ctx, []string{"10.9.9.9"}))
	ips, err := c.IPs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.9.9.9"}, ips)
	assert.Equal(t, []string{"10.9.9.9"}, sender.IPs())

	require.NoError(t, c.SetLeftDeadzone(ctx, 4, 0.5))
	dz, err := c.LeftDeadzone(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), dz)

	assert.ErrorContains(t, c.SetRightDeadzone(ctx, 4, 1.5), "deadzone must be within [0, 1]")
	assert.ErrorContains(t, c.Swap(ctx, 0, 9), "index out of range")

	require.NoError(t, c.SetAnarchyMode(ctx, true))
	on, err := c.AnarchyMode(ctx)
	require.NoError(t, err)
	assert.True(t, on)

	assert.ErrorContains(t, c.RunScript(ctx, 0, []input.ScriptStep{input.Wait(1)}), "disconnected")
	require.NoError(t, c.Connect(ctx))
	require.NoError(t, c.RunScript(ctx, 0, []input.ScriptStep{input.Wait(1)}))

	slots, err := c.Slots(ctx)
	require.NoError(t, err)
	assert.True(t, slots.Connected)
	assert.Equal(t, float32(0.5), slots.Slots[4].LeftDeadzone)

	require.NoError(t, c.Disconnect(ctx))
	require.NoError(t, c.Exit(ctx))
	assert.True(t, engine.Stopped())
}
