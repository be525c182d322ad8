// Package apiclient talks to a running padrelay daemon over its TCP command
// listener.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/Alia5/padrelay/apitypes"
	"github.com/Alia5/padrelay/input"
	"github.com/Alia5/padrelay/internal/command"
)

// Client provides typed access to the command protocol. Every method maps to
// one command; failed commands are returned as errors carrying the daemon's
// message.
type Client struct{ transport *Transport }

// New constructs a client for the daemon listening on addr (host:port).
func New(addr string) *Client { return &Client{transport: NewTransport(addr)} }

// NewWithConfig constructs a client with custom transport timeouts.
func NewWithConfig(addr string, cfg *Config) *Client {
	return &Client{transport: NewTransportWithConfig(addr, cfg)}
}

// WithTransport constructs a Client using a custom Transport implementation.
// This is primarily useful for testing.
func WithTransport(t *Transport) *Client { return &Client{transport: t} }

func (c *Client) do(ctx context.Context, cmd command.Command) (string, error) {
	line, err := c.transport.DoCtx(ctx, cmd)
	if err != nil {
		return "", err
	}
	return parse(line)
}

// AnarchyMode reports whether every slot is merged into one controller.
func (c *Client) AnarchyMode(ctx context.Context) (bool, error) {
	out, err := c.do(ctx, command.Command{Name: command.GetAnarchyMode})
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(out)
}

func (c *Client) SetAnarchyMode(ctx context.Context, on bool) error {
	_, err := c.do(ctx, command.Command{Name: command.SetAnarchyMode, AnarchyMode: on})
	return err
}

func (c *Client) IPs(ctx context.Context) ([]string, error) {
	out, err := c.do(ctx, command.Command{Name: command.GetIps})
	if err != nil {
		return nil, err
	}
	var ips []string
	if err := json.Unmarshal([]byte(out), &ips); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ips, nil
}

func (c *Client) SetIPs(ctx context.Context, ips []string) error {
	_, err := c.do(ctx, command.Command{Name: command.SetIps, IPs: ips})
	return err
}

func (c *Client) Delay(ctx context.Context, i int) (uint8, error) {
	out, err := c.do(ctx, command.Command{Name: command.GetDelay, I: i})
	if err != nil {
		return 0, err
	}
	d, err := strconv.ParseUint(out, 10, 8)
	return uint8(d), err
}

func (c *Client) SetDelay(ctx context.Context, i int, delay uint8) error {
	_, err := c.do(ctx, command.Command{Name: command.SetDelay, I: i, Delay: delay})
	return err
}

func (c *Client) LeftDeadzone(ctx context.Context, i int) (float32, error) {
	return c.deadzone(ctx, command.GetLeftDeadzone, i)
}

func (c *Client) RightDeadzone(ctx context.Context, i int) (float32, error) {
	return c.deadzone(ctx, command.GetRightDeadzone, i)
}

func (c *Client) deadzone(ctx context.Context, name command.Name, i int) (float32, error) {
	out, err := c.do(ctx, command.Command{Name: name, I: i})
	if err != nil {
		return 0, err
	}
	dz, err := strconv.ParseFloat(out, 32)
	return float32(dz), err
}

func (c *Client) SetLeftDeadzone(ctx context.Context, i int, dz float32) error {
	_, err := c.do(ctx, command.Command{Name: command.SetLeftDeadzone, I: i, Deadzone: dz})
	return err
}

func (c *Client) SetRightDeadzone(ctx context.Context, i int, dz float32) error {
	_, err := c.do(ctx, command.Command{Name: command.SetRightDeadzone, I: i, Deadzone: dz})
	return err
}

// Swap exchanges two slots together with the controllers assigned to them.
func (c *Client) Swap(ctx context.Context, i, j int) error {
	_, err := c.do(ctx, command.Command{Name: command.Swap, I: i, J: j})
	return err
}

// Connect starts frame transmission.
func (c *Client) Connect(ctx context.Context) error {
	_, err := c.do(ctx, command.Command{Name: command.Connect})
	return err
}

// Disconnect stops frame transmission.
func (c *Client) Disconnect(ctx context.Context) error {
	_, err := c.do(ctx, command.Command{Name: command.Disconnect})
	return err
}

// Exit shuts the daemon down.
func (c *Client) Exit(ctx context.Context) error {
	_, err := c.do(ctx, command.Command{Name: command.Exit})
	return err
}

func (c *Client) RunScript(ctx context.Context, i int, steps []input.ScriptStep) error {
	_, err := c.do(ctx, command.Command{Name: command.RunScript, I: i, Script: steps})
	return err
}

// Slots fetches a snapshot of every slot.
func (c *Client) Slots(ctx context.Context) (*apitypes.SlotsResponse, error) {
	out, err := c.do(ctx, command.Command{Name: command.GetSlots})
	if err != nil {
		return nil, err
	}
	var resp apitypes.SlotsResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &resp, nil
}

func parse(line string) (string, error) {
	if line == "" {
		return "", errors.New("empty response")
	}
	var res apitypes.Result
	if err := json.Unmarshal([]byte(line), &res); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	switch {
	case res.Err != nil:
		return "", errors.New(*res.Err)
	case res.Ok != nil:
		return *res.Ok, nil
	}
	return "", fmt.Errorf("decode: result carries neither Ok nor Err: %s", line)
}
