package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padrelay/apitypes"
)

// mockState captures requests and returns predefined responses keyed by the
// encoded command line.
type mockState struct {
	responses map[string]string
	err       error
	lastLine  string
}

func newMockTransport(ms *mockState) *Transport {
	return NewMockTransport(func(cmd any) (string, error) {
		if ms.err != nil {
			return "", ms.err
		}
		b, err := toLineBytes(cmd)
		if err != nil {
			return "", err
		}
		ms.lastLine = string(b)
		if out, ok := ms.responses[ms.lastLine]; ok {
			return out, nil
		}
		return "", nil
	})
}

func TestHighLevelClient(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name       string
		setup      func(ms *mockState)
		call       func(c *Client) (any, error)
		wantLine   string
		wantErr    string
		assertFunc func(t *testing.T, got any)
	}{
		{
			name:     "anarchy mode",
			setup:    func(ms *mockState) { ms.responses[`"GetAnarchyMode"`] = `{"Ok":"true"}` },
			call:     func(c *Client) (any, error) { return c.AnarchyMode(ctx) },
			wantLine: `"GetAnarchyMode"`,
			assertFunc: func(t *testing.T, got any) {
				assert.Equal(t, true, got)
			},
		},
		{
			name:     "set delay",
			setup:    func(ms *mockState) { ms.responses[`{"SetDelay":{"i":2,"delay":5}}`] = `{"Ok":"Successfully set delay of gamepad 2."}` },
			call:     func(c *Client) (any, error) { return nil, c.SetDelay(ctx, 2, 5) },
			wantLine: `{"SetDelay":{"i":2,"delay":5}}`,
		},
		{
			name:     "connect error",
			setup:    func(ms *mockState) { ms.responses[`"Connect"`] = `{"Err":"cannot connect without an IP"}` },
			call:     func(c *Client) (any, error) { return nil, c.Connect(ctx) },
			wantErr:  "cannot connect without an IP",
			wantLine: `"Connect"`,
		},
		{
			name:  "ips",
			setup: func(ms *mockState) { ms.responses[`"GetIps"`] = `{"Ok":"[\"10.0.0.2\",\"10.0.0.3\"]"}` },
			call:  func(c *Client) (any, error) { return c.IPs(ctx) },
			assertFunc: func(t *testing.T, got any) {
				assert.Equal(t, []string{"10.0.0.2", "10.0.0.3"}, got)
			},
		},
		{
			name:  "deadzone",
			setup: func(ms *mockState) { ms.responses[`{"GetRightDeadzone":{"i":1}}`] = `{"Ok":"0.35"}` },
			call:  func(c *Client) (any, error) { return c.RightDeadzone(ctx, 1) },
			assertFunc: func(t *testing.T, got any) {
				assert.Equal(t, float32(0.35), got)
			},
		},
		{
			name: "slots",
			setup: func(ms *mockState) {
				body, _ := json.Marshal(apitypes.SlotsResponse{Anarchy: true, Slots: []apitypes.Slot{{Index: 0, Type: "pro-controller"}}})
				res, _ := json.Marshal(apitypes.Result{Ok: ptr(string(body))})
				ms.responses[`"GetSlots"`] = string(res)
			},
			call: func(c *Client) (any, error) { return c.Slots(ctx) },
			assertFunc: func(t *testing.T, got any) {
				resp := got.(*apitypes.SlotsResponse)
				assert.True(t, resp.Anarchy)
				require.Len(t, resp.Slots, 1)
				assert.Equal(t, "pro-controller", resp.Slots[0].Type)
			},
		},
		{
			name:    "transport failure",
			setup:   func(ms *mockState) { ms.err = errors.New("dial fail") },
			call:    func(c *Client) (any, error) { return c.AnarchyMode(ctx) },
			wantErr: "dial fail",
		},
		{
			name:    "blank response error",
			setup:   func(ms *mockState) {},
			call:    func(c *Client) (any, error) { return c.Delay(ctx, 0) },
			wantErr: "empty response",
		},
		{
			name:    "result without variant",
			setup:   func(ms *mockState) { ms.responses[`"Exit"`] = `{}` },
			call:    func(c *Client) (any, error) { return nil, c.Exit(ctx) },
			wantErr: "neither Ok nor Err",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := &mockState{responses: map[string]string{}}
			if tt.setup != nil {
				tt.setup(ms)
			}
			c := WithTransport(newMockTransport(ms))
			got, err := tt.call(c)
			if tt.wantLine != "" {
				assert.Equal(t, tt.wantLine, ms.lastLine)
			}
			if tt.wantErr != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			assert.NoError(t, err)
			if tt.assertFunc != nil {
				tt.assertFunc(t, got)
			}
		})
	}
}

func TestContextCancellation(t *testing.T) {
	c := WithTransport(NewTransport("127.0.0.1:9")) // address irrelevant due to early cancel
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.AnarchyMode(ctx)
	assert.Error(t, err)
}

func ptr[T any](v T) *T { return &v }
