package apiclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Config controls low-level transport behavior such as timeouts.
type Config struct {
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func defaultConfig() Config {
	return Config{
		DialTimeout:  3 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// Transport sends one command line per connection and returns the single
// result line.
type Transport struct {
	addr string
	mock func(cmd any) (string, error)
	cfg  Config
}

// NewTransport creates a new low-level transport.
func NewTransport(addr string) *Transport { return NewTransportWithConfig(addr, nil) }

// NewTransportWithConfig creates a new low-level transport with optional timeouts configuration.
func NewTransportWithConfig(addr string, cfg *Config) *Transport {
	c := defaultConfig()
	if cfg != nil {
		c = *cfg
	}
	return &Transport{addr: addr, cfg: c}
}

// NewMockTransport creates a transport that returns canned responses without real networking.
// The responder receives the command value passed to Do and returns the raw line.
func NewMockTransport(responder func(cmd any) (string, error)) *Transport {
	return &Transport{addr: "mock", mock: responder, cfg: defaultConfig()}
}

// Do sends a command and returns the exact single-line response (without trailing newline).
// Command handling rules:
//
//	[]byte -> sent as-is
//	string -> UTF-8 bytes
//	other  -> JSON marshaled bytes
func (c *Transport) Do(cmd any) (string, error) {
	return c.DoCtx(context.Background(), cmd)
}

// DoCtx is like Do but honors the provided context and configured timeouts.
func (c *Transport) DoCtx(ctx context.Context, cmd any) (string, error) {
	if c.mock != nil {
		return c.mock(cmd)
	}
	lineBytes, err := toLineBytes(cmd)
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("dial: %w", err)
	}
	d := &net.Dialer{Timeout: c.cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return "", fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()
	if c.cfg.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	}
	if _, err := conn.Write(append(lineBytes, '\n')); err != nil {
		return "", fmt.Errorf("write: %w", err)
	}
	r := bufio.NewReader(conn)
	if c.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	}
	resp, err := r.ReadString('\n')
	if err != nil {
		if len(resp) == 0 { // no data received
			return "", fmt.Errorf("read: %w", err)
		}
	}
	if len(resp) == 0 {
		return "", nil
	}
	if resp[len(resp)-1] == '\n' {
		resp = resp[:len(resp)-1]
	}
	return resp, nil
}

func toLineBytes(v any) ([]byte, error) {
	switch t := v.(type) {
	case []byte:
		return t, nil
	case string:
		return []byte(t), nil
	default:
		return json.Marshal(v)
	}
}
