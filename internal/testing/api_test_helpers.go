package testing

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"

	"github.com/Alia5/padrelay/input"
	"github.com/Alia5/padrelay/internal/command"
	"github.com/Alia5/padrelay/internal/server/api"
	"github.com/Alia5/padrelay/relay"
	"github.com/Alia5/padrelay/slots"
	"github.com/Alia5/padrelay/wire"
)

// StartAPIServer starts a command server on a free port backed by a fresh
// engine whose sender records frames in memory. Returns the address, the
// engine and a function to call when done.
func StartAPIServer(t *testing.T) (addr string, engine *relay.Engine, sender *MemorySender, done func()) {
	t.Helper()
	sender = &MemorySender{}
	engine = relay.New(context.Background(), slots.New(slog.Default()), sender, NopSource{}, nil, slog.Default())

	apiSrv := api.New(command.NewHandler(engine, slog.Default()), api.ServerConfig{Addr: "127.0.0.1:0"}, slog.Default())
	if err := apiSrv.Start(); err != nil {
		t.Fatalf("api start failed: %v", err)
	}
	return apiSrv.Addr(), engine, sender, apiSrv.Close
}

// ExecCmd dials the server, sends cmd and returns the result line without
// its trailing newline. Client errors call t.Fatalf.
func ExecCmd(t *testing.T, addr string, cmd string) string {
	t.Helper()
	c, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer c.Close()
	r := bufio.NewReader(c)
	_, _ = fmt.Fprintf(c, "%s\n", cmd)
	line, err := r.ReadString('\n')
	if err != nil {
		if err != io.EOF {
			t.Fatalf("read failed: %v", err)
		}
	}
	if len(line) == 0 {
		return ""
	}
	return line[:len(line)-1]
}

// MemorySender records every frame instead of transmitting it.
type MemorySender struct {
	mu     sync.Mutex
	ips    []string
	Frames []wire.Frame
}

func (m *MemorySender) Send(f wire.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frames = append(m.Frames, f)
	return nil
}

// Sent returns how many frames were recorded.
func (m *MemorySender) Sent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Frames)
}

func (m *MemorySender) IPs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ips...)
}

func (m *MemorySender) SetIPs(ips []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ips = append([]string(nil), ips...)
	return nil
}

// NopSource never produces events.
type NopSource struct{}

func (NopSource) Drain(dst []input.Event) ([]input.Event, error) { return dst, nil }
