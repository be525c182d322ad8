package wire

import (
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/Alia5/padrelay/internal/log"
)

// DefaultPort is where the sysmodule listens for frames.
const DefaultPort = 8000

// Sender transmits frames over one local UDP socket to every configured
// destination. Delivery is fire-and-forget.
type Sender struct {
	conn *net.UDPConn
	port int
	raw  log.RawLogger

	mu      sync.RWMutex
	ips     []string
	targets []*net.UDPAddr
}

// Listen binds the local socket. port is the destination port used for every
// address passed to SetIPs.
func Listen(bind string, port int, raw log.RawLogger) (*Sender, error) {
	laddr, err := net.ResolveUDPAddr("udp", bind)
	if err != nil {
		return nil, fmt.Errorf("resolve bind address %q: %w", bind, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("bind UDP socket: %w", err)
	}
	if raw == nil {
		raw = log.NewRaw(nil)
	}
	return &Sender{conn: conn, port: port, raw: raw}, nil
}

// LocalAddr is the bound socket address.
func (s *Sender) LocalAddr() net.Addr { return s.conn.LocalAddr() }

// IPs returns the configured destination hosts.
func (s *Sender) IPs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.ips...)
}

// SetIPs replaces the destination list. Every entry must resolve, otherwise
// the previous list is kept.
func (s *Sender) SetIPs(ips []string) error {
	targets := make([]*net.UDPAddr, 0, len(ips))
	for _, ip := range ips {
		addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(ip, strconv.Itoa(s.port)))
		if err != nil {
			return fmt.Errorf("invalid destination %q: %w", ip, err)
		}
		targets = append(targets, addr)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ips = append([]string(nil), ips...)
	s.targets = targets
	return nil
}

// Send encodes f once and writes it to every destination.
func (s *Sender) Send(f Frame) error {
	b, err := f.MarshalBinary()
	if err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, addr := range s.targets {
		if _, err := s.conn.WriteToUDP(b, addr); err != nil {
			return fmt.Errorf("failed to send packet to %s: %w", addr, err)
		}
		s.raw.Log(addr.String(), b)
	}
	return nil
}

// Close releases the socket.
func (s *Sender) Close() error {
	return s.conn.Close()
}
