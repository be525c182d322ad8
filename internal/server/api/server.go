// Package api serves the command protocol over TCP, one result line per
// command line, for clients that cannot own the daemon's stdio.
package api

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/Alia5/padrelay/internal/command"
)

// Server implements the TCP command listener.
type Server struct {
	handler *command.Handler
	config  ServerConfig
	logger  *slog.Logger

	ln     net.Listener
	wg     sync.WaitGroup
	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool
}

// New creates a server executing commands through h.
func New(h *command.Handler, config ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		handler: h,
		config:  config,
		logger:  logger,
		conns:   map[net.Conn]struct{}{},
	}
}

// Config returns the server configuration.
func (a *Server) Config() ServerConfig { return a.config }

// Addr returns the bound address once started.
func (a *Server) Addr() string {
	if a.ln == nil {
		return a.config.Addr
	}
	return a.ln.Addr().String()
}

// Start listens on the configured address and serves connections.
func (a *Server) Start() error {
	ln, err := net.Listen("tcp", a.config.Addr)
	if err != nil {
		return err
	}
	a.ln = ln
	a.logger.Info("API listening", "addr", ln.Addr().String())
	a.wg.Add(1)
	go a.serve()
	return nil
}

// Close stops accepting, closes open connections and waits for their
// handlers to return.
func (a *Server) Close() {
	if a.ln != nil {
		_ = a.ln.Close()
	}
	a.mu.Lock()
	a.closed = true
	for c := range a.conns {
		_ = c.Close()
	}
	a.mu.Unlock()
	a.wg.Wait()
}

func (a *Server) serve() {
	defer a.wg.Done()
	for {
		c, err := a.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || strings.Contains(strings.ToLower(err.Error()), "use of closed network connection") {
				a.logger.Info("API server stopped")
				return
			}
			a.logger.Info("API accept error", "error", err)
			return
		}
		a.mu.Lock()
		if a.closed {
			a.mu.Unlock()
			_ = c.Close()
			return
		}
		a.conns[c] = struct{}{}
		a.wg.Add(1)
		a.mu.Unlock()
		go a.handleConn(c)
	}
}

func (a *Server) handleConn(conn net.Conn) {
	defer a.wg.Done()
	defer func() {
		a.mu.Lock()
		delete(a.conns, conn)
		a.mu.Unlock()
		_ = conn.Close()
	}()

	connLogger := a.logger.With("remote", conn.RemoteAddr().String())
	connLogger.Debug("api connection opened")
	r := bufio.NewReader(conn)
	for {
		if a.config.IdleTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(a.config.IdleTimeout))
		}
		line, err := r.ReadString('\n')
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			connLogger.Info("api cmd", "cmd", trimmed)
			res := a.handler.HandleLine([]byte(trimmed))
			if _, werr := conn.Write(append(res, '\n')); werr != nil {
				connLogger.Error("write api result", "error", werr)
				return
			}
		}
		if err != nil {
			var ne net.Error
			switch {
			case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
			case errors.As(err, &ne) && ne.Timeout():
				connLogger.Debug("api connection idle, closing")
			default:
				connLogger.Error("read api line", "error", err)
			}
			return
		}
	}
}
