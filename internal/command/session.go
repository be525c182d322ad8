package command

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Session serves commands over a pair of streams, normally stdin/stdout.
// Lines are read in the background and executed once per tick so a tick
// never waits on absent input.
type Session struct {
	handler *Handler
	out     *bufio.Writer
	lines   chan []byte
	errCh   chan error
	done    chan struct{}
	once    sync.Once
	logger  *slog.Logger
}

func NewSession(h *Handler, in io.Reader, out io.Writer, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		handler: h,
		out:     bufio.NewWriter(out),
		lines:   make(chan []byte, 64),
		errCh:   make(chan error, 1),
		done:    make(chan struct{}),
		logger:  logger,
	}
	go s.read(in)
	return s
}

func (s *Session) read(in io.Reader) {
	r := bufio.NewReader(in)
	for {
		select {
		case <-s.done:
			return
		default:
		}
		line, err := r.ReadBytes('\n')
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			select {
			case s.lines <- trimmed:
			case <-s.done:
				return
			}
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
			s.logger.Debug("command input closed")
			return
		}
		s.errCh <- fmt.Errorf("read command: %w", err)
		return
	}
}

// Close stops the reader goroutine once it next waits on the queue or
// finishes a read. Lines not yet polled are dropped.
func (s *Session) Close() {
	s.once.Do(func() { close(s.done) })
}

// Poll executes every queued command line and writes its result. It never
// blocks on input. A read or write failure is returned.
func (s *Session) Poll() error {
	for {
		select {
		case line := <-s.lines:
			if err := s.write(s.handler.HandleLine(line)); err != nil {
				return err
			}
		default:
			select {
			case err := <-s.errCh:
				return err
			default:
				return nil
			}
		}
	}
}

func (s *Session) write(res []byte) error {
	if _, err := s.out.Write(append(res, '\n')); err != nil {
		return fmt.Errorf("write command result: %w", err)
	}
	if err := s.out.Flush(); err != nil {
		return fmt.Errorf("flush command result: %w", err)
	}
	return nil
}

// Run polls once per tick until ctx is done or ticks is closed.
func (s *Session) Run(ctx context.Context, ticks <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ticks:
			if !ok {
				return nil
			}
			if err := s.Poll(); err != nil {
				return err
			}
		}
	}
}
