package input

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/Alia5/padrelay/internal/log"
	"github.com/Alia5/padrelay/internal/metrics"
)

// sourceBacklog bounds the decoded-line queue between the pipe reader and the
// per-tick drain. When it is full the reader stops pulling from the pipe, so
// the rest stays buffered in the OS pipe until the next drain.
const sourceBacklog = 1024

// Source reads newline-delimited events from the input server without ever
// blocking the tick that drains it.
type Source struct {
	lines  chan []byte
	errCh  chan error
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

// NewSource starts a reader goroutine on r. Closing r (or the pipe behind it)
// ends the goroutine.
func NewSource(r io.Reader, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Source{
		lines:  make(chan []byte, sourceBacklog),
		errCh:  make(chan error, 1),
		done:   make(chan struct{}),
		logger: logger,
	}
	go s.read(r)
	return s
}

func (s *Source) read(r io.Reader) {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadBytes('\n')
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
			s.logger.Info("input server closed its output")
			return
		}
		s.errCh <- err
		return
	}
}

// Drain appends every event currently queued to dst and returns it. Lines
// that do not decode are discarded. A non-nil error means the underlying
// read failed; it is reported once.
func (s *Source) Drain(dst []Event) ([]Event, error) {
	for {
		select {
		case line := <-s.lines:
			ev, err := Decode(line)
			if err != nil {
				metrics.EventsDiscarded.Inc()
				s.logger.Log(context.Background(), log.LevelTrace, "discarding input line", "line", string(line), "error", err)
				continue
			}
			metrics.EventsIngested.Inc()
			dst = append(dst, ev)
		default:
			select {
			case err := <-s.errCh:
				return dst, err
			default:
				return dst, nil
			}
		}
	}
}

// Close stops the reader goroutine if it is waiting on a full queue.
func (s *Source) Close() {
	s.once.Do(func() { close(s.done) })
}
