// Package relay runs the tick pipeline: it drains the input server, advances
// the delay line and, while connected, transmits one frame per tick.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Alia5/padrelay/apitypes"
	"github.com/Alia5/padrelay/input"
	"github.com/Alia5/padrelay/internal/metrics"
	"github.com/Alia5/padrelay/slots"
	"github.com/Alia5/padrelay/wire"
)

var (
	ErrNoTargets           = errors.New("cannot connect without an IP")
	ErrAlreadyDisconnected = errors.New("already disconnected from the remote device")
	ErrNotConnected        = errors.New("cannot run script while disconnected")
	ErrStopped             = errors.New("relay is shutting down")
)

// errExit is the shutdown cause recorded by an exit request.
var errExit = errors.New("exit requested")

// Sender transmits frames to the configured destinations.
type Sender interface {
	Send(f wire.Frame) error
	IPs() []string
	SetIPs(ips []string) error
}

// EventSource yields whatever input events arrived since the last call
// without blocking.
type EventSource interface {
	Drain(dst []input.Event) ([]input.Event, error)
}

// Terminator stops the external input server.
type Terminator interface {
	Exit() error
}

// Engine owns the slot table and the shared connected/shutdown state.
type Engine struct {
	table  *slots.Table
	sender Sender
	source EventSource
	term   Terminator
	logger *slog.Logger

	connected atomic.Bool

	ctx    context.Context
	cancel context.CancelCauseFunc

	stepMu sync.Mutex
	events []input.Event
}

// New creates an engine. Cancelling parent stops it like any other
// shutdown. term may be nil when no input server process is managed.
func New(parent context.Context, table *slots.Table, sender Sender, source EventSource, term Terminator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancelCause(parent)
	return &Engine{
		table:  table,
		sender: sender,
		source: source,
		term:   term,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Table returns the slot table driven by the engine.
func (e *Engine) Table() *slots.Table { return e.table }

// Context is cancelled once the engine shuts down.
func (e *Engine) Context() context.Context { return e.ctx }

// Done is closed once the engine shuts down.
func (e *Engine) Done() <-chan struct{} { return e.ctx.Done() }

// Stopped reports whether shutdown has been signalled.
func (e *Engine) Stopped() bool { return e.ctx.Err() != nil }

// Shutdown signals every worker to stop. The first cause wins.
func (e *Engine) Shutdown(cause error) {
	if !e.Stopped() {
		switch {
		case errors.Is(cause, errExit):
			e.logger.Info("exit requested, shutting down")
		case cause != nil:
			e.logger.Error("shutting down", "cause", cause)
		}
	}
	e.cancel(cause)
}

// Err reports the failure that stopped the engine. A requested exit or a
// cancelled parent context is not a failure.
func (e *Engine) Err() error {
	cause := context.Cause(e.ctx)
	if cause == nil || errors.Is(cause, errExit) || errors.Is(cause, context.Canceled) {
		return nil
	}
	return cause
}

// IsConnected reports whether frames are being transmitted.
func (e *Engine) IsConnected() bool { return e.connected.Load() }

// Step runs a single tick: ingestion, then the delay line, then emission.
// Any transport failure shuts the engine down and is returned.
func (e *Engine) Step() error {
	e.stepMu.Lock()
	defer e.stepMu.Unlock()
	if e.Stopped() {
		return ErrStopped
	}

	events, err := e.source.Drain(e.events[:0])
	e.events = events
	if err != nil {
		err = fmt.Errorf("read input events: %w", err)
		e.Shutdown(err)
		return err
	}

	applied := e.table.Tick(events)
	metrics.Ticks.Inc()
	metrics.EventsApplied.Add(float64(applied))
	metrics.PendingEvents.Set(float64(e.table.Pending()))

	if !e.connected.Load() {
		return nil
	}
	anarchy, bank := e.table.Snapshot()
	if err := e.sender.Send(wire.Build(anarchy, bank)); err != nil {
		err = fmt.Errorf("send frame: %w", err)
		e.Shutdown(err)
		return err
	}
	metrics.FramesSent.Inc()
	return nil
}

// Run steps once per tick until shutdown or until ticks is closed.
func (e *Engine) Run(ticks <-chan time.Time) {
	for {
		select {
		case <-e.ctx.Done():
			return
		case _, ok := <-ticks:
			if !ok {
				return
			}
			if e.Stopped() {
				return
			}
			if err := e.Step(); err != nil {
				return
			}
		}
	}
}

func (e *Engine) AnarchyMode() bool { return e.table.Anarchy() }

func (e *Engine) SetAnarchyMode(on bool) { e.table.SetAnarchy(on) }

func (e *Engine) IPs() []string { return e.sender.IPs() }

func (e *Engine) SetIPs(ips []string) error { return e.sender.SetIPs(ips) }

func (e *Engine) Delay(i int) (uint8, error) { return e.table.Delay(i) }

func (e *Engine) SetDelay(i int, delay uint8) error { return e.table.SetDelay(i, delay) }

func (e *Engine) LeftDeadzone(i int) (float32, error) { return e.table.LeftDeadzone(i) }

func (e *Engine) SetLeftDeadzone(i int, dz float32) error { return e.table.SetLeftDeadzone(i, dz) }

func (e *Engine) RightDeadzone(i int) (float32, error) { return e.table.RightDeadzone(i) }

func (e *Engine) SetRightDeadzone(i int, dz float32) error { return e.table.SetRightDeadzone(i, dz) }

func (e *Engine) Swap(i, j int) error { return e.table.Swap(i, j) }

// Connect starts transmitting frames. At least one destination is required.
func (e *Engine) Connect() error {
	if len(e.sender.IPs()) == 0 {
		return ErrNoTargets
	}
	e.connected.Store(true)
	e.logger.Info("sending frames", "ips", e.sender.IPs())
	return nil
}

// Disconnect stops transmitting frames.
func (e *Engine) Disconnect() error {
	if !e.connected.CompareAndSwap(true, false) {
		return ErrAlreadyDisconnected
	}
	e.logger.Info("stopped sending frames")
	return nil
}

// RunScript schedules steps on slot i. Each event fires after the slot's
// delay plus every wait that precedes it.
func (e *Engine) RunScript(i int, steps []input.ScriptStep) error {
	if !e.connected.Load() {
		return ErrNotConnected
	}
	events, offsets := input.Schedule(steps)
	for n, ev := range events {
		if err := e.table.Schedule(i, ev, offsets[n]); err != nil {
			return err
		}
	}
	return nil
}

// Slots snapshots every slot for reporting.
func (e *Engine) Slots() apitypes.SlotsResponse {
	anarchy, bank := e.table.Snapshot()
	owners := make(map[int]uint32, slots.NumSlots)
	for which, slot := range e.table.Assignments() {
		owners[slot] = which
	}
	resp := apitypes.SlotsResponse{
		Anarchy:   anarchy,
		Connected: e.connected.Load(),
		IPs:       e.sender.IPs(),
		Pending:   e.table.Pending(),
		Slots:     make([]apitypes.Slot, 0, slots.NumSlots),
	}
	for i, s := range bank {
		lx, ly := s.Left.Position()
		rx, ry := s.Right.Position()
		slot := apitypes.Slot{
			Index:         i,
			Type:          s.Type.String(),
			Delay:         s.Delay,
			LeftDeadzone:  s.Left.Deadzone,
			RightDeadzone: s.Right.Deadzone,
			Buttons:       uint32(s.Buttons),
			LeftX:         lx,
			LeftY:         ly,
			RightX:        rx,
			RightY:        ry,
		}
		if which, ok := owners[i]; ok {
			slot.Device = &which
		}
		resp.Slots = append(resp.Slots, slot)
	}
	return resp
}

// Exit stops transmission, signals shutdown and asks the input server to
// terminate.
func (e *Engine) Exit() error {
	e.connected.Store(false)
	e.Shutdown(errExit)
	if e.term == nil {
		return nil
	}
	return e.term.Exit()
}
