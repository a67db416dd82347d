package pedal

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Transport delivers messages to the host. Flush asks it to push out
// everything buffered so far.
type Transport interface {
	Send(Message) error
	Flush() error
}

// State is the scheduling state of an Engine.
type State int32

const (
	StateIdle State = iota
	StateScanning
)

func (s State) String() string {
	if s == StateScanning {
		return "scanning"
	}
	return "idle"
}

// Event is passed to an observer for every message the engine sends.
type Event struct {
	Transition Transition
	Message    Message
	Mask       Mask
}

// Engine runs one scan cycle: sample, diff, encode, send, flush.
type Engine struct {
	pedals    *PedalMap
	tracker   *Tracker
	encoder   Encoder
	transport Transport
	logger    *slog.Logger
	observer  func(Event)

	state atomic.Int32
	scans atomic.Uint64
	sent  atomic.Uint64
}

type EngineOption func(*Engine)

// WithLogger enables diagnostics. Without it the engine logs nothing.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithObserver registers fn to be called, inside the scan, for every
// message sent. fn must not block.
func WithObserver(fn func(Event)) EngineOption {
	return func(e *Engine) { e.observer = fn }
}

func NewEngine(m *PedalMap, tracker *Tracker, transport Transport, opts ...EngineOption) *Engine {
	e := &Engine{
		pedals:    m,
		tracker:   tracker,
		encoder:   NewEncoder(m),
		transport: transport,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) Tracker() *Tracker { return e.tracker }

func (e *Engine) Pedals() *PedalMap { return e.pedals }

func (e *Engine) State() State { return State(e.state.Load()) }

// Stats returns how many scans ran and how many messages were sent.
func (e *Engine) Stats() (scans, sent uint64) {
	return e.scans.Load(), e.sent.Load()
}

// Scan runs one cycle. Each transition is sent in slot order and the
// transport is flushed once at the end. A scan without transitions does
// not touch the transport.
func (e *Engine) Scan() ([]Transition, error) {
	return e.tracker.scan(e.begin, e.emit)
}

func (e *Engine) begin() {
	e.state.Store(int32(StateScanning))
	e.scans.Add(1)
}

func (e *Engine) emit(cur Mask, trs []Transition) error {
	defer e.state.Store(int32(StateIdle))

	if len(trs) == 0 {
		return nil
	}
	var errs []error
	for _, t := range trs {
		msg := e.encoder.Encode(t)
		e.debug(msg.String(), "slot", t.Slot, "note", PitchName(msg.Pitch), "kind", msg.Kind)
		if err := e.transport.Send(msg); err != nil {
			errs = append(errs, fmt.Errorf("send %s %d: %w", msg.Kind, msg.Pitch, err))
			continue
		}
		e.sent.Add(1)
		if e.observer != nil {
			e.observer(Event{Transition: t, Message: msg, Mask: cur})
		}
	}
	if err := e.transport.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("flush: %w", err))
	}
	return errors.Join(errs...)
}

func (e *Engine) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

func (e *Engine) info(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Info(msg, args...)
	}
}

func (e *Engine) warn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}
