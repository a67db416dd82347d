package pedal

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultPollInterval keeps a polled key within the 1 ms latency budget.
const DefaultPollInterval = time.Millisecond

// Scheduler decides when the engine scans. Run blocks until ctx is done.
type Scheduler interface {
	Run(ctx context.Context) error
}

// InterruptScheduler scans whenever a line changes level and sleeps
// otherwise.
type InterruptScheduler struct {
	engine  *Engine
	lines   TriggerLines
	pending chan struct{}

	arm    sync.Once
	armErr error
}

func NewInterruptScheduler(e *Engine, lines TriggerLines) *InterruptScheduler {
	return &InterruptScheduler{
		engine:  e,
		lines:   lines,
		pending: make(chan struct{}, 1),
	}
}

// Trigger requests a scan. It never blocks, so it is safe to call from an
// interrupt handler. Triggers that arrive while a scan is pending collapse
// into that scan; it samples the real levels, so no edge is lost.
func (s *InterruptScheduler) Trigger() {
	select {
	case s.pending <- struct{}{}:
	default:
	}
}

// Run may be called again after it returns; the line triggers are only
// registered by the first call.
func (s *InterruptScheduler) Run(ctx context.Context) error {
	s.arm.Do(func() { s.armErr = s.register() })
	if s.armErr != nil {
		return s.armErr
	}
	s.engine.info("interrupt scheduler running", "lines", s.engine.pedals.Len())

	// Keys held at power-on have no edge to report them.
	s.scan()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.pending:
			s.scan()
		}
	}
}

func (s *InterruptScheduler) register() error {
	if err := s.engine.tracker.Configure(); err != nil {
		return fmt.Errorf("configure lines: %w", err)
	}
	for _, id := range s.engine.pedals.Lines() {
		if err := s.lines.OnChange(id, s.Trigger); err != nil {
			return fmt.Errorf("line %d trigger: %w", id, err)
		}
	}
	return nil
}

func (s *InterruptScheduler) scan() {
	if _, err := s.engine.Scan(); err != nil {
		s.engine.warn("scan failed", "err", err)
	}
}

// PollingScheduler scans all lines at a fixed interval.
type PollingScheduler struct {
	engine   *Engine
	interval time.Duration
}

// NewPollingScheduler returns a poller; a non-positive interval means
// DefaultPollInterval.
func NewPollingScheduler(e *Engine, interval time.Duration) *PollingScheduler {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &PollingScheduler{engine: e, interval: interval}
}

func (p *PollingScheduler) Interval() time.Duration { return p.interval }

func (p *PollingScheduler) Run(ctx context.Context) error {
	if err := p.engine.tracker.Configure(); err != nil {
		return fmt.Errorf("configure lines: %w", err)
	}
	p.engine.info("polling scheduler running", "lines", p.engine.pedals.Len(), "interval", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if _, err := p.engine.Scan(); err != nil {
			p.engine.warn("scan failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
