package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.bug.st/serial"

	"github.com/rhpvorderman/midi-organ-project/pedal"
)

const (
	maxLines          = levelBytes * 8
	serialReadTimeout = 100 * time.Millisecond
)

// SerialLines exposes the pins of a board that streams line-state frames
// over a serial link. Lines read high (released) until the first frame.
type SerialLines struct {
	r      io.ReadCloser
	levels atomic.Uint64
	frames atomic.Uint64

	mu         sync.Mutex
	configured map[pedal.LineID]bool
	handlers   map[pedal.LineID][]func()
	scanner    FrameScanner
}

// OpenSerial opens the named serial device at the given baud rate.
func OpenSerial(name string, baud int) (*SerialLines, error) {
	mode := &serial.Mode{BaudRate: baud}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", name, err)
	}
	if err := p.SetReadTimeout(serialReadTimeout); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("serial: read timeout: %w", err)
	}
	logger.Info("serial: port opened", "device", name, "baud", baud)
	return NewSerialLines(p), nil
}

func NewSerialLines(r io.ReadCloser) *SerialLines {
	s := &SerialLines{
		r:          r,
		configured: make(map[pedal.LineID]bool),
		handlers:   make(map[pedal.LineID][]func()),
	}
	s.levels.Store(^uint64(0))
	return s
}

// Configure records the line. The board enables its own pull-ups.
func (s *SerialLines) Configure(id pedal.LineID) error {
	if int(id) >= maxLines {
		return fmt.Errorf("serial: line %d outside the %d-line frame", id, maxLines)
	}
	s.mu.Lock()
	s.configured[id] = true
	s.mu.Unlock()
	return nil
}

func (s *SerialLines) Read(id pedal.LineID) bool {
	return s.levels.Load()&(1<<uint(id)) != 0
}

func (s *SerialLines) OnChange(id pedal.LineID, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.configured[id] {
		return fmt.Errorf("serial: line %d not configured", id)
	}
	s.handlers[id] = append(s.handlers[id], fn)
	return nil
}

// Stats returns the number of good and bad frames received.
func (s *SerialLines) Stats() (frames uint64, bad int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames.Load(), s.scanner.Bad
}

// Run reads frames until ctx is done or the port fails.
func (s *SerialLines) Run(ctx context.Context) error {
	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := s.r.Read(buf)
		if n > 0 {
			s.mu.Lock()
			frames := s.scanner.Feed(buf[:n])
			s.mu.Unlock()
			for _, f := range frames {
				s.apply(f)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return io.EOF
			}
			return fmt.Errorf("serial: read: %w", err)
		}
	}
}

func (s *SerialLines) apply(f Frame) {
	s.frames.Add(1)
	old := s.levels.Swap(f.Levels)
	changed := old ^ f.Levels
	if changed == 0 {
		return
	}
	logger.Debug("serial: line levels changed", "seq", f.Seq, "changed", fmt.Sprintf("%#x", changed))

	s.mu.Lock()
	var fire []func()
	for id, hs := range s.handlers {
		if changed&(1<<uint(id)) != 0 {
			fire = append(fire, hs...)
		}
	}
	s.mu.Unlock()
	for _, fn := range fire {
		fn()
	}
}

// Close closes the underlying serial port.
func (s *SerialLines) Close() error {
	logger.Info("serial: closing port")
	return s.r.Close()
}
