package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/rhpvorderman/midi-organ-project/pedal"
)

// -------------------- Hot-swap config --------------------

// PREFERRED_PATTERNS: outputs matching any of these are picked first.
var PREFERRED_PATTERNS = []string{"Organ", "Hauptwerk", "GrandOrgue"}

// EXCLUDED_PATTERNS: virtual/system ports that are never auto-connected.
var EXCLUDED_PATTERNS = []string{"Midi Through", "Through Port", "Dummy"}

const midiRescanInterval = 1000 * time.Millisecond

// outDriver is the part of a gomidi driver the output needs.
type outDriver interface {
	Outs() ([]drivers.Out, error)
	Close() error
}

// -------------------- MIDIOut --------------------

// MIDIOut is the pedal.Transport of the host bridge. Messages are buffered
// by Send and written in one go by Flush.
//
// Without a virtual port it watches the available outputs and keeps a
// connection to the preferred one, handling hot-plug and hot-unplug.
// onConnect is called (from a goroutine) whenever a port is opened, so the
// caller can re-announce held pedals.
type MIDIOut struct {
	mu           sync.Mutex
	drv          outDriver
	out          drivers.Out
	connected    bool
	virtual      bool
	selectedName string
	lastRescanAt time.Time
	preferred    []string
	pending      []midi.Message

	onConnect func()
}

// NewMIDIOut creates a watching output on the rtmidi driver. Call Tick
// regularly and Close when done.
func NewMIDIOut(preferred string, onConnect func()) (*MIDIOut, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	return newMIDIOut(drv, preferred, onConnect), nil
}

func newMIDIOut(drv outDriver, preferred string, onConnect func()) *MIDIOut {
	m := &MIDIOut{drv: drv, onConnect: onConnect, preferred: PREFERRED_PATTERNS}
	if preferred != "" {
		m.preferred = append([]string{preferred}, PREFERRED_PATTERNS...)
	}
	return m
}

// NewVirtualMIDIOut opens a virtual output port that MIDI software on this
// machine can connect to.
func NewVirtualMIDIOut(name string) (*MIDIOut, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	out, err := drv.OpenVirtualOut(name)
	if err != nil {
		_ = drv.Close()
		return nil, fmt.Errorf("virtual out %q: %w", name, err)
	}
	logger.Info("midi: virtual output opened", "port", name)
	return &MIDIOut{
		drv:          drv,
		out:          out,
		connected:    true,
		virtual:      true,
		selectedName: name,
	}, nil
}

// Send queues msg for the next Flush. With no port connected the message
// is dropped.
func (m *MIDIOut) Send(msg pedal.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		logger.Debug("midi: no output, dropping", "msg", msg.String())
		return nil
	}
	m.pending = append(m.pending, msg.MIDI())
	return nil
}

// Flush writes all queued messages to the port.
func (m *MIDIOut) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pending := m.pending
	m.pending = m.pending[:0]
	if !m.connected || len(pending) == 0 {
		return nil
	}
	for _, msg := range pending {
		if err := m.out.Send(msg); err != nil {
			name := m.selectedName
			if !m.virtual {
				m.closeConn()
				m.lastRescanAt = time.Time{} // rescan immediately next tick
			}
			return fmt.Errorf("midi: send to %q: %w", name, err)
		}
	}
	logger.Debug("midi: flushed", "messages", len(pending), "device", m.selectedName)
	return nil
}

// Connected reports the name of the open port.
func (m *MIDIOut) Connected() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selectedName, m.connected
}

// Close shuts down the active MIDI connection and the driver.
func (m *MIDIOut) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeConn()
	_ = m.drv.Close()
}

// Tick should be called on a regular interval from the main loop. It scans
// for outputs, auto-connects to a preferred one and detects disappearances.
func (m *MIDIOut) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.virtual {
		return
	}

	now := time.Now()
	if !m.lastRescanAt.IsZero() && now.Sub(m.lastRescanAt) < midiRescanInterval {
		return
	}
	m.lastRescanAt = now

	outputs := m.listOutputs()

	if m.connected {
		for _, o := range outputs {
			if o.String() == m.selectedName {
				return
			}
		}
		logger.Warn("midi: device disappeared", "device", m.selectedName)
		m.closeConn()
		m.lastRescanAt = time.Time{}
		return
	}

	if len(outputs) == 0 {
		return
	}
	cand, ok := m.pickPreferred(outputs)
	if !ok {
		return
	}
	if err := m.open(cand); err != nil {
		logger.Error("midi: connect failed", "device", cand.String(), "err", err)
		return
	}
	if m.onConnect != nil {
		go m.onConnect()
	}
}

// -------------------- internal --------------------

func (m *MIDIOut) listOutputs() []drivers.Out {
	outs, err := m.drv.Outs()
	if err != nil {
		logger.Error("midi: list outputs failed", "err", err)
		return nil
	}
	var kept []drivers.Out
	var names []string
	for _, o := range outs {
		name := o.String()
		excluded := false
		for _, pat := range EXCLUDED_PATTERNS {
			if containsCI(name, pat) {
				excluded = true
				break
			}
		}
		if excluded {
			logger.Debug("midi: output excluded", "device", name)
			continue
		}
		kept = append(kept, o)
		names = append(names, name)
	}
	logger.Debug("midi: outputs found", "count", len(kept), "devices", strings.Join(names, ", "))
	return kept
}

func (m *MIDIOut) pickPreferred(outputs []drivers.Out) (drivers.Out, bool) {
	for _, pat := range m.preferred {
		for _, o := range outputs {
			if containsCI(o.String(), pat) {
				return o, true
			}
		}
	}
	if len(outputs) == 1 {
		return outputs[0], true
	}
	return nil, false
}

func (m *MIDIOut) closeConn() {
	if m.out != nil {
		_ = m.out.Close()
		m.out = nil
	}
	m.connected = false
	m.selectedName = ""
	m.pending = m.pending[:0]
}

func (m *MIDIOut) open(o drivers.Out) error {
	if err := o.Open(); err != nil {
		return fmt.Errorf("open %q: %w", o.String(), err)
	}
	m.out = o
	m.connected = true
	m.selectedName = o.String()
	logger.Info("midi: connected", "device", m.selectedName)
	return nil
}

// -------------------- utility --------------------

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
