package pedal

import (
	"fmt"
	"sync"
)

// VirtualLines is an in-memory TriggerLines with pull-up wiring: lines
// read high until pressed. It backs the terminal pedalboard and tests.
type VirtualLines struct {
	mu       sync.Mutex
	low      map[LineID]bool
	handlers map[LineID][]func()
	known    map[LineID]bool
}

func NewVirtualLines() *VirtualLines {
	return &VirtualLines{
		low:      make(map[LineID]bool),
		handlers: make(map[LineID][]func()),
		known:    make(map[LineID]bool),
	}
}

func (v *VirtualLines) Configure(id LineID) error {
	v.mu.Lock()
	v.known[id] = true
	v.mu.Unlock()
	return nil
}

func (v *VirtualLines) Read(id LineID) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.low[id]
}

func (v *VirtualLines) OnChange(id LineID, fn func()) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.known[id] {
		return fmt.Errorf("line %d not configured", id)
	}
	v.handlers[id] = append(v.handlers[id], fn)
	return nil
}

// Press pulls the line low.
func (v *VirtualLines) Press(id LineID) { v.set(id, true) }

// Release lets the line float back high.
func (v *VirtualLines) Release(id LineID) { v.set(id, false) }

// Toggle flips the line and reports whether it is now pressed.
func (v *VirtualLines) Toggle(id LineID) bool {
	v.mu.Lock()
	pressed := !v.low[id]
	v.mu.Unlock()
	v.set(id, pressed)
	return pressed
}

func (v *VirtualLines) set(id LineID, low bool) {
	v.mu.Lock()
	if v.low[id] == low {
		v.mu.Unlock()
		return
	}
	v.low[id] = low
	hs := append([]func(){}, v.handlers[id]...)
	v.mu.Unlock()

	for _, fn := range hs {
		fn()
	}
}
