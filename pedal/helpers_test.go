package pedal

import (
	"sync"
)

// recordingTransport records every call in order.
type recordingTransport struct {
	mu       sync.Mutex
	calls    []string
	sent     []Message
	flushes  int
	sendErr  error
	flushErr error
}

func (r *recordingTransport) Send(m Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "send")
	if r.sendErr != nil {
		return r.sendErr
	}
	r.sent = append(r.sent, m)
	return nil
}

func (r *recordingTransport) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "flush")
	r.flushes++
	return r.flushErr
}

func (r *recordingTransport) snapshot() ([]string, []Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...), append([]Message(nil), r.sent...)
}

func (r *recordingTransport) reset() {
	r.mu.Lock()
	r.calls, r.sent, r.flushes = nil, nil, 0
	r.mu.Unlock()
}

func newTestEngine(opts ...EngineOption) (*Engine, *VirtualLines, *recordingTransport) {
	lines := NewVirtualLines()
	tr := &recordingTransport{}
	tracker := NewTracker(DefaultMap, lines)
	if err := tracker.Configure(); err != nil {
		panic(err)
	}
	return NewEngine(DefaultMap, tracker, tr, opts...), lines, tr
}

func press(lines *VirtualLines, slots ...int) {
	for _, s := range slots {
		lines.Press(DefaultMap.Line(s))
	}
}

func release(lines *VirtualLines, slots ...int) {
	for _, s := range slots {
		lines.Release(DefaultMap.Line(s))
	}
}
