package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rhpvorderman/midi-organ-project/pedal"
)

type nopTransport struct{}

func (nopTransport) Send(pedal.Message) error { return nil }
func (nopTransport) Flush() error             { return nil }

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMonitorPlaysVirtualPedals(t *testing.T) {
	lines := pedal.NewVirtualLines()
	tracker := pedal.NewTracker(pedal.DefaultMap, lines)
	events := make(chan pedal.Event, 8)
	engine := pedal.NewEngine(pedal.DefaultMap, tracker, nopTransport{},
		pedal.WithObserver(func(ev pedal.Event) { events <- ev }))

	var model tea.Model = NewMonitor(engine, lines, events, nil)
	model, _ = model.Update(key("x"))
	if lines.Read(pedal.DefaultMap.Line(2)) {
		t.Fatal("x did not press the D1 pedal")
	}

	engine.Scan()
	ev := <-events
	model, _ = model.Update(noteEventMsg(ev))
	view := model.View()
	if !strings.Contains(view, "Play note: 26") {
		t.Fatalf("view misses the note:\n%s", view)
	}
	if !strings.Contains(view, "pressed 1") {
		t.Fatalf("view misses the pressed count:\n%s", view)
	}

	model, _ = model.Update(key("x"))
	if !lines.Read(pedal.DefaultMap.Line(2)) {
		t.Fatal("second x did not release the pedal")
	}
}

func TestMonitorQuits(t *testing.T) {
	engine := pedal.NewEngine(pedal.DefaultMap, pedal.NewTracker(pedal.DefaultMap, pedal.NewVirtualLines()), nopTransport{})
	m := NewMonitor(engine, nil, nil, func() string { return "midi: test" })
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("esc did not quit")
	}
	if !strings.Contains(m.View(), "midi: test") {
		t.Fatal("status missing from view")
	}
}
