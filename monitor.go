package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rhpvorderman/midi-organ-project/pedal"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	pedalStyle   = lipgloss.NewStyle().Width(4).Align(lipgloss.Center).Foreground(lipgloss.Color("245"))
	pressedStyle = pedalStyle.Bold(true).Foreground(lipgloss.Color("16")).Background(lipgloss.Color("214"))
	sharpStyle   = pedalStyle.Foreground(lipgloss.Color("240"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// noteEventMsg carries an engine event into the UI.
type noteEventMsg pedal.Event

// Monitor is the terminal view of the pedalboard. With a VirtualLines it
// also plays the pedals from the computer keyboard.
type Monitor struct {
	pedals  *pedal.PedalMap
	engine  *pedal.Engine
	virtual *pedal.VirtualLines
	keys    *KeyMap
	events  <-chan pedal.Event
	status  func() string

	mask pedal.Mask
	last []string
}

const monitorHistory = 6

func NewMonitor(e *pedal.Engine, virtual *pedal.VirtualLines, events <-chan pedal.Event, status func() string) Monitor {
	return Monitor{
		pedals:  e.Pedals(),
		engine:  e,
		virtual: virtual,
		keys:    NewKeyMap(e.Pedals()),
		events:  events,
		status:  status,
	}
}

func listenForEvents(events <-chan pedal.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return noteEventMsg(ev)
	}
}

func (m Monitor) Init() tea.Cmd {
	return listenForEvents(m.events)
}

func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			return m, tea.Quit
		case ",":
			m.keys.Shift(-1)
		case ".":
			m.keys.Shift(1)
		default:
			if m.virtual == nil {
				break
			}
			if slot, ok := m.keys.Slot(msg.String()); ok {
				m.virtual.Toggle(m.pedals.Line(slot))
			}
		}

	case noteEventMsg:
		m.mask = msg.Mask
		m.last = append(m.last, fmt.Sprintf("%-16s %s", msg.Message.String(), pedal.PitchName(msg.Message.Pitch)))
		if len(m.last) > monitorHistory {
			m.last = m.last[len(m.last)-monitorHistory:]
		}
		return m, listenForEvents(m.events)
	}
	return m, nil
}

func (m Monitor) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Organ pedals"))
	b.WriteString("\n\n")

	var names, keys []string
	for i := 0; i < m.pedals.Len(); i++ {
		name := pedal.PitchName(m.pedals.Pitch(i))
		style := pedalStyle
		if strings.Contains(name, "#") {
			style = sharpStyle
		}
		if m.mask.Has(i) {
			style = pressedStyle
		}
		names = append(names, style.Render(name))
		keys = append(keys, pedalStyle.Render(m.keys.Label(i)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, names...))
	b.WriteString("\n")
	if m.virtual != nil {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, keys...))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for _, l := range m.last {
		b.WriteString(l)
		b.WriteString("\n")
	}

	scans, sent := m.engine.Stats()
	footer := fmt.Sprintf("pressed %d  scans %d  sent %d", m.mask.Count(), scans, sent)
	if m.status != nil {
		footer += "  " + m.status()
	}
	b.WriteString("\n" + mutedStyle.Render(footer) + "\n")
	if m.virtual != nil {
		b.WriteString(mutedStyle.Render("keys toggle pedals  , . octave  esc quit") + "\n")
	} else {
		b.WriteString(mutedStyle.Render("esc quit") + "\n")
	}
	return b.String()
}
