package pedal

import (
	"strconv"

	"gitlab.com/gomidi/midi/v2"
)

const (
	Channel  uint8 = 0
	Velocity uint8 = 127
	// OffVelocity is sent with every Note Off.
	OffVelocity uint8 = 0
)

// EventKind is the USB-MIDI code index number of a message.
type EventKind uint8

const (
	NoteOff EventKind = 0x8
	NoteOn  EventKind = 0x9
)

func (k EventKind) String() string {
	switch k {
	case NoteOn:
		return "NoteOn"
	case NoteOff:
		return "NoteOff"
	}
	return "unknown"
}

// Message is one Note On or Note Off.
type Message struct {
	Kind     EventKind
	Channel  uint8
	Pitch    uint8
	Velocity uint8
}

// Packet frames m as a USB-MIDI event packet on cable 0:
//
//	[CIN][CIN<<4 | channel][pitch][velocity]
func (m Message) Packet() [4]byte {
	return [4]byte{
		byte(m.Kind),
		byte(m.Kind)<<4 | m.Channel&0x0f,
		m.Pitch & 0x7f,
		m.Velocity & 0x7f,
	}
}

// MIDI returns m as a gomidi channel message.
func (m Message) MIDI() midi.Message {
	if m.Kind == NoteOn {
		return midi.NoteOn(m.Channel, m.Pitch, m.Velocity)
	}
	if m.Velocity == 0 {
		return midi.NoteOff(m.Channel, m.Pitch)
	}
	return midi.NoteOffVelocity(m.Channel, m.Pitch, m.Velocity)
}

func (m Message) String() string {
	if m.Kind == NoteOn {
		return "Play note: " + strconv.Itoa(int(m.Pitch))
	}
	return "Stop note: " + strconv.Itoa(int(m.Pitch))
}

// Encoder turns transitions into messages.
type Encoder struct {
	pedals *PedalMap
}

func NewEncoder(m *PedalMap) Encoder {
	return Encoder{pedals: m}
}

func (e Encoder) Encode(t Transition) Message {
	msg := Message{Channel: Channel, Pitch: e.pedals.Pitch(t.Slot)}
	if t.Direction == Activated {
		msg.Kind = NoteOn
		msg.Velocity = Velocity
	} else {
		msg.Kind = NoteOff
		msg.Velocity = OffVelocity
	}
	return msg
}
