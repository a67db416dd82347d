// Package pedal turns the switch states of an organ pedalboard into MIDI
// note events.
//
// A PedalMap pairs every key slot with a hardware line and a pitch. A
// Tracker samples the lines and diffs them against the previous snapshot,
// the Encoder turns each transition into a Note On/Off Message, and an
// Engine hands the messages to a Transport. Engine.Scan is driven either by
// an InterruptScheduler or a PollingScheduler.
package pedal

import (
	"errors"
	"fmt"
)

// MaxSlots is the number of key slots that fit in a Mask.
const MaxSlots = 32

// LineID identifies a hardware input line (a pin number on the board).
type LineID uint8

// KeySlot pairs a hardware line with the MIDI pitch it plays.
type KeySlot struct {
	Line  LineID
	Pitch uint8
}

// ErrInvalidMap is wrapped by every PedalMap validation error.
var ErrInvalidMap = errors.New("pedal: invalid pedal map")

// PedalMap is an ordered, immutable table of key slots. A slot's index is
// its bit position in every Mask.
type PedalMap struct {
	slots []KeySlot
}

// NewPedalMap validates slots and returns the map. Line IDs and pitches
// must be unique, and pitches must increase with the slot index.
func NewPedalMap(slots []KeySlot) (*PedalMap, error) {
	if len(slots) == 0 {
		return nil, fmt.Errorf("%w: no slots", ErrInvalidMap)
	}
	if len(slots) > MaxSlots {
		return nil, fmt.Errorf("%w: %d slots, at most %d fit a mask", ErrInvalidMap, len(slots), MaxSlots)
	}
	seen := make(map[LineID]int, len(slots))
	for i, s := range slots {
		if s.Pitch > 127 {
			return nil, fmt.Errorf("%w: slot %d pitch %d is not a 7-bit note", ErrInvalidMap, i, s.Pitch)
		}
		if j, dup := seen[s.Line]; dup {
			return nil, fmt.Errorf("%w: slots %d and %d share line %d", ErrInvalidMap, j, i, s.Line)
		}
		seen[s.Line] = i
		if i > 0 && s.Pitch <= slots[i-1].Pitch {
			return nil, fmt.Errorf("%w: slot %d pitch %d does not ascend from %d", ErrInvalidMap, i, s.Pitch, slots[i-1].Pitch)
		}
	}
	m := &PedalMap{slots: make([]KeySlot, len(slots))}
	copy(m.slots, slots)
	return m, nil
}

// MustPedalMap is like NewPedalMap but panics on an invalid table.
func MustPedalMap(slots []KeySlot) *PedalMap {
	m, err := NewPedalMap(slots)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *PedalMap) Len() int { return len(m.slots) }

func (m *PedalMap) Slot(i int) KeySlot { return m.slots[i] }

func (m *PedalMap) Line(i int) LineID { return m.slots[i].Line }

func (m *PedalMap) Pitch(i int) uint8 { return m.slots[i].Pitch }

// Slots returns a copy of the table.
func (m *PedalMap) Slots() []KeySlot {
	out := make([]KeySlot, len(m.slots))
	copy(out, m.slots)
	return out
}

// Lines returns the line of every slot, in slot order.
func (m *PedalMap) Lines() []LineID {
	out := make([]LineID, len(m.slots))
	for i, s := range m.slots {
		out[i] = s.Line
	}
	return out
}

// IndexOfPitch returns the slot that plays pitch.
func (m *PedalMap) IndexOfPitch(pitch uint8) (int, bool) {
	for i, s := range m.slots {
		if s.Pitch == pitch {
			return i, true
		}
	}
	return 0, false
}
