package main

import "github.com/rhpvorderman/midi-organ-project/pedal"

// Two piano-style rows of the computer keyboard cover two octaves of
// pedals, starting at the octave selected with , and .
var (
	lowerRow = []string{"z", "s", "x", "d", "c", "v", "g", "b", "h", "n", "j", "m"}
	upperRow = []string{"q", "2", "w", "3", "e", "r", "5", "t", "6", "y", "7", "u"}
)

// KeyMap translates terminal keys into pedal slots.
type KeyMap struct {
	pedals *pedal.PedalMap
	octave int
}

func NewKeyMap(m *pedal.PedalMap) *KeyMap {
	return &KeyMap{pedals: m}
}

// Octave returns the index of the first slot on the lower row.
func (k *KeyMap) Octave() int { return k.octave }

// Shift moves the keyboard by delta octaves, staying within the board.
func (k *KeyMap) Shift(delta int) {
	o := k.octave + delta
	last := (k.pedals.Len() - 1) / 12
	if o < 0 {
		o = 0
	}
	if o > last {
		o = last
	}
	k.octave = o
}

// Slot returns the pedal slot played by key.
func (k *KeyMap) Slot(key string) (int, bool) {
	for row, keys := range [][]string{lowerRow, upperRow} {
		for semi, name := range keys {
			if name != key {
				continue
			}
			slot := (k.octave+row)*12 + semi
			if slot >= k.pedals.Len() {
				return 0, false
			}
			return slot, true
		}
	}
	return 0, false
}

// Label returns the key that plays slot, or "" if it is off the keyboard.
func (k *KeyMap) Label(slot int) string {
	rel := slot - k.octave*12
	switch {
	case rel >= 0 && rel < 12:
		return lowerRow[rel]
	case rel >= 12 && rel < 24:
		return upperRow[rel-12]
	}
	return ""
}
