package pedal

import "strconv"

// MIDI note numbers of the pedal range.
const (
	NoteC1 uint8 = 24 + iota
	NoteDb1
	NoteD1
	NoteEb1
	NoteE1
	NoteF1
	NoteGb1
	NoteG1
	NoteAb1
	NoteA1
	NoteBb1
	NoteB1
	NoteC2
	NoteDb2
	NoteD2
	NoteEb2
	NoteE2
	NoteF2
	NoteGb2
	NoteG2
	NoteAb2
	NoteA2
	NoteBb2
	NoteB2
	NoteC3
	NoteDb3
	NoteD3
	NoteEb3
	NoteE3
	NoteF3
	NoteGb3
	NoteG3
)

// DefaultSlots is the wiring of the 30-key pedalboard. The board's pins run
// up the left side and back down the right. Gb3 (pin 38) and G3 (pin 36)
// have no pedal.
var DefaultSlots = []KeySlot{
	{30, NoteC1},
	{28, NoteDb1},
	{26, NoteD1},
	{24, NoteEb1},
	{22, NoteE1},
	{20, NoteF1},
	{21, NoteGb1},
	{23, NoteG1},
	{25, NoteAb1},
	{27, NoteA1},
	{29, NoteBb1},
	{31, NoteB1},
	{33, NoteC2},
	{35, NoteDb2},
	{37, NoteD2},
	{39, NoteEb2},
	{41, NoteE2},
	{43, NoteF2},
	{45, NoteGb2},
	{47, NoteG2},
	{49, NoteAb2},
	{51, NoteA2},
	{53, NoteBb2},
	{52, NoteB2},
	{50, NoteC3},
	{48, NoteDb3},
	{46, NoteD3},
	{44, NoteEb3},
	{42, NoteE3},
	{40, NoteF3},
}

// DefaultMap is DefaultSlots validated at init.
var DefaultMap = MustPedalMap(DefaultSlots)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// PitchName renders a MIDI note number as e.g. "C1".
func PitchName(pitch uint8) string {
	return noteNames[pitch%12] + strconv.Itoa(int(pitch)/12-1)
}
