package pedal

import (
	"errors"
	"testing"
)

func TestDefaultMap(t *testing.T) {
	m := DefaultMap
	if m.Len() != 30 {
		t.Fatalf("Len() = %d, want 30", m.Len())
	}
	if got := m.Pitch(0); got != NoteC1 {
		t.Errorf("Pitch(0) = %d, want %d", got, NoteC1)
	}
	if got := m.Pitch(m.Len() - 1); got != NoteF3 {
		t.Errorf("last pitch = %d, want %d", got, NoteF3)
	}
	for _, p := range []uint8{NoteGb3, NoteG3} {
		if _, ok := m.IndexOfPitch(p); ok {
			t.Errorf("pitch %s should have no pedal", PitchName(p))
		}
	}
}

func TestDefaultMapIsBijective(t *testing.T) {
	m := DefaultMap
	for i := 0; i < m.Len(); i++ {
		for j := i + 1; j < m.Len(); j++ {
			if m.Pitch(i) == m.Pitch(j) {
				t.Errorf("slots %d and %d share pitch %d", i, j, m.Pitch(i))
			}
			if m.Line(i) == m.Line(j) {
				t.Errorf("slots %d and %d share line %d", i, j, m.Line(i))
			}
		}
		if i > 0 && m.Pitch(i) != m.Pitch(i-1)+1 {
			t.Errorf("slot %d pitch %d is not a semitone above %d", i, m.Pitch(i), m.Pitch(i-1))
		}
	}
}

func TestNewPedalMapRejects(t *testing.T) {
	tooMany := make([]KeySlot, MaxSlots+1)
	for i := range tooMany {
		tooMany[i] = KeySlot{Line: LineID(i), Pitch: uint8(i)}
	}
	tests := []struct {
		name  string
		slots []KeySlot
	}{
		{"empty", nil},
		{"too many", tooMany},
		{"duplicate line", []KeySlot{{1, 40}, {2, 41}, {1, 42}}},
		{"duplicate pitch", []KeySlot{{1, 40}, {2, 40}}},
		{"descending", []KeySlot{{1, 41}, {2, 40}}},
		{"not 7-bit", []KeySlot{{1, 100}, {2, 128}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPedalMap(tt.slots)
			if !errors.Is(err, ErrInvalidMap) {
				t.Fatalf("err = %v, want ErrInvalidMap", err)
			}
		})
	}
}

func TestMustPedalMapPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustPedalMap([]KeySlot{{1, 40}, {1, 41}})
}

func TestPedalMapCopiesInput(t *testing.T) {
	slots := []KeySlot{{1, 40}, {2, 41}}
	m := MustPedalMap(slots)
	slots[0].Pitch = 99
	if m.Pitch(0) != 40 {
		t.Fatalf("map changed with its input slice")
	}
	out := m.Slots()
	out[1].Line = 7
	if m.Line(1) != 2 {
		t.Fatalf("map changed through Slots()")
	}
}

func TestPitchName(t *testing.T) {
	tests := map[uint8]string{
		NoteC1:  "C1",
		NoteGb1: "F#1",
		NoteF3:  "F3",
		60:      "C4",
		0:       "C-1",
	}
	for p, want := range tests {
		if got := PitchName(p); got != want {
			t.Errorf("PitchName(%d) = %q, want %q", p, got, want)
		}
	}
}
