package pedal

import (
	"math/bits"
	"sync"
)

// Mask holds one bit per slot; bit i set means slot i's key is pressed.
type Mask uint32

func (m Mask) Has(i int) bool { return m&(1<<uint(i)) != 0 }

// Count returns the number of pressed keys.
func (m Mask) Count() int { return bits.OnesCount32(uint32(m)) }

// Direction says which way a key moved.
type Direction uint8

const (
	Activated Direction = iota + 1
	Deactivated
)

func (d Direction) String() string {
	switch d {
	case Activated:
		return "activated"
	case Deactivated:
		return "deactivated"
	}
	return "unknown"
}

// Transition is a change of one slot between two scans.
type Transition struct {
	Slot      int
	Direction Direction
}

// Tracker remembers the previous Mask and reports what changed.
type Tracker struct {
	pedals    *PedalMap
	lines     Lines
	activeLow bool

	mu   sync.Mutex
	prev Mask
}

type TrackerOption func(*Tracker)

// WithActiveHigh treats a high line as a pressed key. The default assumes
// pull-up wiring where a pressed key reads low.
func WithActiveHigh() TrackerOption {
	return func(t *Tracker) { t.activeLow = false }
}

func NewTracker(m *PedalMap, lines Lines, opts ...TrackerOption) *Tracker {
	t := &Tracker{pedals: m, lines: lines, activeLow: true}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Configure sets every slot's line up as a pulled-high input.
func (t *Tracker) Configure() error {
	for _, id := range t.pedals.Lines() {
		if err := t.lines.Configure(id); err != nil {
			return err
		}
	}
	return nil
}

// Sample reads every line and returns the current Mask.
func (t *Tracker) Sample() Mask {
	var cur Mask
	for i := 0; i < t.pedals.Len(); i++ {
		active := t.lines.Read(t.pedals.Line(i)) != t.activeLow
		if active {
			cur |= 1 << uint(i)
		}
	}
	return cur
}

// Diff lists the slots whose bit differs between prev and cur, in
// ascending slot order.
func Diff(prev, cur Mask) []Transition {
	changed := prev ^ cur
	if changed == 0 {
		return nil
	}
	out := make([]Transition, 0, changed.Count())
	for changed != 0 {
		i := bits.TrailingZeros32(uint32(changed))
		d := Deactivated
		if cur.Has(i) {
			d = Activated
		}
		out = append(out, Transition{Slot: i, Direction: d})
		changed &^= 1 << uint(i)
	}
	return out
}

// Scan samples the lines, diffs against the previous Mask and hands the
// new Mask and its transitions (possibly none) to emit. The new Mask
// becomes the previous one after emit returns, whatever it returns. Scans
// are serialized: a concurrent call waits and then diffs against the
// committed state.
func (t *Tracker) Scan(emit func(cur Mask, trs []Transition) error) ([]Transition, error) {
	return t.scan(nil, emit)
}

// scan is Scan with begin run first inside the critical section, before
// any line is read.
func (t *Tracker) scan(begin func(), emit func(cur Mask, trs []Transition) error) ([]Transition, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if begin != nil {
		begin()
	}
	cur := t.Sample()
	trs := Diff(t.prev, cur)
	var err error
	if emit != nil {
		err = emit(cur, trs)
	}
	t.prev = cur
	return trs, err
}

// Previous returns the last committed Mask.
func (t *Tracker) Previous() Mask {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.prev
}

// Reset forgets the previous Mask, so the next scan reports every held key
// again.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.prev = 0
	t.mu.Unlock()
}
