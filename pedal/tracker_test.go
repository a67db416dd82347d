package pedal

import (
	"reflect"
	"sync"
	"testing"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name      string
		prev, cur Mask
		want      []Transition
	}{
		{"unchanged", 0b1010, 0b1010, nil},
		{"press", 0, 0b001, []Transition{{0, Activated}}},
		{"release", 0b100, 0, []Transition{{2, Deactivated}}},
		{"ascending order", 0, 1<<7 | 1<<3, []Transition{{3, Activated}, {7, Activated}}},
		{"mixed", 1 << 5, 1 << 2, []Transition{{2, Activated}, {5, Deactivated}}},
		{"top bit", 0, 1 << 31, []Transition{{31, Activated}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Diff(tt.prev, tt.cur); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Diff(%b, %b) = %v, want %v", tt.prev, tt.cur, got, tt.want)
			}
		})
	}
}

func TestSampleTreatsLowAsActive(t *testing.T) {
	lines := NewVirtualLines()
	tr := NewTracker(DefaultMap, lines)
	if got := tr.Sample(); got != 0 {
		t.Fatalf("released board sampled as %b", got)
	}
	press(lines, 4)
	if got := tr.Sample(); got != 1<<4 {
		t.Fatalf("Sample() = %b, want %b", got, 1<<4)
	}
}

func TestSampleActiveHigh(t *testing.T) {
	lines := NewVirtualLines()
	tr := NewTracker(DefaultMap, lines, WithActiveHigh())
	want := Mask(1<<DefaultMap.Len() - 1)
	press(lines, 0)
	want &^= 1
	if got := tr.Sample(); got != want {
		t.Fatalf("Sample() = %b, want %b", got, want)
	}
}

func TestScanUnchangedIsEmpty(t *testing.T) {
	lines := NewVirtualLines()
	tr := NewTracker(DefaultMap, lines)
	press(lines, 1, 9)
	if trs, _ := tr.Scan(nil); len(trs) != 2 {
		t.Fatalf("first scan = %v, want two activations", trs)
	}
	if trs, _ := tr.Scan(nil); len(trs) != 0 {
		t.Fatalf("second scan = %v, want none", trs)
	}
}

func TestScanSingleEdge(t *testing.T) {
	lines := NewVirtualLines()
	tr := NewTracker(DefaultMap, lines)
	press(lines, 0, 12, 29)
	tr.Scan(nil)

	press(lines, 6)
	trs, _ := tr.Scan(nil)
	want := []Transition{{6, Activated}}
	if !reflect.DeepEqual(trs, want) {
		t.Fatalf("Scan() = %v, want %v", trs, want)
	}
}

func TestScanReportsKeysHeldAtBoot(t *testing.T) {
	lines := NewVirtualLines()
	press(lines, 17)
	tr := NewTracker(DefaultMap, lines)
	trs, _ := tr.Scan(nil)
	want := []Transition{{17, Activated}}
	if !reflect.DeepEqual(trs, want) {
		t.Fatalf("first Scan() = %v, want %v", trs, want)
	}
}

func TestScanCommitsAfterEmit(t *testing.T) {
	lines := NewVirtualLines()
	tr := NewTracker(DefaultMap, lines)
	press(lines, 3)
	var during Mask
	tr.Scan(func(cur Mask, trs []Transition) error {
		during = tr.prev
		return nil
	})
	if during != 0 {
		t.Fatalf("previous advanced mid-scan to %b", during)
	}
	if got := tr.Previous(); got != 1<<3 {
		t.Fatalf("Previous() = %b, want %b", got, 1<<3)
	}
}

func TestReset(t *testing.T) {
	lines := NewVirtualLines()
	tr := NewTracker(DefaultMap, lines)
	press(lines, 2)
	tr.Scan(nil)
	tr.Reset()
	trs, _ := tr.Scan(nil)
	if len(trs) != 1 || trs[0] != (Transition{2, Activated}) {
		t.Fatalf("scan after Reset = %v", trs)
	}
}

func TestConcurrentScansReportOnce(t *testing.T) {
	lines := NewVirtualLines()
	tr := NewTracker(DefaultMap, lines)
	press(lines, 8)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			trs, _ := tr.Scan(nil)
			mu.Lock()
			total += len(trs)
			mu.Unlock()
		}()
	}
	wg.Wait()
	if total != 1 {
		t.Fatalf("concurrent scans reported %d transitions, want 1", total)
	}
}
