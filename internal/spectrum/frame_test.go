package spectrum

import "testing"

func TestBandRangeBinsNeverEmpty(t *testing.T) {
	tests := []struct {
		name   string
		r      BandRange
		n      int
		lo, hi int
	}{
		{"bass slice", BandRange{0, 0.08}, 1024, 0, 81},
		{"mid slice", BandRange{0.08, 0.35}, 1024, 81, 358},
		{"full range", BandRange{0, 1}, 16, 0, 16},
		{"zero width", BandRange{0.5, 0.5}, 16, 8, 9},
		{"inverted", BandRange{0.8, 0.2}, 16, 12, 13},
		{"start at end", BandRange{1, 1}, 16, 15, 16},
		{"past end", BandRange{1.5, 2}, 16, 15, 16},
		{"negative start", BandRange{-0.5, 0.25}, 16, 0, 4},
		{"single bin frame", BandRange{0, 1}, 1, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := tt.r.Bins(tt.n)
			if lo != tt.lo || hi != tt.hi {
				t.Fatalf("Bins(%d) = [%d, %d), want [%d, %d)", tt.n, lo, hi, tt.lo, tt.hi)
			}
			if hi <= lo {
				t.Fatalf("Bins(%d) = [%d, %d): empty window", tt.n, lo, hi)
			}
			if lo < 0 || hi > tt.n {
				t.Fatalf("Bins(%d) = [%d, %d): out of bounds", tt.n, lo, hi)
			}
		})
	}
}

func TestAverageNormalizes(t *testing.T) {
	f := make(Frame, 100)
	for i := range f {
		f[i] = 255
	}
	if got := Average(f, BandRange{0, 1}); got != 1 {
		t.Fatalf("Average(full-scale) = %v, want 1", got)
	}

	for i := range f {
		f[i] = 0
	}
	f[10] = 200
	// Window [10, 20) holds one bin at 200 and nine at zero.
	got := Average(f, BandRange{0.1, 0.2})
	want := 200.0 / 10 / 255
	if diff := got - want; diff > 1e-12 || diff < -1e-12 {
		t.Fatalf("Average() = %v, want %v", got, want)
	}
}

func TestAverageEmptyFrame(t *testing.T) {
	if got := Average(nil, BandRange{0, 0.08}); got != 0 {
		t.Fatalf("Average(nil frame) = %v, want 0", got)
	}
	if got := Average(Frame{}, BandRange{0.2, 0.8}); got != 0 {
		t.Fatalf("Average(empty frame) = %v, want 0", got)
	}
}

func TestAverageStaysInUnitRange(t *testing.T) {
	f := make(Frame, 33)
	for i := range f {
		f[i] = byte(i * 7)
	}
	ranges := []BandRange{
		{0, 0.08}, {0.08, 0.35}, {0.9, 4}, {-1, 0.5}, {0.3, 0.3},
	}
	for _, r := range ranges {
		got := Average(f, r)
		if got < 0 || got > 1 {
			t.Fatalf("Average(%+v) = %v, want value in [0, 1]", r, got)
		}
	}
}
