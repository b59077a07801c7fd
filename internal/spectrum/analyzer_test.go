package spectrum

import (
	"math"
	"testing"
)

type stubSampleSource struct {
	samples []float64
}

func (s *stubSampleSource) Samples(dst []float64) int {
	return copy(dst, s.samples)
}

func sineSource(n, periods int, amp float64) *stubSampleSource {
	src := &stubSampleSource{samples: make([]float64, n)}
	for i := range src.samples {
		src.samples[i] = amp * math.Sin(2*math.Pi*float64(periods)*float64(i)/float64(n))
	}
	return src
}

func TestNewAnalyzerValidatesOptions(t *testing.T) {
	src := &stubSampleSource{}
	tests := []struct {
		name string
		src  SampleSource
		opts Options
	}{
		{"nil source", nil, Options{}},
		{"fft size not power of two", src, Options{FFTSize: 1000}},
		{"fft size too small", src, Options{FFTSize: 16}},
		{"smoothing too high", src, Options{Smoothing: 1}},
		{"smoothing negative", src, Options{Smoothing: -0.1}},
		{"empty db range", src, Options{MinDb: -30, MaxDb: -100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewAnalyzer(tt.src, tt.opts); err == nil {
				t.Fatalf("NewAnalyzer(%+v) error = nil, want error", tt.opts)
			}
		})
	}
}

func TestAnalyzerSilenceIsAllZero(t *testing.T) {
	a, err := NewAnalyzer(&stubSampleSource{}, Options{FFTSize: 512})
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}
	if a.BinCount() != 256 {
		t.Fatalf("BinCount() = %d, want 256", a.BinCount())
	}

	f := a.Spectrum()
	if len(f) != 256 {
		t.Fatalf("Spectrum() returned %d bins, want 256", len(f))
	}
	for i, v := range f {
		if v != 0 {
			t.Fatalf("Spectrum()[%d] = %d on silence, want 0", i, v)
		}
	}
}

func TestAnalyzerPeaksAtToneBin(t *testing.T) {
	const bin = 8
	a, err := NewAnalyzer(sineSource(512, bin, 1), Options{FFTSize: 512})
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}

	f := a.Spectrum()
	peak := 0
	for i, v := range f {
		if v > f[peak] {
			peak = i
		}
	}
	if peak != bin {
		t.Fatalf("peak bin = %d, want %d", peak, bin)
	}
	if f[bin] != 255 {
		t.Fatalf("Spectrum()[%d] = %d for a full-scale tone, want 255", bin, f[bin])
	}
	if f[200] != 0 {
		t.Fatalf("Spectrum()[200] = %d far from the tone, want 0", f[200])
	}
}

func TestAnalyzerSmoothingRampsTowardSteadyState(t *testing.T) {
	a, err := NewAnalyzer(sineSource(512, 8, 0.01), Options{FFTSize: 512, Smoothing: 0.8})
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}

	first := a.Spectrum()[8]
	second := a.Spectrum()[8]
	third := a.Spectrum()[8]
	if !(first < second && second < third) {
		t.Fatalf("peak bin across ticks = %d, %d, %d, want strictly rising", first, second, third)
	}
}

func TestAnalyzerResetClearsHistory(t *testing.T) {
	src := sineSource(512, 8, 1)
	a, err := NewAnalyzer(src, Options{FFTSize: 512})
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}
	if f := a.Spectrum(); f[8] == 0 {
		t.Fatalf("Spectrum()[8] = 0 for a tone, want nonzero")
	}

	a.Reset()
	src.samples = nil
	f := a.Spectrum()
	for i, v := range f {
		if v != 0 {
			t.Fatalf("Spectrum()[%d] = %d after Reset on silence, want 0", i, v)
		}
	}
}
