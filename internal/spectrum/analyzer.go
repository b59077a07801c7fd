package spectrum

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

const (
	defaultFFTSize   = 2048
	defaultSmoothing = 0.8
	defaultMinDb     = -100.0
	defaultMaxDb     = -30.0
)

// SampleSource supplies mono samples for analysis. Samples copies up to
// len(dst) of the most recent samples into the front of dst, oldest first,
// and returns how many were written.
type SampleSource interface {
	Samples(dst []float64) int
}

// Options tunes an Analyzer. Zero fields take the defaults above.
type Options struct {
	FFTSize   int     // window length, power of two
	Smoothing float64 // per-bin magnitude smoothing in [0, 1)
	MinDb     float64 // magnitude mapped to byte 0
	MaxDb     float64 // magnitude mapped to byte 255
}

// Analyzer converts tapped PCM into spectrum frames: Hann window, FFT,
// per-bin exponential magnitude smoothing, then a decibel ramp scaled to
// bytes. Bin count is fixed at construction; changing the FFT size means
// building a new Analyzer.
type Analyzer struct {
	source    SampleSource
	fft       *fourier.FFT
	smoothing float64
	minDb     float64
	maxDb     float64

	input  []float64
	coeffs []complex128
	smooth []float64
	frame  Frame
}

// NewAnalyzer builds an Analyzer reading from src.
func NewAnalyzer(src SampleSource, opts Options) (*Analyzer, error) {
	if opts.FFTSize == 0 {
		opts.FFTSize = defaultFFTSize
	}
	if opts.Smoothing == 0 {
		opts.Smoothing = defaultSmoothing
	}
	if opts.MinDb == 0 {
		opts.MinDb = defaultMinDb
	}
	if opts.MaxDb == 0 {
		opts.MaxDb = defaultMaxDb
	}

	if src == nil {
		return nil, fmt.Errorf("nil sample source")
	}
	if opts.FFTSize < 32 || opts.FFTSize&(opts.FFTSize-1) != 0 {
		return nil, fmt.Errorf("fft size %d is not a power of two", opts.FFTSize)
	}
	if opts.Smoothing < 0 || opts.Smoothing >= 1 {
		return nil, fmt.Errorf("smoothing %v out of range [0, 1)", opts.Smoothing)
	}
	if opts.MinDb >= opts.MaxDb {
		return nil, fmt.Errorf("db range [%v, %v] is empty", opts.MinDb, opts.MaxDb)
	}

	n := opts.FFTSize
	return &Analyzer{
		source:    src,
		fft:       fourier.NewFFT(n),
		smoothing: opts.Smoothing,
		minDb:     opts.MinDb,
		maxDb:     opts.MaxDb,
		input:     make([]float64, n),
		coeffs:    make([]complex128, n/2+1),
		smooth:    make([]float64, n/2),
		frame:     make(Frame, n/2),
	}, nil
}

// BinCount returns the number of bins per frame (half the FFT size).
func (a *Analyzer) BinCount() int {
	return len(a.frame)
}

// Spectrum pulls the latest samples from the source and returns the
// refreshed frame. The frame is reused across calls. A source that has not
// produced enough samples yet simply yields a quieter frame; silence maps
// to all-zero bytes through the decibel floor.
func (a *Analyzer) Spectrum() Frame {
	n := a.source.Samples(a.input)
	for i := n; i < len(a.input); i++ {
		a.input[i] = 0
	}
	window.Hann(a.input)
	a.fft.Coefficients(a.coeffs, a.input)

	scale := 1 / float64(len(a.input))
	span := a.maxDb - a.minDb
	for i := range a.smooth {
		mag := cmplx.Abs(a.coeffs[i]) * scale
		a.smooth[i] = a.smoothing*a.smooth[i] + (1-a.smoothing)*mag

		db := 20 * math.Log10(a.smooth[i])
		v := 255 * (db - a.minDb) / span
		switch {
		case v < 0 || math.IsNaN(v):
			a.frame[i] = 0
		case v > 255:
			a.frame[i] = 255
		default:
			a.frame[i] = byte(v)
		}
	}
	return a.frame
}

// Reset clears the smoothed magnitudes, for reuse across track changes.
func (a *Analyzer) Reset() {
	for i := range a.smooth {
		a.smooth[i] = 0
		a.frame[i] = 0
	}
}
