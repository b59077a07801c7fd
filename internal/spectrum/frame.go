package spectrum

// Frame holds one spectrum snapshot: per-bin magnitudes scaled to 0-255,
// low frequencies first. The producer overwrites it in place each tick, so
// consumers must not retain it across ticks.
type Frame []byte

// BandRange selects a contiguous run of bins as fractions of the bin count,
// so the same range works for any FFT size.
type BandRange struct {
	Start float64
	End   float64
}

// Bins resolves the range against a frame of n bins. The returned window
// [lo, hi) is clamped to the frame and never empty for n >= 1, even when
// Start and End are inverted, equal, or out of range.
func (r BandRange) Bins(n int) (lo, hi int) {
	if n < 1 {
		return 0, 0
	}
	lo = int(r.Start * float64(n))
	hi = int(r.End * float64(n))
	if lo < 0 {
		lo = 0
	}
	if lo > n-1 {
		lo = n - 1
	}
	if hi < lo+1 {
		hi = lo + 1
	}
	if hi > n {
		hi = n
	}
	return lo, hi
}

// Average returns the mean magnitude of the range within f, normalized to
// 0.0-1.0. An empty frame yields 0.
func Average(f Frame, r BandRange) float64 {
	lo, hi := r.Bins(len(f))
	if hi <= lo {
		return 0
	}
	sum := 0
	for _, v := range f[lo:hi] {
		sum += int(v)
	}
	return float64(sum) / float64(hi-lo) / 255.0
}
