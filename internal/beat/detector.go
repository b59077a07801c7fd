package beat

import (
	"math"
	"time"
)

const (
	// signalEpsilon is the band energy below which input counts as silence
	// for the cold-start ramp.
	signalEpsilon = 1e-3
	// relEpsilon keeps the relative-energy division away from zero baselines.
	relEpsilon = 1e-3
	// boostSnap is the level below which a decaying boost collapses to zero.
	boostSnap = 0.01
)

// Options tunes a Detector. Zero fields take DefaultOptions values.
type Options struct {
	Ramp              time.Duration // cold-start fade-in for the visual levels
	Gamma             float64       // compression exponent, < 1 lifts quiet passages
	LevelSmoothing    float64       // per-band baseline smoothing factor
	EnvelopeSmoothing float64       // combined-energy envelope smoothing factor
	BassWeight        float64       // relative-energy mix weights
	MidWeight         float64
	Threshold         float64       // envelope multiplier a beat must exceed
	Cooldown          time.Duration // minimum spacing between beats
	BoostDecay        float64       // per-tick boost multiplier between beats
}

// DefaultOptions returns the stock detector tuning.
func DefaultOptions() Options {
	return Options{
		Ramp:              1200 * time.Millisecond,
		Gamma:             0.65,
		LevelSmoothing:    0.06,
		EnvelopeSmoothing: 0.05,
		BassWeight:        0.7,
		MidWeight:         0.3,
		Threshold:         1.35,
		Cooldown:          280 * time.Millisecond,
		BoostDecay:        0.88,
	}
}

// Levels is the per-tick detector output. Bass and Mid are the smoothed,
// compressed visual levels; Boost is the decaying beat impulse; Beat is true
// only on the tick a beat fires.
type Levels struct {
	Bass  float64
	Mid   float64
	Boost float64
	Beat  bool
}

// Detector turns raw band energies into stable visual levels and discrete
// beat impulses. Beats fire when the weighted relative energy of both bands
// jumps above a slow-moving envelope, so the detector adapts to quiet and
// loud passages alike. State lives for the length of one audio session;
// starting over means constructing a new Detector.
type Detector struct {
	opts Options

	rampStart    time.Time
	lastBeat     time.Time
	smoothedBass float64
	smoothedMid  float64
	envelope     float64
	boost        float64
	primed       bool
}

// NewDetector builds a Detector with zeroed state. Zero fields of opts fall
// back to DefaultOptions.
func NewDetector(opts Options) *Detector {
	def := DefaultOptions()
	if opts.Ramp == 0 {
		opts.Ramp = def.Ramp
	}
	if opts.Gamma == 0 {
		opts.Gamma = def.Gamma
	}
	if opts.LevelSmoothing == 0 {
		opts.LevelSmoothing = def.LevelSmoothing
	}
	if opts.EnvelopeSmoothing == 0 {
		opts.EnvelopeSmoothing = def.EnvelopeSmoothing
	}
	if opts.BassWeight == 0 && opts.MidWeight == 0 {
		opts.BassWeight = def.BassWeight
		opts.MidWeight = def.MidWeight
	}
	if opts.Threshold == 0 {
		opts.Threshold = def.Threshold
	}
	if opts.Cooldown == 0 {
		opts.Cooldown = def.Cooldown
	}
	if opts.BoostDecay == 0 {
		opts.BoostDecay = def.BoostDecay
	}
	return &Detector{opts: opts}
}

// Tick feeds one pair of normalized band energies through the detector and
// returns the resulting levels. bass and mid must be in [0, 1]; now must not
// run backwards between calls.
func (d *Detector) Tick(bass, mid float64, now time.Time) Levels {
	// A loud transient on the very first ticks must not flash at full
	// intensity, so levels fade in over the ramp window after the first
	// audible energy. Silence before that leaves the detector untouched;
	// priming the baselines at zero would make the first hit read as a
	// huge relative jump and fire a spurious beat.
	if d.rampStart.IsZero() {
		if bass <= signalEpsilon && mid <= signalEpsilon {
			return Levels{}
		}
		d.rampStart = now
	}
	ramp := now.Sub(d.rampStart).Seconds() / d.opts.Ramp.Seconds()
	if ramp > 1 {
		ramp = 1
	}

	levels := Levels{
		Bass: math.Min(1, math.Pow(bass, d.opts.Gamma)*ramp),
		Mid:  math.Min(1, math.Pow(mid, d.opts.Gamma)*ramp),
	}

	if !d.primed {
		d.smoothedBass = bass
		d.smoothedMid = mid
	} else {
		d.smoothedBass += (bass - d.smoothedBass) * d.opts.LevelSmoothing
		d.smoothedMid += (mid - d.smoothedMid) * d.opts.LevelSmoothing
	}

	relBass := bass / (d.smoothedBass + relEpsilon)
	relMid := mid / (d.smoothedMid + relEpsilon)
	combined := relBass*d.opts.BassWeight + relMid*d.opts.MidWeight

	if !d.primed {
		d.envelope = combined
		d.primed = true
	} else {
		d.envelope += (combined - d.envelope) * d.opts.EnvelopeSmoothing
	}

	if combined > d.envelope*d.opts.Threshold && now.Sub(d.lastBeat) > d.opts.Cooldown {
		d.lastBeat = now
		levels.Beat = true
		// Impulse, not overwrite: a stronger hit overrides a still-decaying
		// boost, a weaker one never steps it down.
		if impulse := combined - d.envelope; impulse > d.boost {
			d.boost = math.Min(1, impulse)
		}
	} else {
		d.boost *= d.opts.BoostDecay
		if d.boost < boostSnap {
			d.boost = 0
		}
	}

	levels.Boost = d.boost
	return levels
}
