package visual

import (
	"math"

	"github.com/brysonandrew/visualizer/internal/beat"
)

// Weights are the per-level coefficients of one weighted-sum mapping.
type Weights struct {
	Bass  float64
	Mid   float64
	Boost float64
}

func (w Weights) apply(l beat.Levels) float64 {
	return l.Bass*w.Bass + l.Mid*w.Mid + l.Boost*w.Boost
}

// Options holds every mapping coefficient. All of them are styling choices,
// so the zero value is honored as given; use DefaultOptions for the stock
// look and validate upstream.
type Options struct {
	Edge   Weights // boundary glow, bass-weighted
	Center Weights // center glow, mid-weighted
	Grain  Weights // grain opacity on top of GrainBase

	GrainBase float64 // grain floor, present even at silence
	GrainMax  float64 // grain ceiling

	RotationDegrees     float64 // background rotation per unit of mid
	BeatRotationDegrees float64 // sharper rotation on a beat tick
	BeatScale           float64 // background scale on a beat tick

	Brightness Weights // added to a base brightness of 1
	Contrast   Weights // added to a base contrast of 1
}

// DefaultOptions returns the stock mapping coefficients.
func DefaultOptions() Options {
	return Options{
		Edge:                Weights{Bass: 0.6, Mid: 0.2, Boost: 1.0},
		Center:              Weights{Bass: 0.15, Mid: 0.9, Boost: 0.7},
		Grain:               Weights{Bass: 0.10, Mid: 0.18, Boost: 0.15},
		GrainBase:           0.06,
		GrainMax:            0.32,
		RotationDegrees:     1.5,
		BeatRotationDegrees: 2.0,
		BeatScale:           1.03,
		Brightness:          Weights{Bass: 0.35, Boost: 0.45},
		Contrast:            Weights{Mid: 0.25, Boost: 0.25},
	}
}

// Params are the per-tick drawing inputs derived from detector levels.
// Intensities are clamped to [0, 1], grain to [0, GrainMax]; Rotation is in
// radians.
type Params struct {
	Edge       float64
	Center     float64
	Grain      float64
	Rotation   float64
	Scale      float64
	Brightness float64
	Contrast   float64
}

// Mapper turns beat.Levels into Params. It is stateless; every output is a
// pure function of the input levels and the configured weights.
type Mapper struct {
	opts Options
}

// NewMapper builds a Mapper with the given coefficients.
func NewMapper(opts Options) *Mapper {
	return &Mapper{opts: opts}
}

// Map computes the visual parameters for one tick.
func (m *Mapper) Map(l beat.Levels) Params {
	p := Params{
		Edge:       clamp(m.opts.Edge.apply(l), 0, 1),
		Center:     clamp(m.opts.Center.apply(l), 0, 1),
		Grain:      clamp(m.opts.GrainBase+m.opts.Grain.apply(l), 0, m.opts.GrainMax),
		Scale:      1,
		Brightness: 1 + m.opts.Brightness.apply(l),
		Contrast:   1 + m.opts.Contrast.apply(l),
	}
	deg := m.opts.RotationDegrees
	if l.Beat {
		deg = m.opts.BeatRotationDegrees
		p.Scale = m.opts.BeatScale
	}
	p.Rotation = l.Mid * deg * math.Pi / 180
	return p
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
