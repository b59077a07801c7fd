package config

import (
	"fmt"
	"time"

	"github.com/brysonandrew/visualizer/internal/beat"
	"github.com/brysonandrew/visualizer/internal/render"
	"github.com/brysonandrew/visualizer/internal/spectrum"
	"github.com/brysonandrew/visualizer/internal/visual"
)

// The option builders translate the flat YAML-facing config into each
// package's option struct, so the packages never depend on this one.

// AnalyzerOptions builds the spectrum analyzer tuning.
func (c Config) AnalyzerOptions() spectrum.Options {
	return spectrum.Options{
		FFTSize:   c.Analysis.FFTSize,
		Smoothing: c.Analysis.Smoothing,
		MinDb:     c.Analysis.MinDb,
		MaxDb:     c.Analysis.MaxDb,
	}
}

// DetectorOptions builds the beat detector tuning.
func (c Config) DetectorOptions() beat.Options {
	return beat.Options{
		Ramp:              time.Duration(c.Beat.RampMs) * time.Millisecond,
		Gamma:             c.Beat.Gamma,
		LevelSmoothing:    c.Beat.LevelSmoothing,
		EnvelopeSmoothing: c.Beat.EnvelopeSmoothing,
		BassWeight:        c.Beat.BassWeight,
		MidWeight:         c.Beat.MidWeight,
		Threshold:         c.Beat.Threshold,
		Cooldown:          time.Duration(c.Beat.CooldownMs) * time.Millisecond,
		BoostDecay:        c.Beat.BoostDecay,
	}
}

// MapperOptions builds the parameter mapper weights.
func (c Config) MapperOptions() visual.Options {
	return visual.Options{
		Edge:                c.Visual.Edge,
		Center:              c.Visual.Center,
		Grain:               c.Visual.Grain,
		GrainBase:           c.Visual.GrainBase,
		GrainMax:            c.Visual.GrainMax,
		RotationDegrees:     c.Visual.RotationDegrees,
		BeatRotationDegrees: c.Visual.BeatRotationDegrees,
		BeatScale:           c.Visual.BeatScale,
		Brightness:          c.Visual.Brightness,
		Contrast:            c.Visual.Contrast,
	}
}

// RendererOptions builds the composition style. Color parsing can fail on a
// config that skipped Validate.
func (c Config) RendererOptions() (render.Options, error) {
	clear, err := ParseColor(c.Render.ClearColor)
	if err != nil {
		return render.Options{}, fmt.Errorf("clear color: %w", err)
	}
	center, err := ParseColor(c.Render.CenterColor)
	if err != nil {
		return render.Options{}, fmt.Errorf("center color: %w", err)
	}
	edge, err := ParseColor(c.Render.EdgeColor)
	if err != nil {
		return render.Options{}, fmt.Errorf("edge color: %w", err)
	}
	return render.Options{
		Clear:          clear,
		CenterGlow:     center,
		EdgeGlow:       edge,
		CenterStop:     c.Render.CenterStop,
		EdgeStart:      c.Render.EdgeStart,
		CenterStrength: c.Render.CenterStrength,
		EdgeStrength:   c.Render.EdgeStrength,
		DesatAlpha:     c.Render.DesatAlpha,
		Overscan:       c.Render.Overscan,
	}, nil
}
