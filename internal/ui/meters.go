package ui

import "github.com/charmbracelet/harmonica"

// Meter animates a level readout toward its target with a spring, so the
// terminal meters move smoothly even though the engine and the UI tick at
// different rates.
type Meter struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
}

// NewMeter creates a meter stepped at the given UI frame rate. The spring is
// slightly underdamped so beat impulses land with a visible snap.
func NewMeter(fps int) Meter {
	return Meter{spring: harmonica.NewSpring(harmonica.FPS(fps), 7.0, 0.5)}
}

// Update advances the spring one UI frame toward target and returns the new
// display value.
func (m *Meter) Update(target float64) float64 {
	m.pos, m.vel = m.spring.Update(m.pos, m.vel, target)
	return m.Value()
}

// Value returns the current position clamped to [0, 1]. The spring may
// overshoot either bound mid-flight.
func (m *Meter) Value() float64 {
	switch {
	case m.pos < 0:
		return 0
	case m.pos > 1:
		return 1
	}
	return m.pos
}
