package render

import (
	"image"
	"math"
)

// Radial alpha masks for the two glow layers. Shape depends only on the
// surface dimensions, so Compose caches them and only rebuilds on resize;
// per-tick intensity scales the layer alpha, never the mask.
//
// Radii are fractions of the farthest-corner distance, so the edge glow
// reaches full strength exactly in the corners.

// centerMask peaks at the center and fades linearly to transparent at the
// stop fraction.
func centerMask(w, h int, stop float64) *image.Alpha {
	m := image.NewAlpha(image.Rect(0, 0, w, h))
	cx := float64(w) / 2
	cy := float64(h) / 2
	r := math.Hypot(cx, cy)
	for y := range h {
		for x := range w {
			t := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy) / r
			a := 1 - t/stop
			if a < 0 {
				a = 0
			}
			m.Pix[m.PixOffset(x, y)] = uint8(a*255 + 0.5)
		}
	}
	return m
}

// edgeMask is transparent inside the start fraction and rises linearly to
// peak at the farthest corner.
func edgeMask(w, h int, start float64) *image.Alpha {
	m := image.NewAlpha(image.Rect(0, 0, w, h))
	cx := float64(w) / 2
	cy := float64(h) / 2
	r := math.Hypot(cx, cy)
	for y := range h {
		for x := range w {
			t := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy) / r
			a := (t - start) / (1 - start)
			if a < 0 {
				a = 0
			} else if a > 1 {
				a = 1
			}
			m.Pix[m.PixOffset(x, y)] = uint8(a*255 + 0.5)
		}
	}
	return m
}
