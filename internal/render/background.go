package render

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// drawCover paints src across all of dst, rotated about the center and
// scaled aspect-fill so the shorter side still covers. Overscan widens the
// fit so small rotations never swing an empty corner into view.
func drawCover(dst *image.RGBA, src image.Image, rotation, scale, overscan float64) {
	b := src.Bounds()
	sw := float64(b.Dx())
	sh := float64(b.Dy())
	if sw == 0 || sh == 0 {
		return
	}
	dw := float64(dst.Rect.Dx())
	dh := float64(dst.Rect.Dy())

	s := math.Max(dw/sw, dh/sh) * overscan * scale
	sin, cos := math.Sincos(rotation)
	cx := float64(b.Min.X) + sw/2
	cy := float64(b.Min.Y) + sh/2

	m := f64.Aff3{
		s * cos, -s * sin, dw/2 - s*(cos*cx-sin*cy),
		s * sin, s * cos, dh/2 - s*(sin*cx+cos*cy),
	}
	xdraw.ApproxBiLinear.Transform(dst, m, src, b, xdraw.Over, nil)
}
