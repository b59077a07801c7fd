package render

import "math"

// The compositing passes work on non-premultiplied 8-bit channels. Each
// blend returns the blended channel before alpha mixing; composite mixes it
// into the destination by the layer alpha.

// screenChannel brightens: the inverse product of the inverses.
func screenChannel(dst, src uint8) uint8 {
	d := uint32(dst)
	s := uint32(src)
	return uint8(255 - (255-d)*(255-s)/255)
}

// softLightChannel follows the W3C compositing formula, with the usual
// piecewise darkening below mid-gray and easing above it.
func softLightChannel(dst, src uint8) uint8 {
	b := float64(dst) / 255
	s := float64(src) / 255

	var out float64
	if s <= 0.5 {
		out = b - (1-2*s)*b*(1-b)
	} else {
		var d float64
		if b <= 0.25 {
			d = ((16*b-12)*b + 4) * b
		} else {
			d = math.Sqrt(b)
		}
		out = b + (2*s-1)*(d-b)
	}
	return uint8(clamp01(out)*255 + 0.5)
}

// luminance is the W3C compositing Lum() used by the saturation pass.
func luminance(r, g, b uint8) uint8 {
	l := 0.3*float64(r) + 0.59*float64(g) + 0.11*float64(b)
	if l > 255 {
		l = 255
	}
	return uint8(l + 0.5)
}

// composite mixes a blended channel into the destination by alpha in [0, 1].
func composite(dst, blended uint8, alpha float64) uint8 {
	return uint8(float64(dst) + alpha*(float64(blended)-float64(dst)) + 0.5)
}

// brightnessContrast applies the two filter stages to one channel:
// brightness scales toward white, contrast pivots around mid-gray.
func brightnessContrast(v uint8, brightness, contrast float64) uint8 {
	c := float64(v) / 255
	c *= brightness
	c = (c-0.5)*contrast + 0.5
	return uint8(clamp01(c)*255 + 0.5)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
