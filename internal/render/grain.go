package render

import (
	"image"
	"image/draw"
	"math/rand/v2"
)

// grainThreshold is the opacity below which the grain pass is skipped
// entirely; alpha this low rounds to no visible change.
const grainThreshold = 0.004

// NoiseTile generates a tileable mid-gray white-noise texture. Mid-gray is
// the soft-light neutral, so the tile only ever nudges pixels a little in
// either direction. The same seed always yields the same tile.
func NoiseTile(size int, seed uint64) *image.RGBA {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	tile := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			v := uint8(80 + rng.IntN(97))
			o := tile.PixOffset(x, y)
			tile.Pix[o] = v
			tile.Pix[o+1] = v
			tile.Pix[o+2] = v
			tile.Pix[o+3] = 255
		}
	}
	return tile
}

// buildPattern normalizes an arbitrary noise image into an origin-anchored
// RGBA tile for fast wrapped access.
func buildPattern(src image.Image) *image.RGBA {
	b := src.Bounds()
	tile := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(tile, tile.Bounds(), src, b.Min, draw.Src)
	return tile
}

// overlayGrain soft-light blends the tile, repeated across the surface, at
// the given opacity.
func overlayGrain(dst *image.RGBA, tile *image.RGBA, alpha float64) {
	w := dst.Rect.Dx()
	h := dst.Rect.Dy()
	tw := tile.Rect.Dx()
	th := tile.Rect.Dy()
	if tw == 0 || th == 0 {
		return
	}
	for y := range h {
		trow := tile.Pix[(y%th)*tile.Stride:]
		drow := dst.Pix[y*dst.Stride:]
		for x := range w {
			to := (x % tw) * 4
			do := x * 4
			drow[do] = composite(drow[do], softLightChannel(drow[do], trow[to]), alpha)
			drow[do+1] = composite(drow[do+1], softLightChannel(drow[do+1], trow[to+1]), alpha)
			drow[do+2] = composite(drow[do+2], softLightChannel(drow[do+2], trow[to+2]), alpha)
		}
	}
}
