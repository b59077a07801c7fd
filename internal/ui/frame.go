package ui

import (
	"image"
	"strings"
)

// FrameRenderer converts composed frames into terminal strings. It supports
// two modes:
//   - Color (half-block): uses "▀" with fg/bg colors to pack 2 sample rows
//     per terminal row.
//   - ASCII (no color): maps each cell to a brightness character.
//
// Frames are much larger than the cell grid, so every cell averages its
// whole source region instead of sampling one pixel. Nearest-neighbor would
// turn the grain layer into flicker.
type FrameRenderer struct {
	mode colorMode
	sb   strings.Builder // reusable builder to reduce allocations
}

// NewFrameRenderer creates a renderer using the current terminal's color
// capabilities.
func NewFrameRenderer() *FrameRenderer {
	return &FrameRenderer{mode: detectColorMode()}
}

func newFrameRenderer(mode colorMode) *FrameRenderer {
	return &FrameRenderer{mode: mode}
}

// Fit computes the largest cell grid that shows the full frame inside the
// given terminal bounds without distorting its aspect ratio. Terminal cells
// are roughly twice as tall as wide; half-block packing puts two samples in
// each cell, so a color sample is close to square while an ASCII sample is
// twice as tall as wide.
func (r *FrameRenderer) Fit(termW, termH, srcW, srcH int) (cols, rows int) {
	if termW <= 0 || termH <= 0 || srcW <= 0 || srcH <= 0 {
		return 0, 0
	}

	if r.mode == colorOff {
		cols = termW
		rows = cols * srcH / (srcW * 2)
		if rows > termH {
			rows = termH
			cols = rows * srcW * 2 / srcH
		}
	} else {
		samples := termH * 2
		w := termW
		h := w * srcH / srcW
		if h > samples {
			h = samples
			w = h * srcW / srcH
		}
		cols = w
		rows = (h + 1) / 2
	}

	if cols < 4 {
		cols = 4
	}
	if rows < 2 {
		rows = 2
	}
	return cols, rows
}

// Render converts a frame into a terminal string covering cols x rows cells.
// In color mode each terminal row shows two sample rows.
func (r *FrameRenderer) Render(frame *image.RGBA, cols, rows int) string {
	if frame == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	b := frame.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return ""
	}

	r.sb.Reset()
	// Generous pre-allocation: worst case ~20 bytes per cell (color escapes)
	// plus newlines.
	r.sb.Grow(cols * rows * 24)

	if r.mode == colorOff {
		r.renderASCII(frame, cols, rows)
	} else {
		r.renderHalfBlock(frame, cols, rows)
	}

	return r.sb.String()
}

// renderHalfBlock uses "▀" (upper half block) with fg = top sample,
// bg = bottom sample, packing 2 sample rows into 1 terminal row.
func (r *FrameRenderer) renderHalfBlock(frame *image.RGBA, cols, rows int) {
	srcW := frame.Bounds().Dx()
	srcH := frame.Bounds().Dy()
	samples := rows * 2

	var lastFg, lastBg string

	for row := 0; row < rows; row++ {
		topRow := row * 2
		botRow := row*2 + 1

		for col := 0; col < cols; col++ {
			x0 := col * srcW / cols
			x1 := (col + 1) * srcW / cols

			tr, tg, tb := boxAverage(frame, x0, topRow*srcH/samples, x1, (topRow+1)*srcH/samples)
			br, bg, bb := boxAverage(frame, x0, botRow*srcH/samples, x1, (botRow+1)*srcH/samples)

			fg := fgColorSeq(r.mode, tr, tg, tb)
			bgc := bgColorSeq(r.mode, br, bg, bb)

			if fg != lastFg {
				r.sb.WriteString(fg)
				lastFg = fg
			}
			if bgc != lastBg {
				r.sb.WriteString(bgc)
				lastBg = bgc
			}
			r.sb.WriteString("▀")
		}

		r.sb.WriteString(ansiReset)
		lastFg = ""
		lastBg = ""
		if row < rows-1 {
			r.sb.WriteByte('\n')
		}
	}
}

// renderASCII maps each cell to a brightness character.
func (r *FrameRenderer) renderASCII(frame *image.RGBA, cols, rows int) {
	srcW := frame.Bounds().Dx()
	srcH := frame.Bounds().Dy()

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			pr, pg, pb := boxAverage(frame,
				col*srcW/cols, row*srcH/rows,
				(col+1)*srcW/cols, (row+1)*srcH/rows)
			r.sb.WriteByte(brightnessChar(luminance(pr, pg, pb)))
		}
		if row < rows-1 {
			r.sb.WriteByte('\n')
		}
	}
}

// boxAverage returns the mean color of the pixel region [x0,x1) x [y0,y1),
// in frame-local coordinates. Degenerate regions collapse to one pixel.
func boxAverage(frame *image.RGBA, x0, y0, x1, y1 int) (uint8, uint8, uint8) {
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}

	var sr, sg, sb int
	for y := y0; y < y1; y++ {
		off := y*frame.Stride + x0*4
		for x := x0; x < x1; x++ {
			sr += int(frame.Pix[off])
			sg += int(frame.Pix[off+1])
			sb += int(frame.Pix[off+2])
			off += 4
		}
	}
	n := (x1 - x0) * (y1 - y0)
	return uint8(sr / n), uint8(sg / n), uint8(sb / n)
}

// luminance computes perceived brightness (ITU-R BT.601).
func luminance(r, g, b uint8) uint8 {
	return uint8((299*int(r) + 587*int(g) + 114*int(b)) / 1000)
}
