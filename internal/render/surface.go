package render

import (
	"image"
	"image/color"

	"github.com/brysonandrew/visualizer/internal/visual"
)

// Options style the composition. These are looks, not behavior; the zero
// value draws nothing visible, so callers start from DefaultOptions.
type Options struct {
	Clear      color.RGBA // base fill under everything
	CenterGlow color.RGBA // center glow tint; alpha is the gradient peak
	EdgeGlow   color.RGBA // edge glow tint

	CenterStop     float64 // center glow is gone by this corner-radius fraction
	EdgeStart      float64 // edge glow starts rising here
	CenterStrength float64 // scales the mapped center intensity into alpha
	EdgeStrength   float64 // scales the mapped edge intensity into alpha

	DesatAlpha float64 // fixed desaturation pass strength
	Overscan   float64 // cover-fit slack for the background rotation
}

// DefaultOptions returns the stock look: near-black base, warm center glow,
// violet edge glow.
func DefaultOptions() Options {
	return Options{
		Clear:          color.RGBA{10, 10, 15, 255},
		CenterGlow:     color.RGBA{255, 200, 120, 255},
		EdgeGlow:       color.RGBA{122, 92, 255, 255},
		CenterStop:     0.65,
		EdgeStart:      0.45,
		CenterStrength: 0.85,
		EdgeStrength:   0.9,
		DesatAlpha:     0.08,
		Overscan:       1.12,
	}
}

// Renderer owns the drawing surface and composites one frame per Compose
// call: background image through the mapped transform, screen-blended glow
// layers from cached radial masks, soft-light grain from a cached tile, and
// a fixed desaturation pass. Missing inputs skip their pass; Compose never
// fails.
type Renderer struct {
	opts Options

	// desired geometry, set by SetSize; reconciled at the next Compose
	width  int
	height int
	ratio  float64

	// active geometry the caches were built for
	activeW     int
	activeH     int
	activeRatio float64

	surface *image.RGBA
	scratch *image.RGBA
	center  *image.Alpha
	edge    *image.Alpha

	background image.Image
	noise      image.Image
	noiseGen   int
	pattern    *image.RGBA
	patternGen int

	rebuilds        int
	patternRebuilds int
}

// NewRenderer builds an unsized Renderer; Compose stays a no-op until
// SetSize gives it a surface.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// SetSize records the logical size and pixel ratio. The backing surface and
// gradient caches are rebuilt lazily on the next Compose, and only if the
// geometry actually changed.
func (r *Renderer) SetSize(width, height int, ratio float64) {
	r.width = width
	r.height = height
	r.ratio = ratio
}

// SetBackground swaps the background image; nil clears it. Load failures
// belong to the caller, which simply keeps the previous image.
func (r *Renderer) SetBackground(img image.Image) {
	r.background = img
}

// SetNoise swaps the grain texture; nil disables the grain pass. Each swap
// changes the texture identity, invalidating the cached pattern tile.
func (r *Renderer) SetNoise(img image.Image) {
	r.noise = img
	r.noiseGen++
}

// Image exposes the backing surface. Nil until the first sized Compose.
// Callers needing a stable copy must take one before the next Compose.
func (r *Renderer) Image() *image.RGBA {
	return r.surface
}

// Compose draws one complete frame from the mapped parameters.
func (r *Renderer) Compose(p visual.Params) {
	if r.width <= 0 || r.height <= 0 || r.ratio <= 0 {
		return
	}
	r.reconcile()

	fill(r.surface, r.opts.Clear)

	if r.background != nil {
		fill(r.scratch, r.opts.Clear)
		drawCover(r.scratch, r.background, p.Rotation, p.Scale, r.opts.Overscan)
		r.filterInto(p.Brightness, p.Contrast)
	}

	overlayGlow(r.surface, r.center, r.opts.CenterGlow, p.Center*r.opts.CenterStrength)
	overlayGlow(r.surface, r.edge, r.opts.EdgeGlow, p.Edge*r.opts.EdgeStrength)

	if r.noise != nil && p.Grain > grainThreshold {
		if r.pattern == nil || r.patternGen != r.noiseGen {
			r.pattern = buildPattern(r.noise)
			r.patternGen = r.noiseGen
			r.patternRebuilds++
		}
		overlayGrain(r.surface, r.pattern, p.Grain)
	}

	if r.opts.DesatAlpha > 0 {
		desaturate(r.surface, r.opts.DesatAlpha)
	}
}

// reconcile rebuilds the surface and gradient caches when the desired
// geometry moved away from the active one.
func (r *Renderer) reconcile() {
	if r.surface != nil && r.activeW == r.width && r.activeH == r.height && r.activeRatio == r.ratio {
		return
	}
	dw := int(float64(r.width)*r.ratio + 0.5)
	dh := int(float64(r.height)*r.ratio + 0.5)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	r.surface = image.NewRGBA(image.Rect(0, 0, dw, dh))
	r.scratch = image.NewRGBA(image.Rect(0, 0, dw, dh))
	r.center = centerMask(dw, dh, r.opts.CenterStop)
	r.edge = edgeMask(dw, dh, r.opts.EdgeStart)
	r.activeW = r.width
	r.activeH = r.height
	r.activeRatio = r.ratio
	r.rebuilds++
}

// filterInto copies the staged background onto the surface, applying the
// brightness and contrast filters per channel. Alpha stays opaque.
func (r *Renderer) filterInto(brightness, contrast float64) {
	n := len(r.surface.Pix)
	for i := 0; i+3 < n; i += 4 {
		r.surface.Pix[i] = brightnessContrast(r.scratch.Pix[i], brightness, contrast)
		r.surface.Pix[i+1] = brightnessContrast(r.scratch.Pix[i+1], brightness, contrast)
		r.surface.Pix[i+2] = brightnessContrast(r.scratch.Pix[i+2], brightness, contrast)
		r.surface.Pix[i+3] = 255
	}
}

func fill(img *image.RGBA, c color.RGBA) {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	if w == 0 || h == 0 {
		return
	}
	row := img.Pix[:w*4]
	for x := 0; x < w*4; x += 4 {
		row[x] = c.R
		row[x+1] = c.G
		row[x+2] = c.B
		row[x+3] = c.A
	}
	for y := 1; y < h; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+w*4], row)
	}
}

// overlayGlow screen-blends a tinted radial mask over the surface at the
// given layer alpha.
func overlayGlow(dst *image.RGBA, mask *image.Alpha, tint color.RGBA, alpha float64) {
	if alpha <= 0 {
		return
	}
	peak := alpha * float64(tint.A) / 255
	w := dst.Rect.Dx()
	h := dst.Rect.Dy()
	for y := range h {
		mrow := mask.Pix[y*mask.Stride:]
		drow := dst.Pix[y*dst.Stride:]
		for x := range w {
			m := mrow[x]
			if m == 0 {
				continue
			}
			a := peak * float64(m) / 255
			o := x * 4
			drow[o] = composite(drow[o], screenChannel(drow[o], tint.R), a)
			drow[o+1] = composite(drow[o+1], screenChannel(drow[o+1], tint.G), a)
			drow[o+2] = composite(drow[o+2], screenChannel(drow[o+2], tint.B), a)
		}
	}
}

// desaturate mixes every pixel toward its own luminance, the flat-gray
// saturation pass that ties the layers together.
func desaturate(dst *image.RGBA, alpha float64) {
	n := len(dst.Pix)
	for i := 0; i+3 < n; i += 4 {
		l := luminance(dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2])
		dst.Pix[i] = composite(dst.Pix[i], l, alpha)
		dst.Pix[i+1] = composite(dst.Pix[i+1], l, alpha)
		dst.Pix[i+2] = composite(dst.Pix[i+2], l, alpha)
	}
}
