package engine

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// LoadBackground decodes the image at path off the tick path and applies
// it at the next tick boundary. A newer load supersedes one still in
// flight, and results arriving after Close are dropped. A failed load
// keeps whatever background is currently drawn.
func (e *Engine) LoadBackground(path string) {
	e.mu.Lock()
	e.bgGen++
	gen := e.bgGen
	e.mu.Unlock()

	go func() {
		img, err := decodeImage(path)
		e.resolveBackground(gen, img, err)
	}()
}

func (e *Engine) resolveBackground(gen int, img image.Image, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || gen != e.bgGen {
		return
	}
	if err != nil {
		e.assetErr = fmt.Errorf("background: %w", err)
		return
	}
	e.assetErr = nil
	e.pendingBg = &pendingAsset{img: img}
}

// ClearBackground removes the background at the next tick boundary and
// invalidates any load still in flight.
func (e *Engine) ClearBackground() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bgGen++
	e.pendingBg = &pendingAsset{}
}

// LoadNoise decodes a grain texture the same way LoadBackground loads
// the background.
func (e *Engine) LoadNoise(path string) {
	e.mu.Lock()
	e.noiseGen++
	gen := e.noiseGen
	e.mu.Unlock()

	go func() {
		img, err := decodeImage(path)
		e.resolveNoise(gen, img, err)
	}()
}

func (e *Engine) resolveNoise(gen int, img image.Image, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || gen != e.noiseGen {
		return
	}
	if err != nil {
		e.assetErr = fmt.Errorf("noise texture: %w", err)
		return
	}
	e.assetErr = nil
	e.pendingNoise = &pendingAsset{img: img}
}

// ClearNoise drops the grain texture at the next tick boundary.
func (e *Engine) ClearNoise() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.noiseGen++
	e.pendingNoise = &pendingAsset{}
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}
