package engine

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/brysonandrew/visualizer/internal/beat"
	"github.com/brysonandrew/visualizer/internal/config"
	"github.com/brysonandrew/visualizer/internal/render"
	"github.com/brysonandrew/visualizer/internal/spectrum"
	"github.com/brysonandrew/visualizer/internal/visual"
)

// Engine is one visual session. It owns the analyzer, detector, mapper
// and renderer, and runs the pipeline at the configured frame rate:
// pull spectrum, detect, map, compose, publish. All pipeline state is
// touched only under the engine mutex, so one tick always completes
// before the next begins.
type Engine struct {
	mu sync.Mutex

	cfg      config.Config
	interval time.Duration

	analyzer *spectrum.Analyzer
	detector *beat.Detector
	mapper   *visual.Mapper
	renderer *render.Renderer

	levels beat.Levels
	params visual.Params
	out    *image.RGBA
	ticks  uint64

	pendingBg    *pendingAsset
	pendingNoise *pendingAsset
	bgGen        int
	noiseGen     int
	assetErr     error

	running  bool
	closed   bool
	stop     chan struct{}
	loopDone chan struct{}
}

// pendingAsset is a resolved async load waiting for the next tick
// boundary. A nil image clears the slot it targets.
type pendingAsset struct {
	img image.Image
}

// New builds a session from the configuration. The surface is sized
// from the preset; no source is attached yet.
func New(cfg config.Config) (*Engine, error) {
	w, h, err := cfg.SurfaceSize()
	if err != nil {
		return nil, err
	}
	ropts, err := cfg.RendererOptions()
	if err != nil {
		return nil, fmt.Errorf("renderer options: %w", err)
	}

	e := &Engine{
		cfg:      cfg,
		interval: cfg.TickInterval(),
		detector: beat.NewDetector(cfg.DetectorOptions()),
		mapper:   visual.NewMapper(cfg.MapperOptions()),
		renderer: render.NewRenderer(ropts),
	}
	e.renderer.SetSize(w, h, cfg.Surface.PixelRatio)

	if cfg.Render.NoisePath == "" {
		e.renderer.SetNoise(render.NoiseTile(cfg.Render.NoiseSize, cfg.Render.NoiseSeed))
	} else {
		e.LoadNoise(cfg.Render.NoisePath)
	}
	if cfg.Render.Background != "" {
		e.LoadBackground(cfg.Render.Background)
	}
	return e, nil
}

// SetSource attaches the audio sample source and resets the analysis
// chain for the new track. The running loop, if any, picks it up on the
// next tick.
func (e *Engine) SetSource(src spectrum.SampleSource) error {
	analyzer, err := spectrum.NewAnalyzer(src, e.cfg.AnalyzerOptions())
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.analyzer = analyzer
	e.detector = beat.NewDetector(e.cfg.DetectorOptions())
	return nil
}

// ClearSource detaches the audio source and stops the loop.
func (e *Engine) ClearSource() {
	e.mu.Lock()
	e.analyzer = nil
	e.mu.Unlock()
	e.Stop()
}

// Start spawns the tick loop. It is a no-op while already running, when
// no source is attached, or after Close.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running || e.closed || e.analyzer == nil {
		return
	}
	e.running = true
	e.stop = make(chan struct{})
	e.loopDone = make(chan struct{})
	go e.run(e.stop, e.loopDone)
}

// Stop halts the tick loop and waits for it to exit. No tick fires
// after Stop returns. Safe to call repeatedly.
func (e *Engine) Stop() {
	e.mu.Lock()
	done := e.loopDone
	if e.running {
		e.running = false
		close(e.stop)
	}
	e.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Close stops the loop and marks the session dead so late-resolving
// asset loads are discarded.
func (e *Engine) Close() {
	e.Stop()
	e.mu.Lock()
	e.closed = true
	e.pendingBg = nil
	e.pendingNoise = nil
	e.mu.Unlock()
}

func (e *Engine) run(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.tick(time.Now())
		}
	}
}

// tick runs one full pipeline pass.
func (e *Engine) tick(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.analyzer == nil {
		return
	}

	e.applyPending()

	frame := e.analyzer.Spectrum()
	if len(frame) == 0 {
		return
	}
	bass := spectrum.Average(frame, e.cfg.Analysis.Bass)
	mid := spectrum.Average(frame, e.cfg.Analysis.Mid)

	e.levels = e.detector.Tick(bass, mid, now)
	e.params = e.mapper.Map(e.levels)
	e.renderer.Compose(e.params)
	e.publish()
	e.ticks++
}

// applyPending consumes resolved asset loads at the tick boundary.
func (e *Engine) applyPending() {
	if e.pendingBg != nil {
		e.renderer.SetBackground(e.pendingBg.img)
		e.pendingBg = nil
	}
	if e.pendingNoise != nil {
		e.renderer.SetNoise(e.pendingNoise.img)
		e.pendingNoise = nil
	}
}

func (e *Engine) publish() {
	img := e.renderer.Image()
	if img == nil {
		return
	}
	if e.out == nil || e.out.Bounds() != img.Bounds() {
		e.out = image.NewRGBA(img.Bounds())
	}
	copy(e.out.Pix, img.Pix)
}

// Resize retargets the surface. The renderer rebuilds its cached
// geometry on the next compose.
func (e *Engine) Resize(width, height int, ratio float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderer.SetSize(width, height, ratio)
}

// Snapshot reports the levels and parameters of the last completed
// tick. Frame pixels are fetched separately through CopyFrame.
type Snapshot struct {
	Levels   beat.Levels
	Params   visual.Params
	Tick     uint64
	AssetErr error
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Levels:   e.levels,
		Params:   e.params,
		Tick:     e.ticks,
		AssetErr: e.assetErr,
	}
}

// CopyFrame copies the last published frame into dst, reallocating when
// the size differs, and returns it. Returns nil before the first tick.
// The copy never tears: publication and copying share the engine mutex.
func (e *Engine) CopyFrame(dst *image.RGBA) *image.RGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.out == nil {
		return nil
	}
	if dst == nil || dst.Bounds() != e.out.Bounds() {
		dst = image.NewRGBA(e.out.Bounds())
	}
	copy(dst.Pix, e.out.Pix)
	return dst
}

// Frames streams frame copies at the given rate until ctx is done. The
// receiver owns each frame. Ticks with no published frame yet are
// skipped.
func (e *Engine) Frames(ctx context.Context, fps int) <-chan *image.RGBA {
	if fps < 1 {
		fps = 1
	}
	ch := make(chan *image.RGBA, 1)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(time.Second / time.Duration(fps))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				frame := e.CopyFrame(nil)
				if frame == nil {
					continue
				}
				select {
				case ch <- frame:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch
}
