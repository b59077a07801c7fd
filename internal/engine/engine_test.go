package engine

import (
	"bytes"
	"context"
	"image"
	"math"
	"testing"
	"time"

	"github.com/brysonandrew/visualizer/internal/config"
)

type sineSource struct {
	data []float64
}

func (s *sineSource) Samples(dst []float64) int {
	return copy(dst, s.data)
}

func newSineSource(n, periods int, amp float64) *sineSource {
	d := make([]float64, n)
	for i := range d {
		d[i] = amp * math.Sin(2*math.Pi*float64(periods)*float64(i)/float64(n))
	}
	return &sineSource{data: d}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(config.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	// small surface keeps compose cheap
	e.Resize(64, 96, 1)
	return e
}

// drive runs n manual ticks spaced one frame apart and returns the time
// after the last one.
func drive(e *Engine, start time.Time, n int) time.Time {
	now := start
	for i := 0; i < n; i++ {
		now = now.Add(e.interval)
		e.tick(now)
	}
	return now
}

func TestStartIsIdempotent(t *testing.T) {
	e := newTestEngine(t)
	defer e.Close()
	if err := e.SetSource(newSineSource(2048, 10, 0.5)); err != nil {
		t.Fatalf("SetSource() error = %v", err)
	}

	e.Start()
	e.mu.Lock()
	first := e.stop
	e.mu.Unlock()

	e.Start()
	e.mu.Lock()
	second := e.stop
	running := e.running
	e.mu.Unlock()

	if !running {
		t.Fatal("engine not running after Start()")
	}
	if first != second {
		t.Fatal("second Start() spawned a new loop")
	}

	e.Stop()
	e.Stop()
	e.mu.Lock()
	running = e.running
	e.mu.Unlock()
	if running {
		t.Fatal("engine still running after Stop()")
	}
}

func TestStartRequiresSource(t *testing.T) {
	e := newTestEngine(t)
	defer e.Close()

	e.Start()
	e.mu.Lock()
	running := e.running
	e.mu.Unlock()
	if running {
		t.Fatal("Start() ran without a source attached")
	}
}

func TestClearSourceStopsTicking(t *testing.T) {
	e := newTestEngine(t)
	defer e.Close()
	if err := e.SetSource(newSineSource(2048, 10, 0.5)); err != nil {
		t.Fatalf("SetSource() error = %v", err)
	}
	e.Start()
	e.ClearSource()

	e.mu.Lock()
	running := e.running
	e.mu.Unlock()
	if running {
		t.Fatal("engine still running after ClearSource()")
	}

	before := e.Snapshot().Tick
	e.tick(time.Now())
	if got := e.Snapshot().Tick; got != before {
		t.Fatalf("tick ran without a source: count %d -> %d", before, got)
	}
}

func TestTickDrivesPipeline(t *testing.T) {
	e := newTestEngine(t)
	defer e.Close()
	if err := e.SetSource(newSineSource(2048, 10, 0.8)); err != nil {
		t.Fatalf("SetSource() error = %v", err)
	}

	drive(e, time.Unix(0, 0), 120)

	s := e.Snapshot()
	if s.Tick != 120 {
		t.Fatalf("Tick = %d, want 120", s.Tick)
	}
	if s.Levels.Bass <= 0 {
		t.Fatalf("Bass = %v, want > 0 for a bass-band tone", s.Levels.Bass)
	}
	if s.Levels.Mid != 0 {
		t.Fatalf("Mid = %v, want 0 for a pure bass tone", s.Levels.Mid)
	}

	frame := e.CopyFrame(nil)
	if frame == nil {
		t.Fatal("CopyFrame() = nil after ticking")
	}
	if got := frame.Bounds().Size(); got != image.Pt(64, 96) {
		t.Fatalf("frame size = %v, want 64x96", got)
	}
}

func TestCopyFrameIsolatesCaller(t *testing.T) {
	e := newTestEngine(t)
	defer e.Close()
	if err := e.SetSource(newSineSource(2048, 10, 0.8)); err != nil {
		t.Fatalf("SetSource() error = %v", err)
	}
	drive(e, time.Unix(0, 0), 5)

	f1 := e.CopyFrame(nil)
	f2 := e.CopyFrame(nil)
	if f1 == f2 {
		t.Fatal("CopyFrame(nil) returned the same buffer twice")
	}
	if !bytes.Equal(f1.Pix, f2.Pix) {
		t.Fatal("consecutive copies of the same frame differ")
	}

	f1.Pix[0] ^= 0xff
	f3 := e.CopyFrame(nil)
	if !bytes.Equal(f2.Pix, f3.Pix) {
		t.Fatal("mutating a returned frame leaked into the engine")
	}
}

func TestPendingBackgroundAppliesAtTickBoundary(t *testing.T) {
	e := newTestEngine(t)
	defer e.Close()
	if err := e.SetSource(newSineSource(2048, 10, 0.3)); err != nil {
		t.Fatalf("SetSource() error = %v", err)
	}
	now := drive(e, time.Unix(0, 0), 3)
	before := e.CopyFrame(nil)

	white := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range white.Pix {
		white.Pix[i] = 0xff
	}

	e.mu.Lock()
	gen := e.bgGen
	e.mu.Unlock()
	e.resolveBackground(gen, white, nil)

	e.mu.Lock()
	pending := e.pendingBg != nil
	e.mu.Unlock()
	if !pending {
		t.Fatal("resolved background not staged")
	}

	e.tick(now.Add(e.interval))
	after := e.CopyFrame(nil)
	if bytes.Equal(before.Pix, after.Pix) {
		t.Fatal("background image had no effect on the composed frame")
	}

	e.mu.Lock()
	pending = e.pendingBg != nil
	e.mu.Unlock()
	if pending {
		t.Fatal("pending slot not consumed by the tick")
	}
}

func TestStaleBackgroundResolveIsDiscarded(t *testing.T) {
	e := newTestEngine(t)
	defer e.Close()

	e.mu.Lock()
	stale := e.bgGen
	e.mu.Unlock()

	e.ClearBackground()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	e.resolveBackground(stale, img, nil)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pendingBg == nil {
		t.Fatal("clear marker lost")
	}
	if e.pendingBg.img != nil {
		t.Fatal("stale load overwrote a newer clear")
	}
}

func TestResolveAfterCloseIsDiscarded(t *testing.T) {
	e := newTestEngine(t)
	e.Close()

	e.mu.Lock()
	gen := e.bgGen
	e.mu.Unlock()
	e.resolveBackground(gen, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pendingBg != nil {
		t.Fatal("resolve after Close mutated engine state")
	}
}

func TestFramesDeliversCopiesUntilCancelled(t *testing.T) {
	e := newTestEngine(t)
	defer e.Close()
	if err := e.SetSource(newSineSource(2048, 10, 0.8)); err != nil {
		t.Fatalf("SetSource() error = %v", err)
	}
	drive(e, time.Unix(0, 0), 2)

	ctx, cancel := context.WithCancel(context.Background())
	ch := e.Frames(ctx, 100)

	select {
	case frame := <-ch:
		if frame == nil {
			t.Fatal("Frames delivered nil frame")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no frame delivered within 2s")
	}

	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("Frames channel not closed after cancel")
		}
	}
}
