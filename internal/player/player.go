package player

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Player decodes an audio file and streams it to the audio device. All
// reads pass through a Tap so the spectrum pipeline sees exactly the
// samples being played.
type Player struct {
	file      *os.File
	src       source
	tap       *Tap
	otoCtx    *oto.Context
	otoPlayer *oto.Player
	duration  time.Duration
	volume    float64
	paused    bool
	done      chan struct{}
	mu        sync.Mutex
	closed    bool
}

// oto allows a single context per process, so it is created once and
// shared across players.
var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   playbackRate,
			ChannelCount: playbackChannels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// New opens the audio file at path and starts playing it. The tap keeps
// the most recent tapSize mono samples for analysis.
func New(path string, tapSize int) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	raw, err := openSource(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	src, err := conform(raw)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("conforming %s: %w", path, err)
	}

	ctx, err := initOto()
	if err != nil {
		f.Close()
		return nil, err
	}

	totalBytes := src.Length()
	dur := time.Duration(float64(totalBytes) / float64(playbackRate*frameBytes) * float64(time.Second))

	p := &Player{
		file:     f,
		src:      src,
		tap:      NewTap(src, tapSize),
		otoCtx:   ctx,
		duration: dur,
		volume:   0.8,
		done:     make(chan struct{}),
	}

	p.otoPlayer = ctx.NewPlayer(p.tap)
	p.otoPlayer.SetVolume(p.volume)
	p.otoPlayer.Play()

	go p.monitor()

	return p, nil
}

func (p *Player) monitor() {
	// Poll until playback finishes or the player is closed
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return
		}
		pos := p.tap.Pos()
		total := p.src.Length()
		paused := p.paused
		done := p.done
		p.mu.Unlock()

		if !paused && pos >= total {
			close(done)
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
}

// Tap returns the analysis tap. It stays valid across seeks and
// restarts.
func (p *Player) Tap() *Tap {
	return p.tap
}

// Done returns a channel that closes when playback finishes.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Restart seeks back to the beginning and resumes playback with a fresh
// done channel.
func (p *Player) Restart() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.src.Seek(0, io.SeekStart)
	p.tap.Rewind(0)

	p.otoPlayer.Pause()
	p.otoPlayer = p.otoCtx.NewPlayer(p.tap)
	p.otoPlayer.SetVolume(p.volume)

	p.done = make(chan struct{})
	p.paused = false
	p.otoPlayer.Play()

	go p.monitor()
}

// TogglePause toggles between play and pause.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paused {
		p.otoPlayer.Play()
		p.paused = false
	} else {
		p.otoPlayer.Pause()
		p.paused = true
	}
}

// Paused returns whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	pos := p.tap.Pos()
	secs := float64(pos) / float64(playbackRate*frameBytes)
	return time.Duration(secs * float64(time.Second))
}

// Duration returns the total duration of the track.
func (p *Player) Duration() time.Duration {
	return p.duration
}

// Seek moves playback by the given delta from the current position.
func (p *Player) Seek(delta time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pos := p.tap.Pos()
	newPos := pos + int64(delta.Seconds()*float64(playbackRate*frameBytes))
	if newPos < 0 {
		newPos = 0
	}
	if total := p.src.Length(); newPos > total {
		newPos = total
	}
	newPos -= newPos % frameBytes

	if _, err := p.src.Seek(newPos, io.SeekStart); err != nil {
		return
	}
	p.tap.Rewind(newPos)

	// Recreate the device player to flush its buffer
	wasPaused := p.paused
	p.otoPlayer.Pause()
	p.otoPlayer = p.otoCtx.NewPlayer(p.tap)
	p.otoPlayer.SetVolume(p.volume)
	if !wasPaused {
		p.otoPlayer.Play()
	}
}

// Volume returns the current volume in [0, 1].
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume sets the volume, clamped to [0, 1].
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.volume = v
	p.otoPlayer.SetVolume(v)
}

// AdjustVolume adjusts the volume by delta.
func (p *Player) AdjustVolume(delta float64) {
	p.mu.Lock()
	v := p.volume + delta
	p.mu.Unlock()
	p.SetVolume(v)
}

// Close releases the audio device and the underlying file.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	p.otoPlayer.Pause()
	p.file.Close()
}
