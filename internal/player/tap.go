package player

import (
	"io"
	"sync"
)

// PlaybackRate and PlaybackChannels describe the PCM stream the tap
// observes, for consumers capturing it.
const (
	PlaybackRate     = playbackRate
	PlaybackChannels = playbackChannels
)

// Tap sits between the conformed stream and the audio device. Every byte
// the device pulls is folded down to mono float64 samples in a ring the
// spectrum analyzer reads, and counted so the transport can report its
// position. The device reads on its own goroutine, so all state is
// guarded.
type Tap struct {
	src io.Reader

	mu      sync.Mutex
	ring    []float64
	w       int
	filled  int
	pos     int64
	rem     [frameBytes]byte
	remLen  int
	capture io.Writer
}

// NewTap wraps src, keeping the most recent size mono samples for
// analysis.
func NewTap(src io.Reader, size int) *Tap {
	if size < 1 {
		size = 1
	}
	return &Tap{src: src, ring: make([]float64, size)}
}

func (t *Tap) Read(p []byte) (int, error) {
	n, err := t.src.Read(p)
	if n > 0 {
		t.ingest(p[:n])
	}
	return n, err
}

func (t *Tap) ingest(b []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pos += int64(len(b))

	if t.capture != nil {
		if _, err := t.capture.Write(b); err != nil {
			t.capture = nil
		}
	}

	for t.remLen > 0 && len(b) > 0 {
		t.rem[t.remLen] = b[0]
		t.remLen++
		b = b[1:]
		if t.remLen == frameBytes {
			t.push(t.rem[:])
			t.remLen = 0
		}
	}
	// Leaving the loop with a pending frame means b is exhausted.
	if t.remLen > 0 {
		return
	}
	whole := len(b) / frameBytes * frameBytes
	for off := 0; off < whole; off += frameBytes {
		t.push(b[off : off+frameBytes])
	}
	t.remLen = copy(t.rem[:], b[whole:])
}

// push folds one stereo s16le frame into the ring.
func (t *Tap) push(frame []byte) {
	l := int16(uint16(frame[0]) | uint16(frame[1])<<8)
	r := int16(uint16(frame[2]) | uint16(frame[3])<<8)
	t.ring[t.w] = (float64(l) + float64(r)) / 2 / 32768
	t.w++
	if t.w == len(t.ring) {
		t.w = 0
	}
	if t.filled < len(t.ring) {
		t.filled++
	}
}

// Samples copies the newest available samples into dst, oldest first,
// and reports how many were written.
func (t *Tap) Samples(dst []float64) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.filled
	if n > len(dst) {
		n = len(dst)
	}
	start := t.w - n
	if start < 0 {
		start += len(t.ring)
	}
	for i := 0; i < n; i++ {
		dst[i] = t.ring[(start+i)%len(t.ring)]
	}
	return n
}

// Pos returns the number of bytes read through the tap since the last
// rewind.
func (t *Tap) Pos() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pos
}

// Rewind resets the byte counter after a seek and clears stale samples.
func (t *Tap) Rewind(pos int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pos = pos
	t.w = 0
	t.filled = 0
	t.remLen = 0
}

// SetCapture mirrors the raw playback bytes into w until it is replaced
// or errors. Writes happen on the device read path, so w must not
// block.
func (t *Tap) SetCapture(w io.Writer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.capture = w
}
