package export

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavCapture turns the raw s16le byte stream mirrored off the playback
// tap into a WAV file. Writes arrive on the audio device goroutine in
// arbitrary chunk sizes, so a partial trailing sample is carried over.
type wavCapture struct {
	mu  sync.Mutex
	f   *os.File
	enc *wav.Encoder
	buf *audio.IntBuffer
	rem byte
	odd bool
	err error
}

func newWAVCapture(path string, rate, channels int) (*wavCapture, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return &wavCapture{
		f:   f,
		enc: wav.NewEncoder(f, rate, 16, channels, 1),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
			SourceBitDepth: 16,
		},
	}, nil
}

func (w *wavCapture) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return 0, w.err
	}

	data := w.buf.Data[:0]
	for _, b := range p {
		if !w.odd {
			w.rem = b
			w.odd = true
			continue
		}
		data = append(data, int(int16(uint16(w.rem)|uint16(b)<<8)))
		w.odd = false
	}
	w.buf.Data = data

	if len(data) > 0 {
		if err := w.enc.Write(w.buf); err != nil {
			w.err = fmt.Errorf("writing wav: %w", err)
			return 0, w.err
		}
	}
	return len(p), nil
}

// Close finalizes the WAV header.
func (w *wavCapture) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.enc != nil {
		if err := w.enc.Close(); err != nil && w.err == nil {
			w.err = fmt.Errorf("closing wav: %w", err)
		}
		w.enc = nil
	}
	if w.f != nil {
		if err := w.f.Close(); err != nil && w.err == nil {
			w.err = err
		}
		w.f = nil
	}
	return w.err
}
