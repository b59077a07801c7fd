package player

import (
	"fmt"
	"io"
)

// Playback format handed to the audio device. Sources that already match
// pass through untouched; everything else goes through conformed.
const (
	playbackRate     = 44100
	playbackChannels = 2
	frameBytes       = playbackChannels * 2
)

// conform wraps src so it reads as 44.1 kHz stereo s16le, upmixing mono
// and resampling by linear interpolation.
func conform(src source) (source, error) {
	rate, channels := src.SampleRate(), src.ChannelCount()
	if rate == playbackRate && channels == playbackChannels {
		return src, nil
	}
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("unsupported channel count %d", channels)
	}
	if rate < 1 {
		return nil, fmt.Errorf("invalid sample rate %d", rate)
	}
	srcFrames := src.Length() / int64(channels*2)
	return &conformed{
		src:       src,
		rate:      rate,
		channels:  channels,
		srcFrames: srcFrames,
		outFrames: srcFrames * playbackRate / int64(rate),
	}, nil
}

// conformed resamples a source to the playback format. The source frame
// feeding output frame i is i*rate/playbackRate, so seeking is just a
// matter of repositioning both streams and dropping the window.
type conformed struct {
	carry
	src source

	rate      int
	channels  int
	srcFrames int64
	outFrames int64
	outPos    int64 // next output frame

	// window holds upcoming source frames, already upmixed to stereo.
	// base is the absolute source frame index of window[0].
	window []int16
	base   int64
	rem    []byte // partial source frame left over from the last read
	eof    bool

	scratch []byte
}

func (c *conformed) Read(p []byte) (int, error) {
	if n, ok := c.drain(p); ok {
		return n, nil
	}
	if c.outPos >= c.outFrames {
		return 0, io.EOF
	}
	frames := len(p) / frameBytes
	if frames < 1 {
		frames = 1
	}
	if rem := c.outFrames - c.outPos; int64(frames) > rem {
		frames = int(rem)
	}

	out := make([]byte, frames*frameBytes)
	produced := 0
	for i := 0; i < frames; i++ {
		num := (c.outPos + int64(i)) * int64(c.rate)
		idx := num / playbackRate
		frac := num % playbackRate

		l0, r0, l1, r1, err := c.fetchPair(idx)
		if err != nil {
			if err == io.EOF && produced > 0 {
				break
			}
			return 0, err
		}
		putSample(out[i*frameBytes:], lerpSample(l0, l1, frac))
		putSample(out[i*frameBytes+2:], lerpSample(r0, r1, frac))
		produced++
	}
	c.outPos += int64(produced)
	return c.deliver(p, out[:produced*frameBytes]), nil
}

// fetchPair returns source frames idx and idx+1, reading ahead as needed.
// Past the end of the stream the last frame stands in for its successor.
func (c *conformed) fetchPair(idx int64) (l0, r0, l1, r1 int16, err error) {
	if drop := idx - c.base; drop > 0 {
		have := int64(len(c.window) / 2)
		if drop >= have {
			c.window = c.window[:0]
			c.base += have
		} else {
			n := copy(c.window, c.window[drop*2:])
			c.window = c.window[:n]
			c.base = idx
		}
	}
	for int64(len(c.window)/2) <= idx-c.base+1 && !c.eof {
		if err := c.fill(); err != nil {
			return 0, 0, 0, 0, err
		}
	}
	have := int64(len(c.window) / 2)
	if idx >= c.base+have {
		return 0, 0, 0, 0, io.EOF
	}
	a := (idx - c.base) * 2
	b := a + 2
	if b >= have*2 {
		b = a
	}
	return c.window[a], c.window[a+1], c.window[b], c.window[b+1], nil
}

// fill reads one chunk from the source and appends whole frames to the
// window, keeping any trailing partial frame for the next call.
func (c *conformed) fill() error {
	if c.scratch == nil {
		c.scratch = make([]byte, 4096)
	}
	n, err := c.src.Read(c.scratch)
	if n > 0 {
		c.ingest(c.scratch[:n])
	}
	if err == io.EOF {
		c.eof = true
		return nil
	}
	return err
}

func (c *conformed) ingest(b []byte) {
	if len(c.rem) > 0 {
		b = append(c.rem, b...)
		c.rem = c.rem[:0]
	}
	srcFrame := c.channels * 2
	whole := len(b) / srcFrame * srcFrame
	for off := 0; off < whole; off += srcFrame {
		l := int16(uint16(b[off]) | uint16(b[off+1])<<8)
		r := l
		if c.channels == 2 {
			r = int16(uint16(b[off+2]) | uint16(b[off+3])<<8)
		}
		c.window = append(c.window, l, r)
	}
	if whole < len(b) {
		c.rem = append(c.rem, b[whole:]...)
	}
}

func lerpSample(a, b int16, frac int64) int16 {
	diff := int64(b) - int64(a)
	return int16(int64(a) + (diff*frac+playbackRate/2)/playbackRate)
}

func (c *conformed) Seek(offset int64, whence int) (int64, error) {
	target, err := resolveSeek(offset, whence, c.pos, c.Length(), playbackChannels)
	if err != nil {
		return 0, err
	}
	c.outPos = target / frameBytes
	srcIdx := c.outPos * int64(c.rate) / playbackRate
	if _, err := c.src.Seek(srcIdx*int64(c.channels*2), io.SeekStart); err != nil {
		return 0, err
	}
	c.window = c.window[:0]
	c.base = srcIdx
	c.rem = c.rem[:0]
	c.eof = false
	c.rewind(target)
	return target, nil
}

func (c *conformed) Length() int64     { return c.outFrames * frameBytes }
func (c *conformed) SampleRate() int   { return playbackRate }
func (c *conformed) ChannelCount() int { return playbackChannels }
