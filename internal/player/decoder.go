package player

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// source is a decoded PCM stream: seekable s16le samples at the file's
// native sample rate and channel layout.
type source interface {
	io.ReadSeeker

	// Length returns the total decoded stream size in bytes.
	Length() int64
	SampleRate() int
	ChannelCount() int
}

// openSource picks a decoder for the file by extension.
func openSource(f *os.File) (source, error) {
	ext := strings.ToLower(filepath.Ext(f.Name()))
	switch ext {
	case ".mp3":
		return newMP3Source(f)
	case ".wav":
		return newWAVSource(f)
	case ".flac":
		return newFLACSource(f)
	case ".ogg", ".oga":
		return newOGGSource(f)
	}
	return nil, fmt.Errorf("unsupported audio format %q", ext)
}

// carry buffers converted samples that did not fit the caller's slice and
// tracks the stream position in output bytes. Decoders that convert in
// chunks embed it and serve reads through drain/deliver.
type carry struct {
	buf []byte
	pos int64
}

// drain serves a pending read from the leftover buffer, if any.
func (c *carry) drain(p []byte) (int, bool) {
	if len(c.buf) == 0 {
		return 0, false
	}
	n := copy(p, c.buf)
	c.buf = c.buf[n:]
	c.pos += int64(n)
	return n, true
}

// deliver copies freshly converted bytes to the caller and keeps the
// overflow for the next read. Call only after drain came up empty.
func (c *carry) deliver(p, converted []byte) int {
	n := copy(p, converted)
	if n < len(converted) {
		c.buf = append(c.buf[:0], converted[n:]...)
	}
	c.pos += int64(n)
	return n
}

// rewind drops buffered samples after a seek.
func (c *carry) rewind(pos int64) {
	c.buf = c.buf[:0]
	c.pos = pos
}

func clip16(v int) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

func putSample(dst []byte, v int16) {
	binary.LittleEndian.PutUint16(dst, uint16(v))
}

// mp3Source wraps go-mp3, which already emits s16le stereo.
type mp3Source struct {
	dec *mp3.Decoder
}

func newMP3Source(f *os.File) (*mp3Source, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decoding mp3: %w", err)
	}
	return &mp3Source{dec: dec}, nil
}

func (s *mp3Source) Read(p []byte) (int, error) { return s.dec.Read(p) }
func (s *mp3Source) Seek(offset int64, whence int) (int64, error) {
	return s.dec.Seek(offset, whence)
}
func (s *mp3Source) Length() int64     { return s.dec.Length() }
func (s *mp3Source) SampleRate() int   { return s.dec.SampleRate() }
func (s *mp3Source) ChannelCount() int { return 2 }

// wavSource reads PCM straight out of the data chunk, converting 8, 24
// and 32 bit samples down to 16 bit on the fly.
type wavSource struct {
	carry
	file      *os.File
	dataStart int64
	dataLen   int64 // source bytes
	rate      int
	channels  int
	depth     int // source bits per sample
	srcOff    int64
	scratch   []byte
}

func newWAVSource(f *os.File) (*wavSource, error) {
	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("reading wav header: %w", err)
	}
	if dec.WavAudioFormat != 1 {
		return nil, fmt.Errorf("unsupported wav encoding %d, want PCM", dec.WavAudioFormat)
	}
	depth := int(dec.BitDepth)
	switch depth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported wav bit depth %d", depth)
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("locating wav data chunk: %w", err)
	}
	start, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	return &wavSource{
		file:      f,
		dataStart: start,
		dataLen:   dec.PCMLen(),
		rate:      int(dec.SampleRate),
		channels:  int(dec.NumChans),
		depth:     depth,
	}, nil
}

func (s *wavSource) Read(p []byte) (int, error) {
	if n, ok := s.drain(p); ok {
		return n, nil
	}
	srcBytes := s.depth / 8
	samples := len(p) / 2
	if samples < 1 {
		samples = 1
	}
	if rem := (s.dataLen - s.srcOff) / int64(srcBytes); int64(samples) > rem {
		samples = int(rem)
	}
	if samples <= 0 {
		return 0, io.EOF
	}
	want := samples * srcBytes
	if cap(s.scratch) < want {
		s.scratch = make([]byte, want)
	}
	raw := s.scratch[:want]
	if _, err := io.ReadFull(s.file, raw); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}
	s.srcOff += int64(want)

	out := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		putSample(out[i*2:], s.decodeSample(raw[i*srcBytes:]))
	}
	return s.deliver(p, out), nil
}

func (s *wavSource) decodeSample(b []byte) int16 {
	switch s.depth {
	case 8:
		// 8 bit wav is unsigned
		return int16(int(b[0])-128) << 8
	case 16:
		return int16(binary.LittleEndian.Uint16(b))
	case 24:
		v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if v&0x800000 != 0 {
			v |= ^int32(0xffffff)
		}
		return int16(v >> 8)
	default: // 32
		return int16(int32(binary.LittleEndian.Uint32(b)) >> 16)
	}
}

func (s *wavSource) Seek(offset int64, whence int) (int64, error) {
	target, err := resolveSeek(offset, whence, s.pos, s.Length(), s.channels)
	if err != nil {
		return 0, err
	}
	srcFrame := int64(s.depth / 8 * s.channels)
	s.srcOff = target / int64(2*s.channels) * srcFrame
	if _, err := s.file.Seek(s.dataStart+s.srcOff, io.SeekStart); err != nil {
		return 0, err
	}
	s.rewind(target)
	return target, nil
}

func (s *wavSource) Length() int64 {
	return s.dataLen / int64(s.depth/8) * 2
}

func (s *wavSource) SampleRate() int   { return s.rate }
func (s *wavSource) ChannelCount() int { return s.channels }

// flacSource decodes frame by frame, rescaling whatever bit depth the
// stream carries to 16 bit.
type flacSource struct {
	carry
	stream   *flac.Stream
	rate     int
	channels int
	depth    int
	frames   int64 // total inter-channel frames
}

func newFLACSource(f *os.File) (*flacSource, error) {
	stream, err := flac.NewSeek(f)
	if err != nil {
		return nil, fmt.Errorf("decoding flac: %w", err)
	}
	info := stream.Info
	return &flacSource{
		stream:   stream,
		rate:     int(info.SampleRate),
		channels: int(info.NChannels),
		depth:    int(info.BitsPerSample),
		frames:   int64(info.NSamples),
	}, nil
}

func (s *flacSource) Read(p []byte) (int, error) {
	if n, ok := s.drain(p); ok {
		return n, nil
	}
	frame, err := s.stream.ParseNext()
	if err != nil {
		return 0, err
	}
	if len(frame.Subframes) == 0 || len(frame.Subframes[0].Samples) == 0 {
		return 0, nil
	}
	samples := len(frame.Subframes[0].Samples)
	shift := s.depth - 16

	out := make([]byte, samples*s.channels*2)
	for i := 0; i < samples; i++ {
		for ch := 0; ch < s.channels; ch++ {
			v := int(frame.Subframes[ch].Samples[i])
			if shift > 0 {
				v >>= shift
			} else if shift < 0 {
				v <<= -shift
			}
			putSample(out[(i*s.channels+ch)*2:], clip16(v))
		}
	}
	return s.deliver(p, out), nil
}

func (s *flacSource) Seek(offset int64, whence int) (int64, error) {
	target, err := resolveSeek(offset, whence, s.pos, s.Length(), s.channels)
	if err != nil {
		return 0, err
	}
	actual, err := s.stream.Seek(uint64(target / int64(2*s.channels)))
	if err != nil {
		return 0, fmt.Errorf("seeking flac: %w", err)
	}
	pos := int64(actual) * int64(2*s.channels)
	s.rewind(pos)
	return pos, nil
}

func (s *flacSource) Length() int64 {
	return s.frames * int64(s.channels) * 2
}

func (s *flacSource) SampleRate() int   { return s.rate }
func (s *flacSource) ChannelCount() int { return s.channels }

// oggSource decodes Vorbis to float32 and quantizes to s16le.
type oggSource struct {
	carry
	reader  *oggvorbis.Reader
	scratch []float32
}

func newOGGSource(f *os.File) (*oggSource, error) {
	r, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding ogg vorbis: %w", err)
	}
	return &oggSource{reader: r}, nil
}

func (s *oggSource) Read(p []byte) (int, error) {
	if n, ok := s.drain(p); ok {
		return n, nil
	}
	samples := len(p) / 2
	if samples < 1 {
		samples = 1
	}
	// round reads up to whole frames so channels never straddle calls
	if ch := s.reader.Channels(); samples%ch != 0 {
		samples += ch - samples%ch
	}
	if cap(s.scratch) < samples {
		s.scratch = make([]float32, samples)
	}
	n, err := s.reader.Read(s.scratch[:samples])
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}

	out := make([]byte, n*2)
	for i, f := range s.scratch[:n] {
		putSample(out[i*2:], clip16(int(f*32767)))
	}
	return s.deliver(p, out), nil
}

func (s *oggSource) Seek(offset int64, whence int) (int64, error) {
	target, err := resolveSeek(offset, whence, s.pos, s.Length(), s.reader.Channels())
	if err != nil {
		return 0, err
	}
	if err := s.reader.SetPosition(target / int64(2*s.reader.Channels())); err != nil {
		return 0, fmt.Errorf("seeking ogg: %w", err)
	}
	s.rewind(target)
	return target, nil
}

func (s *oggSource) Length() int64 {
	return s.reader.Length() * int64(s.reader.Channels()) * 2
}

func (s *oggSource) SampleRate() int   { return s.reader.SampleRate() }
func (s *oggSource) ChannelCount() int { return s.reader.Channels() }

// resolveSeek turns a whence-relative offset into an absolute byte
// position clamped to the stream and aligned to a whole frame.
func resolveSeek(offset int64, whence int, pos, length int64, channels int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = pos + offset
	case io.SeekEnd:
		target = length + offset
	default:
		return 0, fmt.Errorf("invalid seek whence %d", whence)
	}
	if target < 0 {
		target = 0
	}
	if target > length {
		target = length
	}
	frame := int64(2 * channels)
	return target - target%frame, nil
}
