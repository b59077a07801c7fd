package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/wav"
)

func TestWAVCaptureRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.wav")
	wc, err := newWAVCapture(path, 44100, 2)
	if err != nil {
		t.Fatalf("newWAVCapture() error = %v", err)
	}

	want := []int{1000, -2000, 3000, -4000, 32767, -32768}
	raw := make([]byte, 0, len(want)*2)
	for _, v := range want {
		raw = append(raw, byte(uint16(int16(v))), byte(uint16(int16(v))>>8))
	}

	// split mid-sample to exercise the carry
	if _, err := wc.Write(raw[:5]); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if _, err := wc.Write(raw[5:]); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := wc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer() error = %v", err)
	}

	if len(buf.Data) != len(want) {
		t.Fatalf("decoded %d samples, want %d", len(buf.Data), len(want))
	}
	for i, v := range want {
		if buf.Data[i] != v {
			t.Fatalf("sample %d = %d, want %d", i, buf.Data[i], v)
		}
	}
	if dec.SampleRate != 44100 {
		t.Fatalf("SampleRate = %d, want 44100", dec.SampleRate)
	}
	if dec.NumChans != 2 {
		t.Fatalf("NumChans = %d, want 2", dec.NumChans)
	}
}

func TestStopWithoutStart(t *testing.T) {
	r := NewRecorder(t.TempDir(), 60, 44100, 2)
	if _, err := r.Stop(); err == nil {
		t.Fatal("Stop() without Start() succeeded")
	}
	if r.Active() {
		t.Fatal("Active() = true on idle recorder")
	}
}

func TestOutputPaths(t *testing.T) {
	video, audio, final := outputPaths("recordings", "20260101-120000")
	if video != filepath.Join("recordings", "visual-20260101-120000.video.mp4") {
		t.Fatalf("video path = %q", video)
	}
	if audio != filepath.Join("recordings", "visual-20260101-120000.wav") {
		t.Fatalf("audio path = %q", audio)
	}
	if final != filepath.Join("recordings", "visual-20260101-120000.mp4") {
		t.Fatalf("final path = %q", final)
	}
}

func TestEncodeArgs(t *testing.T) {
	got := strings.Join(encodeArgs(1080, 1920, 60, "out.mp4"), " ")
	want := "-v quiet -f rawvideo -pix_fmt rgba -s 1080x1920 -r 60 -i pipe:0" +
		" -c:v libx264 -preset veryfast -crf 18 -pix_fmt yuv420p -y out.mp4"
	if got != want {
		t.Fatalf("encodeArgs() = %q, want %q", got, want)
	}
}

func TestMuxArgs(t *testing.T) {
	got := strings.Join(muxArgs("v.mp4", "a.wav", "final.mp4"), " ")
	want := "-v quiet -i v.mp4 -i a.wav -c:v copy -c:a aac -b:a 192k" +
		" -shortest -movflags +faststart -y final.mp4"
	if got != want {
		t.Fatalf("muxArgs() = %q, want %q", got, want)
	}
}
