package player

import (
	"bytes"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenSourceRejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.xyz")
	if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()

	if _, err := openSource(f); err == nil {
		t.Fatalf("openSource() accepted extension .xyz")
	}
}

func TestClip16(t *testing.T) {
	tests := []struct {
		in   int
		want int16
	}{
		{0, 0},
		{1234, 1234},
		{-1234, -1234},
		{math.MaxInt16, math.MaxInt16},
		{math.MaxInt16 + 100, math.MaxInt16},
		{math.MinInt16 - 100, math.MinInt16},
	}
	for _, tt := range tests {
		if got := clip16(tt.in); got != tt.want {
			t.Fatalf("clip16(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestWAVDecodeSample(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		raw   []byte
		want  int16
	}{
		{"8 bit midpoint", 8, []byte{128}, 0},
		{"8 bit max", 8, []byte{255}, 127 << 8},
		{"8 bit min", 8, []byte{0}, -(128 << 8)},
		{"16 bit", 16, pcm16(-12345), -12345},
		{"24 bit positive", 24, []byte{0x00, 0x00, 0x40}, 0x4000},
		{"24 bit negative", 24, []byte{0x00, 0x00, 0x80}, math.MinInt16},
		{"32 bit", 32, []byte{0x00, 0x00, 0x00, 0x40}, 0x4000},
	}
	for _, tt := range tests {
		s := &wavSource{depth: tt.depth}
		if got := s.decodeSample(tt.raw); got != tt.want {
			t.Fatalf("%s: decodeSample(%v) = %d, want %d", tt.name, tt.raw, got, tt.want)
		}
	}
}

func TestCarryDeliversOverflowAcrossReads(t *testing.T) {
	var c carry
	if _, ok := c.drain(make([]byte, 4)); ok {
		t.Fatalf("drain() on empty carry reported data")
	}

	p := make([]byte, 3)
	if n := c.deliver(p, []byte{1, 2, 3, 4, 5}); n != 3 {
		t.Fatalf("deliver() = %d, want 3", n)
	}
	if !bytes.Equal(p, []byte{1, 2, 3}) {
		t.Fatalf("deliver() wrote %v, want [1 2 3]", p)
	}

	n, ok := c.drain(p)
	if !ok || n != 2 {
		t.Fatalf("drain() = %d, %v, want 2, true", n, ok)
	}
	if !bytes.Equal(p[:n], []byte{4, 5}) {
		t.Fatalf("drain() wrote %v, want [4 5]", p[:n])
	}
	if c.pos != 5 {
		t.Fatalf("pos = %d, want 5", c.pos)
	}

	c.rewind(0)
	if _, ok := c.drain(p); ok {
		t.Fatalf("drain() after rewind reported data")
	}
	if c.pos != 0 {
		t.Fatalf("pos after rewind = %d, want 0", c.pos)
	}
}

func TestResolveSeek(t *testing.T) {
	tests := []struct {
		name    string
		offset  int64
		whence  int
		pos     int64
		length  int64
		want    int64
		wantErr bool
	}{
		{"start", 8, io.SeekStart, 0, 100, 8, false},
		{"current", 4, io.SeekCurrent, 8, 100, 12, false},
		{"end", -4, io.SeekEnd, 0, 100, 96, false},
		{"clamps low", -50, io.SeekStart, 0, 100, 0, false},
		{"clamps high", 500, io.SeekStart, 0, 100, 100, false},
		{"aligns to frame", 7, io.SeekStart, 0, 100, 4, false},
		{"bad whence", 0, 99, 0, 100, 0, true},
	}
	for _, tt := range tests {
		got, err := resolveSeek(tt.offset, tt.whence, tt.pos, tt.length, 2)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%s: resolveSeek() error = nil, want error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: resolveSeek() error = %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("%s: resolveSeek() = %d, want %d", tt.name, got, tt.want)
		}
	}
}
