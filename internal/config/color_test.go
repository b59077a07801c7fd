package config

import (
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#000000", color.RGBA{0, 0, 0, 255}},
		{"#ffffff", color.RGBA{255, 255, 255, 255}},
		{"#7a5cff", color.RGBA{122, 92, 255, 255}},
		{"#0a0a0f80", color.RGBA{10, 10, 15, 128}},
		{"#FFC878", color.RGBA{255, 200, 120, 255}},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if err != nil {
			t.Fatalf("ParseColor(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseColorRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "7a5cff", "#7a5c", "#7a5cf", "#7a5cffab00", "#zzzzzz"} {
		if _, err := ParseColor(in); err == nil {
			t.Fatalf("ParseColor(%q) error = nil, want error", in)
		}
	}
}
