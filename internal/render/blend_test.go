package render

import "testing"

func TestScreenChannel(t *testing.T) {
	tests := []struct {
		dst, src, want uint8
	}{
		{0, 0, 0},
		{0, 200, 200},
		{200, 0, 200},
		{255, 10, 255},
		{10, 255, 255},
		{128, 128, 192},
	}
	for _, tt := range tests {
		if got := screenChannel(tt.dst, tt.src); got != tt.want {
			t.Fatalf("screenChannel(%d, %d) = %d, want %d", tt.dst, tt.src, got, tt.want)
		}
	}
}

func TestScreenChannelNeverDarkens(t *testing.T) {
	for d := 0; d < 256; d += 5 {
		for s := 0; s < 256; s += 5 {
			if got := screenChannel(uint8(d), uint8(s)); int(got) < d || int(got) < s {
				t.Fatalf("screenChannel(%d, %d) = %d, want >= both inputs", d, s, got)
			}
		}
	}
}

func TestSoftLightChannelBehavesAroundMidGray(t *testing.T) {
	for d := range 256 {
		v := uint8(d)
		if got := softLightChannel(v, 0); got > v {
			t.Fatalf("softLightChannel(%d, 0) = %d, want <= %d (dark source darkens)", d, got, d)
		}
		if got := softLightChannel(v, 255); got < v {
			t.Fatalf("softLightChannel(%d, 255) = %d, want >= %d (bright source lightens)", d, got, d)
		}
		got := softLightChannel(v, 127)
		diff := int(got) - d
		if diff < -2 || diff > 2 {
			t.Fatalf("softLightChannel(%d, 127) = %d, want near-neutral at mid-gray", d, got)
		}
	}
}

func TestLuminanceEndpoints(t *testing.T) {
	if got := luminance(0, 0, 0); got != 0 {
		t.Fatalf("luminance(black) = %d, want 0", got)
	}
	if got := luminance(255, 255, 255); got != 255 {
		t.Fatalf("luminance(white) = %d, want 255", got)
	}
	// Green carries the most weight.
	if luminance(0, 255, 0) <= luminance(255, 0, 0) {
		t.Fatalf("luminance(green) = %d, want above luminance(red) = %d",
			luminance(0, 255, 0), luminance(255, 0, 0))
	}
}

func TestCompositeMixesByAlpha(t *testing.T) {
	if got := composite(100, 200, 0); got != 100 {
		t.Fatalf("composite(100, 200, 0) = %d, want 100", got)
	}
	if got := composite(100, 200, 1); got != 200 {
		t.Fatalf("composite(100, 200, 1) = %d, want 200", got)
	}
	if got := composite(100, 200, 0.5); got != 150 {
		t.Fatalf("composite(100, 200, 0.5) = %d, want 150", got)
	}
}

func TestBrightnessContrastUnityIsIdentity(t *testing.T) {
	for v := range 256 {
		if got := brightnessContrast(uint8(v), 1, 1); got != uint8(v) {
			t.Fatalf("brightnessContrast(%d, 1, 1) = %d, want %d", v, got, v)
		}
	}
}

func TestBrightnessContrastClamps(t *testing.T) {
	if got := brightnessContrast(200, 3, 1); got != 255 {
		t.Fatalf("brightnessContrast(200, 3, 1) = %d, want clamp to 255", got)
	}
	if got := brightnessContrast(10, 1, 5); got != 0 {
		t.Fatalf("brightnessContrast(10, 1, 5) = %d, want clamp to 0", got)
	}
}
