package config

import "fmt"

// surfacePresets are the supported surface geometries: portrait, square,
// landscape.
var surfacePresets = map[string][2]int{
	"1080x1920": {1080, 1920},
	"1080x1080": {1080, 1080},
	"1920x1080": {1920, 1080},
}

// Presets lists the surface preset names in display order.
func Presets() []string {
	return []string{"1080x1920", "1080x1080", "1920x1080"}
}

// SurfaceSize resolves the configured preset into logical pixels.
func (c Config) SurfaceSize() (width, height int, err error) {
	size, ok := surfacePresets[c.Surface.Preset]
	if !ok {
		return 0, 0, fmt.Errorf("unknown surface preset %q, expected one of %v", c.Surface.Preset, Presets())
	}
	return size[0], size[1], nil
}
