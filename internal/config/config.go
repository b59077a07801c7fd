package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/brysonandrew/visualizer/internal/spectrum"
	"github.com/brysonandrew/visualizer/internal/visual"
)

// Config carries every tunable of the pipeline. Load starts from Default
// and overlays a YAML file, so a config file only needs the fields it wants
// to change.
type Config struct {
	Surface  SurfaceConfig  `yaml:"surface"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Beat     BeatConfig     `yaml:"beat"`
	Visual   VisualConfig   `yaml:"visual"`
	Render   RenderConfig   `yaml:"render"`
	Export   ExportConfig   `yaml:"export"`
}

// SurfaceConfig picks the drawing surface geometry and tick rate.
type SurfaceConfig struct {
	Preset     string  `yaml:"preset"`      // one of Presets()
	FPS        int     `yaml:"fps"`         // render ticks per second
	PixelRatio float64 `yaml:"pixel_ratio"` // device pixels per logical pixel
}

// AnalysisConfig tunes the spectrum analyzer and the band windows.
type AnalysisConfig struct {
	FFTSize   int                `yaml:"fft_size"`
	Smoothing float64            `yaml:"smoothing"`
	MinDb     float64            `yaml:"min_db"`
	MaxDb     float64            `yaml:"max_db"`
	Bass      spectrum.BandRange `yaml:"bass"`
	Mid       spectrum.BandRange `yaml:"mid"`
}

// BeatConfig tunes the detector. Durations are in milliseconds to keep the
// YAML plain numbers.
type BeatConfig struct {
	RampMs            int     `yaml:"ramp_ms"`
	Gamma             float64 `yaml:"gamma"`
	LevelSmoothing    float64 `yaml:"level_smoothing"`
	EnvelopeSmoothing float64 `yaml:"envelope_smoothing"`
	BassWeight        float64 `yaml:"bass_weight"`
	MidWeight         float64 `yaml:"mid_weight"`
	Threshold         float64 `yaml:"threshold"`
	CooldownMs        int     `yaml:"cooldown_ms"`
	BoostDecay        float64 `yaml:"boost_decay"`
}

// VisualConfig holds the level-to-parameter mapping weights.
type VisualConfig struct {
	Edge                visual.Weights `yaml:"edge"`
	Center              visual.Weights `yaml:"center"`
	Grain               visual.Weights `yaml:"grain"`
	GrainBase           float64        `yaml:"grain_base"`
	GrainMax            float64        `yaml:"grain_max"`
	RotationDegrees     float64        `yaml:"rotation_degrees"`
	BeatRotationDegrees float64        `yaml:"beat_rotation_degrees"`
	BeatScale           float64        `yaml:"beat_scale"`
	Brightness          visual.Weights `yaml:"brightness"`
	Contrast            visual.Weights `yaml:"contrast"`
}

// RenderConfig styles the composition. Colors are "#rrggbb" or "#rrggbbaa".
type RenderConfig struct {
	ClearColor     string  `yaml:"clear_color"`
	CenterColor    string  `yaml:"center_color"`
	EdgeColor      string  `yaml:"edge_color"`
	CenterStop     float64 `yaml:"center_stop"`
	EdgeStart      float64 `yaml:"edge_start"`
	CenterStrength float64 `yaml:"center_strength"`
	EdgeStrength   float64 `yaml:"edge_strength"`
	DesatAlpha     float64 `yaml:"desat_alpha"`
	Overscan       float64 `yaml:"overscan"`

	Background string `yaml:"background"` // background image path, optional
	NoisePath  string `yaml:"noise_path"` // grain texture path; empty generates one
	NoiseSize  int    `yaml:"noise_size"` // generated tile size
	NoiseSeed  uint64 `yaml:"noise_seed"`
}

// ExportConfig tunes the recorder.
type ExportConfig struct {
	FPS int    `yaml:"fps"` // capture frame rate
	Dir string `yaml:"dir"` // where finished recordings land
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Surface: SurfaceConfig{
			Preset:     "1080x1920",
			FPS:        30,
			PixelRatio: 1,
		},
		Analysis: AnalysisConfig{
			FFTSize:   2048,
			Smoothing: 0.8,
			MinDb:     -100,
			MaxDb:     -30,
			Bass:      spectrum.BandRange{Start: 0, End: 0.08},
			Mid:       spectrum.BandRange{Start: 0.08, End: 0.35},
		},
		Beat: BeatConfig{
			RampMs:            1200,
			Gamma:             0.65,
			LevelSmoothing:    0.06,
			EnvelopeSmoothing: 0.05,
			BassWeight:        0.7,
			MidWeight:         0.3,
			Threshold:         1.35,
			CooldownMs:        280,
			BoostDecay:        0.88,
		},
		Visual: VisualConfig{
			Edge:                visual.Weights{Bass: 0.6, Mid: 0.2, Boost: 1.0},
			Center:              visual.Weights{Bass: 0.15, Mid: 0.9, Boost: 0.7},
			Grain:               visual.Weights{Bass: 0.10, Mid: 0.18, Boost: 0.15},
			GrainBase:           0.06,
			GrainMax:            0.32,
			RotationDegrees:     1.5,
			BeatRotationDegrees: 2.0,
			BeatScale:           1.03,
			Brightness:          visual.Weights{Bass: 0.35, Boost: 0.45},
			Contrast:            visual.Weights{Mid: 0.25, Boost: 0.25},
		},
		Render: RenderConfig{
			ClearColor:     "#0a0a0f",
			CenterColor:    "#ffc878",
			EdgeColor:      "#7a5cff",
			CenterStop:     0.65,
			EdgeStart:      0.45,
			CenterStrength: 0.85,
			EdgeStrength:   0.9,
			DesatAlpha:     0.08,
			Overscan:       1.12,
			NoiseSize:      128,
			NoiseSeed:      1,
		},
		Export: ExportConfig{
			FPS: 60,
			Dir: "recordings",
		},
	}
}

// Load reads a YAML file over the defaults. An empty path is not an error;
// it simply returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the pipeline cannot run with.
func (c Config) Validate() error {
	if _, _, err := c.SurfaceSize(); err != nil {
		return err
	}
	if c.Surface.FPS < 1 || c.Surface.FPS > 240 {
		return fmt.Errorf("surface.fps %d out of range [1, 240]", c.Surface.FPS)
	}
	if c.Surface.PixelRatio <= 0 || c.Surface.PixelRatio > 4 {
		return fmt.Errorf("surface.pixel_ratio %v out of range (0, 4]", c.Surface.PixelRatio)
	}

	if n := c.Analysis.FFTSize; n < 32 || n&(n-1) != 0 {
		return fmt.Errorf("analysis.fft_size %d is not a power of two >= 32", n)
	}
	if s := c.Analysis.Smoothing; s < 0 || s >= 1 {
		return fmt.Errorf("analysis.smoothing %v out of range [0, 1)", s)
	}
	if c.Analysis.MinDb >= c.Analysis.MaxDb {
		return fmt.Errorf("analysis db range [%v, %v] is empty", c.Analysis.MinDb, c.Analysis.MaxDb)
	}
	for _, band := range []struct {
		name string
		r    spectrum.BandRange
	}{{"bass", c.Analysis.Bass}, {"mid", c.Analysis.Mid}} {
		if band.r.Start < 0 || band.r.End > 1 || band.r.Start >= band.r.End {
			return fmt.Errorf("analysis.%s range [%v, %v) is not an ordered slice of [0, 1]",
				band.name, band.r.Start, band.r.End)
		}
	}

	if c.Beat.RampMs < 0 {
		return fmt.Errorf("beat.ramp_ms %d is negative", c.Beat.RampMs)
	}
	if g := c.Beat.Gamma; g <= 0 || g > 2 {
		return fmt.Errorf("beat.gamma %v out of range (0, 2]", g)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"beat.level_smoothing", c.Beat.LevelSmoothing},
		{"beat.envelope_smoothing", c.Beat.EnvelopeSmoothing},
	} {
		if f.v <= 0 || f.v > 1 {
			return fmt.Errorf("%s %v out of range (0, 1]", f.name, f.v)
		}
	}
	if c.Beat.Threshold <= 1 {
		return fmt.Errorf("beat.threshold %v must exceed 1", c.Beat.Threshold)
	}
	if c.Beat.CooldownMs < 0 {
		return fmt.Errorf("beat.cooldown_ms %d is negative", c.Beat.CooldownMs)
	}
	if d := c.Beat.BoostDecay; d <= 0 || d >= 1 {
		return fmt.Errorf("beat.boost_decay %v out of range (0, 1)", d)
	}

	if c.Visual.GrainBase < 0 || c.Visual.GrainMax > 1 || c.Visual.GrainBase > c.Visual.GrainMax {
		return fmt.Errorf("visual grain opacity [%v, %v] is not an ordered slice of [0, 1]",
			c.Visual.GrainBase, c.Visual.GrainMax)
	}
	if c.Visual.BeatScale <= 0 {
		return fmt.Errorf("visual.beat_scale %v must be positive", c.Visual.BeatScale)
	}

	for _, col := range []struct {
		name string
		v    string
	}{
		{"render.clear_color", c.Render.ClearColor},
		{"render.center_color", c.Render.CenterColor},
		{"render.edge_color", c.Render.EdgeColor},
	} {
		if _, err := ParseColor(col.v); err != nil {
			return fmt.Errorf("%s: %w", col.name, err)
		}
	}
	if c.Render.Overscan < 1 {
		return fmt.Errorf("render.overscan %v must be at least 1", c.Render.Overscan)
	}
	if c.Render.NoiseSize < 2 || c.Render.NoiseSize > 1024 {
		return fmt.Errorf("render.noise_size %d out of range [2, 1024]", c.Render.NoiseSize)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"render.center_stop", c.Render.CenterStop},
		{"render.edge_start", c.Render.EdgeStart},
	} {
		if f.v <= 0 || f.v >= 1 || math.IsNaN(f.v) {
			return fmt.Errorf("%s %v out of range (0, 1)", f.name, f.v)
		}
	}

	if c.Export.FPS < 1 || c.Export.FPS > 240 {
		return fmt.Errorf("export.fps %d out of range [1, 240]", c.Export.FPS)
	}
	return nil
}

// TickInterval converts the surface FPS into the scheduler period.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Surface.FPS)
}
