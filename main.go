package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/integrii/flaggy"

	"github.com/brysonandrew/visualizer/internal/config"
	"github.com/brysonandrew/visualizer/internal/engine"
	"github.com/brysonandrew/visualizer/internal/export"
	"github.com/brysonandrew/visualizer/internal/media"
	"github.com/brysonandrew/visualizer/internal/player"
	"github.com/brysonandrew/visualizer/internal/ui"
)

const appName = "visualizer"
const appDesc = "audio-reactive visuals for the terminal"

var version = "dev"

type options struct {
	path        string
	configPath  string
	preset      string
	fps         int
	background  string
	noise       string
	outDir      string
	listPresets bool
}

func main() {
	var opts options
	if err := doFlags(&opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if opts.listPresets {
		for _, name := range config.Presets() {
			fmt.Println(name)
		}
		return
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := applyFlags(&cfg, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	path := opts.path
	if path == "" {
		browser := ui.NewBrowser()
		if browser.HasError() {
			fmt.Fprintf(os.Stderr, "Error: %v\n", browser.Error())
			os.Exit(1)
		}
		p := tea.NewProgram(browser, tea.WithAltScreen())
		finalModel, err := p.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		bm, ok := finalModel.(ui.BrowserModel)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: unexpected model type from browser\n")
			os.Exit(1)
		}
		result := bm.Result()
		if result.Cancelled {
			os.Exit(0)
		}
		path = result.Path
	}

	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if info.IsDir() {
		fmt.Fprintf(os.Stderr, "Error: %s is a directory\n", path)
		os.Exit(1)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !media.IsSupportedExt(ext) {
		fmt.Fprintf(os.Stderr, "Error: unsupported format %s (supported: %s)\n", ext, media.SupportedExtsList())
		os.Exit(1)
	}

	meta := player.ReadMetadata(path)

	// The tap ring holds a few analysis windows so a slow UI tick never
	// starves the analyzer.
	p, err := player.New(path, cfg.Analysis.FFTSize*4)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating player: %v\n", err)
		os.Exit(1)
	}
	defer p.Close()

	eng, err := engine.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer eng.Close()
	if err := eng.SetSource(p.Tap()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	eng.Start()

	rec := export.NewRecorder(cfg.Export.Dir, cfg.Export.FPS, player.PlaybackRate, player.PlaybackChannels)

	model := ui.New(p, eng, rec, meta)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func doFlags(opts *options) error {
	parser := flaggy.NewParser(appName)
	parser.Description = appDesc
	parser.Version = version

	listPresetsCmd := flaggy.Subcommand{
		Name:        "list-presets",
		ShortName:   "lp",
		Description: "list the surface presets",
	}
	parser.AttachSubcommand(&listPresetsCmd, 1)

	parser.AddPositionalValue(&opts.path, "file", 1, false, "audio file to play")
	parser.String(&opts.configPath, "c", "config", "config file (YAML)")
	parser.String(&opts.preset, "p", "preset", "surface preset (see list-presets)")
	parser.Int(&opts.fps, "f", "fps", "render ticks per second")
	parser.String(&opts.background, "b", "background", "background image (png or jpeg)")
	parser.String(&opts.noise, "n", "noise", "grain texture image (png or jpeg)")
	parser.String(&opts.outDir, "o", "out", "directory for finished recordings")

	if err := parser.Parse(); err != nil {
		return err
	}
	opts.listPresets = listPresetsCmd.Used
	return nil
}

// applyFlags overlays command line switches onto the loaded config.
func applyFlags(cfg *config.Config, opts options) error {
	if opts.preset != "" {
		cfg.Surface.Preset = opts.preset
	}
	if opts.fps > 0 {
		cfg.Surface.FPS = opts.fps
	}
	if opts.background != "" {
		if !media.IsImageExt(filepath.Ext(opts.background)) {
			return fmt.Errorf("background %s is not a png or jpeg", opts.background)
		}
		cfg.Render.Background = opts.background
	}
	if opts.noise != "" {
		if !media.IsImageExt(filepath.Ext(opts.noise)) {
			return fmt.Errorf("noise %s is not a png or jpeg", opts.noise)
		}
		cfg.Render.NoisePath = opts.noise
	}
	if opts.outDir != "" {
		cfg.Export.Dir = opts.outDir
	}
	return nil
}
