// Command framedump renders the demo scene on the headless device and writes what one flush
// sent to the device as YAML.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sculpto/sculpto"
	"github.com/sculpto/sculpto/config"
	"github.com/sculpto/sculpto/render"
	"github.com/sculpto/sculpto/render/headless"
	"github.com/sculpto/sculpto/scene"
	"gopkg.in/yaml.v3"
)

// Capture is the document written for one frame.
type Capture struct {
	Time  float32           `yaml:"time"`
	Scene scene.SubmitStats `yaml:"scene"`
	Stats render.FlushStats `yaml:"stats"`
	Frame headless.Frame    `yaml:"frame"`
}

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file (defaults are used when empty)")
	out := flag.String("out", "", "Output file (stdout when empty)")
	at := flag.Float64("t", 0, "Scene time in seconds")
	cull := flag.Bool("cull", false, "Skip objects outside the camera frustum")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	// stdout may carry the document
	logger := sculpto.NewLogger(os.Stderr, os.Stderr, cfg.Log.Prefix, cfg.Log.Debug || *debug)

	w := io.Writer(os.Stdout)
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			logger.Errorf("create output: %v", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	if err := dump(w, cfg, float32(*at), *cull, logger); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func dump(w io.Writer, cfg config.Config, t float32, cull bool, logger sculpto.Logger) error {
	s, err := scene.Build(cfg.Scene, headless.Assets{})
	if err != nil {
		return err
	}

	cam := cfg.NewCamera(cfg.Window.Width, cfg.Window.Height)

	dev := headless.NewDevice()
	ctx := render.NewContext(dev,
		render.WithName("framedump"),
		render.WithLogger(logger),
		render.WithClock(func() float32 { return t }),
		render.WithViewport(cfg.Window.Width, cfg.Window.Height),
	)

	var culler scene.Culler
	if cull {
		culler = cam
	}
	submitted, err := s.Submit(ctx, cam, culler, t)
	if err != nil {
		ctx.Discard()
		return fmt.Errorf("submit: %w", err)
	}
	stats, err := ctx.FlushToDefaultFrameBuffer()
	if err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Capture{Time: t, Scene: submitted, Stats: stats, Frame: dev.Frame()}); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return enc.Close()
}
