package main

import (
	"flag"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/sculpto/sculpto"
	"github.com/sculpto/sculpto/app"
	"github.com/sculpto/sculpto/config"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file (defaults are used when empty)")
	debug := flag.Bool("debug", false, "Enable debug logging (one line per flush)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			sculpto.NewDefaultLogger("sandbox", false).Errorf("%v", err)
			os.Exit(1)
		}
	}
	logger := sculpto.NewDefaultLogger(cfg.Log.Prefix, cfg.Log.Debug || *debug)

	if err := glfw.Init(); err != nil {
		logger.Errorf("glfw init: %v", err)
		os.Exit(1)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		logger.Errorf("create window: %v", err)
		os.Exit(1)
	}
	defer window.Destroy()

	application := app.NewApp(window, cfg, logger)
	if err := application.Init(); err != nil {
		logger.Errorf("init: %v", err)
		os.Exit(1)
	}
	defer application.Release()

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		application.Resize(width, height)
	})

	for !window.ShouldClose() {
		glfw.PollEvents()
		application.Update()
		application.Render()
	}
}
