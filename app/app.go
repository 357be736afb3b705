// Package app runs the demo scene in a glfw window on the WebGPU device.
package app

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/sculpto/sculpto"
	"github.com/sculpto/sculpto/config"
	"github.com/sculpto/sculpto/render"
	"github.com/sculpto/sculpto/render/camera"
	"github.com/sculpto/sculpto/render/gpu"
	"github.com/sculpto/sculpto/render/overlay"
	"github.com/sculpto/sculpto/scene"
)

const statsFontSize = 24

type App struct {
	Window        *glfw.Window
	Instance      *wgpu.Instance
	Adapter       *wgpu.Adapter
	Device        *wgpu.Device
	Surface       *wgpu.Surface
	SurfaceConfig *wgpu.SurfaceConfiguration

	Config   config.Config
	Logger   sculpto.Logger
	Renderer *gpu.Device
	Context  *render.RenderContext
	Camera   *camera.Camera
	Scene    *scene.Scene
	Text     *gpu.TextPass

	Input    Input
	Stats    overlay.Stats
	Profiler *Profiler

	ShowStats bool
	Cull      bool
	StartTime float64
	LastTime  float64
}

func NewApp(window *glfw.Window, cfg config.Config, logger sculpto.Logger) *App {
	return &App{
		Window:    window,
		Config:    cfg,
		Logger:    sculpto.LoggerOrNop(logger),
		Camera:    cfg.NewCamera(window.GetFramebufferSize()),
		Profiler:  NewProfiler(),
		ShowStats: true,
		Cull:      true,
	}
}

func (a *App) Init() error {
	a.Instance = wgpu.CreateInstance(nil)
	a.Surface = a.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(a.Window))

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	a.Adapter = adapter

	a.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}

	width, height := a.Window.GetFramebufferSize()
	caps := a.Surface.GetCapabilities(adapter)
	a.SurfaceConfig = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	a.Surface.Configure(adapter, a.Device, a.SurfaceConfig)

	a.Renderer, err = gpu.NewDevice(a.Device, a.SurfaceConfig.Format, width, height, a.Logger)
	if err != nil {
		return err
	}

	atlas, err := overlay.NewDefaultAtlas(statsFontSize)
	if err != nil {
		a.Logger.Warnf("text overlay disabled: %v", err)
	} else if a.Text, err = a.Renderer.NewTextPass(atlas); err != nil {
		a.Logger.Warnf("text overlay disabled: %v", err)
	} else {
		a.Renderer.Overlay = a.Text
	}

	a.Scene, err = scene.Build(a.Config.Scene, gpu.Assets{Device: a.Renderer})
	if err != nil {
		return err
	}

	a.StartTime = glfw.GetTime()
	a.LastTime = a.StartTime
	a.Context = render.NewContext(a.Renderer,
		render.WithName("main"),
		render.WithLogger(a.Logger),
		render.WithClock(func() float32 { return float32(glfw.GetTime() - a.StartTime) }),
		render.WithViewport(width, height),
		render.WithAmbient(a.Scene.Ambient),
	)
	a.Logger.Infof("renderer ready: %dx%d, format %v, %d objects", width, height, a.SurfaceConfig.Format, len(a.Scene.Objects))
	return nil
}

func (a *App) Resize(w, h int) {
	a.Camera.Resize(w, h)
	if w <= 0 || h <= 0 {
		return
	}
	a.SurfaceConfig.Width = uint32(w)
	a.SurfaceConfig.Height = uint32(h)
	a.Surface.Configure(a.Adapter, a.Device, a.SurfaceConfig)
	a.Context.SetViewport(w, h)
	if err := a.Renderer.Resize(w, h); err != nil {
		a.Logger.Errorf("resize: %v", err)
	}
}

// Update samples input and moves the camera.
func (a *App) Update() {
	now := glfw.GetTime()
	dt := float32(now - a.LastTime)

	a.Input.Poll(a.Window)
	if a.Input.JustPressed[KeyEscape] {
		a.Window.SetShouldClose(true)
	}
	if a.Input.JustPressed[KeyF1] {
		a.ShowStats = !a.ShowStats
	}
	if a.Input.JustPressed[KeyF3] {
		a.Cull = !a.Cull
		a.Logger.Infof("frustum culling: %t", a.Cull)
	}
	FlyCamera{Camera: a.Camera}.Update(&a.Input, dt)
}

// Render submits the scene, flushes it into the default framebuffer and presents. The
// swapchain image is acquired last and always presented once acquired.
func (a *App) Render() {
	now := glfw.GetTime()
	dt := now - a.LastTime
	a.LastTime = now
	a.Profiler.Reset()

	a.Stats.Tick(dt, a.submitFrame(float32(now-a.StartTime)))
	a.layoutOverlay()

	a.Profiler.BeginScope("present")
	defer a.Profiler.EndScope("present")

	texture, err := a.Surface.GetCurrentTexture()
	if err != nil {
		a.Logger.Errorf("get current texture: %v", err)
		a.Renderer.DiscardFrame()
		return
	}
	defer texture.Release()
	defer a.Surface.Present()

	view, err := texture.CreateView(nil)
	if err != nil {
		a.Logger.Errorf("create view: %v", err)
		a.Renderer.DiscardFrame()
		return
	}
	defer view.Release()
	if err := a.Renderer.Present(view); err != nil {
		a.Logger.Errorf("present: %v", err)
	}
}

// submitFrame records one pass of the scene at time t. A pass that fails to open is discarded
// and an empty frame is still presented.
func (a *App) submitFrame(t float32) render.FlushStats {
	var culler scene.Culler
	if a.Cull {
		culler = a.Camera
	}
	a.Profiler.BeginScope("submit")
	submitted, err := a.Scene.Submit(a.Context, a.Camera, culler, t)
	a.Profiler.EndScope("submit")
	a.Profiler.SetCount("culled", submitted.Culled)
	a.Profiler.SetCount("rejected", submitted.Rejected)
	if err != nil {
		a.Logger.Errorf("submit scene: %v", err)
		a.Context.Discard()
		return render.FlushStats{}
	}

	a.Profiler.BeginScope("flush")
	defer a.Profiler.EndScope("flush")
	flushed, err := a.Context.FlushToDefaultFrameBuffer()
	if err != nil {
		a.Logger.Errorf("flush: %v", err)
	}
	return flushed
}

func (a *App) layoutOverlay() {
	if a.Text == nil {
		return
	}
	a.Text.Items = a.Text.Items[:0]
	if !a.ShowStats {
		return
	}
	atlas := a.Text.Atlas()
	a.Text.Items = append(a.Text.Items, a.Stats.Items(atlas, 10, 10, 0.75)...)
	y := 10 + float32(len(a.Text.Items))*atlas.LineHeight(0.75)
	for i, line := range a.Profiler.Lines() {
		a.Text.Items = append(a.Text.Items, overlay.Item{
			Text:     line,
			Position: [2]float32{10, y + float32(i)*atlas.LineHeight(0.6)},
			Scale:    0.6,
			Color:    [4]float32{0.8, 0.8, 0.8, 1},
		})
	}
}

func (a *App) Release() {
	if a.Scene != nil {
		a.Scene.Release()
	}
	if a.Renderer != nil {
		a.Renderer.Release()
	}
	if a.Device != nil {
		a.Device.Release()
	}
	if a.Adapter != nil {
		a.Adapter.Release()
	}
	if a.Surface != nil {
		a.Surface.Release()
	}
	if a.Instance != nil {
		a.Instance.Release()
	}
}
