// Package config loads the TOML settings of the sample applications.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
	"github.com/sculpto/sculpto/render"
	"github.com/sculpto/sculpto/render/camera"
)

type Window struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

type Camera struct {
	Fov      float32    `toml:"fov"`
	Near     float32    `toml:"near"`
	Far      float32    `toml:"far"`
	Position [3]float32 `toml:"position"`
	Yaw      float32    `toml:"yaw"`
	Pitch    float32    `toml:"pitch"`
}

type Effects struct {
	HDR            bool    `toml:"hdr"`
	Exposure       float32 `toml:"exposure"`
	Bloom          bool    `toml:"bloom"`
	BloomThreshold float32 `toml:"bloom_threshold"`
	Blur           bool    `toml:"blur"`
	BlurIterations int     `toml:"blur_iterations"`
}

type Scene struct {
	Ambient     [3]float32 `toml:"ambient"`
	Cubes       int        `toml:"cubes"`
	PointLights int        `toml:"point_lights"`
	SpotLights  int        `toml:"spot_lights"`
}

type Log struct {
	Prefix string `toml:"prefix"`
	Debug  bool   `toml:"debug"`
}

type Config struct {
	Window  Window  `toml:"window"`
	Camera  Camera  `toml:"camera"`
	Effects Effects `toml:"effects"`
	Scene   Scene   `toml:"scene"`
	Log     Log     `toml:"log"`
}

func Default() Config {
	return Config{
		Window: Window{Width: 1280, Height: 720, Title: "Sculpto Sandbox"},
		Camera: Camera{
			Fov:      60,
			Near:     0.1,
			Far:      500,
			Position: [3]float32{0, 2, 10},
		},
		Effects: Effects{Exposure: 1, BloomThreshold: 1, BlurIterations: 4},
		Scene: Scene{
			Ambient:     [3]float32{0.1, 0.1, 0.1},
			Cubes:       8,
			PointLights: 4,
			SpotLights:  1,
		},
		Log: Log{Prefix: "sculpto"},
	}
}

// Parse decodes data over the defaults, so a file only needs the keys it changes.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate reports every out-of-range setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window: invalid size %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Camera.Fov <= 0 || c.Camera.Fov >= 180 {
		errs = append(errs, fmt.Errorf("camera: fov %v out of (0, 180)", c.Camera.Fov))
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		errs = append(errs, fmt.Errorf("camera: invalid clip range %v..%v", c.Camera.Near, c.Camera.Far))
	}
	if c.Effects.Exposure < 0 {
		errs = append(errs, fmt.Errorf("effects: negative exposure %v", c.Effects.Exposure))
	}
	if c.Effects.BlurIterations < 0 {
		errs = append(errs, fmt.Errorf("effects: negative blur_iterations %d", c.Effects.BlurIterations))
	}
	if c.Scene.Cubes < 0 {
		errs = append(errs, fmt.Errorf("scene: negative cubes %d", c.Scene.Cubes))
	}
	if c.Scene.PointLights < 0 || c.Scene.PointLights > render.MaxPointLights {
		errs = append(errs, fmt.Errorf("scene: point_lights %d out of [0, %d]", c.Scene.PointLights, render.MaxPointLights))
	}
	if c.Scene.SpotLights < 0 || c.Scene.SpotLights > render.MaxSpotLights {
		errs = append(errs, fmt.Errorf("scene: spot_lights %d out of [0, %d]", c.Scene.SpotLights, render.MaxSpotLights))
	}
	return errors.Join(errs...)
}

func (e Effects) PostEffects() render.PostEffects {
	return render.PostEffects{
		HDR:            e.HDR,
		Exposure:       e.Exposure,
		Bloom:          e.Bloom,
		BloomThreshold: e.BloomThreshold,
		Blur:           e.Blur,
		BlurIterations: e.BlurIterations,
	}
}

func (s Scene) AmbientColor() mgl32.Vec3 { return mgl32.Vec3(s.Ambient) }

func (c Camera) Eye() mgl32.Vec3 { return mgl32.Vec3(c.Position) }

// NewCamera builds the configured camera for a width x height viewport. Yaw and pitch are
// given in degrees.
func (c Config) NewCamera(width, height int) *camera.Camera {
	cam := camera.New(width, height)
	cam.Eye = c.Camera.Eye()
	cam.Fov = c.Camera.Fov
	cam.Near = c.Camera.Near
	cam.Far = c.Camera.Far
	cam.Yaw = mgl32.DegToRad(c.Camera.Yaw)
	cam.Pitch = mgl32.DegToRad(c.Camera.Pitch)
	cam.Post = c.Effects.PostEffects()
	return cam
}
