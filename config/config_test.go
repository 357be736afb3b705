package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[window]
width = 640
title = "test"

[camera]
position = [1.0, 2.0, 3.0]

[effects]
hdr = true
exposure = 2.5

[scene]
point_lights = 50

[log]
debug = true
`))
	require.NoError(t, err)

	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height, "unset keys keep their defaults")
	assert.Equal(t, "test", cfg.Window.Title)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, cfg.Camera.Eye())
	assert.Equal(t, float32(60), cfg.Camera.Fov)
	assert.True(t, cfg.Log.Debug)
	assert.Equal(t, "sculpto", cfg.Log.Prefix)
	assert.Equal(t, 50, cfg.Scene.PointLights)

	post := cfg.Effects.PostEffects()
	assert.True(t, post.HDR)
	assert.Equal(t, float32(2.5), post.Exposure)
	assert.Equal(t, 4, post.BlurIterations)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"syntax", "[window\nwidth = 1", "parse config"},
		{"size", "[window]\nwidth = 0", "window: invalid size"},
		{"fov", "[camera]\nfov = 180.0", "fov"},
		{"clip", "[camera]\nnear = 10.0\nfar = 1.0", "clip range"},
		{"point lights", "[scene]\npoint_lights = 51", "point_lights 51"},
		{"spot lights", "[scene]\nspot_lights = -1", "spot_lights -1"},
		{"blur", "[effects]\nblur_iterations = -2", "blur_iterations"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_JoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Window.Width = -1
	cfg.Scene.Cubes = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window")
	assert.Contains(t, err.Error(), "cubes")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sandbox.toml")

	data, err := Default().Marshal()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestNewCamera(t *testing.T) {
	cfg := Default()
	cfg.Camera.Yaw = 90
	cfg.Effects.Bloom = true

	cam := cfg.NewCamera(800, 400)
	assert.Equal(t, mgl32.Vec3{0, 2, 10}, cam.Position())
	assert.InDelta(t, 1.5708, cam.Yaw, 1e-4)
	assert.Equal(t, float32(2), cam.Aspect())
	assert.True(t, cam.Effects().Bloom)
	assert.InDelta(t, 1, cam.Direction().X(), 1e-5, "yaw 90 looks down +X")
}
