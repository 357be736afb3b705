package main

import (
	"bytes"
	"testing"

	"github.com/sculpto/sculpto"
	"github.com/sculpto/sculpto/config"
	"github.com/sculpto/sculpto/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDump(t *testing.T) {
	cfg := config.Default()
	cfg.Scene.Cubes = 3
	cfg.Scene.PointLights = 2

	var buf bytes.Buffer
	require.NoError(t, dump(&buf, cfg, 1.5, false, sculpto.NewNopLogger()))

	var got Capture
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, float32(1.5), got.Time)
	assert.Equal(t, float32(1.5), got.Frame.Pass.Time)
	assert.Equal(t, 5, got.Stats.Draws)
	assert.Equal(t, scene.SubmitStats{}, got.Scene)
	require.Len(t, got.Frame.Draws, 5)
	assert.Equal(t, "floor", got.Frame.Draws[0].Mesh)
	assert.Equal(t, "cube", got.Frame.Draws[2].Mesh)
	assert.Equal(t, "cube0", got.Frame.Draws[2].Material)
	assert.Len(t, got.Frame.Lights.Point, 2)
	assert.NotNil(t, got.Frame.Lights.Directional)
	assert.Equal(t, [2]uint32{1280, 720}, got.Frame.Pass.Viewport)
}

func TestDump_Culling(t *testing.T) {
	cfg := config.Default()
	cfg.Camera.Position = [3]float32{0, 0, 100}
	cfg.Camera.Yaw = 180
	cfg.Camera.Far = 10

	var buf bytes.Buffer
	require.NoError(t, dump(&buf, cfg, 0, true, sculpto.NewNopLogger()))

	var got Capture
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Zero(t, got.Stats.Draws)
	assert.Equal(t, 2+cfg.Scene.Cubes, got.Scene.Culled)
	assert.Empty(t, got.Frame.Draws)
}
