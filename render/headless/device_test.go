package headless

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sculpto/sculpto/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevice_WriteUniformCopiesData(t *testing.T) {
	d := NewDevice()
	data := []byte{1, 2, 3}
	require.NoError(t, d.WriteUniform(render.UniformPassData, data))
	data[0] = 9

	got, ok := d.LastUpload(render.UniformPassData)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, got)

	_, ok = d.LastUpload(render.UniformLights)
	assert.False(t, ok)
}

func TestDevice_InjectedFailures(t *testing.T) {
	d := NewDevice()
	boom := errors.New("boom")
	d.FailUpload[render.UniformLights] = boom
	d.FailDraw[1] = boom

	assert.ErrorIs(t, d.WriteUniform(render.UniformLights, nil), boom)
	assert.NoError(t, d.Draw(render.DrawCall{Index: 0}))
	assert.ErrorIs(t, d.Draw(render.DrawCall{Index: 1}), boom)
	assert.Len(t, d.Draws, 1)
	assert.Empty(t, d.Uploads)

	d.Reset()
	assert.Empty(t, d.Draws)
	assert.ErrorIs(t, d.Draw(render.DrawCall{Index: 1}), boom, "Reset keeps injected failures")
}

func TestDevice_DecodesUploadedBlocks(t *testing.T) {
	d := NewDevice()
	_, ok := d.Lights()
	assert.False(t, ok)
	_, ok = d.PassData()
	assert.False(t, ok)

	var s render.LightsStorage
	require.NoError(t, s.SubmitPointLight(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{1, 1, 1}, 1, 0, 0))
	require.NoError(t, d.WriteUniform(render.UniformLights, s.Encode()))
	lights, ok := d.Lights()
	require.True(t, ok)
	assert.Equal(t, 1, lights.PointLightsCount())

	require.NoError(t, d.WriteUniform(render.UniformLights, []byte{0}))
	_, ok = d.Lights()
	assert.False(t, ok, "a truncated block does not decode")
}

func TestResources_BindPairing(t *testing.T) {
	m := NewMesh("cube", render.TopologyTriangles, 36)
	require.NoError(t, m.Bind())
	assert.Error(t, m.Bind())
	m.Unbind()
	require.NoError(t, m.Bind())
	assert.Equal(t, 2, m.Binds)

	m.Release()
	assert.False(t, m.Valid())
	m.Unbind()
	assert.Error(t, m.Bind())

	var nilMesh *Mesh
	assert.False(t, nilMesh.Valid())

	fb := NewFramebuffer("offscreen", 320, 200)
	w, h := fb.Size()
	assert.Equal(t, 320, w)
	assert.Equal(t, 200, h)
	assert.NotEqual(t, fb.ID(), NewFramebuffer("offscreen", 1, 1).ID())
}

func TestStaticCamera(t *testing.T) {
	cam := NewStaticCamera(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, 1)
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, cam.Direction())
	assert.Equal(t, mgl32.Vec3{0, 0, 5}, cam.Position())

	// the target projects to the center of clip space
	clip := cam.ViewProjection().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, clip.X()/clip.W(), 1e-5)
	assert.InDelta(t, 0, clip.Y()/clip.W(), 1e-5)
}
