package gpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/sculpto/sculpto/render"
	"github.com/sculpto/sculpto/render/headless"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder drives a frame through a RenderContext without a GPU.
type recorder struct{ f *frame }

func (r recorder) WriteUniform(slot render.UniformSlot, data []byte) error {
	return r.f.writeUniform(slot, data)
}
func (r recorder) Draw(call render.DrawCall) error { return r.f.record(call) }

func testMesh(name string, topo render.Topology) *Mesh {
	return &Mesh{id: uuid.New(), name: name, topology: topo, indexCount: 36}
}

func testFramebuffer(f *frame, name string) *Framebuffer {
	return &Framebuffer{id: uuid.New(), name: name, width: 64, height: 64, frame: f}
}

func f32At(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func TestStrides(t *testing.T) {
	assert.Equal(t, 256, passStride)
	assert.Equal(t, 4864, lightsStride)
	assert.Equal(t, 256, drawStride)
	assert.Zero(t, lightsStride%uniformAlign)
}

func TestFrame_UniformOrdering(t *testing.T) {
	var f frame

	err := f.writeUniform(render.UniformLights, make([]byte, render.LightsStorageSize))
	assert.ErrorIs(t, err, errNoPassUniforms)

	err = f.writeUniform(render.UniformPassData, make([]byte, 10))
	assert.ErrorIs(t, err, render.ErrBufferSize)
	assert.Empty(t, f.batches)

	require.NoError(t, f.writeUniform(render.UniformPassData, make([]byte, render.PassDataSize)))
	err = f.record(render.DrawCall{Mesh: testMesh("m", render.TopologyTriangles), Material: NewMaterial("p", mgl32.Vec4{1, 1, 1, 1})})
	assert.ErrorIs(t, err, errNoPassUniforms, "draws need the lights block of their batch")

	err = f.writeUniform(render.UniformLights, make([]byte, 7))
	assert.ErrorIs(t, err, render.ErrBufferSize)
	require.NoError(t, f.writeUniform(render.UniformLights, make([]byte, render.LightsStorageSize)))

	require.Len(t, f.batches, 1)
	assert.Equal(t, 0, f.batches[0].pass)
	assert.Equal(t, 0, f.batches[0].lights)
	assert.Len(t, f.passData, passStride)
	assert.Len(t, f.lightsData, lightsStride)
}

func TestFrame_RejectsForeignHandles(t *testing.T) {
	var f frame
	require.NoError(t, f.writeUniform(render.UniformPassData, make([]byte, render.PassDataSize)))
	require.NoError(t, f.writeUniform(render.UniformLights, make([]byte, render.LightsStorageSize)))

	mat := NewMaterial("p", mgl32.Vec4{1, 1, 1, 1})
	err := f.record(render.DrawCall{Mesh: headless.NewMesh("cube", render.TopologyTriangles, 36), Material: mat})
	assert.ErrorIs(t, err, errForeignHandle)

	err = f.record(render.DrawCall{Mesh: testMesh("m", render.TopologyTriangles), Material: headless.NewMaterial("x")})
	assert.ErrorIs(t, err, errForeignHandle)

	err = f.record(render.DrawCall{Mesh: testMesh("m", render.TopologyTriangles), Material: mat, Target: headless.NewFramebuffer("fb", 4, 4)})
	assert.ErrorIs(t, err, errForeignHandle)

	err = f.record(render.DrawCall{Mesh: testMesh("p", render.TopologyPatches), Material: mat})
	assert.ErrorIs(t, err, errUnsupportedTopology)

	assert.Zero(t, f.drawCount())
}

func TestFrame_EncodesDrawData(t *testing.T) {
	var f frame
	require.NoError(t, f.writeUniform(render.UniformPassData, make([]byte, render.PassDataSize)))
	require.NoError(t, f.writeUniform(render.UniformLights, make([]byte, render.LightsStorageSize)))

	mat := NewMaterial("red", mgl32.Vec4{1, 0, 0, 0.5})
	mat.Shininess = 64
	world := mgl32.Translate3D(1, 2, 3)
	call := render.DrawCall{
		Mesh:                testMesh("m", render.TopologyTriangles),
		Material:            mat,
		Transform:           world,
		Normal:              render.NormalMatrix(world),
		WorldViewProjection: mgl32.Scale3D(2, 2, 2),
	}
	require.NoError(t, f.record(call))
	require.NoError(t, f.record(call))

	assert.Equal(t, 2, f.drawCount())
	require.Len(t, f.batches[0].draws, 2)
	assert.Equal(t, 1, f.batches[0].draws[1].slot)

	slot := f.drawData[drawStride:]
	assert.Equal(t, float32(1), f32At(slot, 12*4), "world translation x")
	assert.Equal(t, float32(3), f32At(slot, 14*4), "world translation z")
	assert.Equal(t, float32(2), f32At(slot, 64), "wvp[0][0]")
	assert.Equal(t, float32(1), f32At(slot, 128), "normal column 0")
	assert.Equal(t, float32(1), f32At(slot, 128+16+4), "normal column 1")
	assert.Equal(t, float32(0.5), f32At(slot, 176+12), "albedo alpha")
	assert.Equal(t, float32(0.5), f32At(slot, 192), "specular")
	assert.Equal(t, float32(64), f32At(slot, 204), "shininess")
}

func TestFrame_BatchPerFlush(t *testing.T) {
	var f frame
	dev := recorder{f: &f}
	cam := headless.NewStaticCamera(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, 1)
	mesh := testMesh("cube", render.TopologyTriangles)
	mat := NewMaterial("white", mgl32.Vec4{1, 1, 1, 1})
	offscreen := testFramebuffer(&f, "shadow")

	shadow := render.NewContext(dev, render.WithName("shadow"))
	main := render.NewContext(dev, render.WithName("main"))

	_, err := shadow.SubmitCamera(cam)
	require.NoError(t, err)
	require.NoError(t, shadow.Submit(mesh, mat, mgl32.Ident4()))
	_, err = shadow.Flush(offscreen)
	require.NoError(t, err)

	_, err = main.SubmitCamera(cam)
	require.NoError(t, err)
	require.NoError(t, main.SubmitPointLight(mgl32.Vec3{0, 3, 0}, mgl32.Vec3{1, 1, 1}, 1, 0.09, 0.032))
	for i := 0; i < 3; i++ {
		require.NoError(t, main.Submit(mesh, mat, mgl32.Translate3D(float32(i), 0, 0)))
	}
	stats, err := main.FlushToDefaultFrameBuffer()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Draws)

	require.Len(t, f.batches, 2)
	assert.Same(t, offscreen, f.batches[0].target)
	assert.Len(t, f.batches[0].draws, 1)
	assert.Nil(t, f.batches[1].target)
	assert.Equal(t, 1, f.batches[1].pass)
	assert.Equal(t, 1, f.batches[1].lights)
	assert.Equal(t, []int{1, 2, 3}, []int{f.batches[1].draws[0].slot, f.batches[1].draws[1].slot, f.batches[1].draws[2].slot})

	lights, err := render.DecodeLightsStorage(f.lightsData[lightsStride : lightsStride+render.LightsStorageSize])
	require.NoError(t, err)
	assert.Equal(t, 1, lights.PointLightsCount())

	f.reset()
	assert.Empty(t, f.batches)
	assert.Zero(t, f.drawCount())
	assert.Empty(t, f.passData)
}

func TestFrame_TargetComesFromBind(t *testing.T) {
	var f frame
	dev := recorder{f: &f}
	cam := headless.NewStaticCamera(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, 1)
	mat := NewMaterial("white", mgl32.Vec4{1, 1, 1, 1})
	ctx := render.NewContext(dev)

	// empty flush
	empty := testFramebuffer(&f, "empty")
	_, err := ctx.SubmitCamera(cam)
	require.NoError(t, err)
	_, err = ctx.Flush(empty)
	require.NoError(t, err)

	// every submission skipped
	skipped := testFramebuffer(&f, "skipped")
	gone := testMesh("gone", render.TopologyTriangles)
	_, err = ctx.SubmitCamera(cam)
	require.NoError(t, err)
	require.NoError(t, ctx.Submit(gone, mat, mgl32.Ident4()))
	gone.Release()
	stats, err := ctx.Flush(skipped)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)

	// released target uploads nothing
	released := testFramebuffer(&f, "released")
	released.Release()
	_, err = ctx.SubmitCamera(cam)
	require.NoError(t, err)
	_, err = ctx.Flush(released)
	assert.ErrorIs(t, err, render.ErrInvalidHandle)

	_, err = ctx.SubmitCamera(cam)
	require.NoError(t, err)
	_, err = ctx.FlushToDefaultFrameBuffer()
	require.NoError(t, err)

	require.Len(t, f.batches, 3)
	assert.Same(t, empty, f.batches[0].target)
	assert.Empty(t, f.batches[0].draws)
	assert.Same(t, skipped, f.batches[1].target)
	assert.Empty(t, f.batches[1].draws)
	assert.Nil(t, f.batches[2].target, "unbind restores the default target")
	assert.Nil(t, f.bound)
}

func TestFrame_RejectsDrawToUnboundTarget(t *testing.T) {
	var f frame
	require.NoError(t, f.writeUniform(render.UniformPassData, make([]byte, render.PassDataSize)))
	require.NoError(t, f.writeUniform(render.UniformLights, make([]byte, render.LightsStorageSize)))

	err := f.record(render.DrawCall{
		Mesh:     testMesh("m", render.TopologyTriangles),
		Material: NewMaterial("p", mgl32.Vec4{1, 1, 1, 1}),
		Target:   testFramebuffer(&f, "other"),
	})
	assert.ErrorIs(t, err, errTargetMismatch)
	assert.Zero(t, f.drawCount())
}
