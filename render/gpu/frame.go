package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sculpto/sculpto/render"
)

// Dynamic uniform offsets must be multiples of this on every WebGPU adapter.
const uniformAlign = 256

const (
	drawDataSize = 208

	passStride   = (render.PassDataSize + uniformAlign - 1) / uniformAlign * uniformAlign
	lightsStride = (render.LightsStorageSize + uniformAlign - 1) / uniformAlign * uniformAlign
	drawStride   = (drawDataSize + uniformAlign - 1) / uniformAlign * uniformAlign
)

var (
	errForeignHandle       = errors.New("gpu: handle was not created by this backend")
	errUnsupportedTopology = errors.New("gpu: unsupported topology")
	errNoPassUniforms      = errors.New("gpu: draw recorded before the pass uniforms")
	errTargetMismatch      = errors.New("gpu: draw target differs from the bound target")
)

type drawCmd struct {
	mesh *Mesh
	slot int
}

// batch is one flush of a RenderContext: its uniform slots, target and draws.
type batch struct {
	pass   int
	lights int
	target *Framebuffer
	draws  []drawCmd
}

// frame stages everything flushed since the last Present. Uniform blocks are packed at
// aligned strides so each batch and draw binds its own slice through dynamic offsets.
// A batch takes its target from the framebuffer bound when its pass data arrives, so a
// flush with no draws still clears the right target.
type frame struct {
	passData   []byte
	lightsData []byte
	drawData   []byte
	batches    []batch
	bound      *Framebuffer
}

func appendSlot(dst []byte, stride int) ([]byte, []byte) {
	off := len(dst)
	dst = append(dst, make([]byte, stride)...)
	return dst, dst[off : off+stride]
}

func (f *frame) current() *batch {
	if len(f.batches) == 0 {
		return nil
	}
	return &f.batches[len(f.batches)-1]
}

func (f *frame) writeUniform(slot render.UniformSlot, data []byte) error {
	switch slot {
	case render.UniformPassData:
		if len(data) != render.PassDataSize {
			return fmt.Errorf("%v: %d bytes: %w", slot, len(data), render.ErrBufferSize)
		}
		var dst []byte
		idx := len(f.passData) / passStride
		f.passData, dst = appendSlot(f.passData, passStride)
		copy(dst, data)
		f.batches = append(f.batches, batch{pass: idx, lights: -1, target: f.bound})
		return nil

	case render.UniformLights:
		if len(data) != render.LightsStorageSize {
			return fmt.Errorf("%v: %d bytes: %w", slot, len(data), render.ErrBufferSize)
		}
		b := f.current()
		if b == nil {
			return fmt.Errorf("%v: %w", slot, errNoPassUniforms)
		}
		var dst []byte
		b.lights = len(f.lightsData) / lightsStride
		f.lightsData, dst = appendSlot(f.lightsData, lightsStride)
		copy(dst, data)
		return nil
	}
	return fmt.Errorf("gpu: unknown uniform slot %v", slot)
}

func (f *frame) record(call render.DrawCall) error {
	b := f.current()
	if b == nil || b.lights < 0 {
		return errNoPassUniforms
	}
	mesh, ok := call.Mesh.(*Mesh)
	if !ok {
		return fmt.Errorf("mesh %v: %w", call.Mesh.ID(), errForeignHandle)
	}
	if _, ok := primitiveTopologies[mesh.topology]; !ok {
		return fmt.Errorf("mesh %s: %v: %w", mesh.name, mesh.topology, errUnsupportedTopology)
	}
	mat, ok := call.Material.(*Material)
	if !ok {
		return fmt.Errorf("material %v: %w", call.Material.ID(), errForeignHandle)
	}
	var target *Framebuffer
	if call.Target != nil {
		if target, ok = call.Target.(*Framebuffer); !ok {
			return fmt.Errorf("target %v: %w", call.Target.ID(), errForeignHandle)
		}
	}
	if target != b.target {
		return fmt.Errorf("target %v: %w", call.Target, errTargetMismatch)
	}

	var dst []byte
	slot := len(f.drawData) / drawStride
	f.drawData, dst = appendSlot(f.drawData, drawStride)
	encodeDrawData(dst, call, mat)

	b.draws = append(b.draws, drawCmd{mesh: mesh, slot: slot})
	return nil
}

func (f *frame) drawCount() int { return len(f.drawData) / drawStride }

func (f *frame) reset() {
	f.passData = f.passData[:0]
	f.lightsData = f.lightsData[:0]
	f.drawData = f.drawData[:0]
	clear(f.batches)
	f.batches = f.batches[:0]
	f.bound = nil
}

//	DrawData {
//	  world: mat4x4<f32>      -- 0
//	  wvp: mat4x4<f32>        -- 64
//	  normal: mat3x3<f32>     -- 128 (3 x vec4 columns)
//	  albedo: vec4<f32>       -- 176
//	  specular: vec3<f32>     -- 192
//	  shininess: f32          -- 204
//	} -> 208 bytes
func encodeDrawData(buf []byte, call render.DrawCall, m *Material) {
	putF32 := func(off int, v float32) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
	}
	putMat4 := func(off int, mat mgl32.Mat4) {
		for i, v := range mat {
			putF32(off+i*4, v)
		}
	}

	putMat4(0, call.Transform)
	putMat4(64, call.WorldViewProjection)
	for c := 0; c < 3; c++ {
		col := call.Normal.Col(c)
		for k := 0; k < 3; k++ {
			putF32(128+c*16+k*4, col[k])
		}
	}
	for k := 0; k < 4; k++ {
		putF32(176+k*4, m.Albedo[k])
	}
	for k := 0; k < 3; k++ {
		putF32(192+k*4, m.Specular[k])
	}
	putF32(204, m.Shininess)
}
