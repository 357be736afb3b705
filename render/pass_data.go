package render

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// PassData is the per-pass uniform block shared by every draw of a flush.
//
//	struct PassData {
//	  view_proj: mat4x4<f32>;                             // 0
//	  camera_position: vec3<f32>;  time: f32;             // 64
//	  camera_direction: vec3<f32>; viewport_width: u32;   // 80
//	  ambient: vec3<f32>;          viewport_height: u32;  // 96
//	  exposure: f32; is_hdr: u32; is_bloom: u32; bloom_threshold: f32; // 112
//	  is_blur: u32; blur_iterations: u32; pad: vec2<u32>; // 128
//	}                                                     // 144
type PassData struct {
	ViewProjection  mgl32.Mat4
	CameraPosition  mgl32.Vec3
	Time            float32
	CameraDirection mgl32.Vec3
	ViewportWidth   uint32
	Ambient         mgl32.Vec3
	ViewportHeight  uint32
	Effects         PostEffects
}

const PassDataSize = 144

func (d *PassData) Encode() []byte {
	buf := make([]byte, PassDataSize)

	for i, v := range d.ViewProjection {
		putF32(buf, i*4, v)
	}
	putVec3(buf, 64, d.CameraPosition)
	putF32(buf, 76, d.Time)
	putVec3(buf, 80, d.CameraDirection)
	binary.LittleEndian.PutUint32(buf[92:], d.ViewportWidth)
	putVec3(buf, 96, d.Ambient)
	binary.LittleEndian.PutUint32(buf[108:], d.ViewportHeight)

	putF32(buf, 112, d.Effects.Exposure)
	binary.LittleEndian.PutUint32(buf[116:], boolU32(d.Effects.HDR))
	binary.LittleEndian.PutUint32(buf[120:], boolU32(d.Effects.Bloom))
	putF32(buf, 124, d.Effects.BloomThreshold)
	binary.LittleEndian.PutUint32(buf[128:], boolU32(d.Effects.Blur))
	binary.LittleEndian.PutUint32(buf[132:], uint32(max(d.Effects.BlurIterations, 0)))
	return buf
}

func DecodePassData(data []byte) (PassData, error) {
	var d PassData
	if len(data) != PassDataSize {
		return d, fmt.Errorf("pass data: got %d bytes, want %d: %w", len(data), PassDataSize, ErrBufferSize)
	}
	for i := range d.ViewProjection {
		d.ViewProjection[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	d.CameraPosition = getVec3(data, 64)
	d.Time = getF32(data, 76)
	d.CameraDirection = getVec3(data, 80)
	d.ViewportWidth = binary.LittleEndian.Uint32(data[92:])
	d.Ambient = getVec3(data, 96)
	d.ViewportHeight = binary.LittleEndian.Uint32(data[108:])
	d.Effects = PostEffects{
		Exposure:       getF32(data, 112),
		HDR:            binary.LittleEndian.Uint32(data[116:]) != 0,
		Bloom:          binary.LittleEndian.Uint32(data[120:]) != 0,
		BloomThreshold: getF32(data, 124),
		Blur:           binary.LittleEndian.Uint32(data[128:]) != 0,
		BlurIterations: int(binary.LittleEndian.Uint32(data[132:])),
	}
	return d, nil
}
