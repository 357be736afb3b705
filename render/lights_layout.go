package render

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Lights uniform block, std140 compatible:
//
//	struct PointLight {        // 48 bytes
//	  position: vec3<f32>;  constant: f32;
//	  color: vec3<f32>;     linear: f32;
//	  quadratic: f32;       pad: vec3<f32>;
//	}
//	struct DirectionalLight {  // 32 bytes
//	  direction: vec3<f32>; pad: f32;
//	  color: vec3<f32>;     pad: f32;
//	}
//	struct SpotLight {         // 48 bytes
//	  position: vec3<f32>;  inner_cutoff_cos: f32;
//	  direction: vec3<f32>; outer_cutoff_cos: f32;
//	  color: vec3<f32>;     epsilon: f32;
//	}
//	struct LightsStorage {
//	  point_lights: array<PointLight, 50>;   // 0
//	  directional_light: DirectionalLight;   // 2400
//	  spot_lights: array<SpotLight, 50>;     // 2432
//	  point_lights_count: u32;               // 4832
//	  is_directional_light: u32;             // 4836
//	  spot_lights_count: u32;                // 4840
//	}                                        // 4848 with tail padding
const (
	PointLightSize       = 48
	DirectionalLightSize = 32
	SpotLightSize        = 48

	pointLightsOffset      = 0
	directionalLightOffset = pointLightsOffset + MaxPointLights*PointLightSize
	spotLightsOffset       = directionalLightOffset + DirectionalLightSize
	countersOffset         = spotLightsOffset + MaxSpotLights*SpotLightSize

	LightsStorageSize = countersOffset + 16
)

func putF32(buf []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
}

func putVec3(buf []byte, off int, v mgl32.Vec3) {
	putF32(buf, off, v[0])
	putF32(buf, off+4, v[1])
	putF32(buf, off+8, v[2])
}

func getF32(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func getVec3(buf []byte, off int) mgl32.Vec3 {
	return mgl32.Vec3{getF32(buf, off), getF32(buf, off+4), getF32(buf, off+8)}
}

func boolU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// Encode serializes the storage into the lights uniform block and clears the dirty flag.
func (s *LightsStorage) Encode() []byte {
	return s.AppendEncode(make([]byte, 0, LightsStorageSize))
}

// AppendEncode appends the lights uniform block to dst and clears the dirty flag.
func (s *LightsStorage) AppendEncode(dst []byte) []byte {
	start := len(dst)
	if cap(dst)-start < LightsStorageSize {
		grown := make([]byte, start, start+LightsStorageSize)
		copy(grown, dst)
		dst = grown
	}
	dst = dst[:start+LightsStorageSize]
	buf := dst[start:]
	clear(buf)

	for i := range s.pointLights {
		l := &s.pointLights[i]
		off := pointLightsOffset + i*PointLightSize
		putVec3(buf, off, l.Position)
		putF32(buf, off+12, l.Constant)
		putVec3(buf, off+16, l.Color)
		putF32(buf, off+28, l.Linear)
		putF32(buf, off+32, l.Quadratic)
	}

	putVec3(buf, directionalLightOffset, s.directionalLight.Direction)
	putVec3(buf, directionalLightOffset+16, s.directionalLight.Color)

	for i := range s.spotLights {
		l := &s.spotLights[i]
		off := spotLightsOffset + i*SpotLightSize
		putVec3(buf, off, l.Position)
		putF32(buf, off+12, l.InnerCutoffCos)
		putVec3(buf, off+16, l.Direction)
		putF32(buf, off+28, l.OuterCutoffCos)
		putVec3(buf, off+32, l.Color)
		putF32(buf, off+44, l.Epsilon)
	}

	binary.LittleEndian.PutUint32(buf[countersOffset:], s.pointCount)
	binary.LittleEndian.PutUint32(buf[countersOffset+4:], boolU32(s.hasDirectional))
	binary.LittleEndian.PutUint32(buf[countersOffset+8:], s.spotCount)

	s.dirty = false
	return dst
}

// DecodeLightsStorage reads a lights uniform block back into a LightsStorage.
func DecodeLightsStorage(data []byte) (LightsStorage, error) {
	var s LightsStorage
	if len(data) != LightsStorageSize {
		return s, fmt.Errorf("lights storage: got %d bytes, want %d: %w", len(data), LightsStorageSize, ErrBufferSize)
	}

	for i := range s.pointLights {
		off := pointLightsOffset + i*PointLightSize
		s.pointLights[i] = PointLight{
			Position:  getVec3(data, off),
			Constant:  getF32(data, off+12),
			Color:     getVec3(data, off+16),
			Linear:    getF32(data, off+28),
			Quadratic: getF32(data, off+32),
		}
	}

	s.directionalLight = DirectionalLight{
		Direction: getVec3(data, directionalLightOffset),
		Color:     getVec3(data, directionalLightOffset+16),
	}

	for i := range s.spotLights {
		off := spotLightsOffset + i*SpotLightSize
		s.spotLights[i] = SpotLight{
			Position:       getVec3(data, off),
			InnerCutoffCos: getF32(data, off+12),
			Direction:      getVec3(data, off+16),
			OuterCutoffCos: getF32(data, off+28),
			Color:          getVec3(data, off+32),
			Epsilon:        getF32(data, off+44),
		}
	}

	pointCount := binary.LittleEndian.Uint32(data[countersOffset:])
	isDirectional := binary.LittleEndian.Uint32(data[countersOffset+4:])
	spotCount := binary.LittleEndian.Uint32(data[countersOffset+8:])
	if pointCount > MaxPointLights || spotCount > MaxSpotLights {
		return s, fmt.Errorf("lights storage: counts %d/%d exceed capacity: %w", pointCount, spotCount, ErrCapacityExceeded)
	}
	s.pointCount = pointCount
	s.hasDirectional = isDirectional != 0
	s.spotCount = spotCount
	return s, nil
}
