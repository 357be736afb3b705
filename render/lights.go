package render

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	MaxPointLights = 50
	MaxSpotLights  = 50
)

// PointLight attenuates with distance d as 1 / (Constant + Linear*d + Quadratic*d^2).
type PointLight struct {
	Position  mgl32.Vec3
	Constant  float32
	Color     mgl32.Vec3
	Linear    float32
	Quadratic float32
}

type DirectionalLight struct {
	Direction mgl32.Vec3
	Color     mgl32.Vec3
}

// SpotLight cutoffs are cosines of the cone half-angles; Epsilon is the falloff band between them.
type SpotLight struct {
	Position       mgl32.Vec3
	InnerCutoffCos float32
	Direction      mgl32.Vec3
	OuterCutoffCos float32
	Color          mgl32.Vec3
	Epsilon        float32
}

// SpotLightFromAngles builds a spot light from cone half-angles in degrees.
func SpotLightFromAngles(position, direction, color mgl32.Vec3, innerDeg, outerDeg float32) SpotLight {
	inner := float32(math.Cos(float64(mgl32.DegToRad(innerDeg))))
	outer := float32(math.Cos(float64(mgl32.DegToRad(outerDeg))))
	return SpotLight{
		Position:       position,
		InnerCutoffCos: inner,
		Direction:      direction,
		OuterCutoffCos: outer,
		Color:          color,
		Epsilon:        inner - outer,
	}
}

// LightsStorage holds the lights of one pass in fixed-capacity arrays.
// Counts gate which slots are live; stale slots past the counts are never read.
type LightsStorage struct {
	pointLights      [MaxPointLights]PointLight
	directionalLight DirectionalLight
	spotLights       [MaxSpotLights]SpotLight
	pointCount       uint32
	hasDirectional   bool
	spotCount        uint32
	dirty            bool
}

func (s *LightsStorage) SubmitPointLight(position, color mgl32.Vec3, constant, linear, quadratic float32) error {
	if s.pointCount >= MaxPointLights {
		return fmt.Errorf("point light %d of %d: %w", s.pointCount+1, MaxPointLights, ErrCapacityExceeded)
	}
	s.pointLights[s.pointCount] = PointLight{
		Position:  position,
		Constant:  constant,
		Color:     color,
		Linear:    linear,
		Quadratic: quadratic,
	}
	s.pointCount++
	s.dirty = true
	return nil
}

// SubmitDirectionalLight overwrites the single directional slot. The last call in a pass wins.
func (s *LightsStorage) SubmitDirectionalLight(direction, color mgl32.Vec3) {
	s.directionalLight = DirectionalLight{Direction: direction, Color: color}
	s.hasDirectional = true
	s.dirty = true
}

func (s *LightsStorage) SubmitSpotLight(position, direction, color mgl32.Vec3, innerCutoffCos, outerCutoffCos, epsilon float32) error {
	return s.submitSpot(SpotLight{
		Position:       position,
		InnerCutoffCos: innerCutoffCos,
		Direction:      direction,
		OuterCutoffCos: outerCutoffCos,
		Color:          color,
		Epsilon:        epsilon,
	})
}

func (s *LightsStorage) submitSpot(l SpotLight) error {
	if s.spotCount >= MaxSpotLights {
		return fmt.Errorf("spot light %d of %d: %w", s.spotCount+1, MaxSpotLights, ErrCapacityExceeded)
	}
	s.spotLights[s.spotCount] = l
	s.spotCount++
	s.dirty = true
	return nil
}

// Reset zeroes the counts and the directional flag. Light values are left in place.
func (s *LightsStorage) Reset() {
	s.pointCount = 0
	s.spotCount = 0
	s.hasDirectional = false
	s.dirty = false
}

// Dirty reports whether a light was accepted since the last Reset or Encode.
func (s *LightsStorage) Dirty() bool { return s.dirty }

func (s *LightsStorage) PointLightsCount() int { return int(s.pointCount) }
func (s *LightsStorage) SpotLightsCount() int  { return int(s.spotCount) }

// PointLights returns the live prefix of the point light array. The slice aliases the storage.
func (s *LightsStorage) PointLights() []PointLight { return s.pointLights[:s.pointCount] }

// SpotLights returns the live prefix of the spot light array. The slice aliases the storage.
func (s *LightsStorage) SpotLights() []SpotLight { return s.spotLights[:s.spotCount] }

func (s *LightsStorage) DirectionalLight() (DirectionalLight, bool) {
	return s.directionalLight, s.hasDirectional
}
