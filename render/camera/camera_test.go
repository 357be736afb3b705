package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sculpto/sculpto/render"
	"github.com/stretchr/testify/assert"
)

var _ render.CameraParams = (*Camera)(nil)

func vecNear(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "want %v, got %v", want, got)
	}
}

func TestCamera_Axes(t *testing.T) {
	c := New(800, 600)
	vecNear(t, mgl32.Vec3{0, 0, -1}, c.Forward())
	vecNear(t, mgl32.Vec3{1, 0, 0}, c.Right())
	vecNear(t, mgl32.Vec3{0, 1, 0}, c.Up())

	c.Yaw = math32.Pi / 2
	vecNear(t, mgl32.Vec3{1, 0, 0}, c.Forward())
	vecNear(t, mgl32.Vec3{0, 0, 1}, c.Right())
}

func TestCamera_LookAt(t *testing.T) {
	tests := []struct {
		name   string
		eye    mgl32.Vec3
		target mgl32.Vec3
	}{
		{"down -Z", mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}},
		{"toward +X", mgl32.Vec3{}, mgl32.Vec3{3, 0, 0}},
		{"from above", mgl32.Vec3{0, 5, 5}, mgl32.Vec3{}},
		{"behind", mgl32.Vec3{1, 1, -4}, mgl32.Vec3{1, 1, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(1, 1)
			c.Eye = tt.eye
			c.LookAt(tt.target)
			vecNear(t, tt.target.Sub(tt.eye).Normalize(), c.Direction())
		})
	}

	c := New(1, 1)
	c.Yaw = 0.5
	c.LookAt(c.Eye)
	assert.Equal(t, float32(0.5), c.Yaw, "looking at the eye itself changes nothing")
}

func TestCamera_RotateClampsPitch(t *testing.T) {
	c := New(1, 1)
	c.Rotate(0, -1e6)
	assert.InDelta(t, maxPitch, c.Pitch, 1e-6)
	c.Rotate(0, 2e6)
	assert.InDelta(t, -maxPitch, c.Pitch, 1e-6)

	c.Rotate(100, 0)
	assert.InDelta(t, 100*c.Sensitivity, c.Yaw, 1e-6)
}

func TestCamera_Move(t *testing.T) {
	c := New(1, 1)
	c.Eye = mgl32.Vec3{}
	c.Speed = 2
	c.Move(1, 0, 0, 0.5)
	vecNear(t, mgl32.Vec3{0, 0, -1}, c.Position())
	c.Move(0, 1, 1, 1)
	vecNear(t, mgl32.Vec3{2, 2, -1}, c.Position())
}

func TestCamera_ResizeAndProjection(t *testing.T) {
	c := New(1600, 900)
	assert.InDelta(t, 16.0/9.0, c.Aspect(), 1e-6)

	c.Resize(0, 0)
	w, h := c.Viewport()
	assert.Zero(t, w)
	assert.Zero(t, h)
	assert.Equal(t, float32(1), c.Aspect())

	c.Resize(-5, 10)
	w, _ = c.Viewport()
	assert.Zero(t, w)

	c.Resize(100, 100)
	assert.True(t, c.Projection().ApproxEqual(mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 500)))
}

func TestCamera_ViewProjectionCentersTarget(t *testing.T) {
	c := New(640, 480)
	c.Eye = mgl32.Vec3{3, 4, 5}
	c.LookAt(mgl32.Vec3{-1, 0, 2})

	clip := c.ViewProjection().Mul4x1(mgl32.Vec4{-1, 0, 2, 1})
	assert.InDelta(t, 0, clip.X()/clip.W(), 1e-4)
	assert.InDelta(t, 0, clip.Y()/clip.W(), 1e-4)
}

func TestCamera_SphereVisible(t *testing.T) {
	c := New(100, 100)
	c.Eye = mgl32.Vec3{}
	c.Fov = 90
	c.Near, c.Far = 1, 100

	tests := []struct {
		name    string
		center  mgl32.Vec3
		radius  float32
		visible bool
	}{
		{"in front", mgl32.Vec3{0, 0, -10}, 1, true},
		{"far left", mgl32.Vec3{-30, 0, -10}, 1, false},
		{"behind", mgl32.Vec3{0, 0, 10}, 1, false},
		{"beyond far", mgl32.Vec3{0, 0, -150}, 1, false},
		{"straddles left plane", mgl32.Vec3{-11, 0, -10}, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.visible, c.SphereVisible(tt.center, tt.radius))
		})
	}
}

func TestCamera_EffectsForwarded(t *testing.T) {
	c := New(1, 1)
	c.Post.Bloom = true
	c.Post.BloomThreshold = 0.8
	assert.Equal(t, render.PostEffects{Exposure: 1, Bloom: true, BloomThreshold: 0.8}, c.Effects())
}
