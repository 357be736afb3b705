// Package camera provides a free-fly perspective camera that feeds a render pass.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sculpto/sculpto/render"
)

const maxPitch = math32.Pi/2 - 0.01

var worldUp = mgl32.Vec3{0, 1, 0}

// Camera is a Y-up perspective camera. Yaw and Pitch are in radians; yaw 0 looks down -Z.
type Camera struct {
	Eye         mgl32.Vec3
	Yaw         float32
	Pitch       float32
	Fov         float32 // vertical, degrees
	Near        float32
	Far         float32
	Speed       float32
	Sensitivity float32
	Post        render.PostEffects

	width  int
	height int
}

func New(width, height int) *Camera {
	return &Camera{
		Eye:         mgl32.Vec3{0, 2, 10},
		Fov:         60,
		Near:        0.1,
		Far:         500,
		Speed:       10.0,
		Sensitivity: 0.003,
		Post:        render.PostEffects{Exposure: 1},
		width:       width,
		height:      height,
	}
}

func (c *Camera) Forward() mgl32.Vec3 {
	sy, cy := math32.Sincos(c.Yaw)
	sp, cp := math32.Sincos(c.Pitch)
	return mgl32.Vec3{cp * sy, sp, -cp * cy}
}

func (c *Camera) Right() mgl32.Vec3 {
	sy, cy := math32.Sincos(c.Yaw)
	return mgl32.Vec3{cy, 0, sy}
}

func (c *Camera) Up() mgl32.Vec3 {
	return c.Right().Cross(c.Forward())
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye, c.Eye.Add(c.Forward()), worldUp)
}

func (c *Camera) Aspect() float32 {
	if c.width <= 0 || c.height <= 0 {
		return 1
	}
	return float32(c.width) / float32(c.height)
}

func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), c.Aspect(), c.Near, c.Far)
}

func (c *Camera) Viewport() (int, int) { return c.width, c.height }

// Resize updates the viewport the projection aspect is derived from. Zero sizes (minimized
// windows) are kept as is and fall back to a square aspect.
func (c *Camera) Resize(width, height int) {
	c.width = max(width, 0)
	c.height = max(height, 0)
}

// LookAt turns the camera toward target without moving it.
func (c *Camera) LookAt(target mgl32.Vec3) {
	dir := target.Sub(c.Eye)
	if dir.Len() == 0 {
		return
	}
	dir = dir.Normalize()
	c.Pitch = mgl32.Clamp(math32.Asin(dir.Y()), -maxPitch, maxPitch)
	c.Yaw = math32.Atan2(dir.X(), -dir.Z())
}

// Move translates the camera along its local axes, scaled by Speed and dt.
func (c *Camera) Move(forward, right, up, dt float32) {
	step := c.Speed * dt
	delta := c.Forward().Mul(forward).Add(c.Right().Mul(right)).Add(worldUp.Mul(up))
	c.Eye = c.Eye.Add(delta.Mul(step))
}

// Rotate applies a mouse delta in pixels.
func (c *Camera) Rotate(dx, dy float32) {
	c.Yaw += dx * c.Sensitivity
	c.Pitch = mgl32.Clamp(c.Pitch-dy*c.Sensitivity, -maxPitch, maxPitch)
}

func (c *Camera) ViewProjection() mgl32.Mat4  { return c.Projection().Mul4(c.View()) }
func (c *Camera) Direction() mgl32.Vec3       { return c.Forward() }
func (c *Camera) Position() mgl32.Vec3        { return c.Eye }
func (c *Camera) Effects() render.PostEffects { return c.Post }

// Frustum returns the normalized Left, Right, Bottom, Top, Near, Far planes of the current
// view-projection as (A, B, C, D) with Ax + By + Cz + D >= 0 inside.
func (c *Camera) Frustum() [6]mgl32.Vec4 {
	vp := c.ViewProjection()
	r0, r1, r2, r3 := vp.Row(0), vp.Row(1), vp.Row(2), vp.Row(3)
	planes := [6]mgl32.Vec4{
		r3.Add(r0), r3.Sub(r0),
		r3.Add(r1), r3.Sub(r1),
		r3.Add(r2), r3.Sub(r2),
	}
	for i, p := range planes {
		if l := p.Vec3().Len(); l > 0 {
			planes[i] = p.Mul(1 / l)
		}
	}
	return planes
}

// SphereVisible reports whether a bounding sphere touches the view frustum.
func (c *Camera) SphereVisible(center mgl32.Vec3, radius float32) bool {
	for _, p := range c.Frustum() {
		if p.Vec3().Dot(center)+p.W() < -radius {
			return false
		}
	}
	return true
}
