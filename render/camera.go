package render

import "github.com/go-gl/mathgl/mgl32"

// PostEffects are the post-processing toggles a camera carries into a pass.
type PostEffects struct {
	HDR            bool
	Exposure       float32
	Bloom          bool
	BloomThreshold float32
	Blur           bool
	BlurIterations int
}

// CameraParams is what a pass needs from a camera. The renderer only reads it.
type CameraParams interface {
	ViewProjection() mgl32.Mat4
	Direction() mgl32.Vec3
	Position() mgl32.Vec3
	Effects() PostEffects
}

// CameraHandle indexes the camera table of one pass of a RenderContext.
// A handle from an earlier pass no longer resolves.
type CameraHandle struct {
	Pass  uint64
	Index int32
}

var NoCamera = CameraHandle{Index: -1}

// CameraSnapshot is a copy of the camera parameters taken when the camera was submitted.
type CameraSnapshot struct {
	ViewProjection mgl32.Mat4
	Direction      mgl32.Vec3
	Position       mgl32.Vec3
	Effects        PostEffects
}

func snapshotCamera(c CameraParams) CameraSnapshot {
	return CameraSnapshot{
		ViewProjection: c.ViewProjection(),
		Direction:      c.Direction(),
		Position:       c.Position(),
		Effects:        c.Effects(),
	}
}
