package app

import (
	"github.com/sculpto/sculpto/render/camera"
)

const boostFactor = 4

// FlyCamera moves a camera with WASD, Space/Control for up/down and the captured mouse for
// looking around. Shift multiplies the speed. Tab toggles mouse capture.
type FlyCamera struct {
	Camera *camera.Camera
}

func (f FlyCamera) Update(in *Input, dt float32) {
	if in.JustPressed[KeyTab] {
		in.MouseCaptured = !in.MouseCaptured
	}
	if dt <= 0 {
		return
	}

	if in.MouseCaptured {
		f.Camera.Rotate(float32(in.MouseDeltaX), float32(in.MouseDeltaY))
	}

	forward := in.axis(KeyW, KeyS)
	right := in.axis(KeyD, KeyA)
	up := in.axis(KeySpace, KeyControl)
	if forward == 0 && right == 0 && up == 0 {
		return
	}
	if in.Pressed[KeyShift] {
		dt *= boostFactor
	}
	f.Camera.Move(forward, right, up, dt)
}
