package app

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	KeyW int = iota
	KeyA
	KeyS
	KeyD
	KeySpace
	KeyControl
	KeyShift
	KeyTab
	KeyEscape
	KeyF1
	KeyF3
	numKeys
)

var keyToGlfw = map[int]glfw.Key{
	KeyW:       glfw.KeyW,
	KeyA:       glfw.KeyA,
	KeyS:       glfw.KeyS,
	KeyD:       glfw.KeyD,
	KeySpace:   glfw.KeySpace,
	KeyControl: glfw.KeyLeftControl,
	KeyShift:   glfw.KeyLeftShift,
	KeyTab:     glfw.KeyTab,
	KeyEscape:  glfw.KeyEscape,
	KeyF1:      glfw.KeyF1,
	KeyF3:      glfw.KeyF3,
}

// Input is the keyboard and mouse state sampled once per frame.
type Input struct {
	Pressed      [numKeys]bool
	JustPressed  [numKeys]bool
	JustReleased [numKeys]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	MouseCaptured            bool
}

// Poll samples the window. Mouse deltas are only tracked while the cursor is captured.
func (in *Input) Poll(w *glfw.Window) {
	for key, glfwKey := range keyToGlfw {
		in.setKey(key, w.GetKey(glfwKey) == glfw.Press)
	}
	in.moveMouse(w.GetCursorPos())

	if in.MouseCaptured {
		w.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	} else {
		w.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
}

func (in *Input) setKey(key int, down bool) {
	in.JustPressed[key] = down && !in.Pressed[key]
	in.JustReleased[key] = !down && in.Pressed[key]
	in.Pressed[key] = down
}

func (in *Input) moveMouse(x, y float64) {
	if in.MouseCaptured {
		in.MouseDeltaX = x - in.MouseX
		in.MouseDeltaY = y - in.MouseY
	} else {
		in.MouseDeltaX = 0
		in.MouseDeltaY = 0
	}
	in.MouseX = x
	in.MouseY = y
}

// axis returns +1, -1 or 0 for a pair of opposing keys.
func (in *Input) axis(pos, neg int) float32 {
	var v float32
	if in.Pressed[pos] {
		v++
	}
	if in.Pressed[neg] {
		v--
	}
	return v
}
