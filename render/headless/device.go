// Package headless implements the render device contract in memory. It records every uniform
// upload and draw call of a flush so a frame can be inspected, dumped or asserted on.
package headless

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sculpto/sculpto/render"
)

type Upload struct {
	Slot render.UniformSlot
	Data []byte
}

// Device records uploads and draws. Errors can be injected per slot or per draw index.
type Device struct {
	Uploads []Upload
	Draws   []render.DrawCall

	FailUpload map[render.UniformSlot]error
	FailDraw   map[int]error
}

func NewDevice() *Device {
	return &Device{
		FailUpload: make(map[render.UniformSlot]error),
		FailDraw:   make(map[int]error),
	}
}

func (d *Device) WriteUniform(slot render.UniformSlot, data []byte) error {
	if err := d.FailUpload[slot]; err != nil {
		return err
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	d.Uploads = append(d.Uploads, Upload{Slot: slot, Data: buf})
	return nil
}

func (d *Device) Draw(call render.DrawCall) error {
	if err := d.FailDraw[call.Index]; err != nil {
		return err
	}
	d.Draws = append(d.Draws, call)
	return nil
}

// LastUpload returns the most recent data written to slot.
func (d *Device) LastUpload(slot render.UniformSlot) ([]byte, bool) {
	for i := len(d.Uploads) - 1; i >= 0; i-- {
		if d.Uploads[i].Slot == slot {
			return d.Uploads[i].Data, true
		}
	}
	return nil, false
}

// Lights decodes the last lights block uploaded.
func (d *Device) Lights() (render.LightsStorage, bool) {
	data, ok := d.LastUpload(render.UniformLights)
	if !ok {
		return render.LightsStorage{}, false
	}
	s, err := render.DecodeLightsStorage(data)
	return s, err == nil
}

// PassData decodes the last pass data block uploaded.
func (d *Device) PassData() (render.PassData, bool) {
	data, ok := d.LastUpload(render.UniformPassData)
	if !ok {
		return render.PassData{}, false
	}
	p, err := render.DecodePassData(data)
	return p, err == nil
}

// Reset forgets recorded uploads and draws but keeps injected failures.
func (d *Device) Reset() {
	d.Uploads = d.Uploads[:0]
	d.Draws = d.Draws[:0]
}

// StaticCamera is a fixed set of camera parameters.
type StaticCamera struct {
	VP   mgl32.Mat4
	Dir  mgl32.Vec3
	Pos  mgl32.Vec3
	Post render.PostEffects
}

func NewStaticCamera(position, target mgl32.Vec3, aspect float32) *StaticCamera {
	view := mgl32.LookAtV(position, target, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(60), aspect, 0.1, 100)
	return &StaticCamera{
		VP:  proj.Mul4(view),
		Dir: target.Sub(position).Normalize(),
		Pos: position,
	}
}

func (c *StaticCamera) ViewProjection() mgl32.Mat4  { return c.VP }
func (c *StaticCamera) Direction() mgl32.Vec3       { return c.Dir }
func (c *StaticCamera) Position() mgl32.Vec3        { return c.Pos }
func (c *StaticCamera) Effects() render.PostEffects { return c.Post }
