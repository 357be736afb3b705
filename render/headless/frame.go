package headless

import (
	"fmt"

	"github.com/sculpto/sculpto/render"
)

// Frame is a serializable summary of everything a flush sent to the device.
type Frame struct {
	Pass   PassRecord   `yaml:"pass"`
	Lights LightsRecord `yaml:"lights"`
	Draws  []DrawRecord `yaml:"draws"`
}

type PassRecord struct {
	CameraPosition  [3]float32 `yaml:"camera_position"`
	CameraDirection [3]float32 `yaml:"camera_direction"`
	Viewport        [2]uint32  `yaml:"viewport"`
	Time            float32    `yaml:"time"`
	HDR             bool       `yaml:"hdr"`
	Exposure        float32    `yaml:"exposure"`
	Bloom           bool       `yaml:"bloom"`
	BloomThreshold  float32    `yaml:"bloom_threshold"`
}

type LightsRecord struct {
	Point       []render.PointLight      `yaml:"point"`
	Spot        []render.SpotLight       `yaml:"spot"`
	Directional *render.DirectionalLight `yaml:"directional,omitempty"`
}

type DrawRecord struct {
	Index     int         `yaml:"index"`
	Mesh      string      `yaml:"mesh"`
	Material  string      `yaml:"material"`
	Target    string      `yaml:"target"`
	Topology  string      `yaml:"topology"`
	Elements  uint32      `yaml:"elements"`
	Transform [16]float32 `yaml:"transform,flow"`
}

func label(h render.Handle) string {
	if h == nil {
		return "default"
	}
	if s, ok := h.(fmt.Stringer); ok {
		return s.String()
	}
	return h.ID().String()
}

// Frame summarizes the last flush recorded by the device.
func (d *Device) Frame() Frame {
	var f Frame

	if p, ok := d.PassData(); ok {
		f.Pass = PassRecord{
			CameraPosition:  p.CameraPosition,
			CameraDirection: p.CameraDirection,
			Viewport:        [2]uint32{p.ViewportWidth, p.ViewportHeight},
			Time:            p.Time,
			HDR:             p.Effects.HDR,
			Exposure:        p.Effects.Exposure,
			Bloom:           p.Effects.Bloom,
			BloomThreshold:  p.Effects.BloomThreshold,
		}
	}

	if s, ok := d.Lights(); ok {
		f.Lights.Point = append([]render.PointLight(nil), s.PointLights()...)
		f.Lights.Spot = append([]render.SpotLight(nil), s.SpotLights()...)
		if dl, ok := s.DirectionalLight(); ok {
			f.Lights.Directional = &dl
		}
	}

	for _, call := range d.Draws {
		var target render.Handle
		if call.Target != nil {
			target = call.Target
		}
		f.Draws = append(f.Draws, DrawRecord{
			Index:     call.Index,
			Mesh:      label(call.Mesh),
			Material:  label(call.Material),
			Target:    label(target),
			Topology:  call.Mesh.Topology().String(),
			Elements:  call.Mesh.ElementCount(),
			Transform: call.Transform,
		})
	}
	return f
}
