// Package scene builds the demo scene shared by the sandbox and the frame dump and submits it
// to a RenderContext each frame.
package scene

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sculpto/sculpto/config"
	"github.com/sculpto/sculpto/render"
	"github.com/sculpto/sculpto/render/topology"
)

// Assets creates backend resources. The GPU and headless devices both provide one.
type Assets interface {
	NewMesh(name string, g *topology.Geometry) (render.Mesh, error)
	NewMaterial(name string, albedo mgl32.Vec4) (render.Material, error)
}

// Culler reports whether a world-space bounding sphere can be seen.
type Culler interface {
	SphereVisible(center mgl32.Vec3, radius float32) bool
}

type Object struct {
	Name     string
	Mesh     render.Mesh
	Material render.Material
	Scale    mgl32.Vec3
	Rotation mgl32.Vec3 // degrees
	Position mgl32.Vec3
	Spin     float32 // degrees per second about Y

	center mgl32.Vec3
	radius float32
}

// Bounds returns the object's bounding sphere in world space, ignoring rotation.
func (o *Object) Bounds() (mgl32.Vec3, float32) {
	s := max(o.Scale.X(), o.Scale.Y(), o.Scale.Z())
	c := mgl32.Vec3{o.center.X() * o.Scale.X(), o.center.Y() * o.Scale.Y(), o.center.Z() * o.Scale.Z()}
	return o.Position.Add(c), o.radius * s
}

type Scene struct {
	Objects     []*Object
	PointLights []render.PointLight
	SpotLights  []render.SpotLight
	Directional *render.DirectionalLight
	Ambient     mgl32.Vec3
}

var palette = []mgl32.Vec3{
	{1, 0.3, 0.3},
	{0.3, 1, 0.3},
	{0.3, 0.3, 1},
	{1, 1, 0.4},
	{1, 0.4, 1},
	{0.4, 1, 1},
}

const (
	ringRadius  = 5
	lightRadius = 7
	lightHeight = 3
	floorSize   = 20
)

// Build creates the meshes and materials of the demo: a floor, a ring of cfg.Cubes spinning
// cubes around a sphere, and the configured lights.
func Build(cfg config.Scene, assets Assets) (*Scene, error) {
	s := &Scene{Ambient: cfg.AmbientColor()}

	cube, err := assets.NewMesh("cube", topology.Cube(mgl32.Vec3{-0.5, -0.5, -0.5}, mgl32.Vec3{0.5, 0.5, 0.5}))
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	sphereGeom := topology.Sphere(mgl32.Vec3{}, 1, 32)
	sphere, err := assets.NewMesh("sphere", sphereGeom)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	floorGeom := topology.Plane(floorSize, floorSize)
	floor, err := assets.NewMesh("floor", floorGeom)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}

	floorMat, err := assets.NewMaterial("floor", mgl32.Vec4{0.6, 0.6, 0.6, 1})
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	sphereMat, err := assets.NewMaterial("sphere", mgl32.Vec4{0.9, 0.9, 0.9, 1})
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}

	floorObj := &Object{
		Name:     "floor",
		Mesh:     floor,
		Material: floorMat,
		Scale:    mgl32.Vec3{1, 1, 1},
		Position: mgl32.Vec3{-floorSize / 2, -1, -floorSize / 2},
	}
	floorObj.center, floorObj.radius = floorGeom.BoundingSphere()
	sphereObj := &Object{
		Name:     "sphere",
		Mesh:     sphere,
		Material: sphereMat,
		Scale:    mgl32.Vec3{1, 1, 1},
	}
	sphereObj.center, sphereObj.radius = sphereGeom.BoundingSphere()
	s.Objects = append(s.Objects, floorObj, sphereObj)

	cubeCenter, cubeRadius := mgl32.Vec3{}, math32.Sqrt(0.75)
	for i := 0; i < cfg.Cubes; i++ {
		mat, err := assets.NewMaterial(fmt.Sprintf("cube%d", i), palette[i%len(palette)].Vec4(1))
		if err != nil {
			return nil, fmt.Errorf("scene: %w", err)
		}
		angle := 2 * math32.Pi * float32(i) / float32(cfg.Cubes)
		sn, cs := math32.Sincos(angle)
		s.Objects = append(s.Objects, &Object{
			Name:     fmt.Sprintf("cube%d", i),
			Mesh:     cube,
			Material: mat,
			Scale:    mgl32.Vec3{1, 1, 1},
			Rotation: mgl32.Vec3{0, mgl32.RadToDeg(angle), 0},
			Position: mgl32.Vec3{ringRadius * cs, 0, ringRadius * sn},
			Spin:     30 + 10*float32(i%3),
			center:   cubeCenter,
			radius:   cubeRadius,
		})
	}

	for i := 0; i < cfg.PointLights; i++ {
		angle := 2 * math32.Pi * float32(i) / float32(max(cfg.PointLights, 1))
		sn, cs := math32.Sincos(angle)
		s.PointLights = append(s.PointLights, render.PointLight{
			Position:  mgl32.Vec3{lightRadius * cs, lightHeight, lightRadius * sn},
			Color:     palette[i%len(palette)],
			Constant:  1,
			Linear:    0.09,
			Quadratic: 0.032,
		})
	}
	for i := 0; i < cfg.SpotLights; i++ {
		x := float32(i) * 2
		s.SpotLights = append(s.SpotLights, render.SpotLightFromAngles(
			mgl32.Vec3{x, 6, 0}, mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 1, 1}, 15, 25))
	}
	s.Directional = &render.DirectionalLight{
		Direction: mgl32.Vec3{-0.3, -1, -0.5}.Normalize(),
		Color:     mgl32.Vec3{0.4, 0.4, 0.4},
	}
	return s, nil
}

// SubmitStats counts what Submit left out of the pass.
type SubmitStats struct {
	Culled int `yaml:"culled"`
	// Rejected counts submissions refused for an invalid handle or a full light array.
	Rejected int `yaml:"rejected"`
}

// Submit opens a pass on ctx for cam and submits the lights and every object visible to
// culler at time t seconds. A nil culler submits everything. A rejected light or object is
// counted and the rest of the scene is still submitted. Any other error leaves the pass open
// for the caller to discard.
func (s *Scene) Submit(ctx *render.RenderContext, cam render.CameraParams, culler Culler, t float32) (SubmitStats, error) {
	var stats SubmitStats
	if _, err := ctx.SubmitCamera(cam); err != nil {
		return stats, err
	}
	ctx.SetAmbient(s.Ambient)

	reject := func(err error) error {
		if errors.Is(err, render.ErrInvalidHandle) || errors.Is(err, render.ErrCapacityExceeded) {
			stats.Rejected++
			return nil
		}
		return err
	}

	for _, l := range s.PointLights {
		if err := reject(ctx.SubmitPointLight(l.Position, l.Color, l.Constant, l.Linear, l.Quadratic)); err != nil {
			return stats, err
		}
	}
	for _, l := range s.SpotLights {
		if err := reject(ctx.SubmitSpotLight(l.Position, l.Direction, l.Color, l.InnerCutoffCos, l.OuterCutoffCos, l.Epsilon)); err != nil {
			return stats, err
		}
	}
	if s.Directional != nil {
		if err := reject(ctx.SubmitDirectionalLight(s.Directional.Direction, s.Directional.Color)); err != nil {
			return stats, err
		}
	}

	for _, o := range s.Objects {
		if culler != nil && !culler.SphereVisible(o.Bounds()) {
			stats.Culled++
			continue
		}
		rot := o.Rotation
		rot[1] += o.Spin * t
		if err := reject(ctx.SubmitTRS(o.Mesh, o.Material, o.Scale, rot, o.Position)); err != nil {
			return stats, fmt.Errorf("%s: %w", o.Name, err)
		}
	}
	return stats, nil
}

func (s *Scene) Release() {
	type releaser interface{ Release() }
	seen := make(map[any]bool)
	for _, o := range s.Objects {
		for _, h := range []any{o.Mesh, o.Material} {
			if r, ok := h.(releaser); ok && !seen[h] {
				seen[h] = true
				r.Release()
			}
		}
	}
}
