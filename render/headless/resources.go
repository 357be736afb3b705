package headless

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/sculpto/sculpto/render"
	"github.com/sculpto/sculpto/render/topology"
)

var (
	errReleased     = errors.New("headless: resource released")
	errAlreadyBound = errors.New("headless: resource already bound")
)

// Mesh is an in-memory mesh. It tracks bind state so tests can check the bind/unbind pairing.
type Mesh struct {
	id       uuid.UUID
	name     string
	topology render.Topology
	elements uint32
	released bool
	bound    bool

	Binds   int
	Unbinds int
}

func NewMesh(name string, topology render.Topology, elements uint32) *Mesh {
	return &Mesh{id: uuid.New(), name: name, topology: topology, elements: elements}
}

func (m *Mesh) ID() uuid.UUID             { return m.id }
func (m *Mesh) Name() string              { return m.name }
func (m *Mesh) String() string            { return m.name }
func (m *Mesh) Valid() bool               { return m != nil && !m.released }
func (m *Mesh) ElementCount() uint32      { return m.elements }
func (m *Mesh) Topology() render.Topology { return m.topology }
func (m *Mesh) Release()                  { m.released = true }

func (m *Mesh) Bind() error {
	if m.released {
		return errReleased
	}
	if m.bound {
		return errAlreadyBound
	}
	m.bound = true
	m.Binds++
	return nil
}

func (m *Mesh) Unbind() {
	m.bound = false
	m.Unbinds++
}

type Material struct {
	id       uuid.UUID
	name     string
	released bool

	Binds int
}

func NewMaterial(name string) *Material {
	return &Material{id: uuid.New(), name: name}
}

func (m *Material) ID() uuid.UUID  { return m.id }
func (m *Material) Name() string   { return m.name }
func (m *Material) String() string { return m.name }
func (m *Material) Valid() bool    { return m != nil && !m.released }
func (m *Material) Release()       { m.released = true }

func (m *Material) Bind() error {
	if m.released {
		return errReleased
	}
	m.Binds++
	return nil
}

// Framebuffer is an offscreen target with a fixed size.
type Framebuffer struct {
	id       uuid.UUID
	name     string
	width    int
	height   int
	released bool
	bound    bool

	Binds   int
	Unbinds int
}

func NewFramebuffer(name string, width, height int) *Framebuffer {
	return &Framebuffer{id: uuid.New(), name: name, width: width, height: height}
}

func (f *Framebuffer) ID() uuid.UUID  { return f.id }
func (f *Framebuffer) Name() string   { return f.name }
func (f *Framebuffer) String() string { return f.name }
func (f *Framebuffer) Size() (int, int) {
	return f.width, f.height
}
func (f *Framebuffer) Valid() bool { return f != nil && !f.released }
func (f *Framebuffer) Release()    { f.released = true }
func (f *Framebuffer) Bound() bool { return f.bound }

func (f *Framebuffer) Bind() error {
	if f.released {
		return errReleased
	}
	if f.bound {
		return errAlreadyBound
	}
	f.bound = true
	f.Binds++
	return nil
}

func (f *Framebuffer) Unbind() {
	f.bound = false
	f.Unbinds++
}

// Assets creates headless resources from generated geometry. Only the topology and element
// count of the geometry are kept.
type Assets struct{}

func (Assets) NewMesh(name string, g *topology.Geometry) (render.Mesh, error) {
	return NewMesh(name, g.Topology, uint32(len(g.Indices))), nil
}

func (Assets) NewMaterial(name string, _ mgl32.Vec4) (render.Material, error) {
	return NewMaterial(name), nil
}
