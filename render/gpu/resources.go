package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/sculpto/sculpto/render"
	"github.com/sculpto/sculpto/render/topology"
)

var (
	errReleased     = errors.New("gpu: resource released")
	errAlreadyBound = errors.New("gpu: resource already bound")
)

// Mesh owns a vertex and an index buffer in the topology.VertexSize layout.
type Mesh struct {
	id         uuid.UUID
	name       string
	topology   render.Topology
	vertices   *wgpu.Buffer
	indices    *wgpu.Buffer
	indexCount uint32
	bound      bool
	released   bool
}

func (d *Device) NewMesh(name string, g *topology.Geometry) (*Mesh, error) {
	if len(g.Vertices) == 0 || len(g.Indices) == 0 {
		return nil, fmt.Errorf("mesh %s: empty geometry", name)
	}
	m := &Mesh{
		id:         uuid.New(),
		name:       name,
		topology:   g.Topology,
		indexCount: uint32(len(g.Indices)),
	}
	if err := d.ensureBuffer(name+" VB", &m.vertices, g.VertexBytes(), wgpu.BufferUsageVertex); err != nil {
		return nil, err
	}
	if err := d.ensureBuffer(name+" IB", &m.indices, g.IndexBytes(), wgpu.BufferUsageIndex); err != nil {
		m.vertices.Release()
		return nil, err
	}
	return m, nil
}

func (m *Mesh) ID() uuid.UUID             { return m.id }
func (m *Mesh) String() string            { return m.name }
func (m *Mesh) Valid() bool               { return m != nil && !m.released }
func (m *Mesh) ElementCount() uint32      { return m.indexCount }
func (m *Mesh) Topology() render.Topology { return m.topology }

func (m *Mesh) Bind() error {
	if m.released {
		return errReleased
	}
	if m.bound {
		return errAlreadyBound
	}
	m.bound = true
	return nil
}

func (m *Mesh) Unbind() { m.bound = false }

// Release frees the GPU buffers. Submissions still referencing the mesh are skipped at flush.
func (m *Mesh) Release() {
	if m.released {
		return
	}
	m.released = true
	if m.vertices != nil {
		m.vertices.Release()
	}
	if m.indices != nil {
		m.indices.Release()
	}
}

// Material is a Phong surface. Its parameters are copied into the per-draw uniform block.
type Material struct {
	id        uuid.UUID
	name      string
	released  bool
	Albedo    mgl32.Vec4
	Specular  mgl32.Vec3
	Shininess float32
}

func NewMaterial(name string, albedo mgl32.Vec4) *Material {
	return &Material{
		id:        uuid.New(),
		name:      name,
		Albedo:    albedo,
		Specular:  mgl32.Vec3{0.5, 0.5, 0.5},
		Shininess: 32,
	}
}

func (m *Material) ID() uuid.UUID  { return m.id }
func (m *Material) String() string { return m.name }
func (m *Material) Valid() bool    { return m != nil && !m.released }
func (m *Material) Release()       { m.released = true }

func (m *Material) Bind() error {
	if m.released {
		return errReleased
	}
	return nil
}

// Framebuffer is an offscreen color target with its own depth buffer, in the surface format.
type Framebuffer struct {
	id        uuid.UUID
	name      string
	width     uint32
	height    uint32
	color     *wgpu.Texture
	colorView *wgpu.TextureView
	depth     *wgpu.Texture
	depthView *wgpu.TextureView
	frame     *frame
	bound     bool
	released  bool
}

func (d *Device) NewFramebuffer(name string, width, height int) (*Framebuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("framebuffer %s: invalid size %dx%d", name, width, height)
	}
	fb := &Framebuffer{id: uuid.New(), name: name, width: uint32(width), height: uint32(height), frame: &d.frame}

	var err error
	fb.color, fb.colorView, err = d.createTarget(name+" Color", d.format, fb.width, fb.height,
		wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopySrc)
	if err != nil {
		return nil, err
	}
	fb.depth, fb.depthView, err = d.createTarget(name+" Depth", depthFormat, fb.width, fb.height,
		wgpu.TextureUsageRenderAttachment)
	if err != nil {
		fb.Release()
		return nil, err
	}
	return fb, nil
}

func (f *Framebuffer) ID() uuid.UUID                { return f.id }
func (f *Framebuffer) String() string               { return f.name }
func (f *Framebuffer) Valid() bool                  { return f != nil && !f.released }
func (f *Framebuffer) Size() (int, int)             { return int(f.width), int(f.height) }
func (f *Framebuffer) View() *wgpu.TextureView      { return f.colorView }
func (f *Framebuffer) Texture() *wgpu.Texture       { return f.color }
func (f *Framebuffer) DepthView() *wgpu.TextureView { return f.depthView }

func (f *Framebuffer) Bind() error {
	if f.released {
		return errReleased
	}
	if f.bound {
		return errAlreadyBound
	}
	f.bound = true
	if f.frame != nil {
		f.frame.bound = f
	}
	return nil
}

func (f *Framebuffer) Unbind() {
	f.bound = false
	if f.frame != nil && f.frame.bound == f {
		f.frame.bound = nil
	}
}

func (f *Framebuffer) Release() {
	if f.released {
		return
	}
	f.released = true
	for _, v := range []*wgpu.TextureView{f.colorView, f.depthView} {
		if v != nil {
			v.Release()
		}
	}
	for _, t := range []*wgpu.Texture{f.color, f.depth} {
		if t != nil {
			t.Release()
		}
	}
}

// Assets exposes the device's resource constructors through the render handle interfaces.
type Assets struct{ Device *Device }

func (a Assets) NewMesh(name string, g *topology.Geometry) (render.Mesh, error) {
	m, err := a.Device.NewMesh(name, g)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (a Assets) NewMaterial(name string, albedo mgl32.Vec4) (render.Material, error) {
	return NewMaterial(name, albedo), nil
}
