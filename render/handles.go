package render

import "github.com/google/uuid"

type Topology uint32

const (
	TopologyPoints Topology = iota
	TopologyLines
	TopologyTriangles
	TopologyTriangleStrip
	TopologyPatches
)

func (t Topology) String() string {
	switch t {
	case TopologyPoints:
		return "points"
	case TopologyLines:
		return "lines"
	case TopologyTriangles:
		return "triangles"
	case TopologyTriangleStrip:
		return "triangle-strip"
	case TopologyPatches:
		return "patches"
	}
	return "unknown"
}

// Handle identifies a backend resource. Valid reports false once the resource has been released.
type Handle interface {
	ID() uuid.UUID
	Valid() bool
}

// Mesh is a vertex/index buffer pair owned by a backend.
type Mesh interface {
	Handle
	Bind() error
	Unbind()
	ElementCount() uint32
	Topology() Topology
}

// Material bundles a shader program with its textures and constants.
type Material interface {
	Handle
	Bind() error
}

// Framebuffer is an offscreen render target. A nil Framebuffer means the default target.
type Framebuffer interface {
	Handle
	Bind() error
	Unbind()
}

type UniformSlot uint32

const (
	UniformPassData UniformSlot = iota
	UniformLights
)

func (s UniformSlot) String() string {
	switch s {
	case UniformPassData:
		return "pass-data"
	case UniformLights:
		return "lights"
	}
	return "unknown"
}

// Device receives the uniform uploads and draw calls produced by a flush.
type Device interface {
	WriteUniform(slot UniformSlot, data []byte) error
	Draw(call DrawCall) error
}

func validHandle(h Handle) bool {
	return h != nil && h.Valid()
}
