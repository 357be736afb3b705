// Package topology generates vertex and index data for the primitive shapes used by sample scenes.
package topology

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sculpto/sculpto/render"
)

// VertexSize is the byte size of one packed Vertex: position, normal, texcoords.
const VertexSize = 32

type Vertex struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	TexCoords mgl32.Vec2
}

// Geometry is an indexed triangle list with its bounding box. Faces wind counter-clockwise
// when seen from outside.
type Geometry struct {
	Topology render.Topology
	Vertices []Vertex
	Indices  []uint32
	Min, Max mgl32.Vec3
}

// Grid builds the indices of a Width x Height quad grid over (Width+1)*(Height+1) vertices laid
// out row by row. Vertices are left to the caller.
func Grid(width, height int) *Geometry {
	g := &Geometry{
		Topology: render.TopologyTriangles,
		Indices:  make([]uint32, 0, width*height*6),
	}
	stride := uint32(width + 1)
	for i := uint32(0); i < uint32(height); i++ {
		for j := uint32(0); j < uint32(width); j++ {
			g.Indices = append(g.Indices,
				(i+1)*stride+j+1, (i+0)*stride+j+1, (i+0)*stride+j+0,
				(i+0)*stride+j+0, (i+1)*stride+j+0, (i+1)*stride+j+1,
			)
		}
	}
	g.Max = mgl32.Vec3{float32(width), 0, float32(height)}
	return g
}

// Plane is a Width x Height grid of unit quads on the XZ plane facing +Y, with one corner at
// the origin.
func Plane(width, height int) *Geometry {
	g := Grid(width, height)
	g.Vertices = make([]Vertex, 0, (width+1)*(height+1))
	for i := 0; i <= height; i++ {
		for j := 0; j <= width; j++ {
			g.Vertices = append(g.Vertices, Vertex{
				Position:  mgl32.Vec3{float32(j), 0, float32(i)},
				Normal:    mgl32.Vec3{0, 1, 0},
				TexCoords: mgl32.Vec2{float32(j) / float32(max(width, 1)), float32(i) / float32(max(height, 1))},
			})
		}
	}
	return g
}

// Sphere is a UV sphere with slices rings and slices segments.
func Sphere(center mgl32.Vec3, radius float32, slices int) *Geometry {
	slices = max(slices, 3)
	g := Grid(slices, slices)
	g.Vertices = make([]Vertex, 0, (slices+1)*(slices+1))
	for i := 0; i <= slices; i++ {
		theta := float32(i) / float32(slices) * math32.Pi
		st, ct := math32.Sincos(theta)
		for j := 0; j <= slices; j++ {
			phi := float32(j) / float32(slices) * 2 * math32.Pi
			sp, cp := math32.Sincos(phi)
			n := mgl32.Vec3{st * sp, ct, st * cp}
			g.Vertices = append(g.Vertices, Vertex{
				Position:  center.Add(n.Mul(radius)),
				Normal:    n,
				TexCoords: mgl32.Vec2{float32(j) / float32(slices), float32(i) / float32(slices)},
			})
		}
	}
	r := mgl32.Vec3{radius, radius, radius}
	g.Min, g.Max = center.Sub(r), center.Add(r)
	return g
}

var cubeFaces = [6]struct{ n, u, v mgl32.Vec3 }{
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
}

// Cube is the axis-aligned box spanned by corners a and b, with flat per-face normals.
func Cube(a, b mgl32.Vec3) *Geometry {
	lo := mgl32.Vec3{min(a.X(), b.X()), min(a.Y(), b.Y()), min(a.Z(), b.Z())}
	hi := mgl32.Vec3{max(a.X(), b.X()), max(a.Y(), b.Y()), max(a.Z(), b.Z())}
	center := lo.Add(hi).Mul(0.5)
	half := hi.Sub(lo).Mul(0.5)

	g := &Geometry{
		Topology: render.TopologyTriangles,
		Vertices: make([]Vertex, 0, 24),
		Indices:  make([]uint32, 0, 36),
		Min:      lo,
		Max:      hi,
	}
	corners := [4]mgl32.Vec2{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, f := range cubeFaces {
		base := uint32(len(g.Vertices))
		for _, c := range corners {
			dir := f.n.Add(f.u.Mul(c.X())).Add(f.v.Mul(c.Y()))
			g.Vertices = append(g.Vertices, Vertex{
				Position:  center.Add(mgl32.Vec3{dir.X() * half.X(), dir.Y() * half.Y(), dir.Z() * half.Z()}),
				Normal:    f.n,
				TexCoords: mgl32.Vec2{(c.X() + 1) / 2, (c.Y() + 1) / 2},
			})
		}
		g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return g
}

// Points is a point list with one vertex per position.
func Points(positions []mgl32.Vec3) *Geometry {
	g := &Geometry{Topology: render.TopologyPoints}
	for i, p := range positions {
		g.Vertices = append(g.Vertices, Vertex{Position: p, Normal: mgl32.Vec3{0, 1, 0}})
		g.Indices = append(g.Indices, uint32(i))
	}
	g.EvaluateBounds()
	return g
}

// EvaluateBounds recomputes Min and Max from the vertex positions.
func (g *Geometry) EvaluateBounds() {
	if len(g.Vertices) == 0 {
		g.Min, g.Max = mgl32.Vec3{}, mgl32.Vec3{}
		return
	}
	lo, hi := g.Vertices[0].Position, g.Vertices[0].Position
	for _, v := range g.Vertices[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], v.Position[k])
			hi[k] = max(hi[k], v.Position[k])
		}
	}
	g.Min, g.Max = lo, hi
}

// EvaluateNormals replaces vertex normals with the normalized sum of adjacent face normals.
func (g *Geometry) EvaluateNormals() {
	for i := range g.Vertices {
		g.Vertices[i].Normal = mgl32.Vec3{}
	}
	for i := 0; i+2 < len(g.Indices); i += 3 {
		i0, i1, i2 := g.Indices[i], g.Indices[i+1], g.Indices[i+2]
		p0 := g.Vertices[i0].Position
		n := g.Vertices[i1].Position.Sub(p0).Cross(g.Vertices[i2].Position.Sub(p0))
		if n.Len() == 0 {
			continue
		}
		n = n.Normalize()
		for _, idx := range [3]uint32{i0, i1, i2} {
			g.Vertices[idx].Normal = g.Vertices[idx].Normal.Add(n)
		}
	}
	for i := range g.Vertices {
		if g.Vertices[i].Normal.Len() > 0 {
			g.Vertices[i].Normal = g.Vertices[i].Normal.Normalize()
		}
	}
}

// BoundingSphere returns the center and radius of the sphere around the bounding box.
func (g *Geometry) BoundingSphere() (mgl32.Vec3, float32) {
	center := g.Min.Add(g.Max).Mul(0.5)
	return center, g.Max.Sub(center).Len()
}

// VertexBytes packs the vertices little-endian, VertexSize bytes each.
func (g *Geometry) VertexBytes() []byte {
	buf := make([]byte, len(g.Vertices)*VertexSize)
	for i, v := range g.Vertices {
		off := i * VertexSize
		for k, f := range [8]float32{
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			v.TexCoords[0], v.TexCoords[1],
		} {
			binary.LittleEndian.PutUint32(buf[off+k*4:], math.Float32bits(f))
		}
	}
	return buf
}

// IndexBytes packs the indices as little-endian uint32.
func (g *Geometry) IndexBytes() []byte {
	buf := make([]byte, len(g.Indices)*4)
	for i, idx := range g.Indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}
