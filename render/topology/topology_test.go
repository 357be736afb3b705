package topology

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sculpto/sculpto/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// faceNormal returns the geometric normal of triangle t.
func vecNear(a, b mgl32.Vec3) bool {
	return a.ApproxFuncEqual(b, func(x, y float32) bool { return mgl32.Abs(x-y) < 1e-5 })
}

func faceNormal(g *Geometry, t int) mgl32.Vec3 {
	p0 := g.Vertices[g.Indices[t*3]].Position
	p1 := g.Vertices[g.Indices[t*3+1]].Position
	p2 := g.Vertices[g.Indices[t*3+2]].Position
	return p1.Sub(p0).Cross(p2.Sub(p0))
}

func requireValidIndices(t *testing.T, g *Geometry) {
	t.Helper()
	for _, idx := range g.Indices {
		require.Less(t, int(idx), len(g.Vertices))
	}
}

func TestGrid(t *testing.T) {
	g := Grid(3, 2)
	assert.Equal(t, render.TopologyTriangles, g.Topology)
	assert.Len(t, g.Indices, 3*2*6)
	assert.Empty(t, g.Vertices)
	assert.Equal(t, mgl32.Vec3{3, 0, 2}, g.Max)
	assert.Equal(t, []uint32{5, 1, 0, 0, 4, 5}, g.Indices[:6])
}

func TestPlane(t *testing.T) {
	g := Plane(4, 4)
	require.Len(t, g.Vertices, 25)
	requireValidIndices(t, g)
	for tri := 0; tri < len(g.Indices)/3; tri++ {
		n := faceNormal(g, tri)
		assert.Greater(t, n.Y(), float32(0), "triangle %d must face +Y", tri)
	}
	assert.Equal(t, mgl32.Vec2{1, 1}, g.Vertices[24].TexCoords)
}

func TestCube(t *testing.T) {
	g := Cube(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{-1, -1, -1})
	require.Len(t, g.Vertices, 24)
	require.Len(t, g.Indices, 36)
	requireValidIndices(t, g)
	assert.Equal(t, mgl32.Vec3{-1, -1, -1}, g.Min)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, g.Max)

	for tri := 0; tri < 12; tri++ {
		n := faceNormal(g, tri).Normalize()
		vn := g.Vertices[g.Indices[tri*3]].Normal
		assert.True(t, vecNear(n, vn), "triangle %d winds against its normal %v", tri, vn)
	}
	for _, v := range g.Vertices {
		for k := 0; k < 3; k++ {
			assert.InDelta(t, 1, math.Abs(float64(v.Position[k])), 1e-6)
		}
	}
}

func TestCube_NonUniform(t *testing.T) {
	g := Cube(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{4, 2, 1})
	g2 := *g
	g2.EvaluateBounds()
	assert.Equal(t, g.Min, g2.Min)
	assert.Equal(t, g.Max, g2.Max)
	center, radius := g.BoundingSphere()
	assert.Equal(t, mgl32.Vec3{2, 1, 0.5}, center)
	assert.InDelta(t, math.Sqrt(4+1+0.25), radius, 1e-6)
}

func TestSphere(t *testing.T) {
	center := mgl32.Vec3{1, 2, 3}
	g := Sphere(center, 2, 16)
	require.Len(t, g.Vertices, 17*17)
	requireValidIndices(t, g)
	for _, v := range g.Vertices {
		assert.InDelta(t, 2, v.Position.Sub(center).Len(), 1e-5)
		assert.InDelta(t, 1, v.Normal.Len(), 1e-5)
	}
	// non-degenerate triangles face outward
	for tri := 0; tri < len(g.Indices)/3; tri++ {
		n := faceNormal(g, tri)
		if n.Len() < 1e-6 {
			continue
		}
		p := g.Vertices[g.Indices[tri*3]].Position.Sub(center)
		assert.Greater(t, n.Dot(p), float32(0), "triangle %d faces inward", tri)
	}
	assert.Equal(t, 3*3*6, len(Sphere(center, 1, 0).Indices), "slices are clamped to 3")
}

func TestEvaluateNormals(t *testing.T) {
	g := Plane(2, 2)
	for i := range g.Vertices {
		g.Vertices[i].Normal = mgl32.Vec3{}
	}
	g.EvaluateNormals()
	for _, v := range g.Vertices {
		assert.True(t, vecNear(v.Normal, mgl32.Vec3{0, 1, 0}), "normal %v", v.Normal)
	}
}

func TestPoints(t *testing.T) {
	g := Points([]mgl32.Vec3{{1, 0, 0}, {-1, 5, 2}})
	assert.Equal(t, render.TopologyPoints, g.Topology)
	assert.Equal(t, []uint32{0, 1}, g.Indices)
	assert.Equal(t, mgl32.Vec3{-1, 0, 0}, g.Min)
	assert.Equal(t, mgl32.Vec3{1, 5, 2}, g.Max)

	empty := Points(nil)
	assert.Equal(t, mgl32.Vec3{}, empty.Max)
}

func TestVertexAndIndexBytes(t *testing.T) {
	g := Cube(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1})
	vb := g.VertexBytes()
	require.Len(t, vb, 24*VertexSize)
	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(vb[off:])) }

	v := g.Vertices[5]
	off := 5 * VertexSize
	assert.Equal(t, v.Position.X(), f(off))
	assert.Equal(t, v.Normal.Y(), f(off+16))
	assert.Equal(t, v.TexCoords.Y(), f(off+28))

	ib := g.IndexBytes()
	require.Len(t, ib, 36*4)
	assert.Equal(t, g.Indices[35], binary.LittleEndian.Uint32(ib[35*4:]))
}
