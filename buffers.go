package textmesh

import (
	"fmt"
	"slices"

	"github.com/unixpickle/model3d/model2d"
	"github.com/unixpickle/model3d/model3d"
)

// Mesh2D is a flat triangle mesh.
//
// Every three consecutive entries of Indices form a counter-clockwise
// triangle. A Mesh2D may be reused across calls with Clear, but it must
// not be shared between concurrent calls.
type Mesh2D struct {
	Vertices []model2d.Coord
	Indices  []uint32
}

// NewMesh2D creates an empty mesh.
func NewMesh2D() *Mesh2D {
	return &Mesh2D{}
}

// Reserve grows the buffers so that the given number of additional
// vertices and triangles can be pushed without reallocating.
func (m *Mesh2D) Reserve(vertices, triangles int) {
	m.Vertices = slices.Grow(m.Vertices, vertices)
	m.Indices = slices.Grow(m.Indices, triangles*3)
}

// PushVertex appends a vertex and returns its index.
func (m *Mesh2D) PushVertex(c model2d.Coord) uint32 {
	m.Vertices = append(m.Vertices, c)
	return uint32(len(m.Vertices) - 1)
}

// PushTriangle appends a triangle.
//
// It panics if an index does not refer to an existing vertex.
func (m *Mesh2D) PushTriangle(i, j, k uint32) {
	checkTriangle(len(m.Vertices), i, j, k)
	m.Indices = append(m.Indices, i, j, k)
}

// Clear empties the mesh while keeping its allocated capacity.
func (m *Mesh2D) Clear() {
	m.Vertices = m.Vertices[:0]
	m.Indices = m.Indices[:0]
}

func (m *Mesh2D) VertexCount() int {
	return len(m.Vertices)
}

func (m *Mesh2D) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no triangles.
func (m *Mesh2D) IsEmpty() bool {
	return len(m.Indices) == 0
}

// Triangle returns the vertex indices of the i'th triangle.
func (m *Mesh2D) Triangle(i int) [3]uint32 {
	return [3]uint32{m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]}
}

// Area computes the total signed area of the triangles.
func (m *Mesh2D) Area() float64 {
	var sum float64
	for i := 0; i < m.TriangleCount(); i++ {
		t := m.Triangle(i)
		a, b, c := m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
		sum += cross2(a, b, c) / 2
	}
	return sum
}

// Contains checks if c lies in one of the triangles.
func (m *Mesh2D) Contains(c model2d.Coord) bool {
	for i := 0; i < m.TriangleCount(); i++ {
		t := m.Triangle(i)
		if pointInTriangle(m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]], c) {
			return true
		}
	}
	return false
}

// Translate offsets every vertex in place.
func (m *Mesh2D) Translate(offset model2d.Coord) {
	for i, v := range m.Vertices {
		m.Vertices[i] = v.Add(offset)
	}
}

// Append adds the triangles of other to m, shifting indices accordingly.
func (m *Mesh2D) Append(other *Mesh2D) {
	offset := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, other.Vertices...)
	for _, idx := range other.Indices {
		m.Indices = append(m.Indices, idx+offset)
	}
}

// A TriangleRange is a half-open range [Start, End) of triangle numbers.
type TriangleRange struct {
	Start int
	End   int
}

func (t TriangleRange) Len() int {
	return t.End - t.Start
}

// Mesh3D is a triangle mesh with one normal per vertex.
//
// The triangles are grouped into the front cap, back cap, and side walls,
// in that order.
type Mesh3D struct {
	Vertices []model3d.Coord3D
	Normals  []model3d.Coord3D
	Indices  []uint32

	FrontCap TriangleRange
	BackCap  TriangleRange
	Walls    TriangleRange

	// capMesh is reused by ExtrudePolylinesInto for the flat triangulation.
	capMesh Mesh2D
}

// NewMesh3D creates an empty mesh.
func NewMesh3D() *Mesh3D {
	return &Mesh3D{}
}

// Reserve grows the buffers so that the given number of additional
// vertices and triangles can be pushed without reallocating.
func (m *Mesh3D) Reserve(vertices, triangles int) {
	m.Vertices = slices.Grow(m.Vertices, vertices)
	m.Normals = slices.Grow(m.Normals, vertices)
	m.Indices = slices.Grow(m.Indices, triangles*3)
}

// PushVertex appends a vertex with its normal and returns its index.
func (m *Mesh3D) PushVertex(pos, normal model3d.Coord3D) uint32 {
	m.Vertices = append(m.Vertices, pos)
	m.Normals = append(m.Normals, normal)
	return uint32(len(m.Vertices) - 1)
}

// PushTriangle appends a triangle.
//
// It panics if an index does not refer to an existing vertex.
func (m *Mesh3D) PushTriangle(i, j, k uint32) {
	checkTriangle(len(m.Vertices), i, j, k)
	m.Indices = append(m.Indices, i, j, k)
}

// Clear empties the mesh while keeping its allocated capacity.
func (m *Mesh3D) Clear() {
	m.Vertices = m.Vertices[:0]
	m.Normals = m.Normals[:0]
	m.Indices = m.Indices[:0]
	m.FrontCap = TriangleRange{}
	m.BackCap = TriangleRange{}
	m.Walls = TriangleRange{}
}

func (m *Mesh3D) VertexCount() int {
	return len(m.Vertices)
}

func (m *Mesh3D) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no triangles.
func (m *Mesh3D) IsEmpty() bool {
	return len(m.Indices) == 0
}

// Triangle returns the vertex indices of the i'th triangle.
func (m *Mesh3D) Triangle(i int) [3]uint32 {
	return [3]uint32{m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]}
}

// Triangles converts the mesh into model3d triangles, for example to
// encode it as an STL file.
func (m *Mesh3D) Triangles() []*model3d.Triangle {
	res := make([]*model3d.Triangle, m.TriangleCount())
	for i := range res {
		t := m.Triangle(i)
		res[i] = &model3d.Triangle{m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]}
	}
	return res
}

// Translate offsets every vertex in place.
func (m *Mesh3D) Translate(offset model3d.Coord3D) {
	for i, v := range m.Vertices {
		m.Vertices[i] = v.Add(offset)
	}
}

// Append adds the triangles of other to m, shifting indices accordingly.
// The triangle groups of m are cleared, since the result interleaves the
// groups of both meshes.
func (m *Mesh3D) Append(other *Mesh3D) {
	offset := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, other.Vertices...)
	m.Normals = append(m.Normals, other.Normals...)
	for _, idx := range other.Indices {
		m.Indices = append(m.Indices, idx+offset)
	}
	m.FrontCap = TriangleRange{}
	m.BackCap = TriangleRange{}
	m.Walls = TriangleRange{}
}

func checkTriangle(numVertices int, i, j, k uint32) {
	n := uint32(numVertices)
	if i >= n || j >= n || k >= n {
		panic(fmt.Sprintf("triangle (%d, %d, %d) out of range for %d vertices", i, j, k, numVertices))
	}
}
