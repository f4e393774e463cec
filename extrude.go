package textmesh

import (
	"fmt"
	"math"

	"github.com/unixpickle/model3d/model2d"
	"github.com/unixpickle/model3d/model3d"
)

// ExtrudeOptions controls the side walls produced by ExtrudeInto.
type ExtrudeOptions struct {
	// SmoothAngle is the largest angle, in radians, between two adjacent
	// wall faces for which the normals at their shared vertices are
	// averaged. Zero keeps a hard edge between every pair of faces.
	SmoothAngle float64
}

// Extrude sweeps a flat mesh along the z axis into a solid.
//
// The front cap is the 2D mesh at z=0 with normal (0, 0, 1). The back cap
// is a copy at z=depth with normal (0, 0, -1) and reversed winding. Every
// edge of every polyline gets a quad of two wall triangles, whose normal
// points away from the filled side of the edge.
//
// A zero or negative depth is allowed. A NaN or infinite depth results in
// ErrExtrusionFailed.
func Extrude(m *Mesh2D, polys []Polyline, depth float64) (*Mesh3D, error) {
	res := NewMesh3D()
	if err := ExtrudeInto(res, m, polys, depth, ExtrudeOptions{}); err != nil {
		return nil, err
	}
	return res, nil
}

// ExtrudeInto is like Extrude, but writes into dst, which is cleared
// first, and accepts extra options.
func ExtrudeInto(dst *Mesh3D, m *Mesh2D, polys []Polyline, depth float64, opts ExtrudeOptions) error {
	dst.Clear()
	if math.IsNaN(depth) || math.IsInf(depth, 0) {
		return fmt.Errorf("%w: depth must be finite (got %v)", ErrExtrusionFailed, depth)
	}

	roles := Classify(polys)
	walls := make([][]wallEdge, len(polys))
	var numEdges int
	for i, p := range polys {
		if roles[i] == RoleRedundant {
			continue
		}
		walls[i] = wallEdges(p, roles[i] == RoleHole)
		numEdges += len(walls[i])
	}

	numCap := m.VertexCount()
	dst.Reserve(2*numCap+4*numEdges, 2*m.TriangleCount()+2*numEdges)

	front := model3d.XYZ(0, 0, 1)
	for _, v := range m.Vertices {
		dst.PushVertex(model3d.XYZ(v.X, v.Y, 0), front)
	}
	for i := 0; i < m.TriangleCount(); i++ {
		t := m.Triangle(i)
		dst.PushTriangle(t[0], t[1], t[2])
	}
	dst.FrontCap = TriangleRange{Start: 0, End: dst.TriangleCount()}

	back := model3d.XYZ(0, 0, -1)
	offset := uint32(numCap)
	for _, v := range m.Vertices {
		dst.PushVertex(model3d.XYZ(v.X, v.Y, depth), back)
	}
	for i := 0; i < m.TriangleCount(); i++ {
		t := m.Triangle(i)
		dst.PushTriangle(t[0]+offset, t[2]+offset, t[1]+offset)
	}
	dst.BackCap = TriangleRange{Start: dst.FrontCap.End, End: dst.TriangleCount()}

	cosSmooth := math.Inf(1)
	if opts.SmoothAngle > 0 {
		cosSmooth = math.Cos(math.Min(opts.SmoothAngle, math.Pi))
	}
	for _, edges := range walls {
		for j, e := range edges {
			prev := edges[(j+len(edges)-1)%len(edges)]
			next := edges[(j+1)%len(edges)]
			startNormal := blendNormal(e.normal, prev.normal, cosSmooth)
			endNormal := blendNormal(e.normal, next.normal, cosSmooth)

			a0 := dst.PushVertex(model3d.XYZ(e.a.X, e.a.Y, 0), startNormal)
			a1 := dst.PushVertex(model3d.XYZ(e.b.X, e.b.Y, 0), endNormal)
			b0 := dst.PushVertex(model3d.XYZ(e.a.X, e.a.Y, depth), startNormal)
			b1 := dst.PushVertex(model3d.XYZ(e.b.X, e.b.Y, depth), endNormal)
			if e.right {
				dst.PushTriangle(a0, a1, b1)
				dst.PushTriangle(a0, b1, b0)
			} else {
				dst.PushTriangle(a0, b1, a1)
				dst.PushTriangle(a0, b0, b1)
			}
		}
	}
	dst.Walls = TriangleRange{Start: dst.BackCap.End, End: dst.TriangleCount()}

	return nil
}

// ExtrudePolylinesInto triangulates polys and extrudes the result into dst.
//
// The triangulation is kept in a buffer owned by dst, so repeated calls
// with the same dst reuse its vertex and index buffers.
func ExtrudePolylinesInto(dst *Mesh3D, polys []Polyline, depth float64, opts ExtrudeOptions) error {
	dst.Clear()
	if math.IsNaN(depth) || math.IsInf(depth, 0) {
		return fmt.Errorf("%w: depth must be finite (got %v)", ErrExtrusionFailed, depth)
	}
	if err := TriangulateInto(&dst.capMesh, polys); err != nil {
		return err
	}
	return ExtrudeInto(dst, &dst.capMesh, polys, depth, opts)
}

type wallEdge struct {
	a, b   model2d.Coord
	normal model3d.Coord3D

	// right is true if normal is on the right-hand side of a -> b.
	right bool
}

// wallEdges computes the outward wall normal of every non-degenerate edge.
//
// The filled material lies left of a counter-clockwise outer boundary and
// right of a counter-clockwise hole, and the other way around for
// clockwise loops.
func wallEdges(p Polyline, hole bool) []wallEdge {
	right := (p.SignedArea() > 0) != hole
	res := make([]wallEdge, 0, len(p))
	for i, a := range p {
		b := p[(i+1)%len(p)]
		d := b.Sub(a)
		length := d.Norm()
		if length <= mergeEpsilon {
			continue
		}
		n := model3d.XYZ(d.Y/length, -d.X/length, 0)
		if !right {
			n = n.Scale(-1)
		}
		res = append(res, wallEdge{a: a, b: b, normal: n, right: right})
	}
	return res
}

func blendNormal(n, neighbor model3d.Coord3D, cosSmooth float64) model3d.Coord3D {
	if n.Dot(neighbor) < cosSmooth {
		return n
	}
	sum := n.Add(neighbor)
	if sum.Norm() == 0 {
		return n
	}
	return sum.Normalize()
}
