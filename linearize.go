package textmesh

import (
	"fmt"
	"math"

	"github.com/unixpickle/model3d/model2d"
)

// A Polyline is a closed loop of straight segments.
//
// The loop closes implicitly from the last point back to the first, and
// the first point is never repeated at the end.
type Polyline []model2d.Coord

// SignedArea computes the shoelace area, positive for counter-clockwise
// loops.
func (p Polyline) SignedArea() float64 {
	var sum float64
	for i, c := range p {
		n := p[(i+1)%len(p)]
		sum += c.X*n.Y - n.X*c.Y
	}
	return sum / 2
}

// Bounds returns the bounding box of the points.
func (p Polyline) Bounds() (min, max model2d.Coord) {
	if len(p) == 0 {
		return
	}
	min, max = p[0], p[0]
	for _, c := range p[1:] {
		min = min.Min(c)
		max = max.Max(c)
	}
	return
}

// Contains checks if c is inside the loop using the even-odd rule.
// Points exactly on the boundary may be reported either way.
func (p Polyline) Contains(c model2d.Coord) bool {
	var inside bool
	for i, a := range p {
		b := p[(i+1)%len(p)]
		if (a.Y > c.Y) != (b.Y > c.Y) {
			x := a.X + (c.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if c.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// Linearize flattens the curved segments of c into straight segments.
//
// Every quadratic and cubic segment becomes exactly subdivisions straight
// segments, sampled at t = i/subdivisions for i in 1..subdivisions, while a
// LineTo stays a single segment. The closing edge back to the start is
// implicit.
//
// It returns ErrInvalidQuality if subdivisions < 1, before looking at the
// contour.
func Linearize(c Contour, subdivisions int) (Polyline, error) {
	if subdivisions < 1 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidQuality, subdivisions)
	}
	return linearizeContour(&c, subdivisions), nil
}

// LinearizeContours flattens every contour, dropping those which end up
// with fewer than three points.
//
// It returns ErrInvalidQuality if subdivisions < 1.
func LinearizeContours(cs []Contour, subdivisions int) ([]Polyline, error) {
	if subdivisions < 1 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidQuality, subdivisions)
	}
	res := make([]Polyline, 0, len(cs))
	for i := range cs {
		poly := linearizeContour(&cs[i], subdivisions)
		if len(poly) < 3 {
			Logger().Debug("dropping degenerate contour", "contour", i, "points", len(poly))
			continue
		}
		res = append(res, poly)
	}
	return res, nil
}

func linearizeContour(c *Contour, segs int) Polyline {
	poly := make(Polyline, 0, 1+len(c.Segments)+c.NumCurves()*(segs-1))
	poly = append(poly, c.Start)
	prev := c.Start
	for _, s := range c.Segments {
		switch s.Op {
		case LineTo:
			poly = append(poly, s.Points[0])
		case QuadTo:
			poly = append(poly, flattenQuad(prev, s.Points[0], s.Points[1], segs)...)
		case CubicTo:
			poly = append(poly, flattenCubic(prev, s.Points[0], s.Points[1], s.Points[2], segs)...)
		default:
			panic("unexpected PathOp in contour: " + s.Op.String())
		}
		prev = s.End()
	}
	if len(poly) > 1 && poly[len(poly)-1] == poly[0] {
		poly = poly[:len(poly)-1]
	}
	return poly
}

func flattenQuad(p0, p1, p2 model2d.Coord, segs int) []model2d.Coord {
	out := make([]model2d.Coord, 0, segs)
	for i := 1; i <= segs; i++ {
		t := float64(i) / float64(segs)
		u := 1 - t
		p := p0.Scale(u * u).Add(p1.Scale(2 * u * t)).Add(p2.Scale(t * t))
		out = append(out, p)
	}
	return out
}

func flattenCubic(p0, p1, p2, p3 model2d.Coord, segs int) []model2d.Coord {
	out := make([]model2d.Coord, 0, segs)
	for i := 1; i <= segs; i++ {
		t := float64(i) / float64(segs)
		u := 1 - t
		p := p0.Scale(u * u * u).
			Add(p1.Scale(3 * u * u * t)).
			Add(p2.Scale(3 * u * t * t)).
			Add(p3.Scale(t * t * t))
		out = append(out, p)
	}
	return out
}

// PolylinesMesh converts polylines into a single 2D segment mesh, which
// can be turned into a model2d.Solid or rasterized.
func PolylinesMesh(polys []Polyline) *model2d.Mesh {
	mesh := model2d.NewMesh()
	for _, poly := range polys {
		if len(poly) < 2 {
			continue
		}
		for i := 1; i < len(poly); i++ {
			mesh.Add(&model2d.Segment{poly[i-1], poly[i]})
		}
		mesh.Add(&model2d.Segment{poly[len(poly)-1], poly[0]})
	}
	return mesh
}

func isFiniteCoord(c model2d.Coord) bool {
	return !math.IsNaN(c.X) && !math.IsNaN(c.Y) && !math.IsInf(c.X, 0) && !math.IsInf(c.Y, 0)
}
