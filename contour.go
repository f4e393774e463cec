package textmesh

import "github.com/unixpickle/model3d/model2d"

// A Contour is one closed loop of a glyph outline with its curves still
// intact.
//
// Segments only contain LineTo, QuadTo, and CubicTo commands. The loop
// closes implicitly from the end of the last segment back to Start.
type Contour struct {
	Start    model2d.Coord
	Segments []PathCommand

	// SignedArea is the shoelace area of the polygon through Start and
	// every control and end point. It is positive for counter-clockwise
	// contours (with the y axis pointing up).
	SignedArea float64
}

// IsClockwise returns true if the contour winds clockwise.
func (c *Contour) IsClockwise() bool {
	return c.SignedArea < 0
}

// NumCurves returns the number of quadratic and cubic segments.
func (c *Contour) NumCurves() int {
	var n int
	for _, s := range c.Segments {
		if s.Op == QuadTo || s.Op == CubicTo {
			n++
		}
	}
	return n
}

// BuildContours splits outline commands into contours.
//
// A MoveTo starts a new contour and Close ends the current one; a
// trailing contour without Close is closed implicitly. Contours without
// any segment are skipped, so an outline with no ink yields no contours.
func BuildContours(cmds []PathCommand) []Contour {
	var res []Contour
	var cur *Contour

	finish := func() {
		if cur != nil && len(cur.Segments) > 0 {
			cur.SignedArea = controlPolygonArea(cur)
			res = append(res, *cur)
		}
		cur = nil
	}

	for _, cmd := range cmds {
		switch cmd.Op {
		case MoveTo:
			finish()
			cur = &Contour{Start: cmd.Points[0]}
		case LineTo, QuadTo, CubicTo:
			if cur == nil {
				// Tolerate outlines that begin drawing without a MoveTo by
				// starting at the origin, like PostScript's initial point.
				cur = &Contour{}
			}
			cur.Segments = append(cur.Segments, cmd)
		case Close:
			finish()
		default:
			panic("unknown PathOp")
		}
	}
	finish()

	return res
}

func controlPolygonArea(c *Contour) float64 {
	var sum float64
	prev := c.Start
	for _, s := range c.Segments {
		for j := 0; j < s.Op.NumPoints(); j++ {
			p := s.Points[j]
			sum += prev.X*p.Y - p.X*prev.Y
			prev = p
		}
	}
	sum += prev.X*c.Start.Y - c.Start.X*prev.Y
	return sum / 2
}
