package textmesh

import (
	"fmt"

	"github.com/unixpickle/model3d/model2d"
)

// PathOp is the kind of a PathCommand.
//
// Available options:
//   - MoveTo: start a new contour at Points[0].
//   - LineTo: straight segment to Points[0].
//   - QuadTo: quadratic Bézier with control Points[0] ending at Points[1].
//   - CubicTo: cubic Bézier with controls Points[0], Points[1] ending at
//     Points[2].
//   - Close: end the current contour.
type PathOp int

const (
	MoveTo PathOp = iota
	LineTo
	QuadTo
	CubicTo
	Close
)

func (p PathOp) String() string {
	switch p {
	case MoveTo:
		return "MoveTo"
	case LineTo:
		return "LineTo"
	case QuadTo:
		return "QuadTo"
	case CubicTo:
		return "CubicTo"
	case Close:
		return "Close"
	default:
		return fmt.Sprintf("PathOp(%d)", int(p))
	}
}

// NumPoints returns how many entries of PathCommand.Points the op uses.
func (p PathOp) NumPoints() int {
	switch p {
	case MoveTo, LineTo:
		return 1
	case QuadTo:
		return 2
	case CubicTo:
		return 3
	case Close:
		return 0
	default:
		panic("unknown PathOp")
	}
}

// A PathCommand is one step of a glyph outline.
type PathCommand struct {
	Op     PathOp
	Points [3]model2d.Coord
}

// End returns the on-curve point the command finishes at.
// It panics for Close, which has no end point of its own.
func (p PathCommand) End() model2d.Coord {
	if p.Op == Close {
		panic("Close has no end point")
	}
	return p.Points[p.Op.NumPoints()-1]
}

// Outline is the raw outline of a single glyph, in font design units.
type Outline struct {
	Commands   []PathCommand
	UnitsPerEm float64
	Advance    float64
}

// IsEmpty returns true if the outline has no ink, as for a space.
func (o *Outline) IsEmpty() bool {
	for _, c := range o.Commands {
		if c.Op != MoveTo && c.Op != Close {
			return false
		}
	}
	return true
}

// Normalized returns a copy of the outline scaled so that one em is one
// unit. If UnitsPerEm is not positive, the copy is unscaled.
func (o *Outline) Normalized() *Outline {
	scale := 1.0
	if o.UnitsPerEm > 0 {
		scale = 1 / o.UnitsPerEm
	}
	res := &Outline{
		Commands:   make([]PathCommand, len(o.Commands)),
		UnitsPerEm: 1,
		Advance:    o.Advance * scale,
	}
	for i, c := range o.Commands {
		for j := 0; j < c.Op.NumPoints(); j++ {
			c.Points[j] = c.Points[j].Scale(scale)
		}
		res.Commands[i] = c
	}
	return res
}

// Bounds returns the bounding box of every point referenced by the
// outline, control points included. ok is false for an empty outline.
func (o *Outline) Bounds() (min, max model2d.Coord, ok bool) {
	for _, c := range o.Commands {
		for j := 0; j < c.Op.NumPoints(); j++ {
			p := c.Points[j]
			if !ok {
				min, max, ok = p, p, true
				continue
			}
			min = min.Min(p)
			max = max.Max(p)
		}
	}
	return
}
