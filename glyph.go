package textmesh

import (
	"fmt"
	"math"

	"github.com/unixpickle/model3d/model2d"
)

// Quality is the number of straight segments each curve is split into.
type Quality int

const (
	QualityLow    Quality = 10
	QualityNormal Quality = 20
	QualityHigh   Quality = 50
)

// Validate returns ErrInvalidQuality if q is below one.
func (q Quality) Validate() error {
	if q < 1 {
		return fmt.Errorf("%w (got %d)", ErrInvalidQuality, int(q))
	}
	return nil
}

// An OutlineProvider looks up glyph outlines in a font.
//
// Outlines are returned in font design units with the y axis pointing up.
// Providers return an error wrapping ErrGlyphNotFound when the font has no
// glyph for a rune.
type OutlineProvider interface {
	GlyphOutline(r rune) (*Outline, error)
}

// OutlinePolylines normalizes an outline to one em and flattens it.
func OutlinePolylines(o *Outline, q Quality) ([]Polyline, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return LinearizeContours(BuildContours(o.Normalized().Commands), int(q))
}

// OutlineMesh2D triangulates an outline, normalized to one em.
func OutlineMesh2D(o *Outline, q Quality) (*Mesh2D, error) {
	res := NewMesh2D()
	if err := OutlineMesh2DInto(res, o, q); err != nil {
		return nil, err
	}
	return res, nil
}

// OutlineMesh2DInto is like OutlineMesh2D, but reuses dst.
func OutlineMesh2DInto(dst *Mesh2D, o *Outline, q Quality) error {
	dst.Clear()
	polys, err := OutlinePolylines(o, q)
	if err != nil {
		return err
	}
	return TriangulateInto(dst, polys)
}

// OutlineMesh3D triangulates and extrudes an outline, normalized to one
// em, with hard edges between wall faces.
func OutlineMesh3D(o *Outline, q Quality, depth float64) (*Mesh3D, error) {
	res := NewMesh3D()
	if err := OutlineMesh3DInto(res, o, q, depth, ExtrudeOptions{}); err != nil {
		return nil, err
	}
	return res, nil
}

// OutlineMesh3DInto is like OutlineMesh3D, but reuses dst and accepts
// extrusion options.
//
// Both q and depth are checked before any geometry is computed.
func OutlineMesh3DInto(dst *Mesh3D, o *Outline, q Quality, depth float64, opts ExtrudeOptions) error {
	dst.Clear()
	if err := q.Validate(); err != nil {
		return err
	}
	if math.IsNaN(depth) || math.IsInf(depth, 0) {
		return fmt.Errorf("%w: depth must be finite (got %v)", ErrExtrusionFailed, depth)
	}
	polys, err := OutlinePolylines(o, q)
	if err != nil {
		return err
	}
	return ExtrudePolylinesInto(dst, polys, depth, opts)
}

// CharMesh2D looks up the outline of r and triangulates it.
func CharMesh2D(p OutlineProvider, r rune, q Quality) (*Mesh2D, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	o, err := p.GlyphOutline(r)
	if err != nil {
		return nil, err
	}
	return OutlineMesh2D(o, q)
}

// CharMesh3D looks up the outline of r, triangulates it, and extrudes it
// by depth.
func CharMesh3D(p OutlineProvider, r rune, q Quality, depth float64) (*Mesh3D, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	o, err := p.GlyphOutline(r)
	if err != nil {
		return nil, err
	}
	return OutlineMesh3D(o, q, depth)
}

// A Glyph is the outline of a single rune, normalized so that one em is
// one unit, from which meshes can be built at any quality.
//
// A Glyph is immutable and may be used from multiple goroutines.
type Glyph struct {
	r       rune
	outline *Outline
}

// NewGlyph looks up the outline of r.
func NewGlyph(p OutlineProvider, r rune) (*Glyph, error) {
	o, err := p.GlyphOutline(r)
	if err != nil {
		return nil, err
	}
	return &Glyph{r: r, outline: o.Normalized()}, nil
}

func (g *Glyph) Rune() rune {
	return g.r
}

// Advance returns the horizontal advance in ems.
func (g *Glyph) Advance() float64 {
	return g.outline.Advance
}

// Bounds returns the bounding box of the outline's points in ems, control
// points included. ok is false for a glyph without ink.
func (g *Glyph) Bounds() (min, max model2d.Coord, ok bool) {
	return g.outline.Bounds()
}

// Outline returns a copy of the normalized outline.
func (g *Glyph) Outline() *Outline {
	return g.outline.Normalized()
}

func (g *Glyph) Polylines(q Quality) ([]Polyline, error) {
	return OutlinePolylines(g.outline, q)
}

func (g *Glyph) Mesh2D(q Quality) (*Mesh2D, error) {
	return OutlineMesh2D(g.outline, q)
}

func (g *Glyph) Mesh3D(q Quality, depth float64) (*Mesh3D, error) {
	return OutlineMesh3D(g.outline, q, depth)
}
