package main

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/unixpickle/model3d/model2d"
	"github.com/unixpickle/model3d/model3d"
	"github.com/unixpickle/textmesh"
)

// HAlign controls horizontal text alignment.
//
// Available options:
//   - HAlignLeft: align to the text origin on the left.
//   - HAlignCenter: center around the text origin.
//   - HAlignRight: align to the text advance on the right.
type HAlign int

const (
	HAlignLeft HAlign = iota
	HAlignCenter
	HAlignRight
)

func parseHAlign(s string) (HAlign, error) {
	switch s {
	case "left", "":
		return HAlignLeft, nil
	case "center":
		return HAlignCenter, nil
	case "right":
		return HAlignRight, nil
	default:
		return 0, fmt.Errorf("unknown horizontal alignment: %q", s)
	}
}

// VAlign controls vertical text alignment.
//
// Available options:
//   - VAlignBaseline: keep the baseline at y=0.
//   - VAlignTop: align the top bound to y=0.
//   - VAlignCenter: center vertically around y=0.
//   - VAlignBottom: align the bottom bound to y=0.
type VAlign int

const (
	VAlignBaseline VAlign = iota
	VAlignTop
	VAlignCenter
	VAlignBottom
)

func parseVAlign(s string) (VAlign, error) {
	switch s {
	case "baseline", "":
		return VAlignBaseline, nil
	case "top":
		return VAlignTop, nil
	case "center":
		return VAlignCenter, nil
	case "bottom":
		return VAlignBottom, nil
	default:
		return 0, fmt.Errorf("unknown vertical alignment: %q", s)
	}
}

// A Layout is a line of text converted to meshes in model units.
type Layout struct {
	Polylines []textmesh.Polyline

	// Exactly one of Flat and Solid is set.
	Flat  *textmesh.Mesh2D
	Solid *textmesh.Mesh3D

	// Advance is the total pen advance in model units.
	Advance float64
}

// LayoutText places one glyph per rune along the baseline, aligns the
// result, and scales it so that the font's ascent equals cfg.Size.
//
// Runes missing from the font are skipped.
func LayoutText(p textmesh.OutlineProvider, cfg *Config) (*Layout, error) {
	hAlign, err := parseHAlign(cfg.HAlign)
	if err != nil {
		return nil, err
	}
	vAlign, err := parseVAlign(cfg.VAlign)
	if err != nil {
		return nil, err
	}
	q := textmesh.Quality(cfg.Quality)
	opts := textmesh.ExtrudeOptions{SmoothAngle: cfg.SmoothAngle * math.Pi / 180}

	res := &Layout{}
	if cfg.Flat {
		res.Flat = textmesh.NewMesh2D()
	} else {
		res.Solid = textmesh.NewMesh3D()
	}
	flatScratch := textmesh.NewMesh2D()
	solidScratch := textmesh.NewMesh3D()

	// Pen position in ems.
	penX := 0.0
	for _, r := range cfg.Text {
		g, err := textmesh.NewGlyph(p, r)
		if errors.Is(err, textmesh.ErrGlyphNotFound) {
			log.Printf("skipping %q: not in font", r)
			continue
		} else if err != nil {
			return nil, err
		}

		polys, err := g.Polylines(q)
		if err != nil {
			return nil, fmt.Errorf("glyph %q: %w", r, err)
		}

		offset := model2d.XY(penX, 0)
		if cfg.Flat {
			if err := textmesh.TriangulateInto(flatScratch, polys); err != nil {
				return nil, fmt.Errorf("glyph %q: %w", r, err)
			}
			flatScratch.Translate(offset)
			res.Flat.Append(flatScratch)
		} else {
			// Depth is given in model units, but the glyph is built in ems
			// and scaled afterwards in x and y only.
			if err := textmesh.ExtrudePolylinesInto(solidScratch, polys, cfg.Depth, opts); err != nil {
				return nil, fmt.Errorf("glyph %q: %w", r, err)
			}
			solidScratch.Translate(model3d.XYZ(penX, 0, 0))
			res.Solid.Append(solidScratch)
		}

		for _, poly := range polys {
			for i := range poly {
				poly[i] = poly[i].Add(offset)
			}
		}
		res.Polylines = append(res.Polylines, polys...)

		penX += g.Advance() * cfg.Spacing
	}

	scale := cfg.Size / fontAscent(p)
	min, max := polylineBounds(res.Polylines)
	dx, dy := computeAlign(hAlign, vAlign, min, max, penX)

	transform := func(c model2d.Coord) model2d.Coord {
		return model2d.XY((c.X+dx)*scale, (c.Y+dy)*scale)
	}
	for _, poly := range res.Polylines {
		for i, c := range poly {
			poly[i] = transform(c)
		}
	}
	if res.Flat != nil {
		for i, c := range res.Flat.Vertices {
			res.Flat.Vertices[i] = transform(c)
		}
	} else {
		for i, c := range res.Solid.Vertices {
			xy := transform(model2d.XY(c.X, c.Y))
			res.Solid.Vertices[i] = model3d.XYZ(xy.X, xy.Y, c.Z)
		}
	}
	res.Advance = penX * scale

	return res, nil
}

// fontAscent returns the ascent of the font in ems, or 1 if the provider
// does not report one.
func fontAscent(p textmesh.OutlineProvider) float64 {
	if a, ok := p.(interface{ Ascender() float64 }); ok && a.Ascender() > 0 {
		return a.Ascender()
	}
	return 1
}

func polylineBounds(polys []textmesh.Polyline) (min, max model2d.Coord) {
	min = model2d.XY(math.Inf(1), math.Inf(1))
	max = model2d.XY(math.Inf(-1), math.Inf(-1))
	for _, p := range polys {
		pMin, pMax := p.Bounds()
		min = min.Min(pMin)
		max = max.Max(pMax)
	}
	if len(polys) == 0 {
		return model2d.Coord{}, model2d.Coord{}
	}
	return
}

// computeAlign uses the final bounds and the total advance.
// Baseline means y=0, and top/bottom use outline bounds.
func computeAlign(h HAlign, v VAlign, min, max model2d.Coord, advanceWidth float64) (dx, dy float64) {
	switch h {
	case HAlignRight:
		// Right alignment is relative to the text origin plus total
		// advance, not the outline's max X.
		dx = -advanceWidth
	case HAlignCenter:
		dx = -(min.X + max.X) / 2
	case HAlignLeft:
		// Left alignment is relative to the pen start, not the outline's
		// leftmost bound.
		dx = 0
	default:
		panic("unknown HAlign")
	}

	switch v {
	case VAlignTop:
		dy = -max.Y
	case VAlignCenter:
		dy = -(min.Y + max.Y) / 2
	case VAlignBottom:
		dy = -min.Y
	case VAlignBaseline:
		dy = 0
	default:
		panic("unknown VAlign")
	}

	return dx, dy
}
