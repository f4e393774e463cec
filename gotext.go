package textmesh

import (
	"bytes"
	"fmt"
	"sync"

	gotextfont "github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"github.com/unixpickle/model3d/model2d"
)

// GoTextFont reads outlines with github.com/go-text/typesetting, which
// supports glyf, CFF and CFF2 outlines, including the default instance of
// variable fonts.
//
// It implements OutlineProvider and is safe for concurrent use.
type GoTextFont struct {
	lock sync.Mutex
	face *gotextfont.Face
}

// ParseGoText parses a TrueType or OpenType font file.
func ParseGoText(data []byte) (*GoTextFont, error) {
	face, err := gotextfont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &GoTextFont{face: face}, nil
}

func (g *GoTextFont) UnitsPerEm() float64 {
	return float64(g.face.Upem())
}

// GlyphOutline loads the outline of r in font design units.
func (g *GoTextFont) GlyphOutline(r rune) (*Outline, error) {
	// Faces cache per-glyph state and are not safe for concurrent use.
	g.lock.Lock()
	defer g.lock.Unlock()

	gid, ok := g.face.NominalGlyph(r)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrGlyphNotFound, r)
	}

	var segments []ot.Segment
	switch data := g.face.GlyphData(gid).(type) {
	case gotextfont.GlyphOutline:
		segments = data.Segments
	case gotextfont.GlyphSVG:
		segments = data.Outline.Segments
	case gotextfont.GlyphBitmap:
		if data.Outline == nil {
			return nil, fmt.Errorf("%w: %q has only bitmap data", ErrGlyphNotFound, r)
		}
		segments = data.Outline.Segments
	default:
		return nil, fmt.Errorf("%w: %q has no outline", ErrGlyphNotFound, r)
	}

	res := &Outline{
		UnitsPerEm: float64(g.face.Upem()),
		Advance:    float64(g.face.HorizontalAdvance(gid)),
	}
	for i, seg := range segments {
		var cmd PathCommand
		switch seg.Op {
		case ot.SegmentOpMoveTo:
			if i > 0 {
				res.Commands = append(res.Commands, PathCommand{Op: Close})
			}
			cmd.Op = MoveTo
		case ot.SegmentOpLineTo:
			cmd.Op = LineTo
		case ot.SegmentOpQuadTo:
			cmd.Op = QuadTo
		case ot.SegmentOpCubeTo:
			cmd.Op = CubicTo
		default:
			return nil, fmt.Errorf("load glyph %q: unknown segment op %d", r, seg.Op)
		}
		for j := 0; j < cmd.Op.NumPoints(); j++ {
			p := seg.Args[j]
			cmd.Points[j] = model2d.Coord{X: float64(p.X), Y: float64(p.Y)}
		}
		res.Commands = append(res.Commands, cmd)
	}
	if len(segments) > 0 {
		res.Commands = append(res.Commands, PathCommand{Op: Close})
	}
	return res, nil
}
