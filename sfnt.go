package textmesh

import (
	"errors"
	"fmt"

	"github.com/unixpickle/model3d/model2d"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// SFNTFont reads outlines with golang.org/x/image/font/sfnt, which
// supports both TrueType (quadratic) and CFF (cubic) outlines.
//
// It implements OutlineProvider and is safe for concurrent use.
type SFNTFont struct {
	font *sfnt.Font
	upem float64
}

// ParseSFNT parses a TrueType or OpenType font file.
func ParseSFNT(data []byte) (*SFNTFont, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, err
	}
	return &SFNTFont{font: f, upem: float64(f.UnitsPerEm())}, nil
}

func (s *SFNTFont) UnitsPerEm() float64 {
	return s.upem
}

// GlyphOutline loads the outline of r in font design units.
func (s *SFNTFont) GlyphOutline(r rune) (*Outline, error) {
	var buf sfnt.Buffer
	idx, err := s.font.GlyphIndex(&buf, r)
	if err != nil {
		return nil, fmt.Errorf("glyph index %q: %w", r, err)
	}
	if idx == 0 {
		return nil, fmt.Errorf("%w: %q", ErrGlyphNotFound, r)
	}

	// Loading at ppem = upem gives coordinates in font units (as 26.6).
	ppem := fixed.Int26_6(s.upem) << 6
	segments, err := s.font.LoadGlyph(&buf, idx, ppem, nil)
	if err != nil {
		if errors.Is(err, sfnt.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrGlyphNotFound, r)
		}
		return nil, fmt.Errorf("load glyph %q: %w", r, err)
	}

	res := &Outline{UnitsPerEm: s.upem}
	for i, seg := range segments {
		var cmd PathCommand
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if i > 0 {
				res.Commands = append(res.Commands, PathCommand{Op: Close})
			}
			cmd.Op = MoveTo
		case sfnt.SegmentOpLineTo:
			cmd.Op = LineTo
		case sfnt.SegmentOpQuadTo:
			cmd.Op = QuadTo
		case sfnt.SegmentOpCubeTo:
			cmd.Op = CubicTo
		default:
			return nil, fmt.Errorf("load glyph %q: unknown segment op %d", r, seg.Op)
		}
		for j := 0; j < cmd.Op.NumPoints(); j++ {
			cmd.Points[j] = sfntCoord(seg.Args[j])
		}
		res.Commands = append(res.Commands, cmd)
	}
	if len(segments) > 0 {
		res.Commands = append(res.Commands, PathCommand{Op: Close})
	}

	// Advance is fetched after the segments are consumed, since
	// LoadGlyph's result is only valid until buf is reused.
	adv, err := s.font.GlyphAdvance(&buf, idx, ppem, xfont.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("glyph advance %q: %w", r, err)
	}
	res.Advance = float64(adv) / 64

	return res, nil
}

// sfntCoord converts a 26.6 point in the y-down sfnt space into font
// units with the y axis up.
func sfntCoord(p fixed.Point26_6) model2d.Coord {
	return model2d.Coord{X: float64(p.X) / 64, Y: -float64(p.Y) / 64}
}
