package textmesh

import (
	"encoding/binary"
	"fmt"

	"github.com/golang/freetype/truetype"
	"github.com/unixpickle/model3d/model2d"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// ParsedFont stores parsed TrueType data and its vertical metrics.
//
// It implements OutlineProvider and is safe for concurrent use.
type ParsedFont struct {
	TTFont *truetype.Font

	upem    float64
	metrics typoMetrics
}

type typoMetrics struct {
	ascender  float64
	descender float64
	lineGap   float64
}

// ParseTTF parses a TTF/OTF(TrueType outlines) font file.
func ParseTTF(ttfBytes []byte) (*ParsedFont, error) {
	ttf, err := truetype.Parse(ttfBytes)
	if err != nil {
		return nil, err
	}
	res := &ParsedFont{
		TTFont: ttf,
		upem:   float64(ttf.FUnitsPerEm()),
	}
	if m, ok := parseOS2TypoMetrics(ttfBytes); ok && m.ascender > 0 {
		res.metrics = m
	} else {
		bounds := ttf.Bounds(fixed.Int26_6(ttf.FUnitsPerEm()))
		res.metrics = typoMetrics{
			ascender:  float64(bounds.Max.Y),
			descender: float64(bounds.Min.Y),
		}
	}
	return res, nil
}

// UnitsPerEm returns the number of design units in one em.
func (p *ParsedFont) UnitsPerEm() float64 {
	return p.upem
}

// Ascender returns the distance from the baseline to the top of the font,
// in ems.
func (p *ParsedFont) Ascender() float64 {
	return p.metrics.ascender / p.upem
}

// Descender returns the signed distance from the baseline to the bottom
// of the font, in ems. It is usually negative.
func (p *ParsedFont) Descender() float64 {
	return p.metrics.descender / p.upem
}

// LineGap returns the extra spacing between lines, in ems.
func (p *ParsedFont) LineGap() float64 {
	return p.metrics.lineGap / p.upem
}

// GlyphOutline loads the unhinted outline of r in font design units.
func (p *ParsedFont) GlyphOutline(r rune) (*Outline, error) {
	idx := p.TTFont.Index(r)
	if idx == 0 {
		return nil, fmt.Errorf("%w: %q", ErrGlyphNotFound, r)
	}

	// With one em mapped to upem pixels, one font unit is 64 in 26.6.
	fixedScale := fixed.Int26_6(int32(p.upem * 64))

	var gb truetype.GlyphBuf
	if err := gb.Load(p.TTFont, fixedScale, idx, xfont.HintingNone); err != nil {
		return nil, fmt.Errorf("load glyph %q: %w", r, err)
	}
	adv := p.TTFont.HMetric(fixedScale, idx).AdvanceWidth

	res := &Outline{
		UnitsPerEm: p.upem,
		Advance:    float64(adv) / 64.0,
	}
	start := 0
	for _, end := range gb.Ends {
		res.Commands = appendTrueTypeContour(res.Commands, gb.Points[start:end])
		start = end
	}
	return res, nil
}

// appendTrueTypeContour converts on-curve/off-curve quadratic points per
// the TrueType rules into path commands, including wrap-around implied
// points and consecutive off-curve points.
func appendTrueTypeContour(cmds []PathCommand, pts []truetype.Point) []PathCommand {
	if len(pts) == 0 {
		return cmds
	}

	toVec := func(p truetype.Point) model2d.Coord {
		return model2d.Coord{X: float64(p.X) / 64.0, Y: float64(p.Y) / 64.0}
	}
	onCurve := func(p truetype.Point) bool { return p.Flags&0x01 != 0 }

	n := len(pts)

	// Choose the TrueType start point.
	var start model2d.Coord
	startIdx := 0
	if onCurve(pts[0]) {
		start = toVec(pts[0])
	} else if onCurve(pts[n-1]) {
		start = toVec(pts[n-1])
		startIdx = n - 1
	} else {
		start = toVec(pts[n-1]).Mid(toVec(pts[0]))
	}

	cmds = append(cmds, PathCommand{Op: MoveTo, Points: [3]model2d.Coord{start}})

	var haveCtrl bool
	var ctrl model2d.Coord
	quadTo := func(c, end model2d.Coord) {
		cmds = append(cmds, PathCommand{Op: QuadTo, Points: [3]model2d.Coord{c, end}})
	}

	i := (startIdx + 1) % n
	for steps := 0; steps < n; steps++ {
		p := pts[i]
		i = (i + 1) % n

		if onCurve(p) {
			on := toVec(p)
			if haveCtrl {
				quadTo(ctrl, on)
				haveCtrl = false
			} else {
				cmds = append(cmds, PathCommand{Op: LineTo, Points: [3]model2d.Coord{on}})
			}
			continue
		}

		c := toVec(p)
		if haveCtrl {
			// Two consecutive off-curve points imply an on-curve midpoint.
			quadTo(ctrl, ctrl.Mid(c))
		}
		ctrl = c
		haveCtrl = true
	}

	if haveCtrl {
		quadTo(ctrl, start)
	}
	return append(cmds, PathCommand{Op: Close})
}

func parseOS2TypoMetrics(data []byte) (typoMetrics, bool) {
	const (
		tableDirOffset    = 12
		recordSize        = 16
		os2Tag            = "OS/2"
		typoAscOffset     = 68
		typoDescOffset    = 70
		typoLineGapOffset = 72
	)
	if len(data) < tableDirOffset {
		return typoMetrics{}, false
	}
	numTables := int(binary.BigEndian.Uint16(data[4:6]))
	if len(data) < tableDirOffset+numTables*recordSize {
		return typoMetrics{}, false
	}
	for i := 0; i < numTables; i++ {
		recOff := tableDirOffset + i*recordSize
		if string(data[recOff:recOff+4]) != os2Tag {
			continue
		}
		tableOffset := int(binary.BigEndian.Uint32(data[recOff+8 : recOff+12]))
		tableLen := int(binary.BigEndian.Uint32(data[recOff+12 : recOff+16]))
		if tableOffset < 0 || tableLen < 0 || tableOffset+tableLen > len(data) ||
			tableLen < typoLineGapOffset+2 {
			return typoMetrics{}, false
		}
		field := func(off int) float64 {
			off += tableOffset
			return float64(int16(binary.BigEndian.Uint16(data[off : off+2])))
		}
		return typoMetrics{
			ascender:  field(typoAscOffset),
			descender: field(typoDescOffset),
			lineGap:   field(typoLineGapOffset),
		}, true
	}
	return typoMetrics{}, false
}
