package textmesh

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/unixpickle/model3d/model2d"
	"github.com/unixpickle/model3d/model3d"
	"golang.org/x/image/font/gofont/goregular"
)

func testProviders(t testing.TB) map[string]OutlineProvider {
	tt, err := ParseTTF(goregular.TTF)
	if err != nil {
		t.Fatalf("parse truetype: %v", err)
	}
	sf, err := ParseSFNT(goregular.TTF)
	if err != nil {
		t.Fatalf("parse sfnt: %v", err)
	}
	gt, err := ParseGoText(goregular.TTF)
	if err != nil {
		t.Fatalf("parse gotext: %v", err)
	}
	return map[string]OutlineProvider{
		"truetype": tt,
		"sfnt":     sf,
		"gotext":   gt,
	}
}

type countingProvider struct {
	OutlineProvider
	calls int
}

func (c *countingProvider) GlyphOutline(r rune) (*Outline, error) {
	c.calls++
	return c.OutlineProvider.GlyphOutline(r)
}

func TestGlyphO(t *testing.T) {
	for name, p := range testProviders(t) {
		t.Run(name, func(t *testing.T) {
			o, err := p.GlyphOutline('O')
			if err != nil {
				t.Fatal(err)
			}
			polys, err := OutlinePolylines(o, 4)
			if err != nil {
				t.Fatal(err)
			}
			if len(polys) != 2 {
				t.Fatalf("expected 2 contours but got %d", len(polys))
			}
			roles := Classify(polys)
			if !(roles[0] == RoleOuter && roles[1] == RoleHole) && !(roles[0] == RoleHole && roles[1] == RoleOuter) {
				t.Fatalf("unexpected roles: %v", roles)
			}
			outerArea := math.Max(math.Abs(polys[0].SignedArea()), math.Abs(polys[1].SignedArea()))

			flat, err := OutlineMesh2D(o, 4)
			if err != nil {
				t.Fatal(err)
			}
			checkMesh2D(t, flat)
			if area := flat.Area(); area <= 0 || area >= outerArea {
				t.Errorf("area %f not in (0, %f)", area, outerArea)
			}

			solid, err := OutlineMesh3D(o, 4, 5)
			if err != nil {
				t.Fatal(err)
			}
			if solid.FrontCap.Len() == 0 || solid.FrontCap.Len() != solid.BackCap.Len() {
				t.Errorf("unexpected cap sizes: %d/%d", solid.FrontCap.Len(), solid.BackCap.Len())
			}
			if solid.Walls.Len() != 2*countEdges(polys) {
				t.Errorf("expected %d wall triangles but got %d", 2*countEdges(polys), solid.Walls.Len())
			}

			// Both contours contribute walls.
			var minR, maxR float64 = math.Inf(1), 0
			min, max := polys[0].Bounds()
			center := min.Mid(max)
			for i := solid.Walls.Start; i < solid.Walls.End; i++ {
				v := solid.Vertices[solid.Triangle(i)[0]]
				r := model2d.XY(v.X, v.Y).Dist(center)
				minR = math.Min(minR, r)
				maxR = math.Max(maxR, r)
			}
			if maxR-minR < 0.05 {
				t.Errorf("walls only span radii %f to %f", minR, maxR)
			}
		})
	}
}

func TestGlyphI(t *testing.T) {
	for name, p := range testProviders(t) {
		t.Run(name, func(t *testing.T) {
			m, err := CharMesh2D(p, 'I', 1)
			if err != nil {
				t.Fatal(err)
			}
			checkMesh2D(t, m)
			if m.VertexCount() < 3 || m.TriangleCount() != m.VertexCount()-2 {
				t.Errorf("%d vertices gave %d triangles", m.VertexCount(), m.TriangleCount())
			}
		})
	}
}

func TestGlyphCoverage(t *testing.T) {
	p := testProviders(t)["truetype"]
	rng := rand.New(rand.NewSource(1))
	for _, r := range "aB8%@&g" {
		g, err := NewGlyph(p, r)
		if err != nil {
			t.Fatal(err)
		}
		polys, err := g.Polylines(QualityNormal)
		if err != nil {
			t.Fatal(err)
		}
		m, err := g.Mesh2D(QualityNormal)
		if err != nil {
			t.Fatalf("%q: %v", r, err)
		}
		checkMesh2D(t, m)

		solid := PolylinesMesh(polys).Solid()
		min, max := solid.Min(), solid.Max()
		var mismatches int
		const samples = 3000
		for i := 0; i < samples; i++ {
			c := model2d.XY(
				min.X+rng.Float64()*(max.X-min.X),
				min.Y+rng.Float64()*(max.Y-min.Y),
			)
			if solid.Contains(c) != m.Contains(c) {
				mismatches++
			}
		}
		if mismatches > samples/100 {
			t.Errorf("%q: %d of %d samples disagree", r, mismatches, samples)
		}
	}
}

func TestGlyphSolidSTL(t *testing.T) {
	p := testProviders(t)["sfnt"]
	const depth = 0.3
	g, err := NewGlyph(p, 'e')
	if err != nil {
		t.Fatal(err)
	}
	m, err := g.Mesh3D(QualityNormal, depth)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := model3d.WriteSTL(&buf, m.Triangles()); err != nil {
		t.Fatal(err)
	}
	tris, err := model3d.ReadSTL(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(tris) != m.TriangleCount() {
		t.Fatalf("expected %d triangles but read %d", m.TriangleCount(), len(tris))
	}
	solid3d := model3d.NewMeshTriangles(tris).Solid()

	polys, err := g.Polylines(QualityNormal)
	if err != nil {
		t.Fatal(err)
	}
	solid2d := PolylinesMesh(polys).Solid()

	rng := rand.New(rand.NewSource(2))
	min, max := solid2d.Min(), solid2d.Max()
	var match int
	const samples = 2000
	for i := 0; i < samples; i++ {
		x := min.X + rng.Float64()*(max.X-min.X)
		y := min.Y + rng.Float64()*(max.Y-min.Y)
		if solid2d.Contains(model2d.XY(x, y)) == solid3d.Contains(model3d.XYZ(x, y, depth/2)) {
			match++
		}
	}
	if corr := float64(match) / samples; corr < 0.97 {
		t.Errorf("correlation %.4f too low", corr)
	}
}

func TestGlyphDeterministic(t *testing.T) {
	for name, p := range testProviders(t) {
		t.Run(name, func(t *testing.T) {
			m1, err := CharMesh3D(p, 'g', QualityLow, 2)
			if err != nil {
				t.Fatal(err)
			}
			m2, err := CharMesh3D(p, 'g', QualityLow, 2)
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(m1.Vertices, m2.Vertices) || !slices.Equal(m1.Normals, m2.Normals) ||
				!slices.Equal(m1.Indices, m2.Indices) {
				t.Error("results differ between calls")
			}
		})
	}
}

func TestGlyphSpace(t *testing.T) {
	for name, p := range testProviders(t) {
		t.Run(name, func(t *testing.T) {
			g, err := NewGlyph(p, ' ')
			if err != nil {
				t.Fatal(err)
			}
			if g.Advance() <= 0 {
				t.Errorf("unexpected advance: %f", g.Advance())
			}
			if _, _, ok := g.Bounds(); ok {
				t.Error("space should have no bounds")
			}
			m2, err := g.Mesh2D(QualityNormal)
			if err != nil {
				t.Fatal(err)
			}
			m3, err := g.Mesh3D(QualityNormal, 1)
			if err != nil {
				t.Fatal(err)
			}
			if !m2.IsEmpty() || m2.VertexCount() != 0 || !m3.IsEmpty() || m3.VertexCount() != 0 {
				t.Error("expected empty meshes")
			}
		})
	}
}

func TestGlyphNotFound(t *testing.T) {
	for name, p := range testProviders(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := NewGlyph(p, '\U0010FFFD'); !errors.Is(err, ErrGlyphNotFound) {
				t.Errorf("unexpected error: %v", err)
			}
			if _, err := CharMesh3D(p, '\U0010FFFD', QualityLow, 1); !errors.Is(err, ErrGlyphNotFound) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCharMeshInvalidQuality(t *testing.T) {
	p := &countingProvider{OutlineProvider: testProviders(t)["truetype"]}
	if _, err := CharMesh2D(p, 'O', 0); !errors.Is(err, ErrInvalidQuality) {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := CharMesh3D(p, 'O', -1, 1); !errors.Is(err, ErrInvalidQuality) {
		t.Errorf("unexpected error: %v", err)
	}
	if p.calls != 0 {
		t.Errorf("provider was called %d times", p.calls)
	}
	if _, err := CharMesh3D(p, 'O', QualityLow, math.NaN()); !errors.Is(err, ErrExtrusionFailed) {
		t.Errorf("unexpected error: %v", err)
	}
	for _, q := range []Quality{QualityLow, QualityNormal, QualityHigh} {
		if err := q.Validate(); err != nil {
			t.Errorf("quality %d: %v", q, err)
		}
	}
}

func TestProvidersAgree(t *testing.T) {
	providers := testProviders(t)
	for _, r := range "aQ%" {
		var areas, advances []float64
		for _, name := range []string{"truetype", "sfnt", "gotext"} {
			g, err := NewGlyph(providers[name], r)
			if err != nil {
				t.Fatal(err)
			}
			m, err := g.Mesh2D(QualityLow)
			if err != nil {
				t.Fatalf("%s %q: %v", name, r, err)
			}
			areas = append(areas, m.Area())
			advances = append(advances, g.Advance())
		}
		for i := 1; i < len(areas); i++ {
			if math.Abs(areas[i]-areas[0]) > 1e-6*areas[0] {
				t.Errorf("%q: areas differ: %v", r, areas)
			}
			if math.Abs(advances[i]-advances[0]) > 1e-9 {
				t.Errorf("%q: advances differ: %v", r, advances)
			}
		}
	}
}

func TestParsedFontMetrics(t *testing.T) {
	f, err := ParseTTF(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	if f.UnitsPerEm() <= 0 {
		t.Fatalf("unexpected units per em: %f", f.UnitsPerEm())
	}
	if a := f.Ascender(); a <= 0.5 || a > 1.5 {
		t.Errorf("unexpected ascender: %f", a)
	}
	if d := f.Descender(); d >= 0 || d < -1 {
		t.Errorf("unexpected descender: %f", d)
	}
	if g := f.LineGap(); g < 0 {
		t.Errorf("unexpected line gap: %f", g)
	}

	g, err := NewGlyph(f, 'H')
	if err != nil {
		t.Fatal(err)
	}
	min, max, ok := g.Bounds()
	if !ok || min.Y < -0.01 || max.Y > f.Ascender()+0.01 {
		t.Errorf("unexpected bounds: %v %v", min, max)
	}
	if g.Rune() != 'H' || g.Outline().UnitsPerEm != 1 {
		t.Error("unexpected glyph fields")
	}
}

func TestParseInvalidFont(t *testing.T) {
	data := []byte("not a font")
	if _, err := ParseTTF(data); err == nil {
		t.Error("expected truetype error")
	}
	if _, err := ParseSFNT(data); err == nil {
		t.Error("expected sfnt error")
	}
	if _, err := ParseGoText(data); err == nil {
		t.Error("expected gotext error")
	}
}

func BenchmarkCharMesh3D(b *testing.B) {
	providers := testProviders(b)
	for _, name := range []string{"truetype", "sfnt", "gotext"} {
		p := providers[name]
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := CharMesh3D(p, '@', QualityNormal, 1); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
