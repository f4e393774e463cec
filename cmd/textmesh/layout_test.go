package main

import (
	"bytes"
	"log"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/unixpickle/model3d/model2d"
	"github.com/unixpickle/textmesh"
	"golang.org/x/image/font/gofont/goregular"
)

func testLayout(t *testing.T, cfg *Config) *Layout {
	t.Helper()
	p, err := openProvider(cfg)
	if err != nil {
		t.Fatal(err)
	}
	layout, err := LayoutText(p, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return layout
}

func TestComputeAlign(t *testing.T) {
	min, max := model2d.XY(1, -2), model2d.XY(5, 8)
	tests := []struct {
		h      HAlign
		v      VAlign
		dx, dy float64
	}{
		{HAlignLeft, VAlignBaseline, 0, 0},
		{HAlignCenter, VAlignCenter, -3, -3},
		{HAlignRight, VAlignTop, -6, -8},
		{HAlignLeft, VAlignBottom, 0, 2},
	}
	for _, test := range tests {
		dx, dy := computeAlign(test.h, test.v, min, max, 6)
		if dx != test.dx || dy != test.dy {
			t.Errorf("align %d/%d: expected (%f, %f) but got (%f, %f)", test.h, test.v,
				test.dx, test.dy, dx, dy)
		}
	}
}

func TestLayoutText(t *testing.T) {
	cfg := Default()
	cfg.Text = "Hi!"
	cfg.Out = "out.stl"

	layout := testLayout(t, cfg)
	if layout.Solid == nil || layout.Flat != nil {
		t.Fatal("expected a solid mesh")
	}
	if layout.Solid.IsEmpty() || len(layout.Polylines) < 3 {
		t.Fatalf("unexpected layout: %d polylines", len(layout.Polylines))
	}
	if layout.Advance <= 0 {
		t.Errorf("unexpected advance: %f", layout.Advance)
	}

	font, err := textmesh.ParseTTF(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}

	// The tallest glyph part should be close to the ascent.
	var maxY, maxZ float64
	for _, v := range layout.Solid.Vertices {
		maxY = math.Max(maxY, v.Y)
		maxZ = math.Max(maxZ, v.Z)
		if v.X < -1e-8 {
			t.Fatalf("left-aligned vertex at x=%f", v.X)
		}
	}
	if maxY > cfg.Size*1.2 || maxY < cfg.Size*0.5 {
		t.Errorf("height %f does not match size %f (ascender %f)", maxY, cfg.Size, font.Ascender())
	}
	if maxZ != cfg.Depth {
		t.Errorf("expected depth %f but got %f", cfg.Depth, maxZ)
	}
}

func TestLayoutTextAlignment(t *testing.T) {
	for _, provider := range []string{"truetype", "sfnt", "gotext"} {
		cfg := Default()
		cfg.Text = "gH"
		cfg.Out = "out.png"
		cfg.Provider = provider
		cfg.HAlign = "right"
		cfg.VAlign = "bottom"
		cfg.Flat = true

		layout := testLayout(t, cfg)
		if layout.Flat == nil || layout.Flat.IsEmpty() {
			t.Fatalf("%s: expected a flat mesh", provider)
		}
		min, max := polylineBounds(layout.Polylines)
		if math.Abs(min.Y) > 1e-8 {
			t.Errorf("%s: bottom at %f", provider, min.Y)
		}
		if max.X > 1e-8 || min.X < -layout.Advance-1e-8 {
			t.Errorf("%s: x range %f to %f for advance %f", provider, min.X, max.X, layout.Advance)
		}
		for _, v := range layout.Flat.Vertices {
			if v.Y < -1e-8 || v.X > 1e-8 {
				t.Fatalf("%s: vertex %v outside of bounds", provider, v)
			}
		}
	}
}

func TestLayoutTextSpacing(t *testing.T) {
	cfg := Default()
	cfg.Text = "ll"
	cfg.Out = "out.stl"
	narrow := testLayout(t, cfg)

	cfg.Spacing = 2
	wide := testLayout(t, cfg)
	if math.Abs(wide.Advance-2*narrow.Advance) > 1e-8 {
		t.Errorf("expected advance %f but got %f", 2*narrow.Advance, wide.Advance)
	}
}

func TestLayoutTextMissingGlyph(t *testing.T) {
	cfg := Default()
	cfg.Text = "a\U0010FFFDb"
	cfg.Out = "out.stl"

	var logged bytes.Buffer
	log.SetOutput(&logged)
	defer log.SetOutput(os.Stderr)
	withMissing := testLayout(t, cfg)
	if !strings.Contains(logged.String(), "skipping") {
		t.Errorf("missing glyph was not reported, log: %q", logged.String())
	}

	cfg.Text = "ab"
	without := testLayout(t, cfg)
	if withMissing.Solid.TriangleCount() != without.Solid.TriangleCount() {
		t.Error("missing glyph should be skipped")
	}
}
