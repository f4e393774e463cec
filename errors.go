package textmesh

import "errors"

var (
	// ErrGlyphNotFound is returned when a font has no outline for a rune.
	ErrGlyphNotFound = errors.New("glyph not found")

	// ErrInvalidQuality is returned for a subdivision count below one.
	ErrInvalidQuality = errors.New("invalid quality: subdivisions must be > 0")

	// ErrTriangulationFailed is returned when a set of polylines cannot be
	// split into valid triangles, typically because the outline intersects
	// itself.
	ErrTriangulationFailed = errors.New("triangulation failed")

	// ErrExtrusionFailed is returned for a NaN or infinite depth.
	ErrExtrusionFailed = errors.New("extrusion failed")
)
