package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/unixpickle/model3d/model2d"
	"github.com/unixpickle/model3d/model3d"
	"github.com/unixpickle/textmesh"
)

// WriteOutput encodes the layout according to the extension of path.
//
// Images are rasterized from the polylines with scale pixels per unit.
// Meshes are written as binary STL or as OBJ with per-vertex normals.
func WriteOutput(path string, layout *Layout, scale float64) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		mesh := textmesh.PolylinesMesh(layout.Polylines)
		if mesh.NumSegments() == 0 {
			return errors.New("nothing to rasterize")
		}
		return model2d.Rasterize(path, mesh.Solid(), scale)
	case ".stl":
		return writeFile(path, func(w io.Writer) error {
			return model3d.WriteSTL(w, layoutMesh3D(layout).Triangles())
		})
	case ".obj":
		return writeFile(path, func(w io.Writer) error {
			return WriteOBJ(w, layoutMesh3D(layout))
		})
	default:
		return fmt.Errorf("unsupported output extension: %q", filepath.Ext(path))
	}
}

func writeFile(path string, f func(w io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(file)
	if err := f(w); err != nil {
		file.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// layoutMesh3D returns the solid mesh, or the flat mesh lifted to z=0
// with upward normals.
func layoutMesh3D(layout *Layout) *textmesh.Mesh3D {
	if layout.Solid != nil {
		return layout.Solid
	}
	flat := layout.Flat
	res := textmesh.NewMesh3D()
	res.Reserve(flat.VertexCount(), flat.TriangleCount())
	up := model3d.XYZ(0, 0, 1)
	for _, v := range flat.Vertices {
		res.PushVertex(model3d.XYZ(v.X, v.Y, 0), up)
	}
	for i := 0; i < flat.TriangleCount(); i++ {
		t := flat.Triangle(i)
		res.PushTriangle(t[0], t[1], t[2])
	}
	res.FrontCap = textmesh.TriangleRange{Start: 0, End: res.TriangleCount()}
	return res
}

// WriteOBJ encodes a mesh as a Wavefront OBJ file with one normal per
// vertex.
func WriteOBJ(w io.Writer, m *textmesh.Mesh3D) error {
	for _, v := range m.Vertices {
		if _, err := fmt.Fprintf(w, "v %g %g %g\n", v.X, v.Y, v.Z); err != nil {
			return err
		}
	}
	for _, n := range m.Normals {
		if _, err := fmt.Fprintf(w, "vn %g %g %g\n", n.X, n.Y, n.Z); err != nil {
			return err
		}
	}
	for i := 0; i < m.TriangleCount(); i++ {
		t := m.Triangle(i)
		// OBJ indices are 1-based.
		a, b, c := t[0]+1, t[1]+1, t[2]+1
		if _, err := fmt.Fprintf(w, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c); err != nil {
			return err
		}
	}
	return nil
}
