// Package pointcloud writes particle positions as point clouds for 3D
// viewers: VTK XML UnstructuredGrid files for ParaView and CloudCompare ASC
// files.
package pointcloud

import (
	"fmt"
	"io"
	"strings"

	"github.com/ibal-unist/picdump/internal/host"
)

// Format selects the point-cloud file format.
type Format string

const (
	VTU Format = "vtu"
	ASC Format = "asc"
)

// ParseFormat accepts "vtu" and "asc". Empty means VTU.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return VTU, nil
	case VTU, ASC:
		return f, nil
	}
	return "", fmt.Errorf("point-cloud format must be vtu or asc, got %q", s)
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Point is a cartesian point with an integer tag. The tag becomes the
// "particle" point scalar in VTU files and the intensity column in ASC files.
type Point struct {
	X, Y, Z float64
	Tag     int
}

// FromParticles builds one point per particle, all tagged with tag.
func FromParticles(p host.Particles, tag int) []Point {
	pts := make([]Point, p.Len())
	for i := range pts {
		pts[i] = Point{X: p.X[i], Y: p.Y[i], Z: p.Z[i], Tag: tag}
	}
	return pts
}

// Write encodes points in format f and returns the number of points written.
func Write(w io.Writer, f Format, points []Point) (int, error) {
	switch f {
	case VTU, "":
		return WriteVTU(w, points)
	case ASC:
		return WriteASC(w, points)
	}
	return 0, fmt.Errorf("unknown point-cloud format %q", f)
}
