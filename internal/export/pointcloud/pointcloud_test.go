package pointcloud

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibal-unist/picdump/internal/host"
)

type vtkArray struct {
	Name       string `xml:"Name,attr"`
	Type       string `xml:"type,attr"`
	Components string `xml:"NumberOfComponents,attr"`
	Body       string `xml:",chardata"`
}

type vtkFile struct {
	XMLName xml.Name `xml:"VTKFile"`
	Type    string   `xml:"type,attr"`
	Piece   struct {
		Points    int        `xml:"NumberOfPoints,attr"`
		Cells     int        `xml:"NumberOfCells,attr"`
		PointData []vtkArray `xml:"PointData>DataArray"`
		Coords    []vtkArray `xml:"Points>DataArray"`
		CellData  []vtkArray `xml:"Cells>DataArray"`
	} `xml:"UnstructuredGrid>Piece"`
}

func ints(t *testing.T, s string) []int {
	t.Helper()
	var out []int
	for _, f := range strings.Fields(s) {
		v, err := strconv.Atoi(f)
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}

func floats(t *testing.T, s string) []float64 {
	t.Helper()
	var out []float64
	for _, f := range strings.Fields(s) {
		v, err := strconv.ParseFloat(f, 64)
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}

func TestWriteVTU(t *testing.T) {
	points := make([]Point, 14)
	for i := range points {
		points[i] = Point{X: float64(i) * 0.001, Y: -float64(i), Z: 1e-7 * float64(i), Tag: 1}
	}

	var buf bytes.Buffer
	n, err := WriteVTU(&buf, points)
	require.NoError(t, err)
	assert.Equal(t, 14, n)

	var doc vtkFile
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "UnstructuredGrid", doc.Type)
	assert.Equal(t, 14, doc.Piece.Points)
	assert.Equal(t, 14, doc.Piece.Cells)

	require.Len(t, doc.Piece.PointData, 1)
	assert.Equal(t, "particle", doc.Piece.PointData[0].Name)
	for _, v := range ints(t, doc.Piece.PointData[0].Body) {
		assert.Equal(t, 1, v)
	}

	require.Len(t, doc.Piece.Coords, 1)
	assert.Equal(t, "3", doc.Piece.Coords[0].Components)
	coords := floats(t, doc.Piece.Coords[0].Body)
	require.Len(t, coords, 3*14)
	for i, p := range points {
		assert.Equal(t, []float64{p.X, p.Y, p.Z}, coords[3*i:3*i+3], "point %d", i)
	}

	cells := map[string][]int{}
	for _, a := range doc.Piece.CellData {
		cells[a.Name] = ints(t, a.Body)
	}
	conn, offs, types := cells["connectivity"], cells["offsets"], cells["types"]
	require.Len(t, conn, 14)
	require.Len(t, offs, 14)
	require.Len(t, types, 14)
	for i := range points {
		assert.Equal(t, i, conn[i])
		assert.Equal(t, i+1, offs[i])
		assert.Equal(t, vtkVertex, types[i])
	}
}

func TestWriteVTU_Empty(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteVTU(&buf, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	var doc vtkFile
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
	assert.Zero(t, doc.Piece.Points)
}

func TestWriteASC(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteASC(&buf, []Point{
		{X: 1, Y: 2, Z: 3, Tag: 1},
		{X: -0.5, Y: 0.25, Z: 1e-7, Tag: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	want := "# Exported points\n" +
		"# Format: X Y Z Intensity\n" +
		"1.000000 2.000000 3.000000 1\n" +
		"-0.500000 0.250000 0.000000 1\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("ASC mismatch (-want +got):\n%s", diff)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWrite_PropagatesWriterErrors(t *testing.T) {
	pts := []Point{{X: 1}}
	for _, f := range []Format{VTU, ASC} {
		_, err := Write(failingWriter{}, f, pts)
		assert.EqualError(t, err, "disk full", string(f))
	}
	_, err := Write(&bytes.Buffer{}, Format("ply"), pts)
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", VTU, false},
		{"vtu", VTU, false},
		{" ASC ", ASC, false},
		{"vtk", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
	assert.Equal(t, ".vtu", VTU.Ext())
}

func TestFromParticles(t *testing.T) {
	p := host.Particles{
		X: []float64{1, 2}, Y: []float64{3, 4}, Z: []float64{5, 6},
		VX: []float64{0, 0}, VY: []float64{0, 0}, VZ: []float64{0, 0},
	}
	want := []Point{{X: 1, Y: 3, Z: 5, Tag: 1}, {X: 2, Y: 4, Z: 6, Tag: 1}}
	if diff := cmp.Diff(want, FromParticles(p, 1)); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
}
