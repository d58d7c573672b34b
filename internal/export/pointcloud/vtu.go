package pointcloud

import (
	"bufio"
	"io"
	"strconv"
)

// VTK cell type of a single point.
const vtkVertex = 1

// WriteVTU writes an ASCII VTK XML UnstructuredGrid with one vertex cell per
// point and an Int32 point scalar named "particle" holding each point's tag.
func WriteVTU(w io.Writer, points []Point) (int, error) {
	bw := bufio.NewWriter(w)
	n := strconv.Itoa(len(points))

	bw.WriteString("<?xml version=\"1.0\"?>\n")
	bw.WriteString("<VTKFile type=\"UnstructuredGrid\" version=\"1.0\" byte_order=\"LittleEndian\" header_type=\"UInt64\">\n")
	bw.WriteString("  <UnstructuredGrid>\n")
	bw.WriteString("    <Piece NumberOfPoints=\"" + n + "\" NumberOfCells=\"" + n + "\">\n")

	bw.WriteString("      <PointData Scalars=\"particle\">\n")
	bw.WriteString("        <DataArray type=\"Int32\" Name=\"particle\" format=\"ascii\">\n")
	writeInts(bw, len(points), func(i int) int { return points[i].Tag })
	bw.WriteString("        </DataArray>\n")
	bw.WriteString("      </PointData>\n")

	bw.WriteString("      <Points>\n")
	bw.WriteString("        <DataArray type=\"Float64\" NumberOfComponents=\"3\" format=\"ascii\">\n")
	var buf []byte
	for _, p := range points {
		buf = buf[:0]
		buf = append(buf, "          "...)
		buf = strconv.AppendFloat(buf, p.X, 'g', -1, 64)
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, p.Y, 'g', -1, 64)
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, p.Z, 'g', -1, 64)
		buf = append(buf, '\n')
		bw.Write(buf)
	}
	bw.WriteString("        </DataArray>\n")
	bw.WriteString("      </Points>\n")

	bw.WriteString("      <Cells>\n")
	bw.WriteString("        <DataArray type=\"Int64\" Name=\"connectivity\" format=\"ascii\">\n")
	writeInts(bw, len(points), func(i int) int { return i })
	bw.WriteString("        </DataArray>\n")
	bw.WriteString("        <DataArray type=\"Int64\" Name=\"offsets\" format=\"ascii\">\n")
	writeInts(bw, len(points), func(i int) int { return i + 1 })
	bw.WriteString("        </DataArray>\n")
	bw.WriteString("        <DataArray type=\"UInt8\" Name=\"types\" format=\"ascii\">\n")
	writeInts(bw, len(points), func(int) int { return vtkVertex })
	bw.WriteString("        </DataArray>\n")
	bw.WriteString("      </Cells>\n")

	bw.WriteString("    </Piece>\n")
	bw.WriteString("  </UnstructuredGrid>\n")
	bw.WriteString("</VTKFile>\n")

	// Flush reports the first write error.
	if err := bw.Flush(); err != nil {
		return 0, err
	}
	return len(points), nil
}

// writeInts writes n values, twelve per line.
func writeInts(bw *bufio.Writer, n int, value func(i int) int) {
	const perLine = 12
	var buf []byte
	for i := 0; i < n; i++ {
		if i%perLine == 0 {
			buf = append(buf, "          "...)
		} else {
			buf = append(buf, ' ')
		}
		buf = strconv.AppendInt(buf, int64(value(i)), 10)
		if i%perLine == perLine-1 || i == n-1 {
			buf = append(buf, '\n')
			bw.Write(buf)
			buf = buf[:0]
		}
	}
}
