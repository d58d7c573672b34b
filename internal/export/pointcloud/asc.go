package pointcloud

import (
	"bufio"
	"fmt"
	"io"
)

// WriteASC writes a CloudCompare-compatible .asc file. The intensity column
// carries the point tag.
func WriteASC(w io.Writer, points []Point) (int, error) {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# Exported points\n")
	fmt.Fprintf(bw, "# Format: X Y Z Intensity\n")
	for _, p := range points {
		fmt.Fprintf(bw, "%.6f %.6f %.6f %d\n", p.X, p.Y, p.Z, p.Tag)
	}
	if err := bw.Flush(); err != nil {
		return 0, err
	}
	return len(points), nil
}
