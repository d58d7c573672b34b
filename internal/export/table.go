package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TableWriter writes a header line and then one delimited row per sample.
// Rows are separated by '\n' and the file does not end with a newline.
// The first write error sticks and is returned by Flush.
type TableWriter struct {
	w     *bufio.Writer
	delim string
	cols  int
	rows  int
	err   error
}

// NewTableWriter writes the header immediately.
func NewTableWriter(w io.Writer, delim string, header ...string) *TableWriter {
	t := &TableWriter{w: bufio.NewWriter(w), delim: delim, cols: len(header)}
	_, t.err = t.w.WriteString(strings.Join(header, delim))
	return t
}

// Row appends one row. A row whose width differs from the header is not
// written and becomes the sticky error.
func (t *TableWriter) Row(fields ...string) {
	if t.err != nil {
		return
	}
	if len(fields) != t.Columns() {
		t.err = fmt.Errorf("row %d has %d fields, header has %d", t.rows+1, len(fields), t.Columns())
		return
	}
	if err := t.w.WriteByte('\n'); err != nil {
		t.err = err
		return
	}
	for i, f := range fields {
		if i > 0 {
			if _, err := t.w.WriteString(t.delim); err != nil {
				t.err = err
				return
			}
		}
		if _, err := t.w.WriteString(f); err != nil {
			t.err = err
			return
		}
	}
	t.rows++
}

// Rows returns the number of rows written so far.
func (t *TableWriter) Rows() int {
	return t.rows
}

// Columns returns the header width.
func (t *TableWriter) Columns() int {
	return t.cols
}

// Flush writes buffered data and returns the first error seen.
func (t *TableWriter) Flush() error {
	if t.err != nil {
		return t.err
	}
	return t.w.Flush()
}
