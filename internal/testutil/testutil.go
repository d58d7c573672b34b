// Package testutil provides shared test utilities and fixtures.
package testutil

import (
	"strings"
	"testing"

	"github.com/ibal-unist/picdump/internal/export"
	"github.com/ibal-unist/picdump/internal/fsutil"
	"github.com/ibal-unist/picdump/internal/host"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// NewMemorySink returns a Sink writing to a fresh in-memory filesystem.
func NewMemorySink() (*export.Sink, *fsutil.MemoryFileSystem) {
	mfs := fsutil.NewMemoryFileSystem()
	return &export.Sink{FS: mfs, Root: "."}, mfs
}

// ReadLines reads path from fsys and splits it on '\n'.
func ReadLines(t testing.TB, fsys fsutil.FileSystem, path string) []string {
	t.Helper()
	data, err := fsys.ReadFile(path)
	AssertNoError(t, err)
	return strings.Split(string(data), "\n")
}

// Cube returns a grid with the same axis in every dimension.
func Cube(cells int, delta, min float64) host.Grid {
	a := host.Axis{Cells: cells, Delta: delta, Min: min}
	return host.Grid{X: a, Y: a, Z: a}
}
