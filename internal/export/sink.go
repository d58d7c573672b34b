package export

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/ibal-unist/picdump/internal/fsutil"
	"github.com/ibal-unist/picdump/internal/monitoring"
	"github.com/ibal-unist/picdump/internal/security"
)

// Export kinds recorded with every written file.
const (
	KindField      = "field"
	KindCrossing   = "crossing"
	KindSnapshot   = "snapshot"
	KindPointCloud = "pointcloud"
	KindPreview    = "preview"
)

// File identifies one output file.
type File struct {
	Kind string
	Step int
	Dir  string
	Name string
}

// Entry describes a file after it has been written.
type Entry struct {
	File
	Path    string
	Rows    int
	Summary *Summary
}

// Recorder is notified of every file a Sink writes.
type Recorder interface {
	RecordExport(e Entry) error
}

// Sink writes export files below Root through FS.
type Sink struct {
	FS       fsutil.FileSystem
	Root     string
	Recorder Recorder
}

// NewSink returns a Sink writing to the real filesystem below root.
func NewSink(root string) *Sink {
	if root == "" {
		root = "."
	}
	return &Sink{FS: fsutil.OSFileSystem{}, Root: root}
}

// Path returns the full path of name inside the output directory dir.
func (s *Sink) Path(dir, name string) string {
	return filepath.Join(s.root(), dir, name)
}

// EnsureDir creates the output directory dir if it does not exist.
func (s *Sink) EnsureDir(dir string) error {
	path := filepath.Join(s.root(), dir)
	if err := fsutil.EnsureDir(s.FS, path); err != nil {
		return fmt.Errorf("failed to create output dir %s: %w", path, err)
	}
	return nil
}

// WriteTable creates the file (truncating an existing one), writes the
// header, lets fill write the rows and records the result.
func (s *Sink) WriteTable(f File, delim string, header []string, fill func(*TableWriter) (*Summary, error)) (*Entry, error) {
	var sum *Summary
	var rows int
	e, err := s.write(f, func(w io.Writer) (int, error) {
		tw := NewTableWriter(w, delim, header...)
		var err error
		sum, err = fill(tw)
		if err != nil {
			return 0, err
		}
		rows = tw.Rows()
		return rows, tw.Flush()
	})
	if err != nil {
		return nil, err
	}
	e.Summary = sum
	return e, s.record(e)
}

// WriteFile creates the file and hands it to write, which reports how many
// records it wrote.
func (s *Sink) WriteFile(f File, write func(io.Writer) (int, error)) (*Entry, error) {
	e, err := s.write(f, write)
	if err != nil {
		return nil, err
	}
	return e, s.record(e)
}

func (s *Sink) write(f File, write func(io.Writer) (int, error)) (*Entry, error) {
	if err := s.EnsureDir(f.Dir); err != nil {
		return nil, err
	}
	path := s.Path(f.Dir, f.Name)
	// Symlinks only exist on the real filesystem.
	if _, ok := s.FS.(fsutil.OSFileSystem); ok {
		if err := security.ValidatePathWithinDirectory(path, s.root()); err != nil {
			return nil, fmt.Errorf("refusing to write %s: %w", path, err)
		}
	}
	w, err := s.FS.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	rows, err := write(w)
	if cerr := w.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return &Entry{File: f, Path: path, Rows: rows}, nil
}

func (s *Sink) record(e *Entry) error {
	monitoring.Logf("Exported %d rows to %s", e.Rows, e.Path)
	if e.Summary != nil {
		monitoring.Debugf("%s %s", e.Path, e.Summary)
	}
	if s.Recorder == nil {
		return nil
	}
	if err := s.Recorder.RecordExport(*e); err != nil {
		return fmt.Errorf("failed to record %s: %w", e.Path, err)
	}
	return nil
}

func (s *Sink) root() string {
	if s.Root == "" {
		return "."
	}
	return s.Root
}
