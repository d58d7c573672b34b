// Package field exports the electrostatic potential along a grid line, on a
// grid plane or over the whole grid at chosen time-steps.
package field

import (
	"fmt"

	"github.com/ibal-unist/picdump/internal/export"
	"github.com/ibal-unist/picdump/internal/host"
	"github.com/ibal-unist/picdump/internal/monitoring"
)

// Default output locations, one directory per dimensionality.
const (
	DefaultDir1D  = "E_potential_1d_data"
	DefaultDir2D  = "E_potential_2d_data"
	DefaultDir3D  = "E_potential_3d_data"
	DefaultPrefix = "E_potential_data"
)

var axisNames = [3]string{"x", "y", "z"}

// Host is what the field exporter reads from.
type Host interface {
	host.Sim
	host.Field
}

// Options configures one field export.
type Options struct {
	Selector Selector
	// Steps lists the target steps. Step 0 never fires.
	Steps  export.Steps
	Output export.Output
	// Fixed holds the grid indices (ix, iy, iz) of the dimensions the
	// selector does not sweep.
	Fixed [3]int
	// Plot also renders a PNG profile. Single-axis selectors only.
	Plot bool
	// Sink defaults to the real filesystem below the working directory.
	Sink *export.Sink
}

// Exporter is a registered field export.
type Exporter struct {
	h     Host
	opts  Options
	dims  []int
	sink  *export.Sink
	fired int
}

// Register validates opts and installs the after-step hook. Nothing is
// registered when validation fails.
func Register(h Host, opts Options) (*Exporter, error) {
	if h == nil {
		return nil, export.Invalidf("host is nil")
	}
	if opts.Selector == None {
		return nil, export.Invalidf("selector is not defined for data")
	}
	dims := opts.Selector.Dims()
	if dims == nil {
		return nil, export.Invalidf("unknown selector %v", opts.Selector)
	}
	if err := opts.Steps.Validate(); err != nil {
		return nil, err
	}
	opts.Output = opts.Output.WithDefaults(export.Output{Dir: defaultDir(len(dims)), Prefix: DefaultPrefix})
	if err := opts.Output.Validate(); err != nil {
		return nil, err
	}
	if opts.Plot && len(dims) != 1 {
		return nil, export.Invalidf("profile plots need a single-axis selector, got %v", opts.Selector)
	}

	grid := h.Grid()
	swept := [3]bool{}
	for _, d := range dims {
		swept[d] = true
	}
	for d := 0; d < 3; d++ {
		if swept[d] {
			continue
		}
		if a := grid.Axis(d); opts.Fixed[d] < 0 || opts.Fixed[d] > a.Cells {
			return nil, export.Invalidf("fixed %s index %d outside 0..%d", axisNames[d], opts.Fixed[d], a.Cells)
		}
	}

	sink := opts.Sink
	if sink == nil {
		sink = export.NewSink(".")
	}
	e := &Exporter{h: h, opts: opts, dims: dims, sink: sink}
	h.AfterStep(e.afterStep)
	monitoring.Debugf("field export %v armed for steps %v in %s", opts.Selector, []int(opts.Steps), opts.Output.Dir)
	return e, nil
}

// Fired returns how many files the exporter has written.
func (e *Exporter) Fired() int {
	return e.fired
}

func (e *Exporter) afterStep() error {
	step := e.h.Step()
	for n := e.opts.Steps.Matches(step); n > 0; n-- {
		if err := e.Export(step); err != nil {
			return err
		}
	}
	return nil
}

// Export samples the potential now and writes the file for step.
func (e *Exporter) Export(step int) error {
	grid := e.h.Grid()
	out := e.opts.Output

	header := make([]string, 0, len(e.dims)+1)
	for _, d := range e.dims {
		header = append(header, axisNames[d]+"(m)")
	}
	header = append(header, "phi(V)")

	var coords, phis []float64
	f := export.File{Kind: export.KindField, Step: step, Dir: out.Dir, Name: export.StepFileName(out.Prefix, step, ".txt")}
	_, err := e.sink.WriteTable(f, out.Delimiter, header, func(tw *export.TableWriter) (*export.Summary, error) {
		idx := e.opts.Fixed
		row := make([]string, len(e.dims)+1)

		var sweep func(level int) error
		sweep = func(level int) error {
			if level == len(e.dims) {
				phi, err := e.h.Phi(idx[0], idx[1], idx[2])
				if err != nil {
					return fmt.Errorf("potential at (%d, %d, %d): %w", idx[0], idx[1], idx[2], err)
				}
				for i, d := range e.dims {
					row[i] = export.FormatFixed(grid.Axis(d).Coord(idx[d]))
				}
				row[len(e.dims)] = export.FormatFixed(phi)
				tw.Row(row...)
				phis = append(phis, phi)
				if e.opts.Plot {
					coords = append(coords, grid.Axis(e.dims[0]).Coord(idx[e.dims[0]]))
				}
				return nil
			}
			d := e.dims[level]
			for i := 0; i < grid.Axis(d).Nodes(); i++ {
				idx[d] = i
				if err := sweep(level + 1); err != nil {
					return err
				}
			}
			return nil
		}
		if err := sweep(0); err != nil {
			return nil, err
		}
		sum := export.Summarize("phi(V)", phis)
		return &sum, nil
	})
	if err != nil {
		return fmt.Errorf("field export at step %d: %w", step, err)
	}
	e.fired++

	if e.opts.Plot {
		if err := e.plot(step, header[0], coords, phis); err != nil {
			return fmt.Errorf("field profile at step %d: %w", step, err)
		}
	}
	return nil
}

func defaultDir(ndims int) string {
	switch ndims {
	case 1:
		return DefaultDir1D
	case 2:
		return DefaultDir2D
	}
	return DefaultDir3D
}
