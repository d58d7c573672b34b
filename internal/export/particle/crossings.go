package particle

import (
	"fmt"
	"io"
	"math"

	"github.com/ibal-unist/picdump/internal/export"
	"github.com/ibal-unist/picdump/internal/host"
	"github.com/ibal-unist/picdump/internal/monitoring"
	"github.com/ibal-unist/picdump/internal/preview"
)

// Crossing export defaults.
const (
	DefaultCrossingDir    = "zposition_particle_data"
	DefaultCrossingPrefix = "z_particle_data"
)

var crossingHeader = []string{"pid", "x(m)", "y(m)", "t(s)", "vx(m/s)", "vy(m/s)", "vz(m/s)"}

// CrossingHost is a host that can report z-plane crossings.
type CrossingHost interface {
	host.Sim
	host.CrossingWatcher
}

// CrossingOptions configures a crossing export.
type CrossingOptions struct {
	// ZPositions lists the planes to watch, in metres.
	ZPositions []float64
	// FlushStep is the step at which every buffer is written out, once.
	// Hooks run after the host advances, so a FlushStep of 0 never fires.
	FlushStep int
	Output    export.Output
	// Chart also writes an HTML x/y scatter per plane.
	Chart bool
	Sink  *export.Sink
}

// CrossingExporter collects crossings for a set of planes and writes them
// at the flush step.
type CrossingExporter struct {
	h       CrossingHost
	opts    CrossingOptions
	buffers []*CrossingBuffer
	sink    *export.Sink
	flushed bool
}

// RegisterCrossings validates opts, attaches one buffer per plane to the host
// right away and installs the flush hook.
//
// Planes are attached in order. If the host rejects one, the planes it
// already accepted stay attached and keep receiving crossings, but no flush
// hook is installed, so nothing is ever written for them.
func RegisterCrossings(h CrossingHost, opts CrossingOptions) (*CrossingExporter, error) {
	if h == nil {
		return nil, export.Invalidf("host is nil")
	}
	if len(opts.ZPositions) == 0 {
		return nil, export.Invalidf("z position is not defined for data")
	}
	for _, z := range opts.ZPositions {
		if math.IsNaN(z) || math.IsInf(z, 0) {
			return nil, export.Invalidf("z position %g is not finite", z)
		}
	}
	if opts.FlushStep < 0 {
		return nil, export.Invalidf("flush time-step %d is negative", opts.FlushStep)
	}
	opts.Output = opts.Output.WithDefaults(export.Output{Dir: DefaultCrossingDir, Prefix: DefaultCrossingPrefix})
	if err := opts.Output.Validate(); err != nil {
		return nil, err
	}

	e := &CrossingExporter{h: h, opts: opts, sink: opts.Sink}
	if e.sink == nil {
		e.sink = export.NewSink(".")
	}
	for _, z := range opts.ZPositions {
		b := NewCrossingBuffer(z)
		if err := h.WatchZ(z, b); err != nil {
			return nil, fmt.Errorf("watch z=%g: %w", z, err)
		}
		e.buffers = append(e.buffers, b)
	}
	h.AfterStep(e.afterStep)
	monitoring.Debugf("crossing export armed for z=%v, flush at step %d", opts.ZPositions, opts.FlushStep)
	return e, nil
}

// Buffers returns the per-plane buffers in ZPositions order.
func (e *CrossingExporter) Buffers() []*CrossingBuffer {
	return e.buffers
}

// Flushed reports whether the flush step has been handled.
func (e *CrossingExporter) Flushed() bool {
	return e.flushed
}

func (e *CrossingExporter) afterStep() error {
	if e.h.Step() != e.opts.FlushStep {
		return nil
	}
	return e.Flush()
}

// Flush drains every buffer into its file.
func (e *CrossingExporter) Flush() error {
	step := e.h.Step()
	out := e.opts.Output
	for _, b := range e.buffers {
		events := b.Drain()
		f := export.File{Kind: export.KindCrossing, Step: step, Dir: out.Dir, Name: export.PositionFileName(out.Prefix, b.Z(), ".txt")}
		_, err := e.sink.WriteTable(f, out.Delimiter, crossingHeader, func(tw *export.TableWriter) (*export.Summary, error) {
			times := make([]float64, 0, len(events))
			for _, c := range events {
				tw.Row(
					export.FormatInt(c.ID),
					export.FormatFixed(c.X),
					export.FormatFixed(c.Y),
					export.FormatDefault(c.T),
					export.FormatDefault(c.VX),
					export.FormatDefault(c.VY),
					export.FormatDefault(c.VZ),
				)
				times = append(times, c.T)
			}
			sum := export.Summarize("t(s)", times)
			return &sum, nil
		})
		if err != nil {
			return fmt.Errorf("crossing export z=%g: %w", b.Z(), err)
		}
		if e.opts.Chart {
			if err := e.chart(step, b.Z(), events); err != nil {
				return fmt.Errorf("crossing chart z=%g: %w", b.Z(), err)
			}
		}
	}
	e.flushed = true
	return nil
}

func (e *CrossingExporter) chart(step int, z float64, events []host.Crossing) error {
	out := e.opts.Output
	f := export.File{Kind: export.KindPreview, Step: step, Dir: out.Dir, Name: export.PositionFileName(out.Prefix, z, ".html")}
	title := fmt.Sprintf("Crossings of z=%sm", export.FormatDefault(z))
	_, err := e.sink.WriteFile(f, func(w io.Writer) (int, error) {
		return len(events), preview.CrossingScatter(w, title, z, events)
	})
	return err
}
