package particle

import (
	"fmt"

	"github.com/ibal-unist/picdump/internal/export"
	"github.com/ibal-unist/picdump/internal/host"
	"github.com/ibal-unist/picdump/internal/monitoring"
)

// Snapshot export defaults.
const (
	DefaultSnapshotDir    = "timestep_particle_data"
	DefaultSnapshotPrefix = "time_particle_data"
)

var snapshotHeader = []string{"x(m)", "y(m)", "z(m)", "vx(m/s)", "vy(m/s)", "vz(m/s)"}

// SnapshotOptions configures a per-step species snapshot.
type SnapshotOptions struct {
	// Steps lists the target steps. Step 0 never fires.
	Steps  export.Steps
	Output export.Output
	Sink   *export.Sink
}

// SnapshotExporter writes the positions and velocities of every particle of
// one species at the target steps.
type SnapshotExporter struct {
	h     host.Sim
	sp    host.Species
	opts  SnapshotOptions
	sink  *export.Sink
	fired int
}

// RegisterSnapshots validates opts and installs the snapshot hook.
func RegisterSnapshots(h host.Sim, sp host.Species, opts SnapshotOptions) (*SnapshotExporter, error) {
	if h == nil {
		return nil, export.Invalidf("host is nil")
	}
	if sp == nil {
		return nil, export.Invalidf("particle species is not defined for data")
	}
	if err := opts.Steps.Validate(); err != nil {
		return nil, err
	}
	opts.Output = opts.Output.WithDefaults(export.Output{Dir: DefaultSnapshotDir, Prefix: DefaultSnapshotPrefix})
	if err := opts.Output.Validate(); err != nil {
		return nil, err
	}

	e := &SnapshotExporter{h: h, sp: sp, opts: opts, sink: opts.Sink}
	if e.sink == nil {
		e.sink = export.NewSink(".")
	}
	h.AfterStep(e.afterStep)
	monitoring.Debugf("snapshot export of %s armed for steps %v", sp.Name(), []int(opts.Steps))
	return e, nil
}

// Fired returns how many snapshot files have been written.
func (e *SnapshotExporter) Fired() int {
	return e.fired
}

func (e *SnapshotExporter) afterStep() error {
	step := e.h.Step()
	for n := e.opts.Steps.Matches(step); n > 0; n-- {
		if err := e.Export(step); err != nil {
			return err
		}
	}
	return nil
}

// Export reads the species now and writes the file for step.
func (e *SnapshotExporter) Export(step int) error {
	p, err := e.sp.Particles()
	if err != nil {
		return fmt.Errorf("snapshot of %s at step %d: %w", e.sp.Name(), step, err)
	}
	if err := p.Check(); err != nil {
		return fmt.Errorf("snapshot of %s at step %d: %w", e.sp.Name(), step, err)
	}

	out := e.opts.Output
	f := export.File{Kind: export.KindSnapshot, Step: step, Dir: out.Dir, Name: export.StepFileName(out.Prefix, step, ".txt")}
	_, err = e.sink.WriteTable(f, out.Delimiter, snapshotHeader, func(tw *export.TableWriter) (*export.Summary, error) {
		for i := 0; i < p.Len(); i++ {
			tw.Row(
				export.FormatFixed(p.X[i]),
				export.FormatFixed(p.Y[i]),
				export.FormatFixed(p.Z[i]),
				export.FormatDefault(p.VX[i]),
				export.FormatDefault(p.VY[i]),
				export.FormatDefault(p.VZ[i]),
			)
		}
		sum := export.Summarize("z(m)", p.Z)
		return &sum, nil
	})
	if err != nil {
		return fmt.Errorf("snapshot of %s at step %d: %w", e.sp.Name(), step, err)
	}
	e.fired++
	return nil
}
