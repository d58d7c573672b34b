package particle

import (
	"fmt"
	"io"

	"github.com/ibal-unist/picdump/internal/export"
	"github.com/ibal-unist/picdump/internal/export/pointcloud"
	"github.com/ibal-unist/picdump/internal/host"
	"github.com/ibal-unist/picdump/internal/monitoring"
)

// Point-cloud export defaults.
const (
	DefaultPointCloudDir    = "vtk_particle_data"
	DefaultPointCloudPrefix = "vtk_particle_data"
)

// particleTag is the constant scalar attached to every exported point.
const particleTag = 1

// PointCloudOptions configures a point-cloud export over a step range.
type PointCloudOptions struct {
	// Range selects the steps. A zero Interval means every step.
	Range  export.Range
	Output export.Output
	// Format is pointcloud.VTU (default) or pointcloud.ASC.
	Format pointcloud.Format
	Sink   *export.Sink
}

// PointCloudExporter writes particle positions as point clouds.
type PointCloudExporter struct {
	h     host.Sim
	sp    host.Species
	opts  PointCloudOptions
	sink  *export.Sink
	fired int
}

// RegisterPointClouds validates opts and installs the point-cloud hook.
func RegisterPointClouds(h host.Sim, sp host.Species, opts PointCloudOptions) (*PointCloudExporter, error) {
	if h == nil {
		return nil, export.Invalidf("host is nil")
	}
	if sp == nil {
		return nil, export.Invalidf("particle species is not defined for data")
	}
	if opts.Range.Interval == 0 {
		opts.Range.Interval = 1
	}
	if err := opts.Range.Validate(); err != nil {
		return nil, err
	}
	format, err := pointcloud.ParseFormat(string(opts.Format))
	if err != nil {
		return nil, export.Invalidf("%v", err)
	}
	opts.Format = format
	opts.Output = opts.Output.WithDefaults(export.Output{Dir: DefaultPointCloudDir, Prefix: DefaultPointCloudPrefix})
	if err := opts.Output.Validate(); err != nil {
		return nil, err
	}

	e := &PointCloudExporter{h: h, sp: sp, opts: opts, sink: opts.Sink}
	if e.sink == nil {
		e.sink = export.NewSink(".")
	}
	h.AfterStep(e.afterStep)
	monitoring.Debugf("%s point clouds of %s armed for steps %d..%d every %d",
		format, sp.Name(), opts.Range.Start, opts.Range.End, opts.Range.Interval)
	return e, nil
}

// Fired returns how many point-cloud files have been written.
func (e *PointCloudExporter) Fired() int {
	return e.fired
}

func (e *PointCloudExporter) afterStep() error {
	step := e.h.Step()
	if !e.opts.Range.Contains(step) {
		return nil
	}
	return e.Export(step)
}

// Export reads the species positions now and writes the file for step.
func (e *PointCloudExporter) Export(step int) error {
	p, err := e.sp.Particles()
	if err != nil {
		return fmt.Errorf("point cloud of %s at step %d: %w", e.sp.Name(), step, err)
	}
	if err := p.Check(); err != nil {
		return fmt.Errorf("point cloud of %s at step %d: %w", e.sp.Name(), step, err)
	}
	points := pointcloud.FromParticles(p, particleTag)

	out := e.opts.Output
	f := export.File{Kind: export.KindPointCloud, Step: step, Dir: out.Dir, Name: export.StepFileName(out.Prefix, step, e.opts.Format.Ext())}
	_, err = e.sink.WriteFile(f, func(w io.Writer) (int, error) {
		return pointcloud.Write(w, e.opts.Format, points)
	})
	if err != nil {
		return fmt.Errorf("point cloud of %s at step %d: %w", e.sp.Name(), step, err)
	}
	e.fired++
	return nil
}
