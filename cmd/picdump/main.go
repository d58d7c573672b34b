// Command picdump runs the synthetic particle-in-cell host with the exports
// described by a plan file attached, writing field and particle data files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/ibal-unist/picdump/internal/catalog"
	"github.com/ibal-unist/picdump/internal/config"
	"github.com/ibal-unist/picdump/internal/export"
	"github.com/ibal-unist/picdump/internal/export/field"
	"github.com/ibal-unist/picdump/internal/export/particle"
	"github.com/ibal-unist/picdump/internal/export/pointcloud"
	"github.com/ibal-unist/picdump/internal/host"
	"github.com/ibal-unist/picdump/internal/host/synthetic"
	"github.com/ibal-unist/picdump/internal/monitoring"
	"github.com/ibal-unist/picdump/internal/version"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("picdump", flag.ContinueOnError)
	configPath := fs.String("config", "", "Export plan file (.json, .yaml or .yml)")
	steps := fs.Int("steps", -1, "Number of steps to run (overrides the plan)")
	showVersion := fs.Bool("version", false, "Print version and exit")
	verbose := fs.Bool("verbose", false, "Log exporter debug output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "picdump %s\n", version.String())
		return nil
	}
	if *configPath == "" {
		return fmt.Errorf("-config is required")
	}
	monitoring.SetVerbose(*verbose)

	plan, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	n := plan.GetSteps()
	if *steps >= 0 {
		n = *steps
	}

	sim, err := buildHost(plan.Host)
	if err != nil {
		return fmt.Errorf("failed to build host: %w", err)
	}

	sink := export.NewSink(plan.Root)
	if plan.Catalog != "" {
		if err := os.MkdirAll(filepath.Dir(plan.Catalog), 0755); err != nil {
			return fmt.Errorf("failed to create catalog dir: %w", err)
		}
		cat, err := catalog.Open(plan.Catalog)
		if err != nil {
			return err
		}
		defer cat.Close()
		r, err := cat.StartRun(plan.Note)
		if err != nil {
			return err
		}
		sink.Recorder = r
		fmt.Fprintf(stdout, "catalog run %s\n", r.ID)
	}

	if err := registerExports(plan, sim, sink); err != nil {
		return err
	}

	for _, w := range scheduleWarnings(plan, n) {
		fmt.Fprintf(stdout, "warning: %s\n", w)
	}

	log.Printf("Running %d steps with %d hooks", n, sim.Len())
	if err := sim.Run(n); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "completed %d steps\n", sim.Step())
	return nil
}

func buildHost(hp config.HostPlan) (*synthetic.Sim, error) {
	axis := func(a config.AxisPlan) host.Axis {
		return host.Axis{Cells: a.Cells, Delta: a.Delta, Min: a.Min}
	}
	grid := host.Grid{X: axis(hp.X), Y: axis(hp.Y), Z: axis(hp.Z)}
	sim, err := synthetic.New(synthetic.Config{
		Grid:      grid,
		Dt:        hp.Dt,
		Potential: synthetic.LinearPotential(grid, hp.PotentialV0),
	})
	if err != nil {
		return nil, err
	}
	for _, b := range hp.Species {
		beam := synthetic.Beam{
			Count:    b.Count,
			Seed:     b.Seed,
			Radius:   b.Radius,
			Z0:       b.Z0,
			VZ:       b.VZ,
			VZSpread: b.VZSpread,
			VTSpread: b.VTSpread,
		}
		if _, err := sim.AddSpecies(b.Name, beam.Particles()); err != nil {
			return nil, err
		}
	}
	return sim, nil
}

func output(o config.OutputPlan) export.Output {
	return export.Output{Dir: o.Dir, Prefix: o.Prefix, Delimiter: o.Delimiter}
}

func registerExports(plan *config.Plan, sim *synthetic.Sim, sink *export.Sink) error {
	for i, fp := range plan.Fields {
		sel, err := field.ParseSelector(fp.Selector)
		if err != nil {
			return fmt.Errorf("fields[%d]: %w", i, err)
		}
		_, err = field.Register(sim, field.Options{
			Selector: sel,
			Steps:    export.Steps(fp.Steps),
			Output:   output(fp.OutputPlan),
			Fixed:    fp.Fixed,
			Plot:     fp.Plot,
			Sink:     sink,
		})
		if err != nil {
			return fmt.Errorf("fields[%d]: %w", i, err)
		}
	}

	for i, cp := range plan.Crossings {
		_, err := particle.RegisterCrossings(sim, particle.CrossingOptions{
			ZPositions: cp.Z,
			FlushStep:  cp.FlushStep,
			Output:     output(cp.OutputPlan),
			Chart:      cp.Chart,
			Sink:       sink,
		})
		if err != nil {
			return fmt.Errorf("crossings[%d]: %w", i, err)
		}
	}

	for i, sp := range plan.Snapshots {
		species, ok := sim.Species(sp.Species)
		if !ok {
			return fmt.Errorf("snapshots[%d]: unknown species %q", i, sp.Species)
		}
		_, err := particle.RegisterSnapshots(sim, species, particle.SnapshotOptions{
			Steps:  export.Steps(sp.Steps),
			Output: output(sp.OutputPlan),
			Sink:   sink,
		})
		if err != nil {
			return fmt.Errorf("snapshots[%d]: %w", i, err)
		}
	}

	for i, pp := range plan.PointClouds {
		species, ok := sim.Species(pp.Species)
		if !ok {
			return fmt.Errorf("point_clouds[%d]: unknown species %q", i, pp.Species)
		}
		_, err := particle.RegisterPointClouds(sim, species, particle.PointCloudOptions{
			Range:  export.Range{Start: pp.Start, End: pp.End, Interval: pp.Interval},
			Output: output(pp.OutputPlan),
			Format: pointcloud.Format(pp.Format),
			Sink:   sink,
		})
		if err != nil {
			return fmt.Errorf("point_clouds[%d]: %w", i, err)
		}
	}
	return nil
}

// scheduleWarnings lists exports that will not fire in full over a run of
// n steps. Hooks first run after step 1, so step 0 never fires either.
func scheduleWarnings(plan *config.Plan, n int) []string {
	var warnings []string
	check := func(what string, steps export.Steps) {
		if steps.Matches(0) > 0 {
			warnings = append(warnings, fmt.Sprintf("%s: step 0 is never exported", what))
		}
		if last := steps.Last(); last > n {
			warnings = append(warnings, fmt.Sprintf("%s: step %d is after the last step %d", what, last, n))
		}
	}
	for i, fp := range plan.Fields {
		check(fmt.Sprintf("fields[%d]", i), export.Steps(fp.Steps))
	}
	for i, cp := range plan.Crossings {
		check(fmt.Sprintf("crossings[%d] flush", i), export.Steps{cp.FlushStep})
	}
	for i, sp := range plan.Snapshots {
		check(fmt.Sprintf("snapshots[%d]", i), export.Steps(sp.Steps))
	}
	for i, pp := range plan.PointClouds {
		if pp.Start > n {
			warnings = append(warnings, fmt.Sprintf("point_clouds[%d]: step %d is after the last step %d", i, pp.Start, n))
		}
	}
	return warnings
}
