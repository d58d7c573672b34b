package particle

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibal-unist/picdump/internal/export"
	"github.com/ibal-unist/picdump/internal/export/pointcloud"
	"github.com/ibal-unist/picdump/internal/host"
	"github.com/ibal-unist/picdump/internal/host/synthetic"
	"github.com/ibal-unist/picdump/internal/testutil"
)

func newSim(t *testing.T) *synthetic.Sim {
	t.Helper()
	ax := host.Axis{Cells: 4, Delta: 0.5, Min: 0}
	s, err := synthetic.New(synthetic.Config{Grid: host.Grid{X: ax, Y: ax, Z: ax}, Dt: 1})
	require.NoError(t, err)
	return s
}

// beam returns three particles at z=0: two moving forward at 1/64 and 1/128
// m/step and one moving backward.
func beam() host.Particles {
	return host.Particles{
		X:  []float64{0.001, 0.002, 0.003},
		Y:  []float64{-0.001, 0, 0.001},
		Z:  []float64{0, 0, 0},
		VX: []float64{0, 0, 0},
		VY: []float64{0, 0, 0},
		VZ: []float64{1.0 / 64, 1.0 / 128, -1.0 / 64},
	}
}

func TestCrossingBuffer(t *testing.T) {
	b := NewCrossingBuffer(0.25)
	assert.Equal(t, 0.25, b.Z())
	b.Accumulate(host.Crossing{ID: 1}, host.Crossing{ID: 2})
	b.Accumulate(host.Crossing{ID: 3})
	assert.Equal(t, 3, b.Len())

	got := b.Drain()
	assert.Equal(t, []host.Crossing{{ID: 1}, {ID: 2}, {ID: 3}}, got)
	assert.Zero(t, b.Len())
	assert.Empty(t, b.Drain())
}

func TestCrossings_FlushScenario(t *testing.T) {
	sim := newSim(t)
	_, err := sim.AddSpecies("beam", beam())
	require.NoError(t, err)
	sink, mfs := testutil.NewMemorySink()

	e, err := RegisterCrossings(sim, CrossingOptions{ZPositions: []float64{0.5, 1.0}, FlushStep: 100, Sink: sink})
	require.NoError(t, err)
	require.NoError(t, sim.Run(99))
	assert.Empty(t, mfs.Files("."), "nothing is written before the flush step")
	assert.Equal(t, 2, e.Buffers()[0].Len())
	assert.Equal(t, 1, e.Buffers()[1].Len())

	require.NoError(t, sim.Run(1))
	assert.True(t, e.Flushed())
	assert.Equal(t, []string{
		"zposition_particle_data/z_particle_data_0.5m.txt",
		"zposition_particle_data/z_particle_data_1.0m.txt",
	}, mfs.Files("."))

	want := []string{
		"pid\tx(m)\ty(m)\tt(s)\tvx(m/s)\tvy(m/s)\tvz(m/s)",
		"1\t0.001000000\t-0.001000000\t32.0\t0.0\t0.0\t0.015625",
		"2\t0.002000000\t0.000000000\t64.0\t0.0\t0.0\t0.0078125",
	}
	if diff := cmp.Diff(want, testutil.ReadLines(t, mfs, "zposition_particle_data/z_particle_data_0.5m.txt")); diff != "" {
		t.Errorf("z=0.5 file mismatch (-want +got):\n%s", diff)
	}
	want = []string{
		"pid\tx(m)\ty(m)\tt(s)\tvx(m/s)\tvy(m/s)\tvz(m/s)",
		"1\t0.001000000\t-0.001000000\t64.0\t0.0\t0.0\t0.015625",
	}
	if diff := cmp.Diff(want, testutil.ReadLines(t, mfs, "zposition_particle_data/z_particle_data_1.0m.txt")); diff != "" {
		t.Errorf("z=1.0 file mismatch (-want +got):\n%s", diff)
	}

	for _, b := range e.Buffers() {
		assert.Zero(t, b.Len(), "buffers are drained by the flush")
	}

	require.NoError(t, sim.Run(50))
	assert.Equal(t, 1, e.Buffers()[1].Len(), "buffers keep collecting after the flush")
	assert.Equal(t, 1, mfs.Creates("zposition_particle_data/z_particle_data_0.5m.txt"), "flush is one-shot")
}

func TestCrossings_EmptyPlaneStillWritesHeader(t *testing.T) {
	sim := newSim(t)
	_, err := sim.AddSpecies("beam", beam())
	require.NoError(t, err)
	sink, mfs := testutil.NewMemorySink()

	_, err = RegisterCrossings(sim, CrossingOptions{
		ZPositions: []float64{-3},
		FlushStep:  5,
		Output:     export.Output{Dir: "planes", Prefix: "zc", Delimiter: ","},
		Sink:       sink,
	})
	require.NoError(t, err)
	require.NoError(t, sim.Run(5))

	assert.Equal(t, []string{"pid,x(m),y(m),t(s),vx(m/s),vy(m/s),vz(m/s)"}, testutil.ReadLines(t, mfs, "planes/zc_-3.0m.txt"))
}

func TestCrossings_Chart(t *testing.T) {
	sim := newSim(t)
	_, err := sim.AddSpecies("beam", beam())
	require.NoError(t, err)
	sink, mfs := testutil.NewMemorySink()

	_, err = RegisterCrossings(sim, CrossingOptions{ZPositions: []float64{0.25}, FlushStep: 20, Chart: true, Sink: sink})
	require.NoError(t, err)
	require.NoError(t, sim.Run(20))

	html, err := mfs.ReadFile("zposition_particle_data/z_particle_data_0.25m.html")
	require.NoError(t, err)
	assert.Contains(t, string(html), "crossings=1")
}

func TestRegisterCrossings_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts CrossingOptions
	}{
		{"no planes", CrossingOptions{FlushStep: 10}},
		{"negative flush step", CrossingOptions{ZPositions: []float64{1}, FlushStep: -1}},
		{"bad prefix", CrossingOptions{ZPositions: []float64{1}, Output: export.Output{Prefix: ".."}}},
		{"absolute dir", CrossingOptions{ZPositions: []float64{1}, Output: export.Output{Dir: "/tmp/x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := newSim(t)
			_, err := RegisterCrossings(sim, tt.opts)
			assert.ErrorIs(t, err, export.ErrInvalidOptions)
			assert.Zero(t, sim.Len())
		})
	}
}

// rejectingHost accepts the first plane and rejects the rest.
type rejectingHost struct {
	*synthetic.Sim
	watched int
}

func (h *rejectingHost) WatchZ(z float64, sink host.CrossingSink) error {
	h.watched++
	if h.watched > 1 {
		return errors.New("plane limit reached")
	}
	return h.Sim.WatchZ(z, sink)
}

func TestRegisterCrossings_WatchFailureInstallsNoHook(t *testing.T) {
	h := &rejectingHost{Sim: newSim(t)}
	sink, mfs := testutil.NewMemorySink()

	e, err := RegisterCrossings(h, CrossingOptions{ZPositions: []float64{0.5, 1.0}, FlushStep: 1, Sink: sink})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch z=1")
	assert.Nil(t, e)
	assert.Equal(t, 2, h.watched)
	assert.Zero(t, h.Len())

	require.NoError(t, h.Run(2))
	assert.Empty(t, mfs.Files("."))
}

func TestStepZeroNeverFires(t *testing.T) {
	sim := newSim(t)
	species, err := sim.AddSpecies("beam", beam())
	require.NoError(t, err)
	sink, mfs := testutil.NewMemorySink()

	c, err := RegisterCrossings(sim, CrossingOptions{ZPositions: []float64{0.5}, FlushStep: 0, Sink: sink})
	require.NoError(t, err)
	s, err := RegisterSnapshots(sim, species, SnapshotOptions{Steps: export.Steps{0}, Sink: sink})
	require.NoError(t, err)

	require.NoError(t, sim.Run(5))
	assert.False(t, c.Flushed())
	assert.Zero(t, s.Fired())
	assert.Empty(t, mfs.Files("."))
}

func TestSnapshots(t *testing.T) {
	sim := newSim(t)
	sp, err := sim.AddSpecies("beam", beam())
	require.NoError(t, err)
	sink, mfs := testutil.NewMemorySink()

	e, err := RegisterSnapshots(sim, sp, SnapshotOptions{Steps: export.Steps{2, 64, 64, 500}, Sink: sink})
	require.NoError(t, err)
	require.NoError(t, sim.Run(100))

	assert.Equal(t, 3, e.Fired())
	assert.Equal(t, []string{
		"timestep_particle_data/time_particle_data_2_ts.txt",
		"timestep_particle_data/time_particle_data_64_ts.txt",
	}, mfs.Files("."))
	assert.Equal(t, 2, mfs.Creates("timestep_particle_data/time_particle_data_64_ts.txt"))

	want := []string{
		"x(m)\ty(m)\tz(m)\tvx(m/s)\tvy(m/s)\tvz(m/s)",
		"0.001000000\t-0.001000000\t1.000000000\t0.0\t0.0\t0.015625",
		"0.002000000\t0.000000000\t0.500000000\t0.0\t0.0\t0.0078125",
		"0.003000000\t0.001000000\t-1.000000000\t0.0\t0.0\t-0.015625",
	}
	if diff := cmp.Diff(want, testutil.ReadLines(t, mfs, "timestep_particle_data/time_particle_data_64_ts.txt")); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

type failingSpecies struct{}

func (failingSpecies) Name() string { return "ghost" }
func (failingSpecies) Particles() (host.Particles, error) {
	return host.Particles{}, errors.New("species arrays unavailable")
}

func TestSnapshots_HostErrorAbortsRun(t *testing.T) {
	sim := newSim(t)
	sink, _ := testutil.NewMemorySink()

	_, err := RegisterSnapshots(sim, failingSpecies{}, SnapshotOptions{Steps: export.Steps{3}, Sink: sink})
	require.NoError(t, err)

	err = sim.Run(10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "species arrays unavailable")
	assert.Equal(t, 3, sim.Step())
}

func TestRegisterSnapshots_Validation(t *testing.T) {
	sim := newSim(t)
	sp, err := sim.AddSpecies("beam", beam())
	require.NoError(t, err)

	_, err = RegisterSnapshots(sim, nil, SnapshotOptions{Steps: export.Steps{1}})
	assert.ErrorIs(t, err, export.ErrInvalidOptions)
	_, err = RegisterSnapshots(sim, sp, SnapshotOptions{})
	assert.ErrorIs(t, err, export.ErrInvalidOptions)
	_, err = RegisterSnapshots(sim, sp, SnapshotOptions{Steps: export.Steps{-4}})
	assert.ErrorIs(t, err, export.ErrInvalidOptions)
	assert.Zero(t, sim.Len())
}

func TestPointClouds_RangeScenario(t *testing.T) {
	sim := newSim(t)
	sp, err := sim.AddSpecies("beam", beam())
	require.NoError(t, err)
	sink, mfs := testutil.NewMemorySink()

	e, err := RegisterPointClouds(sim, sp, PointCloudOptions{Range: export.Range{Start: 10, End: 20, Interval: 5}, Sink: sink})
	require.NoError(t, err)
	require.NoError(t, sim.Run(30))

	assert.Equal(t, 3, e.Fired())
	assert.Equal(t, []string{
		"vtk_particle_data/vtk_particle_data_10_ts.vtu",
		"vtk_particle_data/vtk_particle_data_15_ts.vtu",
		"vtk_particle_data/vtk_particle_data_20_ts.vtu",
	}, mfs.Files("."))

	data, err := mfs.ReadFile("vtk_particle_data/vtk_particle_data_15_ts.vtu")
	require.NoError(t, err)
	assert.Contains(t, string(data), `NumberOfPoints="3"`)
	assert.Contains(t, string(data), `Name="particle"`)
}

func TestPointClouds_DefaultIntervalAndASC(t *testing.T) {
	sim := newSim(t)
	sp, err := sim.AddSpecies("beam", beam())
	require.NoError(t, err)
	sink, mfs := testutil.NewMemorySink()

	_, err = RegisterPointClouds(sim, sp, PointCloudOptions{
		Range:  export.Range{Start: 3, End: 4},
		Output: export.Output{Dir: "clouds", Prefix: "beam"},
		Format: pointcloud.ASC,
		Sink:   sink,
	})
	require.NoError(t, err)
	require.NoError(t, sim.Run(6))

	assert.Equal(t, []string{"clouds/beam_3_ts.asc", "clouds/beam_4_ts.asc"}, mfs.Files("."))
	lines := testutil.ReadLines(t, mfs, "clouds/beam_4_ts.asc")
	assert.Equal(t, "# Exported points", lines[0])
	assert.Equal(t, "0.001000 -0.001000 0.062500 1", lines[2])
}

func TestRegisterPointClouds_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts PointCloudOptions
	}{
		{"end before start", PointCloudOptions{Range: export.Range{Start: 20, End: 10}}},
		{"negative interval", PointCloudOptions{Range: export.Range{Start: 0, End: 10, Interval: -5}}},
		{"unknown format", PointCloudOptions{Range: export.Range{End: 10}, Format: "ply"}},
		{"bad dir", PointCloudOptions{Range: export.Range{End: 10}, Output: export.Output{Dir: "a/../../b"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := newSim(t)
			sp, err := sim.AddSpecies("beam", beam())
			require.NoError(t, err)
			_, err = RegisterPointClouds(sim, sp, tt.opts)
			assert.ErrorIs(t, err, export.ErrInvalidOptions)
			assert.Zero(t, sim.Len())
		})
	}

	_, err := RegisterPointClouds(newSim(t), nil, PointCloudOptions{Range: export.Range{End: 1}})
	assert.ErrorIs(t, err, export.ErrInvalidOptions)
}
