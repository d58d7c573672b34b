// Package synthetic is a small deterministic host used by the CLI and by
// tests: a uniform grid carrying an analytic potential and ballistic particle
// species. It advances steps, reports z-plane crossings to registered sinks
// and runs after-step hooks, which is all the exporters ever see of a real
// particle-in-cell code.
package synthetic

import (
	"fmt"
	"math"

	"github.com/ibal-unist/picdump/internal/host"
)

// PotentialFunc evaluates the potential at a physical position.
type PotentialFunc func(x, y, z float64) float64

// Config describes the synthetic host.
type Config struct {
	Grid      host.Grid
	Dt        float64
	Potential PotentialFunc
}

// LinearPotential drops uniformly from v0 at zmin to 0 at zmax.
func LinearPotential(g host.Grid, v0 float64) PotentialFunc {
	zlen := float64(g.Z.Cells) * g.Z.Delta
	return func(_, _, z float64) float64 {
		if zlen == 0 {
			return v0
		}
		return v0 * (1 - (z-g.Z.Min)/zlen)
	}
}

type watcher struct {
	z    float64
	sink host.CrossingSink
}

// Sim is the synthetic host. It satisfies host.Sim, host.Field and
// host.CrossingWatcher.
type Sim struct {
	host.Hooks

	cfg      Config
	step     int
	species  []*Species
	byName   map[string]*Species
	watchers []watcher
}

// New validates cfg and returns a host at step 0.
func New(cfg Config) (*Sim, error) {
	for d, name := range []string{"x", "y", "z"} {
		a := cfg.Grid.Axis(d)
		if a.Cells < 0 {
			return nil, fmt.Errorf("grid %s: negative cell count %d", name, a.Cells)
		}
		if a.Delta <= 0 || math.IsNaN(a.Delta) {
			return nil, fmt.Errorf("grid %s: spacing must be positive, got %g", name, a.Delta)
		}
	}
	if cfg.Dt <= 0 {
		return nil, fmt.Errorf("time step must be positive, got %g", cfg.Dt)
	}
	if cfg.Potential == nil {
		cfg.Potential = func(_, _, _ float64) float64 { return 0 }
	}
	return &Sim{cfg: cfg, byName: make(map[string]*Species)}, nil
}

// Step returns the number of completed steps.
func (s *Sim) Step() int {
	return s.step
}

// Time returns the simulated time in seconds.
func (s *Sim) Time() float64 {
	return float64(s.step) * s.cfg.Dt
}

// Grid returns the mesh.
func (s *Sim) Grid() host.Grid {
	return s.cfg.Grid
}

// Phi evaluates the potential at grid node (ix, iy, iz).
func (s *Sim) Phi(ix, iy, iz int) (float64, error) {
	g := s.cfg.Grid
	if ix < 0 || ix > g.X.Cells || iy < 0 || iy > g.Y.Cells || iz < 0 || iz > g.Z.Cells {
		return 0, fmt.Errorf("grid index (%d, %d, %d) outside (0..%d, 0..%d, 0..%d)",
			ix, iy, iz, g.X.Cells, g.Y.Cells, g.Z.Cells)
	}
	return s.cfg.Potential(g.X.Coord(ix), g.Y.Coord(iy), g.Z.Coord(iz)), nil
}

// AddSpecies registers a species with the given initial state. IDs are
// assigned 1..n when p.ID is nil.
func (s *Sim) AddSpecies(name string, p host.Particles) (*Species, error) {
	if name == "" {
		return nil, fmt.Errorf("species name is empty")
	}
	if _, dup := s.byName[name]; dup {
		return nil, fmt.Errorf("species %q already exists", name)
	}
	if err := p.Check(); err != nil {
		return nil, fmt.Errorf("species %q: %w", name, err)
	}
	sp := &Species{name: name, p: clone(p)}
	if sp.p.ID == nil {
		sp.p.ID = make([]int64, p.Len())
		for i := range sp.p.ID {
			sp.p.ID[i] = int64(i + 1)
		}
	}
	s.species = append(s.species, sp)
	s.byName[name] = sp
	return sp, nil
}

// Species looks up a species by name.
func (s *Sim) Species(name string) (*Species, bool) {
	sp, ok := s.byName[name]
	return sp, ok
}

// WatchZ starts reporting crossings of plane z to sink.
func (s *Sim) WatchZ(z float64, sink host.CrossingSink) error {
	if sink == nil {
		return fmt.Errorf("nil crossing sink for z=%g", z)
	}
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return fmt.Errorf("invalid crossing plane z=%g", z)
	}
	s.watchers = append(s.watchers, watcher{z: z, sink: sink})
	return nil
}

// Advance pushes every species one step, reports crossings, increments the
// step counter and runs the after-step hooks.
func (s *Sim) Advance() error {
	dt := s.cfg.Dt
	t0 := s.Time()
	found := make([][]host.Crossing, len(s.watchers))

	for _, sp := range s.species {
		p := &sp.p
		for i := 0; i < p.Len(); i++ {
			x0, y0, z0 := p.X[i], p.Y[i], p.Z[i]
			p.X[i] += p.VX[i] * dt
			p.Y[i] += p.VY[i] * dt
			p.Z[i] += p.VZ[i] * dt

			for w, wt := range s.watchers {
				f, ok := crossed(z0, p.Z[i], wt.z)
				if !ok {
					continue
				}
				found[w] = append(found[w], host.Crossing{
					ID: p.ID[i],
					X:  x0 + f*(p.X[i]-x0),
					Y:  y0 + f*(p.Y[i]-y0),
					T:  t0 + f*dt,
					VX: p.VX[i],
					VY: p.VY[i],
					VZ: p.VZ[i],
				})
			}
		}
	}
	for w, wt := range s.watchers {
		if len(found[w]) > 0 {
			wt.sink.Accumulate(found[w]...)
		}
	}

	s.step++
	return s.Hooks.Run()
}

// Run advances n steps and stops at the first hook error.
func (s *Sim) Run(n int) error {
	for i := 0; i < n; i++ {
		if err := s.Advance(); err != nil {
			return fmt.Errorf("step %d: %w", s.step, err)
		}
	}
	return nil
}

// crossed reports whether the segment z0->z1 reaches plane zc, and the
// fraction of the step at which it does.
func crossed(z0, z1, zc float64) (float64, bool) {
	if z0 == z1 {
		return 0, false
	}
	if (z0 < zc && z1 >= zc) || (z0 > zc && z1 <= zc) {
		return (zc - z0) / (z1 - z0), true
	}
	return 0, false
}

// Species is one synthetic particle population.
type Species struct {
	name string
	p    host.Particles
}

// Name returns the species name.
func (sp *Species) Name() string {
	return sp.name
}

// Particles returns a copy of the current particle state.
func (sp *Species) Particles() (host.Particles, error) {
	return clone(sp.p), nil
}

func clone(p host.Particles) host.Particles {
	cp := func(v []float64) []float64 {
		if v == nil {
			return nil
		}
		return append([]float64(nil), v...)
	}
	var id []int64
	if p.ID != nil {
		id = append([]int64(nil), p.ID...)
	}
	return host.Particles{
		ID: id,
		X:  cp(p.X), Y: cp(p.Y), Z: cp(p.Z),
		VX: cp(p.VX), VY: cp(p.VY), VZ: cp(p.VZ),
	}
}
