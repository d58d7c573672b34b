// Package host defines what the exporters need from the simulation that
// drives them. The host owns the step counter, the grid and potential, the
// species arrays and the crossing detectors; the exporters only read them
// from inside after-step hooks.
package host

import "fmt"

// Stepper exposes the host's current step counter.
type Stepper interface {
	Step() int
}

// Hook runs after every host step. A non-nil error aborts the run.
type Hook func() error

// HookRegistry accepts after-step hooks. Hooks cannot be removed.
type HookRegistry interface {
	AfterStep(h Hook)
}

// Sim is the minimum an exporter registers against.
type Sim interface {
	Stepper
	HookRegistry
}

// Axis describes one grid dimension with Cells cells, so Cells+1 nodes
// indexed 0..Cells.
type Axis struct {
	Cells int
	Delta float64
	Min   float64
}

// Coord returns the physical coordinate of node i.
func (a Axis) Coord(i int) float64 {
	return float64(i)*a.Delta + a.Min
}

// Nodes returns the number of grid nodes along the axis.
func (a Axis) Nodes() int {
	return a.Cells + 1
}

// Grid is the host's uniform mesh.
type Grid struct {
	X, Y, Z Axis
}

// Axis returns the axis for dimension d (0=x, 1=y, 2=z).
func (g Grid) Axis(d int) Axis {
	switch d {
	case 0:
		return g.X
	case 1:
		return g.Y
	case 2:
		return g.Z
	}
	panic(fmt.Sprintf("host: invalid grid dimension %d", d))
}

// Field gives access to the electrostatic potential on grid nodes.
type Field interface {
	Grid() Grid
	Phi(ix, iy, iz int) (float64, error)
}

// Particles holds one species as parallel arrays.
type Particles struct {
	ID         []int64
	X, Y, Z    []float64
	VX, VY, VZ []float64
}

// Len returns the number of particles.
func (p Particles) Len() int {
	return len(p.X)
}

// Check reports arrays of inconsistent length.
func (p Particles) Check() error {
	n := len(p.X)
	for name, l := range map[string]int{"y": len(p.Y), "z": len(p.Z), "vx": len(p.VX), "vy": len(p.VY), "vz": len(p.VZ)} {
		if l != n {
			return fmt.Errorf("particle array %s has %d entries, x has %d", name, l, n)
		}
	}
	if p.ID != nil && len(p.ID) != n {
		return fmt.Errorf("particle array id has %d entries, x has %d", len(p.ID), n)
	}
	return nil
}

// Species is a named particle population. Particles returns a copy that the
// caller may keep.
type Species interface {
	Name() string
	Particles() (Particles, error)
}

// Crossing is one particle passing a fixed z plane.
type Crossing struct {
	ID         int64
	X, Y       float64
	T          float64
	VX, VY, VZ float64
}

// CrossingSink receives crossing events from the host.
type CrossingSink interface {
	Accumulate(c ...Crossing)
}

// CrossingWatcher is the host's crossing-accumulator primitive. After WatchZ
// returns, every particle crossing plane z is delivered to sink.
type CrossingWatcher interface {
	WatchZ(z float64, sink CrossingSink) error
}
