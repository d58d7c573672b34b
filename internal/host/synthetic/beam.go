package synthetic

import (
	"math"
	"math/rand/v2"

	"github.com/ibal-unist/picdump/internal/host"
)

// Beam describes a round beam launched from the plane z = Z0 along +z.
// Transverse positions are uniform over a disc of Radius; velocities are
// VZ with gaussian spreads. Seed makes the population reproducible.
type Beam struct {
	Count    int
	Seed     uint64
	Radius   float64
	Z0       float64
	VZ       float64
	VZSpread float64
	VTSpread float64
}

// Particles draws the beam population.
func (b Beam) Particles() host.Particles {
	rng := rand.New(rand.NewPCG(b.Seed, b.Seed^0x9e3779b97f4a7c15))
	p := host.Particles{
		X: make([]float64, b.Count), Y: make([]float64, b.Count), Z: make([]float64, b.Count),
		VX: make([]float64, b.Count), VY: make([]float64, b.Count), VZ: make([]float64, b.Count),
	}
	for i := 0; i < b.Count; i++ {
		r := b.Radius * math.Sqrt(rng.Float64())
		theta := 2 * math.Pi * rng.Float64()
		p.X[i] = r * math.Cos(theta)
		p.Y[i] = r * math.Sin(theta)
		p.Z[i] = b.Z0
		p.VX[i] = b.VTSpread * rng.NormFloat64()
		p.VY[i] = b.VTSpread * rng.NormFloat64()
		p.VZ[i] = b.VZ + b.VZSpread*rng.NormFloat64()
	}
	return p
}
