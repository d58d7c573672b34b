package export

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFixed(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.000000000"},
		{1, "1.000000000"},
		{-0.5, "-0.500000000"},
		{1e-10, "0.000000000"},
		{123.4567890123, "123.456789012"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFixed(tt.in), "FormatFixed(%v)", tt.in)
	}
}

func TestFormatDefault(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{math.Copysign(0, -1), "-0.0"},
		{1, "1.0"},
		{0.5, "0.5"},
		{-2.25, "-2.25"},
		{100000, "100000.0"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{1.5e-5, "1.5e-05"},
		{123456789012345, "123456789012345.0"},
		{1e16, "1e+16"},
		{2.5e17, "2.5e+17"},
		{0.30000000000000004, "0.30000000000000004"},
		{299792458, "299792458.0"},
		{math.NaN(), "nan"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDefault(tt.in), "FormatDefault(%v)", tt.in)
	}
}

func TestFormatInt(t *testing.T) {
	assert.Equal(t, "42", FormatInt(42))
	assert.Equal(t, "-7", FormatInt(-7))
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "E_potential_data_100_ts.txt", StepFileName("E_potential_data", 100, ".txt"))
	assert.Equal(t, "vtk_particle_data_15_ts.vtu", StepFileName("vtk_particle_data", 15, ".vtu"))
	assert.Equal(t, "z_particle_data_0.5m.txt", PositionFileName("z_particle_data", 0.5, ".txt"))
	assert.Equal(t, "z_particle_data_1.0m.txt", PositionFileName("z_particle_data", 1, ".txt"))
	assert.Equal(t, "z_particle_data_-0.25m.html", PositionFileName("z_particle_data", -0.25, ".html"))
}
