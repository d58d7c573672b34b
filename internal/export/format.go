package export

import (
	"math"
	"strconv"
	"strings"
)

// DefaultDelimiter separates columns unless a caller picks another.
const DefaultDelimiter = "\t"

// FormatFixed formats positions and potentials: fixed point, 9 decimals.
func FormatFixed(v float64) string {
	return strconv.FormatFloat(v, 'f', 9, 64)
}

// FormatDefault formats velocities, times and plane positions in file names
// as the shortest round-tripping decimal. Values with a decimal exponent
// below -4 or at least 16 use exponent notation; integral values keep a
// trailing ".0" so columns always read back as floats.
func FormatDefault(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case v == 0:
		if math.Signbit(v) {
			return "-0.0"
		}
		return "0.0"
	}

	sci := strconv.FormatFloat(v, 'e', -1, 64)
	exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if err == nil && (exp < -4 || exp >= 16) {
		return sci
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// FormatInt formats particle IDs.
func FormatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

// StepFileName names per-step outputs: {prefix}_{step}_ts{ext}.
func StepFileName(prefix string, step int, ext string) string {
	return prefix + "_" + strconv.Itoa(step) + "_ts" + ext
}

// PositionFileName names per-plane outputs: {prefix}_{z}m{ext}.
func PositionFileName(prefix string, z float64, ext string) string {
	return prefix + "_" + FormatDefault(z) + "m" + ext
}
