package export

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes one numeric column of an exported file.
type Summary struct {
	Column string
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// Summarize computes a Summary of values. An empty column yields a zero
// Summary with Count 0.
func Summarize(column string, values []float64) Summary {
	s := Summary{Column: column, Count: len(values)}
	if len(values) == 0 {
		return s
	}
	s.Min = floats.Min(values)
	s.Max = floats.Max(values)
	if len(values) == 1 {
		s.Mean = values[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	return s
}

func (s Summary) String() string {
	if s.Count == 0 {
		return fmt.Sprintf("%s: empty", s.Column)
	}
	return fmt.Sprintf("%s: min=%g max=%g mean=%g std=%g", s.Column, s.Min, s.Max, s.Mean, s.StdDev)
}
