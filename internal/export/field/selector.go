package field

import (
	"fmt"
	"strings"
)

// Selector chooses which grid dimensions a field export sweeps.
type Selector int

const (
	None Selector = iota
	X
	Y
	Z
	XY
	YZ
	ZX
	XYZ
)

var selectorNames = map[Selector]string{X: "x", Y: "y", Z: "z", XY: "xy", YZ: "yz", ZX: "zx", XYZ: "xyz"}

// ParseSelector accepts "x", "y", "z", "xy", "yz", "zx" and "xyz".
func ParseSelector(s string) (Selector, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for sel, n := range selectorNames {
		if n == name {
			return sel, nil
		}
	}
	return None, fmt.Errorf("selector must be one of x, y, z, xy, yz, zx or xyz, got %q", s)
}

func (s Selector) String() string {
	if n, ok := selectorNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Selector(%d)", int(s))
}

// Dims returns the swept dimensions (0=x, 1=y, 2=z), outermost first.
func (s Selector) Dims() []int {
	switch s {
	case X:
		return []int{0}
	case Y:
		return []int{1}
	case Z:
		return []int{2}
	case XY:
		return []int{0, 1}
	case YZ:
		return []int{1, 2}
	case ZX:
		return []int{2, 0}
	case XYZ:
		return []int{0, 1, 2}
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Selector) MarshalText() ([]byte, error) {
	if _, ok := selectorNames[s]; !ok {
		return nil, fmt.Errorf("invalid selector %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Selector) UnmarshalText(b []byte) error {
	sel, err := ParseSelector(string(b))
	if err != nil {
		return err
	}
	*s = sel
	return nil
}
