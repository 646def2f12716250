package scatteringmap

import (
	"fmt"
	"math"
)

// Mapping chooses how a table axis is spread over its zenith cosine range.
type Mapping int

const (
	// Linear spaces cells evenly in cosine.
	Linear Mapping = iota
	// Cubic concentrates cells near the horizon (cosine 0).
	Cubic
)

func (m Mapping) String() string {
	switch m {
	case Linear:
		return "linear"
	case Cubic:
		return "cubic"
	}
	return fmt.Sprintf("Mapping(%d)", int(m))
}

func ParseMapping(s string) (Mapping, error) {
	switch s {
	case "linear":
		return Linear, nil
	case "cubic":
		return Cubic, nil
	}
	return Linear, fmt.Errorf("unknown mapping %q, want linear or cubic", s)
}

func (m Mapping) valid() bool {
	return m == Linear || m == Cubic
}

// UToViewZenithCos maps u in [0, 1] to a view zenith cosine in [0, -1].  The
// view axis only covers directions looking down from the observer.
func UToViewZenithCos(m Mapping, u float64) float64 {
	if m == Cubic {
		return -u * u * u
	}
	return -u
}

func ViewZenithCosToU(m Mapping, viewZenithCos float64) float64 {
	if m == Cubic {
		return math.Cbrt(-viewZenithCos)
	}
	return -viewZenithCos
}

// VToSunZenithCos maps v in [0, 1] to a sun zenith cosine in [1, -1].
func VToSunZenithCos(m Mapping, v float64) float64 {
	s := 1 - 2*v
	if m == Cubic {
		return s * s * s
	}
	return s
}

func SunZenithCosToV(m Mapping, sunZenithCos float64) float64 {
	if m == Cubic {
		return (1 - math.Cbrt(sunZenithCos)) / 2
	}
	return (1 - sunZenithCos) / 2
}

// ViewAxis describes the u axis convention for a table manifest.
func (m Mapping) ViewAxis() string {
	if m == Cubic {
		return "u: view zenith cosine = -u^3, cubic mapping"
	}
	return "u: view zenith cosine = -u, linear mapping"
}

// SunAxis describes the v axis convention for a table manifest.  Only the
// linear sun axis is the conventional layout; the cubic one is specific to
// skylut and says so.
func (m Mapping) SunAxis() string {
	if m == Cubic {
		return "v: sun zenith cosine = (1 - 2v)^3, cubic mapping (skylut extension, not the conventional linear sun axis; invert with v = (1 - cbrt(c)) / 2)"
	}
	return "v: sun zenith cosine = 1 - 2v, linear mapping"
}
