// Package transmittance integrates optical depth along straight paths through
// the atmosphere.
package transmittance

import (
	"fmt"

	"skylut/planet"
	"skylut/vmath/vec3"
)

// Params controls the line integral.
type Params struct {
	SampleCount int
}

func DefaultParams() Params {
	return Params{SampleCount: 512}
}

func (p Params) Validate() error {
	if p.SampleCount < 1 {
		return fmt.Errorf("transmittance sample count must be at least 1, got %d", p.SampleCount)
	}
	return nil
}

// PathTransmittance returns the fraction of light, per channel, that survives
// the straight path from a to b.
//
// The path is split into params.SampleCount equal pieces and density is taken
// at the middle of each.  A zero-length path transmits everything.
func PathTransmittance(a, b vec3.T, pp *planet.Properties, params Params) vec3.T {
	path := vec3.SubVV(b, a)
	pathDelta := vec3.DivVS(path, float64(params.SampleCount))
	pathDeltaLength := pathDelta.Norm()
	if pathDeltaLength == 0 {
		return vec3.T{1, 1, 1}
	}

	rayleighPathDensity := 0.0
	miePathDensity := 0.0

	firstPoint := vec3.AddVV(a, vec3.DivVS(pathDelta, 2))
	for i := 0; i < params.SampleCount; i++ {
		pathPoint := vec3.AddVV(firstPoint, vec3.MulVS(pathDelta, float64(i)))
		pathPointRadius := pathPoint.Norm()

		rayleighPathDensity += pp.RayleighDensityRadius(pathPointRadius)
		miePathDensity += pp.MieDensityRadius(pathPointRadius)
	}

	opticalDepth := vec3.AddVV(
		vec3.MulVS(pp.RayleighExtinctionCoef(), rayleighPathDensity),
		vec3.MulVS(pp.MieExtinctionCoef(), miePathDensity),
	)

	return vec3.Exp(vec3.MulVS(opticalDepth, -pathDeltaLength))
}
