// Package scattering integrates single-scattered sunlight along a view path.
package scattering

import (
	"fmt"

	"skylut/planet"
	"skylut/ray"
	"skylut/transmittance"
	"skylut/vmath/vec3"
)

// Params controls the view-path integral.
type Params struct {
	SampleCount int
}

func DefaultParams() Params {
	return Params{SampleCount: 512}
}

func (p Params) Validate() error {
	if p.SampleCount < 1 {
		return fmt.Errorf("scattering sample count must be at least 1, got %d", p.SampleCount)
	}
	return nil
}

// PathScattering returns the radiance scattered once toward a by the
// atmosphere between a and b, for sunlight arriving from sunDir (pointing
// toward the sun).
//
// Samples whose sun ray hits the planet are in shadow and contribute nothing.
// An unshadowed sun ray that never leaves the atmosphere shell means the
// caller passed a point outside the shell; that is reported as a
// *ray.GeometryError.
func PathScattering(a, b, sunDir vec3.T, pp *planet.Properties, tParams transmittance.Params, sParams Params) (vec3.T, error) {
	path := vec3.SubVV(b, a)
	pathDeltaVector := vec3.DivVS(path, float64(sParams.SampleCount))
	pathDelta := pathDeltaVector.Norm()
	if pathDelta == 0 {
		return vec3.T{}, nil
	}
	firstViewPathPoint := vec3.AddVV(a, vec3.DivVS(pathDeltaVector, 2))

	viewSunCos := vec3.AngleCos(path, sunDir)

	rayleighScattering := vec3.T{}
	mieScattering := vec3.T{}
	for i := 0; i < sParams.SampleCount; i++ {
		viewPathPoint := vec3.AddVV(firstViewPathPoint, vec3.MulVS(pathDeltaVector, float64(i)))

		if _, blocked := ray.IntersectCircle(viewPathPoint, sunDir, pp.PlanetRadius()); blocked {
			continue
		}

		sunPathExit, ok := ray.IntersectCircle(viewPathPoint, sunDir, pp.AtmosphereRadius())
		if !ok {
			return vec3.T{}, ray.NewGeometryError(ray.CauseSunRayNoExit, viewPathPoint, sunDir)
		}

		transmittanceToViewEnter := transmittance.PathTransmittance(viewPathPoint, a, pp, tParams)
		transmittanceToSunExit := transmittance.PathTransmittance(viewPathPoint, sunPathExit, pp, tParams)

		lightPathTransmittance := vec3.MulVV(transmittanceToSunExit, transmittanceToViewEnter)
		pointRadius := viewPathPoint.Norm()

		rayleighScattering = vec3.AddVV(rayleighScattering, vec3.MulVS(lightPathTransmittance, pp.RayleighDensityRadius(pointRadius)))
		mieScattering = vec3.AddVV(mieScattering, vec3.MulVS(lightPathTransmittance, pp.MieDensityRadius(pointRadius)))
	}

	scattering := vec3.AddVV(
		vec3.MulVV(vec3.MulVS(rayleighScattering, pp.RayleighPhaseCos(viewSunCos)), pp.RayleighScatteringCoef()),
		vec3.MulVV(vec3.MulVS(mieScattering, pp.MiePhaseCos(viewSunCos)), pp.MieScatteringCoef()),
	)

	return vec3.MulVS(scattering, pathDelta), nil
}
