package planet

import "math"

func (p *Properties) scaleHeight(s Species) float64 {
	if s == Mie {
		return p.mieScaleHeight
	}
	return p.rayleighScaleHeight
}

// DensityAtAltitude is the relative density of species s at the given
// altitude above the ground: 1 at the ground, decaying exponentially with the
// species' scale height.
//
// Above the top of the atmosphere shell the density is exactly 0.  Below the
// ground the exponential is returned unclamped.
func (p *Properties) DensityAtAltitude(s Species, altitude float64) float64 {
	if altitude > p.atmosphereHeight {
		return 0
	}
	return math.Exp(-altitude / p.scaleHeight(s))
}

// DensityAtRadius is DensityAtAltitude for a distance from the planet center.
func (p *Properties) DensityAtRadius(s Species, radius float64) float64 {
	return p.DensityAtAltitude(s, radius-p.planetRadius)
}

func (p *Properties) RayleighDensityRadius(radius float64) float64 {
	return p.DensityAtRadius(Rayleigh, radius)
}

func (p *Properties) MieDensityRadius(radius float64) float64 {
	return p.DensityAtRadius(Mie, radius)
}
