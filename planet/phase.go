package planet

import "math"

// RayleighPhaseCos evaluates the Rayleigh phase function for the cosine of
// the scattering angle.
func (p *Properties) RayleighPhaseCos(cos float64) float64 {
	return 3.0 / 16.0 / math.Pi * (1.0 + cos*cos)
}

func (p *Properties) RayleighPhase(angle float64) float64 {
	return p.RayleighPhaseCos(math.Cos(angle))
}

// MiePhaseCos evaluates the Cornette-Shanks form of the Henyey-Greenstein
// phase function with the configured asymmetry g.
func (p *Properties) MiePhaseCos(cos float64) float64 {
	g := p.miePhaseG
	g2 := g * g
	return 3.0 / 8.0 / math.Pi * (1.0 - g2) * (1.0 + cos*cos) / (2.0 + g2) / math.Pow(1.0+g2-2.0*g*cos, 1.5)
}

func (p *Properties) MiePhase(angle float64) float64 {
	return p.MiePhaseCos(math.Cos(angle))
}
