// Package planet describes the physical model of a planet and its
// atmosphere: radii, per-channel scattering and extinction coefficients,
// exponential density profiles and the Rayleigh and Mie phase functions.
//
// Properties is immutable once constructed, so a single value can be shared
// by every goroutine of a table build.
package planet

import (
	"fmt"
	"math"

	"skylut/vmath/vec3"
)

type Species int

const (
	Rayleigh Species = iota
	Mie
)

func (s Species) String() string {
	switch s {
	case Rayleigh:
		return "rayleigh"
	case Mie:
		return "mie"
	}
	return fmt.Sprintf("Species(%d)", int(s))
}

// Properties holds the configuration of one planet.  Distances are in
// kilometers and coefficients in inverse kilometers.
type Properties struct {
	planetRadius     float64
	atmosphereHeight float64

	rayleighScatteringCoef vec3.T
	rayleighExtinctionCoef vec3.T

	mieScatteringCoef vec3.T
	mieExtinctionCoef vec3.T

	rayleighScaleHeight float64
	mieScaleHeight      float64

	miePhaseG float64
}

type PropertiesOpt func(*Properties)

func WithPlanetRadius(radius float64) PropertiesOpt {
	return func(p *Properties) {
		p.planetRadius = radius
	}
}

func WithAtmosphereHeight(height float64) PropertiesOpt {
	return func(p *Properties) {
		p.atmosphereHeight = height
	}
}

func WithRayleighScatteringCoef(coef vec3.T) PropertiesOpt {
	return func(p *Properties) {
		p.rayleighScatteringCoef = coef
	}
}

func WithRayleighExtinctionCoef(coef vec3.T) PropertiesOpt {
	return func(p *Properties) {
		p.rayleighExtinctionCoef = coef
	}
}

func WithMieScatteringCoef(coef vec3.T) PropertiesOpt {
	return func(p *Properties) {
		p.mieScatteringCoef = coef
	}
}

func WithMieExtinctionCoef(coef vec3.T) PropertiesOpt {
	return func(p *Properties) {
		p.mieExtinctionCoef = coef
	}
}

func WithRayleighScaleHeight(height float64) PropertiesOpt {
	return func(p *Properties) {
		p.rayleighScaleHeight = height
	}
}

func WithMieScaleHeight(height float64) PropertiesOpt {
	return func(p *Properties) {
		p.mieScaleHeight = height
	}
}

func WithMieAsymmetry(g float64) PropertiesOpt {
	return func(p *Properties) {
		p.miePhaseG = g
	}
}

// Earth returns the default option values, before any overrides.
func Earth() Properties {
	return Properties{
		planetRadius:     6360.0,
		atmosphereHeight: 100.0,

		rayleighScatteringCoef: vec3.T{0.0058, 0.0135, 0.0331},
		rayleighExtinctionCoef: vec3.T{0.0058, 0.0135, 0.0331},

		mieScatteringCoef: vec3.T{0.004, 0.004, 0.004},
		mieExtinctionCoef: vec3.DivVS(vec3.T{0.004, 0.004, 0.004}, 0.9),

		rayleighScaleHeight: 8.0,
		mieScaleHeight:      1.2,

		miePhaseG: 0.8,
	}
}

// New builds Properties from the Earth defaults with opts applied, and
// rejects configurations the integrators cannot work with.
func New(opts ...PropertiesOpt) (*Properties, error) {
	p := Earth()
	for _, opt := range opts {
		opt(&p)
	}

	if err := p.validate(); err != nil {
		return nil, err
	}

	return &p, nil
}

func positive(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be positive and finite, got %v", name, v)
	}
	return nil
}

func nonNegative(name string, v vec3.T) error {
	for i := range v {
		if !(v[i] >= 0) || math.IsInf(v[i], 0) {
			return fmt.Errorf("%s must be non-negative and finite, got %v", name, v)
		}
	}
	return nil
}

func (p *Properties) validate() error {
	if err := positive("planet radius", p.planetRadius); err != nil {
		return err
	}
	if err := positive("atmosphere height", p.atmosphereHeight); err != nil {
		return err
	}
	if err := positive("rayleigh scale height", p.rayleighScaleHeight); err != nil {
		return err
	}
	if err := positive("mie scale height", p.mieScaleHeight); err != nil {
		return err
	}
	if err := nonNegative("rayleigh scattering coefficient", p.rayleighScatteringCoef); err != nil {
		return err
	}
	if err := nonNegative("rayleigh extinction coefficient", p.rayleighExtinctionCoef); err != nil {
		return err
	}
	if err := nonNegative("mie scattering coefficient", p.mieScatteringCoef); err != nil {
		return err
	}
	if err := nonNegative("mie extinction coefficient", p.mieExtinctionCoef); err != nil {
		return err
	}
	if !(p.miePhaseG > -1 && p.miePhaseG < 1) {
		return fmt.Errorf("mie asymmetry must be in (-1, 1), got %v", p.miePhaseG)
	}
	return nil
}

func (p *Properties) PlanetRadius() float64 { return p.planetRadius }

func (p *Properties) AtmosphereHeight() float64 { return p.atmosphereHeight }

func (p *Properties) AtmosphereRadius() float64 { return p.planetRadius + p.atmosphereHeight }

func (p *Properties) RayleighScatteringCoef() vec3.T { return p.rayleighScatteringCoef }

func (p *Properties) RayleighExtinctionCoef() vec3.T { return p.rayleighExtinctionCoef }

func (p *Properties) MieScatteringCoef() vec3.T { return p.mieScatteringCoef }

func (p *Properties) MieExtinctionCoef() vec3.T { return p.mieExtinctionCoef }

func (p *Properties) RayleighScaleHeight() float64 { return p.rayleighScaleHeight }

func (p *Properties) MieScaleHeight() float64 { return p.mieScaleHeight }

func (p *Properties) MieAsymmetry() float64 { return p.miePhaseG }

// ObserverAt returns the point on the +y axis at the given fraction of the
// atmosphere height above the ground.
func (p *Properties) ObserverAt(heightFraction float64) vec3.T {
	return vec3.T{0, p.planetRadius + p.atmosphereHeight*heightFraction, 0}
}

// Fingerprint renders every field at full precision.  Equal fingerprints
// mean equal tables.
func (p *Properties) Fingerprint() string {
	return fmt.Sprintf("R=%x H=%x bRs=%x bRe=%x bMs=%x bMe=%x HR=%x HM=%x g=%x",
		p.planetRadius, p.atmosphereHeight,
		p.rayleighScatteringCoef, p.rayleighExtinctionCoef,
		p.mieScatteringCoef, p.mieExtinctionCoef,
		p.rayleighScaleHeight, p.mieScaleHeight,
		p.miePhaseG)
}
