// Package irradiancemap builds the 1D ground irradiance table, indexed by sun
// zenith cosine.
//
// Each cell integrates single-scattered skylight over the upper hemisphere
// by calling the scattering integrator directly.  It deliberately does not
// sample the scattering table: hemisphere directions do not line up with that
// table's fixed view parametrization or observer altitude.
package irradiancemap

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"skylut/lutbuild"
	"skylut/planet"
	"skylut/ray"
	"skylut/scattering"
	"skylut/texture"
	"skylut/transmittance"
	"skylut/vmath/vec3"
)

const (
	ObserverHeightFraction = 0.01

	DefaultHemisphereSamples = 512
)

// UToZenithCos maps u in [0, 1] to a sun zenith cosine in [1, -1].
func UToZenithCos(u float64) float64 {
	return 1 - 2*u
}

func ZenithCosToU(zenithCos float64) float64 {
	return (1 - zenithCos) / 2
}

type Map struct {
	pp      *planet.Properties
	tParams transmittance.Params
	sParams scattering.Params

	hemisphereSamples int
	rng               *rand.Rand

	tex *texture.Table1D[vec3.T]

	opts lutbuild.Options
	life lutbuild.Lifecycle
}

// New creates an irradiance builder.  rng supplies the hemisphere directions;
// it is consumed once, on the calling goroutine, at the start of Build.
func New(
	resolution, hemisphereSamples int,
	pp *planet.Properties,
	tParams transmittance.Params,
	sParams scattering.Params,
	rng *rand.Rand,
	opts ...lutbuild.Opt,
) (*Map, error) {
	if pp == nil {
		return nil, fmt.Errorf("planet properties are required")
	}
	if rng == nil {
		return nil, fmt.Errorf("a random source is required")
	}
	if hemisphereSamples < 1 {
		return nil, fmt.Errorf("hemisphere sample count must be at least 1, got %d", hemisphereSamples)
	}
	if err := tParams.Validate(); err != nil {
		return nil, err
	}
	if err := sParams.Validate(); err != nil {
		return nil, err
	}

	tex, err := texture.New1D[vec3.T](resolution)
	if err != nil {
		return nil, fmt.Errorf("while allocating irradiance table: %w", err)
	}

	return &Map{
		pp:                pp,
		tParams:           tParams,
		sParams:           sParams,
		hemisphereSamples: hemisphereSamples,
		rng:               rng,
		tex:               tex,
		opts:              lutbuild.NewOptions(opts...),
	}, nil
}

// hemisphereSample is one direction of the shared sample set, with the point
// where a ray from the observer along it leaves the atmosphere.
type hemisphereSample struct {
	dir  vec3.T
	exit vec3.T
}

// Directions draws n cosine-weighted directions around +y from rng.
func Directions(rng *rand.Rand, n int) []vec3.T {
	result := make([]vec3.T, 0, n)
	for i := 0; i < n; i++ {
		result = append(result, vec3.CosineHemisphere(rng))
	}
	return result
}

func (m *Map) hemisphere() ([]hemisphereSample, error) {
	pathEnter := m.pp.ObserverAt(ObserverHeightFraction)

	dirs := Directions(m.rng, m.hemisphereSamples)
	samples := make([]hemisphereSample, 0, len(dirs))
	for _, dir := range dirs {
		exit, ok := ray.IntersectCircle(pathEnter, dir, m.pp.AtmosphereRadius())
		if !ok {
			return nil, ray.NewGeometryError(ray.CauseViewRayNoExit, pathEnter, dir)
		}
		samples = append(samples, hemisphereSample{dir: dir, exit: exit})
	}
	return samples, nil
}

// Build fills every cell of the table.  It may only be called once.
func (m *Map) Build(ctx context.Context) error {
	if err := m.life.Begin(); err != nil {
		return err
	}

	// The direction set is drawn before fan-out and only read afterwards.
	samples, err := m.hemisphere()
	if err != nil {
		m.life.Finish(err)
		return fmt.Errorf("while sampling hemisphere: %w", err)
	}

	err = lutbuild.Cells(ctx, "irradiance", m.tex.URes(), m.opts, func(i int) error {
		zenithCos := UToZenithCos(m.tex.IndexToU(i))
		v, err := m.calculate(samples, vec3.FromZenithCos(zenithCos))
		if err != nil {
			return err
		}
		m.tex.Set(i, v)
		return nil
	})

	m.life.Finish(err)
	return err
}

func (m *Map) Texture() (*texture.Table1D[vec3.T], error) {
	if err := m.life.Filled(); err != nil {
		return nil, err
	}
	return m.tex, nil
}

// calculate sums skylight over the sample set, in sample order.  Each sample
// carries the same solid angle, 2π/N.
func (m *Map) calculate(samples []hemisphereSample, sunDir vec3.T) (vec3.T, error) {
	pathEnter := m.pp.ObserverAt(ObserverHeightFraction)
	dw := 2 * math.Pi / float64(len(samples))

	result := vec3.T{}
	for _, s := range samples {
		light, err := scattering.PathScattering(pathEnter, s.exit, sunDir, m.pp, m.tParams, m.sParams)
		if err != nil {
			return vec3.T{}, err
		}
		result = vec3.AddVV(result, vec3.MulVS(light, dw))
	}
	return result, nil
}
