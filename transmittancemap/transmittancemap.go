// Package transmittancemap builds the 1D transmittance table, indexed by the
// cosine of the view zenith angle as seen from just above the ground.
package transmittancemap

import (
	"context"
	"fmt"

	"skylut/lutbuild"
	"skylut/planet"
	"skylut/ray"
	"skylut/texture"
	"skylut/transmittance"
	"skylut/vmath/vec3"
)

// ObserverHeightFraction places the observer at this fraction of the
// atmosphere height above the ground.
const ObserverHeightFraction = 0.01

// UToZenithCos maps the table axis to the view zenith cosine.  The table only
// covers upward directions: u in [0, 1] is the cosine itself.
func UToZenithCos(u float64) float64 {
	return u
}

func ZenithCosToU(zenithCos float64) float64 {
	return zenithCos
}

type Map struct {
	pp     *planet.Properties
	params transmittance.Params
	tex    *texture.Table1D[vec3.T]

	opts lutbuild.Options
	life lutbuild.Lifecycle
}

func New(resolution int, pp *planet.Properties, params transmittance.Params, opts ...lutbuild.Opt) (*Map, error) {
	if pp == nil {
		return nil, fmt.Errorf("planet properties are required")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	tex, err := texture.New1D[vec3.T](resolution)
	if err != nil {
		return nil, fmt.Errorf("while allocating transmittance table: %w", err)
	}

	return &Map{
		pp:     pp,
		params: params,
		tex:    tex,
		opts:   lutbuild.NewOptions(opts...),
	}, nil
}

// Build fills every cell of the table.  It may only be called once.
func (m *Map) Build(ctx context.Context) error {
	if err := m.life.Begin(); err != nil {
		return err
	}

	err := lutbuild.Cells(ctx, "transmittance", m.tex.URes(), m.opts, func(i int) error {
		zenithCos := UToZenithCos(m.tex.IndexToU(i))
		v, err := m.CalculateZenithCos(zenithCos)
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

// CalculateZenithCos integrates transmittance from the observer toward the
// direction with the given zenith cosine, up to the ground or the top of the
// atmosphere.
func (m *Map) CalculateZenithCos(zenithCos float64) (vec3.T, error) {
	return m.CalculateDirection(vec3.FromZenithCos(zenithCos))
}

func (m *Map) CalculateDirection(dir vec3.T) (vec3.T, error) {
	pathEnter := m.pp.ObserverAt(ObserverHeightFraction)

	pathExit, err := ray.PathEnd(pathEnter, dir, m.pp.PlanetRadius(), m.pp.AtmosphereRadius())
	if err != nil {
		return vec3.T{}, err
	}

	return transmittance.PathTransmittance(pathEnter, pathExit, m.pp, m.params), nil
}
