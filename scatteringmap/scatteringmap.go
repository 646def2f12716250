// Package scatteringmap builds the 2D single-scattering table, indexed by
// view zenith cosine (u) and sun zenith cosine (v) for an observer near the
// top of the atmosphere.
//
// The sun azimuth relative to the view direction is fixed at zero; the table
// does not capture azimuthal variation.
package scatteringmap

import (
	"context"
	"fmt"

	"skylut/lutbuild"
	"skylut/planet"
	"skylut/ray"
	"skylut/scattering"
	"skylut/texture"
	"skylut/transmittance"
	"skylut/vmath/vec3"
)

const ObserverHeightFraction = 0.95

type Map struct {
	pp      *planet.Properties
	tParams transmittance.Params
	sParams scattering.Params

	viewMapping Mapping
	sunMapping  Mapping

	tex *texture.Table2D[vec3.T]

	opts lutbuild.Options
	life lutbuild.Lifecycle
}

func New(
	viewZenithCosResolution, sunZenithCosResolution int,
	pp *planet.Properties,
	tParams transmittance.Params,
	sParams scattering.Params,
	viewMapping, sunMapping Mapping,
	opts ...lutbuild.Opt,
) (*Map, error) {
	if pp == nil {
		return nil, fmt.Errorf("planet properties are required")
	}
	if err := tParams.Validate(); err != nil {
		return nil, err
	}
	if err := sParams.Validate(); err != nil {
		return nil, err
	}
	if !viewMapping.valid() {
		return nil, fmt.Errorf("bad view zenith mapping %v", viewMapping)
	}
	if !sunMapping.valid() {
		return nil, fmt.Errorf("bad sun zenith mapping %v", sunMapping)
	}

	tex, err := texture.New2D[vec3.T](viewZenithCosResolution, sunZenithCosResolution)
	if err != nil {
		return nil, fmt.Errorf("while allocating scattering table: %w", err)
	}

	return &Map{
		pp:          pp,
		tParams:     tParams,
		sParams:     sParams,
		viewMapping: viewMapping,
		sunMapping:  sunMapping,
		tex:         tex,
		opts:        lutbuild.NewOptions(opts...),
	}, nil
}

func (m *Map) ViewMapping() Mapping { return m.viewMapping }

func (m *Map) SunMapping() Mapping { return m.sunMapping }

// Build fills every cell of the table.  It may only be called once.
func (m *Map) Build(ctx context.Context) error {
	if err := m.life.Begin(); err != nil {
		return err
	}

	uRes := m.tex.URes()
	err := lutbuild.Cells(ctx, "scattering", uRes*m.tex.VRes(), m.opts, func(c int) error {
		i, j := c%uRes, c/uRes

		sunZenithCos := VToSunZenithCos(m.sunMapping, m.tex.IndexToV(j))
		viewZenithCos := UToViewZenithCos(m.viewMapping, m.tex.IndexToU(i))

		v, err := m.Calculate(viewZenithCos, sunZenithCos)
		if err != nil {
			return err
		}
		m.tex.Set(i, j, v)
		return nil
	})

	m.life.Finish(err)
	return err
}

func (m *Map) Texture() (*texture.Table2D[vec3.T], error) {
	if err := m.life.Filled(); err != nil {
		return nil, err
	}
	return m.tex, nil
}

// Calculate integrates single scattering seen by the observer looking along
// the view zenith cosine, with the sun at the sun zenith cosine in the same
// vertical plane.
func (m *Map) Calculate(viewZenithCos, sunZenithCos float64) (vec3.T, error) {
	viewDir := vec3.FromZenithCos(viewZenithCos)
	sunDir := vec3.FromZenithCos(sunZenithCos)

	viewPathEnter := m.pp.ObserverAt(ObserverHeightFraction)
	viewPathExit, err := ray.PathEnd(viewPathEnter, viewDir, m.pp.PlanetRadius(), m.pp.AtmosphereRadius())
	if err != nil {
		return vec3.T{}, err
	}

	return scattering.PathScattering(viewPathEnter, viewPathExit, sunDir, m.pp, m.tParams, m.sParams)
}
