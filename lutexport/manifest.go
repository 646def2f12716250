package lutexport

import (
	"fmt"

	"skylut/planet"
	"skylut/vmath/vec3"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// TableEntry describes one exported table to its consumers.
type TableEntry struct {
	Name                 string
	Files                []string
	Width, Height, Depth int
	// Axes documents the coordinate convention of each axis, outermost last.
	Axes   []string
	Params map[string]interface{}
}

// Manifest lists the tables produced by one run and the planet they were
// built for.
type Manifest struct {
	Planet map[string]interface{}
	Tables []TableEntry
}

func vecValue(v vec3.T) []interface{} {
	return []interface{}{v[0], v[1], v[2]}
}

// PlanetFields flattens planet properties for a manifest.
func PlanetFields(pp *planet.Properties) map[string]interface{} {
	return map[string]interface{}{
		"planetRadius":           pp.PlanetRadius(),
		"atmosphereHeight":       pp.AtmosphereHeight(),
		"rayleighScatteringCoef": vecValue(pp.RayleighScatteringCoef()),
		"rayleighExtinctionCoef": vecValue(pp.RayleighExtinctionCoef()),
		"mieScatteringCoef":      vecValue(pp.MieScatteringCoef()),
		"mieExtinctionCoef":      vecValue(pp.MieExtinctionCoef()),
		"rayleighScaleHeight":    pp.RayleighScaleHeight(),
		"mieScaleHeight":         pp.MieScaleHeight(),
		"mieAsymmetry":           pp.MieAsymmetry(),
	}
}

func (m *Manifest) asMap() map[string]interface{} {
	tables := []interface{}{}
	for _, t := range m.Tables {
		files := []interface{}{}
		for _, f := range t.Files {
			files = append(files, f)
		}
		axes := []interface{}{}
		for _, a := range t.Axes {
			axes = append(axes, a)
		}
		entry := map[string]interface{}{
			"name":   t.Name,
			"files":  files,
			"width":  t.Width,
			"height": t.Height,
			"depth":  t.Depth,
			"axes":   axes,
		}
		if t.Params != nil {
			entry["params"] = t.Params
		}
		tables = append(tables, entry)
	}

	return map[string]interface{}{
		"planet": m.Planet,
		"tables": tables,
	}
}

// Marshal renders the manifest as indented JSON.
func (m *Manifest) Marshal() ([]byte, error) {
	st, err := structpb.NewStruct(m.asMap())
	if err != nil {
		return nil, fmt.Errorf("while converting manifest: %w", err)
	}

	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("while marshaling manifest: %w", err)
	}
	return data, nil
}

// ReadManifest parses a manifest into generic JSON values.
func ReadManifest(data []byte) (map[string]interface{}, error) {
	st := &structpb.Struct{}
	if err := protojson.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("while unmarshaling manifest: %w", err)
	}
	return st.AsMap(), nil
}
