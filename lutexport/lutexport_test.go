package lutexport

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"math"
	"strings"
	"testing"

	"skylut/planet"
	"skylut/texture"
	"skylut/vmath/vec3"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func table2D(t *testing.T, u, v int, fn func(i, j int) vec3.T) *texture.Table2D[vec3.T] {
	t.Helper()
	tab, err := texture.New2D[vec3.T](u, v)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for j := 0; j < v; j++ {
		for i := 0; i < u; i++ {
			tab.Set(i, j, fn(i, j))
		}
	}
	return tab
}

func TestCopyOrder(t *testing.T) {
	tab := table2D(t, 3, 2, func(i, j int) vec3.T { return vec3.T{float64(i), float64(j), 0} })

	im := Copy(tab)
	want := []vec3.T{
		{0, 0, 0}, {1, 0, 0}, {2, 0, 0},
		{0, 1, 0}, {1, 1, 0}, {2, 1, 0},
	}
	if diff := cmp.Diff(im.Cells, want); diff != "" {
		t.Errorf("Bad cell order; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(im.Cell(2, 1, 0), tab.At(2, 1)); diff != "" {
		t.Errorf("Bad Cell; diff (-got +want)\n%s", diff)
	}
}

func TestBinary16Layout(t *testing.T) {
	tab := table2D(t, 2, 1, func(i, j int) vec3.T { return vec3.T{1, 0.5, 0.25} })

	buf := &bytes.Buffer{}
	if err := WriteBinary16(buf, tab); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var words []uint16
	raw := buf.Bytes()
	for i := 0; i+1 < len(raw); i += 2 {
		words = append(words, binary.LittleEndian.Uint16(raw[i:]))
	}

	// Header, then (r, g, b, 0) per cell.  0x3c00 is 1.0 in half precision.
	want := []uint16{
		2, 1, 1,
		0x3c00, 0x3800, 0x3400, 0,
		0x3c00, 0x3800, 0x3400, 0,
	}
	if diff := cmp.Diff(words, want); diff != "" {
		t.Errorf("Bad binary16 layout; diff (-got +want)\n%s", diff)
	}
}

func TestBinary16RoundTrip(t *testing.T) {
	tab, err := texture.New3D[vec3.T](4, 3, 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for k := 0; k < 2; k++ {
		for j := 0; j < 3; j++ {
			for i := 0; i < 4; i++ {
				tab.Set(i, j, k, vec3.T{math.Sin(float64(i + j + k)), 0.01 * float64(j), 3.3 * float64(k)})
			}
		}
	}

	buf := &bytes.Buffer{}
	if err := WriteBinary16(buf, tab); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	got, err := ReadBinary16(buf)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Half precision keeps about three decimal digits.
	if diff := cmp.Diff(got, Copy(tab), cmpopts.EquateApprox(1e-3, 1e-4)); diff != "" {
		t.Errorf("Bad round trip; diff (-got +want)\n%s", diff)
	}
}

func TestReadBinary16Truncated(t *testing.T) {
	tab := table2D(t, 4, 4, func(i, j int) vec3.T { return vec3.T{1, 1, 1} })
	buf := &bytes.Buffer{}
	if err := WriteBinary16(buf, tab); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := ReadBinary16(bytes.NewReader(buf.Bytes()[:buf.Len()-3])); err == nil {
		t.Errorf("Truncated input: got nil error, want an error")
	}
}

func TestRawRoundTripIsExact(t *testing.T) {
	tab := table2D(t, 5, 3, func(i, j int) vec3.T {
		return vec3.T{math.Pi * float64(i), math.Exp(-float64(j)), 1e-300}
	})

	buf := &bytes.Buffer{}
	if err := WriteRaw(buf, tab); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	got, err := ReadRaw(buf)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if diff := cmp.Diff(got, Copy(tab)); diff != "" {
		t.Errorf("Bad round trip; diff (-got +want)\n%s", diff)
	}
}

func TestPPM(t *testing.T) {
	tab := table2D(t, 2, 2, func(i, j int) vec3.T {
		return vec3.T{0.5, float64(i), -1}
	})

	buf := &bytes.Buffer{}
	if err := WritePPM(buf, tab, 1); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	header := "P6\n2 2\n255\n"
	if !strings.HasPrefix(buf.String(), header) {
		t.Fatalf("Bad PPM header in %q", buf.String())
	}
	pixels := buf.Bytes()[len(header):]
	want := []byte{
		127, 0, 0, 127, 255, 0,
		127, 0, 0, 127, 255, 0,
	}
	if diff := cmp.Diff(pixels, want); diff != "" {
		t.Errorf("Bad PPM pixels; diff (-got +want)\n%s", diff)
	}

	buf.Reset()
	if err := WritePPM(buf, tab, 10); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got, want := buf.Bytes()[len(header)], byte(255); got != want {
		t.Errorf("Bad clamped PPM channel; got %v, want %v", got, want)
	}
}

func TestPNG(t *testing.T) {
	tab, err := texture.New3D[vec3.T](3, 2, 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	tab.Set(0, 0, 0, vec3.T{1, 0, 0})
	tab.Set(2, 1, 1, vec3.T{0, 0, 4})

	buf := &bytes.Buffer{}
	if err := WritePNG(buf, tab, 1); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	img, err := png.Decode(buf)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Depth slices stack vertically.
	if got, want := img.Bounds().Size().X, 3; got != want {
		t.Errorf("Bad width; got %d, want %d", got, want)
	}
	if got, want := img.Bounds().Size().Y, 4; got != want {
		t.Errorf("Bad height; got %d, want %d", got, want)
	}

	r, g, b, _ := img.At(0, 0).RGBA()
	if diff := cmp.Diff([]uint32{r >> 8, g >> 8, b >> 8}, []uint32{255, 0, 0}); diff != "" {
		t.Errorf("Bad first pixel; diff (-got +want)\n%s", diff)
	}
	r, g, b, _ = img.At(2, 3).RGBA()
	if diff := cmp.Diff([]uint32{r >> 8, g >> 8, b >> 8}, []uint32{0, 0, 255}); diff != "" {
		t.Errorf("Bad clamped last pixel; diff (-got +want)\n%s", diff)
	}
}

func TestManifest(t *testing.T) {
	pp, err := planet.New()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	m := &Manifest{
		Planet: PlanetFields(pp),
		Tables: []TableEntry{
			{
				Name:   "transmittance",
				Files:  []string{"transmittance.bin", "transmittance.ppm"},
				Width:  512,
				Height: 1,
				Depth:  1,
				Axes:   []string{"u: view zenith cosine"},
				Params: map[string]interface{}{"transmittanceSamples": 512},
			},
		},
	}

	data, err := m.Marshal()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got, err := ReadManifest(data)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	mieExt := pp.MieExtinctionCoef()
	want := map[string]interface{}{
		"planet": map[string]interface{}{
			"planetRadius":           6360.0,
			"atmosphereHeight":       100.0,
			"rayleighScatteringCoef": []interface{}{0.0058, 0.0135, 0.0331},
			"rayleighExtinctionCoef": []interface{}{0.0058, 0.0135, 0.0331},
			"mieScatteringCoef":      []interface{}{0.004, 0.004, 0.004},
			"mieExtinctionCoef":      []interface{}{mieExt[0], mieExt[1], mieExt[2]},
			"rayleighScaleHeight":    8.0,
			"mieScaleHeight":         1.2,
			"mieAsymmetry":           0.8,
		},
		"tables": []interface{}{
			map[string]interface{}{
				"name":   "transmittance",
				"files":  []interface{}{"transmittance.bin", "transmittance.ppm"},
				"width":  512.0,
				"height": 1.0,
				"depth":  1.0,
				"axes":   []interface{}{"u: view zenith cosine"},
				"params": map[string]interface{}{"transmittanceSamples": 512.0},
			},
		},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Bad manifest; diff (-got +want)\n%s", diff)
	}
}
