package main

import (
	"testing"

	"skylut/vmath/vec3"

	"github.com/google/go-cmp/cmp"
)

func TestMarsPreset(t *testing.T) {
	cmd := cmdBuild
	defer func() { preset = "" }()

	if err := cmd.Flags().Parse([]string{"--preset=mars", "--mie-asymmetry=0.7", "--planet-radius=3390"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := applyPreset(cmd); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	pp, err := planetFromFlags()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Explicit flags beat the preset.
	if got, want := pp.PlanetRadius(), 3390.0; got != want {
		t.Errorf("Bad planet radius; got %v, want %v", got, want)
	}
	if got, want := pp.AtmosphereHeight(), 50.0; got != want {
		t.Errorf("Bad atmosphere height; got %v, want %v", got, want)
	}
	if got, want := pp.RayleighScaleHeight(), 11.0; got != want {
		t.Errorf("Bad Rayleigh scale height; got %v, want %v", got, want)
	}
	if got, want := pp.MieScaleHeight(), 2.0; got != want {
		t.Errorf("Bad Mie scale height; got %v, want %v", got, want)
	}
	if got, want := pp.MieAsymmetry(), 0.7; got != want {
		t.Errorf("Bad Mie asymmetry; got %v, want %v", got, want)
	}
	if diff := cmp.Diff(pp.RayleighScatteringCoef(), vec3.T{0.0331, 0.0135, 0.0058}); diff != "" {
		t.Errorf("Bad Rayleigh scattering coefficient; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(pp.RayleighExtinctionCoef(), vec3.T{0.0331, 0.0135, 0.0058}); diff != "" {
		t.Errorf("Bad Rayleigh extinction coefficient; diff (-got +want)\n%s", diff)
	}
}

func TestVecFromFlag(t *testing.T) {
	if _, err := vecFromFlag("mie-scattering", []float64{1, 2}); err == nil {
		t.Errorf("Two values: got nil error, want an error")
	}
	got, err := vecFromFlag("mie-scattering", []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if diff := cmp.Diff(got, vec3.T{1, 2, 3}); diff != "" {
		t.Errorf("Bad vector; diff (-got +want)\n%s", diff)
	}
}

func TestSampleIndices(t *testing.T) {
	testCases := []struct {
		total, n int
		want     []int
	}{
		{10, 0, nil},
		{0, 4, nil},
		{10, 1, []int{0}},
		{10, 2, []int{0, 9}},
		{10, 4, []int{0, 3, 6, 9}},
		{3, 8, []int{0, 1, 2}},
	}
	for _, tc := range testCases {
		if diff := cmp.Diff(sampleIndices(tc.total, tc.n), tc.want); diff != "" {
			t.Errorf("sampleIndices(%d, %d); diff (-got +want)\n%s", tc.total, tc.n, diff)
		}
	}
}
