package transmittancemap

import (
	"context"
	"errors"
	"testing"

	"skylut/lutbuild"
	"skylut/parallel"
	"skylut/planet"
	"skylut/transmittance"
	"skylut/vmath/vec3"

	"github.com/google/go-cmp/cmp"
)

func mustEarth(t *testing.T) *planet.Properties {
	t.Helper()
	pp, err := planet.New()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return pp
}

func TestZenithBrighterThanHorizon(t *testing.T) {
	m, err := New(16, mustEarth(t), transmittance.DefaultParams())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	up, err := m.CalculateZenithCos(1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	horizon, err := m.CalculateZenithCos(0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for c := range up {
		if !(up[c] > 0.7 && up[c] <= 1) {
			t.Errorf("Channel %d of zenith transmittance not near 1: %v", c, up)
		}
		if !(up[c] > horizon[c]) {
			t.Errorf("Channel %d: zenith %v not above horizon %v", c, up[c], horizon[c])
		}
	}
	if up[0] < 0.95 {
		t.Errorf("Red zenith transmittance too low: %v", up[0])
	}
}

func TestBuild(t *testing.T) {
	pp := mustEarth(t)
	params := transmittance.Params{SampleCount: 64}

	var lastDone, lastTotal int
	m, err := New(32, pp, params,
		lutbuild.WithRunner(parallel.Serial{}),
		lutbuild.WithProgress(func(done, total int) {
			lastDone, lastTotal = done, total
		}),
	)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := m.Texture(); !errors.Is(err, lutbuild.ErrNotBuilt) {
		t.Errorf("Texture before Build; got %v, want %v", err, lutbuild.ErrNotBuilt)
	}

	if err := m.Build(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if lastDone != 32 || lastTotal != 32 {
		t.Errorf("Bad final progress; got %d/%d, want 32/32", lastDone, lastTotal)
	}

	tex, err := m.Texture()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for i := 0; i < tex.URes(); i++ {
		want, err := m.CalculateZenithCos(UToZenithCos(tex.IndexToU(i)))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if diff := cmp.Diff(tex.At(i), want); diff != "" {
			t.Errorf("Cell %d differs from direct evaluation; diff (-got +want)\n%s", i, diff)
		}
	}

	// Upward cells only grow brighter toward the zenith.
	for i := 1; i < tex.URes(); i++ {
		if tex.At(i)[2] < tex.At(i - 1)[2] {
			t.Errorf("Blue transmittance decreased from cell %d to %d", i-1, i)
		}
	}

	if err := m.Build(context.Background()); !errors.Is(err, lutbuild.ErrAlreadyBuilt) {
		t.Errorf("Second Build; got %v, want %v", err, lutbuild.ErrAlreadyBuilt)
	}
}

func TestSerialAndPoolAgree(t *testing.T) {
	pp := mustEarth(t)
	params := transmittance.Params{SampleCount: 64}

	build := func(r parallel.Runner) []vec3.T {
		m, err := New(64, pp, params, lutbuild.WithRunner(r))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if err := m.Build(context.Background()); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		tex, err := m.Texture()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		var cells []vec3.T
		for i := 0; i < tex.URes(); i++ {
			cells = append(cells, tex.At(i))
		}
		return cells
	}

	if diff := cmp.Diff(build(parallel.Pool{Workers: 8}), build(parallel.Serial{})); diff != "" {
		t.Errorf("Pool and Serial builds differ; diff (-got +want)\n%s", diff)
	}
}

func TestNewRejectsBadConfiguration(t *testing.T) {
	pp := mustEarth(t)
	if _, err := New(0, pp, transmittance.DefaultParams()); err == nil {
		t.Errorf("Zero resolution: got nil error, want an error")
	}
	if _, err := New(8, pp, transmittance.Params{}); err == nil {
		t.Errorf("Zero samples: got nil error, want an error")
	}
	if _, err := New(8, nil, transmittance.DefaultParams()); err == nil {
		t.Errorf("Nil planet: got nil error, want an error")
	}
}

func TestFailedBuildLeavesNoTexture(t *testing.T) {
	m, err := New(8, mustEarth(t), transmittance.DefaultParams(), lutbuild.WithRunner(parallel.Serial{}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Build(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Bad error; got %v, want %v", err, context.Canceled)
	}
	if _, err := m.Texture(); !errors.Is(err, lutbuild.ErrNotBuilt) {
		t.Errorf("Texture after failed Build; got %v, want %v", err, lutbuild.ErrNotBuilt)
	}
}
