package vec3

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestArithmetic(t *testing.T) {
	a := T{1, 2, 3}
	b := T{4, -5, 6}

	testCases := []struct {
		desc string
		got  T
		want T
	}{
		{"AddVV", AddVV(a, b), T{5, -3, 9}},
		{"SubVV", SubVV(a, b), T{-3, 7, -3}},
		{"MulVV", MulVV(a, b), T{4, -10, 18}},
		{"MulVS", MulVS(a, 2), T{2, 4, 6}},
		{"DivVS", DivVS(a, 2), T{0.5, 1, 1.5}},
		{"Lerp start", Lerp(a, b, 0), a},
		{"Lerp end", a.Lerp(b, 1), b},
		{"Lerp mid", a.Lerp(b, 0.5), T{2.5, -1.5, 4.5}},
	}

	for _, tc := range testCases {
		if diff := cmp.Diff(tc.got, tc.want); diff != "" {
			t.Errorf("Bad %s; diff (-got +want)\n%s", tc.desc, diff)
		}
	}

	if got, want := IProd(a, b), 12.0; got != want {
		t.Errorf("Bad IProd; got %v, want %v", got, want)
	}
	if got, want := (T{3, 4, 0}).Norm(), 5.0; got != want {
		t.Errorf("Bad Norm; got %v, want %v", got, want)
	}
}

func TestAngleCosClamped(t *testing.T) {
	v := T{0.1, 0.7, 0.3}
	if got := AngleCos(v, MulVS(v, 3)); got > 1 {
		t.Errorf("AngleCos of parallel vectors exceeds 1: %v", got)
	}
	if got, want := AngleCos(T{1, 0, 0}, T{0, 2, 0}), 0.0; got != want {
		t.Errorf("Bad AngleCos of perpendicular vectors; got %v, want %v", got, want)
	}
}

func TestFromZenithCos(t *testing.T) {
	opt := cmpopts.EquateApprox(0, 1e-12)
	for _, c := range []float64{-1, -0.5, 0, 0.3, 1} {
		got := FromZenithCos(c)
		if diff := cmp.Diff(got.Norm(), 1.0, opt); diff != "" {
			t.Errorf("FromZenithCos(%v) not unit length; diff (-got +want)\n%s", c, diff)
		}
		if got[1] != c {
			t.Errorf("Bad y component for FromZenithCos(%v); got %v, want %v", c, got[1], c)
		}
		if got[0] < 0 || got[2] != 0 {
			t.Errorf("FromZenithCos(%v) = %v leaves the +x half of the x-y plane", c, got)
		}
	}
}

func TestCosineHemisphere(t *testing.T) {
	rng := rand.New(rand.NewSource(12345))

	const n = 20000
	sumCos := 0.0
	for i := 0; i < n; i++ {
		d := CosineHemisphere(rng)
		if math.Abs(d.Norm()-1) > 1e-12 {
			t.Fatalf("Direction %v is not unit length", d)
		}
		if d[1] < 0 {
			t.Fatalf("Direction %v is below the horizon", d)
		}
		sumCos += d[1]
	}

	// Under a cosine-weighted density, E[cos theta] = 2/3.
	if got, want := sumCos/n, 2.0/3.0; math.Abs(got-want) > 0.01 {
		t.Errorf("Bad mean zenith cosine; got %v, want %v", got, want)
	}
}
