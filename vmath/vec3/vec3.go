package vec3

import (
	"math"
	"math/rand"
)

// T is a 3-vector.  It doubles as an RGB triple when it holds per-channel
// coefficients or radiance.
type T [3]float64

func (v T) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func Normalize(v T) T {
	l := v.Norm()
	return T{
		v[0] / l,
		v[1] / l,
		v[2] / l,
	}
}

func AddVV(a, b T) T {
	return T{
		a[0] + b[0],
		a[1] + b[1],
		a[2] + b[2],
	}
}

func SubVV(a, b T) T {
	return T{
		a[0] - b[0],
		a[1] - b[1],
		a[2] - b[2],
	}
}

// MulVV is the element-wise product.
func MulVV(a, b T) T {
	return T{
		a[0] * b[0],
		a[1] * b[1],
		a[2] * b[2],
	}
}

func MulVS(a T, b float64) T {
	return T{
		a[0] * b,
		a[1] * b,
		a[2] * b,
	}
}

func DivVS(a T, b float64) T {
	return T{
		a[0] / b,
		a[1] / b,
		a[2] / b,
	}
}

func IProd(a, b T) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// AngleCos returns the cosine of the angle between a and b.  Rounding can push
// the quotient slightly above 1, so it is clamped there.
func AngleCos(a, b T) float64 {
	cos := IProd(a, b) / a.Norm() / b.Norm()
	if cos > 1.0 {
		cos = 1.0
	}
	return cos
}

// Exp applies math.Exp to each element.
func Exp(v T) T {
	return T{
		math.Exp(v[0]),
		math.Exp(v[1]),
		math.Exp(v[2]),
	}
}

func Lerp(a, b T, t float64) T {
	return T{
		a[0]*(1-t) + b[0]*t,
		a[1]*(1-t) + b[1]*t,
		a[2]*(1-t) + b[2]*t,
	}
}

// Lerp lets T be stored in the texture package's tables.
func (a T) Lerp(b T, t float64) T {
	return Lerp(a, b, t)
}

// FromZenithCos builds the unit direction in the x-y plane whose angle from
// +y has the given cosine.
func FromZenithCos(zenithCos float64) T {
	zenithSin := math.Sin(math.Acos(zenithCos))
	return T{zenithSin, zenithCos, 0}
}

// CosineHemisphere draws a direction from the hemisphere around +y, with
// density proportional to the cosine of the zenith angle.
func CosineHemisphere(rng *rand.Rand) T {
	azimuth := 2 * math.Pi * rng.Float64()
	zenith := math.Asin(math.Sqrt(rng.Float64()))

	return T{
		math.Sin(zenith) * math.Cos(azimuth),
		math.Cos(zenith),
		math.Sin(zenith) * math.Sin(azimuth),
	}
}
