package vec2

import "math"

type T [2]float64

func (v T) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1])
}

func AddVV(a, b T) T {
	return T{a[0] + b[0], a[1] + b[1]}
}

func SubVV(a, b T) T {
	return T{a[0] - b[0], a[1] - b[1]}
}

func MulVS(a T, b float64) T {
	return T{a[0] * b, a[1] * b}
}

func DivVS(a T, b float64) T {
	return T{a[0] / b, a[1] / b}
}

func IProd(a, b T) float64 {
	return a[0]*b[0] + a[1]*b[1]
}

func Lerp(a, b T, t float64) T {
	return T{
		a[0]*(1-t) + b[0]*t,
		a[1]*(1-t) + b[1]*t,
	}
}

func (a T) Lerp(b T, t float64) T {
	return Lerp(a, b, t)
}
