package ray

import (
	"math"

	"skylut/vmath/vec2"
	"skylut/vmath/vec3"
)

// Ray is a half-line starting at Point.  Slope need not be unit length;
// parametric distances are in multiples of |Slope|.
type Ray struct {
	Point vec3.T
	Slope vec3.T
}

func (r *Ray) Eval(t float64) vec3.T {
	return vec3.T{
		r.Point[0] + t*r.Slope[0],
		r.Point[1] + t*r.Slope[1],
		r.Point[2] + t*r.Slope[2],
	}
}

// nearestRoot solves a*t^2 + b*t + c = 0 and returns the smallest
// non-negative root.
func nearestRoot(a, b, c float64) (float64, bool) {
	if a == 0 || math.IsNaN(a) {
		return 0, false
	}

	d := b*b - 4*a*c
	if d < 0 {
		return 0, false
	}

	d2 := math.Sqrt(d)
	if t1 := (-b - d2) / 2 / a; t1 >= 0 {
		return t1, true
	}
	if t2 := (-b + d2) / 2 / a; t2 >= 0 {
		return t2, true
	}
	return 0, false
}

// IntersectCircle intersects the ray with the circle (sphere, in 3D) of the
// given radius centered at the coordinate origin.
//
// It returns the point at the smallest non-negative parametric distance, or
// false if the ray misses entirely or the circle lies behind it.  A
// zero-length direction never intersects.
func (r *Ray) IntersectCircle(radius float64) (vec3.T, bool) {
	a := vec3.IProd(r.Slope, r.Slope)
	b := 2 * vec3.IProd(r.Point, r.Slope)
	c := vec3.IProd(r.Point, r.Point) - radius*radius

	t, ok := nearestRoot(a, b, c)
	if !ok {
		return vec3.T{}, false
	}
	return r.Eval(t), true
}

// IntersectCircle is shorthand for building a Ray and intersecting it.
func IntersectCircle(origin, dir vec3.T, radius float64) (vec3.T, bool) {
	r := Ray{Point: origin, Slope: dir}
	return r.IntersectCircle(radius)
}

// IntersectCircle2 is the planar version of IntersectCircle.
func IntersectCircle2(origin, dir vec2.T, radius float64) (vec2.T, bool) {
	a := vec2.IProd(dir, dir)
	b := 2 * vec2.IProd(origin, dir)
	c := vec2.IProd(origin, origin) - radius*radius

	t, ok := nearestRoot(a, b, c)
	if !ok {
		return vec2.T{}, false
	}
	return vec2.AddVV(origin, vec2.MulVS(dir, t)), true
}

// PathEnd finds where a view ray starting inside the atmosphere shell stops:
// on the ground if it hits the planet body, otherwise where it leaves the
// shell.  A ray that does neither yields a *GeometryError.
func PathEnd(origin, dir vec3.T, planetRadius, atmosphereRadius float64) (vec3.T, error) {
	if p, ok := IntersectCircle(origin, dir, planetRadius); ok {
		return p, nil
	}
	if p, ok := IntersectCircle(origin, dir, atmosphereRadius); ok {
		return p, nil
	}
	return vec3.T{}, NewGeometryError(CauseViewRayNoExit, origin, dir)
}
