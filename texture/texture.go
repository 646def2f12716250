// Package texture stores regularly sampled 1D, 2D and 3D tables and samples
// them with multilinear interpolation.
//
// Cells follow the cell-center convention: index i along an axis of
// resolution n sits at coordinate (i + 0.5) / n, so no cell lies on the 0 or
// 1 boundary.  Storage is one dense slice per table, row-major within a depth
// slice and depth-major outward, which is the order exporters walk.
package texture

import (
	"fmt"
	"math"
)

// Value is anything a table can interpolate.
type Value[T any] interface {
	Lerp(b T, t float64) T
}

// Scalar is a single-channel table value.
type Scalar float64

func (a Scalar) Lerp(b Scalar, t float64) Scalar {
	return Scalar(float64(a)*(1-t) + float64(b)*t)
}

// Grid is read-only cell access shared by every table dimensionality.  Unused
// axes report resolution 1 and take index 0.
type Grid[T any] interface {
	Dims() (u, v, w int)
	Cell(i, j, k int) T
}

// IndexToCoord maps a cell index to the coordinate of its center.
func IndexToCoord(index, resolution int) float64 {
	return (float64(index) + 0.5) / float64(resolution)
}

// CoordToIndex is the inverse of IndexToCoord, before rounding.
func CoordToIndex(coord float64, resolution int) float64 {
	return coord*float64(resolution) - 0.5
}

// snapULPs bounds the rounding error of CoordToIndex(IndexToCoord(i)), in
// units in the last place of the resolution.
const snapULPs = 8

// locate finds the lower interpolation index and the blend weight toward
// the next one.  last reports that i0 needs no blending, either because it is
// at an end of the axis or because coord is its cell center up to rounding.
func locate(coord float64, resolution int) (i0 int, t float64, last bool) {
	d := CoordToIndex(coord, resolution)
	if d <= 0 || math.IsNaN(d) {
		return 0, 0, true
	}
	if d >= float64(resolution-1) {
		return resolution - 1, 0, true
	}
	n := float64(resolution)
	if r := math.Round(d); math.Abs(d-r) <= snapULPs*(math.Nextafter(n, math.Inf(1))-n) {
		return int(r), 0, true
	}
	i0 = int(d)
	return i0, d - float64(i0), false
}

func checkResolution(axis string, resolution int) error {
	if resolution < 1 {
		return fmt.Errorf("texture %s resolution must be at least 1, got %d", axis, resolution)
	}
	return nil
}
