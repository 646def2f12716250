// Package lutexport serializes finished tables: a packed half-float format
// for renderers, 8-bit PPM and PNG previews, a lossless float64 format used
// by the build cache, and a JSON manifest describing a set of tables.
//
// Every writer walks cells row-major within a depth slice, depth slices
// outermost.
package lutexport

import (
	"fmt"

	"skylut/texture"
	"skylut/vmath/vec3"
)

// Image is a decoded table.  It implements texture.Grid.
type Image struct {
	Width, Height, Depth int
	Cells                []vec3.T
}

func NewImage(width, height, depth int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Depth:  depth,
		Cells:  make([]vec3.T, width*height*depth),
	}
}

func (im *Image) Dims() (int, int, int) { return im.Width, im.Height, im.Depth }

func (im *Image) Cell(i, j, k int) vec3.T {
	return im.Cells[(k*im.Height+j)*im.Width+i]
}

// Copy snapshots any grid into an Image.
func Copy(g texture.Grid[vec3.T]) *Image {
	u, v, w := g.Dims()
	im := NewImage(u, v, w)
	idx := 0
	forEachCell(g, func(c vec3.T) error {
		im.Cells[idx] = c
		idx++
		return nil
	})
	return im
}

func forEachCell(g texture.Grid[vec3.T], fn func(c vec3.T) error) error {
	u, v, w := g.Dims()
	for k := 0; k < w; k++ {
		for j := 0; j < v; j++ {
			for i := 0; i < u; i++ {
				if err := fn(g.Cell(i, j, k)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func checkDims(width, height, depth int) error {
	if width < 1 || height < 1 || depth < 1 {
		return fmt.Errorf("bad dimensions %dx%dx%d", width, height, depth)
	}
	return nil
}
