package lutexport

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"skylut/texture"
	"skylut/vmath/vec3"

	"github.com/lucasb-eyer/go-colorful"
)

// previewSize lays depth slices out vertically.
func previewSize(g texture.Grid[vec3.T]) (width, height int) {
	u, v, w := g.Dims()
	return u, v * w
}

func toneMap(x, multiplier float64) uint8 {
	n := int(x * multiplier * 255)
	if n > 255 {
		return 255
	}
	if n < 0 {
		return 0
	}
	return uint8(n)
}

// WritePPM writes a binary PPM preview.  Each channel is scaled by multiplier
// and clamped to 255, with no gamma applied.
func WritePPM(w io.Writer, g texture.Grid[vec3.T], multiplier float64) error {
	width, height := previewSize(g)

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", width, height); err != nil {
		return fmt.Errorf("while writing PPM header: %w", err)
	}

	err := forEachCell(g, func(c vec3.T) error {
		_, err := bw.Write([]byte{
			toneMap(c[0], multiplier),
			toneMap(c[1], multiplier),
			toneMap(c[2], multiplier),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("while writing PPM pixels: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while flushing PPM: %w", err)
	}
	return nil
}

// PreviewImage scales cells by multiplier, treats the result as linear RGB
// and encodes it to 8-bit sRGB.
func PreviewImage(g texture.Grid[vec3.T], multiplier float64) *image.RGBA {
	width, height := previewSize(g)
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	x, y := 0, 0
	forEachCell(g, func(c vec3.T) error {
		col := colorful.LinearRgb(c[0]*multiplier, c[1]*multiplier, c[2]*multiplier).Clamped()
		r, gr, b := col.RGB255()
		img.SetRGBA(x, y, color.RGBA{r, gr, b, 255})

		x++
		if x == width {
			x = 0
			y++
		}
		return nil
	})

	return img
}

func WritePNG(w io.Writer, g texture.Grid[vec3.T], multiplier float64) error {
	if err := png.Encode(w, PreviewImage(g, multiplier)); err != nil {
		return fmt.Errorf("while encoding PNG: %w", err)
	}
	return nil
}
