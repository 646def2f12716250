package lutexport

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"skylut/texture"
	"skylut/vmath/vec3"

	"github.com/x448/float16"
)

type binary16Header struct {
	Width, Height, Depth uint16
}

// WriteBinary16 writes the packed half-float format: a little-endian header
// of three uint16 (width, height, depth), then per cell four IEEE 754 half
// floats (r, g, b, 0).
func WriteBinary16(w io.Writer, g texture.Grid[vec3.T]) error {
	u, v, d := g.Dims()
	if u > math.MaxUint16 || v > math.MaxUint16 || d > math.MaxUint16 {
		return fmt.Errorf("dimensions %dx%dx%d do not fit the 16-bit header", u, v, d)
	}

	bw := bufio.NewWriter(w)

	hdr := binary16Header{uint16(u), uint16(v), uint16(d)}
	if err := binary.Write(bw, binary.LittleEndian, hdr); err != nil {
		return fmt.Errorf("while writing header: %w", err)
	}

	var half [4]uint16
	err := forEachCell(g, func(c vec3.T) error {
		half[0] = float16.Fromfloat32(float32(c[0])).Bits()
		half[1] = float16.Fromfloat32(float32(c[1])).Bits()
		half[2] = float16.Fromfloat32(float32(c[2])).Bits()
		half[3] = 0
		return binary.Write(bw, binary.LittleEndian, half)
	})
	if err != nil {
		return fmt.Errorf("while writing cells: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while flushing: %w", err)
	}
	return nil
}

// ReadBinary16 reads what WriteBinary16 wrote.  The fourth channel is
// dropped.
func ReadBinary16(r io.Reader) (*Image, error) {
	br := bufio.NewReader(r)

	hdr := binary16Header{}
	if err := binary.Read(br, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("while reading header: %w", err)
	}
	if err := checkDims(int(hdr.Width), int(hdr.Height), int(hdr.Depth)); err != nil {
		return nil, fmt.Errorf("while reading header: %w", err)
	}

	im := NewImage(int(hdr.Width), int(hdr.Height), int(hdr.Depth))

	var half [4]uint16
	for i := range im.Cells {
		if err := binary.Read(br, binary.LittleEndian, &half); err != nil {
			return nil, fmt.Errorf("while reading cell %d: %w", i, err)
		}
		im.Cells[i] = vec3.T{
			float64(float16.Frombits(half[0]).Float32()),
			float64(float16.Frombits(half[1]).Float32()),
			float64(float16.Frombits(half[2]).Float32()),
		}
	}

	return im, nil
}
