package lutexport

import (
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"

	"skylut/texture"
	"skylut/vmath/vec3"
)

const rawLayoutVersion = 1

type rawHeader struct {
	LayoutVersion        uint32
	Width, Height, Depth uint32
}

// WriteRaw writes cells at full precision: an uncompressed little-endian
// header followed by the zlib-compressed float64 cells.
func WriteRaw(w io.Writer, g texture.Grid[vec3.T]) error {
	u, v, d := g.Dims()
	hdr := rawHeader{
		LayoutVersion: rawLayoutVersion,
		Width:         uint32(u),
		Height:        uint32(v),
		Depth:         uint32(d),
	}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return fmt.Errorf("while writing header: %w", err)
	}

	zipWriter := zlib.NewWriter(w)

	if err := binary.Write(zipWriter, binary.LittleEndian, Copy(g).Cells); err != nil {
		return fmt.Errorf("while writing cells: %w", err)
	}

	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("while closing zip writer: %w", err)
	}

	return nil
}

func ReadRaw(r io.Reader) (*Image, error) {
	hdr := rawHeader{}
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("while reading header: %w", err)
	}

	if hdr.LayoutVersion != rawLayoutVersion {
		return nil, fmt.Errorf("bad data layout version: %v", hdr.LayoutVersion)
	}
	if err := checkDims(int(hdr.Width), int(hdr.Height), int(hdr.Depth)); err != nil {
		return nil, fmt.Errorf("while reading header: %w", err)
	}

	im := NewImage(int(hdr.Width), int(hdr.Height), int(hdr.Depth))

	zipReader, err := zlib.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("while opening zip reader: %w", err)
	}
	defer zipReader.Close()

	if err := binary.Read(zipReader, binary.LittleEndian, im.Cells); err != nil {
		return nil, fmt.Errorf("while reading cells: %w", err)
	}

	return im, nil
}
