package texture

// Table1D is a 1D table indexed by u.
type Table1D[T Value[T]] struct {
	uRes int
	data []T
}

func New1D[T Value[T]](uRes int) (*Table1D[T], error) {
	if err := checkResolution("u", uRes); err != nil {
		return nil, err
	}
	return &Table1D[T]{
		uRes: uRes,
		data: make([]T, uRes),
	}, nil
}

func (t *Table1D[T]) URes() int { return t.uRes }

func (t *Table1D[T]) IndexToU(i int) float64 { return IndexToCoord(i, t.uRes) }

func (t *Table1D[T]) At(i int) T { return t.data[i] }

func (t *Table1D[T]) Set(i int, v T) { t.data[i] = v }

func (t *Table1D[T]) Sample(u float64) T {
	i0, f, last := locate(u, t.uRes)
	if last {
		return t.data[i0]
	}
	return t.data[i0].Lerp(t.data[i0+1], f)
}

func (t *Table1D[T]) Dims() (int, int, int) { return t.uRes, 1, 1 }

func (t *Table1D[T]) Cell(i, _, _ int) T { return t.data[i] }

// Table2D is a 2D table indexed by (u, v), with v the outer (row) axis.
type Table2D[T Value[T]] struct {
	uRes, vRes int
	data       []T
}

func New2D[T Value[T]](uRes, vRes int) (*Table2D[T], error) {
	if err := checkResolution("u", uRes); err != nil {
		return nil, err
	}
	if err := checkResolution("v", vRes); err != nil {
		return nil, err
	}
	return &Table2D[T]{
		uRes: uRes,
		vRes: vRes,
		data: make([]T, uRes*vRes),
	}, nil
}

func (t *Table2D[T]) URes() int { return t.uRes }

func (t *Table2D[T]) VRes() int { return t.vRes }

func (t *Table2D[T]) IndexToU(i int) float64 { return IndexToCoord(i, t.uRes) }

func (t *Table2D[T]) IndexToV(j int) float64 { return IndexToCoord(j, t.vRes) }

func (t *Table2D[T]) At(i, j int) T { return t.data[j*t.uRes+i] }

func (t *Table2D[T]) Set(i, j int, v T) { t.data[j*t.uRes+i] = v }

func (t *Table2D[T]) sampleRow(j int, u float64) T {
	row := t.data[j*t.uRes : (j+1)*t.uRes]
	i0, f, last := locate(u, t.uRes)
	if last {
		return row[i0]
	}
	return row[i0].Lerp(row[i0+1], f)
}

func (t *Table2D[T]) Sample(u, v float64) T {
	j0, f, last := locate(v, t.vRes)
	if last {
		return t.sampleRow(j0, u)
	}
	return t.sampleRow(j0, u).Lerp(t.sampleRow(j0+1, u), f)
}

func (t *Table2D[T]) Dims() (int, int, int) { return t.uRes, t.vRes, 1 }

func (t *Table2D[T]) Cell(i, j, _ int) T { return t.At(i, j) }

// Table3D is a 3D table indexed by (u, v, w), with w the outermost (depth)
// axis.
type Table3D[T Value[T]] struct {
	uRes, vRes, wRes int
	slices           []*Table2D[T]
	data             []T
}

func New3D[T Value[T]](uRes, vRes, wRes int) (*Table3D[T], error) {
	if err := checkResolution("u", uRes); err != nil {
		return nil, err
	}
	if err := checkResolution("v", vRes); err != nil {
		return nil, err
	}
	if err := checkResolution("w", wRes); err != nil {
		return nil, err
	}

	t := &Table3D[T]{
		uRes: uRes,
		vRes: vRes,
		wRes: wRes,
		data: make([]T, uRes*vRes*wRes),
	}

	// Each depth slice is a view into data, so slices share storage with the
	// flat layout.
	sliceLen := uRes * vRes
	for k := 0; k < wRes; k++ {
		t.slices = append(t.slices, &Table2D[T]{
			uRes: uRes,
			vRes: vRes,
			data: t.data[k*sliceLen : (k+1)*sliceLen : (k+1)*sliceLen],
		})
	}
	return t, nil
}

func (t *Table3D[T]) URes() int { return t.uRes }

func (t *Table3D[T]) VRes() int { return t.vRes }

func (t *Table3D[T]) WRes() int { return t.wRes }

func (t *Table3D[T]) IndexToU(i int) float64 { return IndexToCoord(i, t.uRes) }

func (t *Table3D[T]) IndexToV(j int) float64 { return IndexToCoord(j, t.vRes) }

func (t *Table3D[T]) IndexToW(k int) float64 { return IndexToCoord(k, t.wRes) }

func (t *Table3D[T]) At(i, j, k int) T { return t.slices[k].At(i, j) }

func (t *Table3D[T]) Set(i, j, k int, v T) { t.slices[k].Set(i, j, v) }

// Slice returns depth slice k.  It aliases the table's storage.
func (t *Table3D[T]) Slice(k int) *Table2D[T] { return t.slices[k] }

func (t *Table3D[T]) Sample(u, v, w float64) T {
	k0, f, last := locate(w, t.wRes)
	if last {
		return t.slices[k0].Sample(u, v)
	}
	return t.slices[k0].Sample(u, v).Lerp(t.slices[k0+1].Sample(u, v), f)
}

func (t *Table3D[T]) Dims() (int, int, int) { return t.uRes, t.vRes, t.wRes }

func (t *Table3D[T]) Cell(i, j, k int) T { return t.At(i, j, k) }
