package ray

import (
	"fmt"

	"skylut/vmath/vec3"

	"golang.org/x/xerrors"
)

// Causes carried by GeometryError.
const (
	CauseViewRayNoExit = "view ray exits neither planet nor atmosphere shell"
	CauseSunRayNoExit  = "unblocked sun ray does not exit atmosphere shell"
)

// GeometryError reports a ray that was required to leave the planet or the
// atmosphere shell but did not.  It means a caller broke the observer
// altitude or direction convention; it is never a data condition to recover
// from.
type GeometryError struct {
	Cause  string
	Origin vec3.T
	Dir    vec3.T

	frame xerrors.Frame
}

func NewGeometryError(cause string, origin, dir vec3.T) *GeometryError {
	return &GeometryError{
		Cause:  cause,
		Origin: origin,
		Dir:    dir,
		frame:  xerrors.Caller(1),
	}
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("geometry: %s (origin %v, direction %v)", e.Cause, e.Origin, e.Dir)
}

func (e *GeometryError) Format(f fmt.State, c rune) {
	xerrors.FormatError(e, f, c)
}

func (e *GeometryError) FormatError(p xerrors.Printer) error { // implements xerrors.Formatter
	p.Print(e.Error())
	if p.Detail() {
		e.frame.Format(p)
	}
	return nil
}
