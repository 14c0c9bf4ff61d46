package selection

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Mat4 is a 4x4 matrix in column-major order.
//
// m[4*c + r] is the element in the r'th row and c'th column. Points are
// column vectors, so a point p is transformed as m.Mul4x1(p).
type Mat4 = mgl32.Mat4

// Vec3 is a 3-element float32 vector.
type Vec3 = mgl32.Vec3

// Vec4 is a homogeneous 4-element float32 vector.
type Vec4 = mgl32.Vec4

// Mat4FromSlice copies a 16-element column-major slice into a Mat4.
func Mat4FromSlice(s []float32) (Mat4, error) {
	var m Mat4
	if len(s) != len(m) {
		return m, fmt.Errorf("%w: matrix has %d elements, want 16", ErrInvalidInput, len(s))
	}
	copy(m[:], s)
	return m, nil
}

// ComposeMVP returns proj * (view * model).
func ComposeMVP(model, view, proj Mat4) Mat4 {
	return proj.Mul4(view.Mul4(model))
}
