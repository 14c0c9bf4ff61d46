package selection

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// toDense converts a column-major Mat4 into a row-major gonum matrix.
func toDense(m Mat4) *mat.Dense {
	d := mat.NewDense(4, 4, nil)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			d.Set(r, c, float64(m.At(r, c)))
		}
	}
	return d
}

func TestMat4_MulMatchesReference(t *testing.T) {
	t.Parallel()

	model := mgl32.Translate3D(1.5, -2, 0.25).Mul4(mgl32.Scale3D(2, 3, 0.5))
	view := LookAt(Vec3{3, 4, 10}, Vec3{0, 0.5, 0}, Vec3{0, 1, 0})
	proj := Perspective(0.9, 1.6, 0.5, 80)

	got := ComposeMVP(model, view, proj)

	var mv, want mat.Dense
	mv.Mul(toDense(view), toDense(model))
	want.Mul(toDense(proj), &mv)

	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			assert.InDelta(t, want.At(r, c), float64(got.At(r, c)), 1e-4, "element (%d,%d)", r, c)
		}
	}
}

func TestMat4_Mul4x1MatchesReference(t *testing.T) {
	t.Parallel()

	m := Perspective(1.1, 1.25, 0.1, 50).Mul4(mgl32.Translate3D(0, 0, -4))
	v := Vec4{0.3, -0.7, 1.2, 1}

	got := m.Mul4x1(v)

	var want mat.VecDense
	want.MulVec(toDense(m), mat.NewVecDense(4, []float64{0.3, -0.7, 1.2, 1}))
	for i := 0; i < 4; i++ {
		assert.InDelta(t, want.AtVec(i), float64(got[i]), 1e-5, "component %d", i)
	}
}

func TestMat4_Identity(t *testing.T) {
	t.Parallel()

	m := mgl32.Translate3D(1, 2, 3)
	assert.Equal(t, m, ComposeMVP(m, mgl32.Ident4(), mgl32.Ident4()))
	assert.Equal(t, m, ComposeMVP(mgl32.Ident4(), mgl32.Ident4(), m))
	assert.Equal(t, Vec4{1, 2, 3, 1}, m.Mul4x1(Vec4{0, 0, 0, 1}))
}

func TestMat4FromSlice(t *testing.T) {
	t.Parallel()

	s := make([]float32, 16)
	for i := range s {
		s[i] = float32(i)
	}
	m, err := Mat4FromSlice(s)
	require.NoError(t, err)
	assert.Equal(t, float32(7), m[7])
	// Column-major: row 3, column 1 lives at index 7.
	assert.Equal(t, float32(7), m.At(3, 1))

	for _, n := range []int{0, 15, 17} {
		_, err := Mat4FromSlice(make([]float32, n))
		assert.ErrorIs(t, err, ErrInvalidInput, "len=%d", n)
	}
}

func TestOrthographic_MapsBoxToNDC(t *testing.T) {
	t.Parallel()

	m := Orthographic(-10, 10, -5, 5, 1, 21)

	corner := m.Mul4x1(Vec4{10, 5, -1, 1})
	assert.InDelta(t, 1, corner[0], 1e-6)
	assert.InDelta(t, 1, corner[1], 1e-6)
	assert.InDelta(t, -1, corner[2], 1e-6)

	far := m.Mul4x1(Vec4{-10, -5, -21, 1})
	assert.InDelta(t, -1, far[0], 1e-6)
	assert.InDelta(t, -1, far[1], 1e-6)
	assert.InDelta(t, 1, far[2], 1e-6)
}

func TestPerspective_NearAndFarPlanes(t *testing.T) {
	t.Parallel()

	m := Perspective(math.Pi/2, 1, 1, 10)

	near := m.Mul4x1(Vec4{0, 0, -1, 1})
	assert.InDelta(t, -1, near[2]/near[3], 1e-5)

	far := m.Mul4x1(Vec4{0, 0, -10, 1})
	assert.InDelta(t, 1, far[2]/far[3], 1e-5)
}

func TestLookAt_MovesEyeToOrigin(t *testing.T) {
	t.Parallel()

	eye := Vec3{2, 3, 4}
	v := LookAt(eye, Vec3{0, 0, 0}, Vec3{0, 1, 0})

	p := v.Mul4x1(Vec4{eye[0], eye[1], eye[2], 1})
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 0, p[i], 1e-5)
	}

	// The target sits straight down -Z.
	target := v.Mul4x1(Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, target[0], 1e-5)
	assert.InDelta(t, 0, target[1], 1e-5)
	assert.Less(t, target[2], float32(0))
}

func TestVec3(t *testing.T) {
	t.Parallel()

	a := Vec3{1, 0, 0}
	b := Vec3{0, 1, 0}
	assert.Equal(t, Vec3{0, 0, 1}, a.Cross(b))
	assert.Equal(t, float32(0), a.Dot(b))
	assert.Equal(t, Vec3{1, -1, 0}, a.Sub(b))
	assert.InDelta(t, 1, Vec3{3, 4, 0}.Normalize().Dot(Vec3{3, 4, 0}.Normalize()), 1e-6)
}
