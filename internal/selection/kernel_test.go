package selection

import (
	"testing"

	"github.com/banshee-data/pointselect/internal/testutil"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var vp800x600 = Viewport{Width: 800, Height: 600}

func identityRequest(points []float32, region Region) *Request {
	return &Request{
		Points:   points,
		Model:    testutil.IdentityMatrix(),
		View:     testutil.IdentityMatrix(),
		Proj:     testutil.IdentityMatrix(),
		Viewport: vp800x600,
		Region:   region,
	}
}

func TestProjectToScreen_Identity(t *testing.T) {
	t.Parallel()

	sx, sy, ok := ProjectToScreen(mgl32.Ident4(), 0, 0, 0, vp800x600)
	require.True(t, ok)
	assert.Equal(t, float32(400), sx)
	assert.Equal(t, float32(300), sy)

	// (x, y, 0) maps to ((x*0.5+0.5)*W, (1-(y*0.5+0.5))*H).
	sx, sy, ok = ProjectToScreen(mgl32.Ident4(), -0.5, 0.5, 0, vp800x600)
	require.True(t, ok)
	assert.Equal(t, float32(200), sx)
	assert.Equal(t, float32(150), sy)
}

func TestProjectToScreen_Exclusions(t *testing.T) {
	t.Parallel()

	t.Run("w is zero", func(t *testing.T) {
		// w = z for this projection.
		proj := mgl32.Ident4()
		proj[11], proj[15] = 1, 0
		_, _, ok := ProjectToScreen(proj, 0, 0, 0, vp800x600)
		assert.False(t, ok)
	})

	t.Run("depth beyond far plane", func(t *testing.T) {
		_, _, ok := ProjectToScreen(mgl32.Ident4(), 0, 0, 1.5, vp800x600)
		assert.False(t, ok)
	})

	t.Run("depth before near plane", func(t *testing.T) {
		_, _, ok := ProjectToScreen(mgl32.Ident4(), 0, 0, -1.5, vp800x600)
		assert.False(t, ok)
	})

	t.Run("depth range is inclusive", func(t *testing.T) {
		_, _, ok := ProjectToScreen(mgl32.Ident4(), 0, 0, 1, vp800x600)
		assert.True(t, ok)
		_, _, ok = ProjectToScreen(mgl32.Ident4(), 0, 0, -1, vp800x600)
		assert.True(t, ok)
	})
}

func TestSelect_Rectangle(t *testing.T) {
	t.Parallel()

	points := testutil.PointsAtScreen(800, 600,
		[2]float32{200, 200}, // inside
		[2]float32{50, 50},   // outside
		[2]float32{100, 300}, // on the corner, inclusive
		[2]float32{301, 200}, // just right of the rectangle
	)
	want := Mask{1, 0, 1, 0}

	corners := []struct {
		name           string
		x0, y0, x1, y1 float32
	}{
		{"min-max", 100, 100, 300, 300},
		{"max-min", 300, 300, 100, 100},
		{"mixed", 100, 300, 300, 100},
		{"mixed reversed", 300, 100, 100, 300},
	}
	for _, c := range corners {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			mask, err := identityRequest(points, RectRegion(c.x0, c.y0, c.x1, c.y1)).Select()
			require.NoError(t, err)
			if diff := cmp.Diff(want, mask); diff != "" {
				t.Errorf("mask mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSelect_PolygonTriangle(t *testing.T) {
	t.Parallel()

	region, err := PolygonRegion([]Point2{{0, 0}, {400, 0}, {200, 400}})
	require.NoError(t, err)

	points := testutil.PointsAtScreen(800, 600,
		[2]float32{200, 100}, // inside
		[2]float32{10, 300},  // left of the triangle at this height
		[2]float32{500, 50},  // right of the triangle
		[2]float32{10, 10},   // inside: the top edge spans x in [5, 395] at y=10
	)

	mask, err := identityRequest(points, region).Select()
	require.NoError(t, err)
	if diff := cmp.Diff(Mask{1, 0, 0, 1}, mask); diff != "" {
		t.Errorf("mask mismatch (-want +got):\n%s", diff)
	}
}

func TestSelect_DepthClipping(t *testing.T) {
	t.Parallel()

	region := RectRegion(0, 0, 800, 600)

	t.Run("identity", func(t *testing.T) {
		points := []float32{
			0, 0, 0,
			0, 0, 2,
			0, 0, -2,
			0, 0, 1,
		}
		mask, err := identityRequest(points, region).Select()
		require.NoError(t, err)
		assert.Equal(t, Mask{1, 0, 0, 1}, mask)
	})

	t.Run("behind perspective camera", func(t *testing.T) {
		view := LookAt(Vec3{0, 0, 5}, Vec3{0, 0, 0}, Vec3{0, 1, 0})
		proj := Perspective(60*3.14159265/180, 800.0/600.0, 0.1, 100)
		model := mgl32.Ident4()

		points := []float32{
			0, 0, 0, // in front of the camera
			0, 0, 10, // behind the camera, on the same line of sight
			0, 0, -200, // beyond the far plane
		}
		mask, err := Select(points, model[:], view[:], proj[:], vp800x600, region)
		require.NoError(t, err)
		assert.Equal(t, Mask{1, 0, 0}, mask)
	})
}

func TestSelect_WZeroExcluded(t *testing.T) {
	t.Parallel()

	proj := testutil.IdentityMatrix()
	proj[11], proj[15] = 1, 0 // w = z

	req := identityRequest([]float32{
		0, 0, 0, // w == 0
		0, 0, 1, // w == 1, projects to the viewport centre
	}, RectRegion(0, 0, 800, 600))
	req.Proj = proj

	mask, err := req.Select()
	require.NoError(t, err)
	assert.Equal(t, Mask{0, 1}, mask)
}

func TestSelect_ComposesModelViewProjectionInOrder(t *testing.T) {
	t.Parallel()

	// Scale after translate moves the origin to x=0.5 (screen x=600).
	// The opposite order would leave it at x=1 (screen x=800).
	model := mgl32.Translate3D(1, 0, 0)
	view := mgl32.Scale3D(0.5, 0.5, 0.5)
	proj := mgl32.Ident4()

	mask, err := Select([]float32{0, 0, 0}, model[:], view[:], proj[:], vp800x600, RectRegion(590, 290, 610, 310))
	require.NoError(t, err)
	assert.Equal(t, Mask{1}, mask)
}

func TestSelect_ZeroViewport(t *testing.T) {
	t.Parallel()

	for _, vp := range []Viewport{{0, 600}, {800, 0}, {0, 0}} {
		req := identityRequest([]float32{0, 0, 0, 0.1, 0.1, 0}, RectRegion(-1e6, -1e6, 1e6, 1e6))
		req.Viewport = vp
		mask, err := req.Select()
		require.NoError(t, err)
		assert.Equal(t, Mask{0, 0}, mask, "viewport %+v", vp)
	}
}

func TestSelect_EmptyPointBuffer(t *testing.T) {
	t.Parallel()

	mask, err := identityRequest(nil, RectRegion(0, 0, 10, 10)).Select()
	require.NoError(t, err)
	require.NotNil(t, mask)
	assert.Empty(t, mask)
}

func TestSelect_Deterministic(t *testing.T) {
	t.Parallel()

	points := randomPoints(5000, 42)
	region, err := PolygonRegionFromSlice([]float32{100, 50, 700, 120, 650, 560, 300, 400, 80, 500})
	require.NoError(t, err)

	first, err := identityRequest(points, region).Select()
	require.NoError(t, err)
	require.Len(t, first, 5000)

	for i := 0; i < 3; i++ {
		again, err := identityRequest(points, region).Select()
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func TestSelect_DoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	points := randomPoints(100, 7)
	before := append([]float32(nil), points...)
	req := identityRequest(points, RectRegion(0, 0, 400, 300))
	model := append([]float32(nil), req.Model...)

	_, err := req.Select()
	require.NoError(t, err)
	assert.Equal(t, before, points)
	assert.Equal(t, model, req.Model)
}

func TestSelect_InvalidInput(t *testing.T) {
	t.Parallel()

	id := testutil.IdentityMatrix()
	tests := []struct {
		name   string
		points []float32
		model  []float32
		region Region
	}{
		{
			name:   "polygon with two vertices",
			points: []float32{0, 0, 0},
			model:  id,
			region: Region{Kind: RegionPolygon, Vertices: []Point2{{0, 0}, {10, 10}}},
		},
		{
			name:   "matrix with 15 elements",
			points: []float32{0, 0, 0},
			model:  id[:15],
			region: RectRegion(0, 0, 1, 1),
		},
		{
			name:   "point buffer not divisible by 3",
			points: []float32{0, 0, 0, 1},
			model:  id,
			region: RectRegion(0, 0, 1, 1),
		},
		{
			name:   "zero region kind",
			points: []float32{0, 0, 0},
			model:  id,
			region: Region{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mask, err := Select(tt.points, tt.model, id, id, vp800x600, tt.region)
			testutil.AssertErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, mask)
		})
	}
}

func TestSelectInto_OverwritesStaleMask(t *testing.T) {
	t.Parallel()

	points := testutil.PointsAtScreen(800, 600, [2]float32{200, 200}, [2]float32{50, 50})
	mask := Mask{1, 1}
	require.NoError(t, identityRequest(points, RectRegion(100, 100, 300, 300)).SelectInto(mask))
	assert.Equal(t, Mask{1, 0}, mask)

	err := identityRequest(points, RectRegion(0, 0, 1, 1)).SelectInto(make(Mask, 3))
	testutil.AssertErrorIs(t, err, ErrInvalidInput)
}

func TestMask(t *testing.T) {
	t.Parallel()

	m := Mask{0, 1, 1, 0, 1}
	assert.Equal(t, 3, m.Count())
	assert.Equal(t, []int{1, 2, 4}, m.Indices())
	assert.True(t, m.Selected(1))
	assert.False(t, m.Selected(0))
	assert.Empty(t, Mask{}.Indices())
}
