package grove

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

// --- Box ---

func TestEmptyBox(t *testing.T) {
	e := EmptyBox()
	assert.True(t, e.IsEmpty())
	assert.Equal(t, mgl64.Vec3{}, e.Center())
	assert.Equal(t, mgl64.Vec3{}, e.Extent())
	assert.True(t, e.Transform(mgl64.Translate3D(1, 2, 3)).IsEmpty())
	assert.Equal(t, "Box(empty)", e.String())

	b := NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	assert.Equal(t, b, e.Union(b))
	assert.Equal(t, b, b.Union(e))
}

func TestBoxUnionAndContains(t *testing.T) {
	a := NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	b := NewBox(mgl64.Vec3{2, -1, 0}, mgl64.Vec3{3, 0, 4})
	u := a.Union(b)
	assert.Equal(t, NewBox(mgl64.Vec3{0, -1, 0}, mgl64.Vec3{3, 1, 4}), u)
	assert.True(t, u.Contains(mgl64.Vec3{3, 1, 4}))
	assert.False(t, u.Contains(mgl64.Vec3{3.1, 0, 0}))
	assert.Equal(t, mgl64.Vec3{1.5, 0, 2}, u.Center())
	assert.Equal(t, mgl64.Vec3{3, 2, 4}, u.Extent())
}

func TestBoxTransformRotated(t *testing.T) {
	b := NewBox(mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{1, 1, 1})
	r := b.Transform(mgl64.HomogRotate3DY(math.Pi / 4))
	assert.InDelta(t, math.Sqrt2, r.Max[0], 1e-9)
	assert.InDelta(t, 1, r.Max[1], 1e-9)
	assert.InDelta(t, -math.Sqrt2, r.Min[2], 1e-9)
}

// --- Mesh ---

func TestMeshBoundingBoxCache(t *testing.T) {
	m := NewMesh([]Vertex{
		{Position: mgl64.Vec3{-1, 0, 2}},
		{Position: mgl64.Vec3{3, 5, -2}},
		{Position: mgl64.Vec3{0, 1, 0}},
	}, []uint16{0, 1, 2})
	assert.Equal(t, NewBox(mgl64.Vec3{-1, 0, -2}, mgl64.Vec3{3, 5, 2}), m.BoundingBox())
	assert.Equal(t, 1, m.NumTriangles())

	m.Vertices[0].Position = mgl64.Vec3{-10, 0, 0}
	assert.Equal(t, -1.0, m.BoundingBox().Min[0], "cached until marked dirty")
	m.MarkDirty()
	assert.Equal(t, -10.0, m.BoundingBox().Min[0])
}

func TestMeshClone(t *testing.T) {
	m := unitBoxMesh()
	c := m.Clone()
	c.Vertices[0].Position = mgl64.Vec3{9, 9, 9}
	c.Indices[0] = 5
	assert.NotEqual(t, c.Vertices[0], m.Vertices[0])
	assert.NotEqual(t, c.Indices[0], m.Indices[0])
}

func TestMeshRelease(t *testing.T) {
	m := unitBoxMesh()
	calls := 0
	m.OnRelease = func(got *Mesh) {
		assert.Same(t, m, got)
		assert.NotEmpty(t, got.Vertices, "data still available to the callback")
		calls++
	}
	m.Release()
	m.Release()
	assert.Equal(t, 1, calls)
	assert.True(t, m.IsReleased())
	assert.Nil(t, m.Vertices)
	assert.True(t, m.BoundingBox().IsEmpty())
}
