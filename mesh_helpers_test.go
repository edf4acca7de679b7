package grove

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// faceNormal returns the geometric normal of triangle i.
func faceNormal(m *Mesh, i int) mgl64.Vec3 {
	a := m.Vertices[m.Indices[i*3]].Position
	b := m.Vertices[m.Indices[i*3+1]].Position
	c := m.Vertices[m.Indices[i*3+2]].Position
	return b.Sub(a).Cross(c.Sub(a))
}

func TestBoxMeshWindingFacesOutward(t *testing.T) {
	b := NewBox(mgl64.Vec3{-1, -2, -3}, mgl64.Vec3{1, 2, 3})
	m := NewBoxMesh(b, ColorWhite)
	require.Len(t, m.Vertices, 24)
	require.Equal(t, 12, m.NumTriangles())
	assert.Equal(t, b, m.BoundingBox())

	for i := 0; i < m.NumTriangles(); i++ {
		fn := faceNormal(m, i)
		vn := m.Vertices[m.Indices[i*3]].Normal
		assert.Greater(t, fn.Dot(vn), 0.0, "triangle %d winds inward", i)
	}
}

func TestQuadMesh(t *testing.T) {
	m := NewQuadMesh(4, 2, ColorBlack)
	assert.Equal(t, 2, m.NumTriangles())
	assert.Equal(t, NewBox(mgl64.Vec3{-2, -1, 0}, mgl64.Vec3{2, 1, 0}), m.BoundingBox())
	for i := 0; i < 2; i++ {
		assert.Greater(t, faceNormal(m, i)[2], 0.0)
	}
}

func TestSphereMesh(t *testing.T) {
	m := NewSphereMesh(2, 12, 6, ColorWhite)
	assert.Len(t, m.Vertices, 13*7)
	assert.Equal(t, 12*6*2, m.NumTriangles())
	for _, v := range m.Vertices {
		assert.InDelta(t, 2, v.Position.Len(), 1e-9)
	}
	bb := m.BoundingBox()
	assert.InDelta(t, 2, bb.Max[1], 1e-9)
	assert.InDelta(t, -2, bb.Min[1], 1e-9)

	// Clamped to the minimum subdivision.
	small := NewSphereMesh(1, 1, 1, ColorWhite)
	assert.Len(t, small.Vertices, 4*3)
}

func TestRecalculateNormals(t *testing.T) {
	m := NewQuadMesh(1, 1, ColorWhite)
	for i := range m.Vertices {
		m.Vertices[i].Normal = mgl64.Vec3{1, 0, 0}
	}
	m.RecalculateNormals()
	for _, v := range m.Vertices {
		requireVecNear(t, mgl64.Vec3{0, 0, 1}, v.Normal)
	}
}

func TestSetColor(t *testing.T) {
	m := unitBoxMesh()
	red := Color{R: 1, A: 1}
	m.SetColor(red)
	for _, v := range m.Vertices {
		assert.Equal(t, red, v.Color)
	}
}
