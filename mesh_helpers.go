package grove

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// --- Box ---

// boxFaces lists the outward normal and the four corner indices (into
// Box.Corners) of each face, counter-clockwise when seen from outside.
var boxFaces = [6]struct {
	normal  mgl64.Vec3
	corners [4]int
}{
	{mgl64.Vec3{-1, 0, 0}, [4]int{0, 4, 6, 2}},
	{mgl64.Vec3{1, 0, 0}, [4]int{1, 3, 7, 5}},
	{mgl64.Vec3{0, -1, 0}, [4]int{0, 1, 5, 4}},
	{mgl64.Vec3{0, 1, 0}, [4]int{2, 6, 7, 3}},
	{mgl64.Vec3{0, 0, -1}, [4]int{0, 2, 3, 1}},
	{mgl64.Vec3{0, 0, 1}, [4]int{4, 5, 7, 6}},
}

// NewBoxMesh builds a mesh covering b with 24 vertices (4 per face, so each
// face has its own normal) and 12 triangles.
func NewBoxMesh(b Box, c Color) *Mesh {
	corners := b.Corners()
	verts := make([]Vertex, 0, 24)
	inds := make([]uint16, 0, 36)
	uv := [4][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	for _, f := range boxFaces {
		base := uint16(len(verts))
		for i, ci := range f.corners {
			verts = append(verts, Vertex{
				Position: corners[ci],
				Normal:   f.normal,
				Color:    c,
				U:        uv[i][0],
				V:        uv[i][1],
			})
		}
		inds = append(inds, base, base+1, base+2, base, base+2, base+3)
	}
	return NewMesh(verts, inds)
}

// --- Quad ---

// NewQuadMesh builds a w x h rectangle in the XY plane centered on the
// origin, facing +Z.
func NewQuadMesh(w, h float64, c Color) *Mesh {
	hw, hh := w/2, h/2
	n := mgl64.Vec3{0, 0, 1}
	verts := []Vertex{
		{Position: mgl64.Vec3{-hw, -hh, 0}, Normal: n, Color: c, U: 0, V: 1},
		{Position: mgl64.Vec3{hw, -hh, 0}, Normal: n, Color: c, U: 1, V: 1},
		{Position: mgl64.Vec3{hw, hh, 0}, Normal: n, Color: c, U: 1, V: 0},
		{Position: mgl64.Vec3{-hw, hh, 0}, Normal: n, Color: c, U: 0, V: 0},
	}
	return NewMesh(verts, []uint16{0, 1, 2, 0, 2, 3})
}

// --- Sphere ---

// NewSphereMesh builds a UV sphere of the given radius. slices is the
// number of subdivisions around the Y axis (minimum 3) and stacks the
// number from pole to pole (minimum 2).
func NewSphereMesh(radius float64, slices, stacks int, c Color) *Mesh {
	slices = max(slices, 3)
	stacks = max(stacks, 2)
	verts := make([]Vertex, 0, (slices+1)*(stacks+1))
	for st := 0; st <= stacks; st++ {
		v := float64(st) / float64(stacks)
		phi := v * math.Pi
		sinPhi, cosPhi := math.Sincos(phi)
		for sl := 0; sl <= slices; sl++ {
			u := float64(sl) / float64(slices)
			theta := u * 2 * math.Pi
			sinTheta, cosTheta := math.Sincos(theta)
			n := mgl64.Vec3{sinPhi * cosTheta, cosPhi, -sinPhi * sinTheta}
			verts = append(verts, Vertex{
				Position: n.Mul(radius),
				Normal:   n,
				Color:    c,
				U:        u,
				V:        v,
			})
		}
	}
	inds := make([]uint16, 0, slices*stacks*6)
	row := slices + 1
	for st := 0; st < stacks; st++ {
		for sl := 0; sl < slices; sl++ {
			a := uint16(st*row + sl)
			b := a + uint16(row)
			inds = append(inds, a, b, a+1, a+1, b, b+1)
		}
	}
	return NewMesh(verts, inds)
}

// --- Normals ---

// RecalculateNormals replaces every vertex normal by the normalized sum of
// the face normals of the triangles sharing it.
func (m *Mesh) RecalculateNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = mgl64.Vec3{}
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		pa, pb, pc := m.Vertices[a].Position, m.Vertices[b].Position, m.Vertices[c].Position
		fn := pb.Sub(pa).Cross(pc.Sub(pa))
		m.Vertices[a].Normal = m.Vertices[a].Normal.Add(fn)
		m.Vertices[b].Normal = m.Vertices[b].Normal.Add(fn)
		m.Vertices[c].Normal = m.Vertices[c].Normal.Add(fn)
	}
	for i := range m.Vertices {
		if m.Vertices[i].Normal.Len() > geometryEpsilon {
			m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
		}
	}
}

// SetColor paints every vertex with c.
func (m *Mesh) SetColor(c Color) {
	for i := range m.Vertices {
		m.Vertices[i].Color = c
	}
}
