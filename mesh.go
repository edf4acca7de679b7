package grove

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Vertex is a single mesh vertex in the mesh's local coordinate system.
type Vertex struct {
	Position mgl64.Vec3
	Normal   mgl64.Vec3
	Color    Color
	U, V     float64
}

// Mesh is an indexed triangle list. Every three indices form one
// counter-clockwise triangle.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint16

	bb       Box  // cached local-space bounding box
	bbDirty  bool // recompute bb when true
	released bool

	// OnRelease, if set, is called once when the mesh is released, so a
	// rendering backend can free GPU copies of the data.
	OnRelease func(*Mesh)
}

// NewMesh creates a mesh from vertices and triangle indices.
func NewMesh(vertices []Vertex, indices []uint16) *Mesh {
	return &Mesh{Vertices: vertices, Indices: indices, bbDirty: true}
}

// BoundingBox returns the local-space box around all vertices.
func (m *Mesh) BoundingBox() Box {
	if m.bbDirty {
		m.bb = computeMeshBB(m.Vertices)
		m.bbDirty = false
	}
	return m.bb
}

// MarkDirty forces the bounding box to be recomputed. Call it after
// modifying Vertices in place.
func (m *Mesh) MarkDirty() {
	m.bbDirty = true
}

// NumTriangles returns the number of complete triangles.
func (m *Mesh) NumTriangles() int {
	return len(m.Indices) / 3
}

// Clone returns a deep copy of the mesh data.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Vertices:  make([]Vertex, len(m.Vertices)),
		Indices:   make([]uint16, len(m.Indices)),
		bbDirty:   true,
		OnRelease: m.OnRelease,
	}
	copy(c.Vertices, m.Vertices)
	copy(c.Indices, m.Indices)
	return c
}

// Release drops the mesh data and calls OnRelease. Releasing twice is a
// no-op.
func (m *Mesh) Release() {
	if m.released {
		return
	}
	m.released = true
	if m.OnRelease != nil {
		m.OnRelease(m)
	}
	m.Vertices = nil
	m.Indices = nil
	m.bb = EmptyBox()
	m.bbDirty = false
}

// IsReleased reports whether Release has been called.
func (m *Mesh) IsReleased() bool {
	return m.released
}

// computeMeshBB scans the vertex positions and returns the axis-aligned
// bounding box in local space.
func computeMeshBB(verts []Vertex) Box {
	bb := EmptyBox()
	for i := range verts {
		bb = bb.IncludePoint(verts[i].Position)
	}
	return bb
}
