package grove

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSRTMatrixRoundTrip(t *testing.T) {
	s := SRT{
		Translation: mgl64.Vec3{1, -2, 3},
		Rotation:    mgl64.QuatRotate(0.7, mgl64.Vec3{1, 1, 0}.Normalize()),
		Scale:       2.5,
	}
	got, err := MatrixToSRT(s.Matrix())
	require.NoError(t, err)
	assert.True(t, s.ApproxEqual(got, 1e-9), "got %+v", got)
}

func TestMatrixToSRTRejects(t *testing.T) {
	shear := mgl64.Ident4()
	shear[4] = 0.5
	nonUniform := mgl64.Scale3D(1, 2, 1)
	mirror := mgl64.Scale3D(-1, 1, 1)
	projective := mgl64.Perspective(1, 1, 0.1, 10)
	for name, m := range map[string]mgl64.Mat4{
		"shear":       shear,
		"non-uniform": nonUniform,
		"mirror":      mirror,
		"projective":  projective,
		"degenerate":  mgl64.Scale3D(0, 0, 0),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := MatrixToSRT(m)
			require.ErrorIs(t, err, ErrInvalidGeometry)
			assert.False(t, ConvertsSafelyToSRT(m))
		})
	}
}

func TestWorldOriginThroughParents(t *testing.T) {
	root := NewListNode("root")
	a := NewListNode("a")
	b := NewListNode("b")
	root.AddChild(a)
	a.AddChild(b)
	a.SetRelPosition(mgl64.Vec3{1, 0, 0})
	b.SetRelPosition(mgl64.Vec3{0, 2, 0})

	requireVecNear(t, mgl64.Vec3{1, 2, 0}, b.WorldOrigin())

	// Moving the parent invalidates the child's cached world matrix.
	a.MoveRel(mgl64.Vec3{0, 0, 5})
	requireVecNear(t, mgl64.Vec3{1, 2, 5}, b.WorldOrigin())

	a.ResetRelTransformation()
	requireVecNear(t, mgl64.Vec3{0, 2, 0}, b.WorldOrigin())
}

func TestUntransformedNodesHaveNoWorldMatrix(t *testing.T) {
	root := NewListNode("root")
	c := NewListNode("c")
	root.AddChild(c)
	assert.Nil(t, c.WorldTransformationMatrixPtr())
	assert.Equal(t, mgl64.Ident4(), c.WorldTransformationMatrix())

	root.SetRelPosition(mgl64.Vec3{1, 0, 0})
	require.NotNil(t, c.WorldTransformationMatrixPtr())
	requireVecNear(t, mgl64.Vec3{1, 0, 0}, c.WorldOrigin())
}

func TestSetWorldOrigin(t *testing.T) {
	root := NewListNode("root")
	child := NewListNode("child")
	root.AddChild(child)
	root.SetRelTransformationSRT(SRT{
		Translation: mgl64.Vec3{10, 0, 0},
		Rotation:    mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}),
		Scale:       2,
	})
	child.SetWorldOrigin(mgl64.Vec3{10, 4, 0})
	requireVecNear(t, mgl64.Vec3{10, 4, 0}, child.WorldOrigin())
	requireVecNear(t, mgl64.Vec3{2, 0, 0}, child.RelPosition())
}

func TestMoveLocalFollowsRotation(t *testing.T) {
	n := NewListNode("n")
	n.RotateLocal(math.Pi/2, mgl64.Vec3{0, 0, 1})
	n.MoveLocal(mgl64.Vec3{1, 0, 0})
	requireVecNear(t, mgl64.Vec3{0, 1, 0}, n.RelPosition())
	assert.True(t, n.HasRelTransformationSRT())
}

func TestMatrixTransformKeepsMatrixForm(t *testing.T) {
	n := NewListNode("n")
	shear := mgl64.Ident4()
	shear[4] = 0.5
	n.SetRelTransformationMatrix(shear)
	assert.False(t, n.HasRelTransformationSRT())

	n.SetRelPosition(mgl64.Vec3{1, 2, 3})
	requireVecNear(t, mgl64.Vec3{1, 2, 3}, n.RelPosition())

	_, err := n.RelTransformationSRT()
	assert.True(t, errors.Is(err, ErrInvalidGeometry))
	require.ErrorIs(t, n.SetRelScaling(2), ErrInvalidGeometry)
}

func TestSetRelScaling(t *testing.T) {
	n := NewListNode("n")
	n.SetRelTransformationMatrix(mgl64.Translate3D(1, 0, 0))
	require.NoError(t, n.SetRelScaling(3))
	s, err := n.RelTransformationSRT()
	require.NoError(t, err)
	assert.InDelta(t, 3, s.Scale, epsilon)
	requireVecNear(t, mgl64.Vec3{1, 0, 0}, s.Translation)
}

func TestLocalWorldConversion(t *testing.T) {
	root := NewListNode("root")
	n := NewListNode("n")
	root.AddChild(n)
	root.SetRelPosition(mgl64.Vec3{0, 0, -3})
	n.ScaleBy(2)

	p := mgl64.Vec3{1, 1, 1}
	w := n.LocalToWorld(p)
	requireVecNear(t, mgl64.Vec3{2, 2, -1}, w)
	requireVecNear(t, p, n.WorldToLocal(w))
}

func TestWorldBBFollowsTransform(t *testing.T) {
	root := NewListNode("root")
	g := NewGeometryNode("g", unitBoxMesh())
	root.AddChild(g)
	g.SetRelPosition(mgl64.Vec3{3, 0, 0})

	want := NewBox(mgl64.Vec3{2.5, -0.5, -0.5}, mgl64.Vec3{3.5, 0.5, 0.5})
	assert.True(t, want.ApproxEqual(g.WorldBB(), 1e-9), "got %v", g.WorldBB())
	assert.True(t, want.ApproxEqual(root.BB(), 1e-9), "got %v", root.BB())

	g.MoveRel(mgl64.Vec3{1, 0, 0})
	assert.InDelta(t, 4.5, root.BB().Max[0], 1e-9)
}

func TestFixedBBStopsPropagation(t *testing.T) {
	root := NewListNode("root")
	mid := NewListNode("mid")
	g := NewGeometryNode("g", unitBoxMesh())
	root.AddChild(mid)
	mid.AddChild(g)

	fixed := NewBox(mgl64.Vec3{-10, -10, -10}, mgl64.Vec3{10, 10, 10})
	mid.SetFixedBB(fixed)
	assert.True(t, mid.HasFixedBB())
	assert.Equal(t, fixed, root.BB())

	root.WorldBB()
	require.True(t, worldBBCached(root))

	g.SetRelPosition(mgl64.Vec3{100, 0, 0})
	assert.True(t, worldBBCached(root), "invalidation stops at the fixed box")
	assert.True(t, worldBBCached(mid))
	assert.False(t, worldBBCached(g))
	assert.Equal(t, fixed, mid.BB())
	assert.Equal(t, fixed, root.BB())

	mid.ClearFixedBB()
	assert.False(t, worldBBCached(root))
	assert.False(t, worldBBCached(mid))
	assert.InDelta(t, 100.5, root.BB().Max[0], 1e-9)
	assert.InDelta(t, 100.5, root.WorldBB().Max[0], 1e-9)
}

func worldBBCached(n *Node) bool { return n.status&statusWorldBBValid != 0 }

// bruteWorld multiplies the relative transforms from the top of n's tree.
func bruteWorld(n *Node) mgl64.Mat4 {
	if n.parent == nil {
		return n.RelTransformationMatrix()
	}
	return bruteWorld(n.parent).Mul4(n.RelTransformationMatrix())
}

// bruteBB derives n's local box without any cached state.
func bruteBB(n *Node) Box {
	if n.HasFixedBB() {
		return n.fixedBB
	}
	if n.Type == NodeTypeGeometry {
		return n.Mesh.BoundingBox()
	}
	bb := EmptyBox()
	for _, c := range n.children {
		bb = bb.Union(bruteBB(c).Transform(c.RelTransformationMatrix()))
	}
	return bb
}

func TestWorldCachesMatchRecomputation(t *testing.T) {
	for seed := range uint64(40) {
		rng := rand.New(rand.NewPCG(seed, 7))
		var nodes, lists []*Node
		for i := range 12 {
			var n *Node
			if i < 6 {
				n = NewListNode("list")
				lists = append(lists, n)
			} else {
				n = NewGeometryNode("geom", unitBoxMesh())
			}
			nodes = append(nodes, n)
		}
		for _, n := range nodes[1:] {
			if p := lists[rng.IntN(len(lists))]; !isAncestor(n, p) {
				p.AddChild(n)
			}
		}

		randVec := func() mgl64.Vec3 {
			return mgl64.Vec3{rng.Float64()*4 - 2, rng.Float64()*4 - 2, rng.Float64()*4 - 2}
		}
		for step := range 150 {
			n := nodes[rng.IntN(len(nodes))]
			switch rng.IntN(9) {
			case 0:
				p := lists[rng.IntN(len(lists))]
				if !isAncestor(n, p) {
					p.AddChild(n)
				}
			case 1:
				n.RemoveFromParent()
			case 2:
				n.SetRelTransformationSRT(SRT{
					Translation: randVec(),
					Rotation:    mgl64.QuatRotate(rng.Float64()*math.Pi, randVec().Add(mgl64.Vec3{0, 0, 3}).Normalize()),
					Scale:       0.8 + rng.Float64()*0.4,
				})
			case 3:
				m := mgl64.Translate3D(randVec().Elem())
				m.Set(0, 1, rng.Float64()*0.5)
				n.SetRelTransformationMatrix(m)
			case 4:
				n.MoveRel(randVec())
			case 5:
				n.ResetRelTransformation()
			case 6:
				n.SetFixedBB(NewBox(randVec().Sub(mgl64.Vec3{3, 3, 3}), randVec().Add(mgl64.Vec3{3, 3, 3})))
			case 7:
				n.ClearFixedBB()
			default:
				n.WorldBB()
			}

			for i, c := range nodes {
				want := bruteWorld(c)
				require.Truef(t, want.ApproxEqualThreshold(c.WorldTransformationMatrix(), 1e-9),
					"seed %d step %d node %d world matrix", seed, step, i)
				wantBB := bruteBB(c).Transform(want)
				require.Truef(t, wantBB.ApproxEqual(c.WorldBB(), 1e-7),
					"seed %d step %d node %d: want %v, got %v", seed, step, i, wantBB, c.WorldBB())
			}
		}
	}
}

func TestMeshChangedUpdatesBB(t *testing.T) {
	root := NewListNode("root")
	g := NewGeometryNode("g", unitBoxMesh())
	root.AddChild(g)
	assert.InDelta(t, 0.5, root.BB().Max[0], 1e-9)

	for i := range g.Mesh.Vertices {
		g.Mesh.Vertices[i].Position = g.Mesh.Vertices[i].Position.Mul(4)
	}
	g.MeshChanged()
	assert.InDelta(t, 2, root.BB().Max[0], 1e-9)
}
