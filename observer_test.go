package grove

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformationObserverSeesDescendants(t *testing.T) {
	root := NewListNode("root")
	mid := NewListNode("mid")
	leaf := NewListNode("leaf")
	root.AddChild(mid)
	mid.AddChild(leaf)

	var seen []*Node
	h := root.AddTransformationObserver(func(n *Node) { seen = append(seen, n) })
	assert.True(t, leaf.IsTransformationObserved())

	leaf.SetRelPosition(mgl64.Vec3{1, 0, 0})
	mid.RotateLocal(1, mgl64.Vec3{0, 1, 0})
	assert.Equal(t, []*Node{leaf, mid}, seen)

	require.True(t, root.RemoveObserver(h))
	assert.False(t, root.RemoveObserver(h))
	assert.False(t, leaf.IsTransformationObserved())
	leaf.SetRelPosition(mgl64.Vec3{2, 0, 0})
	assert.Len(t, seen, 2)
}

func TestObservedFlagFollowsReparenting(t *testing.T) {
	observed := NewListNode("observed")
	plain := NewListNode("plain")
	child := NewListNode("child")
	grandchild := NewListNode("grandchild")
	child.AddChild(grandchild)
	observed.AddTransformationObserver(func(*Node) {})

	plain.AddChild(child)
	assert.False(t, grandchild.IsTransformationObserved())
	observed.AddChild(child)
	assert.True(t, grandchild.IsTransformationObserved())
	child.RemoveFromParent()
	assert.False(t, grandchild.IsTransformationObserved())
}

func TestNodeAddedAndRemovedObservers(t *testing.T) {
	root := NewListNode("root")
	mid := NewListNode("mid")
	root.AddChild(mid)

	var added []string
	var removed [][2]string
	root.AddNodeAddedObserver(func(n *Node) { added = append(added, n.Name) })
	mid.AddNodeAddedObserver(func(n *Node) { added = append(added, "mid saw "+n.Name) })
	root.AddNodeRemovedObserver(func(parent, n *Node) {
		removed = append(removed, [2]string{parent.Name, n.Name})
	})

	leaf := NewListNode("leaf")
	mid.AddChild(leaf)
	assert.Equal(t, []string{"mid saw leaf", "leaf"}, added)
	assert.True(t, leaf.IsNodeAddedObserved())
	assert.True(t, leaf.IsNodeRemovedObserved())

	leaf.RemoveFromParent()
	assert.Equal(t, [][2]string{{"mid", "leaf"}}, removed)
}

func TestObserverMayRemoveItself(t *testing.T) {
	n := NewListNode("n")
	calls := 0
	var h ObserverHandle
	h = n.AddTransformationObserver(func(*Node) {
		calls++
		n.RemoveObserver(h)
	})
	n.AddTransformationObserver(func(*Node) { calls++ })

	n.SetRelPosition(mgl64.Vec3{1, 0, 0})
	n.SetRelPosition(mgl64.Vec3{2, 0, 0})
	assert.Equal(t, 3, calls)
}
