package grove

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// nodeIDCounter is a plain counter (no atomic: grove is single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// nodeStatus holds the per-node status bits.
type nodeStatus uint32

const (
	statusActive nodeStatus = 1 << iota
	statusClosed
	statusTemp
	statusDestroyed
	statusHasSRT
	statusMatrixReflectsSRT
	statusIsInstance
	statusFixedBB
	statusWorldMatrixValid
	statusWorldBBValid
	statusCompoundBBValid
	statusContainsTransformationObserver
	statusTransformationObserved
	statusContainsNodeAddedObserver
	statusNodeAddedObserved
	statusContainsNodeRemovedObserver
	statusNodeRemovedObserved
)

// relTransform is the node's transform relative to its parent. When
// statusHasSRT is set, srt is authoritative and matrix is a cache that is
// current only while statusMatrixReflectsSRT is set.
type relTransform struct {
	matrix mgl64.Mat4
	srt    SRT
}

// worldLocation caches the world transform and world bounding box. It only
// exists while the node or one of its ancestors is transformed.
type worldLocation struct {
	matrix mgl64.Mat4
	bb     Box
}

// StateEntry is one state attached to a node together with its enabled
// flag. Disabled entries stay attached but are skipped during display.
type StateEntry struct {
	State   State
	Enabled bool
}

// Node is the fundamental scene graph element. A single flat struct is used
// for all node types; Type selects how Display and BB treat it.
//
// The parent owns its children. Each child keeps a back-pointer to its
// parent that is used for traversal and cache invalidation only.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Type NodeType

	// Hierarchy
	parent   *Node
	children []*Node

	status nodeStatus
	layers RenderingLayers

	// Transform cache. The world fields are written by read accessors when
	// they find the cached value stale.
	rel        *relTransform
	world      *worldLocation
	fixedBB    Box
	compoundBB Box

	states []StateEntry

	// Mesh is displayed by geometry nodes.
	Mesh *Mesh
	// Light is set on light nodes.
	Light *LightParameters
	// Camera is set on camera nodes.
	Camera *CameraParameters

	// Metadata
	UserData any

	prototype    *Node
	observers    *observerRegistry
	attrs        Attributes
	destroyHooks []func(*Node)
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.status = statusActive
	n.layers = RenderingLayerDefault
	n.fixedBB = EmptyBox()
	n.compoundBB = EmptyBox()
}

// NewListNode creates a group node that displays its children.
func NewListNode(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeList}
	nodeDefaults(n)
	return n
}

// NewGeometryNode creates a node that displays mesh. mesh may be nil.
func NewGeometryNode(name string, mesh *Mesh) *Node {
	n := &Node{Name: name, Type: NodeTypeGeometry, Mesh: mesh}
	nodeDefaults(n)
	return n
}

// Attributes returns the node's attribute store.
func (n *Node) Attributes() *Attributes {
	return &n.attrs
}

// Parent returns the node's parent, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Root returns the topmost ancestor of n (n itself when it has no parent).
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// --- Status ---

// IsActive reports whether the node takes part in display.
func (n *Node) IsActive() bool { return n.status&statusActive != 0 }

// Activate marks the node active.
func (n *Node) Activate() { n.status |= statusActive }

// Deactivate marks the node inactive; Display skips it and its subtree.
func (n *Node) Deactivate() { n.status &^= statusActive }

// IsClosed reports whether the node is a closed group. Collectors treat a
// closed group as a single unit and do not descend into it.
func (n *Node) IsClosed() bool { return n.status&statusClosed != 0 }

// SetClosed marks or unmarks the node as a closed group.
func (n *Node) SetClosed(b bool) { n.setStatus(statusClosed, b) }

// IsTempNode reports whether the node is temporary (not meant to be saved).
func (n *Node) IsTempNode() bool { return n.status&statusTemp != 0 }

// SetTempNode marks or unmarks the node as temporary.
func (n *Node) SetTempNode(b bool) { n.setStatus(statusTemp, b) }

// IsDestroyed reports whether Destroy has been called.
func (n *Node) IsDestroyed() bool { return n.status&statusDestroyed != 0 }

// IsInstance reports whether the node was created by NewInstance.
func (n *Node) IsInstance() bool { return n.status&statusIsInstance != 0 }

// Prototype returns the node this instance was created from, or nil.
func (n *Node) Prototype() *Node { return n.prototype }

// RenderingLayers returns the layers the node is displayed in.
func (n *Node) RenderingLayers() RenderingLayers { return n.layers }

// SetRenderingLayers sets the layers the node is displayed in.
func (n *Node) SetRenderingLayers(l RenderingLayers) { n.layers = l }

// TestRenderingLayer reports whether the node shares a layer with l.
func (n *Node) TestRenderingLayer(l RenderingLayers) bool { return n.layers.Test(l) }

func (n *Node) setStatus(bit nodeStatus, b bool) {
	if b {
		n.status |= bit
	} else {
		n.status &^= bit
	}
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if n is not a list node, child is nil, or child is an ancestor of
// this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("grove: cannot add nil child")
	}
	if globalDebug {
		debugCheckDestroyed(n, "AddChild (parent)")
		debugCheckDestroyed(child, "AddChild (child)")
	}
	if n.Type != NodeTypeList {
		panic("grove: only list nodes can have children")
	}
	if isAncestor(child, n) {
		panic("grove: adding child would create a cycle")
	}
	if child.parent == n {
		return
	}
	if child.parent != nil {
		child.parent.detachChild(child)
	}
	child.parent = n
	n.children = append(n.children, child)
	child.parentChanged()
	child.informNodeAddedObservers()
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// AddToParent adds n to newParent's children; see AddChild.
func (n *Node) AddToParent(newParent *Node) {
	newParent.AddChild(n)
}

// RemoveChild detaches child from this node and returns it.
// Panics if child's parent is not n.
func (n *Node) RemoveChild(child *Node) *Node {
	if globalDebug {
		debugCheckDestroyed(n, "RemoveChild")
	}
	if child.parent != n {
		panic("grove: child's parent is not this node")
	}
	n.detachChild(child)
	return child
}

// RemoveFromParent detaches this node from its parent and returns it, so
// the caller decides whether to reparent or destroy it.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() *Node {
	if n.parent == nil {
		return n
	}
	return n.parent.RemoveChild(n)
}

// RemoveChildren detaches all children from this node.
// Children are NOT destroyed.
func (n *Node) RemoveChildren() []*Node {
	removed := make([]*Node, len(n.children))
	copy(removed, n.children)
	for _, child := range removed {
		n.detachChild(child)
	}
	return removed
}

// detachChild unlinks child from n, refreshes caches and observer flags,
// and notifies node-removed observers.
func (n *Node) detachChild(child *Node) {
	n.removeChildByPtr(child)
	child.parent = nil
	child.parentChanged()
	invalidateCompoundBBFrom(n)
	n.informNodeRemovedObservers(child)
}

// parentChanged refreshes everything in n's subtree that depends on the
// parent: world caches, the parent's compound bounding box and the
// inherited observer flags.
func (n *Node) parentChanged() {
	n.invalidateWorldCaches()
	n.updateObservedFlags()
	invalidateCompoundBBFrom(n.parent)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// --- Destruction ---

// AddDestroyHook registers fn to run when the node is destroyed, before the
// generic teardown. Hooks release external resources held on the node's
// behalf and run in registration order.
func (n *Node) AddDestroyHook(fn func(*Node)) {
	n.destroyHooks = append(n.destroyHooks, fn)
}

// Destroy removes this node from its parent, runs its destroy hooks,
// releases its mesh and recursively destroys all descendants. Always call
// Destroy rather than dropping the last reference to a node that holds
// external resources. Destroying twice is a no-op.
func (n *Node) Destroy() {
	if n.status&statusDestroyed != 0 {
		return
	}
	n.RemoveFromParent()
	n.destroy()
}

func (n *Node) destroy() {
	n.status |= statusDestroyed
	for _, hook := range n.destroyHooks {
		hook(n)
	}
	n.destroyHooks = nil
	for _, child := range n.children {
		child.parent = nil
		child.destroy()
	}
	n.children = nil
	n.parent = nil
	if n.Mesh != nil {
		n.Mesh.Release()
		n.Mesh = nil
	}
	n.states = nil
	n.observers = nil
	n.world = nil
	n.prototype = nil
	n.UserData = nil
	n.attrs = Attributes{}
}

// --- Cloning ---

// Clone returns a deep copy of the node's subtree. States are shared with
// the original; observers, destroy hooks and extensions are not copied.
func (n *Node) Clone() *Node {
	if globalDebug {
		debugCheckDestroyed(n, "Clone")
	}
	c := n.cloneSelf()
	for _, child := range n.children {
		cc := child.Clone()
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}

// NewInstance returns a clone of prototype that remembers it as its
// prototype.
func NewInstance(prototype *Node) *Node {
	c := prototype.Clone()
	c.status |= statusIsInstance
	c.prototype = prototype
	return c
}

func (n *Node) cloneSelf() *Node {
	keep := statusActive | statusClosed | statusTemp | statusHasSRT | statusFixedBB
	c := &Node{
		Name:       n.Name,
		Type:       n.Type,
		status:     n.status & keep,
		layers:     n.layers,
		fixedBB:    n.fixedBB,
		compoundBB: EmptyBox(),
		UserData:   n.UserData,
		attrs:      n.attrs.cloneNamed(),
	}
	c.ID = nextNodeID()
	if n.rel != nil {
		r := *n.rel
		c.rel = &r
		c.status |= n.status & statusMatrixReflectsSRT
	}
	if n.Mesh != nil {
		c.Mesh = n.Mesh.Clone()
	}
	if n.Light != nil {
		l := *n.Light
		c.Light = &l
	}
	if n.Camera != nil {
		cp := *n.Camera
		c.Camera = &cp
	}
	if len(n.states) > 0 {
		c.states = make([]StateEntry, len(n.states))
		copy(c.states, n.states)
	}
	return c
}

// --- States ---

// AddState attaches s to the node, enabled. Adding an attached state again
// re-enables it without duplicating the entry.
func (n *Node) AddState(s State) {
	for i := range n.states {
		if n.states[i].State == s {
			n.states[i].Enabled = true
			return
		}
	}
	n.states = append(n.states, StateEntry{State: s, Enabled: true})
}

// RemoveState detaches s and reports whether it was attached.
func (n *Node) RemoveState(s State) bool {
	for i := range n.states {
		if n.states[i].State == s {
			// Copy so a display pass iterating the old list is unaffected.
			n.states = slices.Delete(slices.Clone(n.states), i, i+1)
			return true
		}
	}
	return false
}

// RemoveStates detaches all states.
func (n *Node) RemoveStates() {
	n.states = nil
}

// SetStateEnabled toggles an attached state's enabled flag. Reports whether
// s is attached.
func (n *Node) SetStateEnabled(s State, enabled bool) bool {
	for i := range n.states {
		if n.states[i].State == s {
			n.states[i].Enabled = enabled
			return true
		}
	}
	return false
}

// IsStateEnabled reports whether s is attached and enabled.
func (n *Node) IsStateEnabled(s State) bool {
	for _, e := range n.states {
		if e.State == s {
			return e.Enabled
		}
	}
	return false
}

// HasStates reports whether any state is attached.
func (n *Node) HasStates() bool {
	return len(n.states) > 0
}

// States returns the attached states in display order.
func (n *Node) States() []State {
	out := make([]State, len(n.states))
	for i, e := range n.states {
		out[i] = e.State
	}
	return out
}

// StateEntries returns the attached states with their enabled flags. The
// returned slice MUST NOT be mutated by the caller.
func (n *Node) StateEntries() []StateEntry {
	return n.states
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node (or node itself).
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}
