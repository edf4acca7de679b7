package grove

// ObserverHandle identifies a registered observer for later removal.
type ObserverHandle uint64

var observerHandleCounter ObserverHandle

func nextObserverHandle() ObserverHandle {
	observerHandleCounter++
	return observerHandleCounter
}

// TransformationObserver is called with the node whose relative transform
// changed. Registered on an ancestor, it observes the whole subtree.
type TransformationObserver func(node *Node)

// NodeAddedObserver is called with a node that was added to the subtree.
type NodeAddedObserver func(node *Node)

// NodeRemovedObserver is called with the former parent and the node that
// was removed from the subtree.
type NodeRemovedObserver func(parent, node *Node)

type observerEntry[F any] struct {
	handle ObserverHandle
	fn     F
}

// observerList is copy-on-write: removal builds a new slice so a
// notification loop ranging over the old one is unaffected when an
// observer removes itself.
type observerList[F any] []observerEntry[F]

func (l observerList[F]) without(h ObserverHandle) (observerList[F], bool) {
	for i, e := range l {
		if e.handle == h {
			out := make(observerList[F], 0, len(l)-1)
			out = append(out, l[:i]...)
			out = append(out, l[i+1:]...)
			return out, true
		}
	}
	return l, false
}

type observerRegistry struct {
	transformation observerList[TransformationObserver]
	nodeAdded      observerList[NodeAddedObserver]
	nodeRemoved    observerList[NodeRemovedObserver]
}

// observerBits pairs the "contains" bit of one observer kind with its
// inherited "observed" bit.
type observerBits struct {
	contains nodeStatus
	observed nodeStatus
}

var allObserverBits = [...]observerBits{
	{statusContainsTransformationObserver, statusTransformationObserved},
	{statusContainsNodeAddedObserver, statusNodeAddedObserved},
	{statusContainsNodeRemovedObserver, statusNodeRemovedObserved},
}

func (n *Node) registry() *observerRegistry {
	if n.observers == nil {
		n.observers = &observerRegistry{}
	}
	return n.observers
}

// AddTransformationObserver registers fn to be called whenever the relative
// transform of n or of any node below n changes.
func (n *Node) AddTransformationObserver(fn TransformationObserver) ObserverHandle {
	h := nextObserverHandle()
	r := n.registry()
	r.transformation = append(r.transformation, observerEntry[TransformationObserver]{h, fn})
	n.observerAdded(statusContainsTransformationObserver)
	return h
}

// AddNodeAddedObserver registers fn to be called whenever a node is added
// to n's subtree.
func (n *Node) AddNodeAddedObserver(fn NodeAddedObserver) ObserverHandle {
	h := nextObserverHandle()
	r := n.registry()
	r.nodeAdded = append(r.nodeAdded, observerEntry[NodeAddedObserver]{h, fn})
	n.observerAdded(statusContainsNodeAddedObserver)
	return h
}

// AddNodeRemovedObserver registers fn to be called whenever a node is
// removed from n's subtree.
func (n *Node) AddNodeRemovedObserver(fn NodeRemovedObserver) ObserverHandle {
	h := nextObserverHandle()
	r := n.registry()
	r.nodeRemoved = append(r.nodeRemoved, observerEntry[NodeRemovedObserver]{h, fn})
	n.observerAdded(statusContainsNodeRemovedObserver)
	return h
}

// RemoveObserver unregisters the observer identified by h. Reports whether
// it was registered on n. Observers may remove themselves while being
// notified.
func (n *Node) RemoveObserver(h ObserverHandle) bool {
	r := n.observers
	if r == nil {
		return false
	}
	var removed bool
	if r.transformation, removed = r.transformation.without(h); removed {
		if len(r.transformation) == 0 {
			n.observerRemoved(statusContainsTransformationObserver)
		}
		return true
	}
	if r.nodeAdded, removed = r.nodeAdded.without(h); removed {
		if len(r.nodeAdded) == 0 {
			n.observerRemoved(statusContainsNodeAddedObserver)
		}
		return true
	}
	if r.nodeRemoved, removed = r.nodeRemoved.without(h); removed {
		if len(r.nodeRemoved) == 0 {
			n.observerRemoved(statusContainsNodeRemovedObserver)
		}
		return true
	}
	return false
}

// IsTransformationObserved reports whether n or an ancestor has a
// transformation observer.
func (n *Node) IsTransformationObserved() bool {
	return n.status&statusTransformationObserved != 0
}

// IsNodeAddedObserved reports whether n or an ancestor has a node-added
// observer.
func (n *Node) IsNodeAddedObserved() bool {
	return n.status&statusNodeAddedObserved != 0
}

// IsNodeRemovedObserved reports whether n or an ancestor has a node-removed
// observer.
func (n *Node) IsNodeRemovedObserved() bool {
	return n.status&statusNodeRemovedObserved != 0
}

func (n *Node) observerAdded(contains nodeStatus) {
	if n.status&contains != 0 {
		return
	}
	n.status |= contains
	n.updateObservedFlags()
}

func (n *Node) observerRemoved(contains nodeStatus) {
	n.status &^= contains
	n.updateObservedFlags()
}

// updateObservedFlags recomputes n's observed bits from its own contains
// bits and its parent's observed bits, then descends into the children.
// The descent stops where nothing changed, since a child's bits depend only
// on its own contains bits and its parent's observed bits.
func (n *Node) updateObservedFlags() {
	var inherited nodeStatus
	if n.parent != nil {
		inherited = n.parent.status
	}
	changed := false
	for _, b := range allObserverBits {
		observed := n.status&b.contains != 0 || inherited&b.observed != 0
		if observed != (n.status&b.observed != 0) {
			n.setStatus(b.observed, observed)
			changed = true
		}
	}
	if !changed {
		return
	}
	for _, c := range n.children {
		c.updateObservedFlags()
	}
}

// informTransformationObservers walks from n toward the root, calling each
// level's own transformation observers with n.
func (n *Node) informTransformationObservers() {
	for p := n; p != nil; p = p.parent {
		if p.status&statusContainsTransformationObserver == 0 || p.observers == nil {
			continue
		}
		for _, e := range p.observers.transformation {
			e.fn(n)
		}
	}
}

// informNodeAddedObservers walks from the added node n toward the root,
// calling each level's node-added observers with n.
func (n *Node) informNodeAddedObservers() {
	if !n.IsNodeAddedObserved() {
		return
	}
	for p := n; p != nil; p = p.parent {
		if p.status&statusContainsNodeAddedObserver == 0 || p.observers == nil {
			continue
		}
		for _, e := range p.observers.nodeAdded {
			e.fn(n)
		}
	}
}

// informNodeRemovedObservers walks from the former parent n toward the root,
// calling each level's node-removed observers with (n, removed).
func (n *Node) informNodeRemovedObservers(removed *Node) {
	if !n.IsNodeRemovedObserved() {
		return
	}
	for p := n; p != nil; p = p.parent {
		if p.status&statusContainsNodeRemovedObserver == 0 || p.observers == nil {
			continue
		}
		for _, e := range p.observers.nodeRemoved {
			e.fn(n, removed)
		}
	}
}
