package grove

// Behaviour is the older behavior API: each object animates one target and
// keeps its own timing. New code should implement Behavior and start it
// with BehaviourManager.StartNodeBehavior instead.
type Behaviour interface {
	// Execute runs one step at time now.
	Execute(now float64) BehaviorResult
	// Finalize is called once when the behaviour finishes or is removed.
	Finalize()
}

// NodeBehaviour is a Behaviour animating a node.
type NodeBehaviour interface {
	Behaviour
	Node() *Node
}

// StateBehaviour is a Behaviour animating a state.
type StateBehaviour interface {
	Behaviour
	State() State
}

// AbstractBehaviour tracks the time of the previous execution. Embed it
// and call Step at the start of Execute to obtain the time delta.
type AbstractBehaviour struct {
	lastTime float64
	started  bool
}

// Step records now and returns the time since the previous Step; the first
// call returns 0.
func (b *AbstractBehaviour) Step(now float64) float64 {
	if !b.started {
		b.started = true
		b.lastTime = now
		return 0
	}
	dt := now - b.lastTime
	b.lastTime = now
	return dt
}

// Finalize does nothing.
func (b *AbstractBehaviour) Finalize() {}

// AbstractNodeBehaviour is embedded by NodeBehaviour implementations.
type AbstractNodeBehaviour struct {
	AbstractBehaviour
	node *Node
}

// NewAbstractNodeBehaviour returns a base bound to n.
func NewAbstractNodeBehaviour(n *Node) AbstractNodeBehaviour {
	return AbstractNodeBehaviour{node: n}
}

// Node returns the animated node.
func (b *AbstractNodeBehaviour) Node() *Node { return b.node }

// AbstractStateBehaviour is embedded by StateBehaviour implementations.
type AbstractStateBehaviour struct {
	AbstractBehaviour
	state State
}

// NewAbstractStateBehaviour returns a base bound to s.
func NewAbstractStateBehaviour(s State) AbstractStateBehaviour {
	return AbstractStateBehaviour{state: s}
}

// State returns the animated state.
func (b *AbstractStateBehaviour) State() State { return b.state }
