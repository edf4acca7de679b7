package grove

import "fmt"

// StateResult is the outcome of enabling a state for one node.
type StateResult uint8

const (
	// StateOK means the state was applied; it must be disabled after the
	// node has been displayed.
	StateOK StateResult = iota
	// StateSkipped means the state did nothing and must not be disabled.
	StateSkipped
	// StateSkipOtherStates means the state was applied and no further
	// states of the node are enabled. It must be disabled afterward.
	StateSkipOtherStates
	// StateSkipRendering means the node must not be drawn in this pass. The
	// state is not enabled and must not be disabled.
	StateSkipRendering
)

// String returns the result name.
func (r StateResult) String() string {
	switch r {
	case StateOK:
		return "ok"
	case StateSkipped:
		return "skipped"
	case StateSkipOtherStates:
		return "skip-other-states"
	case StateSkipRendering:
		return "skip-rendering"
	default:
		return fmt.Sprintf("StateResult(%d)", uint8(r))
	}
}

// State configures the rendering backend while the node it is attached to
// is displayed. A state may be attached to any number of nodes and may be
// enabled for several of them at once; per-activation data must be kept on
// a stack.
//
// Implementations embed StateBase. Callers use EnableState and
// DisableState rather than calling DoEnableState and DoDisableState
// directly.
type State interface {
	Base() *StateBase
	DoEnableState(fc *FrameContext, n *Node, rp RenderParam) StateResult
	DoDisableState(fc *FrameContext, n *Node, rp RenderParam)
	Clone() State
}

// StateBase holds the fields shared by all states. The zero value is an
// active state in the default rendering layer.
type StateBase struct {
	Name string

	inactive    bool
	temp        bool
	layers      RenderingLayers
	layersSet   bool
	enableDepth int
	attrs       Attributes
}

// Base returns b itself so embedding types satisfy State.
func (b *StateBase) Base() *StateBase { return b }

// Attributes returns the state's attribute store.
func (b *StateBase) Attributes() *Attributes { return &b.attrs }

// IsActive reports whether the state is applied when enabled.
func (b *StateBase) IsActive() bool { return !b.inactive }

// Activate marks the state active.
func (b *StateBase) Activate() { b.inactive = false }

// Deactivate marks the state inactive; EnableState then skips it.
func (b *StateBase) Deactivate() { b.inactive = true }

// SetActive activates or deactivates the state.
func (b *StateBase) SetActive(active bool) { b.inactive = !active }

// IsTempState reports whether the state is temporary (not meant to be saved).
func (b *StateBase) IsTempState() bool { return b.temp }

// SetTempState marks or unmarks the state as temporary.
func (b *StateBase) SetTempState(temp bool) { b.temp = temp }

// RenderingLayers returns the layers the state is applied in.
func (b *StateBase) RenderingLayers() RenderingLayers {
	if !b.layersSet {
		return RenderingLayerDefault
	}
	return b.layers
}

// SetRenderingLayers sets the layers the state is applied in.
func (b *StateBase) SetRenderingLayers(l RenderingLayers) {
	b.layers = l
	b.layersSet = true
}

// TestRenderingLayer reports whether the state shares a layer with l.
func (b *StateBase) TestRenderingLayer(l RenderingLayers) bool {
	return b.RenderingLayers().Test(l)
}

// EnableDepth returns the number of activations not yet disabled.
func (b *StateBase) EnableDepth() int { return b.enableDepth }

// cloneBase copies the configuration of b. Activations and extensions are
// not copied.
func (b *StateBase) cloneBase() StateBase {
	return StateBase{
		Name:      b.Name,
		inactive:  b.inactive,
		temp:      b.temp,
		layers:    b.layers,
		layersSet: b.layersSet,
		attrs:     b.attrs.cloneNamed(),
	}
}

// EnableState applies s for node n. Inactive states and states outside
// rp.Layers return StateSkipped without being called.
func EnableState(s State, fc *FrameContext, n *Node, rp RenderParam) StateResult {
	b := s.Base()
	if b.inactive || !b.TestRenderingLayer(rp.Layers) {
		return StateSkipped
	}
	r := s.DoEnableState(fc, n, rp)
	if r == StateOK || r == StateSkipOtherStates {
		b.enableDepth++
	}
	return r
}

// DisableState undoes a successful EnableState. Panics if s is inactive or
// has no outstanding activation.
func DisableState(s State, fc *FrameContext, n *Node, rp RenderParam) {
	b := s.Base()
	if b.inactive {
		panic(fmt.Sprintf("grove: disabling inactive state %q", b.Name))
	}
	if b.enableDepth <= 0 {
		panic(fmt.Sprintf("grove: disabling state %q that is not enabled", b.Name))
	}
	b.enableDepth--
	s.DoDisableState(fc, n, rp)
}

// redirectToChannel displays n in the transparency channel unless rp is
// already that channel. Reports whether another renderer took the node.
func redirectToChannel(fc *FrameContext, n *Node, rp RenderParam) bool {
	channel := fc.TransparencyChannel()
	if rp.Channel == channel {
		return false
	}
	if !fc.DisplayNode(n, rp.WithChannel(channel)) {
		return false
	}
	fc.stats.Redirected++
	return true
}
