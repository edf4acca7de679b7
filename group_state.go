package grove

import "fmt"

// GroupState applies a list of states as one. It may be enabled for
// several nodes at once: each activation pushes a nil marker followed by
// the member states it enabled, and each disable unwinds to the last
// marker.
type GroupState struct {
	StateBase

	states  []State
	enabled []State
}

// NewGroupState creates a group of states, applied in order.
func NewGroupState(states ...State) *GroupState {
	return &GroupState{states: append([]State(nil), states...)}
}

// AddState appends s to the group. Panics while the group is enabled.
func (g *GroupState) AddState(s State) {
	g.checkNotEnabled("AddState")
	g.states = append(g.states, s)
}

// RemoveState removes s from the group and reports whether it was a
// member. Panics while the group is enabled.
func (g *GroupState) RemoveState(s State) bool {
	g.checkNotEnabled("RemoveState")
	for i, e := range g.states {
		if e == s {
			g.states = append(g.states[:i:i], g.states[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveStates empties the group. Panics while the group is enabled.
func (g *GroupState) RemoveStates() {
	g.checkNotEnabled("RemoveStates")
	g.states = nil
}

// States returns the member states. The returned slice MUST NOT be
// mutated by the caller.
func (g *GroupState) States() []State { return g.states }

func (g *GroupState) checkNotEnabled(op string) {
	if g.enableDepth > 0 || len(g.enabled) > 0 {
		panic(fmt.Sprintf("grove: GroupState.%s called on enabled group %q", op, g.Name))
	}
}

func (g *GroupState) DoEnableState(fc *FrameContext, n *Node, rp RenderParam) StateResult {
	g.enabled = append(g.enabled, nil)
	for _, s := range g.states {
		switch EnableState(s, fc, n, rp) {
		case StateOK:
			g.enabled = append(g.enabled, s)
		case StateSkipOtherStates:
			g.enabled = append(g.enabled, s)
			return StateSkipOtherStates
		case StateSkipRendering:
			g.unwind(fc, n, rp)
			return StateSkipRendering
		case StateSkipped:
		}
	}
	return StateOK
}

func (g *GroupState) DoDisableState(fc *FrameContext, n *Node, rp RenderParam) {
	g.unwind(fc, n, rp)
}

// unwind disables the members enabled by the latest activation, in
// reverse order, and pops its marker.
func (g *GroupState) unwind(fc *FrameContext, n *Node, rp RenderParam) {
	for {
		if len(g.enabled) == 0 {
			panic(fmt.Sprintf("grove: GroupState %q enabled stack corrupted", g.Name))
		}
		s := g.enabled[len(g.enabled)-1]
		g.enabled = g.enabled[:len(g.enabled)-1]
		if s == nil {
			return
		}
		DisableState(s, fc, n, rp)
	}
}

// Clone returns a group sharing the member states.
func (g *GroupState) Clone() State {
	return &GroupState{StateBase: g.cloneBase(), states: append([]State(nil), g.states...)}
}
