package grove

import (
	"fmt"
	"log/slog"
	"slices"
)

type nodeBehaviourEntry struct {
	node      *Node
	behaviour NodeBehaviour
	removed   bool
}

type stateBehaviourEntry struct {
	state     State
	behaviour StateBehaviour
	removed   bool
}

// BehaviourManager runs behaviours once per frame. It keeps two
// registries: legacy Behaviour objects keyed by node or state, and the
// BehaviorStatus list of running Behavior executions.
//
// Behaviours may register, start or remove other behaviours while being
// executed. Anything registered or started during ExecuteBehaviours first
// runs on the next call.
type BehaviourManager struct {
	nodeBehaviours  []*nodeBehaviourEntry
	stateBehaviours []*stateBehaviourEntry

	statuses []*BehaviorStatus
	running  []*BehaviorStatus
}

// NewBehaviourManager creates an empty manager with room for capacity
// running statuses.
func NewBehaviourManager(capacity int) *BehaviourManager {
	return &BehaviourManager{statuses: make([]*BehaviorStatus, 0, max(capacity, 0))}
}

// --- Legacy registry ---

// RegisterBehaviour adds a NodeBehaviour or StateBehaviour. Other
// Behaviour implementations are logged and ignored. Reports whether b was
// registered.
func (m *BehaviourManager) RegisterBehaviour(b Behaviour) bool {
	switch b := b.(type) {
	case NodeBehaviour:
		m.nodeBehaviours = append(m.nodeBehaviours, &nodeBehaviourEntry{node: b.Node(), behaviour: b})
	case StateBehaviour:
		m.stateBehaviours = append(m.stateBehaviours, &stateBehaviourEntry{state: b.State(), behaviour: b})
	default:
		Logger().Warn("grove: unknown behaviour type", slog.String("type", fmt.Sprintf("%T", b)))
		return false
	}
	return true
}

// RemoveBehaviour finalizes b and removes it. Reports whether b was
// registered.
func (m *BehaviourManager) RemoveBehaviour(b Behaviour) bool {
	for i, e := range m.nodeBehaviours {
		if !e.removed && Behaviour(e.behaviour) == b {
			e.removed = true
			m.nodeBehaviours = slices.Delete(slices.Clone(m.nodeBehaviours), i, i+1)
			b.Finalize()
			return true
		}
	}
	for i, e := range m.stateBehaviours {
		if !e.removed && Behaviour(e.behaviour) == b {
			e.removed = true
			m.stateBehaviours = slices.Delete(slices.Clone(m.stateBehaviours), i, i+1)
			b.Finalize()
			return true
		}
	}
	return false
}

// RemoveNodeBehaviours finalizes and removes every legacy behaviour of n.
func (m *BehaviourManager) RemoveNodeBehaviours(n *Node) {
	for _, b := range m.BehavioursByNode(n) {
		m.RemoveBehaviour(b)
	}
}

// RemoveStateBehaviours finalizes and removes every legacy behaviour of s.
func (m *BehaviourManager) RemoveStateBehaviours(s State) {
	for _, b := range m.BehavioursByState(s) {
		m.RemoveBehaviour(b)
	}
}

// BehavioursByNode returns the legacy behaviours registered for n.
func (m *BehaviourManager) BehavioursByNode(n *Node) []NodeBehaviour {
	var out []NodeBehaviour
	for _, e := range m.nodeBehaviours {
		if !e.removed && e.node == n {
			out = append(out, e.behaviour)
		}
	}
	return out
}

// BehavioursByState returns the legacy behaviours registered for s.
func (m *BehaviourManager) BehavioursByState(s State) []StateBehaviour {
	var out []StateBehaviour
	for _, e := range m.stateBehaviours {
		if !e.removed && e.state == s {
			out = append(out, e.behaviour)
		}
	}
	return out
}

// NumBehaviours returns the number of registered legacy behaviours.
func (m *BehaviourManager) NumBehaviours() int {
	return len(m.nodeBehaviours) + len(m.stateBehaviours)
}

// --- Behavior statuses ---

// StartNodeBehavior starts a new execution of b animating n. It first runs
// on the next ExecuteBehaviours call.
func (m *BehaviourManager) StartNodeBehavior(b Behavior, n *Node) *BehaviorStatus {
	st := newBehaviorStatusWith(b, BehaviorNodeReference{Node: n})
	m.statuses = append(m.statuses, st)
	statusListOf(n, true).add(st)
	return st
}

// StartStateBehavior starts a new execution of b animating s. It first
// runs on the next ExecuteBehaviours call.
func (m *BehaviourManager) StartStateBehavior(b Behavior, s State) *BehaviorStatus {
	st := newBehaviorStatusWith(b, BehaviorStateReference{State: s})
	m.statuses = append(m.statuses, st)
	statusListOf(s.Base(), true).add(st)
	return st
}

// ActiveBehaviorStatusesByNode returns the unfinished statuses animating n.
func (m *BehaviourManager) ActiveBehaviorStatusesByNode(n *Node) []*BehaviorStatus {
	if l := statusListOf(n, false); l != nil {
		return l.active()
	}
	return nil
}

// ActiveBehaviorStatusesByState returns the unfinished statuses animating s.
func (m *BehaviourManager) ActiveBehaviorStatusesByState(s State) []*BehaviorStatus {
	if l := statusListOf(s.Base(), false); l != nil {
		return l.active()
	}
	return nil
}

// ActiveBehaviorStatuses returns every status that will run next frame.
func (m *BehaviourManager) ActiveBehaviorStatuses() []*BehaviorStatus {
	out := make([]*BehaviorStatus, 0, len(m.statuses))
	for _, st := range m.statuses {
		if !st.IsFinished() {
			out = append(out, st)
		}
	}
	return out
}

// FinalizeNodeBehaviors finalizes every status animating n.
func (m *BehaviourManager) FinalizeNodeBehaviors(n *Node) {
	for _, st := range m.ActiveBehaviorStatusesByNode(n) {
		st.Finalize()
	}
}

// FinalizeStateBehaviors finalizes every status animating s.
func (m *BehaviourManager) FinalizeStateBehaviors(s State) {
	for _, st := range m.ActiveBehaviorStatusesByState(s) {
		st.Finalize()
	}
}

// --- Execution ---

// ExecuteBehaviours runs one frame at time now: legacy node behaviours,
// then legacy state behaviours, then behavior statuses.
func (m *BehaviourManager) ExecuteBehaviours(now float64) {
	m.executeNodeBehaviours(now)
	m.executeStateBehaviours(now)
	m.executeBehaviors(now)
}

func (m *BehaviourManager) executeNodeBehaviours(now float64) {
	entries := m.nodeBehaviours
	finished := false
	for _, e := range entries {
		if e.removed {
			continue
		}
		if e.behaviour.Execute(now) == BehaviorFinished {
			e.removed = true
			finished = true
			e.behaviour.Finalize()
		}
	}
	if finished {
		m.nodeBehaviours = slices.DeleteFunc(slices.Clone(m.nodeBehaviours),
			func(e *nodeBehaviourEntry) bool { return e.removed })
	}
}

func (m *BehaviourManager) executeStateBehaviours(now float64) {
	entries := m.stateBehaviours
	finished := false
	for _, e := range entries {
		if e.removed {
			continue
		}
		if e.behaviour.Execute(now) == BehaviorFinished {
			e.removed = true
			finished = true
			e.behaviour.Finalize()
		}
	}
	if finished {
		m.stateBehaviours = slices.DeleteFunc(slices.Clone(m.stateBehaviours),
			func(e *stateBehaviourEntry) bool { return e.removed })
	}
}

// executeBehaviors moves the running statuses out of m.statuses, runs
// them, and appends the ones that continue back. A status started while
// running is appended to m.statuses after the survivors visited so far and
// is not run this frame.
func (m *BehaviourManager) executeBehaviors(now float64) {
	m.running = m.statuses
	m.statuses = make([]*BehaviorStatus, 0, cap(m.running))
	for i := 0; i < len(m.running); i++ {
		st := m.running[i]
		if st.Execute(now) == BehaviorContinue && !st.IsFinished() {
			m.statuses = append(m.statuses, st)
		}
	}
	m.running = nil
}

// Clear finalizes and removes everything. When called from a running
// behavior, the statuses of the current frame are finalized as well and
// the rest of the frame is skipped.
func (m *BehaviourManager) Clear() {
	nodes, states := m.nodeBehaviours, m.stateBehaviours
	statuses := slices.Concat(m.running, m.statuses)
	m.nodeBehaviours, m.stateBehaviours, m.statuses, m.running = nil, nil, nil, nil
	for _, e := range nodes {
		if !e.removed {
			e.removed = true
			e.behaviour.Finalize()
		}
	}
	for _, e := range states {
		if !e.removed {
			e.removed = true
			e.behaviour.Finalize()
		}
	}
	for _, st := range statuses {
		st.Finalize()
	}
}
