package grove

import (
	"weak"
)

// BehaviorResult is returned by each execution step of a behavior.
type BehaviorResult uint8

const (
	// BehaviorContinue keeps the behavior running next frame.
	BehaviorContinue BehaviorResult = iota
	// BehaviorFinished ends the behavior; it is finalized immediately.
	BehaviorFinished
)

// String returns the result name.
func (r BehaviorResult) String() string {
	if r == BehaviorFinished {
		return "finished"
	}
	return "continue"
}

// BehaviorLifecycle is the state of a BehaviorStatus.
type BehaviorLifecycle uint8

const (
	BehaviorNew BehaviorLifecycle = iota
	BehaviorActive
	// BehaviorFinishedState is terminal.
	BehaviorFinishedState
)

// String returns the lifecycle name.
func (l BehaviorLifecycle) String() string {
	switch l {
	case BehaviorNew:
		return "new"
	case BehaviorActive:
		return "active"
	default:
		return "finished"
	}
}

// Behavior is a shareable, stateless per-frame update rule. Everything
// that changes while it runs lives in the BehaviorStatus passed to each
// hook.
//
// Embed BehaviorBase for no-op versions of the optional hooks.
type Behavior interface {
	// PrepareBehaviorStatus is called once when a status is created, to
	// attach extensions.
	PrepareBehaviorStatus(st *BehaviorStatus)
	// BeforeInitialExecute is called on the first execution, after the
	// status times have been set.
	BeforeInitialExecute(st *BehaviorStatus)
	// Execute2 runs one step.
	Execute2(st *BehaviorStatus) BehaviorResult
	// Finalize releases whatever the behavior set up for st.
	Finalize(st *BehaviorStatus)
}

// BehaviorBase provides no-op optional hooks.
type BehaviorBase struct{}

func (BehaviorBase) PrepareBehaviorStatus(*BehaviorStatus) {}
func (BehaviorBase) BeforeInitialExecute(*BehaviorStatus)  {}
func (BehaviorBase) Finalize(*BehaviorStatus)              {}

// BehaviorFunc adapts a step function to a Behavior.
type BehaviorFunc func(st *BehaviorStatus) BehaviorResult

func (BehaviorFunc) PrepareBehaviorStatus(*BehaviorStatus)        {}
func (BehaviorFunc) BeforeInitialExecute(*BehaviorStatus)         {}
func (f BehaviorFunc) Execute2(st *BehaviorStatus) BehaviorResult { return f(st) }
func (BehaviorFunc) Finalize(*BehaviorStatus)                     {}

// BehaviorNodeReference is the extension linking a status to the node it
// animates.
type BehaviorNodeReference struct {
	Node *Node
}

// BehaviorStateReference is the extension linking a status to the state it
// animates.
type BehaviorStateReference struct {
	State State
}

// BehaviorStatus is one running execution of a Behavior. Times are only
// meaningful once the status has left BehaviorNew.
type BehaviorStatus struct {
	behavior  Behavior
	lifecycle BehaviorLifecycle

	startingTime float64
	lastTime     float64
	currentTime  float64

	attrs Attributes
}

// NewBehaviorStatus creates a status for b and lets b prepare it.
func NewBehaviorStatus(b Behavior) *BehaviorStatus {
	st := &BehaviorStatus{behavior: b}
	b.PrepareBehaviorStatus(st)
	return st
}

// newBehaviorStatusWith attaches ext before b prepares the status, so that
// PrepareBehaviorStatus can rely on it.
func newBehaviorStatusWith[T any](b Behavior, ext T) *BehaviorStatus {
	st := &BehaviorStatus{behavior: b}
	AddExtension(st, ext)
	b.PrepareBehaviorStatus(st)
	return st
}

// Behavior returns the behavior this status runs.
func (st *BehaviorStatus) Behavior() Behavior { return st.behavior }

// Attributes returns the status' attribute store.
func (st *BehaviorStatus) Attributes() *Attributes { return &st.attrs }

// Lifecycle returns the current lifecycle state.
func (st *BehaviorStatus) Lifecycle() BehaviorLifecycle { return st.lifecycle }

// IsFinished reports whether the status has finished.
func (st *BehaviorStatus) IsFinished() bool { return st.lifecycle == BehaviorFinishedState }

// StartingTime returns the time of the first execution.
func (st *BehaviorStatus) StartingTime() float64 { return st.startingTime }

// LastTime returns the time of the previous execution.
func (st *BehaviorStatus) LastTime() float64 { return st.lastTime }

// CurrentTime returns the time of the current execution.
func (st *BehaviorStatus) CurrentTime() float64 { return st.currentTime }

// TimeDelta returns the time elapsed since the previous execution. It is 0
// on the first execution.
func (st *BehaviorStatus) TimeDelta() float64 { return st.currentTime - st.lastTime }

// LocalTime returns the time elapsed since the first execution.
func (st *BehaviorStatus) LocalTime() float64 { return st.currentTime - st.startingTime }

// Execute runs one step at time now and returns the result. A finished
// status returns BehaviorFinished without doing anything.
func (st *BehaviorStatus) Execute(now float64) BehaviorResult {
	if st.lifecycle == BehaviorNew {
		st.startingTime, st.lastTime, st.currentTime = now, now, now
		st.lifecycle = BehaviorActive
		st.behavior.BeforeInitialExecute(st)
	}
	if st.lifecycle != BehaviorActive {
		return BehaviorFinished
	}
	st.lastTime = st.currentTime
	st.currentTime = now
	r := st.behavior.Execute2(st)
	if r == BehaviorFinished {
		st.Finalize()
	}
	return r
}

// Finalize finishes an active status and calls the behavior's Finalize.
// A status that never ran is marked finished without calling the hook.
// Finalizing a finished status does nothing.
func (st *BehaviorStatus) Finalize() {
	if st.lifecycle != BehaviorActive {
		if st.lifecycle == BehaviorNew {
			st.lifecycle = BehaviorFinishedState
		}
		return
	}
	st.lifecycle = BehaviorFinishedState
	st.behavior.Finalize(st)
}

// Node returns the node the status animates, or nil.
func (st *BehaviorStatus) Node() *Node {
	ref, _ := GetExtension[BehaviorNodeReference](st)
	return ref.Node
}

// RequireNode returns the node the status animates. Panics if there is
// none.
func (st *BehaviorStatus) RequireNode() *Node {
	return RequireExtension[BehaviorNodeReference](st).Node
}

// State returns the state the status animates, or nil.
func (st *BehaviorStatus) State() State {
	ref, _ := GetExtension[BehaviorStateReference](st)
	return ref.State
}

// RequireState returns the state the status animates. Panics if there is
// none.
func (st *BehaviorStatus) RequireState() State {
	return RequireExtension[BehaviorStateReference](st).State
}

// behaviorStatusList is stored as an extension on nodes and states. It
// holds weak references so it never keeps a status alive, and drops
// finished or collected entries whenever it is read or appended to.
type behaviorStatusList struct {
	entries []weak.Pointer[BehaviorStatus]
}

func (l *behaviorStatusList) add(st *BehaviorStatus) {
	l.prune()
	l.entries = append(l.entries, weak.Make(st))
}

func (l *behaviorStatusList) active() []*BehaviorStatus {
	l.prune()
	out := make([]*BehaviorStatus, 0, len(l.entries))
	for _, w := range l.entries {
		if st := w.Value(); st != nil {
			out = append(out, st)
		}
	}
	return out
}

func (l *behaviorStatusList) prune() {
	kept := l.entries[:0]
	for _, w := range l.entries {
		if st := w.Value(); st != nil && !st.IsFinished() {
			kept = append(kept, w)
		}
	}
	clear(l.entries[len(kept):])
	l.entries = kept
}

// statusListOf returns p's status list, creating it if create is set.
func statusListOf(p AttributeProvider, create bool) *behaviorStatusList {
	if l, ok := GetExtension[*behaviorStatusList](p); ok {
		return l
	}
	if !create {
		return nil
	}
	l := &behaviorStatusList{}
	AddExtension(p, l)
	return l
}
