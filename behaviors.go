package grove

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// --- Tween ---

// TweenChannel selects the part of a node's relative SRT a TweenBehavior
// animates.
type TweenChannel uint8

const (
	TweenTranslation TweenChannel = iota
	TweenScale
	TweenRotation
)

// TweenBehavior eases one part of a node's relative SRT from its value at
// the first execution to a target value. If the node is destroyed the
// behavior finishes immediately.
type TweenBehavior struct {
	BehaviorBase
	Channel TweenChannel

	ToTranslation mgl64.Vec3
	ToScale       float64
	ToRotation    mgl64.Quat

	// Duration in seconds.
	Duration float32
	Ease     ease.TweenFunc
}

// NewTranslationTween tweens the node's translation to to.
func NewTranslationTween(to mgl64.Vec3, duration float32, fn ease.TweenFunc) *TweenBehavior {
	return &TweenBehavior{Channel: TweenTranslation, ToTranslation: to, Duration: duration, Ease: fn}
}

// NewScaleTween tweens the node's uniform scale to to.
func NewScaleTween(to float64, duration float32, fn ease.TweenFunc) *TweenBehavior {
	return &TweenBehavior{Channel: TweenScale, ToScale: to, Duration: duration, Ease: fn}
}

// NewRotationTween tweens the node's rotation to to along the shortest arc.
func NewRotationTween(to mgl64.Quat, duration float32, fn ease.TweenFunc) *TweenBehavior {
	return &TweenBehavior{Channel: TweenRotation, ToRotation: to, Duration: duration, Ease: fn}
}

// tweenProgress is the per-status state of a TweenBehavior.
type tweenProgress struct {
	tweens  [3]*gween.Tween
	count   int
	from    SRT
	invalid bool
}

func (b *TweenBehavior) easeFunc() ease.TweenFunc {
	if b.Ease == nil {
		return ease.Linear
	}
	return b.Ease
}

func (b *TweenBehavior) BeforeInitialExecute(st *BehaviorStatus) {
	n := st.RequireNode()
	from, err := n.RelTransformationSRT()
	p := &tweenProgress{from: from}
	if err != nil {
		Logger().Warn("grove: tween target has no SRT", slog.String("node", n.Name), slog.Any("error", err))
		p.invalid = true
		AddExtension(st, p)
		return
	}
	fn := b.easeFunc()
	switch b.Channel {
	case TweenTranslation:
		for i := range 3 {
			p.tweens[i] = gween.New(float32(from.Translation[i]), float32(b.ToTranslation[i]), b.Duration, fn)
		}
		p.count = 3
	case TweenScale:
		p.tweens[0] = gween.New(float32(from.Scale), float32(b.ToScale), b.Duration, fn)
		p.count = 1
	case TweenRotation:
		// Tween the interpolation parameter; the quaternion is slerped.
		p.tweens[0] = gween.New(0, 1, b.Duration, fn)
		p.count = 1
	}
	AddExtension(st, p)
}

func (b *TweenBehavior) Execute2(st *BehaviorStatus) BehaviorResult {
	n := st.RequireNode()
	p := RequireExtension[*tweenProgress](st)
	if p.invalid || n.IsDestroyed() {
		return BehaviorFinished
	}
	dt := float32(st.TimeDelta())
	var vals [3]float64
	done := true
	for i := 0; i < p.count; i++ {
		v, finished := p.tweens[i].Update(dt)
		vals[i] = float64(v)
		if !finished {
			done = false
		}
	}
	srt, err := n.RelTransformationSRT()
	if err != nil {
		return BehaviorFinished
	}
	switch b.Channel {
	case TweenTranslation:
		srt.Translation = mgl64.Vec3{vals[0], vals[1], vals[2]}
	case TweenScale:
		srt.Scale = vals[0]
	case TweenRotation:
		srt.Rotation = mgl64.QuatSlerp(p.from.Rotation, b.ToRotation, vals[0]).Normalize()
	}
	n.SetRelTransformationSRT(srt)
	if done {
		return BehaviorFinished
	}
	return BehaviorContinue
}

// --- Motion ---

// MotionBehavior moves a node with a velocity chosen at random on the first
// execution and accelerated by Gravity. It finishes after Lifetime seconds
// (never if Lifetime.Max is 0).
type MotionBehavior struct {
	BehaviorBase

	// Direction is the center of the emission cone; Spread is the cone
	// half angle in radians.
	Direction mgl64.Vec3
	Spread    float64
	Speed     Range
	Gravity   mgl64.Vec3
	Lifetime  Range

	// DestroyOnFinish destroys the node when the behavior is finalized.
	DestroyOnFinish bool

	// Rand is the random source; nil uses the global one.
	Rand *rand.Rand
}

type motionState struct {
	velocity mgl64.Vec3
	lifetime float64
}

func (b *MotionBehavior) BeforeInitialExecute(st *BehaviorStatus) {
	dir := b.Direction
	if dir.Len() < geometryEpsilon {
		dir = mgl64.Vec3{0, 1, 0}
	}
	dir = randomConeDirection(dir.Normalize(), b.Spread, b.Rand)
	AddExtension(st, &motionState{
		velocity: dir.Mul(b.Speed.Random(b.Rand)),
		lifetime: b.Lifetime.Random(b.Rand),
	})
}

func (b *MotionBehavior) Execute2(st *BehaviorStatus) BehaviorResult {
	n := st.RequireNode()
	if n.IsDestroyed() {
		return BehaviorFinished
	}
	m := RequireExtension[*motionState](st)
	dt := st.TimeDelta()
	if dt > 0 {
		m.velocity = m.velocity.Add(b.Gravity.Mul(dt))
		n.MoveRel(m.velocity.Mul(dt))
	}
	if m.lifetime > 0 && st.LocalTime() >= m.lifetime {
		return BehaviorFinished
	}
	return BehaviorContinue
}

func (b *MotionBehavior) Finalize(st *BehaviorStatus) {
	if !b.DestroyOnFinish {
		return
	}
	if n := st.Node(); n != nil {
		n.Destroy()
	}
}

// Velocity returns the current velocity of a status started from a
// MotionBehavior.
func Velocity(st *BehaviorStatus) (mgl64.Vec3, bool) {
	m, ok := GetExtension[*motionState](st)
	if !ok {
		return mgl64.Vec3{}, false
	}
	return m.velocity, true
}

// randomConeDirection returns a unit vector within spread radians of dir.
func randomConeDirection(dir mgl64.Vec3, spread float64, rng *rand.Rand) mgl64.Vec3 {
	if spread <= 0 {
		return dir
	}
	angle := Range{0, spread}.Random(rng)
	turn := Range{0, 2 * math.Pi}.Random(rng)
	// Any axis perpendicular to dir.
	perp := dir.Cross(mgl64.Vec3{1, 0, 0})
	if perp.Len() < geometryEpsilon {
		perp = dir.Cross(mgl64.Vec3{0, 1, 0})
	}
	perp = mgl64.QuatRotate(turn, dir).Rotate(perp.Normalize())
	return mgl64.QuatRotate(angle, perp).Rotate(dir).Normalize()
}

// --- Emitter ---

// EmitterBehavior adds instances of Prototype to its node at Rate per
// second and starts Motion on each one. At most Max instances are alive at
// once (unlimited if 0).
type EmitterBehavior struct {
	BehaviorBase
	Prototype *Node
	Rate      float64
	Max       int
	Motion    Behavior
	Manager   *BehaviourManager
}

type emitterState struct {
	pending float64
	emitted []*Node
}

func (b *EmitterBehavior) PrepareBehaviorStatus(st *BehaviorStatus) {
	AddExtension(st, &emitterState{})
}

func (b *EmitterBehavior) Execute2(st *BehaviorStatus) BehaviorResult {
	n := st.RequireNode()
	if n.IsDestroyed() {
		return BehaviorFinished
	}
	e := RequireExtension[*emitterState](st)
	alive := e.emitted[:0]
	for _, c := range e.emitted {
		if !c.IsDestroyed() {
			alive = append(alive, c)
		}
	}
	clear(e.emitted[len(alive):])
	e.emitted = alive

	e.pending += b.Rate * st.TimeDelta()
	for e.pending >= 1 {
		e.pending--
		if b.Max > 0 && len(e.emitted) >= b.Max {
			continue
		}
		inst := NewInstance(b.Prototype)
		inst.SetTempNode(true)
		n.AddChild(inst)
		e.emitted = append(e.emitted, inst)
		if b.Motion != nil && b.Manager != nil {
			b.Manager.StartNodeBehavior(b.Motion, inst)
		}
	}
	return BehaviorContinue
}

// Emitted returns the live instances created by an EmitterBehavior status.
func Emitted(st *BehaviorStatus) []*Node {
	e, ok := GetExtension[*emitterState](st)
	if !ok {
		return nil
	}
	return e.emitted
}

// --- Legacy behaviours ---

// SpinBehaviour rotates a node around Axis at Speed radians per second.
type SpinBehaviour struct {
	AbstractNodeBehaviour
	Axis  mgl64.Vec3
	Speed float64
	// Duration in seconds; 0 spins forever.
	Duration float64

	elapsed float64
}

// NewSpinBehaviour creates a spin for n.
func NewSpinBehaviour(n *Node, axis mgl64.Vec3, speed float64) *SpinBehaviour {
	return &SpinBehaviour{AbstractNodeBehaviour: NewAbstractNodeBehaviour(n), Axis: axis, Speed: speed}
}

func (b *SpinBehaviour) Execute(now float64) BehaviorResult {
	dt := b.Step(now)
	n := b.Node()
	if n == nil || n.IsDestroyed() {
		return BehaviorFinished
	}
	if dt > 0 {
		n.RotateLocal(b.Speed*dt, b.Axis)
	}
	b.elapsed += dt
	if b.Duration > 0 && b.elapsed >= b.Duration {
		return BehaviorFinished
	}
	return BehaviorContinue
}

// StateToggleBehaviour switches a state between active and inactive every
// Interval seconds.
type StateToggleBehaviour struct {
	AbstractStateBehaviour
	Interval float64
	// Toggles limits the number of switches; 0 toggles forever.
	Toggles int

	acc   float64
	count int
}

// NewStateToggleBehaviour creates a toggle for s.
func NewStateToggleBehaviour(s State, interval float64) *StateToggleBehaviour {
	return &StateToggleBehaviour{AbstractStateBehaviour: NewAbstractStateBehaviour(s), Interval: interval}
}

func (b *StateToggleBehaviour) Execute(now float64) BehaviorResult {
	b.acc += b.Step(now)
	if b.Interval <= 0 {
		return BehaviorFinished
	}
	base := b.State().Base()
	for b.acc >= b.Interval {
		b.acc -= b.Interval
		base.SetActive(!base.IsActive())
		b.count++
		if b.Toggles > 0 && b.count >= b.Toggles {
			return BehaviorFinished
		}
	}
	return BehaviorContinue
}
