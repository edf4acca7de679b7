package grove

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// TransparencyRendererState collects the nodes redirected into the
// transparency channel while it is enabled and draws them back to front
// when it is disabled. Attach it to the root of the subtree whose
// transparent nodes should be sorted together.
type TransparencyRendererState struct {
	StateBase

	activations []*transparencyActivation
}

type transparencyActivation struct {
	handle  RendererHandle
	nodes   []*Node
	drawing bool
}

// NewTransparencyRendererState creates a transparency renderer.
func NewTransparencyRendererState() *TransparencyRendererState {
	return &TransparencyRendererState{}
}

func (s *TransparencyRendererState) DoEnableState(fc *FrameContext, _ *Node, _ RenderParam) StateResult {
	a := &transparencyActivation{}
	a.handle = fc.RegisterNodeRenderer(fc.TransparencyChannel(),
		func(fc *FrameContext, n *Node, rp RenderParam) NodeRendererResult {
			if a.drawing {
				n.Display(fc, rp)
			} else {
				a.nodes = append(a.nodes, n)
			}
			return RendererHandled
		})
	s.activations = append(s.activations, a)
	return StateOK
}

// DoDisableState draws the collected nodes, farthest first, and
// unregisters the collecting renderer.
func (s *TransparencyRendererState) DoDisableState(fc *FrameContext, _ *Node, rp RenderParam) {
	a := s.activations[len(s.activations)-1]
	s.activations = s.activations[:len(s.activations)-1]

	sortBackToFront(a.nodes, viewerPosition(fc))
	// Nodes below a redirected list node reach the channel again; the
	// renderer displays them directly while drawing.
	a.drawing = true
	drawRP := rp.WithChannel(fc.TransparencyChannel())
	for _, n := range a.nodes {
		if !n.IsDestroyed() {
			n.Display(fc, drawRP)
		}
	}
	fc.UnregisterNodeRenderer(fc.TransparencyChannel(), a.handle)
}

func (s *TransparencyRendererState) Clone() State {
	return &TransparencyRendererState{StateBase: s.cloneBase()}
}

func viewerPosition(fc *FrameContext) mgl64.Vec3 {
	if cam := fc.Camera(); cam != nil {
		return cam.WorldOrigin()
	}
	return mgl64.Vec3{}
}

// sortBackToFront orders nodes by decreasing distance of their world box
// centers from eye. The sort is stable so equidistant nodes keep their
// display order.
func sortBackToFront(nodes []*Node, eye mgl64.Vec3) {
	dist := make(map[*Node]float64, len(nodes))
	for _, n := range nodes {
		c := n.WorldBB().Center()
		dist[n] = c.Sub(eye).LenSqr()
	}
	slices.SortStableFunc(nodes, func(a, b *Node) int {
		da, db := dist[a], dist[b]
		switch {
		case da > db:
			return -1
		case da < db:
			return 1
		default:
			return 0
		}
	})
}
