package grove

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-9

// drawCall is one DisplayMesh call seen by recordingContext.
type drawCall struct {
	mesh     *Mesh
	world    mgl64.Mat4
	material Material
	blending Blending
	shader   *Shader
	uniforms map[string]any
	lights   int
}

// recordingContext is a RenderingContext that records every mesh drawn
// together with the settings in effect.
type recordingContext struct {
	StateStacks
	calls     []drawCall
	shaderErr error
}

func (r *recordingContext) PushAndSetShader(sh *Shader) error {
	if r.shaderErr != nil {
		return r.shaderErr
	}
	return r.StateStacks.PushAndSetShader(sh)
}

func (r *recordingContext) DisplayMesh(m *Mesh, world mgl64.Mat4) {
	r.calls = append(r.calls, drawCall{
		mesh:     m,
		world:    world,
		material: r.CurrentMaterial(),
		blending: r.CurrentBlending(),
		shader:   r.CurrentShader(),
		uniforms: r.CurrentUniforms(),
		lights:   len(r.ActiveLights()),
	})
}

// drawnMeshes returns the meshes in draw order.
func (r *recordingContext) drawnMeshes() []*Mesh {
	out := make([]*Mesh, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.mesh
	}
	return out
}

// traceState records enable and disable calls into a shared log and returns
// a configurable result.
type traceState struct {
	StateBase
	log    *[]string
	result StateResult
}

func newTraceState(name string, log *[]string) *traceState {
	return &traceState{StateBase: StateBase{Name: name}, log: log}
}

func (s *traceState) DoEnableState(_ *FrameContext, n *Node, _ RenderParam) StateResult {
	*s.log = append(*s.log, "+"+s.Name+"@"+n.Name)
	return s.result
}

func (s *traceState) DoDisableState(_ *FrameContext, n *Node, _ RenderParam) {
	*s.log = append(*s.log, "-"+s.Name+"@"+n.Name)
}

func (s *traceState) Clone() State {
	return &traceState{StateBase: s.cloneBase(), log: s.log, result: s.result}
}

func newTestFrame(t *testing.T) (*FrameContext, *recordingContext) {
	t.Helper()
	rc := &recordingContext{}
	return NewFrameContext(rc), rc
}

func unitBoxMesh() *Mesh {
	return NewBoxMesh(NewBox(mgl64.Vec3{-0.5, -0.5, -0.5}, mgl64.Vec3{0.5, 0.5, 0.5}), ColorWhite)
}

func requireVecNear(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	require.Truef(t, want.ApproxEqualThreshold(got, 1e-6), "want %v, got %v", want, got)
}

// withDebug turns on debug mode for the duration of the test.
func withDebug(t *testing.T) {
	t.Helper()
	prev := DebugMode()
	SetDebugMode(true)
	t.Cleanup(func() { SetDebugMode(prev) })
}
