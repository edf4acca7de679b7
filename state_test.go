package grove

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnableStateSkipsInactiveAndOtherLayers(t *testing.T) {
	fc, _ := newTestFrame(t)
	var log []string
	s := newTraceState("s", &log)
	n := NewListNode("n")
	rp := NewRenderParam()

	s.Deactivate()
	assert.Equal(t, StateSkipped, EnableState(s, fc, n, rp))
	s.Activate()
	s.SetRenderingLayers(0b10)
	assert.Equal(t, StateSkipped, EnableState(s, fc, n, rp))
	assert.Empty(t, log)

	rp.Layers = 0b11
	assert.Equal(t, StateOK, EnableState(s, fc, n, rp))
	assert.Equal(t, 1, s.EnableDepth())
	DisableState(s, fc, n, rp)
	assert.Equal(t, 0, s.EnableDepth())
	assert.Equal(t, []string{"+s@n", "-s@n"}, log)
}

func TestDisableStateMisuse(t *testing.T) {
	fc, _ := newTestFrame(t)
	var log []string
	s := newTraceState("s", &log)
	n := NewListNode("n")
	rp := NewRenderParam()

	assert.Panics(t, func() { DisableState(s, fc, n, rp) }, "never enabled")

	require.Equal(t, StateOK, EnableState(s, fc, n, rp))
	s.Deactivate()
	assert.Panics(t, func() { DisableState(s, fc, n, rp) }, "inactive")

	s.Activate()
	s.result = StateSkipped
	assert.Equal(t, StateSkipped, EnableState(s, fc, n, rp))
	assert.Equal(t, 1, s.EnableDepth(), "skipped enables are not counted")
}

func TestDisplayEnablesStatesInOrder(t *testing.T) {
	fc, rc := newTestFrame(t)
	var log []string
	a, b, c := newTraceState("a", &log), newTraceState("b", &log), newTraceState("c", &log)
	b.result = StateSkipped

	g := NewGeometryNode("g", unitBoxMesh())
	g.AddState(a)
	g.AddState(b)
	g.AddState(c)
	g.Display(fc, NewRenderParam())

	assert.Equal(t, []string{"+a@g", "+b@g", "+c@g", "-c@g", "-a@g"}, log)
	assert.Len(t, rc.calls, 1)
}

func TestDisplaySkipOtherStates(t *testing.T) {
	fc, rc := newTestFrame(t)
	var log []string
	a, b := newTraceState("a", &log), newTraceState("b", &log)
	a.result = StateSkipOtherStates

	g := NewGeometryNode("g", unitBoxMesh())
	g.AddState(a)
	g.AddState(b)
	g.Display(fc, NewRenderParam())

	assert.Equal(t, []string{"+a@g", "-a@g"}, log)
	assert.Len(t, rc.calls, 1)
}

func TestDisplaySkipRendering(t *testing.T) {
	fc, rc := newTestFrame(t)
	var log []string
	a, b, c := newTraceState("a", &log), newTraceState("b", &log), newTraceState("c", &log)
	b.result = StateSkipRendering

	g := NewGeometryNode("g", unitBoxMesh())
	g.AddState(a)
	g.AddState(b)
	g.AddState(c)
	g.Display(fc, NewRenderParam())

	assert.Equal(t, []string{"+a@g", "+b@g", "-a@g"}, log)
	assert.Empty(t, rc.calls)
	assert.Equal(t, 0, a.EnableDepth())
	assert.Equal(t, 0, b.EnableDepth())
}

func TestDisplayRespectsFlags(t *testing.T) {
	var log []string
	s := newTraceState("s", &log)
	g := NewGeometryNode("g", unitBoxMesh())
	g.AddState(s)

	fc, rc := newTestFrame(t)
	g.Display(fc, NewRenderParam().WithFlags(RenderNoStates))
	assert.Empty(t, log)
	assert.Len(t, rc.calls, 1)

	fc, rc = newTestFrame(t)
	g.Display(fc, NewRenderParam().WithFlags(RenderNoGeometry))
	assert.Equal(t, []string{"+s@g", "-s@g"}, log)
	assert.Empty(t, rc.calls)

	fc, rc = newTestFrame(t)
	g.SetStateEnabled(s, false)
	g.Deactivate()
	g.Display(fc, NewRenderParam())
	assert.Empty(t, rc.calls)
	g.Activate()
	g.Display(fc, NewRenderParam())
	assert.Len(t, rc.calls, 1)
	assert.Len(t, log, 2)
}

func TestSharedStateNestsAcrossNodes(t *testing.T) {
	fc, rc := newTestFrame(t)
	red := DefaultMaterial()
	red.Diffuse = Color{R: 1, A: 1}
	blue := DefaultMaterial()
	blue.Diffuse = Color{B: 1, A: 1}
	redState := NewMaterialState(red)

	root := NewListNode("root")
	root.AddState(redState)
	inner := NewListNode("inner")
	inner.AddState(NewMaterialState(blue))
	inner.AddState(redState)
	root.AddChild(inner)
	inner.AddChild(NewGeometryNode("g", unitBoxMesh()))

	fc.DisplayNode(root, NewRenderParam())
	require.Len(t, rc.calls, 1)
	assert.Equal(t, red, rc.calls[0].material)
	assert.True(t, rc.Balanced())
	assert.Equal(t, 0, redState.EnableDepth())
}

func TestLightingState(t *testing.T) {
	fc, rc := newTestFrame(t)
	light := NewLightNode("light", DefaultLightParameters(LightPoint))
	light.SetRelPosition(mgl64.Vec3{0, 3, 0})
	ls := NewLightingState(light)

	g := NewGeometryNode("g", unitBoxMesh())
	g.AddState(ls)
	g.Display(fc, NewRenderParam())
	require.Len(t, rc.calls, 1)
	assert.Equal(t, 1, rc.calls[0].lights)
	assert.True(t, rc.Balanced())

	light.Destroy()
	assert.Equal(t, StateSkipped, EnableState(ls, fc, g, NewRenderParam()))
	assert.Equal(t, StateSkipped, EnableState(NewLightingState(NewListNode("x")), fc, g, NewRenderParam()))
}

func TestShaderStateUniforms(t *testing.T) {
	fc, rc := newTestFrame(t)
	sh := &Shader{Name: "wave"}
	ss := NewShaderState(sh)
	ss.SetUniform(Uniform{Name: "amp", Value: 1.0})
	ss.SetUniform(Uniform{Name: "freq", Value: 2.0})
	ss.SetUniform(Uniform{Name: "amp", Value: 3.0})
	assert.Len(t, ss.Uniforms(), 2)

	overlay := NewShaderUniformState(Uniform{Name: "freq", Value: 9.0})

	g := NewGeometryNode("g", unitBoxMesh())
	g.AddState(ss)
	g.AddState(overlay)
	g.Display(fc, NewRenderParam())

	require.Len(t, rc.calls, 1)
	assert.Same(t, sh, rc.calls[0].shader)
	assert.Equal(t, map[string]any{"amp": 3.0, "freq": 9.0}, rc.calls[0].uniforms)
	assert.True(t, rc.Balanced())

	ss.RemoveUniform("amp")
	assert.Len(t, ss.Uniforms(), 1)
}

func TestShaderStateDeactivatesOnFailure(t *testing.T) {
	fc, rc := newTestFrame(t)
	rc.shaderErr = errors.New("syntax error")
	ss := NewShaderState(&Shader{Name: "bad"})
	g := NewGeometryNode("g", unitBoxMesh())
	g.AddState(ss)

	g.Display(fc, NewRenderParam())
	assert.False(t, ss.IsActive())
	require.Len(t, rc.calls, 1)
	assert.Nil(t, rc.calls[0].shader)
	assert.True(t, rc.Balanced())
}

func TestFixedFunctionStates(t *testing.T) {
	fc, rc := newTestFrame(t)
	tex := &Texture{Name: "t"}
	states := []State{
		NewBlendingState(BlendingDisabled),
		NewDepthBufferState(DepthBuffer{Test: false, Write: true}),
		NewCullFaceState(CullFace{Enabled: true, Mode: CullFront}),
		NewAlphaTestState(AlphaTest{Enabled: true, Func: CompareGreater, Reference: 0.5}),
		NewPolygonModeState(PolygonMode{Mode: PolygonLine}),
		NewPointParameterState(PointParameters{Size: 4}),
		NewTextureState(tex, 1),
	}
	g := NewGeometryNode("g", unitBoxMesh())
	for _, s := range states {
		g.AddState(s)
	}

	for _, s := range states {
		require.Equal(t, StateOK, EnableState(s, fc, g, NewRenderParam()))
	}
	assert.Equal(t, BlendingDisabled, rc.CurrentBlending())
	assert.Equal(t, DepthBuffer{Test: false, Write: true}, rc.CurrentDepthBuffer())
	assert.Equal(t, CullFront, rc.CurrentCullFace().Mode)
	assert.True(t, rc.CurrentAlphaTest().Enabled)
	assert.Equal(t, PolygonLine, rc.CurrentPolygonMode().Mode)
	assert.Equal(t, 4.0, rc.CurrentPointParameters().Size)
	assert.Same(t, tex, rc.CurrentTexture(1))
	for i := len(states) - 1; i >= 0; i-- {
		DisableState(states[i], fc, g, NewRenderParam())
	}
	assert.True(t, rc.Balanced())
}

func TestStateClone(t *testing.T) {
	ms := NewMaterialState(DefaultMaterial())
	ms.Name = "m"
	ms.SetRenderingLayers(0b100)
	ms.SetTempState(true)
	ms.Attributes().SetAttribute("k", 1.0)

	c := ms.Clone().(*MaterialState)
	assert.NotSame(t, ms, c)
	assert.Equal(t, "m", c.Name)
	assert.Equal(t, RenderingLayers(0b100), c.RenderingLayers())
	assert.True(t, c.IsTempState())
	v, ok := c.Attributes().Attribute("k")
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)

	ss := NewShaderState(&Shader{})
	ss.SetUniform(Uniform{Name: "a", Value: 1})
	sc := ss.Clone().(*ShaderState)
	sc.SetUniform(Uniform{Name: "b", Value: 2})
	assert.Len(t, ss.Uniforms(), 1)
}

func TestStateResultString(t *testing.T) {
	assert.Equal(t, "skip-rendering", StateSkipRendering.String())
	assert.Equal(t, "StateResult(9)", StateResult(9).String())
}

func TestStatesExposeBase(t *testing.T) {
	for _, s := range []State{
		&MaterialState{}, &BlendingState{}, &DepthBufferState{}, &CullFaceState{},
		&AlphaTestState{}, &PolygonModeState{}, &PointParameterState{}, &LightingState{},
		&ShaderState{}, &ShaderUniformState{}, &TextureState{}, &GroupState{},
		&TransparencyRendererState{}, newTraceState("trace", nil),
	} {
		s.Base().Name = "named"
		c := s.Clone()
		assert.IsType(t, s, c)
		assert.Equal(t, "named", c.Base().Name, "%T", s)
		assert.NotSame(t, s.Base(), c.Base(), "%T", s)
	}
}
