package grove

import (
	"log/slog"
)

// --- Material ---

// MaterialState sets a material. Transparent materials first try to move
// the node into the transparency channel.
type MaterialState struct {
	StateBase
	Material Material
}

// NewMaterialState creates a state applying m.
func NewMaterialState(m Material) *MaterialState {
	return &MaterialState{Material: m}
}

func (s *MaterialState) DoEnableState(fc *FrameContext, n *Node, rp RenderParam) StateResult {
	if s.Material.IsTransparent() && redirectToChannel(fc, n, rp) {
		return StateSkipRendering
	}
	fc.rc.PushAndSetMaterial(s.Material)
	return StateOK
}

func (s *MaterialState) DoDisableState(fc *FrameContext, _ *Node, _ RenderParam) {
	fc.rc.PopMaterial()
}

func (s *MaterialState) Clone() State {
	return &MaterialState{StateBase: s.cloneBase(), Material: s.Material}
}

// --- Blending ---

// BlendingState sets a blend mode and, while blending, the depth write
// flag. Nodes with blending enabled first try to move into the
// transparency channel.
type BlendingState struct {
	StateBase
	Blending Blending
	// DepthWrite keeps depth writes on while blending.
	DepthWrite bool
}

// NewBlendingState creates a state applying b with depth writes off.
func NewBlendingState(b Blending) *BlendingState {
	return &BlendingState{Blending: b}
}

func (s *BlendingState) DoEnableState(fc *FrameContext, n *Node, rp RenderParam) StateResult {
	if s.Blending.Enabled && redirectToChannel(fc, n, rp) {
		return StateSkipRendering
	}
	fc.rc.PushAndSetBlending(s.Blending)
	d := DefaultDepthBuffer()
	d.Write = s.DepthWrite || !s.Blending.Enabled
	fc.rc.PushAndSetDepthBuffer(d)
	return StateOK
}

func (s *BlendingState) DoDisableState(fc *FrameContext, _ *Node, _ RenderParam) {
	fc.rc.PopDepthBuffer()
	fc.rc.PopBlending()
}

func (s *BlendingState) Clone() State {
	return &BlendingState{StateBase: s.cloneBase(), Blending: s.Blending, DepthWrite: s.DepthWrite}
}

// --- Fixed-function wrappers ---

// DepthBufferState sets depth testing and writing.
type DepthBufferState struct {
	StateBase
	DepthBuffer DepthBuffer
}

func NewDepthBufferState(d DepthBuffer) *DepthBufferState {
	return &DepthBufferState{DepthBuffer: d}
}

func (s *DepthBufferState) DoEnableState(fc *FrameContext, _ *Node, _ RenderParam) StateResult {
	fc.rc.PushAndSetDepthBuffer(s.DepthBuffer)
	return StateOK
}

func (s *DepthBufferState) DoDisableState(fc *FrameContext, _ *Node, _ RenderParam) {
	fc.rc.PopDepthBuffer()
}

func (s *DepthBufferState) Clone() State {
	return &DepthBufferState{StateBase: s.cloneBase(), DepthBuffer: s.DepthBuffer}
}

// CullFaceState sets face culling.
type CullFaceState struct {
	StateBase
	CullFace CullFace
}

func NewCullFaceState(c CullFace) *CullFaceState {
	return &CullFaceState{CullFace: c}
}

func (s *CullFaceState) DoEnableState(fc *FrameContext, _ *Node, _ RenderParam) StateResult {
	fc.rc.PushAndSetCullFace(s.CullFace)
	return StateOK
}

func (s *CullFaceState) DoDisableState(fc *FrameContext, _ *Node, _ RenderParam) {
	fc.rc.PopCullFace()
}

func (s *CullFaceState) Clone() State {
	return &CullFaceState{StateBase: s.cloneBase(), CullFace: s.CullFace}
}

// AlphaTestState sets the alpha test.
type AlphaTestState struct {
	StateBase
	AlphaTest AlphaTest
}

func NewAlphaTestState(a AlphaTest) *AlphaTestState {
	return &AlphaTestState{AlphaTest: a}
}

func (s *AlphaTestState) DoEnableState(fc *FrameContext, _ *Node, _ RenderParam) StateResult {
	fc.rc.PushAndSetAlphaTest(s.AlphaTest)
	return StateOK
}

func (s *AlphaTestState) DoDisableState(fc *FrameContext, _ *Node, _ RenderParam) {
	fc.rc.PopAlphaTest()
}

func (s *AlphaTestState) Clone() State {
	return &AlphaTestState{StateBase: s.cloneBase(), AlphaTest: s.AlphaTest}
}

// PolygonModeState sets the polygon raster mode.
type PolygonModeState struct {
	StateBase
	PolygonMode PolygonMode
}

func NewPolygonModeState(p PolygonMode) *PolygonModeState {
	return &PolygonModeState{PolygonMode: p}
}

func (s *PolygonModeState) DoEnableState(fc *FrameContext, _ *Node, _ RenderParam) StateResult {
	fc.rc.PushAndSetPolygonMode(s.PolygonMode)
	return StateOK
}

func (s *PolygonModeState) DoDisableState(fc *FrameContext, _ *Node, _ RenderParam) {
	fc.rc.PopPolygonMode()
}

func (s *PolygonModeState) Clone() State {
	return &PolygonModeState{StateBase: s.cloneBase(), PolygonMode: s.PolygonMode}
}

// PointParameterState sets point size and smoothing.
type PointParameterState struct {
	StateBase
	PointParameters PointParameters
}

func NewPointParameterState(p PointParameters) *PointParameterState {
	return &PointParameterState{PointParameters: p}
}

func (s *PointParameterState) DoEnableState(fc *FrameContext, _ *Node, _ RenderParam) StateResult {
	fc.rc.PushAndSetPointParameters(s.PointParameters)
	return StateOK
}

func (s *PointParameterState) DoDisableState(fc *FrameContext, _ *Node, _ RenderParam) {
	fc.rc.PopPointParameters()
}

func (s *PointParameterState) Clone() State {
	return &PointParameterState{StateBase: s.cloneBase(), PointParameters: s.PointParameters}
}

// --- Lighting ---

// LightingState enables the light carried by another node while the
// node it is attached to is displayed.
type LightingState struct {
	StateBase
	Light *Node

	handles []LightHandle
}

// NewLightingState creates a state enabling light, which should be a light
// node.
func NewLightingState(light *Node) *LightingState {
	return &LightingState{Light: light}
}

func (s *LightingState) DoEnableState(fc *FrameContext, _ *Node, _ RenderParam) StateResult {
	if s.Light == nil || s.Light.IsDestroyed() {
		return StateSkipped
	}
	p, ok := s.Light.WorldLightParameters()
	if !ok {
		return StateSkipped
	}
	s.handles = append(s.handles, fc.rc.EnableLight(p))
	return StateOK
}

func (s *LightingState) DoDisableState(fc *FrameContext, _ *Node, _ RenderParam) {
	h := s.handles[len(s.handles)-1]
	s.handles = s.handles[:len(s.handles)-1]
	fc.rc.DisableLight(h)
}

func (s *LightingState) Clone() State {
	return &LightingState{StateBase: s.cloneBase(), Light: s.Light}
}

// --- Shader ---

// ShaderState activates a shader together with a set of uniforms.
type ShaderState struct {
	StateBase
	Shader *Shader

	uniforms []Uniform
	// pushed holds, per activation, the number of uniforms pushed.
	pushed []int
}

// NewShaderState creates a state activating sh.
func NewShaderState(sh *Shader) *ShaderState {
	return &ShaderState{Shader: sh}
}

// SetUniform adds u or replaces the uniform of the same name.
func (s *ShaderState) SetUniform(u Uniform) {
	s.uniforms = setUniform(s.uniforms, u)
}

// RemoveUniform removes the uniform named name.
func (s *ShaderState) RemoveUniform(name string) {
	s.uniforms = removeUniform(s.uniforms, name)
}

// Uniforms returns the state's uniforms. The returned slice MUST NOT be
// mutated by the caller.
func (s *ShaderState) Uniforms() []Uniform { return s.uniforms }

// DoEnableState activates the shader. A shader that fails to compile is
// reported once and the state deactivates itself.
func (s *ShaderState) DoEnableState(fc *FrameContext, _ *Node, _ RenderParam) StateResult {
	if s.Shader == nil {
		return StateSkipped
	}
	if err := fc.rc.PushAndSetShader(s.Shader); err != nil {
		Logger().Warn("grove: shader failed, deactivating state",
			slog.String("state", s.Name),
			slog.String("shader", s.Shader.Name),
			slog.Any("error", err))
		s.Deactivate()
		return StateSkipped
	}
	uniforms := s.uniforms
	for _, u := range uniforms {
		fc.rc.PushAndSetUniform(u)
	}
	s.pushed = append(s.pushed, len(uniforms))
	return StateOK
}

func (s *ShaderState) DoDisableState(fc *FrameContext, _ *Node, _ RenderParam) {
	k := s.pushed[len(s.pushed)-1]
	s.pushed = s.pushed[:len(s.pushed)-1]
	for range k {
		fc.rc.PopUniform()
	}
	fc.rc.PopShader()
}

func (s *ShaderState) Clone() State {
	return &ShaderState{
		StateBase: s.cloneBase(),
		Shader:    s.Shader,
		uniforms:  append([]Uniform(nil), s.uniforms...),
	}
}

// ShaderUniformState overlays uniforms on whatever shader is active.
type ShaderUniformState struct {
	StateBase

	uniforms []Uniform
	pushed   []int
}

// NewShaderUniformState creates a state pushing uniforms.
func NewShaderUniformState(uniforms ...Uniform) *ShaderUniformState {
	s := &ShaderUniformState{}
	for _, u := range uniforms {
		s.SetUniform(u)
	}
	return s
}

// SetUniform adds u or replaces the uniform of the same name.
func (s *ShaderUniformState) SetUniform(u Uniform) {
	s.uniforms = setUniform(s.uniforms, u)
}

// RemoveUniform removes the uniform named name.
func (s *ShaderUniformState) RemoveUniform(name string) {
	s.uniforms = removeUniform(s.uniforms, name)
}

// Uniforms returns the state's uniforms. The returned slice MUST NOT be
// mutated by the caller.
func (s *ShaderUniformState) Uniforms() []Uniform { return s.uniforms }

func (s *ShaderUniformState) DoEnableState(fc *FrameContext, _ *Node, _ RenderParam) StateResult {
	uniforms := s.uniforms
	for _, u := range uniforms {
		fc.rc.PushAndSetUniform(u)
	}
	s.pushed = append(s.pushed, len(uniforms))
	return StateOK
}

func (s *ShaderUniformState) DoDisableState(fc *FrameContext, _ *Node, _ RenderParam) {
	k := s.pushed[len(s.pushed)-1]
	s.pushed = s.pushed[:len(s.pushed)-1]
	for range k {
		fc.rc.PopUniform()
	}
}

func (s *ShaderUniformState) Clone() State {
	return &ShaderUniformState{
		StateBase: s.cloneBase(),
		uniforms:  append([]Uniform(nil), s.uniforms...),
	}
}

// setUniform returns a new slice so that an enable in progress keeps
// ranging over the old one.
func setUniform(list []Uniform, u Uniform) []Uniform {
	out := make([]Uniform, 0, len(list)+1)
	replaced := false
	for _, e := range list {
		if e.Name == u.Name {
			out = append(out, u)
			replaced = true
			continue
		}
		out = append(out, e)
	}
	if !replaced {
		out = append(out, u)
	}
	return out
}

func removeUniform(list []Uniform, name string) []Uniform {
	out := make([]Uniform, 0, len(list))
	for _, e := range list {
		if e.Name != name {
			out = append(out, e)
		}
	}
	return out
}
