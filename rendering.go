package grove

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

// --- Material ---

// Material holds surface colors used by the lighting computation.
type Material struct {
	Ambient   Color
	Diffuse   Color
	Specular  Color
	Emission  Color
	Shininess float64
}

// DefaultMaterial returns a plain white material.
func DefaultMaterial() Material {
	return Material{
		Ambient:  Color{0.2, 0.2, 0.2, 1},
		Diffuse:  Color{0.8, 0.8, 0.8, 1},
		Specular: ColorBlack,
		Emission: ColorBlack,
	}
}

// IsTransparent reports whether the material lets the background through.
func (m Material) IsTransparent() bool {
	return m.Diffuse.A < 1 || m.Ambient.A < 1
}

// --- Blending ---

// BlendFactor is a source or destination blend factor.
type BlendFactor uint8

const (
	BlendFactorZero BlendFactor = iota
	BlendFactorOne
	BlendFactorSourceColor
	BlendFactorOneMinusSourceColor
	BlendFactorSourceAlpha
	BlendFactorOneMinusSourceAlpha
	BlendFactorDestinationColor
	BlendFactorOneMinusDestinationColor
	BlendFactorDestinationAlpha
	BlendFactorOneMinusDestinationAlpha
)

// BlendEquation combines the weighted source and destination.
type BlendEquation uint8

const (
	BlendEquationAdd BlendEquation = iota
	BlendEquationSubtract
	BlendEquationReverseSubtract
	BlendEquationMin
	BlendEquationMax
)

// Blending configures how drawn fragments are combined with the target.
type Blending struct {
	Enabled bool

	SourceRGB        BlendFactor
	SourceAlpha      BlendFactor
	DestinationRGB   BlendFactor
	DestinationAlpha BlendFactor
	EquationRGB      BlendEquation
	EquationAlpha    BlendEquation
}

// Blending presets. Colors are premultiplied by alpha.
var (
	// BlendingDisabled copies fragments over the target.
	BlendingDisabled = Blending{}
	// BlendingSourceOver is standard alpha blending.
	BlendingSourceOver = Blending{
		Enabled:          true,
		SourceRGB:        BlendFactorOne,
		SourceAlpha:      BlendFactorOne,
		DestinationRGB:   BlendFactorOneMinusSourceAlpha,
		DestinationAlpha: BlendFactorOneMinusSourceAlpha,
	}
	// BlendingAdditive adds the source to the target.
	BlendingAdditive = Blending{
		Enabled:          true,
		SourceRGB:        BlendFactorOne,
		SourceAlpha:      BlendFactorOne,
		DestinationRGB:   BlendFactorOne,
		DestinationAlpha: BlendFactorOne,
	}
	// BlendingMultiply multiplies source and target; it only darkens.
	BlendingMultiply = Blending{
		Enabled:          true,
		SourceRGB:        BlendFactorDestinationColor,
		SourceAlpha:      BlendFactorDestinationAlpha,
		DestinationRGB:   BlendFactorOneMinusSourceAlpha,
		DestinationAlpha: BlendFactorOneMinusSourceAlpha,
	}
	// BlendingScreen computes 1 - (1-src)*(1-dst); it only brightens.
	BlendingScreen = Blending{
		Enabled:          true,
		SourceRGB:        BlendFactorOne,
		SourceAlpha:      BlendFactorOne,
		DestinationRGB:   BlendFactorOneMinusSourceColor,
		DestinationAlpha: BlendFactorOneMinusSourceAlpha,
	}
)

// --- Fixed-function parameters ---

// CompareFunc is a depth or alpha comparison.
type CompareFunc uint8

const (
	CompareLess CompareFunc = iota
	CompareLessEqual
	CompareEqual
	CompareGreaterEqual
	CompareGreater
	CompareNotEqual
	CompareAlways
	CompareNever
)

// Compare reports whether a passes the comparison against ref.
func (f CompareFunc) Compare(a, ref float64) bool {
	switch f {
	case CompareLess:
		return a < ref
	case CompareLessEqual:
		return a <= ref
	case CompareEqual:
		return a == ref
	case CompareGreaterEqual:
		return a >= ref
	case CompareGreater:
		return a > ref
	case CompareNotEqual:
		return a != ref
	case CompareAlways:
		return true
	default:
		return false
	}
}

// DepthBuffer configures depth testing and writing.
type DepthBuffer struct {
	Test  bool
	Write bool
	Func  CompareFunc
}

// DefaultDepthBuffer tests and writes with CompareLess.
func DefaultDepthBuffer() DepthBuffer {
	return DepthBuffer{Test: true, Write: true, Func: CompareLess}
}

// CullMode selects which triangle faces are discarded.
type CullMode uint8

const (
	CullBack CullMode = iota
	CullFront
	CullFrontAndBack
)

// CullFace configures face culling.
type CullFace struct {
	Enabled bool
	Mode    CullMode
}

// AlphaTest discards fragments whose alpha fails Func against Reference.
type AlphaTest struct {
	Enabled   bool
	Func      CompareFunc
	Reference float64
}

// PolygonRasterMode selects how triangles are rasterized.
type PolygonRasterMode uint8

const (
	PolygonFill PolygonRasterMode = iota
	PolygonLine
	PolygonPoint
)

// PolygonMode configures triangle rasterization.
type PolygonMode struct {
	Mode PolygonRasterMode
}

// PointParameters configures point rasterization.
type PointParameters struct {
	Size   float64
	Smooth bool
}

// --- Shaders and textures ---

// Shader is a program source the backend compiles on first use.
type Shader struct {
	Name   string
	Source []byte
}

// Uniform is a named shader input. Value is one of float64, int, bool,
// mgl64.Vec2/Vec3/Vec4, mgl64.Mat4, Color or []float32.
type Uniform struct {
	Name  string
	Value any
}

// Texture is image data bound to a texture unit.
type Texture struct {
	Name  string
	Image image.Image
}

var chessTexture *Texture

// ChessTexture returns the shared magenta and black placeholder used in
// place of textures that failed to load.
func ChessTexture() *Texture {
	if chessTexture == nil {
		const size, cell = 64, 8
		img := image.NewRGBA(image.Rect(0, 0, size, size))
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				c := color.RGBA{0, 0, 0, 255}
				if (x/cell+y/cell)%2 == 0 {
					c = color.RGBA{255, 0, 255, 255}
				}
				img.SetRGBA(x, y, c)
			}
		}
		chessTexture = &Texture{Name: "chess", Image: img}
	}
	return chessTexture
}

// LightHandle identifies a light enabled in a RenderingContext.
type LightHandle int

// RenderingContext is the rendering backend used while displaying a scene.
// Every PushAndSet call must be matched by the corresponding Pop call, and
// pairs must nest.
type RenderingContext interface {
	PushAndSetMaterial(m Material)
	PopMaterial()
	PushAndSetBlending(b Blending)
	PopBlending()
	PushAndSetDepthBuffer(d DepthBuffer)
	PopDepthBuffer()
	PushAndSetCullFace(c CullFace)
	PopCullFace()
	PushAndSetAlphaTest(a AlphaTest)
	PopAlphaTest()
	PushAndSetPolygonMode(p PolygonMode)
	PopPolygonMode()
	PushAndSetPointParameters(p PointParameters)
	PopPointParameters()
	// PushAndSetShader activates s. On error nothing is pushed.
	PushAndSetShader(s *Shader) error
	PopShader()
	PushAndSetUniform(u Uniform)
	PopUniform()
	PushAndSetTexture(unit int, t *Texture)
	PopTexture(unit int)

	EnableLight(p LightParameters) LightHandle
	DisableLight(h LightHandle)

	// DisplayMesh draws mesh with the given model-to-world transform using
	// the current settings.
	DisplayMesh(mesh *Mesh, modelToWorld mgl64.Mat4)
}

// stack is a LIFO of render settings. Popping an empty stack means a Push
// and Pop were mismatched.
type stack[T any] struct {
	items []T
}

func (s *stack[T]) push(v T) {
	s.items = append(s.items, v)
}

func (s *stack[T]) pop(kind string) T {
	if len(s.items) == 0 {
		panic("grove: " + kind + " stack underflow")
	}
	v := s.items[len(s.items)-1]
	var zero T
	s.items[len(s.items)-1] = zero
	s.items = s.items[:len(s.items)-1]
	return v
}

func (s *stack[T]) top(def T) T {
	if len(s.items) == 0 {
		return def
	}
	return s.items[len(s.items)-1]
}

// StateStacks implements the push/pop half of RenderingContext. Backends
// embed it and add DisplayMesh, reading the current settings through its
// Current* accessors. The zero value is ready to use.
type StateStacks struct {
	materials   stack[Material]
	blendings   stack[Blending]
	depths      stack[DepthBuffer]
	cullFaces   stack[CullFace]
	alphaTests  stack[AlphaTest]
	polyModes   stack[PolygonMode]
	pointParams stack[PointParameters]
	shaders     stack[*Shader]
	uniforms    stack[Uniform]
	textures    map[int]*stack[*Texture]

	lights     []activeLight
	lightCount LightHandle
}

type activeLight struct {
	handle LightHandle
	params LightParameters
}

func (s *StateStacks) PushAndSetMaterial(m Material) { s.materials.push(m) }
func (s *StateStacks) PopMaterial()                  { s.materials.pop("material") }

func (s *StateStacks) PushAndSetBlending(b Blending) { s.blendings.push(b) }
func (s *StateStacks) PopBlending()                  { s.blendings.pop("blending") }

func (s *StateStacks) PushAndSetDepthBuffer(d DepthBuffer) { s.depths.push(d) }
func (s *StateStacks) PopDepthBuffer()                     { s.depths.pop("depth buffer") }

func (s *StateStacks) PushAndSetCullFace(c CullFace) { s.cullFaces.push(c) }
func (s *StateStacks) PopCullFace()                  { s.cullFaces.pop("cull face") }

func (s *StateStacks) PushAndSetAlphaTest(a AlphaTest) { s.alphaTests.push(a) }
func (s *StateStacks) PopAlphaTest()                   { s.alphaTests.pop("alpha test") }

func (s *StateStacks) PushAndSetPolygonMode(p PolygonMode) { s.polyModes.push(p) }
func (s *StateStacks) PopPolygonMode()                     { s.polyModes.pop("polygon mode") }

func (s *StateStacks) PushAndSetPointParameters(p PointParameters) { s.pointParams.push(p) }
func (s *StateStacks) PopPointParameters()                         { s.pointParams.pop("point parameters") }

// PushAndSetShader pushes sh. It never fails; backends that compile
// shaders wrap it.
func (s *StateStacks) PushAndSetShader(sh *Shader) error {
	s.shaders.push(sh)
	return nil
}

func (s *StateStacks) PopShader() { s.shaders.pop("shader") }

func (s *StateStacks) PushAndSetUniform(u Uniform) { s.uniforms.push(u) }
func (s *StateStacks) PopUniform()                 { s.uniforms.pop("uniform") }

func (s *StateStacks) PushAndSetTexture(unit int, t *Texture) {
	if s.textures == nil {
		s.textures = make(map[int]*stack[*Texture])
	}
	st := s.textures[unit]
	if st == nil {
		st = &stack[*Texture]{}
		s.textures[unit] = st
	}
	st.push(t)
}

func (s *StateStacks) PopTexture(unit int) {
	st := s.textures[unit]
	if st == nil {
		panic("grove: texture stack underflow")
	}
	st.pop("texture")
}

// EnableLight adds p to the active lights.
func (s *StateStacks) EnableLight(p LightParameters) LightHandle {
	s.lightCount++
	s.lights = append(s.lights, activeLight{handle: s.lightCount, params: p})
	return s.lightCount
}

// DisableLight removes a light returned by EnableLight. Panics on an
// unknown handle.
func (s *StateStacks) DisableLight(h LightHandle) {
	for i, l := range s.lights {
		if l.handle == h {
			s.lights = append(s.lights[:i], s.lights[i+1:]...)
			return
		}
	}
	panic("grove: disabling a light that is not enabled")
}

// --- Current settings ---

func (s *StateStacks) CurrentMaterial() Material {
	return s.materials.top(DefaultMaterial())
}

func (s *StateStacks) CurrentBlending() Blending {
	return s.blendings.top(BlendingDisabled)
}

func (s *StateStacks) CurrentDepthBuffer() DepthBuffer {
	return s.depths.top(DefaultDepthBuffer())
}

func (s *StateStacks) CurrentCullFace() CullFace {
	return s.cullFaces.top(CullFace{})
}

func (s *StateStacks) CurrentAlphaTest() AlphaTest {
	return s.alphaTests.top(AlphaTest{})
}

func (s *StateStacks) CurrentPolygonMode() PolygonMode {
	return s.polyModes.top(PolygonMode{})
}

func (s *StateStacks) CurrentPointParameters() PointParameters {
	return s.pointParams.top(PointParameters{Size: 1})
}

// CurrentShader returns the active shader, or nil for the built-in one.
func (s *StateStacks) CurrentShader() *Shader {
	return s.shaders.top(nil)
}

// CurrentUniform returns the most recently pushed uniform named name.
func (s *StateStacks) CurrentUniform(name string) (Uniform, bool) {
	for i := len(s.uniforms.items) - 1; i >= 0; i-- {
		if s.uniforms.items[i].Name == name {
			return s.uniforms.items[i], true
		}
	}
	return Uniform{}, false
}

// CurrentUniforms returns the effective value of every pushed uniform,
// later pushes shadowing earlier ones.
func (s *StateStacks) CurrentUniforms() map[string]any {
	out := make(map[string]any, len(s.uniforms.items))
	for _, u := range s.uniforms.items {
		out[u.Name] = u.Value
	}
	return out
}

// CurrentTexture returns the texture bound to unit, or nil.
func (s *StateStacks) CurrentTexture(unit int) *Texture {
	if st := s.textures[unit]; st != nil {
		return st.top(nil)
	}
	return nil
}

// ActiveLights returns the enabled lights in enable order.
func (s *StateStacks) ActiveLights() []LightParameters {
	out := make([]LightParameters, len(s.lights))
	for i, l := range s.lights {
		out[i] = l.params
	}
	return out
}

// Balanced reports whether every push has been popped and every light
// disabled.
func (s *StateStacks) Balanced() bool {
	if len(s.materials.items)+len(s.blendings.items)+len(s.depths.items)+
		len(s.cullFaces.items)+len(s.alphaTests.items)+len(s.polyModes.items)+
		len(s.pointParams.items)+len(s.shaders.items)+len(s.uniforms.items)+
		len(s.lights) != 0 {
		return false
	}
	for _, st := range s.textures {
		if len(st.items) != 0 {
			return false
		}
	}
	return true
}
