package ebitenrender

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/grove"
)

// wEpsilon is the smallest clip w a vertex may have to be drawn.
const wEpsilon = 1e-6

// Context is a grove.RenderingContext that draws meshes onto an ebiten
// image. Vertices are transformed and lit on the CPU and submitted with
// DrawTriangles32. Triangles of one mesh are sorted back to front when
// depth testing is enabled; ebiten offers no depth buffer.
//
// A Context is not safe for concurrent use.
type Context struct {
	grove.StateStacks

	target        *ebiten.Image
	width, height float64
	viewProj      mgl64.Mat4
	eye           mgl64.Vec3

	shaders  map[*grove.Shader]*ebiten.Shader
	textures map[*grove.Texture]*ebiten.Image
	white    *ebiten.Image

	projected []projectedVertex
	tris      []triangle
	verts     []ebiten.Vertex
	inds      []uint32
	triOp     ebiten.DrawTrianglesOptions
	shaderOp  ebiten.DrawTrianglesShaderOptions

	// Triangles counts the triangles submitted since the last BeginFrame.
	Triangles int
}

// NewContext creates a rendering context. Call BeginFrame before each
// frame is displayed.
func NewContext() *Context {
	return &Context{
		viewProj: mgl64.Ident4(),
		shaders:  make(map[*grove.Shader]*ebiten.Shader),
		textures: make(map[*grove.Texture]*ebiten.Image),
	}
}

// BeginFrame sets the draw target and the camera used to project vertices.
// A nil camera leaves vertices in normalized device coordinates.
func (c *Context) BeginFrame(target *ebiten.Image, camera *grove.Node) {
	c.target = target
	b := target.Bounds()
	c.width, c.height = float64(b.Dx()), float64(b.Dy())
	c.viewProj = mgl64.Ident4()
	c.eye = mgl64.Vec3{0, 0, 1}
	if camera != nil && camera.Camera != nil {
		c.viewProj = camera.ViewProjectionMatrix(c.Aspect())
		c.eye = camera.WorldOrigin()
	}
	c.Triangles = 0
}

// Aspect returns the target's width/height ratio.
func (c *Context) Aspect() float64 {
	if c.height == 0 {
		return 1
	}
	return c.width / c.height
}

// PushAndSetShader compiles sh on first use. A shader that does not compile
// is not pushed and the error is returned.
func (c *Context) PushAndSetShader(sh *grove.Shader) error {
	if sh != nil {
		if _, err := c.ebitenShader(sh); err != nil {
			return err
		}
	}
	return c.StateStacks.PushAndSetShader(sh)
}

func (c *Context) ebitenShader(sh *grove.Shader) (*ebiten.Shader, error) {
	if s, ok := c.shaders[sh]; ok {
		return s, nil
	}
	s, err := ebiten.NewShader(sh.Source)
	if err != nil {
		return nil, fmt.Errorf("compile shader %q: %w", sh.Name, err)
	}
	c.shaders[sh] = s
	return s, nil
}

// ebitenTexture returns the GPU image for t, uploading it on first use.
func (c *Context) ebitenTexture(t *grove.Texture) *ebiten.Image {
	if t == nil || t.Image == nil {
		return nil
	}
	if img, ok := c.textures[t]; ok {
		return img
	}
	img := ebiten.NewImageFromImage(t.Image)
	c.textures[t] = img
	return img
}

// whitePixel returns a 1x1 white sub-image used for untextured meshes.
func (c *Context) whitePixel() *ebiten.Image {
	if c.white == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		c.white = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return c.white
}

// DisplayMesh draws mesh with the current settings.
func (c *Context) DisplayMesh(mesh *grove.Mesh, modelToWorld mgl64.Mat4) {
	if c.target == nil || mesh == nil || mesh.IsReleased() || len(mesh.Indices) < 3 {
		return
	}
	mat := c.CurrentMaterial()
	lights := c.ActiveLights()
	normalMat := modelToWorld.Mat3().Inv().Transpose()
	mvp := c.viewProj.Mul4(modelToWorld)

	c.projected = c.projected[:0]
	for i := range mesh.Vertices {
		v := &mesh.Vertices[i]
		clip := mvp.Mul4x1(v.Position.Vec4(1))
		pv := projectedVertex{w: clip[3], u: v.U, v: v.V}
		if clip[3] > wEpsilon {
			pv.x, pv.y, pv.depth = toScreen(clip, c.width, c.height)
		}
		world := modelToWorld.Mul4x1(v.Position.Vec4(1)).Vec3()
		pv.color = shadeVertex(v.Color, mat, lights, world, normalMat.Mul3x1(v.Normal), c.eye)
		c.projected = append(c.projected, pv)
	}

	c.collectTriangles(mesh.Indices)
	if len(c.tris) == 0 {
		return
	}
	if c.CurrentDepthBuffer().Test {
		sort.SliceStable(c.tris, func(i, j int) bool { return c.tris[i].depth > c.tris[j].depth })
	}

	src := c.whitePixel()
	if tex := c.ebitenTexture(c.CurrentTexture(0)); tex != nil {
		src = tex
	}
	switch c.CurrentPolygonMode().Mode {
	case grove.PolygonLine:
		c.buildLines(src)
	case grove.PolygonPoint:
		c.buildPoints(src)
	default:
		c.buildFill(src)
	}
	c.submit(src)
}

// collectTriangles keeps the triangles that survive clipping, face culling
// and the alpha test.
func (c *Context) collectTriangles(indices []uint16) {
	c.tris = c.tris[:0]
	cf := c.CurrentCullFace()
	at := c.CurrentAlphaTest()
	n := uint32(len(c.projected))
	for i := 0; i+2 < len(indices); i += 3 {
		ia, ib, ic := uint32(indices[i]), uint32(indices[i+1]), uint32(indices[i+2])
		if ia >= n || ib >= n || ic >= n {
			continue
		}
		a, b, v := c.projected[ia], c.projected[ib], c.projected[ic]
		if a.w <= wEpsilon || b.w <= wEpsilon || v.w <= wEpsilon {
			continue
		}
		if faceCulled(signedArea(a, b, v), cf) || alphaCulled(a, b, v, at) {
			continue
		}
		c.tris = append(c.tris, triangle{a: ia, b: ib, c: ic, depth: (a.depth + b.depth + v.depth) / 3})
	}
}

func (c *Context) vertex(pv projectedVertex, x, y float64, src *ebiten.Image) ebiten.Vertex {
	b := src.Bounds()
	a := float32(pv.color.A)
	return ebiten.Vertex{
		DstX:   float32(x),
		DstY:   float32(y),
		SrcX:   float32(float64(b.Min.X) + pv.u*float64(b.Dx())),
		SrcY:   float32(float64(b.Min.Y) + pv.v*float64(b.Dy())),
		ColorR: float32(pv.color.R) * a,
		ColorG: float32(pv.color.G) * a,
		ColorB: float32(pv.color.B) * a,
		ColorA: a,
	}
}

func (c *Context) buildFill(src *ebiten.Image) {
	c.verts = c.verts[:0]
	c.inds = c.inds[:0]
	for _, t := range c.tris {
		base := uint32(len(c.verts))
		for _, i := range [3]uint32{t.a, t.b, t.c} {
			pv := c.projected[i]
			c.verts = append(c.verts, c.vertex(pv, pv.x, pv.y, src))
		}
		c.inds = append(c.inds, base, base+1, base+2)
	}
}

func (c *Context) buildLines(src *ebiten.Image) {
	c.verts = c.verts[:0]
	c.inds = c.inds[:0]
	width := c.CurrentPointParameters().Size
	for _, t := range c.tris {
		c.appendLine(c.projected[t.a], c.projected[t.b], width, src)
		c.appendLine(c.projected[t.b], c.projected[t.c], width, src)
		c.appendLine(c.projected[t.c], c.projected[t.a], width, src)
	}
}

func (c *Context) buildPoints(src *ebiten.Image) {
	c.verts = c.verts[:0]
	c.inds = c.inds[:0]
	half := c.CurrentPointParameters().Size / 2
	seen := make(map[uint32]bool, len(c.tris)*3)
	for _, t := range c.tris {
		for _, i := range [3]uint32{t.a, t.b, t.c} {
			if seen[i] {
				continue
			}
			seen[i] = true
			pv := c.projected[i]
			c.appendQuad(pv, [4][2]float64{
				{pv.x - half, pv.y - half}, {pv.x + half, pv.y - half},
				{pv.x - half, pv.y + half}, {pv.x + half, pv.y + half},
			}, src)
		}
	}
}

// appendLine adds a quad of the given pixel width from a to b.
func (c *Context) appendLine(a, b projectedVertex, width float64, src *ebiten.Image) {
	dx, dy := b.x-a.x, b.y-a.y
	l := math.Hypot(dx, dy)
	if l < 1e-9 {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2
	base := uint32(len(c.verts))
	c.verts = append(c.verts,
		c.vertex(a, a.x+nx, a.y+ny, src),
		c.vertex(b, b.x+nx, b.y+ny, src),
		c.vertex(a, a.x-nx, a.y-ny, src),
		c.vertex(b, b.x-nx, b.y-ny, src),
	)
	c.inds = append(c.inds, base, base+1, base+2, base+1, base+3, base+2)
}

// appendQuad adds a quad with corners TL, TR, BL, BR colored like pv.
func (c *Context) appendQuad(pv projectedVertex, corners [4][2]float64, src *ebiten.Image) {
	base := uint32(len(c.verts))
	for _, p := range corners {
		c.verts = append(c.verts, c.vertex(pv, p[0], p[1], src))
	}
	c.inds = append(c.inds, base, base+1, base+2, base+1, base+3, base+2)
}

func (c *Context) submit(src *ebiten.Image) {
	if len(c.inds) == 0 {
		return
	}
	c.Triangles += len(c.inds) / 3
	blend := ebitenBlend(c.CurrentBlending())
	if sh := c.CurrentShader(); sh != nil {
		if s, err := c.ebitenShader(sh); err == nil {
			c.shaderOp.Blend = blend
			c.shaderOp.Uniforms = c.kageUniforms()
			c.shaderOp.Images[0] = src
			c.target.DrawTrianglesShader32(c.verts, c.inds, s, &c.shaderOp)
			return
		}
	}
	c.triOp.Blend = blend
	c.triOp.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	c.target.DrawTriangles32(c.verts, c.inds, src, &c.triOp)
}

func (c *Context) kageUniforms() map[string]any {
	cur := c.CurrentUniforms()
	if len(cur) == 0 {
		return nil
	}
	out := make(map[string]any, len(cur))
	for k, v := range cur {
		out[k] = kageUniform(v)
	}
	return out
}

var _ grove.RenderingContext = (*Context)(nil)
