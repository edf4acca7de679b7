package ebitenrender

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/phanxgames/grove"
)

// projectedVertex is a mesh vertex after transformation and shading.
type projectedVertex struct {
	x, y  float64 // screen pixels, origin top left
	depth float64 // NDC z
	w     float64 // clip w; <= 0 behind the eye
	u, v  float64
	color grove.Color
}

// triangle indexes three projected vertices.
type triangle struct {
	a, b, c uint32
	depth   float64
}

// toScreen maps a clip-space position into a w x h viewport.
func toScreen(clip mgl64.Vec4, w, h float64) (x, y, depth float64) {
	ndcX, ndcY, ndcZ := clip[0]/clip[3], clip[1]/clip[3], clip[2]/clip[3]
	return (ndcX + 1) * 0.5 * w, (1 - ndcY) * 0.5 * h, ndcZ
}

// signedArea returns twice the signed screen-space area of a triangle.
// Triangles that are counter-clockwise in world space (front facing) have
// a negative area because screen Y points down.
func signedArea(a, b, c projectedVertex) float64 {
	return (b.x-a.x)*(c.y-a.y) - (c.x-a.x)*(b.y-a.y)
}

// faceCulled reports whether a triangle with the given signed area is
// discarded by cf.
func faceCulled(area float64, cf grove.CullFace) bool {
	if !cf.Enabled {
		return false
	}
	front := area < 0
	switch cf.Mode {
	case grove.CullBack:
		return !front
	case grove.CullFront:
		return front
	default:
		return true
	}
}

// alphaCulled reports whether all three vertices fail the alpha test.
func alphaCulled(a, b, c projectedVertex, at grove.AlphaTest) bool {
	if !at.Enabled {
		return false
	}
	return !at.Func.Compare(a.color.A, at.Reference) &&
		!at.Func.Compare(b.color.A, at.Reference) &&
		!at.Func.Compare(c.color.A, at.Reference)
}

// shadeVertex computes a Blinn-Phong vertex color. Without lights the
// vertex color is modulated by the material's diffuse color.
func shadeVertex(base grove.Color, mat grove.Material, lights []grove.LightParameters, pos, normal, eye mgl64.Vec3) grove.Color {
	if len(lights) == 0 {
		return base.Mul(mat.Diffuse)
	}
	if normal.Len() > 1e-9 {
		normal = normal.Normalize()
	}
	view := eye.Sub(pos)
	if view.Len() > 1e-9 {
		view = view.Normalize()
	}
	r, g, b := mat.Emission.R, mat.Emission.G, mat.Emission.B
	for i := range lights {
		l := &lights[i]
		r += l.Ambient.R * mat.Ambient.R
		g += l.Ambient.G * mat.Ambient.G
		b += l.Ambient.B * mat.Ambient.B

		toLight, atten := lightVector(l, pos)
		ndl := normal.Dot(toLight)
		if ndl <= 0 || atten <= 0 {
			continue
		}
		k := ndl * l.Intensity * atten
		r += l.Diffuse.R * mat.Diffuse.R * k
		g += l.Diffuse.G * mat.Diffuse.G * k
		b += l.Diffuse.B * mat.Diffuse.B * k

		if mat.Shininess > 0 {
			half := toLight.Add(view)
			if half.Len() > 1e-9 {
				s := math.Pow(math.Max(0, normal.Dot(half.Normalize())), mat.Shininess) * l.Intensity * atten
				r += l.Specular.R * mat.Specular.R * s
				g += l.Specular.G * mat.Specular.G * s
				b += l.Specular.B * mat.Specular.B * s
			}
		}
	}
	return grove.Color{
		R: clamp01(r * base.R),
		G: clamp01(g * base.G),
		B: clamp01(b * base.B),
		A: clamp01(mat.Diffuse.A * base.A),
	}
}

// lightVector returns the unit vector from pos toward the light and the
// light's attenuation at pos.
func lightVector(l *grove.LightParameters, pos mgl64.Vec3) (mgl64.Vec3, float64) {
	if l.Type == grove.LightDirectional {
		d := l.Direction.Mul(-1)
		if d.Len() < 1e-9 {
			return mgl64.Vec3{}, 0
		}
		return d.Normalize(), 1
	}
	d := l.Position.Sub(pos)
	dist := d.Len()
	if dist < 1e-9 {
		return mgl64.Vec3{}, 0
	}
	d = d.Mul(1 / dist)
	atten := l.Attenuation(dist)
	if l.Type == grove.LightSpot && l.Direction.Len() > 1e-9 {
		cosAngle := d.Mul(-1).Dot(l.Direction.Normalize())
		if cosAngle < math.Cos(l.Cutoff) {
			return d, 0
		}
		atten *= math.Pow(cosAngle, l.Exponent)
	}
	return d, atten
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
