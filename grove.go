package grove

import (
	"image/color"
	"math/rand/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// ColorBlack is opaque black.
var ColorBlack = Color{0, 0, 0, 1}

// Mul returns the component-wise product of c and o.
func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B, c.A * o.A}
}

// Scale multiplies the RGB components by f, leaving alpha untouched.
func (c Color) Scale(f float64) Color {
	return Color{c.R * f, c.G * f, c.B * f, c.A}
}

// RGBA converts the color to a premultiplied 8-bit color.RGBA.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A)*255 + 0.5),
		G: uint8(clamp01(c.G*c.A)*255 + 0.5),
		B: uint8(clamp01(c.B*c.A)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Range is a general-purpose min/max range.
// Used by MotionBehavior to randomize initial velocities.
type Range struct {
	Min, Max float64
}

// Random returns a uniformly distributed value in [Min, Max).
// A nil rng uses the global source.
func (r Range) Random(rng *rand.Rand) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	if rng == nil {
		return r.Min + rand.Float64()*(r.Max-r.Min)
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// RenderingLayers is a bitmask selecting which rendering layers a node or
// state participates in. A node or state is displayed for a RenderParam only
// when the two masks share at least one bit.
type RenderingLayers uint32

// RenderingLayerDefault is the layer every node and state starts out in.
const RenderingLayerDefault RenderingLayers = 1

// RenderingLayersAll matches every layer.
const RenderingLayersAll RenderingLayers = ^RenderingLayers(0)

// Test reports whether l and other share at least one layer.
func (l RenderingLayers) Test(other RenderingLayers) bool {
	return l&other != 0
}

// NodeType distinguishes display behavior for a Node.
type NodeType uint8

const (
	NodeTypeList     NodeType = iota // group node; displays its children
	NodeTypeGeometry                 // displays a Mesh
	NodeTypeLight                    // light source referenced by LightingState
	NodeTypeCamera                   // viewpoint used by rendering backends
)

func (t NodeType) String() string {
	switch t {
	case NodeTypeList:
		return "list"
	case NodeTypeGeometry:
		return "geometry"
	case NodeTypeLight:
		return "light"
	case NodeTypeCamera:
		return "camera"
	default:
		return "unknown"
	}
}
