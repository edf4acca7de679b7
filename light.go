package grove

import (
	"github.com/go-gl/mathgl/mgl64"
)

// LightType selects how a light's parameters are interpreted.
type LightType uint8

const (
	// LightPoint emits in all directions from its position.
	LightPoint LightType = iota
	// LightDirectional shines along its direction from infinitely far away.
	LightDirectional
	// LightSpot emits a cone along its direction from its position.
	LightSpot
)

// String returns the light type name.
func (t LightType) String() string {
	switch t {
	case LightPoint:
		return "point"
	case LightDirectional:
		return "directional"
	case LightSpot:
		return "spot"
	default:
		return "unknown"
	}
}

// LightParameters describes a light source. Position and Direction are
// ignored on light nodes, which derive them from their world transform.
type LightParameters struct {
	Type LightType

	Ambient  Color
	Diffuse  Color
	Specular Color
	// Intensity scales the diffuse and specular contributions.
	Intensity float64

	// Attenuation factors for point and spot lights:
	// 1 / (constant + linear*d + quadratic*d*d).
	ConstantAttenuation  float64
	LinearAttenuation    float64
	QuadraticAttenuation float64

	// Cutoff is the spot cone half angle in radians; Exponent controls the
	// falloff toward the cone edge.
	Cutoff   float64
	Exponent float64

	Position  mgl64.Vec3
	Direction mgl64.Vec3
}

// DefaultLightParameters returns a white light of the given type with no
// attenuation.
func DefaultLightParameters(t LightType) LightParameters {
	return LightParameters{
		Type:                t,
		Ambient:             Color{0.2, 0.2, 0.2, 1},
		Diffuse:             ColorWhite,
		Specular:            ColorWhite,
		Intensity:           1,
		ConstantAttenuation: 1,
		Cutoff:              0.5,
		Direction:           mgl64.Vec3{0, 0, -1},
	}
}

// Attenuation returns the distance attenuation factor at distance d.
// Directional lights never attenuate.
func (p *LightParameters) Attenuation(d float64) float64 {
	if p.Type == LightDirectional {
		return 1
	}
	den := p.ConstantAttenuation + p.LinearAttenuation*d + p.QuadraticAttenuation*d*d
	if den <= geometryEpsilon {
		return 1
	}
	return 1 / den
}

// NewLightNode creates a node carrying a light. The light shines from the
// node's world origin along the node's local -Z axis.
func NewLightNode(name string, params LightParameters) *Node {
	n := &Node{Name: name, Type: NodeTypeLight, Light: &params}
	nodeDefaults(n)
	return n
}

// WorldLightParameters returns the node's light parameters with Position
// and Direction expressed in world space. Returns false if the node has no
// light.
func (n *Node) WorldLightParameters() (LightParameters, bool) {
	if n.Light == nil {
		return LightParameters{}, false
	}
	p := *n.Light
	p.Position = n.WorldOrigin()
	dir := mgl64.Vec3{0, 0, -1}
	if m := n.WorldTransformationMatrixPtr(); m != nil {
		dir = m.Mul4x1(dir.Vec4(0)).Vec3()
	}
	if dir.Len() > geometryEpsilon {
		dir = dir.Normalize()
	}
	p.Direction = dir
	return p, true
}
