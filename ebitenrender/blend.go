package ebitenrender

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/grove"
)

// ebitenBlend returns the ebiten.Blend matching b. Disabled blending
// copies the source over the target.
func ebitenBlend(b grove.Blending) ebiten.Blend {
	if !b.Enabled {
		return ebiten.BlendCopy
	}
	return ebiten.Blend{
		BlendFactorSourceRGB:        ebitenFactor(b.SourceRGB),
		BlendFactorSourceAlpha:      ebitenFactor(b.SourceAlpha),
		BlendFactorDestinationRGB:   ebitenFactor(b.DestinationRGB),
		BlendFactorDestinationAlpha: ebitenFactor(b.DestinationAlpha),
		BlendOperationRGB:           ebitenOperation(b.EquationRGB),
		BlendOperationAlpha:         ebitenOperation(b.EquationAlpha),
	}
}

func ebitenFactor(f grove.BlendFactor) ebiten.BlendFactor {
	switch f {
	case grove.BlendFactorZero:
		return ebiten.BlendFactorZero
	case grove.BlendFactorOne:
		return ebiten.BlendFactorOne
	case grove.BlendFactorSourceColor:
		return ebiten.BlendFactorSourceColor
	case grove.BlendFactorOneMinusSourceColor:
		return ebiten.BlendFactorOneMinusSourceColor
	case grove.BlendFactorSourceAlpha:
		return ebiten.BlendFactorSourceAlpha
	case grove.BlendFactorOneMinusSourceAlpha:
		return ebiten.BlendFactorOneMinusSourceAlpha
	case grove.BlendFactorDestinationColor:
		return ebiten.BlendFactorDestinationColor
	case grove.BlendFactorOneMinusDestinationColor:
		return ebiten.BlendFactorOneMinusDestinationColor
	case grove.BlendFactorDestinationAlpha:
		return ebiten.BlendFactorDestinationAlpha
	case grove.BlendFactorOneMinusDestinationAlpha:
		return ebiten.BlendFactorOneMinusDestinationAlpha
	default:
		return ebiten.BlendFactorDefault
	}
}

func ebitenOperation(e grove.BlendEquation) ebiten.BlendOperation {
	switch e {
	case grove.BlendEquationSubtract:
		return ebiten.BlendOperationSubtract
	case grove.BlendEquationReverseSubtract:
		return ebiten.BlendOperationReverseSubtract
	case grove.BlendEquationMin:
		return ebiten.BlendOperationMin
	case grove.BlendEquationMax:
		return ebiten.BlendOperationMax
	default:
		return ebiten.BlendOperationAdd
	}
}

// kageUniform converts a grove uniform value to a type Kage accepts.
// Unsupported values are returned unchanged.
func kageUniform(v any) any {
	switch v := v.(type) {
	case float64:
		return float32(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case mgl64.Vec2:
		return []float32{float32(v[0]), float32(v[1])}
	case mgl64.Vec3:
		return []float32{float32(v[0]), float32(v[1]), float32(v[2])}
	case mgl64.Vec4:
		return []float32{float32(v[0]), float32(v[1]), float32(v[2]), float32(v[3])}
	case mgl64.Mat4:
		out := make([]float32, 16)
		for i, f := range v {
			out[i] = float32(f)
		}
		return out
	case grove.Color:
		return []float32{float32(v.R), float32(v.G), float32(v.B), float32(v.A)}
	default:
		return v
	}
}
