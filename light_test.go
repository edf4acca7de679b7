package grove

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLightAttenuation(t *testing.T) {
	p := DefaultLightParameters(LightPoint)
	assert.Equal(t, 1.0, p.Attenuation(10))
	p.LinearAttenuation = 0.5
	assert.InDelta(t, 1.0/3, p.Attenuation(4), 1e-12)

	d := DefaultLightParameters(LightDirectional)
	d.QuadraticAttenuation = 1
	assert.Equal(t, 1.0, d.Attenuation(100))
	assert.Equal(t, "directional", d.Type.String())
}

func TestWorldLightParameters(t *testing.T) {
	root := NewListNode("root")
	root.SetRelPosition(mgl64.Vec3{0, 5, 0})
	light := NewLightNode("sun", DefaultLightParameters(LightSpot))
	root.AddChild(light)
	light.RotateLocal(-math.Pi/2, mgl64.Vec3{1, 0, 0})

	p, ok := light.WorldLightParameters()
	require.True(t, ok)
	requireVecNear(t, mgl64.Vec3{0, 5, 0}, p.Position)
	requireVecNear(t, mgl64.Vec3{0, -1, 0}, p.Direction)

	_, ok = root.WorldLightParameters()
	assert.False(t, ok)
}
