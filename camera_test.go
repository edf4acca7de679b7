package grove

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCameraDefaults(t *testing.T) {
	p := DefaultCameraParameters()
	assert.InDelta(t, math.Pi/3, p.FovY, 1e-12)
	assert.True(t, p.CullEnabled)
	assert.False(t, p.Orthographic)

	cam := NewCameraNode("cam", p)
	assert.Equal(t, NodeTypeCamera, cam.Type)
	require.NotNil(t, cam.Camera)
	assert.Equal(t, mgl64.Ident4(), cam.ViewMatrix())
}

func TestWorldToScreen(t *testing.T) {
	cam := NewCameraNode("cam", DefaultCameraParameters())
	cam.SetRelPosition(mgl64.Vec3{0, 0, 10})

	x, y, ok := cam.WorldToScreen(mgl64.Vec3{0, 0, 0}, 800, 600)
	require.True(t, ok)
	assert.InDelta(t, 400, x, 1e-6)
	assert.InDelta(t, 300, y, 1e-6)

	// Up in the world is up on screen.
	_, yUp, ok := cam.WorldToScreen(mgl64.Vec3{0, 1, 0}, 800, 600)
	require.True(t, ok)
	assert.Less(t, yUp, 300.0)

	_, _, ok = cam.WorldToScreen(mgl64.Vec3{0, 0, 20}, 800, 600)
	assert.False(t, ok, "behind the camera")
}

func TestOrthographicProjection(t *testing.T) {
	p := DefaultCameraParameters()
	p.Orthographic = true
	p.OrthoHeight = 4
	cam := NewCameraNode("cam", p)
	cam.SetRelPosition(mgl64.Vec3{0, 0, 5})

	_, y, ok := cam.WorldToScreen(mgl64.Vec3{0, 2, 0}, 100, 100)
	require.True(t, ok)
	assert.InDelta(t, 0, y, 1e-6)
}

func TestLookAt(t *testing.T) {
	root := NewListNode("root")
	root.RotateLocal(math.Pi/2, mgl64.Vec3{0, 1, 0})
	cam := NewCameraNode("cam", DefaultCameraParameters())
	root.AddChild(cam)
	cam.SetWorldOrigin(mgl64.Vec3{5, 0, 0})

	cam.LookAt(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 1, 0})
	forward := cam.WorldTransformationMatrix().Mul4x1(mgl64.Vec4{0, 0, -1, 0}).Vec3()
	requireVecNear(t, mgl64.Vec3{-1, 0, 0}, forward)
	requireVecNear(t, mgl64.Vec3{5, 0, 0}, cam.WorldOrigin())

	x, y, ok := cam.WorldToScreen(mgl64.Vec3{}, 200, 100)
	require.True(t, ok)
	assert.InDelta(t, 100, x, 1e-6)
	assert.InDelta(t, 50, y, 1e-6)
}

func TestBoxInFrustum(t *testing.T) {
	cam := NewCameraNode("cam", DefaultCameraParameters())
	cam.SetRelPosition(mgl64.Vec3{0, 0, 10})
	vp := cam.ViewProjectionMatrix(1)

	unit := NewBox(mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{1, 1, 1})
	assert.True(t, BoxInFrustum(vp, unit))
	assert.False(t, BoxInFrustum(vp, unit.Transform(mgl64.Translate3D(100, 0, 0))), "far right")
	assert.False(t, BoxInFrustum(vp, unit.Transform(mgl64.Translate3D(0, 0, 20))), "behind")
	assert.False(t, BoxInFrustum(vp, unit.Transform(mgl64.Translate3D(0, 0, -5000))), "beyond far")
	assert.True(t, BoxInFrustum(vp, NewBox(mgl64.Vec3{-100, -100, -100}, mgl64.Vec3{100, 100, 100})), "encloses camera")
	assert.False(t, BoxInFrustum(vp, EmptyBox()))
}
