package grove

import (
	"github.com/go-gl/mathgl/mgl64"
)

// CameraParameters describes a camera's projection. The camera looks along
// its node's local -Z axis with +Y up.
type CameraParameters struct {
	// FovY is the vertical field of view in radians (perspective only).
	FovY float64
	Near float64
	Far  float64

	// Orthographic selects a parallel projection OrthoHeight world units
	// tall instead of a perspective one.
	Orthographic bool
	OrthoHeight  float64

	// CullEnabled makes the default renderer skip nodes whose world box lies
	// completely outside the view frustum.
	CullEnabled bool
}

// DefaultCameraParameters returns a 60 degree perspective camera.
func DefaultCameraParameters() CameraParameters {
	return CameraParameters{
		FovY:        mgl64.DegToRad(60),
		Near:        0.1,
		Far:         1000,
		OrthoHeight: 10,
		CullEnabled: true,
	}
}

// ProjectionMatrix returns the projection for the given width/height
// aspect ratio.
func (c *CameraParameters) ProjectionMatrix(aspect float64) mgl64.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	if c.Orthographic {
		hh := c.OrthoHeight / 2
		hw := hh * aspect
		return mgl64.Ortho(-hw, hw, -hh, hh, c.Near, c.Far)
	}
	return mgl64.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// NewCameraNode creates a node carrying camera parameters.
func NewCameraNode(name string, params CameraParameters) *Node {
	n := &Node{Name: name, Type: NodeTypeCamera, Camera: &params}
	nodeDefaults(n)
	return n
}

// ViewMatrix returns the world-to-camera transform, the inverse of the
// node's world transform.
func (n *Node) ViewMatrix() mgl64.Mat4 {
	if m := n.WorldTransformationMatrixPtr(); m != nil {
		return m.Inv()
	}
	return mgl64.Ident4()
}

// ViewProjectionMatrix returns projection * view for a camera node.
// Non-camera nodes use DefaultCameraParameters.
func (n *Node) ViewProjectionMatrix(aspect float64) mgl64.Mat4 {
	params := n.Camera
	if params == nil {
		d := DefaultCameraParameters()
		params = &d
	}
	return params.ProjectionMatrix(aspect).Mul4(n.ViewMatrix())
}

// LookAt orients the node so that its -Z axis points from its world origin
// toward target, keeping its position and scale.
func (n *Node) LookAt(target, up mgl64.Vec3) {
	eye := n.WorldOrigin()
	if target.Sub(eye).Len() < geometryEpsilon {
		return
	}
	worldRot := lookRotation(target.Sub(eye).Normalize(), up)
	rot := worldRot
	if n.parent != nil {
		if ps, err := n.parent.WorldTransformationSRT(); err == nil {
			rot = ps.Rotation.Inverse().Mul(worldRot)
		}
	}
	s, err := n.RelTransformationSRT()
	if err != nil {
		s = SRT{Translation: n.RelPosition(), Scale: 1}
	}
	s.Rotation = rot.Normalize()
	n.SetRelTransformationSRT(s)
}

// lookRotation returns the rotation turning -Z toward forward with +Y as
// close to up as possible.
func lookRotation(forward, up mgl64.Vec3) mgl64.Quat {
	right := forward.Cross(up)
	if right.Len() < geometryEpsilon {
		right = forward.Cross(mgl64.Vec3{1, 0, 0})
		if right.Len() < geometryEpsilon {
			right = forward.Cross(mgl64.Vec3{0, 0, 1})
		}
	}
	right = right.Normalize()
	trueUp := right.Cross(forward)
	m := mgl64.Ident4()
	m[0], m[1], m[2] = right[0], right[1], right[2]
	m[4], m[5], m[6] = trueUp[0], trueUp[1], trueUp[2]
	m[8], m[9], m[10] = -forward[0], -forward[1], -forward[2]
	return mgl64.Mat4ToQuat(m).Normalize()
}

// WorldToScreen projects the world point p into a w x h pixel viewport
// with the origin in the top left corner. ok is false if p is behind the
// camera.
func (n *Node) WorldToScreen(p mgl64.Vec3, w, h float64) (x, y float64, ok bool) {
	clip := n.ViewProjectionMatrix(w / h).Mul4x1(p.Vec4(1))
	if clip[3] <= geometryEpsilon {
		return 0, 0, false
	}
	ndcX, ndcY := clip[0]/clip[3], clip[1]/clip[3]
	return (ndcX + 1) * 0.5 * w, (1 - ndcY) * 0.5 * h, true
}

// BoxInFrustum reports whether any part of the world box b may be visible
// through the clip matrix viewProj. It rejects a box only when all eight
// corners lie outside the same clip plane.
func BoxInFrustum(viewProj mgl64.Mat4, b Box) bool {
	if b.IsEmpty() {
		return false
	}
	var outside [6]int
	for _, c := range b.Corners() {
		p := viewProj.Mul4x1(c.Vec4(1))
		w := p[3]
		if p[0] < -w {
			outside[0]++
		}
		if p[0] > w {
			outside[1]++
		}
		if p[1] < -w {
			outside[2]++
		}
		if p[1] > w {
			outside[3]++
		}
		if p[2] < -w {
			outside[4]++
		}
		if p[2] > w {
			outside[5]++
		}
	}
	for _, o := range outside {
		if o == 8 {
			return false
		}
	}
	return true
}
