package grove

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidGeometry is returned when a geometric conversion is requested
// that the input cannot support, such as decomposing a sheared matrix into
// an SRT.
var ErrInvalidGeometry = errors.New("grove: invalid geometry operation")

// geometryEpsilon is the tolerance used when deciding whether a matrix is
// decomposable into scale, rotation and translation.
const geometryEpsilon = 1e-6

// Box is an axis-aligned bounding box. A box with Min > Max on any axis is
// empty; EmptyBox returns the canonical empty box.
type Box struct {
	Min, Max mgl64.Vec3
}

// EmptyBox returns a box that contains nothing. Union with any box yields
// that box.
func EmptyBox() Box {
	inf := math.Inf(1)
	return Box{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// NewBox returns the box spanning min and max.
func NewBox(min, max mgl64.Vec3) Box {
	return Box{Min: min, Max: max}
}

// IsEmpty reports whether the box contains no points.
func (b Box) IsEmpty() bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

// Center returns the midpoint of the box. The center of an empty box is the
// origin.
func (b Box) Center() mgl64.Vec3 {
	if b.IsEmpty() {
		return mgl64.Vec3{}
	}
	return b.Min.Add(b.Max).Mul(0.5)
}

// Extent returns the size of the box along each axis.
func (b Box) Extent() mgl64.Vec3 {
	if b.IsEmpty() {
		return mgl64.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Contains reports whether p lies inside the box. Points on the surface are
// considered inside.
func (b Box) Contains(p mgl64.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// IncludePoint returns the smallest box containing b and p.
func (b Box) IncludePoint(p mgl64.Vec3) Box {
	for i := 0; i < 3; i++ {
		b.Min[i] = math.Min(b.Min[i], p[i])
		b.Max[i] = math.Max(b.Max[i], p[i])
	}
	return b
}

// Union returns the smallest box containing both b and o.
func (b Box) Union(o Box) Box {
	if o.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return o
	}
	return b.IncludePoint(o.Min).IncludePoint(o.Max)
}

// Corners returns the eight corner points of the box.
func (b Box) Corners() [8]mgl64.Vec3 {
	var c [8]mgl64.Vec3
	for i := 0; i < 8; i++ {
		c[i] = mgl64.Vec3{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			c[i][0] = b.Max[0]
		}
		if i&2 != 0 {
			c[i][1] = b.Max[1]
		}
		if i&4 != 0 {
			c[i][2] = b.Max[2]
		}
	}
	return c
}

// Transform returns the axis-aligned box enclosing b after transformation
// by m. Empty boxes stay empty.
func (b Box) Transform(m mgl64.Mat4) Box {
	if b.IsEmpty() {
		return b
	}
	out := EmptyBox()
	for _, c := range b.Corners() {
		out = out.IncludePoint(m.Mul4x1(c.Vec4(1)).Vec3())
	}
	return out
}

// ApproxEqual reports whether both corners of b and o are within eps.
func (b Box) ApproxEqual(o Box, eps float64) bool {
	if b.IsEmpty() || o.IsEmpty() {
		return b.IsEmpty() == o.IsEmpty()
	}
	return b.Min.ApproxEqualThreshold(o.Min, eps) && b.Max.ApproxEqualThreshold(o.Max, eps)
}

func (b Box) String() string {
	if b.IsEmpty() {
		return "Box(empty)"
	}
	return fmt.Sprintf("Box(%v .. %v)", b.Min, b.Max)
}

// SRT is a transform made of a uniform scale, a rotation and a translation,
// applied in that order: M = T * R * S.
type SRT struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
	Scale       float64
}

// IdentitySRT returns the SRT that leaves points unchanged.
func IdentitySRT() SRT {
	return SRT{Rotation: mgl64.QuatIdent(), Scale: 1}
}

// Matrix converts the SRT into a 4x4 matrix.
func (s SRT) Matrix() mgl64.Mat4 {
	t := mgl64.Translate3D(s.Translation[0], s.Translation[1], s.Translation[2])
	r := s.Rotation.Normalize().Mat4()
	return t.Mul4(r).Mul4(mgl64.Scale3D(s.Scale, s.Scale, s.Scale))
}

// ApproxEqual reports whether s and o describe the same transform within
// eps. Rotations q and -q are treated as equal.
func (s SRT) ApproxEqual(o SRT, eps float64) bool {
	if !s.Translation.ApproxEqualThreshold(o.Translation, eps) {
		return false
	}
	if math.Abs(s.Scale-o.Scale) > eps {
		return false
	}
	d := s.Rotation.Normalize().Dot(o.Rotation.Normalize())
	return math.Abs(d) >= 1-eps
}

// ConvertsSafelyToSRT reports whether MatrixToSRT would succeed for m.
func ConvertsSafelyToSRT(m mgl64.Mat4) bool {
	_, err := MatrixToSRT(m)
	return err == nil
}

// MatrixToSRT decomposes m into an SRT. It fails with ErrInvalidGeometry if
// m is projective, degenerate, mirrored, sheared or scaled non-uniformly.
func MatrixToSRT(m mgl64.Mat4) (SRT, error) {
	if math.Abs(m[3]) > geometryEpsilon || math.Abs(m[7]) > geometryEpsilon ||
		math.Abs(m[11]) > geometryEpsilon || math.Abs(m[15]-1) > geometryEpsilon {
		return SRT{}, fmt.Errorf("%w: projective matrix", ErrInvalidGeometry)
	}
	c0 := mgl64.Vec3{m[0], m[1], m[2]}
	c1 := mgl64.Vec3{m[4], m[5], m[6]}
	c2 := mgl64.Vec3{m[8], m[9], m[10]}

	s := c0.Len()
	if s < geometryEpsilon {
		return SRT{}, fmt.Errorf("%w: degenerate matrix", ErrInvalidGeometry)
	}
	tol := geometryEpsilon * math.Max(1, s)
	if math.Abs(c1.Len()-s) > tol || math.Abs(c2.Len()-s) > tol {
		return SRT{}, fmt.Errorf("%w: non-uniform scale", ErrInvalidGeometry)
	}
	orthoTol := geometryEpsilon * math.Max(1, s*s)
	if math.Abs(c0.Dot(c1)) > orthoTol || math.Abs(c0.Dot(c2)) > orthoTol || math.Abs(c1.Dot(c2)) > orthoTol {
		return SRT{}, fmt.Errorf("%w: shear", ErrInvalidGeometry)
	}
	if c0.Cross(c1).Dot(c2) < 0 {
		return SRT{}, fmt.Errorf("%w: mirrored matrix", ErrInvalidGeometry)
	}

	inv := 1 / s
	r := mgl64.Ident4()
	r[0], r[1], r[2] = c0[0]*inv, c0[1]*inv, c0[2]*inv
	r[4], r[5], r[6] = c1[0]*inv, c1[1]*inv, c1[2]*inv
	r[8], r[9], r[10] = c2[0]*inv, c2[1]*inv, c2[2]*inv

	return SRT{
		Translation: mgl64.Vec3{m[12], m[13], m[14]},
		Rotation:    mgl64.Mat4ToQuat(r).Normalize(),
		Scale:       s,
	}, nil
}

// translationOf extracts the translation column of m.
func translationOf(m mgl64.Mat4) mgl64.Vec3 {
	return mgl64.Vec3{m[12], m[13], m[14]}
}
