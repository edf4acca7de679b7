package grove

import (
	"github.com/go-gl/mathgl/mgl64"
)

// --- Relative transform ---

// HasRelTransformation reports whether the node is transformed relative to
// its parent.
func (n *Node) HasRelTransformation() bool {
	return n.rel != nil
}

// HasRelTransformationSRT reports whether the relative transform is stored
// as an SRT.
func (n *Node) HasRelTransformationSRT() bool {
	return n.rel != nil && n.status&statusHasSRT != 0
}

// RelTransformationMatrix returns the transform relative to the parent. An
// untransformed node returns the identity.
func (n *Node) RelTransformationMatrix() mgl64.Mat4 {
	if n.rel == nil {
		return mgl64.Ident4()
	}
	if n.status&statusHasSRT != 0 && n.status&statusMatrixReflectsSRT == 0 {
		n.rel.matrix = n.rel.srt.Matrix()
		n.status |= statusMatrixReflectsSRT
	}
	return n.rel.matrix
}

// RelTransformationSRT returns the transform relative to the parent as an
// SRT. If the node stores a general matrix that cannot be decomposed, the
// error wraps ErrInvalidGeometry.
func (n *Node) RelTransformationSRT() (SRT, error) {
	if n.rel == nil {
		return IdentitySRT(), nil
	}
	if n.status&statusHasSRT != 0 {
		return n.rel.srt, nil
	}
	return MatrixToSRT(n.rel.matrix)
}

// SetRelTransformationMatrix stores m as the relative transform.
func (n *Node) SetRelTransformationMatrix(m mgl64.Mat4) {
	if n.rel == nil {
		n.rel = &relTransform{}
	}
	n.rel.matrix = m
	n.status &^= statusHasSRT | statusMatrixReflectsSRT
	n.transformationChanged()
}

// SetRelTransformationSRT stores s as the relative transform.
func (n *Node) SetRelTransformationSRT(s SRT) {
	if n.rel == nil {
		n.rel = &relTransform{}
	}
	n.rel.srt = s
	n.status |= statusHasSRT
	n.status &^= statusMatrixReflectsSRT
	n.transformationChanged()
}

// ResetRelTransformation removes the relative transform.
func (n *Node) ResetRelTransformation() {
	if n.rel == nil {
		return
	}
	n.rel = nil
	n.status &^= statusHasSRT | statusMatrixReflectsSRT
	n.transformationChanged()
}

// ensureRel allocates an identity SRT transform for untransformed nodes so
// incremental mutators have something to modify.
func (n *Node) ensureRel() {
	if n.rel != nil {
		return
	}
	n.rel = &relTransform{matrix: mgl64.Ident4(), srt: IdentitySRT()}
	n.status |= statusHasSRT | statusMatrixReflectsSRT
}

// RelPosition returns the translation part of the relative transform.
func (n *Node) RelPosition() mgl64.Vec3 {
	if n.rel == nil {
		return mgl64.Vec3{}
	}
	if n.status&statusHasSRT != 0 {
		return n.rel.srt.Translation
	}
	return translationOf(n.rel.matrix)
}

// SetRelPosition replaces the translation part of the relative transform.
func (n *Node) SetRelPosition(p mgl64.Vec3) {
	n.ensureRel()
	if n.status&statusHasSRT != 0 {
		n.rel.srt.Translation = p
		n.status &^= statusMatrixReflectsSRT
	} else {
		n.rel.matrix[12], n.rel.matrix[13], n.rel.matrix[14] = p[0], p[1], p[2]
	}
	n.transformationChanged()
}

// MoveRel translates the node by v in its parent's coordinate system.
func (n *Node) MoveRel(v mgl64.Vec3) {
	n.SetRelPosition(n.RelPosition().Add(v))
}

// MoveLocal translates the node by v in its own coordinate system.
func (n *Node) MoveLocal(v mgl64.Vec3) {
	n.ensureRel()
	if n.status&statusHasSRT != 0 {
		s := &n.rel.srt
		s.Translation = s.Translation.Add(s.Rotation.Normalize().Rotate(v).Mul(s.Scale))
		n.status &^= statusMatrixReflectsSRT
	} else {
		n.rel.matrix = n.rel.matrix.Mul4(mgl64.Translate3D(v[0], v[1], v[2]))
	}
	n.transformationChanged()
}

// RotateLocal rotates the node by angle radians around axis, given in the
// node's own coordinate system.
func (n *Node) RotateLocal(angle float64, axis mgl64.Vec3) {
	axis = axis.Normalize()
	n.ensureRel()
	if n.status&statusHasSRT != 0 {
		s := &n.rel.srt
		s.Rotation = s.Rotation.Mul(mgl64.QuatRotate(angle, axis)).Normalize()
		n.status &^= statusMatrixReflectsSRT
	} else {
		n.rel.matrix = n.rel.matrix.Mul4(mgl64.HomogRotate3D(angle, axis))
	}
	n.transformationChanged()
}

// ScaleBy multiplies the node's scale by f.
func (n *Node) ScaleBy(f float64) {
	n.ensureRel()
	if n.status&statusHasSRT != 0 {
		n.rel.srt.Scale *= f
		n.status &^= statusMatrixReflectsSRT
	} else {
		n.rel.matrix = n.rel.matrix.Mul4(mgl64.Scale3D(f, f, f))
	}
	n.transformationChanged()
}

// SetRelScaling sets the node's uniform scale. Nodes storing a matrix are
// converted to SRT form first, which fails with ErrInvalidGeometry when the
// matrix is not decomposable.
func (n *Node) SetRelScaling(f float64) error {
	s, err := n.RelTransformationSRT()
	if err != nil {
		return err
	}
	s.Scale = f
	n.SetRelTransformationSRT(s)
	return nil
}

// --- World transform ---

// WorldTransformationMatrixPtr returns the cached world transform. It
// returns nil when neither the node nor any ancestor is transformed, in
// which case the world transform is the identity.
func (n *Node) WorldTransformationMatrixPtr() *mgl64.Mat4 {
	if n.status&statusWorldMatrixValid == 0 {
		n.updateWorldMatrix()
	}
	if n.world == nil {
		return nil
	}
	return &n.world.matrix
}

// WorldTransformationMatrix returns the node's transform relative to the
// tree root.
func (n *Node) WorldTransformationMatrix() mgl64.Mat4 {
	if m := n.WorldTransformationMatrixPtr(); m != nil {
		return *m
	}
	return mgl64.Ident4()
}

// WorldTransformationSRT returns the world transform as an SRT. The error
// wraps ErrInvalidGeometry when the world matrix is not decomposable.
func (n *Node) WorldTransformationSRT() (SRT, error) {
	return MatrixToSRT(n.WorldTransformationMatrix())
}

// WorldOrigin returns the position of the node's origin in world space.
func (n *Node) WorldOrigin() mgl64.Vec3 {
	if m := n.WorldTransformationMatrixPtr(); m != nil {
		return translationOf(*m)
	}
	return mgl64.Vec3{}
}

// SetWorldOrigin moves the node so that its origin lies at p in world space.
func (n *Node) SetWorldOrigin(p mgl64.Vec3) {
	local := p
	if n.parent != nil {
		if pm := n.parent.WorldTransformationMatrixPtr(); pm != nil {
			local = pm.Inv().Mul4x1(p.Vec4(1)).Vec3()
		}
	}
	n.SetRelPosition(local)
}

// LocalToWorld converts a point in the node's coordinate system to world
// space.
func (n *Node) LocalToWorld(p mgl64.Vec3) mgl64.Vec3 {
	if m := n.WorldTransformationMatrixPtr(); m != nil {
		return m.Mul4x1(p.Vec4(1)).Vec3()
	}
	return p
}

// WorldToLocal converts a world-space point to the node's coordinate system.
func (n *Node) WorldToLocal(p mgl64.Vec3) mgl64.Vec3 {
	if m := n.WorldTransformationMatrixPtr(); m != nil {
		return m.Inv().Mul4x1(p.Vec4(1)).Vec3()
	}
	return p
}

// updateWorldMatrix recomputes world = parent.world * rel and marks it valid.
// No worldLocation is kept when the result would be the identity by
// construction.
func (n *Node) updateWorldMatrix() {
	var parentMatrix *mgl64.Mat4
	if n.parent != nil {
		parentMatrix = n.parent.WorldTransformationMatrixPtr()
	}
	switch {
	case n.rel == nil && parentMatrix == nil:
		n.world = nil
	case n.rel == nil:
		n.ensureWorld().matrix = *parentMatrix
	case parentMatrix == nil:
		n.ensureWorld().matrix = n.RelTransformationMatrix()
	default:
		n.ensureWorld().matrix = parentMatrix.Mul4(n.RelTransformationMatrix())
	}
	n.status |= statusWorldMatrixValid
}

func (n *Node) ensureWorld() *worldLocation {
	if n.world == nil {
		n.world = &worldLocation{bb: EmptyBox()}
	}
	return n.world
}

// --- Bounding boxes ---

// BB returns the node's bounding box in its own coordinate system: the fixed
// box if one is set, otherwise the mesh box for geometry nodes or the union
// of the children's boxes for list nodes.
func (n *Node) BB() Box {
	if n.status&statusFixedBB != 0 {
		return n.fixedBB
	}
	switch n.Type {
	case NodeTypeGeometry:
		if n.Mesh == nil {
			return EmptyBox()
		}
		return n.Mesh.BoundingBox()
	case NodeTypeList:
		if n.status&statusCompoundBBValid == 0 {
			n.compoundBB = n.computeCompoundBB()
			n.status |= statusCompoundBBValid
		}
		return n.compoundBB
	default:
		return EmptyBox()
	}
}

func (n *Node) computeCompoundBB() Box {
	bb := EmptyBox()
	for _, c := range n.children {
		cb := c.BB()
		if c.rel != nil {
			cb = cb.Transform(c.RelTransformationMatrix())
		}
		bb = bb.Union(cb)
	}
	return bb
}

// WorldBB returns the node's bounding box in world space.
func (n *Node) WorldBB() Box {
	if n.status&statusWorldBBValid == 0 {
		if m := n.WorldTransformationMatrixPtr(); m != nil {
			n.world.bb = n.BB().Transform(*m)
		}
		n.status |= statusWorldBBValid
	}
	if n.world == nil {
		return n.BB()
	}
	return n.world.bb
}

// HasFixedBB reports whether the node's bounding box is fixed.
func (n *Node) HasFixedBB() bool {
	return n.status&statusFixedBB != 0
}

// SetFixedBB fixes the node's local bounding box to b. Changes below a node
// with a fixed box do not propagate past it.
func (n *Node) SetFixedBB(b Box) {
	n.fixedBB = b
	n.status |= statusFixedBB
	n.status &^= statusWorldBBValid
	n.worldBBChanged()
}

// ClearFixedBB returns the node to a derived bounding box.
func (n *Node) ClearFixedBB() {
	if n.status&statusFixedBB == 0 {
		return
	}
	n.fixedBB = EmptyBox()
	n.status &^= statusFixedBB | statusWorldBBValid | statusCompoundBBValid
	n.worldBBChanged()
}

// MeshChanged must be called after a geometry node's mesh is replaced or
// its vertices are modified.
func (n *Node) MeshChanged() {
	if n.Mesh != nil {
		n.Mesh.MarkDirty()
	}
	n.status &^= statusWorldBBValid
	n.worldBBChanged()
}

// SetMesh replaces the mesh of a geometry node.
func (n *Node) SetMesh(m *Mesh) {
	n.Mesh = m
	n.MeshChanged()
}

// --- Invalidation ---

// transformationChanged is called by every mutator of the relative
// transform. It invalidates the world caches of n's subtree, the bounding
// boxes of its ancestors, and informs transformation observers.
func (n *Node) transformationChanged() {
	if globalDebug {
		debugCheckDestroyed(n, "transformationChanged")
	}
	n.invalidateWorldCaches()
	n.worldBBChanged()
	if n.IsTransformationObserved() {
		n.informTransformationObservers()
	}
}

// worldBBChanged invalidates the bounding boxes of n's ancestors.
func (n *Node) worldBBChanged() {
	invalidateCompoundBBFrom(n.parent)
}

// invalidateCompoundBBFrom walks from p toward the root, invalidating each
// node's compound box and world box. The walk stops at the first node with
// a fixed box: its compound box is invalidated but its world box, which
// does not depend on its children, stays valid, and its ancestors are not
// visited.
func invalidateCompoundBBFrom(p *Node) {
	for ; p != nil; p = p.parent {
		p.status &^= statusCompoundBBValid
		if p.status&statusFixedBB != 0 {
			return
		}
		p.status &^= statusWorldBBValid
	}
}

// invalidateWorldCaches marks the world matrix and world box of n and its
// descendants stale. A node whose world matrix is already stale has a stale
// subtree as well, since computing a child's world matrix always computes
// its parent's first.
func (n *Node) invalidateWorldCaches() {
	wasValid := n.status&statusWorldMatrixValid != 0
	n.status &^= statusWorldMatrixValid | statusWorldBBValid
	if !wasValid {
		return
	}
	for _, c := range n.children {
		c.invalidateWorldCaches()
	}
}
