package math

import "github.com/chewxy/math32"

// Transform is a translation-rotation-scale triple. Applied to a point it
// scales first, then rotates, then translates.
type Transform struct {
	Translation Vec3
	Rotation    Quat
	Scale       Vec3
}

// TransformIdentity returns the transform that leaves points unchanged.
func TransformIdentity() Transform {
	return Transform{
		Translation: Vec3Zero(),
		Rotation:    QuatIdentity(),
		Scale:       Vec3One(),
	}
}

// ToMat4 returns T * R * S.
func (t Transform) ToMat4() Mat4 {
	m := t.Rotation.ToMat4()
	s := [3]float32{t.Scale.X, t.Scale.Y, t.Scale.Z}
	for col := 0; col < 3; col++ {
		m[col*4+0] *= s[col]
		m[col*4+1] *= s[col]
		m[col*4+2] *= s[col]
	}
	m[12] = t.Translation.X
	m[13] = t.Translation.Y
	m[14] = t.Translation.Z
	m[15] = 1
	return m
}

// TransformFromMat4 decomposes an affine matrix into translation, rotation
// and scale. Reflections are folded into the scale of the longest axis so the
// rotation stays proper.
func TransformFromMat4(m Mat4) Transform {
	out := Transform{Translation: m.Translation()}

	cols := [3]Vec3{m.Column(0), m.Column(1), m.Column(2)}
	lengths := [3]float32{cols[0].Length(), cols[1].Length(), cols[2].Length()}

	// Degenerate axes leave no recoverable rotation.
	if lengths[0] <= 0 || lengths[1] <= 0 || lengths[2] <= 0 {
		out.Scale = Vec3{lengths[0], lengths[1], lengths[2]}
		out.Rotation = QuatIdentity()
		return out
	}

	for i := range cols {
		cols[i] = cols[i].Scale(1 / lengths[i])
	}

	if cols[0].Cross(cols[1]).Dot(cols[2]) < 0 {
		k := 0
		if lengths[1] > lengths[k] {
			k = 1
		}
		if lengths[2] > lengths[k] {
			k = 2
		}
		cols[k] = cols[k].Scale(-1)
		lengths[k] = -lengths[k]
	}

	rot := Identity()
	for i := range cols {
		rot[i*4+0] = cols[i].X
		rot[i*4+1] = cols[i].Y
		rot[i*4+2] = cols[i].Z
	}

	out.Scale = Vec3{lengths[0], lengths[1], lengths[2]}
	out.Rotation = QuatFromRotationMatrix(rot)
	return out
}

// Combine returns parent * child: the child transform expressed in the
// parent's space.
func Combine(parent, child Transform) Transform {
	return TransformFromMat4(parent.ToMat4().Mul(child.ToMat4()))
}

// TransformVector applies scale and rotation to v.
func (t Transform) TransformVector(v Vec3) Vec3 {
	return t.Rotation.Rotate(v.Mul(t.Scale))
}

// TransformPoint applies scale, rotation and translation to p.
func (t Transform) TransformPoint(p Vec3) Vec3 {
	return t.TransformVector(p).Add(t.Translation)
}

// Inverse returns the transform undoing t. A singular t yields identity.
func (t Transform) Inverse() Transform {
	return TransformFromMat4(t.ToMat4().Inverse())
}

// IsFinite reports whether every component is finite.
func (t Transform) IsFinite() bool {
	return t.Translation.IsFinite() && t.Rotation.IsFinite() && t.Scale.IsFinite()
}

// ApproxEqual compares two transforms component-wise. Rotations q and -q are
// treated as equal.
func (t Transform) ApproxEqual(other Transform, tolerance float32) bool {
	near := func(a, b float32) bool { return math32.Abs(a-b) <= tolerance }
	dot := math32.Abs(t.Rotation.Normalize().Dot(other.Rotation.Normalize()))
	return near(t.Translation.X, other.Translation.X) &&
		near(t.Translation.Y, other.Translation.Y) &&
		near(t.Translation.Z, other.Translation.Z) &&
		near(t.Scale.X, other.Scale.X) &&
		near(t.Scale.Y, other.Scale.Y) &&
		near(t.Scale.Z, other.Scale.Z) &&
		near(dot, 1)
}
