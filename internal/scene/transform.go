package scene

import (
	"github.com/go-gl/mathgl/mgl64"
)

// TRS is a local transform split into translation, rotation and scale.
// Composition order is T * R * S, matching glTF node semantics.
type TRS struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
	Scale       mgl64.Vec3
}

// Identity returns the neutral transform.
func Identity() TRS {
	return TRS{
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// Mat4 composes the transform into a 4x4 affine matrix.
func (t TRS) Mat4() mgl64.Mat4 {
	m := mgl64.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z())
	m = m.Mul4(t.Rotation.Mat4())
	return m.Mul4(mgl64.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// Decompose extracts translation, rotation and scale from an affine matrix.
// Shear and mirroring are not represented; rig transforms never carry them.
func Decompose(m mgl64.Mat4) TRS {
	t := m.Col(3).Vec3()

	cx := m.Col(0).Vec3()
	cy := m.Col(1).Vec3()
	cz := m.Col(2).Vec3()
	s := mgl64.Vec3{cx.Len(), cy.Len(), cz.Len()}

	r := mgl64.Ident4()
	if s.X() > 1e-12 {
		r.SetCol(0, cx.Mul(1 / s.X()).Vec4(0))
	}
	if s.Y() > 1e-12 {
		r.SetCol(1, cy.Mul(1 / s.Y()).Vec4(0))
	}
	if s.Z() > 1e-12 {
		r.SetCol(2, cz.Mul(1 / s.Z()).Vec4(0))
	}

	return TRS{
		Translation: t,
		Rotation:    mgl64.Mat4ToQuat(r).Normalize(),
		Scale:       s,
	}
}

// Lerp interpolates between two transforms. Translation and scale are
// interpolated linearly, rotation spherically along the shorter arc.
func Lerp(a, b TRS, t float64) TRS {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}

	qa, qb := a.Rotation, b.Rotation
	if qa.Dot(qb) < 0 {
		qb = qb.Scale(-1)
	}

	return TRS{
		Translation: a.Translation.Mul(1 - t).Add(b.Translation.Mul(t)),
		Rotation:    mgl64.QuatSlerp(qa, qb, t).Normalize(),
		Scale:       a.Scale.Mul(1 - t).Add(b.Scale.Mul(t)),
	}
}
