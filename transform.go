package canopy

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Transform is a 2D affine matrix stored row-major in the f64.Aff3 layout:
//
//	| a  b  c |
//	| d  e  f |
//	| 0  0  1 |
//
// so that x' = a*x + b*y + c and y' = d*x + e*y + f.
type Transform f64.Aff3

// Identity is the identity affine matrix.
var Identity = Transform{1, 0, 0, 0, 1, 0}

// minDeterminant is the magnitude below which a matrix is treated as singular.
const minDeterminant = 1e-12

// Translate returns a translation matrix.
func Translate(x, y float64) Transform {
	return Transform{1, 0, x, 0, 1, y}
}

// Scale returns a scaling matrix.
func Scale(sx, sy float64) Transform {
	return Transform{sx, 0, 0, 0, sy, 0}
}

// Rotate returns a rotation matrix. Positive angles rotate clockwise in a
// Y-down coordinate system.
func Rotate(radians float64) Transform {
	sin, cos := math.Sincos(radians)
	return Transform{cos, -sin, 0, sin, cos, 0}
}

// Mul returns t * u: the resulting matrix applies u first, then t.
func (t Transform) Mul(u Transform) Transform {
	return Transform{
		t[0]*u[0] + t[1]*u[3],
		t[0]*u[1] + t[1]*u[4],
		t[0]*u[2] + t[1]*u[5] + t[2],
		t[3]*u[0] + t[4]*u[3],
		t[3]*u[1] + t[4]*u[4],
		t[3]*u[2] + t[4]*u[5] + t[5],
	}
}

// Determinant returns the determinant of the linear part.
func (t Transform) Determinant() float64 {
	return t[0]*t[4] - t[1]*t[3]
}

// Invert returns the inverse of t. If t is singular it returns Identity and
// false.
func (t Transform) Invert() (Transform, bool) {
	det := t.Determinant()
	if det > -minDeterminant && det < minDeterminant {
		return Identity, false
	}
	invDet := 1.0 / det
	a := t[4] * invDet
	b := -t[1] * invDet
	d := -t[3] * invDet
	e := t[0] * invDet
	return Transform{
		a, b, -(a*t[2] + b*t[5]),
		d, e, -(d*t[2] + e*t[5]),
	}, true
}

// Apply transforms a point.
func (t Transform) Apply(p Vec2) Vec2 {
	return Vec2{t[0]*p.X + t[1]*p.Y + t[2], t[3]*p.X + t[4]*p.Y + t[5]}
}

// ApplyVector transforms a direction, ignoring translation.
func (t Transform) ApplyVector(v Vec2) Vec2 {
	return Vec2{t[0]*v.X + t[1]*v.Y, t[3]*v.X + t[4]*v.Y}
}

// Translation returns the translation component.
func (t Transform) Translation() Vec2 {
	return Vec2{t[2], t[5]}
}

// WithTranslation returns t with its translation component replaced.
func (t Transform) WithTranslation(p Vec2) Transform {
	t[2], t[5] = p.X, p.Y
	return t
}

// IsIdentity reports whether t is exactly the identity matrix.
func (t Transform) IsIdentity() bool {
	return t == Identity
}

// unitCorners are the corners of the normalized unit box in the order
// top-left, top-right, bottom-left, bottom-right.
var unitCorners = [4]Vec2{{0, 0}, {1, 0}, {0, 1}, {1, 1}}

// --- Frame transform setters ---

// Transform returns the frame's placement transform, which maps the frame's
// unit box into its superframe's local space.
func (f *Frame) Transform() Transform {
	return f.transform
}

// SetTransform sets the placement transform. The root frame cannot be
// retransformed. A singular matrix is kept but makes the frame impossible
// to hit.
func (f *Frame) SetTransform(t Transform) {
	if f.isRoot() {
		Logger().Warn("canopy: cannot transform root frame", frameAttr(f))
		return
	}
	if f.transform == t {
		return
	}
	f.transform = t
	f.transformInv, f.transformInvertible = t.Invert()
	f.SetRedraw()
	if f.parent != nil {
		f.parent.SetRedraw()
	}
}

// ContentTransform returns the transform applied to local coordinates before
// normalizing by the content scale.
func (f *Frame) ContentTransform() Transform {
	return f.contentTransform
}

// SetContentTransform sets the content transform. A non-invertible matrix
// resets both the transform and its inverse to identity.
func (f *Frame) SetContentTransform(t Transform) {
	inv, ok := t.Invert()
	if !ok {
		t, inv = Identity, Identity
	}
	if f.contentTransform == t {
		return
	}
	f.contentTransform = t
	f.contentTransformInv = inv
	f.SetRedraw()
}

// ContentScale returns the logical size of the frame's local space.
func (f *Frame) ContentScale() Vec2 {
	return f.contentScale
}

// SetContentScale sets the logical size of the frame's local space. Each
// component is clamped to a small positive minimum.
func (f *Frame) SetContentScale(s Vec2) {
	s.X = math.Max(s.X, minContentScale)
	s.Y = math.Max(s.Y, minContentScale)
	if f.contentScale == s {
		return
	}
	f.contentScale = s
	f.SetRedraw()
}

// --- Coordinate conversion ---

// LocalToUnit converts a local point to the frame's normalized 0..1 space.
func (f *Frame) LocalToUnit(p Vec2) Vec2 {
	return f.contentTransform.Apply(p).Div(f.contentScale)
}

// UnitToLocal converts a normalized 0..1 point to local space.
func (f *Frame) UnitToLocal(u Vec2) Vec2 {
	return f.contentTransformInv.Apply(u.Mul(f.contentScale))
}

// LocalToSuper converts a local point to the superframe's local space.
func (f *Frame) LocalToSuper(p Vec2) Vec2 {
	return f.transform.Apply(f.LocalToUnit(p))
}

// SuperToLocal converts a point in the superframe's local space to this
// frame's local space.
func (f *Frame) SuperToLocal(p Vec2) Vec2 {
	return f.UnitToLocal(f.transformInv.Apply(p))
}

// LocalToPixel converts a local point to the frame's pixel space.
func (f *Frame) LocalToPixel(p Vec2) Vec2 {
	return f.LocalToUnit(p).Mul(f.resolution.Vec2())
}

// PixelToLocal converts a pixel-space point to local space.
func (f *Frame) PixelToLocal(p Vec2) Vec2 {
	return f.UnitToLocal(p.Div(f.resolution.Vec2()))
}

// LocalToSuperTransform returns the matrix form of LocalToSuper.
func (f *Frame) LocalToSuperTransform() Transform {
	normalize := Scale(1/f.contentScale.X, 1/f.contentScale.Y)
	return f.transform.Mul(normalize).Mul(f.contentTransform)
}

// SuperToLocalTransform returns the matrix form of SuperToLocal.
func (f *Frame) SuperToLocalTransform() Transform {
	denormalize := Scale(f.contentScale.X, f.contentScale.Y)
	return f.contentTransformInv.Mul(denormalize).Mul(f.transformInv)
}

// LocalToRootTransform composes LocalToSuperTransform over every ancestor up
// to the frame with no superframe.
func (f *Frame) LocalToRootTransform() Transform {
	t := Identity
	for p := f; p.parent != nil; p = p.parent {
		t = p.LocalToSuperTransform().Mul(t)
	}
	return t
}

// LocalFromRootTransform is the inverse chain of LocalToRootTransform.
func (f *Frame) LocalFromRootTransform() Transform {
	t := Identity
	for p := f; p.parent != nil; p = p.parent {
		t = t.Mul(p.SuperToLocalTransform())
	}
	return t
}

// LocalToRoot converts a local point to the root frame's local space.
func (f *Frame) LocalToRoot(p Vec2) Vec2 {
	return f.LocalToRootTransform().Apply(p)
}

// RootToLocal converts a point in the root frame's local space to this
// frame's local space.
func (f *Frame) RootToLocal(p Vec2) Vec2 {
	return f.LocalFromRootTransform().Apply(p)
}

// unitBoxInSuper returns the frame's unit box corners projected into the
// superframe's local space.
func (f *Frame) unitBoxInSuper() [4]Vec2 {
	var out [4]Vec2
	for i, c := range unitCorners {
		out[i] = f.transform.Apply(c)
	}
	return out
}
