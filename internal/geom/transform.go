package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// snapScale sets the grid (1/snapScale units) placements are rounded onto so
// that floating point noise from quaternion math does not leak into layouts.
const snapScale = 1e6

// Up is the world up axis. Doors face along their local +X.
var Up = mgl64.Vec3{0, 0, 1}

// Transform is a rigid transform: rotate, then translate.
type Transform struct {
	Location mgl64.Vec3 `json:"location"`
	Rotation mgl64.Quat `json:"rotation"`
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{Rotation: mgl64.QuatIdent()}
}

// At returns a translation-only transform.
func At(x, y, z float64) Transform {
	return Transform{Location: mgl64.Vec3{x, y, z}, Rotation: mgl64.QuatIdent()}
}

// Yaw returns t rotated about the up axis by deg degrees (applied after
// t's own rotation).
func (t Transform) Yaw(deg float64) Transform {
	q := mgl64.QuatRotate(mgl64.DegToRad(deg), Up)
	t.Rotation = q.Mul(t.rotation()).Normalize()
	return t
}

// rotation guards against the zero quaternion from a zero-value Transform.
func (t Transform) rotation() mgl64.Quat {
	if t.Rotation.W == 0 && t.Rotation.V == (mgl64.Vec3{}) {
		return mgl64.QuatIdent()
	}
	return t.Rotation
}

// Point maps a local point into the space t describes.
func (t Transform) Point(p mgl64.Vec3) mgl64.Vec3 {
	return t.Location.Add(t.rotation().Rotate(p))
}

// Forward is the direction local +X points to after rotation.
func (t Transform) Forward() mgl64.Vec3 {
	return t.rotation().Rotate(mgl64.Vec3{1, 0, 0})
}

// Mul composes t with a child transform expressed in t's local space.
func (t Transform) Mul(child Transform) Transform {
	return Transform{
		Location: t.Point(child.Location),
		Rotation: t.rotation().Mul(child.rotation()).Normalize(),
	}
}

// Inverse returns the transform undoing t.
func (t Transform) Inverse() Transform {
	inv := t.rotation().Inverse()
	return Transform{
		Location: inv.Rotate(t.Location).Mul(-1),
		Rotation: inv,
	}
}

// Mat4 returns the homogeneous matrix for t.
func (t Transform) Mat4() mgl64.Mat4 {
	l := t.Location
	return mgl64.Translate3D(l[0], l[1], l[2]).Mul4(t.rotation().Mat4())
}

// Snapped rounds the location onto the snap grid and drops quaternion noise
// so that equal placements serialize identically.
func (t Transform) Snapped() Transform {
	q := t.rotation()
	q.W = denoise(q.W)
	q.V = mgl64.Vec3{denoise(q.V[0]), denoise(q.V[1]), denoise(q.V[2])}
	if q.W < 0 || (q.W == 0 && firstNonZero(q.V) < 0) {
		// q and -q are the same rotation; keep one canonical sign.
		q.W, q.V = -q.W, q.V.Mul(-1)
	}
	return Transform{Location: snapVec(t.Location), Rotation: q.Normalize()}
}

// ApproxEqual reports whether two transforms match within tolerance.
func (t Transform) ApproxEqual(o Transform, tol float64) bool {
	if !t.Location.ApproxEqualThreshold(o.Location, tol) {
		return false
	}
	a, b := t.rotation(), o.rotation()
	d := math.Abs(a.Dot(b))
	return 1-d <= tol
}

func firstNonZero(v mgl64.Vec3) float64 {
	for _, c := range v {
		if c != 0 {
			return c
		}
	}
	return 0
}

func denoise(f float64) float64 {
	if math.Abs(f) < 1e-12 {
		return 0
	}
	return f
}

func snap(f float64) float64 {
	r := math.Round(f*snapScale) / snapScale
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

func snapVec(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{snap(v[0]), snap(v[1]), snap(v[2])}
}
