package geom

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestIntersectsSharedFaceIsNotOverlap(t *testing.T) {
	a := Box(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 10, 4})
	b := Box(mgl64.Vec3{10, 0, 0}, mgl64.Vec3{20, 10, 4})
	if a.Intersects(b) {
		t.Fatal("boxes sharing a face must not intersect")
	}
	c := Box(mgl64.Vec3{9, 0, 0}, mgl64.Vec3{19, 10, 4})
	if !a.Intersects(c) || !c.Intersects(a) {
		t.Fatal("overlapping boxes must intersect both ways")
	}
}

func TestContractToleratesNearTouching(t *testing.T) {
	a := Box(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 10, 4})
	b := Box(mgl64.Vec3{9.9, 0, 0}, mgl64.Vec3{20, 10, 4})
	if !a.Intersects(b) {
		t.Fatal("expected raw overlap")
	}
	if a.Contract(0.1).Intersects(b.Contract(0.1)) {
		t.Fatal("contracted boxes should no longer overlap")
	}
}

func TestContractCollapsesInvertedAxis(t *testing.T) {
	b := Box(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 10, 10}).Contract(3)
	if b.Min[0] != 1 || b.Max[0] != 1 {
		t.Fatalf("expected x axis collapsed to 1, got %v..%v", b.Min[0], b.Max[0])
	}
	if !b.Empty() {
		t.Fatal("collapsed box should be empty")
	}
}

func TestContains(t *testing.T) {
	outer := Box(mgl64.Vec3{-50, -50, -50}, mgl64.Vec3{50, 50, 50})
	inner := Box(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 10, 10})
	if !outer.Contains(inner) {
		t.Fatal("outer should contain inner")
	}
	if inner.Contains(outer) {
		t.Fatal("inner must not contain outer")
	}
}

func TestInverseUndoesTransform(t *testing.T) {
	tr := At(3, -7, 1).Yaw(90)
	p := mgl64.Vec3{1, 2, 3}
	back := tr.Inverse().Point(tr.Point(p))
	if !back.ApproxEqualThreshold(p, 1e-9) {
		t.Fatalf("round trip drifted: %v -> %v", p, back)
	}
	if !tr.Mul(tr.Inverse()).ApproxEqual(Identity(), 1e-9) {
		t.Fatal("t * inverse(t) should be identity")
	}
}

func TestYawRotatesForward(t *testing.T) {
	f := Identity().Yaw(90).Forward()
	if !f.ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-9) {
		t.Fatalf("expected +Y forward after 90 degree yaw, got %v", f)
	}
}

func TestTransformBoxRotated(t *testing.T) {
	b := Box(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 4, 2})
	got := b.Transform(At(100, 0, 0).Yaw(90))
	want := Box(mgl64.Vec3{96, 0, 0}, mgl64.Vec3{100, 10, 2})
	if got != want {
		t.Fatalf("rotated box = %v, want %v", got, want)
	}
}

func TestSnappedCanonicalSign(t *testing.T) {
	a := Identity().Yaw(180).Snapped()
	b := Identity().Yaw(-180).Snapped()
	if a != b {
		t.Fatalf("+180 and -180 yaw should snap to the same transform: %v vs %v", a, b)
	}
}
