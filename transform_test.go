package canopy

import (
	"math"
	"testing"
)

func assertTransform(t *testing.T, name string, got, want Transform) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("%s = %v, want %v", name, got, want)
			return
		}
	}
}

func TestTransformMulOrder(t *testing.T) {
	// Scale first, then translate.
	m := Translate(10, 0).Mul(Scale(2, 2))
	assertVec(t, "Apply", m.Apply(Vec2{1, 1}), Vec2{12, 2})
	assertVec(t, "ApplyVector", m.ApplyVector(Vec2{1, 1}), Vec2{2, 2})
}

func TestTransformInvert(t *testing.T) {
	tests := []struct {
		name string
		m    Transform
	}{
		{"identity", Identity},
		{"translate", Translate(5, -3)},
		{"scale", Scale(2, 0.5)},
		{"rotate", Rotate(math.Pi / 3)},
		{"composite", Translate(10, 20).Mul(Rotate(0.7)).Mul(Scale(3, 4))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.m.Invert()
			if !ok {
				t.Fatal("Invert reported singular")
			}
			assertTransform(t, "m*inv", tt.m.Mul(inv), Identity)
			assertTransform(t, "inv*m", inv.Mul(tt.m), Identity)
		})
	}
}

func TestTransformInvertSingular(t *testing.T) {
	inv, ok := Scale(0, 1).Invert()
	if ok {
		t.Error("Invert should report singular")
	}
	if inv != Identity {
		t.Errorf("inverse = %v, want Identity", inv)
	}
}

func TestTransformTranslation(t *testing.T) {
	m := Scale(2, 3).WithTranslation(Vec2{4, 5})
	if got := m.Translation(); got != (Vec2{4, 5}) {
		t.Errorf("Translation = %v", got)
	}
	if m.IsIdentity() || !Identity.IsIdentity() {
		t.Error("IsIdentity mismatch")
	}
}

func TestLocalUnitRoundTrip(t *testing.T) {
	f := NewFrame("f")
	f.SetContentScale(Vec2{200, 100})
	f.SetContentTransform(Translate(5, 5).Mul(Rotate(0.4)))

	p := Vec2{37, 12}
	assertVec(t, "UnitToLocal(LocalToUnit(p))", f.UnitToLocal(f.LocalToUnit(p)), p)
	assertVec(t, "SuperToLocal(LocalToSuper(p))", f.SuperToLocal(f.LocalToSuper(p)), p)
}

func TestLocalToUnitAppliesContentScale(t *testing.T) {
	f := NewFrame("f")
	f.SetContentScale(Vec2{200, 100})
	assertVec(t, "LocalToUnit", f.LocalToUnit(Vec2{100, 100}), Vec2{0.5, 1})
}

func TestPixelRoundTrip(t *testing.T) {
	h, _, _ := newTestHost(t, 800, 600)
	f := placed("f", 0.25, 0.25, 0.5, 0.5)
	f.SetContentScale(Vec2{100, 50})
	f.SetContentTransform(Rotate(0.3).Mul(Translate(2, 1)))
	h.Root().AddSubframe(f)
	step(t, h)

	if got := f.Resolution(); got != (Size{400, 300}) {
		t.Fatalf("Resolution = %v, want 400x300", got)
	}
	for _, p := range []Vec2{{0, 0}, {10, 20}, {-5, 33.5}, {100, 50}} {
		assertVec(t, "PixelToLocal(LocalToPixel(p))", f.PixelToLocal(f.LocalToPixel(p)), p)
	}
}

func TestMatrixFormsMatchPointForms(t *testing.T) {
	f := placed("f", 0.1, 0.2, 0.3, 0.4)
	f.SetContentScale(Vec2{50, 25})
	f.SetContentTransform(Rotate(-0.2))

	p := Vec2{7, 9}
	assertVec(t, "LocalToSuperTransform", f.LocalToSuperTransform().Apply(p), f.LocalToSuper(p))
	q := Vec2{0.3, 0.35}
	assertVec(t, "SuperToLocalTransform", f.SuperToLocalTransform().Apply(q), f.SuperToLocal(q))
}

func TestLocalToRootChain(t *testing.T) {
	h, _, _ := newTestHost(t, 800, 600)
	a := placed("a", 0.5, 0, 0.5, 1)
	b := placed("b", 0, 0.5, 1, 0.5)
	b.SetContentScale(Vec2{10, 10})
	h.Root().AddSubframe(a)
	a.AddSubframe(b)

	// b local (5, 5) is b unit (0.5, 0.5), a local (0.5, 0.75), root (0.75, 0.75).
	got := b.LocalToRoot(Vec2{5, 5})
	assertVec(t, "LocalToRoot", got, Vec2{0.75, 0.75})
	assertVec(t, "RootToLocal", b.RootToLocal(got), Vec2{5, 5})
	assertTransform(t, "chain inverse",
		b.LocalToRootTransform().Mul(b.LocalFromRootTransform()), Identity)
}

func TestSetContentTransformSingularResets(t *testing.T) {
	f := NewFrame("f")
	f.SetContentTransform(Translate(3, 4))
	f.SetContentTransform(Scale(0, 0))
	if !f.ContentTransform().IsIdentity() {
		t.Errorf("ContentTransform = %v, want Identity", f.ContentTransform())
	}
	assertVec(t, "UnitToLocal", f.UnitToLocal(Vec2{0.5, 0.5}), Vec2{0.5, 0.5})
}

func TestSetContentScaleClamps(t *testing.T) {
	f := NewFrame("f")
	f.SetContentScale(Vec2{0, -5})
	if got := f.ContentScale(); got != (Vec2{minContentScale, minContentScale}) {
		t.Errorf("ContentScale = %v, want clamped minimum", got)
	}
}

func TestRootRejectsTransform(t *testing.T) {
	h, _, _ := newTestHost(t, 100, 100)
	root := h.Root()
	root.SetTransform(Translate(1, 1))
	if !root.Transform().IsIdentity() {
		t.Errorf("root Transform = %v, want Identity", root.Transform())
	}
}

func TestSetTransformMarksParentRedraw(t *testing.T) {
	h, _, _ := newTestHost(t, 100, 100)
	f := placed("f", 0, 0, 0.5, 0.5)
	h.Root().AddSubframe(f)
	step(t, h)
	if h.Root().NeedsRedraw() || f.NeedsRedraw() {
		t.Fatal("frames should be clean after a tick")
	}

	f.SetTransform(Translate(0.1, 0.1).Mul(Scale(0.5, 0.5)))
	if !f.NeedsRedraw() || !h.Root().NeedsRedraw() {
		t.Error("SetTransform should mark the frame and its superframe")
	}
}
