package canopy

import (
	"errors"
	"testing"
)

// compositedTextures returns the textures drawn by the textured-rect ops,
// in draw order.
func compositedTextures(ops []DrawOp) []*RecordedTexture {
	var out []*RecordedTexture
	for _, op := range ops {
		if op.Type == OpDrawTexturedRect {
			out = append(out, op.Texture)
		}
	}
	return out
}

func TestRootResolutionFollowsWindow(t *testing.T) {
	h, r, w := newTestHost(t, 800, 600)
	if got := h.Root().Resolution(); got != (Size{800, 600}) {
		t.Fatalf("root Resolution = %v, want 800x600", got)
	}

	w.SetScaleFactor(2)
	step(t, h)
	if got := h.Root().Resolution(); got != (Size{1600, 1200}) {
		t.Errorf("root Resolution = %v, want 1600x1200", got)
	}
	if got := r.Target().Size(); got != (Size{1600, 1200}) {
		t.Errorf("target Size = %v, want 1600x1200", got)
	}
}

func TestSubframeResolutionFollowsPlacement(t *testing.T) {
	h, r, _ := newTestHost(t, 800, 600)
	f := placed("half", 0, 0, 0.5, 0.5)
	h.Root().AddSubframe(f)
	step(t, h)

	if got := f.Resolution(); got != (Size{400, 300}) {
		t.Errorf("Resolution = %v, want 400x300", got)
	}
	textures := r.Textures()
	if len(textures) != 1 || textures[0].Size != (Size{400, 300}) {
		t.Fatalf("textures = %v, want one 400x300", len(textures))
	}
}

func TestRotatedSubframeKeepsEdgeLengths(t *testing.T) {
	h, _, _ := newTestHost(t, 600, 600)
	f := NewFrame("rotated")
	f.SetTransform(Translate(0.5, 0).Mul(Rotate(0.5)).Mul(Scale(0.5, 0.25)))
	h.Root().AddSubframe(f)
	step(t, h)
	if got := f.Resolution(); got != (Size{300, 150}) {
		t.Errorf("Resolution = %v, want 300x150", got)
	}
}

func TestResolutionClampedToMaxSurfaceSize(t *testing.T) {
	r := NewRecordingRenderer()
	cfg := DefaultHostConfig()
	cfg.MaxSurfaceSize = 256
	h := NewHost(r, cfg)
	t.Cleanup(h.Close)
	if err := h.SetWindow(NewHeadlessWindow(800, 100)); err != nil {
		t.Fatal(err)
	}
	if got := h.Root().Resolution(); got != (Size{256, 100}) {
		t.Errorf("Resolution = %v, want 256x100", got)
	}
}

func TestResizeDiscardsSurface(t *testing.T) {
	h, _, w := newTestHost(t, 800, 600)
	f := placed("f", 0, 0, 0.5, 0.5)
	var sizes []Size
	f.OnResize = func(_ *Frame, s Size) { sizes = append(sizes, s) }
	h.Root().AddSubframe(f)
	step(t, h)
	old := f.Surface().(*RecordedTexture)

	w.Resize(400, 300)
	step(t, h)
	if !old.IsDisposed() {
		t.Error("old surface should be disposed after resize")
	}
	tex := f.Surface().(*RecordedTexture)
	if tex == old || tex.Size != (Size{200, 150}) {
		t.Errorf("new surface = %v, want fresh 200x150", tex.Size)
	}
	if len(sizes) != 2 || sizes[1] != (Size{200, 150}) {
		t.Errorf("OnResize sizes = %v", sizes)
	}
}

func TestCachedSurfacesAreReused(t *testing.T) {
	h, r, _ := newTestHost(t, 100, 100)
	a := placed("a", 0, 0, 0.5, 0.5)
	b := placed("b", 0.5, 0.5, 0.5, 0.5)
	h.Root().AddSubframe(a)
	h.Root().AddSubframe(b)
	step(t, h)

	texA := a.Surface().(*RecordedTexture)
	texB := b.Surface().(*RecordedTexture)
	presents := r.Target().Presents()

	// Nothing dirty: no draw, no present.
	step(t, h)
	if got := r.Target().Presents(); got != presents {
		t.Errorf("Presents = %d, want %d", got, presents)
	}

	// Only a redraws; b's cached surface is composited again.
	a.SetRedraw()
	step(t, h)
	if texA.Commits() != 2 || texB.Commits() != 1 {
		t.Errorf("commits a=%d b=%d, want 2 and 1", texA.Commits(), texB.Commits())
	}
	if got := r.Target().Presents(); got != presents+1 {
		t.Errorf("Presents = %d, want %d", got, presents+1)
	}
	if got := len(compositedTextures(r.Target().Frame())); got != 2 {
		t.Errorf("composited %d textures, want 2", got)
	}
}

func TestCompositeOrderBackToFront(t *testing.T) {
	h, r, _ := newTestHost(t, 100, 100)
	a := placed("a", 0, 0, 0.6, 0.6)
	b := placed("b", 0.4, 0.4, 0.6, 0.6)
	h.Root().AddSubframe(a)
	h.Root().AddSubframe(b) // b is topmost
	step(t, h)

	ops := r.Target().Frame()
	if len(ops) == 0 || ops[0].Type != OpClear {
		t.Fatalf("first op = %v, want Clear", ops)
	}
	got := compositedTextures(ops)
	if len(got) != 2 || got[0] != a.Surface() || got[1] != b.Surface() {
		t.Fatal("want a drawn before b")
	}

	h.Root().BringSubframeToFront(a)
	step(t, h)
	got = compositedTextures(r.Target().Frame())
	if len(got) != 2 || got[0] != b.Surface() || got[1] != a.Surface() {
		t.Error("after BringSubframeToFront(a), want b drawn before a")
	}
}

func TestCompositeUsesPlacementAndTint(t *testing.T) {
	h, r, _ := newTestHost(t, 100, 100)
	f := placed("f", 0.25, 0.25, 0.5, 0.5)
	f.SetColor(Color{1, 0, 0, 0.5})
	f.SetBlendMode(BlendAdd)
	h.Root().AddSubframe(f)
	step(t, h)

	for _, op := range r.Target().Frame() {
		if op.Type != OpDrawTexturedRect {
			continue
		}
		if op.Rect != unitRect || op.Transform != f.Transform() {
			t.Errorf("op rect/transform = %v %v", op.Rect, op.Transform)
		}
		if op.Color != (Color{1, 0, 0, 0.5}) || op.Blend != BlendAdd {
			t.Errorf("op color/blend = %v %v", op.Color, op.Blend)
		}
		return
	}
	t.Fatal("no composite op recorded")
}

func TestCullingSkipsOutsideSubframes(t *testing.T) {
	h, r, _ := newTestHost(t, 100, 100)
	inside := placed("inside", 0, 0, 0.5, 0.5)
	outside := placed("outside", 2, 2, 0.5, 0.5)
	drawn := false
	outside.OnDraw = func(*Frame, Canvas) { drawn = true }
	h.Root().AddSubframe(inside)
	h.Root().AddSubframe(outside)
	step(t, h)

	if drawn || outside.Surface() != nil {
		t.Error("culled subframe should not be drawn")
	}
	if got := h.Stats().LastTick.Culled; got != 1 {
		t.Errorf("Culled = %d, want 1", got)
	}
	if got := len(compositedTextures(r.Target().Frame())); got != 1 {
		t.Errorf("composited %d textures, want 1", got)
	}
}

func TestCullingUsesRotatedBounds(t *testing.T) {
	h, _, _ := newTestHost(t, 100, 100)
	// Unrotated, this box lies left of the parent; rotation swings a corner
	// inside.
	f := NewFrame("f")
	f.SetTransform(Translate(-0.35, 0.5).Mul(Rotate(-0.5)).Mul(Scale(0.3, 0.3)))
	h.Root().AddSubframe(f)
	step(t, h)
	if f.Surface() == nil {
		t.Error("partially visible rotated subframe should be drawn")
	}
}

func TestHiddenSubframeNotComposited(t *testing.T) {
	h, r, _ := newTestHost(t, 100, 100)
	f := placed("f", 0, 0, 0.5, 0.5)
	h.Root().AddSubframe(f)
	step(t, h)

	f.SetHidden(true)
	step(t, h)
	if got := len(compositedTextures(r.Target().Frame())); got != 0 {
		t.Errorf("composited %d textures, want 0", got)
	}
}

func TestOnDrawReplacesClear(t *testing.T) {
	h, _, _ := newTestHost(t, 100, 100)
	f := placed("f", 0, 0, 0.5, 0.5)
	f.SetContentScale(Vec2{10, 10})
	f.OnDraw = func(_ *Frame, c Canvas) {
		c.DrawRect(Rect{1, 1, 2, 2}, Identity, Color{0, 1, 0, 1}, BlendNormal)
	}
	overlays := 0
	f.OnDrawOverlay = func(*Frame, Canvas) { overlays++ }
	h.Root().AddSubframe(f)
	step(t, h)

	ops := f.Surface().(*RecordedTexture).Ops()
	if len(ops) != 1 || ops[0].Type != OpDrawRect || ops[0].Rect != (Rect{1, 1, 2, 2}) {
		t.Errorf("ops = %v", ops)
	}
	if overlays != 1 {
		t.Errorf("overlays = %d, want 1", overlays)
	}
}

func TestDrawSetsCanvasSpaces(t *testing.T) {
	h, _, _ := newTestHost(t, 100, 100)
	f := placed("f", 0, 0, 0.5, 0.5)
	f.SetContentScale(Vec2{20, 10})
	f.SetContentTransform(Translate(1, 2))
	var canvas *RecordingCanvas
	f.OnDraw = func(_ *Frame, c Canvas) { canvas = c.(*RecordingCanvas) }
	h.Root().AddSubframe(f)
	step(t, h)

	if canvas == nil {
		t.Fatal("OnDraw not called")
	}
	if canvas.Viewport != (Rect{0, 0, 50, 50}) {
		t.Errorf("Viewport = %v", canvas.Viewport)
	}
	if canvas.ContentBounds != (Rect{0, 0, 20, 10}) {
		t.Errorf("ContentBounds = %v", canvas.ContentBounds)
	}
	if canvas.ContentTransform != Translate(1, 2) {
		t.Errorf("ContentTransform = %v", canvas.ContentTransform)
	}
}

func TestDiscardSurface(t *testing.T) {
	h, _, _ := newTestHost(t, 100, 100)
	f := placed("f", 0, 0, 0.5, 0.5)
	h.Root().AddSubframe(f)
	step(t, h)
	old := f.Surface().(*RecordedTexture)

	f.DiscardSurface()
	if !old.IsDisposed() || f.Surface() != nil || !f.NeedsRedraw() {
		t.Fatal("DiscardSurface should dispose and mark redraw")
	}
	step(t, h)
	if f.Surface() == nil {
		t.Error("surface should be recreated on the next tick")
	}
}

func TestTextureFailureIsLogged(t *testing.T) {
	h, r, _ := newTestHost(t, 100, 100)
	r.TextureErr = errors.New("out of memory")
	f := placed("f", 0, 0, 0.5, 0.5)
	h.Root().AddSubframe(f)
	step(t, h)

	if f.Surface() != nil {
		t.Error("surface should stay nil when creation fails")
	}
	if got := len(compositedTextures(r.Target().Frame())); got != 0 {
		t.Errorf("composited %d textures, want 0", got)
	}

	r.TextureErr = nil
	step(t, h)
	if f.Surface() == nil {
		t.Error("surface should be created once the renderer recovers")
	}
}

func TestDrawWithoutWindowUsesOffscreenRoot(t *testing.T) {
	r := NewRecordingRenderer()
	h := NewHost(r, DefaultHostConfig())
	t.Cleanup(h.Close)
	step(t, h)

	if h.Root().Surface() == nil {
		t.Error("root should draw offscreen without a window")
	}
	if got := h.Stats().PresentCount; got != 0 {
		t.Errorf("PresentCount = %d, want 0", got)
	}
}
