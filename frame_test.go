package canopy

import (
	"testing"
)

// --- Constructor defaults ---

func TestNewFrameDefaults(t *testing.T) {
	f := NewFrame("test")
	if f.ID == 0 {
		t.Error("ID should be non-zero")
	}
	if f.Name != "test" {
		t.Errorf("Name = %q, want %q", f.Name, "test")
	}
	if !f.Transform().IsIdentity() || !f.ContentTransform().IsIdentity() {
		t.Error("transforms should be identity")
	}
	if f.ContentScale() != (Vec2{1, 1}) {
		t.Errorf("ContentScale = %v, want (1, 1)", f.ContentScale())
	}
	if f.Resolution() != (Size{1, 1}) {
		t.Errorf("Resolution = %v, want 1x1", f.Resolution())
	}
	if f.Color() != ColorWhite {
		t.Errorf("Color = %v, want white", f.Color())
	}
	if f.IsLoaded() || f.IsHidden() || !f.IsEnabled() {
		t.Error("new frame should be unloaded, visible and enabled")
	}
	if !f.NeedsRedraw() {
		t.Error("new frame should need redraw")
	}
	if f.CanHandleMouse() || f.CanHandleKeyboard() {
		t.Error("unloaded frame should not handle input")
	}
}

func TestUniqueIDs(t *testing.T) {
	a := NewFrame("a")
	b := NewFrame("b")
	if a.ID == b.ID {
		t.Errorf("IDs should differ: %d == %d", a.ID, b.ID)
	}
}

// --- Tree manipulation ---

func TestAddSubframeInsertsTopmost(t *testing.T) {
	parent := NewFrame("parent")
	a := NewFrame("a")
	b := NewFrame("b")
	if !parent.AddSubframe(a) || !parent.AddSubframe(b) {
		t.Fatal("AddSubframe failed")
	}
	subs := parent.Subframes()
	if len(subs) != 2 || subs[0] != b || subs[1] != a {
		t.Errorf("Subframes = %v, want [b a]", names(subs))
	}
	if a.Superframe() != parent {
		t.Error("Superframe not set")
	}
	if parent.NumSubframes() != 2 {
		t.Errorf("NumSubframes = %d, want 2", parent.NumSubframes())
	}
}

func TestAddSubframeRejects(t *testing.T) {
	h, _, _ := newTestHost(t, 100, 100)

	parent := NewFrame("parent")
	child := NewFrame("child")
	parent.AddSubframe(child)
	other := NewFrame("other")
	disposed := NewFrame("disposed")
	disposed.Dispose()

	tests := []struct {
		name   string
		parent *Frame
		child  *Frame
	}{
		{"nil child", parent, nil},
		{"already attached", other, child},
		{"host root", other, h.Root()},
		{"self", parent, parent},
		{"ancestor", child, parent},
		{"disposed", parent, disposed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.parent.NumSubframes()
			if tt.parent.AddSubframe(tt.child) {
				t.Error("AddSubframe should fail")
			}
			if tt.parent.NumSubframes() != before {
				t.Error("subframes changed on failure")
			}
		})
	}
	if child.Superframe() != parent {
		t.Error("failed AddSubframe must not reparent")
	}
}

func TestAddSubframeLoadsIntoLoadedParent(t *testing.T) {
	h, _, _ := newTestHost(t, 200, 100)
	var loads, resizes int
	f := placed("f", 0, 0, 0.5, 0.5)
	f.OnLoad = func(*Frame) { loads++ }
	f.OnResize = func(*Frame, Size) { resizes++ }
	grandchild := NewFrame("grandchild")
	f.AddSubframe(grandchild)

	h.Root().AddSubframe(f)
	if loads != 1 || resizes != 1 {
		t.Errorf("loads = %d, resizes = %d, want 1, 1", loads, resizes)
	}
	if f.Host() != h || grandchild.Host() != h {
		t.Error("subtree should be loaded into the host")
	}
	if f.Resolution() != (Size{100, 50}) {
		t.Errorf("Resolution = %v, want 100x50", f.Resolution())
	}
	if grandchild.Resolution() != (Size{100, 50}) {
		t.Errorf("grandchild Resolution = %v, want 100x50", grandchild.Resolution())
	}
}

func TestRemoveSubframeUnloads(t *testing.T) {
	h, r, _ := newTestHost(t, 100, 100)
	var unloads int
	f := placed("f", 0, 0, 0.5, 0.5)
	f.OnUnload = func(*Frame) { unloads++ }
	h.Root().AddSubframe(f)
	step(t, h)

	tex, ok := f.Surface().(*RecordedTexture)
	if !ok {
		t.Fatalf("Surface = %T, want *RecordedTexture", f.Surface())
	}
	if !h.Root().RemoveSubframe(f) {
		t.Fatal("RemoveSubframe failed")
	}
	if unloads != 1 {
		t.Errorf("unloads = %d, want 1", unloads)
	}
	if f.IsLoaded() || f.Host() != nil || f.Superframe() != nil {
		t.Error("removed frame should be detached and unloaded")
	}
	if !tex.IsDisposed() || f.Surface() != nil {
		t.Error("surface should be released on unload")
	}
	if r.LiveTextures() != 0 {
		t.Errorf("LiveTextures = %d, want 0", r.LiveTextures())
	}
	if h.Root().RemoveSubframe(f) {
		t.Error("second RemoveSubframe should fail")
	}
}

func TestRemoveFromSuperframe(t *testing.T) {
	parent := NewFrame("parent")
	f := NewFrame("f")
	if f.RemoveFromSuperframe() {
		t.Error("detached frame should report false")
	}
	parent.AddSubframe(f)
	if !f.RemoveFromSuperframe() || parent.NumSubframes() != 0 {
		t.Error("RemoveFromSuperframe failed")
	}
}

func TestReorderSubframes(t *testing.T) {
	parent := NewFrame("parent")
	a, b, c := NewFrame("a"), NewFrame("b"), NewFrame("c")
	parent.AddSubframe(a)
	parent.AddSubframe(b)
	parent.AddSubframe(c) // [c b a]

	tests := []struct {
		name string
		op   func() bool
		want []string
	}{
		{"front a", func() bool { return parent.BringSubframeToFront(a) }, []string{"a", "c", "b"}},
		{"back c", func() bool { return parent.SendSubframeToBack(c) }, []string{"a", "b", "c"}},
		{"front topmost", func() bool { return parent.BringSubframeToFront(a) }, []string{"a", "b", "c"}},
		{"back bottommost", func() bool { return parent.SendSubframeToBack(c) }, []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.op() {
				t.Fatal("reorder failed")
			}
			got := names(parent.Subframes())
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("order = %v, want %v", got, tt.want)
				}
			}
		})
	}

	if parent.BringSubframeToFront(NewFrame("stranger")) {
		t.Error("reordering a non-child should fail")
	}
}

func TestFindByName(t *testing.T) {
	root := NewFrame("root")
	a := NewFrame("a")
	b := NewFrame("b")
	root.AddSubframe(a)
	a.AddSubframe(b)
	if root.FindByName("b") != b {
		t.Error("FindByName did not find nested frame")
	}
	if root.FindByName("missing") != nil {
		t.Error("FindByName should return nil for unknown names")
	}
}

func TestIsDescendantOf(t *testing.T) {
	root := NewFrame("root")
	a := NewFrame("a")
	root.AddSubframe(a)
	if !a.IsDescendantOf(root) || !a.IsDescendantOf(a) {
		t.Error("a should descend from root and itself")
	}
	if root.IsDescendantOf(a) || a.IsDescendantOf(nil) {
		t.Error("unexpected descendant relation")
	}
}

// --- Redraw ---

func TestSetRedrawIdempotent(t *testing.T) {
	h, _, _ := newTestHost(t, 100, 100)
	f := placed("f", 0, 0, 0.5, 0.5)
	h.Root().AddSubframe(f)
	step(t, h)

	f.SetRedraw()
	step(t, h)
	once := h.Stats().LastTick.FramesDrawn

	f.SetRedraw()
	f.SetRedraw()
	step(t, h)
	twice := h.Stats().LastTick.FramesDrawn

	if once != 2 || twice != once {
		t.Errorf("FramesDrawn = %d then %d, want 2 both times", once, twice)
	}
	if f.NeedsRedraw() {
		t.Error("redraw flag should be cleared by the tick")
	}
}

// --- Lifecycle ---

func TestDisposeLoadedFrame(t *testing.T) {
	h, _, _ := newTestHost(t, 100, 100)
	f := placed("f", 0, 0, 0.5, 0.5)
	child := NewFrame("child")
	f.AddSubframe(child)
	h.Root().AddSubframe(f)
	if !f.CaptureMouse(0) {
		t.Fatal("CaptureMouse failed")
	}
	lost := 0
	f.OnMouseLost = func(*Frame, int) { lost++ }

	f.Dispose()
	if !f.IsDisposed() || !child.IsDisposed() {
		t.Error("subtree should be disposed")
	}
	if h.Root().NumSubframes() != 0 {
		t.Error("disposed frame should leave its superframe")
	}
	if h.FocusFrame(0) != nil {
		t.Error("stale capture should be evicted on lookup")
	}
	if lost != 1 {
		t.Errorf("lost = %d, want 1", lost)
	}
}

func TestCapabilityFlags(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(f *Frame)
		wantMouse    bool
		wantKeyboard bool
	}{
		{"default", func(*Frame) {}, true, true},
		{"hidden", func(f *Frame) { f.SetHidden(true) }, false, false},
		{"disabled", func(f *Frame) { f.SetEnabled(false) }, false, false},
		{"no mouse", func(f *Frame) { f.SetMouseAllowed(false) }, false, true},
		{"no keyboard", func(f *Frame) { f.SetKeyboardAllowed(false) }, true, false},
		{"unloaded", func(f *Frame) { f.RemoveFromSuperframe() }, false, false},
		{"superframe hidden", func(f *Frame) { f.Superframe().SetHidden(true) }, false, false},
		{"superframe disabled", func(f *Frame) { f.Superframe().SetEnabled(false) }, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := newTestHost(t, 100, 100)
			mid := placed("mid", 0, 0, 1, 1)
			f := placed("f", 0, 0, 0.5, 0.5)
			mid.AddSubframe(f)
			h.Root().AddSubframe(mid)
			tt.mutate(f)
			if got := f.CanHandleMouse(); got != tt.wantMouse {
				t.Errorf("CanHandleMouse = %v, want %v", got, tt.wantMouse)
			}
			if got := f.CanHandleKeyboard(); got != tt.wantKeyboard {
				t.Errorf("CanHandleKeyboard = %v, want %v", got, tt.wantKeyboard)
			}
		})
	}
}

func TestRootRejectsVisualChanges(t *testing.T) {
	h, _, _ := newTestHost(t, 100, 100)
	root := h.Root()
	root.SetHidden(true)
	root.SetColor(Color{1, 0, 0, 1})
	root.SetBlendMode(BlendAdd)
	if root.IsHidden() || root.Color() != ColorWhite || root.BlendMode() != BlendNormal {
		t.Error("root visual state should be unchanged")
	}
}

func names(frames []*Frame) []string {
	out := make([]string, len(frames))
	for i, f := range frames {
		out[i] = f.Name
	}
	return out
}
