package canopy

// --- Hit shapes ---

// HitShape is a custom hit region in a frame's local coordinates.
type HitShape interface {
	Contains(x, y float64) bool
}

// HitRect is an axis-aligned rectangular hit area in local coordinates.
type HitRect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r HitRect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// HitCircle is a circular hit area in local coordinates.
type HitCircle struct {
	CenterX, CenterY, Radius float64
}

// Contains reports whether (x, y) lies inside or on the circle.
func (c HitCircle) Contains(x, y float64) bool {
	dx := x - c.CenterX
	dy := y - c.CenterY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// HitPolygon is a convex polygon hit area in local coordinates.
// Points must define a convex polygon in either winding order.
type HitPolygon struct {
	Points []Vec2
}

// Contains reports whether (x, y) lies inside a convex polygon using cross-product sign test.
func (p HitPolygon) Contains(x, y float64) bool {
	n := len(p.Points)
	if n < 3 {
		return false
	}
	var positive, negative bool
	for i := 0; i < n; i++ {
		x1, y1 := p.Points[i].X, p.Points[i].Y
		j := (i + 1) % n
		x2, y2 := p.Points[j].X, p.Points[j].Y

		cross := (x2-x1)*(y-y1) - (y2-y1)*(x-x1)
		if cross > 0 {
			positive = true
		} else if cross < 0 {
			negative = true
		}
		if positive && negative {
			return false
		}
	}
	return true
}

// HitTest reports whether the local point p lies in the frame's hit region.
func (f *Frame) HitTest(p Vec2) bool {
	if f.HitShape == nil {
		return true
	}
	return f.HitShape.Contains(p.X, p.Y)
}

// ContentHitTest reports whether subframes may be hit-tested at local point p.
func (f *Frame) ContentHitTest(p Vec2) bool {
	if f.ContentHitShape == nil {
		return true
	}
	return f.ContentHitShape.Contains(p.X, p.Y)
}

// --- Pointer routing ---

// subframeAt returns the topmost visible subframe whose unit box contains the
// local point p, or nil.
func (f *Frame) subframeAt(p Vec2) *Frame {
	for _, c := range f.children {
		if c.hidden || !c.transformInvertible {
			continue
		}
		u := c.transformInv.Apply(p)
		if unitRect.Contains(u.X, u.Y) {
			return c
		}
	}
	return nil
}

// mouseTarget walks down from f to the frame that should handle a pointer
// event at local point p. The first subframe containing the point gets the
// first chance; if it declines, f handles the event when it can.
func (f *Frame) mouseTarget(p Vec2) *Frame {
	if !f.HitTest(p) {
		return nil
	}
	if f.ContentHitTest(p) {
		if c := f.subframeAt(p); c != nil {
			if t := c.mouseTarget(c.SuperToLocal(p)); t != nil {
				return t
			}
		}
	}
	if f.CanHandleMouse() {
		return f
	}
	return nil
}

// ancestry returns the chain from the topmost ancestor down to f.
func (f *Frame) ancestry() []*Frame {
	depth := 0
	for p := f; p != nil; p = p.parent {
		depth++
	}
	chain := make([]*Frame, depth)
	for p := f; p != nil; p = p.parent {
		depth--
		chain[depth] = p
	}
	return chain
}

// localizeMouseEvent converts a root-space event into f's local space. The
// delta is derived from the independently converted previous position.
func (f *Frame) localizeMouseEvent(e MouseEvent, pos, prev Vec2) MouseEvent {
	toLocal := f.LocalFromRootTransform()
	e.Location = toLocal.Apply(pos)
	if e.Type != MouseWheel {
		e.Delta = e.Location.Sub(toLocal.Apply(prev))
	}
	return e
}

// preprocessMouse runs the interception chain from the root down to target.
// pos and prev are in the chain root's local space. It reports whether a
// hook claimed the event.
func preprocessMouse(target *Frame, e MouseEvent, pos, prev Vec2) bool {
	for i, a := range target.ancestry() {
		if i > 0 {
			pos = a.SuperToLocal(pos)
			prev = a.SuperToLocal(prev)
		}
		if a.PreprocessMouseEvent == nil {
			continue
		}
		local := e
		local.Location = pos
		if e.Type != MouseWheel {
			local.Delta = pos.Sub(prev)
		}
		if a.PreprocessMouseEvent(a, target, local) {
			return true
		}
	}
	return false
}

// handleMouseEvent invokes the callback matching e.Type.
func (f *Frame) handleMouseEvent(e MouseEvent) {
	var fn func(*Frame, MouseEvent)
	switch e.Type {
	case MouseDown:
		fn = f.OnMouseDown
	case MouseUp:
		fn = f.OnMouseUp
	case MouseMove:
		fn = f.OnMouseMove
	case MouseWheel:
		fn = f.OnMouseWheel
	}
	if fn != nil {
		fn(f, e)
	}
}

// --- Keyboard routing ---

func preprocessKeyboard(target *Frame, e KeyboardEvent) bool {
	for _, a := range target.ancestry() {
		if a.PreprocessKeyboardEvent != nil && a.PreprocessKeyboardEvent(a, target, e) {
			return true
		}
	}
	return false
}

func (f *Frame) handleKeyboardEvent(e KeyboardEvent) {
	var fn func(*Frame, KeyboardEvent)
	switch e.Type {
	case KeyDown:
		fn = f.OnKeyDown
	case KeyUp:
		fn = f.OnKeyUp
	case TextInput, TextComposition:
		fn = f.OnTextInput
	}
	if fn != nil {
		fn(f, e)
	}
}

// --- Hover tracking ---

// updateHover refreshes hover state for deviceID over f's subtree. inside is
// whether f is eligible (its parent is hovered and picked f); p is the
// pointer in f's local space. It returns the deepest hovered frame.
func (f *Frame) updateHover(deviceID int, p Vec2, inside bool) *Frame {
	hovered := inside && f.CanHandleMouse() && f.HitTest(p)

	var pick *Frame
	if hovered && f.ContentHitTest(p) {
		pick = f.subframeAt(p)
	}
	var deepest *Frame
	if hovered {
		deepest = f
	}
	for _, c := range f.children {
		if c == pick {
			if d := c.updateHover(deviceID, c.SuperToLocal(p), true); d != nil {
				deepest = d
			}
		} else {
			c.clearHover(deviceID)
		}
	}

	f.setHover(deviceID, hovered)
	return deepest
}

// setHover records the hover state and fires one transition callback.
func (f *Frame) setHover(deviceID int, hovered bool) {
	if f.hover == nil || f.hover[deviceID] == hovered {
		return
	}
	if hovered {
		f.hover[deviceID] = true
		if f.OnMouseHover != nil {
			f.OnMouseHover(f, deviceID)
		}
		return
	}
	delete(f.hover, deviceID)
	if f.OnMouseLeave != nil {
		f.OnMouseLeave(f, deviceID)
	}
}

// clearHover leaves deviceID on f's subtree, deepest first.
func (f *Frame) clearHover(deviceID int) {
	if f.hover == nil || !f.hover[deviceID] {
		return
	}
	for _, c := range f.children {
		c.clearHover(deviceID)
	}
	f.setHover(deviceID, false)
}

// leaveHover synthesizes leaves for every device hovering f's subtree.
func (f *Frame) leaveHover() {
	for deviceID := range f.hover {
		f.clearHover(deviceID)
	}
	if f.host != nil {
		f.host.forgetHover(f)
	}
}

// IsHovered reports whether the pointer deviceID is over the frame.
func (f *Frame) IsHovered(deviceID int) bool {
	return f.hover[deviceID]
}

// --- Capture API ---

// CaptureKeyboard makes f the exclusive receiver of deviceID's keyboard
// events. It fails if f cannot handle keyboard input or is not loaded.
func (f *Frame) CaptureKeyboard(deviceID int) bool {
	if f.host == nil {
		return false
	}
	return f.host.SetKeyFrame(deviceID, f)
}

// ReleaseKeyboard gives up keyboard capture of deviceID if f holds it.
func (f *Frame) ReleaseKeyboard(deviceID int) bool {
	if f.host == nil || f.host.keyFrames[deviceID] != f {
		return false
	}
	return f.host.RemoveKeyFrame(deviceID)
}

// ReleaseAllKeyboards gives up every keyboard capture f holds.
func (f *Frame) ReleaseAllKeyboards() {
	if f.host != nil {
		f.host.RemoveAllKeyFrames(f)
	}
}

// IsKeyboardCaptured reports whether f holds deviceID's keyboard.
func (f *Frame) IsKeyboardCaptured(deviceID int) bool {
	return f.host != nil && f.host.KeyFrame(deviceID) == f
}

// CaptureMouse makes f the exclusive receiver of deviceID's pointer events.
// It fails if f cannot handle pointer input or is not loaded.
func (f *Frame) CaptureMouse(deviceID int) bool {
	if f.host == nil {
		return false
	}
	return f.host.SetFocusFrame(deviceID, f)
}

// ReleaseMouse gives up pointer capture of deviceID if f holds it.
func (f *Frame) ReleaseMouse(deviceID int) bool {
	if f.host == nil || f.host.focusFrames[deviceID] != f {
		return false
	}
	return f.host.RemoveFocusFrame(deviceID)
}

// ReleaseAllMice gives up every pointer capture f holds.
func (f *Frame) ReleaseAllMice() {
	if f.host != nil {
		f.host.RemoveAllFocusFrames(f)
	}
}

// IsMouseCaptured reports whether f holds deviceID's pointer.
func (f *Frame) IsMouseCaptured(deviceID int) bool {
	return f.host != nil && f.host.FocusFrame(deviceID) == f
}
