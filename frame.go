package canopy

import (
	"sync/atomic"
)

// minContentScale is the smallest allowed content scale component.
const minContentScale = 1e-6

// frameIDCounter hands out frame IDs. Frames may be constructed on any
// goroutine before being attached to a host.
var frameIDCounter atomic.Uint32

// Frame is the element of the frame tree. It owns a local coordinate space,
// a cached backing surface, and receives input through the host it is loaded
// into. Behavior is customized through the exported callback fields, which
// are nil by default.
type Frame struct {
	// Identity
	ID   uint32
	Name string

	// Metadata
	UserData any

	// Background is the color the default draw step clears to.
	Background Color

	// Hit testing. A nil HitShape means the whole local space is inside; a
	// nil ContentHitShape lets subframes be hit-tested everywhere.
	HitShape        HitShape
	ContentHitShape HitShape

	// Lifecycle callbacks
	OnLoad   func(f *Frame)
	OnUnload func(f *Frame)
	OnResize func(f *Frame, resolution Size)
	OnUpdate func(f *Frame, dt float64)

	// Drawing callbacks. OnDraw replaces the default background clear.
	OnDraw        func(f *Frame, c Canvas)
	OnDrawOverlay func(f *Frame, c Canvas)

	// Pointer callbacks. Locations are in the frame's local space.
	OnMouseDown  func(f *Frame, e MouseEvent)
	OnMouseUp    func(f *Frame, e MouseEvent)
	OnMouseMove  func(f *Frame, e MouseEvent)
	OnMouseWheel func(f *Frame, e MouseEvent)
	OnMouseHover func(f *Frame, deviceID int)
	OnMouseLeave func(f *Frame, deviceID int)
	OnMouseLost  func(f *Frame, deviceID int)

	// Keyboard callbacks
	OnKeyDown      func(f *Frame, e KeyboardEvent)
	OnKeyUp        func(f *Frame, e KeyboardEvent)
	OnTextInput    func(f *Frame, e KeyboardEvent)
	OnKeyboardLost func(f *Frame, deviceID int)

	// Interception hooks, called on every ancestor of the target from the
	// root down to the target itself. Returning true claims the event.
	PreprocessMouseEvent    func(f, target *Frame, e MouseEvent) bool
	PreprocessKeyboardEvent func(f, target *Frame, e KeyboardEvent) bool

	// Hierarchy
	parent   *Frame
	children []*Frame // index 0 is topmost
	host     *Host    // non-nil while loaded

	// Transforms
	transform           Transform
	transformInv        Transform
	transformInvertible bool
	contentTransform    Transform
	contentTransformInv Transform
	contentScale        Vec2
	resolution          Size

	// Visual state
	color       Color
	blend       BlendMode
	depthFormat DepthFormat

	// Flags
	loaded          bool
	hidden          bool
	enabled         bool
	mouseAllowed    bool
	keyboardAllowed bool
	disposed        bool

	// redraw is set from setters and cleared by the compositor. Draw has an
	// observable side effect on it, so it lives in an atomic cell.
	redraw atomic.Bool

	// Backing surface, owned and written only by this frame's draw step.
	surface Texture
	canvas  Canvas

	// hover records per pointer device whether the pointer is inside.
	hover map[int]bool
}

// NewFrame creates a detached, unloaded frame with identity transforms, a
// (1, 1) content scale and a 1x1 resolution.
func NewFrame(name string) *Frame {
	f := &Frame{
		ID:                  frameIDCounter.Add(1),
		Name:                name,
		Background:          ColorWhite,
		transform:           Identity,
		transformInv:        Identity,
		transformInvertible: true,
		contentTransform:    Identity,
		contentTransformInv: Identity,
		contentScale:        Vec2{1, 1},
		resolution:          Size{1, 1},
		color:               ColorWhite,
		enabled:             true,
		mouseAllowed:        true,
		keyboardAllowed:     true,
		hover:               make(map[int]bool),
	}
	f.redraw.Store(true)
	return f
}

// --- Tree manipulation ---

// Superframe returns the parent frame, or nil for a root or detached frame.
func (f *Frame) Superframe() *Frame {
	return f.parent
}

// Subframes returns the child list, topmost first. The returned slice MUST
// NOT be mutated by the caller.
func (f *Frame) Subframes() []*Frame {
	return f.children
}

// NumSubframes returns the number of children.
func (f *Frame) NumSubframes() int {
	return len(f.children)
}

// Host returns the host this frame is loaded into, or nil.
func (f *Frame) Host() *Host {
	return f.host
}

// IsDescendantOf reports whether f lies in ancestor's subtree. A frame is a
// descendant of itself.
func (f *Frame) IsDescendantOf(ancestor *Frame) bool {
	if ancestor == nil {
		return false
	}
	for p := f; p != nil; p = p.parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// AddSubframe inserts child as the topmost subframe. It fails if child is
// nil, already has a superframe, is a host root, is disposed, or is an
// ancestor of f. When f is loaded the child is loaded into the same host.
func (f *Frame) AddSubframe(child *Frame) bool {
	if child == nil || child.disposed || f.disposed {
		Logger().Warn("canopy: AddSubframe with nil or disposed frame", frameAttr(f))
		return false
	}
	if child.parent != nil {
		return false
	}
	if child.isRoot() {
		Logger().Warn("canopy: cannot reparent root frame", frameAttr(child))
		return false
	}
	if f.IsDescendantOf(child) {
		return false
	}
	child.parent = f
	f.children = append(f.children, nil)
	copy(f.children[1:], f.children)
	f.children[0] = child
	if f.loaded {
		child.Load(f.host, f.resolution)
	}
	if f.host != nil && f.host.config.Debug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(f)
	}
	f.SetRedraw()
	return true
}

// RemoveSubframe detaches child from f, unloading it first if loaded.
func (f *Frame) RemoveSubframe(child *Frame) bool {
	if child == nil || child.parent != f {
		return false
	}
	if child.loaded {
		child.Unload()
	}
	f.removeChildByPtr(child)
	child.parent = nil
	f.SetRedraw()
	return true
}

// RemoveFromSuperframe detaches f from its parent. No-op for detached frames.
func (f *Frame) RemoveFromSuperframe() bool {
	if f.parent == nil {
		return false
	}
	return f.parent.RemoveSubframe(f)
}

// BringSubframeToFront moves child to the topmost position.
func (f *Frame) BringSubframeToFront(child *Frame) bool {
	i := f.indexOf(child)
	if i < 0 {
		return false
	}
	if i > 0 {
		copy(f.children[1:i+1], f.children[:i])
		f.children[0] = child
		f.SetRedraw()
	}
	return true
}

// SendSubframeToBack moves child to the bottommost position.
func (f *Frame) SendSubframeToBack(child *Frame) bool {
	i := f.indexOf(child)
	if i < 0 {
		return false
	}
	last := len(f.children) - 1
	if i < last {
		copy(f.children[i:], f.children[i+1:])
		f.children[last] = child
		f.SetRedraw()
	}
	return true
}

// FindByName returns the first frame named name in f's subtree, searching
// depth-first in topmost order, or nil.
func (f *Frame) FindByName(name string) *Frame {
	if f.Name == name {
		return f
	}
	for _, c := range f.children {
		if found := c.FindByName(name); found != nil {
			return found
		}
	}
	return nil
}

func (f *Frame) indexOf(child *Frame) int {
	if child == nil || child.parent != f {
		return -1
	}
	for i, c := range f.children {
		if c == child {
			return i
		}
	}
	return -1
}

// removeChildByPtr removes child from f.children without clearing child.parent.
func (f *Frame) removeChildByPtr(child *Frame) {
	if i := f.indexOf(child); i >= 0 {
		copy(f.children[i:], f.children[i+1:])
		f.children[len(f.children)-1] = nil
		f.children = f.children[:len(f.children)-1]
	}
}

// --- Lifecycle ---

// IsLoaded reports whether the frame is attached to a loaded host.
func (f *Frame) IsLoaded() bool {
	return f.loaded
}

// Load attaches f and its subtree to host. resolution is the superframe's
// pixel resolution (or the window's for a root) and seeds f's own
// resolution. Load is a no-op for loaded or disposed frames. Only the host's
// root or a subframe of a frame loaded into host can be loaded; AddSubframe
// and Host.SetRoot call Load as needed.
func (f *Frame) Load(host *Host, resolution Size) {
	if f.loaded || f.disposed || host == nil {
		return
	}
	inTree := host.root == f
	if f.parent != nil {
		inTree = f.parent.host == host
	}
	if !inTree {
		Logger().Warn("canopy: frame is not part of the host's tree", frameAttr(f))
		return
	}
	f.host = host
	f.loaded = true
	if f.parent == nil {
		f.applyResolution(clampResolution(resolution, host.maxSurfaceSize()))
	} else {
		f.UpdateContentResolution()
	}
	if f.OnLoad != nil {
		f.OnLoad(f)
	}
	for _, c := range f.children {
		c.Load(host, f.resolution)
	}
	f.SetRedraw()
}

// Unload detaches f and its subtree from its host. Subframes unload first.
// Hover state is left with synthesized leaves, captures held by the subtree
// are released with lost notifications, and backing surfaces are discarded.
func (f *Frame) Unload() {
	if !f.loaded {
		return
	}
	for _, c := range f.children {
		c.Unload()
	}
	f.leaveHover()
	if f.host != nil {
		f.host.RemoveAllKeyFrames(f)
		f.host.RemoveAllFocusFrames(f)
	}
	if f.OnUnload != nil {
		f.OnUnload(f)
	}
	f.DiscardSurface()
	f.loaded = false
	f.host = nil
}

// Dispose releases the frame's surface and disposes its subtree. Disposing a
// loaded frame is a lifecycle anomaly: it is logged and the frame is not
// unloaded; stale captures are evicted on their next lookup.
func (f *Frame) Dispose() {
	if f.disposed {
		return
	}
	if f.loaded {
		Logger().Warn("canopy: disposing frame that is still loaded", frameAttr(f))
	}
	if f.parent != nil {
		f.parent.removeChildByPtr(f)
		f.parent.SetRedraw()
	}
	f.dispose()
}

func (f *Frame) dispose() {
	f.disposed = true
	f.ID = 0
	for _, c := range f.children {
		c.parent = nil
		c.dispose()
	}
	f.children = nil
	f.parent = nil
	f.discardSurface()
	f.HitShape = nil
	f.ContentHitShape = nil
	f.UserData = nil
	f.hover = nil
}

// IsDisposed reports whether the frame has been disposed.
func (f *Frame) IsDisposed() bool {
	return f.disposed
}

// isRoot reports whether f is the root frame of a host.
func (f *Frame) isRoot() bool {
	return f.host != nil && f.host.root == f
}

// --- Visual state ---

// Color returns the tint applied when the frame is composited.
func (f *Frame) Color() Color {
	return f.color
}

// SetColor sets the composite tint. The root frame cannot be recolored.
func (f *Frame) SetColor(c Color) {
	if f.isRoot() {
		Logger().Warn("canopy: cannot recolor root frame", frameAttr(f))
		return
	}
	if f.color == c {
		return
	}
	f.color = c
	f.invalidateComposite()
}

// BlendMode returns the blend mode used when the frame is composited.
func (f *Frame) BlendMode() BlendMode {
	return f.blend
}

// SetBlendMode sets the composite blend mode. Ignored for the root frame.
func (f *Frame) SetBlendMode(b BlendMode) {
	if f.isRoot() {
		Logger().Warn("canopy: cannot change blend mode of root frame", frameAttr(f))
		return
	}
	if f.blend == b {
		return
	}
	f.blend = b
	f.invalidateComposite()
}

// DepthFormat returns the depth attachment of the backing surface.
func (f *Frame) DepthFormat() DepthFormat {
	return f.depthFormat
}

// SetDepthFormat changes the depth attachment, discarding the surface.
func (f *Frame) SetDepthFormat(d DepthFormat) {
	if f.depthFormat == d {
		return
	}
	f.depthFormat = d
	f.DiscardSurface()
}

// IsHidden reports whether the frame is hidden.
func (f *Frame) IsHidden() bool {
	return f.hidden
}

// SetHidden hides or shows the frame. Hiding a hovered frame leaves it. The
// root frame cannot be hidden.
func (f *Frame) SetHidden(hidden bool) {
	if f.isRoot() {
		Logger().Warn("canopy: cannot hide root frame", frameAttr(f))
		return
	}
	if f.hidden == hidden {
		return
	}
	f.hidden = hidden
	if hidden {
		f.leaveHover()
	}
	f.invalidateComposite()
}

// IsEnabled reports whether the frame accepts input.
func (f *Frame) IsEnabled() bool {
	return f.enabled
}

// SetEnabled enables or disables input. Disabling a hovered frame leaves it.
func (f *Frame) SetEnabled(enabled bool) {
	if f.enabled == enabled {
		return
	}
	f.enabled = enabled
	if !enabled {
		f.leaveHover()
	}
	f.SetRedraw()
}

// SetMouseAllowed controls whether the frame handles pointer input.
func (f *Frame) SetMouseAllowed(allowed bool) {
	f.mouseAllowed = allowed
	if !allowed {
		f.leaveHover()
	}
}

// IsMouseAllowed reports whether the frame handles pointer input.
func (f *Frame) IsMouseAllowed() bool {
	return f.mouseAllowed
}

// SetKeyboardAllowed controls whether the frame handles keyboard input.
func (f *Frame) SetKeyboardAllowed(allowed bool) {
	f.keyboardAllowed = allowed
}

// IsKeyboardAllowed reports whether the frame handles keyboard input.
func (f *Frame) IsKeyboardAllowed() bool {
	return f.keyboardAllowed
}

// CanHandleMouse reports whether the frame can currently receive pointer
// events: loaded, allowed, and visible and enabled along with every
// ancestor.
func (f *Frame) CanHandleMouse() bool {
	return f.loaded && !f.disposed && f.mouseAllowed && f.isActive()
}

// CanHandleKeyboard reports whether the frame can currently receive keyboard
// events.
func (f *Frame) CanHandleKeyboard() bool {
	return f.loaded && !f.disposed && f.keyboardAllowed && f.isActive()
}

// isActive reports whether f and all its ancestors are visible and enabled.
func (f *Frame) isActive() bool {
	for p := f; p != nil; p = p.parent {
		if p.hidden || !p.enabled {
			return false
		}
	}
	return true
}

// invalidateComposite marks f and its parent for redraw, so the parent
// recomposites even if f is culled this tick.
func (f *Frame) invalidateComposite() {
	f.SetRedraw()
	if f.parent != nil {
		f.parent.SetRedraw()
	}
}
