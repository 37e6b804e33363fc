package canopy

import (
	"sync"
)

// HeadlessWindow is a Window with no screen. Input and window state changes
// are injected by the caller and delivered synchronously to subscribers;
// a subscribed Host queues them for its next tick.
type HeadlessWindow struct {
	mu      sync.Mutex
	rect    Rect
	scale   float64
	mouse   map[int]Vec2
	subs    map[int]EventHandlers
	nextSub int
}

// NewHeadlessWindow creates a window of the given size in points with a
// scale factor of 1.
func NewHeadlessWindow(width, height float64) *HeadlessWindow {
	return &HeadlessWindow{
		rect:  Rect{0, 0, width, height},
		scale: 1,
		mouse: make(map[int]Vec2),
		subs:  make(map[int]EventHandlers),
	}
}

// ContentRect implements Window.
func (w *HeadlessWindow) ContentRect() Rect {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rect
}

// ContentScaleFactor implements Window.
func (w *HeadlessWindow) ContentScaleFactor() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scale
}

// MousePosition implements Window.
func (w *HeadlessWindow) MousePosition(deviceID int) Vec2 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mouse[deviceID]
}

// Subscribe implements Window.
func (w *HeadlessWindow) Subscribe(h EventHandlers) func() {
	w.mu.Lock()
	id := w.nextSub
	w.nextSub++
	w.subs[id] = h
	w.mu.Unlock()
	return func() {
		w.mu.Lock()
		delete(w.subs, id)
		w.mu.Unlock()
	}
}

// Subscribers returns the number of active subscriptions.
func (w *HeadlessWindow) Subscribers() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.subs)
}

func (w *HeadlessWindow) handlers() []EventHandlers {
	w.mu.Lock()
	defer w.mu.Unlock()
	hs := make([]EventHandlers, 0, len(w.subs))
	for _, h := range w.subs {
		hs = append(hs, h)
	}
	return hs
}

func (w *HeadlessWindow) emitWindow(typ WindowEventType) {
	e := WindowEvent{Type: typ, ContentRect: w.ContentRect(), ScaleFactor: w.ContentScaleFactor()}
	for _, h := range w.handlers() {
		if h.Window != nil {
			h.Window(e)
		}
	}
}

func (w *HeadlessWindow) emitMouse(e MouseEvent) {
	for _, h := range w.handlers() {
		if h.Mouse != nil {
			h.Mouse(e)
		}
	}
}

func (w *HeadlessWindow) emitKeyboard(e KeyboardEvent) {
	for _, h := range w.handlers() {
		if h.Keyboard != nil {
			h.Keyboard(e)
		}
	}
}

// --- Window state ---

// Resize changes the content size in points.
func (w *HeadlessWindow) Resize(width, height float64) {
	w.mu.Lock()
	w.rect.Width, w.rect.Height = width, height
	w.mu.Unlock()
	w.emitWindow(WindowResized)
}

// SetScaleFactor changes the points-to-pixels factor.
func (w *HeadlessWindow) SetScaleFactor(s float64) {
	w.mu.Lock()
	w.scale = s
	w.mu.Unlock()
	w.emitWindow(WindowResized)
}

// Show reports the window as visible.
func (w *HeadlessWindow) Show() { w.emitWindow(WindowShown) }

// Hide reports the window as hidden.
func (w *HeadlessWindow) Hide() { w.emitWindow(WindowHidden) }

// Activate reports the window as focused.
func (w *HeadlessWindow) Activate() { w.emitWindow(WindowActivated) }

// Deactivate reports the window as unfocused.
func (w *HeadlessWindow) Deactivate() { w.emitWindow(WindowInactivated) }

// Close reports the window as closed.
func (w *HeadlessWindow) Close() { w.emitWindow(WindowClosed) }

// --- Pointer injection ---

// moveTo records the device position and returns the delta from the
// previous one.
func (w *HeadlessWindow) moveTo(deviceID int, p Vec2) Vec2 {
	w.mu.Lock()
	defer w.mu.Unlock()
	prev := w.mouse[deviceID]
	w.mouse[deviceID] = p
	return p.Sub(prev)
}

// InjectMove moves pointer deviceID to p in window points.
func (w *HeadlessWindow) InjectMove(deviceID int, p Vec2) {
	delta := w.moveTo(deviceID, p)
	w.emitMouse(MouseEvent{Type: MouseMove, DeviceID: deviceID, Location: p, Delta: delta})
}

// InjectPress presses button at p. The pointer moves there first if needed.
func (w *HeadlessWindow) InjectPress(deviceID int, button MouseButton, p Vec2) {
	if w.MousePosition(deviceID) != p {
		w.InjectMove(deviceID, p)
	}
	w.emitMouse(MouseEvent{Type: MouseDown, DeviceID: deviceID, Button: button, Location: p})
}

// InjectRelease releases button at p. The pointer moves there first if
// needed.
func (w *HeadlessWindow) InjectRelease(deviceID int, button MouseButton, p Vec2) {
	if w.MousePosition(deviceID) != p {
		w.InjectMove(deviceID, p)
	}
	w.emitMouse(MouseEvent{Type: MouseUp, DeviceID: deviceID, Button: button, Location: p})
}

// InjectClick is a press followed by a release of the left button at p.
func (w *HeadlessWindow) InjectClick(deviceID int, p Vec2) {
	w.InjectPress(deviceID, MouseButtonLeft, p)
	w.InjectRelease(deviceID, MouseButtonLeft, p)
}

// InjectDrag presses the left button at from, moves in steps linearly
// interpolated intermediate positions and releases at to.
func (w *HeadlessWindow) InjectDrag(deviceID int, from, to Vec2, steps int) {
	w.InjectPress(deviceID, MouseButtonLeft, from)
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		w.InjectMove(deviceID, Vec2{from.X + (to.X-from.X)*t, from.Y + (to.Y-from.Y)*t})
	}
	w.InjectRelease(deviceID, MouseButtonLeft, to)
}

// InjectWheel scrolls by delta at the device's current position.
func (w *HeadlessWindow) InjectWheel(deviceID int, delta Vec2) {
	w.emitMouse(MouseEvent{Type: MouseWheel, DeviceID: deviceID, Location: w.MousePosition(deviceID), Delta: delta})
}

// --- Keyboard injection ---

// InjectKeyDown presses key on keyboard deviceID.
func (w *HeadlessWindow) InjectKeyDown(deviceID int, key Key) {
	w.emitKeyboard(KeyboardEvent{Type: KeyDown, DeviceID: deviceID, Key: key})
}

// InjectKeyUp releases key on keyboard deviceID.
func (w *HeadlessWindow) InjectKeyUp(deviceID int, key Key) {
	w.emitKeyboard(KeyboardEvent{Type: KeyUp, DeviceID: deviceID, Key: key})
}

// InjectText delivers committed text.
func (w *HeadlessWindow) InjectText(deviceID int, text string) {
	w.emitKeyboard(KeyboardEvent{Type: TextInput, DeviceID: deviceID, Text: text})
}
