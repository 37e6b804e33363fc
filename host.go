package canopy

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrNoRenderer is returned when a Host is used without a renderer.
	ErrNoRenderer = errors.New("canopy: host has no renderer")
	// ErrNoWindow is returned by presentation targets whose window is gone.
	ErrNoWindow = errors.New("canopy: no window bound")
	// ErrHostRunning is returned by Start on a running host.
	ErrHostRunning = errors.New("canopy: host is already running")
	// ErrUnsupportedWindow is returned by renderers that cannot present into
	// the given window.
	ErrUnsupportedWindow = errors.New("canopy: window not supported by renderer")
)

// Host owns the root frame, the render-loop goroutine and the per-device
// capture tables. Frame trees are owned by a single logical goroutine: the
// loop goroutine while the host runs, or the caller of Step otherwise.
// Window events are marshalled onto that goroutine through the task queue.
type Host struct {
	renderer Renderer
	config   HostConfig
	tasks    *TaskQueue

	// mu guards the root/target pair during rebinding and ticks.
	mu          sync.Mutex
	root        *Frame
	window      Window
	target      PresentationTarget
	unsubscribe func()

	// Capture tables, keyed by device ID. Entries are validated on lookup.
	keyFrames   map[int]*Frame
	focusFrames map[int]*Frame
	hoverFrames map[int]*Frame

	// Loop state
	stateMu  sync.Mutex
	cond     *sync.Cond
	running  bool
	paused   bool
	done     chan struct{}
	lastTick time.Time

	statsMu sync.Mutex
	stats   HostStats
}

// NewHost creates a host with an empty root frame named "root".
func NewHost(renderer Renderer, config HostConfig) *Host {
	h := &Host{
		renderer:    renderer,
		config:      config.normalized(),
		tasks:       NewTaskQueue(),
		keyFrames:   make(map[int]*Frame),
		focusFrames: make(map[int]*Frame),
		hoverFrames: make(map[int]*Frame),
	}
	h.cond = sync.NewCond(&h.stateMu)
	h.SetRoot(NewFrame("root"))
	return h
}

// Config returns the host configuration.
func (h *Host) Config() HostConfig {
	return h.config
}

// Tasks returns the host's task queue.
func (h *Host) Tasks() *TaskQueue {
	return h.tasks
}

// Post queues fn to run on the render-loop goroutine.
func (h *Host) Post(fn func()) {
	h.tasks.Post(fn)
}

// Root returns the root frame.
func (h *Host) Root() *Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.root
}

// SetRoot replaces the root frame, unloading the previous one. The new root
// must be detached and unloaded. SetRoot must not be called from frame
// callbacks during a tick; Post it instead.
func (h *Host) SetRoot(f *Frame) bool {
	if f == nil || f.disposed || f.parent != nil || f.loaded {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.root != nil {
		h.root.Unload()
	}
	f.transform, f.transformInv, f.transformInvertible = Identity, Identity, true
	h.root = f
	size, ok := h.windowPixelSize()
	if !ok {
		size = f.resolution
	}
	f.Load(h, size)
	return true
}

// Window returns the bound window, or nil.
func (h *Host) Window() Window {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.window
}

// SetWindow binds w, recreating the presentation target and re-subscribing
// to its event streams. A nil window unbinds.
func (h *Host) SetWindow(w Window) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.unsubscribe != nil {
		h.unsubscribe()
		h.unsubscribe = nil
	}
	if h.target != nil {
		h.target.Close()
		h.target = nil
	}
	h.window = nil
	if w == nil {
		return nil
	}
	if h.renderer == nil {
		return ErrNoRenderer
	}
	target, err := h.renderer.NewPresentationTarget(w)
	if err != nil {
		return fmt.Errorf("bind window: %w", err)
	}
	h.window = w
	h.target = target
	h.unsubscribe = w.Subscribe(EventHandlers{
		Window: func(e WindowEvent) {
			h.tasks.Post(func() { h.DispatchWindowEvent(e) })
		},
		Keyboard: func(e KeyboardEvent) {
			h.tasks.Post(func() { h.DispatchKeyboardEvent(e) })
		},
		Mouse: func(e MouseEvent) {
			h.tasks.Post(func() { h.DispatchMouseEvent(e) })
		},
	})
	if h.root != nil {
		h.root.UpdateContentResolution()
		h.root.SetRedraw()
	}
	Logger().Info("canopy: window bound", "rect", w.ContentRect(), "scale", w.ContentScaleFactor())
	return nil
}

// windowPixelSize returns the bound window's size in pixels. Callers hold mu
// or own the loop goroutine.
func (h *Host) windowPixelSize() (Size, bool) {
	if h.window == nil {
		return Size{}, false
	}
	r := h.window.ContentRect()
	s := h.window.ContentScaleFactor()
	if s <= 0 {
		s = 1
	}
	return Size{roundDimension(r.Width * s), roundDimension(r.Height * s)}, true
}

// maxSurfaceSize is the largest frame surface dimension.
func (h *Host) maxSurfaceSize() int {
	limit := 0
	if h.renderer != nil {
		limit = h.renderer.MaxTextureSize()
	}
	if c := h.config.MaxSurfaceSize; c > 0 && (limit == 0 || c < limit) {
		limit = c
	}
	return limit
}

// --- Render loop ---

// Start launches the render-loop goroutine.
func (h *Host) Start() error {
	if h.renderer == nil {
		return ErrNoRenderer
	}
	h.stateMu.Lock()
	defer h.stateMu.Unlock()
	if h.running {
		return ErrHostRunning
	}
	h.running = true
	h.paused = false
	h.done = make(chan struct{})
	h.lastTick = time.Now()
	go h.run(h.done)
	Logger().Info("canopy: host started", "fps", h.config.TargetFPS)
	return nil
}

// Stop ends the render loop and waits for the goroutine to exit. It must not
// be called from the loop goroutine.
func (h *Host) Stop() {
	h.stateMu.Lock()
	if !h.running {
		h.stateMu.Unlock()
		return
	}
	h.running = false
	h.cond.Broadcast()
	done := h.done
	h.stateMu.Unlock()

	h.tasks.wake()
	<-done
	Logger().Info("canopy: host stopped")
}

// Pause suspends ticking. Queued tasks wait until Resume.
func (h *Host) Pause() {
	h.stateMu.Lock()
	h.paused = true
	h.stateMu.Unlock()
	h.tasks.wake()
}

// Resume continues a paused loop.
func (h *Host) Resume() {
	h.stateMu.Lock()
	if h.paused {
		h.paused = false
		h.lastTick = time.Now()
		h.cond.Broadcast()
	}
	h.stateMu.Unlock()
}

// IsRunning reports whether the loop goroutine is active.
func (h *Host) IsRunning() bool {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()
	return h.running
}

// IsPaused reports whether the loop is paused.
func (h *Host) IsPaused() bool {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()
	return h.paused
}

// Close stops the loop, unbinds the window and unloads the root.
func (h *Host) Close() {
	h.Stop()
	_ = h.SetWindow(nil)
	h.mu.Lock()
	if h.root != nil {
		h.root.Unload()
	}
	h.mu.Unlock()
}

// run is the loop goroutine. Tasks wake it early, but a tick only runs once
// a full interval has passed since the previous one; until then it keeps
// draining tasks for the remainder of the interval.
func (h *Host) run(done chan struct{}) {
	defer close(done)
	interval := h.config.tickInterval()
	for {
		h.stateMu.Lock()
		for h.running && h.paused {
			h.cond.Wait()
		}
		running := h.running
		last := h.lastTick
		h.stateMu.Unlock()
		if !running {
			return
		}

		h.tasks.Execute()
		now := time.Now()
		if elapsed := now.Sub(last); elapsed >= interval {
			h.stateMu.Lock()
			h.lastTick = now
			h.stateMu.Unlock()
			last = now
			if err := h.tick(elapsed); err != nil {
				Logger().Warn("canopy: tick failed", "err", err)
			}
		}
		if remaining := interval - time.Since(last); remaining > 0 {
			h.tasks.WaitQueue(remaining)
		}
	}
}

// Step runs queued tasks and one Update/Draw/Present tick on the calling
// goroutine. It is meant for hosts driven externally instead of by Start.
func (h *Host) Step() error {
	if h.renderer == nil {
		return ErrNoRenderer
	}
	h.tasks.Execute()
	h.stateMu.Lock()
	now := time.Now()
	var elapsed time.Duration
	if !h.lastTick.IsZero() {
		elapsed = now.Sub(h.lastTick)
	}
	h.lastTick = now
	h.stateMu.Unlock()
	return h.tick(elapsed)
}

// tick updates the tree top-down, composites it bottom-up and presents.
func (h *Host) tick(elapsed time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.root == nil {
		return nil
	}

	var stats DrawStats
	t0 := time.Now()
	h.root.updateHierarchy(elapsed.Seconds())
	stats.UpdateTime = time.Since(t0)

	t0 = time.Now()
	ctx := drawContext{renderer: h.renderer, target: h.target, stats: &stats}
	drawn := h.root.drawHierarchy(&ctx)
	stats.DrawTime = time.Since(t0)

	var err error
	presented := false
	if drawn && h.target != nil {
		if err = h.target.Present(); err != nil {
			err = fmt.Errorf("present: %w", err)
		} else {
			presented = true
		}
	}

	h.statsMu.Lock()
	h.stats.TickCount++
	if presented {
		h.stats.PresentCount++
	}
	h.stats.LastTick = stats
	h.statsMu.Unlock()
	h.debugLog(stats)
	return err
}

// Stats returns cumulative loop statistics.
func (h *Host) Stats() HostStats {
	h.statsMu.Lock()
	defer h.statsMu.Unlock()
	return h.stats
}

// --- Capture tables ---

// SetKeyFrame gives f exclusive ownership of keyboard deviceID. A previous
// different owner is evicted with OnKeyboardLost. A nil f clears the slot.
// It returns false, without side effects, if f cannot handle keyboard input
// or is not loaded into this host.
func (h *Host) SetKeyFrame(deviceID int, f *Frame) bool {
	if f == nil {
		h.RemoveKeyFrame(deviceID)
		return true
	}
	if !h.canOwnKeyboard(f) {
		return false
	}
	prev := h.keyFrames[deviceID]
	if prev == f {
		return true
	}
	if prev != nil {
		delete(h.keyFrames, deviceID)
		notifyKeyboardLost(prev, deviceID)
	}
	h.keyFrames[deviceID] = f
	return true
}

// RemoveKeyFrame clears keyboard deviceID's owner, notifying it.
func (h *Host) RemoveKeyFrame(deviceID int) bool {
	prev, ok := h.keyFrames[deviceID]
	if !ok {
		return false
	}
	delete(h.keyFrames, deviceID)
	notifyKeyboardLost(prev, deviceID)
	return true
}

// RemoveAllKeyFrames releases every keyboard device owned by f.
func (h *Host) RemoveAllKeyFrames(f *Frame) {
	for deviceID, owner := range h.keyFrames {
		if owner == f {
			h.RemoveKeyFrame(deviceID)
		}
	}
}

// KeyFrame returns the owner of keyboard deviceID. An owner that is no longer
// loaded here or can no longer handle keyboard input is evicted and notified.
func (h *Host) KeyFrame(deviceID int) *Frame {
	f := h.keyFrames[deviceID]
	if f == nil {
		return nil
	}
	if !h.canOwnKeyboard(f) {
		h.RemoveKeyFrame(deviceID)
		return nil
	}
	return f
}

// SetFocusFrame gives f exclusive ownership of pointer deviceID. A previous
// different owner is evicted with OnMouseLost. A nil f clears the slot.
// It returns false, without side effects, if f cannot handle pointer input
// or is not loaded into this host.
func (h *Host) SetFocusFrame(deviceID int, f *Frame) bool {
	if f == nil {
		h.RemoveFocusFrame(deviceID)
		return true
	}
	if !h.canOwnMouse(f) {
		return false
	}
	prev := h.focusFrames[deviceID]
	if prev == f {
		return true
	}
	if prev != nil {
		delete(h.focusFrames, deviceID)
		notifyMouseLost(prev, deviceID)
	}
	h.focusFrames[deviceID] = f
	return true
}

// RemoveFocusFrame clears pointer deviceID's owner, notifying it.
func (h *Host) RemoveFocusFrame(deviceID int) bool {
	prev, ok := h.focusFrames[deviceID]
	if !ok {
		return false
	}
	delete(h.focusFrames, deviceID)
	notifyMouseLost(prev, deviceID)
	return true
}

// RemoveAllFocusFrames releases every pointer device owned by f.
func (h *Host) RemoveAllFocusFrames(f *Frame) {
	for deviceID, owner := range h.focusFrames {
		if owner == f {
			h.RemoveFocusFrame(deviceID)
		}
	}
}

// FocusFrame returns the owner of pointer deviceID, evicting and notifying
// an owner that became invalid.
func (h *Host) FocusFrame(deviceID int) *Frame {
	f := h.focusFrames[deviceID]
	if f == nil {
		return nil
	}
	if !h.canOwnMouse(f) {
		h.RemoveFocusFrame(deviceID)
		return nil
	}
	return f
}

// HoverFrame returns the deepest frame hovered by pointer deviceID.
func (h *Host) HoverFrame(deviceID int) *Frame {
	f := h.hoverFrames[deviceID]
	if f == nil {
		return nil
	}
	if !h.canOwnMouse(f) {
		delete(h.hoverFrames, deviceID)
		return nil
	}
	return f
}

// canOwnKeyboard reports whether f may hold a keyboard capture: loaded into
// h, inside the current root's tree and able to handle keyboard input.
func (h *Host) canOwnKeyboard(f *Frame) bool {
	return f.host == h && f.IsDescendantOf(h.root) && f.CanHandleKeyboard()
}

// canOwnMouse is canOwnKeyboard for pointer input.
func (h *Host) canOwnMouse(f *Frame) bool {
	return f.host == h && f.IsDescendantOf(h.root) && f.CanHandleMouse()
}

// forgetHover drops hover-table entries inside f's subtree.
func (h *Host) forgetHover(f *Frame) {
	for deviceID, hovered := range h.hoverFrames {
		if hovered.IsDescendantOf(f) {
			delete(h.hoverFrames, deviceID)
		}
	}
}

func notifyKeyboardLost(f *Frame, deviceID int) {
	if f.OnKeyboardLost != nil {
		f.OnKeyboardLost(f, deviceID)
	}
}

func notifyMouseLost(f *Frame, deviceID int) {
	if f.OnMouseLost != nil {
		f.OnMouseLost(f, deviceID)
	}
}

// --- Event dispatch ---

// windowToRoot converts a window point to the root frame's local space.
// Without a window, points are taken as root pixels.
func (h *Host) windowToRoot(root *Frame, p Vec2) (Vec2, bool) {
	var u Vec2
	if h.window != nil {
		r := h.window.ContentRect()
		if r.Width <= 0 || r.Height <= 0 {
			return Vec2{}, false
		}
		u = p.Div(r.Extent())
	} else {
		u = p.Div(root.resolution.Vec2())
	}
	return root.UnitToLocal(u), unitRect.Contains(u.X, u.Y)
}

// DispatchMouseEvent routes a pointer event whose positions are in window
// points. Hover is refreshed first. A captured device goes straight to its
// owner; otherwise the hit-tested target receives the event unless an
// ancestor's preprocess hook claims it. It reports whether a frame took the
// event.
func (h *Host) DispatchMouseEvent(e MouseEvent) bool {
	root := h.root
	if root == nil || !root.loaded {
		return false
	}
	pos, inside := h.windowToRoot(root, e.Location)
	prev := pos
	if e.Type != MouseWheel {
		prev, _ = h.windowToRoot(root, e.Location.Sub(e.Delta))
	}

	if deepest := root.updateHover(e.DeviceID, pos, inside); deepest != nil {
		h.hoverFrames[e.DeviceID] = deepest
	} else {
		delete(h.hoverFrames, e.DeviceID)
	}

	if owner := h.FocusFrame(e.DeviceID); owner != nil {
		owner.handleMouseEvent(owner.localizeMouseEvent(e, pos, prev))
		return true
	}

	target := root.mouseTarget(pos)
	if target == nil {
		return false
	}
	if preprocessMouse(target, e, pos, prev) {
		return true
	}
	target.handleMouseEvent(target.localizeMouseEvent(e, pos, prev))
	return true
}

// DispatchKeyboardEvent routes a keyboard event. A captured device goes
// straight to its owner; otherwise the root receives it after its preprocess
// hook.
func (h *Host) DispatchKeyboardEvent(e KeyboardEvent) bool {
	// Uncaptured keyboard events target the root, so its hook is the whole
	// preprocess chain; captured events skip preprocessing.
	if owner := h.KeyFrame(e.DeviceID); owner != nil {
		owner.handleKeyboardEvent(e)
		return true
	}
	root := h.root
	if root == nil || !root.CanHandleKeyboard() {
		return false
	}
	if preprocessKeyboard(root, e) {
		return true
	}
	root.handleKeyboardEvent(e)
	return true
}

// DispatchWindowEvent reacts to window state changes.
func (h *Host) DispatchWindowEvent(e WindowEvent) {
	root := h.root
	switch e.Type {
	case WindowResized, WindowShown:
		if root != nil {
			root.SetRedraw()
		}
	case WindowHidden:
		if root != nil {
			root.leaveHover()
		}
	case WindowInactivated:
		for deviceID := range h.keyFrames {
			h.RemoveKeyFrame(deviceID)
		}
	case WindowClosed:
		if root != nil {
			root.leaveHover()
		}
		if err := h.SetWindow(nil); err != nil {
			Logger().Warn("canopy: unbind closed window", "err", err)
		}
	}
}
