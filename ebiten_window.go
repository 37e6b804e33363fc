package canopy

import (
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// ebitenMouseButtons maps canopy buttons to Ebitengine buttons.
var ebitenMouseButtons = [...]struct {
	button MouseButton
	ebiten ebiten.MouseButton
}{
	{MouseButtonLeft, ebiten.MouseButtonLeft},
	{MouseButtonRight, ebiten.MouseButtonRight},
	{MouseButtonMiddle, ebiten.MouseButtonMiddle},
}

// EbitenWindow is a Window driven by Ebitengine's game loop. It implements
// ebiten.Game: Update polls input and window state and forwards them to
// subscribers, Draw blits the most recently presented frame.
//
// Ebitengine exposes a single mouse and keyboard, both reported as device 0.
type EbitenWindow struct {
	// ShowFPS draws the actual FPS and TPS over the presented frame.
	ShowFPS bool

	mu      sync.Mutex
	rect    Rect
	scale   float64
	mouse   Vec2
	front   *ebiten.Image
	focused bool
	subs    map[int]EventHandlers
	nextSub int

	keys  []ebiten.Key
	chars []rune
}

// NewEbitenWindow creates a window with the given initial content size in
// points.
func NewEbitenWindow(width, height int) *EbitenWindow {
	return &EbitenWindow{
		rect:    Rect{0, 0, float64(width), float64(height)},
		scale:   1,
		focused: true,
		subs:    make(map[int]EventHandlers),
	}
}

// ContentRect implements Window.
func (w *EbitenWindow) ContentRect() Rect {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rect
}

// ContentScaleFactor implements Window.
func (w *EbitenWindow) ContentScaleFactor() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scale
}

// MousePosition implements Window.
func (w *EbitenWindow) MousePosition(deviceID int) Vec2 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if deviceID != 0 {
		return Vec2{}
	}
	return w.mouse
}

// Subscribe implements Window.
func (w *EbitenWindow) Subscribe(h EventHandlers) func() {
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

func (w *EbitenWindow) pixelSize() Size {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Size{
		roundDimension(w.rect.Width * w.scale),
		roundDimension(w.rect.Height * w.scale),
	}
}

// swapFront installs img as the front buffer and returns the previous one.
func (w *EbitenWindow) swapFront(img *ebiten.Image) *ebiten.Image {
	w.mu.Lock()
	defer w.mu.Unlock()
	prev := w.front
	w.front = img
	return prev
}

func (w *EbitenWindow) handlers() []EventHandlers {
	w.mu.Lock()
	defer w.mu.Unlock()
	hs := make([]EventHandlers, 0, len(w.subs))
	for _, h := range w.subs {
		hs = append(hs, h)
	}
	return hs
}

func (w *EbitenWindow) emitWindow(e WindowEvent) {
	for _, h := range w.handlers() {
		if h.Window != nil {
			h.Window(e)
		}
	}
}

func (w *EbitenWindow) emitMouse(e MouseEvent) {
	for _, h := range w.handlers() {
		if h.Mouse != nil {
			h.Mouse(e)
		}
	}
}

func (w *EbitenWindow) emitKeyboard(e KeyboardEvent) {
	for _, h := range w.handlers() {
		if h.Keyboard != nil {
			h.Keyboard(e)
		}
	}
}

// Update implements ebiten.Game.
func (w *EbitenWindow) Update() error {
	if ebiten.IsWindowBeingClosed() {
		w.emitWindow(WindowEvent{Type: WindowClosed, ContentRect: w.ContentRect(), ScaleFactor: w.ContentScaleFactor()})
		return ebiten.Termination
	}

	focused := ebiten.IsFocused()
	w.mu.Lock()
	changed := focused != w.focused
	w.focused = focused
	w.mu.Unlock()
	if changed {
		typ := WindowInactivated
		if focused {
			typ = WindowActivated
		}
		w.emitWindow(WindowEvent{Type: typ, ContentRect: w.ContentRect(), ScaleFactor: w.ContentScaleFactor()})
	}

	w.pollMouse()
	w.pollKeyboard()
	return nil
}

// pollMouse converts the cursor from screen pixels to window points and
// emits move, button and wheel events for device 0.
func (w *EbitenWindow) pollMouse() {
	cx, cy := ebiten.CursorPosition()
	scale := w.ContentScaleFactor()
	pos := Vec2{float64(cx) / scale, float64(cy) / scale}

	w.mu.Lock()
	prev := w.mouse
	w.mouse = pos
	w.mu.Unlock()

	if pos != prev {
		w.emitMouse(MouseEvent{Type: MouseMove, Location: pos, Delta: pos.Sub(prev)})
	}
	for _, b := range ebitenMouseButtons {
		if inpututil.IsMouseButtonJustPressed(b.ebiten) {
			w.emitMouse(MouseEvent{Type: MouseDown, Button: b.button, Location: pos})
		}
		if inpututil.IsMouseButtonJustReleased(b.ebiten) {
			w.emitMouse(MouseEvent{Type: MouseUp, Button: b.button, Location: pos})
		}
	}
	if dx, dy := ebiten.Wheel(); dx != 0 || dy != 0 {
		w.emitMouse(MouseEvent{Type: MouseWheel, Location: pos, Delta: Vec2{dx, dy}})
	}
}

func (w *EbitenWindow) pollKeyboard() {
	w.keys = inpututil.AppendJustPressedKeys(w.keys[:0])
	for _, k := range w.keys {
		w.emitKeyboard(KeyboardEvent{Type: KeyDown, Key: k})
	}
	w.keys = inpututil.AppendJustReleasedKeys(w.keys[:0])
	for _, k := range w.keys {
		w.emitKeyboard(KeyboardEvent{Type: KeyUp, Key: k})
	}
	w.chars = ebiten.AppendInputChars(w.chars[:0])
	if len(w.chars) > 0 {
		w.emitKeyboard(KeyboardEvent{Type: TextInput, Text: string(w.chars)})
	}
}

// Draw implements ebiten.Game.
func (w *EbitenWindow) Draw(screen *ebiten.Image) {
	w.mu.Lock()
	if w.front != nil {
		screen.DrawImage(w.front, nil)
	}
	w.mu.Unlock()

	if w.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
}

// Layout implements ebiten.Game. The screen is sized in device pixels so
// frames render at full resolution on high-DPI displays.
func (w *EbitenWindow) Layout(outsideWidth, outsideHeight int) (int, int) {
	scale := 1.0
	if m := ebiten.Monitor(); m != nil {
		scale = m.DeviceScaleFactor()
	}
	if scale <= 0 {
		scale = 1
	}
	rect := Rect{0, 0, float64(outsideWidth), float64(outsideHeight)}

	w.mu.Lock()
	changed := rect != w.rect || scale != w.scale
	w.rect = rect
	w.scale = scale
	w.mu.Unlock()

	if changed {
		w.emitWindow(WindowEvent{Type: WindowResized, ContentRect: rect, ScaleFactor: scale})
	}
	return roundDimension(rect.Width * scale), roundDimension(rect.Height * scale)
}
