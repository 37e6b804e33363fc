package canopy

import (
	"fmt"
	"sync"
)

// DrawOpType identifies a recorded canvas operation.
type DrawOpType uint8

const (
	OpClear            DrawOpType = iota // Canvas.Clear
	OpDrawRect                           // Canvas.DrawRect
	OpDrawTexturedRect                   // Canvas.DrawTexturedRect
)

var drawOpTypeNames = [...]string{
	OpClear:            "Clear",
	OpDrawRect:         "DrawRect",
	OpDrawTexturedRect: "DrawTexturedRect",
}

// String returns the operation name.
func (t DrawOpType) String() string {
	if int(t) < len(drawOpTypeNames) {
		return drawOpTypeNames[t]
	}
	return fmt.Sprintf("DrawOpType(%d)", t)
}

// DrawOp is one recorded canvas operation.
type DrawOp struct {
	Type      DrawOpType
	Rect      Rect
	Transform Transform
	Color     Color
	Blend     BlendMode
	// Texture is the source of an OpDrawTexturedRect.
	Texture *RecordedTexture
}

// RecordingRenderer is a Renderer that allocates no GPU resources and
// records every canvas operation. It backs headless hosts and tests.
type RecordingRenderer struct {
	// MaxSize is the reported maximum texture size (default 4096).
	MaxSize int
	// TextureErr, when set, is returned by NewTexture.
	TextureErr error
	// CommitErr, when set, is returned by every Commit.
	CommitErr error

	mu       sync.Mutex
	textures []*RecordedTexture
	targets  []*RecordingTarget
	nextID   int
}

// NewRecordingRenderer returns an empty recording renderer.
func NewRecordingRenderer() *RecordingRenderer {
	return &RecordingRenderer{}
}

// MaxTextureSize implements Renderer.
func (r *RecordingRenderer) MaxTextureSize() int {
	if r.MaxSize > 0 {
		return r.MaxSize
	}
	return 4096
}

// NewTexture implements Renderer.
func (r *RecordingRenderer) NewTexture(size Size, depth DepthFormat) (Texture, error) {
	if r.TextureErr != nil {
		return nil, r.TextureErr
	}
	if size.Width < 1 || size.Height < 1 {
		return nil, fmt.Errorf("invalid texture size %dx%d", size.Width, size.Height)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t := &RecordedTexture{ID: r.nextID, Size: size, Depth: depth, renderer: r}
	r.textures = append(r.textures, t)
	return t, nil
}

// NewCanvas implements Renderer.
func (r *RecordingRenderer) NewCanvas(tex Texture) (Canvas, error) {
	rt, ok := tex.(*RecordedTexture)
	if !ok {
		return nil, fmt.Errorf("canvas needs a recorded texture, got %T", tex)
	}
	if rt.IsDisposed() {
		return nil, fmt.Errorf("canvas on disposed texture %d", rt.ID)
	}
	return &RecordingCanvas{texture: rt, renderer: r}, nil
}

// NewPresentationTarget implements Renderer. Any window is accepted.
func (r *RecordingRenderer) NewPresentationTarget(w Window) (PresentationTarget, error) {
	if w == nil {
		return nil, ErrNoWindow
	}
	t := &RecordingTarget{renderer: r, window: w}
	r.mu.Lock()
	r.targets = append(r.targets, t)
	r.mu.Unlock()
	return t, nil
}

// Textures returns every texture created so far, disposed or not.
func (r *RecordingRenderer) Textures() []*RecordedTexture {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*RecordedTexture(nil), r.textures...)
}

// LiveTextures returns the number of textures not yet disposed.
func (r *RecordingRenderer) LiveTextures() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.textures {
		if !t.disposed {
			n++
		}
	}
	return n
}

// Target returns the most recently created presentation target, or nil.
func (r *RecordingRenderer) Target() *RecordingTarget {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.targets) == 0 {
		return nil
	}
	return r.targets[len(r.targets)-1]
}

// RecordedTexture is a Texture that only remembers its size and the
// operations last committed into it.
type RecordedTexture struct {
	ID    int
	Size  Size
	Depth DepthFormat

	renderer *RecordingRenderer
	disposed bool
	ops      []DrawOp
	commits  int
}

// Width implements Texture.
func (t *RecordedTexture) Width() int { return t.Size.Width }

// Height implements Texture.
func (t *RecordedTexture) Height() int { return t.Size.Height }

// Dispose implements Texture.
func (t *RecordedTexture) Dispose() {
	t.renderer.mu.Lock()
	t.disposed = true
	t.renderer.mu.Unlock()
}

// IsDisposed reports whether Dispose was called.
func (t *RecordedTexture) IsDisposed() bool {
	t.renderer.mu.Lock()
	defer t.renderer.mu.Unlock()
	return t.disposed
}

// Ops returns the operations of the last commit into the texture.
func (t *RecordedTexture) Ops() []DrawOp {
	t.renderer.mu.Lock()
	defer t.renderer.mu.Unlock()
	return append([]DrawOp(nil), t.ops...)
}

// Commits returns how many times the texture was drawn.
func (t *RecordedTexture) Commits() int {
	t.renderer.mu.Lock()
	defer t.renderer.mu.Unlock()
	return t.commits
}

// RecordingCanvas records operations until Commit.
type RecordingCanvas struct {
	Viewport         Rect
	ContentBounds    Rect
	ContentTransform Transform

	texture  *RecordedTexture
	target   *RecordingTarget
	renderer *RecordingRenderer
	ops      []DrawOp
}

func (c *RecordingCanvas) SetViewport(r Rect) {
	c.Viewport = r
}

func (c *RecordingCanvas) SetContentBounds(r Rect) {
	c.ContentBounds = r
}

func (c *RecordingCanvas) SetContentTransform(t Transform) {
	c.ContentTransform = t
}

func (c *RecordingCanvas) Clear(col Color) {
	c.record(DrawOp{Type: OpClear, Color: col})
}

func (c *RecordingCanvas) DrawRect(r Rect, t Transform, col Color, blend BlendMode) {
	c.record(DrawOp{Type: OpDrawRect, Rect: r, Transform: t, Color: col, Blend: blend})
}

func (c *RecordingCanvas) DrawTexturedRect(r Rect, t Transform, tex Texture, col Color, blend BlendMode) {
	rt, _ := tex.(*RecordedTexture)
	c.record(DrawOp{Type: OpDrawTexturedRect, Rect: r, Transform: t, Color: col, Blend: blend, Texture: rt})
}

func (c *RecordingCanvas) record(op DrawOp) {
	c.ops = append(c.ops, op)
}

// Commit hands the recorded operations to the texture or target and starts
// a new recording.
func (c *RecordingCanvas) Commit() error {
	if err := c.renderer.CommitErr; err != nil {
		c.ops = nil
		return err
	}
	c.renderer.mu.Lock()
	defer c.renderer.mu.Unlock()
	if c.texture != nil {
		c.texture.ops = c.ops
		c.texture.commits++
	}
	if c.target != nil {
		c.target.pending = c.ops
	}
	c.ops = nil
	return nil
}

// RecordingTarget is the presentation target of a RecordingRenderer. Each
// Present publishes the operations committed into the window canvas.
type RecordingTarget struct {
	renderer *RecordingRenderer
	window   Window
	size     Size
	pending  []DrawOp
	frame    []DrawOp
	presents int
	closed   bool
}

// Canvas implements PresentationTarget. The canvas is sized to the window
// in pixels.
func (t *RecordingTarget) Canvas() (Canvas, error) {
	r := t.window.ContentRect()
	s := t.window.ContentScaleFactor()
	if s <= 0 {
		s = 1
	}
	t.renderer.mu.Lock()
	defer t.renderer.mu.Unlock()
	if t.closed {
		return nil, ErrNoWindow
	}
	t.size = Size{roundDimension(r.Width * s), roundDimension(r.Height * s)}
	t.pending = nil
	return &RecordingCanvas{target: t, renderer: t.renderer}, nil
}

// Present implements PresentationTarget.
func (t *RecordingTarget) Present() error {
	t.renderer.mu.Lock()
	defer t.renderer.mu.Unlock()
	if t.closed {
		return ErrNoWindow
	}
	t.frame = t.pending
	t.pending = nil
	t.presents++
	return nil
}

// Close implements PresentationTarget.
func (t *RecordingTarget) Close() {
	t.renderer.mu.Lock()
	t.closed = true
	t.renderer.mu.Unlock()
}

// Frame returns the operations of the last presented frame.
func (t *RecordingTarget) Frame() []DrawOp {
	t.renderer.mu.Lock()
	defer t.renderer.mu.Unlock()
	return append([]DrawOp(nil), t.frame...)
}

// Presents returns how many frames were presented.
func (t *RecordingTarget) Presents() int {
	t.renderer.mu.Lock()
	defer t.renderer.mu.Unlock()
	return t.presents
}

// Size returns the pixel size of the last canvas handed out.
func (t *RecordingTarget) Size() Size {
	t.renderer.mu.Lock()
	defer t.renderer.mu.Unlock()
	return t.size
}

// IsClosed reports whether Close was called.
func (t *RecordingTarget) IsClosed() bool {
	t.renderer.mu.Lock()
	defer t.renderer.mu.Unlock()
	return t.closed
}
