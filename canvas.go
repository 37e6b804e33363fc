package canopy

// Texture is a renderer-owned pixel surface.
type Texture interface {
	Width() int
	Height() int
	// Dispose releases the pixels. The texture is not used afterwards.
	Dispose()
}

// Canvas records drawing into a texture or presentation target. A canvas maps
// its content bounds, after the content transform, onto its viewport.
type Canvas interface {
	// SetViewport sets the pixel rectangle drawing is mapped onto.
	SetViewport(r Rect)
	// SetContentBounds sets the logical rectangle mapped onto the viewport.
	SetContentBounds(r Rect)
	// SetContentTransform sets the transform applied to every drawn point
	// before the bounds mapping.
	SetContentTransform(t Transform)
	// Clear fills the viewport with c, ignoring blending.
	Clear(c Color)
	// DrawRect fills r, transformed by t, with a solid color.
	DrawRect(r Rect, t Transform, c Color, blend BlendMode)
	// DrawTexturedRect draws tex stretched over r, transformed by t and
	// tinted by c.
	DrawTexturedRect(r Rect, t Transform, tex Texture, c Color, blend BlendMode)
	// Commit submits the recorded drawing.
	Commit() error
}

// PresentationTarget is the swap-chain-like destination of the root frame.
type PresentationTarget interface {
	// Canvas returns a fresh canvas for the next frame image.
	Canvas() (Canvas, error)
	// Present shows the most recently committed frame image.
	Present() error
	// Close releases the target.
	Close()
}

// Renderer creates surfaces, canvases and presentation targets.
type Renderer interface {
	NewTexture(size Size, depth DepthFormat) (Texture, error)
	NewCanvas(target Texture) (Canvas, error)
	NewPresentationTarget(w Window) (PresentationTarget, error)
	// MaxTextureSize is the largest width or height a texture may have.
	MaxTextureSize() int
}

// EventHandlers receives the three event streams of a Window. Nil fields are
// not called.
type EventHandlers struct {
	Window   func(WindowEvent)
	Keyboard func(KeyboardEvent)
	Mouse    func(MouseEvent)
}

// Window is the platform window a Host presents into and receives input from.
type Window interface {
	// ContentRect is the drawable area in points.
	ContentRect() Rect
	// ContentScaleFactor is the number of pixels per point.
	ContentScaleFactor() float64
	// MousePosition returns the last known position of a pointer device in
	// points.
	MousePosition(deviceID int) Vec2
	// Subscribe registers handlers and returns a function that removes them.
	Subscribe(h EventHandlers) (unsubscribe func())
}
