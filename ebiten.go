package canopy

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// ebitenMaxTextureSize is a conservative image size limit that every
// Ebitengine graphics backend supports.
const ebitenMaxTextureSize = 8192

// EbitenRenderer creates Ebitengine images, canvases and presentation
// targets. Depth formats other than DepthNone are accepted but have no
// attachment; Ebitengine images are color only.
type EbitenRenderer struct {
	// MaxSize overrides the maximum texture dimension when positive.
	MaxSize int
}

// NewEbitenRenderer returns a renderer with the default size limit.
func NewEbitenRenderer() *EbitenRenderer {
	return &EbitenRenderer{}
}

// MaxTextureSize implements Renderer.
func (r *EbitenRenderer) MaxTextureSize() int {
	if r.MaxSize > 0 {
		return r.MaxSize
	}
	return ebitenMaxTextureSize
}

// NewTexture implements Renderer.
func (r *EbitenRenderer) NewTexture(size Size, depth DepthFormat) (Texture, error) {
	if size.Width < 1 || size.Height < 1 {
		return nil, fmt.Errorf("invalid texture size %dx%d", size.Width, size.Height)
	}
	if limit := r.MaxTextureSize(); size.Width > limit || size.Height > limit {
		return nil, fmt.Errorf("texture size %dx%d exceeds %d", size.Width, size.Height, limit)
	}
	img := ebiten.NewImageWithOptions(
		image.Rect(0, 0, size.Width, size.Height),
		&ebiten.NewImageOptions{Unmanaged: true},
	)
	return &EbitenTexture{image: img, depth: depth}, nil
}

// NewCanvas implements Renderer. tex must come from an EbitenRenderer.
func (r *EbitenRenderer) NewCanvas(tex Texture) (Canvas, error) {
	et, ok := tex.(*EbitenTexture)
	if !ok || et.image == nil {
		return nil, fmt.Errorf("canvas needs a live ebiten texture, got %T", tex)
	}
	return newEbitenCanvas(et.image), nil
}

// NewPresentationTarget implements Renderer. w must be an *EbitenWindow.
func (r *EbitenRenderer) NewPresentationTarget(w Window) (PresentationTarget, error) {
	if w == nil {
		return nil, ErrNoWindow
	}
	ew, ok := w.(*EbitenWindow)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedWindow, w)
	}
	return &ebitenTarget{window: ew}, nil
}

// EbitenTexture is a Texture backed by an offscreen *ebiten.Image.
type EbitenTexture struct {
	image *ebiten.Image
	depth DepthFormat
}

// Image returns the backing image, or nil after Dispose.
func (t *EbitenTexture) Image() *ebiten.Image {
	return t.image
}

// Width implements Texture.
func (t *EbitenTexture) Width() int {
	if t.image == nil {
		return 0
	}
	return t.image.Bounds().Dx()
}

// Height implements Texture.
func (t *EbitenTexture) Height() int {
	if t.image == nil {
		return 0
	}
	return t.image.Bounds().Dy()
}

// Dispose deallocates the underlying image.
func (t *EbitenTexture) Dispose() {
	if t.image != nil {
		t.image.Deallocate()
		t.image = nil
	}
}

// --- Canvas ---

// ebitenCanvas draws into an *ebiten.Image. Drawing positions are in the
// content space declared by SetContentBounds and SetContentTransform, mapped
// onto the viewport in pixels.
type ebitenCanvas struct {
	dst      *ebiten.Image
	viewport Rect
	bounds   Rect
	content  Transform
	toPixel  Transform
	op       ebiten.DrawImageOptions
}

func newEbitenCanvas(dst *ebiten.Image) *ebitenCanvas {
	b := dst.Bounds()
	c := &ebitenCanvas{
		dst:      dst,
		viewport: Rect{0, 0, float64(b.Dx()), float64(b.Dy())},
		bounds:   unitRect,
		content:  Identity,
	}
	c.updateToPixel()
	return c
}

func (c *ebitenCanvas) SetViewport(r Rect) {
	c.viewport = r
	c.updateToPixel()
}

func (c *ebitenCanvas) SetContentBounds(r Rect) {
	c.bounds = r
	c.updateToPixel()
}

func (c *ebitenCanvas) SetContentTransform(t Transform) {
	c.content = t
	c.updateToPixel()
}

// updateToPixel composes content transform, bounds-to-viewport scaling and
// viewport offset.
func (c *ebitenCanvas) updateToPixel() {
	sx, sy := 1.0, 1.0
	if c.bounds.Width != 0 {
		sx = c.viewport.Width / c.bounds.Width
	}
	if c.bounds.Height != 0 {
		sy = c.viewport.Height / c.bounds.Height
	}
	c.toPixel = Translate(c.viewport.X, c.viewport.Y).
		Mul(Scale(sx, sy)).
		Mul(Translate(-c.bounds.X, -c.bounds.Y)).
		Mul(c.content)
}

func (c *ebitenCanvas) viewportImage() *ebiten.Image {
	r := image.Rect(
		int(c.viewport.X), int(c.viewport.Y),
		int(c.viewport.X+c.viewport.Width), int(c.viewport.Y+c.viewport.Height),
	)
	if r == c.dst.Bounds() {
		return c.dst
	}
	return c.dst.SubImage(r).(*ebiten.Image)
}

func (c *ebitenCanvas) Clear(col Color) {
	c.viewportImage().Fill(col.toRGBA())
}

func (c *ebitenCanvas) DrawRect(r Rect, t Transform, col Color, blend BlendMode) {
	c.drawImage(ensureWhitePixel(), r, t, col, blend)
}

func (c *ebitenCanvas) DrawTexturedRect(r Rect, t Transform, tex Texture, col Color, blend BlendMode) {
	et, ok := tex.(*EbitenTexture)
	if !ok || et.image == nil {
		return
	}
	c.drawImage(et.image, r, t, col, blend)
}

// drawImage maps img's pixel rectangle onto r, then through t and the
// canvas transform.
func (c *ebitenCanvas) drawImage(img *ebiten.Image, r Rect, t Transform, col Color, blend BlendMode) {
	b := img.Bounds()
	src := Translate(r.X, r.Y).Mul(Scale(r.Width/float64(b.Dx()), r.Height/float64(b.Dy())))
	m := c.toPixel.Mul(t).Mul(src)

	op := &c.op
	op.GeoM = m.geoM()
	op.ColorScale.Reset()
	a := float32(col.A)
	op.ColorScale.Scale(float32(col.R)*a, float32(col.G)*a, float32(col.B)*a, a)
	op.Blend = blend.EbitenBlend()
	op.Filter = ebiten.FilterLinear
	c.viewportImage().DrawImage(img, op)
}

// Commit is a no-op: Ebitengine flushes queued draws itself.
func (c *ebitenCanvas) Commit() error {
	return nil
}

// geoM converts t to an Ebitengine matrix.
func (t Transform) geoM() ebiten.GeoM {
	var m ebiten.GeoM
	m.SetElement(0, 0, t[0])
	m.SetElement(0, 1, t[1])
	m.SetElement(0, 2, t[2])
	m.SetElement(1, 0, t[3])
	m.SetElement(1, 1, t[4])
	m.SetElement(1, 2, t[5])
	return m
}

// toRGBA converts to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// --- White pixel singleton ---

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image used
// by DrawRect. Only the render-loop goroutine draws, so no sync.Once.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// --- Presentation target ---

// ebitenTarget renders the root into a back buffer that Present swaps into
// the window's front buffer.
type ebitenTarget struct {
	window *EbitenWindow
	back   *ebiten.Image
	closed bool
}

// Canvas returns a cleared canvas over the back buffer, resized to the
// window's current pixel size.
func (t *ebitenTarget) Canvas() (Canvas, error) {
	if t.closed {
		return nil, ErrNoWindow
	}
	size := t.window.pixelSize()
	if t.back == nil || t.back.Bounds().Dx() != size.Width || t.back.Bounds().Dy() != size.Height {
		if t.back != nil {
			t.back.Deallocate()
		}
		t.back = ebiten.NewImageWithOptions(
			image.Rect(0, 0, size.Width, size.Height),
			&ebiten.NewImageOptions{Unmanaged: true},
		)
	} else {
		t.back.Clear()
	}
	return newEbitenCanvas(t.back), nil
}

// Present hands the back buffer to the window for its next Draw.
func (t *ebitenTarget) Present() error {
	if t.closed {
		return ErrNoWindow
	}
	if t.back == nil {
		return nil
	}
	t.back = t.window.swapFront(t.back)
	return nil
}

// Close releases the back buffer and detaches from the window.
func (t *ebitenTarget) Close() {
	if t.closed {
		return
	}
	t.closed = true
	if t.back != nil {
		t.back.Deallocate()
		t.back = nil
	}
	if front := t.window.swapFront(nil); front != nil {
		front.Deallocate()
	}
}
