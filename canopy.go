package canopy

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// ColorTransparent is fully transparent black.
var ColorTransparent = Color{}

// Vec2 is a 2D vector used for positions, offsets, scales, and directions
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Mul returns the component-wise product of v and o.
func (v Vec2) Mul(o Vec2) Vec2 { return Vec2{v.X * o.X, v.Y * o.Y} }

// Div returns the component-wise quotient of v and o.
func (v Vec2) Div(o Vec2) Vec2 { return Vec2{v.X / o.X, v.Y / o.Y} }

// Length returns the Euclidean length of v.
func (v Vec2) Length() float64 { return math.Hypot(v.X, v.Y) }

// Size is an integer pixel extent.
type Size struct {
	Width, Height int
}

// Vec2 returns the size as a floating-point vector.
func (s Size) Vec2() Vec2 { return Vec2{float64(s.Width), float64(s.Height)} }

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// unitRect is the normalized extent of every frame's local space.
var unitRect = Rect{0, 0, 1, 1}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Origin returns the top-left corner.
func (r Rect) Origin() Vec2 { return Vec2{r.X, r.Y} }

// Extent returns the width and height as a vector.
func (r Rect) Extent() Vec2 { return Vec2{r.Width, r.Height} }

// boundingRect returns the axis-aligned bounds of the given points.
func boundingRect(pts ...Vec2) Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{minX, minY, maxX - minX, maxY - minY}
}

// BlendMode is how a subframe's surface combines with its superframe's
// surface during compositing.
type BlendMode uint8

const (
	BlendNormal   BlendMode = iota // surface over the superframe content
	BlendAdd                       // surface color added to the superframe
	BlendMultiply                  // superframe scaled by the surface color
	BlendScreen                    // inverted multiply of the inverses
	BlendErase                     // surface alpha cuts holes in the superframe
	BlendMask                      // superframe kept where the surface is opaque
	BlendBelow                     // surface behind the superframe content
	BlendNone                      // surface replaces the covered pixels
)

// ebitenBlends holds the ebiten blend state for each BlendMode.
var ebitenBlends = [...]ebiten.Blend{
	BlendNormal: ebiten.BlendSourceOver,
	BlendAdd:    ebiten.BlendLighter,
	BlendMultiply: {
		BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
		BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
		BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
		BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
		BlendOperationRGB:           ebiten.BlendOperationAdd,
		BlendOperationAlpha:         ebiten.BlendOperationAdd,
	},
	BlendScreen: {
		BlendFactorSourceRGB:        ebiten.BlendFactorOne,
		BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
		BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
		BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
		BlendOperationRGB:           ebiten.BlendOperationAdd,
		BlendOperationAlpha:         ebiten.BlendOperationAdd,
	},
	BlendErase: ebiten.BlendDestinationOut,
	BlendMask: {
		BlendFactorSourceRGB:        ebiten.BlendFactorZero,
		BlendFactorSourceAlpha:      ebiten.BlendFactorZero,
		BlendFactorDestinationRGB:   ebiten.BlendFactorSourceAlpha,
		BlendFactorDestinationAlpha: ebiten.BlendFactorSourceAlpha,
		BlendOperationRGB:           ebiten.BlendOperationAdd,
		BlendOperationAlpha:         ebiten.BlendOperationAdd,
	},
	BlendBelow: ebiten.BlendDestinationOver,
	BlendNone:  ebiten.BlendCopy,
}

// EbitenBlend returns the blend state the ebiten compositor uses for b.
// Unknown modes composite like BlendNormal.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	if int(b) < len(ebitenBlends) {
		return ebitenBlends[b]
	}
	return ebiten.BlendSourceOver
}

// DepthFormat selects the depth attachment of a frame's backing surface.
type DepthFormat uint8

const (
	DepthNone       DepthFormat = iota // color only
	Depth24                            // 24-bit depth
	Depth32                            // 32-bit depth
	Depth24Stencil8                    // 24-bit depth with 8-bit stencil
)

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// Key identifies a keyboard key. Values are Ebitengine key codes.
type Key = ebiten.Key

// MouseEventType identifies a kind of pointer event.
type MouseEventType uint8

const (
	MouseDown  MouseEventType = iota // a button was pressed
	MouseUp                          // a button was released
	MouseMove                        // the pointer moved
	MouseWheel                       // the wheel scrolled; Delta carries the scroll amount
)

// MouseEvent is a pointer event. Location and Delta are in window points when
// delivered to a Host and in the receiving frame's local space when delivered
// to a Frame. For MouseWheel events Delta is the scroll amount and is never
// transformed.
type MouseEvent struct {
	Type     MouseEventType
	DeviceID int
	Button   MouseButton
	Location Vec2
	Delta    Vec2
}

// KeyboardEventType identifies a kind of keyboard event.
type KeyboardEventType uint8

const (
	KeyDown         KeyboardEventType = iota // a key was pressed
	KeyUp                                    // a key was released
	TextInput                                // committed text
	TextComposition                          // in-progress IME text
)

// KeyboardEvent is a keyboard or text event for one keyboard device.
type KeyboardEvent struct {
	Type     KeyboardEventType
	DeviceID int
	Key      Key
	Text     string
}

// WindowEventType identifies a kind of window event.
type WindowEventType uint8

const (
	WindowResized     WindowEventType = iota // content rect or scale factor changed
	WindowShown                              // window became visible
	WindowHidden                             // window was hidden or minimized
	WindowActivated                          // window gained focus
	WindowInactivated                        // window lost focus
	WindowClosed                             // window was closed
)

// WindowEvent reports a change in the bound window.
type WindowEvent struct {
	Type        WindowEventType
	ContentRect Rect
	ScaleFactor float64
}
