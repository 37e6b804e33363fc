package canopy

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float64 values of a Frame simultaneously.
// Create one via the convenience constructors (TweenTranslation,
// TweenColor, TweenContentScale) and call Update(dt) each tick, typically
// from the frame's OnUpdate. Values are applied through the frame's setters,
// so the frame is marked for redraw. If the target frame is disposed, the
// group stops immediately.
type TweenGroup struct {
	tweens [4]*gween.Tween
	values [4]float64
	count  int
	apply  func(v *[4]float64)
	target *Frame
	Done   bool
}

// Update advances all tweens by dt seconds and applies the values to the
// target frame. If the target has been disposed, Done is set to true and no
// writes occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		g.values[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
	g.apply(&g.values)
}

// Reset rewinds every tween to its start.
func (g *TweenGroup) Reset() {
	for i := 0; i < g.count; i++ {
		g.tweens[i].Reset()
	}
	g.Done = false
}

// TweenTranslation animates the translation of the frame's placement to
// (to.X, to.Y) in superframe coordinates, keeping its linear part.
func TweenTranslation(f *Frame, to Vec2, duration float32, fn ease.TweenFunc) *TweenGroup {
	from := f.Transform().Translation()
	g := &TweenGroup{count: 2, target: f}
	g.tweens[0] = gween.New(float32(from.X), float32(to.X), duration, fn)
	g.tweens[1] = gween.New(float32(from.Y), float32(to.Y), duration, fn)
	g.apply = func(v *[4]float64) {
		f.SetTransform(f.Transform().WithTranslation(Vec2{v[0], v[1]}))
	}
	return g
}

// TweenColor animates all four components of the frame's composite tint.
func TweenColor(f *Frame, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	from := f.Color()
	g := &TweenGroup{count: 4, target: f}
	g.tweens[0] = gween.New(float32(from.R), float32(to.R), duration, fn)
	g.tweens[1] = gween.New(float32(from.G), float32(to.G), duration, fn)
	g.tweens[2] = gween.New(float32(from.B), float32(to.B), duration, fn)
	g.tweens[3] = gween.New(float32(from.A), float32(to.A), duration, fn)
	g.apply = func(v *[4]float64) {
		f.SetColor(Color{v[0], v[1], v[2], v[3]})
	}
	return g
}

// TweenContentScale animates the frame's content scale, zooming its content.
func TweenContentScale(f *Frame, to Vec2, duration float32, fn ease.TweenFunc) *TweenGroup {
	from := f.ContentScale()
	g := &TweenGroup{count: 2, target: f}
	g.tweens[0] = gween.New(float32(from.X), float32(to.X), duration, fn)
	g.tweens[1] = gween.New(float32(from.Y), float32(to.Y), duration, fn)
	g.apply = func(v *[4]float64) {
		f.SetContentScale(Vec2{v[0], v[1]})
	}
	return g
}
