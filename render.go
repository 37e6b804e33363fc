package canopy

// drawContext carries per-tick compositor state through the recursion.
type drawContext struct {
	renderer Renderer
	target   PresentationTarget
	stats    *DrawStats
}

// drawHierarchy redraws f's subtree post-order and reports whether f's
// surface was regenerated this tick. A child that redraws forces its parent
// to recomposite; an untouched branch keeps its cached surface.
func (f *Frame) drawHierarchy(ctx *drawContext) bool {
	drawSelf := f.redraw.Load()
	for _, c := range f.children {
		if c.hidden {
			continue
		}
		if !f.isSubframeVisible(c) {
			ctx.stats.Culled++
			continue
		}
		if c.drawHierarchy(ctx) {
			drawSelf = true
		}
	}
	if !drawSelf {
		return false
	}

	var canvas Canvas
	var err error
	if f.parent == nil && ctx.target != nil {
		canvas, err = ctx.target.Canvas()
	} else {
		canvas, err = f.ensureCanvas(ctx.renderer)
	}
	if err != nil {
		Logger().Warn("canopy: cannot obtain canvas", frameAttr(f), "err", err)
		return false
	}

	res := f.resolution.Vec2()
	canvas.SetViewport(Rect{0, 0, res.X, res.Y})
	canvas.SetContentBounds(Rect{0, 0, f.contentScale.X, f.contentScale.Y})
	canvas.SetContentTransform(f.contentTransform)

	if f.OnDraw != nil {
		f.OnDraw(f, canvas)
	} else {
		canvas.Clear(f.Background)
	}

	// Composite back-to-front: the last child is bottommost.
	for i := len(f.children) - 1; i >= 0; i-- {
		c := f.children[i]
		if c.hidden || c.surface == nil || !f.isSubframeVisible(c) {
			continue
		}
		canvas.DrawTexturedRect(unitRect, c.transform, c.surface, c.color, c.blend)
		ctx.stats.Composited++
	}

	if f.OnDrawOverlay != nil {
		f.OnDrawOverlay(f, canvas)
	}
	if err := canvas.Commit(); err != nil {
		Logger().Warn("canopy: canvas commit failed", frameAttr(f), "err", err)
	}
	f.redraw.Store(false)
	ctx.stats.FramesDrawn++
	return true
}

// isSubframeVisible reports whether c's placed unit box intersects f's unit
// rectangle.
func (f *Frame) isSubframeVisible(c *Frame) bool {
	corners := c.unitBoxInSuper()
	for i, p := range corners {
		corners[i] = f.LocalToUnit(p)
	}
	return boundingRect(corners[:]...).Intersects(unitRect)
}

// updateHierarchy refreshes resolution and runs OnUpdate top-down.
func (f *Frame) updateHierarchy(dt float64) {
	f.UpdateContentResolution()
	if f.OnUpdate != nil {
		f.OnUpdate(f, dt)
	}
	// Copy so OnUpdate may add or remove subframes.
	children := append([]*Frame(nil), f.children...)
	for _, c := range children {
		if c.parent == f {
			c.updateHierarchy(dt)
		}
	}
}
