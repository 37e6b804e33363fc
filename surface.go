package canopy

import (
	"fmt"
	"math"
)

// Resolution returns the frame's pixel size.
func (f *Frame) Resolution() Size {
	return f.resolution
}

// Surface returns the cached backing texture, or nil if none exists.
func (f *Frame) Surface() Texture {
	return f.surface
}

// SetRedraw marks the frame's surface stale. Safe to call from any goroutine.
func (f *Frame) SetRedraw() {
	f.redraw.Store(true)
}

// NeedsRedraw reports whether the frame will be redrawn on the next tick.
func (f *Frame) NeedsRedraw() bool {
	return f.redraw.Load()
}

// DiscardSurface drops the backing surface so it is recreated on the next
// draw, and marks the frame for redraw.
func (f *Frame) DiscardSurface() {
	f.discardSurface()
	f.SetRedraw()
}

func (f *Frame) discardSurface() {
	if f.surface != nil {
		f.surface.Dispose()
	}
	f.surface = nil
	f.canvas = nil
}

// UpdateContentResolution recomputes the pixel resolution. The root follows
// its host window; other frames project their unit box into the
// superframe's pixel space. A change discards the surface.
func (f *Frame) UpdateContentResolution() {
	maxSize := 0
	if f.host != nil {
		maxSize = f.host.maxSurfaceSize()
	}
	if f.isRoot() {
		if size, ok := f.host.windowPixelSize(); ok {
			f.applyResolution(clampResolution(size, maxSize))
		}
		return
	}
	if f.parent == nil {
		return
	}
	var px [4]Vec2
	for i, p := range f.unitBoxInSuper() {
		px[i] = f.parent.LocalToPixel(p)
	}
	w := math.Max(px[1].Sub(px[0]).Length(), px[3].Sub(px[2]).Length())
	h := math.Max(px[2].Sub(px[0]).Length(), px[3].Sub(px[1]).Length())
	size := Size{roundDimension(w), roundDimension(h)}
	f.applyResolution(clampResolution(size, maxSize))
}

// applyResolution installs a new resolution, invalidating the surface if it
// differs from the current one.
func (f *Frame) applyResolution(size Size) {
	if f.resolution == size {
		return
	}
	f.resolution = size
	f.DiscardSurface()
	if f.OnResize != nil {
		f.OnResize(f, size)
	}
}

// roundDimension rounds to the nearest integer, saturating NaN and infinities.
func roundDimension(v float64) int {
	if math.IsNaN(v) || v < 1 {
		return 1
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Round(v))
}

// clampResolution keeps each component within [1, maxSize]. A maxSize of zero
// means unlimited.
func clampResolution(s Size, maxSize int) Size {
	clampOne := func(v int) int {
		if v < 1 {
			return 1
		}
		if maxSize > 0 && v > maxSize {
			Logger().Warn("canopy: surface dimension clamped", "requested", v, "max", maxSize)
			return maxSize
		}
		return v
	}
	return Size{clampOne(s.Width), clampOne(s.Height)}
}

// ensureCanvas returns a canvas bound to the frame's backing texture,
// allocating both if necessary.
func (f *Frame) ensureCanvas(r Renderer) (Canvas, error) {
	if f.surface != nil && f.canvas != nil &&
		f.surface.Width() == f.resolution.Width && f.surface.Height() == f.resolution.Height {
		return f.canvas, nil
	}
	f.discardSurface()
	tex, err := r.NewTexture(f.resolution, f.depthFormat)
	if err != nil {
		return nil, fmt.Errorf("create %dx%d surface: %w", f.resolution.Width, f.resolution.Height, err)
	}
	c, err := r.NewCanvas(tex)
	if err != nil {
		return nil, fmt.Errorf("create canvas: %w", err)
	}
	f.surface = tex
	f.canvas = c
	return c, nil
}
