package canopy

import (
	"time"
)

// DrawStats holds per-tick compositor metrics.
type DrawStats struct {
	// FramesDrawn counts frames whose surface was regenerated.
	FramesDrawn int
	// Composited counts subframe textures drawn into a parent.
	Composited int
	// Culled counts subframes skipped because they lie outside their parent.
	Culled int
	// UpdateTime and DrawTime are the durations of the two tick phases.
	UpdateTime time.Duration
	DrawTime   time.Duration
}

// HostStats contains cumulative render-loop metrics.
type HostStats struct {
	TickCount    uint64
	PresentCount uint64
	LastTick     DrawStats
}

// debugLog writes per-tick stats at debug level.
func (h *Host) debugLog(stats DrawStats) {
	if !h.config.Debug {
		return
	}
	Logger().Debug("canopy: tick",
		"update", stats.UpdateTime,
		"draw", stats.DrawTime,
		"drawn", stats.FramesDrawn,
		"composited", stats.Composited,
		"culled", stats.Culled)
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(f *Frame) {
	depth := 0
	for p := f; p != nil; p = p.parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		Logger().Warn("canopy: deep frame tree", "depth", depth, "threshold", debugMaxTreeDepth, frameAttr(f))
	}
}

// debugCheckChildCount warns if a frame has more than 1000 subframes.
const debugMaxChildCount = 1000

func debugCheckChildCount(f *Frame) {
	if len(f.children) > debugMaxChildCount {
		Logger().Warn("canopy: frame has many subframes", "count", len(f.children),
			"threshold", debugMaxChildCount, frameAttr(f))
	}
}
