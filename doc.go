// Package canopy is a retained-mode 2D frame tree for [Ebitengine] and
// headless hosts.
//
// A [Host] owns one root [Frame], a render loop and the per-device input
// capture tables. Frames form a tree; each frame has its own local
// coordinate space, a cached backing surface that is only regenerated when
// the frame or one of its subframes is marked for redraw, and callbacks for
// drawing, lifecycle and input.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and
// starts the host loop for you:
//
//	host := canopy.NewHost(canopy.NewEbitenRenderer(), canopy.DefaultHostConfig())
//	panel := canopy.NewFrame("panel")
//	panel.Background = canopy.Color{R: 0.3, G: 0.7, B: 1, A: 1}
//	panel.SetTransform(canopy.Translate(0.25, 0.25).Mul(canopy.Scale(0.5, 0.5)))
//	host.Root().AddSubframe(panel)
//	canopy.Run(host, canopy.RunConfig{Title: "Canopy", Width: 640, Height: 480})
//
// # Coordinate spaces
//
// Every frame has four related spaces:
//
//   - local: where the frame draws and receives input. The content
//     transform and content scale map local points to unit space.
//   - unit: the frame's own box, [0,1] x [0,1].
//   - superframe: the parent's local space. The frame's transform places
//     the unit box there.
//   - pixel: unit space multiplied by the frame's resolution.
//
// Subframes that fall entirely outside their superframe's unit box are
// neither drawn nor hit.
//
// # Input
//
// Pointer events are hit-tested top-down; the first subframe whose unit box
// contains the point wins, and index 0 is topmost. Before delivery every
// ancestor of the target, from the root down, may claim the event through
// PreprocessMouseEvent. A frame that captures a device with
// [Frame.CaptureMouse] or [Frame.CaptureKeyboard] receives all of that
// device's events directly until it releases it, is unloaded, or can no
// longer handle input.
//
// # Headless use
//
// [RecordingRenderer] and [HeadlessWindow] stand in for the GPU and the
// window. Drive the host with [Host.Step] and inject input through the
// window or an [InputScript].
//
// [Ebitengine]: https://ebitengine.org
package canopy
