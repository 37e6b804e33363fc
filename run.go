package canopy

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window created by Run.
type RunConfig struct {
	Title         string
	Width, Height int
	// Resizable lets the user resize the window.
	Resizable bool
	// ShowFPS overlays the actual frame and tick rates.
	ShowFPS bool
}

// Run opens an Ebitengine window, binds it to h, starts the host loop and
// blocks until the window is closed. h should use an EbitenRenderer.
func Run(h *Host, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}
	w := NewEbitenWindow(cfg.Width, cfg.Height)
	w.ShowFPS = cfg.ShowFPS

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowClosingHandled(true)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	if err := h.SetWindow(w); err != nil {
		return err
	}
	if err := h.Start(); err != nil {
		_ = h.SetWindow(nil)
		return err
	}
	defer h.Close()

	if err := ebiten.RunGame(w); err != nil {
		return fmt.Errorf("run window: %w", err)
	}
	return nil
}
