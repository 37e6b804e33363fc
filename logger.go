package canopy

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Frames and hosts on different
// goroutines may log concurrently with SetLogger.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger used by canopy. By default canopy produces
// no log output. Pass nil to restore the silent default.
//
// Log levels used by canopy:
//   - [slog.LevelDebug]: per-tick compositor statistics (Host debug mode)
//   - [slog.LevelInfo]: host lifecycle (start, stop, window binding)
//   - [slog.LevelWarn]: rejected operations on the root frame, clamped
//     surface sizes, frames disposed while loaded, renderer failures
//
// Example:
//
//	canopy.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by canopy.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// frameAttr identifies a frame in log records.
func frameAttr(f *Frame) slog.Attr {
	if f == nil {
		return slog.String("frame", "<nil>")
	}
	return slog.Group("frame", slog.Uint64("id", uint64(f.ID)), slog.String("name", f.Name))
}
