package warp

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

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with tile evaluation.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for warp and its sub-packages.
// By default, warp produces no log output. Pass nil to restore the silent
// default.
//
// Log levels used by warp:
//   - [slog.LevelDebug]: per-tile diagnostics (engine builds, channel defaults)
//   - [slog.LevelInfo]: pipeline runs and cache statistics
//   - [slog.LevelWarn]: tiles that failed to evaluate
//
// Example:
//
//	warp.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by warp.
// Sub-packages (pipeline, imagebuf) call this to share the same
// configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
