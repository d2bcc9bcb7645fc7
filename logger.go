package rowan

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. Enabled reports false so callers skip
// attribute formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger used by rowan. By default rowan produces
// no log output. Pass nil to restore the silent default.
//
// Levels used:
//   - [slog.LevelDebug]: per-frame builder statistics
//   - [slog.LevelInfo]: atlas builds, target group restores, engine start
//   - [slog.LevelWarn]: stale texture and target group handles
//   - [slog.LevelError]: failed draws and screenshots
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current rowan logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
