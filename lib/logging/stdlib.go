package logging

import (
	"bytes"
	"context"
	"log"
	"log/slog"
	"time"
)

// handlerWriter bridges the stdlib logger onto a slog Handler, so things
// like http.Server error output land in the structured log.
type handlerWriter struct {
	h     slog.Handler
	level slog.Leveler
}

func (w *handlerWriter) Write(buf []byte) (int, error) {
	level := w.level.Level()
	if !w.h.Enabled(context.Background(), level) {
		return 0, nil
	}

	origLen := len(buf) // report the whole buffer as written
	buf = bytes.TrimSuffix(buf, []byte{'\n'})
	r := slog.NewRecord(time.Now(), level, string(buf), 0)
	return origLen, w.h.Handle(context.Background(), r)
}

// StdlibLogger returns a *log.Logger whose output feeds the given handler
// at the given level.
func StdlibLogger(next slog.Handler, level slog.Level) *log.Logger {
	return log.New(&handlerWriter{h: next, level: level}, "", log.LstdFlags)
}
