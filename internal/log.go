package internal

import (
	"log/slog"
	"net/http"
)

// GetRequestLogger decorates a logger with the request metadata sphinxd
// wants on every line.
func GetRequestLogger(base *slog.Logger, r *http.Request) *slog.Logger {
	return base.With(
		"host", r.Host,
		"method", r.Method,
		"path", r.URL.Path,
		"user_agent", r.UserAgent(),
		"x-forwarded-for", r.Header.Get("X-Forwarded-For"),
		"x-real-ip", r.Header.Get("X-Real-Ip"),
	)
}
