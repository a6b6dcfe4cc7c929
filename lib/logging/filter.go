package logging

import (
	"context"
	"log/slog"
)

// Filterer decides whether a log record should be emitted.
type Filterer interface {
	Filter(ctx context.Context, r *slog.Record) bool
}

// FilterFunc lets you make inline log filters with plain functions.
type FilterFunc func(ctx context.Context, r *slog.Record) bool

func (ff FilterFunc) Filter(ctx context.Context, r *slog.Record) bool {
	return ff(ctx, r)
}

// FilterHandler wraps a slog Handler with filters. sphinxd uses this to
// keep health-check chatter out of the request log.
type FilterHandler struct {
	next    slog.Handler
	filters []Filterer
}

func NewFilterHandler(handler slog.Handler, filters ...Filterer) *FilterHandler {
	return &FilterHandler{
		next:    handler,
		filters: filters,
	}
}

func (h *FilterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *FilterHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, filter := range h.filters {
		if !filter.Filter(ctx, &r) {
			return nil
		}
	}
	return h.next.Handle(ctx, r)
}

func (h *FilterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &FilterHandler{
		next:    h.next.WithAttrs(attrs),
		filters: h.filters,
	}
}

func (h *FilterHandler) WithGroup(name string) slog.Handler {
	return &FilterHandler{
		next:    h.next.WithGroup(name),
		filters: h.filters,
	}
}
