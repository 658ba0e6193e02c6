// Package slogmask renders masked values in log/slog records.
//
// Wrap a single value:
//
//	slog.Info("login", "user", slogmask.Value(engine, user))
//
// or wrap a handler so every attribute holding a struct, slice, map or
// pointer is rendered masked:
//
//	logger := slog.New(slogmask.NewHandler(inner, engine))
package slogmask

import (
	"context"
	"log/slog"
	"reflect"

	"github.com/zoobzio/cloak"
)

// Valuer defers masking until a handler resolves the attribute.
type Valuer struct {
	e *cloak.Engine
	v any
}

// Value wraps v for masking by e. A nil engine means cloak.Default().
func Value(e *cloak.Engine, v any) Valuer {
	if e == nil {
		e = cloak.Default()
	}
	return Valuer{e: e, v: v}
}

// LogValue implements slog.LogValuer.
func (m Valuer) LogValue() slog.Value {
	return slog.StringValue(m.e.SafeString(context.Background(), m.v))
}

// Handler masks attribute values before passing records to the next handler.
type Handler struct {
	next slog.Handler
	e    *cloak.Engine
}

var _ slog.Handler = (*Handler)(nil)

// NewHandler returns a handler that masks attributes for next.
func NewHandler(next slog.Handler, e *cloak.Engine) *Handler {
	if e == nil {
		e = cloak.Default()
	}
	return &Handler{next: next, e: e}
}

// Enabled delegates to the next handler.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle masks the record attributes and delegates to the next handler.
func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	masked := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(h.mask(ctx, a))
		return true
	})
	return h.next.Handle(ctx, masked)
}

// WithAttrs masks attrs once and returns a handler carrying them.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.mask(context.Background(), a)
	}
	return &Handler{next: h.next.WithAttrs(masked), e: h.e}
}

// WithGroup delegates to the next handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{next: h.next.WithGroup(name), e: h.e}
}

func (h *Handler) mask(ctx context.Context, a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		masked := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			masked[i] = h.mask(ctx, ga)
		}
		a.Value = slog.GroupValue(masked...)
	case slog.KindAny:
		if v := a.Value.Any(); composite(v) {
			a.Value = slog.StringValue(h.e.SafeString(ctx, v))
		}
	}
	return a
}

// composite reports whether v may hold fields worth masking. Errors and
// other leaves keep their own rendering.
func composite(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.(error); ok {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Struct, reflect.Ptr, reflect.Slice, reflect.Array, reflect.Map, reflect.Interface:
		return true
	}
	return false
}
