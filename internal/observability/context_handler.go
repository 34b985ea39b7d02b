package observability

import (
	"context"
	"log/slog"

	"github.com/geocoder89/commenthub/internal/actorctx"
	"go.opentelemetry.io/otel/trace"
)

// contextHandler copies request-scoped values from ctx onto every record:
// the active span ids and, once the identity has been resolved, the caller's user id.
type contextHandler struct {
	inner slog.Handler
}

func withContextAttrs(inner slog.Handler) slog.Handler {
	return contextHandler{inner: inner}
}

func (h contextHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.inner.Enabled(ctx, l)
}

func (h contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		rec.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	if uid, ok := actorctx.UserIDFrom(ctx); ok {
		rec.AddAttrs(slog.String("actor_id", uid))
	}

	return h.inner.Handle(ctx, rec)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{inner: h.inner.WithGroup(name)}
}
