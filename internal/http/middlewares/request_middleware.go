package middlewares

import (
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/commenthub/internal/actorctx"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-Id"
	maxRequestIDLen = 128
)

// RequestID accepts a caller supplied id when it is short and printable and
// mints a uuid otherwise. The id is echoed back and stored under CtxRequestID.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := strings.TrimSpace(ctx.GetHeader(requestIDHeader))
		if !usableRequestID(id) {
			id = uuid.NewString()
		}

		ctx.Set(CtxRequestID, id)
		ctx.Header(requestIDHeader, id)
		ctx.Next()
	}
}

func usableRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, r := range id {
		if r < 0x21 || r > 0x7e {
			return false
		}
	}
	return true
}

// RequestLogger writes one line per request once the handler chain is done.
// Health and metrics endpoints log at debug so they do not drown real traffic.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		status := ctx.Writer.Status()
		route := ctx.FullPath()
		if route == "" {
			route = ctx.Request.URL.Path
		}

		attrs := []slog.Attr{
			slog.String("request_id", ctx.GetString(CtxRequestID)),
			slog.String("method", ctx.Request.Method),
			slog.String("route", route),
			slog.Int("status", status),
			slog.Int64("latency_ms", time.Since(start).Milliseconds()),
			slog.Int("bytes", ctx.Writer.Size()),
		}

		// ResolveIdentity swaps the request context, so read it after Next
		reqCtx := ctx.Request.Context()
		if uid, ok := actorctx.UserIDFrom(reqCtx); ok {
			attrs = append(attrs, slog.String("user_id", uid))
		}
		if errs := ctx.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			attrs = append(attrs, slog.String("errors", errs.String()))
		}

		log.LogAttrs(reqCtx, requestLevel(route, status), "http_request", attrs...)
	}
}

func requestLevel(route string, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case route == "/healthz" || route == "/readyz" || route == "/metrics":
		return slog.LevelDebug
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
