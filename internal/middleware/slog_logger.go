package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// requestInfo is filled in by middleware further down the chain so the
// access log line can name the caller.
type requestInfo struct {
	userID string
}

type requestInfoKey struct{}

// noteUser records the authenticated user for the access log, when the
// request passed through NewSlogLogger.
func noteUser(ctx context.Context, userID string) {
	if info, ok := ctx.Value(requestInfoKey{}).(*requestInfo); ok {
		info.userID = userID
	}
}

// NewSlogLogger returns a middleware that logs each request as one structured
// line: method, path, status, bytes, duration, chi's request ID and, for
// authenticated routes, the user ID. 4xx responses are logged at warn and
// 5xx at error.
//
// Wire it after chimiddleware.RequestID and before NewAuthHandler.
func NewSlogLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			info := &requestInfo{}
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), requestInfoKey{}, info)))

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", chimiddleware.GetReqID(r.Context()),
			}
			if info.userID != "" {
				attrs = append(attrs, "user_id", info.userID)
			}
			log.Log(r.Context(), levelFor(ww.Status()), "request", attrs...)
		})
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
