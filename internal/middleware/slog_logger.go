package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/snaptrip/backend/internal/auth"
)

// NewSlogLogger returns a middleware that logs each request as one structured
// line: method, path, status, bytes, duration, chi's request ID and, once the
// auth middleware has run, the user id. Server errors log at Error, client
// errors at Warn, everything else at Info.
//
// Wire it after chimiddleware.RequestID so the request ID is available.
func NewSlogLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			// The auth middleware runs deeper in the chain; it reports the
			// user back through this holder.
			var user string
			r = r.WithContext(withUserSink(r.Context(), &user))

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", chimiddleware.GetReqID(r.Context()),
			}
			if user == "" {
				user, _ = auth.UserFromContext(r.Context())
			}
			if user != "" {
				attrs = append(attrs, "user_id", user)
			}
			log.Log(r.Context(), level, "request", attrs...)
		})
	}
}
