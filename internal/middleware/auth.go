package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkordes/snaptrip/backend/internal/auth"
)

// NewAuthHandler enforces Authorization: Bearer <JWT> and stores the token's
// subject as the user id in the request context. Paths in public pass
// through unauthenticated.
func NewAuthHandler(v *auth.Verifier, public ...string) func(http.Handler) http.Handler {
	open := make(map[string]bool, len(public))
	for _, p := range public {
		open[p] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if open[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			const prefix = "Bearer "
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, prefix) {
				unauthorized(w, "missing bearer token")
				return
			}
			sub, err := v.Verify(strings.TrimSpace(strings.TrimPrefix(authz, prefix)))
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			reportUser(r.Context(), sub)
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), sub)))
		})
	}
}

type userSinkKey struct{}

func withUserSink(ctx context.Context, dst *string) context.Context {
	return context.WithValue(ctx, userSinkKey{}, dst)
}

// reportUser hands the authenticated user to an enclosing request logger.
func reportUser(ctx context.Context, user string) {
	if dst, ok := ctx.Value(userSinkKey{}).(*string); ok {
		*dst = user
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": "unauthenticated", "message": msg},
	})
}
