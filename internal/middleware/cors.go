// Package middleware provides the HTTP middleware chain of the SnapTrip API:
// CORS, bearer authentication, body size limits and request logging.
package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// NewCORSHandler returns a middleware that applies CORS headers for
// allowedOrigins (full origins, no trailing slash). Browsers reconnecting an
// event stream send Last-Event-ID, so it is allowed alongside the auth and
// content headers.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization", "Last-Event-ID"},
		MaxAge:         600,
	})
	return c.Handler
}
