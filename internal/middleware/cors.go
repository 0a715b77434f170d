// Package middleware provides the HTTP middleware stack of the travel guide
// shell API.
package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// NewCORSHandler returns a middleware that applies CORS headers for the given
// origins. Each origin is scheme plus host with no trailing slash.
// Last-Event-ID is allowed so browser EventSource reconnects pass preflight.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Last-Event-ID"},
		AllowCredentials: false,
	})
	return c.Handler
}
