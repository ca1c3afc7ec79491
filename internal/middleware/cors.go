package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORSConfig holds CORS configuration options.
type CORSConfig struct {
	// AllowedOrigins lists exact origins or patterns with a single
	// wildcard such as "https://*.example.com". An empty list disables
	// cross-origin access.
	AllowedOrigins []string
	MaxAge         int
}

// CORS handles preflight and cross-origin requests. The session header is
// both accepted and exposed so browser clients can read it after login.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	maxAge := cfg.MaxAge
	if maxAge == 0 {
		maxAge = 86400
	}

	opts := cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", TokenHeader, RequestIDHeader},
		ExposedHeaders:   []string{TokenHeader, RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           maxAge,
	}
	if len(cfg.AllowedOrigins) == 0 {
		// go-chi/cors treats an empty list as "*"
		opts.AllowOriginFunc = func(*http.Request, string) bool { return false }
	}

	return cors.Handler(opts)
}
