package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tickbox/tickbox/internal/auth"
	"github.com/tickbox/tickbox/internal/metrics"
	"github.com/tickbox/tickbox/internal/model"
	"github.com/tickbox/tickbox/internal/service"
)

// TokenHeader carries the session token in both directions.
const TokenHeader = "X-Auth"

// SessionResolver maps a presented token to its user.
type SessionResolver interface {
	ResolveByToken(ctx context.Context, token string) (*model.User, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Resolver SessionResolver
	Metrics  metrics.Recorder
}

// Auth admits requests carrying a live session token and attaches the
// user and token to the request context. Every rejection gets the same
// 401 body; the precise reason only reaches the logs.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)

			user, err := cfg.Resolver.ResolveByToken(r.Context(), token)
			if err != nil {
				if !errors.Is(err, service.ErrUnauthorized) {
					cfg.Logger.Error("session lookup failed",
						slog.String("error", err.Error()),
						slog.String("request_id", RequestIDFromContext(r.Context())),
					)
					cfg.Metrics.IncAuthRejected(metrics.ReasonInternal)
					writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
					return
				}

				reason := service.RejectReason(err)
				cfg.Metrics.IncAuthRejected(reason)
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", RequestIDFromContext(r.Context())),
				)
				writeAuthError(w)
				return
			}

			r = r.WithContext(auth.ContextWithSession(r.Context(), user, token))
			recordUser(r)

			cfg.Logger.Debug("authentication successful",
				slog.String("user_id", user.ID),
				slog.String("request_id", RequestIDFromContext(r.Context())),
			)

			next.ServeHTTP(w, r)
		})
	}
}

// extractToken reads X-Auth, falling back to "Authorization: Bearer".
func extractToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(TokenHeader)); token != "" {
		return token
	}
	if h := r.Header.Get("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func writeAuthError(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
}
