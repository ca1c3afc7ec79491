package auth

import (
	"context"

	"github.com/tickbox/tickbox/internal/model"
)

type contextKey string

const sessionContextKey contextKey = "session"

// Session is the authenticated state attached to a request.
type Session struct {
	User  *model.User
	Token string
}

// ContextWithSession attaches the authenticated user and the token they presented.
func ContextWithSession(ctx context.Context, user *model.User, token string) context.Context {
	return context.WithValue(ctx, sessionContextKey, &Session{User: user, Token: token})
}

// SessionFromContext returns the request session, or nil when unauthenticated.
func SessionFromContext(ctx context.Context) *Session {
	s, ok := ctx.Value(sessionContextKey).(*Session)
	if !ok {
		return nil
	}
	return s
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *model.User {
	if s := SessionFromContext(ctx); s != nil {
		return s.User
	}
	return nil
}

// MustSessionFromContext panics when the auth middleware has not run.
func MustSessionFromContext(ctx context.Context) *Session {
	s := SessionFromContext(ctx)
	if s == nil || s.User == nil {
		panic("session not found - ensure auth middleware is applied")
	}
	return s
}

// UserIDFromContext returns the authenticated user's id, or "".
func UserIDFromContext(ctx context.Context) string {
	if u := UserFromContext(ctx); u != nil {
		return u.ID
	}
	return ""
}
