// Package model defines domain entities for the application.
package model

import "time"

// Token is one issued session token together with its access scope.
type Token struct {
	Access string
	Token  string
}

// User is an account that owns todos and holds zero or more live sessions.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Tokens       []Token   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasToken reports whether token is a live session of u for access.
func (u *User) HasToken(access, token string) bool {
	for _, t := range u.Tokens {
		if t.Access == access && t.Token == token {
			return true
		}
	}
	return false
}

// RemoveToken drops every entry equal to token. Other sessions are untouched.
func (u *User) RemoveToken(token string) bool {
	kept := u.Tokens[:0]
	removed := false
	for _, t := range u.Tokens {
		if t.Token == token {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	u.Tokens = kept
	return removed
}

// CachedSession is the subset of a resolved user kept in the session cache.
type CachedSession struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	CreatedAt int64  `json:"created_at"` // unix seconds
	UpdatedAt int64  `json:"updated_at"`
}

// ToCachedSession converts u for storage in the session cache.
func (u *User) ToCachedSession() *CachedSession {
	return &CachedSession{
		UserID:    u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Unix(),
		UpdatedAt: u.UpdatedAt.Unix(),
	}
}

// User rebuilds the user a cached session was created from.
// Password hash and token list are not part of the cache entry.
func (c *CachedSession) User() *User {
	return &User{
		ID:        c.UserID,
		Email:     c.Email,
		CreatedAt: time.Unix(c.CreatedAt, 0).UTC(),
		UpdatedAt: time.Unix(c.UpdatedAt, 0).UTC(),
	}
}
