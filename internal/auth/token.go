package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// ScopeAuth is the only access scope issued for user sessions.
const ScopeAuth = "auth"

var (
	// ErrMalformedToken indicates the token could not be decoded.
	ErrMalformedToken = errors.New("malformed token")
	// ErrInvalidSignature indicates the token was not signed with our secret.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrWrongScope indicates the token was issued for another access scope.
	ErrWrongScope = errors.New("token scope mismatch")
	// ErrTokenExpired indicates the token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrEmptySecret is returned when building an issuer without a signing key.
	ErrEmptySecret = errors.New("token secret must not be empty")
)

// Claims is the signed payload of a session token.
type Claims struct {
	UserID string `json:"_id"`
	Access string `json:"access"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies session tokens with a single HMAC secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer. A zero ttl issues tokens without expiry.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token binding userID to scope.
// Every call yields a distinct string, even within the same second.
func (i *TokenIssuer) Issue(userID, scope string) (string, error) {
	now := i.now()
	claims := Claims{
		UserID: userID,
		Access: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       ulid.Make().String(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and scope of token and returns its claims.
func (i *TokenIssuer) Verify(token, scope string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return nil, ErrInvalidSignature
	default:
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	if claims.Access != scope {
		return nil, ErrWrongScope
	}
	if claims.UserID == "" {
		return nil, ErrMalformedToken
	}
	return claims, nil
}
