package cache

import (
	"strings"
	"testing"
	"time"
)

func TestSessionKey(t *testing.T) {
	t.Parallel()

	token := "eyJhbGciOiJIUzI1NiJ9.eyJfaWQiOiJ1MSJ9.sig"
	key := sessionKey(token)

	if !strings.HasPrefix(key, sessionCachePrefix) {
		t.Errorf("key %q should start with %q", key, sessionCachePrefix)
	}
	if strings.Contains(key, token) {
		t.Error("key must not embed the raw token")
	}
	if sessionKey(token) != key {
		t.Error("key derivation should be deterministic")
	}
	if sessionKey(token+"x") == key {
		t.Error("different tokens should produce different keys")
	}
}

func TestRevokedKey(t *testing.T) {
	t.Parallel()

	token := "eyJhbGciOiJIUzI1NiJ9.eyJfaWQiOiJ1MSJ9.sig"
	if !strings.HasPrefix(revokedKey(token), revokedPrefix) {
		t.Errorf("key %q should start with %q", revokedKey(token), revokedPrefix)
	}
	if revokedKey(token) == sessionKey(token) {
		t.Error("tombstone and session keys must differ")
	}
	if strings.Contains(revokedKey(token), token) {
		t.Error("key must not embed the raw token")
	}

	c := NewWithClient(nil, time.Minute)
	if c.revokedTTL() < c.sessionTTL {
		t.Errorf("revokedTTL %v shorter than sessionTTL %v", c.revokedTTL(), c.sessionTTL)
	}
}

func TestNewWithClient_DefaultTTL(t *testing.T) {
	t.Parallel()

	c := NewWithClient(nil, 0)
	if c.sessionTTL != DefaultSessionTTL {
		t.Errorf("sessionTTL = %v, want %v", c.sessionTTL, DefaultSessionTTL)
	}

	c = NewWithClient(nil, time.Minute)
	if c.sessionTTL != time.Minute {
		t.Errorf("sessionTTL = %v, want 1m", c.sessionTTL)
	}
}
