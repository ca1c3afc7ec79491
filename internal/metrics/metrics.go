// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Reasons an authentication attempt is rejected. They double as the
// "reason" label on the rejection counter and in logs.
const (
	ReasonMissingToken = "missing_token"
	ReasonMalformed    = "malformed"
	ReasonBadSignature = "bad_signature"
	ReasonWrongScope   = "wrong_scope"
	ReasonExpired      = "expired"
	ReasonRevoked      = "revoked"
	ReasonInternal     = "internal"
)

// RejectReasons lists every reason in exposition order.
var RejectReasons = []string{
	ReasonMissingToken,
	ReasonMalformed,
	ReasonBadSignature,
	ReasonWrongScope,
	ReasonExpired,
	ReasonRevoked,
	ReasonInternal,
}

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Account and session metrics
	IncUserRegistered()
	IncLogin(success bool)
	IncLogout()
	IncAuthRejected(reason string)
	IncSessionCacheHit()
	IncSessionCacheMiss()

	// Todo metrics
	IncTodoCreated()
	IncTodoUpdated()
	IncTodoDeleted()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
