package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncUserRegistered()            {}
func (n *NoopRecorder) IncLogin(success bool)         {}
func (n *NoopRecorder) IncLogout()                    {}
func (n *NoopRecorder) IncAuthRejected(reason string) {}
func (n *NoopRecorder) IncSessionCacheHit()           {}
func (n *NoopRecorder) IncSessionCacheMiss()          {}
func (n *NoopRecorder) IncTodoCreated()               {}
func (n *NoopRecorder) IncTodoUpdated()               {}
func (n *NoopRecorder) IncTodoDeleted()               {}
