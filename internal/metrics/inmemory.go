package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered    uint64
	LoginsSucceeded    uint64
	LoginsFailed       uint64
	Logouts            uint64
	AuthRejected       map[string]uint64
	SessionCacheHits   uint64
	SessionCacheMisses uint64
	TodosCreated       uint64
	TodosUpdated       uint64
	TodosDeleted       uint64
}

// InMemoryRecorder keeps counters in process memory. It backs the
// /metrics endpoint and is safe for concurrent use.
type InMemoryRecorder struct {
	usersRegistered    atomic.Uint64
	loginsSucceeded    atomic.Uint64
	loginsFailed       atomic.Uint64
	logouts            atomic.Uint64
	authRejected       map[string]*atomic.Uint64 // fixed key set, never written after construction
	sessionCacheHits   atomic.Uint64
	sessionCacheMisses atomic.Uint64
	todosCreated       atomic.Uint64
	todosUpdated       atomic.Uint64
	todosDeleted       atomic.Uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	m := &InMemoryRecorder{authRejected: make(map[string]*atomic.Uint64, len(RejectReasons))}
	for _, r := range RejectReasons {
		m.authRejected[r] = new(atomic.Uint64)
	}
	return m
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	rejected := make(map[string]uint64, len(m.authRejected))
	for r, c := range m.authRejected {
		rejected[r] = c.Load()
	}
	return Snapshot{
		UsersRegistered:    m.usersRegistered.Load(),
		LoginsSucceeded:    m.loginsSucceeded.Load(),
		LoginsFailed:       m.loginsFailed.Load(),
		Logouts:            m.logouts.Load(),
		AuthRejected:       rejected,
		SessionCacheHits:   m.sessionCacheHits.Load(),
		SessionCacheMisses: m.sessionCacheMisses.Load(),
		TodosCreated:       m.todosCreated.Load(),
		TodosUpdated:       m.todosUpdated.Load(),
		TodosDeleted:       m.todosDeleted.Load(),
	}
}

func (m *InMemoryRecorder) IncUserRegistered() { m.usersRegistered.Add(1) }

func (m *InMemoryRecorder) IncLogin(success bool) {
	if success {
		m.loginsSucceeded.Add(1)
		return
	}
	m.loginsFailed.Add(1)
}

func (m *InMemoryRecorder) IncLogout() { m.logouts.Add(1) }

// IncAuthRejected counts a rejection; unknown reasons fold into ReasonInternal.
func (m *InMemoryRecorder) IncAuthRejected(reason string) {
	c, ok := m.authRejected[reason]
	if !ok {
		c = m.authRejected[ReasonInternal]
	}
	c.Add(1)
}

func (m *InMemoryRecorder) IncSessionCacheHit()  { m.sessionCacheHits.Add(1) }
func (m *InMemoryRecorder) IncSessionCacheMiss() { m.sessionCacheMisses.Add(1) }
func (m *InMemoryRecorder) IncTodoCreated()      { m.todosCreated.Add(1) }
func (m *InMemoryRecorder) IncTodoUpdated()      { m.todosUpdated.Add(1) }
func (m *InMemoryRecorder) IncTodoDeleted()      { m.todosDeleted.Add(1) }
