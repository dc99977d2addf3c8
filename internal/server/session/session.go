// Package session holds per-client session state: the optional authenticated
// identity, the current CSRF token, and the last-submission timestamp used by
// the rate limiter. Sessions live in process memory and are keyed by an
// opaque ID; expiry policy is left to the deployment.
package session

import (
	"sync"
	"time"

	"github.com/avelichko/formdesk/internal/common"
	"github.com/google/uuid"
)

// Identity references the authenticated account attached to a session.
// A nil Identity means the session is anonymous.
type Identity struct {
	AccountID int64
	Name      string
	Email     string
}

// Session is the per-client state. It is owned by the Manager; handlers for
// the same client are not expected to overlap, and when they do the result
// is last-writer-wins.
type Session struct {
	ID             string
	Identity       *Identity
	CSRFToken      string
	LastSubmission time.Time
	CreatedAt      time.Time

	// CalcHistory keeps recent calculator lines for the session, newest
	// last, capped by historyCap.
	CalcHistory []string
}

const historyCap = 20

// Manager allocates and tracks sessions. Safe for concurrent use across
// clients.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Start resolves the session for a client. A known id returns the existing
// state; an unknown or empty id allocates a fresh session with a new CSRF
// token, so creation is idempotent per client.
func (m *Manager) Start(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		return s
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		// crypto/rand failure is unrecoverable; an unguessable token is a
		// hard requirement.
		panic(err)
	}

	s := &Session{
		ID:        uuid.NewString(),
		CSRFToken: token,
		CreatedAt: m.now(),
	}
	m.sessions[s.ID] = s
	return s
}

// Get returns the session for id without allocating.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Authenticate attaches identity to the session, replacing any previous one;
// a session never holds more than one identity.
func (m *Manager) Authenticate(s *Session, identity Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.Identity = &identity
}

// Logout detaches the identity only. The CSRF token and rate-limit state
// survive auth transitions.
func (m *Manager) Logout(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.Identity = nil
}

// RotateCSRF replaces the session's CSRF token with a fresh random value.
// Called after every successful state-changing submission so a stale form
// cannot be replayed.
func (m *Manager) RotateCSRF(s *Session) {
	token, err := common.MakeRandHexString(32)
	if err != nil {
		panic(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s.CSRFToken = token
}

// MarkSubmission stamps the time of the latest successful submission.
func (m *Manager) MarkSubmission(s *Session, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.LastSubmission = at
}

// AppendHistory records a calculator line on the session, dropping the
// oldest entries past the cap.
func (m *Manager) AppendHistory(s *Session, line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.CalcHistory = append(s.CalcHistory, line)
	if len(s.CalcHistory) > historyCap {
		s.CalcHistory = s.CalcHistory[len(s.CalcHistory)-historyCap:]
	}
}

// ClearHistory empties the session's calculator history.
func (m *Manager) ClearHistory(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.CalcHistory = nil
}

// Destroy removes the session entirely. The next contact from the client
// starts an anonymous session with a fresh CSRF token.
func (m *Manager) Destroy(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
