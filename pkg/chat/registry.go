package chat

import (
	"sync"

	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/logger"
)

// DefaultSessionName is the name of the session auto-created at first use
const DefaultSessionName = "Default Session"

// SessionListener observes session lifecycle changes
type SessionListener func(Session)

// MessageListener observes messages appended to any session
type MessageListener func(sessionID string, msg Message)

// SessionRegistry owns the set of sessions and enforces that exactly one
// session is current whenever the registry is non-empty. All mutation goes
// through its methods; values handed out are copies.
type SessionRegistry struct {
	mu         sync.Mutex
	sessions   []*Session
	currentID  string
	onSession  []SessionListener
	onMessage  []MessageListener
	log        *logger.Logger
}

// NewSessionRegistry creates an empty registry. The first session is created
// lazily on first use.
func NewSessionRegistry(log *logger.Logger) *SessionRegistry {
	if log == nil {
		log = logger.Discard()
	}
	return &SessionRegistry{log: log.WithComponent("sessions")}
}

// OnSessionChanged registers a listener for current-session changes
func (r *SessionRegistry) OnSessionChanged(fn SessionListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onSession = append(r.onSession, fn)
}

// OnMessageAppended registers a listener for appended messages
func (r *SessionRegistry) OnMessageAppended(fn MessageListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onMessage = append(r.onMessage, fn)
}

// Create appends a new empty session, marks it current and demotes all
// others. An empty name gets a generated one.
func (r *SessionRegistry) Create(name string) Session {
	r.mu.Lock()

	if name == "" {
		name = DefaultSessionName
	}
	session := newSession(name)
	r.sessions = append(r.sessions, session)
	r.setCurrentLocked(session)
	snapshot := session.clone()
	listeners := append([]SessionListener(nil), r.onSession...)

	r.mu.Unlock()

	r.log.Debug("session %s created (%q)", snapshot.ID, snapshot.Name)
	for _, fn := range listeners {
		fn(snapshot)
	}
	return snapshot
}

// Current returns the current session, creating the default session if the
// registry is empty. The emptiness check and the creation share one critical
// section, so concurrent first calls agree on a single default session.
func (r *SessionRegistry) Current() Session {
	r.mu.Lock()
	if len(r.sessions) == 0 {
		session := newSession(DefaultSessionName)
		r.sessions = append(r.sessions, session)
		r.setCurrentLocked(session)
		snapshot := session.clone()
		listeners := append([]SessionListener(nil), r.onSession...)
		r.mu.Unlock()

		r.log.Debug("session %s created (%q)", snapshot.ID, snapshot.Name)
		for _, fn := range listeners {
			fn(snapshot)
		}
		return snapshot
	}
	defer r.mu.Unlock()
	return r.findLocked(r.currentID).clone()
}

// Get returns a session by id
func (r *SessionRegistry) Get(sessionID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session := r.findLocked(sessionID)
	if session == nil {
		return Session{}, false
	}
	return session.clone(), true
}

// Sessions returns all sessions in creation order
func (r *SessionRegistry) Sessions() []Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s.clone())
	}
	return out
}

// SwitchTo makes the given session current. Unknown ids are a no-op.
func (r *SessionRegistry) SwitchTo(sessionID string) {
	r.mu.Lock()

	session := r.findLocked(sessionID)
	if session == nil {
		r.mu.Unlock()
		r.log.Debug("switch to unknown session %s ignored", sessionID)
		return
	}
	if session.ID == r.currentID {
		r.mu.Unlock()
		return
	}
	r.setCurrentLocked(session)
	snapshot := session.clone()
	listeners := append([]SessionListener(nil), r.onSession...)

	r.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}

// Close removes a session. Closing the last remaining session fails with
// ErrCannotCloseLastSession. Closing the current session promotes the most
// recently created remaining session.
func (r *SessionRegistry) Close(sessionID string) error {
	r.mu.Lock()

	idx := -1
	for i, s := range r.sessions {
		if s.ID == sessionID {
			idx = i
			break
		}
	}
	if idx == -1 {
		r.mu.Unlock()
		return ErrSessionNotFound
	}
	if len(r.sessions) == 1 {
		r.mu.Unlock()
		return ErrCannotCloseLastSession
	}

	wasCurrent := r.currentID == sessionID
	r.sessions = append(r.sessions[:idx], r.sessions[idx+1:]...)

	var promoted Session
	if wasCurrent {
		next := r.sessions[len(r.sessions)-1]
		r.setCurrentLocked(next)
		promoted = next.clone()
	}
	listeners := append([]SessionListener(nil), r.onSession...)

	r.mu.Unlock()

	r.log.Debug("session %s closed", sessionID)
	if wasCurrent {
		for _, fn := range listeners {
			fn(promoted)
		}
	}
	return nil
}

// Append adds a message to a session's history. Appending to a vanished
// session returns ErrSessionNotFound; the caller logs and drops the message
// rather than resurrecting the session.
func (r *SessionRegistry) Append(sessionID string, msg Message) error {
	r.mu.Lock()

	session := r.findLocked(sessionID)
	if session == nil {
		r.mu.Unlock()
		return ErrSessionNotFound
	}
	session.appendMessage(msg)
	listeners := append([]MessageListener(nil), r.onMessage...)

	r.mu.Unlock()

	for _, fn := range listeners {
		fn(sessionID, msg)
	}
	return nil
}

// Clear drops a session's messages and metrics without closing it
func (r *SessionRegistry) Clear(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session := r.findLocked(sessionID)
	if session == nil {
		return ErrSessionNotFound
	}
	session.clear()
	return nil
}

// Rename updates a session's display name
func (r *SessionRegistry) Rename(sessionID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session := r.findLocked(sessionID)
	if session == nil {
		return ErrSessionNotFound
	}
	session.Name = name
	return nil
}

// Len returns the number of sessions
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *SessionRegistry) findLocked(sessionID string) *Session {
	for _, s := range r.sessions {
		if s.ID == sessionID {
			return s
		}
	}
	return nil
}

func (r *SessionRegistry) setCurrentLocked(session *Session) {
	for _, s := range r.sessions {
		s.IsCurrent = false
	}
	session.IsCurrent = true
	r.currentID = session.ID
}
