// Package session tracks principals connected to the hosting runtime.
//
// The runtime reports connects, attribute changes and disconnects; the
// engine reads snapshots and queues terminations and messages that the
// runtime drains and applies on its own execution context.
package session

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	id "ipguard/pkg/domain"
)

// ErrNotConnected is returned when updating a principal with no session.
var ErrNotConnected = errors.New("principal not connected")

type Session struct {
	Principal   id.PrincipalID `json:"principal_id"`
	DisplayName string         `json:"display_name"`
	Address     string         `json:"address"`
	Elevated    bool           `json:"elevated"`
	Mode        string         `json:"mode,omitempty"`
	Permissions []string       `json:"permissions,omitempty"`
	ConnectedAt time.Time      `json:"connected_at"`
}

func (s Session) clone() Session {
	s.Permissions = slices.Clone(s.Permissions)
	return s
}

type EventType string

const (
	EventTerminate EventType = "terminate"
	EventMessage   EventType = "message"
)

// Event is an instruction for the hosting runtime.
type Event struct {
	Type EventType `json:"type"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

const (
	maxPendingEvents = 32
	// eventRetention bounds how long undrained events for departed
	// principals are kept.
	eventRetention = 10 * time.Minute
)

// Registry is the in-memory session directory.
type Registry struct {
	mu       sync.RWMutex
	sessions map[id.PrincipalID]Session
	events   map[id.PrincipalID][]Event
	now      func() time.Time
}

type Option func(*Registry)

func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[id.PrincipalID]Session),
		events:   make(map[id.PrincipalID][]Event),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Connect records a new session, replacing any previous one for the same
// principal.
func (r *Registry) Connect(s Session) Session {
	if s.ConnectedAt.IsZero() {
		s.ConnectedAt = r.now()
	}
	s = s.clone()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.Principal] = s
	delete(r.events, s.Principal)
	return s.clone()
}

// Update applies fn to the live session.
func (r *Registry) Update(principal id.PrincipalID, fn func(*Session)) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[principal]
	if !ok {
		return Session{}, ErrNotConnected
	}
	fn(&s)
	s.Principal = principal
	r.sessions[principal] = s.clone()
	return s.clone(), nil
}

// Disconnect removes the session and any undrained events. It reports
// whether a session existed.
func (r *Registry) Disconnect(principal id.PrincipalID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[principal]
	delete(r.sessions, principal)
	delete(r.events, principal)
	return ok
}

// Online returns the principals connected right now.
func (r *Registry) Online(_ context.Context) []id.PrincipalID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]id.PrincipalID, 0, len(r.sessions))
	for p := range r.sessions {
		out = append(out, p)
	}
	return out
}

func (r *Registry) Lookup(_ context.Context, principal id.PrincipalID) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[principal]
	return s.clone(), ok
}

// FindByName resolves a display name, ignoring case.
func (r *Registry) FindByName(name string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		if strings.EqualFold(s.DisplayName, name) {
			return s.clone(), true
		}
	}
	return Session{}, false
}

// List returns all sessions ordered by connect time.
func (r *Registry) List() []Session {
	r.mu.RLock()
	out := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s.clone())
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b Session) int { return a.ConnectedAt.Compare(b.ConnectedAt) })
	return out
}

// Terminate ends the session and queues a terminate event carrying reason.
// It is a no-op returning false when the principal is already gone.
func (r *Registry) Terminate(_ context.Context, principal id.PrincipalID, reason string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[principal]; !ok {
		return false
	}
	delete(r.sessions, principal)
	now := r.now()
	r.pruneLocked(now)
	r.pushLocked(principal, Event{Type: EventTerminate, Text: reason, At: now})
	return true
}

// Message queues text for a connected principal.
func (r *Registry) Message(_ context.Context, principal id.PrincipalID, text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[principal]; !ok {
		return false
	}
	r.pushLocked(principal, Event{Type: EventMessage, Text: text, At: r.now()})
	return true
}

// Drain returns and clears the pending events for principal.
func (r *Registry) Drain(principal id.PrincipalID) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev := r.events[principal]
	delete(r.events, principal)
	return ev
}

// pruneLocked drops queues of principals without a session whose newest
// event is older than eventRetention.
func (r *Registry) pruneLocked(now time.Time) {
	cutoff := now.Add(-eventRetention)
	for p, q := range r.events {
		if _, online := r.sessions[p]; online {
			continue
		}
		if len(q) == 0 || q[len(q)-1].At.Before(cutoff) {
			delete(r.events, p)
		}
	}
}

func (r *Registry) pushLocked(principal id.PrincipalID, ev Event) {
	q := append(r.events[principal], ev)
	if len(q) > maxPendingEvents {
		q = q[len(q)-maxPendingEvents:]
	}
	r.events[principal] = q
}
