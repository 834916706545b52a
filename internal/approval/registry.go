// Package approval implements the one-click operator approval flow: a
// registry of single-use tokens, its cleanup worker, signed approval links
// and the service that turns a consumed token into a trust record.
package approval

import (
	"errors"
	"sync"
	"time"

	id "ipguard/pkg/domain"
)

// ErrDuplicateToken is returned when registering a token that is already
// pending.
var ErrDuplicateToken = errors.New("approval token already registered")

// PendingApproval binds a token to the address an operator may approve.
type PendingApproval struct {
	Token       id.ApprovalToken
	Principal   id.PrincipalID
	DisplayName string
	Address     string
	CreatedAt   time.Time
	// ExpiresAt is zero when tokens never expire.
	ExpiresAt time.Time
}

func (p PendingApproval) expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && !now.Before(p.ExpiresAt)
}

// Consumer takes a pending approval out of the registry.
type Consumer interface {
	Consume(token id.ApprovalToken) (PendingApproval, bool)
}

// Registry is the process-wide in-memory token store. It is not persisted.
type Registry struct {
	mu      sync.Mutex
	pending map[id.ApprovalToken]PendingApproval
	ttl     time.Duration
	now     func() time.Time
}

type RegistryOption func(*Registry)

// WithTTL sets how long a token stays consumable. Zero keeps tokens until
// they are consumed.
func WithTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) {
		if ttl >= 0 {
			r.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		pending: make(map[id.ApprovalToken]PendingApproval),
		ttl:     24 * time.Hour,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Register stores p, minting a token when p.Token is empty, and returns the
// stored entry.
func (r *Registry) Register(p PendingApproval) (PendingApproval, error) {
	if p.Principal.IsNil() {
		return PendingApproval{}, errors.New("principal is required")
	}
	if p.Token.IsNil() {
		p.Token = id.NewApprovalToken()
	}
	p.CreatedAt = r.now()
	p.ExpiresAt = time.Time{}
	if r.ttl > 0 {
		p.ExpiresAt = p.CreatedAt.Add(r.ttl)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.pending[p.Token]; exists {
		return PendingApproval{}, ErrDuplicateToken
	}
	r.pending[p.Token] = p
	return p, nil
}

// Consume removes and returns the approval for token. Exactly one caller
// observes a given token; later calls, and calls after expiry, get false.
func (r *Registry) Consume(token id.ApprovalToken) (PendingApproval, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[token]
	if !ok {
		return PendingApproval{}, false
	}
	delete(r.pending, token)
	if p.expired(r.now()) {
		return PendingApproval{}, false
	}
	return p, true
}

// Sweep drops approvals expired at now and returns how many were removed.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int
	for token, p := range r.pending {
		if p.expired(now) {
			delete(r.pending, token)
			removed++
		}
	}
	return removed
}

// Len reports the number of pending approvals, expired ones included until
// the next sweep.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
