package store

import (
	"context"
	"sync"
	"time"

	"ipguard/internal/trust/models"
	id "ipguard/pkg/domain"
)

// InMemory keeps records in a map. Used for development and tests.
type InMemory struct {
	mu      sync.RWMutex
	records map[id.PrincipalID]models.TrustRecord
	closed  bool
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[id.PrincipalID]models.TrustRecord)}
}

func (s *InMemory) SetTrustedAddress(_ context.Context, principal id.PrincipalID, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storeErr(backendMemory, "set", ErrClosed)
	}
	s.records[principal] = models.TrustRecord{PrincipalID: principal, Address: address, UpdatedAt: time.Now().UTC()}
	return nil
}

func (s *InMemory) GetTrustedAddress(_ context.Context, principal id.PrincipalID) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, storeErr(backendMemory, "get", ErrClosed)
	}
	rec, ok := s.records[principal]
	return rec.Address, ok, nil
}

func (s *InMemory) RemoveTrustedAddress(_ context.Context, principal id.PrincipalID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, storeErr(backendMemory, "remove", ErrClosed)
	}
	_, ok := s.records[principal]
	delete(s.records, principal)
	return ok, nil
}

func (s *InMemory) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
