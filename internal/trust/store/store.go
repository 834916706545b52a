// Package store persists trusted addresses keyed by principal ID. Every
// backend implements Store; Open picks one from configuration.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ipguard/internal/platform/metrics"
	id "ipguard/pkg/domain"
	"ipguard/pkg/platform/sentinel"
)

const (
	backendMemory   = "memory"
	backendFile     = "file"
	backendSQLite   = "sqlite"
	backendPostgres = "postgres"
	backendRedis    = "redis"
)

// ErrClosed is wrapped in the Error returned by any call after Shutdown.
var ErrClosed = errors.New("trust store is shut down")

// Store maps a principal to its trusted address. Implementations are safe for
// concurrent use and give read-after-write consistency within one process.
type Store interface {
	// SetTrustedAddress upserts the record. Repeating a call is a no-op.
	SetTrustedAddress(ctx context.Context, principal id.PrincipalID, address string) error
	// GetTrustedAddress returns found=false with a nil error when no record exists.
	GetTrustedAddress(ctx context.Context, principal id.PrincipalID) (address string, found bool, err error)
	// RemoveTrustedAddress reports whether a record existed and was deleted.
	RemoveTrustedAddress(ctx context.Context, principal id.PrincipalID) (bool, error)
	// Shutdown releases backend resources. It is idempotent.
	Shutdown() error
}

// Pinger is implemented by networked backends.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks backend connectivity when s supports it.
func Ping(ctx context.Context, s Store) error {
	if p, ok := s.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Error is a storage failure. It matches sentinel.ErrUnavailable.
type Error struct {
	Backend string
	Op      string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("trust store %s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == sentinel.ErrUnavailable }

func storeErr(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Backend: backend, Op: op, Err: err}
}

type instrumented struct {
	next    Store
	backend string
	metrics *metrics.Metrics
}

// Instrument records per-operation latency for s.
func Instrument(s Store, backend string, m *metrics.Metrics) Store {
	if m == nil {
		return s
	}
	return &instrumented{next: s, backend: backend, metrics: m}
}

func (i *instrumented) observe(op string, start time.Time) {
	i.metrics.ObserveStore(i.backend, op, time.Since(start).Seconds())
}

func (i *instrumented) SetTrustedAddress(ctx context.Context, principal id.PrincipalID, address string) error {
	defer i.observe("set", time.Now())
	return i.next.SetTrustedAddress(ctx, principal, address)
}

func (i *instrumented) GetTrustedAddress(ctx context.Context, principal id.PrincipalID) (string, bool, error) {
	defer i.observe("get", time.Now())
	return i.next.GetTrustedAddress(ctx, principal)
}

func (i *instrumented) RemoveTrustedAddress(ctx context.Context, principal id.PrincipalID) (bool, error) {
	defer i.observe("remove", time.Now())
	return i.next.RemoveTrustedAddress(ctx, principal)
}

func (i *instrumented) Shutdown() error { return i.next.Shutdown() }

func (i *instrumented) Ping(ctx context.Context) error { return Ping(ctx, i.next) }
