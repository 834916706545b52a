// Package service implements administrative trust management: setting,
// removing and reading the trusted address of a principal referenced by id
// or by the display name of a connected session.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Resolver

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ipguard/internal/notify"
	"ipguard/internal/session"
	"ipguard/internal/trust/models"
	id "ipguard/pkg/domain"
	dErrors "ipguard/pkg/domain-errors"
	"ipguard/pkg/validation"
)

type Store interface {
	SetTrustedAddress(ctx context.Context, principal id.PrincipalID, address string) error
	GetTrustedAddress(ctx context.Context, principal id.PrincipalID) (string, bool, error)
	RemoveTrustedAddress(ctx context.Context, principal id.PrincipalID) (bool, error)
}

// Resolver finds connected sessions by id or display name.
type Resolver interface {
	Lookup(ctx context.Context, principal id.PrincipalID) (session.Session, bool)
	FindByName(name string) (session.Session, bool)
}

type Service struct {
	store      Store
	resolver   Resolver
	dispatcher notify.Dispatcher
	catalog    *notify.Catalog
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithResolver allows references by display name.
func WithResolver(r Resolver) Option {
	return func(s *Service) { s.resolver = r }
}

// WithNotifications reports every outcome to operators.
func WithNotifications(d notify.Dispatcher, c *notify.Catalog) Option {
	return func(s *Service) {
		if d != nil && c != nil {
			s.dispatcher, s.catalog = d, c
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("trust store is required")
	}
	s := &Service{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// target is a resolved principal reference.
type target struct {
	principal id.PrincipalID
	name      string
}

func (t target) vars(address string) notify.Vars {
	name := t.name
	if name == "" {
		name = t.principal.String()
	}
	return notify.Vars{Principal: t.principal, Player: name, Address: address}
}

// Set trusts address for the principal named by ref.
func (s *Service) Set(ctx context.Context, ref, address string) (*models.TrustRecord, error) {
	address = strings.TrimSpace(address)
	t, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateIP(address); err != nil {
		s.notify(ctx, notify.KindInvalidAddress, t.vars(address))
		return nil, err
	}

	if err := s.store.SetTrustedAddress(ctx, t.principal, address); err != nil {
		s.logger.ErrorContext(ctx, "failed to set trusted address",
			"principal_id", t.principal.String(),
			"error", err,
		)
		s.notify(ctx, notify.KindSetIPFailed, t.vars(address))
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to store trusted address")
	}

	s.logAudit(ctx, "trust_set", "principal_id", t.principal.String(), "address", address)
	s.notify(ctx, notify.KindSetIPSuccess, t.vars(address))
	return &models.TrustRecord{PrincipalID: t.principal, Address: address, UpdatedAt: s.now()}, nil
}

// Remove deletes the trust record for ref. A missing record is NotFound.
func (s *Service) Remove(ctx context.Context, ref string) error {
	t, err := s.resolve(ctx, ref)
	if err != nil {
		return err
	}

	existed, err := s.store.RemoveTrustedAddress(ctx, t.principal)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to remove trusted address",
			"principal_id", t.principal.String(),
			"error", err,
		)
		s.notify(ctx, notify.KindRemoveIPFailed, t.vars(""))
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to remove trusted address")
	}
	if !existed {
		s.notify(ctx, notify.KindRemoveIPFailed, t.vars(""))
		return dErrors.New(dErrors.CodeNotFound, "no trusted address for principal")
	}

	s.logAudit(ctx, "trust_removed", "principal_id", t.principal.String())
	s.notify(ctx, notify.KindRemoveIPSuccess, t.vars(""))
	return nil
}

// Get returns the trust record for ref.
func (s *Service) Get(ctx context.Context, ref string) (*models.TrustRecord, error) {
	t, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	address, found, err := s.store.GetTrustedAddress(ctx, t.principal)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to read trusted address")
	}
	if !found {
		return nil, dErrors.New(dErrors.CodeNotFound, "no trusted address for principal")
	}
	return &models.TrustRecord{PrincipalID: t.principal, Address: address}, nil
}

// resolve accepts a principal id, or the display name of a connected
// session when a resolver is configured.
func (s *Service) resolve(ctx context.Context, ref string) (target, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return target{}, dErrors.New(dErrors.CodeInvalidInput, "principal reference is required")
	}
	if principal, err := id.ParsePrincipalID(ref); err == nil {
		t := target{principal: principal}
		if s.resolver != nil {
			if sess, ok := s.resolver.Lookup(ctx, principal); ok {
				t.name = sess.DisplayName
			}
		}
		return t, nil
	}
	if s.resolver != nil {
		if sess, ok := s.resolver.FindByName(ref); ok {
			return target{principal: sess.Principal, name: sess.DisplayName}, nil
		}
	}
	s.notify(ctx, notify.KindNotFound, notify.Vars{Player: ref})
	return target{}, dErrors.New(dErrors.CodeNotFound, "unknown principal "+ref)
}

func (s *Service) notify(ctx context.Context, kind notify.Kind, v notify.Vars) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Send(ctx, s.catalog.Build(kind, v)); err != nil {
		s.logger.WarnContext(ctx, "trust notification not sent", "kind", string(kind), "error", err)
	}
}

func (s *Service) logAudit(ctx context.Context, event string, attrs ...any) {
	args := append([]any{"event", event, "log_type", "audit"}, attrs...)
	s.logger.InfoContext(ctx, event, args...)
}
