package approval

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks TrustWriter

import (
	"context"
	"errors"
	"log/slog"

	"ipguard/internal/notify"
	"ipguard/internal/platform/metrics"
	id "ipguard/pkg/domain"
	dErrors "ipguard/pkg/domain-errors"
)

// TrustWriter persists an approved address.
type TrustWriter interface {
	SetTrustedAddress(ctx context.Context, principal id.PrincipalID, address string) error
}

// Outcome is the result of an operator approval action.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeIgnored Outcome = "ignored"
	OutcomeFailed  Outcome = "failed"
)

// Service handles operator approval actions.
type Service struct {
	tokens     Consumer
	trust      TrustWriter
	dispatcher notify.Dispatcher
	catalog    *notify.Catalog
	links      *LinkSigner
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLinkSigner enables ApproveLink.
func WithLinkSigner(l *LinkSigner) Option {
	return func(s *Service) { s.links = l }
}

func New(tokens Consumer, trust TrustWriter, dispatcher notify.Dispatcher, catalog *notify.Catalog, opts ...Option) (*Service, error) {
	if tokens == nil {
		return nil, errors.New("approval registry is required")
	}
	if trust == nil {
		return nil, errors.New("trust store is required")
	}
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if catalog == nil {
		return nil, errors.New("message catalog is required")
	}
	s := &Service{
		tokens:     tokens,
		trust:      trust,
		dispatcher: dispatcher,
		catalog:    catalog,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Approve consumes token and trusts the proposed address. An unknown,
// expired or already used token changes nothing and reports OutcomeIgnored.
// A store failure notifies the operator and returns an unavailable error.
func (s *Service) Approve(ctx context.Context, token id.ApprovalToken) (Outcome, error) {
	p, ok := s.tokens.Consume(token)
	if !ok {
		s.metrics.IncTokenConsumed(string(OutcomeIgnored))
		s.logger.InfoContext(ctx, "approval token ignored", "token", token.String())
		return OutcomeIgnored, nil
	}

	vars := notify.Vars{Principal: p.Principal, Player: p.DisplayName, Address: p.Address}
	if err := s.trust.SetTrustedAddress(ctx, p.Principal, p.Address); err != nil {
		s.metrics.IncTokenConsumed(string(OutcomeFailed))
		s.logger.ErrorContext(ctx, "approval write failed",
			"principal_id", p.Principal.String(),
			"address", p.Address,
			"error", err,
		)
		s.send(ctx, s.catalog.Build(notify.KindApprovalFailed, vars))
		return OutcomeFailed, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to store trusted address")
	}

	s.metrics.IncTokenConsumed(string(OutcomeApplied))
	s.logger.InfoContext(ctx, "address approved",
		"event", "trust_approved",
		"log_type", "audit",
		"principal_id", p.Principal.String(),
		"address", p.Address,
	)
	s.send(ctx, s.catalog.Build(notify.KindApprovalSuccess, vars))
	return OutcomeApplied, nil
}

// ApproveLink verifies a signed approval link and approves its token.
func (s *Service) ApproveLink(ctx context.Context, signed string) (Outcome, error) {
	if s.links == nil {
		return "", dErrors.New(dErrors.CodeNotFound, "approval links are disabled")
	}
	token, err := s.links.Verify(signed)
	if err != nil {
		return "", err
	}
	return s.Approve(ctx, token)
}

// send never fails the approval; a committed trust write stays committed.
func (s *Service) send(ctx context.Context, n notify.Notification) {
	if err := s.dispatcher.Send(ctx, n); err != nil {
		s.logger.WarnContext(ctx, "approval notification not sent",
			"kind", string(n.Kind),
			"error", err,
		)
	}
}
