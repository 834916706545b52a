package policy

//go:generate mockgen -source=evaluator.go -destination=mocks/mocks.go -package=mocks TrustReader

import (
	"context"
	"errors"
	"log/slog"

	id "ipguard/pkg/domain"
)

// TrustReader is the read side of the trust store.
type TrustReader interface {
	GetTrustedAddress(ctx context.Context, principal id.PrincipalID) (string, bool, error)
}

// Evaluator combines a store read with Decide.
type Evaluator struct {
	cfg    Config
	trust  TrustReader
	logger *slog.Logger
}

type Option func(*Evaluator)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func NewEvaluator(cfg Config, trust TrustReader, opts ...Option) (*Evaluator, error) {
	if trust == nil {
		return nil, errors.New("trust reader is required")
	}
	e := &Evaluator{cfg: cfg, trust: trust, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

// Config returns the policy the evaluator applies.
func (e *Evaluator) Config() Config { return e.cfg }

// Evaluate reads the trust store only when a is subject to checking. A read
// error yields DENY.
func (e *Evaluator) Evaluate(ctx context.Context, a Attributes) Decision {
	if !RequiresTrustCheck(e.cfg, a) {
		return Decide(e.cfg, a, Trust{})
	}

	var t Trust
	t.Address, t.Found, t.Err = e.trust.GetTrustedAddress(ctx, a.Principal)
	if t.Err != nil {
		e.logger.ErrorContext(ctx, "trust lookup failed, denying",
			"principal_id", a.Principal.String(),
			"error", t.Err,
		)
	}
	return Decide(e.cfg, a, t)
}
