// Package guard schedules trust verification.
//
// Two triggers feed the same path: a fixed-interval sweep over every
// connected principal, and a one-shot check fired a short delay after a
// session starts. A DENY decision is remediated by terminating the session,
// optionally minting an approval token and notifying operators.
package guard

//go:generate mockgen -source=engine.go -destination=mocks/mocks.go -package=mocks Sessions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"ipguard/internal/approval"
	"ipguard/internal/notify"
	"ipguard/internal/platform/config"
	"ipguard/internal/platform/metrics"
	"ipguard/internal/policy"
	"ipguard/internal/session"
	id "ipguard/pkg/domain"
	gsync "ipguard/pkg/platform/sync"
)

const (
	TriggerSweep = "sweep"
	TriggerJoin  = "join"
)

// Sessions is the hosting runtime as seen by the engine.
type Sessions interface {
	Online(ctx context.Context) []id.PrincipalID
	Lookup(ctx context.Context, principal id.PrincipalID) (session.Session, bool)
	// Terminate ends the session and reports whether one was live.
	Terminate(ctx context.Context, principal id.PrincipalID, reason string) bool
	Message(ctx context.Context, principal id.PrincipalID, text string) bool
}

// Evaluator decides ALLOW or DENY for a session.
type Evaluator interface {
	Evaluate(ctx context.Context, attrs policy.Attributes) policy.Decision
}

// Tokens mints approval tokens.
type Tokens interface {
	Register(p approval.PendingApproval) (approval.PendingApproval, error)
}

// Links renders the operator-facing URL for an approval.
type Links interface {
	URL(p approval.PendingApproval) (string, error)
}

type Config struct {
	Interval       time.Duration
	JoinCheckDelay time.Duration
	Workers        int
	SendVerified   bool
	ButtonEnabled  bool
	ButtonLabel    string
}

func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Interval:       cfg.Policy.Interval,
		JoinCheckDelay: cfg.Policy.JoinCheckDelay,
		Workers:        cfg.Policy.Workers,
		SendVerified:   cfg.Notifications.SendVerified,
		ButtonEnabled:  cfg.Approval.ButtonEnabled,
		ButtonLabel:    cfg.Approval.ButtonLabel,
	}
}

// SweepResult summarizes one sweep.
type SweepResult struct {
	Evaluated int `json:"evaluated"`
	Denied    int `json:"denied"`
	Skipped   int `json:"skipped"`
}

type Engine struct {
	cfg        Config
	sessions   Sessions
	evaluator  Evaluator
	dispatcher notify.Dispatcher
	catalog    *notify.Catalog
	tokens     Tokens
	links      Links
	locks      *gsync.ShardedMutex
	metrics    *metrics.Metrics
	logger     *slog.Logger
	tracer     trace.Tracer

	mu      sync.Mutex
	timers  map[id.PrincipalID]*time.Timer
	stopped bool
	checks  sync.WaitGroup
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithTokens enables approval offers when Config.ButtonEnabled is set.
func WithTokens(t Tokens) Option {
	return func(e *Engine) { e.tokens = t }
}

func WithLinks(l Links) Option {
	return func(e *Engine) { e.links = l }
}

func New(cfg Config, sessions Sessions, evaluator Evaluator, dispatcher notify.Dispatcher, catalog *notify.Catalog, opts ...Option) (*Engine, error) {
	if cfg.Interval <= 0 {
		return nil, errors.New("sweep interval must be positive")
	}
	if sessions == nil {
		return nil, errors.New("session directory is required")
	}
	if evaluator == nil {
		return nil, errors.New("evaluator is required")
	}
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if catalog == nil {
		return nil, errors.New("message catalog is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.ButtonLabel == "" {
		cfg.ButtonLabel = "Add IP"
	}

	e := &Engine{
		cfg:        cfg,
		sessions:   sessions,
		evaluator:  evaluator,
		dispatcher: dispatcher,
		catalog:    catalog,
		locks:      gsync.NewShardedMutex(0),
		logger:     slog.Default(),
		tracer:     defaultTracer(),
		timers:     make(map[id.PrincipalID]*time.Timer),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

// Start sweeps immediately and then every interval until ctx is cancelled.
// A sweep in flight when ctx ends runs to completion.
func (e *Engine) Start(ctx context.Context) error {
	e.sweepAndLog(ctx)

	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.sweepAndLog(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (e *Engine) sweepAndLog(ctx context.Context) {
	if _, err := e.RunOnce(context.WithoutCancel(ctx)); err != nil {
		e.logger.ErrorContext(ctx, "sweep completed with errors", "error", err)
	}
}

// RunOnce evaluates every connected principal once. Principals that
// disconnect before their turn are skipped. Per-principal failures are
// joined into the returned error; they never abort the sweep.
func (e *Engine) RunOnce(ctx context.Context) (SweepResult, error) {
	ctx, span := e.startSpan(ctx, "guard.sweep")
	start := time.Now()

	online := e.sessions.Online(ctx)

	var (
		mu   sync.Mutex
		res  SweepResult
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for _, principal := range online {
		g.Go(func() error {
			sess, ok := e.sessions.Lookup(gctx, principal)
			if !ok {
				mu.Lock()
				res.Skipped++
				mu.Unlock()
				return nil
			}
			d, err := e.check(gctx, sess, TriggerSweep)

			mu.Lock()
			defer mu.Unlock()
			res.Evaluated++
			if !d.Allowed() {
				res.Denied++
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("principal %s: %w", principal, err))
			}
			return nil
		})
	}
	_ = g.Wait()

	err := errors.Join(errs...)
	e.metrics.ObserveSweep(time.Since(start).Seconds(), len(online))
	span.SetAttributes(
		attribute.Int("guard.online", len(online)),
		attribute.Int("guard.evaluated", res.Evaluated),
		attribute.Int("guard.denied", res.Denied),
	)
	endSpan(span, err)

	e.logger.DebugContext(ctx, "sweep finished",
		"online", len(online),
		"evaluated", res.Evaluated,
		"denied", res.Denied,
		"skipped", res.Skipped,
	)
	return res, err
}

// OnSessionStart schedules the join-check for principal after the settling
// delay. A later call for the same principal replaces the pending check.
func (e *Engine) OnSessionStart(principal id.PrincipalID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	if t, ok := e.timers[principal]; ok && t.Stop() {
		e.checks.Done()
	}

	e.checks.Add(1)
	var t *time.Timer
	t = time.AfterFunc(e.cfg.JoinCheckDelay, func() {
		defer e.checks.Done()
		e.mu.Lock()
		if e.timers[principal] == t {
			delete(e.timers, principal)
		}
		e.mu.Unlock()
		e.JoinCheck(context.Background(), principal)
	})
	e.timers[principal] = t
}

// JoinCheck evaluates principal once if it is still connected. It reports
// false when the session was already gone.
func (e *Engine) JoinCheck(ctx context.Context, principal id.PrincipalID) (policy.Decision, bool) {
	ctx, span := e.startSpan(ctx, "guard.join_check", attribute.String("principal_id", principal.String()))

	sess, ok := e.sessions.Lookup(ctx, principal)
	if !ok {
		span.SetAttributes(attribute.Bool("guard.disconnected", true))
		endSpan(span, nil)
		return policy.Decision{}, false
	}

	d, err := e.check(ctx, sess, TriggerJoin)
	if err != nil {
		e.logger.ErrorContext(ctx, "join check failed", "principal_id", principal.String(), "error", err)
	}
	if d.Allowed() && d.Subject && e.cfg.SendVerified {
		v := vars(sess)
		e.sessions.Message(ctx, principal, e.catalog.VerifiedMessage(v))
		e.send(ctx, e.catalog.Build(notify.KindVerified, v))
	}
	endSpan(span, err)
	return d, true
}

// Stop cancels pending join-checks and waits for running ones.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.stopped = true
	for p, t := range e.timers {
		if t.Stop() {
			e.checks.Done()
		}
		delete(e.timers, p)
	}
	e.mu.Unlock()
	e.checks.Wait()
}

func (e *Engine) check(ctx context.Context, sess session.Session, trigger string) (policy.Decision, error) {
	d := e.evaluator.Evaluate(ctx, attributes(sess))
	e.metrics.IncEvaluation(trigger, string(d.Outcome))
	if d.Allowed() {
		return d, nil
	}
	return d, e.remediate(ctx, sess, d, trigger)
}

// remediate runs terminate, build, register and dispatch in that order. The
// token is registered before dispatch so it is consumable on arrival.
func (e *Engine) remediate(ctx context.Context, sess session.Session, d policy.Decision, trigger string) error {
	key := sess.Principal.String()
	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	ctx, span := e.startSpan(ctx, "guard.remediate",
		attribute.String("principal_id", key),
		attribute.String("guard.trigger", trigger),
		attribute.String("guard.reason", string(d.Reason)),
	)

	v := vars(sess)
	if !e.sessions.Terminate(ctx, sess.Principal, e.catalog.KickMessage(v)) {
		e.logger.DebugContext(ctx, "principal already disconnected", "principal_id", key)
	}

	n := e.catalog.Build(notify.KindInvalid, v)
	n.Fields = append(n.Fields, notify.Field{Name: "Reason", Value: string(d.Reason)})

	var err error
	if e.cfg.ButtonEnabled && e.tokens != nil {
		n.Action, err = e.offer(sess)
	}

	e.logger.InfoContext(ctx, "session terminated",
		"event", "untrusted_address",
		"log_type", "audit",
		"principal_id", key,
		"address", sess.Address,
		"reason", string(d.Reason),
		"trigger", trigger,
	)
	e.metrics.IncRemediation(trigger)
	e.send(ctx, n)

	endSpan(span, err)
	return err
}

func (e *Engine) offer(sess session.Session) (*notify.Action, error) {
	p, err := e.tokens.Register(approval.PendingApproval{
		Principal:   sess.Principal,
		DisplayName: sess.DisplayName,
		Address:     sess.Address,
	})
	if err != nil {
		return nil, fmt.Errorf("register approval token: %w", err)
	}
	e.metrics.IncTokenIssued()

	action := &notify.Action{Token: p.Token, Label: e.cfg.ButtonLabel}
	if e.links != nil {
		url, err := e.links.URL(p)
		if err != nil {
			return action, fmt.Errorf("sign approval link: %w", err)
		}
		action.URL = url
	}
	return action, nil
}

func (e *Engine) send(ctx context.Context, n notify.Notification) {
	if err := e.dispatcher.Send(ctx, n); err != nil {
		e.logger.WarnContext(ctx, "notification not dispatched",
			"kind", string(n.Kind),
			"principal_id", n.Principal.String(),
			"error", err,
		)
	}
}

// LogMethods reports the enabled protection methods at startup.
func LogMethods(ctx context.Context, logger *slog.Logger, cfg policy.Config) {
	if !cfg.Enabled {
		logger.WarnContext(ctx, "trust checking disabled")
		return
	}
	logger.InfoContext(ctx, "trust checking enabled",
		"elevated", cfg.CheckElevated,
		"sensitive_mode", cfg.CheckSensitiveMode,
		"mode", cfg.SensitiveMode,
		"permissions", cfg.Permissions,
	)
}

func attributes(s session.Session) policy.Attributes {
	return policy.Attributes{
		Principal:   s.Principal,
		DisplayName: s.DisplayName,
		Address:     s.Address,
		Elevated:    s.Elevated,
		Mode:        s.Mode,
		Permissions: s.Permissions,
	}
}

func vars(s session.Session) notify.Vars {
	return notify.Vars{Principal: s.Principal, Player: s.DisplayName, Address: s.Address}
}
