package notify

import (
	"context"
	"errors"
	"log/slog"

	"ipguard/internal/platform/metrics"
)

// Sink is a named dispatcher.
type Sink struct {
	Name       string
	Dispatcher Dispatcher
}

// Fanout sends every notification to all sinks. One failing sink does not
// stop the others.
type Fanout struct {
	sinks   []Sink
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type FanoutOption func(*Fanout)

func WithFanoutMetrics(m *metrics.Metrics) FanoutOption {
	return func(f *Fanout) { f.metrics = m }
}

func WithFanoutLogger(logger *slog.Logger) FanoutOption {
	return func(f *Fanout) {
		if logger != nil {
			f.logger = logger
		}
	}
}

func NewFanout(sinks []Sink, opts ...FanoutOption) *Fanout {
	f := &Fanout{logger: slog.Default()}
	for _, s := range sinks {
		if s.Dispatcher != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Len reports the number of configured sinks.
func (f *Fanout) Len() int { return len(f.sinks) }

func (f *Fanout) Send(ctx context.Context, n Notification) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Dispatcher.Send(ctx, n); err != nil {
			f.metrics.IncDispatch(s.Name, "failed")
			f.logger.WarnContext(ctx, "notification dispatch failed",
				"sink", s.Name,
				"kind", string(n.Kind),
				"error", err,
			)
			errs = append(errs, err)
			continue
		}
		f.metrics.IncDispatch(s.Name, "sent")
	}
	return errors.Join(errs...)
}
