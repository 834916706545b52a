package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrBufferFull is returned when the async queue cannot take a notification.
var ErrBufferFull = errors.New("notification buffer full")

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("dispatcher closed")

// Async queues notifications and delivers them on a background goroutine so
// the caller never waits on a remote channel. Delivery errors are logged.
type Async struct {
	next   Dispatcher
	queue  chan Notification
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

type AsyncOption func(*Async)

func WithAsyncLogger(logger *slog.Logger) AsyncOption {
	return func(a *Async) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAsync starts the delivery goroutine. size <= 0 uses a buffer of 64.
func NewAsync(next Dispatcher, size int, opts ...AsyncOption) (*Async, error) {
	if next == nil {
		return nil, errors.New("dispatcher is required")
	}
	if size <= 0 {
		size = 64
	}
	a := &Async{
		next:   next,
		queue:  make(chan Notification, size),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	a.wg.Go(a.run)
	return a, nil
}

func (a *Async) run() {
	for n := range a.queue {
		if err := a.next.Send(context.Background(), n); err != nil {
			a.logger.Error("failed to deliver notification",
				"kind", string(n.Kind),
				"principal_id", n.Principal.String(),
				"error", err,
			)
		}
	}
}

// Send enqueues n without blocking.
func (a *Async) Send(ctx context.Context, n Notification) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}

	select {
	case a.queue <- n:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		a.logger.WarnContext(ctx, "notification buffer full, dropped",
			"kind", string(n.Kind),
			"principal_id", n.Principal.String(),
		)
		return ErrBufferFull
	}
}

// Close stops accepting notifications and waits for queued ones to be
// delivered or ctx to end.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
