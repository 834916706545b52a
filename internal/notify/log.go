package notify

import (
	"context"
	"log/slog"
)

// Log writes notifications to a structured logger. It never fails.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Send(ctx context.Context, n Notification) error {
	attrs := []any{
		"event", "notification",
		"log_type", "audit",
		"kind", string(n.Kind),
		"title", n.Title,
		"principal_id", n.Principal.String(),
	}
	if n.Address != "" {
		attrs = append(attrs, "address", n.Address)
	}
	if n.Action != nil {
		attrs = append(attrs, "token", n.Action.Token.String())
	}
	l.logger.InfoContext(ctx, n.Description, attrs...)
	return nil
}
