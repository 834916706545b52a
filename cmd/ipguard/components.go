package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"ipguard/internal/notify"
	"ipguard/internal/platform/config"
	"ipguard/internal/platform/kafka/producer"
	"ipguard/internal/platform/logger"
	"ipguard/internal/platform/metrics"
	"ipguard/pkg/platform/circuit"
)

// loadConfig reads the file named by --config and builds the logger.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)
	return cfg, log, nil
}

func newCatalog(cfg *config.Config, log *slog.Logger) (*notify.Catalog, error) {
	return notify.NewCatalog(
		notify.WithMessagesFile(cfg.Messages.File),
		notify.WithTimeFormat(cfg.Location(), cfg.Messages.TimeLayout),
		notify.WithCatalogLogger(log),
	)
}

// dispatch is the set of configured notification sinks.
type dispatch struct {
	fanout   *notify.Fanout
	producer *producer.Producer
}

func newDispatch(cfg config.NotificationsConfig, log *slog.Logger, m *metrics.Metrics) (*dispatch, error) {
	var sinks []notify.Sink
	if cfg.Log {
		sinks = append(sinks, notify.Sink{Name: "log", Dispatcher: notify.NewLog(log)})
	}

	if cfg.Webhook.URL != "" {
		breaker := circuit.New("webhook",
			circuit.WithFailureThreshold(cfg.Webhook.FailureThreshold),
			circuit.WithCooldown(cfg.Webhook.Cooldown),
			circuit.WithStateChange(func(name string, to circuit.State) {
				log.Warn("circuit breaker state changed", "breaker", name, "state", to.String())
			}),
		)
		opts := []notify.WebhookOption{notify.WithBreaker(breaker)}
		if cfg.Webhook.Timeout > 0 {
			opts = append(opts, notify.WithHTTPClient(&http.Client{Timeout: cfg.Webhook.Timeout}))
		}
		hook, err := notify.NewWebhook(cfg.Webhook.URL, opts...)
		if err != nil {
			return nil, fmt.Errorf("webhook sink: %w", err)
		}
		sinks = append(sinks, notify.Sink{Name: "webhook", Dispatcher: hook})
	}

	d := &dispatch{}
	if cfg.Kafka.Brokers != "" {
		p, err := producer.New(cfg.Kafka, log)
		if err != nil {
			return nil, err
		}
		sink, err := notify.NewKafka(p, cfg.Kafka.Topic)
		if err != nil {
			_ = p.Close(context.Background())
			return nil, err
		}
		d.producer = p
		sinks = append(sinks, notify.Sink{Name: "kafka", Dispatcher: sink})
	}

	if len(sinks) == 0 {
		log.Warn("no notification sinks configured")
	}
	d.fanout = notify.NewFanout(sinks, notify.WithFanoutMetrics(m), notify.WithFanoutLogger(log))
	return d, nil
}

// Close flushes the Kafka producer when one is configured.
func (d *dispatch) Close(ctx context.Context) error {
	if d.producer == nil {
		return nil
	}
	return d.producer.Close(ctx)
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// closeAfter waits for done, or for ctx to expire, then runs closers in order.
func closeAfter(ctx context.Context, done <-chan struct{}, log *slog.Logger, closers ...func(context.Context) error) error {
	select {
	case <-done:
	case <-ctx.Done():
		log.Warn("engine still running at shutdown deadline; closing notifications anyway")
	}

	var errs []error
	for _, c := range closers {
		errs = append(errs, c(ctx))
	}
	return errors.Join(errs...)
}
