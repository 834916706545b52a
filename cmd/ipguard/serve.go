package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ipguard/internal/approval"
	approvalhandler "ipguard/internal/approval/handler"
	"ipguard/internal/guard"
	guardhandler "ipguard/internal/guard/handler"
	"ipguard/internal/notify"
	"ipguard/internal/platform/config"
	"ipguard/internal/platform/health"
	"ipguard/internal/platform/httpserver"
	"ipguard/internal/platform/metrics"
	"ipguard/internal/policy"
	"ipguard/internal/session"
	sessionhandler "ipguard/internal/session/handler"
	trusthandler "ipguard/internal/trust/handler"
	trustservice "ipguard/internal/trust/service"
	"ipguard/internal/trust/store"
)

const defaultShutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the verification engine and HTTP API",
	Long: `Run the verification engine, the approval cleanup worker and the HTTP API.

The process stops on SIGINT or SIGTERM: pending join checks are cancelled,
the HTTP server drains, queued notifications are flushed and the trust store
is closed.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, log)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	log.InfoContext(ctx, "initializing ipguard",
		"environment", cfg.Environment,
		"config", cfg.Path(),
		"storage", cfg.Storage.Type,
	)
	m := metrics.New()

	trustStore, err := store.Open(ctx, cfg.Storage, log, m)
	if err != nil {
		return err
	}
	defer func() {
		if err := trustStore.Shutdown(); err != nil {
			log.Error("trust store shutdown failed", "error", err)
		}
	}()

	catalog, err := newCatalog(cfg, log)
	if err != nil {
		return err
	}
	sinks, err := newDispatch(cfg.Notifications, log, m)
	if err != nil {
		return err
	}
	dispatcher, err := notify.NewAsync(sinks.fanout, cfg.Notifications.BufferSize, notify.WithAsyncLogger(log))
	if err != nil {
		return err
	}

	// Approval workflow
	tokens := approval.NewRegistry(approval.WithTTL(cfg.Approval.TokenTTL))
	cleanup, err := approval.NewCleanup(tokens,
		approval.WithCleanupInterval(cfg.Approval.CleanupInterval),
		approval.WithCleanupLogger(log),
		approval.WithCleanupMetrics(m),
	)
	if err != nil {
		return err
	}
	var links *approval.LinkSigner
	if cfg.Approval.SigningKey != "" {
		if links, err = approval.NewLinkSigner(cfg.Approval.SigningKey, cfg.Server.PublicURL); err != nil {
			return err
		}
	}
	approvals, err := approval.New(tokens, trustStore, dispatcher, catalog,
		approval.WithLogger(log),
		approval.WithMetrics(m),
		approval.WithLinkSigner(links),
	)
	if err != nil {
		return err
	}

	// Verification engine
	policyCfg := policy.ConfigFrom(cfg.Policy)
	evaluator, err := policy.NewEvaluator(policyCfg, trustStore, policy.WithLogger(log))
	if err != nil {
		return err
	}
	sessions := session.NewRegistry()
	engineOpts := []guard.Option{
		guard.WithLogger(log),
		guard.WithMetrics(m),
		guard.WithTokens(tokens),
	}
	if links != nil {
		engineOpts = append(engineOpts, guard.WithLinks(links))
	}
	engine, err := guard.New(guard.ConfigFrom(cfg), sessions, evaluator, dispatcher, catalog, engineOpts...)
	if err != nil {
		return err
	}

	trustSvc, err := trustservice.New(trustStore,
		trustservice.WithLogger(log),
		trustservice.WithResolver(sessions),
		trustservice.WithNotifications(dispatcher, catalog),
	)
	if err != nil {
		return err
	}

	// HTTP
	healthHandler := health.New(cfg.Environment)
	healthHandler.RegisterCheck("trust_store", func(ctx context.Context) error {
		return store.Ping(ctx, trustStore)
	})
	if sinks.producer != nil {
		healthHandler.RegisterCheck("kafka", sinks.producer.Healthy)
	}
	router := httpserver.NewRouter(httpserver.Routes{
		Public: []httpserver.Registrar{
			healthHandler,
			approvalhandler.New(approvals, log),
		},
		Runtime: []httpserver.Registrar{
			sessionhandler.New(sessions, engine, log),
		},
		Admin: []httpserver.AdminRegistrar{
			trusthandler.New(trustSvc, log),
			guardhandler.New(engine, log),
		},
		Metrics: m.Handler(),
	}, httpserver.Tokens{Admin: cfg.Admin.Token, Runtime: cfg.Runtime.Token}, m, log)
	srv := httpserver.New(cfg.Server, router)

	guard.LogMethods(ctx, log, policyCfg)

	g, gctx := errgroup.WithContext(ctx)
	engineDone := make(chan struct{})
	g.Go(func() error {
		defer close(engineDone)
		return ignoreCanceled(engine.Start(gctx))
	})
	g.Go(func() error { return ignoreCanceled(cleanup.Start(gctx)) })
	g.Go(func() error { return ignoreCanceled(catalog.Watch(gctx)) })
	g.Go(func() error {
		log.InfoContext(gctx, "starting http server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down ipguard gracefully")

		timeout := cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), timeout)
		defer cancel()

		engine.Stop()
		err := srv.Shutdown(shutdownCtx)
		// An in-flight sweep still dispatches remediation notifications.
		return errors.Join(err, closeAfter(shutdownCtx, engineDone, log,
			dispatcher.Close,
			sinks.Close,
		))
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("ipguard stopped")
	return nil
}
