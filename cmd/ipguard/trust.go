package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"ipguard/internal/platform/config"
	trustservice "ipguard/internal/trust/service"
	"ipguard/internal/trust/store"
)

var trustCmd = &cobra.Command{
	Use:   "trust",
	Short: "Administer trusted addresses",
	Long: `Administer trusted addresses directly in the configured trust store.

Principals are referenced by id. Display names only resolve while the
server holds a live session, so they are not accepted here.`,
}

func init() {
	rootCmd.AddCommand(trustCmd)
}

// withTrustService opens the store, builds a trust service that reports to
// the configured sinks and runs fn against it.
func withTrustService(cmd *cobra.Command, fn func(ctx context.Context, svc *trustservice.Service) error) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	s, err := store.Open(ctx, cfg.Storage, log, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Shutdown(); err != nil {
			log.Warn("trust store shutdown failed", "error", err)
		}
	}()

	opts, closeSinks, err := cliNotifications(cfg, log)
	if err != nil {
		return err
	}
	defer closeSinks(ctx)

	svc, err := trustservice.New(s, append(opts, trustservice.WithLogger(log))...)
	if err != nil {
		return err
	}
	return fn(ctx, svc)
}

func cliNotifications(cfg *config.Config, log *slog.Logger) ([]trustservice.Option, func(context.Context), error) {
	catalog, err := newCatalog(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	sinks, err := newDispatch(cfg.Notifications, log, nil)
	if err != nil {
		return nil, nil, err
	}
	closeSinks := func(ctx context.Context) {
		if err := sinks.Close(ctx); err != nil {
			log.Warn("notification sinks did not flush", "error", err)
		}
	}
	return []trustservice.Option{trustservice.WithNotifications(sinks.fanout, catalog)}, closeSinks, nil
}

func printRecord(cmd *cobra.Command, principal, address string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", principal, address)
}
