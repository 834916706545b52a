package store

import (
	"context"
	"fmt"
	"log/slog"

	"ipguard/internal/platform/config"
	"ipguard/internal/platform/database"
	"ipguard/internal/platform/metrics"
	"ipguard/internal/platform/redis"
)

// Open constructs the backend named by cfg.Type. An unknown type is a
// *config.Error; connection failures are *Error.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger, m *metrics.Metrics) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		s   Store
		err error
	)
	switch cfg.Type {
	case config.StorageMemory:
		s = NewInMemory()
	case config.StorageFile:
		s, err = NewFile(cfg.File.Path)
	case config.StorageSQLite:
		s, err = NewSQLite(cfg.SQLite.Path)
	case config.StoragePostgres:
		s, err = openPostgres(ctx, cfg.Postgres)
	case config.StorageRedis:
		s, err = openRedis(ctx, cfg.Redis)
	default:
		return nil, &config.Error{Field: "storage.type", Reason: fmt.Sprintf("unknown storage type %q", cfg.Type)}
	}
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "trust store opened", "backend", cfg.Type)
	return Instrument(s, cfg.Type, m), nil
}

func openPostgres(ctx context.Context, cfg config.PostgresConfig) (Store, error) {
	pool, err := database.New(ctx, cfg)
	if err != nil {
		return nil, storeErr(backendPostgres, "open", err)
	}
	s := NewPostgres(pool.DB(), cfg.Table)
	if err := s.EnsureSchema(ctx); err != nil {
		_ = s.Shutdown()
		return nil, err
	}
	return s, nil
}

func openRedis(ctx context.Context, cfg config.RedisConfig) (Store, error) {
	client, err := redis.New(ctx, cfg)
	if err != nil {
		return nil, storeErr(backendRedis, "open", err)
	}
	return NewRedis(client.Client, cfg.Key), nil
}
