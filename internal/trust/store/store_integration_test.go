//go:build integration

package store

import (
	"context"
	"database/sql"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"ipguard/pkg/testutil/containers"
)

func TestPostgresContract(t *testing.T) {
	pg := containers.GetManager().GetPostgres(t)
	suite.Run(t, &ContractSuite{newStore: func() Store {
		require.NoError(t, pg.TruncateTables(context.Background(), "trusted_addresses"))
		// Shutdown closes the DB, so each test gets its own handle.
		db := openDB(t, pg.DSN)
		return NewPostgres(db, "trusted_addresses")
	}})
}

func TestRedisContract(t *testing.T) {
	rc := containers.GetManager().GetRedis(t)
	suite.Run(t, &ContractSuite{newStore: func() Store {
		opts, err := goredis.ParseURL(rc.URL)
		require.NoError(t, err)
		client := goredis.NewClient(opts)
		require.NoError(t, client.FlushDB(context.Background()).Err())
		return NewRedis(client, "ipguard:test")
	}})
}

func openDB(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	return db
}
