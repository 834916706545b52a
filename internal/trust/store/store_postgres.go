package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	id "ipguard/pkg/domain"
)

// Postgres stores records in a networked database through database/sql.
// The table name is validated by config before it reaches this type.
type Postgres struct {
	db    *sql.DB
	table string

	closeOnce sync.Once
	closeErr  error
}

// NewPostgres wraps db. The store owns db and closes it on Shutdown.
func NewPostgres(db *sql.DB, table string) *Postgres {
	if table == "" {
		table = "trusted_addresses"
	}
	return &Postgres{db: db, table: table}
}

// EnsureSchema creates the table if it does not exist.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			principal_id VARCHAR(64) PRIMARY KEY,
			address      VARCHAR(64) NOT NULL,
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, s.table))
	return storeErr(backendPostgres, "ensure schema", err)
}

func (s *Postgres) SetTrustedAddress(ctx context.Context, principal id.PrincipalID, address string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (principal_id, address, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (principal_id) DO UPDATE SET
			address = EXCLUDED.address,
			updated_at = EXCLUDED.updated_at`, s.table)
	_, err := s.db.ExecContext(ctx, query, principal.String(), address, time.Now().UTC())
	return storeErr(backendPostgres, "set", err)
}

func (s *Postgres) GetTrustedAddress(ctx context.Context, principal id.PrincipalID) (string, bool, error) {
	query := fmt.Sprintf(`SELECT address FROM %s WHERE principal_id = $1`, s.table)
	var address string
	err := s.db.QueryRowContext(ctx, query, principal.String()).Scan(&address)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storeErr(backendPostgres, "get", err)
	}
	return address, true, nil
}

func (s *Postgres) RemoveTrustedAddress(ctx context.Context, principal id.PrincipalID) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE principal_id = $1`, s.table)
	res, err := s.db.ExecContext(ctx, query, principal.String())
	if err != nil {
		return false, storeErr(backendPostgres, "remove", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr(backendPostgres, "remove", err)
	}
	return n > 0, nil
}

func (s *Postgres) Ping(ctx context.Context) error {
	return storeErr(backendPostgres, "ping", s.db.PingContext(ctx))
}

func (s *Postgres) Shutdown() error {
	s.closeOnce.Do(func() {
		if s.db == nil {
			return
		}
		if err := s.db.Close(); err != nil {
			s.closeErr = storeErr(backendPostgres, "shutdown", err)
		}
	})
	return s.closeErr
}
