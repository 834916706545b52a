package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	id "ipguard/pkg/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS trusted_addresses (
	principal_id TEXT PRIMARY KEY,
	address      TEXT NOT NULL,
	updated_at   INTEGER NOT NULL
);`

// SQLite stores records in an embedded database. The pool holds a single
// connection, so statements are serialized.
type SQLite struct {
	pool *sqlitex.Pool
	path string

	closeOnce sync.Once
	closeErr  error
}

// NewSQLite opens (or creates) the database at path and applies the schema.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, storeErr(backendSQLite, "open", errors.New("path is required"))
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, storeErr(backendSQLite, "open", err)
		}
	}

	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize:    1,
		PrepareConn: prepareSQLiteConn,
	})
	if err != nil {
		return nil, storeErr(backendSQLite, "open", fmt.Errorf("open %s: %w", path, err))
	}

	s := &SQLite{pool: pool, path: path}

	// force PrepareConn now so a bad file or schema fails at startup
	conn, err := pool.Take(context.Background())
	if err != nil {
		pool.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, storeErr(backendSQLite, "open", err)
	}
	pool.Put(conn)
	return s, nil
}

func prepareSQLiteConn(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=FULL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return sqlitex.ExecuteScript(conn, sqliteSchema, nil)
}

func (s *SQLite) take(ctx context.Context, op string) (*sqlite.Conn, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, storeErr(backendSQLite, op, err)
	}
	return conn, nil
}

func (s *SQLite) SetTrustedAddress(ctx context.Context, principal id.PrincipalID, address string) error {
	conn, err := s.take(ctx, "set")
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn, `
		INSERT INTO trusted_addresses (principal_id, address, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (principal_id) DO UPDATE SET
			address = excluded.address,
			updated_at = excluded.updated_at`,
		&sqlitex.ExecOptions{Args: []any{principal.String(), address, time.Now().UTC().Unix()}},
	)
	return storeErr(backendSQLite, "set", err)
}

func (s *SQLite) GetTrustedAddress(ctx context.Context, principal id.PrincipalID) (string, bool, error) {
	conn, err := s.take(ctx, "get")
	if err != nil {
		return "", false, err
	}
	defer s.pool.Put(conn)

	var address string
	var found bool
	err = sqlitex.Execute(conn,
		`SELECT address FROM trusted_addresses WHERE principal_id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{principal.String()},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				address = stmt.ColumnText(0)
				found = true
				return nil
			},
		},
	)
	if err != nil {
		return "", false, storeErr(backendSQLite, "get", err)
	}
	return address, found, nil
}

func (s *SQLite) RemoveTrustedAddress(ctx context.Context, principal id.PrincipalID) (bool, error) {
	conn, err := s.take(ctx, "remove")
	if err != nil {
		return false, err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`DELETE FROM trusted_addresses WHERE principal_id = ?`,
		&sqlitex.ExecOptions{Args: []any{principal.String()}},
	)
	if err != nil {
		return false, storeErr(backendSQLite, "remove", err)
	}
	return conn.Changes() > 0, nil
}

func (s *SQLite) Shutdown() error {
	s.closeOnce.Do(func() {
		if err := s.pool.Close(); err != nil {
			s.closeErr = storeErr(backendSQLite, "shutdown", err)
		}
	})
	return s.closeErr
}
