package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"ipguard/internal/platform/config"
	"ipguard/internal/platform/metrics"
	id "ipguard/pkg/domain"
	"ipguard/pkg/testutil"
)

func TestInMemoryContract(t *testing.T) {
	suite.Run(t, &ContractSuite{newStore: func() Store { return NewInMemory() }})
}

func TestFileContract(t *testing.T) {
	dir := t.TempDir()
	n := 0
	suite.Run(t, &ContractSuite{newStore: func() Store {
		n++
		s, err := NewFile(filepath.Join(dir, "trust", "store"+string(rune('a'+n))+".yml"))
		require.NoError(t, err)
		return s
	}})
}

func TestSQLiteContract(t *testing.T) {
	dir := t.TempDir()
	n := 0
	suite.Run(t, &ContractSuite{newStore: func() Store {
		n++
		s, err := NewSQLite(filepath.Join(dir, "trust"+string(rune('a'+n))+".db"))
		require.NoError(t, err)
		return s
	}})
}

func TestInstrumentedContract(t *testing.T) {
	m := metrics.New()
	suite.Run(t, &ContractSuite{newStore: func() Store { return Instrument(NewInMemory(), "memory", m) }})
}

func TestFileSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "trusted.yml")

	first, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, first.SetTrustedAddress(ctx, testutil.TestIDs.Principal1, testutil.TrustedAddr))
	require.NoError(t, first.SetTrustedAddress(ctx, testutil.TestIDs.Principal2, testutil.ForeignAddr))
	removed, err := first.RemoveTrustedAddress(ctx, testutil.TestIDs.Principal2)
	require.NoError(t, err)
	require.True(t, removed)
	require.NoError(t, first.Shutdown())

	second, err := NewFile(path)
	require.NoError(t, err)
	addr, found, err := second.GetTrustedAddress(ctx, testutil.TestIDs.Principal1)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, testutil.TrustedAddr, addr)

	_, found, err = second.GetTrustedAddress(ctx, testutil.TestIDs.Principal2)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFileRejectsCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trusted.yml")
	require.NoError(t, os.WriteFile(path, []byte("trusted:\n  Notch:\n    address: 1.2.3.4\n"), 0o600))

	_, err := NewFile(path)
	var storeError *Error
	require.ErrorAs(t, err, &storeError)
	assert.Equal(t, "open", storeError.Op)
}

func TestFileWriteFailureKeepsPreviousState(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "ro")
	s, err := NewFile(filepath.Join(dir, "trusted.yml"))
	require.NoError(t, err)
	require.NoError(t, s.SetTrustedAddress(ctx, testutil.TestIDs.Principal1, testutil.TrustedAddr))

	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o750) })
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	err = s.SetTrustedAddress(ctx, testutil.TestIDs.Principal1, testutil.ForeignAddr)
	require.Error(t, err)

	addr, _, err := s.GetTrustedAddress(ctx, testutil.TestIDs.Principal1)
	require.NoError(t, err)
	assert.Equal(t, testutil.TrustedAddr, addr)
}

func TestSQLiteSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "trusted.db")

	first, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.SetTrustedAddress(ctx, testutil.TestIDs.Principal1, testutil.TrustedAddr))
	require.NoError(t, first.Shutdown())

	second, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Shutdown() })

	addr, found, err := second.GetTrustedAddress(ctx, testutil.TestIDs.Principal1)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, testutil.TrustedAddr, addr)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown type is a configuration error", func(t *testing.T) {
		_, err := Open(ctx, config.StorageConfig{Type: "mysql"}, nil, nil)
		var cfgErr *config.Error
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "storage.type", cfgErr.Field)
	})

	t.Run("file backend", func(t *testing.T) {
		cfg := config.StorageConfig{Type: config.StorageFile, File: config.FileConfig{Path: filepath.Join(t.TempDir(), "t.yml")}}
		s, err := Open(ctx, cfg, nil, metrics.New())
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Shutdown() })
		require.NoError(t, s.SetTrustedAddress(ctx, id.NewPrincipalID(), testutil.TrustedAddr))
		assert.NoError(t, Ping(ctx, s))
	})

	t.Run("sqlite backend", func(t *testing.T) {
		cfg := config.StorageConfig{Type: config.StorageSQLite, SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "t.db")}}
		s, err := Open(ctx, cfg, nil, nil)
		require.NoError(t, err)
		require.NoError(t, s.Shutdown())
	})

	t.Run("unreachable postgres is a storage error", func(t *testing.T) {
		cfg := config.StorageConfig{Type: config.StoragePostgres, Postgres: config.PostgresConfig{
			URL:   "postgres://ipguard:x@127.0.0.1:1/ipguard?sslmode=disable&connect_timeout=1",
			Table: "trusted_addresses",
		}}
		_, err := Open(ctx, cfg, nil, nil)
		var storeError *Error
		require.ErrorAs(t, err, &storeError)
		assert.Equal(t, "postgres", storeError.Backend)
	})
}
