package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/suite"

	"ipguard/pkg/platform/sentinel"
	"ipguard/pkg/testutil"
)

// PostgresStoreSuite pins the SQL the postgres backend issues and how driver
// results map onto the Store contract.
type PostgresStoreSuite struct {
	suite.Suite
	db    *sql.DB
	mock  sqlmock.Sqlmock
	store *Postgres
	ctx   context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupTest() {
	var err error
	s.db, s.mock, err = sqlmock.New()
	s.Require().NoError(err)
	s.store = NewPostgres(s.db, "trusted_addresses")
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) TearDownTest() {
	s.mock.ExpectClose()
	s.Require().NoError(s.store.Shutdown())
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *PostgresStoreSuite) TestEnsureSchema() {
	s.mock.ExpectExec(`CREATE TABLE IF NOT EXISTS trusted_addresses`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.NoError(s.store.EnsureSchema(s.ctx))
}

func (s *PostgresStoreSuite) TestSetUpserts() {
	s.mock.ExpectExec(`INSERT INTO trusted_addresses .* ON CONFLICT \(principal_id\) DO UPDATE`).
		WithArgs(testutil.TestIDs.Principal1.String(), testutil.TrustedAddr, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.store.SetTrustedAddress(s.ctx, testutil.TestIDs.Principal1, testutil.TrustedAddr))
}

func (s *PostgresStoreSuite) TestGet() {
	s.Run("found", func() {
		s.mock.ExpectQuery(`SELECT address FROM trusted_addresses WHERE principal_id = \$1`).
			WithArgs(testutil.TestIDs.Principal1.String()).
			WillReturnRows(sqlmock.NewRows([]string{"address"}).AddRow(testutil.TrustedAddr))

		addr, found, err := s.store.GetTrustedAddress(s.ctx, testutil.TestIDs.Principal1)
		s.NoError(err)
		s.True(found)
		s.Equal(testutil.TrustedAddr, addr)
	})

	s.Run("no rows is absent", func() {
		s.mock.ExpectQuery(`SELECT address FROM trusted_addresses`).
			WithArgs(testutil.TestIDs.Principal2.String()).
			WillReturnError(sql.ErrNoRows)

		_, found, err := s.store.GetTrustedAddress(s.ctx, testutil.TestIDs.Principal2)
		s.NoError(err)
		s.False(found)
	})

	s.Run("driver failure is a storage error", func() {
		s.mock.ExpectQuery(`SELECT address FROM trusted_addresses`).
			WithArgs(testutil.TestIDs.Principal3.String()).
			WillReturnError(errors.New("connection reset by peer"))

		_, found, err := s.store.GetTrustedAddress(s.ctx, testutil.TestIDs.Principal3)
		s.False(found)
		s.ErrorIs(err, sentinel.ErrUnavailable)
		var storeError *Error
		s.Require().ErrorAs(err, &storeError)
		s.Equal("get", storeError.Op)
	})
}

func (s *PostgresStoreSuite) TestRemove() {
	s.Run("existing row", func() {
		s.mock.ExpectExec(`DELETE FROM trusted_addresses WHERE principal_id = \$1`).
			WithArgs(testutil.TestIDs.Principal1.String()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		removed, err := s.store.RemoveTrustedAddress(s.ctx, testutil.TestIDs.Principal1)
		s.NoError(err)
		s.True(removed)
	})

	s.Run("missing row", func() {
		s.mock.ExpectExec(`DELETE FROM trusted_addresses`).
			WithArgs(testutil.TestIDs.Principal2.String()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		removed, err := s.store.RemoveTrustedAddress(s.ctx, testutil.TestIDs.Principal2)
		s.NoError(err)
		s.False(removed)
	})
}

func (s *PostgresStoreSuite) TestCustomTable() {
	store := NewPostgres(s.db, "ipguard_trust")
	s.mock.ExpectExec(`INSERT INTO ipguard_trust`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.NoError(store.SetTrustedAddress(s.ctx, testutil.TestIDs.Principal1, testutil.TrustedAddr))
}
