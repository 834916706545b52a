package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/stretchr/testify/suite"

	id "ipguard/pkg/domain"
	"ipguard/pkg/platform/sentinel"
	"ipguard/pkg/testutil"
)

// ContractSuite exercises the Store contract. Each backend embeds it and
// supplies newStore.
type ContractSuite struct {
	suite.Suite
	newStore func() Store
	store    Store
	ctx      context.Context
}

func (s *ContractSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.newStore()
}

func (s *ContractSuite) TearDownTest() {
	s.Require().NoError(s.store.Shutdown())
}

func (s *ContractSuite) TestRoundTrip() {
	p := id.NewPrincipalID()

	s.Require().NoError(s.store.SetTrustedAddress(s.ctx, p, testutil.TrustedAddr))
	addr, found, err := s.store.GetTrustedAddress(s.ctx, p)
	s.Require().NoError(err)
	s.True(found)
	s.Equal(testutil.TrustedAddr, addr)
}

func (s *ContractSuite) TestAbsentIsNotAnError() {
	addr, found, err := s.store.GetTrustedAddress(s.ctx, id.NewPrincipalID())
	s.NoError(err)
	s.False(found)
	s.Empty(addr)
}

func (s *ContractSuite) TestSetIsIdempotent() {
	p := id.NewPrincipalID()
	s.Require().NoError(s.store.SetTrustedAddress(s.ctx, p, testutil.TrustedAddr))
	s.Require().NoError(s.store.SetTrustedAddress(s.ctx, p, testutil.TrustedAddr))

	addr, found, err := s.store.GetTrustedAddress(s.ctx, p)
	s.Require().NoError(err)
	s.True(found)
	s.Equal(testutil.TrustedAddr, addr)
}

func (s *ContractSuite) TestSetOverwrites() {
	p := id.NewPrincipalID()
	s.Require().NoError(s.store.SetTrustedAddress(s.ctx, p, testutil.TrustedAddr))
	s.Require().NoError(s.store.SetTrustedAddress(s.ctx, p, testutil.ForeignAddr))

	addr, _, err := s.store.GetTrustedAddress(s.ctx, p)
	s.Require().NoError(err)
	s.Equal(testutil.ForeignAddr, addr)
}

func (s *ContractSuite) TestRemoveReportsExistence() {
	p := id.NewPrincipalID()

	removed, err := s.store.RemoveTrustedAddress(s.ctx, p)
	s.Require().NoError(err)
	s.False(removed, "nothing to remove")

	s.Require().NoError(s.store.SetTrustedAddress(s.ctx, p, testutil.TrustedAddr))
	removed, err = s.store.RemoveTrustedAddress(s.ctx, p)
	s.Require().NoError(err)
	s.True(removed)

	_, found, err := s.store.GetTrustedAddress(s.ctx, p)
	s.Require().NoError(err)
	s.False(found)

	removed, err = s.store.RemoveTrustedAddress(s.ctx, p)
	s.Require().NoError(err)
	s.False(removed, "second remove finds nothing")
}

func (s *ContractSuite) TestRecordsAreIsolatedPerPrincipal() {
	a, b := id.NewPrincipalID(), id.NewPrincipalID()
	s.Require().NoError(s.store.SetTrustedAddress(s.ctx, a, testutil.TrustedAddr))
	s.Require().NoError(s.store.SetTrustedAddress(s.ctx, b, testutil.ForeignAddr))

	_, err := s.store.RemoveTrustedAddress(s.ctx, a)
	s.Require().NoError(err)

	addr, found, err := s.store.GetTrustedAddress(s.ctx, b)
	s.Require().NoError(err)
	s.True(found)
	s.Equal(testutil.ForeignAddr, addr)
}

func (s *ContractSuite) TestConcurrentWriters() {
	const writers = 16
	principals := make([]id.PrincipalID, writers)
	for i := range principals {
		principals[i] = id.NewPrincipalID()
	}

	res := testutil.RunConcurrent(writers, func(i int) error {
		return s.store.SetTrustedAddress(s.ctx, principals[i], fmt.Sprintf("10.0.0.%d", i+1))
	})
	s.Equal(int32(writers), res.Successes)

	var wg sync.WaitGroup
	for i, p := range principals {
		wg.Go(func() {
			addr, found, err := s.store.GetTrustedAddress(s.ctx, p)
			s.NoError(err)
			s.True(found)
			s.Equal(fmt.Sprintf("10.0.0.%d", i+1), addr)
		})
	}
	wg.Wait()
}

func (s *ContractSuite) TestShutdownIsIdempotent() {
	s.Require().NoError(s.store.Shutdown())
	s.Require().NoError(s.store.Shutdown())

	err := s.store.SetTrustedAddress(s.ctx, id.NewPrincipalID(), testutil.TrustedAddr)
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrUnavailable))

	var storeError *Error
	s.ErrorAs(err, &storeError)
}
