package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"ipguard/internal/notify"
	notifymocks "ipguard/internal/notify/mocks"
	"ipguard/internal/session"
	"ipguard/internal/trust/service/mocks"
	dErrors "ipguard/pkg/domain-errors"
	"ipguard/pkg/testutil"
)

// =============================================================================
// Trust Service Test Suite
// =============================================================================
// Administrative set/remove delegate to the store and report each outcome
// to operators. Tests cover reference resolution, validation and failures.

type ServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	store      *mocks.MockStore
	resolver   *mocks.MockResolver
	dispatcher *notifymocks.MockDispatcher
	service    *Service
	now        time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.resolver = mocks.NewMockResolver(s.ctrl)
	s.dispatcher = notifymocks.NewMockDispatcher(s.ctrl)
	s.now = time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)

	catalog, err := notify.NewCatalog()
	s.Require().NoError(err)

	s.service, err = New(s.store,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithResolver(s.resolver),
		WithNotifications(s.dispatcher, catalog),
		WithClock(func() time.Time { return s.now }),
	)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func notification(kind notify.Kind) gomock.Matcher {
	return gomock.Cond(func(n notify.Notification) bool { return n.Kind == kind })
}

func (s *ServiceSuite) TestNew() {
	_, err := New(nil)
	s.ErrorContains(err, "trust store is required")
}

// =============================================================================
// Set
// =============================================================================

func (s *ServiceSuite) TestSet() {
	ctx := context.Background()
	p := testutil.TestIDs.Principal1

	s.Run("by id", func() {
		s.resolver.EXPECT().Lookup(ctx, p).Return(session.Session{}, false)
		s.store.EXPECT().SetTrustedAddress(ctx, p, testutil.TrustedAddr).Return(nil)
		s.dispatcher.EXPECT().Send(ctx, notification(notify.KindSetIPSuccess)).Return(nil)

		rec, err := s.service.Set(ctx, p.String(), " "+testutil.TrustedAddr+" ")
		s.Require().NoError(err)
		s.Equal(p, rec.PrincipalID)
		s.Equal(testutil.TrustedAddr, rec.Address)
		s.Equal(s.now, rec.UpdatedAt)
	})

	s.Run("by display name", func() {
		s.resolver.EXPECT().FindByName("Steve").Return(session.Session{Principal: p, DisplayName: "Steve"}, true)
		s.store.EXPECT().SetTrustedAddress(ctx, p, "2001:db8::1").Return(nil)
		s.dispatcher.EXPECT().Send(ctx, gomock.Cond(func(n notify.Notification) bool {
			return n.Kind == notify.KindSetIPSuccess && n.DisplayName == "Steve"
		})).Return(nil)

		_, err := s.service.Set(ctx, "Steve", "2001:db8::1")
		s.Require().NoError(err)
	})

	s.Run("unknown name notifies not found", func() {
		s.resolver.EXPECT().FindByName("Ghost").Return(session.Session{}, false)
		s.dispatcher.EXPECT().Send(ctx, notification(notify.KindNotFound)).Return(nil)

		_, err := s.service.Set(ctx, "Ghost", testutil.TrustedAddr)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("invalid address is rejected before the store", func() {
		s.resolver.EXPECT().Lookup(ctx, p).Return(session.Session{}, false)
		s.dispatcher.EXPECT().Send(ctx, notification(notify.KindInvalidAddress)).Return(nil)

		_, err := s.service.Set(ctx, p.String(), "999.1.1.1")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("store failure notifies and is unavailable", func() {
		s.resolver.EXPECT().Lookup(ctx, p).Return(session.Session{}, false)
		s.store.EXPECT().SetTrustedAddress(ctx, p, testutil.TrustedAddr).Return(errors.New("locked"))
		s.dispatcher.EXPECT().Send(ctx, notification(notify.KindSetIPFailed)).Return(nil)

		_, err := s.service.Set(ctx, p.String(), testutil.TrustedAddr)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	s.Run("empty reference", func() {
		_, err := s.service.Set(ctx, "  ", testutil.TrustedAddr)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

// =============================================================================
// Remove
// =============================================================================

func (s *ServiceSuite) TestRemove() {
	ctx := context.Background()
	p := testutil.TestIDs.Principal2

	s.Run("existing record", func() {
		s.resolver.EXPECT().Lookup(ctx, p).Return(session.Session{Principal: p, DisplayName: "Alex"}, true)
		s.store.EXPECT().RemoveTrustedAddress(ctx, p).Return(true, nil)
		s.dispatcher.EXPECT().Send(ctx, notification(notify.KindRemoveIPSuccess)).Return(nil)

		s.NoError(s.service.Remove(ctx, p.String()))
	})

	s.Run("missing record", func() {
		s.resolver.EXPECT().Lookup(ctx, p).Return(session.Session{}, false)
		s.store.EXPECT().RemoveTrustedAddress(ctx, p).Return(false, nil)
		s.dispatcher.EXPECT().Send(ctx, notification(notify.KindRemoveIPFailed)).Return(nil)

		err := s.service.Remove(ctx, p.String())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("store failure", func() {
		s.resolver.EXPECT().Lookup(ctx, p).Return(session.Session{}, false)
		s.store.EXPECT().RemoveTrustedAddress(ctx, p).Return(false, errors.New("timeout"))
		s.dispatcher.EXPECT().Send(ctx, notification(notify.KindRemoveIPFailed)).Return(nil)

		err := s.service.Remove(ctx, p.String())
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

// =============================================================================
// Get
// =============================================================================

func (s *ServiceSuite) TestGet() {
	ctx := context.Background()
	p := testutil.TestIDs.Principal3

	s.Run("found", func() {
		s.resolver.EXPECT().Lookup(ctx, p).Return(session.Session{}, false)
		s.store.EXPECT().GetTrustedAddress(ctx, p).Return(testutil.TrustedAddr, true, nil)

		rec, err := s.service.Get(ctx, p.String())
		s.Require().NoError(err)
		s.Equal(testutil.TrustedAddr, rec.Address)
	})

	s.Run("absent", func() {
		s.resolver.EXPECT().Lookup(ctx, p).Return(session.Session{}, false)
		s.store.EXPECT().GetTrustedAddress(ctx, p).Return("", false, nil)

		_, err := s.service.Get(ctx, p.String())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("store failure", func() {
		s.resolver.EXPECT().Lookup(ctx, p).Return(session.Session{}, false)
		s.store.EXPECT().GetTrustedAddress(ctx, p).Return("", false, errors.New("io"))

		_, err := s.service.Get(ctx, p.String())
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

func TestServiceWithoutResolverOrNotifications(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	svc, err := New(store)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Set(context.Background(), "Steve", testutil.TrustedAddr); !dErrors.HasCode(err, dErrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
