package approval

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"ipguard/internal/approval/mocks"
	"ipguard/internal/notify"
	notifymocks "ipguard/internal/notify/mocks"
	id "ipguard/pkg/domain"
	dErrors "ipguard/pkg/domain-errors"
	"ipguard/pkg/platform/sentinel"
	"ipguard/pkg/testutil"
)

// =============================================================================
// Approval Service Test Suite
// =============================================================================
// The service is the only path from an operator action to a trust write.
// Tests verify a token causes at most one write and that failures notify.

type ServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	trust      *mocks.MockTrustWriter
	dispatcher *notifymocks.MockDispatcher
	registry   *Registry
	catalog    *notify.Catalog
	service    *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.trust = mocks.NewMockTrustWriter(s.ctrl)
	s.dispatcher = notifymocks.NewMockDispatcher(s.ctrl)
	s.registry = NewRegistry()

	var err error
	s.catalog, err = notify.NewCatalog()
	s.Require().NoError(err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service, err = New(s.registry, s.trust, s.dispatcher, s.catalog, WithLogger(logger))
	s.Require().NoError(err)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) register() PendingApproval {
	p, err := s.registry.Register(pending())
	s.Require().NoError(err)
	return p
}

func kind(k notify.Kind) gomock.Matcher {
	return gomock.Cond(func(n notify.Notification) bool { return n.Kind == k })
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *ServiceSuite) TestNew() {
	s.Run("nil registry returns error", func() {
		_, err := New(nil, s.trust, s.dispatcher, s.catalog)
		s.ErrorContains(err, "approval registry is required")
	})

	s.Run("nil trust store returns error", func() {
		_, err := New(s.registry, nil, s.dispatcher, s.catalog)
		s.ErrorContains(err, "trust store is required")
	})

	s.Run("nil dispatcher returns error", func() {
		_, err := New(s.registry, s.trust, nil, s.catalog)
		s.ErrorContains(err, "dispatcher is required")
	})

	s.Run("nil catalog returns error", func() {
		_, err := New(s.registry, s.trust, s.dispatcher, nil)
		s.ErrorContains(err, "message catalog is required")
	})
}

// =============================================================================
// Approve
// =============================================================================

func (s *ServiceSuite) TestApprove() {
	ctx := context.Background()

	s.Run("token triggers exactly one trust write", func() {
		p := s.register()
		s.trust.EXPECT().SetTrustedAddress(ctx, p.Principal, testutil.ForeignAddr).Return(nil).Times(1)
		s.dispatcher.EXPECT().Send(ctx, kind(notify.KindApprovalSuccess)).Return(nil).Times(1)

		outcome, err := s.service.Approve(ctx, p.Token)
		s.Require().NoError(err)
		s.Equal(OutcomeApplied, outcome)

		outcome, err = s.service.Approve(ctx, p.Token)
		s.Require().NoError(err)
		s.Equal(OutcomeIgnored, outcome)
	})

	s.Run("unknown token changes nothing", func() {
		outcome, err := s.service.Approve(ctx, id.NewApprovalToken())
		s.Require().NoError(err)
		s.Equal(OutcomeIgnored, outcome)
	})

	s.Run("write failure notifies and reports unavailable", func() {
		p := s.register()
		s.trust.EXPECT().SetTrustedAddress(ctx, p.Principal, p.Address).Return(errors.New("disk full"))
		s.dispatcher.EXPECT().Send(ctx, kind(notify.KindApprovalFailed)).Return(nil)

		outcome, err := s.service.Approve(ctx, p.Token)
		s.Equal(OutcomeFailed, outcome)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

		// the token was spent; a retry is an operator command, not a replay
		outcome, err = s.service.Approve(ctx, p.Token)
		s.NoError(err)
		s.Equal(OutcomeIgnored, outcome)
	})

	s.Run("dispatch failure keeps the committed write", func() {
		p := s.register()
		s.trust.EXPECT().SetTrustedAddress(ctx, p.Principal, p.Address).Return(nil)
		s.dispatcher.EXPECT().Send(ctx, gomock.Any()).Return(errors.New("webhook down"))

		outcome, err := s.service.Approve(ctx, p.Token)
		s.NoError(err)
		s.Equal(OutcomeApplied, outcome)
	})
}

func (s *ServiceSuite) TestApproveConcurrentDoubleClick() {
	ctx := context.Background()
	p := s.register()
	s.trust.EXPECT().SetTrustedAddress(gomock.Any(), p.Principal, p.Address).Return(nil).Times(1)
	s.dispatcher.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	result := testutil.RunConcurrent(16, func(int) error {
		outcome, err := s.service.Approve(ctx, p.Token)
		if err != nil {
			return err
		}
		if outcome == OutcomeIgnored {
			return sentinel.ErrAlreadyUsed
		}
		return nil
	})

	s.Equal(int32(1), result.Successes)
	s.Equal(int32(15), result.Conflicts)
}

// =============================================================================
// ApproveLink
// =============================================================================

func (s *ServiceSuite) TestApproveLink() {
	ctx := context.Background()

	s.Run("links disabled", func() {
		_, err := s.service.ApproveLink(ctx, "anything")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	signer, err := NewLinkSigner("key", "https://guard.example")
	s.Require().NoError(err)
	s.service.links = signer

	s.Run("valid link approves", func() {
		p := s.register()
		link, err := signer.URL(p)
		s.Require().NoError(err)

		s.trust.EXPECT().SetTrustedAddress(ctx, p.Principal, p.Address).Return(nil)
		s.dispatcher.EXPECT().Send(ctx, gomock.Any()).Return(nil)

		outcome, err := s.service.ApproveLink(ctx, strings.TrimPrefix(link, "https://guard.example"+LinkPath))
		s.Require().NoError(err)
		s.Equal(OutcomeApplied, outcome)
	})

	s.Run("forged link is rejected before consuming", func() {
		p := s.register()
		_, err := s.service.ApproveLink(ctx, "not.a.jwt")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		s.Equal(1, s.registry.Len())
		_, ok := s.registry.Consume(p.Token)
		s.True(ok)
	})

}
