package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"ipguard/internal/approval"
	"ipguard/internal/approval/handler/mocks"
	id "ipguard/pkg/domain"
	dErrors "ipguard/pkg/domain-errors"
)

type HandlerSuite struct {
	suite.Suite
	router      http.Handler
	ctrl        *gomock.Controller
	mockService *mocks.MockService
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockService(s.ctrl)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	r := chi.NewRouter()
	New(s.mockService, logger).Register(r)
	s.router = r
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) status(rec *httptest.ResponseRecorder) approval.Outcome {
	var body StatusResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Status
}

func (s *HandlerSuite) TestApprove() {
	token := id.NewApprovalToken()

	s.Run("applied", func() {
		s.mockService.EXPECT().Approve(gomock.Any(), token).Return(approval.OutcomeApplied, nil)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/approvals/"+token.String(), nil))

		assert.Equal(s.T(), http.StatusOK, rec.Code)
		assert.Equal(s.T(), approval.OutcomeApplied, s.status(rec))
	})

	s.Run("absent token is accepted and ignored", func() {
		s.mockService.EXPECT().Approve(gomock.Any(), token).Return(approval.OutcomeIgnored, nil)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/approvals/"+token.String(), nil))

		assert.Equal(s.T(), http.StatusAccepted, rec.Code)
		assert.Equal(s.T(), approval.OutcomeIgnored, s.status(rec))
	})

	s.Run("malformed token never reaches the service", func() {
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/approvals/not-a-token", nil))

		assert.Equal(s.T(), http.StatusAccepted, rec.Code)
		assert.Equal(s.T(), approval.OutcomeIgnored, s.status(rec))
	})

	s.Run("store failure is unavailable", func() {
		s.mockService.EXPECT().Approve(gomock.Any(), token).
			Return(approval.OutcomeFailed, dErrors.Wrap(errors.New("disk full"), dErrors.CodeUnavailable, "failed to store trusted address"))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/approvals/"+token.String(), nil))

		assert.Equal(s.T(), http.StatusServiceUnavailable, rec.Code)
	})
}

func (s *HandlerSuite) TestApproveLink() {
	s.Run("valid link", func() {
		s.mockService.EXPECT().ApproveLink(gomock.Any(), "signed.jwt.value").Return(approval.OutcomeApplied, nil)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, approval.LinkPath+"signed.jwt.value", nil))

		assert.Equal(s.T(), http.StatusOK, rec.Code)
	})

	s.Run("tampered link", func() {
		s.mockService.EXPECT().ApproveLink(gomock.Any(), "bad").
			Return(approval.Outcome(""), dErrors.New(dErrors.CodeInvalidInput, "invalid approval link"))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, approval.LinkPath+"bad", nil))

		assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
	})

	s.Run("links disabled", func() {
		s.mockService.EXPECT().ApproveLink(gomock.Any(), "x").
			Return(approval.Outcome(""), dErrors.New(dErrors.CodeNotFound, "approval links are disabled"))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, approval.LinkPath+"x", nil))

		assert.Equal(s.T(), http.StatusNotFound, rec.Code)
	})
}
