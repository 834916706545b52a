package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ipguard/internal/approval"
	id "ipguard/pkg/domain"
	"ipguard/pkg/platform/httputil"
	request "ipguard/pkg/platform/middleware/request"
)

type Service interface {
	Approve(ctx context.Context, token id.ApprovalToken) (approval.Outcome, error)
	ApproveLink(ctx context.Context, signed string) (approval.Outcome, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// StatusResponse reports what an approval action did.
type StatusResponse struct {
	Status approval.Outcome `json:"status"`
}

// Register mounts the operator action routes. They are unauthenticated: the
// token itself is the capability.
func (h *Handler) Register(r chi.Router) {
	r.Post("/approvals/{token}", h.HandleApprove)
	r.Get(approval.LinkPath+"{signed}", h.HandleApproveLink)
}

// HandleApprove implements POST /approvals/{token}.
//
// Output: 200 {"status":"applied"} or 202 {"status":"ignored"}
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	token, err := id.ParseApprovalToken(chi.URLParam(r, "token"))
	if err != nil {
		// a malformed token can never match a pending approval
		h.logger.InfoContext(ctx, "malformed approval token",
			"request_id", requestID,
		)
		httputil.WriteJSON(w, http.StatusAccepted, &StatusResponse{Status: approval.OutcomeIgnored})
		return
	}

	outcome, err := h.service.Approve(ctx, token)
	h.respond(ctx, w, outcome, err, requestID)
}

// HandleApproveLink implements GET /approvals/link/{signed}, the target of the
// notification button.
func (h *Handler) HandleApproveLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	outcome, err := h.service.ApproveLink(ctx, chi.URLParam(r, "signed"))
	h.respond(ctx, w, outcome, err, requestID)
}

func (h *Handler) respond(ctx context.Context, w http.ResponseWriter, outcome approval.Outcome, err error, requestID string) {
	if err != nil {
		h.logger.ErrorContext(ctx, "approval failed",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	if outcome == approval.OutcomeIgnored {
		httputil.WriteJSON(w, http.StatusAccepted, &StatusResponse{Status: outcome})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &StatusResponse{Status: outcome})
}
