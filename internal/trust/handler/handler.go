package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ipguard/internal/trust/models"
	"ipguard/pkg/platform/httputil"
	"ipguard/pkg/platform/middleware/admin"
	request "ipguard/pkg/platform/middleware/request"
)

type Service interface {
	Set(ctx context.Context, ref, address string) (*models.TrustRecord, error)
	Remove(ctx context.Context, ref string) error
	Get(ctx context.Context, ref string) (*models.TrustRecord, error)
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

// RegisterAdmin mounts the trust administration routes. {principal} is a
// principal id or the display name of a connected session.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Put("/admin/trust/{principal}", h.HandleSet)
	r.Delete("/admin/trust/{principal}", h.HandleRemove)
	r.Get("/admin/trust/{principal}", h.HandleGet)
}

// HandleSet implements PUT /admin/trust/{principal}.
//
// Input: { "address": "203.0.113.10" }
// Output: { "principal_id": "...", "address": "203.0.113.10", "updated_at": "..." }
func (h *Handler) HandleSet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	ref := chi.URLParam(r, "principal")

	req, ok := httputil.DecodeAndPrepare[models.SetAddressRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.Set(ctx, ref, req.Address)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to set trusted address",
			"error", err,
			"principal", ref,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "trusted address set by admin",
		"principal_id", rec.PrincipalID.String(),
		"actor_id", admin.GetAdminActorID(ctx),
		"request_id", requestID,
	)
	httputil.WriteJSON(w, http.StatusOK, rec)
}

// HandleRemove implements DELETE /admin/trust/{principal}.
//
// Output: 204 No Content
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	ref := chi.URLParam(r, "principal")

	if err := h.service.Remove(ctx, ref); err != nil {
		h.logger.ErrorContext(ctx, "failed to remove trusted address",
			"error", err,
			"principal", ref,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGet implements GET /admin/trust/{principal}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ref := chi.URLParam(r, "principal")

	rec, err := h.service.Get(ctx, ref)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}
