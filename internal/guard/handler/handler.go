package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Sweeper

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ipguard/internal/guard"
	"ipguard/pkg/platform/httputil"
	"ipguard/pkg/platform/middleware/admin"
	request "ipguard/pkg/platform/middleware/request"
)

type Sweeper interface {
	RunOnce(ctx context.Context) (guard.SweepResult, error)
}

type Handler struct {
	sweeper Sweeper
	logger  *slog.Logger
}

func New(sweeper Sweeper, logger *slog.Logger) *Handler {
	return &Handler{sweeper: sweeper, logger: logger}
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/sweep", h.HandleSweep)
}

// SweepResponse reports an on-demand sweep. Errors lists per-principal
// failures; the sweep itself always completes.
type SweepResponse struct {
	guard.SweepResult
	Errors string `json:"errors,omitempty"`
}

// HandleSweep implements POST /admin/sweep.
//
// Output: { "evaluated": 12, "denied": 1, "skipped": 0 }
func (h *Handler) HandleSweep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	res, err := h.sweeper.RunOnce(ctx)
	resp := SweepResponse{SweepResult: res}
	if err != nil {
		h.logger.WarnContext(ctx, "on-demand sweep had failures",
			"error", err,
			"request_id", requestID,
		)
		resp.Errors = err.Error()
	}

	h.logger.InfoContext(ctx, "on-demand sweep",
		"evaluated", res.Evaluated,
		"denied", res.Denied,
		"actor_id", admin.GetAdminActorID(ctx),
		"request_id", requestID,
	)
	httputil.WriteJSON(w, http.StatusOK, resp)
}
