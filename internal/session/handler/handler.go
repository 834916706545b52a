// Package handler is the HTTP adapter the hosting runtime uses to report
// sessions and to collect terminate/message instructions.
package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Registry,JoinScheduler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ipguard/internal/platform/privacy"
	"ipguard/internal/session"
	id "ipguard/pkg/domain"
	dErrors "ipguard/pkg/domain-errors"
	"ipguard/pkg/platform/httputil"
	request "ipguard/pkg/platform/middleware/request"
)

type Registry interface {
	Connect(s session.Session) session.Session
	Update(principal id.PrincipalID, fn func(*session.Session)) (session.Session, error)
	Disconnect(principal id.PrincipalID) bool
	List() []session.Session
	Drain(principal id.PrincipalID) []session.Event
}

// JoinScheduler schedules the delayed check after a session starts.
type JoinScheduler interface {
	OnSessionStart(principal id.PrincipalID)
}

type Handler struct {
	registry Registry
	joins    JoinScheduler
	logger   *slog.Logger
}

func New(registry Registry, joins JoinScheduler, logger *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		joins:    joins,
		logger:   logger,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/sessions", h.HandleConnect)
	r.Get("/sessions", h.HandleList)
	r.Put("/sessions/{id}", h.HandleUpdate)
	r.Delete("/sessions/{id}", h.HandleDisconnect)
	r.Get("/sessions/{id}/events", h.HandleEvents)
}

// HandleConnect implements POST /sessions.
//
// Input: { "principal_id": "...", "display_name": "Steve", "address": "203.0.113.10", "elevated": true }
// Output: 201 with the recorded session
func (h *Handler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ConnectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sess := h.registry.Connect(req.Session())
	if h.joins != nil {
		h.joins.OnSessionStart(sess.Principal)
	}

	h.logger.InfoContext(ctx, "session connected",
		"principal_id", sess.Principal.String(),
		"address", privacy.MaskAddress(sess.Address),
		"request_id", requestID,
	)
	httputil.WriteJSON(w, http.StatusCreated, sess)
}

// HandleUpdate implements PUT /sessions/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sess, err := h.registry.Update(principal, req.apply)
	if err != nil {
		if errors.Is(err, session.ErrNotConnected) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "session not found"))
			return
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sess)
}

// HandleDisconnect implements DELETE /sessions/{id}.
//
// Output: 204 No Content, or 404 if the principal was not connected
func (h *Handler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	if !h.registry.Disconnect(principal) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "session not found"))
		return
	}

	h.logger.InfoContext(ctx, "session disconnected",
		"principal_id", principal.String(),
		"request_id", request.GetRequestID(ctx),
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleList implements GET /sessions.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.registry.List())
}

// HandleEvents implements GET /sessions/{id}/events. Returned events are
// removed from the queue.
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	events := h.registry.Drain(principal)
	if events == nil {
		events = []session.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, events)
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (id.PrincipalID, bool) {
	principal, err := id.ParsePrincipalID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.PrincipalID{}, false
	}
	return principal, true
}
