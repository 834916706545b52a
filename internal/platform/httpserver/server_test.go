package httpserver

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipguard/internal/platform/config"
	"ipguard/internal/platform/metrics"
	"ipguard/internal/session"
	sessionhandler "ipguard/internal/session/handler"
	"ipguard/pkg/testutil"
)

type public struct{}

func (public) Register(r chi.Router) {
	r.Get("/ping/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
}

type private struct{}

func (private) RegisterAdmin(r chi.Router) {
	r.Post("/admin/thing", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
}

func serve(h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	return serveWith(h, method, path, "X-Admin-Token", token, "")
}

func serveWith(h http.Handler, method, path, header, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(header, token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewRouter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	routes := Routes{Public: []Registrar{public{}}, Admin: []AdminRegistrar{private{}}}

	t.Run("public routes carry a request id", func(t *testing.T) {
		h := NewRouter(routes, Tokens{Admin: "secret"}, nil, logger)
		rec := serve(h, http.MethodGet, "/ping/1", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("admin routes require the token", func(t *testing.T) {
		h := NewRouter(routes, Tokens{Admin: "secret"}, nil, logger)
		assert.Equal(t, http.StatusUnauthorized, serve(h, http.MethodPost, "/admin/thing", "").Code)
		assert.Equal(t, http.StatusUnauthorized, serve(h, http.MethodPost, "/admin/thing", "wrong").Code)
		assert.Equal(t, http.StatusNoContent, serve(h, http.MethodPost, "/admin/thing", "secret").Code)
	})

	t.Run("admin routes absent without a token", func(t *testing.T) {
		h := NewRouter(routes, Tokens{}, nil, logger)
		assert.Equal(t, http.StatusNotFound, serve(h, http.MethodPost, "/admin/thing", "secret").Code)
	})

	t.Run("session intake requires the runtime token", func(t *testing.T) {
		registry := session.NewRegistry()
		principal := testutil.TestIDs.Principal1
		registry.Connect(session.Session{Principal: principal, Address: testutil.TrustedAddr, Elevated: true})

		h := NewRouter(Routes{
			Runtime: []Registrar{sessionhandler.New(registry, nil, logger)},
		}, Tokens{Admin: "secret", Runtime: "runner"}, nil, logger)
		path := "/sessions/" + principal.String()

		rec := serveWith(h, http.MethodPut, path, "X-Runtime-Token", "", `{"elevated":false}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		rec = serveWith(h, http.MethodPut, path, "X-Admin-Token", "secret", `{"elevated":false}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, http.StatusUnauthorized, serveWith(h, http.MethodGet, "/sessions", "X-Runtime-Token", "", "").Code)
		assert.Equal(t, http.StatusUnauthorized, serveWith(h, http.MethodGet, path+"/events", "X-Runtime-Token", "wrong", "").Code)

		s, ok := registry.Lookup(context.Background(), principal)
		require.True(t, ok)
		assert.True(t, s.Elevated)

		rec = serveWith(h, http.MethodPut, path, "X-Runtime-Token", "runner", `{"elevated":false}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		s, _ = registry.Lookup(context.Background(), principal)
		assert.False(t, s.Elevated)
	})

	t.Run("session intake absent without a runtime token", func(t *testing.T) {
		h := NewRouter(Routes{
			Runtime: []Registrar{sessionhandler.New(session.NewRegistry(), nil, logger)},
		}, Tokens{Admin: "secret"}, nil, logger)
		assert.Equal(t, http.StatusNotFound, serveWith(h, http.MethodGet, "/sessions", "X-Admin-Token", "secret", "").Code)
	})

	t.Run("latency is labelled by route pattern", func(t *testing.T) {
		m := metrics.NewWith(prometheus.NewRegistry())
		h := NewRouter(Routes{Public: []Registrar{public{}}, Metrics: m.Handler()}, Tokens{}, m, logger)

		serve(h, http.MethodGet, "/ping/1", "")
		serve(h, http.MethodGet, "/ping/2", "")

		assert.Equal(t, 1, promtest.CollectAndCount(m.EndpointLatency))
		rec := serve(h, http.MethodGet, "/metrics", "")
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestNewServerDefaults(t *testing.T) {
	srv := New(config.ServerConfig{Addr: ":0"}, http.NotFoundHandler())
	assert.Equal(t, defaultReadTimeout, srv.ReadTimeout)
	assert.Equal(t, defaultWriteTimeout, srv.WriteTimeout)

	srv = New(config.ServerConfig{Addr: ":0", ReadTimeout: time.Second, WriteTimeout: 2 * time.Second}, http.NotFoundHandler())
	assert.Equal(t, time.Second, srv.ReadTimeout)
	assert.Equal(t, 2*time.Second, srv.WriteTimeout)
}
