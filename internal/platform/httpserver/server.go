// Package httpserver assembles the chi router and the http.Server that
// serves it.
package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ipguard/internal/platform/config"
	"ipguard/internal/platform/metrics"
	"ipguard/pkg/platform/middleware/admin"
	request "ipguard/pkg/platform/middleware/request"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 30 * time.Second
	idleTimeout         = 60 * time.Second

	runtimeHeader = "X-Runtime-Token"
)

// Registrar mounts public routes.
type Registrar interface {
	Register(r chi.Router)
}

// AdminRegistrar mounts routes behind the admin token.
type AdminRegistrar interface {
	RegisterAdmin(r chi.Router)
}

// Routes lists everything the router serves. Runtime routes are the session
// intake used by the hosting runtime.
type Routes struct {
	Public  []Registrar
	Runtime []Registrar
	Admin   []AdminRegistrar
	Metrics http.Handler
}

// Tokens holds the credentials guarding the non-public route groups.
type Tokens struct {
	Admin   string
	Runtime string
}

// NewRouter builds the middleware stack and mounts routes. Runtime and admin
// routes are only mounted when their token is set.
func NewRouter(routes Routes, tokens Tokens, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(logger))
	r.Use(latency(m))

	for _, reg := range routes.Public {
		reg.Register(r)
	}
	if routes.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", routes.Metrics)
	}

	switch {
	case tokens.Runtime != "":
		r.Group(func(rr chi.Router) {
			rr.Use(admin.RequireToken(runtimeHeader, tokens.Runtime, logger))
			for _, reg := range routes.Runtime {
				reg.Register(rr)
			}
		})
	case len(routes.Runtime) > 0:
		logger.Warn("runtime token not configured; session intake disabled")
	}

	switch {
	case tokens.Admin != "":
		r.Group(func(ar chi.Router) {
			ar.Use(admin.RequireAdminToken(tokens.Admin, logger))
			for _, reg := range routes.Admin {
				reg.RegisterAdmin(ar)
			}
		})
	case len(routes.Admin) > 0:
		logger.Warn("admin token not configured; admin routes disabled")
	}
	return r
}

// latency records request duration under the matched route pattern so ids
// in paths do not explode label cardinality.
func latency(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = r.Method + " " + p
				}
			}
			m.ObserveEndpointLatency(route, time.Since(start).Seconds())
		})
	}
}

// New returns a server for handler using the configured timeouts.
func New(cfg config.ServerConfig, handler http.Handler) *http.Server {
	read, write := cfg.ReadTimeout, cfg.WriteTimeout
	if read <= 0 {
		read = defaultReadTimeout
	}
	if write <= 0 {
		write = defaultWriteTimeout
	}
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       read,
		ReadHeaderTimeout: read,
		WriteTimeout:      write,
		IdleTimeout:       idleTimeout,
	}
}
