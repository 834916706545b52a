package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every Prometheus collector ipguard exports. All methods are
// safe on a nil receiver so components can run without metrics.
type Metrics struct {
	registry *prometheus.Registry

	Sweeps              prometheus.Counter
	SweepDuration       prometheus.Histogram
	ConnectedPrincipals prometheus.Gauge
	Evaluations         *prometheus.CounterVec
	Remediations        *prometheus.CounterVec
	TokensIssued        prometheus.Counter
	TokensConsumed      *prometheus.CounterVec
	TokensExpired       prometheus.Counter
	PendingTokens       prometheus.Gauge
	Dispatches          *prometheus.CounterVec
	StoreLatency        *prometheus.HistogramVec
	EndpointLatency     *prometheus.HistogramVec
}

// New creates collectors on a fresh registry that also carries the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := NewWith(reg)
	m.registry = reg
	return m
}

// NewWith registers collectors on reg.
func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Sweeps: f.NewCounter(prometheus.CounterOpts{
			Name: "ipguard_sweeps_total",
			Help: "Completed verification sweeps",
		}),
		SweepDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ipguard_sweep_duration_seconds",
			Help:    "Wall time of one verification sweep",
			Buckets: prometheus.DefBuckets,
		}),
		ConnectedPrincipals: f.NewGauge(prometheus.GaugeOpts{
			Name: "ipguard_connected_principals",
			Help: "Principals seen by the most recent sweep",
		}),
		Evaluations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ipguard_evaluations_total",
			Help: "Policy evaluations by trigger and outcome",
		}, []string{"trigger", "outcome"}),
		Remediations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ipguard_remediations_total",
			Help: "DENY remediations by trigger",
		}, []string{"trigger"}),
		TokensIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "ipguard_approval_tokens_issued_total",
			Help: "Approval tokens registered",
		}),
		TokensConsumed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ipguard_approval_tokens_consumed_total",
			Help: "Operator approval attempts by result (applied, ignored, failed)",
		}, []string{"result"}),
		TokensExpired: f.NewCounter(prometheus.CounterOpts{
			Name: "ipguard_approval_tokens_expired_total",
			Help: "Approval tokens removed after their TTL",
		}),
		PendingTokens: f.NewGauge(prometheus.GaugeOpts{
			Name: "ipguard_approval_tokens_pending",
			Help: "Approval tokens awaiting an operator",
		}),
		Dispatches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ipguard_notifications_total",
			Help: "Notification dispatch attempts by sink and result",
		}, []string{"sink", "result"}),
		StoreLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ipguard_trust_store_latency_seconds",
			Help:    "Trust store operation latency",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"backend", "op"}),
		EndpointLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ipguard_endpoint_latency_seconds",
			Help:    "HTTP endpoint latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Handler serves the registry created by New. Metrics built with NewWith
// fall back to the default gatherer.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveSweep(seconds float64, principals int) {
	if m == nil {
		return
	}
	m.Sweeps.Inc()
	m.SweepDuration.Observe(seconds)
	m.ConnectedPrincipals.Set(float64(principals))
}

func (m *Metrics) IncEvaluation(trigger, outcome string) {
	if m == nil {
		return
	}
	m.Evaluations.WithLabelValues(trigger, outcome).Inc()
}

func (m *Metrics) IncRemediation(trigger string) {
	if m == nil {
		return
	}
	m.Remediations.WithLabelValues(trigger).Inc()
}

func (m *Metrics) IncTokenIssued() {
	if m == nil {
		return
	}
	m.TokensIssued.Inc()
}

func (m *Metrics) IncTokenConsumed(result string) {
	if m == nil {
		return
	}
	m.TokensConsumed.WithLabelValues(result).Inc()
}

func (m *Metrics) AddTokensExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.TokensExpired.Add(float64(n))
}

func (m *Metrics) SetPendingTokens(n int) {
	if m == nil {
		return
	}
	m.PendingTokens.Set(float64(n))
}

func (m *Metrics) IncDispatch(sink, result string) {
	if m == nil {
		return
	}
	m.Dispatches.WithLabelValues(sink, result).Inc()
}

func (m *Metrics) ObserveStore(backend, op string, seconds float64) {
	if m == nil {
		return
	}
	m.StoreLatency.WithLabelValues(backend, op).Observe(seconds)
}

func (m *Metrics) ObserveEndpointLatency(route string, seconds float64) {
	if m == nil {
		return
	}
	m.EndpointLatency.WithLabelValues(route).Observe(seconds)
}
