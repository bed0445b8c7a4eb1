// Package metrics exposes Prometheus instruments for the tracker.
//
// Instruments are registered against a caller-supplied registerer so serve
// and tests each get their own registry. A nil *Metrics is a valid no-op.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "punti"

type Metrics struct {
	transactions        *prometheus.CounterVec
	pointsMoved         *prometheus.CounterVec
	children            prometheus.Gauge
	persistenceFailures prometheus.Counter
	rejectedInputs      *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		transactions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "state",
			Name:      "transactions_total",
			Help:      "Confirmed point transactions by kind.",
		}, []string{"kind"}),
		pointsMoved: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "state",
			Name:      "points_total",
			Help:      "Requested points moved by transactions, by kind.",
		}, []string{"kind"}),
		children: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "state",
			Name:      "children",
			Help:      "Number of tracked children.",
		}),
		persistenceFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "persistence_failures_total",
			Help:      "Writes to the key-value store that failed.",
		}),
		rejectedInputs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "state",
			Name:      "rejected_inputs_total",
			Help:      "Operations rejected by validation, by operation.",
		}, []string{"operation"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) Transaction(kind string, amount int) {
	if m == nil {
		return
	}
	m.transactions.WithLabelValues(kind).Inc()
	m.pointsMoved.WithLabelValues(kind).Add(float64(amount))
}

func (m *Metrics) SetChildren(n int) {
	if m == nil {
		return
	}
	m.children.Set(float64(n))
}

func (m *Metrics) PersistenceFailure() {
	if m == nil {
		return
	}
	m.persistenceFailures.Inc()
}

func (m *Metrics) Rejected(operation string) {
	if m == nil {
		return
	}
	m.rejectedInputs.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
