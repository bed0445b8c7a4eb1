package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Transaction("add", 5)
	m.SetChildren(2)
	m.PersistenceFailure()
	m.Rejected("add_child")
	m.ObserveHTTP("GET", "/", 200, time.Millisecond)
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Transaction("add", 5)
	m.Transaction("add", 3)
	m.Transaction("remove", 8)
	m.SetChildren(2)
	m.PersistenceFailure()
	m.Rejected("add_child")

	out := scrape(t, reg)
	assert.Contains(t, out, `punti_state_transactions_total{kind="add"} 2`)
	assert.Contains(t, out, `punti_state_transactions_total{kind="remove"} 1`)
	assert.Contains(t, out, `punti_state_points_total{kind="add"} 8`)
	assert.Contains(t, out, `punti_state_points_total{kind="remove"} 8`)
	assert.Contains(t, out, "punti_state_children 2")
	assert.Contains(t, out, "punti_storage_persistence_failures_total 1")
	assert.Contains(t, out, `punti_state_rejected_inputs_total{operation="add_child"} 1`)
}

func TestObserveHTTP(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveHTTP(http.MethodPost, "/pad/confirm", 200, 20*time.Millisecond)

	out := scrape(t, reg)
	assert.Contains(t, out, `punti_http_request_duration_seconds_count{method="POST",route="/pad/confirm",status="200"} 1`)
}
