package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.Logins.WithLabelValues("success").Inc()
	m.Logins.WithLabelValues("failure").Add(2)
	m.LockRejections.WithLabelValues("archived").Inc()
	m.Registrations.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Logins.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Logins.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LockRejections.WithLabelValues("archived")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Registrations))
}

func TestMetrics_InstancesAreIsolated(t *testing.T) {
	a, b := New(), New()
	a.FootnoteWrites.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.FootnoteWrites))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.FootnoteWrites))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.TagMutations.WithLabelValues("add").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `grimoire_tag_mutations_total{op="add"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
