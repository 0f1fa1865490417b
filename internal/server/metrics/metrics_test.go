package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordQuery(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)

	m.RecordQuery("plate", "ok", 120, 2)
	m.RecordQuery("plate", "no_data_for_plate", 10, 0)
	m.RecordQuery("agency", "ok", 0, 3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.queriesTotal.WithLabelValues("plate", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queriesTotal.WithLabelValues("agency", "ok")))

	var rows, states dto.Metric
	require.NoError(t, m.tableRows.Write(&rows))
	require.NoError(t, m.coveredStates.Write(&states))
	assert.Equal(t, uint64(2), rows.GetHistogram().GetSampleCount())
	assert.Equal(t, uint64(2), states.GetHistogram().GetSampleCount())
}

func TestRegisterTwiceFails(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := New(registry)
	require.NoError(t, err)
	_, err = New(registry)
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)
	m.SetCatalogEntries(42)
	m.RecordHTTPRequest(http.MethodGet, "/health", http.StatusOK, 0.01)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "platemap_catalog_entries 42")
	assert.Contains(t, body, `platemap_http_requests_total{method="GET",path="/health",status_code="200"} 1`)
}
