package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	r.DatasetLoaded("ok", 10, 8, 2)
	r.DatasetLoaded("cached", 0, 0, 0)
	r.Insight("ok", 1500*time.Millisecond)
	r.Insight("cached", 0)
	r.HTTPRequest("GET", "/api/dashboard", 200, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.loads.WithLabelValues("ok")))
	assert.Equal(t, 8.0, testutil.ToFloat64(r.rows.WithLabelValues("kept")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.rows.WithLabelValues("dropped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.insights.WithLabelValues("cached")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.requests.WithLabelValues("GET", "/api/dashboard", "200")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	r.Insight("api_error", time.Second)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.True(t, strings.Contains(string(body), `salesdash_insight_requests_total{outcome="api_error"} 1`), string(body))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.DatasetLoaded("ok", 1, 1, 0)
	r.Insight("ok", time.Second)
	r.HTTPRequest("GET", "/", 200, time.Millisecond)
	assert.Nil(t, r.Registry())
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}
