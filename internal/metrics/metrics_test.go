package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerServesOpenMetrics(t *testing.T) {
	JobsStarted.WithLabelValues("keygen", "initiator").Inc()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()

	Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "tss_node_jobs_started_total")
}

func TestCountersAreDistinctByLabel(t *testing.T) {
	StorageOps.Reset()
	StorageOps.WithLabelValues("write", "ok").Inc()
	StorageOps.WithLabelValues("write", "ok").Inc()
	StorageOps.WithLabelValues("write", "error").Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(StorageOps.WithLabelValues("write", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(StorageOps.WithLabelValues("write", "error")))
}
