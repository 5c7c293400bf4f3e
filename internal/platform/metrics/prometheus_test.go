package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
)

func TestMetricsManager_CountersAreExposed(t *testing.T) {
	m := NewMetricsManager("housing-service")

	m.ListingsCreatedTotal.Inc()
	m.BlobCleanupTotal.WithLabelValues(CleanupRetried).Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ListingsCreatedTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BlobCleanupTotal.WithLabelValues(CleanupRetried)))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "housing_service_listings_created_total 1")
	assert.Contains(t, string(body), `housing_service_blob_cleanup_total{result="retried"} 2`)
}

func TestNewMetricsServer_DisabledWithoutPort(t *testing.T) {
	assert.Nil(t, NewMetricsServer("", logger.NewNop(), NewMetricsManager("x")))

	srv := NewMetricsServer("9100", logger.NewNop(), NewMetricsManager("y"))
	require.NotNil(t, srv)
	assert.Equal(t, ":9100", srv.Addr)
}
