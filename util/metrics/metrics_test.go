package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordHelpers(t *testing.T) {
	before := testutil.ToFloat64(TokenVerifyFailures.WithLabelValues("expired"))
	RecordTokenVerifyFailure("expired")
	assert.Equal(t, before+1, testutil.ToFloat64(TokenVerifyFailures.WithLabelValues("expired")))

	before = testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/x", "200"))
	RecordRequest("GET", "/x", 200, 10*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/x", "200")))

	before = testutil.ToFloat64(FailedLoginAttempts)
	RecordFailedLogin()
	assert.Equal(t, before+1, testutil.ToFloat64(FailedLoginAttempts))
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordRateLimitHit("/api/v1/auth/login")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "userhub_rate_limit_hits_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
