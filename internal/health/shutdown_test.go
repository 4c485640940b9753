package health_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wealth-tithe/internal/health"
)

func TestReadinessFlipsDuringShutdown(t *testing.T) {
	t.Cleanup(func() { health.SetReady(true) })
	handler := health.Handler{}
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)

	rec := httptest.NewRecorder()
	handler.Ready(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	health.SetReady(false)
	rec = httptest.NewRecorder()
	handler.Ready(rec, req)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.JSONEq(t, `{"status":"shutting_down"}`, rec.Body.String())

	// liveness is unaffected; the process is healthy, just draining
	rec = httptest.NewRecorder()
	handler.Live(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
