package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"edudash/internal/services"
)

func TestHealthHandler_Routes(t *testing.T) {
	tests := []struct {
		name           string
		withData       bool
		path           string
		expectedStatus int
		expectedBody   string
	}{
		{"health", true, "/", http.StatusOK, `"status":"ok"`},
		{"liveness", false, "/live", http.StatusOK, `"status":"alive"`},
		{"ready with data", true, "/ready", http.StatusOK, `"status":"ready"`},
		{"not ready without data", false, "/ready", http.StatusServiceUnavailable, `"status":"not_ready"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.withData)
			hs := services.NewHealthService("1.2.3", "", f.service, testLogger())
			router := NewHealthHandler(hs, testLogger()).Routes()

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
		})
	}
}

func TestHealthHandler_Version(t *testing.T) {
	hs := services.NewHealthService("1.2.3", "2026-01-01T00:00:00Z", nil, testLogger())
	h := NewHealthHandler(hs, testLogger())

	rec := httptest.NewRecorder()
	h.Version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"1.2.3"`)
	assert.Contains(t, rec.Body.String(), `"build_time":"2026-01-01T00:00:00Z"`)
}

func TestMetricsHandler(t *testing.T) {
	t.Run("nil exporter", func(t *testing.T) {
		h := NewMetricsHandler(nil, testErrorHandler())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "SERVICE_UNAVAILABLE")
	})

	t.Run("delegates to the exporter", func(t *testing.T) {
		exporter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain; version=0.0.4")
			_, _ = w.Write([]byte("edudash_render_total 1\n"))
		})
		h := NewMetricsHandler(exporter, testErrorHandler())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Body.String(), "edudash_render_total"))
	})
}
