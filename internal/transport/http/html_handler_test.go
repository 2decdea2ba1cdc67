package http

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edudash/internal/charts"
	"edudash/internal/config"
)

func newTestPageHandler(t *testing.T, f *fixture) *PageHandler {
	t.Helper()
	cfg := config.Default().Dashboard
	h, err := NewPageHandler(f.service, testValidator(), testErrorHandler(), cfg, testLogger())
	require.NoError(t, err)
	return h
}

func TestPageHandler_ServePage(t *testing.T) {
	tests := []struct {
		name           string
		withData       bool
		query          string
		expectedStatus int
		contains       []string
		notContains    []string
	}{
		{
			name:           "full dashboard",
			withData:       true,
			expectedStatus: http.StatusOK,
			contains: []string{
				config.DefaultPageTitle,
				"Inscripciones",
				"% Aprobación",
				"Sedes activas",
				"/api/dashboard/charts/" + string(charts.EnrollmentByCourse),
				"Descargar datos filtrados (CSV)",
				`value="A" selected`,
			},
		},
		{
			name:           "filtered selection keeps other options visible",
			withData:       true,
			query:          "sede=B",
			expectedStatus: http.StatusOK,
			contains:       []string{`value="A" >`, `value="B" selected`},
		},
		{
			name:           "empty selection shows a warning",
			withData:       true,
			query:          "curso=",
			expectedStatus: http.StatusOK,
			contains:       []string{"Con esos filtros no hay datos"},
			notContains:    []string{"Descargar Excel"},
		},
		{
			name:           "missing local file",
			withData:       false,
			expectedStatus: http.StatusServiceUnavailable,
			contains:       []string{"No encontré el CSV local.", "datos.csv", "(recomendado)"},
		},
		{
			name:           "upload mode without upload",
			withData:       true,
			query:          "source=upload",
			expectedStatus: http.StatusOK,
			contains:       []string{"Sube un archivo CSV para continuar."},
		},
		{
			name:           "unknown filter key",
			withData:       true,
			query:          "colegio=X",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.withData)
			h := newTestPageHandler(t, f)

			rec := httptest.NewRecorder()
			h.ServePage(rec, httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			body := rec.Body.String()
			for _, s := range tt.contains {
				assert.Contains(t, body, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, body, s)
			}
		})
	}
}

func TestPageHandler_ChartsFallBackToTables(t *testing.T) {
	f := newFixture(t, true)
	h := newTestPageHandler(t, f)

	rec := httptest.NewRecorder()
	h.ServePage(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	// treemaps have no image renderer
	assert.NotContains(t, body, "/api/dashboard/charts/"+string(charts.EnrollmentTreemap))
	assert.Contains(t, body, charts.EnrollmentTreemap.Title())
	assert.Contains(t, body, "/api/dashboard/charts/"+string(charts.PassRateHeatmap))
	// image URLs pin the source they were rendered from
	assert.Contains(t, body, "source=local")
}

func TestPageHandler_UploadPage(t *testing.T) {
	t.Run("valid upload redirects to upload mode", func(t *testing.T) {
		f := newFixture(t, false)
		h := newTestPageHandler(t, f)

		body, contentType := multipartBody(t, uploadField, "subido.csv", testCSV)
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		h.UploadPage(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/?source=upload", rec.Header().Get("Location"))
		require.NotNil(t, f.service.CurrentUpload())
		assert.Equal(t, "subido.csv", f.service.CurrentUpload().Filename)

		rec = httptest.NewRecorder()
		h.ServePage(rec, httptest.NewRequest(http.MethodGet, "/?source=upload", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Archivo subido: subido.csv")
	})

	t.Run("rejected upload keeps the form", func(t *testing.T) {
		f := newFixture(t, false)
		h := newTestPageHandler(t, f)

		body, contentType := multipartBody(t, uploadField, "notas.txt", testCSV)
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		h.UploadPage(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), `action="/upload"`)
		assert.Nil(t, f.service.CurrentUpload())
	})

	t.Run("no file", func(t *testing.T) {
		f := newFixture(t, false)
		h := newTestPageHandler(t, f)

		body, contentType := multipartBody(t, "other", "subido.csv", testCSV)
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		h.UploadPage(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Sube un archivo CSV para continuar.")
	})
}

func TestPageHandler_ServeLogo(t *testing.T) {
	f := newFixture(t, true)
	h := newTestPageHandler(t, f)

	rec := httptest.NewRecorder()
	h.ServeLogo(rec, httptest.NewRequest(http.MethodGet, "/assets/logo.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	png := []byte("\x89PNG\r\n\x1a\nfake")
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "logo.png"), png, 0644))

	rec = httptest.NewRecorder()
	h.ServeLogo(rec, httptest.NewRequest(http.MethodGet, "/assets/logo.png", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, png, rec.Body.Bytes())

	rec = httptest.NewRecorder()
	h.ServePage(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, rec.Body.String(), `src="/assets/logo.png"`)
}
