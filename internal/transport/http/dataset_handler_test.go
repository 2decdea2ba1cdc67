package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetHandler_Upload(t *testing.T) {
	tests := []struct {
		name           string
		field          string
		filename       string
		content        string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "valid csv",
			field:          uploadField,
			filename:       "subido.csv",
			content:        testCSV,
			expectedStatus: http.StatusCreated,
			expectedBody:   `"filename":"subido.csv"`,
		},
		{
			name:           "wrong extension",
			field:          uploadField,
			filename:       "notas.txt",
			content:        testCSV,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"VALIDATION_FAILED"`,
		},
		{
			name:           "empty file",
			field:          uploadField,
			filename:       "vacio.csv",
			content:        "",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"VALIDATION_FAILED"`,
		},
		{
			name:           "missing file field",
			field:          "other",
			filename:       "subido.csv",
			content:        testCSV,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"file"`,
		},
		{
			name:           "missing columns",
			field:          uploadField,
			filename:       "corto.csv",
			content:        "Periodo;Sede\n2024-I;A\n",
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)
			router := NewDatasetHandler(f.service, testValidator(), testErrorHandler(), 0, testLogger()).Routes()

			body, contentType := multipartBody(t, tt.field, tt.filename, tt.content)
			req := httptest.NewRequest(http.MethodPost, "/upload", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.expectedBody != "" {
				assert.Contains(t, rec.Body.String(), tt.expectedBody)
			}
			assert.Equal(t, tt.expectedStatus == http.StatusCreated, f.service.HasUpload())
		})
	}
}

func TestDatasetHandler_UploadContentType(t *testing.T) {
	f := newFixture(t, false)
	router := NewDatasetHandler(f.service, testValidator(), testErrorHandler(), 0, testLogger()).Routes()

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(`{"file":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestDatasetHandler_UploadTooLarge(t *testing.T) {
	f := newFixture(t, false)
	router := NewDatasetHandler(f.service, testValidator(), testErrorHandler(), 64, testLogger()).Routes()

	body, contentType := multipartBody(t, uploadField, "grande.csv", testCSV)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Contains(t, []int{http.StatusRequestEntityTooLarge, http.StatusBadRequest}, rec.Code)
	assert.False(t, f.service.HasUpload())
}

func TestDatasetHandler_Lifecycle(t *testing.T) {
	f := newFixture(t, true)
	router := NewDatasetHandler(f.service, testValidator(), testErrorHandler(), 0, testLogger()).Routes()

	do := func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	rec := do(http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"active_source":"local"`)
	assert.Contains(t, rec.Body.String(), `"available":true`)

	body, contentType := multipartBody(t, uploadField, "subido.csv", testCSV)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	up := httptest.NewRecorder()
	router.ServeHTTP(up, req)
	require.Equal(t, http.StatusCreated, up.Code, up.Body.String())

	rec = do(http.MethodGet, "/")
	assert.Contains(t, rec.Body.String(), `"active_source":"upload"`)

	rec = do(http.MethodDelete, "/upload")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cleared":true`)

	rec = do(http.MethodDelete, "/upload")
	assert.Contains(t, rec.Body.String(), `"cleared":false`)

	rec = do(http.MethodPost, "/reload")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "datos.csv")
}

func TestDatasetHandler_ReloadMissingFile(t *testing.T) {
	f := newFixture(t, false)
	router := NewDatasetHandler(f.service, testValidator(), testErrorHandler(), 0, testLogger()).Routes()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reload", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"expected_path"`)
}
