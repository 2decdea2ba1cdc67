package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edudash/internal/charts"
	"edudash/internal/dataset"
	"edudash/internal/filter"
)

func newHandler() *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewJSONHandler(io.Discard, nil)), false)
}

func TestErrorToProblem(t *testing.T) {
	h := newHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantExt    string
	}{
		{
			name:       "data unavailable",
			err:        &dataset.DataUnavailableError{Expected: "/srv/data.csv", Searched: []string{"/srv/data.csv"}},
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDataUnavailable,
			wantExt:    "expected_path",
		},
		{
			name:       "wrapped unavailable sentinel",
			err:        fmt.Errorf("reload: %w", dataset.ErrDataUnavailable),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDataUnavailable,
		},
		{
			name:       "schema",
			err:        &dataset.SchemaError{Source: "x.csv", Missing: []string{"Sede"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeSchemaMismatch,
			wantExt:    "missing_columns",
		},
		{
			name:       "parse",
			err:        &dataset.ParseError{Source: "x.csv", Line: 4, Column: "Aprobados", Value: "abc", Err: fmt.Errorf("bad")},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeDataCorrupted,
			wantExt:    "column",
		},
		{
			name:       "empty filter",
			err:        filter.ErrEmptyResult,
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeEmptyFilter,
		},
		{
			name:       "unknown chart",
			err:        fmt.Errorf("%w: pie", charts.ErrUnknownChart),
			wantStatus: http.StatusNotFound,
			wantType:   TypeUnknownChart,
		},
		{
			name:       "too large",
			err:        &http.MaxBytesError{Limit: 10},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   TypePayloadTooLarge,
		},
		{
			name:       "timeout",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "validation",
			err:        ErrValidation("sede", "unknown value"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantExt:    "errors",
		},
		{
			name:       "rate limited",
			err:        ErrRateLimitExceeded,
			wantStatus: http.StatusTooManyRequests,
			wantType:   TypeRateLimit,
			wantExt:    "error_code",
		},
		{
			name:       "unknown",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := h.ErrorToProblem(tt.err, req)
			assert.Equal(t, tt.wantStatus, p.Status)
			assert.Equal(t, tt.wantType, p.Type)
			assert.Equal(t, "/api/dashboard", p.Instance)
			if tt.wantExt != "" {
				assert.Contains(t, p.Extensions, tt.wantExt)
			}
		})
	}
}

func TestErrorToProblem_PassesProblemThrough(t *testing.T) {
	want := NewProblemDetails(http.StatusConflict, "/errors/custom", "Custom", "d", "/x")
	got := newHandler().ErrorToProblem(fmt.Errorf("wrapped: %w", want), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Same(t, want, got)
}

func TestHandleError_WritesProblemJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/export/csv", nil)

	newHandler().HandleError(rec, req, filter.ErrEmptyResult)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, TypeEmptyFilter, body["type"])
	assert.EqualValues(t, http.StatusUnprocessableEntity, body["status"])
	assert.Contains(t, body, "trace_id")
}

func TestHandleError_Nil(t *testing.T) {
	rec := httptest.NewRecorder()
	newHandler().HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Zero(t, rec.Body.Len())
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	h := newHandler()

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/dashboard", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), "DELETE")
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	p := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", "").
		WithExtension("chart", "pie").
		WithExtension("status", 999)

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "pie", body["chart"])
	assert.EqualValues(t, http.StatusNotFound, body["status"])
	assert.NotContains(t, body, "detail")
	assert.Equal(t, "Not Found", p.Error())
}
