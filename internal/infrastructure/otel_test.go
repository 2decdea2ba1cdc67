package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"edudash/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestInitializeOTel(t *testing.T) {
	tests := []struct {
		name      string
		exporter  string
		wantTrace bool
		wantErr   bool
	}{
		{name: "none", exporter: "none"},
		{name: "empty", exporter: ""},
		{name: "stdout", exporter: "stdout", wantTrace: true},
		{name: "unsupported", exporter: "jaeger", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(config.TelemetryConfig{
				ServiceName:   "edudash-test",
				TraceExporter: tt.exporter,
			}, quietLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer providers.Shutdown(context.Background())

			assert.NotNil(t, providers.Tracer)
			assert.NotNil(t, providers.Meter)
			assert.NotNil(t, providers.PrometheusHTTP)
			assert.Equal(t, tt.wantTrace, providers.TracerProvider != nil)
		})
	}
}

func TestTraceCorrelation(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{ServiceName: "edudash-test", TraceExporter: "stdout"}, quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := otel.Tracer("test").Start(context.Background(), "render")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.NotEmpty(t, traceID)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)

	RecordError(ctx, errors.New("boom"))
	assert.Empty(t, TraceIDFromContext(context.Background()))
}

func TestDashboardMetrics_Scrape(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{ServiceName: "edudash-test"}, quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	m, err := NewDashboardMetrics(providers.Meter)
	require.NoError(t, err)
	require.NoError(t, RegisterRuntimeGauges(providers.Meter, time.Now()))

	ctx := context.Background()
	m.RecordRender(ctx, "local", OutcomeOK, 12, 5*time.Millisecond)
	m.RecordRender(ctx, "upload", OutcomeEmptyFilter, 0, time.Millisecond)
	m.RecordCacheLookup(ctx, true)
	m.RecordCacheLookup(ctx, false)
	m.RecordLoad(ctx, "local", nil, 3)
	m.RecordChartFallback(ctx, "academic-funnel")
	m.RecordExport(ctx, "csv")

	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	for _, name := range []string{
		"dashboard_render_passes_total",
		"dataset_cache_lookups_total",
		"chart_fallbacks_total",
		"runtime_goroutines",
	} {
		assert.Contains(t, string(body), name)
	}
}

func TestDashboardMetrics_NilIsNoop(t *testing.T) {
	var m *DashboardMetrics
	assert.NotPanics(t, func() {
		ctx := context.Background()
		m.RecordRender(ctx, "local", OutcomeOK, 1, time.Second)
		m.RecordCacheLookup(ctx, true)
		m.RecordLoad(ctx, "local", errors.New("x"), 0)
		m.RecordChartFallback(ctx, "x")
		m.RecordExport(ctx, "xlsx")
	})
}

func TestCollectRuntimeStats(t *testing.T) {
	stats := CollectRuntimeStats(time.Now().Add(-time.Minute))
	assert.Positive(t, stats.Goroutines)
	assert.Positive(t, stats.CPUCount)
	assert.GreaterOrEqual(t, stats.UptimeSeconds, 60.0)
}
