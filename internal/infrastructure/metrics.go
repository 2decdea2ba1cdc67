package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Render pass outcomes
const (
	OutcomeOK          = "ok"
	OutcomeEmptyFilter = "empty_filter"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// DashboardMetrics holds the HTTP and dashboard instruments. A nil
// *DashboardMetrics is valid and records nothing.
type DashboardMetrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	RenderPasses   metric.Int64Counter
	RenderDuration metric.Float64Histogram
	FilteredRows   metric.Int64Histogram
	CacheLookups   metric.Int64Counter
	DatasetLoads   metric.Int64Counter
	RowsDropped    metric.Int64Counter
	ChartFallbacks metric.Int64Counter
	Exports        metric.Int64Counter
}

// NewDashboardMetrics creates the instruments on meter
func NewDashboardMetrics(meter metric.Meter) (*DashboardMetrics, error) {
	var (
		m   DashboardMetrics
		err error
	)
	if m.HTTPRequestsTotal, err = meter.Int64Counter("http_requests_total",
		metric.WithDescription("Total number of HTTP requests")); err != nil {
		return nil, err
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter("http_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests")); err != nil {
		return nil, err
	}
	if m.RenderPasses, err = meter.Int64Counter("dashboard_render_passes_total",
		metric.WithDescription("Dashboard render passes by source and outcome")); err != nil {
		return nil, err
	}
	if m.RenderDuration, err = meter.Float64Histogram("dashboard_render_duration_seconds",
		metric.WithDescription("Time to filter and aggregate one render pass"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.FilteredRows, err = meter.Int64Histogram("dashboard_filtered_rows",
		metric.WithDescription("Rows left after filtering")); err != nil {
		return nil, err
	}
	if m.CacheLookups, err = meter.Int64Counter("dataset_cache_lookups_total",
		metric.WithDescription("Dataset cache lookups by result")); err != nil {
		return nil, err
	}
	if m.DatasetLoads, err = meter.Int64Counter("dataset_loads_total",
		metric.WithDescription("Dataset parses by source and outcome")); err != nil {
		return nil, err
	}
	if m.RowsDropped, err = meter.Int64Counter("dataset_rows_dropped_total",
		metric.WithDescription("Rows removed by the cleaner")); err != nil {
		return nil, err
	}
	if m.ChartFallbacks, err = meter.Int64Counter("chart_fallbacks_total",
		metric.WithDescription("Charts served as tables")); err != nil {
		return nil, err
	}
	if m.Exports, err = meter.Int64Counter("dashboard_exports_total",
		metric.WithDescription("Exports by format")); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordRender records one render pass
func (m *DashboardMetrics) RecordRender(ctx context.Context, source, outcome string, rows int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("outcome", outcome),
	)
	m.RenderPasses.Add(ctx, 1, attrs)
	m.RenderDuration.Record(ctx, d.Seconds(), attrs)
	if outcome == OutcomeOK || outcome == OutcomeEmptyFilter {
		m.FilteredRows.Record(ctx, int64(rows), metric.WithAttributes(attribute.String("source", source)))
	}
}

// RecordCacheLookup counts a dataset cache hit or miss
func (m *DashboardMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordLoad counts a dataset parse and the rows the cleaner dropped
func (m *DashboardMetrics) RecordLoad(ctx context.Context, source string, err error, dropped int) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.DatasetLoads.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("outcome", outcome),
	))
	if dropped > 0 {
		m.RowsDropped.Add(ctx, int64(dropped), metric.WithAttributes(attribute.String("source", source)))
	}
}

// RecordChartFallback counts a chart served as a table
func (m *DashboardMetrics) RecordChartFallback(ctx context.Context, chart string) {
	if m == nil {
		return
	}
	m.ChartFallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("chart", chart)))
}

// RecordExport counts an export download
func (m *DashboardMetrics) RecordExport(ctx context.Context, format string) {
	if m == nil {
		return
	}
	m.Exports.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
}
