package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"edudash/internal/analytics"
	"edudash/internal/charts"
	"edudash/internal/config"
	"edudash/internal/dataset"
	"edudash/internal/exporter"
	"edudash/internal/filter"
	"edudash/internal/infrastructure"
	"edudash/pkg/contracts/domain"
)

// TracerName names the spans started by the service layer
const TracerName = "edudash.services"

// Source selects where a render pass reads its records from
type Source string

const (
	SourceLocal  Source = "local"
	SourceUpload Source = "upload"
)

// ParseSource maps a query value to a Source. An empty value parses to
// the empty Source, which picks the upload when one is active.
func ParseSource(s string) (Source, error) {
	switch src := Source(strings.ToLower(strings.TrimSpace(s))); src {
	case "", SourceLocal, SourceUpload:
		return src, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSource, s)
}

// Query describes one render pass. A nil Selection is unrestricted.
type Query struct {
	Source    Source
	Selection domain.Selection
}

// View is the outcome of a render pass. Dashboard stays nil when the
// selection matched no rows or when the pass stopped after filtering.
type View struct {
	Source    Source                        `json:"source"`
	Name      string                        `json:"name"`
	Options   map[domain.Dimension][]string `json:"options"`
	Selection domain.Selection              `json:"selection"`
	Clean     dataset.CleanStats            `json:"clean"`
	Rows      int                           `json:"rows"`
	Dashboard *domain.Dashboard             `json:"dashboard,omitempty"`
	Filtered  *domain.Dataset               `json:"-"`
}

// active is the cleaned dataset a pass runs on
type active struct {
	source Source
	name   string
	data   *domain.Dataset
	stats  dataset.CleanStats
}

// cleaned memoizes Clean for the last raw dataset handed out by the cache
type cleaned struct {
	raw   *domain.Dataset
	data  *domain.Dataset
	stats dataset.CleanStats
}

// DashboardServiceOption configures a DashboardService
type DashboardServiceOption func(*DashboardService)

// WithMetrics records render, load and export metrics
func WithMetrics(m *infrastructure.DashboardMetrics) DashboardServiceOption {
	return func(s *DashboardService) { s.metrics = m }
}

// WithChartSize sets the canvas of rendered charts
func WithChartSize(width, height int) DashboardServiceOption {
	return func(s *DashboardService) {
		s.chartWidth, s.chartHeight = width, height
	}
}

// DashboardService runs render passes: resolve, load, clean, filter and
// aggregate. It also owns the uploaded dataset and the exports.
type DashboardService struct {
	resolver *dataset.Resolver
	cache    *dataset.Cache
	loader   *dataset.Loader
	renderer *charts.Renderer
	csv      *exporter.CSVWriter
	excel    *exporter.ExcelWriter
	metrics  *infrastructure.DashboardMetrics
	tracer   trace.Tracer
	logger   *slog.Logger
	now      func() time.Time

	chartWidth  int
	chartHeight int

	mu     sync.Mutex
	local  cleaned
	upload *Upload
}

// NewDashboardService creates the service over a resolver and a dataset cache
func NewDashboardService(resolver *dataset.Resolver, cache *dataset.Cache, loader *dataset.Loader, logger *slog.Logger, opts ...DashboardServiceOption) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &DashboardService{
		resolver: resolver,
		cache:    cache,
		loader:   loader,
		tracer:   otel.Tracer(TracerName),
		logger:   logger.With(slog.String("component", "dashboard_service")),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.csv = exporter.NewCSVWriter(dataset.Separator, logger)
	s.excel = exporter.NewExcelWriter(logger)
	s.renderer = charts.NewRenderer(
		charts.WithSize(s.chartWidth, s.chartHeight),
		charts.WithLogger(logger),
		charts.WithFallbackHook(func(ctx context.Context, k charts.Kind, reason string) {
			s.metrics.RecordChartFallback(ctx, string(k))
		}),
	)

	s.logger.Info("DashboardService initialized",
		slog.String("expected_data_path", resolver.Expected()))
	return s
}

// Render runs a full pass. When the selection matches nothing it returns
// the view without a dashboard together with filter.ErrEmptyResult, and
// no aggregate is computed.
func (s *DashboardService) Render(ctx context.Context, q Query) (*View, error) {
	start := s.now()
	ctx, span := s.tracer.Start(ctx, "dashboard.render",
		trace.WithAttributes(attribute.String("dashboard.source", string(q.Source))))
	defer span.End()

	view, err := s.filter(ctx, q)
	if err != nil {
		s.finish(ctx, q.Source, view, err, start)
		return view, err
	}

	dash := analytics.Build(view.Filtered)
	view.Dashboard = &dash
	span.SetAttributes(attribute.Int("dashboard.rows", view.Rows))

	s.finish(ctx, view.Source, view, nil, start)
	return view, nil
}

// Filter runs a pass up to the filter stage
func (s *DashboardService) Filter(ctx context.Context, q Query) (*View, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.filter")
	defer span.End()

	view, err := s.filter(ctx, q)
	if err != nil && !errors.Is(err, filter.ErrEmptyResult) {
		infrastructure.RecordError(ctx, err)
	}
	return view, err
}

func (s *DashboardService) filter(ctx context.Context, q Query) (*View, error) {
	src, err := s.active(ctx, q.Source)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	view := &View{
		Source:  src.source,
		Name:    src.name,
		Options: filter.Options(src.data),
		Clean:   src.stats,
	}
	view.Selection = effectiveSelection(view.Options, q.Selection)
	filtered, err := filter.ApplyNonEmpty(src.data, q.Selection)
	view.Filtered = filtered
	view.Rows = filtered.Len()
	if err != nil {
		return view, err
	}
	return view, ctx.Err()
}

func (s *DashboardService) finish(ctx context.Context, src Source, view *View, err error, start time.Time) {
	outcome := infrastructure.OutcomeOK
	rows := 0
	if view != nil {
		src = view.Source
		rows = view.Rows
	}
	switch {
	case err == nil:
	case errors.Is(err, filter.ErrEmptyResult):
		outcome = infrastructure.OutcomeEmptyFilter
		s.logger.InfoContext(ctx, "Selection matched no rows",
			slog.String("source", string(src)))
	case errors.Is(err, dataset.ErrDataUnavailable):
		outcome = infrastructure.OutcomeUnavailable
		infrastructure.RecordError(ctx, err)
	default:
		outcome = infrastructure.OutcomeError
		infrastructure.RecordError(ctx, err)
	}
	s.metrics.RecordRender(ctx, string(src), outcome, rows, s.now().Sub(start))
}

// effectiveSelection expands sel to every dimension of opts, so that
// unrestricted dimensions list all of their values.
func effectiveSelection(opts map[domain.Dimension][]string, sel domain.Selection) domain.Selection {
	out := domain.NewSelection()
	for dim, values := range opts {
		if sel.Restricted(dim) {
			out.With(dim, sel[dim]...)
			continue
		}
		out.With(dim, values...)
	}
	return out
}

func (s *DashboardService) active(ctx context.Context, src Source) (active, error) {
	if src == "" {
		src = SourceLocal
		if s.HasUpload() {
			src = SourceUpload
		}
	}

	switch src {
	case SourceUpload:
		s.mu.Lock()
		up := s.upload
		s.mu.Unlock()
		if up == nil {
			return active{}, ErrNoUpload
		}
		return active{source: SourceUpload, name: up.Filename, data: up.data, stats: up.Clean}, nil
	case SourceLocal:
		return s.localDataset(ctx)
	}
	return active{}, fmt.Errorf("%w: %q", ErrInvalidSource, src)
}

func (s *DashboardService) localDataset(ctx context.Context) (active, error) {
	path, err := s.resolver.Resolve()
	if err != nil {
		s.logger.WarnContext(ctx, "Data file not found",
			slog.String("expected", s.resolver.Expected()))
		return active{}, err
	}

	raw, err := s.cache.Get(ctx, path)
	if err != nil {
		if !errors.Is(err, dataset.ErrDataUnavailable) && ctx.Err() == nil {
			s.metrics.RecordLoad(ctx, string(SourceLocal), err, 0)
			s.logger.ErrorContext(ctx, "Failed to load data file",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
		return active{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.local.raw != raw {
		data, stats := dataset.Clean(raw)
		s.local = cleaned{raw: raw, data: data, stats: stats}
		s.metrics.RecordLoad(ctx, string(SourceLocal), nil, stats.Dropped)
		s.logger.InfoContext(ctx, "Data file loaded",
			slog.String("path", path),
			slog.Int("rows", stats.Input),
			slog.Int("dropped", stats.Dropped))
	}
	return active{source: SourceLocal, name: path, data: s.local.data, stats: s.local.stats}, nil
}

// Chart renders one chart of the pass described by q
func (s *DashboardService) Chart(ctx context.Context, q Query, kind charts.Kind, format charts.Format) (charts.Result, error) {
	view, err := s.Render(ctx, q)
	if err != nil {
		return charts.Result{}, err
	}
	return s.renderer.Render(ctx, kind, *view.Dashboard, format)
}

// ExportFormat names a download format
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// Filename is the name offered to the browser
func (f ExportFormat) Filename() string {
	if f == ExportXLSX {
		return config.ExportXLSXName
	}
	return config.ExportCSVName
}

// ContentType is the MIME type of the download
func (f ExportFormat) ContentType() string {
	if f == ExportXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Export is a rendered download
type Export struct {
	Format ExportFormat
	Rows   int
	Data   []byte
}

// Export writes the filtered rows of q in format. An empty selection is
// not exported.
func (s *DashboardService) Export(ctx context.Context, q Query, format ExportFormat) (*Export, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.export",
		trace.WithAttributes(attribute.String("export.format", string(format))))
	defer span.End()

	var (
		data []byte
		rows int
		err  error
	)
	switch format {
	case ExportCSV:
		var view *View
		if view, err = s.filter(ctx, q); err != nil {
			return nil, err
		}
		rows = view.Rows
		data, err = s.csv.DatasetBytes(view.Filtered)
	case ExportXLSX:
		var view *View
		if view, err = s.Render(ctx, q); err != nil {
			return nil, err
		}
		rows = view.Rows
		var buf bytes.Buffer
		err = s.excel.Write(&buf, view.Filtered, *view.Dashboard)
		data = buf.Bytes()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExport, format)
	}
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("failed to export %s: %w", format, err)
	}

	s.metrics.RecordExport(ctx, string(format))
	s.logger.InfoContext(ctx, "Export generated",
		slog.String("format", string(format)),
		slog.Int("rows", rows),
		slog.Int("bytes", len(data)))
	return &Export{Format: format, Rows: rows, Data: data}, nil
}

// Reload drops the cached copy of the local data file
func (s *DashboardService) Reload(ctx context.Context) (string, error) {
	s.mu.Lock()
	s.local = cleaned{}
	s.mu.Unlock()

	path, err := s.resolver.Resolve()
	if err != nil {
		s.cache.Clear()
		return "", err
	}
	s.cache.Invalidate(path)
	s.logger.InfoContext(ctx, "Local dataset invalidated", slog.String("path", path))
	return path, nil
}

// Logo returns the path of the dashboard logo, if any
func (s *DashboardService) Logo() (string, bool) {
	return s.resolver.Logo()
}

// CheckData reports whether a pass could find data right now without
// parsing anything.
func (s *DashboardService) CheckData(ctx context.Context) (Source, error) {
	if s.HasUpload() {
		return SourceUpload, nil
	}
	if _, err := s.resolver.Resolve(); err != nil {
		return SourceLocal, err
	}
	return SourceLocal, nil
}

// LocalStatus describes the local data file
type LocalStatus struct {
	Path      string             `json:"path,omitempty"`
	Expected  string             `json:"expected"`
	Available bool               `json:"available"`
	Rows      int                `json:"rows"`
	Clean     dataset.CleanStats `json:"clean"`
	LoadedAt  *time.Time         `json:"loaded_at,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// Status is the data-source summary served by GET /api/dataset
type Status struct {
	Active Source             `json:"active_source"`
	Local  LocalStatus        `json:"local"`
	Upload *Upload            `json:"upload,omitempty"`
	Cache  dataset.CacheStats `json:"cache"`
}

// Status loads the local file if needed and reports both sources
func (s *DashboardService) Status(ctx context.Context) Status {
	st := Status{
		Active: SourceLocal,
		Local:  LocalStatus{Expected: s.resolver.Expected()},
		Upload: s.CurrentUpload(),
	}
	if st.Upload != nil {
		st.Active = SourceUpload
	}

	src, err := s.localDataset(ctx)
	if err != nil {
		st.Local.Error = err.Error()
	} else {
		loadedAt := src.data.LoadedAt
		st.Local.Path = src.name
		st.Local.Available = true
		st.Local.Rows = src.data.Len()
		st.Local.Clean = src.stats
		st.Local.LoadedAt = &loadedAt
	}
	st.Cache = s.cache.Stats()
	return st
}
