package charts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/plot"

	"edudash/pkg/contracts/domain"
)

// Format is an image encoding supported by the renderer
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

// ParseFormat accepts "svg" or "png"; empty means svg
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(SVG):
		return SVG, nil
	case string(PNG):
		return PNG, nil
	}
	return "", fmt.Errorf("unsupported image format %q", s)
}

// ContentType returns the MIME type of f
func (f Format) ContentType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (f Format) provider() chart.RendererProvider {
	if f == PNG {
		return chart.PNG
	}
	return chart.SVG
}

// Result is a rendered chart or its tabular fallback. Exactly one of
// Image and Table is set.
type Result struct {
	Chart         Kind           `json:"chart"`
	Title         string         `json:"title"`
	Visualization Visualization  `json:"visualization"`
	ContentType   string         `json:"content_type,omitempty"`
	Image         []byte         `json:"-"`
	Table         *Table         `json:"table,omitempty"`
	Matrix        *domain.Matrix `json:"matrix,omitempty"`
	Reason        string         `json:"fallback_reason,omitempty"`
}

// Rendered reports whether the result carries an image
func (r Result) Rendered() bool {
	return r.Image != nil
}

// FallbackHook is called whenever a chart is returned as a table
type FallbackHook func(ctx context.Context, kind Kind, reason string)

// Option configures a Renderer
type Option func(*Renderer)

// WithSize sets the canvas size in pixels
func WithSize(width, height int) Option {
	return func(r *Renderer) {
		if width > 0 {
			r.width = width
		}
		if height > 0 {
			r.height = height
		}
	}
}

// WithFallbackHook registers a callback for tabular fallbacks
func WithFallbackHook(h FallbackHook) Option {
	return func(r *Renderer) { r.onFallback = h }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// Renderer draws dashboard charts. Bars, lines and scatters use go-chart;
// heatmaps, box plots and histograms use gonum/plot.
type Renderer struct {
	width      int
	height     int
	logger     *slog.Logger
	onFallback FallbackHook
}

// NewRenderer creates a renderer with a 1024x480 canvas
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{width: 1024, height: 480, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(slog.String("component", "chart_renderer"))
	return r
}

// Render draws chart k from dash. Visualizations the renderer cannot draw,
// and charts whose drawing fails, come back as a table. The error is
// non-nil only for an unknown chart.
func (r *Renderer) Render(ctx context.Context, k Kind, dash domain.Dashboard, format Format) (Result, error) {
	sp, ok := specs[k]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownChart, k)
	}
	res := Result{Chart: k, Title: sp.title, Visualization: sp.vis}

	if !Supports(sp.vis) {
		return r.fallback(ctx, res, dash, fmt.Errorf("%w: %s", ErrUnsupportedVisualization, sp.vis))
	}

	img, err := r.draw(k, dash, format)
	if err != nil {
		return r.fallback(ctx, res, dash, err)
	}
	res.Image = img
	res.ContentType = format.ContentType()
	return res, nil
}

func (r *Renderer) fallback(ctx context.Context, res Result, dash domain.Dashboard, cause error) (Result, error) {
	t, err := TableFor(res.Chart, dash)
	if err != nil {
		return Result{}, err
	}
	res.Table = &t
	res.Reason = cause.Error()
	switch res.Chart {
	case PassRateHeatmap:
		m := dash.PassRateMatrix
		res.Matrix = &m
	case AttendanceHeatmap:
		m := dash.AttendanceMatrix
		res.Matrix = &m
	}

	r.logger.DebugContext(ctx, "Chart rendered as table",
		slog.String("chart", string(res.Chart)),
		slog.String("reason", res.Reason))
	if r.onFallback != nil {
		r.onFallback(ctx, res.Chart, res.Reason)
	}
	return res, nil
}

func (r *Renderer) draw(k Kind, dash domain.Dashboard, format Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch k {
	case EnrollmentByCourse:
		err = r.enrollmentBars(dash.EnrollmentByCourse).Render(format.provider(), &buf)
	case ResultsBySite:
		err = r.siteResults(dash.ResultsBySite).Render(format.provider(), &buf)
	case AttendanceByMonth:
		var ch *chart.Chart
		if ch, err = r.monthLine(dash.AttendanceByMonth); err == nil {
			err = ch.Render(format.provider(), &buf)
		}
	case AttendanceVsGrade:
		var ch *chart.Chart
		if ch, err = r.scatter(dash.AttendanceVsGrade); err == nil {
			err = ch.Render(format.provider(), &buf)
		}
	case PassRateHeatmap, AttendanceHeatmap, GradeSpread, GradeHistogram:
		var p *plot.Plot
		if p, err = r.plot(k, dash); err == nil {
			err = r.encode(p, format, &buf)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVisualization, k.Visualization())
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", k, err)
	}
	return buf.Bytes(), nil
}

// plot builds the charts drawn with gonum/plot
func (r *Renderer) plot(k Kind, dash domain.Dashboard) (*plot.Plot, error) {
	switch k {
	case PassRateHeatmap:
		return r.heatmap(k.Title(), dash.PassRateMatrix)
	case AttendanceHeatmap:
		return r.heatmap(k.Title(), dash.AttendanceMatrix)
	case GradeSpread:
		return r.gradeSpread(dash.GradeSpread)
	default:
		return r.gradeHistogram(dash.GradeHistogram)
	}
}

var seriesColors = []drawing.Color{
	chart.ColorBlue,
	chart.ColorGreen,
	chart.ColorRed,
	chart.ColorOrange,
	chart.ColorCyan,
	chart.ColorYellow,
	chart.ColorAlternateGray,
}

func colorAt(i int) drawing.Color {
	return seriesColors[i%len(seriesColors)]
}

// errNoData is returned for charts with nothing to plot
var errNoData = errors.New("no data to plot")

func (r *Renderer) barWidth(n int) int {
	w := 160 + n*70
	if w < r.width {
		return r.width
	}
	return w
}

func (r *Renderer) enrollmentBars(rows []domain.CourseEnrollment) chartRenderer {
	if len(rows) == 0 {
		return failed{errNoData}
	}
	bars := make([]chart.Value, 0, len(rows))
	top := 0.0
	for i, c := range rows {
		v := float64(c.Inscripciones)
		if v > top {
			top = v
		}
		bars = append(bars, chart.Value{
			Label: c.Curso,
			Value: v,
			Style: chart.Style{FillColor: colorAt(i), StrokeColor: colorAt(i)},
		})
	}
	return &chart.BarChart{
		Title:    EnrollmentByCourse.Title(),
		Width:    r.barWidth(len(bars)),
		Height:   r.height,
		BarWidth: 50,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Name:  domain.ColInscripciones,
			Range: &chart.ContinuousRange{Min: 0, Max: headroom(top)},
		},
		Bars: bars,
	}
}

func (r *Renderer) siteResults(rows []domain.SiteResult) chartRenderer {
	if len(rows) == 0 {
		return failed{errNoData}
	}
	// rows are melted: all Aprobados first, then all Desaprobados
	bySite := make(map[string][]chart.Value)
	var sites []string
	for _, row := range rows {
		if _, ok := bySite[row.Sede]; !ok {
			sites = append(sites, row.Sede)
		}
		col := chart.ColorGreen
		if row.Resultado == domain.ResultFailed {
			col = chart.ColorRed
		}
		bySite[row.Sede] = append(bySite[row.Sede], chart.Value{
			Label: row.Resultado,
			Value: float64(row.Total),
			Style: chart.Style{FillColor: col, StrokeColor: col},
		})
	}

	bars := make([]chart.StackedBar, 0, len(sites))
	for _, s := range sites {
		bars = append(bars, chart.StackedBar{Name: s, Width: 60, Values: bySite[s]})
	}
	return &chart.StackedBarChart{
		Title:  ResultsBySite.Title(),
		Width:  r.barWidth(len(bars)),
		Height: r.height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Bars: bars,
	}
}

func (r *Renderer) monthLine(rows []domain.MonthAttendance) (*chart.Chart, error) {
	if len(rows) == 0 {
		return nil, errNoData
	}
	xs := make([]float64, len(rows))
	ys := make([]float64, len(rows))
	ticks := make([]chart.Tick, len(rows))
	for i, m := range rows {
		xs[i] = float64(i)
		ys[i] = m.Asistencia
		ticks[i] = chart.Tick{Value: float64(i), Label: m.Mes}
	}
	lo, hi := bounds(ys)

	ch := &chart.Chart{
		Title:  AttendanceByMonth.Title(),
		Width:  r.width,
		Height: r.height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20},
		},
		XAxis: chart.XAxis{
			Name:  domain.ColMes,
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(rows)) - 0.5},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  domain.ColAsistencia,
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    domain.ColAsistencia,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
					DotColor:    chart.ColorBlue,
					DotWidth:    4,
				},
			},
		},
	}
	return ch, nil
}

func (r *Renderer) scatter(points []domain.ScatterPoint) (*chart.Chart, error) {
	if len(points) == 0 {
		return nil, errNoData
	}
	byCourse := make(map[string]*chart.ContinuousSeries)
	var courses []string
	xs := make([]float64, 0, len(points))
	ys := make([]float64, 0, len(points))
	for _, p := range points {
		s, ok := byCourse[p.Curso]
		if !ok {
			s = &chart.ContinuousSeries{Name: p.Curso}
			byCourse[p.Curso] = s
			courses = append(courses, p.Curso)
		}
		s.XValues = append(s.XValues, p.Asistencia)
		s.YValues = append(s.YValues, p.PromedioFinal)
		xs = append(xs, p.Asistencia)
		ys = append(ys, p.PromedioFinal)
	}
	sort.Strings(courses)

	series := make([]chart.Series, 0, len(courses))
	for i, c := range courses {
		s := byCourse[c]
		s.Style = pointStyle(colorAt(i))
		series = append(series, *s)
	}
	xlo, xhi := bounds(xs)
	ylo, yhi := bounds(ys)

	ch := &chart.Chart{
		Title:  AttendanceVsGrade.Title(),
		Width:  r.width,
		Height: r.height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20},
		},
		XAxis: chart.XAxis{
			Name:  domain.ColAsistencia,
			Range: &chart.ContinuousRange{Min: xlo, Max: xhi},
		},
		YAxis: chart.YAxis{
			Name:  domain.ColPromedioFinal,
			Range: &chart.ContinuousRange{Min: ylo, Max: yhi},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(ch)}
	return ch, nil
}

// pointStyle draws markers without connecting lines
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

// bounds returns a non-degenerate axis range around values
func bounds(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi-lo < 1e-9 {
		return lo - 1, hi + 1
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}

func headroom(top float64) float64 {
	if top <= 0 {
		return 1
	}
	return top * 1.1
}

// chartRenderer is satisfied by the go-chart chart types
type chartRenderer interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

type failed struct{ err error }

func (f failed) Render(chart.RendererProvider, io.Writer) error { return f.err }
