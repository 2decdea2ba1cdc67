package charts

import (
	"bytes"
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"edudash/pkg/contracts/domain"
)

// plotDPI is the raster resolution gonum/plot uses for PNG output
const plotDPI = 96

var (
	missingCell = color.Gray{Y: 230}
	plotFill    = color.RGBA{R: 0x4c, G: 0x78, B: 0xa8, A: 0xff}
)

// encode writes p in format on the renderer's canvas
func (r *Renderer) encode(p *plot.Plot, format Format, buf *bytes.Buffer) error {
	w := vg.Length(r.width) * vg.Inch / plotDPI
	h := vg.Length(r.height) * vg.Inch / plotDPI
	wt, err := p.WriterTo(w, h, string(format))
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(buf)
	return err
}

// matrixGrid adapts a Matrix to plotter.GridXYZ. Columns run along X,
// rows along Y, and empty cells read as NaN.
type matrixGrid struct {
	m domain.Matrix
}

func (g matrixGrid) Dims() (int, int) { return len(g.m.Columns), len(g.m.Rows) }

func (g matrixGrid) Z(c, r int) float64 {
	if v := g.m.Cells[r][c]; v != nil {
		return *v
	}
	return math.NaN()
}

func (g matrixGrid) X(c int) float64 { return float64(c) }
func (g matrixGrid) Y(r int) float64 { return float64(r) }

func (r *Renderer) heatmap(title string, m domain.Matrix) (*plot.Plot, error) {
	if len(m.Rows) == 0 || len(m.Columns) == 0 {
		return nil, errNoData
	}

	hm := plotter.NewHeatMap(matrixGrid{m}, palette.Heat(16, 1))
	if math.IsInf(hm.Min, 0) || math.IsInf(hm.Max, 0) {
		// every cell is empty
		return nil, errNoData
	}
	if hm.Max-hm.Min < 1e-9 {
		hm.Min, hm.Max = hm.Min-1, hm.Max+1
	}
	hm.NaN = missingCell

	var cells plotter.XYLabels
	for i := range m.Rows {
		for j := range m.Columns {
			if v := m.Cells[i][j]; v != nil {
				cells.XYs = append(cells.XYs, plotter.XY{X: float64(j), Y: float64(i)})
				cells.Labels = append(cells.Labels, strconv.FormatFloat(*v, 'f', 1, 64))
			}
		}
	}
	labels, err := plotter.NewLabels(cells)
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = m.ColKey
	p.Y.Label.Text = m.RowKey
	p.Add(hm, labels)
	p.NominalX(m.Columns...)
	p.NominalY(m.Rows...)
	return p, nil
}

func (r *Renderer) gradeHistogram(bins []domain.HistogramBin) (*plot.Plot, error) {
	if len(bins) == 0 {
		return nil, errNoData
	}

	h := &plotter.Histogram{
		Bins:      make([]plotter.HistogramBin, len(bins)),
		Width:     bins[0].Upper - bins[0].Lower,
		FillColor: plotFill,
		LineStyle: plotter.DefaultLineStyle,
	}
	for i, b := range bins {
		h.Bins[i] = plotter.HistogramBin{Min: b.Lower, Max: b.Upper, Weight: float64(b.Count)}
	}

	p := plot.New()
	p.Title.Text = GradeHistogram.Title()
	p.X.Label.Text = domain.ColPromedioFinal
	p.Y.Label.Text = "Frecuencia"
	p.Add(plotter.NewGrid(), h)
	return p, nil
}

func (r *Renderer) gradeSpread(stats []domain.BoxStats) (*plot.Plot, error) {
	if len(stats) == 0 {
		return nil, errNoData
	}

	names := make([]string, len(stats))
	for i, s := range stats {
		names[i] = s.Curso
	}

	p := plot.New()
	p.Title.Text = GradeSpread.Title()
	p.Y.Label.Text = domain.ColPromedioFinal
	p.Add(plotter.NewGrid(), boxes{stats: stats, width: vg.Points(24), fill: plotFill})
	p.NominalX(names...)
	return p, nil
}

// boxes draws precomputed box statistics, one box per nominal X position.
// plotter.BoxPlot needs the raw values, the dashboard only carries the
// summaries.
type boxes struct {
	stats []domain.BoxStats
	width vg.Length
	fill  color.Color
}

func (b boxes) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	line := plotter.DefaultLineStyle
	whisker := draw.LineStyle{
		Color:  color.Black,
		Width:  vg.Points(0.5),
		Dashes: []vg.Length{vg.Points(4), vg.Points(2)},
	}
	half := b.width / 2

	for i, s := range b.stats {
		x := trX(float64(i))
		q1, med, q3 := trY(s.Q1), trY(s.Median), trY(s.Q3)
		lo, hi := trY(s.LowerFence), trY(s.UpperFence)

		box := []vg.Point{
			{X: x - half, Y: q1},
			{X: x - half, Y: q3},
			{X: x + half, Y: q3},
			{X: x + half, Y: q1},
			{X: x - half, Y: q1},
		}
		c.FillPolygon(b.fill, c.ClipPolygonXY(box))
		c.StrokeLines(line, c.ClipLinesXY(box)...)
		c.StrokeLine2(line, x-half, med, x+half, med)

		c.StrokeLines(whisker, c.ClipLinesXY(
			[]vg.Point{{X: x, Y: q1}, {X: x, Y: lo}},
			[]vg.Point{{X: x, Y: q3}, {X: x, Y: hi}},
		)...)
		c.StrokeLine2(line, x-half/2, lo, x+half/2, lo)
		c.StrokeLine2(line, x-half/2, hi, x+half/2, hi)

		for _, v := range s.Outliers {
			c.DrawGlyph(plotter.DefaultGlyphStyle, vg.Point{X: x, Y: trY(v)})
		}
	}
}

func (b boxes) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = -0.5, float64(len(b.stats))-0.5
	ymin, ymax = math.Inf(1), math.Inf(-1)
	for _, s := range b.stats {
		ymin = math.Min(ymin, s.Min)
		ymax = math.Max(ymax, s.Max)
	}
	if ymax-ymin < 1e-9 {
		ymin, ymax = ymin-1, ymax+1
	}
	return xmin, xmax, ymin, ymax
}
