package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"edudash/pkg/contracts/domain"
)

// HistogramBins is the number of equal-width grade bins
const HistogramBins = 20

// whiskerFactor scales the interquartile range into the box whiskers
const whiskerFactor = 1.5

// GradeHistogram counts Promedio_Final values in HistogramBins equal-width
// bins spanning the observed range. The last bin includes the maximum.
func GradeHistogram(ds *domain.Dataset) []domain.HistogramBin {
	return histogram(grades(ds.Records), HistogramBins)
}

func histogram(x []float64, bins int) []domain.HistogramBin {
	if len(x) == 0 || bins <= 0 {
		return nil
	}
	sort.Float64s(x)

	lo, hi := x[0], x[len(x)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	edges := make([]float64, bins+1)
	floats.Span(edges, lo, hi)
	// stat.Histogram bins are half-open; nudge the top edge to close the last one
	dividers := append([]float64(nil), edges...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, x, nil)

	out := make([]domain.HistogramBin, bins)
	for i := range out {
		out[i] = domain.HistogramBin{Lower: edges[i], Upper: edges[i+1], Count: int(counts[i])}
	}
	return out
}

// GradeSpreadByCourse returns box statistics of Promedio_Final per Curso
// in encounter order. Whiskers reach the most extreme values within
// 1.5 IQR of the quartiles; values beyond them are outliers.
func GradeSpreadByCourse(ds *domain.Dataset) []domain.BoxStats {
	index := make(map[string]int)
	var courses []string
	var values [][]float64
	for _, r := range ds.Records {
		i, ok := index[r.Curso]
		if !ok {
			i = len(courses)
			index[r.Curso] = i
			courses = append(courses, r.Curso)
			values = append(values, nil)
		}
		values[i] = append(values[i], r.PromedioFinal)
	}

	out := make([]domain.BoxStats, len(courses))
	for i, c := range courses {
		out[i] = boxStats(c, values[i])
	}
	return out
}

func boxStats(curso string, x []float64) domain.BoxStats {
	sort.Float64s(x)

	b := domain.BoxStats{
		Curso:  curso,
		Count:  len(x),
		Q1:     percentile(x, 0.25),
		Median: percentile(x, 0.5),
		Q3:     percentile(x, 0.75),
	}

	iqr := b.Q3 - b.Q1
	lowLimit := b.Q1 - whiskerFactor*iqr
	highLimit := b.Q3 + whiskerFactor*iqr

	inside := make([]float64, 0, len(x))
	for _, v := range x {
		if v < lowLimit || v > highLimit {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		inside = append(inside, v)
	}

	b.Min, b.Max = floats.Min(x), floats.Max(x)
	b.LowerFence, b.UpperFence = floats.Min(inside), floats.Max(inside)
	return b
}

// percentile interpolates linearly between closest ranks of sorted, the
// R type 7 estimator plotly uses for box quartiles. stat.Quantile only
// offers the empirical and type 4 estimators.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	index := p * float64(n-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// AttendanceVsGrade returns one scatter point per record
func AttendanceVsGrade(ds *domain.Dataset) []domain.ScatterPoint {
	out := make([]domain.ScatterPoint, ds.Len())
	for i, r := range ds.Records {
		out[i] = domain.ScatterPoint{
			Asistencia:    r.Asistencia,
			PromedioFinal: r.PromedioFinal,
			Curso:         r.Curso,
			Sede:          r.Sede,
			Turno:         r.Turno,
			Grado:         r.Grado,
			SeccionID:     r.SeccionID,
		}
	}
	return out
}

// Correlation is the Pearson correlation of attendance and final grade.
// It returns 0 when it is undefined.
func Correlation(ds *domain.Dataset) float64 {
	if ds.Len() < 2 {
		return 0
	}
	att := make([]float64, ds.Len())
	for i, r := range ds.Records {
		att[i] = r.Asistencia
	}
	c := stat.Correlation(att, grades(ds.Records), nil)
	if math.IsNaN(c) {
		return 0
	}
	return c
}

func grades(records []domain.Record) []float64 {
	x := make([]float64, len(records))
	for i, r := range records {
		x[i] = r.PromedioFinal
	}
	return x
}
