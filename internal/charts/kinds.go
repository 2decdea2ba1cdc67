package charts

import (
	"errors"
	"strings"
)

// Kind identifies one of the dashboard charts
type Kind string

const (
	EnrollmentByCourse Kind = "enrollment-by-course"
	ResultsBySite      Kind = "results-by-site"
	AttendanceByMonth  Kind = "attendance-by-month"
	AttendanceVsGrade  Kind = "attendance-vs-grade"
	PassRateHeatmap    Kind = "pass-rate-heatmap"
	AttendanceHeatmap  Kind = "attendance-heatmap"
	GradeSpread        Kind = "grade-spread"
	GradeHistogram     Kind = "grade-histogram"
	EnrollmentTreemap  Kind = "enrollment-treemap"
	AcademicFunnel     Kind = "academic-funnel"
)

// Kinds lists every chart in page order
var Kinds = []Kind{
	EnrollmentByCourse,
	ResultsBySite,
	AttendanceByMonth,
	AttendanceVsGrade,
	PassRateHeatmap,
	GradeSpread,
	GradeHistogram,
	EnrollmentTreemap,
	AcademicFunnel,
	AttendanceHeatmap,
}

// Visualization is the drawing primitive a chart needs
type Visualization string

const (
	Bar        Visualization = "bar"
	StackedBar Visualization = "stacked-bar"
	Line       Visualization = "line"
	Scatter    Visualization = "scatter"
	Heatmap    Visualization = "heatmap"
	Box        Visualization = "box"
	Histogram  Visualization = "histogram"
	Treemap    Visualization = "treemap"
	Funnel     Visualization = "funnel"
)

var (
	// ErrUnsupportedVisualization marks a chart the renderer cannot draw.
	// Callers show the underlying table instead.
	ErrUnsupportedVisualization = errors.New("unsupported visualization")
	ErrUnknownChart             = errors.New("unknown chart")
)

// supported lists the primitives the renderer can draw
var supported = map[Visualization]bool{
	Bar:        true,
	StackedBar: true,
	Line:       true,
	Scatter:    true,
	Heatmap:    true,
	Box:        true,
	Histogram:  true,
}

// Supports reports whether v can be rendered as an image
func Supports(v Visualization) bool {
	return supported[v]
}

type spec struct {
	title string
	vis   Visualization
}

var specs = map[Kind]spec{
	EnrollmentByCourse: {"Inscripciones por Curso", Bar},
	ResultsBySite:      {"Aprobados vs Desaprobados por Sede", StackedBar},
	AttendanceByMonth:  {"Asistencia Promedio por Mes", Line},
	AttendanceVsGrade:  {"Relación: Asistencia vs Nota Final", Scatter},
	PassRateHeatmap:    {"% Aprobación (Sede × Curso)", Heatmap},
	AttendanceHeatmap:  {"Asistencia promedio (Turno × Grado)", Heatmap},
	GradeSpread:        {"Distribución de Promedio Final por Curso", Box},
	GradeHistogram:     {"Distribución de Promedio Final", Histogram},
	EnrollmentTreemap:  {"Mapa de tamaño: Inscripciones", Treemap},
	AcademicFunnel:     {"Embudo Académico", Funnel},
}

// ParseKind maps a chart name from a URL to its Kind
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := specs[k]; !ok {
		return "", ErrUnknownChart
	}
	return k, nil
}

// Title returns the display title of k
func (k Kind) Title() string {
	return specs[k].title
}

// Visualization returns the primitive k is drawn with
func (k Kind) Visualization() Visualization {
	return specs[k].vis
}
