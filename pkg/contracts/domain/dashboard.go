package domain

// KPIs are the scalar statistics shown as metric widgets
type KPIs struct {
	TotalEnrollment int64   `json:"total_enrollment"`
	TotalPassed     int64   `json:"total_passed"`
	TotalFailed     int64   `json:"total_failed"`
	TotalWithdrawn  int64   `json:"total_withdrawn"`
	AvgAttendance   float64 `json:"avg_attendance"`
	AvgGrade        float64 `json:"avg_grade"`
	PassRate        float64 `json:"pass_rate"`
	ActiveSites     int     `json:"active_sites"`
}

// CourseEnrollment is one bar of the enrollment-by-course chart
type CourseEnrollment struct {
	Curso         string `json:"Curso"`
	Inscripciones int64  `json:"Inscripciones"`
}

// Result labels of the stacked pass/fail series
const (
	ResultPassed = "Aprobados"
	ResultFailed = "Desaprobados"
)

// SiteResult is one long-form row of the pass/fail by site chart
type SiteResult struct {
	Sede      string `json:"Sede"`
	Resultado string `json:"Resultado"`
	Total     int64  `json:"Total"`
}

// MonthAttendance is one point of the attendance-by-month line
type MonthAttendance struct {
	Mes        string  `json:"Mes"`
	Asistencia float64 `json:"Asistencia_Promedio_%"`
}

// Matrix is a pivoted aggregate. Cells[i][j] is nil when no row of the
// input produced the (Rows[i], Columns[j]) pair.
type Matrix struct {
	Name     string       `json:"name"`
	RowKey   string       `json:"row_key"`
	ColKey   string       `json:"col_key"`
	ValueKey string       `json:"value_key"`
	Rows     []string     `json:"rows"`
	Columns  []string     `json:"columns"`
	Cells    [][]*float64 `json:"cells"`
}

// At returns the cell for a row/column label pair
func (m Matrix) At(row, col string) (float64, bool) {
	for i, r := range m.Rows {
		if r != row {
			continue
		}
		for j, c := range m.Columns {
			if c == col && m.Cells[i][j] != nil {
				return *m.Cells[i][j], true
			}
		}
	}
	return 0, false
}

// HierarchyEntry is one leaf of the Sede / Grado / Curso treemap
type HierarchyEntry struct {
	Sede          string `json:"Sede"`
	Grado         string `json:"Grado"`
	Curso         string `json:"Curso"`
	Inscripciones int64  `json:"Inscripciones"`
}

// Funnel stage names. The stages overlap and are displayed as-is.
const (
	StageEnrolled  = "Enrolled"
	StagePassed    = "Passed"
	StageFailed    = "Failed"
	StageWithdrawn = "Withdrawn"
)

// FunnelStage is one bar of the academic funnel
type FunnelStage struct {
	Stage string `json:"stage"`
	Label string `json:"label"`
	Total int64  `json:"total"`
}

// HistogramBin counts grades in [Lower, Upper); the last bin is closed
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// BoxStats summarizes the final-grade distribution of one course
type BoxStats struct {
	Curso      string    `json:"Curso"`
	Count      int       `json:"count"`
	Min        float64   `json:"min"`
	Q1         float64   `json:"q1"`
	Median     float64   `json:"median"`
	Q3         float64   `json:"q3"`
	Max        float64   `json:"max"`
	LowerFence float64   `json:"lower_fence"`
	UpperFence float64   `json:"upper_fence"`
	Outliers   []float64 `json:"outliers,omitempty"`
}

// ScatterPoint relates attendance and final grade for one record
type ScatterPoint struct {
	Asistencia    float64 `json:"Asistencia_Promedio_%"`
	PromedioFinal float64 `json:"Promedio_Final"`
	Curso         string  `json:"Curso"`
	Sede          string  `json:"Sede"`
	Turno         string  `json:"Turno"`
	Grado         string  `json:"Grado"`
	SeccionID     string  `json:"Seccion_ID"`
}

// Dashboard is the full set of aggregates for one render pass
type Dashboard struct {
	Rows                int                `json:"rows"`
	KPIs                KPIs               `json:"kpis"`
	EnrollmentByCourse  []CourseEnrollment `json:"enrollment_by_course"`
	ResultsBySite       []SiteResult       `json:"results_by_site"`
	AttendanceByMonth   []MonthAttendance  `json:"attendance_by_month,omitempty"`
	PassRateMatrix      Matrix             `json:"pass_rate_matrix"`
	AttendanceMatrix    Matrix             `json:"attendance_matrix"`
	EnrollmentHierarchy []HierarchyEntry   `json:"enrollment_hierarchy"`
	Funnel              []FunnelStage      `json:"funnel"`
	GradeHistogram      []HistogramBin     `json:"grade_histogram"`
	GradeSpread         []BoxStats         `json:"grade_spread"`
	AttendanceVsGrade   []ScatterPoint     `json:"attendance_vs_grade"`
	Correlation         float64            `json:"attendance_grade_correlation"`
}
