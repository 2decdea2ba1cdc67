package charts

import (
	"strconv"

	"edudash/internal/exporter"
	"edudash/pkg/contracts/domain"
)

// Table is the tabular form of a chart, shown when no image is drawn
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func count(v int64) string {
	return strconv.FormatInt(v, 10)
}

// TableFor returns the data behind chart k as a table
func TableFor(k Kind, d domain.Dashboard) (Table, error) {
	switch k {
	case EnrollmentByCourse:
		t := Table{Columns: []string{domain.ColCurso, domain.ColInscripciones}}
		for _, c := range d.EnrollmentByCourse {
			t.Rows = append(t.Rows, []string{c.Curso, count(c.Inscripciones)})
		}
		return t, nil
	case ResultsBySite:
		t := Table{Columns: []string{domain.ColSede, "Resultado", "Total"}}
		for _, r := range d.ResultsBySite {
			t.Rows = append(t.Rows, []string{r.Sede, r.Resultado, count(r.Total)})
		}
		return t, nil
	case AttendanceByMonth:
		t := Table{Columns: []string{domain.ColMes, domain.ColAsistencia}}
		for _, m := range d.AttendanceByMonth {
			t.Rows = append(t.Rows, []string{m.Mes, num(m.Asistencia)})
		}
		return t, nil
	case AttendanceVsGrade:
		t := Table{Columns: []string{domain.ColAsistencia, domain.ColPromedioFinal, domain.ColCurso, domain.ColSede, domain.ColTurno, domain.ColGrado, domain.ColSeccionID}}
		for _, p := range d.AttendanceVsGrade {
			t.Rows = append(t.Rows, []string{num(p.Asistencia), num(p.PromedioFinal), p.Curso, p.Sede, p.Turno, p.Grado, p.SeccionID})
		}
		return t, nil
	case PassRateHeatmap:
		return matrixTable(d.PassRateMatrix), nil
	case AttendanceHeatmap:
		return matrixTable(d.AttendanceMatrix), nil
	case GradeSpread:
		t := Table{Columns: []string{domain.ColCurso, "n", "min", "q1", "mediana", "q3", "max", "atipicos"}}
		for _, b := range d.GradeSpread {
			t.Rows = append(t.Rows, []string{
				b.Curso, strconv.Itoa(b.Count), num(b.Min), num(b.Q1), num(b.Median), num(b.Q3), num(b.Max), strconv.Itoa(len(b.Outliers)),
			})
		}
		return t, nil
	case GradeHistogram:
		t := Table{Columns: []string{"desde", "hasta", "frecuencia"}}
		for _, b := range d.GradeHistogram {
			t.Rows = append(t.Rows, []string{num(b.Lower), num(b.Upper), strconv.Itoa(b.Count)})
		}
		return t, nil
	case EnrollmentTreemap:
		t := Table{Columns: []string{domain.ColSede, domain.ColGrado, domain.ColCurso, domain.ColInscripciones}}
		for _, e := range d.EnrollmentHierarchy {
			t.Rows = append(t.Rows, []string{e.Sede, e.Grado, e.Curso, count(e.Inscripciones)})
		}
		return t, nil
	case AcademicFunnel:
		t := Table{Columns: []string{"Etapa", "Total"}}
		for _, s := range d.Funnel {
			t.Rows = append(t.Rows, []string{s.Label, count(s.Total)})
		}
		return t, nil
	}
	return Table{}, ErrUnknownChart
}

func matrixTable(m domain.Matrix) Table {
	t := Table{Columns: append([]string{m.RowKey}, m.Columns...)}
	for i, r := range m.Rows {
		row := make([]string, 0, len(m.Columns)+1)
		row = append(row, r)
		for _, v := range m.Cells[i] {
			row = append(row, exporter.FormatCell(v))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
