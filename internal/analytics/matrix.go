package analytics

import (
	"edudash/pkg/contracts/domain"
)

// Matrix names
const (
	MatrixPassRate   = "pass_rate"
	MatrixAttendance = "attendance"
)

// PassRateKey labels pass-rate cells
const PassRateKey = "Tasa_Aprobacion_%"

// pivot accumulates values per (row, column) label pair
type pivot struct {
	rows  map[string]struct{}
	cols  map[string]struct{}
	cells map[[2]string]*cell
}

type cell struct {
	a, b  float64
	count int
}

func newPivot() *pivot {
	return &pivot{
		rows:  make(map[string]struct{}),
		cols:  make(map[string]struct{}),
		cells: make(map[[2]string]*cell),
	}
}

func (p *pivot) add(row, col string, a, b float64) {
	p.rows[row] = struct{}{}
	p.cols[col] = struct{}{}
	c, ok := p.cells[[2]string{row, col}]
	if !ok {
		c = &cell{}
		p.cells[[2]string{row, col}] = c
	}
	c.a += a
	c.b += b
	c.count++
}

// build lays the pivot out as a Matrix; value returns false to leave a
// cell empty.
func (p *pivot) build(m domain.Matrix, value func(*cell) (float64, bool)) domain.Matrix {
	m.Rows = sortedKeys(p.rows)
	m.Columns = sortedKeys(p.cols)
	m.Cells = make([][]*float64, len(m.Rows))
	for i, r := range m.Rows {
		m.Cells[i] = make([]*float64, len(m.Columns))
		for j, c := range m.Columns {
			acc, ok := p.cells[[2]string{r, c}]
			if !ok {
				continue
			}
			if v, ok := value(acc); ok {
				m.Cells[i][j] = &v
			}
		}
	}
	return m
}

// PassRateMatrix computes Aprobados/Inscripciones*100 per (Sede, Curso),
// rounded to one decimal. Pairs that never occur, or that have no
// enrollment, are left empty.
func PassRateMatrix(ds *domain.Dataset) domain.Matrix {
	p := newPivot()
	for _, r := range ds.Records {
		p.add(r.Sede, r.Curso, float64(r.Inscripciones), float64(r.Aprobados))
	}
	return p.build(domain.Matrix{
		Name:     MatrixPassRate,
		RowKey:   domain.ColSede,
		ColKey:   domain.ColCurso,
		ValueKey: PassRateKey,
	}, func(c *cell) (float64, bool) {
		if c.a <= 0 {
			return 0, false
		}
		return round1(c.b / c.a * 100), true
	})
}

// AttendanceMatrix averages attendance per (Turno, Grado)
func AttendanceMatrix(ds *domain.Dataset) domain.Matrix {
	p := newPivot()
	for _, r := range ds.Records {
		p.add(r.Turno, r.Grado, r.Asistencia, 0)
	}
	return p.build(domain.Matrix{
		Name:     MatrixAttendance,
		RowKey:   domain.ColTurno,
		ColKey:   domain.ColGrado,
		ValueKey: domain.ColAsistencia,
	}, func(c *cell) (float64, bool) {
		return c.a / float64(c.count), true
	})
}
