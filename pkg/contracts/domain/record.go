package domain

import (
	"strconv"
)

// Column names of the educational records CSV
const (
	ColPeriodo       = "Periodo"
	ColSede          = "Sede"
	ColTurno         = "Turno"
	ColGrado         = "Grado"
	ColCurso         = "Curso"
	ColSeccionID     = "Seccion_ID"
	ColMes           = "Mes"
	ColInscripciones = "Inscripciones"
	ColAprobados     = "Aprobados"
	ColDesaprobados  = "Desaprobados"
	ColRetiros       = "Retiros"
	ColAsistencia    = "Asistencia_Promedio_%"
	ColPromedioFinal = "Promedio_Final"
)

// RequiredColumns lists the columns every input file must carry.
// Mes is optional and therefore not part of this list.
var RequiredColumns = []string{
	ColPeriodo,
	ColSede,
	ColTurno,
	ColGrado,
	ColCurso,
	ColSeccionID,
	ColInscripciones,
	ColAprobados,
	ColDesaprobados,
	ColRetiros,
	ColAsistencia,
	ColPromedioFinal,
}

// IsSchemaColumn reports whether name is one of the typed record columns
func IsSchemaColumn(name string) bool {
	if name == ColMes {
		return true
	}
	for _, c := range RequiredColumns {
		if c == name {
			return true
		}
	}
	return false
}

// Record is one row of the educational dataset
type Record struct {
	Periodo       string  `json:"Periodo"`
	Sede          string  `json:"Sede"`
	Turno         string  `json:"Turno"`
	Grado         string  `json:"Grado"`
	Curso         string  `json:"Curso"`
	SeccionID     string  `json:"Seccion_ID"`
	Mes           string  `json:"Mes,omitempty"`
	Inscripciones int64   `json:"Inscripciones"`
	Aprobados     int64   `json:"Aprobados"`
	Desaprobados  int64   `json:"Desaprobados"`
	Retiros       int64   `json:"Retiros"`
	Asistencia    float64 `json:"Asistencia_Promedio_%"`
	PromedioFinal float64 `json:"Promedio_Final"`

	// Extra holds values of non-schema columns, aligned with Dataset.Extra
	Extra []string `json:"extra,omitempty"`

	missing []string
}

// MarkMissing flags a column as having no value in the source row
func (r *Record) MarkMissing(column string) {
	r.missing = append(r.missing, column)
}

// Missing returns the columns that had no value in the source row
func (r Record) Missing() []string {
	return r.missing
}

// Complete reports whether every field of the record was populated
func (r Record) Complete() bool {
	return len(r.missing) == 0
}

// Value returns the record's value for a filter dimension
func (r Record) Value(dim Dimension) string {
	switch dim {
	case DimPeriodo:
		return r.Periodo
	case DimSede:
		return r.Sede
	case DimTurno:
		return r.Turno
	case DimGrado:
		return r.Grado
	case DimCurso:
		return r.Curso
	case DimMes:
		return r.Mes
	}
	return ""
}

// Cell formats the value of a schema column for tabular output.
// The second return value is false for columns outside the schema.
func (r Record) Cell(column string) (string, bool) {
	switch column {
	case ColPeriodo:
		return r.Periodo, true
	case ColSede:
		return r.Sede, true
	case ColTurno:
		return r.Turno, true
	case ColGrado:
		return r.Grado, true
	case ColCurso:
		return r.Curso, true
	case ColSeccionID:
		return r.SeccionID, true
	case ColMes:
		return r.Mes, true
	case ColInscripciones:
		return strconv.FormatInt(r.Inscripciones, 10), true
	case ColAprobados:
		return strconv.FormatInt(r.Aprobados, 10), true
	case ColDesaprobados:
		return strconv.FormatInt(r.Desaprobados, 10), true
	case ColRetiros:
		return strconv.FormatInt(r.Retiros, 10), true
	case ColAsistencia:
		return strconv.FormatFloat(r.Asistencia, 'f', -1, 64), true
	case ColPromedioFinal:
		return strconv.FormatFloat(r.PromedioFinal, 'f', -1, 64), true
	}
	return "", false
}
