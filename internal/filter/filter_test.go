package filter

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edudash/pkg/contracts/domain"
)

func rec(sede, curso, mes string, insc, apr, des int64, asis, prom float64) domain.Record {
	return domain.Record{
		Periodo:       "2024-I",
		Sede:          sede,
		Turno:         "Mañana",
		Grado:         "1ro",
		Curso:         curso,
		SeccionID:     sede + curso + mes,
		Mes:           mes,
		Inscripciones: insc,
		Aprobados:     apr,
		Desaprobados:  des,
		Asistencia:    asis,
		PromedioFinal: prom,
	}
}

func scenario() *domain.Dataset {
	return &domain.Dataset{
		Source:   "scenario",
		HasMonth: true,
		Records: []domain.Record{
			rec("A", "Math", "Mar", 10, 8, 2, 90, 7.0),
			rec("A", "Math", "Abr", 5, 3, 2, 80, 6.0),
			rec("B", "Sci", "Mar", 20, 15, 5, 85, 7.5),
		},
	}
}

func TestApplyScenario(t *testing.T) {
	ds := scenario()

	out := Apply(ds, domain.NewSelection().With(domain.DimSede, "A"))
	require.Equal(t, 2, out.Len())
	assert.Equal(t, "Abr", out.Records[1].Mes)
	assert.Equal(t, 3, ds.Len(), "input must not change")
}

func TestApplyAndAcrossOrWithin(t *testing.T) {
	ds := scenario()

	sel := domain.NewSelection().
		With(domain.DimSede, "A", "B").
		With(domain.DimMes, "Mar")
	out := Apply(ds, sel)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, "A", out.Records[0].Sede)
	assert.Equal(t, "B", out.Records[1].Sede)

	sel = domain.NewSelection().
		With(domain.DimSede, "B").
		With(domain.DimMes, "Abr")
	assert.True(t, Apply(ds, sel).Empty())
}

func TestApplyEmptySetSelectsNothing(t *testing.T) {
	out, err := ApplyNonEmpty(scenario(), domain.NewSelection().With(domain.DimCurso))
	assert.ErrorIs(t, err, ErrEmptyResult)
	assert.True(t, out.Empty())
}

func TestApplyIgnoresMonthWithoutColumn(t *testing.T) {
	ds := scenario()
	ds.HasMonth = false

	out := Apply(ds, domain.NewSelection().With(domain.DimMes, "Nov"))
	assert.Equal(t, 3, out.Len())
}

func TestApplyDefaultSelectionIsIdentity(t *testing.T) {
	ds := scenario()
	out, err := ApplyNonEmpty(ds, DefaultSelection(ds))
	require.NoError(t, err)
	assert.Equal(t, ds.Records, out.Records)

	out = Apply(ds, domain.NewSelection())
	assert.Equal(t, ds.Records, out.Records)
}

// Every kept row matches the selection and relative order is the input order
func TestApplyMembershipAndStability(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	sedes := []string{"A", "B", "C"}
	cursos := []string{"Math", "Sci", "Art", "Hist"}

	ds := &domain.Dataset{HasMonth: true}
	for i := 0; i < 300; i++ {
		ds.Records = append(ds.Records, rec(
			sedes[r.Intn(len(sedes))],
			cursos[r.Intn(len(cursos))],
			domain.MonthOrder[r.Intn(len(domain.MonthOrder))],
			int64(r.Intn(30)), 0, 0, 80, 6))
		ds.Records[i].SeccionID = fmt.Sprintf("S%03d", i)
	}

	for trial := 0; trial < 50; trial++ {
		sel := domain.NewSelection().
			With(domain.DimSede, pick(r, sedes)...).
			With(domain.DimCurso, pick(r, cursos)...).
			With(domain.DimMes, pick(r, domain.MonthOrder)...)

		out := Apply(ds, sel)

		next := 0
		for _, got := range out.Records {
			assert.Contains(t, sel[domain.DimSede], got.Sede)
			assert.Contains(t, sel[domain.DimCurso], got.Curso)
			assert.Contains(t, sel[domain.DimMes], got.Mes)

			for next < ds.Len() && ds.Records[next].SeccionID != got.SeccionID {
				next++
			}
			require.Less(t, next, ds.Len(), "row order changed")
			next++
		}

		expected := 0
		for _, rc := range ds.Records {
			if contains(sel[domain.DimSede], rc.Sede) && contains(sel[domain.DimCurso], rc.Curso) && contains(sel[domain.DimMes], rc.Mes) {
				expected++
			}
		}
		assert.Equal(t, expected, out.Len())
	}
}

func pick(r *rand.Rand, values []string) []string {
	var out []string
	for _, v := range values {
		if r.Intn(2) == 0 {
			out = append(out, v)
		}
	}
	return out
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
