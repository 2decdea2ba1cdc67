package analytics

import (
	"edudash/pkg/contracts/domain"
)

type row struct {
	sede, turno, grado, curso, mes string
	insc, apr, des, ret            int64
	asis, prom                     float64
}

func dataset(rows ...row) *domain.Dataset {
	ds := &domain.Dataset{Source: "test", HasMonth: true}
	for i, r := range rows {
		turno, grado := r.turno, r.grado
		if turno == "" {
			turno = "Mañana"
		}
		if grado == "" {
			grado = "1ro"
		}
		ds.Records = append(ds.Records, domain.Record{
			Periodo:       "2024-I",
			Sede:          r.sede,
			Turno:         turno,
			Grado:         grado,
			Curso:         r.curso,
			SeccionID:     string(rune('A' + i)),
			Mes:           r.mes,
			Inscripciones: r.insc,
			Aprobados:     r.apr,
			Desaprobados:  r.des,
			Retiros:       r.ret,
			Asistencia:    r.asis,
			PromedioFinal: r.prom,
		})
	}
	return ds
}

func scenario() *domain.Dataset {
	return dataset(
		row{sede: "A", curso: "Math", mes: "Mar", insc: 10, apr: 8, des: 2, asis: 90, prom: 7.0},
		row{sede: "A", curso: "Math", mes: "Abr", insc: 5, apr: 3, des: 2, asis: 80, prom: 6.0},
		row{sede: "B", curso: "Sci", mes: "Mar", insc: 20, apr: 15, des: 5, asis: 85, prom: 7.5},
	)
}

func filterSede(ds *domain.Dataset, sede string) *domain.Dataset {
	var out []domain.Record
	for _, r := range ds.Records {
		if r.Sede == sede {
			out = append(out, r)
		}
	}
	return ds.Derive(out)
}
