package analytics

import (
	"sort"
	"strconv"

	"edudash/pkg/contracts/domain"
)

// EnrollmentByCourse sums Inscripciones per Curso, largest first
func EnrollmentByCourse(ds *domain.Dataset) []domain.CourseEnrollment {
	index := make(map[string]int)
	var out []domain.CourseEnrollment
	for _, r := range ds.Records {
		i, ok := index[r.Curso]
		if !ok {
			i = len(out)
			index[r.Curso] = i
			out = append(out, domain.CourseEnrollment{Curso: r.Curso})
		}
		out[i].Inscripciones += r.Inscripciones
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Inscripciones > out[j].Inscripciones
	})
	return out
}

// ResultsBySite sums passes and fails per Sede in long form
func ResultsBySite(ds *domain.Dataset) []domain.SiteResult {
	type totals struct{ passed, failed int64 }
	bySite := make(map[string]*totals)
	for _, r := range ds.Records {
		t, ok := bySite[r.Sede]
		if !ok {
			t = &totals{}
			bySite[r.Sede] = t
		}
		t.passed += r.Aprobados
		t.failed += r.Desaprobados
	}

	sites := sortedKeys(bySite)
	out := make([]domain.SiteResult, 0, 2*len(sites))
	for _, s := range sites {
		out = append(out, domain.SiteResult{Sede: s, Resultado: domain.ResultPassed, Total: bySite[s].passed})
	}
	for _, s := range sites {
		out = append(out, domain.SiteResult{Sede: s, Resultado: domain.ResultFailed, Total: bySite[s].failed})
	}
	return out
}

// AttendanceByMonth averages attendance per Mes in month order. It returns
// nil when the dataset has no Mes column.
func AttendanceByMonth(ds *domain.Dataset) []domain.MonthAttendance {
	if !ds.HasMonth {
		return nil
	}

	values := make(map[string][]float64)
	for _, r := range ds.Records {
		values[r.Mes] = append(values[r.Mes], r.Asistencia)
	}

	months := sortedKeys(values)
	domain.SortMonths(months)

	out := make([]domain.MonthAttendance, len(months))
	for i, m := range months {
		out[i] = domain.MonthAttendance{Mes: m, Asistencia: mean(values[m])}
	}
	return out
}

// EnrollmentHierarchy sums Inscripciones per (Sede, Grado, Curso)
func EnrollmentHierarchy(ds *domain.Dataset) []domain.HierarchyEntry {
	type key struct{ sede, grado, curso string }
	sums := make(map[key]int64)
	for _, r := range ds.Records {
		sums[key{r.Sede, r.Grado, r.Curso}] += r.Inscripciones
	}

	out := make([]domain.HierarchyEntry, 0, len(sums))
	for k, v := range sums {
		out = append(out, domain.HierarchyEntry{Sede: k.sede, Grado: k.grado, Curso: k.curso, Inscripciones: v})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Sede != b.Sede {
			return a.Sede < b.Sede
		}
		if a.Grado != b.Grado {
			return a.Grado < b.Grado
		}
		return a.Curso < b.Curso
	})
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return labelLess(keys[i], keys[j]) })
	return keys
}

// labelLess orders numeric labels by value ahead of all other labels, which
// compare lexically. Grado "2" sorts before "10".
func labelLess(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		if fa != fb {
			return fa < fb
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}
